package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stride/backend/internal/dto"
	"stride/backend/internal/service"
	"stride/backend/pkg/response"
)

// RetroplanHandler 逆向规划模块 HTTP 处理器
type RetroplanHandler struct {
	svc    service.RetroplanService
	logger *zap.Logger
}

// NewRetroplanHandler 创建 RetroplanHandler
func NewRetroplanHandler(svc service.RetroplanService, logger *zap.Logger) *RetroplanHandler {
	return &RetroplanHandler{svc: svc, logger: logger}
}

// GenerateRetroplan 生成逆向规划
// POST /api/v1/retroplans
func (h *RetroplanHandler) GenerateRetroplan(c *gin.Context) {
	var req dto.GenerateRetroplanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	ownerID, ok := MustGetOwnerID(c)
	if !ok {
		return
	}

	plan, err := h.svc.Generate(c.Request.Context(), &req, ownerID)
	if err != nil {
		handleRetroplanError(c, err)
		return
	}

	response.Created(c, plan)
}

// GetRetroplan 读取最近一次生成的计划
// GET /api/v1/retroplans/:goal_id
func (h *RetroplanHandler) GetRetroplan(c *gin.Context) {
	goalID := c.Param("goal_id")
	if goalID == "" {
		response.BadRequest(c, 10001, "目标ID不能为空")
		return
	}

	ownerID, ok := MustGetOwnerID(c)
	if !ok {
		return
	}

	plan, err := h.svc.Get(c.Request.Context(), goalID, ownerID)
	if err != nil {
		handleRetroplanError(c, err)
		return
	}

	response.OK(c, plan)
}

// RegenerateRetroplan 按已保存的目标重新生成
// POST /api/v1/retroplans/:goal_id/regenerate?simulated_date=YYYY-MM-DD
func (h *RetroplanHandler) RegenerateRetroplan(c *gin.Context) {
	goalID := c.Param("goal_id")
	if goalID == "" {
		response.BadRequest(c, 10001, "目标ID不能为空")
		return
	}

	ownerID, ok := MustGetOwnerID(c)
	if !ok {
		return
	}

	plan, err := h.svc.Regenerate(c.Request.Context(), goalID, ownerID, c.Query("simulated_date"))
	if err != nil {
		handleRetroplanError(c, err)
		return
	}

	response.OK(c, plan)
}

// InvalidateRetroplan 删除缓存的计划
// DELETE /api/v1/retroplans/:goal_id
func (h *RetroplanHandler) InvalidateRetroplan(c *gin.Context) {
	goalID := c.Param("goal_id")
	if goalID == "" {
		response.BadRequest(c, 10001, "目标ID不能为空")
		return
	}

	ownerID, ok := MustGetOwnerID(c)
	if !ok {
		return
	}

	if err := h.svc.Invalidate(c.Request.Context(), goalID, ownerID); err != nil {
		handleRetroplanError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetPredictions 未来几周的低产能预警
// GET /api/v1/retroplans/:goal_id/predictions?lookahead=4
func (h *RetroplanHandler) GetPredictions(c *gin.Context) {
	goalID := c.Param("goal_id")
	if goalID == "" {
		response.BadRequest(c, 10001, "目标ID不能为空")
		return
	}

	var q dto.PredictionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	ownerID, ok := MustGetOwnerID(c)
	if !ok {
		return
	}

	resp, err := h.svc.GetPredictions(c.Request.Context(), goalID, ownerID, &q)
	if err != nil {
		handleRetroplanError(c, err)
		return
	}

	response.OK(c, resp)
}

// GetWeekCapacity 任意日期所在周的产能预览
// GET /api/v1/capacity/week?date=YYYY-MM-DD&hourly_rate=15
func (h *RetroplanHandler) GetWeekCapacity(c *gin.Context) {
	var q dto.WeekCapacityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	ownerID, ok := MustGetOwnerID(c)
	if !ok {
		return
	}

	capacity, err := h.svc.GetWeekCapacity(c.Request.Context(), ownerID, &q)
	if err != nil {
		handleRetroplanError(c, err)
		return
	}

	response.OK(c, capacity)
}

// HandleAction 文本动作入口
// POST /api/v1/retroplan/actions
//
// 请求体 {"action": "generate", "payload": {...}}，进入服务层前解码为强类型命令
func (h *RetroplanHandler) HandleAction(c *gin.Context) {
	var req dto.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	ownerID, ok := MustGetOwnerID(c)
	if !ok {
		return
	}

	cmd, err := service.DecodeAction(req.Action, req.Payload, ownerID)
	if err != nil {
		handleRetroplanError(c, err)
		return
	}

	result, err := service.Dispatch(c.Request.Context(), h.svc, h.logger, cmd)
	if err != nil {
		handleRetroplanError(c, err)
		return
	}

	response.OK(c, gin.H{"action": req.Action, "result": result})
}

// ── 错误映射 ──

func handleRetroplanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRetroplanInvalidInput):
		response.ValidationFailed(c, validationDetails(err))
	case errors.Is(err, service.ErrUnknownAction):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20004, "未知的动作", err.Error())
	case errors.Is(err, service.ErrOwnerRequired):
		response.Unauthorized(c, 10002, "未认证")
	case errors.Is(err, service.ErrRetroplanNotFound):
		response.NotFound(c, 20002, "该目标尚未生成逆向规划")
	case errors.Is(err, service.ErrGoalNotFound):
		response.NotFound(c, 20003, "目标不存在")
	default:
		// ErrRetroplanGenerateFailed / ErrRetroplanInternal 及未知错误统一返回通用失败
		response.InternalError(c)
	}
}
