package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stride/backend/internal/dto"
	"stride/backend/internal/service"
	"stride/backend/pkg/response"
)

// EnergyLogHandler 状态自评模块 HTTP 处理器
type EnergyLogHandler struct {
	svc service.EnergyLogService
}

// NewEnergyLogHandler 创建 EnergyLogHandler
func NewEnergyLogHandler(svc service.EnergyLogService) *EnergyLogHandler {
	return &EnergyLogHandler{svc: svc}
}

// UpsertEnergyLog 写入某日状态自评（同一天重复提交覆盖）
// POST /api/v1/energy-logs
func (h *EnergyLogHandler) UpsertEnergyLog(c *gin.Context) {
	var req dto.UpsertEnergyLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	ownerID, ok := MustGetOwnerID(c)
	if !ok {
		return
	}

	log, err := h.svc.Upsert(c.Request.Context(), &req, ownerID)
	if err != nil {
		handleEnergyLogError(c, err)
		return
	}

	response.OK(c, log)
}

// ListEnergyLogs 最近的状态自评
// GET /api/v1/energy-logs?limit=14
func (h *EnergyLogHandler) ListEnergyLogs(c *gin.Context) {
	var q dto.ListEnergyLogsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	ownerID, ok := MustGetOwnerID(c)
	if !ok {
		return
	}

	logs, err := h.svc.ListRecent(c.Request.Context(), ownerID, q.Limit)
	if err != nil {
		handleEnergyLogError(c, err)
		return
	}

	response.OK(c, gin.H{"list": logs})
}

func handleEnergyLogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEnergyLogInvalid):
		response.ErrorWithDetails(c, http.StatusBadRequest, 21001, "状态自评数据无效", validationDetails(err))
	case errors.Is(err, service.ErrOwnerRequired):
		response.Unauthorized(c, 10002, "未认证")
	default:
		response.InternalError(c)
	}
}
