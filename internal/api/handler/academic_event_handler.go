package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stride/backend/internal/api/middleware"
	"stride/backend/internal/dto"
	"stride/backend/internal/service"
	"stride/backend/pkg/response"
)

// AcademicEventHandler 学业事件模块 HTTP 处理器
type AcademicEventHandler struct {
	svc service.AcademicEventService
}

// NewAcademicEventHandler 创建 AcademicEventHandler
func NewAcademicEventHandler(svc service.AcademicEventService) *AcademicEventHandler {
	return &AcademicEventHandler{svc: svc}
}

// ListAcademicEvents 列出与日期区间重叠的学业事件
// GET /api/v1/academic-events?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *AcademicEventHandler) ListAcademicEvents(c *gin.Context) {
	var q dto.ListAcademicEventsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	ownerID, ok := MustGetOwnerID(c)
	if !ok {
		return
	}

	events, err := h.svc.List(c.Request.Context(), ownerID, &q)
	if err != nil {
		handleAcademicEventError(c, err)
		return
	}

	response.OK(c, gin.H{"list": events})
}

// ImportICS 从学校日历导入学业事件
// POST /api/v1/academic-events/import
//
// 支持两种方式：
//   - 文件上传: multipart/form-data, field="file"
//   - URL 导入: application/json, body={"url": "..."}
func (h *AcademicEventHandler) ImportICS(c *gin.Context) {
	ownerID, ok := MustGetOwnerID(c)
	if !ok {
		return
	}

	// 尝试文件上传方式
	file, _, err := c.Request.FormFile("file")
	if err == nil {
		defer file.Close()
		resp, err := h.svc.ImportICS(c.Request.Context(), file, ownerID)
		if err != nil {
			handleAcademicEventError(c, err)
			return
		}
		response.Created(c, resp)
		return
	}
	if middleware.IsBodyTooLarge(err) {
		response.PayloadTooLarge(c)
		return
	}

	// 尝试 URL 方式
	var req dto.ImportICSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 22000, "请上传 ICS 文件或提供 ICS URL")
		return
	}

	resp, err := h.svc.ImportICSFromURL(c.Request.Context(), req.URL, ownerID)
	if err != nil {
		handleAcademicEventError(c, err)
		return
	}
	response.Created(c, resp)
}

func handleAcademicEventError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAcademicEventRangeInvalid):
		response.BadRequest(c, 22001, "日期区间无效")
	case errors.Is(err, service.ErrICSParseFailed):
		response.BadRequest(c, 22002, "ICS 文件解析失败")
	case errors.Is(err, service.ErrICSEmpty):
		response.BadRequest(c, 22003, "ICS 文件中未发现可识别的学业事件")
	case errors.Is(err, service.ErrICSImportDisabled):
		response.Forbidden(c, 22004, "ICS 导入功能未开启")
	case errors.Is(err, service.ErrICSFetchFailed):
		response.Error(c, http.StatusBadGateway, 22005, "ICS 链接获取失败")
	case errors.Is(err, service.ErrOwnerRequired):
		response.Unauthorized(c, 10002, "未认证")
	default:
		response.InternalError(c)
	}
}
