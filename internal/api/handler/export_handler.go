package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"stride/backend/internal/service"
	"stride/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportRetroplan 导出逆向规划
// GET /api/v1/retroplans/:goal_id/export
func (h *ExportHandler) ExportRetroplan(c *gin.Context) {
	goalID := c.Param("goal_id")
	if goalID == "" {
		response.BadRequest(c, 10001, "目标ID不能为空")
		return
	}

	ownerID, ok := MustGetOwnerID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportRetroplan(c.Request.Context(), goalID, ownerID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		handleRetroplanError(c, err)
	}
}
