package handler

import (
	"github.com/gin-gonic/gin"

	"stride/backend/internal/service"
	"stride/backend/pkg/response"
)

// CommitmentHandler 每周固定投入 HTTP 处理器（只读）
type CommitmentHandler struct {
	svc service.CommitmentService
}

// NewCommitmentHandler 创建 CommitmentHandler
func NewCommitmentHandler(svc service.CommitmentService) *CommitmentHandler {
	return &CommitmentHandler{svc: svc}
}

// ListCommitments 当前用户的固定投入及每周总时长
// GET /api/v1/commitments
func (h *CommitmentHandler) ListCommitments(c *gin.Context) {
	ownerID, ok := MustGetOwnerID(c)
	if !ok {
		return
	}

	resp, err := h.svc.List(c.Request.Context(), ownerID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, resp)
}
