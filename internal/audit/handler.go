package audit

import (
	"github.com/gin-gonic/gin"

	"github.com/attendix/backend/internal/middleware"
	"github.com/attendix/backend/pkg/response"
)

const activityLimit = 20

// Handler handles GET /auth/activity.
type Handler struct {
	repo *Repository
}

// NewHandler creates an audit handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// GetActivity handles GET /auth/activity: the logged-in student's recent
// login activity.
func (h *Handler) GetActivity(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		response.Unauthorized(c, "missing session context")
		return
	}
	list, err := h.repo.ListRecent(c.Request.Context(), sess.Student.RegisterNo, activityLimit)
	if err != nil {
		response.Internal(c, "failed to list activity")
		return
	}
	response.OK(c, gin.H{"activity": list})
}
