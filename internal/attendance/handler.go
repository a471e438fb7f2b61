package attendance

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/attendix/backend/config"
	"github.com/attendix/backend/internal/audit"
	"github.com/attendix/backend/internal/middleware"
	"github.com/attendix/backend/internal/models"
	"github.com/attendix/backend/internal/portal"
	"github.com/attendix/backend/internal/session"
	"github.com/attendix/backend/pkg/queue"
	"github.com/attendix/backend/pkg/response"
)

// CourseProjection is one dashboard row: the portal's raw counts plus the
// projection against the threshold.
type CourseProjection struct {
	models.CourseAttendance
	Projection
}

// DashboardResponse is the body for GET /attendance.
type DashboardResponse struct {
	Courses []CourseProjection `json:"courses"`
	Cached  bool               `json:"cached"`
}

// ProjectRequest is the body for POST /attendance/project (what-if queries).
type ProjectRequest struct {
	Present int `json:"present" binding:"min=0"`
	Total   int `json:"total"`
}

// Handler handles attendance HTTP endpoints.
type Handler struct {
	portal    *portal.Client
	sessions  *session.Store
	queue     *queue.Queue
	cookieCfg config.SessionConfig
	logger    *zap.Logger
}

// NewHandler creates an attendance handler.
func NewHandler(portalClient *portal.Client, sessions *session.Store, q *queue.Queue, cookieCfg config.SessionConfig, logger *zap.Logger) *Handler {
	return &Handler{
		portal:    portalClient,
		sessions:  sessions,
		queue:     q,
		cookieCfg: cookieCfg,
		logger:    logger,
	}
}

// GetDashboard handles GET /attendance: fetches the student's attendance from
// the portal and projects every course component against the threshold.
// With ?cached=true the session's last snapshot is served when available.
func (h *Handler) GetDashboard(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		response.Unauthorized(c, "missing session context")
		return
	}

	if c.Query("cached") == "true" {
		rows, ok, err := h.sessions.GetSnapshot(c.Request.Context(), sess.ID)
		if err != nil {
			h.logger.Warn("load attendance snapshot", zap.Error(err))
		}
		if ok {
			response.OK(c, DashboardResponse{Courses: projectAll(rows), Cached: true})
			return
		}
	}

	token, err := h.sessions.PortalToken(sess)
	if err != nil {
		h.logger.Error("open portal token", zap.Error(err))
		response.Internal(c, "failed to read session")
		return
	}

	rows, err := h.portal.FetchAttendance(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, portal.ErrSessionExpired):
			h.expireSession(c, sess)
		case errors.Is(err, portal.ErrUnavailable):
			response.ServiceUnavailable(c, "college portal unavailable")
		default:
			h.logger.Error("fetch attendance", zap.Error(err))
			response.BadGateway(c, "unexpected portal response")
		}
		return
	}

	if err := h.sessions.SaveSnapshot(c.Request.Context(), sess.ID, rows); err != nil {
		h.logger.Warn("save attendance snapshot", zap.Error(err))
	}

	response.OK(c, DashboardResponse{Courses: projectAll(rows)})
}

// ProjectWhatIf handles POST /attendance/project: run the calculator on
// caller-supplied counts.
func (h *Handler) ProjectWhatIf(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	response.OK(c, Project(req.Present, req.Total))
}

// expireSession tears down local state when the portal rejects the token:
// the session is deleted, the cookie cleared, and an expiry event recorded.
func (h *Handler) expireSession(c *gin.Context, sess *session.Session) {
	if err := h.sessions.Delete(c.Request.Context(), sess.ID); err != nil {
		h.logger.Warn("delete expired session", zap.Error(err))
	}
	middleware.ClearSessionCookie(c, h.cookieCfg)
	err := h.queue.EnqueueAudit(c.Request.Context(), queue.AuditPayload{
		RegisterNo: sess.Student.RegisterNo,
		Event:      audit.EventExpired,
		ClientIP:   c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
		OccurredAt: time.Now(),
	})
	if err != nil {
		h.logger.Warn("enqueue audit event", zap.Error(err))
	}
	response.Unauthorized(c, "session expired")
}

func projectAll(rows []models.CourseAttendance) []CourseProjection {
	out := make([]CourseProjection, 0, len(rows))
	for _, row := range rows {
		out = append(out, CourseProjection{
			CourseAttendance: row,
			Projection:       Project(row.Present, row.Total),
		})
	}
	return out
}
