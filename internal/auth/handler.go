// Package auth exposes login/logout against the upstream college portal.
// Authentication itself is delegated entirely to the portal; this service
// only brokers credentials and owns the resulting session.
package auth

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

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	RegisterNo string `json:"register_no" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with the session JWT.
type TokenResponse struct {
	Token   string                `json:"token"`
	Student models.StudentProfile `json:"student"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	portal    *portal.Client
	sessions  *session.Store
	jwt       *session.JWTService
	queue     *queue.Queue
	cookieCfg config.SessionConfig
	logger    *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(portalClient *portal.Client, sessions *session.Store, jwtService *session.JWTService, q *queue.Queue, cookieCfg config.SessionConfig, logger *zap.Logger) *Handler {
	return &Handler{
		portal:    portalClient,
		sessions:  sessions,
		jwt:       jwtService,
		queue:     q,
		cookieCfg: cookieCfg,
		logger:    logger,
	}
}

// Login handles POST /auth/login: forwards credentials to the portal,
// creates a session around the portal token, and issues the session JWT.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	portalToken, student, err := h.portal.Login(c.Request.Context(), req.RegisterNo, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, portal.ErrInvalidCredentials):
			response.Unauthorized(c, "invalid register number or password")
		case errors.Is(err, portal.ErrUnavailable):
			response.ServiceUnavailable(c, "college portal unavailable")
		default:
			h.logger.Error("portal login", zap.Error(err))
			response.Internal(c, "login failed")
		}
		return
	}

	sess, err := h.sessions.Create(c.Request.Context(), *student, portalToken)
	if err != nil {
		h.logger.Error("create session", zap.Error(err))
		response.Internal(c, "failed to create session")
		return
	}

	token, err := h.jwt.Generate(sess.ID, student.RegisterNo)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	middleware.SetSessionCookie(c, h.cookieCfg, token)
	h.recordEvent(c, student.RegisterNo, audit.EventLogin)
	response.OK(c, TokenResponse{Token: token, Student: *student})
}

// Logout handles POST /auth/logout: destroys the session and clears the cookie.
func (h *Handler) Logout(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		response.Unauthorized(c, "missing session context")
		return
	}

	if err := h.sessions.Delete(c.Request.Context(), sess.ID); err != nil {
		h.logger.Error("delete session", zap.Error(err))
		response.Internal(c, "failed to log out")
		return
	}

	middleware.ClearSessionCookie(c, h.cookieCfg)
	h.recordEvent(c, sess.Student.RegisterNo, audit.EventLogout)
	response.OK(c, gin.H{"logged_out": true})
}

// Me handles GET /auth/me: the logged-in student's profile.
func (h *Handler) Me(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		response.Unauthorized(c, "missing session context")
		return
	}
	response.OK(c, sess.Student)
}

// recordEvent enqueues an audit event; failures are logged, never surfaced.
func (h *Handler) recordEvent(c *gin.Context, registerNo, event string) {
	err := h.queue.EnqueueAudit(c.Request.Context(), queue.AuditPayload{
		RegisterNo: registerNo,
		Event:      event,
		ClientIP:   c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
		OccurredAt: time.Now(),
	})
	if err != nil {
		h.logger.Warn("enqueue audit event", zap.String("event", event), zap.Error(err))
	}
}
