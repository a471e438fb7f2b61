// Package portal is the HTTP client for the third-party college portal that
// owns authentication and attendance data. This service never implements
// either itself; it forwards credentials and reads back per-course counts.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/attendix/backend/internal/models"
)

var (
	// ErrInvalidCredentials means the portal rejected the register number / password pair.
	ErrInvalidCredentials = errors.New("invalid register number or password")
	// ErrSessionExpired means the portal no longer accepts the bearer token.
	ErrSessionExpired = errors.New("portal session expired")
	// ErrUnavailable means the portal could not be reached or did not answer in time.
	ErrUnavailable = errors.New("portal unavailable")
)

// Client calls the college portal API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a portal client with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type loginRequest struct {
	RegisterNo string `json:"register_no"`
	Password   string `json:"password"`
}

type loginResponse struct {
	Token   string                `json:"token"`
	Student models.StudentProfile `json:"student"`
}

// Login forwards credentials to the portal and returns its bearer token plus
// the student profile. Credentials are never stored, only forwarded.
func (c *Client) Login(ctx context.Context, registerNo, password string) (string, *models.StudentProfile, error) {
	body, err := json.Marshal(loginRequest{RegisterNo: registerNo, Password: password})
	if err != nil {
		return "", nil, fmt.Errorf("marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return "", nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", nil, ErrInvalidCredentials
	default:
		c.logger.Warn("portal login failed", zap.Int("status", resp.StatusCode))
		return "", nil, fmt.Errorf("%w: login status %d", ErrUnavailable, resp.StatusCode)
	}

	var out loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", nil, fmt.Errorf("decode login response: %w", err)
	}
	if out.Token == "" {
		return "", nil, fmt.Errorf("decode login response: empty token")
	}
	return out.Token, &out.Student, nil
}

type attendanceResponse struct {
	Attendance []models.CourseAttendance `json:"attendance"`
}

// FetchAttendance retrieves per-course-component attendance counts using the
// portal bearer token. A 401/403 means the token is no longer valid upstream.
func (c *Client) FetchAttendance(ctx context.Context, token string) ([]models.CourseAttendance, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/attendance", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrSessionExpired
	default:
		c.logger.Warn("portal attendance fetch failed", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: attendance status %d", ErrUnavailable, resp.StatusCode)
	}

	var out attendanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode attendance response: %w", err)
	}
	return out.Attendance, nil
}
