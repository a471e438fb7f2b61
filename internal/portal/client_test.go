package portal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFakePortal(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.RegisterNo != "URK21CS1001" || req.Password != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"token": "portal-token-abc",
			"student": map[string]interface{}{
				"register_no": "URK21CS1001",
				"name":        "Asha Varma",
				"program":     "B.Tech CSE",
				"semester":    5,
			},
		})
	})
	mux.HandleFunc("/attendance", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer portal-token-abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"attendance": []map[string]interface{}{
				{"course_code": "CS2101", "course_title": "Operating Systems", "component": "theory", "present": 38, "total": 45},
				{"course_code": "CS2102", "course_title": "Networks Lab", "component": "lab", "present": 10, "total": 16},
			},
		})
	})
	return httptest.NewServer(mux)
}

func TestLogin(t *testing.T) {
	srv := newFakePortal(t)
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, zap.NewNop())
	token, student, err := client.Login(context.Background(), "URK21CS1001", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "portal-token-abc", token)
	assert.Equal(t, "Asha Varma", student.Name)
	assert.Equal(t, "URK21CS1001", student.RegisterNo)
	assert.Equal(t, 5, student.Semester)
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv := newFakePortal(t)
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, zap.NewNop())
	_, _, err := client.Login(context.Background(), "URK21CS1001", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginPortalDown(t *testing.T) {
	srv := newFakePortal(t)
	srv.Close() // portal unreachable

	client := NewClient(srv.URL, time.Second, zap.NewNop())
	_, _, err := client.Login(context.Background(), "URK21CS1001", "hunter2")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestLoginPortalError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, zap.NewNop())
	_, _, err := client.Login(context.Background(), "URK21CS1001", "hunter2")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFetchAttendance(t *testing.T) {
	srv := newFakePortal(t)
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, zap.NewNop())
	rows, err := client.FetchAttendance(context.Background(), "portal-token-abc")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "CS2101", rows[0].CourseCode)
	assert.Equal(t, 38, rows[0].Present)
	assert.Equal(t, 45, rows[0].Total)
	assert.Equal(t, "lab", rows[1].Component)
}

func TestFetchAttendanceExpiredToken(t *testing.T) {
	srv := newFakePortal(t)
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, zap.NewNop())
	_, err := client.FetchAttendance(context.Background(), "stale-token")
	assert.ErrorIs(t, err, ErrSessionExpired)
}
