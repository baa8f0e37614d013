package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitRejectsOverLimit(t *testing.T) {
	handler := RateLimit(RateLimitConfig{
		RequestLimit: 2,
		WindowSize:   time.Minute,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/orgs/org-1/views/tasks", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestKeyByOrgSeparatesOrganizations(t *testing.T) {
	handler := RateLimit(RateLimitConfig{
		RequestLimit: 1,
		WindowSize:   time.Minute,
		KeyFunc:      KeyByOrg,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, org := range []string{"org-1", "org-2"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orgs/"+org+"/views/tasks", nil))
		assert.Equal(t, http.StatusOK, rec.Code, org)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orgs/org-1/views/kits", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestOrgFromPath(t *testing.T) {
	assert.Equal(t, "org-1", orgFromPath("/orgs/org-1/tasks"))
	assert.Equal(t, "org-1", orgFromPath("/orgs/org-1"))
	assert.Equal(t, "", orgFromPath("/orgs/"))
	assert.Equal(t, "", orgFromPath("/invalidate"))
}
