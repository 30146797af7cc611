package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"teenpay-backend/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingAuditService records entries for assertions.
type capturingAuditService struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func (s *capturingAuditService) Log(_ context.Context, entry *domain.AuditLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
}

func (s *capturingAuditService) Entries() []*domain.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.AuditLog(nil), s.entries...)
}

func newAuditRouter(svc *capturingAuditService) *gin.Engine {
	router := gin.New()
	router.Use(AuditLog(svc))
	v1 := router.Group("/api/v1")
	v1.POST("/auth/login", func(c *gin.Context) {
		c.Set(CtxUserID, uuid.New())
		c.JSON(200, gin.H{"ok": true})
	})
	v1.POST("/topup-requests/:id/approve", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	v1.POST("/auth/register", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nope"})
	})
	v1.GET("/receipts", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	return router
}

func TestAuditLog_RecordsWriteOperations(t *testing.T) {
	svc := &capturingAuditService{}
	router := newAuditRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, svc.Entries(), 1)
	entry := svc.Entries()[0]
	assert.Equal(t, domain.AuditActionLogin, entry.Action)
	assert.Equal(t, "session", entry.ResourceType)
	assert.NotNil(t, entry.UserID)
	assert.Contains(t, entry.Details, "/api/v1/auth/login")
}

func TestAuditLog_ResolvesRouteTemplates(t *testing.T) {
	svc := &capturingAuditService{}
	router := newAuditRouter(svc)

	w := httptest.NewRecorder()
	path := "/api/v1/topup-requests/" + uuid.NewString() + "/approve"
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, svc.Entries(), 1)
	assert.Equal(t, domain.AuditActionTopupApprove, svc.Entries()[0].Action)
}

func TestAuditLog_SkipsFailedAndReadRequests(t *testing.T) {
	svc := &capturingAuditService{}
	router := newAuditRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/receipts", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Empty(t, svc.Entries())
}
