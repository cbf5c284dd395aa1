package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adobah666/edutrack-sub001/internal/models"
	appErrors "github.com/adobah666/edutrack-sub001/pkg/errors"
)

type tokenStub struct {
	claims *models.JWTClaims
	err    error
	seen   string
}

func (s *tokenStub) ValidateToken(token string) (*models.JWTClaims, error) {
	s.seen = token
	return s.claims, s.err
}

type auditSink struct {
	logs []models.AuditLog
	err  error
}

func (s *auditSink) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.logs = append(s.logs, *log)
	return s.err
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		caller := CallerFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user": caller.UserID, "role": caller.Role})
	})
	r.GET("/students/:id", handlers...)
	return r
}

func perform(r http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWT(t *testing.T) {
	tokens := &tokenStub{claims: &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher}}
	r := newRouter(JWT(tokens))

	w := perform(r, "/students/s1", "Bearer abc")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", tokens.seen)
	assert.Contains(t, w.Body.String(), `"user":"teacher-1"`)

	assert.Equal(t, http.StatusUnauthorized, perform(r, "/students/s1", "").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, "/students/s1", "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, "/students/s1", "Bearer ").Code)

	tokens.err = appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	assert.Equal(t, http.StatusUnauthorized, perform(r, "/students/s1", "Bearer abc").Code)
}

func TestRBAC(t *testing.T) {
	claims := &models.JWTClaims{UserID: "s1", Role: models.RoleStudent}
	tokens := &tokenStub{claims: claims}
	r := newRouter(JWT(tokens), RBAC(string(models.RoleAdmin), "SELF"))

	assert.Equal(t, http.StatusOK, perform(r, "/students/s1", "Bearer t").Code)
	assert.Equal(t, http.StatusForbidden, perform(r, "/students/s2", "Bearer t").Code)

	claims.Role = models.RoleAdmin
	claims.UserID = "admin-1"
	assert.Equal(t, http.StatusOK, perform(r, "/students/s2", "Bearer t").Code)

	anonymous := newRouter(RequireRoles(models.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, perform(anonymous, "/students/s1", "").Code)
}

func TestAuditRecordsSuccessfulRequests(t *testing.T) {
	sink := &auditSink{}
	tokens := &tokenStub{claims: &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}}
	r := newRouter(JWT(tokens), Audit(sink, nil, models.AuditActionReportExport, "student", "id"))

	require.Equal(t, http.StatusOK, perform(r, "/students/s1?format=csv", "Bearer t").Code)
	require.Len(t, sink.logs, 1)
	assert.Equal(t, models.AuditActionReportExport, sink.logs[0].Action)
	require.NotNil(t, sink.logs[0].ResourceID)
	assert.Equal(t, "s1", *sink.logs[0].ResourceID)
	require.NotNil(t, sink.logs[0].UserID)
	assert.Equal(t, "admin-1", *sink.logs[0].UserID)
	assert.Contains(t, string(sink.logs[0].NewValues), "format=csv")

	sink.err = errors.New("insert failed")
	assert.Equal(t, http.StatusOK, perform(r, "/students/s1", "Bearer t").Code)

	denied := newRouter(RequireRoles(models.RoleAdmin), Audit(sink, nil, models.AuditActionReportExport, "student", "id"))
	before := len(sink.logs)
	perform(denied, "/students/s1", "")
	assert.Len(t, sink.logs, before)
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WithResponseMeta())
	var meta map[string]interface{}
	r.GET("/", func(c *gin.Context) {
		SetMeta(c, "approval_pending", true)
		meta = ExtractMeta(c)
		c.Status(http.StatusNoContent)
	})

	perform(r, "/", "")
	require.NotNil(t, meta)
	assert.Equal(t, true, meta["approval_pending"])
	assert.Contains(t, meta, "processing_time_ms")
}
