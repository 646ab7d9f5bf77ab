package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	appctx "planora/internal/core/context"
	"planora/internal/core/id"
	"planora/internal/core/role"
)

type fakeVerifier struct {
	ident *appctx.Identity
	err   error
}

func (v *fakeVerifier) Verify(string) (*appctx.Identity, error) {
	return v.ident, v.err
}

func newAuthRouter(verifier TokenVerifier, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	handlers := append([]gin.HandlerFunc{Auth(verifier)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		ident := appctx.GetIdentity(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"userId": ident.UserID.String()})
	})
	r.GET("/protected", handlers...)
	return r
}

func TestAuth_MissingHeader(t *testing.T) {
	r := newAuthRouter(&fakeVerifier{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_MalformedHeader(t *testing.T) {
	r := newAuthRouter(&fakeVerifier{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "not-a-bearer-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	r := newAuthRouter(&fakeVerifier{err: errors.New("expired")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuth_ValidTokenInstallsIdentity(t *testing.T) {
	ident := &appctx.Identity{UserID: id.New(), Role: role.Entrepreneur}
	r := newAuthRouter(&fakeVerifier{ident: ident})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ident.UserID.String())
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		callerRole role.Role
		allowed    []role.Role
		wantStatus int
	}{
		{"allowed role passes", role.SuperAdmin, []role.Role{role.SuperAdmin}, http.StatusOK},
		{"one of several", role.Collaborator, []role.Role{role.Entrepreneur, role.Collaborator}, http.StatusOK},
		{"wrong role rejected", role.Customer, []role.Role{role.SuperAdmin}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ident := &appctx.Identity{UserID: id.New(), Role: tt.callerRole}
			r := newAuthRouter(&fakeVerifier{ident: ident}, RequireRole(tt.allowed...))

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer token")
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestOptionalAuth_AnonymousPasses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/public", OptionalAuth(&fakeVerifier{err: errors.New("bad")}), func(c *gin.Context) {
		assert.Nil(t, appctx.GetIdentity(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
