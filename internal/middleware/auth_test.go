package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lshigami/Ocelots/internal/model"
)

var secret = []byte("test-secret")

func signToken(t *testing.T, userID uint, role string, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &model.Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/teacher-only", Auth(secret), RequireRole(model.RoleTeacher), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c)})
	})
	return r
}

func request(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/teacher-only", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAcceptsValidToken(t *testing.T) {
	r := newRouter()
	w := request(r, "Bearer "+signToken(t, 7, model.RoleTeacher, time.Hour))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
}

func TestAuthRejectsMissingOrMalformedHeader(t *testing.T) {
	r := newRouter()
	for _, header := range []string{"", "Bearer", "Basic abc", "nonsense"} {
		if w := request(r, header); w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, w.Code)
		}
	}
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	r := newRouter()
	w := request(r, "Bearer "+signToken(t, 7, model.RoleTeacher, -time.Minute))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireRoleBlocksOtherRoles(t *testing.T) {
	r := newRouter()
	w := request(r, "Bearer "+signToken(t, 7, model.RoleStudent, time.Hour))
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}
