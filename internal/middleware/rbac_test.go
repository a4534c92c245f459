package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/edulane/sims-api/internal/models"
)

func performRBAC(t *testing.T, claims *models.JWTClaims, paramID string, allowed ...string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/resource/"+paramID, nil)
	if paramID != "" {
		c.Params = gin.Params{{Key: "id", Value: paramID}}
	}
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}
	RBAC(allowed...)(c)
	if !c.IsAborted() {
		c.Status(http.StatusOK)
	}
	return w
}

func TestRBACAllowsMatchingRole(t *testing.T) {
	w := performRBAC(t, &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}, "x", "ADMIN")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRBACRejectsOtherRole(t *testing.T) {
	w := performRBAC(t, &models.JWTClaims{UserID: "u1", Role: models.RoleStudent}, "x", "ADMIN")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRBACSuperAdminAlwaysPasses(t *testing.T) {
	w := performRBAC(t, &models.JWTClaims{UserID: "u1", Role: models.RoleSuperAdmin}, "x", "ADMIN")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRBACSelfMatchesOwnID(t *testing.T) {
	w := performRBAC(t, &models.JWTClaims{UserID: "u1", Role: models.RoleStudent}, "u1", "ADMIN", "SELF")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRBACSelfRejectsOtherID(t *testing.T) {
	w := performRBAC(t, &models.JWTClaims{UserID: "u1", Role: models.RoleStudent}, "u2", "ADMIN", "SELF")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRBACMissingClaims(t *testing.T) {
	w := performRBAC(t, nil, "x", "ADMIN")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
