package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/univista/sis-api/internal/models"
)

func roleContext(rec *httptest.ResponseRecorder, role models.UserRole) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/faculty/dashboard", nil)
	c.Set(ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: role})
	return c
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	rec := httptest.NewRecorder()
	c := roleContext(rec, models.RoleFaculty)

	RequireRoles(models.RoleFaculty)(c)

	assert.False(t, c.IsAborted())
}

func TestRequireRolesBlocksOtherRole(t *testing.T) {
	rec := httptest.NewRecorder()
	c := roleContext(rec, models.RoleStudent)

	RequireRoles(models.RoleFaculty)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRolesBlocksUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/faculty/dashboard", nil)

	RequireRoles(models.RoleFaculty)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
