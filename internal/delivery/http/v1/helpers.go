package v1

import (
	"github.com/gin-gonic/gin"

	"quickfolio-backend/internal/domain"
)

// currentUser returns the subject the auth middleware stored. Handlers pass
// c.Request.Context() to usecases: the middleware puts the typed user key
// there, and gin.Context.Value only resolves string keys.
func currentUser(c *gin.Context) string {
	return c.GetString(string(domain.KeyUserID))
}
