package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quickfolio-backend/internal/delivery/http/response"
	"quickfolio-backend/internal/domain"
)

// AuthHandler exposes the caller's local account. Sign-up and login happen
// against Supabase directly; the auth middleware mirrors users on first use.
type AuthHandler struct {
	authUC domain.AuthUsecase
}

func NewAuthHandler(r *gin.RouterGroup, authUC domain.AuthUsecase) {
	handler := &AuthHandler{authUC: authUC}

	auth := r.Group("/auth")
	{
		auth.GET("/me", handler.Me)
		auth.POST("/sync", handler.Sync)
	}
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
// @Security     BearerAuth
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authUC.GetCurrentUser(c.Request.Context(), currentUser(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Current user", user)
}

// Sync godoc
// @Summary      Refresh the local user from the token
// @Description  Updates the stored email when it changed in Supabase.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.User}
// @Router       /auth/sync [post]
// @Security     BearerAuth
func (h *AuthHandler) Sync(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUser(c)

	err := h.authUC.EnsureUserExists(ctx, &domain.User{
		ID:    userID,
		Email: c.GetString(string(domain.KeyUserEmail)),
	})
	if err != nil {
		c.Error(err)
		return
	}

	user, err := h.authUC.GetCurrentUser(ctx, userID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User synced", user)
}
