package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"quickfolio-backend/config"
	"quickfolio-backend/internal/delivery/http/response"
	"quickfolio-backend/internal/domain"
	"quickfolio-backend/pkg/apperror"
	"quickfolio-backend/pkg/audit"
	"quickfolio-backend/pkg/auth"
	"quickfolio-backend/pkg/logger"
)

// AuthMiddleware verifies the Supabase access token and puts the caller's
// identity on both the gin context and the request context, so usecases can
// read it through ctx.Value.
func AuthMiddleware(jwksProvider *auth.Provider, cfg *config.Config, authUC domain.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
				if cfg.SupabaseJWTSecret == "" {
					return nil, fmt.Errorf("HS256 token received but SUPABASE_JWT_SECRET is not configured")
				}
				return []byte(cfg.SupabaseJWTSecret), nil
			}
			if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
				if jwksProvider == nil {
					return nil, fmt.Errorf("RS256 token received but SUPABASE_URL is not configured")
				}
				return jwksProvider.KeyFunc(token)
			}
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		})
		if err != nil || !token.Valid {
			logger.Log.Warn("token validation failed", "error", err, "ip", c.ClientIP())
			audit.Default().Log(c.Request.Context(), audit.Event{
				Action:    audit.ActionUnauthorized,
				IP:        c.ClientIP(),
				RequestID: c.GetString(string(domain.KeyRequestID)),
				Details:   map[string]any{"path": c.FullPath()},
			})
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Invalid claims", nil)
			c.Abort()
			return
		}
		sub, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		if sub == "" {
			response.Error(c, http.StatusUnauthorized, "Invalid claims", nil)
			c.Abort()
			return
		}

		ctx := context.WithValue(c.Request.Context(), domain.KeyUserID, sub)
		ctx = context.WithValue(ctx, domain.KeyUserEmail, email)

		// The role comes from the local users table, never from the token:
		// Supabase sets it to "authenticated" for everyone.
		role, err := resolveRole(ctx, authUC, sub, email)
		if err != nil {
			logger.Log.Error("user sync failed", "user_id", sub, "error", err)
			response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
			c.Abort()
			return
		}
		ctx = context.WithValue(ctx, domain.KeyUserRole, role)
		c.Request = c.Request.WithContext(ctx)

		c.Set(string(domain.KeyUserID), sub)
		c.Set(string(domain.KeyUserEmail), email)
		c.Set(string(domain.KeyUserRole), role)

		c.Next()
	}
}

// resolveRole loads the caller, creating the local row on first sight.
func resolveRole(ctx context.Context, authUC domain.AuthUsecase, sub, email string) (string, error) {
	user, err := authUC.GetCurrentUser(ctx, sub)
	if err == nil {
		return user.Role, nil
	}

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != http.StatusNotFound {
		return "", err
	}

	fresh := &domain.User{ID: sub, Email: email}
	if err := authUC.EnsureUserExists(ctx, fresh); err != nil {
		return "", err
	}
	return fresh.Role, nil
}

// bearerToken reads the header first, then the auth_token cookie. WebSocket
// handshakes cannot carry headers from a browser, so upgrades may also pass
// ?access_token=.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := c.Cookie("auth_token"); err == nil && cookie != "" {
		return cookie
	}
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return c.Query("access_token")
	}
	return ""
}
