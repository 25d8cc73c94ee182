package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"quickfolio-backend/config"
	"quickfolio-backend/internal/delivery/http/middleware"
	"quickfolio-backend/internal/delivery/http/response"
	"quickfolio-backend/internal/domain"
	"quickfolio-backend/pkg/apperror"
)

const testSecret = "test-secret-with-enough-entropy"

func init() {
	gin.SetMode(gin.TestMode)
}

type MockAuthUsecase struct {
	mock.Mock
}

func (m *MockAuthUsecase) EnsureUserExists(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	if user.Role == "" {
		user.Role = "user"
	}
	return args.Error(0)
}

func (m *MockAuthUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func signToken(t *testing.T, sub string, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": sub + "@example.com",
		"exp":   time.Now().Add(expiresIn).Unix(),
	})
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// ============================================================================
// Auth
// ============================================================================

func newAuthRouter(authUC domain.AuthUsecase) *gin.Engine {
	r := gin.New()
	r.Use(middleware.AuthMiddleware(nil, &config.Config{SupabaseJWTSecret: testSecret}, authUC))
	r.GET("/whoami", func(c *gin.Context) {
		fromRequest, _ := c.Request.Context().Value(domain.KeyUserID).(string)
		c.JSON(http.StatusOK, gin.H{
			"gin":  c.GetString(string(domain.KeyUserID)),
			"ctx":  fromRequest,
			"role": c.GetString(string(domain.KeyUserRole)),
		})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("known user", func(t *testing.T) {
		authUC := new(MockAuthUsecase)
		authUC.On("GetCurrentUser", mock.Anything, "user1").Return(&domain.User{ID: "user1", Role: "admin"}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "user1", time.Hour))
		newAuthRouter(authUC).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"gin":"user1","ctx":"user1","role":"admin"}`, w.Body.String())
		authUC.AssertNotCalled(t, "EnsureUserExists", mock.Anything, mock.Anything)
	})

	t.Run("first request creates the local user", func(t *testing.T) {
		authUC := new(MockAuthUsecase)
		authUC.On("GetCurrentUser", mock.Anything, "user2").Return(nil, apperror.NotFound("User not found"))
		authUC.On("EnsureUserExists", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.ID == "user2" && u.Email == "user2@example.com"
		})).Return(nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: signToken(t, "user2", time.Hour)})
		newAuthRouter(authUC).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"gin":"user2","ctx":"user2","role":"user"}`, w.Body.String())
	})

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		newAuthRouter(new(MockAuthUsecase)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "user1", -time.Minute))
		newAuthRouter(new(MockAuthUsecase)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid token", decode(t, w).Message)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user1", "exp": time.Now().Add(time.Hour).Unix()})
		forged, err := token.SignedString([]byte("other-secret"))
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		newAuthRouter(new(MockAuthUsecase)).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("user lookup failure is a 500", func(t *testing.T) {
		authUC := new(MockAuthUsecase)
		authUC.On("GetCurrentUser", mock.Anything, "user3").Return(nil, apperror.Internal(errors.New("db down")))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "user3", time.Hour))
		newAuthRouter(authUC).ServeHTTP(w, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

// ============================================================================
// Error handler
// ============================================================================

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())
	r.GET("/app", func(c *gin.Context) {
		c.Error(apperror.BadRequest("Validation failed").WithDetails([]string{"Name is required"}))
	})
	r.GET("/raw", func(c *gin.Context) {
		c.Error(errors.New("pq: connection refused"))
	})

	t.Run("app error keeps code, message and details", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app", nil))

		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		assert.False(t, body.Success)
		assert.Equal(t, "Validation failed", body.Message)
		assert.Equal(t, []any{"Name is required"}, body.Error)
		assert.NotEmpty(t, body.RequestID)
		assert.Equal(t, body.RequestID, w.Header().Get("X-Request-ID"))
	})

	t.Run("unknown error is masked", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/raw", nil))

		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "pq:")
	})
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) {
		id, _ := c.Request.Context().Value(domain.KeyRequestID).(string)
		c.String(http.StatusOK, id)
	})

	t.Run("propagates a sane caller id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "trace-1234abcd")
		r.ServeHTTP(w, req)
		assert.Equal(t, "trace-1234abcd", w.Body.String())
	})

	t.Run("replaces junk", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "<script>")
		r.ServeHTTP(w, req)
		assert.Len(t, w.Body.String(), 36)
	})
}

// ============================================================================
// Rate limit, CORS, headers
// ============================================================================

func TestRateLimitMiddleware_InMemory(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Limit:     2,
		Window:    time.Minute,
		KeyPrefix: "rl:test:" + t.Name() + ":",
	}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
		if i == 2 {
			assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
			assert.NotEmpty(t, w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CORSMiddleware(middleware.CORSConfig{FrontendURL: "https://app.quickfolio.xyz", Production: true}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://app.quickfolio.xyz", true},
		{"https://quickfolio-git-main.vercel.app", true},
		{"https://evil-quickfolio.vercel.app", false},
		{"http://localhost:3000", false}, // production
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodOptions, "/", nil)
			req.Header.Set("Origin", tt.origin)
			r.ServeHTTP(w, req)

			if tt.allowed {
				assert.Equal(t, http.StatusNoContent, w.Code)
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Equal(t, http.StatusForbidden, w.Code)
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(middleware.SecurityHeadersMiddleware("https://app.quickfolio.xyz"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "frame-ancestors 'self' https://app.quickfolio.xyz")
}
