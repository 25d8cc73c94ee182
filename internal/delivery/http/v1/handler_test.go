package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickfolio-backend/internal/catalog"
	"quickfolio-backend/internal/delivery/http/middleware"
	v1 "quickfolio-backend/internal/delivery/http/v1"
	"quickfolio-backend/internal/domain"
	"quickfolio-backend/internal/generator"
	"quickfolio-backend/internal/preview"
	"quickfolio-backend/internal/repository/session"
	"quickfolio-backend/internal/usecase"
	"quickfolio-backend/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type stubPublisher struct {
	calls int
}

func (p *stubPublisher) Publish(_ context.Context, _ string, record domain.ContentRecord, intent domain.SubmitIntent) (*domain.PublishResult, error) {
	p.calls++
	return &domain.PublishResult{
		PortfolioID: "p1",
		Slug:        "jane-doe",
		Published:   intent == domain.IntentPublish,
		URL:         "jane-doe.quickfolio.xyz",
	}, nil
}

// testUser stands in for the auth middleware: X-Test-User becomes the caller.
func testUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Test-User")
		if id == "" {
			c.Next()
			return
		}
		c.Set(string(domain.KeyUserID), id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), domain.KeyUserID, id))
		c.Next()
	}
}

func newTestRouter(pub domain.Publisher, probes map[string]usecase.Probe) *gin.Engine {
	templates := catalog.Default()
	wizardUC := usecase.NewWizardUsecase(
		session.NewMemoryStore(time.Hour),
		templates,
		generator.NewSimulated(0),
		pub,
		nil,
		validation.New(),
		usecase.WizardConfig{SessionTTL: time.Hour},
		nil,
	)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())
	api := r.Group("/v1")
	v1.NewHealthHandler(api, usecase.NewHealthUsecase(probes))
	v1.NewTemplateHandler(api, usecase.NewTemplateUsecase(templates))

	protected := api.Group("")
	protected.Use(testUser())
	v1.NewWizardHandler(protected, wizardUC, nil)
	return r
}

func do(t *testing.T, r http.Handler, method, path, user string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func wizardView(t *testing.T, env envelope) domain.WizardView {
	t.Helper()
	var view domain.WizardView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	return view
}

func TestWizardHandler_Flow(t *testing.T) {
	pub := &stubPublisher{}
	r := newTestRouter(pub, nil)

	w, env := do(t, r, http.MethodPost, "/v1/wizard?template=bento", "user1", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	view := wizardView(t, env)
	sid := view.SessionID
	require.NotEmpty(t, sid)
	assert.Equal(t, 2, view.Step)
	base := "/v1/wizard/" + sid

	t.Run("other users are refused", func(t *testing.T) {
		w, _ := do(t, r, http.MethodGet, base, "user2", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown session is 404", func(t *testing.T) {
		w, _ := do(t, r, http.MethodGet, "/v1/wizard/nope", "user1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad profession is rejected", func(t *testing.T) {
		w, _ := do(t, r, http.MethodPatch, base+"/content", "user1", map[string]string{"profession": "astronaut"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("content, generate and advance", func(t *testing.T) {
		w, _ := do(t, r, http.MethodPatch, base+"/content", "user1", map[string]string{
			"name":       "Jane Doe",
			"profession": "developer",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w, env := do(t, r, http.MethodPost, base+"/next", "user1", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, 3, wizardView(t, env).Step)

		w, env = do(t, r, http.MethodPost, base+"/generate", "user1", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.NotEmpty(t, wizardView(t, env).Record.Skills)
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Limit"))

		w, env = do(t, r, http.MethodPost, base+"/next", "user1", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, 4, wizardView(t, env).Step)
	})

	t.Run("preview document", func(t *testing.T) {
		w, env := do(t, r, http.MethodGet, base+"/preview", "user1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var doc preview.Document
		require.NoError(t, json.Unmarshal(env.Data, &doc))
		assert.Equal(t, "bento", doc.TemplateID)
		assert.NotEmpty(t, doc.Sections)
	})

	t.Run("preview html", func(t *testing.T) {
		w, _ := do(t, r, http.MethodGet, base+"/preview/html", "user1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "Jane Doe")
	})

	t.Run("submit requires a valid intent", func(t *testing.T) {
		w, _ := do(t, r, http.MethodPost, base+"/submit", "user1", map[string]string{"intent": "later"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, pub.calls)
	})

	t.Run("submit publishes once", func(t *testing.T) {
		w, env := do(t, r, http.MethodPost, base+"/submit", "user1", map[string]string{"intent": "publish"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Portfolio published", env.Message)
		view := wizardView(t, env)
		assert.True(t, view.Done)
		require.NotNil(t, view.Result)
		assert.Equal(t, "p1", view.Result.PortfolioID)

		w, _ = do(t, r, http.MethodPost, base+"/back", "user1", nil)
		assert.Equal(t, http.StatusGone, w.Code)
		assert.Equal(t, 1, pub.calls)
	})
}

func TestWizardHandler_GateFailure(t *testing.T) {
	r := newTestRouter(&stubPublisher{}, nil)

	w, env := do(t, r, http.MethodPost, "/v1/wizard", "user1", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	sid := wizardView(t, env).SessionID

	w, env = do(t, r, http.MethodPost, "/v1/wizard/"+sid+"/next", "user1", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please enter a portfolio name before proceeding.", env.Message)

	var details map[string]any
	require.NoError(t, json.Unmarshal(env.Error, &details))
	assert.Equal(t, "name", details["field"])
}

func TestWizardHandler_RequiresUser(t *testing.T) {
	r := newTestRouter(&stubPublisher{}, nil)

	w, _ := do(t, r, http.MethodPost, "/v1/wizard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTemplateHandler(t *testing.T) {
	r := newTestRouter(&stubPublisher{}, nil)

	t.Run("list all", func(t *testing.T) {
		w, env := do(t, r, http.MethodGet, "/v1/templates", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var list []domain.TemplateDescriptor
		require.NoError(t, json.Unmarshal(env.Data, &list))
		assert.Len(t, list, 4)
	})

	t.Run("filter by category", func(t *testing.T) {
		w, env := do(t, r, http.MethodGet, "/v1/templates?category=developer", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var list []domain.TemplateDescriptor
		require.NoError(t, json.Unmarshal(env.Data, &list))
		require.Len(t, list, 2)
		assert.Equal(t, domain.TemplateID("minimalist"), list[0].ID)
	})

	t.Run("unknown template", func(t *testing.T) {
		w, _ := do(t, r, http.MethodGet, "/v1/templates/retro", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHealthHandler(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		r := newTestRouter(&stubPublisher{}, map[string]usecase.Probe{
			"database": func(context.Context) error { return nil },
			"redis":    nil,
		})
		w, env := do(t, r, http.MethodGet, "/v1/health", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var status map[string]string
		require.NoError(t, json.Unmarshal(env.Data, &status))
		assert.Equal(t, "ok", status["database"])
		assert.Equal(t, "disabled", status["redis"])
	})

	t.Run("degraded", func(t *testing.T) {
		r := newTestRouter(&stubPublisher{}, map[string]usecase.Probe{
			"database": func(context.Context) error { return errors.New("refused") },
		})
		w, env := do(t, r, http.MethodGet, "/v1/health", "", nil)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "System degraded", env.Message)
	})
}
