package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"quickfolio-backend/internal/delivery/http/middleware"
	"quickfolio-backend/internal/delivery/http/response"
	"quickfolio-backend/internal/domain"
	"quickfolio-backend/internal/notify"
	"quickfolio-backend/internal/preview"
	"quickfolio-backend/pkg/apperror"
	"quickfolio-backend/pkg/logger"
)

type WizardHandler struct {
	wizardUC domain.WizardUsecase
	hub      *notify.Hub
	upgrader websocket.Upgrader
}

type StartWizardRequest struct {
	// Template preselected from the landing page (?template= on the frontend).
	Template string `json:"template"`
}

type SelectTemplateRequest struct {
	TemplateID string `json:"template_id" binding:"required"`
}

type SubmitWizardRequest struct {
	Intent domain.SubmitIntent `json:"intent" binding:"required,oneof=publish draft"`
}

func NewWizardHandler(r *gin.RouterGroup, wizardUC domain.WizardUsecase, hub *notify.Hub, allowedOrigins ...string) {
	handler := &WizardHandler{
		wizardUC: wizardUC,
		hub:      hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}

	wizard := r.Group("/wizard")
	{
		wizard.POST("", handler.Start)
		wizard.GET("/:id", handler.Get)
		wizard.DELETE("/:id", handler.Discard)
		wizard.POST("/:id/next", handler.Advance)
		wizard.POST("/:id/back", handler.Retreat)
		wizard.PUT("/:id/template", handler.SelectTemplate)
		wizard.POST("/:id/hint", handler.ApplyHint)
		wizard.PATCH("/:id/content", handler.UpdateContent)
		wizard.POST("/:id/generate", middleware.RateLimitMiddleware(middleware.GenerateRateLimitConfig()), handler.Generate)
		wizard.POST("/:id/submit", handler.Submit)
		wizard.GET("/:id/preview", handler.Preview)
		wizard.GET("/:id/preview/html", handler.PreviewHTML)
		if hub != nil {
			wizard.GET("/:id/ws", handler.Notifications)
		}
	}
}

// Start godoc
// @Summary      Start a portfolio wizard
// @Description  Opens a new wizard session. A known template hint preselects the template and skips to step 2.
// @Tags         wizard
// @Accept       json
// @Produce      json
// @Param        request  body      StartWizardRequest  false  "Optional template hint"
// @Success      201      {object}  response.Response{data=domain.WizardView}
// @Failure      401      {object}  response.Response
// @Router       /wizard [post]
// @Security     BearerAuth
func (h *WizardHandler) Start(c *gin.Context) {
	var req StartWizardRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperror.BadRequest(err.Error()))
			return
		}
	}
	if req.Template == "" {
		req.Template = c.Query("template")
	}

	view, err := h.wizardUC.Start(c.Request.Context(), currentUser(c), strings.TrimSpace(req.Template))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Wizard started", view)
}

// Get godoc
// @Summary      Get wizard state
// @Tags         wizard
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.Response{data=domain.WizardView}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /wizard/{id} [get]
// @Security     BearerAuth
func (h *WizardHandler) Get(c *gin.Context) {
	view, err := h.wizardUC.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Wizard state", view)
}

// Advance godoc
// @Summary      Go to the next step
// @Description  Runs the current step's gate. A failed gate returns 400 with the offending field and notices.
// @Tags         wizard
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.Response{data=domain.WizardView}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Failure      410  {object}  response.Response
// @Router       /wizard/{id}/next [post]
// @Security     BearerAuth
func (h *WizardHandler) Advance(c *gin.Context) {
	view, err := h.wizardUC.Advance(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Moved to "+view.StepName, view)
}

// Retreat godoc
// @Summary      Go to the previous step
// @Tags         wizard
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.Response{data=domain.WizardView}
// @Failure      409  {object}  response.Response
// @Router       /wizard/{id}/back [post]
// @Security     BearerAuth
func (h *WizardHandler) Retreat(c *gin.Context) {
	view, err := h.wizardUC.Retreat(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Moved to "+view.StepName, view)
}

// SelectTemplate godoc
// @Summary      Choose a template explicitly
// @Tags         wizard
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true  "Session ID"
// @Param        request  body      SelectTemplateRequest  true  "Template"
// @Success      200      {object}  response.Response{data=domain.WizardView}
// @Failure      400      {object}  response.Response
// @Router       /wizard/{id}/template [put]
// @Security     BearerAuth
func (h *WizardHandler) SelectTemplate(c *gin.Context) {
	var req SelectTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	view, err := h.wizardUC.SelectTemplate(c.Request.Context(), currentUser(c), c.Param("id"), req.TemplateID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Template selected", view)
}

// ApplyHint godoc
// @Summary      Apply a template hint
// @Description  Only the first hint for a session takes effect; unknown templates are ignored.
// @Tags         wizard
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true  "Session ID"
// @Param        request  body      SelectTemplateRequest  true  "Template"
// @Success      200      {object}  response.Response{data=domain.WizardView}
// @Router       /wizard/{id}/hint [post]
// @Security     BearerAuth
func (h *WizardHandler) ApplyHint(c *gin.Context) {
	var req SelectTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	view, err := h.wizardUC.ApplyTemplateHint(c.Request.Context(), currentUser(c), c.Param("id"), req.TemplateID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Hint applied", view)
}

// UpdateContent godoc
// @Summary      Update wizard content
// @Description  Partial update: only fields present in the body change.
// @Tags         wizard
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Session ID"
// @Param        request  body      domain.ContentPatch  true  "Fields to change"
// @Success      200      {object}  response.Response{data=domain.WizardView}
// @Failure      400      {object}  response.Response
// @Router       /wizard/{id}/content [patch]
// @Security     BearerAuth
func (h *WizardHandler) UpdateContent(c *gin.Context) {
	var patch domain.ContentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	view, err := h.wizardUC.UpdateContent(c.Request.Context(), currentUser(c), c.Param("id"), patch)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Content updated", view)
}

// Generate godoc
// @Summary      Generate content for the chosen profession
// @Description  Fills about, skills, experience and projects. Progress notices are also pushed over the session websocket.
// @Tags         wizard
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.Response{data=domain.WizardView}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /wizard/{id}/generate [post]
// @Security     BearerAuth
func (h *WizardHandler) Generate(c *gin.Context) {
	view, err := h.wizardUC.Generate(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Content generated", view)
}

// Submit godoc
// @Summary      Publish or save the portfolio as a draft
// @Tags         wizard
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Session ID"
// @Param        request  body      SubmitWizardRequest  true  "publish or draft"
// @Success      200      {object}  response.Response{data=domain.WizardView}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      410      {object}  response.Response
// @Router       /wizard/{id}/submit [post]
// @Security     BearerAuth
func (h *WizardHandler) Submit(c *gin.Context) {
	var req SubmitWizardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	view, err := h.wizardUC.Submit(c.Request.Context(), currentUser(c), c.Param("id"), req.Intent)
	if err != nil {
		c.Error(err)
		return
	}

	message := "Draft saved"
	if req.Intent == domain.IntentPublish {
		message = "Portfolio published"
	}
	response.Success(c, http.StatusOK, message, view)
}

// Preview godoc
// @Summary      Render the live preview document
// @Description  Structured layout of the current record in the current template.
// @Tags         wizard
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.Response{data=preview.Document}
// @Router       /wizard/{id}/preview [get]
// @Security     BearerAuth
func (h *WizardHandler) Preview(c *gin.Context) {
	state, err := h.wizardUC.Preview(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Preview", preview.Render(state.Record.TemplateID, state.Record))
}

// PreviewHTML godoc
// @Summary      Render the live preview as a standalone page
// @Tags         wizard
// @Produce      html
// @Param        id   path      string  true  "Session ID"
// @Success      200  {string}  string  "HTML page"
// @Router       /wizard/{id}/preview/html [get]
// @Security     BearerAuth
func (h *WizardHandler) PreviewHTML(c *gin.Context) {
	state, err := h.wizardUC.Preview(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	page, err := preview.RenderHTML(state.Record.TemplateID, state.Record, nil)
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// Discard godoc
// @Summary      Abandon a wizard session
// @Tags         wizard
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.Response
// @Router       /wizard/{id} [delete]
// @Security     BearerAuth
func (h *WizardHandler) Discard(c *gin.Context) {
	if err := h.wizardUC.Discard(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Wizard discarded", nil)
}

// Notifications godoc
// @Summary      Subscribe to wizard notices
// @Description  Websocket stream of toast notices (generation progress, publish result) for one session.
// @Tags         wizard
// @Param        id            path   string  true   "Session ID"
// @Param        access_token  query  string  false  "JWT for browsers that cannot set headers"
// @Success      101
// @Router       /wizard/{id}/ws [get]
// @Security     BearerAuth
func (h *WizardHandler) Notifications(c *gin.Context) {
	sessionID := c.Param("id")
	if _, err := h.wizardUC.Get(c.Request.Context(), currentUser(c), sessionID); err != nil {
		c.Error(err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		logger.Log.Warn("websocket upgrade failed", "session_id", sessionID, "error", err)
		return
	}
	h.hub.Serve(conn, sessionID)
}

// originChecker admits same-origin requests and the configured frontends.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(o, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if set[origin] {
			return true
		}
		return origin == "http://"+r.Host || origin == "https://"+r.Host
	}
}
