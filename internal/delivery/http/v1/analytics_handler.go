package v1

import (
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"quickfolio-backend/internal/delivery/http/middleware"
	"quickfolio-backend/internal/delivery/http/response"
	"quickfolio-backend/internal/domain"
	"quickfolio-backend/pkg/apperror"
)

type AnalyticsHandler struct {
	analyticsUC domain.AnalyticsUsecase
}

func NewAnalyticsHandler(public, protected *gin.RouterGroup, analyticsUC domain.AnalyticsUsecase) {
	handler := &AnalyticsHandler{analyticsUC: analyticsUC}

	// The tracking beacon runs on published sites, without a session.
	public.POST("/analytics/track", middleware.RateLimitMiddleware(middleware.TrackRateLimitConfig()), handler.Track)

	p := protected.Group("/portfolios/:id/analytics")
	{
		p.GET("", handler.Summary)
		p.GET("/report", handler.Report)
	}
}

// Track godoc
// @Summary      Record a visitor event
// @Tags         analytics
// @Accept       json
// @Produce      json
// @Param        request  body      domain.AnalyticsEvent  true  "Event"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Router       /analytics/track [post]
func (h *AnalyticsHandler) Track(c *gin.Context) {
	var event domain.AnalyticsEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}
	if event.UserAgent == "" {
		event.UserAgent = c.GetHeader("User-Agent")
	}
	if event.Referrer == "" {
		event.Referrer = c.GetHeader("Referer")
	}

	if err := h.analyticsUC.Track(c.Request.Context(), &event); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Event tracked", nil)
}

// Summary godoc
// @Summary      Portfolio analytics
// @Tags         analytics
// @Produce      json
// @Param        id   path      string  true  "Portfolio ID"
// @Success      200  {object}  response.Response{data=domain.AnalyticsSummary}
// @Failure      403  {object}  response.Response
// @Router       /portfolios/{id}/analytics [get]
// @Security     BearerAuth
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	summary, err := h.analyticsUC.Summary(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Analytics", summary)
}

// Report godoc
// @Summary      Download the analytics report
// @Tags         analytics
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id      path   string  true   "Portfolio ID"
// @Param        format  query  string  false  "xlsx (default) or csv"
// @Success      200     {file}  file
// @Failure      400     {object}  response.Response
// @Router       /portfolios/{id}/analytics/report [get]
// @Security     BearerAuth
func (h *AnalyticsHandler) Report(c *gin.Context) {
	data, filename, err := h.analyticsUC.ExportReport(c.Request.Context(), currentUser(c), c.Param("id"), c.Query("format"))
	if err != nil {
		c.Error(err)
		return
	}

	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if filepath.Ext(filename) == ".csv" {
		contentType = "text/csv"
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Data(http.StatusOK, contentType, data)
}
