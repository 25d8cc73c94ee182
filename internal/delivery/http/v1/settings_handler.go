package v1

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"quickfolio-backend/internal/delivery/http/middleware"
	"quickfolio-backend/internal/delivery/http/response"
	"quickfolio-backend/internal/domain"
	"quickfolio-backend/pkg/apperror"
	"quickfolio-backend/pkg/security"
)

// maxUploadBytes caps what is read from a multipart part; the usecase
// enforces the real 5MB limit and reports it.
const maxUploadBytes = 5<<20 + 1

// SettingsHandler serves per-portfolio settings: custom domain, SEO and
// theme customization.
type SettingsHandler struct {
	domainUC        domain.DomainUsecase
	seoUC           domain.SEOUsecase
	customizationUC domain.CustomizationUsecase
}

func NewSettingsHandler(r *gin.RouterGroup, domainUC domain.DomainUsecase, seoUC domain.SEOUsecase, customizationUC domain.CustomizationUsecase) {
	handler := &SettingsHandler{
		domainUC:        domainUC,
		seoUC:           seoUC,
		customizationUC: customizationUC,
	}

	p := r.Group("/portfolios/:id")
	{
		p.GET("/domain", handler.GetDomain)
		p.POST("/domain", handler.AddDomain)
		p.DELETE("/domain", handler.RemoveDomain)

		p.GET("/seo", handler.GetSEO)
		p.PUT("/seo", handler.UpdateSEO)
		p.POST("/seo/og-image", middleware.RateLimitMiddleware(middleware.UploadRateLimitConfig()), handler.UploadOGImage)

		p.GET("/customization", handler.GetCustomization)
		p.PUT("/customization", handler.UpdateCustomization)
		p.DELETE("/customization", handler.ResetCustomization)
	}
}

// GetDomain godoc
// @Summary      Custom domain status
// @Tags         settings
// @Produce      json
// @Param        id   path      string  true  "Portfolio ID"
// @Success      200  {object}  response.Response{data=domain.DomainState}
// @Router       /portfolios/{id}/domain [get]
// @Security     BearerAuth
func (h *SettingsHandler) GetDomain(c *gin.Context) {
	state, err := h.domainUC.Status(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Domain status", state)
}

// AddDomain godoc
// @Summary      Attach a custom domain
// @Description  Returns the DNS records the owner must create.
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        id       path      string                   true  "Portfolio ID"
// @Param        request  body      domain.AddDomainRequest  true  "Hostname"
// @Success      200      {object}  response.Response{data=domain.AddDomainResult}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /portfolios/{id}/domain [post]
// @Security     BearerAuth
func (h *SettingsHandler) AddDomain(c *gin.Context) {
	var req domain.AddDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Domain is required"))
		return
	}

	res, err := h.domainUC.Add(c.Request.Context(), currentUser(c), c.Param("id"), req.Domain)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, res.Message, res)
}

// RemoveDomain godoc
// @Summary      Detach the custom domain
// @Tags         settings
// @Produce      json
// @Param        id   path      string  true  "Portfolio ID"
// @Success      200  {object}  response.Response
// @Router       /portfolios/{id}/domain [delete]
// @Security     BearerAuth
func (h *SettingsHandler) RemoveDomain(c *gin.Context) {
	if err := h.domainUC.Remove(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Domain removed successfully", nil)
}

// GetSEO godoc
// @Summary      SEO settings
// @Tags         settings
// @Produce      json
// @Param        id   path      string  true  "Portfolio ID"
// @Success      200  {object}  response.Response{data=domain.SEOView}
// @Router       /portfolios/{id}/seo [get]
// @Security     BearerAuth
func (h *SettingsHandler) GetSEO(c *gin.Context) {
	view, err := h.seoUC.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "SEO settings", view)
}

// UpdateSEO godoc
// @Summary      Save SEO settings
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        id       path      string              true  "Portfolio ID"
// @Param        request  body      domain.SEOSettings  true  "Title, description, keywords, og_image"
// @Success      200      {object}  response.Response{data=domain.SEOView}
// @Failure      400      {object}  response.Response
// @Router       /portfolios/{id}/seo [put]
// @Security     BearerAuth
func (h *SettingsHandler) UpdateSEO(c *gin.Context) {
	var settings domain.SEOSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	view, err := h.seoUC.Update(c.Request.Context(), currentUser(c), c.Param("id"), &settings)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "SEO settings saved", view)
}

// UploadOGImage godoc
// @Summary      Upload the social preview image
// @Description  PNG or JPEG up to 5MB, cropped and scaled to 1200x630.
// @Tags         settings
// @Accept       multipart/form-data
// @Produce      json
// @Param        id     path      string  true  "Portfolio ID"
// @Param        image  formData  file    true  "Image file"
// @Success      200    {object}  response.Response{data=domain.SEOView}
// @Failure      400    {object}  response.Response
// @Failure      429    {object}  response.Response
// @Router       /portfolios/{id}/seo/og-image [post]
// @Security     BearerAuth
func (h *SettingsHandler) UploadOGImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.Error(apperror.BadRequest("Image is required"))
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.BadRequest("Image is required"))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	if len(data) > 0 {
		if err := security.ValidateImage(fileHeader.Filename, data); err != nil {
			c.Error(apperror.New(http.StatusBadRequest, "Unsupported image. Upload a PNG or JPEG file", err).
				WithDetails(map[string]any{"allowed": security.AllowedImageExtensions()}))
			return
		}
	}

	view, err := h.seoUC.UploadOGImage(c.Request.Context(), currentUser(c), c.Param("id"), data)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Image uploaded", view)
}

// GetCustomization godoc
// @Summary      Theme customization
// @Description  Returns the defaults when nothing was saved yet.
// @Tags         settings
// @Produce      json
// @Param        id   path      string  true  "Portfolio ID"
// @Success      200  {object}  response.Response{data=domain.CustomizationSettings}
// @Router       /portfolios/{id}/customization [get]
// @Security     BearerAuth
func (h *SettingsHandler) GetCustomization(c *gin.Context) {
	settings, err := h.customizationUC.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Customization settings", settings)
}

// UpdateCustomization godoc
// @Summary      Save theme customization
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Portfolio ID"
// @Param        request  body      domain.CustomizationSettings  true  "Colors, typography, layout"
// @Success      200      {object}  response.Response{data=domain.CustomizationSettings}
// @Failure      400      {object}  response.Response
// @Router       /portfolios/{id}/customization [put]
// @Security     BearerAuth
func (h *SettingsHandler) UpdateCustomization(c *gin.Context) {
	var settings domain.CustomizationSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	saved, err := h.customizationUC.Update(c.Request.Context(), currentUser(c), c.Param("id"), &settings)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Customization saved", saved)
}

// ResetCustomization godoc
// @Summary      Reset theme customization to defaults
// @Tags         settings
// @Produce      json
// @Param        id   path      string  true  "Portfolio ID"
// @Success      200  {object}  response.Response{data=domain.CustomizationSettings}
// @Router       /portfolios/{id}/customization [delete]
// @Security     BearerAuth
func (h *SettingsHandler) ResetCustomization(c *gin.Context) {
	settings, err := h.customizationUC.Reset(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Customization reset", settings)
}
