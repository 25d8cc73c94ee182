package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"quickfolio-backend/internal/delivery/http/middleware"
	"quickfolio-backend/internal/delivery/http/response"
	"quickfolio-backend/internal/domain"
	"quickfolio-backend/pkg/apperror"
)

type PublishingHandler struct {
	deploymentUC domain.DeploymentUsecase
	exportUC     domain.ExportUsecase
}

// NewPublishingHandler registers deploy and export. The archive download is
// public: the random export ID is the capability.
func NewPublishingHandler(public, protected *gin.RouterGroup, deploymentUC domain.DeploymentUsecase, exportUC domain.ExportUsecase) {
	handler := &PublishingHandler{
		deploymentUC: deploymentUC,
		exportUC:     exportUC,
	}

	p := protected.Group("/portfolios/:id")
	{
		p.POST("/deploy", handler.Deploy)
		p.POST("/export", middleware.RateLimitMiddleware(middleware.UploadRateLimitConfig()), handler.Export)
	}

	public.GET("/exports/:exportId/download", handler.Download)
}

// Deploy godoc
// @Summary      Deploy a portfolio
// @Description  Renders the portfolio, uploads the static page and marks it published.
// @Tags         publishing
// @Produce      json
// @Param        id   path      string  true  "Portfolio ID"
// @Success      200  {object}  response.Response{data=domain.Deployment}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /portfolios/{id}/deploy [post]
// @Security     BearerAuth
func (h *PublishingHandler) Deploy(c *gin.Context) {
	d, err := h.deploymentUC.Deploy(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Portfolio deployed", d)
}

// Export godoc
// @Summary      Export a portfolio as a zip archive
// @Tags         publishing
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "Portfolio ID"
// @Param        request  body      domain.ExportOptions  true  "Format and options"
// @Success      200      {object}  response.Response{data=domain.ExportResult}
// @Failure      400      {object}  response.Response
// @Router       /portfolios/{id}/export [post]
// @Security     BearerAuth
func (h *PublishingHandler) Export(c *gin.Context) {
	var opts domain.ExportOptions
	if err := c.ShouldBindJSON(&opts); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	res, err := h.exportUC.Export(c.Request.Context(), currentUser(c), c.Param("id"), opts)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Export ready", res)
}

// Download godoc
// @Summary      Download an export archive
// @Tags         publishing
// @Produce      application/zip
// @Param        exportId  path   string  true  "Export ID"
// @Param        format    query  string  true  "nextjs, html or code"
// @Success      200       {file}  file
// @Failure      404       {object}  response.Response
// @Router       /exports/{exportId}/download [get]
func (h *PublishingHandler) Download(c *gin.Context) {
	exportID := c.Param("exportId")
	format := domain.ExportFormat(c.Query("format"))

	body, contentType, err := h.exportUC.Download(c.Request.Context(), exportID, format)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=portfolio-%s.zip", format))
	c.Data(http.StatusOK, contentType, body)
}
