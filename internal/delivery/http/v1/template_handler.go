package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quickfolio-backend/internal/delivery/http/response"
	"quickfolio-backend/internal/domain"
)

type TemplateHandler struct {
	templateUC domain.TemplateUsecase
}

func NewTemplateHandler(r *gin.RouterGroup, templateUC domain.TemplateUsecase) {
	handler := &TemplateHandler{templateUC: templateUC}

	templates := r.Group("/templates")
	{
		templates.GET("", handler.List)
		templates.GET("/:id", handler.Get)
	}
}

// List godoc
// @Summary      List templates
// @Tags         templates
// @Produce      json
// @Param        category  query     string  false  "Filter by category"
// @Param        featured  query     bool    false  "Only featured templates"
// @Success      200       {object}  response.Response{data=[]domain.TemplateDescriptor}
// @Router       /templates [get]
func (h *TemplateHandler) List(c *gin.Context) {
	featured, _ := strconv.ParseBool(c.Query("featured"))
	templates := h.templateUC.List(c.Request.Context(), c.Query("category"), featured)
	response.Success(c, http.StatusOK, "Templates", templates)
}

// Get godoc
// @Summary      Get a template
// @Tags         templates
// @Produce      json
// @Param        id   path      string  true  "Template ID"
// @Success      200  {object}  response.Response{data=domain.TemplateDescriptor}
// @Failure      404  {object}  response.Response
// @Router       /templates/{id} [get]
func (h *TemplateHandler) Get(c *gin.Context) {
	t, err := h.templateUC.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Template", t)
}
