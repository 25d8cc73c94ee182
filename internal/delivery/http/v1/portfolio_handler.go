package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quickfolio-backend/internal/delivery/http/response"
	"quickfolio-backend/internal/domain"
	"quickfolio-backend/pkg/apperror"
)

type PortfolioHandler struct {
	portfolioUC domain.PortfolioUsecase
}

// PortfolioSummary is the dashboard card for one portfolio.
type PortfolioSummary struct {
	domain.Portfolio
	Status string `json:"status"`
}

func NewPortfolioHandler(r *gin.RouterGroup, portfolioUC domain.PortfolioUsecase) {
	handler := &PortfolioHandler{portfolioUC: portfolioUC}

	portfolios := r.Group("/portfolios")
	{
		portfolios.GET("", handler.List)
		portfolios.GET("/:id", handler.Get)
		portfolios.PATCH("/:id", handler.Update)
		portfolios.DELETE("/:id", handler.Delete)
	}
}

// List godoc
// @Summary      List my portfolios
// @Description  Dashboard listing, most recently updated first
// @Tags         portfolios
// @Produce      json
// @Success      200  {object}  response.Response{data=[]PortfolioSummary}
// @Failure      401  {object}  response.Response
// @Router       /portfolios [get]
// @Security     BearerAuth
func (h *PortfolioHandler) List(c *gin.Context) {
	portfolios, err := h.portfolioUC.List(c.Request.Context(), currentUser(c))
	if err != nil {
		c.Error(err)
		return
	}

	out := make([]PortfolioSummary, 0, len(portfolios))
	for i := range portfolios {
		out = append(out, PortfolioSummary{Portfolio: portfolios[i], Status: portfolios[i].Status()})
	}
	response.Success(c, http.StatusOK, "Portfolios", out)
}

// Get godoc
// @Summary      Get one portfolio
// @Tags         portfolios
// @Produce      json
// @Param        id   path      string  true  "Portfolio ID"
// @Success      200  {object}  response.Response{data=domain.Portfolio}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /portfolios/{id} [get]
// @Security     BearerAuth
func (h *PortfolioHandler) Get(c *gin.Context) {
	p, err := h.portfolioUC.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Portfolio", p)
}

// Update godoc
// @Summary      Edit a portfolio
// @Tags         portfolios
// @Accept       json
// @Produce      json
// @Param        id       path      string                  true  "Portfolio ID"
// @Param        request  body      domain.PortfolioUpdate  true  "Fields to change"
// @Success      200      {object}  response.Response{data=domain.Portfolio}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /portfolios/{id} [patch]
// @Security     BearerAuth
func (h *PortfolioHandler) Update(c *gin.Context) {
	var upd domain.PortfolioUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	p, err := h.portfolioUC.Update(c.Request.Context(), currentUser(c), c.Param("id"), &upd)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Portfolio updated", p)
}

// Delete godoc
// @Summary      Delete a portfolio
// @Tags         portfolios
// @Produce      json
// @Param        id   path      string  true  "Portfolio ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /portfolios/{id} [delete]
// @Security     BearerAuth
func (h *PortfolioHandler) Delete(c *gin.Context) {
	if err := h.portfolioUC.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Portfolio deleted", nil)
}
