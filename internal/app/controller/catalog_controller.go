package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/vitrine-backend/internal/app/model"
	"github.com/ikkim/vitrine-backend/internal/app/service"
	apperrors "github.com/ikkim/vitrine-backend/internal/errors"
	"github.com/ikkim/vitrine-backend/internal/middleware"
)

type CatalogController struct {
	catalogService service.CatalogService
}

func NewCatalogController(catalogService service.CatalogService) *CatalogController {
	return &CatalogController{catalogService: catalogService}
}

// ListProducts returns product cards, optionally filtered
// GET /api/v1/catalog/products?filter=&search=
func (ctrl *CatalogController) ListProducts(c *gin.Context) {
	cards := ctrl.catalogService.List(c.Query("filter"), c.Query("search"))
	c.JSON(http.StatusOK, gin.H{
		"products": cards,
		"count":    len(cards),
		"shops":    ctrl.catalogService.Shops(),
	})
}

// GetProduct returns one product with its tiers and box slots
// GET /api/v1/catalog/products/:id
func (ctrl *CatalogController) GetProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id := model.ParseProductID(c.Param("id"))
	if id == "" {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Identifiant produit invalide.")
		return
	}

	product, err := ctrl.catalogService.Get(id)
	if err != nil {
		log.Warn("Product lookup failed", map[string]interface{}{
			"product_id": id,
		})
		apperrors.RespondWithParsedError(c, err, "product", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}
