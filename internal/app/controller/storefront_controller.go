package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/vitrine-backend/internal/app/model"
	"github.com/ikkim/vitrine-backend/internal/app/service"
	"github.com/ikkim/vitrine-backend/internal/checkout"
	apperrors "github.com/ikkim/vitrine-backend/internal/errors"
	"github.com/ikkim/vitrine-backend/internal/middleware"
	"github.com/ikkim/vitrine-backend/internal/storefront"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StorefrontController adapts HTTP requests to storefront commands. Every
// command response carries the effects the render layer must apply.
type StorefrontController struct {
	storefrontService service.StorefrontService
	exportService     service.ExportService
}

func NewStorefrontController(storefrontService service.StorefrontService, exportService service.ExportService) *StorefrontController {
	return &StorefrontController{
		storefrontService: storefrontService,
		exportService:     exportService,
	}
}

type FilterRequest struct {
	Filter string `json:"filter" binding:"required"`
}

type SearchRequest struct {
	Search string `json:"search"`
}

type ProductRequest struct {
	ProductID model.ProductID `json:"product_id" binding:"required"`
}

type TierRequest struct {
	Index *int `json:"index" binding:"required,gte=0"`
}

type SlotRequest struct {
	OptionID string `json:"option_id"`
}

type QtyStepRequest struct {
	Delta int `json:"delta" binding:"required"`
}

type CartAdjustRequest struct {
	Key   string `json:"key" binding:"required"`
	Delta int    `json:"delta" binding:"required"`
}

type CartQtyRequest struct {
	Key string `json:"key" binding:"required"`
	Qty *int   `json:"qty" binding:"required"`
}

type CartKeyRequest struct {
	Key string `json:"key" binding:"required"`
}

type CheckoutFieldsRequest struct {
	Department string `json:"department"`
	Address    string `json:"address"`
	Slot       string `json:"slot"`
}

func (ctrl *StorefrontController) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid storefront request", map[string]interface{}{
			"path":  c.FullPath(),
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Requête invalide.")
		return false
	}
	return true
}

// reply writes the command outcome. A failed command still reports its
// effects (e.g. the warning toast of a refused send).
func (ctrl *StorefrontController) reply(c *gin.Context, command string, effects []storefront.Effect, err error) {
	if err != nil {
		middleware.GetLoggerFromContext(c).Debug("Storefront command refused", map[string]interface{}{
			"command": command,
			"error":   err.Error(),
		})
		var body any
		if len(effects) > 0 {
			body = effects
		}
		apperrors.RespondWithParsedError(c, err, command, body)
		return
	}
	c.JSON(http.StatusOK, gin.H{"effects": effects})
}

// GetGrid GET /api/v1/storefront/grid
func (ctrl *StorefrontController) GetGrid(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)
	view, err := ctrl.storefrontService.Grid(c.Request.Context(), sessionID)
	if err != nil {
		apperrors.RespondWithParsedError(c, err, "grid", nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SetFilter PUT /api/v1/storefront/filter
func (ctrl *StorefrontController) SetFilter(c *gin.Context) {
	var req FilterRequest
	if !ctrl.bind(c, &req) {
		return
	}
	sessionID, _ := middleware.GetSessionID(c)
	effects, err := ctrl.storefrontService.SetFilter(c.Request.Context(), sessionID, req.Filter)
	ctrl.reply(c, "filter", effects, err)
}

// Search PUT /api/v1/storefront/search
func (ctrl *StorefrontController) Search(c *gin.Context) {
	var req SearchRequest
	if !ctrl.bind(c, &req) {
		return
	}
	sessionID, _ := middleware.GetSessionID(c)
	effects, err := ctrl.storefrontService.Search(c.Request.Context(), sessionID, req.Search)
	ctrl.reply(c, "search", effects, err)
}

// QuickAdd POST /api/v1/storefront/quick-add
func (ctrl *StorefrontController) QuickAdd(c *gin.Context) {
	var req ProductRequest
	if !ctrl.bind(c, &req) {
		return
	}
	sessionID, _ := middleware.GetSessionID(c)
	effects, err := ctrl.storefrontService.QuickAdd(c.Request.Context(), sessionID, model.ParseProductID(string(req.ProductID)))
	ctrl.reply(c, "quick_add", effects, err)
}

// OpenModal POST /api/v1/modal
func (ctrl *StorefrontController) OpenModal(c *gin.Context) {
	var req ProductRequest
	if !ctrl.bind(c, &req) {
		return
	}
	sessionID, _ := middleware.GetSessionID(c)
	effects, err := ctrl.storefrontService.OpenProduct(c.Request.Context(), sessionID, model.ParseProductID(string(req.ProductID)))
	ctrl.reply(c, "open_product", effects, err)
}

// GetModal GET /api/v1/modal
func (ctrl *StorefrontController) GetModal(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)
	view, err := ctrl.storefrontService.Modal(c.Request.Context(), sessionID)
	if err != nil {
		apperrors.RespondWithParsedError(c, err, "modal", nil)
		return
	}
	if view == nil {
		apperrors.RespondWithParsedError(c, storefront.ErrModalClosed, "modal", nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SelectTier PUT /api/v1/modal/tier
func (ctrl *StorefrontController) SelectTier(c *gin.Context) {
	var req TierRequest
	if !ctrl.bind(c, &req) {
		return
	}
	sessionID, _ := middleware.GetSessionID(c)
	effects, err := ctrl.storefrontService.SelectTier(c.Request.Context(), sessionID, *req.Index)
	ctrl.reply(c, "select_tier", effects, err)
}

// SelectSlot PUT /api/v1/modal/slots/:index
// An empty option_id clears the slot.
func (ctrl *StorefrontController) SelectSlot(c *gin.Context) {
	slot, err := strconv.Atoi(c.Param("index"))
	if err != nil || slot < 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Index de choix invalide.")
		return
	}
	var req SlotRequest
	if !ctrl.bind(c, &req) {
		return
	}
	sessionID, _ := middleware.GetSessionID(c)
	effects, err := ctrl.storefrontService.SelectSlot(c.Request.Context(), sessionID, slot, req.OptionID)
	ctrl.reply(c, "select_slot", effects, err)
}

// StepQty POST /api/v1/modal/qty
func (ctrl *StorefrontController) StepQty(c *gin.Context) {
	var req QtyStepRequest
	if !ctrl.bind(c, &req) {
		return
	}
	sessionID, _ := middleware.GetSessionID(c)
	effects, err := ctrl.storefrontService.StepQty(c.Request.Context(), sessionID, req.Delta)
	ctrl.reply(c, "step_qty", effects, err)
}

// Commit POST /api/v1/modal/commit
func (ctrl *StorefrontController) Commit(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)
	effects, err := ctrl.storefrontService.Commit(c.Request.Context(), sessionID)
	ctrl.reply(c, "commit", effects, err)
}

// CloseModal DELETE /api/v1/modal
func (ctrl *StorefrontController) CloseModal(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)
	effects, err := ctrl.storefrontService.CloseModal(c.Request.Context(), sessionID)
	ctrl.reply(c, "close_modal", effects, err)
}

// GetCart GET /api/v1/cart
func (ctrl *StorefrontController) GetCart(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)
	view, err := ctrl.storefrontService.Cart(c.Request.Context(), sessionID)
	if err != nil {
		apperrors.RespondWithParsedError(c, err, "cart", nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

// AdjustCartLine POST /api/v1/cart/adjust
func (ctrl *StorefrontController) AdjustCartLine(c *gin.Context) {
	var req CartAdjustRequest
	if !ctrl.bind(c, &req) {
		return
	}
	sessionID, _ := middleware.GetSessionID(c)
	effects, err := ctrl.storefrontService.AdjustCartLine(c.Request.Context(), sessionID, req.Key, req.Delta)
	ctrl.reply(c, "cart_adjust", effects, err)
}

// SetCartLineQty PUT /api/v1/cart/qty
func (ctrl *StorefrontController) SetCartLineQty(c *gin.Context) {
	var req CartQtyRequest
	if !ctrl.bind(c, &req) {
		return
	}
	sessionID, _ := middleware.GetSessionID(c)
	effects, err := ctrl.storefrontService.SetCartLineQty(c.Request.Context(), sessionID, req.Key, *req.Qty)
	ctrl.reply(c, "cart_set_qty", effects, err)
}

// RemoveCartLine DELETE /api/v1/cart/items
func (ctrl *StorefrontController) RemoveCartLine(c *gin.Context) {
	var req CartKeyRequest
	if !ctrl.bind(c, &req) {
		return
	}
	sessionID, _ := middleware.GetSessionID(c)
	effects, err := ctrl.storefrontService.RemoveCartLine(c.Request.Context(), sessionID, req.Key)
	ctrl.reply(c, "cart_remove", effects, err)
}

// ClearCart DELETE /api/v1/cart
func (ctrl *StorefrontController) ClearCart(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)
	effects, err := ctrl.storefrontService.ClearCart(c.Request.Context(), sessionID)
	ctrl.reply(c, "cart_clear", effects, err)
}

// ExportCart streams the cart as an xlsx workbook
// GET /api/v1/cart/export
func (ctrl *StorefrontController) ExportCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID, _ := middleware.GetSessionID(c)

	view, err := ctrl.storefrontService.Cart(c.Request.Context(), sessionID)
	if err != nil {
		apperrors.RespondWithParsedError(c, err, "export", nil)
		return
	}

	data, err := ctrl.exportService.CartWorkbook(view)
	if err != nil {
		log.Error("Failed to export cart", err)
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.InternalExportFailed,
			"Export du panier impossible, réessayez plus tard.")
		return
	}

	filename := fmt.Sprintf("panier-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// SetCheckoutFields PUT /api/v1/checkout/fields
func (ctrl *StorefrontController) SetCheckoutFields(c *gin.Context) {
	var req CheckoutFieldsRequest
	if !ctrl.bind(c, &req) {
		return
	}
	sessionID, _ := middleware.GetSessionID(c)
	fields := checkout.Fields{Department: req.Department, Address: req.Address, Slot: req.Slot}
	effects, err := ctrl.storefrontService.SetCheckoutFields(c.Request.Context(), sessionID, fields)
	ctrl.reply(c, "checkout_fields", effects, err)
}

// GetCheckoutLink returns the WhatsApp link for the current cart, even when
// the send gate would refuse it.
// GET /api/v1/checkout/link
func (ctrl *StorefrontController) GetCheckoutLink(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)
	link, err := ctrl.storefrontService.CheckoutLink(c.Request.Context(), sessionID)
	if err != nil {
		apperrors.RespondWithParsedError(c, err, "checkout", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": link})
}

// Send POST /api/v1/checkout/send
func (ctrl *StorefrontController) Send(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID, _ := middleware.GetSessionID(c)

	effects, err := ctrl.storefrontService.Send(c.Request.Context(), sessionID)
	if err != nil {
		var fieldsErr *checkout.FieldsRequiredError
		if errors.As(err, &fieldsErr) {
			log.Info("Checkout refused, fields missing", map[string]interface{}{
				"missing": fieldsErr.Missing,
			})
		}
		ctrl.reply(c, "send", effects, err)
		return
	}

	url := ""
	for _, e := range effects {
		if e.Type == storefront.EffectNavigate {
			url = e.URL
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"url":     url,
		"effects": effects,
	})
}
