package quote_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/settlement/controllers"
	"github.com/joy095/settlement/models/quote_models"
	"github.com/joy095/settlement/services"
	"github.com/joy095/settlement/utils"
)

type QuoteController struct {
	svc *services.Services
}

func NewQuoteController(svc *services.Services) (*QuoteController, error) {
	if svc == nil {
		return nil, errors.New("services cannot be nil")
	}
	return &QuoteController{svc: svc}, nil
}

// ResolveQuote handles GET /admin/quotes/resolve. Lookup failures are answered with 404 and
// the failure kind, since they are expected outcomes rather than server errors.
func (qc *QuoteController) ResolveQuote(c *gin.Context) {
	qty, err := utils.QueryInt(c.Query("quantity"), 0)
	if err != nil {
		controllers.BadRequest(c, "quantity must be an integer")
		return
	}
	resellerID, err := utils.ParseOptionalUUID(c.Query("resellerId"))
	if err != nil {
		controllers.BadRequest(c, "resellerId must be a UUID")
		return
	}
	query := services.QuoteQuery{
		ProductID:   c.Query("productId"),
		CountryCode: c.Query("countryCode"),
		Quantity:    qty,
	}
	if resellerID != nil {
		query.ResellerID = *resellerID
	}

	quote, err := qc.svc.Quotes.Resolve(c.Request.Context(), query)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, quote.View())
	case errors.Is(err, services.ErrNoPriceInfo):
		c.JSON(http.StatusNotFound, gin.H{"code": "NO_PRICE_INFO", "error": err.Error()})
	case errors.Is(err, services.ErrPriceCalculationError):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"code": "PRICE_CALCULATION_ERROR", "error": err.Error()})
	default:
		controllers.RespondError(c, "Resolve quote", err)
	}
}

// CreateQuote handles POST /admin/quotes.
func (qc *QuoteController) CreateQuote(c *gin.Context) {
	var req quote_models.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controllers.BadRequest(c, "Invalid request data: "+err.Error())
		return
	}
	if req.ResellerID == uuid.Nil {
		controllers.BadRequest(c, "reseller_id is required")
		return
	}
	quote, err := qc.svc.Quotes.AddQuote(c.Request.Context(), req)
	if err != nil {
		controllers.RespondError(c, "Create quote", err)
		return
	}
	c.JSON(http.StatusCreated, quote.View())
}
