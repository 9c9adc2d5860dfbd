package settlement_controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/settlement/controllers"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/models/order_models"
	"github.com/joy095/settlement/services"
	"github.com/joy095/settlement/utils"
)

type SettlementController struct {
	svc *services.Services
}

func NewSettlementController(svc *services.Services) (*SettlementController, error) {
	if svc == nil {
		return nil, errors.New("services cannot be nil")
	}
	return &SettlementController{svc: svc}, nil
}

type CalculateRequest struct {
	StartDate  string `json:"startDate" binding:"required"`
	EndDate    string `json:"endDate" binding:"required"`
	ResellerID string `json:"resellerId"`
}

type ExecuteRequest struct {
	StartDate  string `json:"startDate" binding:"required"`
	EndDate    string `json:"endDate" binding:"required"`
	ResellerID string `json:"resellerId" binding:"required,uuid"`
	Notes      string `json:"notes"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

func parseRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := utils.ParseStartDate(startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("startDate: %w", err)
	}
	end, err := utils.ParseEndDate(endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("endDate: %w", err)
	}
	return start, end, nil
}

// Calculate handles POST /admin/settlements/calculate.
func (sc *SettlementController) Calculate(c *gin.Context) {
	logger.InfoLogger.Info("Calculate settlement controller called")

	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controllers.BadRequest(c, "Invalid request data: "+err.Error())
		return
	}
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		controllers.BadRequest(c, err.Error())
		return
	}
	resellerID, err := utils.ParseOptionalUUID(req.ResellerID)
	if err != nil {
		controllers.BadRequest(c, "resellerId must be a UUID")
		return
	}

	report, err := sc.svc.Calculator.Calculate(c.Request.Context(), services.CalculateRequest{
		StartDate:  start,
		EndDate:    end,
		ResellerID: resellerID,
	})
	if err != nil {
		controllers.RespondError(c, "Calculate settlement", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Orders handles GET /admin/settlements/orders.
func (sc *SettlementController) Orders(c *gin.Context) {
	start, end, err := parseRange(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		controllers.BadRequest(c, err.Error())
		return
	}
	resellerID, err := uuid.Parse(c.Query("resellerId"))
	if err != nil {
		controllers.BadRequest(c, "resellerId must be a UUID")
		return
	}

	view, err := sc.svc.Query.Orders(c.Request.Context(), resellerID, start, end)
	if err != nil {
		controllers.RespondError(c, "List settlement orders", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Execute handles POST /admin/settlements/execute.
func (sc *SettlementController) Execute(c *gin.Context) {
	logger.InfoLogger.Info("Execute settlement controller called")

	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controllers.BadRequest(c, "Invalid request data: "+err.Error())
		return
	}
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		controllers.BadRequest(c, err.Error())
		return
	}

	result, err := sc.svc.Executor.Execute(c.Request.Context(), services.ExecuteRequest{
		StartDate:  start,
		EndDate:    end,
		ResellerID: uuid.MustParse(req.ResellerID),
		Notes:      req.Notes,
	})
	if err != nil {
		controllers.RespondError(c, "Execute settlement", err)
		return
	}

	adminID, _ := utils.GetAdminIDFromContext(c)
	logger.InfoLogger.Infof("Settlement %s executed by %s", result.Record.ID, adminID)
	c.JSON(http.StatusOK, gin.H{
		"settlementRecordId": result.Record.ID,
		"record":             result.Record,
		"commission":         result.Commission,
	})
}

// ListRecords handles GET /admin/settlement-records.
func (sc *SettlementController) ListRecords(c *gin.Context) {
	resellerID, err := utils.ParseOptionalUUID(c.Query("resellerId"))
	if err != nil {
		controllers.BadRequest(c, "resellerId must be a UUID")
		return
	}
	limit, err := utils.QueryInt(c.Query("limit"), 0)
	if err != nil {
		controllers.BadRequest(c, "limit must be an integer")
		return
	}
	offset, err := utils.QueryInt(c.Query("offset"), 0)
	if err != nil {
		controllers.BadRequest(c, "offset must be an integer")
		return
	}

	records, err := sc.svc.Query.Records(c.Request.Context(), resellerID, limit, offset)
	if err != nil {
		controllers.RespondError(c, "List settlement records", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// GetRecord handles GET /admin/settlement-records/:id.
func (sc *SettlementController) GetRecord(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		controllers.BadRequest(c, "id must be a UUID")
		return
	}
	detail, err := sc.svc.Query.Record(c.Request.Context(), id)
	if err != nil {
		controllers.RespondError(c, "Get settlement record", err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// CancelOrder handles POST /admin/orders/:resellerId/:orderNumber/cancel.
func (sc *SettlementController) CancelOrder(c *gin.Context) {
	resellerID, err := uuid.Parse(c.Param("resellerId"))
	if err != nil {
		controllers.BadRequest(c, "resellerId must be a UUID")
		return
	}
	var req CancelOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			controllers.BadRequest(c, "Invalid request data: "+err.Error())
			return
		}
	}

	order, err := sc.svc.Query.CancelOrder(c.Request.Context(),
		order_models.OrderKey{ResellerID: resellerID, OrderNumber: c.Param("orderNumber")}, req.Reason)
	if err != nil {
		controllers.RespondError(c, "Cancel order", err)
		return
	}
	c.JSON(http.StatusOK, order)
}
