package discount_rule_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/settlement/controllers"
	"github.com/joy095/settlement/models/discount_models"
	"github.com/joy095/settlement/services"
)

type DiscountRuleController struct {
	svc *services.Services
}

func NewDiscountRuleController(svc *services.Services) (*DiscountRuleController, error) {
	if svc == nil {
		return nil, errors.New("services cannot be nil")
	}
	return &DiscountRuleController{svc: svc}, nil
}

func pathIDs(c *gin.Context, withRule bool) (uuid.UUID, uuid.UUID, bool) {
	resellerID, err := uuid.Parse(c.Param("resellerId"))
	if err != nil {
		controllers.BadRequest(c, "resellerId must be a UUID")
		return uuid.Nil, uuid.Nil, false
	}
	if !withRule {
		return resellerID, uuid.Nil, true
	}
	ruleID, err := uuid.Parse(c.Param("ruleId"))
	if err != nil {
		controllers.BadRequest(c, "ruleId must be a UUID")
		return uuid.Nil, uuid.Nil, false
	}
	return resellerID, ruleID, true
}

// ListRules handles GET /admin/user-discount-rules/:resellerId.
func (dc *DiscountRuleController) ListRules(c *gin.Context) {
	resellerID, _, ok := pathIDs(c, false)
	if !ok {
		return
	}
	rules, err := dc.svc.DiscountRules.List(c.Request.Context(), resellerID)
	if err != nil {
		controllers.RespondError(c, "List discount rules", err)
		return
	}
	discount_models.SortByRange(rules)
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

// CreateRule handles POST /admin/user-discount-rules/:resellerId.
func (dc *DiscountRuleController) CreateRule(c *gin.Context) {
	resellerID, _, ok := pathIDs(c, false)
	if !ok {
		return
	}
	var req discount_models.DiscountRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controllers.BadRequest(c, "Invalid request data: "+err.Error())
		return
	}
	rule, err := dc.svc.DiscountRules.Create(c.Request.Context(), resellerID, req)
	if err != nil {
		controllers.RespondError(c, "Create discount rule", err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

// UpdateRule handles PUT /admin/user-discount-rules/:resellerId/:ruleId.
func (dc *DiscountRuleController) UpdateRule(c *gin.Context) {
	resellerID, ruleID, ok := pathIDs(c, true)
	if !ok {
		return
	}
	var req discount_models.DiscountRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controllers.BadRequest(c, "Invalid request data: "+err.Error())
		return
	}
	rule, err := dc.svc.DiscountRules.Update(c.Request.Context(), resellerID, ruleID, req)
	if err != nil {
		controllers.RespondError(c, "Update discount rule", err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// DeleteRule handles DELETE /admin/user-discount-rules/:resellerId/:ruleId.
func (dc *DiscountRuleController) DeleteRule(c *gin.Context) {
	resellerID, ruleID, ok := pathIDs(c, true)
	if !ok {
		return
	}
	if err := dc.svc.DiscountRules.Delete(c.Request.Context(), resellerID, ruleID); err != nil {
		controllers.RespondError(c, "Delete discount rule", err)
		return
	}
	c.Status(http.StatusNoContent)
}
