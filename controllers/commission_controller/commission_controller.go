package commission_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/settlement/controllers"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/models/commission_models"
	"github.com/joy095/settlement/services"
	"github.com/joy095/settlement/utils"
)

type CommissionController struct {
	svc *services.Services
}

func NewCommissionController(svc *services.Services) (*CommissionController, error) {
	if svc == nil {
		return nil, errors.New("services cannot be nil")
	}
	return &CommissionController{svc: svc}, nil
}

// ListCommissions handles GET /admin/commissions?status=&search=.
func (cc *CommissionController) ListCommissions(c *gin.Context) {
	filter := commission_models.ListFilter{Search: c.Query("search")}
	if raw := c.Query("status"); raw != "" && raw != "all" {
		status, err := commission_models.ParseCommissionStatus(raw)
		if err != nil {
			controllers.BadRequest(c, err.Error())
			return
		}
		filter.Status = &status
	}
	var err error
	if filter.Limit, err = utils.QueryInt(c.Query("limit"), 0); err != nil {
		controllers.BadRequest(c, "limit must be an integer")
		return
	}
	if filter.Offset, err = utils.QueryInt(c.Query("offset"), 0); err != nil {
		controllers.BadRequest(c, "offset must be an integer")
		return
	}

	list, err := cc.svc.Query.Commissions(c.Request.Context(), filter)
	if err != nil {
		controllers.RespondError(c, "List commissions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"commissions": list})
}

// ReviewCommission handles PUT /admin/commissions/:id/review.
func (cc *CommissionController) ReviewCommission(c *gin.Context) {
	logger.InfoLogger.Info("ReviewCommission controller called")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		controllers.BadRequest(c, "id must be a UUID")
		return
	}
	var req commission_models.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		controllers.BadRequest(c, "Invalid request data: "+err.Error())
		return
	}
	adminID, err := utils.GetAdminIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": err.Error()})
		return
	}

	reviewed, err := cc.svc.Reviewer.Review(c.Request.Context(), services.ReviewRequest{
		CommissionID: id,
		Decision:     commission_models.CommissionStatus(req.Status),
		Reason:       req.RejectReason,
		ReviewerID:   adminID,
	})
	if err != nil {
		controllers.RespondError(c, "Review commission", err)
		return
	}
	c.JSON(http.StatusOK, reviewed)
}
