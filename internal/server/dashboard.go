package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	reportingdomain "github.com/smallbiznis/rechargedesk/internal/reporting/domain"
	saledomain "github.com/smallbiznis/rechargedesk/internal/sale/domain"
	subscriptiondomain "github.com/smallbiznis/rechargedesk/internal/subscription/domain"
)

type dashboardResponse struct {
	Today             reportingdomain.Metrics       `json:"today"`
	ExpiringPlans     []subscriptiondomain.Record   `json:"expiring_plans"`
	RechargeReminders []saledomain.RechargeReminder `json:"recharge_reminders"`
}

// GetDashboard combines today's sales metrics with the plans and recharges
// that need a follow-up.
func (s *Server) GetDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	today, err := s.reportingSvc.Today(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	expiring, err := s.subscriptionSvc.ExpiringSoon(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	reminders, err := s.saleSvc.RechargeReminders(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if reminders == nil {
		reminders = []saledomain.RechargeReminder{}
	}

	c.JSON(http.StatusOK, gin.H{"data": dashboardResponse{
		Today:             today,
		ExpiringPlans:     expiring,
		RechargeReminders: reminders,
	}})
}
