package main

import (
	"github.com/smallbiznis/rechargedesk/internal/bootstrap"
	"github.com/smallbiznis/rechargedesk/internal/invoice"
	"github.com/smallbiznis/rechargedesk/internal/reminder"
	"github.com/smallbiznis/rechargedesk/internal/reporting"
	"github.com/smallbiznis/rechargedesk/internal/server"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		bootstrap.Core,

		invoice.Module,
		reporting.Module,

		// Runs only when REMINDER_ENABLED is set; see apps/reminder for a standalone worker.
		reminder.Module,
		server.Module,
	)
	app.Run()
}
