// Command reminder runs the reminder email loop on its own, for deployments
// that keep it out of the API process. Reminders are claimed in the database
// before sending, so it can also run alongside the API.
package main

import (
	"github.com/smallbiznis/rechargedesk/internal/bootstrap"
	"github.com/smallbiznis/rechargedesk/internal/reminder"
	"go.uber.org/fx"
)

func main() {
	fx.New(bootstrap.Core, reminder.Module).Run()
}
