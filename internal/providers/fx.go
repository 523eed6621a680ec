package providers

import (
	"github.com/smallbiznis/rechargedesk/internal/providers/email"
	"github.com/smallbiznis/rechargedesk/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
)
