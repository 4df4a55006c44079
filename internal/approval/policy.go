package approval

import (
	"time"

	"github.com/shopspring/decimal"
)

// Configuration is the active approval threshold used by the policy
// engine. Changing the configuration never rewrites decisions already
// recorded in the approval history.
type Configuration struct {
	Threshold     decimal.Decimal
	EffectiveFrom time.Time
}

// Decision is the outcome of evaluating a request value against the
// active configuration.
type Decision struct {
	RequiresDualApproval bool
	Threshold            decimal.Decimal
}

// Evaluate decides whether a request of the given total value needs one
// or two approval signatures. Pure: no I/O, deterministic for its
// inputs. Dual approval is required strictly above the threshold.
func Evaluate(totalValue decimal.Decimal, cfg Configuration) Decision {
	return Decision{
		RequiresDualApproval: totalValue.GreaterThan(cfg.Threshold),
		Threshold:            cfg.Threshold,
	}
}
