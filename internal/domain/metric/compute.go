package metric

import (
	"fmt"

	"github.com/okian/voidframe/internal/domain/model"
	"github.com/okian/voidframe/internal/domain/track"
)

// Warning is a non-fatal data-quality signal reported alongside the
// metric table; it never halts the run.
type Warning struct {
	Key     model.PlayKey
	Metric  string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("play %s: %s: %s", w.Key, w.Metric, w.Message)
}

// Compute runs every calculator for a play. Per-metric failures null
// the affected field and leave the rest of the row intact; the play is
// only excluded from metrics that require the missing role.
func Compute(w track.Window, roles track.Roles, ctx model.PlayContext, cfg Config) (model.PlayMetrics, []Warning) {
	pm := model.PlayMetrics{Key: w.Key, Void: model.VoidNeutral}
	var warnings []Warning
	k := cfg.KFor(ctx.Coverage)

	if v, err := SQI(roles, k); err == nil {
		pm.SQI = &v
	}
	if v, err := BAA(roles, ctx, k); err == nil {
		pm.BAA = &v
	}
	if v, err := RES(roles, ctx); err == nil {
		pm.RES = &v
		if v > RESDataQualityCeiling {
			warnings = append(warnings, Warning{
				Key:     w.Key,
				Metric:  "res",
				Message: fmt.Sprintf("route efficiency %.2f%% exceeds straight-line ceiling", v),
			})
		}
	}
	if v, err := CTI(roles); err == nil {
		pm.CTI = &v
	}

	if vm, err := Void(w, roles); err == nil {
		pm.SThrow = &vm.SThrow
		pm.SArrival = &vm.SArrival
		pm.VIS = &vm.VIS
		if vm.ClosingRateOK {
			rate := vm.ClosingRate
			pm.CEOE = &rate
		}
		pm.Void = model.ClassifyVoid(vm.SThrow)
		pm.NearestDefenderID = vm.NearestDefenderID
	}

	return pm, warnings
}
