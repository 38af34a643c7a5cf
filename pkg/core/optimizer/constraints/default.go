// Package constraints holds the hard constraints of the roster model.
package constraints

import (
	"github.com/kiddos/scheduler/pkg/core/optimizer"
	"github.com/kiddos/scheduler/pkg/core/scheduling"
)

// Default returns every hard constraint of the roster model, configured by
// params.
func Default(params scheduling.Params) []optimizer.Constraint {
	return []optimizer.Constraint{
		NewCoverageConstraint(),
		NewOneShiftPerDayConstraint(),
		NewRestConstraint(params),
		NewPreferenceQuotaConstraint(params),
		NewWorkloadWindowConstraint(params),
		NewCarryoverWindowConstraint(params),
		NewBusinessTravelConstraint(),
		NewStatutoryDaysOffConstraint(),
		NewShiftRestrictionConstraint(),
	}
}
