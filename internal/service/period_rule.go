package service

import (
	"sort"

	"github.com/dmurtari/mbu-online-sub002/internal/models"
	appErrors "github.com/dmurtari/mbu-online-sub002/pkg/errors"
)

// requiredPeriods lists the only period set each multi-period duration may
// occupy. Single-period offerings may sit in any period.
var requiredPeriods = map[int][]int{
	2: {2, 3},
	3: {1, 2, 3},
}

// ValidOfferingShape reports whether an offering of the given duration may be
// scheduled in periods. The comparison is exact: no extra or missing entries.
func ValidOfferingShape(duration int, periods []int) bool {
	if duration < 1 || duration > 3 {
		return false
	}
	required, ok := requiredPeriods[duration]
	if !ok {
		return true
	}
	if len(periods) != len(required) {
		return false
	}
	sorted := append([]int(nil), periods...)
	sort.Ints(sorted)
	for i := range required {
		if sorted[i] != required[i] {
			return false
		}
	}
	return true
}

// ValidateOfferingShape is ValidOfferingShape returning a typed error.
func ValidateOfferingShape(duration int, periods models.Periods) error {
	if ValidOfferingShape(duration, periods) {
		return nil
	}
	err := appErrors.WithDetail(appErrors.ErrInvalidShape, "duration", duration)
	err.Details["periods"] = []int(periods)
	return err
}
