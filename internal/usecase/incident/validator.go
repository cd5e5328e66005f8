package incident

import (
	"fmt"
	"math"
	"strconv"

	domainIncident "patroltrack/internal/domain/incident"
	appErrors "patroltrack/pkg/errors"
)

// validTransitions is the closed lifecycle machine. Status only moves
// forward; the direct under_review -> resolved edge covers reports closed
// without dispatching a tanod.
var validTransitions = map[domainIncident.Status][]domainIncident.Status{
	domainIncident.StatusUnderReview: {
		domainIncident.StatusInProgress,
		domainIncident.StatusResolved,
	},
	domainIncident.StatusInProgress: {
		domainIncident.StatusResolved,
	},
	domainIncident.StatusResolved: {
		// Terminal state - no transitions
	},
}

// ValidateStatusTransition checks if a status transition is allowed.
func ValidateStatusTransition(currentStatus, newStatus domainIncident.Status) error {
	allowedStatuses, exists := validTransitions[currentStatus]
	if !exists {
		return appErrors.NewAppError(
			"INVALID_STATUS",
			fmt.Sprintf("Unknown current status: %s", currentStatus),
			domainIncident.ErrInvalidStatus,
		)
	}

	for _, allowed := range allowedStatuses {
		if newStatus == allowed {
			return nil
		}
	}

	return appErrors.NewAppError(
		"INVALID_TRANSITION",
		fmt.Sprintf("Cannot transition from %s to %s", currentStatus, newStatus),
		domainIncident.ErrInvalidTransition,
	)
}

// ParseCoordinate parses a latitude/longitude string as an IEEE-754 double
// and rejects non-finite results. "NaN" and "Inf" parse successfully in Go,
// so finiteness has to be checked explicitly.
func ParseCoordinate(field, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, appErrors.NewAppError(
			"INVALID_INCIDENT_DATA",
			fmt.Sprintf("%s %q is not a number", field, value),
			domainIncident.ErrInvalidData,
		)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, appErrors.NewAppError(
			"INVALID_INCIDENT_DATA",
			fmt.Sprintf("%s %q is not finite", field, value),
			domainIncident.ErrInvalidData,
		)
	}

	return f, nil
}
