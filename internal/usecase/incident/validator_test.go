package incident

import (
	"errors"
	"testing"

	domainIncident "patroltrack/internal/domain/incident"
	appErrors "patroltrack/pkg/errors"
)

func TestValidateStatusTransition(t *testing.T) {
	cases := []struct {
		name    string
		from    domainIncident.Status
		to      domainIncident.Status
		wantErr error
	}{
		{"review to in progress", domainIncident.StatusUnderReview, domainIncident.StatusInProgress, nil},
		{"review straight to resolved", domainIncident.StatusUnderReview, domainIncident.StatusResolved, nil},
		{"in progress to resolved", domainIncident.StatusInProgress, domainIncident.StatusResolved, nil},
		{"in progress back to review", domainIncident.StatusInProgress, domainIncident.StatusUnderReview, domainIncident.ErrInvalidTransition},
		{"resolved to in progress", domainIncident.StatusResolved, domainIncident.StatusInProgress, domainIncident.ErrInvalidTransition},
		{"resolved to review", domainIncident.StatusResolved, domainIncident.StatusUnderReview, domainIncident.ErrInvalidTransition},
		{"self transition", domainIncident.StatusInProgress, domainIncident.StatusInProgress, domainIncident.ErrInvalidTransition},
		{"unknown current status", domainIncident.Status("escalated"), domainIncident.StatusResolved, domainIncident.ErrInvalidStatus},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStatusTransition(tc.from, tc.to)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestParseCoordinate(t *testing.T) {
	got, err := ParseCoordinate("latitude", "14.5995")
	if err != nil {
		t.Fatalf("expected valid coordinate, got %v", err)
	}
	if got != 14.5995 {
		t.Errorf("expected 14.5995, got %v", got)
	}

	for _, bad := range []string{"abc", "", "NaN", "nan", "Inf", "+Inf", "-Inf", "12,5"} {
		_, err := ParseCoordinate("latitude", bad)
		if err == nil {
			t.Errorf("expected %q to be rejected", bad)
			continue
		}
		if !errors.Is(err, domainIncident.ErrInvalidData) {
			t.Errorf("expected ErrInvalidData for %q, got %v", bad, err)
		}
		if code := appErrors.CodeOf(err); code != "INVALID_INCIDENT_DATA" {
			t.Errorf("expected INVALID_INCIDENT_DATA for %q, got %q", bad, code)
		}
	}
}
