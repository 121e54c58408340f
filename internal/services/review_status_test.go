package services

import (
	"errors"
	"testing"
)

func TestParseReviewStatus(t *testing.T) {
	for _, s := range []string{"pending", "approved", "rejected", " approved "} {
		if _, err := ParseReviewStatus(s); err != nil {
			t.Errorf("%q: unexpected error %v", s, err)
		}
	}
	for _, s := range []string{"", "Approved", "archived", "deleted"} {
		if _, err := ParseReviewStatus(s); !errors.Is(err, ErrInvalidReviewStatus) {
			t.Errorf("%q: expected ErrInvalidReviewStatus, got %v", s, err)
		}
	}
}

func TestEffectiveStatus(t *testing.T) {
	tests := map[string]ReviewStatus{
		"":         StatusPending,
		"pending":  StatusPending,
		"approved": StatusApproved,
		"rejected": StatusRejected,
	}
	for stored, want := range tests {
		if got := EffectiveStatus(stored); got != want {
			t.Errorf("EffectiveStatus(%q) = %q, expected %q", stored, got, want)
		}
	}
}
