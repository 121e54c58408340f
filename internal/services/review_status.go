package services

import (
	"fmt"
	"strings"

	"github.com/surveydesk/backend/internal/models"
)

// ReviewStatus is the moderation state of a survey entry.
type ReviewStatus string

const (
	StatusPending  ReviewStatus = models.ReviewStatusPending
	StatusApproved ReviewStatus = models.ReviewStatusApproved
	StatusRejected ReviewStatus = models.ReviewStatusRejected
)

// ParseReviewStatus accepts exactly one of the three status names.
func ParseReviewStatus(s string) (ReviewStatus, error) {
	switch st := ReviewStatus(strings.TrimSpace(s)); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidReviewStatus, s)
}

// EffectiveStatus maps a stored column value to a status. Rows without a
// status read as pending.
func EffectiveStatus(stored string) ReviewStatus {
	if st, err := ParseReviewStatus(stored); err == nil {
		return st
	}
	return StatusPending
}
