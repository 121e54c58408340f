package models

import "time"

// Review statuses of a survey entry. Rows written before the column existed
// may carry an empty status, which reads as pending.
const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

// SurveyEntry is one anonymous questionnaire submission.
// The four multi-select answers are stored as JSON arrays in text columns,
// see EncodeTags and DecodeTags.
type SurveyEntry struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `gorm:"index" json:"updatedAt"`

	// Employer location
	Province string `gorm:"size:50" json:"province"`
	City     string `gorm:"size:50" json:"city"`
	District string `gorm:"size:50" json:"district"`

	// Demographics
	Gender     string `gorm:"size:20" json:"gender"`
	AgeRange   string `gorm:"size:20" json:"ageRange"`
	Occupation string `gorm:"size:100" json:"occupation"`

	// Employer
	CompanyName string `gorm:"size:200" json:"companyName"`
	CompanySize string `gorm:"size:50" json:"companySize"`
	CompanyType int    `json:"companyType"`

	// Working conditions
	DailyWorkHours      float64 `json:"dailyWorkHours"`
	WeeklyWorkDays      float64 `json:"weeklyWorkDays"`
	OvertimePay         string  `gorm:"size:50" json:"overtimePay"`
	NegativeConsequence string  `gorm:"size:50" json:"negativeConsequence"`

	LongWorkIssues             *string `gorm:"type:text" json:"longWorkIssues"`
	LongWorkIssuesOtherText    *string `gorm:"type:text" json:"longWorkIssuesOtherText"`
	DiscriminationReasons      *string `gorm:"type:text" json:"discriminationReasons"`
	DiscriminationReasonsOther *string `gorm:"type:text" json:"discriminationReasonsOther"`
	ViolationsObserved         *string `gorm:"type:text" json:"violationsObserved"`
	ViolationsObservedOther    *string `gorm:"type:text" json:"violationsObservedOther"`
	ExpectedChanges            *string `gorm:"type:text" json:"expectedChanges"`
	ExpectedChangesOther       *string `gorm:"type:text" json:"expectedChangesOther"`

	Story      *string `gorm:"type:text" json:"story"`
	SafetyWord *string `gorm:"size:100" json:"safetyWord"`

	// Review metadata, written only by status transitions
	ReviewStatus  string  `gorm:"size:20;default:pending;index" json:"reviewStatus"`
	Reviewer      *string `gorm:"size:255" json:"reviewer"`
	ReviewComment *string `gorm:"type:text" json:"reviewComment"`
}

func (SurveyEntry) TableName() string { return "survey_entries" }
