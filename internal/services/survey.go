package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/surveydesk/backend/internal/models"
	"gorm.io/gorm"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type SurveyService struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

// NewSurveyService returns a service rendering timestamps in loc.
// A nil loc renders UTC.
func NewSurveyService(db *gorm.DB, loc *time.Location) *SurveyService {
	if loc == nil {
		loc = time.UTC
	}
	return &SurveyService{
		db:  db,
		loc: loc,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// TagInput is a multi-select answer as sent by clients: either a JSON array
// of strings or one string separated by commas or enumeration commas.
type TagInput []string

func (t *TagInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = TagInput{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = models.SplitTags(s)
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("multi-select answer must be a string or an array of strings: %w", err)
	}
	*t = models.NormalizeTags(items)
	return nil
}

func (t TagInput) encode() string {
	return models.EncodeTags(models.NormalizeTags(t))
}

// SurveyView is the read projection of an entry with multi-select answers
// decoded and timestamps in the display zone.
type SurveyView struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Province string `json:"province"`
	City     string `json:"city"`
	District string `json:"district"`

	Gender     string `json:"gender"`
	AgeRange   string `json:"ageRange"`
	Occupation string `json:"occupation"`

	CompanyName string `json:"companyName"`
	CompanySize string `json:"companySize"`
	CompanyType int    `json:"companyType"`

	DailyWorkHours      float64 `json:"dailyWorkHours"`
	WeeklyWorkDays      float64 `json:"weeklyWorkDays"`
	OvertimePay         string  `json:"overtimePay"`
	NegativeConsequence string  `json:"negativeConsequence"`

	LongWorkIssues             []string `json:"longWorkIssues"`
	LongWorkIssuesOtherText    *string  `json:"longWorkIssuesOtherText"`
	DiscriminationReasons      []string `json:"discriminationReasons"`
	DiscriminationReasonsOther *string  `json:"discriminationReasonsOther"`
	ViolationsObserved         []string `json:"violationsObserved"`
	ViolationsObservedOther    *string  `json:"violationsObservedOther"`
	ExpectedChanges            []string `json:"expectedChanges"`
	ExpectedChangesOther       *string  `json:"expectedChangesOther"`

	Story      *string `json:"story"`
	SafetyWord *string `json:"safetyWord"`

	ReviewStatus  ReviewStatus `json:"reviewStatus"`
	Reviewer      *string      `json:"reviewer"`
	ReviewComment *string      `json:"reviewComment"`
}

// surveyViewColumns is the column allow-list read by every survey query.
var surveyViewColumns = []string{
	"id", "created_at", "updated_at",
	"province", "city", "district",
	"gender", "age_range", "occupation",
	"company_name", "company_size", "company_type",
	"daily_work_hours", "weekly_work_days", "overtime_pay", "negative_consequence",
	"long_work_issues", "long_work_issues_other_text",
	"discrimination_reasons", "discrimination_reasons_other",
	"violations_observed", "violations_observed_other",
	"expected_changes", "expected_changes_other",
	"story", "safety_word",
	"review_status", "reviewer", "review_comment",
}

func (s *SurveyService) toView(e *models.SurveyEntry) SurveyView {
	return SurveyView{
		ID:                         e.ID,
		CreatedAt:                  e.CreatedAt.In(s.loc),
		UpdatedAt:                  e.UpdatedAt.In(s.loc),
		Province:                   e.Province,
		City:                       e.City,
		District:                   e.District,
		Gender:                     e.Gender,
		AgeRange:                   e.AgeRange,
		Occupation:                 e.Occupation,
		CompanyName:                e.CompanyName,
		CompanySize:                e.CompanySize,
		CompanyType:                e.CompanyType,
		DailyWorkHours:             e.DailyWorkHours,
		WeeklyWorkDays:             e.WeeklyWorkDays,
		OvertimePay:                e.OvertimePay,
		NegativeConsequence:        e.NegativeConsequence,
		LongWorkIssues:             models.DecodeTagsPtr(e.LongWorkIssues),
		LongWorkIssuesOtherText:    e.LongWorkIssuesOtherText,
		DiscriminationReasons:      models.DecodeTagsPtr(e.DiscriminationReasons),
		DiscriminationReasonsOther: e.DiscriminationReasonsOther,
		ViolationsObserved:         models.DecodeTagsPtr(e.ViolationsObserved),
		ViolationsObservedOther:    e.ViolationsObservedOther,
		ExpectedChanges:            models.DecodeTagsPtr(e.ExpectedChanges),
		ExpectedChangesOther:       e.ExpectedChangesOther,
		Story:                      e.Story,
		SafetyWord:                 e.SafetyWord,
		ReviewStatus:               EffectiveStatus(e.ReviewStatus),
		Reviewer:                   e.Reviewer,
		ReviewComment:              e.ReviewComment,
	}
}

// scoped returns a query over survey_entries restricted to status.
// An empty status matches every row. Pending matches every row that
// EffectiveStatus reads as pending, so unset and unknown values included.
func (s *SurveyService) scoped(ctx context.Context, status ReviewStatus) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.SurveyEntry{})
	switch status {
	case "":
	case StatusPending:
		q = q.Where("(review_status NOT IN ? OR review_status IS NULL)",
			[]ReviewStatus{StatusApproved, StatusRejected})
	default:
		q = q.Where("review_status = ?", status)
	}
	return q
}

type SurveyListRequest struct {
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

type SurveyListResponse struct {
	Data  []SurveyView `json:"data"`
	Total int64        `json:"total"`
}

// List returns one page of entries, newest update first, and the number of
// entries matching the status filter.
func (s *SurveyService) List(ctx context.Context, req *SurveyListRequest) (*SurveyListResponse, error) {
	var status ReviewStatus
	if req.Status != "" {
		st, err := ParseReviewStatus(req.Status)
		if err != nil {
			return nil, err
		}
		status = st
	}

	page, pageSize := req.Page, req.PageSize
	if page == 0 {
		page = DefaultPage
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 || pageSize < 1 || pageSize > MaxPageSize {
		return nil, ErrInvalidPagination
	}

	var total int64
	if err := s.scoped(ctx, status).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count surveys: %w", err)
	}

	var entries []models.SurveyEntry
	err := s.scoped(ctx, status).
		Select(surveyViewColumns).
		Order("updated_at DESC").
		Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}

	views := make([]SurveyView, 0, len(entries))
	for i := range entries {
		views = append(views, s.toView(&entries[i]))
	}
	return &SurveyListResponse{Data: views, Total: total}, nil
}

// StatusCounts holds the number of entries per status.
type StatusCounts struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Total    int64 `json:"total"`
}

// StatusCounts counts entries with the same filters List uses for total.
func (s *SurveyService) StatusCounts(ctx context.Context) (*StatusCounts, error) {
	counts := &StatusCounts{}
	targets := []struct {
		status ReviewStatus
		dst    *int64
	}{
		{StatusPending, &counts.Pending},
		{StatusApproved, &counts.Approved},
		{StatusRejected, &counts.Rejected},
		{"", &counts.Total},
	}
	for _, t := range targets {
		if err := s.scoped(ctx, t.status).Count(t.dst).Error; err != nil {
			return nil, fmt.Errorf("count %s surveys: %w", t.status, err)
		}
	}
	return counts, nil
}

// Get returns a single entry.
func (s *SurveyService) Get(ctx context.Context, id string) (*SurveyView, error) {
	entry, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	view := s.toView(entry)
	return &view, nil
}

func (s *SurveyService) find(ctx context.Context, id string) (*models.SurveyEntry, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingSurveyID
	}
	var entry models.SurveyEntry
	if err := s.db.WithContext(ctx).Select(surveyViewColumns).Where("id = ?", id).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("get survey %s: %w", id, err)
	}
	return &entry, nil
}

type TransitionRequest struct {
	SurveyID      string `json:"surveyId"`
	ReviewStatus  string `json:"reviewStatus"`
	ReviewComment string `json:"reviewComment"`
}

// Transition moves an entry to a new status and stamps the reviewer and
// comment. Any status may move to any other, or be re-stamped with itself;
// the previous reviewer and comment are overwritten.
func (s *SurveyService) Transition(ctx context.Context, req *TransitionRequest, reviewer string) (*SurveyView, error) {
	if strings.TrimSpace(req.SurveyID) == "" {
		return nil, ErrMissingSurveyID
	}
	status, err := ParseReviewStatus(req.ReviewStatus)
	if err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).
		Model(&models.SurveyEntry{}).
		Where("id = ?", req.SurveyID).
		Updates(map[string]interface{}{
			"review_status":  string(status),
			"reviewer":       reviewer,
			"review_comment": req.ReviewComment,
			"updated_at":     s.now(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("transition survey %s: %w", req.SurveyID, result.Error)
	}

	return s.Get(ctx, req.SurveyID)
}

// SurveyUpdateRequest carries a content correction. Nil fields are left
// untouched. Review metadata is not part of the request.
type SurveyUpdateRequest struct {
	ID string `json:"id"`

	Province *string `json:"province"`
	City     *string `json:"city"`
	District *string `json:"district"`

	Gender     *string `json:"gender"`
	AgeRange   *string `json:"ageRange"`
	Occupation *string `json:"occupation"`

	CompanyName *string `json:"companyName"`
	CompanySize *string `json:"companySize"`
	CompanyType *int    `json:"companyType"`

	DailyWorkHours      *float64 `json:"dailyWorkHours"`
	WeeklyWorkDays      *float64 `json:"weeklyWorkDays"`
	OvertimePay         *string  `json:"overtimePay"`
	NegativeConsequence *string  `json:"negativeConsequence"`

	LongWorkIssues             *TagInput `json:"longWorkIssues"`
	LongWorkIssuesOtherText    *string   `json:"longWorkIssuesOtherText"`
	DiscriminationReasons      *TagInput `json:"discriminationReasons"`
	DiscriminationReasonsOther *string   `json:"discriminationReasonsOther"`
	ViolationsObserved         *TagInput `json:"violationsObserved"`
	ViolationsObservedOther    *string   `json:"violationsObservedOther"`
	ExpectedChanges            *TagInput `json:"expectedChanges"`
	ExpectedChangesOther       *string   `json:"expectedChangesOther"`

	Story      *string `json:"story"`
	SafetyWord *string `json:"safetyWord"`
}

func (r *SurveyUpdateRequest) changes() map[string]interface{} {
	updates := make(map[string]interface{})
	setString := func(column string, v *string) {
		if v != nil {
			updates[column] = *v
		}
	}
	setTags := func(column string, v *TagInput) {
		if v != nil {
			updates[column] = v.encode()
		}
	}

	setString("province", r.Province)
	setString("city", r.City)
	setString("district", r.District)
	setString("gender", r.Gender)
	setString("age_range", r.AgeRange)
	setString("occupation", r.Occupation)
	setString("company_name", r.CompanyName)
	setString("company_size", r.CompanySize)
	if r.CompanyType != nil {
		updates["company_type"] = *r.CompanyType
	}
	if r.DailyWorkHours != nil {
		updates["daily_work_hours"] = *r.DailyWorkHours
	}
	if r.WeeklyWorkDays != nil {
		updates["weekly_work_days"] = *r.WeeklyWorkDays
	}
	setString("overtime_pay", r.OvertimePay)
	setString("negative_consequence", r.NegativeConsequence)

	setTags("long_work_issues", r.LongWorkIssues)
	setString("long_work_issues_other_text", r.LongWorkIssuesOtherText)
	setTags("discrimination_reasons", r.DiscriminationReasons)
	setString("discrimination_reasons_other", r.DiscriminationReasonsOther)
	setTags("violations_observed", r.ViolationsObserved)
	setString("violations_observed_other", r.ViolationsObservedOther)
	setTags("expected_changes", r.ExpectedChanges)
	setString("expected_changes_other", r.ExpectedChangesOther)

	setString("story", r.Story)
	setString("safety_word", r.SafetyWord)
	return updates
}

// Update applies a content correction and refreshes updated_at.
func (s *SurveyService) Update(ctx context.Context, req *SurveyUpdateRequest) (*SurveyView, error) {
	if strings.TrimSpace(req.ID) == "" {
		return nil, ErrMissingSurveyID
	}
	updates := req.changes()
	if len(updates) == 0 {
		return nil, ErrNoFieldsToUpdate
	}
	updates["updated_at"] = s.now()

	result := s.db.WithContext(ctx).
		Model(&models.SurveyEntry{}).
		Where("id = ?", req.ID).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("update survey %s: %w", req.ID, result.Error)
	}

	return s.Get(ctx, req.ID)
}

// Submission is a new questionnaire as submitted by a respondent.
type Submission struct {
	Province string `json:"province"`
	City     string `json:"city"`
	District string `json:"district"`

	Gender     string `json:"gender"`
	AgeRange   string `json:"ageRange"`
	Occupation string `json:"occupation"`

	CompanyName string `json:"companyName"`
	CompanySize string `json:"companySize"`
	CompanyType int    `json:"companyType"`

	DailyWorkHours      float64 `json:"dailyWorkHours"`
	WeeklyWorkDays      float64 `json:"weeklyWorkDays"`
	OvertimePay         string  `json:"overtimePay"`
	NegativeConsequence string  `json:"negativeConsequence"`

	LongWorkIssues             TagInput `json:"longWorkIssues"`
	LongWorkIssuesOtherText    *string  `json:"longWorkIssuesOtherText"`
	DiscriminationReasons      TagInput `json:"discriminationReasons"`
	DiscriminationReasonsOther *string  `json:"discriminationReasonsOther"`
	ViolationsObserved         TagInput `json:"violationsObserved"`
	ViolationsObservedOther    *string  `json:"violationsObservedOther"`
	ExpectedChanges            TagInput `json:"expectedChanges"`
	ExpectedChangesOther       *string  `json:"expectedChangesOther"`

	Story      *string `json:"story"`
	SafetyWord *string `json:"safetyWord"`
}

func encodedTags(t TagInput) *string {
	s := t.encode()
	return &s
}

// Create stores a submission as a new pending entry.
func (s *SurveyService) Create(ctx context.Context, sub *Submission) (*SurveyView, error) {
	now := s.now()
	entry := models.SurveyEntry{
		ID:                         uuid.NewString(),
		CreatedAt:                  now,
		UpdatedAt:                  now,
		Province:                   sub.Province,
		City:                       sub.City,
		District:                   sub.District,
		Gender:                     sub.Gender,
		AgeRange:                   sub.AgeRange,
		Occupation:                 sub.Occupation,
		CompanyName:                sub.CompanyName,
		CompanySize:                sub.CompanySize,
		CompanyType:                sub.CompanyType,
		DailyWorkHours:             sub.DailyWorkHours,
		WeeklyWorkDays:             sub.WeeklyWorkDays,
		OvertimePay:                sub.OvertimePay,
		NegativeConsequence:        sub.NegativeConsequence,
		LongWorkIssues:             encodedTags(sub.LongWorkIssues),
		LongWorkIssuesOtherText:    sub.LongWorkIssuesOtherText,
		DiscriminationReasons:      encodedTags(sub.DiscriminationReasons),
		DiscriminationReasonsOther: sub.DiscriminationReasonsOther,
		ViolationsObserved:         encodedTags(sub.ViolationsObserved),
		ViolationsObservedOther:    sub.ViolationsObservedOther,
		ExpectedChanges:            encodedTags(sub.ExpectedChanges),
		ExpectedChangesOther:       sub.ExpectedChangesOther,
		Story:                      sub.Story,
		SafetyWord:                 sub.SafetyWord,
		ReviewStatus:               string(StatusPending),
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("create survey: %w", err)
	}
	view := s.toView(&entry)
	return &view, nil
}
