package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ChallengeType selects the rule a challenge tracks and the shape of its metadata
type ChallengeType string

const (
	ChallengeCategoryLimit     ChallengeType = "category_limit"
	ChallengeImportanceLimit   ChallengeType = "importance_limit"
	ChallengeTimeBased         ChallengeType = "time_based"
	ChallengeSpendingReduction ChallengeType = "spending_reduction"
	ChallengeConsistency       ChallengeType = "consistency"
)

// ChallengeStatus is the lifecycle state of a challenge
type ChallengeStatus string

const (
	ChallengeSuggested ChallengeStatus = "suggested"
	ChallengeActive    ChallengeStatus = "active"
	ChallengeCompleted ChallengeStatus = "completed"
	ChallengeFailed    ChallengeStatus = "failed"
	ChallengeDismissed ChallengeStatus = "dismissed"
)

// Terminal reports whether no further transition is possible
func (s ChallengeStatus) Terminal() bool {
	return s == ChallengeCompleted || s == ChallengeFailed || s == ChallengeDismissed
}

// ErrInvalidMetadata is returned when metadata does not match its challenge type
var ErrInvalidMetadata = errors.New("invalid challenge metadata")

// ChallengeMetadata is the typed, per-type payload of a challenge
type ChallengeMetadata interface {
	ChallengeType() ChallengeType
	Validate() error
}

// CategoryLimitMetadata caps spending in one category
type CategoryLimitMetadata struct {
	CategoryID uint    `json:"categoryId"`
	Limit      float64 `json:"limit"`
}

func (CategoryLimitMetadata) ChallengeType() ChallengeType { return ChallengeCategoryLimit }

func (m CategoryLimitMetadata) Validate() error {
	if m.CategoryID == 0 {
		return fmt.Errorf("%w: categoryId is required", ErrInvalidMetadata)
	}
	if m.Limit <= 0 {
		return fmt.Errorf("%w: limit must be greater than 0", ErrInvalidMetadata)
	}
	return nil
}

// ImportanceLimitMetadata caps spending for one importance label
type ImportanceLimitMetadata struct {
	Importance Importance `json:"importance"`
	Limit      float64    `json:"limit"`
}

func (ImportanceLimitMetadata) ChallengeType() ChallengeType { return ChallengeImportanceLimit }

func (m ImportanceLimitMetadata) Validate() error {
	if !m.Importance.Valid() {
		return fmt.Errorf("%w: unknown importance %q", ErrInvalidMetadata, m.Importance)
	}
	if m.Limit <= 0 {
		return fmt.Errorf("%w: limit must be greater than 0", ErrInvalidMetadata)
	}
	return nil
}

// TimeBasedMetadata asks for no spending (optionally of one importance) for a number of days
type TimeBasedMetadata struct {
	Days       int        `json:"days"`
	Importance Importance `json:"importance,omitempty"`
}

func (TimeBasedMetadata) ChallengeType() ChallengeType { return ChallengeTimeBased }

func (m TimeBasedMetadata) Validate() error {
	if m.Days <= 0 {
		return fmt.Errorf("%w: days must be greater than 0", ErrInvalidMetadata)
	}
	if m.Importance != "" && !m.Importance.Valid() {
		return fmt.Errorf("%w: unknown importance %q", ErrInvalidMetadata, m.Importance)
	}
	return nil
}

// SpendingReductionMetadata asks to spend a percentage less than a baseline
type SpendingReductionMetadata struct {
	BaselineAmount   float64 `json:"baselineAmount"`
	ReductionPercent float64 `json:"reductionPercent"`
}

func (SpendingReductionMetadata) ChallengeType() ChallengeType { return ChallengeSpendingReduction }

func (m SpendingReductionMetadata) Validate() error {
	if m.BaselineAmount <= 0 {
		return fmt.Errorf("%w: baselineAmount must be greater than 0", ErrInvalidMetadata)
	}
	if m.ReductionPercent <= 0 || m.ReductionPercent > 100 {
		return fmt.Errorf("%w: reductionPercent must be in (0, 100]", ErrInvalidMetadata)
	}
	return nil
}

// ConsistencyMetadata asks to stay under a daily limit for a number of days
type ConsistencyMetadata struct {
	DailyLimit float64 `json:"dailyLimit"`
	Days       int     `json:"days"`
}

func (ConsistencyMetadata) ChallengeType() ChallengeType { return ChallengeConsistency }

func (m ConsistencyMetadata) Validate() error {
	if m.DailyLimit <= 0 {
		return fmt.Errorf("%w: dailyLimit must be greater than 0", ErrInvalidMetadata)
	}
	if m.Days <= 0 {
		return fmt.Errorf("%w: days must be greater than 0", ErrInvalidMetadata)
	}
	return nil
}

// ParseChallengeMetadata decodes and validates raw metadata for the given type
func ParseChallengeMetadata(t ChallengeType, raw []byte) (ChallengeMetadata, error) {
	var m ChallengeMetadata
	switch t {
	case ChallengeCategoryLimit:
		m = &CategoryLimitMetadata{}
	case ChallengeImportanceLimit:
		m = &ImportanceLimitMetadata{}
	case ChallengeTimeBased:
		m = &TimeBasedMetadata{}
	case ChallengeSpendingReduction:
		m = &SpendingReductionMetadata{}
	case ChallengeConsistency:
		m = &ConsistencyMetadata{}
	default:
		return nil, fmt.Errorf("%w: unknown challenge type %q", ErrInvalidMetadata, t)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("%w: metadata is required for %s", ErrInvalidMetadata, t)
	}
	if err := json.Unmarshal(raw, m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	m = deref(m)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// deref turns the decode target back into a value so callers can type switch on values
func deref(m ChallengeMetadata) ChallengeMetadata {
	switch v := m.(type) {
	case *CategoryLimitMetadata:
		return *v
	case *ImportanceLimitMetadata:
		return *v
	case *TimeBasedMetadata:
		return *v
	case *SpendingReductionMetadata:
		return *v
	case *ConsistencyMetadata:
		return *v
	}
	return m
}

// Challenge Model
type Challenge struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	UserID       uint              `gorm:"not null;index:idx_challenge_user_status,priority:1" json:"userId"`
	Title        string            `gorm:"size:255;not null" json:"title"`
	Description  string            `gorm:"type:text" json:"description"`
	Type         ChallengeType     `gorm:"size:32;not null" json:"type"`
	Status       ChallengeStatus   `gorm:"size:16;not null;index:idx_challenge_user_status,priority:2" json:"status"`
	StartDate    time.Time         `gorm:"not null" json:"startDate"`
	EndDate      time.Time         `gorm:"not null;index" json:"endDate"`
	Progress     float64           `gorm:"not null;default:0" json:"progress"`
	TargetValue  float64           `gorm:"not null;default:0" json:"targetValue"`
	CurrentValue float64           `gorm:"not null;default:0" json:"currentValue"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `gorm:"autoUpdateTime:false" json:"updatedAt"`
	Metadata     ChallengeMetadata `gorm:"-" json:"metadata"`
	RawMetadata  Payload           `gorm:"column:metadata;type:text" json:"-"`
}

// BeforeSave serializes the typed metadata into its column
func (c *Challenge) BeforeSave(tx *gorm.DB) error {
	if c.Metadata == nil {
		c.RawMetadata = nil
		return nil
	}
	if c.Metadata.ChallengeType() != c.Type {
		return fmt.Errorf("%w: %s metadata on %s challenge", ErrInvalidMetadata, c.Metadata.ChallengeType(), c.Type)
	}
	raw, err := json.Marshal(c.Metadata)
	if err != nil {
		return err
	}
	c.RawMetadata = raw
	return nil
}

// AfterFind restores the typed metadata from its column
func (c *Challenge) AfterFind(tx *gorm.DB) error {
	if len(c.RawMetadata) == 0 {
		c.Metadata = nil
		return nil
	}
	m, err := ParseChallengeMetadata(c.Type, c.RawMetadata)
	if err != nil {
		return err
	}
	c.Metadata = m
	return nil
}

// UnmarshalJSON decodes metadata according to the challenge type
func (c *Challenge) UnmarshalJSON(data []byte) error {
	type plain Challenge
	aux := struct {
		*plain
		Metadata json.RawMessage `json:"metadata"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.Metadata = nil
	if len(aux.Metadata) == 0 || string(aux.Metadata) == "null" {
		return nil
	}
	m, err := ParseChallengeMetadata(c.Type, aux.Metadata)
	if err != nil {
		return err
	}
	c.Metadata = m
	return nil
}
