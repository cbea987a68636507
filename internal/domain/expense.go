package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Importance classifies an expense for budget composition analysis
type Importance string

const (
	ImportanceImportant Importance = "important"
	ImportanceNormal    Importance = "normal"
	ImportanceLuxury    Importance = "luxury"
)

// Importances lists every valid importance label
var Importances = []Importance{ImportanceImportant, ImportanceNormal, ImportanceLuxury}

// Valid reports whether i is a known importance label
func (i Importance) Valid() bool {
	switch i {
	case ImportanceImportant, ImportanceNormal, ImportanceLuxury:
		return true
	}
	return false
}

// Expense Model
type Expense struct {
	ID         uint       `gorm:"primaryKey" json:"id"`                                    // Primary key
	Title      string     `gorm:"size:255;not null" json:"title"`                          // Short description
	Amount     float64    `gorm:"not null" json:"amount"`                                  // Positive amount
	CategoryID uint       `gorm:"not null;index" json:"categoryId"`                        // Foreign key to Category
	Category   *Category  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"` // Referenced category
	Date       time.Time  `gorm:"not null" json:"date"`                                    // When the money was spent
	Notes      *string    `json:"notes,omitempty"`                                         // Optional notes
	UserID     uint       `gorm:"not null;index:idx_expense_user_period,priority:1" json:"userId"`
	Year       int        `gorm:"not null;index:idx_expense_user_period,priority:2" json:"-"`
	Month      int        `gorm:"not null;index:idx_expense_user_period,priority:3" json:"-"`
	Importance Importance `gorm:"size:16;not null;default:normal" json:"importance"`
}

// RoundAmount rounds a monetary amount to cents
func RoundAmount(a float64) float64 {
	return decimal.NewFromFloat(a).Round(2).InexactFloat64()
}

// BeforeSave keeps the month/year index in sync with Date and stores the amount in cents
func (e *Expense) BeforeSave(tx *gorm.DB) error {
	e.Amount = RoundAmount(e.Amount)
	e.Year = e.Date.Year()
	e.Month = int(e.Date.Month())
	return nil
}
