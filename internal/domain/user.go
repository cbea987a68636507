package domain

// User Model
type User struct {
	ID            uint    `gorm:"primaryKey" json:"id"`                         // Primary key
	Username      string  `gorm:"size:64;uniqueIndex;not null" json:"username"` // Unique lowercase username
	Password      string  `gorm:"not null" json:"-"`                            // Hashed password, never serialized
	Email         string  `gorm:"size:255;uniqueIndex;not null" json:"email"`   // Unique email
	FullName      string  `gorm:"size:255" json:"fullName"`                     // Display name
	MonthlySalary float64 `gorm:"not null;default:0" json:"monthlySalary"`      // Monthly income
	MonthlyBudget float64 `gorm:"not null;default:0" json:"monthlyBudget"`      // Spending limit per month
}

// BudgetLimit returns the monthly limit used for budget alerts, falling back to salary
func (u User) BudgetLimit() float64 {
	if u.MonthlyBudget > 0 {
		return u.MonthlyBudget
	}
	return u.MonthlySalary
}
