package domain

import "time"

// SavingsGoal Model
type SavingsGoal struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Title         string     `gorm:"size:255;not null" json:"title"`
	TargetAmount  float64    `gorm:"not null" json:"targetAmount"`
	CurrentAmount float64    `gorm:"not null;default:0" json:"currentAmount"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	UserID        uint       `gorm:"not null;index" json:"userId"`
	SubGoals      []SubGoal  `gorm:"foreignKey:GoalID;constraint:OnDelete:CASCADE;" json:"subGoals"`
}

// Reached reports whether the saved amount covers the target
func (g SavingsGoal) Reached() bool {
	return g.TargetAmount > 0 && g.CurrentAmount >= g.TargetAmount
}

// SubGoal Model
type SubGoal struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Title     string `gorm:"size:255;not null" json:"title"`
	Progress  int    `gorm:"not null;default:0" json:"progress"` // 0-100
	GoalID    uint   `gorm:"not null;index" json:"goalId"`
	Completed bool   `gorm:"not null;default:false" json:"completed"`
}

// SetProgress clamps p into 0-100 and marks the sub-goal completed at 100
func (s *SubGoal) SetProgress(p int) {
	s.Progress = ClampPercent(p)
	s.Completed = s.Progress == 100
}

// ClampPercent limits p to the 0-100 range
func ClampPercent[T int | float64](p T) T {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
