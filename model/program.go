package model

import "time"

// ProgramStatus represents where a program sits in the application pipeline
type ProgramStatus string

const (
	ProgramStatusResearching ProgramStatus = "researching"
	ProgramStatusApplying    ProgramStatus = "applying"
	ProgramStatusSubmitted   ProgramStatus = "submitted"
	ProgramStatusDecision    ProgramStatus = "decision"
)

// Valid reports whether the status is one of the known pipeline stages
func (s ProgramStatus) Valid() bool {
	switch s {
	case ProgramStatusResearching, ProgramStatusApplying, ProgramStatusSubmitted, ProgramStatusDecision:
		return true
	}
	return false
}

// Program represents a PhD application target tracked by a user.
// RequirementsCompleted and RequirementsTotal are a materialized cache
// derived from the program's requirement rows; they are recomputed after
// every requirement mutation and must never be treated as source of truth.
type Program struct {
	ID                    uint          `gorm:"primaryKey" json:"id"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
	UserID                uint          `gorm:"index;not null" json:"user_id"`
	University            string        `gorm:"not null" json:"university"`
	Department            string        `gorm:"not null" json:"department"`
	Deadline              time.Time     `gorm:"not null" json:"deadline"`
	Status                ProgramStatus `gorm:"type:varchar(20);default:'researching'" json:"status"`
	RequirementsCompleted int           `gorm:"default:0" json:"requirements_completed"`
	RequirementsTotal     int           `gorm:"default:0" json:"requirements_total"`
	Fee                   *float64      `json:"fee,omitempty"`
	Notes                 string        `gorm:"type:text" json:"notes,omitempty"`

	// Relationships
	User         User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Requirements []Requirement `gorm:"foreignKey:ProgramID;constraint:OnDelete:CASCADE" json:"-"`
}
