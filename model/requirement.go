package model

import "time"

// Requirement is a checklist item belonging to a program.
// DocumentID is a weak reference: there is no foreign key constraint and
// no cascade, so it may dangle after the document is deleted. Readers must
// treat a dangling reference as "no document attached".
type Requirement struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	ProgramID  uint      `gorm:"index;not null" json:"program_id"`
	Name       string    `gorm:"not null" json:"name"`
	Completed  bool      `gorm:"default:false" json:"completed"`
	Notes      string    `gorm:"type:text" json:"notes,omitempty"`
	DocumentID *uint     `gorm:"index" json:"document_id,omitempty"`

	// Relationships
	Program Program `gorm:"foreignKey:ProgramID;constraint:OnDelete:CASCADE" json:"-"`
}
