package model

import "time"

// DocumentType represents the kind of application material
type DocumentType string

const (
	DocumentTypeSOP           DocumentType = "sop"            // Statement of Purpose
	DocumentTypePS            DocumentType = "ps"             // Personal Statement
	DocumentTypeCV            DocumentType = "cv"             // Curriculum Vitae
	DocumentTypeWritingSample DocumentType = "writing-sample" // Writing sample
	DocumentTypeCustom        DocumentType = "custom"         // Anything else
)

// Valid reports whether the type is one of the known document kinds
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentTypeSOP, DocumentTypePS, DocumentTypeCV, DocumentTypeWritingSample, DocumentTypeCustom:
		return true
	}
	return false
}

// DocumentStatus represents the revision state of a document
type DocumentStatus string

const (
	DocumentStatusDraft DocumentStatus = "draft"
	DocumentStatusFinal DocumentStatus = "final"
)

// Valid reports whether the status is draft or final
func (s DocumentStatus) Valid() bool {
	return s == DocumentStatusDraft || s == DocumentStatusFinal
}

// Document represents an application material record, optionally backed by
// a file in Spaces and assigned to any number of the owner's programs via
// the document_programs association table.
// LastModified is set server-side on every write to the row.
type Document struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	UserID       uint           `gorm:"index;not null" json:"user_id"`
	Name         string         `gorm:"not null" json:"name"`
	Type         DocumentType   `gorm:"type:varchar(20);not null" json:"type"`
	Status       DocumentStatus `gorm:"type:varchar(10);default:'draft'" json:"status"`
	LastModified time.Time      `gorm:"not null" json:"last_modified"`
	WordCount    *int           `json:"word_count,omitempty"`
	FileURL      *string        `gorm:"type:text" json:"file_url,omitempty"`
	SpacesKey    string         `gorm:"type:varchar(500)" json:"-"` // S3-style key, kept for delete/download

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// DocumentProgram associates a document with one of the owner's programs
type DocumentProgram struct {
	DocumentID uint `gorm:"primaryKey" json:"document_id"`
	ProgramID  uint `gorm:"primaryKey" json:"program_id"`

	// Relationships
	Document Document `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"-"`
	Program  Program  `gorm:"foreignKey:ProgramID;constraint:OnDelete:CASCADE" json:"-"`
}
