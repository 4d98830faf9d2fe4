package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/gradtrack/gradtrack-api/model"
	"gorm.io/gorm"
)

// RequirementService handles the per-program requirement checklists.
// Every successful mutation triggers a recomputation of the owning
// program's counter cache.
type RequirementService struct {
	db *gorm.DB
}

// NewRequirementService creates a new requirement service
func NewRequirementService(db *gorm.DB) *RequirementService {
	return &RequirementService{db: db}
}

// ListByProgram returns a program's requirements in creation order.
// Dangling document references (the document was deleted after being
// attached) are resolved to nil, so readers see "no document attached".
func (s *RequirementService) ListByProgram(ctx context.Context, userID, programID uint) ([]model.Requirement, error) {
	if err := s.checkProgramOwned(ctx, userID, programID); err != nil {
		return nil, err
	}

	var requirements []model.Requirement
	err := s.db.WithContext(ctx).
		Where("program_id = ?", programID).
		Order("created_at ASC").
		Find(&requirements).Error
	if err != nil {
		return nil, err
	}

	if err := s.clearDanglingDocumentRefs(ctx, userID, requirements); err != nil {
		return nil, err
	}
	return requirements, nil
}

// Create adds a requirement under one of the user's programs and
// recomputes the program's counters.
func (s *RequirementService) Create(ctx context.Context, userID, programID uint, name, notes string) (*model.Requirement, error) {
	if err := s.checkProgramOwned(ctx, userID, programID); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: requirement name must not be empty", ErrValidation)
	}

	requirement := model.Requirement{
		ProgramID: programID,
		Name:      name,
		Completed: false,
		Notes:     notes,
	}
	if err := s.db.WithContext(ctx).Create(&requirement).Error; err != nil {
		return nil, err
	}

	recomputeCountersAfterMutation(s.db.WithContext(ctx), programID)
	return &requirement, nil
}

// RequirementUpdates holds the optional fields of a partial requirement update
type RequirementUpdates struct {
	Name      *string
	Completed *bool
	Notes     *string
}

// Update applies a partial update and recomputes the owning program's counters
func (s *RequirementService) Update(ctx context.Context, userID, id uint, updates RequirementUpdates) (*model.Requirement, error) {
	requirement, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if updates.Name != nil {
		name := strings.TrimSpace(*updates.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: requirement name must not be empty", ErrValidation)
		}
		fields["name"] = name
	}
	if updates.Completed != nil {
		fields["completed"] = *updates.Completed
	}
	if updates.Notes != nil {
		fields["notes"] = *updates.Notes
	}

	if len(fields) > 0 {
		if err := s.db.WithContext(ctx).Model(requirement).Updates(fields).Error; err != nil {
			return nil, err
		}
	}

	recomputeCountersAfterMutation(s.db.WithContext(ctx), requirement.ProgramID)
	return requirement, nil
}

// AttachDocument sets the requirement's weak document reference. Attaching
// while a document is already attached simply replaces the reference.
func (s *RequirementService) AttachDocument(ctx context.Context, userID, id, documentID uint) (*model.Requirement, error) {
	requirement, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	var count int64
	err = s.db.WithContext(ctx).Model(&model.Document{}).
		Where("id = ? AND user_id = ?", documentID, userID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: document %d does not exist or is not yours", ErrValidation, documentID)
	}

	if err := s.db.WithContext(ctx).Model(requirement).Update("document_id", documentID).Error; err != nil {
		return nil, err
	}
	return requirement, nil
}

// DetachDocument clears the requirement's document reference
func (s *RequirementService) DetachDocument(ctx context.Context, userID, id uint) (*model.Requirement, error) {
	requirement, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(requirement).Update("document_id", nil).Error; err != nil {
		return nil, err
	}
	return requirement, nil
}

// Delete removes a requirement and recomputes the owning program's counters
func (s *RequirementService) Delete(ctx context.Context, userID, id uint) error {
	requirement, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&model.Requirement{}, requirement.ID).Error; err != nil {
		return err
	}

	recomputeCountersAfterMutation(s.db.WithContext(ctx), requirement.ProgramID)
	return nil
}

// getOwned loads a requirement, checking ownership through the owning program
func (s *RequirementService) getOwned(ctx context.Context, userID, id uint) (*model.Requirement, error) {
	var requirement model.Requirement
	err := s.db.WithContext(ctx).
		Joins("JOIN programs ON programs.id = requirements.program_id").
		Where("requirements.id = ? AND programs.user_id = ?", id, userID).
		First(&requirement).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &requirement, nil
}

func (s *RequirementService) checkProgramOwned(ctx context.Context, userID, programID uint) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Program{}).
		Where("id = ? AND user_id = ?", programID, userID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// clearDanglingDocumentRefs nils out document references whose target no
// longer exists. The rows themselves are left untouched.
func (s *RequirementService) clearDanglingDocumentRefs(ctx context.Context, userID uint, requirements []model.Requirement) error {
	ids := make([]uint, 0, len(requirements))
	for _, r := range requirements {
		if r.DocumentID != nil {
			ids = append(ids, *r.DocumentID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var existing []uint
	err := s.db.WithContext(ctx).Model(&model.Document{}).
		Where("id IN ? AND user_id = ?", ids, userID).
		Pluck("id", &existing).Error
	if err != nil {
		return err
	}

	exists := make(map[uint]bool, len(existing))
	for _, id := range existing {
		exists[id] = true
	}

	for i := range requirements {
		if requirements[i].DocumentID != nil && !exists[*requirements[i].DocumentID] {
			requirements[i].DocumentID = nil
		}
	}
	return nil
}
