package services

import (
	"context"
	"fmt"
	"log"

	"github.com/gradtrack/gradtrack-api/model"
	"gorm.io/gorm"
)

// ProgramService handles program CRUD and the requirement counter cache
type ProgramService struct {
	db *gorm.DB
}

// NewProgramService creates a new program service
func NewProgramService(db *gorm.DB) *ProgramService {
	return &ProgramService{db: db}
}

// List returns the user's programs ordered by deadline, optionally filtered by status
func (s *ProgramService) List(ctx context.Context, userID uint, status model.ProgramStatus) ([]model.Program, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var programs []model.Program
	if err := query.Order("deadline ASC").Find(&programs).Error; err != nil {
		return nil, err
	}
	return programs, nil
}

// Get returns one of the user's programs
func (s *ProgramService) Get(ctx context.Context, userID, id uint) (*model.Program, error) {
	var program model.Program
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&program).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &program, nil
}

// Create inserts a new program. Counters start at zero; they are only ever
// written by recomputation from the requirement rows.
func (s *ProgramService) Create(ctx context.Context, userID uint, program *model.Program) error {
	program.UserID = userID
	program.RequirementsCompleted = 0
	program.RequirementsTotal = 0
	if program.Status == "" {
		program.Status = model.ProgramStatusResearching
	}
	return s.db.WithContext(ctx).Create(program).Error
}

// Update applies a partial update to one of the user's programs.
// The counter columns are never updated here.
func (s *ProgramService) Update(ctx context.Context, userID, id uint, updates map[string]interface{}) (*model.Program, error) {
	program, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(program).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return program, nil
}

// Delete removes a program together with its requirements and any
// document associations pointing at it, in one transaction.
func (s *ProgramService) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("program_id = ?", id).Delete(&model.Requirement{}).Error; err != nil {
			return err
		}
		if err := tx.Where("program_id = ?", id).Delete(&model.DocumentProgram{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Program{}).Error
	})
}

// Recount recomputes the counter cache for one of the user's programs.
// This is the independent repair entry point: staleness left behind by a
// failed post-mutation recompute can always be corrected here.
func (s *ProgramService) Recount(ctx context.Context, userID, id uint) (*model.Program, error) {
	program, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	completed, total, err := RecomputeCounters(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	program.RequirementsCompleted = completed
	program.RequirementsTotal = total
	return program, nil
}

// RecomputeCounters derives a program's completed/total requirement counters
// from a full scan of its requirement rows and persists them in a single
// UPDATE. A program with zero requirements yields {0, 0}. The derivation is
// idempotent: calling it twice with no intervening mutation writes the same
// values.
func RecomputeCounters(db *gorm.DB, programID uint) (completed, total int, err error) {
	var totalCount, completedCount int64

	if err := db.Model(&model.Requirement{}).
		Where("program_id = ?", programID).
		Count(&totalCount).Error; err != nil {
		return 0, 0, fmt.Errorf("count requirements: %w", err)
	}

	if err := db.Model(&model.Requirement{}).
		Where("program_id = ? AND completed = ?", programID, true).
		Count(&completedCount).Error; err != nil {
		return 0, 0, fmt.Errorf("count completed requirements: %w", err)
	}

	err = db.Model(&model.Program{}).
		Where("id = ?", programID).
		Updates(map[string]interface{}{
			"requirements_completed": completedCount,
			"requirements_total":     totalCount,
		}).Error
	if err != nil {
		return 0, 0, fmt.Errorf("persist counters: %w", err)
	}

	return int(completedCount), int(totalCount), nil
}

// recomputeCountersAfterMutation runs the counter recomputation as a
// secondary step after a successful requirement mutation. A failure here
// leaves the counters stale until the next recomputation; it is logged as
// a warning and never propagated, so the triggering mutation still
// succeeds from the caller's perspective.
func recomputeCountersAfterMutation(db *gorm.DB, programID uint) {
	if _, _, err := RecomputeCounters(db, programID); err != nil {
		log.Printf("Warning: failed to recompute requirement counters for program %d: %v", programID, err)
	}
}
