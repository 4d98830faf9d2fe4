package services

import (
	"context"
	"testing"

	"github.com/gradtrack/gradtrack-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestRequirementCreateUpdatesCounters(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "reqcreate@example.com")
	program := createTestProgram(t, db, userID)
	svc := NewRequirementService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, userID, program.ID, "Transcript", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, userID, program.ID, "GRE scores", "optional at some schools")
	require.NoError(t, err)

	stored := loadProgram(t, db, program.ID)
	assert.Equal(t, 0, stored.RequirementsCompleted)
	assert.Equal(t, 2, stored.RequirementsTotal)
}

func TestRequirementCreateRejectsBlankName(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "blankname@example.com")
	program := createTestProgram(t, db, userID)
	svc := NewRequirementService(db)

	_, err := svc.Create(context.Background(), userID, program.ID, "   ", "")
	assert.ErrorIs(t, err, ErrValidation)

	stored := loadProgram(t, db, program.ID)
	assert.Equal(t, 0, stored.RequirementsTotal)
}

func TestRequirementCreateRejectsForeignProgram(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "reqowner@example.com")
	other := createTestUser(t, db, "reqother@example.com")
	program := createTestProgram(t, db, owner)
	svc := NewRequirementService(db)

	_, err := svc.Create(context.Background(), other, program.ID, "Transcript", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRequirementCompletionFlow(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "flow@example.com")
	program := createTestProgram(t, db, userID)
	svc := NewRequirementService(db)
	ctx := context.Background()

	first, err := svc.Create(ctx, userID, program.ID, "Statement of purpose", "")
	require.NoError(t, err)
	second, err := svc.Create(ctx, userID, program.ID, "Writing sample", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, userID, program.ID, "Application fee", "")
	require.NoError(t, err)

	stored := loadProgram(t, db, program.ID)
	assert.Equal(t, 0, stored.RequirementsCompleted)
	assert.Equal(t, 3, stored.RequirementsTotal)

	_, err = svc.Update(ctx, userID, first.ID, RequirementUpdates{Completed: boolPtr(true)})
	require.NoError(t, err)
	_, err = svc.Update(ctx, userID, second.ID, RequirementUpdates{Completed: boolPtr(true)})
	require.NoError(t, err)

	stored = loadProgram(t, db, program.ID)
	assert.Equal(t, 2, stored.RequirementsCompleted)
	assert.Equal(t, 3, stored.RequirementsTotal)

	// Deleting a completed requirement shrinks both counters
	require.NoError(t, svc.Delete(ctx, userID, second.ID))

	stored = loadProgram(t, db, program.ID)
	assert.Equal(t, 1, stored.RequirementsCompleted)
	assert.Equal(t, 2, stored.RequirementsTotal)

	// Un-completing brings the completed count back down
	_, err = svc.Update(ctx, userID, first.ID, RequirementUpdates{Completed: boolPtr(false)})
	require.NoError(t, err)

	stored = loadProgram(t, db, program.ID)
	assert.Equal(t, 0, stored.RequirementsCompleted)
	assert.Equal(t, 2, stored.RequirementsTotal)
}

func TestRequirementUpdateRejectsBlankName(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "updblank@example.com")
	program := createTestProgram(t, db, userID)
	svc := NewRequirementService(db)
	ctx := context.Background()

	requirement, err := svc.Create(ctx, userID, program.ID, "Transcript", "")
	require.NoError(t, err)

	_, err = svc.Update(ctx, userID, requirement.ID, RequirementUpdates{Name: strPtr("  ")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRequirementAttachDocument(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "attach@example.com")
	program := createTestProgram(t, db, userID)
	document := createTestDocument(t, db, userID, "SOP v3")
	svc := NewRequirementService(db)
	ctx := context.Background()

	requirement, err := svc.Create(ctx, userID, program.ID, "Statement of purpose", "")
	require.NoError(t, err)

	t.Run("attach sets the reference", func(t *testing.T) {
		updated, err := svc.AttachDocument(ctx, userID, requirement.ID, document.ID)
		require.NoError(t, err)
		require.NotNil(t, updated.DocumentID)
		assert.Equal(t, document.ID, *updated.DocumentID)
	})

	t.Run("attach replaces an existing reference", func(t *testing.T) {
		replacement := createTestDocument(t, db, userID, "SOP v4")
		updated, err := svc.AttachDocument(ctx, userID, requirement.ID, replacement.ID)
		require.NoError(t, err)
		require.NotNil(t, updated.DocumentID)
		assert.Equal(t, replacement.ID, *updated.DocumentID)
	})

	t.Run("attach rejects a missing document", func(t *testing.T) {
		_, err := svc.AttachDocument(ctx, userID, requirement.ID, 9999)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("attach rejects another user's document", func(t *testing.T) {
		other := createTestUser(t, db, "attachother@example.com")
		foreign := createTestDocument(t, db, other, "Not yours")
		_, err := svc.AttachDocument(ctx, userID, requirement.ID, foreign.ID)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("detach clears the reference", func(t *testing.T) {
		updated, err := svc.DetachDocument(ctx, userID, requirement.ID)
		require.NoError(t, err)

		var stored model.Requirement
		require.NoError(t, db.First(&stored, updated.ID).Error)
		assert.Nil(t, stored.DocumentID)
	})
}

func TestRequirementDanglingDocumentRefReadsAsUnset(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "dangling@example.com")
	program := createTestProgram(t, db, userID)
	document := createTestDocument(t, db, userID, "CV final")
	svc := NewRequirementService(db)
	ctx := context.Background()

	requirement, err := svc.Create(ctx, userID, program.ID, "Curriculum vitae", "")
	require.NoError(t, err)
	_, err = svc.AttachDocument(ctx, userID, requirement.ID, document.ID)
	require.NoError(t, err)

	// Delete the document out from under the reference
	docSvc := NewDocumentServiceWithClient(db, nil)
	require.NoError(t, docSvc.Delete(ctx, userID, document.ID))

	requirements, err := svc.ListByProgram(ctx, userID, program.ID)
	require.NoError(t, err)
	require.Len(t, requirements, 1)
	assert.Nil(t, requirements[0].DocumentID)
}

func TestRequirementListScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "listowner@example.com")
	other := createTestUser(t, db, "listother@example.com")
	program := createTestProgram(t, db, owner)
	svc := NewRequirementService(db)

	_, err := svc.ListByProgram(context.Background(), other, program.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
