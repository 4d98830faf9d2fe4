package services

import (
	"context"
	"testing"
	"time"

	"github.com/gradtrack/gradtrack-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentCreateWithAssignments(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "doccreate@example.com")
	first := createTestProgram(t, db, userID)
	second := createTestProgram(t, db, userID)
	svc := NewDocumentServiceWithClient(db, nil)

	info, err := svc.Create(context.Background(), userID, &model.Document{
		Name: "SOP Draft",
		Type: model.DocumentTypeSOP,
	}, []uint{first.ID, second.ID})
	require.NoError(t, err)

	assert.ElementsMatch(t, []uint{first.ID, second.ID}, info.AssignedProgramIDs)
	assert.Equal(t, model.DocumentStatusDraft, info.Status)
	assert.False(t, info.LastModified.IsZero())
}

func TestDocumentCreateRejectsForeignProgram(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "docowner@example.com")
	other := createTestUser(t, db, "docother@example.com")
	foreign := createTestProgram(t, db, other)
	svc := NewDocumentServiceWithClient(db, nil)

	_, err := svc.Create(context.Background(), owner, &model.Document{
		Name: "SOP Draft",
		Type: model.DocumentTypeSOP,
	}, []uint{foreign.ID})
	assert.ErrorIs(t, err, ErrValidation)

	// The whole create rolls back: no document row is left behind
	var count int64
	require.NoError(t, db.Model(&model.Document{}).Where("user_id = ?", owner).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDocumentUpdateAssignmentSync(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "docsync@example.com")
	first := createTestProgram(t, db, userID)
	second := createTestProgram(t, db, userID)
	third := createTestProgram(t, db, userID)
	svc := NewDocumentServiceWithClient(db, nil)
	ctx := context.Background()

	info, err := svc.Create(ctx, userID, &model.Document{
		Name: "CV",
		Type: model.DocumentTypeCV,
	}, []uint{first.ID, second.ID})
	require.NoError(t, err)

	t.Run("replaces the full set", func(t *testing.T) {
		ids := []uint{second.ID, third.ID}
		updated, err := svc.Update(ctx, userID, info.ID, DocumentUpdates{AssignedProgramIDs: &ids})
		require.NoError(t, err)
		assert.ElementsMatch(t, []uint{second.ID, third.ID}, updated.AssignedProgramIDs)
	})

	t.Run("duplicate ids collapse to one row", func(t *testing.T) {
		ids := []uint{first.ID, first.ID, first.ID}
		updated, err := svc.Update(ctx, userID, info.ID, DocumentUpdates{AssignedProgramIDs: &ids})
		require.NoError(t, err)
		assert.Equal(t, []uint{first.ID}, updated.AssignedProgramIDs)
	})

	t.Run("nil leaves assignments untouched", func(t *testing.T) {
		name := "CV 2026"
		updated, err := svc.Update(ctx, userID, info.ID, DocumentUpdates{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, []uint{first.ID}, updated.AssignedProgramIDs)
		assert.Equal(t, "CV 2026", updated.Name)
	})

	t.Run("empty slice clears all assignments", func(t *testing.T) {
		ids := []uint{}
		updated, err := svc.Update(ctx, userID, info.ID, DocumentUpdates{AssignedProgramIDs: &ids})
		require.NoError(t, err)
		assert.Empty(t, updated.AssignedProgramIDs)
	})
}

func TestDocumentUpdateRollsBackOnInvalidAssignment(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "docrollback@example.com")
	program := createTestProgram(t, db, userID)
	svc := NewDocumentServiceWithClient(db, nil)
	ctx := context.Background()

	info, err := svc.Create(ctx, userID, &model.Document{
		Name: "Writing sample",
		Type: model.DocumentTypeWritingSample,
	}, []uint{program.ID})
	require.NoError(t, err)

	name := "Renamed"
	ids := []uint{program.ID, 9999}
	_, err = svc.Update(ctx, userID, info.ID, DocumentUpdates{Name: &name, AssignedProgramIDs: &ids})
	assert.ErrorIs(t, err, ErrValidation)

	// Neither the field write nor the assignment set changed
	after, err := svc.Get(ctx, userID, info.ID)
	require.NoError(t, err)
	assert.Equal(t, "Writing sample", after.Name)
	assert.Equal(t, []uint{program.ID}, after.AssignedProgramIDs)
}

func TestDocumentUpdateSetsLastModifiedServerSide(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "doclastmod@example.com")
	svc := NewDocumentServiceWithClient(db, nil)
	ctx := context.Background()

	info, err := svc.Create(ctx, userID, &model.Document{
		Name: "PS Draft",
		Type: model.DocumentTypePS,
	}, nil)
	require.NoError(t, err)

	before := info.LastModified
	time.Sleep(10 * time.Millisecond)

	status := model.DocumentStatusFinal
	updated, err := svc.Update(ctx, userID, info.ID, DocumentUpdates{Status: &status})
	require.NoError(t, err)
	assert.True(t, updated.LastModified.After(before))
}

func TestDocumentUpdateRejectsInvalidEnums(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "docenum@example.com")
	svc := NewDocumentServiceWithClient(db, nil)
	ctx := context.Background()

	info, err := svc.Create(ctx, userID, &model.Document{
		Name: "Misc",
		Type: model.DocumentTypeCustom,
	}, nil)
	require.NoError(t, err)

	badType := model.DocumentType("thesis")
	_, err = svc.Update(ctx, userID, info.ID, DocumentUpdates{Type: &badType})
	assert.ErrorIs(t, err, ErrValidation)

	badStatus := model.DocumentStatus("published")
	_, err = svc.Update(ctx, userID, info.ID, DocumentUpdates{Status: &badStatus})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDocumentListFiltersAndOrdering(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "doclist@example.com")
	svc := NewDocumentServiceWithClient(db, nil)
	ctx := context.Background()

	older := model.Document{UserID: userID, Name: "Old CV", Type: model.DocumentTypeCV, Status: model.DocumentStatusDraft, LastModified: time.Now().UTC().Add(-time.Hour)}
	newer := model.Document{UserID: userID, Name: "New SOP", Type: model.DocumentTypeSOP, Status: model.DocumentStatusFinal, LastModified: time.Now().UTC()}
	require.NoError(t, db.Create(&older).Error)
	require.NoError(t, db.Create(&newer).Error)

	t.Run("orders by last modification, newest first", func(t *testing.T) {
		docs, err := svc.List(ctx, userID, "", "")
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "New SOP", docs[0].Name)
		assert.Equal(t, "Old CV", docs[1].Name)
	})

	t.Run("filters by type", func(t *testing.T) {
		docs, err := svc.List(ctx, userID, model.DocumentTypeCV, "")
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "Old CV", docs[0].Name)
	})

	t.Run("filters by status", func(t *testing.T) {
		docs, err := svc.List(ctx, userID, "", model.DocumentStatusFinal)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "New SOP", docs[0].Name)
	})

	t.Run("unassigned documents report an empty id list", func(t *testing.T) {
		docs, err := svc.List(ctx, userID, "", "")
		require.NoError(t, err)
		for _, d := range docs {
			assert.NotNil(t, d.AssignedProgramIDs)
			assert.Empty(t, d.AssignedProgramIDs)
		}
	})
}

func TestDocumentDeleteRemovesAssignments(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "docdelete@example.com")
	program := createTestProgram(t, db, userID)
	svc := NewDocumentServiceWithClient(db, nil)
	ctx := context.Background()

	info, err := svc.Create(ctx, userID, &model.Document{
		Name: "SOP Draft",
		Type: model.DocumentTypeSOP,
	}, []uint{program.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, userID, info.ID))

	var assocCount int64
	require.NoError(t, db.Model(&model.DocumentProgram{}).Where("document_id = ?", info.ID).Count(&assocCount).Error)
	assert.Zero(t, assocCount)

	_, err = svc.Get(ctx, userID, info.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The owning program is untouched
	var programCount int64
	require.NoError(t, db.Model(&model.Program{}).Where("id = ?", program.ID).Count(&programCount).Error)
	assert.EqualValues(t, 1, programCount)
}

func TestDocumentUploadRequiresConfiguredStorage(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "docupload@example.com")
	svc := NewDocumentServiceWithClient(db, nil)

	_, err := svc.UploadFile(context.Background(), userID, 1, "sop.pdf", []byte("%PDF-1.4"))
	assert.Error(t, err)

	_, err = svc.DownloadURL(context.Background(), userID, 1)
	assert.Error(t, err)
}
