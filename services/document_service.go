package services

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/gradtrack/gradtrack-api/model"
	"github.com/gradtrack/gradtrack-api/services/spaces"
	"github.com/gradtrack/gradtrack-api/utils/pdfcheck"
	"gorm.io/gorm"
)

// DocumentService handles document records, their program assignments and
// the backing files in Spaces.
type DocumentService struct {
	db           *gorm.DB
	spacesClient *spaces.Client
	enableSpaces bool
}

// NewDocumentService creates a new document service. File storage is
// disabled when the Spaces client cannot be configured; metadata CRUD
// still works.
func NewDocumentService(db *gorm.DB) *DocumentService {
	service := &DocumentService{db: db}

	spacesClient, err := spaces.NewClientFromEnv()
	if err != nil {
		log.Printf("Warning: Failed to initialize Spaces client: %v. File storage will be disabled.", err)
	} else {
		service.spacesClient = spacesClient
		service.enableSpaces = true
	}

	return service
}

// NewDocumentServiceWithClient creates a document service with an explicit
// Spaces client (nil disables file storage)
func NewDocumentServiceWithClient(db *gorm.DB, client *spaces.Client) *DocumentService {
	return &DocumentService{
		db:           db,
		spacesClient: client,
		enableSpaces: client != nil,
	}
}

// DocumentInfo is a document row together with its materialized program
// assignment set
type DocumentInfo struct {
	model.Document
	AssignedProgramIDs []uint `json:"assigned_program_ids"`
}

// List returns the user's documents ordered by last modification,
// optionally filtered by type and status
func (s *DocumentService) List(ctx context.Context, userID uint, docType model.DocumentType, status model.DocumentStatus) ([]DocumentInfo, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if docType != "" {
		query = query.Where("type = ?", docType)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var documents []model.Document
	if err := query.Order("last_modified DESC").Find(&documents).Error; err != nil {
		return nil, err
	}

	// One query for all assignment rows, grouped in memory
	docIDs := make([]uint, len(documents))
	for i, d := range documents {
		docIDs[i] = d.ID
	}

	assignments := map[uint][]uint{}
	if len(docIDs) > 0 {
		var rows []model.DocumentProgram
		if err := s.db.WithContext(ctx).Where("document_id IN ?", docIDs).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			assignments[row.DocumentID] = append(assignments[row.DocumentID], row.ProgramID)
		}
	}

	infos := make([]DocumentInfo, len(documents))
	for i, d := range documents {
		ids := assignments[d.ID]
		if ids == nil {
			ids = []uint{}
		}
		infos[i] = DocumentInfo{Document: d, AssignedProgramIDs: ids}
	}
	return infos, nil
}

// Get returns one of the user's documents with its assignment set
func (s *DocumentService) Get(ctx context.Context, userID, id uint) (*DocumentInfo, error) {
	document, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	ids, err := s.assignedProgramIDs(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return &DocumentInfo{Document: *document, AssignedProgramIDs: ids}, nil
}

// Create inserts a document and its program assignments in one transaction
func (s *DocumentService) Create(ctx context.Context, userID uint, document *model.Document, assignedProgramIDs []uint) (*DocumentInfo, error) {
	document.UserID = userID
	document.LastModified = time.Now().UTC()
	if document.Status == "" {
		document.Status = model.DocumentStatusDraft
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(document).Error; err != nil {
			return err
		}
		return s.syncAssignments(tx, userID, document.ID, assignedProgramIDs)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, userID, document.ID)
}

// DocumentUpdates holds the optional fields of a partial document update.
// A nil AssignedProgramIDs leaves the assignment set untouched; a non-nil
// empty slice clears it.
type DocumentUpdates struct {
	Name               *string
	Type               *model.DocumentType
	Status             *model.DocumentStatus
	WordCount          *int
	AssignedProgramIDs *[]uint
}

// Update applies a partial update. The field write and the assignment sync
// run in the same transaction: if the sync fails, the field write is rolled
// back and the combined update fails as a whole.
func (s *DocumentService) Update(ctx context.Context, userID, id uint, updates DocumentUpdates) (*DocumentInfo, error) {
	document, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"last_modified": time.Now().UTC(),
	}
	if updates.Name != nil {
		name := strings.TrimSpace(*updates.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: document name must not be empty", ErrValidation)
		}
		fields["name"] = name
	}
	if updates.Type != nil {
		if !updates.Type.Valid() {
			return nil, fmt.Errorf("%w: invalid document type %q", ErrValidation, *updates.Type)
		}
		fields["type"] = *updates.Type
	}
	if updates.Status != nil {
		if !updates.Status.Valid() {
			return nil, fmt.Errorf("%w: invalid document status %q", ErrValidation, *updates.Status)
		}
		fields["status"] = *updates.Status
	}
	if updates.WordCount != nil {
		fields["word_count"] = *updates.WordCount
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(document).Updates(fields).Error; err != nil {
			return err
		}
		if updates.AssignedProgramIDs != nil {
			return s.syncAssignments(tx, userID, id, *updates.AssignedProgramIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, userID, id)
}

// Delete removes the document row and its assignment rows, then deletes the
// stored file best-effort. A failed file delete is logged and never blocks
// deleting the record.
func (s *DocumentService) Delete(ctx context.Context, userID, id uint) error {
	document, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&model.DocumentProgram{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Document{}, id).Error
	})
	if err != nil {
		return err
	}

	if document.SpacesKey != "" && s.enableSpaces {
		if err := s.spacesClient.DeleteFile(ctx, document.SpacesKey); err != nil {
			log.Printf("Warning: failed to delete stored file %s for document %d: %v", document.SpacesKey, id, err)
		}
	}
	return nil
}

// UploadFileResult reports what the upload stored
type UploadFileResult struct {
	Document  *DocumentInfo `json:"document"`
	FileURL   string        `json:"file_url"`
	PageCount int           `json:"page_count,omitempty"`
}

const maxUploadSize = 25 * 1024 * 1024 // 25MB for non-PDF uploads

// UploadFile stores a file for the document under the user's key prefix and
// updates the document row. PDFs are validated and their word count
// estimated from the text layer. A previously stored file is deleted
// best-effort after the new one is in place.
func (s *DocumentService) UploadFile(ctx context.Context, userID, id uint, filename string, content []byte) (*UploadFileResult, error) {
	if !s.enableSpaces {
		return nil, fmt.Errorf("file storage is not configured")
	}

	document, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	pageCount := 0
	var estimatedWords int
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		check, err := pdfcheck.ValidatePDFBytes(content, pdfcheck.DefaultLimits)
		if err != nil {
			return nil, fmt.Errorf("failed to validate PDF: %w", err)
		}
		if !check.Valid {
			return nil, fmt.Errorf("%w: %s", ErrValidation, check.Error)
		}
		pageCount = check.PageCount
		estimatedWords = check.WordCount
	} else if int64(len(content)) > maxUploadSize {
		return nil, fmt.Errorf("%w: file size exceeds maximum allowed size of 25MB", ErrValidation)
	}

	key := spaces.GenerateKey(userID, filename)
	fileURL, err := s.spacesClient.UploadBytes(ctx, key, content, spaces.ContentType(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	oldKey := document.SpacesKey

	fields := map[string]interface{}{
		"file_url":      fileURL,
		"spaces_key":    key,
		"last_modified": time.Now().UTC(),
	}
	if estimatedWords > 0 {
		fields["word_count"] = estimatedWords
	}

	if err := s.db.WithContext(ctx).Model(document).Updates(fields).Error; err != nil {
		// Roll back the orphaned upload, best-effort
		if delErr := s.spacesClient.DeleteFile(ctx, key); delErr != nil {
			log.Printf("Warning: failed to clean up orphaned upload %s: %v", key, delErr)
		}
		return nil, err
	}

	// Superseded file cleanup is a secondary step: log and move on
	if oldKey != "" && oldKey != key {
		if err := s.spacesClient.DeleteFile(ctx, oldKey); err != nil {
			log.Printf("Warning: failed to delete superseded file %s for document %d: %v", oldKey, id, err)
		}
	}

	info, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return &UploadFileResult{Document: info, FileURL: fileURL, PageCount: pageCount}, nil
}

// DownloadURL returns a short-lived presigned URL for the document's file
func (s *DocumentService) DownloadURL(ctx context.Context, userID, id uint) (string, error) {
	if !s.enableSpaces {
		return "", fmt.Errorf("file storage is not configured")
	}

	document, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if document.SpacesKey == "" {
		return "", fmt.Errorf("%w: document has no stored file", ErrValidation)
	}

	return s.spacesClient.PresignedURL(document.SpacesKey, 15*time.Minute)
}

// syncAssignments replaces the document's association rows with exactly the
// desired program set. Every id must reference a program owned by the same
// user; otherwise the whole sync fails before any row is written. Runs
// inside the caller's transaction so the replace is all-or-nothing with the
// document's own update.
func (s *DocumentService) syncAssignments(tx *gorm.DB, userID, documentID uint, programIDs []uint) error {
	// Dedupe while preserving order
	seen := make(map[uint]bool, len(programIDs))
	desired := make([]uint, 0, len(programIDs))
	for _, id := range programIDs {
		if !seen[id] {
			seen[id] = true
			desired = append(desired, id)
		}
	}

	if len(desired) > 0 {
		var count int64
		err := tx.Model(&model.Program{}).
			Where("id IN ? AND user_id = ?", desired, userID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if int(count) != len(desired) {
			return fmt.Errorf("%w: one or more program ids do not exist or are not yours", ErrValidation)
		}
	}

	if err := tx.Where("document_id = ?", documentID).Delete(&model.DocumentProgram{}).Error; err != nil {
		return err
	}

	if len(desired) == 0 {
		return nil
	}

	rows := make([]model.DocumentProgram, len(desired))
	for i, programID := range desired {
		rows[i] = model.DocumentProgram{DocumentID: documentID, ProgramID: programID}
	}
	return tx.Create(&rows).Error
}

func (s *DocumentService) assignedProgramIDs(db *gorm.DB, documentID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&model.DocumentProgram{}).
		Where("document_id = ?", documentID).
		Pluck("program_id", &ids).Error
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uint{}
	}
	return ids, nil
}

func (s *DocumentService) getOwned(ctx context.Context, userID, id uint) (*model.Document, error) {
	var document model.Document
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&document).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &document, nil
}
