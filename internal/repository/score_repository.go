package repository

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/contentforge/seo_editor/internal/models"
	"github.com/contentforge/seo_editor/internal/service/scorer"
)

// ScoreRepository provides the prior-score lookup and score history storage.
// Documents are identified by their content fingerprint; the caller treats
// this as an opaque key-value lookup.
type ScoreRepository interface {
	// EnsureDocument returns the document row for a fingerprint, creating
	// it if needed.
	EnsureDocument(fingerprint, title, originalURL string) (*models.Document, error)
	// RecordScore appends one completed scoring pass to the history.
	RecordScore(documentID uuid.UUID, score *scorer.SEOScore, source, targetKeyword string) error
	// LatestOverall returns the last known overall score for a fingerprint,
	// or false when none exists.
	LatestOverall(fingerprint string) (int, bool, error)
	// History returns the most recent score records for a fingerprint.
	History(fingerprint string, limit int) ([]models.ScoreRecord, error)
}

// GormScoreRepository implements ScoreRepository using GORM
type GormScoreRepository struct {
	DB *gorm.DB
}

// NewScoreRepository creates a new score repository
func NewScoreRepository(db *gorm.DB) ScoreRepository {
	return &GormScoreRepository{DB: db}
}

func (r *GormScoreRepository) EnsureDocument(fingerprint, title, originalURL string) (*models.Document, error) {
	var doc models.Document
	err := r.DB.Where("fingerprint = ?", fingerprint).First(&doc).Error
	if err == nil {
		return &doc, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	doc = models.Document{
		Fingerprint: fingerprint,
		Title:       title,
		OriginalURL: originalURL,
	}
	if err := r.DB.Create(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *GormScoreRepository) RecordScore(documentID uuid.UUID, score *scorer.SEOScore, source, targetKeyword string) error {
	breakdown, err := json.Marshal(score.Breakdown)
	if err != nil {
		return err
	}

	record := models.ScoreRecord{
		DocumentID:    documentID,
		Overall:       score.Overall,
		Source:        source,
		TargetKeyword: targetKeyword,
		Breakdown:     datatypes.JSON(breakdown),
	}
	return r.DB.Create(&record).Error
}

func (r *GormScoreRepository) LatestOverall(fingerprint string) (int, bool, error) {
	var record models.ScoreRecord
	err := r.DB.
		Joins("JOIN documents ON documents.id = score_records.document_id").
		Where("documents.fingerprint = ?", fingerprint).
		Order("score_records.created_at DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return record.Overall, true, nil
}

func (r *GormScoreRepository) History(fingerprint string, limit int) ([]models.ScoreRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []models.ScoreRecord
	err := r.DB.
		Joins("JOIN documents ON documents.id = score_records.document_id").
		Where("documents.fingerprint = ?", fingerprint).
		Order("score_records.created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
