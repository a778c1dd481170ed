package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Document represents an analyzed document identity. Documents are keyed by
// the fingerprint of their title and content sample, which is how the prior
// score lookup finds them.
type Document struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Fingerprint string         `gorm:"type:varchar(32);unique;not null;index"`
	Title       string         `gorm:"type:varchar(255);index"`
	OriginalURL string         `gorm:"type:varchar(2048)"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
	// Relationships
	Scores []ScoreRecord `gorm:"foreignKey:DocumentID"`
}

// ScoreRecord represents one completed scoring pass for a document.
type ScoreRecord struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Document      Document       `gorm:"foreignKey:DocumentID"`
	Overall       int            `gorm:"not null"`
	Source        string         `gorm:"type:varchar(20);not null;index"`
	TargetKeyword string         `gorm:"type:varchar(255)"`
	Breakdown     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index"`
}
