package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Question is the stable identity; all content lives in its immutable
// version history. LatestVersion is a denormalized pointer maintained in
// the same transaction as every version insert, so "current content"
// never requires a history scan.
type Question struct {
	ID            uint `json:"id" gorm:"primaryKey"`
	AuthorID      uint `json:"author_id" gorm:"not null;index"`
	LatestVersion int  `json:"latest_version" gorm:"not null;default:0"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Versions []QuestionVersion `json:"-" gorm:"foreignKey:QuestionID"`
}

// QuestionVersion is append-only: versions are numbered from 1 with no
// gaps and are never updated or deleted, so attempts that pinned an old
// version keep resolving it even after the question is revised or
// soft-deleted.
type QuestionVersion struct {
	QuestionID   uint                        `json:"question_id" gorm:"primaryKey"`
	Version      int                         `json:"version" gorm:"primaryKey" validate:"min=1"`
	Title        string                      `json:"title" gorm:"not null;size:255" validate:"required,max=255"`
	Body         string                      `json:"body" gorm:"type:text;not null" validate:"required"`
	Options      datatypes.JSONSlice[string] `json:"options" gorm:"not null" validate:"required,min=2,dive,required"`
	CorrectIndex int                         `json:"correct_index" gorm:"not null" validate:"min=0"`

	CreatedAt time.Time `json:"created_at"`
}

func (Question) TableName() string {
	return "questions"
}

func (QuestionVersion) TableName() string {
	return "question_versions"
}
