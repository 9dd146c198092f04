package model

import (
	"time"

	"gorm.io/gorm"
)

type Lesson struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	SectionID      uint           `json:"section_id" gorm:"not null;index"`
	Title          string         `json:"title" gorm:"not null"`
	OrderInSection int            `json:"order_in_section" gorm:"not null"`
	Videos         []Video        `json:"videos,omitempty" gorm:"foreignKey:LessonID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	// A lesson holds at most one quiz; enforced by the client, not by schema.
	Quizzes   []Quiz         `json:"quizzes,omitempty" gorm:"foreignKey:LessonID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type Video struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	LessonID      uint           `json:"lesson_id" gorm:"not null;index"`
	Title         string         `json:"title" gorm:"not null"`
	StorageKey    string         `json:"storage_key" gorm:"not null"` // key into the blob store
	DurationSec   int            `json:"duration_sec,omitempty"`
	OrderInLesson int            `json:"order_in_lesson" gorm:"not null"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
