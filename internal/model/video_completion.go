package model

import (
	"time"

	"gorm.io/gorm"
)

// VideoCompletion marks one video as watched under an enrollment. Enrollment
// progress is recomputed from these rows.
type VideoCompletion struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	EnrollmentID uint           `json:"enrollment_id" gorm:"not null;index:idx_video_completion_pair,unique"`
	VideoID      uint           `json:"video_id" gorm:"not null;index:idx_video_completion_pair,unique"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
