package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	EnrollmentStatusActive   = "active"
	EnrollmentStatusInactive = "inactive"
)

type Enrollment struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	StudentID uint   `json:"student_id" gorm:"not null;index:idx_enrollment_student_course,unique"`
	CourseID  uint   `json:"course_id" gorm:"not null;index:idx_enrollment_student_course,unique"`
	Student   User   `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Course    Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Status    string `json:"status" gorm:"not null;default:'active'"`
	// Progress is driven by video completion events; quiz completion does not move it.
	ProgressPercent float64        `json:"progress_percent" gorm:"not null;default:0"`
	EnrolledAt      time.Time      `json:"enrolled_at" gorm:"autoCreateTime"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
