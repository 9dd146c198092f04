package model

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	OwnerID     uint           `json:"owner_id" gorm:"not null;index"`
	Owner       User           `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description,omitempty"`
	Code        string         `json:"code" gorm:"not null;uniqueIndex"` // join code redeemed by students
	Sections    []Section      `json:"sections,omitempty" gorm:"foreignKey:CourseID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

type Section struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	CourseID      uint           `json:"course_id" gorm:"not null;index"`
	Title         string         `json:"title" gorm:"not null"`
	OrderInCourse int            `json:"order_in_course" gorm:"not null"`
	Lessons       []Lesson       `json:"lessons,omitempty" gorm:"foreignKey:SectionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
