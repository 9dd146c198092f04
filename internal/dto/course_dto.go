package dto

import "time"

type CourseCreateDTO struct {
	Title       string `json:"title" binding:"required,min=3,max=255"`
	Description string `json:"description,omitempty"`
}

type SectionCreateDTO struct {
	Title         string `json:"title" binding:"required,min=1,max=255"`
	OrderInCourse int    `json:"order_in_course" binding:"min=0"`
}

type LessonCreateDTO struct {
	Title          string `json:"title" binding:"required,min=1,max=255"`
	OrderInSection int    `json:"order_in_section" binding:"min=0"`
}

type VideoCreateDTO struct {
	Title         string `json:"title" binding:"required,min=1,max=255"`
	StorageKey    string `json:"storage_key" binding:"required"`
	DurationSec   int    `json:"duration_sec" binding:"min=0"`
	OrderInLesson int    `json:"order_in_lesson" binding:"min=0"`
}

type VideoResponseDTO struct {
	ID            uint   `json:"id"`
	LessonID      uint   `json:"lesson_id"`
	Title         string `json:"title"`
	URL           string `json:"url,omitempty"` // signed playback URL
	DurationSec   int    `json:"duration_sec,omitempty"`
	OrderInLesson int    `json:"order_in_lesson"`
}

type LessonResponseDTO struct {
	ID             uint               `json:"id"`
	SectionID      uint               `json:"section_id"`
	Title          string             `json:"title"`
	OrderInSection int                `json:"order_in_section"`
	Videos         []VideoResponseDTO `json:"videos,omitempty"`
}

type SectionResponseDTO struct {
	ID            uint                `json:"id"`
	CourseID      uint                `json:"course_id"`
	Title         string              `json:"title"`
	OrderInCourse int                 `json:"order_in_course"`
	Lessons       []LessonResponseDTO `json:"lessons,omitempty"`
}

type CourseResponseDTO struct {
	ID          uint                 `json:"id"`
	OwnerID     uint                 `json:"owner_id"`
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	Code        string               `json:"code,omitempty"` // only exposed to the owner
	Sections    []SectionResponseDTO `json:"sections,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

type CourseSummaryDTO struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type JoinCourseDTO struct {
	Code string `json:"code" binding:"required"`
}

type EnrollmentResponseDTO struct {
	ID              uint       `json:"id"`
	StudentID       uint       `json:"student_id"`
	CourseID        uint       `json:"course_id"`
	CourseTitle     string     `json:"course_title,omitempty"`
	Status          string     `json:"status"`
	ProgressPercent float64    `json:"progress_percent"`
	EnrolledAt      time.Time  `json:"enrolled_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}
