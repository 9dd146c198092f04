package repository

import (
	"github.com/lshigami/Ocelots/internal/model"
	"gorm.io/gorm"
)

type EnrollmentRepository interface {
	Create(enrollment *model.Enrollment) error
	FindByID(id uint) (*model.Enrollment, error)
	FindByStudentAndCourse(studentID, courseID uint) (*model.Enrollment, error)
	FindAllByStudent(studentID uint) ([]model.Enrollment, error)
	Update(enrollment *model.Enrollment) error
	CreateVideoCompletion(vc *model.VideoCompletion) error
	CountVideoCompletions(enrollmentID uint) (int64, error)
	CountCourseVideos(courseID uint) (int64, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(enrollment *model.Enrollment) error {
	return r.db.Create(enrollment).Error
}

func (r *enrollmentRepository) FindByID(id uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	if err := r.db.First(&enrollment, id).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) FindByStudentAndCourse(studentID, courseID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.db.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) FindAllByStudent(studentID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.db.Where("student_id = ?", studentID).
		Preload("Course").
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepository) Update(enrollment *model.Enrollment) error {
	return r.db.Save(enrollment).Error
}

func (r *enrollmentRepository) CreateVideoCompletion(vc *model.VideoCompletion) error {
	return r.db.Create(vc).Error
}

func (r *enrollmentRepository) CountVideoCompletions(enrollmentID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.VideoCompletion{}).
		Where("enrollment_id = ?", enrollmentID).
		Count(&count).Error
	return count, err
}

func (r *enrollmentRepository) CountCourseVideos(courseID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Video{}).
		Joins("JOIN lessons ON lessons.id = videos.lesson_id").
		Joins("JOIN sections ON sections.id = lessons.section_id").
		Where("sections.course_id = ?", courseID).
		Count(&count).Error
	return count, err
}
