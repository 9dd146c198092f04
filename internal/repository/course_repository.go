package repository

import (
	"github.com/lshigami/Ocelots/internal/model"
	"gorm.io/gorm"
)

type CourseRepository interface {
	Create(course *model.Course) error
	FindByID(id uint) (*model.Course, error)
	FindByIDWithContent(id uint) (*model.Course, error)
	FindByCode(code string) (*model.Course, error)
	FindAllByOwner(ownerID uint) ([]model.Course, error)
	Update(course *model.Course) error
	Delete(id uint) error
	CreateSection(section *model.Section) error
	FindSectionByID(id uint) (*model.Section, error)
	DeleteSection(id uint) error
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(course *model.Course) error {
	return r.db.Create(course).Error
}

func (r *courseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	if err := r.db.First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) FindByIDWithContent(id uint) (*model.Course, error) {
	var course model.Course
	err := r.db.
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("sections.order_in_course ASC")
		}).
		Preload("Sections.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("lessons.order_in_section ASC")
		}).
		Preload("Sections.Lessons.Videos", func(db *gorm.DB) *gorm.DB {
			return db.Order("videos.order_in_lesson ASC")
		}).
		First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) FindByCode(code string) (*model.Course, error) {
	var course model.Course
	if err := r.db.Where("code = ?", code).First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) FindAllByOwner(ownerID uint) ([]model.Course, error) {
	var courses []model.Course
	if err := r.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) Update(course *model.Course) error {
	return r.db.Save(course).Error
}

func (r *courseRepository) Delete(id uint) error {
	return r.db.Delete(&model.Course{}, id).Error
}

func (r *courseRepository) CreateSection(section *model.Section) error {
	return r.db.Create(section).Error
}

func (r *courseRepository) FindSectionByID(id uint) (*model.Section, error) {
	var section model.Section
	if err := r.db.First(&section, id).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *courseRepository) DeleteSection(id uint) error {
	return r.db.Delete(&model.Section{}, id).Error
}
