package repository

import (
	"github.com/lshigami/Ocelots/internal/model"
	"gorm.io/gorm"
)

type LessonRepository interface {
	Create(lesson *model.Lesson) error
	FindByID(id uint) (*model.Lesson, error)
	FindByIDWithVideos(id uint) (*model.Lesson, error)
	Update(lesson *model.Lesson) error
	Delete(id uint) error
	FindOwnerID(lessonID uint) (uint, error)
	CreateVideo(video *model.Video) error
	FindVideoByID(id uint) (*model.Video, error)
	DeleteVideo(id uint) error
}

type lessonRepository struct {
	db *gorm.DB
}

func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

func (r *lessonRepository) Create(lesson *model.Lesson) error {
	return r.db.Create(lesson).Error
}

func (r *lessonRepository) FindByID(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	if err := r.db.First(&lesson, id).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *lessonRepository) FindByIDWithVideos(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.db.Preload("Videos", func(db *gorm.DB) *gorm.DB {
		return db.Order("videos.order_in_lesson ASC")
	}).First(&lesson, id).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *lessonRepository) Update(lesson *model.Lesson) error {
	return r.db.Save(lesson).Error
}

func (r *lessonRepository) Delete(id uint) error {
	return r.db.Delete(&model.Lesson{}, id).Error
}

// FindOwnerID resolves the owning teacher of the course a lesson belongs to.
func (r *lessonRepository) FindOwnerID(lessonID uint) (uint, error) {
	var ownerID uint
	err := r.db.Model(&model.Lesson{}).
		Select("courses.owner_id").
		Joins("JOIN sections ON sections.id = lessons.section_id").
		Joins("JOIN courses ON courses.id = sections.course_id").
		Where("lessons.id = ?", lessonID).
		Scan(&ownerID).Error
	if err != nil {
		return 0, err
	}
	return ownerID, nil
}

func (r *lessonRepository) CreateVideo(video *model.Video) error {
	return r.db.Create(video).Error
}

func (r *lessonRepository) FindVideoByID(id uint) (*model.Video, error) {
	var video model.Video
	if err := r.db.First(&video, id).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *lessonRepository) DeleteVideo(id uint) error {
	return r.db.Delete(&model.Video{}, id).Error
}
