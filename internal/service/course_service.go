package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/lshigami/Ocelots/internal/dto"
	"github.com/lshigami/Ocelots/internal/model"
	"github.com/lshigami/Ocelots/internal/repository"
	"github.com/lshigami/Ocelots/internal/storage"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type CourseService interface {
	CreateCourse(ownerID uint, req dto.CourseCreateDTO) (*dto.CourseResponseDTO, error)
	GetCourse(courseID, requesterID uint) (*dto.CourseResponseDTO, error)
	ListOwnedCourses(ownerID uint) ([]dto.CourseSummaryDTO, error)
	DeleteCourse(courseID, ownerID uint) error
	CreateSection(courseID, ownerID uint, req dto.SectionCreateDTO) (*dto.SectionResponseDTO, error)
	CreateLesson(sectionID, ownerID uint, req dto.LessonCreateDTO) (*dto.LessonResponseDTO, error)
	CreateVideo(lessonID, ownerID uint, req dto.VideoCreateDTO) (*dto.VideoResponseDTO, error)
	VideoPlaybackURL(videoID uint) (string, error)
	UploadURL(ownerID uint, filename string) (string, string, error)
}

type courseService struct {
	courseRepo repository.CourseRepository
	lessonRepo repository.LessonRepository
	blobs      storage.BlobStore
}

func NewCourseService(
	courseRepo repository.CourseRepository,
	lessonRepo repository.LessonRepository,
	blobs storage.BlobStore,
) CourseService {
	return &courseService{courseRepo: courseRepo, lessonRepo: lessonRepo, blobs: blobs}
}

// newCourseCode derives a short join code from a fresh UUID.
func newCourseCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *courseService) CreateCourse(ownerID uint, req dto.CourseCreateDTO) (*dto.CourseResponseDTO, error) {
	course := model.Course{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Code:        newCourseCode(),
	}
	if err := s.courseRepo.Create(&course); err != nil {
		log.Error().Err(err).Uint("ownerID", ownerID).Msg("CreateCourse: failed to create course")
		return nil, fmt.Errorf("database error creating course: %w", err)
	}

	var resp dto.CourseResponseDTO
	if err := copier.Copy(&resp, &course); err != nil {
		return nil, fmt.Errorf("error preparing course response: %w", err)
	}
	return &resp, nil
}

func (s *courseService) GetCourse(courseID, requesterID uint) (*dto.CourseResponseDTO, error) {
	course, err := s.courseRepo.FindByIDWithContent(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course %d: %w", courseID, ErrNotFound)
		}
		log.Error().Err(err).Uint("courseID", courseID).Msg("GetCourse: fetch failed")
		return nil, fmt.Errorf("error fetching course %d: %w", courseID, err)
	}

	var resp dto.CourseResponseDTO
	if err := copier.Copy(&resp, course); err != nil {
		return nil, fmt.Errorf("error preparing course response: %w", err)
	}
	// The join code is for the owner to hand out; students never see it here.
	if course.OwnerID != requesterID {
		resp.Code = ""
	}
	return &resp, nil
}

func (s *courseService) ListOwnedCourses(ownerID uint) ([]dto.CourseSummaryDTO, error) {
	courses, err := s.courseRepo.FindAllByOwner(ownerID)
	if err != nil {
		log.Error().Err(err).Uint("ownerID", ownerID).Msg("ListOwnedCourses: fetch failed")
		return nil, fmt.Errorf("error fetching courses: %w", err)
	}

	dtos := make([]dto.CourseSummaryDTO, 0, len(courses))
	for _, c := range courses {
		dtos = append(dtos, dto.CourseSummaryDTO{
			ID:          c.ID,
			Title:       c.Title,
			Description: c.Description,
			CreatedAt:   c.CreatedAt,
		})
	}
	return dtos, nil
}

func (s *courseService) DeleteCourse(courseID, ownerID uint) error {
	course, err := s.courseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("course %d: %w", courseID, ErrNotFound)
		}
		return fmt.Errorf("error fetching course %d: %w", courseID, err)
	}
	if course.OwnerID != ownerID {
		return ErrForbidden
	}
	if err := s.courseRepo.Delete(courseID); err != nil {
		log.Error().Err(err).Uint("courseID", courseID).Msg("DeleteCourse: delete failed")
		return fmt.Errorf("database error deleting course: %w", err)
	}
	return nil
}

func (s *courseService) CreateSection(courseID, ownerID uint, req dto.SectionCreateDTO) (*dto.SectionResponseDTO, error) {
	course, err := s.courseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course %d: %w", courseID, ErrNotFound)
		}
		return nil, fmt.Errorf("error fetching course %d: %w", courseID, err)
	}
	if course.OwnerID != ownerID {
		return nil, ErrForbidden
	}

	section := model.Section{
		CourseID:      courseID,
		Title:         req.Title,
		OrderInCourse: req.OrderInCourse,
	}
	if err := s.courseRepo.CreateSection(&section); err != nil {
		log.Error().Err(err).Uint("courseID", courseID).Msg("CreateSection: create failed")
		return nil, fmt.Errorf("database error creating section: %w", err)
	}

	var resp dto.SectionResponseDTO
	if err := copier.Copy(&resp, &section); err != nil {
		return nil, fmt.Errorf("error preparing section response: %w", err)
	}
	return &resp, nil
}

func (s *courseService) CreateLesson(sectionID, ownerID uint, req dto.LessonCreateDTO) (*dto.LessonResponseDTO, error) {
	section, err := s.courseRepo.FindSectionByID(sectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("section %d: %w", sectionID, ErrNotFound)
		}
		return nil, fmt.Errorf("error fetching section %d: %w", sectionID, err)
	}
	course, err := s.courseRepo.FindByID(section.CourseID)
	if err != nil {
		return nil, fmt.Errorf("error fetching course %d: %w", section.CourseID, err)
	}
	if course.OwnerID != ownerID {
		return nil, ErrForbidden
	}

	lesson := model.Lesson{
		SectionID:      sectionID,
		Title:          req.Title,
		OrderInSection: req.OrderInSection,
	}
	if err := s.lessonRepo.Create(&lesson); err != nil {
		log.Error().Err(err).Uint("sectionID", sectionID).Msg("CreateLesson: create failed")
		return nil, fmt.Errorf("database error creating lesson: %w", err)
	}

	var resp dto.LessonResponseDTO
	if err := copier.Copy(&resp, &lesson); err != nil {
		return nil, fmt.Errorf("error preparing lesson response: %w", err)
	}
	return &resp, nil
}

func (s *courseService) CreateVideo(lessonID, ownerID uint, req dto.VideoCreateDTO) (*dto.VideoResponseDTO, error) {
	actualOwner, err := s.lessonRepo.FindOwnerID(lessonID)
	if err != nil {
		return nil, fmt.Errorf("error resolving lesson owner: %w", err)
	}
	if actualOwner != ownerID {
		return nil, ErrForbidden
	}

	video := model.Video{
		LessonID:      lessonID,
		Title:         req.Title,
		StorageKey:    req.StorageKey,
		DurationSec:   req.DurationSec,
		OrderInLesson: req.OrderInLesson,
	}
	if err := s.lessonRepo.CreateVideo(&video); err != nil {
		log.Error().Err(err).Uint("lessonID", lessonID).Msg("CreateVideo: create failed")
		return nil, fmt.Errorf("database error creating video: %w", err)
	}

	var resp dto.VideoResponseDTO
	if err := copier.Copy(&resp, &video); err != nil {
		return nil, fmt.Errorf("error preparing video response: %w", err)
	}
	return &resp, nil
}

func (s *courseService) VideoPlaybackURL(videoID uint) (string, error) {
	video, err := s.lessonRepo.FindVideoByID(videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("video %d: %w", videoID, ErrNotFound)
		}
		return "", fmt.Errorf("error fetching video %d: %w", videoID, err)
	}
	url, err := s.blobs.SignedURL(video.StorageKey)
	if err != nil {
		log.Error().Err(err).Str("key", video.StorageKey).Msg("VideoPlaybackURL: signing failed")
		return "", fmt.Errorf("error signing playback URL: %w", err)
	}
	return url, nil
}

// UploadURL reserves a storage key for a new asset and returns the URL to
// upload it to, mirroring the presigned-upload flow of a hosted object store.
func (s *courseService) UploadURL(ownerID uint, filename string) (string, string, error) {
	key := fmt.Sprintf("teacher-%d/%s-%s", ownerID, uuid.NewString(), filename)
	url, err := s.blobs.SignedURL(key)
	if err != nil {
		return "", "", fmt.Errorf("error signing upload URL: %w", err)
	}
	return key, url, nil
}
