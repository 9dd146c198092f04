package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/lshigami/Ocelots/internal/dto"
	"github.com/lshigami/Ocelots/internal/model"
	"github.com/lshigami/Ocelots/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type EnrollmentService interface {
	JoinCourse(studentID uint, req dto.JoinCourseDTO) (*dto.EnrollmentResponseDTO, error)
	ListEnrollments(studentID uint) ([]dto.EnrollmentResponseDTO, error)
	GetEnrollment(enrollmentID, studentID uint) (*dto.EnrollmentResponseDTO, error)
	MarkVideoComplete(enrollmentID, studentID, videoID uint) (*dto.EnrollmentResponseDTO, error)
}

type enrollmentService struct {
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
}

func NewEnrollmentService(
	courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
) EnrollmentService {
	return &enrollmentService{courseRepo: courseRepo, enrollmentRepo: enrollmentRepo}
}

// JoinCourse redeems a course code into an active enrollment. Joining a course
// twice returns the existing enrollment.
func (s *enrollmentService) JoinCourse(studentID uint, req dto.JoinCourseDTO) (*dto.EnrollmentResponseDTO, error) {
	course, err := s.courseRepo.FindByCode(req.Code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course code %q: %w", req.Code, ErrNotFound)
		}
		log.Error().Err(err).Str("code", req.Code).Msg("JoinCourse: code lookup failed")
		return nil, fmt.Errorf("error resolving course code: %w", err)
	}

	if existing, err := s.enrollmentRepo.FindByStudentAndCourse(studentID, course.ID); err == nil {
		return s.toDTO(existing, course.Title), nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("error checking enrollment: %w", err)
	}

	enrollment := model.Enrollment{
		StudentID: studentID,
		CourseID:  course.ID,
		Status:    model.EnrollmentStatusActive,
	}
	if err := s.enrollmentRepo.Create(&enrollment); err != nil {
		log.Error().Err(err).Uint("studentID", studentID).Uint("courseID", course.ID).Msg("JoinCourse: failed to create enrollment")
		return nil, fmt.Errorf("database error creating enrollment: %w", err)
	}

	log.Info().Uint("studentID", studentID).Uint("courseID", course.ID).Msg("Student enrolled via course code")
	return s.toDTO(&enrollment, course.Title), nil
}

func (s *enrollmentService) ListEnrollments(studentID uint) ([]dto.EnrollmentResponseDTO, error) {
	enrollments, err := s.enrollmentRepo.FindAllByStudent(studentID)
	if err != nil {
		log.Error().Err(err).Uint("studentID", studentID).Msg("ListEnrollments: fetch failed")
		return nil, fmt.Errorf("error fetching enrollments: %w", err)
	}

	dtos := make([]dto.EnrollmentResponseDTO, 0, len(enrollments))
	for i := range enrollments {
		dtos = append(dtos, *s.toDTO(&enrollments[i], enrollments[i].Course.Title))
	}
	return dtos, nil
}

func (s *enrollmentService) GetEnrollment(enrollmentID, studentID uint) (*dto.EnrollmentResponseDTO, error) {
	enrollment, err := s.enrollmentRepo.FindByID(enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, fmt.Errorf("error fetching enrollment %d: %w", enrollmentID, err)
	}
	if enrollment.StudentID != studentID {
		return nil, ErrNotEnrolled
	}
	return s.toDTO(enrollment, ""), nil
}

// MarkVideoComplete records a watched video and recomputes the enrollment's
// progress percentage. Quiz completion never moves progress.
func (s *enrollmentService) MarkVideoComplete(enrollmentID, studentID, videoID uint) (*dto.EnrollmentResponseDTO, error) {
	enrollment, err := s.enrollmentRepo.FindByID(enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, fmt.Errorf("error fetching enrollment %d: %w", enrollmentID, err)
	}
	if enrollment.StudentID != studentID {
		return nil, ErrNotEnrolled
	}

	vc := model.VideoCompletion{EnrollmentID: enrollmentID, VideoID: videoID}
	if err := s.enrollmentRepo.CreateVideoCompletion(&vc); err != nil {
		// Re-watching an already completed video is a no-op, not an error.
		log.Debug().Err(err).Uint("enrollmentID", enrollmentID).Uint("videoID", videoID).Msg("MarkVideoComplete: completion row not created (likely duplicate)")
	}

	total, err := s.enrollmentRepo.CountCourseVideos(enrollment.CourseID)
	if err != nil {
		return nil, fmt.Errorf("error counting course videos: %w", err)
	}
	if total > 0 {
		done, err := s.enrollmentRepo.CountVideoCompletions(enrollmentID)
		if err != nil {
			return nil, fmt.Errorf("error counting video completions: %w", err)
		}
		enrollment.ProgressPercent = 100 * float64(done) / float64(total)
		if done >= total && enrollment.CompletedAt == nil {
			now := time.Now()
			enrollment.CompletedAt = &now
		}
		if err := s.enrollmentRepo.Update(enrollment); err != nil {
			log.Error().Err(err).Uint("enrollmentID", enrollmentID).Msg("MarkVideoComplete: failed to update progress")
			return nil, fmt.Errorf("database error updating progress: %w", err)
		}
	}

	return s.toDTO(enrollment, ""), nil
}

func (s *enrollmentService) toDTO(enrollment *model.Enrollment, courseTitle string) *dto.EnrollmentResponseDTO {
	var resp dto.EnrollmentResponseDTO
	if err := copier.Copy(&resp, enrollment); err != nil {
		log.Error().Err(err).Uint("enrollmentID", enrollment.ID).Msg("Error copying enrollment to DTO")
	}
	resp.CourseTitle = courseTitle
	return &resp
}
