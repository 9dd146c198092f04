package student

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Ocelots/internal/controller"
	"github.com/lshigami/Ocelots/internal/dto"
	"github.com/lshigami/Ocelots/internal/middleware"
	"github.com/lshigami/Ocelots/internal/service"
	"github.com/rs/zerolog/log"
)

type EnrollmentController struct {
	enrollmentService service.EnrollmentService
	courseService     service.CourseService
}

func NewEnrollmentController(enrollmentService service.EnrollmentService, courseService service.CourseService) *EnrollmentController {
	return &EnrollmentController{
		enrollmentService: enrollmentService,
		courseService:     courseService,
	}
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(v), true
}

// JoinCourse godoc
// @Summary (Student) Join a course by its code
// @Tags Student - Enrollments
// @Accept json
// @Produce json
// @Param join body dto.JoinCourseDTO true "Course code"
// @Success 201 {object} dto.EnrollmentResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /student/enrollments/join [post]
func (c *EnrollmentController) JoinCourse(ctx *gin.Context) {
	var req dto.JoinCourseDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	resp, err := c.enrollmentService.JoinCourse(middleware.UserID(ctx), req)
	if err != nil {
		log.Error().Err(err).Msg("JoinCourse: service error")
		controller.RespondError(ctx, err, "Failed to join course")
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// ListEnrollments godoc
// @Summary (Student) List own enrollments
// @Tags Student - Enrollments
// @Produce json
// @Success 200 {array} dto.EnrollmentResponseDTO
// @Router /student/enrollments [get]
func (c *EnrollmentController) ListEnrollments(ctx *gin.Context) {
	resp, err := c.enrollmentService.ListEnrollments(middleware.UserID(ctx))
	if err != nil {
		controller.RespondError(ctx, err, "Failed to list enrollments")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetEnrollment godoc
// @Summary (Student) Get one enrollment with progress
// @Tags Student - Enrollments
// @Produce json
// @Param enrollment_id path int true "Enrollment ID"
// @Success 200 {object} dto.EnrollmentResponseDTO
// @Failure 403 {object} dto.ErrorResponse
// @Router /student/enrollments/{enrollment_id} [get]
func (c *EnrollmentController) GetEnrollment(ctx *gin.Context) {
	enrollmentID, ok := pathID(ctx, "enrollment_id")
	if !ok {
		return
	}
	resp, err := c.enrollmentService.GetEnrollment(enrollmentID, middleware.UserID(ctx))
	if err != nil {
		controller.RespondError(ctx, err, "Failed to fetch enrollment")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetCourseContent godoc
// @Summary (Student) Browse the content tree of an enrolled course
// @Tags Student - Enrollments
// @Produce json
// @Param course_id path int true "Course ID"
// @Success 200 {object} dto.CourseResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /student/courses/{course_id} [get]
func (c *EnrollmentController) GetCourseContent(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "course_id")
	if !ok {
		return
	}
	resp, err := c.courseService.GetCourse(courseID, middleware.UserID(ctx))
	if err != nil {
		controller.RespondError(ctx, err, "Failed to fetch course")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// VideoURL godoc
// @Summary (Student) Get a playback URL for a video
// @Tags Student - Enrollments
// @Produce json
// @Param video_id path int true "Video ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} dto.ErrorResponse
// @Router /student/videos/{video_id}/url [get]
func (c *EnrollmentController) VideoURL(ctx *gin.Context) {
	videoID, ok := pathID(ctx, "video_id")
	if !ok {
		return
	}
	url, err := c.courseService.VideoPlaybackURL(videoID)
	if err != nil {
		controller.RespondError(ctx, err, "Failed to resolve video URL")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"url": url})
}

// MarkVideoComplete godoc
// @Summary (Student) Mark a video as watched, updating course progress
// @Tags Student - Enrollments
// @Produce json
// @Param enrollment_id path int true "Enrollment ID"
// @Param video_id path int true "Video ID"
// @Success 200 {object} dto.EnrollmentResponseDTO
// @Failure 403 {object} dto.ErrorResponse
// @Router /student/enrollments/{enrollment_id}/videos/{video_id}/complete [post]
func (c *EnrollmentController) MarkVideoComplete(ctx *gin.Context) {
	enrollmentID, ok := pathID(ctx, "enrollment_id")
	if !ok {
		return
	}
	videoID, ok := pathID(ctx, "video_id")
	if !ok {
		return
	}
	resp, err := c.enrollmentService.MarkVideoComplete(enrollmentID, middleware.UserID(ctx), videoID)
	if err != nil {
		controller.RespondError(ctx, err, "Failed to record video completion")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
