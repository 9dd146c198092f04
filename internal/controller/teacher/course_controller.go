package teacher

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

type CourseController struct {
	courseService service.CourseService
}

func NewCourseController(courseService service.CourseService) *CourseController {
	return &CourseController{courseService: courseService}
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(v), true
}

// CreateCourse godoc
// @Summary (Teacher) Create a course
// @Tags Teacher - Courses
// @Accept json
// @Produce json
// @Param course body dto.CourseCreateDTO true "Course data"
// @Success 201 {object} dto.CourseResponseDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /teacher/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req dto.CourseCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.courseService.CreateCourse(middleware.UserID(ctx), req)
	if err != nil {
		log.Error().Err(err).Msg("CreateCourse: service error")
		controller.RespondError(ctx, err, "Failed to create course")
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// ListCourses godoc
// @Summary (Teacher) List owned courses
// @Tags Teacher - Courses
// @Produce json
// @Success 200 {array} dto.CourseSummaryDTO
// @Router /teacher/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	resp, err := c.courseService.ListOwnedCourses(middleware.UserID(ctx))
	if err != nil {
		controller.RespondError(ctx, err, "Failed to list courses")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetCourse godoc
// @Summary (Teacher) Get a course with its content tree
// @Tags Teacher - Courses
// @Produce json
// @Param course_id path int true "Course ID"
// @Success 200 {object} dto.CourseResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /teacher/courses/{course_id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
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

// DeleteCourse godoc
// @Summary (Teacher) Delete a course
// @Tags Teacher - Courses
// @Param course_id path int true "Course ID"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Router /teacher/courses/{course_id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "course_id")
	if !ok {
		return
	}
	if err := c.courseService.DeleteCourse(courseID, middleware.UserID(ctx)); err != nil {
		controller.RespondError(ctx, err, "Failed to delete course")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// CreateSection godoc
// @Summary (Teacher) Add a section to a course
// @Tags Teacher - Courses
// @Accept json
// @Produce json
// @Param course_id path int true "Course ID"
// @Param section body dto.SectionCreateDTO true "Section data"
// @Success 201 {object} dto.SectionResponseDTO
// @Router /teacher/courses/{course_id}/sections [post]
func (c *CourseController) CreateSection(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "course_id")
	if !ok {
		return
	}
	var req dto.SectionCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	resp, err := c.courseService.CreateSection(courseID, middleware.UserID(ctx), req)
	if err != nil {
		controller.RespondError(ctx, err, "Failed to create section")
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// CreateLesson godoc
// @Summary (Teacher) Add a lesson to a section
// @Tags Teacher - Courses
// @Accept json
// @Produce json
// @Param section_id path int true "Section ID"
// @Param lesson body dto.LessonCreateDTO true "Lesson data"
// @Success 201 {object} dto.LessonResponseDTO
// @Router /teacher/sections/{section_id}/lessons [post]
func (c *CourseController) CreateLesson(ctx *gin.Context) {
	sectionID, ok := pathID(ctx, "section_id")
	if !ok {
		return
	}
	var req dto.LessonCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	resp, err := c.courseService.CreateLesson(sectionID, middleware.UserID(ctx), req)
	if err != nil {
		controller.RespondError(ctx, err, "Failed to create lesson")
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// CreateVideo godoc
// @Summary (Teacher) Attach an uploaded video to a lesson
// @Tags Teacher - Courses
// @Accept json
// @Produce json
// @Param lesson_id path int true "Lesson ID"
// @Param video body dto.VideoCreateDTO true "Video data"
// @Success 201 {object} dto.VideoResponseDTO
// @Router /teacher/lessons/{lesson_id}/videos [post]
func (c *CourseController) CreateVideo(ctx *gin.Context) {
	lessonID, ok := pathID(ctx, "lesson_id")
	if !ok {
		return
	}
	var req dto.VideoCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	resp, err := c.courseService.CreateVideo(lessonID, middleware.UserID(ctx), req)
	if err != nil {
		controller.RespondError(ctx, err, "Failed to create video")
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// UploadURL godoc
// @Summary (Teacher) Reserve an upload URL for a video asset
// @Tags Teacher - Courses
// @Produce json
// @Param filename query string true "Original filename"
// @Success 200 {object} map[string]string
// @Router /teacher/videos/upload-url [get]
func (c *CourseController) UploadURL(ctx *gin.Context) {
	filename := ctx.Query("filename")
	if filename == "" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "filename query parameter is required"})
		return
	}
	key, url, err := c.courseService.UploadURL(middleware.UserID(ctx), filename)
	if err != nil {
		controller.RespondError(ctx, err, "Failed to create upload URL")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"storage_key": key, "upload_url": url})
}
