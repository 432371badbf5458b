package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/coursewire/coursewire/internal/application"
	"github.com/coursewire/coursewire/internal/interface/middleware"
	"github.com/coursewire/coursewire/pkg/response"
	"github.com/coursewire/coursewire/pkg/validation"
)

type CourseHandler struct {
	Svc    *application.CourseService
	Logger *logrus.Logger
}

func NewCourseHandler(svc *application.CourseService, logger *logrus.Logger) *CourseHandler {
	return &CourseHandler{Svc: svc, Logger: logger}
}

type createCourseRequest struct {
	Title       string `form:"title" binding:"required"`
	Description string `form:"description" binding:"required"`
	Category    string `form:"category" binding:"required"`
}

type addLectureRequest struct {
	Title       string `form:"title" binding:"required"`
	Description string `form:"description" binding:"required"`
}

// List GET /api/courses — public; lectures are never included here.
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.Svc.List(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, courses, "courses")
}

// Create POST /api/createcourse (admin, multipart: title, description, category, file)
func (h *CourseHandler) Create(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "please enter all fields", validation.ToDetails(err))
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "please enter all fields", map[string]string{"file": "is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Fail(c, err)
		return
	}
	defer func() { _ = f.Close() }()

	u := middleware.CurrentUser(c)
	course, err := h.Svc.Create(c.Request.Context(), application.CourseInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		CreatedBy:   u.Name,
	}, f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, course, "course created successfully")
}

// Lectures GET /api/course/:id (subscribers)
func (h *CourseHandler) Lectures(c *gin.Context) {
	course, lectures, err := h.Svc.Lectures(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course, "lectures": lectures}, "lectures")
}

// AddLecture POST /api/course/:id (admin, multipart: title, description, file)
func (h *CourseHandler) AddLecture(c *gin.Context) {
	var req addLectureRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "please enter all fields", validation.ToDetails(err))
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "please enter all fields", map[string]string{"file": "is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Fail(c, err)
		return
	}
	defer func() { _ = f.Close() }()

	lecture, err := h.Svc.AddLecture(c.Request.Context(), c.Param("id"), application.LectureInput{
		Title:       req.Title,
		Description: req.Description,
	}, f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, lecture, "lecture added successfully")
}

// Delete DELETE /api/course/:id (admin)
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "course deleted successfully")
}

// DeleteLecture DELETE /api/lecture?id=<lecture id> (admin)
func (h *CourseHandler) DeleteLecture(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		response.Error[any](c, http.StatusBadRequest, "lecture id is required", nil)
		return
	}
	if err := h.Svc.DeleteLecture(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "lecture deleted successfully")
}
