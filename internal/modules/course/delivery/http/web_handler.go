package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"anoa.com/campushub/internal/entity"
	"anoa.com/campushub/internal/modules/course/dto"
	course "anoa.com/campushub/internal/modules/course/service"
	"anoa.com/campushub/internal/web"
	"anoa.com/campushub/pkg/apperror"
	commonDto "anoa.com/campushub/pkg/dto"
	"anoa.com/campushub/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CourseWebHandler serves the session-gated catalog pages.
type CourseWebHandler struct {
	service course.CourseService
}

func NewCourseWebHandler(service course.CourseService) *CourseWebHandler {
	return &CourseWebHandler{service: service}
}

func (h *CourseWebHandler) ListCourses(c *gin.Context) {
	var filter commonDto.CourseFilter
	_ = c.ShouldBindQuery(&filter)

	courses, err := h.service.ListCourses(c.Request.Context(), filter.Search)
	if err != nil {
		h.fail(c, err, "/events")
		return
	}

	c.HTML(http.StatusOK, "courses.html", web.Page(c, gin.H{
		"Title":   "Courses",
		"Courses": courses,
		"Search":  filter.Search,
	}))
}

func (h *CourseWebHandler) ViewCourse(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	found, err := h.service.GetCourse(ctx, id)
	if err != nil {
		h.fail(c, err, "/courses")
		return
	}
	resources, err := h.service.ListResources(ctx, id)
	if err != nil {
		h.fail(c, err, "/courses")
		return
	}

	c.HTML(http.StatusOK, "course_detail.html", web.Page(c, gin.H{
		"Title":     found.CourseCode,
		"Course":    found,
		"Resources": resources,
	}))
}

func (h *CourseWebHandler) ShowAddResource(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	found, err := h.service.GetCourse(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "/courses")
		return
	}

	c.HTML(http.StatusOK, "resource_form.html", web.Page(c, gin.H{
		"Title":         "Add resource",
		"Course":        found,
		"ResourceTypes": entity.ResourceTypes,
	}))
}

func (h *CourseWebHandler) AddResource(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	formPath := fmt.Sprintf("/courses/%d/resources/add", id)

	var input dto.AddResourceInput
	if err := c.ShouldBind(&input); err != nil {
		web.Redirect(c, formPath, web.FlashError, validator.FormatValidationError(err))
		return
	}

	var upload *dto.UploadedFile
	if header, err := c.FormFile("file"); err == nil && header.Filename != "" {
		file, err := header.Open()
		if err != nil {
			h.fail(c, err, formPath)
			return
		}
		defer file.Close()
		upload = &dto.UploadedFile{Reader: file, FileName: header.Filename, Size: header.Size}
	}

	if _, err := h.service.AddResource(c.Request.Context(), id, input, upload); err != nil {
		h.fail(c, err, formPath)
		return
	}

	web.Redirect(c, fmt.Sprintf("/courses/%d", id), web.FlashSuccess, "Resource added successfully!")
}

func (h *CourseWebHandler) DeleteResource(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	deleted, err := h.service.DeleteResource(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "/courses")
		return
	}

	web.Redirect(c, fmt.Sprintf("/courses/%d", deleted.CourseID), web.FlashSuccess, "Resource deleted successfully!")
}

func (h *CourseWebHandler) DownloadResource(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	resource, err := h.service.GetResource(ctx, id)
	if err != nil {
		h.fail(c, err, "/courses")
		return
	}
	coursePath := fmt.Sprintf("/courses/%d", resource.CourseID)

	download, err := h.service.FetchBlob(ctx, id)
	if err != nil {
		h.fail(c, err, coursePath)
		return
	}
	defer download.Reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.FileName))
	c.Header("Content-Type", "application/octet-stream")
	if download.Size != nil {
		c.Header("Content-Length", strconv.FormatInt(*download.Size, 10))
	}
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, download.Reader); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Uint("resource_id", id).Msg("download interrupted")
	}
}

func (h *CourseWebHandler) pathID(c *gin.Context) (uint, bool) {
	var req commonDto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		web.Redirect(c, "/courses", web.FlashError, "Not found!")
		return 0, false
	}
	return req.ID, true
}

func (h *CourseWebHandler) fail(c *gin.Context, err error, back string) {
	switch {
	case errors.Is(err, apperror.ErrMissingFile):
		web.Redirect(c, back, web.FlashError, "Please select a file for document type resources.")
	case errors.Is(err, apperror.ErrFileMissing):
		web.Redirect(c, back, web.FlashError, "File not found!")
	case errors.Is(err, apperror.ErrNotFound):
		web.Redirect(c, "/courses", web.FlashError, "Not found!")
	case errors.Is(err, apperror.ErrValidation):
		web.Redirect(c, back, web.FlashError, err.Error())
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.Request.URL.Path).Msg("course request failed")
		web.Redirect(c, back, web.FlashError, "Something went wrong, please try again.")
	}
}
