package handler

import (
	"net/http"

	"anoa.com/campushub/internal/modules/course/dto"
	course "anoa.com/campushub/internal/modules/course/service"
	commonDto "anoa.com/campushub/pkg/dto"
	"anoa.com/campushub/pkg/response"
	"anoa.com/campushub/pkg/validator"
	"github.com/gin-gonic/gin"
)

// CourseAPIHandler serves the read-only public JSON surface of the catalog.
type CourseAPIHandler struct {
	service course.CourseService
}

func NewCourseAPIHandler(service course.CourseService) *CourseAPIHandler {
	return &CourseAPIHandler{service: service}
}

func (h *CourseAPIHandler) ListCourses(c *gin.Context) {
	var filter commonDto.CourseFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	courses, err := h.service.ListCourses(c.Request.Context(), filter.Search)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewCourseSummaryResponses(courses))
}

func (h *CourseAPIHandler) GetCourse(c *gin.Context) {
	id, ok := bindID(c, "course not found")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	found, err := h.service.GetCourse(ctx, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resources, err := h.service.ListResources(ctx, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewCourseDetailResponse(found, resources))
}

func (h *CourseAPIHandler) ListCourseResources(c *gin.Context) {
	id, ok := bindID(c, "course not found")
	if !ok {
		return
	}

	resources, err := h.service.ListResources(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewResourceResponses(resources))
}

func (h *CourseAPIHandler) GetResource(c *gin.Context) {
	id, ok := bindID(c, "resource not found")
	if !ok {
		return
	}

	resource, err := h.service.GetResource(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewResourceDetailResponse(resource))
}

func (h *CourseAPIHandler) SearchResources(c *gin.Context) {
	var filter commonDto.ResourceSearchFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resources, err := h.service.SearchResources(c.Request.Context(), filter.Query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	out := make([]dto.ResourceDetailResponse, 0, len(resources))
	for i := range resources {
		out = append(out, dto.NewResourceDetailResponse(&resources[i]))
	}
	c.JSON(http.StatusOK, out)
}

// bindID reads the :id path segment; non-numeric ids answer 404 like unknown ones.
func bindID(c *gin.Context, notFound string) (uint, bool) {
	var req commonDto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
		return 0, false
	}
	return req.ID, true
}
