package dto

import (
	"io"

	"anoa.com/campushub/internal/entity"
	commonDto "anoa.com/campushub/pkg/dto"
)

// AddResourceInput is the add-resource form of the web surface. The file
// itself travels separately as an UploadedFile.
type AddResourceInput struct {
	Title        string `form:"title" binding:"required,max=200"`
	Description  string `form:"description"`
	ResourceType string `form:"resource_type" binding:"required,oneof=document link video assignment syllabus"`
	ExternalLink string `form:"external_link" binding:"omitempty,max=500"`
}

// UploadedFile is an uploaded blob and the name the client gave it.
type UploadedFile struct {
	Reader   io.Reader
	FileName string
	Size     int64
}

// Download is a stored blob opened for streaming to the client.
type Download struct {
	Reader   io.ReadCloser
	FileName string
	Size     *int64
}

type ResourceResponse struct {
	ResourceID   uint    `json:"resource_id"`
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	ResourceType string  `json:"resource_type"`
	FileSize     *int64  `json:"file_size"`
	ExternalLink *string `json:"external_link"`
	UploadedAt   *string `json:"uploaded_at"`
}

func NewResourceResponse(res *entity.CourseResource) ResourceResponse {
	return ResourceResponse{
		ResourceID:   res.ID,
		Title:        res.Title,
		Description:  res.Description,
		ResourceType: res.ResourceType,
		FileSize:     res.FileSize,
		ExternalLink: res.ExternalLink,
		UploadedAt:   commonDto.Timestamp(res.UploadedAt),
	}
}

func NewResourceResponses(resources []entity.CourseResource) []ResourceResponse {
	out := make([]ResourceResponse, 0, len(resources))
	for i := range resources {
		out = append(out, NewResourceResponse(&resources[i]))
	}
	return out
}

// ResourceDetailResponse adds the parent course to a resource.
type ResourceDetailResponse struct {
	ResourceResponse
	CourseID   uint   `json:"course_id"`
	CourseCode string `json:"course_code"`
	CourseName string `json:"course_name"`
}

func NewResourceDetailResponse(res *entity.CourseResource) ResourceDetailResponse {
	out := ResourceDetailResponse{
		ResourceResponse: NewResourceResponse(res),
		CourseID:         res.CourseID,
	}
	if res.Course != nil {
		out.CourseCode = res.Course.CourseCode
		out.CourseName = res.Course.CourseName
	}
	return out
}

type CourseSummaryResponse struct {
	CourseID      uint    `json:"course_id"`
	CourseCode    string  `json:"course_code"`
	CourseName    string  `json:"course_name"`
	Description   string  `json:"description"`
	Department    string  `json:"department"`
	ResourceCount int64   `json:"resource_count"`
	CreatedAt     *string `json:"created_at"`
}

func NewCourseSummaryResponses(courses []entity.CourseSummary) []CourseSummaryResponse {
	out := make([]CourseSummaryResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, CourseSummaryResponse{
			CourseID:      c.ID,
			CourseCode:    c.CourseCode,
			CourseName:    c.CourseName,
			Description:   c.Description,
			Department:    c.Department,
			ResourceCount: c.ResourceCount,
			CreatedAt:     commonDto.Timestamp(c.CreatedAt),
		})
	}
	return out
}

type CourseDetailResponse struct {
	CourseID    uint               `json:"course_id"`
	CourseCode  string             `json:"course_code"`
	CourseName  string             `json:"course_name"`
	Description string             `json:"description"`
	Department  string             `json:"department"`
	CreatedAt   *string            `json:"created_at"`
	Resources   []ResourceResponse `json:"resources"`
}

func NewCourseDetailResponse(course *entity.Course, resources []entity.CourseResource) CourseDetailResponse {
	return CourseDetailResponse{
		CourseID:    course.ID,
		CourseCode:  course.CourseCode,
		CourseName:  course.CourseName,
		Description: course.Description,
		Department:  course.Department,
		CreatedAt:   commonDto.Timestamp(course.CreatedAt),
		Resources:   NewResourceResponses(resources),
	}
}
