package entity

import (
	"time"
)

const (
	ResourceTypeDocument   = "document"
	ResourceTypeLink       = "link"
	ResourceTypeVideo      = "video"
	ResourceTypeAssignment = "assignment"
	ResourceTypeSyllabus   = "syllabus"
)

var ResourceTypes = []string{
	ResourceTypeDocument,
	ResourceTypeLink,
	ResourceTypeVideo,
	ResourceTypeAssignment,
	ResourceTypeSyllabus,
}

type Course struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	CourseCode  string           `gorm:"size:20;uniqueIndex;not null" json:"course_code"`
	CourseName  string           `gorm:"size:200;not null" json:"course_name"`
	Description string           `gorm:"type:text;not null" json:"description"`
	Department  string           `gorm:"size:100;not null" json:"department"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	Resources   []CourseResource `gorm:"constraint:OnDelete:CASCADE" json:"resources,omitempty"`
}

// CourseSummary is the catalog listing row: a course plus its resource count.
type CourseSummary struct {
	ID            uint      `json:"id"`
	CourseCode    string    `json:"course_code"`
	CourseName    string    `json:"course_name"`
	Description   string    `json:"description"`
	Department    string    `json:"department"`
	CreatedAt     time.Time `json:"created_at"`
	ResourceCount int64     `json:"resource_count"`
}

// CourseResource points at its content through FilePath (stored blob) or
// ExternalLink. Uploaded documents carry a FilePath; seeded ones may not.
type CourseResource struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:200;not null" json:"title"`
	Description  *string   `gorm:"type:text" json:"description"`
	ResourceType string    `gorm:"size:50;not null" json:"resource_type"`
	FilePath     *string   `gorm:"size:500" json:"file_path"`
	ExternalLink *string   `gorm:"size:500" json:"external_link"`
	FileSize     *int64    `json:"file_size"`
	UploadedAt   time.Time `gorm:"autoCreateTime;index" json:"uploaded_at"`
	CourseID     uint      `gorm:"not null;index" json:"course_id"`
	Course       *Course   `gorm:"foreignKey:CourseID" json:"-"`
}

func ValidResourceType(v string) bool {
	return contains(ResourceTypes, v)
}

// HasBlob reports whether a stored blob backs this resource.
func (r *CourseResource) HasBlob() bool {
	return r.FilePath != nil && *r.FilePath != ""
}
