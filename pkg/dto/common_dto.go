package dto

import "time"

type CourseFilter struct {
	Search string `form:"search"`
}

type ResourceSearchFilter struct {
	Query string `form:"q" binding:"max=200"`
}

type IDRequest struct {
	ID uint `uri:"id" binding:"required,min=1"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

const isoLayout = "2006-01-02T15:04:05"

// Timestamp renders t as a naive UTC ISO-8601 timestamp, appending
// microseconds only when present. Zero times render as nil.
func Timestamp(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	t = t.UTC()
	layout := isoLayout
	if t.Nanosecond()/int(time.Microsecond) != 0 {
		layout = isoLayout + ".000000"
	}
	s := t.Format(layout)
	return &s
}
