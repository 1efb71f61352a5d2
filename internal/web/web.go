// Package web renders the server-side pages of the session-gated surface and
// carries one-shot flash notices between a redirect and the next page.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"anoa.com/campushub/internal/middleware"
	"anoa.com/campushub/pkg/response"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	formDateLayout    = "2006-01-02T15:04"
	displayDateLayout = "Jan 02, 2006 15:04"
)

var funcs = template.FuncMap{
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(displayDateLayout)
	},
	"formDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(formDateLayout)
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"derefInt": func(n *int) string {
		if n == nil {
			return ""
		}
		return strconv.Itoa(*n)
	},
	"fileSize": func(n *int64) string {
		if n == nil {
			return ""
		}
		return humanSize(*n)
	},
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}

// Templates parses the embedded page set for gin's SetHTMLTemplate.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// Page decorates handler data with the values every layout needs.
func Page(c *gin.Context, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	if principal, err := response.GetPrincipal(c); err == nil {
		data["Principal"] = principal
	}
	data["Flashes"] = PopFlashes(c)
	data["CSRFField"] = middleware.CSRFFieldName()
	data["CSRFToken"] = middleware.CSRFToken(c)
	return data
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 3; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}
