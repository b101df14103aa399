package web

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/portfolio/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

const themeCookie = "theme"

func loadTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"join":     strings.Join,
		"fileSize": storage.FormatFileSize,
		"lower":    strings.ToLower,
		"selected": func(a, b string) bool { return a == b },
	}).ParseFS(templateFS, "templates/*.html")
}

// theme is the visitor's cookie choice, falling back to the configured
// default.
func (s *Server) theme(c *gin.Context) string {
	if v, err := c.Cookie(themeCookie); err == nil && (v == "dark" || v == "light") {
		return v
	}
	return s.cfg.App.DefaultTheme
}

// page renders a full page with the data every layout needs.
func (s *Server) page(c *gin.Context, status int, name, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["title"] = title
	data["owner"] = s.cfg.App.OwnerName
	data["theme"] = s.theme(c)
	data["path"] = c.Request.URL.Path
	data["year"] = s.now().Year()
	c.HTML(status, name, data)
}

func (s *Server) notFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	s.page(c, http.StatusNotFound, "not-found.html", "Not Found", nil)
}

// isHTMX reports whether the request came from an htmx swap.
func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}
