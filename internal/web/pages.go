package web

import (
	"errors"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/portfolio/internal/catalog"
)

// projectList is what both the projects page and its filter fragment render.
type projectList struct {
	Criteria     catalog.Criteria
	Active       bool
	Projects     []catalog.Project
	Count        int
	Total        int
	Categories   []string
	Technologies []string
	Featured     []catalog.Project
}

func (s *Server) listProjects(c *gin.Context) projectList {
	crit := catalog.Criteria{
		Search:     c.Query("search"),
		Category:   c.Query("category"),
		Technology: c.Query("technology"),
	}.Normalize()

	results := s.index.Filter(crit)
	list := projectList{
		Criteria:     crit,
		Active:       crit.Active(),
		Projects:     results,
		Count:        len(results),
		Total:        s.index.Len(),
		Categories:   append([]string{catalog.All}, s.index.Categories()...),
		Technologies: s.index.Technologies(),
	}
	if !list.Active {
		list.Featured = s.catalog.FeaturedProjects()
	}
	return list
}

func (s *Server) home(c *gin.Context) {
	s.page(c, http.StatusOK, "index.html", s.cfg.App.OwnerName, gin.H{
		"tagline":    Tagline,
		"roles":      Roles,
		"about":      AboutMe[0],
		"featured":   s.catalog.FeaturedProjects(),
		"experience": s.catalog.CurrentExperience(),
	})
}

func (s *Server) about(c *gin.Context) {
	s.page(c, http.StatusOK, "about.html", "About", gin.H{
		"about":          AboutMe,
		"education":      s.catalog.CurrentEducation(),
		"certifications": s.catalog.CompletedCertifications(),
		"skills":         s.catalog.SkillCategories(),
	})
}

func (s *Server) projects(c *gin.Context) {
	s.page(c, http.StatusOK, "projects.html", "Projects", gin.H{
		"intro": ProjectsIntro,
		"list":  s.listProjects(c),
	})
}

// projectsFilter returns only the result list for htmx to swap in.
func (s *Server) projectsFilter(c *gin.Context) {
	c.HTML(http.StatusOK, "project-list.html", gin.H{"list": s.listProjects(c)})
}

func (s *Server) projectDetail(c *gin.Context) {
	p, err := s.catalog.ProjectBySlug(c.Param("slug"))
	if errors.Is(err, catalog.ErrProjectNotFound) {
		s.notFound(c)
		return
	}
	s.page(c, http.StatusOK, "project.html", p.Title, gin.H{
		"project": p,
		"related": s.relatedProjects(p),
	})
}

// relatedProjects is the rest of p's category, in catalog order.
func (s *Server) relatedProjects(p catalog.Project) []catalog.Project {
	var out []catalog.Project
	for _, other := range s.catalog.ProjectsByCategory(p.Category) {
		if other.Slug != p.Slug {
			out = append(out, other)
		}
	}
	return out
}

func (s *Server) skills(c *gin.Context) {
	s.page(c, http.StatusOK, "skills.html", "Skills", gin.H{"groups": s.catalog.Skills})
}

func (s *Server) experience(c *gin.Context) {
	s.page(c, http.StatusOK, "experience.html", "Experience", gin.H{"experience": s.catalog.Experience})
}

func (s *Server) education(c *gin.Context) {
	s.page(c, http.StatusOK, "education.html", "Education", gin.H{
		"education":      s.catalog.Education,
		"certifications": s.catalog.Certifications,
	})
}

func (s *Server) research(c *gin.Context) {
	r := s.catalog.Research
	s.page(c, http.StatusOK, "research.html", "Research", gin.H{
		"research": r,
		"bibtex":   r.BibTeX(),
	})
}

func (s *Server) contactPage(c *gin.Context) {
	s.page(c, http.StatusOK, "contact.html", "Contact", gin.H{
		"contactInfo": ContactInfo,
		"socialLinks": SocialLinks,
		"form":        contactView{},
	})
}

// contactForm is the htmx fragment with an empty form.
func (s *Server) contactForm(c *gin.Context) {
	c.HTML(http.StatusOK, "contact-form.html", gin.H{"form": contactView{}})
}

func (s *Server) resume(c *gin.Context) {
	s.page(c, http.StatusOK, "resume.html", "Resume", gin.H{
		"experience": s.catalog.Experience,
		"education":  s.catalog.Education,
		"skills":     s.catalog.Skills,
	})
}

func (s *Server) resumeFilename() string {
	return strings.ReplaceAll(s.cfg.App.OwnerName, " ", "_") + "_Resume.pdf"
}

func (s *Server) resumeDownload(c *gin.Context) {
	if _, err := os.Stat(s.cfg.Server.ResumePath); err != nil {
		s.logger.Sugar().Warnf("resume not available at %s: %v", s.cfg.Server.ResumePath, err)
		s.notFound(c)
		return
	}
	c.FileAttachment(s.cfg.Server.ResumePath, s.resumeFilename())
}

func (s *Server) privacy(c *gin.Context) {
	s.page(c, http.StatusOK, "privacy.html", "Privacy Policy", gin.H{
		"tracking":       s.store != nil && s.cfg.DB.TrackingEnabled,
		"retentionMonth": int(s.cfg.DB.Retention.Hours() / (24 * 30)),
	})
}

// setTheme stores the visitor's theme. An empty or unknown value toggles the
// current one.
func (s *Server) setTheme(c *gin.Context) {
	theme := c.PostForm("theme")
	if theme != "dark" && theme != "light" {
		theme = "dark"
		if s.theme(c) == "dark" {
			theme = "light"
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(themeCookie, theme, 365*24*3600, "/", "", s.cfg.IsProduction(), false)

	if isHTMX(c) {
		c.Header("HX-Refresh", "true")
		c.Status(http.StatusNoContent)
		return
	}
	c.Redirect(http.StatusSeeOther, localReferer(c.GetHeader("Referer"), c.Request.Host))
}

// localReferer returns the referer path when it points back at this site, or
// "/" otherwise.
func localReferer(ref, host string) string {
	u, err := url.Parse(ref)
	if err != nil || ref == "" || (u.Host != "" && u.Host != host) {
		return "/"
	}
	if u.Path == "" {
		return "/"
	}
	return u.RequestURI()
}
