package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/portfolio/internal/catalog"
)

type projectsResponse struct {
	Projects     []catalog.Project `json:"projects"`
	Count        int               `json:"count"`
	Total        int               `json:"total"`
	Categories   []string          `json:"categories"`
	Technologies []string          `json:"technologies"`
	Criteria     catalog.Criteria  `json:"criteria"`
}

func (s *Server) apiProjects(c *gin.Context) {
	list := s.listProjects(c)
	c.JSON(http.StatusOK, projectsResponse{
		Projects:     list.Projects,
		Count:        list.Count,
		Total:        list.Total,
		Categories:   list.Categories,
		Technologies: list.Technologies,
		Criteria:     list.Criteria,
	})
}

func (s *Server) apiProject(c *gin.Context) {
	p, err := s.catalog.ProjectBySlug(c.Param("slug"))
	if errors.Is(err, catalog.ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

// apiSkills returns every group, or with ?category= only that category's
// skills.
func (s *Server) apiSkills(c *gin.Context) {
	if category := c.Query("category"); category != "" && category != catalog.All {
		skills := s.catalog.SkillsByCategory(category)
		if skills == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown skill category: " + category})
			return
		}
		c.JSON(http.StatusOK, gin.H{"category": category, "skills": skills})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"groups":     s.catalog.Skills,
		"categories": s.catalog.SkillCategories(),
		"skills":     s.catalog.AllSkills(),
	})
}

func (s *Server) apiExperience(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"experience": s.catalog.Experience})
}

func (s *Server) apiEducation(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"education":      s.catalog.Education,
		"certifications": s.catalog.Certifications,
	})
}

func (s *Server) apiResearch(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"research": s.catalog.Research,
		"bibtex":   s.catalog.Research.BibTeX(),
	})
}
