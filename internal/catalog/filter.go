package catalog

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// All is the select-box sentinel meaning "do not filter on this field".
const All = "All"

// Criteria is the search/category/technology selection for the project list.
// The zero value matches every project.
type Criteria struct {
	Search     string `form:"search" json:"search"`
	Category   string `form:"category" json:"category"`
	Technology string `form:"technology" json:"technology"`
}

// Normalize maps both "no filter" spellings onto one value so equivalent
// criteria compare equal.
func (c Criteria) Normalize() Criteria {
	if c.Category == "" {
		c.Category = All
	}
	if c.Technology == All {
		c.Technology = ""
	}
	return c
}

// Active reports whether any filter narrows the list.
func (c Criteria) Active() bool {
	n := c.Normalize()
	return n.Search != "" || n.Category != All || n.Technology != ""
}

// Filter returns the projects matching c, in source order. The input slice is
// left untouched and the result never aliases it.
func Filter(projects []Project, c Criteria) []Project {
	c = c.Normalize()
	fold := cases.Fold()
	needle := fold.String(c.Search)

	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if matchesSearch(p, needle, fold) && matchesCategory(p, c.Category) && matchesTechnology(p, c.Technology) {
			out = append(out, p)
		}
	}
	return out
}

func matchesSearch(p Project, needle string, fold cases.Caser) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(fold.String(p.Title), needle) || strings.Contains(fold.String(p.ShortDescription), needle) {
		return true
	}
	for _, tech := range p.Technologies {
		if strings.Contains(fold.String(tech), needle) {
			return true
		}
	}
	return false
}

func matchesCategory(p Project, category string) bool {
	return category == All || p.Category == category
}

func matchesTechnology(p Project, tech string) bool {
	return tech == "" || slices.Contains(p.Technologies, tech)
}

// Categories lists distinct categories in first-seen order.
func Categories(projects []Project) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range projects {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// Technologies lists distinct technology tags, sorted.
func Technologies(projects []Project) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range projects {
		for _, tech := range p.Technologies {
			if _, ok := seen[tech]; ok {
				continue
			}
			seen[tech] = struct{}{}
			out = append(out, tech)
		}
	}
	slices.Sort(out)
	return out
}
