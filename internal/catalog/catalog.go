// Package catalog holds the static portfolio content and the project filter.
//
// The content is compiled into the binary from data/portfolio.yaml and is
// read-only once loaded: callers must not modify the slices they receive.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/portfolio.yaml
var defaultData []byte

var ErrProjectNotFound = errors.New("project not found")

type Attachment struct {
	Name        string `yaml:"name" json:"name"`
	Filename    string `yaml:"filename" json:"filename"`
	URL         string `yaml:"url" json:"url"`
	Type        string `yaml:"type" json:"type"`
	Size        string `yaml:"size" json:"size"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

type Project struct {
	ID               string       `yaml:"id" json:"id"`
	Slug             string       `yaml:"slug" json:"slug"`
	Title            string       `yaml:"title" json:"title"`
	ShortDescription string       `yaml:"short_description" json:"shortDescription"`
	Description      string       `yaml:"description" json:"description"`
	Features         []string     `yaml:"features" json:"features"`
	Technologies     []string     `yaml:"technologies" json:"technologies"`
	Role             string       `yaml:"role" json:"role"`
	Duration         string       `yaml:"duration" json:"duration"`
	Status           string       `yaml:"status" json:"status"`
	Category         string       `yaml:"category" json:"category"`
	Images           []string     `yaml:"images" json:"images"`
	Attachments      []Attachment `yaml:"attachments" json:"attachments"`
	GitHub           string       `yaml:"github" json:"github,omitempty"`
	Demo             string       `yaml:"demo" json:"demo,omitempty"`
	Featured         bool         `yaml:"featured" json:"featured"`
}

type Skill struct {
	Name  string `yaml:"name" json:"name"`
	Level string `yaml:"level" json:"level"`
	Icon  string `yaml:"icon" json:"icon"`
}

type SkillGroup struct {
	Category string  `yaml:"category" json:"category"`
	Icon     string  `yaml:"icon" json:"icon"`
	Skills   []Skill `yaml:"skills" json:"skills"`
}

type Experience struct {
	ID               int      `yaml:"id" json:"id"`
	Title            string   `yaml:"title" json:"title"`
	Company          string   `yaml:"company" json:"company"`
	Location         string   `yaml:"location" json:"location"`
	Duration         string   `yaml:"duration" json:"duration"`
	Type             string   `yaml:"type" json:"type"`
	Description      string   `yaml:"description" json:"description"`
	Responsibilities []string `yaml:"responsibilities" json:"responsibilities"`
	Technologies     []string `yaml:"technologies" json:"technologies"`
	Achievements     []string `yaml:"achievements" json:"achievements"`
	Current          bool     `yaml:"current" json:"current"`
}

type Education struct {
	ID             int      `yaml:"id" json:"id"`
	Degree         string   `yaml:"degree" json:"degree"`
	Specialization string   `yaml:"specialization" json:"specialization"`
	Institution    string   `yaml:"institution" json:"institution"`
	Location       string   `yaml:"location" json:"location"`
	Duration       string   `yaml:"duration" json:"duration"`
	GPA            string   `yaml:"gpa,omitempty" json:"gpa,omitempty"`
	Results        string   `yaml:"results,omitempty" json:"results,omitempty"`
	Status         string   `yaml:"status" json:"status"`
	Description    string   `yaml:"description" json:"description"`
	Coursework     []string `yaml:"coursework,omitempty" json:"coursework,omitempty"`
	Subjects       []string `yaml:"subjects,omitempty" json:"subjects,omitempty"`
	Projects       []string `yaml:"projects,omitempty" json:"projects,omitempty"`
	Achievements   []string `yaml:"achievements" json:"achievements"`
	Current        bool     `yaml:"current" json:"current"`
}

type Certification struct {
	ID           int    `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name"`
	Issuer       string `yaml:"issuer" json:"issuer"`
	Date         string `yaml:"date" json:"date"`
	Status       string `yaml:"status" json:"status"`
	CredentialID string `yaml:"credential_id,omitempty" json:"credentialId,omitempty"`
	Description  string `yaml:"description" json:"description"`
}

type Phase struct {
	Phase    string `yaml:"phase" json:"phase"`
	Duration string `yaml:"duration" json:"duration"`
	Status   string `yaml:"status" json:"status"`
}

type Research struct {
	Title       string       `yaml:"title" json:"title"`
	Author      string       `yaml:"author" json:"author"`
	Year        int          `yaml:"year" json:"year"`
	School      string       `yaml:"school" json:"school"`
	Type        string       `yaml:"type" json:"type"`
	Address     string       `yaml:"address" json:"address"`
	CitationKey string       `yaml:"citation_key" json:"citationKey"`
	Abstract    string       `yaml:"abstract" json:"abstract"`
	Objectives  []string     `yaml:"objectives" json:"objectives"`
	Methodology []string     `yaml:"methodology" json:"methodology"`
	Datasets    []string     `yaml:"datasets" json:"datasets"`
	Models      []string     `yaml:"models" json:"models"`
	Timeline    []Phase      `yaml:"timeline" json:"timeline"`
	Images      []string     `yaml:"images" json:"images"`
	Attachments []Attachment `yaml:"attachments" json:"attachments"`
}

// BibTeX renders the research entry as a @mastersthesis citation.
func (r Research) BibTeX() string {
	var b strings.Builder
	fmt.Fprintf(&b, "@mastersthesis{%s,\n", r.CitationKey)
	fmt.Fprintf(&b, "  title={%s},\n", r.Title)
	fmt.Fprintf(&b, "  author={%s},\n", r.Author)
	fmt.Fprintf(&b, "  year={%d},\n", r.Year)
	fmt.Fprintf(&b, "  school={%s},\n", r.School)
	fmt.Fprintf(&b, "  type={%s},\n", r.Type)
	fmt.Fprintf(&b, "  address={%s}\n", r.Address)
	b.WriteString("}")
	return b.String()
}

// Catalog is the full set of portfolio content.
type Catalog struct {
	Projects       []Project       `yaml:"projects"`
	Skills         []SkillGroup    `yaml:"skills"`
	Experience     []Experience    `yaml:"experience"`
	Education      []Education     `yaml:"education"`
	Certifications []Certification `yaml:"certifications"`
	Research       Research        `yaml:"research"`
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultData)
}

// Load reads a YAML catalog from r.
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	seen := make(map[string]struct{}, len(c.Projects))
	for i, p := range c.Projects {
		if p.Slug == "" {
			return fmt.Errorf("project %d (%q) has no slug", i, p.Title)
		}
		if _, dup := seen[p.Slug]; dup {
			return fmt.Errorf("duplicate project slug %q", p.Slug)
		}
		seen[p.Slug] = struct{}{}
	}
	return nil
}

func (c *Catalog) ProjectBySlug(slug string) (Project, error) {
	for _, p := range c.Projects {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Project{}, fmt.Errorf("%w: %s", ErrProjectNotFound, slug)
}

func (c *Catalog) FeaturedProjects() []Project {
	var out []Project
	for _, p := range c.Projects {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

func (c *Catalog) ProjectsByCategory(category string) []Project {
	var out []Project
	for _, p := range c.Projects {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

func (c *Catalog) SkillCategories() []string {
	out := make([]string, 0, len(c.Skills))
	for _, g := range c.Skills {
		out = append(out, g.Category)
	}
	return out
}

// SkillsByCategory returns nil for an unknown category.
func (c *Catalog) SkillsByCategory(category string) []Skill {
	for _, g := range c.Skills {
		if g.Category == category {
			return g.Skills
		}
	}
	return nil
}

func (c *Catalog) AllSkills() []Skill {
	var out []Skill
	for _, g := range c.Skills {
		out = append(out, g.Skills...)
	}
	return out
}

func (c *Catalog) CurrentExperience() []Experience {
	var out []Experience
	for _, e := range c.Experience {
		if e.Current {
			out = append(out, e)
		}
	}
	return out
}

func (c *Catalog) CurrentEducation() []Education {
	var out []Education
	for _, e := range c.Education {
		if e.Current {
			out = append(out, e)
		}
	}
	return out
}

func (c *Catalog) CompletedCertifications() []Certification {
	var out []Certification
	for _, cert := range c.Certifications {
		if cert.Status == "Completed" {
			out = append(out, cert)
		}
	}
	return out
}
