// Package web is the HTTP surface: server-rendered pages with HTMX fragments,
// the JSON API, the admin area and the ops endpoints.
package web

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/catalog"
	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/metrics"
	"github.com/Zachkp/portfolio/internal/ratelimit"
	"github.com/Zachkp/portfolio/internal/storage"
	"github.com/Zachkp/portfolio/internal/store"
)

// maxContactBody caps a contact request: a 2 MiB attachment is
// base64-encoded in the JSON API, plus headroom for the text fields.
const maxContactBody = 4 << 20

// Options wires the server's collaborators. Catalog, Contact and Config are
// required; the rest may be nil, which switches the matching feature off.
type Options struct {
	Config   *config.Config
	Logger   *zap.Logger
	Catalog  *catalog.Catalog
	Contact  *contact.Service
	Limiter  ratelimit.Limiter
	Store    *store.DB
	Hasher   *store.Hasher
	Uploader *storage.Uploader
	Metrics  *metrics.Metrics
}

type Server struct {
	cfg      *config.Config
	logger   *zap.Logger
	catalog  *catalog.Catalog
	index    *catalog.Index
	contact  *contact.Service
	limiter  ratelimit.Limiter
	store    *store.DB
	hasher   *store.Hasher
	uploader *storage.Uploader
	metrics  *metrics.Metrics
	admin    adminAuth
	engine   *gin.Engine
	now      func() time.Time
}

func New(opts Options) (*Server, error) {
	if opts.Config == nil || opts.Catalog == nil || opts.Contact == nil {
		return nil, errors.New("web: config, catalog and contact service are required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Hasher == nil {
		h, err := store.NewRandomHasher()
		if err != nil {
			return nil, err
		}
		opts.Hasher = h
	}

	admin, err := newAdminAuth(opts.Config, opts.Logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      opts.Config,
		logger:   opts.Logger,
		catalog:  opts.Catalog,
		index:    catalog.NewIndex(opts.Catalog.Projects),
		contact:  opts.Contact,
		limiter:  opts.Limiter,
		store:    opts.Store,
		hasher:   opts.Hasher,
		uploader: opts.Uploader,
		metrics:  opts.Metrics,
		admin:    admin,
		now:      time.Now,
	}
	if s.metrics != nil {
		s.metrics.WatchFilterCache(s.index.Hits)
	}

	engine, err := s.routes()
	if err != nil {
		return nil, err
	}
	s.engine = engine
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() (*gin.Engine, error) {
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	tmpl, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(logging.Middleware(s.logger))
	if s.metrics != nil {
		r.Use(s.metrics.Middleware())
	}
	if s.store != nil && s.cfg.DB.TrackingEnabled {
		r.Use(s.visitorTracking())
	}

	r.Static("/static", s.cfg.Server.AssetsDir)
	if s.cfg.Storage.Backend == "local" {
		r.Static("/uploads", s.cfg.Server.UploadsDir)
	}

	NewHealthHandler("portfolio", s.cfg.App.Version, s.store).RegisterRoutes(r)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	r.GET("/", s.home)
	r.GET("/about", s.about)
	r.GET("/projects", s.projects)
	r.GET("/projects/filter", s.projectsFilter)
	r.GET("/projects/:slug", s.projectDetail)
	r.GET("/skills", s.skills)
	r.GET("/experience", s.experience)
	r.GET("/education", s.education)
	r.GET("/research", s.research)
	r.GET("/contact", s.contactPage)
	r.GET("/contact-form", s.contactForm)
	r.POST("/contact", s.bodyLimit(maxContactBody), s.submitContactHTML)
	r.GET("/resume", s.resume)
	r.GET("/resume/download", s.resumeDownload)
	r.GET("/privacy", s.privacy)
	r.POST("/theme", s.setTheme)

	api := r.Group("/api")
	api.Use(cors.New(s.corsConfig()))
	api.GET("/projects", s.apiProjects)
	api.GET("/projects/:slug", s.apiProject)
	api.GET("/skills", s.apiSkills)
	api.GET("/experience", s.apiExperience)
	api.GET("/education", s.apiEducation)
	api.GET("/research", s.apiResearch)
	api.POST("/contact", s.bodyLimit(maxContactBody), s.submitContactJSON)

	s.registerAdmin(r)

	r.NoRoute(s.notFound)
	return r, nil
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	if len(s.cfg.Server.CORSOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.cfg.Server.CORSOrigins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "X-Request-Id")
	cfg.ExposeHeaders = []string{"X-Request-Id"}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}

func (s *Server) bodyLimit(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
