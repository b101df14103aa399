package web

import (
	"crypto/subtle"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/catalog"
	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/storage"
)

const adminCookie = "admin_token"

// adminAuth is a single shared admin login. The session token is random per
// process, so restarting the server logs the admin out.
type adminAuth struct {
	username string
	password string
	token    string
	enabled  bool
}

func newAdminAuth(cfg *config.Config, logger *zap.Logger) (adminAuth, error) {
	token, err := randomToken()
	if err != nil {
		return adminAuth{}, err
	}

	a := adminAuth{username: cfg.Admin.Username, password: cfg.Admin.Password, token: token, enabled: true}
	if a.username != "" && a.password != "" {
		return a, nil
	}
	if cfg.IsProduction() {
		logger.Warn("ADMIN_USERNAME or ADMIN_PASSWORD not set, admin area disabled")
		a.enabled = false
		return a, nil
	}

	logger.Warn("using default admin credentials, set ADMIN_USERNAME and ADMIN_PASSWORD")
	if a.username == "" {
		a.username = "admin"
	}
	if a.password == "" {
		a.password = "admin123"
	}
	return a, nil
}

func (a adminAuth) check(username, password string) bool {
	if !a.enabled {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	return userOK && passOK
}

func (a adminAuth) valid(token string) bool {
	return a.enabled && subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) == 1
}

// wantsJSON reports whether an admin path is an API or export endpoint.
func wantsJSON(c *gin.Context) bool {
	p := c.Request.URL.Path
	return strings.HasPrefix(p, "/admin/api/") || strings.HasPrefix(p, "/admin/export/") || strings.HasPrefix(p, "/admin/privacy/")
}

func (s *Server) adminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || !s.admin.valid(token) {
			if wantsJSON(c) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) registerAdmin(r *gin.Engine) {
	r.GET("/admin/login", func(c *gin.Context) {
		s.page(c, http.StatusOK, "admin-login.html", "Admin Login", nil)
	})
	r.POST("/admin/login", s.adminLogin)
	r.GET("/admin/logout", s.adminLogout)

	g := r.Group("/admin")
	g.Use(s.adminAuthMiddleware())

	g.GET("/dashboard", s.adminDashboard)
	g.GET("/visitors", s.adminVisitors)
	g.GET("/messages", s.adminMessages)
	g.GET("/api/stats", s.adminStats)
	g.GET("/export/stats", s.adminExportStats)
	g.POST("/privacy/cleanup", s.adminCleanup)
	g.POST("/privacy/delete-visitor-data", s.adminForgetVisitor)

	g.GET("/api/projects/:slug/files", s.adminListFiles)
	g.POST("/api/projects/:slug/files", s.bodyLimit(storage.DefaultMaxSize+1<<20), s.adminUploadFile)
	g.DELETE("/api/files/:id", s.adminDeleteFile)
}

func (s *Server) adminLogin(c *gin.Context) {
	client := s.hasher.Hash(c.ClientIP())
	if !s.admin.check(c.PostForm("username"), c.PostForm("password")) {
		s.logger.Warn("failed admin login", zap.String("client", client))
		s.page(c, http.StatusUnauthorized, "admin-login.html", "Admin Login", gin.H{"error": "Invalid credentials"})
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(adminCookie, s.admin.token, 3600*24, "/admin", "", s.cfg.IsProduction(), true)
	s.logger.Info("admin login", zap.String("client", client))
	c.Redirect(http.StatusFound, "/admin/dashboard")
}

func (s *Server) adminLogout(c *gin.Context) {
	c.SetCookie(adminCookie, "", -1, "/admin", "", s.cfg.IsProduction(), true)
	s.logger.Info("admin logout", zap.String("client", s.hasher.Hash(c.ClientIP())))
	c.Redirect(http.StatusFound, "/admin/login")
}

// requireStore answers 503 when persistence is switched off.
func (s *Server) requireStore(c *gin.Context) bool {
	if s.store != nil {
		return true
	}
	if wantsJSON(c) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not configured"})
	} else {
		s.page(c, http.StatusServiceUnavailable, "admin-error.html", "Admin", gin.H{"error": "Database not configured"})
	}
	return false
}

func (s *Server) adminDashboard(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	stats, err := s.store.Stats(c.Request.Context())
	if err != nil {
		s.logger.Error("load admin stats", zap.Error(err))
		s.page(c, http.StatusInternalServerError, "admin-error.html", "Admin", gin.H{"error": "Failed to load statistics"})
		return
	}
	s.page(c, http.StatusOK, "admin-dashboard.html", "Dashboard", gin.H{"stats": stats})
}

func (s *Server) adminVisitors(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	visitors, err := s.store.RecentVisitors(c.Request.Context(), 200)
	if err != nil {
		s.logger.Error("load visitors", zap.Error(err))
		s.page(c, http.StatusInternalServerError, "admin-error.html", "Admin", gin.H{"error": "Failed to load visitors"})
		return
	}
	s.page(c, http.StatusOK, "admin-visitors.html", "Visitors", gin.H{"visitors": visitors})
}

func (s *Server) adminMessages(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	msgs, err := s.store.RecentMessages(c.Request.Context(), 100)
	if err != nil {
		s.logger.Error("load messages", zap.Error(err))
		s.page(c, http.StatusInternalServerError, "admin-error.html", "Admin", gin.H{"error": "Failed to load messages"})
		return
	}
	s.page(c, http.StatusOK, "admin-messages.html", "Messages", gin.H{"messages": msgs})
}

func (s *Server) adminStats(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	stats, err := s.store.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) adminExportStats(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	stats, err := s.store.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
	s.logger.Info("admin stats exported", zap.String("client", s.hasher.Hash(c.ClientIP())))
	c.JSON(http.StatusOK, stats)
}

func (s *Server) adminCleanup(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	n, err := s.store.CleanupVisitors(c.Request.Context(), s.cfg.DB.Retention)
	if err != nil {
		s.logger.Error("visitor cleanup", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cleanup failed"})
		return
	}
	s.logger.Info("privacy cleanup", zap.Int64("deleted", n))
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// adminForgetVisitor deletes the visits of the address given in the "ip"
// form field.
func (s *Server) adminForgetVisitor(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	ip := strings.TrimSpace(c.PostForm("ip"))
	if ip == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ip is required"})
		return
	}
	n, err := s.store.ForgetVisitor(c.Request.Context(), s.hasher.Hash(ip))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

func (s *Server) requireUploader(c *gin.Context) bool {
	if s.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "file storage not configured"})
		return false
	}
	return true
}

func (s *Server) adminListFiles(c *gin.Context) {
	if !s.requireUploader(c) {
		return
	}
	files, err := s.uploader.List(c.Request.Context(), c.Param("slug"))
	if err != nil {
		s.logger.Error("list files", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list files"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (s *Server) adminUploadFile(c *gin.Context) {
	if !s.requireUploader(c) {
		return
	}
	slug := c.Param("slug")
	if _, err := s.catalog.ProjectBySlug(slug); errors.Is(err, catalog.ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fh.Size > storage.DefaultMaxSize {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []string{"File size must be less than 5MB"}})
		return
	}
	file, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}

	f, err := s.uploader.Upload(c.Request.Context(), slug, c.PostForm("folder"), fh.Filename, data)
	var verr *storage.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": verr.Problems})
	case err != nil:
		s.logger.Error("upload file", zap.Error(err), zap.String("project", slug))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
	default:
		c.JSON(http.StatusCreated, f)
	}
}

func (s *Server) adminDeleteFile(c *gin.Context) {
	if !s.requireUploader(c) {
		return
	}
	err := s.uploader.Remove(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
	case err != nil:
		s.logger.Error("delete file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete file"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
	}
}
