package web

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// requestID reuses an incoming X-Request-Id or generates one, and exposes it
// on the gin context, the request context and the response.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Set("request_id", rid)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), requestIDKey{}, rid))
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// RequestID returns the id requestID stored in ctx.
func RequestID(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey{}).(string)
	return rid
}

func (s *Server) requestLogger(c *gin.Context) *zap.Logger {
	return s.logger.With(zap.String("request_id", RequestID(c.Request.Context())))
}

var untrackedPrefixes = []string{
	"/static/",
	"/uploads/",
	"/admin",
	"/api/",
	"/favicon",
	"/privacy",
	"/health",
	"/metrics",
}

// visitorTracking records page views with a hashed client address. Requests
// that send DNT: 1 are not recorded.
func (s *Server) visitorTracking() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method != "GET" || !trackable(path) || c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		hashed := s.hasher.Hash(c.ClientIP())
		ua := c.GetHeader("User-Agent")
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.store.TrackVisit(ctx, hashed, ua, path); err != nil {
				s.logger.Warn("record visitor", zap.Error(err))
			}
		}()
		c.Next()
	}
}

func trackable(path string) bool {
	for _, p := range untrackedPrefixes {
		if strings.HasPrefix(path, p) {
			return false
		}
	}
	return true
}
