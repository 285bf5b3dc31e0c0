// Package web wires the HTTP routes of the catalog site.
package web

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vitrina/internal/auth"
	"vitrina/internal/catalog"
	"vitrina/internal/config"
	"vitrina/internal/models"
	"vitrina/internal/views"
)

type ViewData map[string]any

// Server holds what the handlers need; it is built once in main and
// threaded through route registration instead of living in globals.
type Server struct {
	cfg     *config.Config
	db      *gorm.DB
	catalog *catalog.Service
	admins  *models.AdminsRepository
	gate    *auth.Gate
}

func NewServer(cfg *config.Config, db *gorm.DB, svc *catalog.Service, admins *models.AdminsRepository) *Server {
	return &Server{
		cfg:     cfg,
		db:      db,
		catalog: svc,
		admins:  admins,
		gate:    auth.NewGate("/login"),
	}
}

// Router builds the gin engine with every route group registered.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.New()
	r.Use(requestLogger("/health"))
	r.Use(gin.CustomRecovery(func(c *gin.Context, rec any) {
		slog.Error("panic recovered", "error", rec, "path", c.Request.URL.Path)
		c.AbortWithStatus(http.StatusInternalServerError)
	}))
	r.MaxMultipartMemory = 8 << 20

	tmpl, err := views.Parse(template.FuncMap{
		"price": catalog.FormatPrice,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	// раздача статики (uploads лежат внутри static)
	r.Static("/static", s.cfg.StaticDir)
	r.GET("/health", s.health)

	r.Use(auth.Sessions(s.cfg.SessionName, s.cfg.SessionSecret))
	s.publicRoutes(r)
	s.authRoutes(r)
	s.adminRoutes(r.Group("/admin", s.gate.Require()))

	return r, nil
}

func (s *Server) withAdmin(c *gin.Context, data ViewData) ViewData {
	if data == nil {
		data = ViewData{}
	}
	data["IsAdmin"] = auth.IsAdmin(c)
	return data
}

func (s *Server) notFound(c *gin.Context, message string) {
	c.HTML(http.StatusNotFound, "not_found.tmpl", s.withAdmin(c, ViewData{"Title": "Не найдено", "Message": message}))
}

func (s *Server) internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.String(http.StatusInternalServerError, "Внутренняя ошибка сервера")
}

func (s *Server) health(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "db": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// requestLogger writes one slog line per request. Paths in skip are not logged.
func requestLogger(skip ...string) gin.HandlerFunc {
	skipped := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipped[p] = true
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if skipped[c.Request.URL.Path] {
			return
		}

		attrs := []any{
			"method", c.Request.Method,
			"uri", c.Request.URL.RequestURI(),
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"remote_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		}
		if len(c.Errors) > 0 {
			slog.Error("request", append(attrs, "error", c.Errors.String())...)
			return
		}
		slog.Info("request", attrs...)
	}
}
