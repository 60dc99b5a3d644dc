// Package server is a small in-memory implementation of the task API, used
// for local development and as the client's test double.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Makepad-fr/tada-tasks/internal/model"
	"github.com/Makepad-fr/tada-tasks/internal/store/memstore"
)

const shutdownTimeout = 5 * time.Second

// Server serves the task API over one store.
type Server struct {
	store   *memstore.Store
	logger  *logrus.Logger
	metrics *metrics
	router  *gin.Engine
}

func New(store *memstore.Store, logger *logrus.Logger) *Server {
	s := &Server{
		store:   store,
		logger:  logger,
		metrics: newMetrics(),
		router:  gin.New(),
	}

	s.router.Use(gin.Recovery())
	s.router.Use(requestID())
	s.router.Use(s.metrics.middleware())
	s.router.Use(requestLogger(logger))
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	s.router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	s.router.GET("/metrics", gin.WrapH(s.metrics.handler()))

	api := s.router.Group("/api")
	{
		api.GET("/tasks", s.handleList)
		api.POST("/tasks", s.handleCreate)
		api.PATCH("/tasks/:id/done", s.handleDone)
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}

type createTaskRequest struct {
	Text   string  `json:"text"`
	Expire *string `json:"expire"`
}

func (s *Server) handleList(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Remaining())
}

func (s *Server) handleCreate(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	// An unparsable due date is stored as absent rather than rejected.
	expire := ""
	if req.Expire != nil && *req.Expire != "" {
		if d, err := model.ParseDate(*req.Expire); err == nil {
			expire = d.String()
		} else {
			entry(c, s.logger).WithField("expire", *req.Expire).Debug("dropping unparsable expire")
		}
	}

	task := s.store.Create(text, expire)
	entry(c, s.logger).WithField("id", *task.ID).Info("task created")
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleDone(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return
	}
	task, err := s.store.MarkDone(id)
	if errors.Is(err, memstore.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	if err != nil {
		entry(c, s.logger).WithError(err).Error("mark done failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	entry(c, s.logger).WithField("id", id).Info("task done")
	c.JSON(http.StatusOK, task)
}
