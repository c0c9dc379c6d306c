// Package server exposes lessons over HTTP: JSON-RPC on POST /rpc, a few
// read-only REST views, and a server-sent event stream.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cgast/chkwrite/internal/rpc"
	"github.com/cgast/chkwrite/internal/session"
	"github.com/cgast/chkwrite/pkg/events"
	"github.com/cgast/chkwrite/pkg/protocol"
)

// Server is the HTTP transport.
type Server struct {
	engine    *gin.Engine
	mgr       *session.Manager
	bus       events.EventBus
	rpc       *protocol.Handler
	logger    *zap.Logger
	startTime time.Time

	// done is closed when the server begins shutting down so that
	// long-lived event streams return and let Shutdown drain.
	done     chan struct{}
	doneOnce sync.Once
}

// New creates a server. rpcHandler is normally built by rpc.NewHandler over
// the same manager and bus.
func New(mgr *session.Manager, bus events.EventBus, rpcHandler *protocol.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine:    gin.New(),
		mgr:       mgr,
		bus:       bus,
		rpc:       rpcHandler,
		logger:    logger,
		startTime: time.Now(),
		done:      make(chan struct{}),
	}

	s.engine.Use(gin.Recovery(), requestLogger(logger))

	s.engine.GET("/healthz", s.handleHealth)
	s.engine.POST("/rpc", s.handleRPC)

	api := s.engine.Group("/api")
	{
		api.GET("/scenarios", s.handleScenarios)
		api.GET("/sessions/:id", s.handleSession)
		api.GET("/sessions/:id/events", s.handleSessionEvents)
		api.GET("/events/stream", s.handleEventStream)
	}

	return s
}

// Handler returns the router for use with net/http.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(s.closeStreams)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("http server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		<-errCh
		return nil
	}
}

// closeStreams ends every open event stream.
func (s *Server) closeStreams() {
	s.doneOnce.Do(func() { close(s.done) })
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) handleRPC(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, protocol.NewErrorResponse(nil, protocol.CodeParseError, err.Error(), nil))
		return
	}
	resp := s.rpc.HandleRaw(c.Request.Context(), data)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleScenarios(c *gin.Context) {
	c.JSON(http.StatusOK, s.mgr.Engine().ListScenarios())
}

func (s *Server) handleSession(c *gin.Context) {
	sess, err := s.mgr.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rpc.State(s.mgr.Engine(), sess))
}

func (s *Server) handleSessionEvents(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.mgr.Get(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	history := s.bus.SessionHistory(id)
	if history == nil {
		history = []events.Event{}
	}
	c.JSON(http.StatusOK, protocol.EventsResult{Events: history})
}

// handleEventStream streams live events as server-sent events. The optional
// session_id query parameter limits the stream to one session.
func (s *Server) handleEventStream(c *gin.Context) {
	sessionID := c.Query("session_id")
	ch := s.bus.Subscribe()
	defer s.bus.Unsubscribe(ch)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	fmt.Fprint(c.Writer, ": connected\n\n")
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if sessionID != "" && ev.SessionID != sessionID {
				continue
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Type, data)
			c.Writer.Flush()
		}
	}
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, session.ErrSessionNotFound) {
		status = http.StatusNotFound
	} else {
		s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// requestLogger logs one line per request at a level picked by status.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
		}
		switch {
		case status >= 500:
			logger.Error("http request", fields...)
		case status >= 400:
			logger.Warn("http request", fields...)
		default:
			logger.Debug("http request", fields...)
		}
	}
}
