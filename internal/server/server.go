//-------------------------------------------------------------------------
//
// pgEdge Trade Analyzer
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package server exposes the trade views over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pgEdge/pgedge-trades/internal/logging"
	"github.com/pgEdge/pgedge-trades/internal/report"
	"github.com/pgEdge/pgedge-trades/internal/trades"
	"github.com/pgEdge/pgedge-trades/internal/view"
)

// Loader reads a fresh trade table for POST /reload.
type Loader func(ctx context.Context) (*trades.Table, error)

// Server serves the views of one session.
type Server struct {
	session      *view.Session
	defaultCodes []string
	loader       Loader
	router       *gin.Engine
	log          zerolog.Logger
}

// New creates a server. defaultCodes seed the client selection; a nil
// loader disables reloading.
func New(session *view.Session, defaultCodes []string, loader Loader) *Server {
	s := &Server{
		session:      session,
		defaultCodes: trades.MergeCodes(defaultCodes),
		loader:       loader,
		log:          logging.Component("server"),
	}
	s.router = s.setupRoutes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until ctx is canceled, then shuts down, waiting
// up to shutdownTimeout for requests in flight.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("listen", addr).Msg("API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info().Msg("Shutting down API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) setupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.log))

	router.GET("/healthz", s.health)
	router.GET("/modes", s.modes)
	router.GET("/clients", s.clients)
	router.GET("/dates", s.dates)
	router.POST("/reload", s.reload)

	views := router.Group("/views")
	{
		views.GET("/client/:code", s.clientView)
		views.GET("/date/:date", s.dateView)
	}

	return router
}

// requestLogger logs each request at debug level.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("Request")
	}
}

type healthResponse struct {
	Status      string `json:"status"`
	TableID     string `json:"table_id"`
	Records     int    `json:"records"`
	CacheHits   int64  `json:"cache_hits"`
	CacheMisses int64  `json:"cache_misses"`
}

func (s *Server) health(c *gin.Context) {
	t := s.session.Table()
	hits, misses := s.session.CacheStats()
	resp := healthResponse{Status: "ok", CacheHits: hits, CacheMisses: misses}
	if t != nil {
		resp.TableID = t.ID().String()
		resp.Records = t.Len()
	}
	success(c, resp)
}

type modeResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) modes(c *gin.Context) {
	var out []modeResponse
	for _, v := range view.All() {
		out = append(out, modeResponse{Name: string(v.Name()), Description: v.Description()})
	}
	success(c, out)
}

type clientResponse struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Label string `json:"label"`
}

func (s *Server) clients(c *gin.Context) {
	codes := trades.MergeCodes(s.defaultCodes, c.QueryArray("add")...)
	t := s.session.Table()
	if t == nil {
		success(c, []clientResponse{})
		return
	}

	out := []clientResponse{}
	for _, cl := range t.Clients(codes) {
		out = append(out, clientResponse{Code: cl.Code, Name: cl.Name, Label: cl.Label()})
	}
	success(c, out)
}

func (s *Server) dates(c *gin.Context) {
	t := s.session.Table()
	out := []string{}
	if t != nil {
		for _, d := range t.Dates() {
			out = append(out, trades.FormatDate(d))
		}
	}
	success(c, out)
}

func (s *Server) reload(c *gin.Context) {
	if s.loader == nil {
		badRequest(c, "reload is not available for this source")
		return
	}
	t, err := s.loader(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	s.session.Reload(t)
	s.log.Info().Int("records", t.Len()).Msg("Trade history reloaded")
	success(c, gin.H{"table_id": t.ID().String(), "records": t.Len()})
}

func (s *Server) clientView(c *gin.Context) {
	mode := view.Mode(c.DefaultQuery("mode", string(view.ModeByInstrument)))
	if mode != view.ModeByInstrument && mode != view.ModeByDate {
		badRequest(c, "mode must be "+string(view.ModeByInstrument)+" or "+string(view.ModeByDate))
		return
	}

	res, err := s.session.Render(mode, view.Request{ClientCode: c.Param("code")})
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, report.NewDocument(res))
}

func (s *Server) dateView(c *gin.Context) {
	date, err := time.Parse(trades.DateLayout, c.Param("date"))
	if err != nil {
		badRequest(c, "date must be YYYY-MM-DD")
		return
	}

	req := view.Request{Date: date}
	if all, _ := strconv.ParseBool(c.Query("all")); !all {
		req.Clients = trades.MergeCodes(s.defaultCodes, c.QueryArray("add")...)
	}

	res, err := s.session.Render(view.ModeByDateAllClients, req)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, report.NewDocument(res))
}
