package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abaddouh/fakeimg/internal/synth"
)

// Server answers dummyimage-style placeholder requests:
//
//	GET /{w}x{h}[/{bg}[/{fg}[/{name}.{ext}]]]
//
// Images are rendered in-process with the local strategy.
type Server struct {
	port         int
	maxDimension int
	local        *synth.Local
	logger       *slog.Logger
	srv          *http.Server
}

func New(port, maxDimension int, local *synth.Local, logger *slog.Logger) *Server {
	return &Server{
		port:         port,
		maxDimension: maxDimension,
		local:        local,
		logger:       logger,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.healthHandler)
	mux.HandleFunc("GET /{size}", s.placeholderHandler)
	mux.HandleFunc("GET /{size}/{bg}", s.placeholderHandler)
	mux.HandleFunc("GET /{size}/{bg}/{fg}", s.placeholderHandler)
	mux.HandleFunc("GET /{size}/{bg}/{fg}/{name}", s.placeholderHandler)
	return mux
}

func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}

	s.logger.Info("starting HTTP server", "port", s.port)

	go func() {
		<-ctx.Done()
		s.logger.Info("server is shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown error", "error", err)
		}
	}()

	if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) placeholderHandler(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set("X-Request-Id", requestID)
	log := s.logger.With("request_id", requestID, "path", r.URL.Path)

	format := synth.FormatJPEG
	size := r.PathValue("size")
	if ext := path.Ext(size); ext != "" {
		f, err := synth.ParseFormat(ext)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		format, size = f, strings.TrimSuffix(size, ext)
	}

	width, height, err := parseSize(size)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if width > s.maxDimension || height > s.maxDimension {
		http.Error(w, fmt.Sprintf("dimensions exceed limit of %d", s.maxDimension), http.StatusBadRequest)
		return
	}

	bg, fg := s.local.Background, s.local.Foreground
	if v := r.PathValue("bg"); v != "" {
		if bg, err = synth.ParseHex(v); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if v := r.PathValue("fg"); v != "" {
		if fg, err = synth.ParseHex(v); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if name := r.PathValue("name"); name != "" {
		if ext := path.Ext(name); ext != "" {
			if format, err = synth.ParseFormat(ext); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
	}

	data, err := s.local.WithColors(bg, fg, format).Synthesize(r.Context(), width, height)
	if err != nil {
		log.Error("render placeholder", "error", err)
		http.Error(w, "failed to render placeholder", http.StatusInternalServerError)
		return
	}

	log.Debug("served placeholder", "width", width, "height", height, "format", string(format))
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// parseSize accepts "WxH", or "W" for a square.
func parseSize(s string) (int, int, error) {
	ws, hs, found := strings.Cut(strings.ToLower(s), "x")
	if !found {
		hs = ws
	}

	width, err := strconv.Atoi(ws)
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("invalid width in %q", s)
	}
	height, err := strconv.Atoi(hs)
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("invalid height in %q", s)
	}

	return width, height, nil
}
