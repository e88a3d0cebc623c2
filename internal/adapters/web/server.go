// Package web serves the spam classifier as a one-form web page plus a small
// JSON API.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mikey/textguard/internal/core"
	"github.com/mikey/textguard/internal/suggest"
	"go.uber.org/zap"
)

//go:embed templates/index.html
var templateFS embed.FS

const maxRequestBytes = 1 << 20

// Classifier classifies single messages
type Classifier interface {
	Classify(ctx context.Context, text string) (*core.ClassificationResult, error)
}

// Suggester turns an analysis document into content suggestions
type Suggester interface {
	Suggest(input any) suggest.Result
}

// Notice is the one-line outcome shown under the form
type Notice struct {
	Class string
	Text  string
}

type pageData struct {
	Message string
	Notice  *Notice
}

// PredictRequest is the body of POST /api/predict
type PredictRequest struct {
	Message string `json:"message"`
}

// PredictResponse is the reply of POST /api/predict
type PredictResponse struct {
	Label        string    `json:"label"`
	IsSpam       bool      `json:"is_spam"`
	Probability  float64   `json:"probability"`
	Explanation  string    `json:"explanation"`
	ModelUsed    string    `json:"model_used"`
	Cached       bool      `json:"cached"`
	AnalyzedAt   time.Time `json:"analyzed_at"`
	ProcessingID string    `json:"processing_id"`
}

// Server is the web UI
type Server struct {
	classifier Classifier
	suggester  Suggester
	logger     *zap.Logger
	addr       string
	tmpl       *template.Template

	mu       sync.Mutex
	http     *http.Server
	listener net.Listener
}

// NewServer creates the web UI. suggester may be nil, which disables
// /api/suggest.
func NewServer(classifier Classifier, suggester Suggester, addr string, logger *zap.Logger) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse web template: %w", err)
	}
	return &Server{
		classifier: classifier,
		suggester:  suggester,
		logger:     logger,
		addr:       addr,
		tmpl:       tmpl,
	}, nil
}

// Handler returns the routes of the web UI
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/predict", s.handlePredict)
	mux.HandleFunc("POST /api/suggest", s.handleSuggest)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Start listens on the configured address and serves in the background
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.Serve(l)
	return nil
}

// Serve serves on l in the background
func (s *Server) Serve(l net.Listener) {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.http = srv
	s.listener = l
	s.mu.Unlock()

	s.logger.Info("Web UI starting", zap.String("address", l.Addr().String()))
	go func() {
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Web server error", zap.Error(err))
		}
	}()
}

// Stop shuts the server down, waiting up to five seconds for open requests
func (s *Server) Stop() error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.render(w, pageData{})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	message := r.FormValue("message")
	data := pageData{Message: message}

	if strings.TrimSpace(message) == "" {
		data.Notice = &Notice{Class: "warn", Text: "Please enter a message to analyze."}
		s.render(w, data)
		return
	}

	result, err := s.classifier.Classify(r.Context(), message)
	if err != nil {
		s.logger.Error("Failed to classify message", zap.Error(err))
		data.Notice = &Notice{Class: "warn", Text: "The message could not be analyzed."}
		w.WriteHeader(http.StatusInternalServerError)
		s.render(w, data)
		return
	}
	data.Notice = VerdictNotice(result.Prediction)
	s.render(w, data)
}

// VerdictNotice renders a prediction as the page's one-line verdict
func VerdictNotice(p core.Prediction) *Notice {
	percent := p.Probability * 100
	if p.Label == core.LabelSpam {
		return &Notice{Class: "spam", Text: fmt.Sprintf("SPAM ALERT! (Confidence: %.2f%%)", percent)}
	}
	return &Notice{Class: "safe", Text: fmt.Sprintf("SAFE MESSAGE (Confidence: %.2f%%)", 100-percent)}
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be JSON with a message field")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "Please enter a message to analyze.")
		return
	}

	result, err := s.classifier.Classify(r.Context(), req.Message)
	if err != nil {
		s.logger.Error("Failed to classify message", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "classification failed")
		return
	}

	writeJSON(w, http.StatusOK, PredictResponse{
		Label:        result.Label.String(),
		IsSpam:       result.IsSpam,
		Probability:  result.Probability,
		Explanation:  result.Explanation,
		ModelUsed:    result.ModelUsed,
		Cached:       result.Cached,
		AnalyzedAt:   result.AnalyzedAt,
		ProcessingID: result.ProcessingID,
	})
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if s.suggester == nil {
		writeError(w, http.StatusServiceUnavailable, "suggestions are not configured")
		return
	}
	var doc any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be JSON")
		return
	}
	writeJSON(w, http.StatusOK, s.suggester.Suggest(doc))
}

func (s *Server) render(w http.ResponseWriter, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		s.logger.Error("Failed to render page", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
