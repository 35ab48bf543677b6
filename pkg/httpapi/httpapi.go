// Package httpapi is the HTTP route layer over the decision service.
//
// It is deliberately thin: request validation, upstream inference,
// policy application, and response shaping. All state and algorithmic
// behavior lives in the decision, exemplar, and matcher packages.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/vozaid/vozaid/pkg/decision"
	"github.com/vozaid/vozaid/pkg/inference"
	"github.com/vozaid/vozaid/pkg/intent"
	"github.com/vozaid/vozaid/pkg/policy"
)

// Audio upload contract, advertised by /api/audio/requirements.
const (
	AudioFormat     = "wav"
	SampleRate      = 16000
	MaxDurationSecs = 3
	MaxAudioBytes   = 1 << 20 // 1 MiB
	AudioChannels   = 1
	AudioBitDepth   = 16
)

// Server wires the HTTP handlers to their collaborators.
type Server struct {
	svc    *decision.Service
	engine inference.Engine
	assess policy.Func
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithPolicy sets the confidence policy (default policy.Assess).
func WithPolicy(f policy.Func) Option {
	return func(s *Server) {
		if f != nil {
			s.assess = f
		}
	}
}

// WithLogger sets the request logger (default slog.Default).
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates the route layer over a decision service and an inference
// engine.
func New(svc *decision.Service, engine inference.Engine, opts ...Option) *Server {
	s := &Server{
		svc:    svc,
		engine: engine,
		assess: policy.Assess,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/audio", s.handleAudio)
	mux.HandleFunc("POST /api/audio/confirm", s.handleConfirm)
	mux.HandleFunc("GET /api/audio/requirements", s.handleRequirements)
	mux.HandleFunc("GET /api/audio/intents", s.handleIntentStats)
	mux.HandleFunc("GET /api/audio/intents/list", s.handleIntentList)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// intentResponse is the /api/audio response body.
type intentResponse struct {
	Intent        string   `json:"intent"`
	Confidence    float64  `json:"confidence"`
	Status        string   `json:"status"`
	UIOptions     []string `json:"ui_options"`
	NextAction    string   `json:"next_action"`
	Transcription string   `json:"transcription,omitempty"`
	Alternatives  []string `json:"alternatives,omitempty"`
	EmbeddingID   string   `json:"embedding_id,omitempty"`
	ModelUsed     string   `json:"model_used,omitempty"`
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// handleAudio accepts a wav clip, runs upstream inference, and returns
// the tentative decision with presentation guidance.
func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, MaxAudioBytes+4096)
	file, header, err := r.FormFile("audio")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_audio", "no audio file provided")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".wav") {
		s.writeError(w, http.StatusBadRequest, "invalid_audio", "only .wav files are accepted")
		return
	}

	audio, err := readLimited(file, MaxAudioBytes)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_audio", "audio file exceeds 1MB limit")
		return
	}
	if len(audio) == 0 {
		s.writeError(w, http.StatusBadRequest, "invalid_audio", "audio file is empty")
		return
	}

	result, err := s.engine.Infer(r.Context(), audio)
	if err != nil {
		s.writeUpstreamError(w, start, err)
		return
	}

	dec := s.svc.Decide(r.Context(), result.Embedding)
	assessment := s.assess(dec.Intent, dec.Confidence, dec.Alternatives)

	s.logger.Info("audio processed",
		"intent", dec.Intent,
		"confidence", dec.Confidence,
		"status", assessment.Status,
		"model", result.Model,
		"latency_ms", time.Since(start).Milliseconds())

	s.writeJSON(w, http.StatusOK, intentResponse{
		Intent:        string(dec.Intent),
		Confidence:    round2(dec.Confidence),
		Status:        assessment.Status,
		UIOptions:     assessment.Options,
		NextAction:    assessment.NextAction,
		Transcription: result.Transcription,
		Alternatives:  labels(dec.Alternatives),
		EmbeddingID:   dec.Token,
		ModelUsed:     result.Model,
	})
}

// writeUpstreamError maps a classified inference failure to an HTTP
// status: timeouts and unreachable endpoints are 503 (try again), other
// model failures are 502.
func (s *Server) writeUpstreamError(w http.ResponseWriter, start time.Time, err error) {
	s.logger.Warn("model inference failed",
		"error", err,
		"latency_ms", time.Since(start).Milliseconds())

	switch {
	case inference.IsTimeout(err):
		s.writeError(w, http.StatusServiceUnavailable, "ml_unavailable", "please try again")
	case inference.IsConnection(err):
		s.writeError(w, http.StatusServiceUnavailable, "ml_unavailable", "cannot connect to ML service")
	default:
		s.writeError(w, http.StatusBadGateway, "ml_unavailable", err.Error())
	}
}

// confirmResponse is the /api/audio/confirm success body.
type confirmResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	DBStats map[string]int `json:"db_stats"`
}

// handleConfirm commits a pending embedding under the confirmed intent.
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("embedding_id")
	label := r.URL.Query().Get("intent")

	stats, err := s.svc.Confirm(r.Context(), token, intent.Intent(label))
	switch {
	case errors.Is(err, decision.ErrInvalidIntent):
		s.writeError(w, http.StatusBadRequest, "invalid_intent", "intent must be one of: "+strings.Join(labels(intent.All()), ", "))
		return
	case errors.Is(err, decision.ErrTokenNotFound):
		s.writeError(w, http.StatusNotFound, "embedding_not_found", "embedding expired or not found")
		return
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, "learn_failed", "failed to store embedding")
		return
	}

	s.writeJSON(w, http.StatusOK, confirmResponse{
		Status:  "ok",
		Message: "Learned: " + label,
		DBStats: statLabels(stats),
	})
}

// recordingInfo is the /api/audio/requirements body: the recording
// contract the frontend must follow.
type recordingInfo struct {
	Format          string `json:"format"`
	SampleRate      int    `json:"sample_rate"`
	MaxDurationSecs int    `json:"max_duration_seconds"`
	MaxSizeBytes    int    `json:"max_size_bytes"`
	Channels        int    `json:"channels"`
	BitDepth        int    `json:"bit_depth"`
}

func (s *Server) handleRequirements(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, recordingInfo{
		Format:          AudioFormat,
		SampleRate:      SampleRate,
		MaxDurationSecs: MaxDurationSecs,
		MaxSizeBytes:    MaxAudioBytes,
		Channels:        AudioChannels,
		BitDepth:        AudioBitDepth,
	})
}

func (s *Server) handleIntentStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]map[string]int{
		"intents": statLabels(s.svc.Stats()),
	})
}

func (s *Server) handleIntentList(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{
		"intents": labels(s.svc.Intents()),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, msg string) {
	s.writeJSON(w, status, errorResponse{Error: code, Message: msg})
}

// readLimited reads at most max bytes, erroring if the source exceeds
// the limit.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, errors.New("httpapi: audio exceeds size limit")
	}
	return data, nil
}

// round2 rounds a confidence to two decimals for presentation.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// labels converts intents to their string labels.
func labels(ins []intent.Intent) []string {
	if len(ins) == 0 {
		return nil
	}
	out := make([]string, len(ins))
	for i, in := range ins {
		out[i] = string(in)
	}
	return out
}

// statLabels converts a stats map to string keys for JSON.
func statLabels(stats map[intent.Intent]int) map[string]int {
	out := make(map[string]int, len(stats))
	for in, n := range stats {
		out[string(in)] = n
	}
	return out
}
