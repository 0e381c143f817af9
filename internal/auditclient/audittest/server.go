// Package audittest provides an in-process fake of the Audit Service that
// honors the upload contract: multipart field `file`, `{"resultado": ...}`
// on success and `{"error": ...}` otherwise.
package audittest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kingrea/auditoria-energia/internal/audit"
)

// Rejection messages used by the service for malformed uploads.
const (
	MsgNoFileSent     = "Nenhum arquivo enviado"
	MsgNoFileChosen   = "Nenhum arquivo selecionado"
	MsgTypeNotAllowed = "Tipo de arquivo não permitido"
)

const maxMemory = 32 << 20

// Upload is one request received by the fake.
type Upload struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Reply is what the fake answers for an accepted upload. Body is encoded
// as JSON unless it is a string, which is written verbatim.
type Reply struct {
	Status int
	Body   any
	Delay  time.Duration
}

// Responder decides the reply for an accepted upload.
type Responder func(Upload) Reply

// Server is a running fake Audit Service.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	uploads   []Upload
	responder Responder
}

// Option customizes the fake.
type Option func(*Server)

// WithResponder overrides the default canned success.
func WithResponder(r Responder) Option {
	return func(s *Server) {
		if r != nil {
			s.responder = r
		}
	}
}

// NewServer starts a fake on a loopback port. Callers must Close it.
func NewServer(opts ...Option) *Server {
	s := &Server{responder: Succeed(DefaultResult())}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.Server = httptest.NewServer(s.Handler())
	return s
}

// Handler returns the router serving the contract.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", s.handleUpload)
	})
	return r
}

// Uploads returns the accepted uploads received so far.
func (s *Server) Uploads() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Upload, len(s.uploads))
	copy(out, s.uploads)
	return out
}

// SetResponder swaps the responder for subsequent uploads.
func (s *Server) SetResponder(r Responder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responder = r
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": MsgNoFileSent})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": MsgNoFileSent})
		return
	}
	defer file.Close()
	if header.Filename == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": MsgNoFileChosen})
		return
	}
	if !audit.KindFromName(header.Filename).Accepted() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": MsgTypeNotAllowed})
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	upload := Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        data,
	}
	s.mu.Lock()
	s.uploads = append(s.uploads, upload)
	responder := s.responder
	s.mu.Unlock()

	reply := responder(upload)
	if reply.Delay > 0 {
		select {
		case <-time.After(reply.Delay):
		case <-r.Context().Done():
			return
		}
	}
	if raw, ok := reply.Body.(string); ok {
		w.WriteHeader(reply.Status)
		_, _ = io.WriteString(w, raw)
		return
	}
	writeJSON(w, reply.Status, reply.Body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Succeed answers 200 with result under `resultado`, stamping the stored
// filename the way the service does.
func Succeed(result audit.Result) Responder {
	return func(u Upload) Reply {
		stored := time.Now().Format("20060102_150405") + "_" + strings.ReplaceAll(filepath.Base(u.Filename), " ", "_")
		res := result
		if res.File == "" {
			res.File = stored
		}
		return Reply{
			Status: http.StatusOK,
			Body: map[string]any{
				"success":   true,
				"filename":  stored,
				"resultado": res,
			},
		}
	}
}

// Fail answers status with `{"error": message}`, or `{}` when message is empty.
func Fail(status int, message string) Responder {
	return func(Upload) Reply {
		body := map[string]string{}
		if message != "" {
			body["error"] = message
		}
		return Reply{Status: status, Body: body}
	}
}

// Raw answers status with a verbatim body.
func Raw(status int, body string) Responder {
	return func(Upload) Reply {
		return Reply{Status: status, Body: body}
	}
}

// Hang delays the reply by d before answering with next.
func Hang(d time.Duration, next Responder) Responder {
	return func(u Upload) Reply {
		reply := next(u)
		reply.Delay = d
		return reply
	}
}

// DefaultResult is a compliant audit with no irregularities.
func DefaultResult() audit.Result {
	status := "Conforme"
	count := 0
	impact := 0.0
	return audit.Result{
		Status:    "processado",
		AuditedAt: "2025-06-19T14:30:00",
		Summary: &audit.Summary{
			OverallStatus:   &status,
			Irregularities:  &count,
			FinancialImpact: &impact,
		},
		Recommendations: []string{
			"Implementar sistema de monitoramento mensal do consumo para detectar anomalias",
		},
	}
}
