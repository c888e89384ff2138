// Package http exposes the document pipeline over a chi-routed JSON API.
package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/docbricks/docbricks/internal/domain"
	"github.com/docbricks/docbricks/internal/storage"
	answeruc "github.com/docbricks/docbricks/internal/usecase/answer"
	documentuc "github.com/docbricks/docbricks/internal/usecase/document"
	healthuc "github.com/docbricks/docbricks/internal/usecase/health"
	ingestuc "github.com/docbricks/docbricks/internal/usecase/ingest"
	retrievaluc "github.com/docbricks/docbricks/internal/usecase/retrieval"
	summaryuc "github.com/docbricks/docbricks/internal/usecase/summary"
)

const maxUploadBytes = 32 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires the pipeline use cases to HTTP handlers.
type Server struct {
	documents     *documentuc.Service
	ingest        *ingestuc.Service
	retrieval     *retrievaluc.Service
	answer        *answeruc.Service
	summary       *summaryuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	documents *documentuc.Service,
	ingest *ingestuc.Service,
	retrieval *retrievaluc.Service,
	answer *answeruc.Service,
	summary *summaryuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		documents: documents,
		ingest:    ingest,
		retrieval: retrieval,
		answer:    answer,
		summary:   summary,
		health:    health,
		logger:    logger,
	}
	// Ordered most-specific first: ingestion errors wrap their cause, so
	// ErrDocumentNotIngestable must win over an inner ErrFileNotFound.
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrDocumentNotIngestable, http.StatusUnprocessableEntity, "document_not_ingestable"),
		sentinelHandler(domain.ErrFileNotFound, http.StatusNotFound, "file_not_found"),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, "document_not_found"),
		sentinelHandler(domain.ErrEmptyDocument, http.StatusBadRequest, "empty_document"),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway, "embedding_provider_error"),
		sentinelHandler(domain.ErrChatProvider, http.StatusBadGateway, "chat_provider_error"),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"),
	}
	return s
}

// Routes registers every handler on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/uploadfile", s.UploadFile)
	r.Get("/listfiles/{directory}", s.ListFiles)
	r.Get("/parsefile/{filename}", s.ParseFile)
	r.Post("/savecontent/{filename}", s.SaveContent)
	r.Get("/summarizecontent/{filename}", s.SummarizeContent)
	r.Post("/ingestdocuments/{filename}", s.IngestDocuments)
	r.Post("/hybridsearch", s.HybridSearch)
	r.Delete("/deletefile/{directory}/{filename}", s.DeleteFile)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// UploadFile handles POST /uploadfile.
func (s *Server) UploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Form field 'file' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Failed to read uploaded file")
		return
	}

	path, err := s.documents.Upload(header.Filename, data)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{
		Filename: header.Filename,
		Path:     path,
		Size:     len(data),
	})
}

// ListFiles handles GET /listfiles/{directory}.
func (s *Server) ListFiles(w http.ResponseWriter, r *http.Request) {
	dir, err := storage.ParseDir(chi.URLParam(r, "directory"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	names, err := s.documents.List(dir)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}

	writeJSON(w, http.StatusOK, listFilesResponse{Directory: string(dir), Files: names})
}

// ParseFile handles GET /parsefile/{filename}.
func (s *Server) ParseFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	text, err := s.documents.Parse(name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contentResponse{Filename: name, Content: text})
}

// SaveContent handles POST /savecontent/{filename}.
func (s *Server) SaveContent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	var req saveContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "Content is required")
		return
	}

	path, err := s.documents.SaveContent(name, req.Content)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, saveContentResponse{Filename: name, Path: path})
}

// SummarizeContent handles GET /summarizecontent/{filename}.
func (s *Server) SummarizeContent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	out, err := s.summary.Summarize(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contentResponse{Filename: name, Content: out})
}

// IngestDocuments handles POST /ingestdocuments/{filename}.
func (s *Server) IngestDocuments(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	id, err := s.ingest.IngestFile(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{Filename: name, DocumentID: id})
}

// HybridSearch handles POST /hybridsearch.
func (s *Server) HybridSearch(w http.ResponseWriter, r *http.Request) {
	var req hybridSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "Question is required")
		return
	}

	res, err := s.answer.Ask(r.Context(), req.Question)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	sources := make([]searchResultItem, len(res.Sources))
	for i, h := range res.Sources {
		sources[i] = searchResultItem{
			ID:         h.ID,
			Score:      h.Score,
			Content:    h.Text,
			SourceName: h.Metadata.SourceName,
			FileName:   h.Metadata.FileName,
		}
	}

	writeJSON(w, http.StatusOK, hybridSearchResponse{Answer: res.Answer, Sources: sources})
}

// DeleteFile handles DELETE /deletefile/{directory}/{filename}.
func (s *Server) DeleteFile(w http.ResponseWriter, r *http.Request) {
	dir, err := storage.ParseDir(chi.URLParam(r, "directory"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	name := chi.URLParam(r, "filename")

	if err := s.documents.Delete(r.Context(), dir, name); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
