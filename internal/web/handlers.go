package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/stormlightlabs/linedex/internal/indexer"
)

// handleScan queues a directory scan and answers 202 with the job.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req indexer.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_body")
		return
	}
	if req.Root == "" {
		writeError(w, http.StatusBadRequest, "root is required", "missing_param")
		return
	}
	if len(req.Masks) == 0 {
		req.Masks = s.opts.Masks
	}
	if req.Encoding == "" {
		req.Encoding = s.opts.Encoding
	}

	job, err := s.jobs.SubmitScan(req)
	if err != nil {
		s.writeSubmitError(w, err)
		return
	}
	log.Info("scan queued", "job", job.ID, "root", req.Root)
	writeJSON(w, http.StatusAccepted, job)
}

// handleClear queues removal of every indexed file, word and posting.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobs.SubmitClear()
	if err != nil {
		s.writeSubmitError(w, err)
		return
	}
	log.Info("clear queued", "job", job.ID)
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.jobs.Job(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found", "not_found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.stats.Stats(r.Context())
	if err != nil {
		log.Error("stats failed", "err", err)
		writeError(w, http.StatusInternalServerError, "stats failed", "store_error")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeSubmitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, indexer.ErrQueueFull):
		writeError(w, http.StatusTooManyRequests, err.Error(), "queue_full")
	case errors.Is(err, indexer.ErrWorkerStopped):
		writeError(w, http.StatusServiceUnavailable, err.Error(), "worker_stopped")
	default:
		writeError(w, http.StatusInternalServerError, err.Error(), "submit_error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}
