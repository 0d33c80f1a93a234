package api

import (
	"encoding/hex"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"
	"github.com/ssargent/nodestate/pkg/hvm"
	"github.com/ssargent/nodestate/pkg/state"
	"github.com/ssargent/nodestate/pkg/storage"
	"go.uber.org/zap"
)

// Server holds the API server state
type Server struct {
	archive SnapshotStore
	config  ServerConfig
	metrics *Metrics
	logger  *zap.Logger
}

// NewServer creates a new API server
func NewServer(archive SnapshotStore, config ServerConfig, metrics *Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		archive: archive,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

// Summarize describes h. Function names are sorted.
func Summarize(h *state.Heap) (HeapSummary, error) {
	digest, err := h.Digest()
	if err != nil {
		return HeapSummary{}, err
	}

	names := make([]string, 0, len(h.File))
	for key, fn := range h.File {
		name, err := hvm.U128ToName(key)
		if err != nil {
			name = fn.Name()
		}
		names = append(names, name)
	}
	sort.Strings(names)

	return HeapSummary{
		Tick:      h.Tick.String(),
		Hash:      hex.EncodeToString(h.Hash),
		Digest:    hex.EncodeToString(digest),
		Memo:      len(h.Memo),
		Disk:      len(h.Disk),
		Balances:  len(h.Bals),
		Functions: names,
	}, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	manifests, err := s.archive.List()
	s.metrics.RecordArchiveRead("list", err == nil, time.Since(start))
	if err != nil {
		s.logger.Error("failed to list snapshots", zap.Error(err))
		sendError(w, "Failed to list snapshots", http.StatusInternalServerError)
		return
	}

	s.metrics.UpdateSnapshotCount(len(manifests))
	if manifests == nil {
		manifests = []storage.Manifest{}
	}
	sendSuccess(w, manifests)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := ksuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "Invalid snapshot id", http.StatusBadRequest)
		return
	}

	start := time.Now()
	manifest, err := s.archive.Manifest(id)
	var h *state.Heap
	if err == nil {
		h, err = s.archive.Get(id)
	}
	s.metrics.RecordArchiveRead("get", err == nil, time.Since(start))

	switch {
	case errors.Is(err, storage.ErrNotFound):
		sendError(w, "Snapshot not found", http.StatusNotFound)
		return
	case err != nil:
		s.logger.Error("failed to read snapshot", zap.String("id", id.String()), zap.Error(err))
		sendError(w, "Failed to read snapshot", http.StatusInternalServerError)
		return
	}

	summary, err := Summarize(h)
	if err != nil {
		sendError(w, "Failed to summarize snapshot", http.StatusInternalServerError)
		return
	}

	sendSuccess(w, SnapshotResponse{
		ID:      manifest.ID,
		Created: manifest.CreatedAt().UTC().Format(time.RFC3339Nano),
		Heap:    summary,
	})
}

func (s *Server) handleHeap(w http.ResponseWriter, r *http.Request) {
	if s.config.HeapDir == "" || !state.Exists(s.config.HeapDir) {
		sendError(w, "No heap saved", http.StatusNotFound)
		return
	}

	h, err := state.Load(s.config.HeapDir)
	if err != nil {
		s.logger.Error("failed to load heap", zap.String("dir", s.config.HeapDir), zap.Error(err))
		sendError(w, "Failed to load heap", http.StatusInternalServerError)
		return
	}

	summary, err := Summarize(h)
	if err != nil {
		sendError(w, "Failed to summarize heap", http.StatusInternalServerError)
		return
	}
	sendSuccess(w, summary)
}
