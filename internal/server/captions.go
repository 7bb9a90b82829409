// Package server is the thin caption delivery endpoint: it serves a WebVTT
// document for a stored clip by rebasing the project-level caption timeline
// onto the clip's time window.
package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/domain/captions"
	"github.com/clipforge/clipforge/internal/domain/subtitles"
	"github.com/clipforge/clipforge/internal/types"
)

// ClipWindow is a clip's absolute time window in the source video.
type ClipWindow struct {
	Start time.Duration `json:"start_sec"`
	End   time.Duration `json:"end_sec"`
}

// TranscriptSource looks up the transcript words and window for a clip ID.
// Persistence is outside this package; storage-backed implementations plug
// in here.
type TranscriptSource interface {
	Lookup(clipID string) (words []types.Word, window ClipWindow, ok bool)
}

type Server struct {
	src  TranscriptSource
	opts captions.Options
	log  *zap.Logger
}

func New(src TranscriptSource, opts captions.Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{src: src, opts: opts, log: log}
}

func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/clips/{id}/captions", s.handleCaptions).Methods(http.MethodGet)
	return r
}

// handleCaptions always answers 200 with a valid WebVTT body. A clip with no
// transcript gets the empty placeholder document instead of an error, so
// players degrade gracefully.
func (s *Server) handleCaptions(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	w.Header().Set("Content-Type", "text/vtt; charset=utf-8")

	words, window, ok := s.src.Lookup(id)
	if !ok || len(words) == 0 || window.End <= window.Start {
		s.log.Debug("no captions for clip", zap.String("id", id))
		_, _ = w.Write([]byte(subtitles.EmptyVTT()))
		return
	}

	lines := captions.Segment(words, s.opts)
	clipDur := window.End - window.Start
	local := captions.Rebase(lines, window.Start, clipDur)
	_, _ = w.Write([]byte(subtitles.RenderVTT(local, clipDur)))
}
