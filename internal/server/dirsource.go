package server

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/clipforge/clipforge/internal/types"
)

// DirSource reads clip transcripts from a directory of <clipID>.json files.
// Good enough for the CLI server; a real deployment swaps in a
// storage-backed TranscriptSource.
type DirSource struct {
	dir string
}

func NewDirSource(dir string) *DirSource { return &DirSource{dir: dir} }

type clipRecord struct {
	StartSec float64      `json:"start_sec"`
	EndSec   float64      `json:"end_sec"`
	Words    []types.Word `json:"words"`
}

func (d *DirSource) Lookup(clipID string) ([]types.Word, ClipWindow, bool) {
	// Clip IDs come from URL paths; keep lookups inside the data directory.
	if clipID != filepath.Base(clipID) {
		return nil, ClipWindow{}, false
	}
	b, err := os.ReadFile(filepath.Join(d.dir, clipID+".json"))
	if err != nil {
		return nil, ClipWindow{}, false
	}
	var rec clipRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, ClipWindow{}, false
	}
	window := ClipWindow{
		Start: time.Duration(rec.StartSec * float64(time.Second)),
		End:   time.Duration(rec.EndSec * float64(time.Second)),
	}
	return rec.Words, window, true
}
