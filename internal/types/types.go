package types

import "time"

// Word is a single transcribed token with absolute source-video timestamps
// in seconds. Words are produced by the transcriber and never mutated.
type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}

type Transcript struct {
	Text  string `json:"text"`
	Words []Word `json:"words,omitempty"`
}

// ClipDescriptor describes one highlight segment to render. Times are
// absolute offsets into the source video. Read-only input to the pipeline.
type ClipDescriptor struct {
	ID            string
	Start         time.Duration
	End           time.Duration
	ViralityScore float64
	Title         string
}

func (c ClipDescriptor) Duration() time.Duration { return c.End - c.Start }

// Artifact is the output of a single transcoder invocation. The caller owns
// the local file until it is handed to the artifact store.
type Artifact struct {
	Path     string
	Name     string
	Size     int64
	Duration time.Duration
}

// StoredObject is what the artifact store reports back after an upload.
type StoredObject struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Dimensions are pixel dimensions of a video stream.
type Dimensions struct {
	Width  int
	Height int
}

func (d Dimensions) Valid() bool { return d.Width > 0 && d.Height > 0 }

// MediaSourceKind tags the variants of MediaSource.
type MediaSourceKind int

const (
	MediaFilePath MediaSourceKind = iota
	MediaURL
	MediaBytes
)

// MediaSource is a tagged union over the ways a source video can arrive:
// a local file path, a remote URL, or an in-memory buffer. It is resolved
// once at ingestion so downstream code never probes ad hoc properties.
type MediaSource struct {
	kind MediaSourceKind
	path string
	url  string
	data []byte
}

func FileSource(path string) MediaSource { return MediaSource{kind: MediaFilePath, path: path} }
func URLSource(url string) MediaSource   { return MediaSource{kind: MediaURL, url: url} }
func BytesSource(b []byte) MediaSource   { return MediaSource{kind: MediaBytes, data: b} }

func (m MediaSource) Kind() MediaSourceKind { return m.kind }
func (m MediaSource) FilePath() string      { return m.path }
func (m MediaSource) URL() string           { return m.url }
func (m MediaSource) Bytes() []byte         { return m.data }
