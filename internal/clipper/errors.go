package clipper

import "fmt"

// TranscodeError means the external transcoder exited non-zero or produced
// no output file for a clip render. Not retried; the orchestrator records it
// as that clip's failure cause.
type TranscodeError struct {
	Op     string
	Stderr string
	Err    error
}

func (e *TranscodeError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %v\n%s", e.Op, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TranscodeError) Unwrap() error { return e.Err }

// ExtractionError is the audio-extraction counterpart of TranscodeError.
type ExtractionError struct {
	Stderr string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("extract audio: %v\n%s", e.Err, e.Stderr)
	}
	return fmt.Sprintf("extract audio: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
