package outline

import (
	"errors"
	"fmt"
	"strings"
)

// AnchorNotFoundError means no strategy could resolve an anchor and the
// proposal carried no usable offset fallback. It aborts the whole batch.
type AnchorNotFoundError struct {
	Title  string
	Anchor string
	Kind   string // "start" or "end"
}

func (e *AnchorNotFoundError) Error() string {
	return fmt.Sprintf("%s anchor not found for node %q: %q", e.Kind, e.Title, e.Anchor)
}

// InvalidRangeError means a resolution produced end <= start, or the
// proposal metadata itself is invalid. This is a logic error, distinct from
// a lookup failure.
type InvalidRangeError struct {
	Title  string
	Start  int
	End    int
	Reason string
}

func (e *InvalidRangeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid node %q: %s", e.Title, e.Reason)
	}
	return fmt.Sprintf("anchor positions out of bounds for node %q: start=%d end=%d", e.Title, e.Start, e.End)
}

// ValidationError reports a structural violation between two resolved nodes,
// e.g. overlapping siblings.
type ValidationError struct {
	First  string
	Second string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("structure validation failed: %s (%q vs %q)", e.Reason, e.First, e.Second)
}

// GenerationError wraps a failed model call. The "no nodes generated" case
// is recognized by message content and drives the per-chunk fallback path.
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("structure generation failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("structure generation failed: %s", e.Message)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// NoNodesMessage is the recognized marker for an empty model result.
const NoNodesMessage = "No nodes generated"

// IsNoNodesGenerated reports whether err signals the model returned an empty
// structure, as opposed to an outright failure.
func IsNoNodesGenerated(err error) bool {
	if err == nil {
		return false
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return strings.Contains(strings.ToLower(genErr.Message), strings.ToLower(NoNodesMessage))
	}
	return strings.Contains(strings.ToLower(err.Error()), strings.ToLower(NoNodesMessage))
}

// ChunkProcessingError aborts the whole large-document pipeline: a chunk's
// model call failed with something other than the "no nodes" case.
type ChunkProcessingError struct {
	ChunkIndex int
	Err        error
}

func (e *ChunkProcessingError) Error() string {
	return fmt.Sprintf("processing chunk %d failed: %v", e.ChunkIndex, e.Err)
}

func (e *ChunkProcessingError) Unwrap() error { return e.Err }

// RetryExhaustedError is raised after the bounded retry loop gives up on the
// model call.
type RetryExhaustedError struct {
	Attempts int
	Err      error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("model call failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Err }
