package domain

import "github.com/verityhq/verity/internal/constants"

// Annotation is one failure annotation attached to a check-run update.
// The external platform caps annotations at constants.MaxAnnotations per
// update; callers must truncate before sending.
type Annotation struct {
	// Path is the file path the annotation attaches to. The pipeline has no
	// source mapping for scenarios, so a stable placeholder path is used.
	Path string `json:"path"`

	// StartLine and EndLine position the annotation.
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`

	// Level is the annotation severity ("failure", "warning", "notice").
	Level string `json:"annotation_level"`

	// Title is the short annotation title.
	Title string `json:"title,omitempty"`

	// Message is the annotation body.
	Message string `json:"message"`
}

// CheckRun models the external status-check object for one run.
//
// Lifecycle is strictly monotonic (queued → in_progress → completed); once
// completed no further transitions are permitted. The orchestrator must
// drive every created run to completed, even on internal error, so a check
// is never left permanently pending.
type CheckRun struct {
	// ID is the external run identifier returned on creation.
	ID int64 `json:"id"`

	// Status is the current lifecycle state.
	Status constants.CheckStatus `json:"status"`

	// Conclusion is set only when Status is completed.
	Conclusion constants.CheckConclusion `json:"conclusion,omitempty"`

	// Title is the short run title shown by the external platform.
	Title string `json:"title,omitempty"`

	// Summary is the Markdown summary body.
	Summary string `json:"summary,omitempty"`

	// Annotations holds at most constants.MaxAnnotations entries.
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Completed reports whether the run reached its terminal state.
func (c *CheckRun) Completed() bool {
	return c.Status == constants.CheckStatusCompleted
}
