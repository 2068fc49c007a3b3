// Package check manages the GitHub check run attached to each automation
// run: its status lifecycle and the reporter that mirrors it upstream.
package check

import (
	"fmt"

	"github.com/verityhq/verity/internal/constants"
	"github.com/verityhq/verity/internal/domain"
	verrors "github.com/verityhq/verity/internal/errors"
)

// ValidTransitions defines the allowed check status transitions.
// The lifecycle is monotonic: once completed, a run never moves again.
var ValidTransitions = map[constants.CheckStatus][]constants.CheckStatus{
	constants.CheckStatusQueued:     {constants.CheckStatusInProgress, constants.CheckStatusCompleted},
	constants.CheckStatusInProgress: {constants.CheckStatusCompleted},
	constants.CheckStatusCompleted:  {},
}

// CanTransition returns true if moving from one status to another is allowed.
func CanTransition(from, to constants.CheckStatus) bool {
	for _, allowed := range ValidTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition moves a check run to a new status, enforcing the lifecycle.
// Completing a run requires a conclusion; no other status may carry one.
func Transition(run *domain.CheckRun, to constants.CheckStatus, conclusion constants.CheckConclusion) error {
	if run.Completed() {
		return verrors.Wrapf(verrors.ErrCheckRunCompleted, "check run %d is terminal", run.ID)
	}
	if !CanTransition(run.Status, to) {
		return verrors.Wrapf(verrors.ErrInvalidTransition, "cannot move check run from %s to %s", run.Status, to)
	}

	if to == constants.CheckStatusCompleted {
		if conclusion == "" {
			return verrors.Wrap(verrors.ErrInvalidTransition, "completed status requires a conclusion")
		}
	} else if conclusion != "" {
		return verrors.Wrapf(verrors.ErrInvalidTransition, "conclusion %s is only valid with completed status", conclusion)
	}

	run.Status = to
	run.Conclusion = conclusion
	return nil
}

// OmittedAnnotations returns how many of count annotations ClampAnnotations
// would drop. Zero when everything fits.
func OmittedAnnotations(count int) int {
	if count <= constants.MaxAnnotations {
		return 0
	}
	return count - (constants.MaxAnnotations - 1)
}

// ClampAnnotations limits annotations to the check API maximum, appending
// a note when entries were dropped.
func ClampAnnotations(annotations []domain.Annotation) []domain.Annotation {
	if len(annotations) <= constants.MaxAnnotations {
		return annotations
	}

	omitted := OmittedAnnotations(len(annotations))
	clamped := make([]domain.Annotation, constants.MaxAnnotations-1, constants.MaxAnnotations)
	copy(clamped, annotations)
	return append(clamped, domain.Annotation{
		Path:      ".github",
		StartLine: 1,
		EndLine:   1,
		Level:     "notice",
		Title:     "Annotations truncated",
		Message:   fmt.Sprintf("%d further annotation(s) were omitted.", omitted),
	})
}
