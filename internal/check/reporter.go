package check

import (
	"context"

	"github.com/verityhq/verity/internal/constants"
	"github.com/verityhq/verity/internal/domain"
)

// Update carries the fields pushed to an existing check run.
type Update struct {
	Status      constants.CheckStatus
	Conclusion  constants.CheckConclusion
	Title       string
	Summary     string
	Annotations []domain.Annotation
}

// Reporter mirrors check run state to the hosting platform.
type Reporter interface {
	// Create opens a check run in the in_progress state and returns its id.
	Create(ctx context.Context, name, headSHA string) (int64, error)

	// Update pushes status, conclusion, and output to an existing run.
	Update(ctx context.Context, id int64, update Update) error
}

// Commenter posts the run report as a pull request comment.
type Commenter interface {
	Comment(ctx context.Context, prNumber int, body string) error
}
