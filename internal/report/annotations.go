package report

import (
	"fmt"

	"github.com/verityhq/verity/internal/constants"
	"github.com/verityhq/verity/internal/domain"
)

// Annotations builds check run annotations for failed and errored
// scenarios. recipePath anchors them to the recipe file under review.
func Annotations(result *domain.ExecutionResult, recipePath string) []domain.Annotation {
	if recipePath == "" {
		recipePath = constants.DefaultRecipePath
	}

	var annotations []domain.Annotation
	for _, s := range result.Scenarios {
		var level, title string
		switch s.Status {
		case constants.ScenarioFail:
			level, title = "failure", "Scenario failed"
		case constants.ScenarioError:
			level, title = "failure", "Scenario errored"
		case constants.ScenarioSkip:
			level, title = "warning", "Scenario skipped"
		default:
			continue
		}

		message := s.Scenario.Name
		if s.Expected != "" || s.Actual != "" {
			message = fmt.Sprintf("%s\nExpected: %s\nActual: %s", s.Scenario.Name, s.Expected, s.Actual)
		} else if s.Error != "" {
			message = fmt.Sprintf("%s\n%s", s.Scenario.Name, s.Error)
		}

		annotations = append(annotations, domain.Annotation{
			Path:      recipePath,
			StartLine: 1,
			EndLine:   1,
			Level:     level,
			Title:     title,
			Message:   message,
		})
	}
	return annotations
}
