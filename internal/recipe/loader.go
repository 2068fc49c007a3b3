// Package recipe loads and validates test recipes. A recipe is a YAML or
// JSON file of natural-language scenarios; it is the only test input the
// pipeline needs.
package recipe

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verityhq/verity/internal/domain"
	verrors "github.com/verityhq/verity/internal/errors"
)

// Load reads a recipe file. Format is chosen by extension: .json is
// parsed as JSON, everything else as YAML.
func Load(path string) (domain.TestRecipe, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path comes from operator config
	if err != nil {
		return domain.TestRecipe{}, verrors.Wrapf(err, "failed to read recipe %s", path)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes recipe bytes and validates the result.
func Parse(data []byte, ext string) (domain.TestRecipe, error) {
	var recipe domain.TestRecipe
	var err error

	if strings.EqualFold(ext, ".json") {
		err = json.Unmarshal(data, &recipe)
		// An upstream recipe can also be a bare array of scenarios.
		if err != nil {
			var scenarios []domain.TestScenario
			if arrErr := json.Unmarshal(data, &scenarios); arrErr == nil {
				recipe = domain.TestRecipe{Scenarios: scenarios}
				err = nil
			}
		}
	} else {
		err = yaml.Unmarshal(data, &recipe)
	}
	if err != nil {
		return domain.TestRecipe{}, verrors.Wrap(verrors.ErrRecipeInvalid, err.Error())
	}

	if err := Validate(recipe); err != nil {
		return domain.TestRecipe{}, err
	}
	return recipe, nil
}

// Validate checks structural requirements: at least one scenario, and a
// non-empty name on every scenario.
func Validate(recipe domain.TestRecipe) error {
	if recipe.Empty() {
		return verrors.Wrap(verrors.ErrEmptyRecipe, "recipe has no scenarios")
	}

	names := make(map[string]struct{}, len(recipe.Scenarios))
	for i, s := range recipe.Scenarios {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return verrors.Wrapf(verrors.ErrRecipeInvalid, "scenario %d has no name", i+1)
		}
		if _, dup := names[name]; dup {
			return verrors.Wrapf(verrors.ErrRecipeInvalid, "duplicate scenario name %q", name)
		}
		names[name] = struct{}{}
	}
	return nil
}

// LoadHints reads optional selector hints from a JSON file. A missing
// file is not an error: hints only improve synthesis accuracy.
func LoadHints(path string) ([]domain.SelectorHint, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path comes from operator config
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, verrors.Wrapf(err, "failed to read selector hints %s", path)
	}

	var hints []domain.SelectorHint
	if err := json.Unmarshal(data, &hints); err != nil {
		return nil, verrors.Wrap(err, "failed to parse selector hints")
	}
	return hints, nil
}
