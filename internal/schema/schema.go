// Package schema validates untrusted AI output against fixed JSON Schemas.
//
// AI responses are never trusted directly: the synthesizer and classifier
// both parse the raw text, validate it against an embedded schema, and only
// then decode it into domain types.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// Validator wraps a compiled JSON Schema.
type Validator struct {
	schema *sjsonschema.Schema
}

// MustCompile compiles a schema document or panics. Schemas are embedded
// string constants, so a compile failure is a programming error.
func MustCompile(name, schemaJSON string) *Validator {
	v, err := Compile(name, schemaJSON)
	if err != nil {
		panic(err)
	}
	return v
}

// Compile compiles a schema document.
func Compile(name, schemaJSON string) (*Validator, error) {
	var doc any
	if err := json.Unmarshal([]byte(schemaJSON), &doc); err != nil {
		return nil, fmt.Errorf("unmarshal schema %s: %w", name, err)
	}

	c := sjsonschema.NewCompiler()
	if err := c.AddResource(name, doc); err != nil {
		return nil, fmt.Errorf("add schema resource %s: %w", name, err)
	}
	sch, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Validator{schema: sch}, nil
}

// Validate checks raw JSON against the schema. On failure it returns a
// flat, human-readable list of violations suitable for a re-prompt.
func (v *Validator) Validate(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}

	err := v.schema.Validate(doc)
	if err == nil {
		return nil
	}

	var ve *sjsonschema.ValidationError
	if ok := asValidationError(err, &ve); ok {
		var parts []string
		for _, cause := range flatten(ve) {
			loc := strings.Join(cause.InstanceLocation, "/")
			if loc == "" {
				loc = "(root)"
			}
			parts = append(parts, fmt.Sprintf("%s: %v", loc, cause.ErrorKind))
		}
		return fmt.Errorf("schema violations: %s", strings.Join(parts, "; "))
	}
	return err
}

// flatten recursively collects all leaf validation errors.
func flatten(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flatten(cause)...)
	}
	return flat
}

// asValidationError extracts a *jsonschema.ValidationError from err.
func asValidationError(err error, target **sjsonschema.ValidationError) bool {
	ve, ok := err.(*sjsonschema.ValidationError)
	if !ok {
		return false
	}
	*target = ve
	return true
}
