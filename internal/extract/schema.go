package extract

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema/review_result.schema.json
var reviewResultSchemaBytes []byte

//go:embed schema/consolidation.schema.json
var consolidationSchemaBytes []byte

const (
	reviewResultSchemaName  = "review_result.schema.json"
	consolidationSchemaName = "consolidation.schema.json"
)

var (
	compileOnce         sync.Once
	compileErr          error
	reviewResultSchema  *jsonschema.Schema
	consolidationSchema *jsonschema.Schema
)

// ValidationError reports a model response that could not be accepted:
// malformed JSON, a schema violation or a failed semantic check.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidationError reports whether err is, or wraps, a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// compileSchemas compiles both embedded schemas exactly once.
func compileSchemas() error {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		for name, raw := range map[string][]byte{
			reviewResultSchemaName:  reviewResultSchemaBytes,
			consolidationSchemaName: consolidationSchemaBytes,
		} {
			doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
			if err != nil {
				compileErr = fmt.Errorf("unmarshaling schema %s: %w", name, err)
				return
			}
			if err := c.AddResource(name, doc); err != nil {
				compileErr = fmt.Errorf("adding schema resource %s: %w", name, err)
				return
			}
		}

		var err error
		if reviewResultSchema, err = c.Compile(reviewResultSchemaName); err != nil {
			compileErr = fmt.Errorf("compiling schema: %w", err)
			return
		}
		if consolidationSchema, err = c.Compile(consolidationSchemaName); err != nil {
			compileErr = fmt.Errorf("compiling schema: %w", err)
		}
	})
	return compileErr
}

// validateDocument checks that content is one JSON document matching schema.
func validateDocument(schema *jsonschema.Schema, content string) error {
	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(content))
	if err != nil {
		return &ValidationError{Reason: "response is not valid JSON", Err: err}
	}
	if err := schema.Validate(inst); err != nil {
		return &ValidationError{Reason: "response does not match schema", Err: err}
	}
	return nil
}
