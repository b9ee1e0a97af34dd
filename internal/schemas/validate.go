// Package schemas provides the validation boundary for incoming request bodies.
// Structural checks run against the embedded JSON Schema documents; semantic checks
// run through the request types' validator tags.
package schemas

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"

	schemafiles "github.com/jonathan/keyword-ranker/schemas"
	"github.com/jonathan/keyword-ranker/internal/types"
)

const rootField = "(root)"

// ValidationError represents a request validation error with field paths
type ValidationError struct {
	Errors []FieldError `json:"detail"`
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Fields returns the offending field paths in order.
func (ve *ValidationError) Fields() []string {
	fields := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		fields = append(fields, fe.Field)
	}
	return fields
}

func singleFieldError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

var compiled sync.Map // schema file name -> *gojsonschema.Schema

// loadSchema compiles an embedded schema once and caches it.
func loadSchema(name string) (*gojsonschema.Schema, error) {
	if cached, ok := compiled.Load(name); ok {
		return cached.(*gojsonschema.Schema), nil
	}

	data, err := schemafiles.FS.ReadFile(name)
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "schema file not found", Cause: err}
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "schema failed to compile", Cause: err}
	}

	actual, _ := compiled.LoadOrStore(name, schema)
	return actual.(*gojsonschema.Schema), nil
}

// ValidateDocument validates raw JSON against one of the embedded schemas.
// Returns *ValidationError for invalid documents and *SchemaLoadError when the schema itself is broken.
func ValidateDocument(schemaName string, raw []byte) error {
	if !json.Valid(raw) {
		return singleFieldError(rootField, "body is not valid JSON")
	}

	schema, err := loadSchema(schemaName)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &SchemaLoadError{
			Path:    schemaName,
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	return fromResult(result)
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	return fromResult(result)
}

// fromResult builds a structured error, naming the missing property for "required" failures.
func fromResult(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = rootField
		}
		if desc.Type() == "required" {
			if prop, ok := desc.Details()["property"].(string); ok && prop != "" {
				if field == rootField {
					field = prop
				} else {
					field = field + "." + prop
				}
			}
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}

// FromValidator converts go-playground validator errors into a ValidationError.
// Any other error is returned unchanged.
func FromValidator(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(verrs)),
	}
	for _, fe := range verrs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: describeTag(fe),
		})
	}
	return validationErr
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q constraint", fe.Tag())
	}
}

// decode unmarshals a document that already passed schema validation.
// Residual decode failures (e.g. 2.5 for an integer) are reported as field errors.
func decode(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return singleFieldError(typeErr.Field, fmt.Sprintf("expected %s", typeErr.Type))
		}
		return singleFieldError(rootField, err.Error())
	}
	return nil
}

// ValidateRankRequest parses and validates a POST /llm/rank body.
// An omitted topK takes defaultTopK.
func ValidateRankRequest(raw []byte, defaultTopK int) (types.RankRequest, error) {
	if err := ValidateDocument(schemafiles.RankRequest, raw); err != nil {
		return types.RankRequest{}, err
	}

	req := types.RankRequest{TopK: defaultTopK}
	if err := decode(raw, &req); err != nil {
		return types.RankRequest{}, err
	}

	if err := req.Validate(); err != nil {
		return types.RankRequest{}, FromValidator(err)
	}

	return req, nil
}

// ValidateAnalyzeRequest parses and validates a POST /analyze body.
func ValidateAnalyzeRequest(raw []byte) (types.AnalyzeRequest, error) {
	if err := ValidateDocument(schemafiles.AnalyzeRequest, raw); err != nil {
		return types.AnalyzeRequest{}, err
	}

	var req types.AnalyzeRequest
	if err := decode(raw, &req); err != nil {
		return types.AnalyzeRequest{}, err
	}

	if err := req.Validate(); err != nil {
		return types.AnalyzeRequest{}, FromValidator(err)
	}

	return req, nil
}
