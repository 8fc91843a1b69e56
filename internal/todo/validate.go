package todo

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/sessiontodo/internal/utils"
)

//go:embed tasks.schema.json
var embeddedSchema []byte

const embeddedSchemaName = "tasks.schema.json"

// ValidationOptions controls validation behavior.
type ValidationOptions struct {
	// SchemaPath is the path to a JSON Schema file. If empty, or if the file
	// cannot be used, the built-in schema is used.
	SchemaPath string
	// Now is the load time reported for defaulted createdAt values.
	Now time.Time
}

// BuiltinSchemaName names the embedded schema in ValidationResult.SchemaName.
const BuiltinSchemaName = "built-in"

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid      bool
	Errors     []error
	Warnings   []string
	UsedSchema bool   // true if JSON Schema validation was performed
	SchemaName string // schema file path, or BuiltinSchemaName
	Report     ParseReport
}

// Validate checks a stored payload. Schema violations are errors; what the
// tolerant parser would do about them is reported as warnings. A payload can
// be invalid and still load.
func Validate(data []byte, opts ValidationOptions) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	entries, err := Decode(data)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err)
		result.Warnings = append(result.Warnings, "payload will be discarded on load")
		return result
	}

	schema, name, warnings := compileSchema(opts.SchemaPath)
	result.Warnings = append(result.Warnings, warnings...)
	if schema != nil {
		result.UsedSchema = true
		result.SchemaName = name
		if err := schema.Validate(entries); err != nil {
			result.Valid = false
			appendSchemaErrors(result, err)
		}
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	_, report := Parse(entries, now)
	result.Report = report
	for _, issue := range report.Issues {
		result.Warnings = append(result.Warnings, issue.Error())
	}
	if !result.UsedSchema && report.Dropped > 0 {
		result.Valid = false
	}

	return result
}

// compileSchema compiles the schema at path, falling back to the built-in
// schema when path is empty or unusable.
func compileSchema(path string) (*jsonschema.Schema, string, []string) {
	var warnings []string
	if path != "" {
		schema, err := compileSchemaFile(path)
		if err == nil {
			return schema, path, nil
		}
		warnings = append(warnings, fmt.Sprintf("%v, using built-in schema", err))
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(embeddedSchemaName, bytes.NewReader(embeddedSchema)); err != nil {
		return nil, "", append(warnings, fmt.Sprintf("invalid built-in schema: %v", err))
	}
	schema, err := compiler.Compile(embeddedSchemaName)
	if err != nil {
		return nil, "", append(warnings, fmt.Sprintf("invalid built-in schema: %v", err))
	}
	return schema, BuiltinSchemaName, warnings
}

func compileSchemaFile(path string) (*jsonschema.Schema, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid schema path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("schema file not found: %s", absPath)
		}
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	schema, err := compiler.Compile(absPath)
	if err != nil {
		return nil, fmt.Errorf("invalid schema file: %w", err)
	}
	return schema, nil
}

func appendSchemaErrors(result *ValidationResult, err error) {
	if err == nil {
		return
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		result.Errors = append(result.Errors, err)
		return
	}

	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: utils.JSONPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}
