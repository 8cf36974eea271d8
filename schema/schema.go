// Package schema validates condition rows against a JSON Schema.
//
// Condition files are authored by hand, and a typo in one cell ("NaN",
// a missing column, a string where a duration was expected) otherwise
// surfaces mid-session as a broken trial. Attaching a schema to the
// handler moves that failure to construction time, where it is fatal
// and diagnosable.
//
// # Quick Start
//
//	trials, err := trialseq.New(ctx, trialseq.Params{
//	    Conditions: "conditions.csv",
//	    Importer:   importers.NewCSV(),
//	    Reps:       10,
//	    Schema: schema.MustCompile(schema.Object(map[string]*schema.Property{
//	        "word":     schema.String("Stimulus word"),
//	        "ori":      schema.Number("Grating orientation in degrees").Min(0).Max(360),
//	        "duration": schema.Number("Presentation time in seconds").Min(0),
//	    }, "word", "ori")), // "word" and "ori" are required fields
//	})
//
// Every loaded row is validated before the sequence is generated; the
// first failing row fails construction. See [Object], [Property], and
// the individual builder functions.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema represents a JSON Schema definition.
// It provides both the raw map representation (for serialization and
// reports) and a compiled validator (for row validation).
type Schema struct {
	raw      map[string]any
	compiled *jsonschema.Schema
}

// Raw returns the underlying map[string]any representation.
func (s *Schema) Raw() map[string]any {
	if s == nil {
		return nil
	}
	return s.raw
}

// Validate validates one condition row against the schema.
// Returns nil if valid, or an error describing the validation failure.
func (s *Schema) Validate(row map[string]any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	err := s.compiled.Validate(row)
	if err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// ValidationError wraps a JSON Schema validation error with a cleaner message.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Compile compiles a raw schema map into a Schema with a compiled validator.
// Returns an error if the schema is invalid.
func Compile(raw map[string]any) (*Schema, error) {
	if raw == nil {
		return nil, nil
	}

	// Marshal the schema to JSON for the compiler
	schemaJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	// Unmarshal into the format expected by jsonschema
	schemaData, err := jsonschema.UnmarshalJSON(strings.NewReader(string(schemaJSON)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	// Compile the schema
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaData); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Schema{
		raw:      raw,
		compiled: compiled,
	}, nil
}

// MustCompile is like Compile but panics on error.
// Use this for schemas defined at init time.
func MustCompile(raw map[string]any) *Schema {
	s, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// -----------------------------------------------------------------------------
// Schema Builders
// -----------------------------------------------------------------------------

// Object creates an object schema with the given properties.
// Pass property names as variadic arguments to mark them as required.
//
// Example:
//
//	// All fields optional
//	schema.Object(map[string]*schema.Property{
//	    "word": schema.String("Stimulus word"),
//	    "ori":  schema.Number("Orientation in degrees"),
//	})
//
//	// "word" and "corrAns" must be present in every row
//	schema.Object(map[string]*schema.Property{
//	    "word":    schema.String("Stimulus word"),
//	    "corrAns": schema.String("Expected response key"),
//	    "soa":     schema.Number("Stimulus onset asynchrony"),
//	}, "word", "corrAns")
func Object(properties map[string]*Property, required ...string) map[string]any {
	props := make(map[string]any, len(properties))
	for name, prop := range properties {
		props[name] = prop.build()
	}

	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}

	if len(required) > 0 {
		schema["required"] = required
	}

	return schema
}

// Property represents a condition field in an object schema.
type Property struct {
	typ         string
	description string
	enum        []any
	minimum     *float64
	maximum     *float64
	pattern     string
	items       map[string]any
	def         any // default value
}

func (p *Property) build() map[string]any {
	m := map[string]any{}

	if p.typ != "" {
		m["type"] = p.typ
	}
	if p.description != "" {
		m["description"] = p.description
	}
	if len(p.enum) > 0 {
		m["enum"] = p.enum
	}
	if p.minimum != nil {
		m["minimum"] = *p.minimum
	}
	if p.maximum != nil {
		m["maximum"] = *p.maximum
	}
	if p.pattern != "" {
		m["pattern"] = p.pattern
	}
	if p.items != nil {
		m["items"] = p.items
	}
	if p.def != nil {
		m["default"] = p.def
	}

	return m
}

// String creates a string field.
//
// Example:
//
//	schema.String("Stimulus word")
//	schema.String("Response key").Enum("left", "right")
//	schema.String("Image file").Pattern(`\.(png|jpg)$`)
func String(description string) *Property {
	return &Property{typ: "string", description: description}
}

// Integer creates an integer field.
//
// Example:
//
//	schema.Integer("Set size").Min(1).Max(8)
//	schema.Integer("Block").Enum(1, 2, 3)
func Integer(description string) *Property {
	return &Property{typ: "integer", description: description}
}

// Number creates a number field (floating point).
//
// Example:
//
//	schema.Number("Contrast").Min(0).Max(1)
//	schema.Number("Stimulus duration in seconds").Min(0)
func Number(description string) *Property {
	return &Property{typ: "number", description: description}
}

// Boolean creates a boolean field.
//
// Example:
//
//	schema.Boolean("Whether the trial is congruent")
func Boolean(description string) *Property {
	return &Property{typ: "boolean", description: description}
}

// Array creates an array field with the given item schema.
//
// Example:
//
//	// A list of dot positions
//	schema.Array("Dot x positions", map[string]any{"type": "number"})
func Array(description string, items map[string]any) *Property {
	return &Property{typ: "array", description: description, items: items}
}

// Enum sets allowed values for the field.
//
// Example:
//
//	schema.String("Condition").Enum("congruent", "incongruent", "neutral")
func (p *Property) Enum(values ...any) *Property {
	p.enum = values
	return p
}

// Min sets the minimum value for number/integer fields.
func (p *Property) Min(min float64) *Property {
	p.minimum = &min
	return p
}

// Max sets the maximum value for number/integer fields.
func (p *Property) Max(max float64) *Property {
	p.maximum = &max
	return p
}

// Pattern sets a regex pattern for string validation.
//
// Example:
//
//	schema.String("Sound file").Pattern(`\.wav$`)
func (p *Property) Pattern(pattern string) *Property {
	p.pattern = pattern
	return p
}

// Default sets the default value advertised for the field. Validation
// does not inject defaults into rows; the value is documentation for
// report surfaces reading [Schema.Raw].
func (p *Property) Default(value any) *Property {
	p.def = value
	return p
}
