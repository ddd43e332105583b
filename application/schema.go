package application

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bluebrain/viztools/orderedjson"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

var ErrInvalidSchema = errors.New("invalid object schema")

type Kind int

const (
	KindScalar Kind = iota
	KindArray
	KindObject
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindEnum:
		return "enum"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Schema is the part of an object's JSON schema the binder acts on. Fields
// keep the order the application declared them in.
type Schema struct {
	Kind   Kind
	Title  string
	Type   string
	Enum   []string
	Items  *Schema
	Fields []Field

	validator *jsonschema.Schema
}

type Field struct {
	Name   string
	Schema *Schema
}

func (s *Schema) Field(name string) (*Schema, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field.Schema, true
		}
	}
	return nil, false
}

// Validate checks a normalized value against the compiled schema. Schemas
// that were never compiled accept everything.
func (s *Schema) Validate(value interface{}) error {
	if s.validator == nil {
		return nil
	}
	return s.validator.Validate(orderedjson.Plain(value))
}

// ParseSchema reads the schema served for objectName and compiles it for
// validation.
func ParseSchema(objectName string, raw *orderedjson.Object) (*Schema, error) {
	if raw == nil {
		return nil, ErrInvalidSchema
	}

	schema, err := parseNode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidSchema, objectName, err)
	}

	schema.validator, err = compile(objectName, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidSchema, objectName, err)
	}

	return schema, nil
}

func parseNode(raw *orderedjson.Object) (*Schema, error) {
	schema := &Schema{}
	schema.Title, _ = raw.String("title")
	schema.Type, _ = raw.String("type")

	if enum, ok := raw.Get("enum"); ok {
		values, ok := enum.([]interface{})
		if !ok {
			return nil, errors.New("enum is not a list")
		}
		for _, value := range values {
			schema.Enum = append(schema.Enum, fmt.Sprint(value))
		}
		schema.Kind = KindEnum
		return schema, nil
	}

	switch schema.Type {
	case "object":
		schema.Kind = KindObject
		properties, ok := raw.Get("properties")
		if !ok {
			return schema, nil
		}
		fields, ok := properties.(*orderedjson.Object)
		if !ok {
			return nil, errors.New("properties is not an object")
		}
		for _, name := range fields.Keys() {
			node, _ := fields.Get(name)
			fieldRaw, ok := node.(*orderedjson.Object)
			if !ok {
				return nil, fmt.Errorf("property %s is not an object", name)
			}
			field, err := parseNode(fieldRaw)
			if err != nil {
				return nil, fmt.Errorf("property %s: %s", name, err)
			}
			schema.Fields = append(schema.Fields, Field{Name: name, Schema: field})
		}

	case "array":
		schema.Kind = KindArray
		if items, ok := raw.Get("items"); ok {
			itemsRaw, ok := items.(*orderedjson.Object)
			if !ok {
				// tuple form, validated but not described
				return schema, nil
			}
			item, err := parseNode(itemsRaw)
			if err != nil {
				return nil, fmt.Errorf("items: %s", err)
			}
			schema.Items = item
		}

	default:
		schema.Kind = KindScalar
	}

	return schema, nil
}

func compile(objectName string, raw *orderedjson.Object) (*jsonschema.Schema, error) {
	document := raw.Copy()
	// applications advertise meta schemas the compiler cannot resolve
	document.Delete("$schema")
	document.Delete("$id")

	encoded, err := json.Marshal(document)
	if err != nil {
		return nil, err
	}

	url := "https://viztools.local/schemas/" + objectName + ".json"

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	err = compiler.AddResource(url, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}

	return compiler.Compile(url)
}

// enumSchemas returns the enum schemas directly reachable from the fields of
// an object schema, either as the field itself or as its array items.
func (s *Schema) enumSchemas() []*Schema {
	enums := []*Schema{}
	for _, field := range s.Fields {
		switch {
		case field.Schema.Kind == KindEnum:
			enums = append(enums, field.Schema)
		case field.Schema.Kind == KindArray && field.Schema.Items != nil && field.Schema.Items.Kind == KindEnum:
			enums = append(enums, field.Schema.Items)
		}
	}
	return enums
}
