package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"code.cloudfoundry.org/lager/v3"
	"github.com/bluebrain/viztools"
	"github.com/bluebrain/viztools/orderedjson"
)

var (
	ErrNotReadable  = errors.New("property is not readable")
	ErrNotWritable  = errors.New("property is not writable")
	ErrNotAnObject  = errors.New("property is not an object")
	ErrUnknownField = errors.New("unknown property field")
	ErrInvalidValue = errors.New("value does not match the property schema")
)

// Property mirrors one application object. The local value is refreshed by
// Request and pushed by Commit, Set and Update.
type Property struct {
	logger     lager.Logger
	commander  viztools.SessionCommander
	objectName string
	name       string
	verbs      []string
	schema     *Schema

	lock  sync.RWMutex
	value interface{}
}

func newProperty(
	logger lager.Logger,
	commander viztools.SessionCommander,
	objectName string,
	verbs []string,
	schema *Schema,
) *Property {
	name := PropertyName(objectName)
	return &Property{
		logger:     logger.Session("property", lager.Data{"object": objectName}),
		commander:  commander,
		objectName: objectName,
		name:       name,
		verbs:      verbs,
		schema:     schema,
		value:      zeroValue(schema),
	}
}

func zeroValue(schema *Schema) interface{} {
	switch schema.Kind {
	case KindObject:
		return orderedjson.New()
	case KindArray:
		return []interface{}{}
	default:
		return nil
	}
}

func (p *Property) Name() string {
	return p.name
}

func (p *Property) ObjectName() string {
	return p.objectName
}

func (p *Property) Schema() *Schema {
	return p.schema
}

func (p *Property) Verbs() []string {
	return append([]string{}, p.verbs...)
}

func (p *Property) Readable() bool {
	return hasVerb(p.verbs, http.MethodGet)
}

func (p *Property) Writable() bool {
	return hasVerb(p.verbs, http.MethodPut)
}

// PutOnly objects are commands: they can be triggered but not read.
func (p *Property) PutOnly() bool {
	return len(p.verbs) == 1 && p.Writable()
}

// Value returns a copy of the local value.
func (p *Property) Value() interface{} {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return copyValue(p.value)
}

func (p *Property) Field(name string) (interface{}, bool) {
	p.lock.RLock()
	defer p.lock.RUnlock()

	obj, ok := p.value.(*orderedjson.Object)
	if !ok {
		return nil, false
	}
	value, found := obj.Get(name)
	return copyValue(value), found
}

// Decode unmarshals the local value into target.
func (p *Property) Decode(target interface{}) error {
	encoded, err := json.Marshal(p.Value())
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, target)
}

// Request refreshes the local value from the application.
func (p *Property) Request() error {
	if !p.Readable() {
		return ErrNotReadable
	}

	result, err := p.commander.Command(http.MethodGet, p.objectName, nil)
	if err != nil {
		p.logger.Error("failed-to-request", err)
		return err
	}
	if !result.OK() {
		err = &viztools.UnexpectedStatusError{Expected: http.StatusOK, Result: result}
		p.logger.Error("failed-to-request", err)
		return err
	}

	value, err := orderedjson.Normalize(result.Contents)
	if err != nil {
		return fmt.Errorf("%w: %s", viztools.ErrMalformedResponse, err)
	}

	p.lock.Lock()
	p.value = value
	p.lock.Unlock()
	return nil
}

// Commit pushes the local value to the application.
func (p *Property) Commit() error {
	if !p.Writable() {
		return ErrNotWritable
	}
	return p.put(p.Value())
}

// Set validates value and pushes it to the application. The local value
// changes only once the application accepts it.
func (p *Property) Set(value interface{}) error {
	if !p.Writable() {
		return ErrNotWritable
	}

	normalized, err := orderedjson.Normalize(value)
	if err != nil {
		return err
	}

	err = p.validate(normalized)
	if err != nil {
		return err
	}

	err = p.put(normalized)
	if err != nil {
		return err
	}

	p.lock.Lock()
	p.value = normalized
	p.lock.Unlock()
	return nil
}

// Update changes the named fields of an object property and pushes the
// whole object. Fields the schema does not declare are rejected.
func (p *Property) Update(fields map[string]interface{}) error {
	if !p.Writable() {
		return ErrNotWritable
	}
	if p.schema.Kind != KindObject {
		return ErrNotAnObject
	}

	p.lock.RLock()
	current, _ := p.value.(*orderedjson.Object)
	p.lock.RUnlock()

	updated := orderedjson.New()
	if current != nil {
		updated = current.Copy()
	}

	for _, name := range sortedKeys(fields) {
		if _, declared := p.schema.Field(name); !declared && len(p.schema.Fields) > 0 {
			return fmt.Errorf("%w: %s.%s", ErrUnknownField, p.name, name)
		}
		value, err := orderedjson.Normalize(fields[name])
		if err != nil {
			return err
		}
		updated.Set(name, value)
	}

	err := p.validate(updated)
	if err != nil {
		return err
	}

	err = p.put(updated)
	if err != nil {
		return err
	}

	p.lock.Lock()
	p.value = updated
	p.lock.Unlock()
	return nil
}

// Trigger sends a PUT without a body, as used by command objects.
func (p *Property) Trigger() error {
	if !p.Writable() {
		return ErrNotWritable
	}
	return p.send(nil)
}

func (p *Property) validate(value interface{}) error {
	err := p.schema.Validate(value)
	if err != nil {
		p.logger.Info("rejected-value", lager.Data{"reason": err.Error()})
		return fmt.Errorf("%w: %s", ErrInvalidValue, err)
	}
	return nil
}

func (p *Property) put(value interface{}) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return p.send(json.RawMessage(encoded))
}

func (p *Property) send(payload interface{}) error {
	result, err := p.commander.Command(http.MethodPut, p.objectName, payload)
	if err != nil {
		p.logger.Error("failed-to-put", err)
		return err
	}
	if !result.OK() {
		err = &viztools.UnexpectedStatusError{Expected: http.StatusOK, Result: result}
		p.logger.Error("failed-to-put", err)
		return err
	}
	return nil
}

func hasVerb(verbs []string, verb string) bool {
	for _, v := range verbs {
		if v == verb {
			return true
		}
	}
	return false
}

func copyValue(value interface{}) interface{} {
	switch v := value.(type) {
	case *orderedjson.Object:
		return v.Copy()
	case []interface{}:
		dup := make([]interface{}, len(v))
		for i, item := range v {
			dup[i] = copyValue(item)
		}
		return dup
	default:
		return v
	}
}
