// Package application binds the objects a rendering application exposes over
// HTTP to typed properties, discovered at connection time from the
// application's registry and schemas.
package application

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"code.cloudfoundry.org/lager/v3"
	"github.com/bluebrain/viztools"
	vhttp "github.com/bluebrain/viztools/http"
)

const UnmanagedLogMessage = "Can only provide log output from applications launched with ResourceAllocator"

var ErrRegistryUnavailable = errors.New("failed to obtain registry from application")

// Application is a connected rendering application and the properties
// discovered on it.
type Application struct {
	logger    lager.Logger
	commander viztools.SessionCommander
	url       string

	properties map[string]*Property
	order      []string
	constants  map[string]string
	enums      map[string][]string
}

// Connect resolves the session behind commander and binds every object the
// application registers. Objects without a schema, or whose value cannot be
// read, are skipped.
func Connect(logger lager.Logger, commander viztools.SessionCommander) (*Application, error) {
	logger = logger.Session("application")
	connectLog := logger.Session("connect")
	connectLog.Info("starting")
	defer connectLog.Info("finished")

	url, err := commander.Resolve()
	if err != nil {
		connectLog.Error("failed-to-resolve", err)
		return nil, err
	}

	result, err := commander.Command(http.MethodGet, vhttp.RegistryPath, nil)
	if err != nil {
		connectLog.Error("failed-to-get-registry", err)
		return nil, err
	}
	registry, ok := result.Object()
	if !result.OK() || !ok {
		connectLog.Error("failed-to-get-registry", ErrRegistryUnavailable, lager.Data{"status": result.Code})
		return nil, ErrRegistryUnavailable
	}

	app := &Application{
		logger:     logger,
		commander:  commander,
		url:        url,
		properties: map[string]*Property{},
		constants:  map[string]string{},
		enums:      map[string][]string{},
	}

	for _, objectName := range registry.Keys() {
		entry, _ := registry.Get(objectName)
		err := app.bind(connectLog, objectName, verbsOf(entry))
		if err != nil {
			connectLog.Info("skipped-object", lager.Data{"object": objectName, "reason": err.Error()})
		}
	}

	connectLog.Info("bound-properties", lager.Data{"count": len(app.order), "url": url})
	return app, nil
}

func (a *Application) bind(logger lager.Logger, objectName string, verbs []string) error {
	result, err := a.commander.Command(http.MethodGet, vhttp.SchemaPath(objectName), nil)
	if err != nil {
		return err
	}
	raw, ok := result.Object()
	if !result.OK() || !ok {
		return fmt.Errorf("no schema (status %d)", result.Code)
	}

	schema, err := ParseSchema(objectName, raw)
	if err != nil {
		return err
	}

	property := newProperty(a.logger, a.commander, objectName, verbs, schema)
	if property.Readable() {
		err = property.Request()
		if err != nil {
			return err
		}
	}

	if schema.Kind == KindObject {
		a.addEnums(schema)
	}

	if _, exists := a.properties[property.Name()]; !exists {
		a.order = append(a.order, property.Name())
	}
	a.properties[property.Name()] = property

	logger.Debug("bound-property", lager.Data{
		"object":   objectName,
		"property": property.Name(),
		"kind":     schema.Kind.String(),
		"verbs":    verbs,
	})
	return nil
}

func (a *Application) addEnums(schema *Schema) {
	for _, enum := range schema.enumSchemas() {
		if enum.Title == "" {
			continue
		}
		a.enums[enum.Title] = append([]string{}, enum.Enum...)
		for _, value := range enum.Enum {
			a.constants[EnumConstantName(enum.Title, value)] = value
		}
	}
}

func verbsOf(entry interface{}) []string {
	verbs := []string{}
	switch v := entry.(type) {
	case []interface{}:
		for _, verb := range v {
			if s, ok := verb.(string); ok {
				verbs = append(verbs, strings.ToUpper(s))
			}
		}
	case string:
		verbs = append(verbs, strings.ToUpper(v))
	}
	return verbs
}

func (a *Application) URL() string {
	return a.url
}

// Properties returns the bound properties in registry order.
func (a *Application) Properties() []*Property {
	properties := make([]*Property, 0, len(a.order))
	for _, name := range a.order {
		properties = append(properties, a.properties[name])
	}
	return properties
}

func (a *Application) Property(name string) (*Property, bool) {
	property, ok := a.properties[name]
	return property, ok
}

// Constant looks up an enum constant such as COLOR_SCHEME_BY_ID.
func (a *Application) Constant(name string) (string, bool) {
	value, ok := a.constants[name]
	return value, ok
}

func (a *Application) Constants() []string {
	names := make([]string, 0, len(a.constants))
	for name := range a.constants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EnumValues returns the permitted values of the enum with the given title.
func (a *Application) EnumValues(title string) []string {
	return append([]string{}, a.enums[title]...)
}

// Describe reports the application version and where it runs.
func (a *Application) Describe() string {
	location := a.url

	result, err := a.commander.Status()
	if err == nil && result.OK() {
		status := viztools.StatusResponse{}
		if result.Decode(&status) == nil && status.Endpoint() != "" {
			location = "http://" + status.Endpoint()
		}
	}

	version := "unknown"
	if v, ok := a.Version(); ok {
		version = v.String()
	}

	return fmt.Sprintf("Application version %s running on %s", version, location)
}

// Log returns the output of the application. Only sessions allocated through
// the manager have one.
func (a *Application) Log() (string, error) {
	result, err := a.commander.Log()
	if err != nil {
		return "", err
	}
	if !result.OK() {
		return UnmanagedLogMessage, nil
	}

	log := struct {
		Contents *string `json:"contents"`
	}{}
	if result.Decode(&log) == nil && log.Contents != nil {
		return *log.Contents, nil
	}
	return result.Text(), nil
}

func (a *Application) Free() error {
	a.logger.Info("freeing", lager.Data{"url": a.url})
	return a.commander.Free()
}
