package fakemanager

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	vhttp "github.com/bluebrain/viztools/http"
	"github.com/bluebrain/viztools/orderedjson"
)

// Application imitates a rendering application serving its objects over
// HTTP: GET registry, GET <object>/schema, GET and PUT <object>.
type Application struct {
	lock    sync.Mutex
	objects map[string]*object
	order   []string
	puts    map[string][]string
	rejects map[string]int
}

type object struct {
	verbs  []string
	schema string
	value  string
}

func NewApplication() *Application {
	return &Application{
		objects: map[string]*object{},
		puts:    map[string][]string{},
		rejects: map[string]int{},
	}
}

// AddObject exposes an object. An empty schema makes the schema endpoint
// answer 404.
func (a *Application) AddObject(name string, verbs []string, schema, value string) {
	a.lock.Lock()
	defer a.lock.Unlock()

	if _, ok := a.objects[name]; !ok {
		a.order = append(a.order, name)
	}
	a.objects[name] = &object{verbs: verbs, schema: schema, value: value}
}

func (a *Application) SetValue(name, value string) {
	a.lock.Lock()
	defer a.lock.Unlock()

	if obj, ok := a.objects[name]; ok {
		obj.value = value
	}
}

func (a *Application) Value(name string) string {
	a.lock.Lock()
	defer a.lock.Unlock()

	if obj, ok := a.objects[name]; ok {
		return obj.value
	}
	return ""
}

// Puts returns the bodies received by PUT for the object, oldest first.
func (a *Application) Puts(name string) []string {
	a.lock.Lock()
	defer a.lock.Unlock()

	return append([]string{}, a.puts[name]...)
}

// RejectPuts makes every PUT to the object answer statusCode without
// changing its value.
func (a *Application) RejectPuts(name string, statusCode int) {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.rejects[name] = statusCode
}

func (a *Application) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.Handle(w, r, strings.TrimPrefix(r.URL.Path, "/"))
}

func (a *Application) Handle(w http.ResponseWriter, r *http.Request, objectPath string) {
	a.lock.Lock()
	defer a.lock.Unlock()

	if objectPath == vhttp.RegistryPath && r.Method == http.MethodGet {
		registry := orderedjson.New()
		for _, name := range a.order {
			registry.Set(name, a.objects[name].verbs)
		}
		writeJSON(w, http.StatusOK, registry)
		return
	}

	if name := strings.TrimSuffix(objectPath, vhttp.SchemaSuffix); name != objectPath {
		obj, ok := a.objects[name]
		if !ok || obj.schema == "" || r.Method != http.MethodGet {
			http.Error(w, "no schema for "+name, http.StatusNotFound)
			return
		}
		writeRaw(w, http.StatusOK, obj.schema)
		return
	}

	obj, ok := a.objects[objectPath]
	if !ok || !allows(obj.verbs, r.Method) {
		http.Error(w, "no such object "+objectPath, http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeRaw(w, http.StatusOK, obj.value)
	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		a.puts[objectPath] = append(a.puts[objectPath], string(body))
		if code, rejected := a.rejects[objectPath]; rejected {
			http.Error(w, "rejected "+objectPath, code)
			return
		}
		if len(body) > 0 {
			obj.value = string(body)
		}
		w.WriteHeader(http.StatusOK)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func allows(verbs []string, method string) bool {
	for _, verb := range verbs {
		if verb == method {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, statusCode int, value interface{}) {
	encoded, err := json.Marshal(value)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeRaw(w, statusCode, string(encoded))
}

func writeRaw(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write([]byte(body))
}
