package viztools

import "net/http"

//go:generate counterfeiter -o fakes/fake_transport.go . Transport

// Transport issues a single HTTP request against the rendering resource
// manager or a directly reachable application.
type Transport interface {
	Request(method, url string, body interface{}, subpath string, cookies []*http.Cookie) (Result, error)
}

//go:generate counterfeiter -o fakes/fake_session_commander.go . SessionCommander

// SessionCommander is the view of an allocated session used by the property
// binder.
type SessionCommander interface {
	Resolve() (string, error)
	Command(method, objectName string, payload interface{}) (Result, error)
	Status() (Result, error)
	Log() (Result, error)
	StreamingURL() (Result, error)
	Free() error
	Direct() bool
	SessionURL() string
}

const (
	MethodGet    = http.MethodGet
	MethodPut    = http.MethodPut
	MethodPost   = http.MethodPost
	MethodDelete = http.MethodDelete
)

func SupportedMethod(method string) bool {
	switch method {
	case MethodGet, MethodPut, MethodPost, MethodDelete:
		return true
	}
	return false
}
