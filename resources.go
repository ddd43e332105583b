package viztools

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/bluebrain/viztools/orderedjson"
)

type SessionState string

const (
	StateEmpty     SessionState = "empty"
	StateCreated   SessionState = "created"
	StateScheduled SessionState = "scheduled"
	StateRunning   SessionState = "running"
	StateFailed    SessionState = "failed"
	StateStopped   SessionState = "stopped"
)

// SessionStatus is the job status code reported by the manager's status
// endpoint.
type SessionStatus int

const (
	SessionStopped SessionStatus = iota
	SessionScheduling
	SessionScheduled
	SessionGettingHostname
	SessionStarting
	SessionRunning
	SessionStopping
	SessionFailed
)

var sessionStatusNames = []string{
	"STOPPED",
	"SCHEDULING",
	"SCHEDULED",
	"GETTING_HOSTNAME",
	"STARTING",
	"RUNNING",
	"STOPPING",
	"FAILED",
}

func (s SessionStatus) String() string {
	if s < 0 || int(s) >= len(sessionStatusNames) {
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
	return sessionStatusNames[s]
}

// Result is the outcome of one HTTP call. It is never mutated once built.
type Result struct {
	Code     int
	Contents interface{}
	Cookies  []*http.Cookie
}

func NewResult(code int, contents interface{}, cookies []*http.Cookie) Result {
	return Result{Code: code, Contents: contents, Cookies: cookies}
}

func (r Result) OK() bool {
	return r.Code == http.StatusOK
}

func (r Result) Object() (*orderedjson.Object, bool) {
	obj, ok := r.Contents.(*orderedjson.Object)
	return obj, ok && obj != nil
}

func (r Result) List() ([]interface{}, bool) {
	list, ok := r.Contents.([]interface{})
	return list, ok
}

// Text renders the contents as a string: raw bodies verbatim, structured
// contents as JSON.
func (r Result) Text() string {
	switch contents := r.Contents.(type) {
	case nil:
		return ""
	case string:
		return contents
	default:
		encoded, err := json.Marshal(contents)
		if err != nil {
			return fmt.Sprintf("%v", contents)
		}
		return string(encoded)
	}
}

// Decode copies structured contents into v.
func (r Result) Decode(v interface{}) error {
	encoded, err := json.Marshal(r.Contents)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, v)
}

type StatusResponse struct {
	Code     SessionStatus `json:"code"`
	Hostname string        `json:"hostname,omitempty"`
	Port     json.Number   `json:"port,omitempty"`
}

func (s StatusResponse) Endpoint() string {
	if s.Hostname == "" {
		return ""
	}
	if s.Port == "" {
		return s.Hostname
	}
	return s.Hostname + ":" + s.Port.String()
}

type CreateSessionRequest struct {
	RendererID string `json:"renderer_id"`
	Owner      string `json:"owner"`
}

type ScheduleRequest struct {
	Params              string `json:"params"`
	Environment         string `json:"environment"`
	Reservation         string `json:"reservation"`
	ExclusiveAllocation bool   `json:"exclusive_allocation"`
	NbNodes             int    `json:"nb_nodes"`
	NbCPUs              int    `json:"nb_cpus"`
	NbGPUs              int    `json:"nb_gpus"`
	AllocationTime      string `json:"allocation_time"`
}

func NewScheduleRequest(settings AllocationSettings) ScheduleRequest {
	return ScheduleRequest{
		Reservation:         settings.Reservation,
		ExclusiveAllocation: settings.ExclusiveAllocation,
		NbNodes:             settings.NbNodes,
		NbCPUs:              settings.NbCPUs,
		NbGPUs:              settings.NbGPUs,
		AllocationTime:      settings.AllocationTime,
	}
}

type AllocationSettings struct {
	Renderer            string `json:"renderer"`
	ExclusiveAllocation bool   `json:"exclusive_allocation"`
	NbNodes             int    `json:"nb_nodes"`
	NbCPUs              int    `json:"nb_cpus"`
	NbGPUs              int    `json:"nb_gpus"`
	AllocationTime      string `json:"allocation_time"`
	Reservation         string `json:"reservation"`
}

func DefaultAllocationSettings() AllocationSettings {
	return AllocationSettings{
		Renderer:       "brayns",
		NbNodes:        1,
		NbCPUs:         8,
		NbGPUs:         1,
		AllocationTime: "1:00:00",
	}
}

// Apply returns a copy of the settings with the known keys of overrides
// applied, plus the sorted list of keys that were not recognised. On error
// the receiver is returned unchanged.
func (s AllocationSettings) Apply(overrides map[string]interface{}) (AllocationSettings, []string, error) {
	encoded, err := json.Marshal(s)
	if err != nil {
		return s, nil, err
	}

	current := map[string]interface{}{}
	err = json.Unmarshal(encoded, &current)
	if err != nil {
		return s, nil, err
	}

	ignored := []string{}
	for key, value := range overrides {
		if _, ok := current[key]; !ok {
			ignored = append(ignored, key)
			continue
		}
		current[key] = value
	}
	sort.Strings(ignored)

	encoded, err = json.Marshal(current)
	if err != nil {
		return s, ignored, err
	}

	edited := AllocationSettings{}
	err = json.Unmarshal(encoded, &edited)
	if err != nil {
		return s, ignored, fmt.Errorf("invalid allocation settings: %w", err)
	}

	return edited, ignored, nil
}
