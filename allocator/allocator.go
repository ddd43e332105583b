package allocator

import (
	"net/http"
	"strings"
	"time"

	"code.cloudfoundry.org/clock"
	loggingclient "code.cloudfoundry.org/diego-logging-client"
	"code.cloudfoundry.org/lager/v3"
	"github.com/bluebrain/viztools"
	"github.com/bluebrain/viztools/event"
	"github.com/bluebrain/viztools/guidgen"
	vhttp "github.com/bluebrain/viztools/http"
)

const (
	DefaultAllocatorURL = "https://visualization-dev.humanbrainproject.eu/viz"
	DefaultAPIVersion   = "v1"
	DefaultOwner        = "viztools"
	DefaultMaxAttempts  = 5
	DefaultPollInterval = time.Second
	DefaultStreamerURI  = "https://visualization-dev.humanbrainproject.eu/viz/image-streaming-service/v1/image_streaming_feed/demo"

	ResourceAllocationDuration = "ResourceAllocationDuration"
	ResourceAllocationFailures = "ResourceAllocationFailures"
)

// Config selects between direct mode, where ResourceURL names an already
// running application, and managed mode, where a session is allocated through
// the rendering resource manager at ServiceURL.
type Config struct {
	ServiceURL   string
	APIVersion   string
	ResourceURL  string
	Owner        string
	Settings     viztools.AllocationSettings
	MaxAttempts  int
	PollInterval time.Duration
	StreamerURI  string
}

func DefaultConfig() Config {
	return Config{
		ServiceURL:   DefaultAllocatorURL,
		APIVersion:   DefaultAPIVersion,
		Owner:        DefaultOwner,
		Settings:     viztools.DefaultAllocationSettings(),
		MaxAttempts:  DefaultMaxAttempts,
		PollInterval: DefaultPollInterval,
		StreamerURI:  DefaultStreamerURI,
	}
}

// Allocator drives one rendering session through its lifecycle. It is not
// safe for concurrent use.
type Allocator struct {
	logger        lager.Logger
	transport     viztools.Transport
	clock         clock.Clock
	metronClient  loggingclient.IngressClient
	hub           event.Hub
	guidGenerator guidgen.Generator

	owner        string
	settings     viztools.AllocationSettings
	maxAttempts  int
	pollInterval time.Duration
	streamerURI  string

	resourceURL string
	sessionURL  string
	configURL   string

	hasSession  bool
	cookies     []*http.Cookie
	resolvedURL string
	endpoint    string
	state       viztools.SessionState
}

// New builds an allocator. metronClient and hub are optional.
func New(
	logger lager.Logger,
	config Config,
	transport viztools.Transport,
	clock clock.Clock,
	metronClient loggingclient.IngressClient,
	hub event.Hub,
) *Allocator {
	defaults := DefaultConfig()
	if config.APIVersion == "" {
		config.APIVersion = defaults.APIVersion
	}
	if config.Owner == "" {
		config.Owner = defaults.Owner
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.StreamerURI == "" {
		config.StreamerURI = defaults.StreamerURI
	}
	if config.Settings == (viztools.AllocationSettings{}) {
		config.Settings = defaults.Settings
	}

	a := &Allocator{
		logger:        logger.Session("allocator"),
		transport:     transport,
		clock:         clock,
		metronClient:  metronClient,
		hub:           hub,
		guidGenerator: guidgen.Allocations,

		owner:        config.Owner,
		settings:     config.Settings,
		maxAttempts:  config.MaxAttempts,
		pollInterval: config.PollInterval,
		streamerURI:  config.StreamerURI,

		state: viztools.StateEmpty,
	}

	if config.ResourceURL != "" {
		resourceURL := config.ResourceURL
		if !strings.Contains(resourceURL, "://") {
			resourceURL = "http://" + resourceURL
		}
		a.resourceURL = strings.TrimRight(resourceURL, "/")
		a.sessionURL = a.resourceURL + "/"
		a.configURL = a.sessionURL
	} else {
		serviceURL := config.ServiceURL
		if serviceURL == "" {
			serviceURL = defaults.ServiceURL
		}
		service := vhttp.ServiceURL(serviceURL, config.APIVersion)
		a.sessionURL = vhttp.SessionURL(service)
		a.configURL = vhttp.ConfigURL(service)
	}

	return a
}

func (a *Allocator) Direct() bool {
	return a.resourceURL != ""
}

func (a *Allocator) State() viztools.SessionState {
	return a.state
}

func (a *Allocator) SessionURL() string {
	return a.sessionURL
}

func (a *Allocator) ConfigURL() string {
	return a.configURL
}

// Endpoint is the hostname:port reported by the last running status poll.
func (a *Allocator) Endpoint() string {
	return a.endpoint
}

func (a *Allocator) HasSession() bool {
	return a.hasSession
}

func (a *Allocator) Settings() viztools.AllocationSettings {
	return a.settings
}

// EditSettings applies the known keys of overrides and returns the new
// settings along with the keys that were ignored.
func (a *Allocator) EditSettings(overrides map[string]interface{}) (viztools.AllocationSettings, []string, error) {
	logger := a.logger.Session("edit-settings")

	edited, ignored, err := a.settings.Apply(overrides)
	if err != nil {
		logger.Error("failed-to-apply-settings", err)
		return a.settings, ignored, err
	}

	if len(ignored) > 0 {
		logger.Info("ignored-unknown-settings", lager.Data{"keys": ignored})
	}

	a.settings = edited
	return a.settings, ignored, nil
}

// Resolve returns the base URL of a running session, allocating one through
// the manager in managed mode.
func (a *Allocator) Resolve() (string, error) {
	if a.Direct() {
		a.setState(viztools.StateRunning)
		return a.resourceURL, nil
	}

	if a.state == viztools.StateRunning && a.resolvedURL != "" {
		return a.resolvedURL, nil
	}

	logger := a.logger.Session("resolve", lager.Data{
		"allocation-guid": a.guidGenerator.Guid(a.logger),
		"renderer":        a.settings.Renderer,
	})
	logger.Info("starting")

	startTime := a.clock.Now()
	url, err := a.allocate(logger)
	if err != nil {
		logger.Error("failed-to-allocate", err)
		if a.hasSession {
			if _, deleteErr := a.DeleteSession(); deleteErr != nil {
				logger.Error("failed-to-release-session", deleteErr)
			}
		}
		a.setState(viztools.StateFailed)
		a.incrementFailures(logger)
		return "", err
	}

	a.sendDuration(logger, a.clock.Since(startTime))
	logger.Info("finished", lager.Data{"url": url, "endpoint": a.endpoint})
	return url, nil
}

func (a *Allocator) allocate(logger lager.Logger) (string, error) {
	result, err := a.CreateSession(viztools.CreateSessionRequest{
		RendererID: a.settings.Renderer,
		Owner:      a.owner,
	})
	if err != nil {
		return "", viztools.NewAllocationError("create", err)
	}
	if result.Code != http.StatusCreated {
		return "", viztools.NewAllocationError("create", &viztools.UnexpectedStatusError{Expected: http.StatusCreated, Result: result})
	}
	logger.Info("session-created")

	result, err = a.Schedule(viztools.NewScheduleRequest(a.settings))
	if err != nil {
		return "", viztools.NewAllocationError("schedule", err)
	}
	if !result.OK() {
		return "", viztools.NewAllocationError("schedule", &viztools.UnexpectedStatusError{Expected: http.StatusOK, Result: result})
	}
	a.setState(viztools.StateScheduled)
	logger.Info("session-scheduled")

	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		result, err = a.Status()
		if err != nil {
			return "", viztools.NewAllocationError("status", err)
		}

		if status, running := runningStatus(result); running {
			a.endpoint = status.Endpoint()
			a.resolvedURL = a.sessionURL
			a.setState(viztools.StateRunning)
			return a.resolvedURL, nil
		}

		logger.Info("waiting-for-session", lager.Data{
			"attempt":      attempt,
			"max-attempts": a.maxAttempts,
			"status-code":  result.Code,
			"status":       result.Text(),
		})
		a.clock.Sleep(a.pollInterval)
	}

	return "", viztools.NewAllocationError("status", viztools.ErrResourceNotRunning)
}

func runningStatus(result viztools.Result) (viztools.StatusResponse, bool) {
	status := viztools.StatusResponse{}
	if !result.OK() {
		return status, false
	}

	err := result.Decode(&status)
	if err != nil {
		return status, false
	}

	return status, status.Code == viztools.SessionRunning
}

// Free releases the session if one is held. It never fails in direct mode.
func (a *Allocator) Free() error {
	if !a.hasSession {
		return nil
	}

	_, err := a.DeleteSession()
	return err
}

// CreateSession asks the manager for a new session and keeps the returned
// cookies. A session already held is deleted first.
func (a *Allocator) CreateSession(request viztools.CreateSessionRequest) (viztools.Result, error) {
	if a.hasSession {
		result, err := a.DeleteSession()
		if err != nil {
			return result, err
		}
	}

	result, err := a.checkStatus(a.transport.Request(http.MethodPost, a.sessionURL, request, "", nil))
	if err != nil {
		return result, err
	}

	if result.Code == http.StatusCreated {
		a.hasSession = true
		a.cookies = result.Cookies
		a.setState(viztools.StateCreated)
	}

	return result, nil
}

// DeleteSession deletes the session on the manager. The local session state
// is cleared whatever the outcome.
func (a *Allocator) DeleteSession() (viztools.Result, error) {
	if a.Direct() {
		return viztools.Result{}, viztools.ErrNoSession
	}

	logger := a.logger.Session("delete-session", lager.Data{"has-session": a.hasSession})

	cookies := a.cookies
	a.hasSession = false
	a.cookies = nil
	a.resolvedURL = ""
	a.endpoint = ""
	a.setState(viztools.StateStopped)

	result, err := a.transport.Request(http.MethodDelete, a.sessionURL, nil, "", cookies)
	if err != nil {
		logger.Error("failed-to-delete-session", err)
		return result, err
	}

	logger.Info("deleted", lager.Data{"status": result.Code})
	return result, nil
}

func (a *Allocator) ListSessions() (viztools.Result, error) {
	return a.checkStatus(a.transport.Request(http.MethodGet, a.sessionURL, nil, "", a.cookies))
}

func (a *Allocator) Schedule(request viztools.ScheduleRequest) (viztools.Result, error) {
	return a.sessionRequest(http.MethodPut, vhttp.SchedulePath, request)
}

func (a *Allocator) Status() (viztools.Result, error) {
	return a.sessionRequest(http.MethodGet, vhttp.StatusPath, nil)
}

func (a *Allocator) Log() (viztools.Result, error) {
	return a.sessionRequest(http.MethodGet, vhttp.LogPath, nil)
}

func (a *Allocator) Job() (viztools.Result, error) {
	return a.sessionRequest(http.MethodGet, vhttp.JobPath, nil)
}

// StreamingURL returns the image feed of the session, or the configured
// streamer when no session is held.
func (a *Allocator) StreamingURL() (viztools.Result, error) {
	if !a.hasSession {
		return viztools.NewResult(http.StatusOK, map[string]string{"uri": a.streamerURI}, nil), nil
	}
	return a.sessionRequest(http.MethodGet, vhttp.ImageFeedPath, nil)
}

// Command sends method to the named object of the remote application.
func (a *Allocator) Command(method, objectName string, payload interface{}) (viztools.Result, error) {
	return a.sessionRequest(method, objectName, payload)
}

// Query reads the named object without the status check: a server error is
// returned as a result and the session is kept.
func (a *Allocator) Query(objectName string) (viztools.Result, error) {
	if !a.Direct() && !a.hasSession {
		return viztools.Result{}, viztools.ErrNoSession
	}

	return a.transport.Request(http.MethodGet, a.sessionURL, nil, objectName, a.cookies)
}

func (a *Allocator) sessionRequest(method, subpath string, payload interface{}) (viztools.Result, error) {
	if !a.Direct() && !a.hasSession {
		return viztools.Result{}, viztools.ErrNoSession
	}

	return a.checkStatus(a.transport.Request(method, a.sessionURL, payload, subpath, a.cookies))
}

func (a *Allocator) setState(state viztools.SessionState) {
	if a.state == state {
		return
	}

	previous := a.state
	a.state = state

	if a.hub != nil {
		a.hub.Emit(event.NewSessionStateChangedEvent(a.sessionURL, previous, state))
	}
}

func (a *Allocator) sendDuration(logger lager.Logger, duration time.Duration) {
	if a.metronClient == nil {
		return
	}

	err := a.metronClient.SendDuration(ResourceAllocationDuration, duration)
	if err != nil {
		logger.Error("failed-to-send-allocation-duration-metric", err)
	}
}

func (a *Allocator) incrementFailures(logger lager.Logger) {
	if a.metronClient == nil {
		return
	}

	err := a.metronClient.IncrementCounter(ResourceAllocationFailures)
	if err != nil {
		logger.Error("failed-to-increment-allocation-failures", err)
	}
}
