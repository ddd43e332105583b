// Package fakemanager is an in-memory rendering resource manager for tests.
package fakemanager

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"code.cloudfoundry.org/lager/v3"
	"github.com/bluebrain/viztools"
	vhttp "github.com/bluebrain/viztools/http"
	"github.com/bluebrain/viztools/orderedjson"
	"github.com/tedsuo/rata"
)

const (
	APIVersion = "v1"
	CookieName = "sessionid"
)

type Session struct {
	ID         string
	RendererID string
	Owner      string
	Schedule   *viztools.ScheduleRequest

	statusPolls int
}

type Manager struct {
	logger      lager.Logger
	application *Application
	handler     http.Handler

	lock           sync.Mutex
	nextSessionID  int
	sessions       map[string]*Session
	configs        []*orderedjson.Object
	statusSequence []viztools.SessionStatus
	hostname       string
	port           string
	failures       map[string]int
	requests       map[string]int
}

// New builds a manager whose sessions forward object commands to
// application. The handler expects paths below the service path.
func New(logger lager.Logger, application *Application) (*Manager, error) {
	m := &Manager{
		logger:         logger.Session("fake-manager"),
		application:    application,
		sessions:       map[string]*Session{},
		statusSequence: []viztools.SessionStatus{viztools.SessionRunning},
		hostname:       "localhost",
		port:           "5000",
		failures:       map[string]int{},
		requests:       map[string]int{},
	}

	handlers := rata.Handlers{
		vhttp.CreateSession:    m.wrap(vhttp.CreateSession, m.createSession),
		vhttp.DeleteSession:    m.wrap(vhttp.DeleteSession, m.deleteSession),
		vhttp.ScheduleSession:  m.wrap(vhttp.ScheduleSession, m.withSession(m.scheduleSession)),
		vhttp.GetSessionStatus: m.wrap(vhttp.GetSessionStatus, m.withSession(m.sessionStatus)),
		vhttp.GetSessionLog:    m.wrap(vhttp.GetSessionLog, m.withSession(m.sessionLog)),
		vhttp.GetSessionJob:    m.wrap(vhttp.GetSessionJob, m.withSession(m.sessionJob)),
		vhttp.GetImageFeed:     m.wrap(vhttp.GetImageFeed, m.withSession(m.imageFeed)),
		vhttp.ListSessions:     m.wrap(vhttp.ListSessions, m.listSessionsOrCommand),
		vhttp.SessionCommand:   m.wrap(vhttp.SessionCommand, m.withSession(m.sessionCommand)),

		vhttp.CreateConfig: m.wrap(vhttp.CreateConfig, m.createConfig),
		vhttp.UpdateConfig: m.wrap(vhttp.UpdateConfig, m.updateConfig),
		vhttp.ListConfigs:  m.wrap(vhttp.ListConfigs, m.listConfigs),
		vhttp.DeleteConfig: m.wrap(vhttp.DeleteConfig, m.deleteConfig),
	}

	router, err := rata.NewRouter(vhttp.Routes, handlers)
	if err != nil {
		return nil, err
	}

	m.handler = http.StripPrefix(vhttp.ServicePath(APIVersion), router)
	return m, nil
}

func (m *Manager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

// SetStatusSequence sets the codes returned by successive status polls of a
// session. The last code repeats.
func (m *Manager) SetStatusSequence(codes ...viztools.SessionStatus) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.statusSequence = codes
}

func (m *Manager) SetEndpoint(hostname, port string) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.hostname = hostname
	m.port = port
}

// FailNext makes the next request to the named route answer statusCode.
func (m *Manager) FailNext(routeName string, statusCode int) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.failures[routeName] = statusCode
}

func (m *Manager) RequestCount(routeName string) int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.requests[routeName]
}

func (m *Manager) Sessions() []Session {
	m.lock.Lock()
	defer m.lock.Unlock()

	sessions := []Session{}
	for id := 1; id <= m.nextSessionID; id++ {
		if session, ok := m.sessions[strconv.Itoa(id)]; ok {
			sessions = append(sessions, *session)
		}
	}
	return sessions
}

func (m *Manager) AddConfig(config *orderedjson.Object) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.configs = append(m.configs, config)
}

func (m *Manager) Config(id string) (*orderedjson.Object, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()

	index := m.findConfig(id)
	if index < 0 {
		return nil, false
	}
	return m.configs[index].Copy(), true
}

func (m *Manager) wrap(routeName string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestLog := m.logger.Session("request", lager.Data{
			"route":   routeName,
			"method":  r.Method,
			"request": r.URL.String(),
		})
		requestLog.Debug("serving")

		m.lock.Lock()
		m.requests[routeName]++
		failure, failing := m.failures[routeName]
		delete(m.failures, routeName)
		m.lock.Unlock()

		if failing {
			requestLog.Info("injected-failure", lager.Data{"status": failure})
			http.Error(w, "injected failure", failure)
			return
		}

		handler(w, r)
		requestLog.Debug("done")
	}
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, session *Session)

func (m *Manager) withSession(handler sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := m.lookupSession(r)
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		handler(w, r, session)
	}
}

func (m *Manager) lookupSession(r *http.Request) (*Session, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, false
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	session, ok := m.sessions[cookie.Value]
	return session, ok
}

func (m *Manager) createSession(w http.ResponseWriter, r *http.Request) {
	request := viztools.CreateSessionRequest{}
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil || request.RendererID == "" {
		http.Error(w, "invalid session request", http.StatusBadRequest)
		return
	}

	m.lock.Lock()
	m.nextSessionID++
	session := &Session{
		ID:         strconv.Itoa(m.nextSessionID),
		RendererID: request.RendererID,
		Owner:      request.Owner,
	}
	m.sessions[session.ID] = session
	m.lock.Unlock()

	http.SetCookie(w, &http.Cookie{Name: CookieName, Value: session.ID, Path: "/"})
	w.WriteHeader(http.StatusCreated)
	w.Write([]byte("Session created"))
}

func (m *Manager) deleteSession(w http.ResponseWriter, r *http.Request) {
	session, ok := m.lookupSession(r)
	if !ok {
		http.Error(w, "session not found", http.StatusBadRequest)
		return
	}

	m.lock.Lock()
	delete(m.sessions, session.ID)
	m.lock.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"contents": "Session deleted"})
}

func (m *Manager) scheduleSession(w http.ResponseWriter, r *http.Request, session *Session) {
	request := viztools.ScheduleRequest{}
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		http.Error(w, "invalid schedule request", http.StatusBadRequest)
		return
	}

	m.lock.Lock()
	session.Schedule = &request
	m.lock.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"contents": "Job scheduled"})
}

func (m *Manager) sessionStatus(w http.ResponseWriter, r *http.Request, session *Session) {
	m.lock.Lock()
	index := session.statusPolls
	session.statusPolls++
	if index >= len(m.statusSequence) {
		index = len(m.statusSequence) - 1
	}
	code := m.statusSequence[index]
	hostname, port := m.hostname, m.port
	scheduled := session.Schedule != nil
	m.lock.Unlock()

	if !scheduled {
		code = viztools.SessionStopped
	}

	status := orderedjson.New()
	status.Set("code", int(code))
	if code == viztools.SessionRunning {
		status.Set("hostname", hostname)
		status.Set("port", port)
	}
	writeJSON(w, http.StatusOK, status)
}

func (m *Manager) sessionLog(w http.ResponseWriter, r *http.Request, session *Session) {
	writeJSON(w, http.StatusOK, map[string]string{
		"contents": "session " + session.ID + " running " + session.RendererID,
	})
}

func (m *Manager) sessionJob(w http.ResponseWriter, r *http.Request, session *Session) {
	job := orderedjson.New()
	job.Set("id", session.ID)
	job.Set("renderer_id", session.RendererID)
	job.Set("owner", session.Owner)
	writeJSON(w, http.StatusOK, job)
}

func (m *Manager) imageFeed(w http.ResponseWriter, r *http.Request, session *Session) {
	writeJSON(w, http.StatusOK, map[string]string{
		"uri": "http://" + r.Host + "/image_streaming_feed/" + session.ID,
	})
}

// GET below the session prefix lists the sessions when nothing follows the
// prefix and reads an application object otherwise.
func (m *Manager) listSessionsOrCommand(w http.ResponseWriter, r *http.Request) {
	objectPath := strings.TrimPrefix(r.URL.Path, "/"+vhttp.SessionPrefix)
	if objectPath != "" {
		m.withSession(m.sessionCommand)(w, r)
		return
	}

	sessions := []interface{}{}
	for _, session := range m.Sessions() {
		entry := orderedjson.New()
		entry.Set("id", session.ID)
		entry.Set("renderer_id", session.RendererID)
		entry.Set("owner", session.Owner)
		sessions = append(sessions, entry)
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (m *Manager) sessionCommand(w http.ResponseWriter, r *http.Request, session *Session) {
	if m.application == nil {
		http.Error(w, "no application", http.StatusNotFound)
		return
	}
	m.application.Handle(w, r, strings.TrimPrefix(r.URL.Path, "/"+vhttp.SessionPrefix))
}

func (m *Manager) createConfig(w http.ResponseWriter, r *http.Request) {
	config, ok := decodeConfig(w, r)
	if !ok {
		return
	}
	id, _ := config.String("id")

	m.lock.Lock()
	defer m.lock.Unlock()

	if m.findConfig(id) >= 0 {
		http.Error(w, "configuration "+id+" already exists", http.StatusConflict)
		return
	}
	m.configs = append(m.configs, config)

	w.WriteHeader(http.StatusCreated)
	w.Write([]byte("Configuration created"))
}

func (m *Manager) updateConfig(w http.ResponseWriter, r *http.Request) {
	config, ok := decodeConfig(w, r)
	if !ok {
		return
	}
	id, _ := config.String("id")

	m.lock.Lock()
	defer m.lock.Unlock()

	index := m.findConfig(id)
	if index < 0 {
		http.Error(w, "configuration "+id+" not found", http.StatusNotFound)
		return
	}
	m.configs[index] = config

	writeJSON(w, http.StatusOK, map[string]string{"contents": "Configuration updated"})
}

func (m *Manager) listConfigs(w http.ResponseWriter, r *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	configs := make([]interface{}, len(m.configs))
	for i, config := range m.configs {
		configs[i] = config
	}
	writeJSON(w, http.StatusOK, configs)
}

func (m *Manager) deleteConfig(w http.ResponseWriter, r *http.Request) {
	config, ok := decodeConfig(w, r)
	if !ok {
		return
	}
	id, _ := config.String("id")

	m.lock.Lock()
	defer m.lock.Unlock()

	index := m.findConfig(id)
	if index < 0 {
		http.Error(w, "configuration "+id+" not found", http.StatusNotFound)
		return
	}
	m.configs = append(m.configs[:index], m.configs[index+1:]...)

	writeJSON(w, http.StatusOK, map[string]string{"contents": "Configuration deleted"})
}

func (m *Manager) findConfig(id string) int {
	for i, config := range m.configs {
		if configID, _ := config.String("id"); configID == id {
			return i
		}
	}
	return -1
}

func decodeConfig(w http.ResponseWriter, r *http.Request) (*orderedjson.Object, bool) {
	config := orderedjson.New()
	err := json.NewDecoder(r.Body).Decode(config)
	if err != nil {
		http.Error(w, "invalid configuration", http.StatusBadRequest)
		return nil, false
	}

	if id, _ := config.String("id"); id == "" {
		http.Error(w, "configuration id missing", http.StatusBadRequest)
		return nil, false
	}

	return config, true
}
