package allocator

import (
	"encoding/json"
	"net/http"

	"code.cloudfoundry.org/lager/v3"
	"github.com/bluebrain/viztools"
	"github.com/bluebrain/viztools/orderedjson"
)

// ConfigCreate registers a new renderer configuration with the manager.
func (a *Allocator) ConfigCreate(payload interface{}) (viztools.Result, error) {
	return a.configRequest(http.MethodPost, payload)
}

func (a *Allocator) ConfigUpdate(payload interface{}) (viztools.Result, error) {
	if configID(payload) == "" {
		return viztools.Result{}, viztools.ErrMissingConfigID
	}
	return a.configRequest(http.MethodPut, payload)
}

func (a *Allocator) ConfigList() (viztools.Result, error) {
	return a.configRequest(http.MethodGet, nil)
}

func (a *Allocator) ConfigDelete(payload interface{}) (viztools.Result, error) {
	if configID(payload) == "" {
		return viztools.Result{}, viztools.ErrMissingConfigID
	}
	return a.configRequest(http.MethodDelete, payload)
}

// FindConfig lists the configurations known to the manager and returns the
// first one whose id matches.
func (a *Allocator) FindConfig(id string) (*orderedjson.Object, bool, error) {
	logger := a.logger.Session("find-config", lager.Data{"id": id})

	result, err := a.ConfigList()
	if err != nil {
		logger.Error("failed-to-list-configs", err)
		return nil, false, err
	}

	if !result.OK() {
		logger.Info("config-list-unavailable", lager.Data{"status": result.Code})
		return nil, false, &viztools.UnexpectedStatusError{Expected: http.StatusOK, Result: result}
	}

	configs, ok := result.List()
	if !ok {
		return nil, false, viztools.ErrMalformedResponse
	}

	for _, entry := range configs {
		config, ok := entry.(*orderedjson.Object)
		if !ok {
			continue
		}
		if configID(config) == id {
			return config, true, nil
		}
	}

	return nil, false, nil
}

func (a *Allocator) configRequest(method string, payload interface{}) (viztools.Result, error) {
	return a.checkStatus(a.transport.Request(method, a.configURL, payload, "", a.cookies))
}

func configID(payload interface{}) string {
	if obj, ok := payload.(*orderedjson.Object); ok {
		id, _ := obj.String("id")
		return id
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return ""
	}

	record := struct {
		ID interface{} `json:"id"`
	}{}
	if err := json.Unmarshal(encoded, &record); err != nil {
		return ""
	}

	id, _ := record.ID.(string)
	return id
}
