package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"code.cloudfoundry.org/lager/v3"
	"github.com/bluebrain/viztools"
	"github.com/bluebrain/viztools/orderedjson"
)

var errBadGateway = errors.New("502 bad gateway")

func New(logger lager.Logger, httpClient *http.Client) viztools.Transport {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &transport{
		logger:     logger.Session("transport"),
		httpClient: httpClient,
	}
}

type transport struct {
	logger     lager.Logger
	httpClient *http.Client
}

func (t *transport) Request(method, url string, body interface{}, subpath string, cookies []*http.Cookie) (viztools.Result, error) {
	fullURL := url + subpath
	logger := t.logger.Session("request", lager.Data{
		"method": method,
		"url":    fullURL,
	})

	if !viztools.SupportedMethod(method) {
		logger.Error("unsupported-method", viztools.ErrUnsupportedMethod)
		return viztools.Result{}, viztools.ErrUnsupportedMethod
	}

	reader, err := encodeBody(method, body)
	if err != nil {
		logger.Error("failed-to-encode-body", err)
		return viztools.Result{}, err
	}

	request, err := http.NewRequest(method, fullURL, reader)
	if err != nil {
		logger.Error("failed-to-build-request", err)
		return viztools.Result{}, &viztools.ConnectivityError{URL: fullURL, Err: err}
	}

	if reader != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}

	response, err := t.httpClient.Do(request)
	if err != nil {
		logger.Error("failed-to-connect", err)
		return viztools.Result{}, &viztools.ConnectivityError{URL: fullURL, Err: err}
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusBadGateway {
		logger.Error("bad-gateway", errBadGateway)
		return viztools.Result{}, &viztools.ConnectivityError{URL: fullURL, Err: errBadGateway}
	}

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		logger.Error("failed-to-read-response", err)
		return viztools.Result{}, &viztools.ConnectivityError{URL: fullURL, Err: err}
	}

	contents, err := decodeContents(response.StatusCode, payload)
	if err != nil {
		logger.Error("failed-to-parse-response", err, lager.Data{"status": response.StatusCode})
		return viztools.Result{}, err
	}

	logger.Debug("done", lager.Data{"status": response.StatusCode})

	return viztools.NewResult(response.StatusCode, contents, response.Cookies()), nil
}

func encodeBody(method string, body interface{}) (io.Reader, error) {
	if method == http.MethodGet {
		return nil, nil
	}

	switch b := body.(type) {
	case nil:
		return nil, nil
	case string:
		if b == "" {
			return nil, nil
		}
		return strings.NewReader(b), nil
	case []byte:
		if len(b) == 0 {
			return nil, nil
		}
		return bytes.NewReader(b), nil
	case json.RawMessage:
		if len(b) == 0 {
			return nil, nil
		}
		return bytes.NewReader(b), nil
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(encoded), nil
	}
}

func decodeContents(statusCode int, payload []byte) (interface{}, error) {
	if len(payload) == 0 {
		return "", nil
	}

	if statusCode != http.StatusOK {
		return string(payload), nil
	}

	contents, err := orderedjson.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", viztools.ErrMalformedResponse, err)
	}

	return contents, nil
}
