package allocator

import (
	"net/http"

	"code.cloudfoundry.org/lager/v3"
	"github.com/bluebrain/viztools"
)

// checkStatus passes results through unless the remote reported a server
// error, in which case the session is released before failing.
func (a *Allocator) checkStatus(result viztools.Result, err error) (viztools.Result, error) {
	if err != nil {
		return result, err
	}

	if result.Code == http.StatusOK || result.Code < http.StatusInternalServerError {
		return result, nil
	}

	logger := a.logger.Session("remote-failure", lager.Data{
		"status":      result.Code,
		"has-session": a.hasSession,
	})
	logger.Info("releasing-session")

	if _, deleteErr := a.DeleteSession(); deleteErr != nil {
		logger.Error("failed-to-release-session", deleteErr)
	}

	return result, &viztools.RemoteFailure{Code: result.Code, Contents: result.Contents}
}
