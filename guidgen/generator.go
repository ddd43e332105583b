package guidgen

import (
	"code.cloudfoundry.org/lager/v3"
	uuid "github.com/nu7hatch/gouuid"
)

var (
	// Allocations tags each Resolve attempt in the logs.
	Allocations = New("allocation")

	// Sessions names the sessions kept in a registry until shutdown.
	Sessions = New("session")
)

//go:generate counterfeiter -o fakeguidgen/fake_generator.go . Generator

// Generator hands out unique ids for rendering sessions and the allocation
// attempts that create them.
type Generator interface {
	Guid(lager.Logger) string
}

// New returns a generator whose ids read "<prefix>-<uuid>", so a registry key
// or a log line names what it identifies. An empty prefix yields bare uuids.
func New(prefix string) Generator {
	return &generator{prefix: prefix}
}

type generator struct {
	prefix string
}

func (g *generator) Guid(logger lager.Logger) string {
	guid, err := uuid.NewV4()
	if err != nil {
		logger.Fatal("failed-to-generate-guid", err, lager.Data{"prefix": g.prefix})
	}
	if g.prefix == "" {
		return guid.String()
	}
	return g.prefix + "-" + guid.String()
}
