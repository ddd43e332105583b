package registry

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"code.cloudfoundry.org/lager/v3"
	"code.cloudfoundry.org/workpool"
	"github.com/hashicorp/go-multierror"
	"github.com/tedsuo/ifrit"
)

const DefaultShutdownPoolSize = 8

var ErrSessionAlreadyRegistered = errors.New("session already registered")
var ErrSessionNotFound = errors.New("session not found")

//go:generate counterfeiter -o registryfakes/fake_releaser.go . Releaser

// Releaser is anything holding a remote session that must be given back.
type Releaser interface {
	Free() error
}

// Registry keeps track of the live sessions of one application context so
// they can all be released on shutdown.
type Registry interface {
	Register(key string, releaser Releaser) error
	Unregister(key string) error
	Keys() []string
	Len() int
	Shutdown() error
	Runner() ifrit.Runner
}

type registry struct {
	logger           lager.Logger
	shutdownPoolSize int

	sessions map[string]Releaser
	lock     sync.Mutex
}

func New(logger lager.Logger, shutdownPoolSize int) Registry {
	if shutdownPoolSize <= 0 {
		shutdownPoolSize = DefaultShutdownPoolSize
	}

	return &registry{
		logger:           logger.Session("registry"),
		shutdownPoolSize: shutdownPoolSize,
		sessions:         map[string]Releaser{},
	}
}

func (r *registry) Register(key string, releaser Releaser) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.sessions[key]; ok {
		return ErrSessionAlreadyRegistered
	}

	r.sessions[key] = releaser
	return nil
}

func (r *registry) Unregister(key string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.sessions[key]; !ok {
		return ErrSessionNotFound
	}

	delete(r.sessions, key)
	return nil
}

func (r *registry) Keys() []string {
	r.lock.Lock()
	defer r.lock.Unlock()

	keys := make([]string, 0, len(r.sessions))
	for key := range r.sessions {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}

func (r *registry) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()

	return len(r.sessions)
}

// Shutdown frees every registered session and empties the registry. All
// sessions are attempted; the failures are returned together.
func (r *registry) Shutdown() error {
	logger := r.logger.Session("shutdown")

	r.lock.Lock()
	sessions := r.sessions
	r.sessions = map[string]Releaser{}
	r.lock.Unlock()

	logger.Info("starting", lager.Data{"sessions": len(sessions)})
	defer logger.Info("finished")

	if len(sessions) == 0 {
		return nil
	}

	pool, err := workpool.NewWorkPool(r.shutdownPoolSize)
	if err != nil {
		logger.Error("failed-to-create-work-pool", err)
		return err
	}
	defer pool.Stop()

	var (
		wg       sync.WaitGroup
		errLock  sync.Mutex
		failures *multierror.Error
	)

	for key, releaser := range sessions {
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()

			err := releaser.Free()
			if err != nil {
				logger.Error("failed-to-free-session", err, lager.Data{"session": key})

				errLock.Lock()
				failures = multierror.Append(failures, fmt.Errorf("%s: %w", key, err))
				errLock.Unlock()
			}
		})
	}

	wg.Wait()

	return failures.ErrorOrNil()
}

// Runner is ready immediately and shuts the registry down when signalled.
func (r *registry) Runner() ifrit.Runner {
	return ifrit.RunFunc(func(signals <-chan os.Signal, ready chan<- struct{}) error {
		close(ready)
		sig := <-signals
		r.logger.Info("signalled", lager.Data{"signal": sig.String()})
		return r.Shutdown()
	})
}
