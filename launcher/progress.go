package launcher

import (
	"os"
	"sort"
	"time"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"
)

const (
	CompleteProgress        = 100
	DefaultProgressInterval = 500 * time.Millisecond
)

//go:generate counterfeiter -o launcherfakes/fake_progress_source.go . ProgressSource

type ProgressSource interface {
	JobProgress() (int, error)
}

// ProgressWatcher polls a launched job until it completes, reporting every
// value it reads.
type ProgressWatcher struct {
	logger   lager.Logger
	source   ProgressSource
	clock    clock.Clock
	interval time.Duration
	report   func(int)
}

func NewProgressWatcher(
	logger lager.Logger,
	source ProgressSource,
	clock clock.Clock,
	interval time.Duration,
	report func(int),
) *ProgressWatcher {
	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	return &ProgressWatcher{
		logger:   logger.Session("progress-watcher"),
		source:   source,
		clock:    clock,
		interval: interval,
		report:   report,
	}
}

func (w *ProgressWatcher) Run(signals <-chan os.Signal, ready chan<- struct{}) error {
	logger := w.logger
	logger.Info("starting")
	defer logger.Info("finished")

	timer := w.clock.NewTimer(w.interval)
	defer timer.Stop()

	close(ready)

	for {
		progress, err := w.source.JobProgress()
		if err != nil {
			logger.Error("failed-to-get-progress", err)
			return err
		}

		if w.report != nil {
			w.report(progress)
		}

		if progress >= CompleteProgress {
			logger.Info("job-completed")
			return nil
		}

		select {
		case sig := <-signals:
			logger.Info("signalled", lager.Data{"signal": sig.String()})
			return nil
		case <-timer.C():
			timer.Reset(w.interval)
		}
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
