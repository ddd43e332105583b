package launcher

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	"code.cloudfoundry.org/lager/v3"
	"github.com/bluebrain/viztools"
	vhttp "github.com/bluebrain/viztools/http"
	"github.com/bluebrain/viztools/orderedjson"
	"github.com/google/shlex"
	"github.com/hashicorp/errwrap"
)

const DefaultRendererID = "bbic_wrapper"

var (
	ErrJobNotLaunched     = errors.New("job was not scheduled and launched")
	ErrRendererNotFound   = errors.New("renderer not found")
	ErrInvalidCommandLine = errors.New("invalid renderer command line")
)

// SessionAllocator is the part of the allocator the launcher drives.
type SessionAllocator interface {
	Resolve() (string, error)
	DeleteSession() (viztools.Result, error)
	Settings() viztools.AllocationSettings
	EditSettings(overrides map[string]interface{}) (viztools.AllocationSettings, []string, error)
	ConfigCreate(payload interface{}) (viztools.Result, error)
	ConfigUpdate(payload interface{}) (viztools.Result, error)
	ConfigDelete(payload interface{}) (viztools.Result, error)
	FindConfig(id string) (*orderedjson.Object, bool, error)
	Query(objectName string) (viztools.Result, error)
}

// Launcher runs batch jobs on resources allocated through the manager and
// manages the renderer configurations they are started from.
type Launcher struct {
	logger      lager.Logger
	allocator   SessionAllocator
	launchedURL string
}

func New(logger lager.Logger, allocator SessionAllocator) *Launcher {
	return &Launcher{
		logger:    logger.Session("launcher"),
		allocator: allocator,
	}
}

func (l *Launcher) Settings() viztools.AllocationSettings {
	return l.allocator.Settings()
}

func (l *Launcher) EditSettings(overrides map[string]interface{}) (viztools.AllocationSettings, []string, error) {
	return l.allocator.EditSettings(overrides)
}

func (l *Launcher) LaunchedURL() string {
	return l.launchedURL
}

// RendererPayload returns the default renderer configuration with the known
// keys of overrides applied, and the keys that were ignored.
func RendererPayload(overrides map[string]interface{}) (*orderedjson.Object, []string) {
	payload := orderedjson.New()
	payload.Set("id", DefaultRendererID)
	payload.Set("command_line", "pip3 install flask --user; python3 /gpfs/bbp.cscs.ch/apps/viz/bbp/dev/Wrapper/wrapper.py")
	payload.Set("environment_variables", "")
	payload.Set("modules", "BBP/viz/latest BBP/viz/hdf5/1.8.15 BBP/viz/python/3.4.3")
	payload.Set("process_rest_parameters_format", "")
	payload.Set("scheduler_rest_parameters_format", `--script-command "python3 -u /gpfs/bbp.cscs.ch/apps/viz/bbp/dev/wrapper/bbic_stack.py /gpfs/bbp.cscs.ch/project/proj39/rrm_test/out_vm.h5 --create-from /gpfs/bbp.cscs.ch/home/tresch/bigbrain600/list.txt --orientation coronal --all-stacks" --host "${rest_hostname}" --port "${rest_port}"`)
	payload.Set("project", "proj39")
	payload.Set("queue", "prod")
	payload.Set("exclusive", false)
	payload.Set("nb_nodes", 1)
	payload.Set("nb_cpus", 1)
	payload.Set("nb_gpus", 0)
	payload.Set("graceful_exit", false)
	payload.Set("wait_until_running", false)
	payload.Set("name", "bbic")
	payload.Set("description", "wrapper for bbic")

	ignored := applyKnown(payload, overrides)
	return payload, ignored
}

// CreateRenderer registers payload, or the default renderer when payload is
// nil, with the manager.
func (l *Launcher) CreateRenderer(payload *orderedjson.Object) (viztools.Result, error) {
	if payload == nil {
		payload, _ = RendererPayload(nil)
	}

	id, _ := payload.String("id")
	logger := l.logger.Session("create-renderer", lager.Data{"id": id})

	if commandLine, ok := payload.String("command_line"); ok {
		args, err := shlex.Split(commandLine)
		if err != nil {
			logger.Error("failed-to-parse-command-line", err)
			return viztools.Result{}, errwrap.Wrap(ErrInvalidCommandLine, err)
		}
		if len(args) == 0 {
			logger.Info("empty-command-line")
			return viztools.Result{}, ErrInvalidCommandLine
		}
		logger.Debug("parsed-command-line", lager.Data{"executable": args[0]})
	}

	result, err := l.allocator.ConfigCreate(payload)
	if err != nil {
		logger.Error("failed-to-create-renderer", err)
		return result, errwrap.Wrapf("failed to create renderer: {{err}}", err)
	}

	logger.Info("created", lager.Data{"status": result.Code})
	return result, nil
}

func (l *Launcher) JobSettings(rendererID string) (*orderedjson.Object, error) {
	config, found, err := l.allocator.FindConfig(rendererID)
	if err != nil {
		return nil, err
	}
	if !found {
		l.logger.Info("renderer-not-found", lager.Data{"id": rendererID})
		return nil, ErrRendererNotFound
	}
	return config, nil
}

// EditJobSettings updates the fields the stored renderer already has. An
// unknown renderer is reported as a 400 result.
func (l *Launcher) EditJobSettings(rendererID string, overrides map[string]interface{}) (viztools.Result, error) {
	logger := l.logger.Session("edit-job-settings", lager.Data{"id": rendererID})

	config, found, err := l.allocator.FindConfig(rendererID)
	if err != nil {
		logger.Error("failed-to-find-renderer", err)
		return viztools.Result{}, err
	}
	if !found {
		logger.Info("renderer-not-found")
		return viztools.NewResult(http.StatusBadRequest, "Renderer not found.", nil), nil
	}

	config = config.Copy()
	ignored := applyKnown(config, overrides)
	if len(ignored) > 0 {
		logger.Info("ignored-unknown-fields", lager.Data{"fields": ignored})
	}
	config.Set("id", rendererID)

	return l.allocator.ConfigUpdate(config)
}

func (l *Launcher) DeleteJobSettings(rendererID string) (viztools.Result, error) {
	return l.allocator.ConfigDelete(map[string]string{"id": rendererID})
}

// ScheduleAndLaunch allocates resources for the renderer, or the configured
// one when rendererID is empty, and remembers where the job runs.
func (l *Launcher) ScheduleAndLaunch(rendererID string) (viztools.Result, error) {
	logger := l.logger.Session("schedule-and-launch", lager.Data{"renderer": rendererID})

	if rendererID != "" {
		_, _, err := l.allocator.EditSettings(map[string]interface{}{"renderer": rendererID})
		if err != nil {
			logger.Error("failed-to-select-renderer", err)
			return viztools.Result{}, err
		}
	}

	url, err := l.allocator.Resolve()
	if err != nil {
		logger.Error("failed-to-schedule-and-launch", err)
		return viztools.NewResult(http.StatusBadRequest, "Failed to schedule and launch the job!", nil), err
	}

	l.launchedURL = url
	logger.Info("launched", lager.Data{"url": url})
	return viztools.NewResult(http.StatusOK, "Job scheduled and launched!", nil), nil
}

// DeallocateAndCancel deletes the session, which cancels the job and frees
// its resources.
func (l *Launcher) DeallocateAndCancel() (viztools.Result, error) {
	logger := l.logger.Session("deallocate-and-cancel", lager.Data{"url": l.launchedURL})
	l.launchedURL = ""

	result, err := l.allocator.DeleteSession()
	if err != nil {
		logger.Error("failed-to-deallocate", err)
		return result, err
	}

	if result.OK() {
		logger.Info("cancelled")
	} else {
		logger.Info("failed-to-cancel", lager.Data{"status": result.Code})
	}
	return result, nil
}

// JobProgress asks the launched job how far it is, in percent.
func (l *Launcher) JobProgress() (int, error) {
	if l.launchedURL == "" {
		return 0, ErrJobNotLaunched
	}

	result, err := l.allocator.Query(vhttp.JobStatusPath)
	if err != nil {
		return 0, err
	}
	if !result.OK() {
		return 0, &viztools.UnexpectedStatusError{Expected: http.StatusOK, Result: result}
	}

	status := struct {
		Progress *json.Number `json:"progress"`
	}{}
	err = result.Decode(&status)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", viztools.ErrMalformedResponse, err)
	}
	if status.Progress == nil {
		return 0, fmt.Errorf("%w: progress missing", viztools.ErrMalformedResponse)
	}

	progress, err := status.Progress.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %s", viztools.ErrMalformedResponse, err)
	}

	return int(math.Trunc(progress)), nil
}

func applyKnown(record *orderedjson.Object, overrides map[string]interface{}) []string {
	ignored := []string{}
	for _, key := range sortedKeys(overrides) {
		if _, ok := record.Get(key); !ok {
			ignored = append(ignored, key)
			continue
		}
		record.Set(key, overrides[key])
	}
	return ignored
}
