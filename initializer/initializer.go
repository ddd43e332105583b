package initializer

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"code.cloudfoundry.org/clock"
	loggingclient "code.cloudfoundry.org/diego-logging-client"
	"code.cloudfoundry.org/lager/v3"
	"code.cloudfoundry.org/tlsconfig"
	"github.com/bluebrain/viztools"
	"github.com/bluebrain/viztools/allocator"
	"github.com/bluebrain/viztools/application"
	"github.com/bluebrain/viztools/event"
	"github.com/bluebrain/viztools/guidgen"
	"github.com/bluebrain/viztools/http/transport"
	"github.com/bluebrain/viztools/initializer/configuration"
	"github.com/bluebrain/viztools/launcher"
	"github.com/bluebrain/viztools/registry"
	"github.com/tedsuo/ifrit"
	"github.com/tedsuo/ifrit/grouper"
)

//go:generate counterfeiter -o ../fakes/fake_cert_pool_retriever.go . CertPoolRetriever
type CertPoolRetriever interface {
	SystemCerts() (*x509.CertPool, error)
}

type systemCertsRetriever struct{}

func (systemCertsRetriever) SystemCerts() (*x509.CertPool, error) {
	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		return nil, err
	}
	if caCertPool == nil {
		caCertPool = x509.NewCertPool()
	}
	return caCertPool, nil
}

// Context holds what every session of one process shares: the transport, the
// metrics client, the event hub, and the registry of sessions to release on
// shutdown.
type Context struct {
	Config        configuration.Config
	Clock         clock.Clock
	Transport     viztools.Transport
	MetronClient  loggingclient.IngressClient
	Hub           event.Hub
	Registry      registry.Registry
	GuidGenerator guidgen.Generator

	logger lager.Logger
}

func NewLogger(component string, config configuration.Config) (lager.Logger, error) {
	level, err := lager.LogLevelFromString(config.LogLevel)
	if err != nil {
		return nil, err
	}

	logger := lager.NewLogger(component)
	logger.RegisterSink(lager.NewWriterSink(os.Stdout, level))
	return logger, nil
}

func Initialize(logger lager.Logger, config configuration.Config, clock clock.Clock) (*Context, error) {
	return InitializeWithCerts(logger, config, clock, systemCertsRetriever{})
}

func InitializeWithCerts(
	logger lager.Logger,
	config configuration.Config,
	clock clock.Clock,
	certsRetriever CertPoolRetriever,
) (*Context, error) {
	logger = logger.Session("initialize")

	err := config.Validate()
	if err != nil {
		logger.Error("invalid-configuration", err)
		return nil, err
	}

	if config.ResourceURL != "" {
		config.ResourceURL = application.ResourceURL(config.ResourceURL)
	}

	tlsConfig, err := TLSConfigFromConfig(logger, certsRetriever, config)
	if err != nil {
		return nil, err
	}

	var metronClient loggingclient.IngressClient
	if config.LoggregatorConfig.UseV2API {
		metronClient, err = loggingclient.NewIngressClient(config.LoggregatorConfig)
		if err != nil {
			logger.Error("failed-to-initialize-metron-client", err)
			return nil, err
		}
	}

	httpClient := NewHTTPClient(tlsConfig, time.Duration(config.RequestTimeout))

	logger.Info("initialized", lager.Data{
		"service-url":  config.ServiceURL,
		"resource-url": config.ResourceURL,
		"metrics":      metronClient != nil,
	})

	return &Context{
		Config:        config,
		Clock:         clock,
		Transport:     transport.New(logger, httpClient),
		MetronClient:  metronClient,
		Hub:           event.NewHub(),
		Registry:      registry.New(logger, config.ShutdownPoolSize),
		GuidGenerator: guidgen.Sessions,
		logger:        logger,
	}, nil
}

func NewHTTPClient(tlsConfig *tls.Config, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			TLSClientConfig:     tlsConfig,
			TLSHandshakeTimeout: 10 * time.Second,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// NewAllocator builds an allocator from the configuration. It is not
// registered; Free it or hand it to Connect.
func (c *Context) NewAllocator() *allocator.Allocator {
	config := allocator.Config{
		ServiceURL:   c.Config.ServiceURL,
		APIVersion:   c.Config.APIVersion,
		ResourceURL:  c.Config.ResourceURL,
		Owner:        c.Config.Owner,
		Settings:     c.Config.Settings(),
		MaxAttempts:  c.Config.MaxAttempts,
		PollInterval: time.Duration(c.Config.PollInterval),
		StreamerURI:  c.Config.StreamerURI,
	}

	return allocator.New(c.logger, config, c.Transport, c.Clock, c.MetronClient, c.Hub)
}

// Connect allocates a session and binds its application. The session is
// released by Shutdown unless it is freed first.
func (c *Context) Connect() (*application.Application, error) {
	logger := c.logger.Session("connect")

	alloc := c.NewAllocator()
	app, err := application.Connect(c.logger, alloc)
	if err != nil {
		logger.Error("failed-to-connect", err)
		if freeErr := alloc.Free(); freeErr != nil {
			logger.Error("failed-to-free-session", freeErr)
		}
		return nil, err
	}

	err = c.Registry.Register(c.GuidGenerator.Guid(logger), app)
	if err != nil {
		logger.Error("failed-to-register-session", err)
		if freeErr := app.Free(); freeErr != nil {
			logger.Error("failed-to-free-session", freeErr)
		}
		return nil, err
	}

	return app, nil
}

// Launcher returns a launcher whose allocator is released on shutdown.
func (c *Context) Launcher() (*launcher.Launcher, error) {
	alloc := c.NewAllocator()

	err := c.Registry.Register(c.GuidGenerator.Guid(c.logger), alloc)
	if err != nil {
		c.logger.Error("failed-to-register-launcher", err)
		return nil, err
	}

	return launcher.New(c.logger, alloc), nil
}

func (c *Context) Shutdown() error {
	logger := c.logger.Session("shutdown")

	err := c.Registry.Shutdown()
	if err != nil {
		logger.Error("failed-to-release-sessions", err)
	}

	closeErr := c.Hub.Close()
	if closeErr != nil {
		logger.Error("failed-to-close-hub", closeErr)
		if err == nil {
			err = closeErr
		}
	}

	return err
}

// Members release every registered session and close the hub when
// signalled. Session state changes are logged while they run.
func (c *Context) Members() grouper.Members {
	return grouper.Members{
		{Name: "hub-closer", Runner: closeHub(c.logger, c.Hub)},
		{Name: "session-releaser", Runner: c.Registry.Runner()},
		{Name: "state-logger", Runner: logStateChanges(c.logger, c.Hub)},
	}
}

// JobRunner watches the job launched by l. Once it completes, or the runner
// is signalled, every session is released.
func (c *Context) JobRunner(l *launcher.Launcher, report func(int)) ifrit.Runner {
	watcher := launcher.NewProgressWatcher(
		c.logger,
		l,
		c.Clock,
		time.Duration(c.Config.ProgressInterval),
		report,
	)

	members := append(c.Members(), grouper.Member{Name: "progress-watcher", Runner: watcher})
	return grouper.NewOrdered(os.Interrupt, members)
}

func closeHub(logger lager.Logger, hub event.Hub) ifrit.Runner {
	return ifrit.RunFunc(func(signals <-chan os.Signal, ready chan<- struct{}) error {
		close(ready)
		signal := <-signals
		hub.Close()
		hubLogger := logger.Session("close-hub")
		hubLogger.Info("signalled", lager.Data{"signal": signal.String()})
		return nil
	})
}

func logStateChanges(logger lager.Logger, hub event.Hub) ifrit.Runner {
	return ifrit.RunFunc(func(signals <-chan os.Signal, ready chan<- struct{}) error {
		logger := logger.Session("state-logger")

		source, err := hub.Subscribe()
		if err != nil {
			logger.Error("failed-to-subscribe", err)
			return err
		}
		close(ready)

		go func() {
			<-signals
			source.Close()
		}()

		for {
			e, err := source.Next()
			if err != nil {
				return nil
			}
			changed, ok := e.(event.SessionStateChangedEvent)
			if !ok {
				continue
			}
			logger.Info("session-state-changed", lager.Data{
				"session": changed.SessionURL,
				"from":    changed.From,
				"to":      changed.To,
			})
		}
	})
}

func TLSConfigFromConfig(logger lager.Logger, certsRetriever CertPoolRetriever, config configuration.Config) (*tls.Config, error) {
	var tlsConfig *tls.Config

	caCertPool, err := certsRetriever.SystemCerts()
	if err != nil {
		return nil, err
	}
	if (config.PathToTLSKey != "") != (config.PathToTLSCert != "") {
		return nil, configuration.ErrIncompleteTLSIdentity
	}

	if config.PathToTLSCACert != "" {
		caCertPool, err = appendCACerts(caCertPool, config.PathToTLSCACert)
		if err != nil {
			return nil, err
		}
	}

	if config.PathToTLSKey != "" && config.PathToTLSCert != "" {
		tlsConfig, err = tlsconfig.Build(
			tlsconfig.WithInternalServiceDefaults(),
			tlsconfig.WithIdentityFromFile(config.PathToTLSCert, config.PathToTLSKey),
		).Client(
			tlsconfig.WithAuthority(caCertPool),
		)
		if err != nil {
			logger.Error("failed-to-configure-tls", err)
			return nil, err
		}
		tlsConfig.InsecureSkipVerify = config.SkipCertVerify
		// the rendering manager is not an internal service
		tlsConfig.CipherSuites = nil
	} else {
		tlsConfig = &tls.Config{
			RootCAs:            caCertPool,
			InsecureSkipVerify: config.SkipCertVerify,
			MinVersion:         tls.VersionTLS12,
		}
	}

	return tlsConfig, nil
}

func appendCACerts(caCertPool *x509.CertPool, pathToCA string) (*x509.CertPool, error) {
	certBytes, err := os.ReadFile(pathToCA)
	if err != nil {
		return nil, fmt.Errorf("unable to open CA cert bundle '%s'", pathToCA)
	}

	certBytes = bytes.TrimSpace(certBytes)

	if len(certBytes) > 0 {
		if ok := caCertPool.AppendCertsFromPEM(certBytes); !ok {
			return nil, errors.New("unable to load CA certificate")
		}
	}

	return caCertPool, nil
}
