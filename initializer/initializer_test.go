package initializer_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"code.cloudfoundry.org/lager/v3/lagertest"
	"github.com/bluebrain/viztools/fakes"
	"github.com/bluebrain/viztools/guidgen"
	"github.com/bluebrain/viztools/guidgen/fakeguidgen"
	vhttp "github.com/bluebrain/viztools/http"
	"github.com/bluebrain/viztools/http/fakemanager"
	"github.com/bluebrain/viztools/initializer"
	"github.com/bluebrain/viztools/initializer/configuration"
	"github.com/bluebrain/viztools/registry"
	"github.com/tedsuo/ifrit"
	"github.com/tedsuo/ifrit/grouper"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gbytes"
)

const frameSchema = `{
	"title": "Frame",
	"type": "object",
	"properties": {
		"start": {"type": "integer"},
		"end": {"type": "integer"},
		"current": {"type": "integer"},
		"delta": {"type": "integer"}
	}
}`

func writeIdentity(dir string) (string, string) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	Expect(err).NotTo(HaveOccurred())

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "viztools"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth, x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	Expect(err).NotTo(HaveOccurred())

	keyDER, err := x509.MarshalECPrivateKey(key)
	Expect(err).NotTo(HaveOccurred())

	certPath := filepath.Join(dir, "client.crt")
	keyPath := filepath.Join(dir, "client.key")
	Expect(os.WriteFile(certPath, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0600)).To(Succeed())
	Expect(os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0600)).To(Succeed())
	return certPath, keyPath
}

var _ = Describe("Initializer", func() {
	var (
		logger         *lagertest.TestLogger
		fakeClock      *fakeclock.FakeClock
		certsRetriever *fakes.FakeCertPoolRetriever
		config         configuration.Config
	)

	BeforeEach(func() {
		logger = lagertest.NewTestLogger("test")
		fakeClock = fakeclock.NewFakeClock(time.Now())
		certsRetriever = &fakes.FakeCertPoolRetriever{}
		certsRetriever.SystemCertsReturns(x509.NewCertPool(), nil)
		config = configuration.DefaultConfig()
	})

	Describe("NewLogger", func() {
		It("builds a logger at the configured level", func() {
			config.LogLevel = "debug"
			logger, err := initializer.NewLogger("viztools", config)
			Expect(err).NotTo(HaveOccurred())
			Expect(logger.SessionName()).To(Equal("viztools"))
		})

		It("rejects unknown levels", func() {
			config.LogLevel = "chatty"
			_, err := initializer.NewLogger("viztools", config)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("TLSConfigFromConfig", func() {
		var dir string

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
		})

		It("trusts the system pool without an identity", func() {
			config.SkipCertVerify = true

			tlsConfig, err := initializer.TLSConfigFromConfig(logger, certsRetriever, config)
			Expect(err).NotTo(HaveOccurred())
			Expect(tlsConfig.Certificates).To(BeEmpty())
			Expect(tlsConfig.InsecureSkipVerify).To(BeTrue())
			Expect(tlsConfig.MinVersion).To(Equal(uint16(tls.VersionTLS12)))
			Expect(certsRetriever.SystemCertsCallCount()).To(Equal(1))
		})

		It("loads the client identity and extra authority", func() {
			certPath, keyPath := writeIdentity(dir)
			config.PathToTLSCert = certPath
			config.PathToTLSKey = keyPath
			config.PathToTLSCACert = certPath

			tlsConfig, err := initializer.TLSConfigFromConfig(logger, certsRetriever, config)
			Expect(err).NotTo(HaveOccurred())
			Expect(tlsConfig.Certificates).To(HaveLen(1))
			Expect(tlsConfig.RootCAs).NotTo(BeNil())
			Expect(tlsConfig.CipherSuites).To(BeNil())
		})

		It("rejects half an identity", func() {
			config.PathToTLSKey = filepath.Join(dir, "client.key")

			_, err := initializer.TLSConfigFromConfig(logger, certsRetriever, config)
			Expect(err).To(MatchError(configuration.ErrIncompleteTLSIdentity))
		})

		It("fails when the authority bundle is missing", func() {
			config.PathToTLSCACert = filepath.Join(dir, "missing.crt")

			_, err := initializer.TLSConfigFromConfig(logger, certsRetriever, config)
			Expect(err).To(MatchError(ContainSubstring("unable to open CA cert bundle")))
		})

		It("fails when the authority bundle is not PEM", func() {
			path := filepath.Join(dir, "garbage.crt")
			Expect(os.WriteFile(path, []byte("not a certificate"), 0600)).To(Succeed())
			config.PathToTLSCACert = path

			_, err := initializer.TLSConfigFromConfig(logger, certsRetriever, config)
			Expect(err).To(MatchError("unable to load CA certificate"))
		})

		It("propagates system pool failures", func() {
			certsRetriever.SystemCertsReturns(nil, errors.New("no pool"))

			_, err := initializer.TLSConfigFromConfig(logger, certsRetriever, config)
			Expect(err).To(MatchError("no pool"))
		})
	})

	Describe("Initialize", func() {
		It("rejects invalid configurations", func() {
			config.MaxAttempts = 0

			_, err := initializer.InitializeWithCerts(logger, config, fakeClock, certsRetriever)
			Expect(err).To(MatchError(configuration.ErrInvalidMaxAttempts))
		})

		It("expands display wall resources", func() {
			config.ResourceURL = "floor_5"

			ctx, err := initializer.InitializeWithCerts(logger, config, fakeClock, certsRetriever)
			Expect(err).NotTo(HaveOccurred())
			Expect(ctx.Config.ResourceURL).To(Equal("bbpav05.bbp.epfl.ch:8888"))
			Expect(ctx.MetronClient).To(BeNil())
			Expect(ctx.NewAllocator().SessionURL()).To(Equal("http://bbpav05.bbp.epfl.ch:8888/"))
			Expect(logger).To(gbytes.Say("test.initialize.initialized"))
		})
	})

	Describe("Context", func() {
		var (
			remote        *fakemanager.Application
			server        *httptest.Server
			guidGenerator *fakeguidgen.FakeGenerator
			ctx           *initializer.Context
		)

		BeforeEach(func() {
			remote = fakemanager.NewApplication()
			remote.AddObject("v1/frame", []string{"GET", "PUT"}, frameSchema, `{"start": 0, "end": 10, "current": 2, "delta": 1}`)

			guidGenerator = &fakeguidgen.FakeGenerator{}
			guidGenerator.GuidReturnsOnCall(0, "session-1")
			guidGenerator.GuidReturnsOnCall(1, "session-2")
		})

		JustBeforeEach(func() {
			var err error
			ctx, err = initializer.InitializeWithCerts(logger, config, fakeClock, certsRetriever)
			Expect(err).NotTo(HaveOccurred())
			ctx.GuidGenerator = guidGenerator
		})

		AfterEach(func() {
			server.Close()
		})

		Context("in direct mode", func() {
			BeforeEach(func() {
				server = httptest.NewServer(remote)
				config.ResourceURL = server.URL
			})

			It("binds the application and registers it", func() {
				app, err := ctx.Connect()
				Expect(err).NotTo(HaveOccurred())

				_, ok := app.FrameController()
				Expect(ok).To(BeTrue())
				Expect(ctx.Registry.Keys()).To(Equal([]string{"session-1"}))

				Expect(ctx.Shutdown()).To(Succeed())
				Expect(ctx.Registry.Len()).To(Equal(0))

				_, err = ctx.Hub.Subscribe()
				Expect(err).To(HaveOccurred())
			})

			It("refuses to register the same key twice", func() {
				guidGenerator.GuidReturnsOnCall(1, "session-1")

				_, err := ctx.Connect()
				Expect(err).NotTo(HaveOccurred())

				_, err = ctx.Connect()
				Expect(err).To(MatchError(registry.ErrSessionAlreadyRegistered))
				Expect(ctx.Registry.Len()).To(Equal(1))
			})

			It("names registered sessions with session ids by default", func() {
				ctx.GuidGenerator = guidgen.Sessions

				_, err := ctx.Connect()
				Expect(err).NotTo(HaveOccurred())
				Expect(ctx.Registry.Keys()).To(ConsistOf(MatchRegexp(`^session-[0-9a-f-]+$`)))
			})

			It("registers nothing when the application has no registry", func() {
				server.Config.Handler = http.NotFoundHandler()

				_, err := ctx.Connect()
				Expect(err).To(HaveOccurred())
				Expect(ctx.Registry.Len()).To(Equal(0))
			})
		})

		Context("in managed mode", func() {
			var manager *fakemanager.Manager

			BeforeEach(func() {
				var err error
				manager, err = fakemanager.New(logger, remote)
				Expect(err).NotTo(HaveOccurred())
				server = httptest.NewServer(manager)
				config.ServiceURL = server.URL
			})

			It("releases connected sessions on shutdown", func() {
				_, err := ctx.Connect()
				Expect(err).NotTo(HaveOccurred())
				Expect(manager.Sessions()).To(HaveLen(1))

				Expect(ctx.Shutdown()).To(Succeed())
				Expect(manager.Sessions()).To(BeEmpty())
			})

			It("releases launched jobs on shutdown", func() {
				l, err := ctx.Launcher()
				Expect(err).NotTo(HaveOccurred())
				Expect(ctx.Registry.Keys()).To(Equal([]string{"session-1"}))

				_, err = l.ScheduleAndLaunch("livre")
				Expect(err).NotTo(HaveOccurred())
				Expect(manager.Sessions()).To(HaveLen(1))

				Expect(ctx.Shutdown()).To(Succeed())
				Expect(manager.Sessions()).To(BeEmpty())
			})

			It("logs state changes and releases sessions when signalled", func() {
				process := ifrit.Invoke(grouper.NewOrdered(os.Interrupt, ctx.Members()))

				_, err := ctx.Connect()
				Expect(err).NotTo(HaveOccurred())
				Eventually(logger).Should(gbytes.Say("test.initialize.state-logger.session-state-changed"))

				process.Signal(os.Interrupt)
				Eventually(process.Wait()).Should(Receive(BeNil()))
				Expect(manager.Sessions()).To(BeEmpty())
				Expect(ctx.Registry.Len()).To(Equal(0))

				_, err = ctx.Hub.Subscribe()
				Expect(err).To(HaveOccurred())
			})

			It("releases the session once the job completes", func() {
				remote.AddObject(vhttp.JobStatusPath, []string{"GET"}, "", `{"progress": 42}`)

				l, err := ctx.Launcher()
				Expect(err).NotTo(HaveOccurred())
				_, err = l.ScheduleAndLaunch("livre")
				Expect(err).NotTo(HaveOccurred())

				reports := make(chan int, 10)
				process := ifrit.Invoke(ctx.JobRunner(l, func(progress int) {
					reports <- progress
				}))
				Eventually(reports).Should(Receive(Equal(42)))
				Expect(manager.Sessions()).To(HaveLen(1))

				remote.SetValue(vhttp.JobStatusPath, `{"progress": 100}`)
				fakeClock.WaitForWatcherAndIncrement(time.Duration(ctx.Config.ProgressInterval))

				Eventually(reports).Should(Receive(Equal(100)))
				Eventually(process.Wait()).Should(Receive())
				Expect(manager.Sessions()).To(BeEmpty())
			})
		})
	})
})
