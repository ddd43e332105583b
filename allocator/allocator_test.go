package allocator_test

import (
	"errors"
	"net/http"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	mfakes "code.cloudfoundry.org/diego-logging-client/testhelpers"
	"code.cloudfoundry.org/lager/v3/lagertest"
	"github.com/bluebrain/viztools"
	"github.com/bluebrain/viztools/allocator"
	"github.com/bluebrain/viztools/event"
	"github.com/bluebrain/viztools/fakes"
	"github.com/bluebrain/viztools/orderedjson"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gbytes"
)

const (
	managerURL = "http://manager.example.com/viz"
	sessionURL = managerURL + "/rendering-resource-manager/v1/session/"
	configURL  = managerURL + "/rendering-resource-manager/v1/config/"
)

func statusResult(code viztools.SessionStatus) viztools.Result {
	contents := orderedjson.New()
	contents.Set("code", int(code))
	contents.Set("hostname", "bbpviz1")
	contents.Set("port", "8200")
	return viztools.NewResult(http.StatusOK, contents, nil)
}

var _ = Describe("Allocator", func() {
	var (
		logger           *lagertest.TestLogger
		fakeTransport    *fakes.FakeTransport
		fakeClock        *fakeclock.FakeClock
		fakeMetronClient *mfakes.FakeIngressClient
		hub              event.Hub
		config           allocator.Config
		alloc            *allocator.Allocator

		sessionCookies []*http.Cookie
		createResult   viztools.Result
		createErr      error
		scheduleResult viztools.Result
		statusResults  []viztools.Result
		statusErr      error
		statusCalls    int
		commandResult  viztools.Result
	)

	requestsMatching := func(method, subpath string) [][]*http.Cookie {
		matching := [][]*http.Cookie{}
		for i := 0; i < fakeTransport.RequestCallCount(); i++ {
			m, _, _, s, cookies := fakeTransport.RequestArgsForCall(i)
			if m == method && s == subpath {
				matching = append(matching, cookies)
			}
		}
		return matching
	}

	BeforeEach(func() {
		logger = lagertest.NewTestLogger("test")
		fakeTransport = new(fakes.FakeTransport)
		fakeClock = fakeclock.NewFakeClock(time.Now())
		fakeMetronClient = new(mfakes.FakeIngressClient)
		hub = event.NewHub()

		config = allocator.DefaultConfig()
		config.ServiceURL = managerURL
		config.PollInterval = 2 * time.Second

		sessionCookies = []*http.Cookie{{Name: "sessionid", Value: "abc123"}}
		createResult = viztools.NewResult(http.StatusCreated, "", sessionCookies)
		createErr = nil
		scheduleResult = viztools.NewResult(http.StatusOK, "", nil)
		statusResults = []viztools.Result{statusResult(viztools.SessionRunning)}
		statusErr = nil
		statusCalls = 0
		commandResult = viztools.NewResult(http.StatusOK, "", nil)

		fakeTransport.RequestStub = func(method, url string, body interface{}, subpath string, cookies []*http.Cookie) (viztools.Result, error) {
			switch {
			case method == "POST" && url == sessionURL:
				return createResult, createErr
			case method == "PUT" && subpath == "schedule":
				return scheduleResult, nil
			case method == "GET" && subpath == "status":
				if statusErr != nil {
					return viztools.Result{}, statusErr
				}
				index := statusCalls
				statusCalls++
				if index >= len(statusResults) {
					index = len(statusResults) - 1
				}
				return statusResults[index], nil
			case method == "DELETE" && url == sessionURL:
				return viztools.NewResult(http.StatusOK, "", nil), nil
			}
			return commandResult, nil
		}
	})

	AfterEach(func() {
		hub.Close()
	})

	JustBeforeEach(func() {
		alloc = allocator.New(logger, config, fakeTransport, fakeClock, fakeMetronClient, hub)
	})

	Describe("URLs", func() {
		It("builds the session and config endpoints below the manager", func() {
			Expect(alloc.Direct()).To(BeFalse())
			Expect(alloc.SessionURL()).To(Equal(sessionURL))
			Expect(alloc.ConfigURL()).To(Equal(configURL))
		})

		Context("with a resource url", func() {
			BeforeEach(func() {
				config.ResourceURL = "localhost:5000"
			})

			It("prefixes the scheme and uses the resource for both endpoints", func() {
				Expect(alloc.Direct()).To(BeTrue())
				Expect(alloc.SessionURL()).To(Equal("http://localhost:5000/"))
				Expect(alloc.ConfigURL()).To(Equal("http://localhost:5000/"))
			})
		})
	})

	Describe("Resolve", func() {
		Context("in direct mode", func() {
			BeforeEach(func() {
				config.ResourceURL = "http://bbpviz1:5000"
			})

			It("returns the resource url without touching the network", func() {
				url, err := alloc.Resolve()
				Expect(err).NotTo(HaveOccurred())
				Expect(url).To(Equal("http://bbpviz1:5000"))
				Expect(fakeTransport.RequestCallCount()).To(BeZero())
			})

			It("frees nothing", func() {
				Expect(alloc.Free()).To(Succeed())
				Expect(fakeTransport.RequestCallCount()).To(BeZero())
			})

			It("sends commands without a cookie", func() {
				_, err := alloc.Command("PUT", "camera", `{"origin":[0,0,0]}`)
				Expect(err).NotTo(HaveOccurred())

				method, url, body, subpath, cookies := fakeTransport.RequestArgsForCall(0)
				Expect(method).To(Equal("PUT"))
				Expect(url).To(Equal("http://bbpviz1:5000/"))
				Expect(body).To(Equal(`{"origin":[0,0,0]}`))
				Expect(subpath).To(Equal("camera"))
				Expect(cookies).To(BeNil())
			})
		})

		Context("when the session is running at the first poll", func() {
			It("creates, schedules and returns the session url", func() {
				url, err := alloc.Resolve()
				Expect(err).NotTo(HaveOccurred())
				Expect(url).To(Equal(sessionURL))
				Expect(alloc.State()).To(Equal(viztools.StateRunning))
				Expect(alloc.Endpoint()).To(Equal("bbpviz1:8200"))

				method, _, body, subpath, cookies := fakeTransport.RequestArgsForCall(0)
				Expect(method).To(Equal("POST"))
				Expect(subpath).To(BeEmpty())
				Expect(cookies).To(BeNil())
				Expect(body).To(Equal(viztools.CreateSessionRequest{RendererID: "brayns", Owner: "viztools"}))

				method, _, body, subpath, cookies = fakeTransport.RequestArgsForCall(1)
				Expect(method).To(Equal("PUT"))
				Expect(subpath).To(Equal("schedule"))
				Expect(cookies).To(Equal(sessionCookies))
				Expect(body).To(Equal(viztools.ScheduleRequest{
					NbNodes:        1,
					NbCPUs:         8,
					NbGPUs:         1,
					AllocationTime: "1:00:00",
				}))

				Expect(requestsMatching("GET", "status")).To(Equal([][]*http.Cookie{sessionCookies}))
				Expect(fakeClock.WatcherCount()).To(BeZero())
			})

			It("emits the allocation duration", func() {
				_, err := alloc.Resolve()
				Expect(err).NotTo(HaveOccurred())

				Expect(fakeMetronClient.SendDurationCallCount()).To(Equal(1))
				name, _, _ := fakeMetronClient.SendDurationArgsForCall(0)
				Expect(name).To(Equal(allocator.ResourceAllocationDuration))
			})

			It("announces every state change", func() {
				source, err := hub.Subscribe()
				Expect(err).NotTo(HaveOccurred())

				_, err = alloc.Resolve()
				Expect(err).NotTo(HaveOccurred())

				for _, expected := range []viztools.SessionState{viztools.StateCreated, viztools.StateScheduled, viztools.StateRunning} {
					e, err := source.Next()
					Expect(err).NotTo(HaveOccurred())
					Expect(e.(event.SessionStateChangedEvent).To).To(Equal(expected))
				}
			})

			It("does not allocate twice", func() {
				_, err := alloc.Resolve()
				Expect(err).NotTo(HaveOccurred())
				calls := fakeTransport.RequestCallCount()

				url, err := alloc.Resolve()
				Expect(err).NotTo(HaveOccurred())
				Expect(url).To(Equal(sessionURL))
				Expect(fakeTransport.RequestCallCount()).To(Equal(calls))
			})

			It("tags the attempt in the logs", func() {
				_, err := alloc.Resolve()
				Expect(err).NotTo(HaveOccurred())
				Expect(logger).To(gbytes.Say(`resolve.starting.*"allocation-guid":"allocation-[0-9a-f-]+"`))
			})
		})

		Context("when the session takes a while to start", func() {
			BeforeEach(func() {
				statusResults = []viztools.Result{
					statusResult(viztools.SessionScheduling),
					viztools.NewResult(http.StatusNotFound, "job not found yet", nil),
					statusResult(viztools.SessionRunning),
				}
			})

			It("sleeps the poll interval between polls", func() {
				var (
					url string
					err error
				)
				done := make(chan struct{})
				go func() {
					defer GinkgoRecover()
					url, err = alloc.Resolve()
					close(done)
				}()

				fakeClock.WaitForWatcherAndIncrement(2 * time.Second)
				Consistently(done).ShouldNot(BeClosed())
				fakeClock.WaitForWatcherAndIncrement(2 * time.Second)

				Eventually(done).Should(BeClosed())
				Expect(err).NotTo(HaveOccurred())
				Expect(url).To(Equal(sessionURL))
				Expect(requestsMatching("GET", "status")).To(HaveLen(3))
				Expect(requestsMatching("DELETE", "")).To(BeEmpty())
			})
		})

		Context("when the session never starts", func() {
			BeforeEach(func() {
				config.MaxAttempts = 3
				statusResults = []viztools.Result{statusResult(viztools.SessionScheduling)}
			})

			It("gives up after the maximum attempts and deletes the session once", func() {
				var err error
				done := make(chan struct{})
				go func() {
					defer GinkgoRecover()
					_, err = alloc.Resolve()
					close(done)
				}()

				for i := 0; i < 3; i++ {
					fakeClock.WaitForWatcherAndIncrement(2 * time.Second)
				}

				Eventually(done).Should(BeClosed())
				Expect(errors.Is(err, viztools.ErrResourceNotRunning)).To(BeTrue())

				var allocationErr *viztools.AllocationError
				Expect(errors.As(err, &allocationErr)).To(BeTrue())

				Expect(requestsMatching("GET", "status")).To(HaveLen(3))
				Expect(requestsMatching("DELETE", "")).To(Equal([][]*http.Cookie{sessionCookies}))
				Expect(alloc.State()).To(Equal(viztools.StateFailed))
				Expect(alloc.HasSession()).To(BeFalse())

				Expect(fakeMetronClient.IncrementCounterCallCount()).To(Equal(1))
				Expect(fakeMetronClient.IncrementCounterArgsForCall(0)).To(Equal(allocator.ResourceAllocationFailures))
			})
		})

		Context("when create is refused", func() {
			BeforeEach(func() {
				createResult = viztools.NewResult(http.StatusBadRequest, "unknown renderer", nil)
			})

			It("fails without deleting anything", func() {
				_, err := alloc.Resolve()

				var allocationErr *viztools.AllocationError
				Expect(errors.As(err, &allocationErr)).To(BeTrue())
				Expect(allocationErr.Stage).To(Equal("create"))
				Expect(requestsMatching("DELETE", "")).To(BeEmpty())
				Expect(requestsMatching("PUT", "schedule")).To(BeEmpty())
			})
		})

		Context("when create hits a server error", func() {
			BeforeEach(func() {
				createResult = viztools.NewResult(http.StatusServiceUnavailable, "manager overloaded", nil)
			})

			It("fails with the remote failure after one unauthenticated delete", func() {
				_, err := alloc.Resolve()

				var remoteFailure *viztools.RemoteFailure
				Expect(errors.As(err, &remoteFailure)).To(BeTrue())
				Expect(remoteFailure.Code).To(Equal(http.StatusServiceUnavailable))

				var allocationErr *viztools.AllocationError
				Expect(errors.As(err, &allocationErr)).To(BeTrue())

				Expect(requestsMatching("DELETE", "")).To(Equal([][]*http.Cookie{nil}))
			})
		})

		Context("when the manager cannot be reached", func() {
			BeforeEach(func() {
				createErr = &viztools.ConnectivityError{URL: sessionURL, Err: errors.New("connection refused")}
			})

			It("fails with the connectivity error", func() {
				_, err := alloc.Resolve()

				var connectivityErr *viztools.ConnectivityError
				Expect(errors.As(err, &connectivityErr)).To(BeTrue())
				Expect(requestsMatching("DELETE", "")).To(BeEmpty())
			})
		})

		Context("when schedule hits a server error", func() {
			BeforeEach(func() {
				scheduleResult = viztools.NewResult(http.StatusInternalServerError, "slurm is down", nil)
			})

			It("deletes the session exactly once", func() {
				_, err := alloc.Resolve()

				var remoteFailure *viztools.RemoteFailure
				Expect(errors.As(err, &remoteFailure)).To(BeTrue())
				Expect(requestsMatching("DELETE", "")).To(Equal([][]*http.Cookie{sessionCookies}))
				Expect(requestsMatching("GET", "status")).To(BeEmpty())
			})
		})

		Context("when schedule is refused", func() {
			BeforeEach(func() {
				scheduleResult = viztools.NewResult(http.StatusConflict, "already scheduled", nil)
			})

			It("deletes the session exactly once", func() {
				_, err := alloc.Resolve()

				var allocationErr *viztools.AllocationError
				Expect(errors.As(err, &allocationErr)).To(BeTrue())
				Expect(allocationErr.Stage).To(Equal("schedule"))
				Expect(requestsMatching("DELETE", "")).To(HaveLen(1))
			})
		})

		Context("when a status poll fails to connect", func() {
			BeforeEach(func() {
				statusErr = &viztools.ConnectivityError{URL: sessionURL, Err: errors.New("connection reset")}
			})

			It("aborts the poll loop without sleeping", func() {
				_, err := alloc.Resolve()

				var connectivityErr *viztools.ConnectivityError
				Expect(errors.As(err, &connectivityErr)).To(BeTrue())
				Expect(fakeClock.WatcherCount()).To(BeZero())
				Expect(requestsMatching("DELETE", "")).To(HaveLen(1))
			})
		})
	})

	Describe("Free", func() {
		It("does nothing without a session", func() {
			Expect(alloc.Free()).To(Succeed())
			Expect(fakeTransport.RequestCallCount()).To(BeZero())
		})

		It("deletes the session once and forgets it", func() {
			_, err := alloc.Resolve()
			Expect(err).NotTo(HaveOccurred())

			Expect(alloc.Free()).To(Succeed())
			Expect(alloc.Free()).To(Succeed())

			Expect(requestsMatching("DELETE", "")).To(Equal([][]*http.Cookie{sessionCookies}))
			Expect(alloc.State()).To(Equal(viztools.StateStopped))

			_, err = alloc.Status()
			Expect(err).To(MatchError(viztools.ErrNoSession))
		})
	})

	Describe("CreateSession", func() {
		It("deletes the session it already holds first", func() {
			_, err := alloc.CreateSession(viztools.CreateSessionRequest{RendererID: "brayns", Owner: "viztools"})
			Expect(err).NotTo(HaveOccurred())
			Expect(requestsMatching("DELETE", "")).To(BeEmpty())

			_, err = alloc.CreateSession(viztools.CreateSessionRequest{RendererID: "brayns", Owner: "viztools"})
			Expect(err).NotTo(HaveOccurred())
			Expect(requestsMatching("DELETE", "")).To(Equal([][]*http.Cookie{sessionCookies}))
			Expect(alloc.HasSession()).To(BeTrue())
		})

		It("does not create a new session when the held one cannot be deleted", func() {
			_, err := alloc.CreateSession(viztools.CreateSessionRequest{RendererID: "brayns", Owner: "viztools"})
			Expect(err).NotTo(HaveOccurred())

			fakeTransport.RequestReturns(viztools.Result{}, errors.New("connection refused"))
			fakeTransport.RequestStub = nil

			_, err = alloc.CreateSession(viztools.CreateSessionRequest{RendererID: "brayns", Owner: "viztools"})
			Expect(err).To(MatchError("connection refused"))
			Expect(fakeTransport.RequestCallCount()).To(Equal(2))
		})
	})

	Describe("session commands", func() {
		It("requires a session in managed mode", func() {
			_, err := alloc.Command("GET", "camera", nil)
			Expect(err).To(MatchError(viztools.ErrNoSession))

			_, err = alloc.Log()
			Expect(err).To(MatchError(viztools.ErrNoSession))

			Expect(fakeTransport.RequestCallCount()).To(BeZero())
		})

		It("returns the configured streamer without a session", func() {
			result, err := alloc.StreamingURL()
			Expect(err).NotTo(HaveOccurred())
			Expect(result.OK()).To(BeTrue())
			Expect(result.Text()).To(Equal(`{"uri":"` + allocator.DefaultStreamerURI + `"}`))
		})

		Context("with a running session", func() {
			JustBeforeEach(func() {
				_, err := alloc.Resolve()
				Expect(err).NotTo(HaveOccurred())
			})

			It("sends the session cookie with each command", func() {
				_, err := alloc.Command("GET", "camera", nil)
				Expect(err).NotTo(HaveOccurred())
				Expect(requestsMatching("GET", "camera")).To(Equal([][]*http.Cookie{sessionCookies}))
			})

			It("asks the manager for the image feed", func() {
				_, err := alloc.StreamingURL()
				Expect(err).NotTo(HaveOccurred())
				Expect(requestsMatching("GET", "imagefeed")).To(HaveLen(1))
			})

			It("queries objects without releasing the session on a server error", func() {
				commandResult = viztools.NewResult(http.StatusServiceUnavailable, "job busy", nil)

				result, err := alloc.Query("resourceconnector/v1/status")
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Code).To(Equal(http.StatusServiceUnavailable))
				Expect(requestsMatching("GET", "resourceconnector/v1/status")).To(Equal([][]*http.Cookie{sessionCookies}))
				Expect(requestsMatching("DELETE", "")).To(BeEmpty())
				Expect(alloc.HasSession()).To(BeTrue())
			})

			Context("when the application answers with a client error", func() {
				BeforeEach(func() {
					commandResult = viztools.NewResult(http.StatusNotFound, "no such object", nil)
				})

				It("returns the result and keeps the session", func() {
					result, err := alloc.Command("GET", "nope", nil)
					Expect(err).NotTo(HaveOccurred())
					Expect(result.Code).To(Equal(http.StatusNotFound))
					Expect(alloc.HasSession()).To(BeTrue())
				})
			})

			Context("when the application answers with a server error", func() {
				BeforeEach(func() {
					commandResult = viztools.NewResult(http.StatusServiceUnavailable, "renderer crashed", nil)
				})

				It("releases the session and reports the remote failure", func() {
					_, err := alloc.Command("PUT", "frame", `{"current":1}`)

					var remoteFailure *viztools.RemoteFailure
					Expect(errors.As(err, &remoteFailure)).To(BeTrue())
					Expect(remoteFailure.Contents).To(Equal("renderer crashed"))
					Expect(requestsMatching("DELETE", "")).To(HaveLen(1))
					Expect(alloc.HasSession()).To(BeFalse())
					Expect(alloc.State()).To(Equal(viztools.StateStopped))
				})
			})
		})
	})

	Describe("EditSettings", func() {
		It("uses the edited settings for the next allocation", func() {
			settings, ignored, err := alloc.EditSettings(map[string]interface{}{
				"nb_gpus":  2,
				"queue":    "prod",
				"renderer": "livre",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(ignored).To(Equal([]string{"queue"}))
			Expect(settings.NbGPUs).To(Equal(2))
			Expect(logger).To(gbytes.Say("ignored-unknown-settings"))

			_, err = alloc.Resolve()
			Expect(err).NotTo(HaveOccurred())

			_, _, body, _, _ := fakeTransport.RequestArgsForCall(0)
			Expect(body).To(Equal(viztools.CreateSessionRequest{RendererID: "livre", Owner: "viztools"}))
			_, _, body, _, _ = fakeTransport.RequestArgsForCall(1)
			Expect(body.(viztools.ScheduleRequest).NbGPUs).To(Equal(2))
		})
	})
})
