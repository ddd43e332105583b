package launcher_test

import (
	"errors"
	"os"
	"sync"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"code.cloudfoundry.org/lager/v3/lagertest"
	"github.com/bluebrain/viztools/launcher"
	"github.com/bluebrain/viztools/launcher/launcherfakes"
	"github.com/tedsuo/ifrit"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gbytes"
)

var _ = Describe("ProgressWatcher", func() {
	const interval = 2 * time.Second

	var (
		logger    *lagertest.TestLogger
		fakeClock *fakeclock.FakeClock
		source    *launcherfakes.FakeProgressSource
		watcher   *launcher.ProgressWatcher
		process   ifrit.Process

		reportLock sync.Mutex
		reported   []int
	)

	reports := func() []int {
		reportLock.Lock()
		defer reportLock.Unlock()
		return append([]int{}, reported...)
	}

	BeforeEach(func() {
		logger = lagertest.NewTestLogger("test")
		fakeClock = fakeclock.NewFakeClock(time.Now())
		source = new(launcherfakes.FakeProgressSource)
		reported = nil
	})

	JustBeforeEach(func() {
		watcher = launcher.NewProgressWatcher(logger, source, fakeClock, interval, func(progress int) {
			reportLock.Lock()
			defer reportLock.Unlock()
			reported = append(reported, progress)
		})
		process = ifrit.Invoke(watcher)
	})

	AfterEach(func() {
		process.Signal(os.Interrupt)
		Eventually(process.Wait()).Should(Receive())
	})

	Context("when the job makes progress", func() {
		BeforeEach(func() {
			source.JobProgressReturnsOnCall(0, 10, nil)
			source.JobProgressReturnsOnCall(1, 55, nil)
			source.JobProgressReturnsOnCall(2, 100, nil)
		})

		It("reports every value until the job completes", func() {
			Eventually(source.JobProgressCallCount).Should(Equal(1))
			Consistently(source.JobProgressCallCount).Should(Equal(1))

			fakeClock.WaitForWatcherAndIncrement(interval)
			Eventually(source.JobProgressCallCount).Should(Equal(2))

			fakeClock.WaitForWatcherAndIncrement(interval)
			Eventually(process.Wait()).Should(Receive(BeNil()))

			Expect(reports()).To(Equal([]int{10, 55, 100}))
			Expect(logger).To(gbytes.Say("job-completed"))
		})
	})

	Context("when the job is already complete", func() {
		BeforeEach(func() {
			source.JobProgressReturns(100, nil)
		})

		It("exits after the first poll", func() {
			Eventually(process.Wait()).Should(Receive(BeNil()))
			Expect(source.JobProgressCallCount()).To(Equal(1))
		})
	})

	Context("when reading the progress fails", func() {
		var disaster = errors.New("no job status")

		BeforeEach(func() {
			source.JobProgressReturns(0, disaster)
		})

		It("exits with the error", func() {
			Eventually(process.Wait()).Should(Receive(Equal(disaster)))
			Expect(reports()).To(BeEmpty())
		})
	})

	Context("when signalled", func() {
		BeforeEach(func() {
			source.JobProgressReturns(20, nil)
		})

		It("stops polling", func() {
			Eventually(source.JobProgressCallCount).Should(Equal(1))

			process.Signal(os.Interrupt)
			Eventually(process.Wait()).Should(Receive(BeNil()))
			Expect(source.JobProgressCallCount()).To(Equal(1))
		})
	})
})
