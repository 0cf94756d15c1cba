package rate

import (
	"context"
	"sync"
	"time"

	"fxconvert/internal/adapters"
	"fxconvert/internal/conversion"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultPivotRefreshInterval = 5 * time.Minute

type Scheduler struct {
	pivotRepo  adapters.PivotRepository
	normalizer *conversion.Normalizer
	interval   time.Duration
	// -----
	mu    sync.Mutex
	sched gocron.Scheduler
}

// Start registers the pivot refresh job, runs it once immediately and stops
// the scheduler when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sched = scheduler
	s.mu.Unlock()

	job := func(jobCtx context.Context) {
		execID := uuid.NewString()
		if refreshErr := RefreshPivots(jobCtx, execID, s.pivotRepo, s.normalizer); refreshErr != nil {
			logrus.Errorf("Pivot refresh job %s failed: %v", execID, refreshErr)
		}
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(job),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}

	scheduler.Start()

	go func() {
		<-ctx.Done()
		if sdErr := s.Shutdown(); sdErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", sdErr)
		}
	}()
	return nil
}

func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sched == nil {
		return nil
	}
	err := s.sched.Shutdown()
	s.sched = nil
	return err
}

func (s *Scheduler) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched != nil
}

func NewScheduler(pivotRepo adapters.PivotRepository, normalizer *conversion.Normalizer, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = defaultPivotRefreshInterval
	}
	return &Scheduler{pivotRepo: pivotRepo, normalizer: normalizer, interval: interval}
}
