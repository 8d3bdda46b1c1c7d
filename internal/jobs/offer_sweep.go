package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"fueldash/internal/service"
)

// OfferSweepJob periodically times out dispatch offers whose window has
// closed. Each run is idempotent, so overlapping runs across process
// instances are harmless.
type OfferSweepJob struct {
	dispatchService service.DispatchServiceInterface
	interval        time.Duration
	cron            *cron.Cron
}

// NewOfferSweepJob creates a new sweep job running at the given interval.
func NewOfferSweepJob(dispatchService service.DispatchServiceInterface, interval time.Duration) *OfferSweepJob {
	return &OfferSweepJob{
		dispatchService: dispatchService,
		interval:        interval,
		cron:            cron.New(cron.WithSeconds()),
	}
}

// Start schedules the sweep.
func (j *OfferSweepJob) Start() error {
	_, err := j.cron.AddFunc(fmt.Sprintf("@every %s", j.interval), func() {
		swept, err := j.dispatchService.SweepExpiredOffers(context.Background())
		if err != nil {
			log.Printf("offer sweep failed: %v", err)
			return
		}
		if swept > 0 {
			log.Printf("offer sweep timed out %d offers", swept)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	log.Printf("offer sweep job started (every %s)", j.interval)
	return nil
}

// Stop stops the sweep and waits for an in-flight run to finish.
func (j *OfferSweepJob) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	log.Print("offer sweep job stopped")
}
