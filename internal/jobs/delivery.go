package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/remindbot/remind-server-go/internal/audit"
	"github.com/remindbot/remind-server-go/internal/config"
	"github.com/remindbot/remind-server-go/internal/model"
	"github.com/remindbot/remind-server-go/internal/redis"
	"github.com/remindbot/remind-server-go/internal/repository"
)

// Pusher delivers a text message to a user.
type Pusher interface {
	PushText(ctx context.Context, to, text string) error
}

// Locker guards a run across instances.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type DeliveryResult struct {
	Due     int
	Sent    int
	Failed  int
	Skipped int
	// Contended is set when another instance held the run lock.
	Contended bool
}

// DeliveryJob pushes every due reminder and deletes it once sent. Delivery is
// at-least-once: a crash or failed delete after a successful push may repeat
// the message on the next run.
type DeliveryJob struct {
	reminders   repository.ReminderRepository
	pusher      Pusher
	locker      Locker
	interval    time.Duration
	concurrency int
	now         func() time.Time
	done        chan struct{}
}

func NewDeliveryJob(
	reminders repository.ReminderRepository,
	pusher Pusher,
	locker Locker,
	interval time.Duration,
	concurrency int,
) *DeliveryJob {
	if concurrency < 1 {
		concurrency = 1
	}
	return &DeliveryJob{
		reminders:   reminders,
		pusher:      pusher,
		locker:      locker,
		interval:    interval,
		concurrency: concurrency,
		now:         time.Now,
		done:        make(chan struct{}),
	}
}

func (j *DeliveryJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Int("concurrency", j.concurrency).Msg("delivery job started")
}

func (j *DeliveryJob) Stop() {
	close(j.done)
	log.Info().Msg("delivery job stopped")
}

func (j *DeliveryJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.tick()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.tick()
		}
	}
}

func (j *DeliveryJob) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), config.DeliveryRunTimeout)
	defer cancel()

	result := j.RunOnce(ctx, j.now())
	if result.Due > 0 {
		log.Info().
			Int("due", result.Due).
			Int("sent", result.Sent).
			Int("failed", result.Failed).
			Int("skipped", result.Skipped).
			Msg("delivery run finished")
	}
}

// RunOnce delivers every reminder due at or before now.
func (j *DeliveryJob) RunOnce(ctx context.Context, now time.Time) DeliveryResult {
	var result DeliveryResult

	if !j.acquire(ctx) {
		result.Contended = true
		return result
	}

	due, err := j.reminders.ListDueBy(ctx, now)
	if err != nil {
		log.Error().Err(err).Msg("failed to list due reminders")
		return result
	}
	result.Due = len(due)
	if len(due) == 0 {
		log.Debug().Time("now", now).Msg("no due reminders")
		return result
	}

	var mu sync.Mutex
	count := func(field *int) {
		mu.Lock()
		*field++
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.concurrency)
	for _, reminder := range due {
		g.Go(func() error {
			switch j.deliver(gctx, reminder) {
			case deliverySent:
				count(&result.Sent)
			case deliveryFailed:
				count(&result.Failed)
			case deliverySkipped:
				count(&result.Skipped)
			}
			return nil
		})
	}
	_ = g.Wait()

	return result
}

// acquire takes the run lock. Lock errors fail open.
func (j *DeliveryJob) acquire(ctx context.Context) bool {
	if j.locker == nil {
		return true
	}
	ok, err := j.locker.TryLock(ctx, redis.DeliveryLockKey, j.lockTTL())
	if err != nil {
		log.Warn().Err(err).Msg("delivery lock unavailable, running without it")
		return true
	}
	if !ok {
		log.Debug().Msg("delivery run held by another instance")
	}
	return ok
}

func (j *DeliveryJob) lockTTL() time.Duration {
	ttl := j.interval * 9 / 10
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

type deliveryStatus int

const (
	deliverySent deliveryStatus = iota
	deliveryFailed
	deliverySkipped
)

func (j *DeliveryJob) deliver(ctx context.Context, reminder model.Reminder) deliveryStatus {
	if !reminder.Deliverable() {
		log.Warn().
			Str("reminderId", reminder.ID).
			Bool("hasUserId", reminder.UserID != "").
			Bool("hasMessage", reminder.Message != "").
			Msg("skipping corrupt reminder")
		return deliverySkipped
	}

	if err := j.pusher.PushText(ctx, reminder.UserID, reminder.Message); err != nil {
		log.Error().
			Err(err).
			Str("reminderId", reminder.ID).
			Str("userId", reminder.UserID).
			Msg("failed to push reminder")
		return deliveryFailed
	}

	audit.Log(ctx, audit.Event{
		Type:       audit.EventReminderDeliver,
		UserID:     reminder.UserID,
		ReminderID: reminder.ID,
	})

	if err := j.reminders.Delete(ctx, reminder.ID); err != nil {
		log.Error().
			Err(err).
			Str("reminderId", reminder.ID).
			Msg("failed to delete delivered reminder, it may be sent again")
	}
	return deliverySent
}
