package engine

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"ms-reminders/internal/config"
	"ms-reminders/internal/models"
)

// EventStore is the engine's interface to the record store. The repository
// in internal/services implements it against Postgres.
type EventStore interface {
	DueCandidates(ctx context.Context) ([]models.ReminderEvent, error)
	GetByID(ctx context.Context, id string) (*models.ReminderEvent, error)
	DeliveredWithin(ctx context.Context, originID string, kind models.ReminderKind, since time.Time) (bool, error)
	AppendDelivery(ctx context.Context, rec models.DeliveryRecord) error
	MarkCompleted(ctx context.Context, eventID string) error
}

// EmailSender is the outbound notification channel.
type EmailSender interface {
	SendEmail(to, subject, htmlBody string) error
}

// AuditPublisher receives a copy of each successful delivery, for downstream
// consumers. Publish failures never affect the pipeline.
type AuditPublisher interface {
	PublishDelivery(ctx context.Context, msg models.DeliveryAuditMessage) error
}

// SchedulePrewarmer registers an external one-shot trigger for an upcoming
// occurrence that is still beyond the polling window. Best effort.
type SchedulePrewarmer interface {
	RegisterUpcoming(ctx context.Context, event *models.ReminderEvent, at time.Time) error
}

// Engine is the reminder dispatch engine: a ticker-driven scan over candidate
// records, each run through resolve, due evaluation, dedup, dispatch and
// delivery recording. A per-instance single-flight guard keeps scans from
// overlapping.
type Engine struct {
	store    EventStore
	sender   EmailSender
	resolver *TimeResolver

	// Optional collaborators, wired by main when configured.
	Audit     AuditPublisher
	Prewarmer SchedulePrewarmer

	scanInterval    time.Duration
	dispatchTimeout time.Duration
	sendPacingDelay time.Duration
	prewarmAhead    time.Duration

	scanning atomic.Bool

	// now is swapped out by tests; everything in the pipeline derives its
	// clock from here.
	now func() time.Time
}

func NewEngine(store EventStore, sender EmailSender, resolver *TimeResolver, cfg config.Config) *Engine {
	return &Engine{
		store:           store,
		sender:          sender,
		resolver:        resolver,
		scanInterval:    cfg.ScanInterval,
		dispatchTimeout: cfg.DispatchTimeout,
		sendPacingDelay: cfg.SendPacingDelay,
		prewarmAhead:    cfg.SchedulerPrewarmAhead,
		now:             time.Now,
	}
}

// Start runs RunOnce on a fixed ticker until the context is cancelled. Ticks
// that arrive while a scan is still in flight are skipped, not queued.
func (e *Engine) Start(ctx context.Context) {
	ticker := time.NewTicker(e.scanInterval)
	defer ticker.Stop()

	log.Printf("Reminder engine started, scanning every %s", e.scanInterval)

	for {
		select {
		case <-ctx.Done():
			log.Println("Context cancelled, stopping reminder engine")
			return
		case <-ticker.C:
			if err := e.RunOnce(ctx); err != nil {
				if errors.Is(err, ErrScanInFlight) {
					log.Println("Previous scan still in progress, skipping this tick")
				} else {
					log.Printf("Scan aborted: %v", err)
				}
			}
		}
	}
}

// RunOnce executes a single scan cycle. It returns ErrScanInFlight when
// another scan holds the guard, and a StoreError when the candidate fetch
// fails; per-record failures are logged and absorbed.
func (e *Engine) RunOnce(ctx context.Context) error {
	if !e.scanning.CompareAndSwap(false, true) {
		return ErrScanInFlight
	}
	defer e.scanning.Store(false)

	candidates, err := e.store.DueCandidates(ctx)
	if err != nil {
		log.Printf("Candidate fetch failed, aborting scan: %v", err)
		return err
	}

	if len(candidates) == 0 {
		return nil
	}

	log.Printf("Scanning %d candidate reminders", len(candidates))

	sent := 0
	for i := range candidates {
		if e.processCandidate(ctx, &candidates[i], false) {
			sent++
			// Pace successive sends so the outbound channel is not hammered.
			// Skipped candidates do not pay this delay.
			time.Sleep(e.sendPacingDelay)
		}
	}

	if sent > 0 {
		log.Printf("Scan complete, %d of %d candidates dispatched", sent, len(candidates))
	}

	return nil
}

// DispatchByID runs a single reminder through the pipeline, bypassing the due
// evaluation: the external trigger that delivered the id already asserted the
// schedule fired. Dedup and all other checks still apply. A nil return with
// an unknown id means the record vanished; the trigger message is consumed.
func (e *Engine) DispatchByID(ctx context.Context, reminderID string) error {
	event, err := e.store.GetByID(ctx, reminderID)
	if err != nil {
		return err
	}
	if event == nil {
		log.Printf("Reminder %s not found, consuming trigger without dispatch", reminderID)
		return nil
	}

	e.processCandidate(ctx, event, true)
	return nil
}

// processCandidate runs one record through resolve, evaluate, dedup,
// dispatch and record. It reports whether a notification went out. Every
// failure is logged and isolated to this record.
func (e *Engine) processCandidate(ctx context.Context, event *models.ReminderEvent, skipDueCheck bool) bool {
	if !event.NotifyEnabled || event.Completed {
		return false
	}

	// An enabled record with no destination is a data invariant violation:
	// skip it rather than attempt a send to nowhere.
	if event.NotifyEmail == "" {
		log.Printf("Reminder %s has notifications enabled but no notify address, skipping", event.ID)
		return false
	}

	resolved, err := e.resolver.ResolveInstant(event.ScheduledDate, event.ScheduledTime, event.Timezone)
	if err != nil {
		var formatErr *ScheduleFormatError
		if errors.As(err, &formatErr) {
			formatErr.EventID = event.ID
		}
		log.Printf("Skipping reminder with unresolvable schedule: %v", err)
		return false
	}

	now := e.now().In(resolved.Location())

	if !skipDueCheck && !IsDue(resolved, now) {
		e.maybePrewarm(ctx, event, resolved, now)
		return false
	}

	delivered, err := e.store.DeliveredWithin(ctx, event.OriginID(), event.Kind, now.Add(-DedupCooldown))
	if err != nil {
		log.Printf("Dedup check failed for reminder %s, skipping this tick: %v", event.ID, err)
		return false
	}
	if delivered {
		log.Printf("Reminder %s already delivered within cooldown, skipping", event.ID)
		return false
	}

	strategy := strategyFor(event.Kind)
	template := strategy.render(event, resolved)

	if err := e.dispatch(ctx, event.NotifyEmail, template.Subject, template.HTML); err != nil {
		log.Printf("Dispatch failed for reminder %s: %v", event.ID, err)
		return false
	}

	e.recordDelivery(ctx, event, strategy)
	return true
}

// dispatch sends one notification with a bounded timeout so a stalled SMTP
// connection cannot hold the single-flight guard indefinitely. A send that
// completes after the timeout is discarded.
func (e *Engine) dispatch(ctx context.Context, to, subject, htmlBody string) error {
	done := make(chan error, 1)
	go func() {
		done <- e.sender.SendEmail(to, subject, htmlBody)
	}()

	select {
	case err := <-done:
		if err != nil {
			return &DeliveryError{Target: to, Err: err}
		}
		return nil
	case <-time.After(e.dispatchTimeout):
		return &DeliveryError{Target: to, Err: errors.New("dispatch timed out")}
	case <-ctx.Done():
		return &DeliveryError{Target: to, Err: ctx.Err()}
	}
}

// recordDelivery writes the audit row and, for self-completing kinds, flips
// the originating record's completed flag. The send already happened, so
// failures here are logged loudly but cannot be unwound.
func (e *Engine) recordDelivery(ctx context.Context, event *models.ReminderEvent, strategy kindStrategy) {
	firedAt := e.now()

	rec := models.DeliveryRecord{
		OriginID:    event.OriginID(),
		Kind:        event.Kind,
		NotifyEmail: event.NotifyEmail,
		FiredAt:     firedAt,
		Completed:   true,
	}

	if err := e.store.AppendDelivery(ctx, rec); err != nil {
		log.Printf("WARNING: notification for reminder %s was sent but the delivery log write failed: %v", event.ID, err)
		return
	}

	if strategy.selfCompleting {
		if err := e.store.MarkCompleted(ctx, event.ID); err != nil {
			log.Printf("WARNING: failed to mark reminder %s completed after delivery: %v", event.ID, err)
		}
	}

	if e.Audit != nil {
		msg := models.DeliveryAuditMessage{
			OriginID:    rec.OriginID,
			Kind:        string(rec.Kind),
			NotifyEmail: rec.NotifyEmail,
			FiredAt:     firedAt,
		}
		if err := e.Audit.PublishDelivery(ctx, msg); err != nil {
			log.Printf("Failed to publish delivery audit event for reminder %s: %v", event.ID, err)
		}
	}
}

// maybePrewarm registers an external one-shot trigger for occurrences that
// resolve beyond the polling window but inside the prewarm horizon.
func (e *Engine) maybePrewarm(ctx context.Context, event *models.ReminderEvent, resolved, now time.Time) {
	if e.Prewarmer == nil {
		return
	}

	until := resolved.Sub(now)
	if until <= TriggerWindow || until > e.prewarmAhead {
		return
	}

	if err := e.Prewarmer.RegisterUpcoming(ctx, event, resolved); err != nil {
		log.Printf("Failed to register upcoming trigger for reminder %s: %v", event.ID, err)
	}
}
