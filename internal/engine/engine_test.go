package engine

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"ms-reminders/internal/config"
	"ms-reminders/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockEventStore is a mock of the EventStore interface
type MockEventStore struct {
	mock.Mock
}

func (m *MockEventStore) DueCandidates(ctx context.Context) ([]models.ReminderEvent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReminderEvent), args.Error(1)
}

func (m *MockEventStore) GetByID(ctx context.Context, id string) (*models.ReminderEvent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReminderEvent), args.Error(1)
}

func (m *MockEventStore) DeliveredWithin(ctx context.Context, originID string, kind models.ReminderKind, since time.Time) (bool, error) {
	args := m.Called(ctx, originID, kind, since)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventStore) AppendDelivery(ctx context.Context, rec models.DeliveryRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockEventStore) MarkCompleted(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

// MockEmailSender is a mock of the EmailSender interface
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(to, subject, htmlBody string) error {
	args := m.Called(to, subject, htmlBody)
	return args.Error(0)
}

// MockPrewarmer is a mock of the SchedulePrewarmer interface
type MockPrewarmer struct {
	mock.Mock
}

func (m *MockPrewarmer) RegisterUpcoming(ctx context.Context, event *models.ReminderEvent, at time.Time) error {
	args := m.Called(ctx, event, at)
	return args.Error(0)
}

// testNow is the frozen clock all engine tests run against. Reminders are
// scheduled relative to it so window arithmetic is deterministic.
var testNow = time.Date(2025, 3, 10, 8, 59, 30, 0, time.UTC)

func newTestEngine(store EventStore, sender EmailSender) *Engine {
	cfg := config.Config{
		ScanInterval:          time.Minute,
		DispatchTimeout:       time.Second,
		SendPacingDelay:       0,
		SchedulerPrewarmAhead: 24 * time.Hour,
	}
	eng := NewEngine(store, sender, NewTimeResolver("UTC"), cfg)
	eng.now = func() time.Time { return testNow }
	return eng
}

// dueCustomReminder is scheduled 30 seconds after testNow, inside the
// trigger window.
func dueCustomReminder() models.ReminderEvent {
	return models.ReminderEvent{
		ID:            "rem-1",
		OwnerID:       "user-1",
		Kind:          models.ReminderKindCustom,
		ScheduledDate: "2025-03-10",
		ScheduledTime: "09:00",
		Timezone:      "UTC",
		NotifyEnabled: true,
		NotifyEmail:   "owner@example.com",
		Title:         "Water the plants",
	}
}

func TestRunOnceDispatchesDueCustomReminder(t *testing.T) {
	store := new(MockEventStore)
	sender := new(MockEmailSender)
	eng := newTestEngine(store, sender)

	event := dueCustomReminder()

	store.On("DueCandidates", mock.Anything).Return([]models.ReminderEvent{event}, nil)
	store.On("DeliveredWithin", mock.Anything, "rem-1", models.ReminderKindCustom, mock.Anything).Return(false, nil)
	sender.On("SendEmail", "owner@example.com", mock.Anything, mock.Anything).Return(nil)
	store.On("AppendDelivery", mock.Anything, mock.MatchedBy(func(rec models.DeliveryRecord) bool {
		return rec.OriginID == "rem-1" && rec.Kind == models.ReminderKindCustom && rec.FiredAt.Equal(testNow)
	})).Return(nil)
	// Custom reminders complete themselves after a successful send
	store.On("MarkCompleted", mock.Anything, "rem-1").Return(nil)

	err := eng.RunOnce(context.Background())

	assert.NoError(t, err)
	store.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestRunOnceWithinCooldownSendsNothing(t *testing.T) {
	store := new(MockEventStore)
	sender := new(MockEmailSender)
	eng := newTestEngine(store, sender)

	event := dueCustomReminder()

	store.On("DueCandidates", mock.Anything).Return([]models.ReminderEvent{event}, nil)
	// The previous scan already logged a delivery inside the cooldown window
	store.On("DeliveredWithin", mock.Anything, "rem-1", models.ReminderKindCustom, mock.MatchedBy(func(since time.Time) bool {
		return since.Equal(testNow.Add(-DedupCooldown))
	})).Return(true, nil)

	err := eng.RunOnce(context.Background())

	assert.NoError(t, err)
	sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "AppendDelivery", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestAppointmentReminderKeysOnSourceAndStaysOpen(t *testing.T) {
	store := new(MockEventStore)
	sender := new(MockEmailSender)
	eng := newTestEngine(store, sender)

	event := dueCustomReminder()
	event.Kind = models.ReminderKindAppointment
	event.RelatedID = sql.NullString{String: "appt-42", Valid: true}
	event.Title = "Dentist"

	store.On("DueCandidates", mock.Anything).Return([]models.ReminderEvent{event}, nil)
	// Dedup and the delivery log key on the source appointment, not the reminder row
	store.On("DeliveredWithin", mock.Anything, "appt-42", models.ReminderKindAppointment, mock.Anything).Return(false, nil)
	sender.On("SendEmail", "owner@example.com", mock.Anything, mock.Anything).Return(nil)
	store.On("AppendDelivery", mock.Anything, mock.MatchedBy(func(rec models.DeliveryRecord) bool {
		return rec.OriginID == "appt-42" && rec.Kind == models.ReminderKindAppointment
	})).Return(nil)

	err := eng.RunOnce(context.Background())

	assert.NoError(t, err)
	// Appointment-derived reminders are not self-completing
	store.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestDisabledAndCompletedCandidatesAreSkipped(t *testing.T) {
	store := new(MockEventStore)
	sender := new(MockEmailSender)
	eng := newTestEngine(store, sender)

	disabled := dueCustomReminder()
	disabled.ID = "rem-disabled"
	disabled.NotifyEnabled = false

	completed := dueCustomReminder()
	completed.ID = "rem-completed"
	completed.Completed = true

	noAddress := dueCustomReminder()
	noAddress.ID = "rem-no-address"
	noAddress.NotifyEmail = ""

	store.On("DueCandidates", mock.Anything).Return([]models.ReminderEvent{disabled, completed, noAddress}, nil)

	err := eng.RunOnce(context.Background())

	assert.NoError(t, err)
	sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "DeliveredWithin", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestMalformedScheduleSkipsOnlyThatRecord(t *testing.T) {
	store := new(MockEventStore)
	sender := new(MockEmailSender)
	eng := newTestEngine(store, sender)

	broken := dueCustomReminder()
	broken.ID = "rem-broken"
	broken.ScheduledTime = "9:xx"

	healthy := dueCustomReminder()
	healthy.ID = "rem-healthy"

	store.On("DueCandidates", mock.Anything).Return([]models.ReminderEvent{broken, healthy}, nil)
	store.On("DeliveredWithin", mock.Anything, "rem-healthy", models.ReminderKindCustom, mock.Anything).Return(false, nil)
	sender.On("SendEmail", "owner@example.com", mock.Anything, mock.Anything).Return(nil)
	store.On("AppendDelivery", mock.Anything, mock.MatchedBy(func(rec models.DeliveryRecord) bool {
		return rec.OriginID == "rem-healthy"
	})).Return(nil)
	store.On("MarkCompleted", mock.Anything, "rem-healthy").Return(nil)

	err := eng.RunOnce(context.Background())

	// The unresolvable record is absorbed; the rest of the batch still runs
	assert.NoError(t, err)
	store.AssertExpectations(t)
	sender.AssertExpectations(t)
	sender.AssertNumberOfCalls(t, "SendEmail", 1)
}

func TestOverlappingRunReturnsScanInFlight(t *testing.T) {
	store := new(MockEventStore)
	sender := new(MockEmailSender)
	eng := newTestEngine(store, sender)

	started := make(chan struct{})
	release := make(chan struct{})

	store.On("DueCandidates", mock.Anything).Run(func(args mock.Arguments) {
		close(started)
		<-release
	}).Return([]models.ReminderEvent{}, nil)

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- eng.RunOnce(context.Background())
	}()

	// Wait until the first scan holds the guard, then try to start another
	<-started
	err := eng.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrScanInFlight)

	close(release)
	assert.NoError(t, <-firstDone)
	store.AssertNumberOfCalls(t, "DueCandidates", 1)
}

func TestCandidateFetchFailureAbortsScan(t *testing.T) {
	store := new(MockEventStore)
	sender := new(MockEmailSender)
	eng := newTestEngine(store, sender)

	storeErr := &StoreError{Op: "due candidates", Err: errors.New("connection refused")}
	store.On("DueCandidates", mock.Anything).Return(nil, storeErr)

	err := eng.RunOnce(context.Background())

	var got *StoreError
	assert.True(t, errors.As(err, &got))
	sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)

	// The guard is released, so the next run proceeds
	store.ExpectedCalls = nil
	store.On("DueCandidates", mock.Anything).Return([]models.ReminderEvent{}, nil)
	assert.NoError(t, eng.RunOnce(context.Background()))
}

func TestDeliveryFailureLeavesRecordOpen(t *testing.T) {
	store := new(MockEventStore)
	sender := new(MockEmailSender)
	eng := newTestEngine(store, sender)

	event := dueCustomReminder()

	store.On("DueCandidates", mock.Anything).Return([]models.ReminderEvent{event}, nil)
	store.On("DeliveredWithin", mock.Anything, "rem-1", models.ReminderKindCustom, mock.Anything).Return(false, nil)
	sender.On("SendEmail", "owner@example.com", mock.Anything, mock.Anything).Return(errors.New("smtp 554"))

	err := eng.RunOnce(context.Background())

	// A failed send leaves no delivery row and no completion, so the next
	// scan retries the record
	assert.NoError(t, err)
	store.AssertNotCalled(t, "AppendDelivery", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestNotDueCandidateIsPrewarmed(t *testing.T) {
	store := new(MockEventStore)
	sender := new(MockEmailSender)
	prewarmer := new(MockPrewarmer)
	eng := newTestEngine(store, sender)
	eng.Prewarmer = prewarmer

	// Two hours out: beyond the trigger window, inside the prewarm horizon
	event := dueCustomReminder()
	event.ScheduledTime = "11:00"

	store.On("DueCandidates", mock.Anything).Return([]models.ReminderEvent{event}, nil)
	prewarmer.On("RegisterUpcoming", mock.Anything, mock.MatchedBy(func(e *models.ReminderEvent) bool {
		return e.ID == "rem-1"
	}), mock.MatchedBy(func(at time.Time) bool {
		return at.Equal(time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC))
	})).Return(nil)

	err := eng.RunOnce(context.Background())

	assert.NoError(t, err)
	sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
	prewarmer.AssertExpectations(t)
}

func TestDispatchByIDUnknownIDConsumesTrigger(t *testing.T) {
	store := new(MockEventStore)
	sender := new(MockEmailSender)
	eng := newTestEngine(store, sender)

	store.On("GetByID", mock.Anything, "rem-gone").Return(nil, nil)

	err := eng.DispatchByID(context.Background(), "rem-gone")

	assert.NoError(t, err)
	sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatchByIDBypassesDueCheckButKeepsDedup(t *testing.T) {
	store := new(MockEventStore)
	sender := new(MockEmailSender)
	eng := newTestEngine(store, sender)

	// Scheduled well outside the trigger window; an external trigger already
	// asserted the schedule fired
	event := dueCustomReminder()
	event.ScheduledTime = "11:00"

	store.On("GetByID", mock.Anything, "rem-1").Return(&event, nil)
	store.On("DeliveredWithin", mock.Anything, "rem-1", models.ReminderKindCustom, mock.Anything).Return(false, nil)
	sender.On("SendEmail", "owner@example.com", mock.Anything, mock.Anything).Return(nil)
	store.On("AppendDelivery", mock.Anything, mock.Anything).Return(nil)
	store.On("MarkCompleted", mock.Anything, "rem-1").Return(nil)

	err := eng.DispatchByID(context.Background(), "rem-1")

	assert.NoError(t, err)
	store.AssertExpectations(t)
	sender.AssertExpectations(t)
}
