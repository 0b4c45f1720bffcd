package trigger

import (
	"context"
	"errors"
	"testing"

	"ms-reminders/internal/config"
	"ms-reminders/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockDispatcher is a mock of the Dispatcher interface
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) DispatchByID(ctx context.Context, reminderID string) error {
	args := m.Called(ctx, reminderID)
	return args.Error(0)
}

func TestProcessTriggerMessageDispatchesReminder(t *testing.T) {
	dispatcher := new(MockDispatcher)
	dispatcher.On("DispatchByID", mock.Anything, "rem-1").Return(nil)

	p := NewProcessor(nil, config.Config{SQSTriggerQueueURL: "http://localhost/queue"}, dispatcher)

	msg := &models.SQSTriggerMessageBody{
		ReminderID: "rem-1",
		Kind:       string(models.ReminderKindCustom),
	}

	err := p.processTriggerMessage(context.Background(), msg)

	assert.NoError(t, err)
	dispatcher.AssertExpectations(t)
}

func TestProcessTriggerMessageEmptyIDIsConsumed(t *testing.T) {
	dispatcher := new(MockDispatcher)

	p := NewProcessor(nil, config.Config{SQSTriggerQueueURL: "http://localhost/queue"}, dispatcher)

	// A nil error deletes the malformed message instead of redelivering it forever
	err := p.processTriggerMessage(context.Background(), &models.SQSTriggerMessageBody{})

	assert.NoError(t, err)
	dispatcher.AssertNotCalled(t, "DispatchByID", mock.Anything, mock.Anything)
}

func TestProcessTriggerMessageDispatchFailurePropagates(t *testing.T) {
	dispatcher := new(MockDispatcher)
	dispatcher.On("DispatchByID", mock.Anything, "rem-1").Return(errors.New("store unavailable"))

	p := NewProcessor(nil, config.Config{SQSTriggerQueueURL: "http://localhost/queue"}, dispatcher)

	msg := &models.SQSTriggerMessageBody{ReminderID: "rem-1"}

	// A non-nil error keeps the message on the queue for another attempt
	err := p.processTriggerMessage(context.Background(), msg)

	assert.Error(t, err)
	dispatcher.AssertExpectations(t)
}

func TestProcessMessagesRequiresQueueURL(t *testing.T) {
	p := NewProcessor(nil, config.Config{}, new(MockDispatcher))

	err := p.ProcessMessages(context.Background())

	assert.Error(t, err)
}
