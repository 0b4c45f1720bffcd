package trigger

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"ms-reminders/internal/config"
	"ms-reminders/internal/models"
	"ms-reminders/internal/sqsutil"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// Dispatcher is the slice of the engine the trigger path needs.
type Dispatcher interface {
	DispatchByID(ctx context.Context, reminderID string) error
}

// Processor consumes reminder trigger messages from SQS. EventBridge
// one-shot schedules and manual re-drives land here; each message names a
// single reminder to push through the dispatch pipeline immediately. The
// engine's dedup guard still applies, so a trigger racing the polling scan
// cannot double-send.
type Processor struct {
	sqsClient  *sqs.Client
	cfg        config.Config
	queueURL   string
	dispatcher Dispatcher
}

// NewProcessor creates a new trigger processor
func NewProcessor(sqsClient *sqs.Client, cfg config.Config, dispatcher Dispatcher) *Processor {
	return &Processor{
		sqsClient:  sqsClient,
		cfg:        cfg,
		queueURL:   cfg.SQSTriggerQueueURL,
		dispatcher: dispatcher,
	}
}

// ProcessMessages long-polls the trigger queue until the context is cancelled.
func (p *Processor) ProcessMessages(ctx context.Context) error {
	if p.queueURL == "" {
		log.Println("Trigger queue URL not configured, skipping trigger processor")
		return fmt.Errorf("trigger queue URL not configured")
	}

	log.Printf("Starting to process reminder trigger messages from %s", p.queueURL)

	for {
		select {
		case <-ctx.Done():
			log.Println("Context cancelled, stopping trigger processor")
			return ctx.Err()
		default:
			// Continue processing
		}

		rawMessages, err := sqsutil.ReceiveMessages(ctx, p.sqsClient, p.queueURL)
		if err != nil {
			log.Printf("Error receiving messages from trigger SQS queue: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		if len(rawMessages) == 0 {
			continue // No need to sleep, long polling already waited
		}

		log.Printf("Received %d messages from trigger queue.", len(rawMessages))
		var messagesToDelete []types.DeleteMessageBatchRequestEntry

		for _, rawMessage := range rawMessages {
			var messageBody models.SQSTriggerMessageBody
			if err := json.Unmarshal([]byte(*rawMessage.Body), &messageBody); err != nil {
				log.Printf("Error unmarshalling trigger message body, will delete malformed message: %v", err)
				messagesToDelete = append(messagesToDelete, types.DeleteMessageBatchRequestEntry{
					Id:            rawMessage.MessageId,
					ReceiptHandle: rawMessage.ReceiptHandle,
				})
				continue
			}

			err = p.processTriggerMessage(ctx, &messageBody)
			if err != nil {
				log.Printf("Error processing trigger for reminder %s, it will be retried: %v",
					messageBody.ReminderID, err)
				// If processing fails, DO NOT add it to the delete batch.
				// It will become visible again on the queue for another attempt.
			} else {
				messagesToDelete = append(messagesToDelete, types.DeleteMessageBatchRequestEntry{
					Id:            rawMessage.MessageId,
					ReceiptHandle: rawMessage.ReceiptHandle,
				})
			}
		}

		if len(messagesToDelete) > 0 {
			err := sqsutil.DeleteMessageBatch(ctx, p.queueURL, p.sqsClient, messagesToDelete)
			if err != nil {
				log.Printf("Error batch deleting trigger messages: %v", err)
			}
		}
	}
}

// processTriggerMessage dispatches one reminder through the engine pipeline.
func (p *Processor) processTriggerMessage(ctx context.Context, msg *models.SQSTriggerMessageBody) error {
	if msg.ReminderID == "" {
		log.Printf("Trigger message has empty ReminderID, skipping: %+v", msg)
		return nil // Return nil to delete the message from queue
	}

	log.Printf("Processing trigger for reminder %s (kind: %s)", msg.ReminderID, msg.Kind)

	if err := p.dispatcher.DispatchByID(ctx, msg.ReminderID); err != nil {
		return fmt.Errorf("failed to dispatch reminder %s: %w", msg.ReminderID, err)
	}

	return nil
}
