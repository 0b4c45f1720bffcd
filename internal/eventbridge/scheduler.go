package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"ms-reminders/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/scheduler"
	"github.com/aws/aws-sdk-go-v2/service/scheduler/types"

	appconfig "ms-reminders/internal/config"
)

const schedulePrefix = "reminder-fire-"

// Service registers one-shot EventBridge Scheduler entries for upcoming
// reminder occurrences. Each schedule fires a trigger message into the SQS
// trigger queue at the resolved instant and deletes itself afterwards. This
// complements the polling scan: the poll is the safety net, the schedule is
// the precise trigger.
type Service struct {
	SchedulerClient *scheduler.Client
	Config          appconfig.Config
}

// NewService creates a new scheduler service.
func NewService(cfg appconfig.Config, schedulerClient *scheduler.Client) *Service {
	return &Service{
		SchedulerClient: schedulerClient,
		Config:          cfg,
	}
}

// RegisterUpcoming creates or updates the one-shot schedule for a reminder
// occurrence. Satisfies engine.SchedulePrewarmer.
func (s *Service) RegisterUpcoming(ctx context.Context, event *models.ReminderEvent, at time.Time) error {
	scheduleName := schedulePrefix + event.ID
	log.Printf("Creating/updating schedule '%s' at time: %s", scheduleName, at)

	// EventBridge Scheduler expression for a one-shot: at(YYYY-MM-DDTHH:mm:ss)
	scheduleExpression := fmt.Sprintf("at(%s)", at.UTC().Format("2006-01-02T15:04:05"))

	messageBody := models.SQSTriggerMessageBody{
		ReminderID: event.ID,
		Kind:       string(event.Kind),
	}
	inputJSON, err := json.Marshal(messageBody)
	if err != nil {
		log.Printf("Error marshaling trigger message body to JSON: %v", err)
		return err
	}

	target := types.Target{
		Arn:     aws.String(s.Config.SQSTriggerQueueARN),
		RoleArn: aws.String(s.Config.SchedulerRoleARN),
		Input:   aws.String(string(inputJSON)),
	}

	// First, try to create the schedule
	_, err = s.SchedulerClient.CreateSchedule(ctx, &scheduler.CreateScheduleInput{
		Name:                       aws.String(scheduleName),
		GroupName:                  aws.String(s.Config.SchedulerGroupName),
		ScheduleExpression:         aws.String(scheduleExpression),
		Target:                     &target,
		FlexibleTimeWindow:         &types.FlexibleTimeWindow{Mode: types.FlexibleTimeWindowModeOff},
		ActionAfterCompletion:      types.ActionAfterCompletionDelete,
		ScheduleExpressionTimezone: aws.String("UTC"),
	})

	if err != nil {
		var conflict *types.ConflictException
		if errors.As(err, &conflict) {
			// Re-registration across scans lands here; the update keeps the
			// schedule in sync with any edited date/time.
			_, updateErr := s.SchedulerClient.UpdateSchedule(ctx, &scheduler.UpdateScheduleInput{
				Name:                       aws.String(scheduleName),
				GroupName:                  aws.String(s.Config.SchedulerGroupName),
				ScheduleExpression:         aws.String(scheduleExpression),
				Target:                     &target,
				FlexibleTimeWindow:         &types.FlexibleTimeWindow{Mode: types.FlexibleTimeWindowModeOff},
				ActionAfterCompletion:      types.ActionAfterCompletionDelete,
				ScheduleExpressionTimezone: aws.String("UTC"),
			})
			if updateErr != nil {
				log.Printf("Failed to update EventBridge schedule for reminder %s: %v", event.ID, updateErr)
				return updateErr
			}
			return nil
		}
		log.Printf("Failed to create EventBridge schedule for reminder %s: %v", event.ID, err)
		return err
	}

	log.Printf("Successfully created EventBridge schedule for reminder %s.", event.ID)
	return nil
}

// DeleteSchedule removes a reminder's schedule from EventBridge.
func (s *Service) DeleteSchedule(ctx context.Context, reminderID string) {
	scheduleName := schedulePrefix + reminderID
	log.Printf("Deleting schedule '%s'", scheduleName)

	_, err := s.SchedulerClient.DeleteSchedule(ctx, &scheduler.DeleteScheduleInput{
		Name:      aws.String(scheduleName),
		GroupName: aws.String(s.Config.SchedulerGroupName),
	})

	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			// Not an error: one-shot schedules delete themselves after firing.
			log.Printf("Schedule '%s' not found for deletion, it may have already completed.", scheduleName)
			return
		}
		log.Printf("Error deleting schedule '%s': %v", scheduleName, err)
	} else {
		log.Printf("Successfully deleted schedule '%s'", scheduleName)
	}
}
