package models

import "time"

// SQSTriggerMessageBody is the message format on the reminder trigger queue.
// EventBridge one-shot schedules and manual re-drives both use it.
type SQSTriggerMessageBody struct {
	ReminderID string `json:"reminder_id"`
	Kind       string `json:"kind"`
	TemplateID string `json:"template_id,omitempty"`
}

// DeliveryAuditMessage is published to Kafka after each successful send.
type DeliveryAuditMessage struct {
	OriginID    string    `json:"origin_id"`
	Kind        string    `json:"kind"`
	NotifyEmail string    `json:"notify_email"`
	FiredAt     time.Time `json:"fired_at"`
}
