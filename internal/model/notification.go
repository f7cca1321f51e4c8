package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

const (
	NotificationChannelWhatsapp = "whatsapp"
	NotificationChannelEmail    = "email"
)

// ReminderResult summarizes one appointment-reminder batch run. The batch
// always produces a result; per-item and even fetch-level failures are
// folded into the counts and logs rather than raised to the caller.
type ReminderResult struct {
	SentCount   int      `json:"sent_count"`
	FailedCount int      `json:"failed_count"`
	Logs        []string `json:"logs"`
}

// Notification is one outbound message. Delivery is delegated to the
// channel gateway; the row tracks what was attempted and when.
type Notification struct {
	Base
	OrganizationID uuid.UUID          `db:"organization_id" json:"organization_id"`
	Channel        string             `db:"channel" json:"channel"`
	Recipient      string             `db:"recipient" json:"recipient"`
	Subject        string             `db:"subject" json:"subject"`
	Content        string             `db:"content" json:"content"`
	Status         NotificationStatus `db:"status" json:"status"`
	SentAt         *time.Time         `db:"sent_at" json:"sent_at,omitempty"`
}
