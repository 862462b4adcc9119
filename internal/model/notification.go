package model

import (
	"encoding/json"
	"time"
)

// NotificationKind identifies the e-mail template used for a notification.
type NotificationKind string

const (
	NotificationOrderConfirmation NotificationKind = "order_confirmation"
	NotificationOrderStatus       NotificationKind = "order_status"
)

// NotificationState is the delivery state of an outbox row.
type NotificationState string

const (
	NotificationPending NotificationState = "pending"
	NotificationSent    NotificationState = "sent"
	NotificationFailed  NotificationState = "failed"
)

// Notification is an outbox row waiting to be delivered by the worker.
type Notification struct {
	ID            string            `json:"id"`
	OrderID       string            `json:"orderId"`
	Kind          NotificationKind  `json:"kind"`
	Recipient     string            `json:"recipient"`
	Payload       json.RawMessage   `json:"payload"`
	State         NotificationState `json:"state"`
	Attempts      int               `json:"attempts"`
	NextAttemptAt time.Time         `json:"nextAttemptAt"`
	LastError     string            `json:"lastError,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// OrderEmailPayload is the data rendered into order e-mails.
type OrderEmailPayload struct {
	Order        Order       `json:"order"`
	CustomerName string      `json:"customerName"`
	OldStatus    OrderStatus `json:"oldStatus,omitempty"`
}
