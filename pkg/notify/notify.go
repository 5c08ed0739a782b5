// Package notify delivers alert notifications to crew over email and SMS gateways.
package notify

import (
	"context"

	"liyu1981.xyz/vessel-resource-service/pkg/models"
)

type Content struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

//go:generate mockgen -destination=mocks/mock_sender.go -package=mocks liyu1981.xyz/vessel-resource-service/pkg/notify EmailSender,SMSSender

type EmailSender interface {
	SendEmail(ctx context.Context, recipients []string, content Content) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, recipients []string, content Content) error
}

// Recorder persists a successful delivery on an alert. alerts.Lifecycle implements it.
type Recorder interface {
	RecordNotification(ctx context.Context, id string, channel models.Channel, recipients []string) (*models.Alert, error)
}

// CrewLister supplies notification recipients.
type CrewLister interface {
	ListCrew(ctx context.Context) ([]models.CrewMember, error)
}
