package models

import "time"

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelSound Channel = "sound"
)

type Acknowledgement struct {
	Status bool       `json:"status"`
	By     string     `json:"by,omitempty"`
	At     *time.Time `json:"at,omitempty"`
}

type ChannelNotification struct {
	Sent       bool       `json:"sent"`
	Recipients []string   `gorm:"serializer:json" json:"recipients,omitempty"`
	SentAt     *time.Time `json:"sentAt,omitempty"`
}

type SoundNotification struct {
	Played   bool       `json:"played"`
	PlayedAt *time.Time `json:"playedAt,omitempty"`
}

type Alert struct {
	ID                 string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Resource           ResourceType    `gorm:"index;type:varchar(10)" json:"resource"`
	Severity           Severity        `gorm:"index;type:varchar(10);check:severity IN ('warning','critical')" json:"severity"`
	Level              float64         `json:"level"`
	Message            string          `json:"message"`
	Timestamp          time.Time       `gorm:"index" json:"timestamp"`
	EstimatedDepletion *time.Time      `json:"estimatedDepletion,omitempty"`
	Acknowledged       Acknowledgement `gorm:"embedded;embeddedPrefix:ack_" json:"acknowledged"`
	ResolvedAt         *time.Time      `gorm:"index" json:"resolvedAt,omitempty"`
	ResolvedBy         string          `json:"resolvedBy,omitempty"`

	Email ChannelNotification `gorm:"embedded;embeddedPrefix:email_" json:"email"`
	SMS   ChannelNotification `gorm:"embedded;embeddedPrefix:sms_" json:"sms"`
	Sound SoundNotification   `gorm:"embedded;embeddedPrefix:sound_" json:"sound"`
}

func (a *Alert) Active() bool {
	return a.ResolvedAt == nil
}

type AlertStats struct {
	Total        int64                  `json:"total"`
	Active       int64                  `json:"active"`
	Acknowledged int64                  `json:"acknowledged"`
	Resolved     int64                  `json:"resolved"`
	BySeverity   map[Severity]int64     `json:"bySeverity"`
	ByResource   map[ResourceType]int64 `json:"byResource"`
}
