package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"liyu1981.xyz/vessel-resource-service/pkg/models"
)

func (s *GormStore) CreateAlert(ctx context.Context, alert *models.Alert) error {
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(alert).Error
}

func (s *GormStore) FindUnresolvedAlert(ctx context.Context, resource models.ResourceType, severity models.Severity) (*models.Alert, error) {
	var alerts []models.Alert
	err := s.db.WithContext(ctx).
		Where("resource = ? AND severity = ? AND resolved_at IS NULL", resource, severity).
		Order("timestamp desc").
		Limit(1).
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	if len(alerts) == 0 {
		return nil, nil
	}
	return &alerts[0], nil
}

func (s *GormStore) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	var alert models.Alert
	if err := s.db.WithContext(ctx).First(&alert, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &alert, nil
}

func (s *GormStore) ListAlerts(ctx context.Context, filter AlertFilter) ([]models.Alert, error) {
	q := s.db.WithContext(ctx).Model(&models.Alert{})
	if filter.Resource != "" {
		q = q.Where("resource = ?", filter.Resource)
	}
	if filter.Severity != "" {
		q = q.Where("severity = ?", filter.Severity)
	}
	if filter.Active != nil {
		if *filter.Active {
			q = q.Where("resolved_at IS NULL")
		} else {
			q = q.Where("resolved_at IS NOT NULL")
		}
	}

	var alerts []models.Alert
	err := q.Order("timestamp desc").Find(&alerts).Error
	return alerts, err
}

func (s *GormStore) ListUnresolved(ctx context.Context, resource models.ResourceType) ([]models.Alert, error) {
	active := true
	return s.ListAlerts(ctx, AlertFilter{Resource: resource, Active: &active})
}

// updateAlert re-reads the alert inside a transaction, lets mutate change it and writes back
// only the returned columns. A nil column list means nothing changed.
func (s *GormStore) updateAlert(ctx context.Context, id string, mutate func(a *models.Alert) []string) (*models.Alert, error) {
	var alert models.Alert
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&alert, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		columns := mutate(&alert)
		if len(columns) == 0 {
			return nil
		}
		return tx.Model(&alert).Select(columns).Updates(&alert).Error
	})
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (s *GormStore) Acknowledge(ctx context.Context, id, actor string, at time.Time) (*models.Alert, error) {
	return s.updateAlert(ctx, id, func(a *models.Alert) []string {
		if a.Acknowledged.Status {
			return nil
		}
		a.Acknowledged = models.Acknowledgement{Status: true, By: actor, At: &at}
		return []string{"ack_status", "ack_by", "ack_at"}
	})
}

func (s *GormStore) Resolve(ctx context.Context, id, actor string, at time.Time) (*models.Alert, error) {
	return s.updateAlert(ctx, id, func(a *models.Alert) []string {
		if a.ResolvedAt != nil {
			return nil
		}
		a.ResolvedAt = &at
		a.ResolvedBy = actor
		return []string{"resolved_at", "resolved_by"}
	})
}

func (s *GormStore) MarkNotification(ctx context.Context, id string, channel models.Channel, recipients []string, at time.Time) (*models.Alert, error) {
	switch channel {
	case models.ChannelEmail, models.ChannelSMS:
	case models.ChannelSound:
		return s.MarkSoundPlayed(ctx, id, at)
	default:
		return nil, fmt.Errorf("store: unknown notification channel %q", channel)
	}

	return s.updateAlert(ctx, id, func(a *models.Alert) []string {
		n := &a.Email
		prefix := "email_"
		if channel == models.ChannelSMS {
			n = &a.SMS
			prefix = "sms_"
		}
		// first delivery record wins
		if n.Sent {
			return nil
		}
		n.Sent = true
		n.Recipients = recipients
		n.SentAt = &at
		return []string{prefix + "sent", prefix + "recipients", prefix + "sent_at"}
	})
}

func (s *GormStore) MarkSoundPlayed(ctx context.Context, id string, at time.Time) (*models.Alert, error) {
	return s.updateAlert(ctx, id, func(a *models.Alert) []string {
		if a.Sound.Played {
			return nil
		}
		a.Sound = models.SoundNotification{Played: true, PlayedAt: &at}
		return []string{"sound_played", "sound_played_at"}
	})
}

type groupCount struct {
	Grp string
	Cnt int64
}

func (s *GormStore) CountAlerts(ctx context.Context) (models.AlertStats, error) {
	stats := models.AlertStats{
		BySeverity: map[models.Severity]int64{},
		ByResource: map[models.ResourceType]int64{},
	}
	q := s.db.WithContext(ctx).Model(&models.Alert{})

	if err := q.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}
	if err := q.Session(&gorm.Session{}).Where("resolved_at IS NULL").Count(&stats.Active).Error; err != nil {
		return stats, err
	}
	if err := q.Session(&gorm.Session{}).Where("ack_status = ?", true).Count(&stats.Acknowledged).Error; err != nil {
		return stats, err
	}
	stats.Resolved = stats.Total - stats.Active

	var rows []groupCount
	err := q.Session(&gorm.Session{}).
		Select("severity AS grp, count(*) AS cnt").
		Group("severity").
		Scan(&rows).Error
	if err != nil {
		return stats, err
	}
	for _, row := range rows {
		stats.BySeverity[models.Severity(row.Grp)] = row.Cnt
	}

	rows = nil
	err = q.Session(&gorm.Session{}).
		Select("resource AS grp, count(*) AS cnt").
		Group("resource").
		Scan(&rows).Error
	if err != nil {
		return stats, err
	}
	for _, row := range rows {
		stats.ByResource[models.ResourceType(row.Grp)] = row.Cnt
	}

	return stats, nil
}
