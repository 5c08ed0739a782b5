package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"liyu1981.xyz/vessel-resource-service/pkg/common"
	"liyu1981.xyz/vessel-resource-service/pkg/metrics"
	"liyu1981.xyz/vessel-resource-service/pkg/models"
)

// Dispatcher sends a new alert to every opted-in crew member on each configured channel and
// records successful deliveries. Failures are logged; the channel then stays unsent.
type Dispatcher struct {
	crew     CrewLister
	recorder Recorder
	email    EmailSender
	sms      SMSSender
	template *Template
	timeout  time.Duration
	logger   *zap.Logger
	wg       sync.WaitGroup
}

type DispatcherOption func(*Dispatcher)

func WithEmailSender(sender EmailSender) DispatcherOption {
	return func(d *Dispatcher) {
		d.email = sender
	}
}

func WithSMSSender(sender SMSSender) DispatcherOption {
	return func(d *Dispatcher) {
		d.sms = sender
	}
}

func WithTemplate(template *Template) DispatcherOption {
	return func(d *Dispatcher) {
		if template != nil {
			d.template = template
		}
	}
}

func WithTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

func NewDispatcher(crew CrewLister, recorder Recorder, opts ...DispatcherOption) (*Dispatcher, error) {
	if crew == nil || recorder == nil {
		return nil, errors.New("notify: nil crew lister or recorder")
	}
	tpl, err := NewTemplate("")
	if err != nil {
		return nil, err
	}
	d := &Dispatcher{
		crew:     crew,
		recorder: recorder,
		template: tpl,
		timeout:  30 * time.Second,
		logger: common.GetLoggerWith(
			common.LoggerNameNotifier,
			zap.String(common.LoggerFieldCategory, common.LoggerCategoryNotify),
		),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Notify dispatches in the background. Use Wait to drain pending dispatches.
func (d *Dispatcher) Notify(alert models.Alert) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.Dispatch(ctx, alert); err != nil {
			d.logger.Error("Alert dispatch failed", zap.String("alertId", alert.ID), zap.Error(err))
		}
	}()
}

func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func recipients(crew []models.CrewMember) (emails, phones []string) {
	emails = common.Mapper(
		common.Filter(crew, func(m models.CrewMember) bool { return m.NotifyEmail && m.Email != "" }),
		func(m models.CrewMember) string { return m.Email },
	)
	phones = common.Mapper(
		common.Filter(crew, func(m models.CrewMember) bool { return m.NotifySMS && m.Phone != "" }),
		func(m models.CrewMember) string { return m.Phone },
	)
	return emails, phones
}

// Dispatch sends the alert synchronously. Channels are sent concurrently and one failing
// channel does not stop the other.
func (d *Dispatcher) Dispatch(ctx context.Context, alert models.Alert) error {
	crew, err := d.crew.ListCrew(ctx)
	if err != nil {
		return fmt.Errorf("list crew: %w", err)
	}
	emails, phones := recipients(crew)

	content, err := d.template.BuildContent(alert)
	if err != nil {
		return fmt.Errorf("render notification: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if d.email != nil && len(emails) > 0 {
		g.Go(func() error {
			d.deliver(ctx, alert.ID, models.ChannelEmail, emails, func() error {
				return d.email.SendEmail(ctx, emails, content)
			})
			return nil
		})
	}

	if d.sms != nil && len(phones) > 0 {
		g.Go(func() error {
			d.deliver(ctx, alert.ID, models.ChannelSMS, phones, func() error {
				return d.sms.SendSMS(ctx, phones, content)
			})
			return nil
		})
	}

	return g.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, alertID string, channel models.Channel, to []string, send func() error) {
	if err := send(); err != nil {
		metrics.IncNotification(string(channel), metrics.ResultError)
		d.logger.Warn("Notification failed",
			zap.String("alertId", alertID),
			zap.String("channel", string(channel)),
			zap.Error(err),
		)
		return
	}
	metrics.IncNotification(string(channel), metrics.ResultSuccess)

	if _, err := d.recorder.RecordNotification(ctx, alertID, channel, to); err != nil {
		d.logger.Error("Recording notification failed",
			zap.String("alertId", alertID),
			zap.String("channel", string(channel)),
			zap.Error(err),
		)
		return
	}
	d.logger.Info("Notification sent",
		zap.String("alertId", alertID),
		zap.String("channel", string(channel)),
		zap.Strings("recipients", to),
	)
}
