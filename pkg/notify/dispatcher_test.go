package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"liyu1981.xyz/vessel-resource-service/pkg/common"
	"liyu1981.xyz/vessel-resource-service/pkg/models"
	"liyu1981.xyz/vessel-resource-service/pkg/notify"
	"liyu1981.xyz/vessel-resource-service/pkg/notify/mocks"
)

type staticCrew []models.CrewMember

func (c staticCrew) ListCrew(context.Context) ([]models.CrewMember, error) {
	return c, nil
}

type recorded struct {
	id         string
	channel    models.Channel
	recipients []string
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recorded
}

func (r *fakeRecorder) RecordNotification(_ context.Context, id string, channel models.Channel, recipients []string) (*models.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recorded{id: id, channel: channel, recipients: recipients})
	return &models.Alert{ID: id}, nil
}

func (r *fakeRecorder) channels() map[models.Channel][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[models.Channel][]string{}
	for _, c := range r.calls {
		out[c.channel] = c.recipients
	}
	return out
}

var crew = staticCrew{
	{ID: "chief", Email: "chief@vessel.test", Phone: "+4711111111", NotifyEmail: true, NotifySMS: true},
	{ID: "bosun", Email: "bosun@vessel.test", Phone: "+4722222222", NotifyEmail: true},
	{ID: "cook", Email: "cook@vessel.test", Phone: "+4733333333"},
}

var alert = models.Alert{
	ID:        "alert-1",
	Resource:  models.ResourceFuel,
	Severity:  models.SeverityCritical,
	Level:     18,
	Message:   "fuel level critically low at 18.0%",
	Timestamp: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
}

func TestDispatchSendsToOptedInCrew(t *testing.T) {
	common.SetTestLoggerNop()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	email := mocks.NewMockEmailSender(ctrl)
	sms := mocks.NewMockSMSSender(ctrl)
	rec := &fakeRecorder{}

	email.EXPECT().
		SendEmail(gomock.Any(), []string{"chief@vessel.test", "bosun@vessel.test"}, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ []string, content notify.Content) error {
			assert.Equal(t, "[CRITICAL] fuel level critically low at 18.0%", content.Subject)
			assert.Contains(t, content.Body, "Resource: fuel")
			return nil
		})
	sms.EXPECT().SendSMS(gomock.Any(), []string{"+4711111111"}, gomock.Any()).Return(nil)

	d, err := notify.NewDispatcher(crew, rec, notify.WithEmailSender(email), notify.WithSMSSender(sms))
	require.NoError(t, err)

	require.NoError(t, d.Dispatch(context.Background(), alert))

	channels := rec.channels()
	assert.Equal(t, []string{"chief@vessel.test", "bosun@vessel.test"}, channels[models.ChannelEmail])
	assert.Equal(t, []string{"+4711111111"}, channels[models.ChannelSMS])
}

func TestDispatchFailureLeavesChannelUnrecorded(t *testing.T) {
	common.SetTestLoggerNop()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	email := mocks.NewMockEmailSender(ctrl)
	sms := mocks.NewMockSMSSender(ctrl)
	rec := &fakeRecorder{}

	email.EXPECT().SendEmail(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("smtp relay down"))
	sms.EXPECT().SendSMS(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	d, err := notify.NewDispatcher(crew, rec, notify.WithEmailSender(email), notify.WithSMSSender(sms))
	require.NoError(t, err)

	require.NoError(t, d.Dispatch(context.Background(), alert))

	channels := rec.channels()
	_, emailRecorded := channels[models.ChannelEmail]
	assert.False(t, emailRecorded)
	assert.Contains(t, channels, models.ChannelSMS)
}

func TestNotifyRunsInBackground(t *testing.T) {
	common.SetTestLoggerNop()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	email := mocks.NewMockEmailSender(ctrl)
	rec := &fakeRecorder{}
	email.EXPECT().SendEmail(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	d, err := notify.NewDispatcher(crew, rec, notify.WithEmailSender(email))
	require.NoError(t, err)

	d.Notify(alert)
	d.Wait()

	assert.Contains(t, rec.channels(), models.ChannelEmail)
}

func TestDispatchWithoutSendersIsNoop(t *testing.T) {
	common.SetTestLoggerNop()
	rec := &fakeRecorder{}

	d, err := notify.NewDispatcher(crew, rec)
	require.NoError(t, err)
	require.NoError(t, d.Dispatch(context.Background(), alert))
	assert.Empty(t, rec.channels())

	_, err = notify.NewDispatcher(nil, rec)
	assert.Error(t, err)
}
