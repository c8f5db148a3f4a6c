package push

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/finlyapp/finly-backend/pkg/config"
	"github.com/finlyapp/finly-backend/pkg/enums"
	"github.com/finlyapp/finly-backend/pkg/logger"
)

type fakePublisher struct {
	err        error
	data       []byte
	attributes map[string]string
	calls      int
}

func (f *fakePublisher) Publish(_ context.Context, data []byte, attributes map[string]string) error {
	f.calls++
	f.data = data
	f.attributes = attributes
	return f.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "push-test", Level: zerolog.ErrorLevel, Output: io.Discard})
}

func TestSendFillsDefaultsAndAttributes(t *testing.T) {
	pub := &fakePublisher{}
	sender, err := NewSender(pub, config.NotifierConfig{PushIcon: "/icons/app.png", PushBadge: "/icons/badge.png"}, testLogger())
	require.NoError(t, err)

	userID := uuid.New()
	url := "/subscriptions/abc"
	err = sender.Send(context.Background(), userID, Payload{
		Title:   "Netflix charged",
		Body:    "Netflix charged 15.99 USD.",
		Type:    enums.NotificationTypeSubscription,
		URL:     &url,
		Actions: []Action{{Action: "open", Title: "View subscription"}},
		Tag:     "n-1",
	})
	require.NoError(t, err)
	require.Equal(t, 1, pub.calls)
	require.Equal(t, userID.String(), pub.attributes["user_id"])
	require.Equal(t, "subscription", pub.attributes["type"])

	var sent Payload
	require.NoError(t, json.Unmarshal(pub.data, &sent))
	require.Equal(t, "/icons/app.png", sent.Icon)
	require.Equal(t, "/icons/badge.png", sent.Badge)
	require.Equal(t, "Netflix charged", sent.Title)
	require.NotNil(t, sent.URL)
	require.Equal(t, url, *sent.URL)
	require.Len(t, sent.Actions, 1)
	require.Equal(t, "View subscription", sent.Actions[0].Title)
}

func TestSendKeepsExplicitIcon(t *testing.T) {
	pub := &fakePublisher{}
	sender, err := NewSender(pub, config.NotifierConfig{PushIcon: "/icons/app.png"}, testLogger())
	require.NoError(t, err)

	err = sender.Send(context.Background(), uuid.New(), Payload{
		Title: "Nice work",
		Type:  enums.NotificationTypeAchievement,
		Icon:  "/icons/trophy.png",
	})
	require.NoError(t, err)

	var sent Payload
	require.NoError(t, json.Unmarshal(pub.data, &sent))
	require.Equal(t, "/icons/trophy.png", sent.Icon)
}

func TestSendRequiresUser(t *testing.T) {
	sender, err := NewSender(&fakePublisher{}, config.NotifierConfig{}, testLogger())
	require.NoError(t, err)

	err = sender.Send(context.Background(), uuid.Nil, Payload{Title: "x"})
	require.Error(t, err)
}

func TestSendWrapsPublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("topic gone")}
	sender, err := NewSender(pub, config.NotifierConfig{}, testLogger())
	require.NoError(t, err)

	err = sender.Send(context.Background(), uuid.New(), Payload{Title: "x", Type: enums.NotificationTypeSystem})
	require.Error(t, err)
	require.Contains(t, err.Error(), "publish push payload")
}
