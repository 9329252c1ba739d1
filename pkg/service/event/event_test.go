package event_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/domain/types"
	"github.com/secmon-lab/retention/pkg/service/event"
	"github.com/segmentio/kafka-go"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func newEvent(teamID types.TeamID) *model.ConnectionEvent {
	ev := model.NewConnectionEvent("connect",
		types.ConnectionStatusConnecting,
		types.ConnectionStatusConnected,
		time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	ev.TeamID = teamID
	return ev
}

func TestKafka_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("keyed by team", func(t *testing.T) {
		w := &recordingWriter{}
		pub := event.NewKafkaWithWriter(w, "retention.connector")

		ev := newEvent("T123")
		gt.NoError(t, pub.Publish(ctx, ev))
		gt.A(t, w.msgs).Length(1)

		msg := w.msgs[0]
		gt.Equal(t, string(msg.Key), "T123")
		gt.Equal(t, msg.Time, ev.Timestamp)

		var decoded model.ConnectionEvent
		gt.NoError(t, json.Unmarshal(msg.Value, &decoded))
		gt.Equal(t, decoded.ID, ev.ID)
		gt.Equal(t, decoded.To, types.ConnectionStatusConnected)

		headers := map[string]string{}
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		gt.Equal(t, headers["operation"], "connect")
		gt.Equal(t, headers["status"], "connected")

		gt.NoError(t, pub.Close())
		gt.True(t, w.closed)
	})

	t.Run("event ID key without team", func(t *testing.T) {
		w := &recordingWriter{}
		pub := event.NewKafkaWithWriter(w, "retention.connector")

		ev := newEvent("")
		gt.NoError(t, pub.Publish(ctx, ev))
		gt.Equal(t, string(w.msgs[0].Key), ev.ID.String())
	})

	t.Run("write failure", func(t *testing.T) {
		w := &recordingWriter{err: errors.New("broker unavailable")}
		pub := event.NewKafkaWithWriter(w, "retention.connector")

		err := pub.Publish(ctx, newEvent("T123"))
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("broker unavailable")
	})
}

func TestLogger_Publish(t *testing.T) {
	gt.NoError(t, event.NewLogger().Publish(context.Background(), newEvent("T123")))
}
