package events

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	ledgerevents "github.com/sheikh-saqib/bank-account-simulator/internal/models/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogPublisherWritesEvent(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := p.Publish(context.Background(), "111", ledgerevents.LedgerEvent{
		EventID:         "evt-1",
		Type:            ledgerevents.Deposited,
		CustomerID:      "111",
		AmountInPennies: 500,
	})
	require.NoError(t, err)

	var line struct {
		Msg   string `json:"msg"`
		Key   string `json:"key"`
		Event struct {
			Type            string `json:"type"`
			AmountInPennies int64  `json:"amount_in_pennies"`
		} `json:"event"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "ledger event", line.Msg)
	assert.Equal(t, "111", line.Key)
	assert.Equal(t, "deposited", line.Event.Type)
	assert.Equal(t, int64(500), line.Event.AmountInPennies)
}

func TestLogPublisherRejectsUnencodableEvent(t *testing.T) {
	p := NewLogPublisher(nil)
	require.Error(t, p.Publish(context.Background(), "111", func() {}))
}
