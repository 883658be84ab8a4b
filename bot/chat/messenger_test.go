package chat

import (
	"context"
	"testing"

	"ChatBot/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectors_DispatchByChannel(t *testing.T) {
	ctx := context.Background()
	telegram := &recordingConnector{}
	fallback := &recordingConnector{}

	connectors := NewConnectors()
	connectors.Register("telegram", telegram)
	connectors.SetFallback(fallback)

	require.NoError(t, connectors.Send(ctx, &entity.Activity{ChannelID: "telegram", Text: "a"}))
	require.NoError(t, connectors.Send(ctx, &entity.Activity{ChannelID: "emulator", Text: "b"}))

	assert.Equal(t, []string{"a"}, texts(telegram.sent))
	assert.Equal(t, []string{"b"}, texts(fallback.sent))
}

func TestConnectors_NoMatch(t *testing.T) {
	err := NewConnectors().Send(context.Background(), &entity.Activity{ChannelID: "sms"})
	assert.ErrorContains(t, err, "sms")
}

func TestConnectorFunc(t *testing.T) {
	var got string
	c := ConnectorFunc(func(_ context.Context, a *entity.Activity) error {
		got = a.Text
		return nil
	})
	require.NoError(t, c.Send(context.Background(), &entity.Activity{Text: "hello"}))
	assert.Equal(t, "hello", got)
}
