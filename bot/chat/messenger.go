package chat

import (
	"context"
	"fmt"
	"sync"

	"ChatBot/entity"
)

// Connectors routes outbound activities to the connector registered for their channel.
type Connectors struct {
	mu       sync.RWMutex
	channels map[string]Connector
	fallback Connector
}

func NewConnectors() *Connectors {
	return &Connectors{channels: make(map[string]Connector)}
}

// Register sets the connector used for channelID.
func (c *Connectors) Register(channelID string, connector Connector) {
	c.mu.Lock()
	c.channels[channelID] = connector
	c.mu.Unlock()
}

// SetFallback sets the connector used for channels without a registration.
func (c *Connectors) SetFallback(connector Connector) {
	c.mu.Lock()
	c.fallback = connector
	c.mu.Unlock()
}

func (c *Connectors) Send(ctx context.Context, activity *entity.Activity) error {
	c.mu.RLock()
	connector, ok := c.channels[activity.ChannelID]
	if !ok {
		connector = c.fallback
	}
	c.mu.RUnlock()

	if connector == nil {
		return fmt.Errorf("no connector for channel: %s", activity.ChannelID)
	}
	return connector.Send(ctx, activity)
}

// ConnectorFunc adapts a function to the Connector interface.
type ConnectorFunc func(ctx context.Context, activity *entity.Activity) error

func (f ConnectorFunc) Send(ctx context.Context, activity *entity.Activity) error {
	return f(ctx, activity)
}
