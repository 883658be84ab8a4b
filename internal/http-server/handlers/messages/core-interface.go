package messages

import (
	"context"

	"ChatBot/bot/chat"
	"ChatBot/entity"
)

type Core interface {
	OnTurn(ctx context.Context, activity *entity.Activity, connector chat.Connector) ([]*entity.Activity, error)
}
