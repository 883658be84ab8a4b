package chat

import "ChatBot/entity"

// ActivityListener is called for every inbound activity before it is routed.
// This allows broadcasting transcripts without creating circular imports
// between bot packages and the web socket hub.
type ActivityListener interface {
	OnActivity(activity *entity.Activity)
}
