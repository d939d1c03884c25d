package conversation

import "github.com/roboricindustries/raycon-conversation/pkg/schemas/common"

const (
	EventType       = "conversation.intent.v1"
	Exchange        = "conversation.intents"
	RoutingKeyOpen  = "conversation.open.v1"
	RoutingKeyPopup = "conversation.popup.v1"
)

// EventMeta picks the routing key from the screen the intent targets.
func (in Intent) EventMeta() common.EventMeta {
	key := RoutingKeyOpen
	if in.Target == ScreenConversationPopup {
		key = RoutingKeyPopup
	}
	return common.EventMeta{
		EventType:  EventType,
		Exchange:   Exchange,
		RoutingKey: key,
	}
}
