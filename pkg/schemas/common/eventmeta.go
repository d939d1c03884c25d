package common

type EventMeta struct {
	EventType  string // e.g. "conversation.intent.v1"
	Exchange   string // e.g. "conversation.intents"
	RoutingKey string // e.g. "conversation.open.v1"
}
