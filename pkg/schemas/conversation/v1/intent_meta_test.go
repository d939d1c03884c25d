package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentEventMeta(t *testing.T) {
	in, err := NewBuilder("R1", 1).Build()
	require.NoError(t, err)
	assert.Equal(t, RoutingKeyOpen, in.EventMeta().RoutingKey)
	assert.Equal(t, Exchange, in.EventMeta().Exchange)

	in, err = NewPopupBuilder("R1", 1).Build()
	require.NoError(t, err)
	assert.Equal(t, RoutingKeyPopup, in.EventMeta().RoutingKey)
	assert.Equal(t, EventType, in.EventMeta().EventType)
}
