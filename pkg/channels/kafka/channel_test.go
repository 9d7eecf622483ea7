package kafka

import (
	"testing"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/cognipipe/pkg/events"
)

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, ParseBrokers(" a:9092, ,b:9092 "))
	assert.Nil(t, ParseBrokers(""))
}

func TestCreateChannel_NoBrokers(t *testing.T) {
	_, _, err := CreateChannel(watermill.NopLogger{}, "api", nil)
	assert.ErrorIs(t, err, ErrNoBrokers)
}

func TestMarshaler_KeysByRunID(t *testing.T) {
	msg := message.NewMessage(watermill.NewULID(), []byte(`{}`))
	msg.Metadata.Set(events.EventMetadataKey, "run-1")

	produced, err := marshaler().Marshal(events.Topic, msg)
	require.NoError(t, err)

	assert.Equal(t, sarama.StringEncoder("run-1"), produced.Key)
}
