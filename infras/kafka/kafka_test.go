package kafka_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtpay/infras/kafka"
)

func TestMessage_ToKafkaMessage(t *testing.T) {
	msg := kafka.Message{Key: "b1", Value: map[string]string{"severity": "warning"}}

	res, err := msg.ToKafkaMessage("conflicts")

	require.NoError(t, err)
	assert.Equal(t, "conflicts", res.Topic)
	assert.Equal(t, []byte("b1"), res.Key)
	assert.JSONEq(t, `{"severity":"warning"}`, string(res.Value))
}

func TestMessage_ToKafkaMessage_Unmarshalable(t *testing.T) {
	msg := kafka.Message{Key: "b1", Value: math.Inf(1)}

	_, err := msg.ToKafkaMessage("conflicts")

	require.Error(t, err)
}
