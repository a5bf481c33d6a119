package kafkaconn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	emptyFetchResponse = []byte{
		0x00, 0x00, 0x00, 0x00,
	}

	oneMessageFetchResponse = []byte{
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x05, 't', 'o', 'p', 'i', 'c',
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x05,
		0x00, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10,
		0x00, 0x00, 0x00, 0x2C,

		0x00, 0x00, 0x00, 0x00, 0x00, 0x55, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x11,
		0x00, 0x07, 0xF2, 0xC7,
		0x00,
		0x00,
		0xFF, 0xFF, 0xFF, 0xFF,
		0x00, 0x00, 0x00, 0x03, 'b', 'a', 'r',

		// the broker may cut the last message short
		0x00, 0x00, 0x00, 0x00, 0x00, 0x55, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x20,
		'x', 'y', 'z',
	}
)

func TestEmptyFetchResponse(t *testing.T) {
	response := FetchResponse{}
	testVersionDecodable(t, "empty", &response, emptyFetchResponse, 0)

	require.Empty(t, response.Blocks)
}

func TestOneMessageFetchResponse(t *testing.T) {
	response := FetchResponse{}
	testVersionDecodable(t, "one message", &response, oneMessageFetchResponse, 0)

	require.Len(t, response.Blocks, 1)
	require.Len(t, response.Blocks["topic"], 1)

	block := response.GetBlock("topic", 5)
	require.NotNil(t, block)
	require.Equal(t, ErrOffsetOutOfRange, block.Err)
	require.Equal(t, int64(0x10), block.HighWaterMarkOffset)
	require.True(t, block.MsgSet.PartialTrailingMessage)
	require.Len(t, block.MsgSet.Messages, 1)

	msgBlock := block.MsgSet.Messages[0]
	require.Equal(t, int64(0x550000), msgBlock.Offset)
	require.Equal(t, CompressionNone, msgBlock.Msg.Codec)
	require.Nil(t, msgBlock.Msg.Key)
	require.Equal(t, []byte("bar"), msgBlock.Msg.Value)

	require.Nil(t, response.GetBlock("topic", 6))
	require.Nil(t, response.GetBlock("other", 5))
}

func TestFetchResponseRoundTrip(t *testing.T) {
	response := new(FetchResponse)
	response.AddMessage("topic", 5, []byte("key"), []byte("bar"), 0x550000)
	response.AddMessage("topic", 5, nil, []byte("baz"), 0x550001)
	response.SetHighWaterMark("topic", 5, 0x550002)
	response.AddError("topic", 6, ErrNotLeaderForPartition)

	testResponse(t, "messages and error", response, 0, nil)
}
