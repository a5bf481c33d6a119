package kafkaconn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	emptyOffsetResponse = []byte{
		0x00, 0x00, 0x00, 0x00,
	}

	normalOffsetResponse = []byte{
		0x00, 0x00, 0x00, 0x02,

		0x00, 0x01, 'a',
		0x00, 0x00, 0x00, 0x00,

		0x00, 0x01, 'z',
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x02,
		0x00, 0x00,
		0x00, 0x00, 0x00, 0x02,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x05,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x06,
	}
)

func TestEmptyOffsetResponse(t *testing.T) {
	response := OffsetResponse{}

	testVersionDecodable(t, "empty", &response, emptyOffsetResponse, 0)
	require.Empty(t, response.Blocks)
}

func TestNormalOffsetResponse(t *testing.T) {
	response := OffsetResponse{}

	testVersionDecodable(t, "normal", &response, normalOffsetResponse, 0)
	require.Len(t, response.Blocks, 2)
	require.Empty(t, response.Blocks["a"])
	require.Len(t, response.Blocks["z"], 1)

	block := response.GetBlock("z", 2)
	require.NotNil(t, block)
	require.Equal(t, ErrNoError, block.Err)
	require.Equal(t, []int64{5, 6}, block.Offsets)
	require.Nil(t, response.GetBlock("z", 3))
}

func TestOffsetResponseRoundTrip(t *testing.T) {
	response := new(OffsetResponse)
	response.AddTopicPartition("z", 2, 6, 5)
	response.AddError("missing", 0, ErrUnknownTopicOrPartition)
	response.Blocks["missing"][0].Offsets = nil

	testResponse(t, "offsets and error", response, 0, nil)
}
