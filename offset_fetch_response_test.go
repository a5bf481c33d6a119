package kafkaconn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	emptyOffsetFetchResponse = []byte{
		0x00, 0x00, 0x00, 0x00,
	}

	oneBlockOffsetFetchResponse = []byte{
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x01, 'm',
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x07,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00,
		0x00, 0x04, 'm', 'e', 't', 'a',
		0x00, 0x00,
	}
)

func TestEmptyOffsetFetchResponse(t *testing.T) {
	response := OffsetFetchResponse{}
	testVersionDecodable(t, "empty", &response, emptyOffsetFetchResponse, 1)
	require.Empty(t, response.Blocks)

	testResponse(t, "empty", &OffsetFetchResponse{}, 1, emptyOffsetFetchResponse)
}

func TestOneBlockOffsetFetchResponse(t *testing.T) {
	response := OffsetFetchResponse{}
	testVersionDecodable(t, "one block", &response, oneBlockOffsetFetchResponse, 1)

	block := response.GetBlock("m", 7)
	require.NotNil(t, block)
	require.Equal(t, int64(256), block.Offset)
	require.Equal(t, "meta", block.Metadata)
	require.Equal(t, ErrNoError, block.Err)
	require.Nil(t, response.GetBlock("m", 8))

	encoded := new(OffsetFetchResponse)
	encoded.AddBlock("m", 7, &OffsetFetchResponseBlock{Offset: 256, Metadata: "meta", Err: ErrNoError})
	testResponse(t, "one block", encoded, 1, oneBlockOffsetFetchResponse)
}
