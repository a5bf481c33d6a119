package kafkaconn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	emptyOffsetCommitResponse = []byte{
		0x00, 0x00, 0x00, 0x00,
	}

	normalOffsetCommitResponse = []byte{
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x01, 'm',
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x2F,
		0x00, 0x0C,
	}
)

func TestEmptyOffsetCommitResponse(t *testing.T) {
	response := OffsetCommitResponse{}
	testVersionDecodable(t, "empty", &response, emptyOffsetCommitResponse, 1)
	require.Empty(t, response.Errors)

	testResponse(t, "empty", &OffsetCommitResponse{}, 1, emptyOffsetCommitResponse)
}

func TestNormalOffsetCommitResponse(t *testing.T) {
	response := OffsetCommitResponse{}
	testVersionDecodable(t, "normal", &response, normalOffsetCommitResponse, 1)

	require.Len(t, response.Errors, 1)
	require.Equal(t, ErrOffsetMetadataTooLarge, response.Errors["m"][0x2F])

	encoded := new(OffsetCommitResponse)
	encoded.AddError("m", 0x2F, ErrOffsetMetadataTooLarge)
	testResponse(t, "normal", encoded, 1, normalOffsetCommitResponse)
}
