package kafkaconn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	consumerMetadataResponseError = []byte{
		0x00, 0x0F,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}

	consumerMetadataResponseSuccess = []byte{
		0x00, 0x00,
		0x00, 0x00, 0x00, 0xAB,
		0x00, 0x03, 'f', 'o', 'o',
		0x00, 0x00, 0xCC, 0xDD,
	}
)

func TestConsumerMetadataResponseError(t *testing.T) {
	response := &ConsumerMetadataResponse{Err: ErrConsumerCoordinatorNotAvailable}
	testResponse(t, "error", response, 0, consumerMetadataResponseError)

	require.Nil(t, response.Coordinator())
}

func TestConsumerMetadataResponseSuccess(t *testing.T) {
	response := &ConsumerMetadataResponse{
		CoordinatorID:   0xAB,
		CoordinatorHost: "foo",
		CoordinatorPort: 0xCCDD,
	}
	testResponse(t, "success", response, 0, consumerMetadataResponseSuccess)

	coordinator := response.Coordinator()
	require.NotNil(t, coordinator)
	require.Equal(t, int32(0xAB), coordinator.NodeID)
	require.Equal(t, "foo:52445", coordinator.Addr())
}
