package kafkaconn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	offsetCommitRequestNoBlocks = []byte{
		0x00, 0x06, 'f', 'o', 'o', 'b', 'a', 'r',
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}

	offsetCommitRequestOneBlock = []byte{
		0x00, 0x06, 'f', 'o', 'o', 'b', 'a', 'r',
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00,
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x05, 't', 'o', 'p', 'i', 'c',
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x52, 0x21,
		0x00, 0x00, 0x00, 0x00, 0xDE, 0xAD, 0xBE, 0xEF,
		0x00, 0x00, 0x01, 0x5F, 0x5E, 0x10, 0x00, 0x00,
		0x00, 0x04, 'm', 'e', 't', 'a',
	}
)

func TestOffsetCommitRequest(t *testing.T) {
	request := new(OffsetCommitRequest)
	request.ConsumerGroup = "foobar"
	testRequest(t, "no blocks", request, offsetCommitRequestNoBlocks)

	request.AddBlock("topic", 0x5221, 0xDEADBEEF, "meta")
	request.stamp(0x15F5E100000)
	testRequest(t, "one block", request, offsetCommitRequestOneBlock)
}

func TestOffsetCommitRequestStamp(t *testing.T) {
	request := &OffsetCommitRequest{ConsumerGroup: "group", generationID: 7, memberID: "member"}
	request.AddBlock("a", 0, 10, "")
	request.AddBlock("b", 1, 20, "x")

	require.Equal(t, ReceiveTime, request.blocks["a"][0].timestamp)

	request.stamp(1234)
	require.Equal(t, int32(0), request.generationID)
	require.Equal(t, "", request.memberID)
	require.Equal(t, int64(1234), request.blocks["a"][0].timestamp)
	require.Equal(t, int64(1234), request.blocks["b"][1].timestamp)
}

func TestOffsetCommitRequestOffset(t *testing.T) {
	request := new(OffsetCommitRequest)
	request.AddBlock("topic", 3, 42, "meta")

	offset, metadata, err := request.Offset("topic", 3)
	require.NoError(t, err)
	require.Equal(t, int64(42), offset)
	require.Equal(t, "meta", metadata)

	_, _, err = request.Offset("topic", 4)
	require.ErrorIs(t, err, ErrNoSuchCommitBlock)

	_, _, err = request.Offset("other", 3)
	require.ErrorIs(t, err, ErrNoSuchCommitBlock)
}
