package kafkaconn

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	produceRequestEmpty = []byte{
		0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}

	produceRequestHeader = []byte{
		0x01, 0x23,
		0x00, 0x00, 0x04, 0x44,
		0x00, 0x00, 0x00, 0x00,
	}

	produceRequestOneMessage = []byte{
		0xff, 0xff,
		0x00, 0x00, 0x04, 0x44,
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x05, 't', 'o', 'p', 'i', 'c',
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0xad,
		0x00, 0x00, 0x00, 0x1c,
		// messageSet
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x10,
		// message
		0x23, 0x96, 0x4a, 0xf7,
		0x00,
		0x00,
		0xff, 0xff, 0xff, 0xff,
		0x00, 0x00, 0x00, 0x02, 0x00, 0xee,
	}
)

func TestProduceRequest(t *testing.T) {
	request := new(ProduceRequest)
	testRequest(t, "empty", request, produceRequestEmpty)

	request.RequiredAcks = 0x123
	request.Timeout = 0x444
	testRequest(t, "header", request, produceRequestHeader)

	request.RequiredAcks = WaitForAll
	request.AddMessage("topic", 0xAD, &Message{Codec: CompressionNone, Key: nil, Value: []byte{0x00, 0xEE}})
	testRequest(t, "one message", request, produceRequestOneMessage)
}

func TestProduceRequestMessageSets(t *testing.T) {
	request := new(ProduceRequest)
	require.Nil(t, request.MessageSet("topic", 0))

	request.AddMessage("topic", 0, &Message{Value: []byte("a")})
	request.AddMessage("topic", 0, &Message{Value: []byte("b")})
	require.Len(t, request.MessageSet("topic", 0).Messages, 2)

	set := new(MessageSet)
	set.addMessage(&Message{Value: []byte("c")})
	request.AddSet("topic", 1, set)
	require.Same(t, set, request.MessageSet("topic", 1))
	require.Nil(t, request.MessageSet("other", 0))
}

func TestProduceRequestCompressedSet(t *testing.T) {
	for _, codec := range []CompressionCodec{CompressionGZIP, CompressionSnappy, CompressionLZ4} {
		t.Run(codec.String(), func(t *testing.T) {
			set := new(MessageSet)
			set.addMessage(&Message{Key: []byte("k1"), Value: []byte("first")})
			set.addMessage(&Message{Key: []byte("k2"), Value: []byte("second")})

			request := &ProduceRequest{RequiredAcks: WaitForLocal, Timeout: 100}
			require.NoError(t, request.AddCompressedSet("topic", 3, set, codec))

			packet := testRequestEncode(t, codec.String(), request, nil)
			decoded, _, err := decodeRequest(bytes.NewReader(packet))
			require.NoError(t, err)

			decodedSet := decoded.body.(*ProduceRequest).MessageSet("topic", 3)
			require.NotNil(t, decodedSet)
			require.Len(t, decodedSet.Messages, 1)

			wrapper := decodedSet.Messages[0].Msg
			require.Equal(t, codec, wrapper.Codec)
			require.NotNil(t, wrapper.Set)

			inner := decodedSet.Messages[0].Messages()
			require.Len(t, inner, 2)
			require.Equal(t, int64(0), inner[0].Offset)
			require.Equal(t, int64(1), inner[1].Offset)
			require.Equal(t, []byte("first"), inner[0].Msg.Value)
			require.Equal(t, []byte("k2"), inner[1].Msg.Key)
		})
	}
}
