package kafkaconn

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

// responseBody is what every response type implements: the broker decodes it on
// the client side and the MockBroker encodes it.
type responseBody interface {
	encoder
	versionedDecoder
}

func testVersionDecodable(t *testing.T, name string, out versionedDecoder, in []byte, version int16) {
	t.Helper()
	err := versionedDecode(in, out, version)
	if err != nil {
		t.Error("Decoding", name, "version", version, "failed:", err)
	}
}

func testRequest(t *testing.T, name string, rb protocolBody, expected []byte) {
	t.Helper()
	packet := testRequestEncode(t, name, rb, expected)
	testRequestDecode(t, name, rb, packet)
}

func testRequestEncode(t *testing.T, name string, rb protocolBody, expected []byte) []byte {
	t.Helper()
	req := &request{correlationID: 123, clientID: "foo", body: rb}
	packet, err := encode(req)

	headerSize := 14 + len("foo")

	if err != nil {
		t.Error(err)
	} else if expected != nil && !bytes.Equal(packet[headerSize:], expected) {
		t.Error("Encoding", name, "failed\ngot ", packet[headerSize:], "\nwant", expected)
	}
	return packet
}

func testRequestDecode(t *testing.T, name string, rb protocolBody, packet []byte) {
	t.Helper()
	decoded, n, err := decodeRequest(bytes.NewReader(packet))
	if err != nil {
		t.Error("Failed to decode request", err)
	} else if decoded.correlationID != 123 || decoded.clientID != "foo" {
		t.Errorf("Decoded header %q is not valid: %+v", name, decoded)
	} else if !reflect.DeepEqual(rb, decoded.body) {
		t.Error(spew.Sprintf("Decoded request %q does not match the encoded one\nencoded: %+v\ndecoded: %+v", name, rb, decoded.body))
	} else if n != len(packet) {
		t.Errorf("Decoded request %q bytes: %d does not match the encoded one: %d\n", name, n, len(packet))
	} else if rb.version() != decoded.body.version() {
		t.Errorf("Decoded request %q version: %d does not match the encoded one: %d\n", name, decoded.body.version(), rb.version())
	}
}

func testResponse(t *testing.T, name string, res responseBody, version int16, expected []byte) {
	t.Helper()
	encoded, err := encode(res)
	if err != nil {
		t.Error(err)
	} else if expected != nil && !bytes.Equal(encoded, expected) {
		t.Error("Encoding", name, "failed\ngot ", encoded, "\nwant", expected)
	}

	decoded := reflect.New(reflect.TypeOf(res).Elem()).Interface().(versionedDecoder)
	if err := versionedDecode(encoded, decoded, version); err != nil {
		t.Error("Decoding", name, "failed:", err)
	}

	if !reflect.DeepEqual(decoded, res) {
		t.Error(spew.Sprintf("Decoded response %q does not match the encoded one\nencoded: %#v\ndecoded: %#v", name, res, decoded))
	}
}

func TestRequestHeaderLayout(t *testing.T) {
	req := &request{correlationID: 0x01020304, clientID: "abc", body: &ConsumerMetadataRequest{ConsumerGroup: "g"}}
	packet, err := encode(req)
	require.NoError(t, err)

	require.Equal(t, []byte{
		0x00, 0x00, 0x00, 0x10,
		0x00, 0x0a,
		0x00, 0x00,
		0x01, 0x02, 0x03, 0x04,
		0x00, 0x03, 'a', 'b', 'c',
		0x00, 0x01, 'g',
	}, packet)
}

func TestRequestHeaderVersions(t *testing.T) {
	for _, tc := range []struct {
		body    protocolBody
		key     int16
		version int16
	}{
		{&ProduceRequest{}, 0, 0},
		{&FetchRequest{}, 1, 0},
		{&OffsetRequest{}, 2, 0},
		{&MetadataRequest{}, 3, 0},
		{&OffsetCommitRequest{}, 8, 1},
		{&OffsetFetchRequest{}, 9, 1},
		{&ConsumerMetadataRequest{}, 10, 0},
	} {
		require.Equal(t, tc.key, tc.body.key(), "%T", tc.body)
		require.Equal(t, tc.version, tc.body.version(), "%T", tc.body)

		allocated := allocateBody(tc.key, tc.version)
		require.IsType(t, tc.body, allocated)
	}
}

func TestDecodeRequestErrorReturns(t *testing.T) {
	_, bytesRead, err := decodeRequest(bytes.NewReader([]byte{0, 0, 0}))
	if err == nil {
		t.Error("Decode of short request should give error but was nil")
	}
	if bytesRead != 0 {
		t.Errorf("Decode of short request should report 0 bytes but was %d", bytesRead)
	}
	_, bytesRead, err = decodeRequest(bytes.NewReader([]byte{0, 0, 0, 8, 0, 0, 0}))
	if err == nil {
		t.Error("Decode of short request should give error but was nil")
	}
	if bytesRead != 4 {
		t.Errorf("Decode of short request should report 4 bytes but was %d", bytesRead)
	}
}

func TestDecodeRequestUnknownKey(t *testing.T) {
	packet := []byte{
		0x00, 0x00, 0x00, 0x0b,
		0x00, 0x63,
		0x00, 0x00,
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x01, 'x',
	}
	_, _, err := decodeRequest(bytes.NewReader(packet))
	require.Error(t, err)
	require.IsType(t, PacketDecodingError{}, err)
}
