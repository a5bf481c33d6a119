package kafkaconn

import (
	"encoding/binary"
	"fmt"
	"io"
)

// API keys of the broker RPCs this package speaks.
const (
	apiKeyProduce          int16 = 0
	apiKeyFetch            int16 = 1
	apiKeyListOffsets      int16 = 2
	apiKeyMetadata         int16 = 3
	apiKeyOffsetCommit     int16 = 8
	apiKeyOffsetFetch      int16 = 9
	apiKeyConsumerMetadata int16 = 10
)

// versionedDecoder is a decoder whose layout depends on the api version of the
// request it belongs to.
type versionedDecoder interface {
	decode(pd packetDecoder, version int16) error
}

// versionedDecode takes bytes and a versionedDecoder and fills the fields of the
// decoder from the bytes, interpreted using Kafka's encoding rules.
func versionedDecode(buf []byte, in versionedDecoder, version int16) error {
	if buf == nil {
		return nil
	}

	helper := realDecoder{raw: buf}
	err := in.decode(&helper, version)
	if err != nil {
		return err
	}

	if helper.off != len(buf) {
		return PacketDecodingError{fmt.Sprintf("invalid length (off=%d, len=%d)", helper.off, len(buf))}
	}

	return nil
}

// protocolBody is the operation-specific payload of a request.
type protocolBody interface {
	encoder
	versionedDecoder
	key() int16
	version() int16
}

// request is the envelope written to the socket: the common header followed by the body.
type request struct {
	correlationID int32
	clientID      string
	body          protocolBody
}

func (r *request) encode(pe packetEncoder) error {
	pe.push(&lengthField{})
	pe.putInt16(r.body.key())
	pe.putInt16(r.body.version())
	pe.putInt32(r.correlationID)

	if err := pe.putString(r.clientID); err != nil {
		return err
	}

	if err := r.body.encode(pe); err != nil {
		return err
	}

	return pe.pop()
}

func (r *request) decode(pd packetDecoder) (err error) {
	key, err := pd.getInt16()
	if err != nil {
		return err
	}

	version, err := pd.getInt16()
	if err != nil {
		return err
	}

	r.correlationID, err = pd.getInt32()
	if err != nil {
		return err
	}

	r.clientID, err = pd.getString()
	if err != nil {
		return err
	}

	r.body = allocateBody(key, version)
	if r.body == nil {
		return PacketDecodingError{fmt.Sprintf("unknown request key (%d)", key)}
	}

	return r.body.decode(pd, version)
}

// decodeRequest reads one length-prefixed request frame from r. It returns the
// request and the number of bytes read.
func decodeRequest(r io.Reader) (*request, int, error) {
	var (
		bytesRead   int
		lengthBytes = make([]byte, 4)
	)

	if _, err := io.ReadFull(r, lengthBytes); err != nil {
		return nil, bytesRead, err
	}

	bytesRead += len(lengthBytes)
	length := int32(binary.BigEndian.Uint32(lengthBytes))

	if length <= 4 || length > MaxRequestSize {
		return nil, bytesRead, PacketDecodingError{fmt.Sprintf("message of length %d too large or too small", length)}
	}

	encodedReq := make([]byte, length)
	if _, err := io.ReadFull(r, encodedReq); err != nil {
		return nil, bytesRead, err
	}

	bytesRead += len(encodedReq)

	req := &request{}
	if err := decode(encodedReq, req); err != nil {
		return nil, bytesRead, err
	}

	return req, bytesRead, nil
}

func allocateBody(key, version int16) protocolBody {
	switch key {
	case apiKeyProduce:
		return &ProduceRequest{}
	case apiKeyFetch:
		return &FetchRequest{}
	case apiKeyListOffsets:
		return &OffsetRequest{}
	case apiKeyMetadata:
		return &MetadataRequest{}
	case apiKeyOffsetCommit:
		return &OffsetCommitRequest{}
	case apiKeyOffsetFetch:
		return &OffsetFetchRequest{}
	case apiKeyConsumerMetadata:
		return &ConsumerMetadataRequest{}
	}
	return nil
}
