package kafkaconn

import (
	"errors"
	"fmt"
)

// ErrConnectionFailed is the sentinel every *ConnectionFailedError matches through
// errors.Is. Callers that only need to know "the connection is gone" can test for it
// without a type assertion.
var ErrConnectionFailed = errors.New("kafka: broker connection failed")

// ErrInsufficientData is returned when decoding and the packet is truncated. This can
// be expected when fetching messages, since as an optimization the broker is allowed
// to return a partial message at the end of the message set.
var ErrInsufficientData = errors.New("kafka: insufficient data to decode packet, more bytes expected")

// ErrNoSuchCommitBlock is returned by OffsetCommitRequest.Offset when no offset was
// added for the topic/partition.
var ErrNoSuchCommitBlock = errors.New("kafka: no commit block for that topic/partition")

// errTimedOut is raised by the timeout guard when a read, write or dial deadline
// elapses. It is always converted into a ConnectionFailedError before reaching a caller.
var errTimedOut = errors.New("kafka: timed out waiting for socket")

// ConnectionFailedError is the single error type returned by every Broker RPC. It
// means the call did not complete and the socket it used has been discarded; the next
// call on the same Broker dials a fresh connection.
//
// The underlying cause is included in the message but is not reachable through
// Unwrap; a timed out read and a reset peer look the same to the caller.
type ConnectionFailedError struct {
	Addr string // host:port of the broker
	Op   string // connect, encode, write, read or decode
	err  error
}

func newConnectionFailedError(addr, op string, cause error) *ConnectionFailedError {
	return &ConnectionFailedError{Addr: addr, Op: op, err: cause}
}

func (e *ConnectionFailedError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("kafka: failed to %s broker %s", e.Op, e.Addr)
	}
	return fmt.Sprintf("kafka: failed to %s broker %s: %v", e.Op, e.Addr, e.err)
}

// Is reports whether target is ErrConnectionFailed.
func (e *ConnectionFailedError) Is(target error) bool {
	return target == ErrConnectionFailed
}

// PacketEncodingError is returned from a failure while encoding a Kafka packet. This
// can happen, for example, if you try to encode a string over 2^15 characters in
// length, since Kafka's encoding rules do not permit that.
type PacketEncodingError struct {
	Info string
}

func (err PacketEncodingError) Error() string {
	return fmt.Sprintf("kafka: error encoding packet: %s", err.Info)
}

// PacketDecodingError is returned when there was an error (other than truncated data)
// decoding the Kafka broker's response. This can be a bad CRC or length field, or any
// other invalid value.
type PacketDecodingError struct {
	Info string
}

func (err PacketDecodingError) Error() string {
	return fmt.Sprintf("kafka: error decoding packet: %s", err.Info)
}

// ConfigurationError is the type of error returned from a constructor (e.g. NewBroker)
// when the specified configuration is invalid.
type ConfigurationError string

func (err ConfigurationError) Error() string {
	return "kafka: invalid configuration (" + string(err) + ")"
}

// KError is the type of error that can be returned directly by the Kafka broker.
// See https://cwiki.apache.org/confluence/display/KAFKA/A+Guide+To+The+Kafka+Protocol#AGuideToTheKafkaProtocol-ErrorCodes
//
// KErrors travel inside decoded responses; they describe the outcome of a single
// topic/partition and never close the connection.
type KError int16

// Numeric error codes returned by the Kafka 0.8 server.
const (
	ErrNoError                         KError = 0
	ErrUnknown                         KError = -1
	ErrOffsetOutOfRange                KError = 1
	ErrInvalidMessage                  KError = 2
	ErrUnknownTopicOrPartition         KError = 3
	ErrInvalidMessageSize              KError = 4
	ErrLeaderNotAvailable              KError = 5
	ErrNotLeaderForPartition           KError = 6
	ErrRequestTimedOut                 KError = 7
	ErrBrokerNotAvailable              KError = 8
	ErrReplicaNotAvailable             KError = 9
	ErrMessageSizeTooLarge             KError = 10
	ErrStaleControllerEpochCode        KError = 11
	ErrOffsetMetadataTooLarge          KError = 12
	ErrNetworkException                KError = 13
	ErrOffsetsLoadInProgress           KError = 14
	ErrConsumerCoordinatorNotAvailable KError = 15
	ErrNotCoordinatorForConsumer       KError = 16
	ErrInvalidTopic                    KError = 17
	ErrMessageSetSizeTooLarge          KError = 18
	ErrNotEnoughReplicas               KError = 19
	ErrNotEnoughReplicasAfterAppend    KError = 20
	ErrInvalidRequiredAcks             KError = 21
	ErrIllegalGeneration               KError = 22
)

func (err KError) Error() string {
	// Error messages stolen/adapted from
	// https://cwiki.apache.org/confluence/display/KAFKA/A+Guide+To+The+Kafka+Protocol
	switch err {
	case ErrNoError:
		return "kafka server: Not an error, why are you printing me?"
	case ErrUnknown:
		return "kafka server: Unexpected (unknown?) server error."
	case ErrOffsetOutOfRange:
		return "kafka server: The requested offset is outside the range of offsets maintained by the server for the given topic/partition."
	case ErrInvalidMessage:
		return "kafka server: Message contents does not match its CRC."
	case ErrUnknownTopicOrPartition:
		return "kafka server: Request was for a topic or partition that does not exist on this broker."
	case ErrInvalidMessageSize:
		return "kafka server: The message has a negative size."
	case ErrLeaderNotAvailable:
		return "kafka server: In the middle of a leadership election, there is currently no leader for this partition and hence it is unavailable for writes."
	case ErrNotLeaderForPartition:
		return "kafka server: Tried to send a message to a replica that is not the leader for some partition. Your metadata is out of date."
	case ErrRequestTimedOut:
		return "kafka server: Request exceeded the user-specified time limit in the request."
	case ErrBrokerNotAvailable:
		return "kafka server: Broker not available. Not a client facing error, we should never receive this!!!"
	case ErrReplicaNotAvailable:
		return "kafka server: Replica information not available, one or more brokers are down."
	case ErrMessageSizeTooLarge:
		return "kafka server: Message was too large, server rejected it to avoid allocation error."
	case ErrStaleControllerEpochCode:
		return "kafka server: StaleControllerEpochCode (internal error code for broker-to-broker communication)."
	case ErrOffsetMetadataTooLarge:
		return "kafka server: Specified a string larger than the configured maximum for offset metadata."
	case ErrNetworkException:
		return "kafka server: The server disconnected before a response was received."
	case ErrOffsetsLoadInProgress:
		return "kafka server: The broker is still loading offsets after a leader change for that offset's topic partition."
	case ErrConsumerCoordinatorNotAvailable:
		return "kafka server: Offset's topic has not yet been created."
	case ErrNotCoordinatorForConsumer:
		return "kafka server: Request was for a consumer group that is not coordinated by this broker."
	case ErrInvalidTopic:
		return "kafka server: The request attempted to perform an operation on an invalid topic."
	case ErrMessageSetSizeTooLarge:
		return "kafka server: The request included message batch larger than the configured segment size on the server."
	case ErrNotEnoughReplicas:
		return "kafka server: Messages are rejected since there are fewer in-sync replicas than required."
	case ErrNotEnoughReplicasAfterAppend:
		return "kafka server: Messages are written to the log, but to fewer in-sync replicas than required."
	case ErrInvalidRequiredAcks:
		return "kafka server: The number of required acks is invalid (should be either -1, 0, or 1)."
	case ErrIllegalGeneration:
		return "kafka server: The provided generation id is not the current generation."
	}

	return fmt.Sprintf("Unknown error, how did this happen? Error code = %d", err)
}
