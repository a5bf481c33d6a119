package kafkaconn

import (
	"encoding/binary"
	"errors"
	"net"
	"reflect"
	"strconv"
	"sync"
	"time"
)

// TestState is a generic interface for a test state, implemented e.g. by testing.T
type TestState interface {
	Error(args ...interface{})
	Fatal(args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// MockBroker is a mock Kafka broker. It consists of a TCP server on a kernel-selected
// localhost port that accepts connections one after another, so a Broker that drops
// its socket can reconnect to the same MockBroker. For every request it reads it
// consumes the next BrokerExpectation (or asks the handler map, when one is set) and
// answers accordingly.
//
// When running tests with one of these, it is strongly recommended to specify a
// timeout to `go test` so that if the broker hangs waiting for a response, the test
// panics.
//
// It is not necessary to prefix message length or correlation ID to your response
// bodies, the server does that automatically as a convenience.
type MockBroker struct {
	brokerID     int32
	host         string
	port         int32
	stopper      chan bool
	expectations chan *BrokerExpectation
	listener     net.Listener
	t            TestState

	lock        sync.Mutex
	handlerMap  map[string]MockResponse
	history     []RequestResponse
	connections int
	active      net.Conn
	closing     bool
}

// RequestResponse records one request received by a MockBroker and the response it
// sent back (nil if none).
type RequestResponse struct {
	CorrelationID int32
	ClientID      string
	APIKey        int16
	APIVersion    int16
	Request       protocolBody
	Response      encoder
}

type callback func()

// BrokerExpectation allows you to specify how to respond to a request the MockBroker
// will receive. See MockBroker's Expects method to add expectations to a mockbroker.
type BrokerExpectation struct {
	Before   callback      // Before will be called after a request has been received, before responding
	Latency  time.Duration // Latency before the response will be sent
	Response encoder       // Response holds what will be sent back to the client; nil sends nothing
	After    callback      // After will be called after the response has been sent to the client.

	// Reset aborts the connection with a TCP reset after writing only the first
	// PartialBytes bytes of the framed response.
	Reset        bool
	PartialBytes int

	// CorrelationID, when non-zero, replaces the correlation id echoed in the response.
	CorrelationID int32

	IgnoreConnectionErrors bool // IgnoreConnectionErrors should be set to true if connectivity issues while sending the response are to be expected.
}

func (b *MockBroker) BrokerID() int32 {
	return b.brokerID
}

func (b *MockBroker) Host() string {
	return b.host
}

func (b *MockBroker) Port() int32 {
	return b.port
}

func (b *MockBroker) Addr() string {
	return b.listener.Addr().String()
}

// History returns every request received so far, in order.
func (b *MockBroker) History() []RequestResponse {
	b.lock.Lock()
	defer b.lock.Unlock()

	history := make([]RequestResponse, len(b.history))
	copy(history, b.history)
	return history
}

// Connections returns how many connections the MockBroker has accepted.
func (b *MockBroker) Connections() int {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.connections
}

// SetHandlerByMap answers requests from the given map, keyed by request type name
// (e.g. "MetadataRequest"), instead of from the expectation queue.
func (b *MockBroker) SetHandlerByMap(handlerMap map[string]MockResponse) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.handlerMap = handlerMap
}

// Close stops the MockBroker, reporting any expectation that was never consumed.
func (b *MockBroker) Close() {
	if len(b.expectations) > 0 {
		b.t.Errorf("Not all expectations were satisfied in mock broker with ID=%d! Still waiting on %d requests.", b.BrokerID(), len(b.expectations))
	}

	b.lock.Lock()
	b.closing = true
	if b.active != nil {
		_ = b.active.Close()
	}
	b.lock.Unlock()

	if err := b.listener.Close(); err != nil {
		b.t.Error(err)
	}
	<-b.stopper
}

func (b *MockBroker) isClosing() bool {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.closing
}

func (b *MockBroker) serverLoop() {
	defer close(b.stopper)

	for {
		conn, err := b.listener.Accept()
		if err != nil {
			if !b.isClosing() {
				b.t.Error(err)
			}
			return
		}

		b.lock.Lock()
		if b.closing {
			b.lock.Unlock()
			_ = conn.Close()
			return
		}
		b.connections++
		b.active = conn
		b.lock.Unlock()

		b.handleRequests(conn)

		b.lock.Lock()
		b.active = nil
		b.lock.Unlock()
	}
}

// handleRequests serves one connection until the client goes away, an expectation
// resets it, or the MockBroker is closed.
func (b *MockBroker) handleRequests(conn net.Conn) {
	defer conn.Close()

	resHeader := make([]byte, 8)
	for {
		req, _, err := decodeRequest(conn)
		if err != nil {
			var decodingErr PacketDecodingError
			if errors.As(err, &decodingErr) {
				b.t.Error(err)
			}
			return
		}

		expectation, ok := b.expectationFor(req)
		if !ok {
			b.t.Errorf("mockbroker/%d: unexpected %s with correlation id %d", b.brokerID, requestName(req.body), req.correlationID)
			return
		}

		b.record(req, expectation.Response)

		if expectation.Before != nil {
			expectation.Before()
		}

		if expectation.Latency > 0 {
			time.Sleep(expectation.Latency)
		}

		if expectation.Response == nil {
			continue
		}

		response, err := encode(expectation.Response)
		if err != nil {
			b.t.Error(err)
			return
		}

		correlationID := req.correlationID
		if expectation.CorrelationID != 0 {
			correlationID = expectation.CorrelationID
		}
		binary.BigEndian.PutUint32(resHeader, uint32(len(response)+4))
		binary.BigEndian.PutUint32(resHeader[4:], uint32(correlationID))
		frame := append(append([]byte{}, resHeader...), response...)

		if expectation.Reset {
			if expectation.PartialBytes > 0 && expectation.PartialBytes < len(frame) {
				_, _ = conn.Write(frame[:expectation.PartialBytes])
			}
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetLinger(0)
			}
			return
		}

		if _, err = conn.Write(frame); err != nil {
			if !expectation.IgnoreConnectionErrors && !b.isClosing() {
				b.t.Error(err)
			}
			return
		}

		if expectation.After != nil {
			expectation.After()
		}
	}
}

func (b *MockBroker) expectationFor(req *request) (*BrokerExpectation, bool) {
	b.lock.Lock()
	handlerMap := b.handlerMap
	b.lock.Unlock()

	if handlerMap != nil {
		handler, ok := handlerMap[requestName(req.body)]
		if !ok {
			return nil, false
		}
		return &BrokerExpectation{Response: handler.For(req.body)}, true
	}

	select {
	case expectation := <-b.expectations:
		return expectation, true
	default:
		return nil, false
	}
}

func (b *MockBroker) record(req *request, res encoder) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.history = append(b.history, RequestResponse{
		CorrelationID: req.correlationID,
		ClientID:      req.clientID,
		APIKey:        req.body.key(),
		APIVersion:    req.body.version(),
		Request:       req.body,
		Response:      res,
	})
}

func requestName(body protocolBody) string {
	return reflect.TypeOf(body).Elem().Name()
}

// NewMockBroker launches a fake Kafka broker. It takes a TestState (e.g. *testing.T)
// as provided by the test framework. If an error occurs it is simply logged to the
// TestState and the broker exits.
func NewMockBroker(t TestState, brokerID int32) *MockBroker {
	return NewMockBrokerAddr(t, brokerID, "127.0.0.1:0")
}

// NewMockBrokerAddr behaves like NewMockBroker but listens on the address you give
// it rather than just some ephemeral port.
func NewMockBrokerAddr(t TestState, brokerID int32, addr string) *MockBroker {
	var err error

	broker := &MockBroker{
		stopper:      make(chan bool),
		t:            t,
		brokerID:     brokerID,
		expectations: make(chan *BrokerExpectation, 512),
	}

	broker.listener, err = net.Listen("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	host, portStr, err := net.SplitHostPort(broker.listener.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	tmp, err := strconv.ParseInt(portStr, 10, 32)
	if err != nil {
		t.Fatal(err)
	}
	broker.host = host
	broker.port = int32(tmp)

	go broker.serverLoop()

	return broker
}

func (b *MockBroker) Returns(response encoder) {
	b.expectations <- &BrokerExpectation{Response: response}
}

func (b *MockBroker) Expects(expectation *BrokerExpectation) {
	b.expectations <- expectation
}
