package kafkaconn

import (
	"context"
	"crypto/tls"
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"golang.org/x/net/proxy"
)

// Broker is a blocking connection to one Kafka broker. It owns at most one socket at
// a time, dials it lazily on the first call and drops it after any failure; the next
// call dials again. Calls on one Broker are serialised.
type Broker struct {
	conf *Config
	host string
	port int32
	addr string

	lock          sync.Mutex
	conn          net.Conn
	tcpConn       *net.TCPConn // underlying socket of conn when it can be probed
	correlationID int32
	deadline      ioDeadline

	metrics *brokerMetrics
}

// NewBroker creates a Broker for host:port. No I/O happens until the first call. If
// conf is nil a default Config is used.
func NewBroker(host string, port int32, conf *Config) (*Broker, error) {
	if conf == nil {
		conf = NewConfig()
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	addr := net.JoinHostPort(host, strconv.Itoa(int(port)))
	return &Broker{
		conf:     conf,
		host:     host,
		port:     port,
		addr:     addr,
		deadline: ioDeadline{timeout: conf.Net.SocketTimeout},
		metrics:  newBrokerMetrics(addr, conf.MetricRegistry),
	}, nil
}

// Open creates a Broker, passes it to fn and closes it once fn returns or panics.
// It returns the error of fn, or the error of closing the Broker if fn succeeded.
func Open(host string, port int32, conf *Config, fn func(*Broker) error) (err error) {
	b, err := NewBroker(host, port, conf)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := b.Close(); err == nil {
			err = cerr
		}
	}()

	return fn(b)
}

// Close closes the socket if one is open. It is safe to call more than once, and
// the Broker remains usable: the next call dials a new connection.
func (b *Broker) Close() error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.conn == nil {
		return nil
	}

	err := b.conn.Close()
	b.conn = nil
	b.tcpConn = nil

	if err == nil {
		Logger.Printf("Closed connection to broker %s\n", b.addr)
	} else {
		Logger.Printf("Error while closing connection to broker %s: %s\n", b.addr, err)
	}

	return err
}

// Connected returns true if the Broker currently holds an open socket. A connected
// Broker may still find the socket dead on its next call.
func (b *Broker) Connected() bool {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.conn != nil
}

// Addr returns the broker address as host:port.
func (b *Broker) Addr() string {
	return b.addr
}

// Host returns the broker hostname.
func (b *Broker) Host() string {
	return b.host
}

// Port returns the broker port.
func (b *Broker) Port() int32 {
	return b.port
}

// Produce sends message sets to the broker. With RequiredAcks set to NoResponse the
// broker sends no reply; Produce returns (nil, nil) as soon as the request is written.
func (b *Broker) Produce(request *ProduceRequest) (*ProduceResponse, error) {
	var response *ProduceResponse
	var err error

	if request.RequiredAcks == NoResponse {
		err = b.sendAndReceive(request, nil)
	} else {
		response = new(ProduceResponse)
		err = b.sendAndReceive(request, response)
	}

	if err != nil {
		return nil, err
	}

	return response, nil
}

// Fetch reads message sets from the partitions listed in request.
func (b *Broker) Fetch(request *FetchRequest) (*FetchResponse, error) {
	response := new(FetchResponse)

	err := b.sendAndReceive(request, response)
	if err != nil {
		return nil, err
	}

	return response, nil
}

// ListOffsets returns the offsets found for each requested topic/partition.
func (b *Broker) ListOffsets(request *OffsetRequest) (map[string]map[int32]*OffsetResponseBlock, error) {
	response := new(OffsetResponse)

	err := b.sendAndReceive(request, response)
	if err != nil {
		return nil, err
	}

	return response.Blocks, nil
}

// GetMetadata returns the brokers of the cluster and the layout of the requested
// topics (all topics if request.Topics is empty).
func (b *Broker) GetMetadata(request *MetadataRequest) (*MetadataResponse, error) {
	response := new(MetadataResponse)

	err := b.sendAndReceive(request, response)
	if err != nil {
		return nil, err
	}

	return response, nil
}

// FetchOffset returns the committed offsets of a consumer group.
func (b *Broker) FetchOffset(request *OffsetFetchRequest) (*OffsetFetchResponse, error) {
	response := new(OffsetFetchResponse)

	err := b.sendAndReceive(request, response)
	if err != nil {
		return nil, err
	}

	return response, nil
}

// CommitOffset stores consumer group offsets. Every block is stamped with the current
// wall-clock time in milliseconds.
func (b *Broker) CommitOffset(request *OffsetCommitRequest) (*OffsetCommitResponse, error) {
	response := new(OffsetCommitResponse)

	request.stamp(time.Now().UnixMilli())

	err := b.sendAndReceive(request, response)
	if err != nil {
		return nil, err
	}

	return response, nil
}

// GetConsumerMetadata returns the coordinator broker of a consumer group.
func (b *Broker) GetConsumerMetadata(request *ConsumerMetadataRequest) (*ConsumerMetadataResponse, error) {
	response := new(ConsumerMetadataResponse)

	err := b.sendAndReceive(request, response)
	if err != nil {
		return nil, err
	}

	return response, nil
}

// sendAndReceive runs one request/response exchange. A nil res means the broker
// will not answer and nothing is read.
func (b *Broker) sendAndReceive(req protocolBody, res versionedDecoder) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if err := b.ensureConnected(); err != nil {
		return err
	}

	b.correlationID++
	id := b.correlationID

	requestTime := time.Now()
	if err := b.sendRequest(id, req); err != nil {
		return err
	}

	if res == nil {
		return nil
	}

	return b.readResponse(id, req.version(), res, requestTime)
}

func (b *Broker) ensureConnected() error {
	if b.conn != nil {
		if b.tcpConn == nil {
			return nil
		}
		sockErr := getTCPConnSockError(b.tcpConn)
		if sockErr == nil {
			return nil
		}
		Logger.Printf("broker=%s op=probe err=%q discarding idle connection\n", b.addr, sockErr)
		b.discard()
	}

	conn, tcpConn, err := b.dial()
	if err != nil {
		b.metrics.markConnectionFailure()
		Logger.Printf("broker=%s op=connect err=%q\n", b.addr, err)
		return newConnectionFailedError(b.addr, "connect", err)
	}

	b.conn = conn
	b.tcpConn = tcpConn
	Logger.Printf("Connected to broker at %s\n", b.addr)

	return nil
}

// dial establishes a fresh connection bounded by Net.DialTimeout. The returned
// *net.TCPConn is nil when the connection went through a proxy that does not
// expose one.
func (b *Broker) dial() (net.Conn, *net.TCPConn, error) {
	var (
		conn net.Conn
		err  error
	)
	if b.conf.Net.Proxy.Enable {
		conn, err = b.dialProxy(b.conf.Net.Proxy.Dialer)
	} else {
		dialer := &net.Dialer{
			Timeout:   b.conf.Net.DialTimeout,
			KeepAlive: b.conf.Net.KeepAlive,
			LocalAddr: b.conf.Net.LocalAddr,
		}
		conn, err = dialer.Dial("tcp", b.addr)
	}
	if err != nil {
		return nil, nil, classifyTimeout(err)
	}

	tcpConn, _ := conn.(*net.TCPConn)
	if tcpConn != nil {
		if err := tcpConn.SetNoDelay(true); err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
	}

	if b.conf.Net.TLS.Enable {
		conn, err = b.handshake(conn)
		if err != nil {
			return nil, nil, err
		}
	}

	return conn, tcpConn, nil
}

// dialProxy dials through d within Net.DialTimeout. A Dialer without
// DialContext is raced against the timeout; a connection it returns late is
// closed.
func (b *Broker) dialProxy(d proxy.Dialer) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		ctx, cancel := context.WithTimeout(context.Background(), b.conf.Net.DialTimeout)
		defer cancel()
		return cd.DialContext(ctx, "tcp", b.addr)
	}

	type dialResult struct {
		conn net.Conn
		err  error
	}
	done := make(chan dialResult, 1)
	go func() {
		conn, err := d.Dial("tcp", b.addr)
		done <- dialResult{conn, err}
	}()

	timer := time.NewTimer(b.conf.Net.DialTimeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return res.conn, res.err
	case <-timer.C:
		go func() {
			if res := <-done; res.conn != nil {
				_ = res.conn.Close()
			}
		}()
		return nil, errTimedOut
	}
}

// handshake wraps conn in TLS. The handshake shares the dial budget.
func (b *Broker) handshake(conn net.Conn) (net.Conn, error) {
	cfg := b.conf.Net.TLS.Config
	if cfg == nil {
		cfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	if cfg.ServerName == "" && !cfg.InsecureSkipVerify {
		cfg = cfg.Clone()
		cfg.ServerName = b.host
	}

	tlsConn := tls.Client(conn, cfg)
	if err := tlsConn.SetDeadline(time.Now().Add(b.conf.Net.DialTimeout)); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := tlsConn.Handshake(); err != nil {
		_ = conn.Close()
		return nil, classifyTimeout(err)
	}
	if err := tlsConn.SetDeadline(time.Time{}); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return tlsConn, nil
}

func (b *Broker) sendRequest(id int32, body protocolBody) error {
	req := &request{correlationID: id, clientID: b.conf.ClientID, body: body}
	buf, err := encode(req)
	if err != nil {
		// nothing reached the socket, so it stays usable
		Logger.Printf("broker=%s op=encode correlation_id=%d err=%q\n", b.addr, id, err)
		return newConnectionFailedError(b.addr, "encode", err)
	}

	bytes, err := b.deadline.write(b.conn, buf)
	if err != nil {
		return b.fail("write", id, err)
	}
	b.metrics.updateOutgoingCommunicationMetrics(bytes)

	return nil
}

func (b *Broker) readResponse(id int32, version int16, res versionedDecoder, requestTime time.Time) error {
	header := make([]byte, 4)
	if _, err := b.deadline.readFull(b.conn, header); err != nil {
		return b.fail("read", id, err)
	}

	length := int32(binary.BigEndian.Uint32(header))
	if length < 4 || length > MaxResponseSize {
		return b.fail("read", id, PacketDecodingError{fmt.Sprintf("invalid response length %d", length)})
	}

	body := make([]byte, length)
	if _, err := b.deadline.readFull(b.conn, body); err != nil {
		return b.fail("read", id, err)
	}

	requestLatency := time.Since(requestTime)
	b.metrics.updateIncomingCommunicationMetrics(len(header)+len(body), int64(requestLatency/time.Millisecond))

	if got := int32(binary.BigEndian.Uint32(body)); got != id {
		Logger.Printf("broker=%s correlation_id=%d got response with correlation_id=%d\n", b.addr, id, got)
	}

	if err := versionedDecode(body[4:], res, version); err != nil {
		return b.fail("decode", id, err)
	}

	return nil
}

// fail drops the socket after a failed exchange and returns the error for the caller.
func (b *Broker) fail(op string, id int32, cause error) error {
	Logger.Printf("broker=%s op=%s correlation_id=%d err=%q\n", b.addr, op, id, cause)
	b.discard()
	return newConnectionFailedError(b.addr, op, cause)
}

func (b *Broker) discard() {
	if b.conn != nil {
		_ = b.conn.Close()
	}
	b.conn = nil
	b.tcpConn = nil
}
