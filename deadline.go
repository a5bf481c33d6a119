package kafkaconn

import (
	"errors"
	"io"
	"net"
	"os"
	"time"
)

// ioDeadline bounds every socket operation of a Broker by the same budget.
// Each read and each write arms a fresh deadline, so a response read in two
// steps may take up to twice the budget in total.
type ioDeadline struct {
	timeout time.Duration
}

func (d ioDeadline) write(conn net.Conn, buf []byte) (int, error) {
	if err := conn.SetWriteDeadline(time.Now().Add(d.timeout)); err != nil {
		return 0, err
	}
	n, err := conn.Write(buf)
	return n, classifyTimeout(err)
}

func (d ioDeadline) readFull(conn net.Conn, buf []byte) (int, error) {
	if err := conn.SetReadDeadline(time.Now().Add(d.timeout)); err != nil {
		return 0, err
	}
	n, err := io.ReadFull(conn, buf)
	return n, classifyTimeout(err)
}

// classifyTimeout replaces deadline expiry with errTimedOut and passes every other
// error through.
func classifyTimeout(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return errTimedOut
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errTimedOut
	}
	return err
}
