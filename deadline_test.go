package kafkaconn

import (
	"errors"
	"io"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIODeadlineReadTimesOut(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	d := ioDeadline{timeout: 20 * time.Millisecond}
	start := time.Now()
	_, err := d.readFull(client, make([]byte, 4))
	require.Equal(t, errTimedOut, err)
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestIODeadlineWriteTimesOut(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	d := ioDeadline{timeout: 20 * time.Millisecond}
	_, err := d.write(client, []byte("nobody reads this"))
	require.Equal(t, errTimedOut, err)
}

func TestIODeadlineEachReadGetsFullBudget(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		_, _ = server.Write([]byte{0, 0, 0, 2})
		time.Sleep(60 * time.Millisecond)
		_, _ = server.Write([]byte{'o', 'k'})
	}()

	d := ioDeadline{timeout: 100 * time.Millisecond}
	_, err := d.readFull(client, make([]byte, 4))
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)
	body := make([]byte, 2)
	_, err = d.readFull(client, body)
	require.NoError(t, err)
	require.Equal(t, []byte("ok"), body)
}

func TestClassifyTimeout(t *testing.T) {
	require.NoError(t, classifyTimeout(nil))
	require.Equal(t, io.EOF, classifyTimeout(io.EOF))
	require.Equal(t, errTimedOut, classifyTimeout(os.ErrDeadlineExceeded))
	require.Equal(t, errTimedOut, classifyTimeout(&net.OpError{Op: "dial", Err: os.ErrDeadlineExceeded}))

	other := errors.New("connection refused")
	require.Equal(t, other, classifyTimeout(other))
}
