//go:build unix && !android && !illumos && !ios && !hurd

// build on aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package kafkaconn

import (
	"fmt"
	"io"
	"net"

	"golang.org/x/sys/unix"
)

// getTCPConnSockError reports a pending error on an idle connection: either an
// asynchronous socket error (SO_ERROR) or an orderly shutdown by the peer.
func getTCPConnSockError(conn *net.TCPConn) error {
	rawConn, err := conn.SyscallConn()
	if err != nil {
		return fmt.Errorf("failed to get raw connection: %w", err)
	}

	var sockErr, n int
	var opErr, peekErr error
	peek := make([]byte, 1)

	err = rawConn.Control(func(fd uintptr) {
		sockErr, opErr = unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_ERROR)
		if opErr != nil || sockErr != 0 {
			return
		}
		n, _, peekErr = unix.Recvfrom(int(fd), peek, unix.MSG_PEEK|unix.MSG_DONTWAIT)
	})
	if err != nil {
		return fmt.Errorf("failed to control raw connection: %w", err)
	}
	if opErr != nil {
		return fmt.Errorf("failed to get socket error: %w", opErr)
	}
	if sockErr != 0 {
		return unix.Errno(sockErr)
	}
	switch {
	case peekErr == nil && n == 0:
		return io.EOF
	case peekErr == unix.EAGAIN || peekErr == unix.EWOULDBLOCK:
		return nil
	case peekErr != nil:
		return peekErr
	}
	return nil
}
