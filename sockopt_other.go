//go:build !(unix && !android && !illumos && !ios && !hurd)

package kafkaconn

import "net"

// getTCPConnSockError cannot inspect the socket on this platform; a dead idle
// connection is only noticed by the next read or write.
func getTCPConnSockError(conn *net.TCPConn) error {
	return nil
}
