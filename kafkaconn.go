/*
Package kafkaconn provides a blocking, one-call-at-a-time connection to a single
Kafka 0.8 broker.

The core of the package is the Broker. It owns exactly one TCP socket to one broker
endpoint, frames requests and responses with Kafka's 4-byte length prefix, and exposes
one method per broker RPC. The socket is dialed lazily on the first call and replaced
(never repaired) after any failure, so a caller keeps one stable *Broker for the
lifetime of the remote broker:

	err := kafkaconn.Open("localhost", 9092, nil, func(broker *kafkaconn.Broker) error {
		response, err := broker.GetMetadata(&kafkaconn.MetadataRequest{Topics: []string{"my_topic"}})
		if err != nil {
			return err
		}
		fmt.Println("There are", len(response.Brokers), "brokers in the cluster.")
		return nil
	})

Every failure of an RPC, whether the dial, a write, a read or a malformed frame, is
returned as a *ConnectionFailedError and leaves the Broker disconnected. Nothing is
retried internally; retry and failover belong to the caller.

The request and response types line up with the protocol fields documented by Kafka at
https://cwiki.apache.org/confluence/display/KAFKA/A+Guide+To+The+Kafka+Protocol
*/
package kafkaconn

import (
	"io"
	"log"
)

// Logger is the instance of a StdLogger interface that kafkaconn writes connection
// events to. By default it is set to discard all log messages via io.Discard, but you
// can set it to redirect wherever you want.
var Logger StdLogger = log.New(io.Discard, "[kafkaconn] ", log.LstdFlags)

// StdLogger is used to log error messages.
type StdLogger interface {
	Print(v ...interface{})
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// MaxRequestSize is the maximum size (in bytes) of any request that kafkaconn will
// attempt to send. Trying to send a request larger than this will result in a
// ConnectionFailedError before anything is written to the socket.
var MaxRequestSize int32 = 100 * 1024 * 1024

// MaxResponseSize is the maximum size (in bytes) of any response that kafkaconn will
// attempt to parse. If a broker returns a response message larger than this value,
// the connection is treated as broken and a ConnectionFailedError is returned.
var MaxResponseSize int32 = 100 * 1024 * 1024
