package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/kafkaconn/kafkaconn"
	metrics "github.com/rcrowley/go-metrics"
)

var (
	messageLoad = flag.Int(
		"message-load",
		0,
		"REQUIRED: The number of messages to produce to -topic.",
	)
	messageSize = flag.Int(
		"message-size",
		0,
		"REQUIRED: The approximate size (in bytes) of each message to produce to -topic.",
	)
	broker = flag.String(
		"broker",
		"",
		"REQUIRED: The host:port of the leader of -partition.",
	)
	topic = flag.String(
		"topic",
		"",
		"REQUIRED: The topic to run the performance test on.",
	)
	partition = flag.Int(
		"partition",
		0,
		"The partition of -topic to run the performance test on.",
	)
	batchSize = flag.Int(
		"batch-size",
		100,
		"The number of messages sent in a single produce request.",
	)
	throughput = flag.Int(
		"throughput",
		0,
		"The maximum number of produce requests to send per second (0 for no limit).",
	)
	requiredAcks = flag.Int(
		"required-acks",
		1,
		"The required number of acks needed from the broker (-1: all, 0: none, 1: local).",
	)
	timeout = flag.Duration(
		"timeout",
		10*time.Second,
		"The duration the broker will wait to receive -required-acks.",
	)
	compression = flag.String(
		"compression",
		"none",
		"The compression method to use (none, gzip, snappy, lz4).",
	)
	clientID = flag.String(
		"client-id",
		"kafka-producer-performance",
		"The client ID sent with every request to the broker.",
	)
	socketTimeout = flag.Duration(
		"socket-timeout",
		10*time.Second,
		"How long to wait for each read or write on the connection.",
	)
)

func parseCompression(scheme string) kafkaconn.CompressionCodec {
	switch scheme {
	case "none":
		return kafkaconn.CompressionNone
	case "gzip":
		return kafkaconn.CompressionGZIP
	case "snappy":
		return kafkaconn.CompressionSnappy
	case "lz4":
		return kafkaconn.CompressionLZ4
	default:
		printUsageErrorAndExit(fmt.Sprintf("Unknown -compression: %s", scheme))
	}
	panic("should not happen")
}

func parseRequiredAcks(acks int) kafkaconn.RequiredAcks {
	switch acks {
	case -1, 0, 1:
		return kafkaconn.RequiredAcks(acks)
	default:
		printUsageErrorAndExit(fmt.Sprintf("Unknown -required-acks: %d", acks))
	}
	panic("should not happen")
}

func main() {
	flag.Parse()

	if *broker == "" {
		printUsageErrorAndExit("-broker is required")
	}
	if *topic == "" {
		printUsageErrorAndExit("-topic is required")
	}
	if *messageLoad <= 0 {
		printUsageErrorAndExit("-message-load must be greater than 0")
	}
	if *messageSize <= 0 {
		printUsageErrorAndExit("-message-size must be greater than 0")
	}
	if *batchSize <= 0 {
		printUsageErrorAndExit("-batch-size must be greater than 0")
	}

	host, portStr, err := net.SplitHostPort(*broker)
	if err != nil {
		printUsageErrorAndExit(fmt.Sprintf("invalid -broker: %s", err))
	}
	port, err := strconv.ParseInt(portStr, 10, 32)
	if err != nil {
		printUsageErrorAndExit(fmt.Sprintf("invalid -broker port: %s", portStr))
	}

	codec := parseCompression(*compression)
	acks := parseRequiredAcks(*requiredAcks)

	config := kafkaconn.NewConfig()
	config.ClientID = *clientID
	config.Net.SocketTimeout = *socketTimeout

	// Construct -messageLoad messages of appoximately -messageSize random bytes.
	messages := make([]*kafkaconn.Message, *messageLoad)
	for i := range messages {
		payload := make([]byte, *messageSize)
		if _, err = rand.Read(payload); err != nil {
			printErrorAndExit(69, "Failed to generate message payload: %s", err)
		}
		messages[i] = &kafkaconn.Message{Value: payload}
	}

	var ticker *time.Ticker
	if *throughput > 0 {
		ticker = time.NewTicker(time.Second / time.Duration(*throughput))
		defer ticker.Stop()
	}

	start := time.Now()
	err = kafkaconn.Open(host, int32(port), config, func(b *kafkaconn.Broker) error {
		for len(messages) > 0 {
			n := *batchSize
			if n > len(messages) {
				n = len(messages)
			}
			if err := produce(b, messages[:n], codec, acks); err != nil {
				return err
			}
			messages = messages[n:]

			if ticker != nil {
				<-ticker.C
			}
		}
		return nil
	})
	if err != nil {
		printErrorAndExit(69, "%s", err)
	}

	fmt.Printf("Produced %d messages in %s\n", *messageLoad, time.Since(start))
	metrics.WriteOnce(config.MetricRegistry, os.Stdout)
}

func produce(b *kafkaconn.Broker, batch []*kafkaconn.Message, codec kafkaconn.CompressionCodec, acks kafkaconn.RequiredAcks) error {
	request := &kafkaconn.ProduceRequest{
		RequiredAcks: acks,
		Timeout:      int32(*timeout / time.Millisecond),
	}

	set := &kafkaconn.MessageSet{}
	for _, msg := range batch {
		set.Messages = append(set.Messages, &kafkaconn.MessageBlock{Msg: msg})
	}
	if codec == kafkaconn.CompressionNone {
		request.AddSet(*topic, int32(*partition), set)
	} else if err := request.AddCompressedSet(*topic, int32(*partition), set, codec); err != nil {
		return err
	}

	response, err := b.Produce(request)
	if err != nil {
		return err
	}
	if response == nil {
		return nil
	}

	block := response.GetBlock(*topic, int32(*partition))
	if block == nil {
		return fmt.Errorf("no response for %s/%d", *topic, *partition)
	}
	if block.Err != kafkaconn.ErrNoError {
		return block.Err
	}
	return nil
}

func printUsageErrorAndExit(message string) {
	fmt.Fprintln(os.Stderr, "ERROR:", message)
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Available command line options:")
	flag.PrintDefaults()
	os.Exit(64)
}

func printErrorAndExit(code int, format string, values ...interface{}) {
	fmt.Fprintf(os.Stderr, "ERROR: %s\n", fmt.Sprintf(format, values...))
	fmt.Fprintln(os.Stderr)
	os.Exit(code)
}
