package main

import (
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/kafkaconn/kafkaconn"
)

var (
	broker    = flag.String("broker", os.Getenv("KAFKA_PEER"), "The host:port of the leader of -partition")
	topic     = flag.String("topic", "", "REQUIRED: the topic to consume")
	partition = flag.Int("partition", 0, "The partition to consume")
	offset    = flag.String("offset", "newest", "The offset to start with. Can be `oldest`, `newest`")
	group     = flag.String("group", "", "A consumer group to resume from and commit to")
	maxBytes  = flag.Int("max-bytes", 1024*1024, "The maximum number of bytes fetched per request")
	maxWait   = flag.Duration("max-wait", 500*time.Millisecond, "How long the broker may wait for new messages")
	verbose   = flag.Bool("verbose", false, "Whether to turn on logging")

	logger = log.New(os.Stderr, "", log.LstdFlags)
)

func main() {
	flag.Parse()

	if *broker == "" {
		logger.Fatal("You have to provide -broker, or set the KAFKA_PEER environment variable.")
	}
	if *topic == "" {
		logger.Fatal("-topic is required")
	}
	if *verbose {
		kafkaconn.Logger = log.New(os.Stderr, "[kafkaconn] ", log.LstdFlags)
	}

	host, portStr, err := net.SplitHostPort(*broker)
	if err != nil {
		logger.Fatalf("Invalid -broker: %s", err)
	}
	port, err := strconv.ParseInt(portStr, 10, 32)
	if err != nil {
		logger.Fatalf("Invalid -broker port: %s", portStr)
	}

	config := kafkaconn.NewConfig()
	config.ClientID = "kafka-console-consumer"
	config.Net.SocketTimeout = *maxWait + 10*time.Second

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	err = kafkaconn.Open(host, int32(port), config, func(b *kafkaconn.Broker) error {
		next, err := startOffset(b)
		if err != nil {
			return err
		}
		logger.Printf("Consuming %s/%d from offset %d", *topic, *partition, next)

		for {
			select {
			case <-signals:
				return nil
			default:
			}

			if next, err = consume(b, next); err != nil {
				return err
			}
		}
	})
	if err != nil {
		logger.Fatalln(err)
	}

	logger.Println("Done consuming topic", *topic)
}

// startOffset resumes from the group's committed offset when there is one, and
// falls back to -offset otherwise.
func startOffset(b *kafkaconn.Broker) (int64, error) {
	if *group != "" {
		request := &kafkaconn.OffsetFetchRequest{ConsumerGroup: *group}
		request.AddPartition(*topic, int32(*partition))
		response, err := b.FetchOffset(request)
		if err != nil {
			return 0, err
		}
		if block := response.GetBlock(*topic, int32(*partition)); block != nil && block.Err == kafkaconn.ErrNoError && block.Offset >= 0 {
			return block.Offset, nil
		}
	}

	var at int64
	switch *offset {
	case "oldest":
		at = kafkaconn.OffsetOldest
	case "newest":
		at = kafkaconn.OffsetNewest
	default:
		logger.Fatal("-offset should be `oldest` or `newest`")
	}

	request := &kafkaconn.OffsetRequest{}
	request.AddBlock(*topic, int32(*partition), at, 1)
	blocks, err := b.ListOffsets(request)
	if err != nil {
		return 0, err
	}
	block := blocks[*topic][int32(*partition)]
	if block == nil || block.Err != kafkaconn.ErrNoError || len(block.Offsets) == 0 {
		logger.Fatalf("Failed to list offsets of %s/%d: %v", *topic, *partition, block)
	}
	return block.Offsets[0], nil
}

func consume(b *kafkaconn.Broker, next int64) (int64, error) {
	request := &kafkaconn.FetchRequest{MaxWaitTime: int32(*maxWait / time.Millisecond), MinBytes: 1}
	request.AddBlock(*topic, int32(*partition), next, int32(*maxBytes))
	response, err := b.Fetch(request)
	if err != nil {
		return next, err
	}

	block := response.GetBlock(*topic, int32(*partition))
	if block == nil {
		return next, nil
	}
	if block.Err != kafkaconn.ErrNoError {
		return next, block.Err
	}

	for _, outer := range block.MsgSet.Messages {
		for _, msg := range outer.Messages() {
			if msg.Offset < next {
				continue
			}
			logger.Printf("offset=%d key=%q value=%q", msg.Offset, msg.Msg.Key, msg.Msg.Value)
			next = msg.Offset + 1
		}
	}

	if *group != "" && len(block.MsgSet.Messages) > 0 {
		commit := &kafkaconn.OffsetCommitRequest{ConsumerGroup: *group}
		commit.AddBlock(*topic, int32(*partition), next, "")
		response, err := b.CommitOffset(commit)
		if err != nil {
			return next, err
		}
		if kerr := response.Errors[*topic][int32(*partition)]; kerr != kafkaconn.ErrNoError {
			logger.Printf("Failed to commit offset %d: %s", next, kerr)
		}
	}

	return next, nil
}
