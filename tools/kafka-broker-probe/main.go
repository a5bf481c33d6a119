package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kafkaconn/kafkaconn"
	"github.com/kafkaconn/kafkaconn/tools/tls"
	metrics "github.com/rcrowley/go-metrics"
	"golang.org/x/net/proxy"
)

var (
	broker = flag.String(
		"broker",
		os.Getenv("KAFKA_PEER"),
		"REQUIRED: The host:port of the broker to probe.",
	)
	topics = flag.String(
		"topics",
		"",
		"A comma separated list of topics to describe (all topics if empty).",
	)
	group = flag.String(
		"group",
		"",
		"A consumer group whose coordinator should be looked up.",
	)
	clientID = flag.String(
		"client-id",
		"kafka-broker-probe",
		"The client ID sent with every request to the broker.",
	)
	dialTimeout = flag.Duration(
		"dial-timeout",
		10*time.Second,
		"How long to wait for the connection to the broker.",
	)
	socketTimeout = flag.Duration(
		"socket-timeout",
		10*time.Second,
		"How long to wait for each read or write on the connection.",
	)
	tlsEnabled = flag.Bool(
		"tls-enabled",
		false,
		"Whether to connect with TLS.",
	)
	tlsClientCert = flag.String(
		"tls-client-cert",
		"",
		"The client certificate to present when -tls-enabled is set.",
	)
	tlsClientKey = flag.String(
		"tls-client-key",
		"",
		"The key of -tls-client-cert.",
	)
	tlsCAFile = flag.String(
		"tls-ca",
		"",
		"A PEM file with the CA certificates to trust instead of the system roots.",
	)
	tlsSkipVerify = flag.Bool(
		"tls-skip-verify",
		false,
		"Whether to skip verification of the broker certificate.",
	)
	socksProxy = flag.String(
		"socks5",
		"",
		"The host:port of a SOCKS5 proxy to dial the broker through.",
	)
	verbose = flag.Bool(
		"verbose",
		false,
		"Log connection events and print the collected metrics on exit.",
	)
)

func main() {
	flag.Parse()

	if *broker == "" {
		printUsageErrorAndExit("-broker is required, or set the KAFKA_PEER environment variable")
	}
	host, port := parseBroker(*broker)

	if *verbose {
		kafkaconn.Logger = log.New(os.Stderr, "[kafkaconn] ", log.LstdFlags)
	}

	config := kafkaconn.NewConfig()
	config.ClientID = *clientID
	config.Net.DialTimeout = *dialTimeout
	config.Net.SocketTimeout = *socketTimeout

	if *tlsEnabled {
		tlsConfig, err := tls.NewConfig(*tlsClientCert, *tlsClientKey, *tlsCAFile, *tlsSkipVerify)
		if err != nil {
			printErrorAndExit(69, "Failed to create TLS config: %s", err)
		}
		config.Net.TLS.Enable = true
		config.Net.TLS.Config = tlsConfig
	}

	if *socksProxy != "" {
		dialer, err := proxy.SOCKS5("tcp", *socksProxy, nil, &net.Dialer{Timeout: *dialTimeout})
		if err != nil {
			printErrorAndExit(69, "Failed to create SOCKS5 dialer: %s", err)
		}
		config.Net.Proxy.Enable = true
		config.Net.Proxy.Dialer = dialer
	}

	err := kafkaconn.Open(host, port, config, func(b *kafkaconn.Broker) error {
		if err := describeCluster(b); err != nil {
			return err
		}
		if *group != "" {
			return describeGroup(b, *group)
		}
		return nil
	})

	if *verbose {
		metrics.WriteOnce(config.MetricRegistry, os.Stderr)
	}
	if err != nil {
		printErrorAndExit(69, "%s", err)
	}
}

func describeCluster(b *kafkaconn.Broker) error {
	request := &kafkaconn.MetadataRequest{}
	if *topics != "" {
		request.Topics = strings.Split(*topics, ",")
	}

	response, err := b.GetMetadata(request)
	if err != nil {
		return err
	}

	fmt.Printf("Brokers known to %s:\n", b.Addr())
	for _, bm := range response.Brokers {
		fmt.Printf("  %d\t%s\n", bm.NodeID, bm.Addr())
	}

	sort.Slice(response.Topics, func(i, j int) bool {
		return response.Topics[i].Name < response.Topics[j].Name
	})
	for _, tm := range response.Topics {
		if tm.Err != kafkaconn.ErrNoError {
			fmt.Printf("Topic %s: %s\n", tm.Name, tm.Err)
			continue
		}
		fmt.Printf("Topic %s:\n", tm.Name)
		sort.Slice(tm.Partitions, func(i, j int) bool {
			return tm.Partitions[i].ID < tm.Partitions[j].ID
		})
		for _, pm := range tm.Partitions {
			fmt.Printf("  partition=%d leader=%d replicas=%v isr=%v", pm.ID, pm.Leader, pm.Replicas, pm.Isr)
			if pm.Err != kafkaconn.ErrNoError {
				fmt.Printf(" err=%q", pm.Err)
			}
			fmt.Println()
		}
	}
	return nil
}

func describeGroup(b *kafkaconn.Broker, group string) error {
	response, err := b.GetConsumerMetadata(&kafkaconn.ConsumerMetadataRequest{ConsumerGroup: group})
	if err != nil {
		return err
	}

	coordinator := response.Coordinator()
	if coordinator == nil {
		fmt.Printf("Group %s: %s\n", group, response.Err)
		return nil
	}
	fmt.Printf("Group %s is coordinated by broker %d at %s\n", group, coordinator.NodeID, coordinator.Addr())
	return nil
}

func parseBroker(addr string) (string, int32) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		printUsageErrorAndExit(fmt.Sprintf("invalid -broker %q: %s", addr, err))
	}
	port, err := strconv.ParseInt(portStr, 10, 32)
	if err != nil {
		printUsageErrorAndExit(fmt.Sprintf("invalid port in -broker %q", addr))
	}
	return host, int32(port)
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
