package kafkaconn

import (
	"fmt"
)

// TestReporter is the subset of *testing.T the response builders report through,
// so the package itself does not import testing.
type TestReporter interface {
	Error(...interface{})
	Errorf(string, ...interface{})
	Fatal(...interface{})
	Fatalf(string, ...interface{})
}

// MockResponse builds the reply to a decoded request. Handlers registered with
// MockBroker.SetHandlerByMap are MockResponses.
type MockResponse interface {
	For(reqBody versionedDecoder) (res encoder)
}

// MockWrapper answers every request with the same response.
type MockWrapper struct {
	res encoder
}

func (mw *MockWrapper) For(reqBody versionedDecoder) (res encoder) {
	return mw.res
}

func NewMockWrapper(res encoder) *MockWrapper {
	return &MockWrapper{res: res}
}

// MockSequence answers with each of its responses in turn and keeps repeating the
// last one once the others are used up. Plain encoders are wrapped in a MockWrapper.
type MockSequence struct {
	responses []MockResponse
}

func NewMockSequence(responses ...interface{}) *MockSequence {
	seq := make([]MockResponse, 0, len(responses))
	for _, res := range responses {
		switch res := res.(type) {
		case MockResponse:
			seq = append(seq, res)
		case encoder:
			seq = append(seq, NewMockWrapper(res))
		default:
			panic(fmt.Sprintf("kafkaconn: cannot sequence a %T", res))
		}
	}
	return &MockSequence{responses: seq}
}

func (mc *MockSequence) For(reqBody versionedDecoder) (res encoder) {
	res = mc.responses[0].For(reqBody)
	if len(mc.responses) > 1 {
		mc.responses = mc.responses[1:]
	}
	return res
}

// MockMetadataResponse answers metadata requests from a leader table. Every
// registered broker is listed as a replica of every partition.
type MockMetadataResponse struct {
	leaders map[string]map[int32]int32
	brokers map[string]int32
	t       TestReporter
}

func NewMockMetadataResponse(t TestReporter) *MockMetadataResponse {
	return &MockMetadataResponse{
		leaders: make(map[string]map[int32]int32),
		brokers: make(map[string]int32),
		t:       t,
	}
}

func (mmr *MockMetadataResponse) SetLeader(topic string, partition, brokerID int32) *MockMetadataResponse {
	partitions := mmr.leaders[topic]
	if partitions == nil {
		partitions = make(map[int32]int32)
		mmr.leaders[topic] = partitions
	}
	partitions[partition] = brokerID
	return mmr
}

func (mmr *MockMetadataResponse) SetBroker(addr string, brokerID int32) *MockMetadataResponse {
	mmr.brokers[addr] = brokerID
	return mmr
}

func (mmr *MockMetadataResponse) For(reqBody versionedDecoder) encoder {
	req := reqBody.(*MetadataRequest)
	res := &MetadataResponse{}

	replicas := make([]int32, 0, len(mmr.brokers))
	for addr, id := range mmr.brokers {
		res.AddBroker(addr, id)
		replicas = append(replicas, id)
	}

	describe := func(topic string) {
		leaders, known := mmr.leaders[topic]
		if !known {
			res.AddTopic(topic, ErrUnknownTopicOrPartition)
			return
		}
		for partition, leader := range leaders {
			res.AddTopicPartition(topic, partition, leader, replicas, replicas, ErrNoError)
		}
	}

	topics := req.Topics
	if len(topics) == 0 {
		for topic := range mmr.leaders {
			topics = append(topics, topic)
		}
	}
	for _, topic := range topics {
		describe(topic)
	}
	return res
}

// MockOffsetResponse answers offset requests from (topic, partition, time) entries.
type MockOffsetResponse struct {
	offsets map[string]map[int32]map[int64]int64
	t       TestReporter
}

func NewMockOffsetResponse(t TestReporter) *MockOffsetResponse {
	return &MockOffsetResponse{
		offsets: make(map[string]map[int32]map[int64]int64),
		t:       t,
	}
}

func (mor *MockOffsetResponse) SetOffset(topic string, partition int32, time, offset int64) *MockOffsetResponse {
	partitions := mor.offsets[topic]
	if partitions == nil {
		partitions = make(map[int32]map[int64]int64)
		mor.offsets[topic] = partitions
	}
	times := partitions[partition]
	if times == nil {
		times = make(map[int64]int64)
		partitions[partition] = times
	}
	times[time] = offset
	return mor
}

func (mor *MockOffsetResponse) For(reqBody versionedDecoder) encoder {
	offsetRequest := reqBody.(*OffsetRequest)
	offsetResponse := &OffsetResponse{}
	for topic, partitions := range offsetRequest.blocks {
		for partition, block := range partitions {
			offset, ok := mor.getOffset(topic, partition, block.time)
			if !ok {
				offsetResponse.AddError(topic, partition, ErrUnknownTopicOrPartition)
				continue
			}
			offsetResponse.AddTopicPartition(topic, partition, offset)
		}
	}
	return offsetResponse
}

func (mor *MockOffsetResponse) getOffset(topic string, partition int32, time int64) (int64, bool) {
	offset, ok := mor.offsets[topic][partition][time]
	if !ok {
		mor.t.Errorf("missing offset: %s/%d at time %d", topic, partition, time)
	}
	return offset, ok
}

// MockFetchResponse is a `FetchResponse` builder serving plain messages.
type MockFetchResponse struct {
	messages       map[string]map[int32]map[int64][]byte
	highWaterMarks map[string]map[int32]int64
	t              TestReporter
	batchSize      int
}

func NewMockFetchResponse(t TestReporter, batchSize int) *MockFetchResponse {
	return &MockFetchResponse{
		messages:       make(map[string]map[int32]map[int64][]byte),
		highWaterMarks: make(map[string]map[int32]int64),
		t:              t,
		batchSize:      batchSize,
	}
}

func (mfr *MockFetchResponse) SetMessage(topic string, partition int32, offset int64, value []byte) *MockFetchResponse {
	partitions := mfr.messages[topic]
	if partitions == nil {
		partitions = make(map[int32]map[int64][]byte)
		mfr.messages[topic] = partitions
	}
	messages := partitions[partition]
	if messages == nil {
		messages = make(map[int64][]byte)
		partitions[partition] = messages
	}
	messages[offset] = value
	return mfr
}

func (mfr *MockFetchResponse) SetHighWaterMark(topic string, partition int32, offset int64) *MockFetchResponse {
	partitions := mfr.highWaterMarks[topic]
	if partitions == nil {
		partitions = make(map[int32]int64)
		mfr.highWaterMarks[topic] = partitions
	}
	partitions[partition] = offset
	return mfr
}

func (mfr *MockFetchResponse) For(reqBody versionedDecoder) encoder {
	fetchRequest := reqBody.(*FetchRequest)
	res := &FetchResponse{}
	for topic, partitions := range fetchRequest.blocks {
		for partition, block := range partitions {
			messages := mfr.messages[topic][partition]
			offset := block.fetchOffset
			maxOffset := offset + int64(len(messages))
			for i := 0; i < mfr.batchSize && offset < maxOffset; offset++ {
				if value, ok := messages[offset]; ok {
					res.AddMessage(topic, partition, nil, value, offset)
					i++
				}
			}
			res.SetHighWaterMark(topic, partition, mfr.highWaterMarks[topic][partition])
		}
	}
	return res
}

// MockConsumerMetadataResponse answers coordinator lookups per consumer group, with
// either a MockBroker or a KError.
type MockConsumerMetadataResponse struct {
	coordinators map[string]interface{}
	t            TestReporter
}

func NewMockConsumerMetadataResponse(t TestReporter) *MockConsumerMetadataResponse {
	return &MockConsumerMetadataResponse{
		coordinators: make(map[string]interface{}),
		t:            t,
	}
}

func (mr *MockConsumerMetadataResponse) SetCoordinator(group string, broker *MockBroker) *MockConsumerMetadataResponse {
	mr.coordinators[group] = broker
	return mr
}

func (mr *MockConsumerMetadataResponse) SetError(group string, kerror KError) *MockConsumerMetadataResponse {
	mr.coordinators[group] = kerror
	return mr
}

func (mr *MockConsumerMetadataResponse) For(reqBody versionedDecoder) encoder {
	req := reqBody.(*ConsumerMetadataRequest)
	group := req.ConsumerGroup
	res := &ConsumerMetadataResponse{}
	v := mr.coordinators[group]
	switch v := v.(type) {
	case *MockBroker:
		res.CoordinatorID = v.BrokerID()
		res.CoordinatorHost = v.Host()
		res.CoordinatorPort = v.Port()
	case KError:
		res.Err = v
	default:
		mr.t.Errorf("no coordinator set for group %q", group)
		res.Err = ErrConsumerCoordinatorNotAvailable
	}
	return res
}

// MockOffsetCommitResponse is an `OffsetCommitResponse` builder that acknowledges
// every committed partition, except the ones given an error.
type MockOffsetCommitResponse struct {
	errors map[string]map[int32]KError
	t      TestReporter
}

func NewMockOffsetCommitResponse(t TestReporter) *MockOffsetCommitResponse {
	return &MockOffsetCommitResponse{t: t}
}

func (mr *MockOffsetCommitResponse) SetError(topic string, partition int32, kerror KError) *MockOffsetCommitResponse {
	if mr.errors == nil {
		mr.errors = make(map[string]map[int32]KError)
	}
	partitions := mr.errors[topic]
	if partitions == nil {
		partitions = make(map[int32]KError)
		mr.errors[topic] = partitions
	}
	partitions[partition] = kerror
	return mr
}

func (mr *MockOffsetCommitResponse) For(reqBody versionedDecoder) encoder {
	req := reqBody.(*OffsetCommitRequest)
	res := &OffsetCommitResponse{}
	for topic, partitions := range req.blocks {
		for partition := range partitions {
			kerror, ok := mr.errors[topic][partition]
			if !ok {
				kerror = ErrNoError
			}
			res.AddError(topic, partition, kerror)
		}
	}
	return res
}

