package kafkaconn

// ReceiveTime is a special value for the timestamp field of offset commit requests:
// the broker replaces it with the time it received the request.
const ReceiveTime int64 = -1

// Generation and member fields of a version 1 commit. This package does not take part
// in group membership, so it always commits as the catch-all generation.
const (
	groupGenerationUndefined int32 = 0
	groupMemberUndefined           = ""
)

type offsetCommitRequestBlock struct {
	offset    int64
	timestamp int64
	metadata  string
}

func (b *offsetCommitRequestBlock) encode(pe packetEncoder) error {
	pe.putInt64(b.offset)
	pe.putInt64(b.timestamp)
	return pe.putString(b.metadata)
}

func (b *offsetCommitRequestBlock) decode(pd packetDecoder) (err error) {
	if b.offset, err = pd.getInt64(); err != nil {
		return err
	}
	if b.timestamp, err = pd.getInt64(); err != nil {
		return err
	}
	b.metadata, err = pd.getString()
	return err
}

// OffsetCommitRequest stores consumer group positions in the broker's offset manager.
// Blocks are stamped with the wall-clock time when the request is sent.
type OffsetCommitRequest struct {
	ConsumerGroup string

	generationID int32
	memberID     string
	blocks       map[string]map[int32]*offsetCommitRequestBlock
}

func (r *OffsetCommitRequest) encode(pe packetEncoder) error {
	if err := pe.putString(r.ConsumerGroup); err != nil {
		return err
	}

	pe.putInt32(r.generationID)
	if err := pe.putString(r.memberID); err != nil {
		return err
	}

	if err := pe.putArrayLength(len(r.blocks)); err != nil {
		return err
	}
	for topic, partitions := range r.blocks {
		if err := pe.putString(topic); err != nil {
			return err
		}
		if err := pe.putArrayLength(len(partitions)); err != nil {
			return err
		}
		for partition, block := range partitions {
			pe.putInt32(partition)
			if err := block.encode(pe); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *OffsetCommitRequest) decode(pd packetDecoder, version int16) (err error) {
	if r.ConsumerGroup, err = pd.getString(); err != nil {
		return err
	}

	if r.generationID, err = pd.getInt32(); err != nil {
		return err
	}
	if r.memberID, err = pd.getString(); err != nil {
		return err
	}

	topicCount, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	if topicCount == 0 {
		return nil
	}
	r.blocks = make(map[string]map[int32]*offsetCommitRequestBlock)
	for i := 0; i < topicCount; i++ {
		topic, err := pd.getString()
		if err != nil {
			return err
		}
		partitionCount, err := pd.getArrayLength()
		if err != nil {
			return err
		}
		r.blocks[topic] = make(map[int32]*offsetCommitRequestBlock)
		for j := 0; j < partitionCount; j++ {
			partition, err := pd.getInt32()
			if err != nil {
				return err
			}
			block := &offsetCommitRequestBlock{}
			if err := block.decode(pd); err != nil {
				return err
			}
			r.blocks[topic][partition] = block
		}
	}
	return nil
}

func (r *OffsetCommitRequest) key() int16 {
	return apiKeyOffsetCommit
}

func (r *OffsetCommitRequest) version() int16 {
	return 1
}

// AddBlock records offset (and optional metadata) as the group's position in
// topic/partition.
func (r *OffsetCommitRequest) AddBlock(topic string, partitionID int32, offset int64, metadata string) {
	if r.blocks == nil {
		r.blocks = make(map[string]map[int32]*offsetCommitRequestBlock)
	}

	if r.blocks[topic] == nil {
		r.blocks[topic] = make(map[int32]*offsetCommitRequestBlock)
	}

	r.blocks[topic][partitionID] = &offsetCommitRequestBlock{offset: offset, timestamp: ReceiveTime, metadata: metadata}
}

// Offset returns the offset queued for topic/partition.
func (r *OffsetCommitRequest) Offset(topic string, partitionID int32) (int64, string, error) {
	partitions := r.blocks[topic]
	if partitions == nil {
		return 0, "", ErrNoSuchCommitBlock
	}
	block := partitions[partitionID]
	if block == nil {
		return 0, "", ErrNoSuchCommitBlock
	}
	return block.offset, block.metadata, nil
}

// stamp prepares the request for sending: every block carries timestamp (ms since
// the epoch) and the group fields are reset to the catch-all generation.
func (r *OffsetCommitRequest) stamp(timestamp int64) {
	r.generationID = groupGenerationUndefined
	r.memberID = groupMemberUndefined
	for _, partitions := range r.blocks {
		for _, block := range partitions {
			block.timestamp = timestamp
		}
	}
}
