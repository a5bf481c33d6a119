package kafkaconn

// RequiredAcks is used in Produce Requests to tell the broker how many replica acknowledgements
// it must see before responding. Any of the constants defined here are valid. Values greater
// than 1 wait for that many in-sync replicas to acknowledge.
type RequiredAcks int16

const (
	// NoResponse doesn't send any response, the TCP ACK is all you get.
	NoResponse RequiredAcks = 0
	// WaitForLocal waits for only the local commit to succeed before responding.
	WaitForLocal RequiredAcks = 1
	// WaitForAll waits for all in-sync replicas to commit before responding.
	WaitForAll RequiredAcks = -1
)

// ProduceRequest carries message sets to the leader of each listed partition.
type ProduceRequest struct {
	RequiredAcks RequiredAcks
	Timeout      int32 // milliseconds the broker may wait for RequiredAcks
	msgSets      map[string]map[int32]*MessageSet
}

func (r *ProduceRequest) encode(pe packetEncoder) error {
	pe.putInt16(int16(r.RequiredAcks))
	pe.putInt32(r.Timeout)

	err := pe.putArrayLength(len(r.msgSets))
	if err != nil {
		return err
	}
	for topic, partitions := range r.msgSets {
		err = pe.putString(topic)
		if err != nil {
			return err
		}
		err = pe.putArrayLength(len(partitions))
		if err != nil {
			return err
		}
		for id, msgSet := range partitions {
			pe.putInt32(id)
			pe.push(&lengthField{})
			err = msgSet.encode(pe)
			if err != nil {
				return err
			}
			err = pe.pop()
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func (r *ProduceRequest) decode(pd packetDecoder, version int16) error {
	requiredAcks, err := pd.getInt16()
	if err != nil {
		return err
	}
	r.RequiredAcks = RequiredAcks(requiredAcks)
	if r.Timeout, err = pd.getInt32(); err != nil {
		return err
	}

	topicCount, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	if topicCount == 0 {
		return nil
	}

	r.msgSets = make(map[string]map[int32]*MessageSet, topicCount)
	for i := 0; i < topicCount; i++ {
		topic, err := pd.getString()
		if err != nil {
			return err
		}
		partitionCount, err := pd.getArrayLength()
		if err != nil {
			return err
		}
		r.msgSets[topic] = make(map[int32]*MessageSet, partitionCount)
		for j := 0; j < partitionCount; j++ {
			partition, err := pd.getInt32()
			if err != nil {
				return err
			}
			size, err := pd.getInt32()
			if err != nil {
				return err
			}
			msgSetDecoder, err := pd.getSubset(int(size))
			if err != nil {
				return err
			}
			msgSet := &MessageSet{}
			if err = msgSet.decode(msgSetDecoder); err != nil {
				return err
			}
			r.msgSets[topic][partition] = msgSet
		}
	}

	return nil
}

func (r *ProduceRequest) key() int16 {
	return apiKeyProduce
}

func (r *ProduceRequest) version() int16 {
	return 0
}

// AddMessage appends msg to the message set of the given topic/partition.
func (r *ProduceRequest) AddMessage(topic string, partition int32, msg *Message) {
	r.ensureSet(topic, partition).addMessage(msg)
}

// AddSet replaces the message set of the given topic/partition.
func (r *ProduceRequest) AddSet(topic string, partition int32, set *MessageSet) {
	if r.msgSets == nil {
		r.msgSets = make(map[string]map[int32]*MessageSet)
	}
	if r.msgSets[topic] == nil {
		r.msgSets[topic] = make(map[int32]*MessageSet)
	}
	r.msgSets[topic][partition] = set
}

// AddCompressedSet wraps set into a single message compressed with codec and appends it
// to the given topic/partition.
func (r *ProduceRequest) AddCompressedSet(topic string, partition int32, set *MessageSet, codec CompressionCodec) error {
	msg, err := set.wrap(codec)
	if err != nil {
		return err
	}
	r.AddMessage(topic, partition, msg)
	return nil
}

// MessageSet returns the message set queued for the given topic/partition, or nil.
func (r *ProduceRequest) MessageSet(topic string, partition int32) *MessageSet {
	if r.msgSets == nil || r.msgSets[topic] == nil {
		return nil
	}
	return r.msgSets[topic][partition]
}

func (r *ProduceRequest) ensureSet(topic string, partition int32) *MessageSet {
	set := r.MessageSet(topic, partition)
	if set == nil {
		set = new(MessageSet)
		r.AddSet(topic, partition, set)
	}
	return set
}
