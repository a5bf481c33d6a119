package kafkaconn

import (
	"net"
	"strconv"
)

// BrokerMetadata describes one broker of the cluster as advertised in a
// MetadataResponse.
type BrokerMetadata struct {
	NodeID int32
	Host   string
	Port   int32
}

// Addr returns the broker address as host:port.
func (b *BrokerMetadata) Addr() string {
	return net.JoinHostPort(b.Host, strconv.Itoa(int(b.Port)))
}

func (b *BrokerMetadata) decode(pd packetDecoder) (err error) {
	if b.NodeID, err = pd.getInt32(); err != nil {
		return err
	}
	if b.Host, err = pd.getString(); err != nil {
		return err
	}
	b.Port, err = pd.getInt32()
	return err
}

func (b *BrokerMetadata) encode(pe packetEncoder) error {
	pe.putInt32(b.NodeID)
	if err := pe.putString(b.Host); err != nil {
		return err
	}
	pe.putInt32(b.Port)
	return nil
}

// PartitionMetadata contains each partition in the topic.
type PartitionMetadata struct {
	Err      KError
	ID       int32
	Leader   int32 // -1 while an election is in progress
	Replicas []int32
	Isr      []int32
}

func (pm *PartitionMetadata) decode(pd packetDecoder) (err error) {
	tmp, err := pd.getInt16()
	if err != nil {
		return err
	}
	pm.Err = KError(tmp)

	if pm.ID, err = pd.getInt32(); err != nil {
		return err
	}

	if pm.Leader, err = pd.getInt32(); err != nil {
		return err
	}

	if pm.Replicas, err = pd.getInt32Array(); err != nil {
		return err
	}

	pm.Isr, err = pd.getInt32Array()
	return err
}

func (pm *PartitionMetadata) encode(pe packetEncoder) (err error) {
	pe.putInt16(int16(pm.Err))
	pe.putInt32(pm.ID)
	pe.putInt32(pm.Leader)

	if err = pe.putInt32Array(pm.Replicas); err != nil {
		return err
	}

	return pe.putInt32Array(pm.Isr)
}

// TopicMetadata contains each topic in the response.
type TopicMetadata struct {
	Err        KError
	Name       string
	Partitions []*PartitionMetadata
}

func (tm *TopicMetadata) decode(pd packetDecoder) (err error) {
	tmp, err := pd.getInt16()
	if err != nil {
		return err
	}
	tm.Err = KError(tmp)

	if tm.Name, err = pd.getString(); err != nil {
		return err
	}

	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	tm.Partitions = make([]*PartitionMetadata, n)
	for i := 0; i < n; i++ {
		block := &PartitionMetadata{}
		if err := block.decode(pd); err != nil {
			return err
		}
		tm.Partitions[i] = block
	}

	return nil
}

func (tm *TopicMetadata) encode(pe packetEncoder) (err error) {
	pe.putInt16(int16(tm.Err))

	if err = pe.putString(tm.Name); err != nil {
		return err
	}

	if err = pe.putArrayLength(len(tm.Partitions)); err != nil {
		return err
	}
	for _, block := range tm.Partitions {
		if err = block.encode(pe); err != nil {
			return err
		}
	}

	return nil
}

// Partition returns the metadata of partition id, or nil if the topic does not
// list it.
func (tm *TopicMetadata) Partition(id int32) *PartitionMetadata {
	for _, pm := range tm.Partitions {
		if pm.ID == id {
			return pm
		}
	}
	return nil
}

// MetadataResponse is the broker's view of the cluster: the brokers it knows of and
// the partition/leader layout of the requested topics.
type MetadataResponse struct {
	Brokers []*BrokerMetadata
	Topics  []*TopicMetadata
}

func (r *MetadataResponse) decode(pd packetDecoder, version int16) (err error) {
	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}

	r.Brokers = make([]*BrokerMetadata, n)
	for i := 0; i < n; i++ {
		r.Brokers[i] = new(BrokerMetadata)
		if err = r.Brokers[i].decode(pd); err != nil {
			return err
		}
	}

	n, err = pd.getArrayLength()
	if err != nil {
		return err
	}

	r.Topics = make([]*TopicMetadata, n)
	for i := 0; i < n; i++ {
		r.Topics[i] = new(TopicMetadata)
		if err = r.Topics[i].decode(pd); err != nil {
			return err
		}
	}

	return nil
}

func (r *MetadataResponse) encode(pe packetEncoder) (err error) {
	if err = pe.putArrayLength(len(r.Brokers)); err != nil {
		return err
	}
	for _, broker := range r.Brokers {
		if err = broker.encode(pe); err != nil {
			return err
		}
	}

	if err = pe.putArrayLength(len(r.Topics)); err != nil {
		return err
	}
	for _, tm := range r.Topics {
		if err = tm.encode(pe); err != nil {
			return err
		}
	}

	return nil
}

// BrokerByID returns the advertised broker with the given node id, or nil.
func (r *MetadataResponse) BrokerByID(id int32) *BrokerMetadata {
	for _, b := range r.Brokers {
		if b.NodeID == id {
			return b
		}
	}
	return nil
}

// Topic returns the metadata of the named topic, or nil.
func (r *MetadataResponse) Topic(name string) *TopicMetadata {
	for _, tm := range r.Topics {
		if tm.Name == name {
			return tm
		}
	}
	return nil
}

// testing API

func (r *MetadataResponse) AddBroker(addr string, id int32) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	port, _ := strconv.ParseInt(portStr, 10, 32)
	r.Brokers = append(r.Brokers, &BrokerMetadata{NodeID: id, Host: host, Port: int32(port)})
}

func (r *MetadataResponse) AddTopic(topic string, err KError) *TopicMetadata {
	tmatch := r.Topic(topic)
	if tmatch == nil {
		tmatch = &TopicMetadata{Name: topic}
		r.Topics = append(r.Topics, tmatch)
	}
	tmatch.Err = err
	return tmatch
}

func (r *MetadataResponse) AddTopicPartition(topic string, partition, brokerID int32, replicas, isr []int32, err KError) {
	tmatch := r.AddTopic(topic, ErrNoError)

	pmatch := tmatch.Partition(partition)
	if pmatch == nil {
		pmatch = &PartitionMetadata{ID: partition}
		tmatch.Partitions = append(tmatch.Partitions, pmatch)
	}

	pmatch.Leader = brokerID
	pmatch.Replicas = replicas
	if pmatch.Replicas == nil {
		pmatch.Replicas = []int32{}
	}
	pmatch.Isr = isr
	if pmatch.Isr == nil {
		pmatch.Isr = []int32{}
	}
	pmatch.Err = err
}
