package kafkaconn

// ConsumerMetadataResponse names the coordinator broker of a consumer group.
type ConsumerMetadataResponse struct {
	Err             KError
	CoordinatorID   int32
	CoordinatorHost string
	CoordinatorPort int32
}

func (r *ConsumerMetadataResponse) decode(pd packetDecoder, version int16) (err error) {
	tmp, err := pd.getInt16()
	if err != nil {
		return err
	}
	r.Err = KError(tmp)

	if r.CoordinatorID, err = pd.getInt32(); err != nil {
		return err
	}
	if r.CoordinatorHost, err = pd.getString(); err != nil {
		return err
	}
	r.CoordinatorPort, err = pd.getInt32()
	return err
}

func (r *ConsumerMetadataResponse) encode(pe packetEncoder) error {
	pe.putInt16(int16(r.Err))
	pe.putInt32(r.CoordinatorID)
	if err := pe.putString(r.CoordinatorHost); err != nil {
		return err
	}
	pe.putInt32(r.CoordinatorPort)
	return nil
}

// Coordinator returns the coordinator as broker metadata, or nil when the response
// carries an error.
func (r *ConsumerMetadataResponse) Coordinator() *BrokerMetadata {
	if r.Err != ErrNoError {
		return nil
	}
	return &BrokerMetadata{NodeID: r.CoordinatorID, Host: r.CoordinatorHost, Port: r.CoordinatorPort}
}
