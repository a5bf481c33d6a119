package kafkaconn

// MessageBlock is a message paired with its offset in the partition log.
type MessageBlock struct {
	Offset int64
	Msg    *Message
}

// Messages convenience helper which returns either all the
// messages that are wrapped in this block
func (msb *MessageBlock) Messages() []*MessageBlock {
	if msb.Msg.Set != nil {
		return msb.Msg.Set.Messages
	}
	return []*MessageBlock{msb}
}

func (msb *MessageBlock) encode(pe packetEncoder) error {
	pe.putInt64(msb.Offset)
	pe.push(&lengthField{})
	err := msb.Msg.encode(pe)
	if err != nil {
		return err
	}
	return pe.pop()
}

func (msb *MessageBlock) decode(pd packetDecoder) (err error) {
	if msb.Offset, err = pd.getInt64(); err != nil {
		return err
	}

	size, err := pd.getInt32()
	if err != nil {
		return err
	}
	if size < 0 {
		return PacketDecodingError{"negative message size"}
	}
	if int(size) > pd.remaining() {
		return ErrInsufficientData
	}

	msgDecoder, err := pd.getSubset(int(size))
	if err != nil {
		return err
	}

	msb.Msg = new(Message)
	if err = msb.Msg.decode(msgDecoder); err != nil {
		return err
	}
	if msgDecoder.remaining() != 0 {
		return PacketDecodingError{"message size does not match its contents"}
	}

	return nil
}

// MessageSet is the unit of data written by a produce request and returned by a
// fetch, one per topic/partition.
type MessageSet struct {
	PartialTrailingMessage bool // whether the set on the wire contained an incomplete trailing MessageBlock
	Messages               []*MessageBlock
}

func (ms *MessageSet) encode(pe packetEncoder) error {
	for i := range ms.Messages {
		err := ms.Messages[i].encode(pe)
		if err != nil {
			return err
		}
	}
	return nil
}

func (ms *MessageSet) decode(pd packetDecoder) (err error) {
	ms.Messages = nil

	for pd.remaining() > 0 {
		msb := new(MessageBlock)
		err = msb.decode(pd)
		switch err {
		case nil:
			ms.Messages = append(ms.Messages, msb)
		case ErrInsufficientData:
			// As an optimization the server is allowed to return a partial message at the
			// end of the message set. Clients should handle this case. So we just ignore such things.
			ms.PartialTrailingMessage = true
			return nil
		default:
			return err
		}
	}

	return nil
}

func (ms *MessageSet) addMessage(msg *Message) {
	block := new(MessageBlock)
	block.Msg = msg
	ms.Messages = append(ms.Messages, block)
}

// wrap encodes the set and returns it as the value of a single message compressed with
// codec. Inner offsets are relative (0..n-1); the broker assigns the real ones.
func (ms *MessageSet) wrap(codec CompressionCodec) (*Message, error) {
	for i, block := range ms.Messages {
		block.Offset = int64(i)
	}
	payload, err := encode(ms)
	if err != nil {
		return nil, err
	}
	return &Message{Codec: codec, Value: payload}, nil
}
