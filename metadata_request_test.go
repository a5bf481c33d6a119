package kafkaconn

import "testing"

var (
	metadataRequestNoTopics = []byte{
		0x00, 0x00, 0x00, 0x00,
	}

	metadataRequestTwoTopics = []byte{
		0x00, 0x00, 0x00, 0x02,
		0x00, 0x03, 'f', 'o', 'o',
		0x00, 0x03, 'b', 'a', 'r',
	}
)

func TestMetadataRequest(t *testing.T) {
	request := new(MetadataRequest)
	testRequest(t, "no topics", request, metadataRequestNoTopics)

	request.Topics = []string{"foo", "bar"}
	testRequest(t, "two topics", request, metadataRequestTwoTopics)
}
