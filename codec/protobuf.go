package codec

import "google.golang.org/protobuf/proto"

// Protobuf stores generated messages. M is the message struct and PM its
// pointer type:
//
//	codec.Protobuf[fontpb.Metrics, *fontpb.Metrics]{}
//
// Encoding is deterministic so replicas write identical frames for equal
// messages.
type Protobuf[M any, PM interface {
	*M
	proto.Message
}] struct{}

var deterministic = proto.MarshalOptions{Deterministic: true}

func (Protobuf[M, PM]) Encode(v PM) ([]byte, error) {
	return deterministic.Marshal(v)
}

func (Protobuf[M, PM]) Decode(b []byte) (PM, error) {
	m := PM(new(M))
	if err := proto.Unmarshal(b, m); err != nil {
		var zero PM
		return zero, err
	}
	return m, nil
}
