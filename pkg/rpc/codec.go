package rpc

import (
	"fmt"

	"github.com/srand/beam/worker/pkg/protocol"
)

// gRPC codec for the hand-rolled wire messages in pkg/protocol.
// Registered per call with grpc.ForceCodec.
type wireCodec struct{}

func (wireCodec) Marshal(v any) ([]byte, error) {
	message, ok := v.(protocol.Message)
	if !ok {
		return nil, fmt.Errorf("cannot marshal %T, not a protocol message", v)
	}
	return message.Marshal()
}

func (wireCodec) Unmarshal(data []byte, v any) error {
	message, ok := v.(protocol.Message)
	if !ok {
		return fmt.Errorf("cannot unmarshal %T, not a protocol message", v)
	}
	return message.Unmarshal(data)
}

func (wireCodec) Name() string {
	return "proto"
}
