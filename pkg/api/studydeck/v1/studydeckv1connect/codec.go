package studydeckv1connect

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// jsonCodec replaces connect's protobuf JSON codec for the plain Go messages
// in studydeckv1.
type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("decode %T: %w", msg, err)
	}
	return nil
}

// WithJSON is the codec option every studydeck handler and client needs.
func WithJSON() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
