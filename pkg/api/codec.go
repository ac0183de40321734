package api

import (
	"encoding/json"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// Codec is the JSON codec used by every poinku service. Protobuf messages
// (acks are emptypb.Empty) go through protojson; plain structs go through
// encoding/json. It is registered under the name "json" so it serves
// application/json requests from browsers and tills.
type Codec struct{}

var _ connect.Codec = Codec{}

// Name implements connect.Codec.
func (Codec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (Codec) Marshal(msg any) ([]byte, error) {
	if m, ok := msg.(proto.Message); ok {
		return protojson.MarshalOptions{EmitUnpopulated: true}.Marshal(m)
	}
	return json.Marshal(msg)
}

// Unmarshal implements connect.Codec.
func (Codec) Unmarshal(data []byte, msg any) error {
	if m, ok := msg.(proto.Message); ok {
		if len(data) == 0 {
			return nil
		}
		return protojson.UnmarshalOptions{DiscardUnknown: true}.Unmarshal(data, m)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// charsetCodec claims the "application/json; charset=utf-8" content type,
// which connect otherwise routes to its protobuf-only JSON codec.
type charsetCodec struct{ Codec }

func (charsetCodec) Name() string { return "json; charset=utf-8" }

// WithCodec returns the connect option installing Codec. It is both a client
// and a handler option; clients send with the plain "json" name.
func WithCodec() connect.Option {
	return connect.WithOptions(
		connect.WithCodec(charsetCodec{}),
		connect.WithCodec(Codec{}),
	)
}
