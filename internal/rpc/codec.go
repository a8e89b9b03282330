// Package rpc implements the request/reply message layer used between the
// gateway and the backend services. A request is addressed by a message
// pattern (a plain string such as "get_users"); its payload and reply are
// JSON documents. Transport and framing are delegated to gRPC with a JSON
// codec registered under the "json" content subtype, so the layer carries no
// protocol code of its own.
package rpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is the content subtype requests are encoded with.
const CodecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if raw, ok := v.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return CodecName }
