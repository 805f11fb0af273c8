// Package apiconnect wires the splitledger.v1 services onto Connect.
//
// Messages are plain Go structs, so every handler and client is configured
// with a JSON codec registered under the "json" name. Any Connect client that
// sends `Content-Type: application/json` can call the services.
package apiconnect

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

const codecName = "json"

// jsonCodec implements connect.Codec with encoding/json.
type jsonCodec struct{}

func (jsonCodec) Name() string { return codecName }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal into %T: %w", msg, err)
	}
	return nil
}

// MarshalStable makes the codec usable for Connect GET requests.
func (c jsonCodec) MarshalStable(msg any) ([]byte, error) {
	return c.Marshal(msg)
}

// IsBinary reports false: the wire format is text.
func (jsonCodec) IsBinary() bool { return false }

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
}
