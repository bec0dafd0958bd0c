package server

import (
	"bytes"

	"github.com/goccy/go-json"
)

// jsonCodec replaces connect's protojson codec so handlers can exchange
// plain Go structs. Unknown request fields are rejected, which connect
// reports as invalid_argument.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
