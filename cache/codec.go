package cache

import "github.com/goccy/go-json"

// Codec encodes values into the byte payloads the cache stores and decodes
// them back on read. The cache never inspects payloads itself.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// JSONCodec is the default codec.
var JSONCodec Codec = jsonCodec{}
