package redis

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"reflect"
)

// Codec names accepted by options.codec.
const (
	CodecJSON = "json"
	CodecGob  = "gob"
)

// Codec converts cache values to and from their stored bytes.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// JSONCodec stores values as JSON.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (JSONCodec) Name() string {
	return CodecJSON
}

// GobCodec stores values with encoding/gob. A nil value is stored as an
// empty payload and decodes to the zero value.
type GobCodec struct{}

func (GobCodec) Marshal(v any) ([]byte, error) {
	if isNil(v) {
		return []byte{}, nil
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (GobCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer || rv.IsNil() {
			return fmt.Errorf("gob: decode into non-pointer %T", v)
		}
		rv.Elem().SetZero()

		return nil
	}

	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

func (GobCodec) Name() string {
	return CodecGob
}

// NewCodec returns the codec registered under name. An empty name selects
// JSON.
func NewCodec(name string) (Codec, error) {
	switch name {
	case "", CodecJSON:
		return JSONCodec{}, nil
	case CodecGob:
		return GobCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}
