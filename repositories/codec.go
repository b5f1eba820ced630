package repositories

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v4"
)

// marshal encodes v as msgpack, reusing the json field names.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := msgpack.NewEncoder(&buf)
	encoder.UseJSONTag(true)
	if err := encoder.Encode(v); err != nil {
		return nil, fmt.Errorf("failed encoding %T: %w", v, err)
	}
	return buf.Bytes(), nil
}

func unmarshal(data []byte, v any) error {
	decoder := msgpack.NewDecoder(bytes.NewReader(data))
	decoder.UseJSONTag(true)
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("failed decoding %T: %w", v, err)
	}
	return nil
}
