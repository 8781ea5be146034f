package json

import (
	"bytes"

	"github.com/Velocidex/json"
)

// Marshal encodes v on a single line, honoring registered custom encoders.
func Marshal(v interface{}) ([]byte, error) {
	return json.MarshalWithOptions(v, NewEncOpts())
}

// MarshalIndent encodes v pretty printed with two space indentation.
func MarshalIndent(v interface{}) ([]byte, error) {
	b, err := Marshal(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, b, "", Indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MustMarshalIndent is MarshalIndent for values known to encode cleanly.
func MustMarshalIndent(v interface{}) []byte {
	result, err := MarshalIndent(v)
	if err != nil {
		panic(err)
	}
	return result
}

func Unmarshal(b []byte, v interface{}) error {
	return json.Unmarshal(b, v)
}
