// Package json wraps the Velocidex json encoder so ordered dictionaries
// serialize in insertion order. Plain encoding/json would sort map keys and
// lose the column order the document API returns.
package json

import (
	"bytes"

	"github.com/Velocidex/json"
	"github.com/Velocidex/ordereddict"
)

// Indent is the indent unit for all pretty printed output.
const Indent = "  "

func marshalDict(v interface{}, opts *json.EncOpts) ([]byte, error) {
	dict, ok := v.(*ordereddict.Dict)
	if !ok {
		return nil, json.EncoderCallbackSkip
	}

	buf := bytes.Buffer{}
	buf.WriteByte('{')
	for i, key := range dict.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyBytes, err := json.MarshalWithOptions(key, opts)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		value, _ := dict.Get(key)
		valueBytes, err := json.MarshalWithOptions(value, opts)
		if err != nil {
			return nil, err
		}
		buf.Write(valueBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func init() {
	RegisterCustomEncoder(ordereddict.NewDict(), marshalDict)
}
