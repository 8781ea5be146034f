package docapi

import (
	"bytes"
	"encoding/json"

	"github.com/Velocidex/ordereddict"
	"github.com/pkg/errors"
)

// unwrapItems returns the raw record array from a list response. The service
// normally wraps lists in an {"items": [...]} envelope, but a bare array is
// accepted too.
func unwrapItems(body []byte) ([]byte, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return trimmed, nil
	}

	var envelope struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.WithStack(err)
	}
	// A missing key leaves Items nil; an explicit null stores the literal.
	if envelope.Items == nil || bytes.Equal(envelope.Items, []byte("null")) {
		return []byte("[]"), nil
	}
	return envelope.Items, nil
}

// parseItems decodes a list response into ordered dicts, one per record,
// preserving each record's attribute order.
func parseItems(body []byte) ([]*ordereddict.Dict, error) {
	items, err := unwrapItems(body)
	if err != nil {
		return nil, err
	}

	var rawRecords []json.RawMessage
	if err := json.Unmarshal(items, &rawRecords); err != nil {
		return nil, errors.WithStack(err)
	}

	records := make([]*ordereddict.Dict, 0, len(rawRecords))
	for _, raw := range rawRecords {
		record := ordereddict.NewDict()
		if err := json.Unmarshal(raw, record); err != nil {
			return nil, errors.WithStack(err)
		}
		records = append(records, record)
	}
	return records, nil
}
