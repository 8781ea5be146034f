// Package export renders filtered table snapshots as clipboard ready JSON.
package export

import (
	"os"

	"github.com/Velocidex/ordereddict"
	"github.com/atotto/clipboard"

	"github.com/metcalfc/tabclip/internal/json"
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

// Payload serializes one table's filtered columns and rows as a {columns,
// rows} document with stable two space indentation. Nil slices render as
// empty arrays.
func Payload(columns, rows []*ordereddict.Dict) ([]byte, error) {
	if columns == nil {
		columns = []*ordereddict.Dict{}
	}
	if rows == nil {
		rows = []*ordereddict.Dict{}
	}

	doc := ordereddict.NewDict().
		Set("columns", columns).
		Set("rows", rows)
	return json.MarshalIndent(doc)
}

// Copy places the rendered payload on the system clipboard.
func Copy(columns, rows []*ordereddict.Dict) error {
	text, err := Payload(columns, rows)
	if err != nil {
		return err
	}
	return writeClipboard(string(text))
}

// WriteFile writes the rendered payload to path with a trailing newline.
func WriteFile(path string, columns, rows []*ordereddict.Dict) error {
	text, err := Payload(columns, rows)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(text, '\n'), 0644)
}
