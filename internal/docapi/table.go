package docapi

import (
	"encoding/json"
	"time"

	"github.com/araddon/dateparse"
)

// Doc is the document the session is scoped to.
type Doc struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Table is one table listed in the doc.
type Table struct {
	ID        string
	Name      string
	RowCount  int
	UpdatedAt time.Time
}

type wireTable struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	RowCount  int    `json:"rowCount"`
	UpdatedAt string `json:"updatedAt"`
}

// UnmarshalJSON decodes the wire shape leniently. Timestamps arrive in
// whatever format the service favors, so they are parsed with dateparse; a
// missing or unreadable timestamp becomes the current time rather than an
// error. A negative row count is clamped to zero.
func (t *Table) UnmarshalJSON(data []byte) error {
	var w wireTable
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	t.ID = w.ID
	t.Name = w.Name
	t.RowCount = w.RowCount
	if t.RowCount < 0 {
		t.RowCount = 0
	}

	t.UpdatedAt = time.Now()
	if w.UpdatedAt != "" {
		if ts, err := dateparse.ParseAny(w.UpdatedAt); err == nil {
			t.UpdatedAt = ts
		}
	}
	return nil
}
