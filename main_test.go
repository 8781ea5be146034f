//go:build !gui

package main

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/metcalfc/tabclip/internal/docapi"
	"github.com/metcalfc/tabclip/internal/selection"
	"github.com/metcalfc/tabclip/internal/session"
)

func newTestModel(t *testing.T) model {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	sess := session.New(docapi.NewClient("token", "doc", log), log)
	t.Cleanup(sess.Close)

	m := newModel(sess, log)
	m.loadingTables = false
	return m
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		n        int
		expected string
	}{
		{"short enough", "Sales", 10, "Sales"},
		{"exact fit", "Sales", 5, "Sales"},
		{"clipped", "Quarterly Sales", 10, "Quarter..."},
		{"tiny budget", "Sales", 2, "Sa"},
		{"zero budget", "Sales", 0, ""},
		{"multibyte", "Ventas por región", 12, "Ventas po..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := truncate(tt.input, tt.n)
			if result != tt.expected {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.n, result, tt.expected)
			}
		})
	}
}

func TestExportFilename(t *testing.T) {
	tests := []struct {
		name     string
		table    docapi.Table
		expected string
	}{
		{"plain name", docapi.Table{ID: "t1", Name: "Sales"}, "Sales.json"},
		{"path characters", docapi.Table{ID: "t1", Name: "Q1/Q2: Sales"}, "Q1-Q2- Sales.json"},
		{"blank name falls back to id", docapi.Table{ID: "t1", Name: "  "}, "t1.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := exportFilename(tt.table)
			if result != tt.expected {
				t.Errorf("exportFilename(%q) = %q, want %q", tt.table.Name, result, tt.expected)
			}
		})
	}
}

func TestTableMeta(t *testing.T) {
	tbl := docapi.Table{
		ID:        "t1",
		Name:      "Sales",
		RowCount:  1204,
		UpdatedAt: time.Now().Add(-48 * time.Hour),
	}

	result := tableMeta(tbl)
	if !strings.Contains(result, "1,204 rows") {
		t.Errorf("tableMeta() = %q, want a grouped row count", result)
	}
	if !strings.Contains(result, "days ago") {
		t.Errorf("tableMeta() = %q, want a relative timestamp", result)
	}
}

func TestFetchErrText(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"unauthorized", docapi.ErrUnauthorized, "the API token was rejected"},
		{"wrapped unauthorized", fmt.Errorf("loading columns: %w", docapi.ErrUnauthorized), "the API token was rejected"},
		{"not found", docapi.ErrNotFound, "not found (check the document id)"},
		{"http status", &docapi.StatusError{Path: "/tables", Code: 429, Status: "429 Too Many Requests"}, "429 Too Many Requests"},
		{"anything else", fmt.Errorf("connection refused"), "connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := fetchErrText(tt.err)
			if result != tt.expected {
				t.Errorf("fetchErrText() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestNewModelDefaults(t *testing.T) {
	m := newTestModel(t)

	if m.cursor != 0 {
		t.Errorf("newModel() cursor = %v, want 0", m.cursor)
	}
	if len(m.loading) != 0 {
		t.Errorf("newModel() loading = %v, want empty", m.loading)
	}
	if m.width != 80 || m.height != 24 {
		t.Errorf("newModel() size = %dx%d, want 80x24", m.width, m.height)
	}
}

func TestCursorMovement(t *testing.T) {
	m := newTestModel(t)
	m.tables = []docapi.Table{
		{ID: "t1", Name: "Sales"},
		{ID: "t2", Name: "Customers"},
	}

	updated, _ := m.Update(keyMsg("j"))
	m = updated.(model)
	if m.cursor != 1 {
		t.Errorf("cursor after down = %v, want 1", m.cursor)
	}

	updated, _ = m.Update(keyMsg("j"))
	m = updated.(model)
	if m.cursor != 1 {
		t.Errorf("cursor must stop at the last table, got %v", m.cursor)
	}

	updated, _ = m.Update(keyMsg("k"))
	m = updated.(model)
	if m.cursor != 0 {
		t.Errorf("cursor after up = %v, want 0", m.cursor)
	}

	updated, _ = m.Update(keyMsg("k"))
	m = updated.(model)
	if m.cursor != 0 {
		t.Errorf("cursor must stop at the first table, got %v", m.cursor)
	}
}

func TestToggleStartsFetch(t *testing.T) {
	m := newTestModel(t)
	m.tables = []docapi.Table{{ID: "t1", Name: "Sales"}}

	updated, cmd := m.Update(keyMsg(" "))
	m = updated.(model)

	if !m.session.Selection.IsSelected("t1") {
		t.Error("space must select the current table")
	}
	if !m.loading["t1"] {
		t.Error("selecting a table must mark it loading")
	}
	if cmd == nil {
		t.Error("selecting a table must start a fetch")
	}

	updated, cmd = m.Update(keyMsg(" "))
	m = updated.(model)

	if m.session.Selection.IsSelected("t1") {
		t.Error("space again must deselect the table")
	}
	if cmd != nil {
		t.Error("deselecting must not start a fetch")
	}
}

func TestSelectAllKey(t *testing.T) {
	m := newTestModel(t)
	m.tables = []docapi.Table{
		{ID: "t1", Name: "Sales"},
		{ID: "t2", Name: "Customers"},
	}

	updated, cmd := m.Update(keyMsg("a"))
	m = updated.(model)

	if got := m.session.Selection.Count(); got != 2 {
		t.Errorf("select all count = %v, want 2", got)
	}
	if cmd == nil {
		t.Error("select all must start fetches")
	}

	updated, cmd = m.Update(keyMsg("a"))
	m = updated.(model)

	if got := m.session.Selection.Count(); got != 0 {
		t.Errorf("select all again count = %v, want 0", got)
	}
	if cmd != nil {
		t.Error("clearing the selection must not start fetches")
	}
}

func TestModeKeys(t *testing.T) {
	m := newTestModel(t)
	m.tables = []docapi.Table{{ID: "t1", Name: "Sales"}}

	// Not selected: the mode is recorded but nothing is fetched.
	updated, cmd := m.Update(keyMsg("0"))
	m = updated.(model)
	if got := m.session.Selection.Mode("t1"); got != selection.ModeNone {
		t.Errorf("mode = %v, want none", got)
	}
	if cmd != nil {
		t.Error("mode change on an unselected table must not fetch")
	}

	m.session.Selection.Toggle("t1")

	updated, cmd = m.Update(keyMsg("*"))
	m = updated.(model)
	if got := m.session.Selection.Mode("t1"); got != selection.ModeAll {
		t.Errorf("mode = %v, want all", got)
	}
	if cmd == nil {
		t.Error("mode change on a selected table must refetch rows")
	}
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(t)

	updated, cmd := m.Update(keyMsg("q"))
	m = updated.(model)

	if !m.quitting {
		t.Error("q must set quitting")
	}
	if cmd == nil {
		t.Fatal("q must return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q must quit the program")
	}
	if m.View() != "" {
		t.Error("quitting view must be empty")
	}
}

func TestViewListsTables(t *testing.T) {
	m := newTestModel(t)
	m.tables = []docapi.Table{
		{ID: "t1", Name: "Sales", RowCount: 3, UpdatedAt: time.Now()},
		{ID: "t2", Name: "Customers", RowCount: 7, UpdatedAt: time.Now()},
	}
	m.refreshPreview()

	view := m.View()
	for _, want := range []string{"tabclip", "Sales", "Customers", "selected"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestViewEmptyDocument(t *testing.T) {
	m := newTestModel(t)

	if view := m.View(); !strings.Contains(view, "no tables") {
		t.Error("View() should mention that the document has no tables")
	}
}

func BenchmarkTruncate(b *testing.B) {
	names := []string{"Sales", "Quarterly Sales by Region", "Ventas por región y trimestre"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, name := range names {
			truncate(name, 20)
		}
	}
}
