//go:build gui

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/pkg/errors"

	"github.com/metcalfc/tabclip/internal/docapi"
	"github.com/metcalfc/tabclip/internal/export"
	"github.com/metcalfc/tabclip/internal/logging"
	"github.com/metcalfc/tabclip/internal/selection"
	"github.com/metcalfc/tabclip/internal/session"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// gui holds the window state. Everything here is mutated on the UI thread
// only; fetch goroutines hand their results back through fyne.Do.
type gui struct {
	sess *session.Session

	tables   []docapi.Table
	cursor   int
	loading  map[string]bool
	errs     map[string]string
	listErr  string
	note     string
	loaded   bool

	window  fyne.Window
	list    *widget.List
	preview *widget.Label
	status  *widget.Label
}

func (g *gui) current() (docapi.Table, bool) {
	if g.cursor < 0 || g.cursor >= len(g.tables) {
		return docapi.Table{}, false
	}
	return g.tables[g.cursor], true
}

func (g *gui) refresh() {
	g.list.Refresh()
	g.preview.SetText(g.previewText())
	g.status.SetText(g.statusText())
}

func (g *gui) previewText() string {
	if g.listErr != "" {
		return "Could not load tables: " + g.listErr + "\n\nPress R to retry."
	}
	if !g.loaded {
		return "Loading tables..."
	}
	if len(g.tables) == 0 {
		return "This document has no tables."
	}

	tbl, ok := g.current()
	if !ok {
		return "Select a table."
	}

	if text, failed := g.errs[tbl.ID]; failed {
		return "Fetch failed: " + text + "\n\nPress SPACE or 0/1/* to try again."
	}
	if !g.sess.Selection.IsSelected(tbl.ID) {
		return "Press SPACE to include " + tbl.Name + "."
	}

	data, ok := g.sess.Data(tbl.ID)
	if !ok {
		if g.loading[tbl.ID] {
			return "Fetching " + tbl.Name + "..."
		}
		return "No data yet."
	}

	payload, err := export.Payload(data.Columns, data.Rows)
	if err != nil {
		return "Could not render preview: " + err.Error()
	}
	return string(payload)
}

func (g *gui) statusText() string {
	var parts []string
	if tbl, ok := g.current(); ok {
		parts = append(parts, tbl.Name+": "+tableMeta(tbl))
	}
	parts = append(parts, fmt.Sprintf("%d/%d selected",
		g.sess.Selection.Count(), len(g.tables)))
	if g.note != "" {
		parts = append(parts, g.note)
	}
	return strings.Join(parts, " | ")
}

func (g *gui) loadTables() {
	g.note = ""
	g.listErr = ""
	g.refresh()

	go func() {
		ctx := context.Background()
		tables, err := g.sess.Client.Tables(ctx)
		if err != nil {
			fyne.Do(func() {
				g.loaded = true
				g.listErr = fetchErrText(err)
				g.refresh()
			})
			return
		}

		doc, err := g.sess.Client.Doc(ctx)
		fyne.Do(func() {
			g.loaded = true
			g.tables = tables
			if err == nil && doc.Name != "" {
				g.window.SetTitle("tabclip · " + doc.Name)
			}
			if g.cursor >= len(g.tables) {
				g.cursor = 0
			}
			if len(g.tables) > 0 {
				g.list.Select(g.cursor)
			}
			g.refresh()
		})
	}()
}

func (g *gui) fetchTable(id string) {
	g.loading[id] = true
	delete(g.errs, id)
	mode := g.sess.Selection.Mode(id)
	gen := g.sess.StartFetch(id)
	g.refresh()

	go func() {
		_, err := g.sess.Load(context.Background(), id, mode, gen)
		fyne.Do(func() { g.applyResult(id, err) })
	}()
}

func (g *gui) refetchRows(id string, mode selection.RowMode) {
	g.loading[id] = true
	delete(g.errs, id)
	gen := g.sess.StartFetch(id)
	g.refresh()

	go func() {
		_, err := g.sess.LoadRows(context.Background(), id, mode, gen)
		fyne.Do(func() { g.applyResult(id, err) })
	}()
}

func (g *gui) applyResult(id string, err error) {
	if errors.Is(err, session.ErrStale) {
		// A newer fetch for this table is already in flight.
		return
	}
	delete(g.loading, id)
	if err != nil {
		g.errs[id] = fetchErrText(err)
	}
	g.refresh()
}

func (g *gui) toggleCurrent() {
	tbl, ok := g.current()
	if !ok {
		return
	}
	g.note = ""
	if g.sess.Selection.Toggle(tbl.ID) {
		g.fetchTable(tbl.ID)
		return
	}
	g.refresh()
}

func (g *gui) selectAll() {
	if len(g.tables) == 0 {
		return
	}
	ids := make([]string, 0, len(g.tables))
	for _, tbl := range g.tables {
		ids = append(ids, tbl.ID)
	}
	g.note = ""
	g.sess.Selection.SelectAll(ids)
	for _, id := range g.sess.Selection.Selected() {
		g.fetchTable(id)
	}
	g.refresh()
}

func (g *gui) setMode(mode selection.RowMode) {
	tbl, ok := g.current()
	if !ok {
		return
	}
	g.note = ""
	g.sess.Selection.SetMode(tbl.ID, mode)
	if !g.sess.Selection.IsSelected(tbl.ID) {
		g.refresh()
		return
	}
	g.refetchRows(tbl.ID, mode)
}

func (g *gui) copyCurrent() {
	tbl, ok := g.current()
	if !ok {
		return
	}
	data, ok := g.sess.Data(tbl.ID)
	if !ok {
		g.note = "nothing fetched yet"
		g.status.SetText(g.statusText())
		return
	}

	payload, err := export.Payload(data.Columns, data.Rows)
	if err != nil {
		g.note = "copy failed: " + err.Error()
	} else {
		g.window.Clipboard().SetContent(string(payload))
		g.note = "copied " + tbl.Name + " to clipboard"
	}
	g.status.SetText(g.statusText())
}

func (g *gui) writeCurrent() {
	tbl, ok := g.current()
	if !ok {
		return
	}
	data, ok := g.sess.Data(tbl.ID)
	if !ok {
		g.note = "nothing fetched yet"
		g.status.SetText(g.statusText())
		return
	}

	path := exportFilename(tbl)
	if err := export.WriteFile(path, data.Columns, data.Rows); err != nil {
		g.note = "write failed: " + err.Error()
	} else {
		g.note = "wrote " + path
	}
	g.status.SetText(g.statusText())
}

func (g *gui) refreshAll() {
	g.sess.Reset()
	for id := range g.errs {
		delete(g.errs, id)
	}
	g.loadTables()
	for _, id := range g.sess.Selection.Selected() {
		g.fetchTable(id)
	}
}

func (g *gui) moveCursor(delta int) {
	next := g.cursor + delta
	if next < 0 || next >= len(g.tables) {
		return
	}
	g.list.Select(next)
}

func main() {
	docID := flag.String("doc", "", "Document id to browse")
	token := flag.String("token", "", "API token (or set TABCLIP_API_TOKEN)")
	apiBase := flag.String("api", docapi.DefaultBaseURL, "Document API base URL")
	debug := flag.Bool("debug", false, "Write a debug log under the state directory")
	showVersion := flag.Bool("v", false, "Show version information")
	showVersionLong := flag.Bool("version", false, "Show version information")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Tabclip (GUI) - Copy document tables to the clipboard as JSON\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  tabclip [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  ↑/↓      Move between tables\n")
		fmt.Fprintf(os.Stderr, "  SPACE    Include/exclude the table\n")
		fmt.Fprintf(os.Stderr, "  A        Include all tables; again to include none\n")
		fmt.Fprintf(os.Stderr, "  0/1/*    Rows to fetch: none, one, all\n")
		fmt.Fprintf(os.Stderr, "  C        Copy the table as JSON\n")
		fmt.Fprintf(os.Stderr, "  W        Write the table to <name>.json\n")
		fmt.Fprintf(os.Stderr, "  R        Refresh from the API\n")
		fmt.Fprintf(os.Stderr, "  F        Toggle fullscreen\n")
		fmt.Fprintf(os.Stderr, "  Q        Quit\n")
	}
	flag.Parse()

	if *showVersion || *showVersionLong {
		fmt.Printf("tabclip %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	creds, err := resolveCredentials(*token, *docID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(*debug)

	client := docapi.NewClient(creds.Token, creds.DocID, log)
	client.BaseURL = *apiBase

	sess := session.New(client, log)

	a := app.New()
	w := a.NewWindow("tabclip")

	g := &gui{
		sess:    sess,
		loading: map[string]bool{},
		errs:    map[string]string{},
		window:  w,
	}

	g.status = widget.NewLabel("Loading tables...")
	g.status.Alignment = fyne.TextAlignCenter

	controls := widget.NewLabel("SPACE: include  A: all/none  0/1/*: rows  C: copy  W: write  R: refresh  F: fullscreen  Q: quit")
	controls.Alignment = fyne.TextAlignCenter

	g.preview = widget.NewLabel("")
	g.preview.TextStyle = fyne.TextStyle{Monospace: true}
	g.preview.Wrapping = fyne.TextWrapOff

	g.list = widget.NewList(
		func() int { return len(g.tables) },
		func() fyne.CanvasObject {
			return container.NewVBox(
				widget.NewLabel("Name"),
				widget.NewLabel("Meta"),
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(g.tables) {
				return
			}
			tbl := g.tables[id]
			box := obj.(*fyne.Container)
			nameLabel := box.Objects[0].(*widget.Label)
			metaLabel := box.Objects[1].(*widget.Label)

			mark := "[ ]"
			switch {
			case g.loading[tbl.ID]:
				mark = "[…]"
			case g.sess.Selection.IsSelected(tbl.ID):
				mark = "[x]"
			}
			nameLabel.SetText(fmt.Sprintf("%s %s (%s)", mark, tbl.Name, g.sess.Selection.Mode(tbl.ID)))
			nameLabel.TextStyle.Bold = true

			meta := tableMeta(tbl)
			if text, failed := g.errs[tbl.ID]; failed {
				meta = "fetch failed: " + text
			}
			metaLabel.SetText(meta)
		},
	)
	g.list.OnSelected = func(id widget.ListItemID) {
		g.cursor = id
		g.preview.SetText(g.previewText())
		g.status.SetText(g.statusText())
	}

	listPanel := container.NewBorder(
		widget.NewLabel("Tables"),
		nil, nil, nil,
		g.list,
	)

	split := container.NewHSplit(listPanel, container.NewScroll(g.preview))
	split.Offset = 0.4

	w.SetContent(container.NewBorder(g.status, controls, nil, nil, split))
	w.Resize(fyne.NewSize(1000, 640))

	w.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		switch key.Name {
		case fyne.KeySpace:
			g.toggleCurrent()

		case fyne.KeyUp:
			g.moveCursor(-1)

		case fyne.KeyDown:
			g.moveCursor(1)

		case fyne.KeyF:
			w.SetFullScreen(!w.FullScreen())

		case fyne.KeyQ:
			a.Quit()
		}
	})

	w.Canvas().SetOnTypedRune(func(r rune) {
		switch r {
		case 'a', 'A':
			g.selectAll()

		case '0':
			g.setMode(selection.ModeNone)

		case '1':
			g.setMode(selection.ModeOne)

		case '*':
			g.setMode(selection.ModeAll)

		case 'c', 'C':
			g.copyCurrent()

		case 'w', 'W':
			g.writeCurrent()

		case 'r', 'R':
			g.refreshAll()
		}
	})

	g.loadTables()

	w.ShowAndRun()
	sess.Close()

	if *debug {
		fmt.Println("debug log:", logging.Path())
	}
}
