//go:build !gui

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

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

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFAA00"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00"))
)

type model struct {
	session *session.Session
	log     *logrus.Logger

	doc           *docapi.Doc
	tables        []docapi.Table
	cursor        int
	loadingTables bool
	tablesErr     string
	loading       map[string]bool
	errs          map[string]string
	status        string

	spinner  spinner.Model
	viewport viewport.Model
	quitting bool
	width    int
	height   int
}

type tablesMsg struct {
	doc    *docapi.Doc
	tables []docapi.Table
	err    error
}

type tableDataMsg struct {
	tableID string
	data    *session.TableData
	err     error
}

type copiedMsg struct {
	table string
	err   error
}

type wroteMsg struct {
	path string
	err  error
}

func newModel(sess *session.Session, log *logrus.Logger) model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	return model{
		session:       sess,
		log:           log,
		loadingTables: true,
		loading:       map[string]bool{},
		errs:          map[string]string{},
		spinner:       sp,
		viewport:      viewport.New(50, 21),
		width:         80,
		height:        24,
	}
}

func loadTables(sess *session.Session) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		tables, err := sess.Client.Tables(ctx)
		if err != nil {
			return tablesMsg{err: err}
		}

		doc, err := sess.Client.Doc(ctx)
		if err != nil {
			doc = &docapi.Doc{ID: sess.Client.DocID, Name: sess.Client.DocID}
		}
		return tablesMsg{doc: doc, tables: tables}
	}
}

func loadTable(sess *session.Session, tableID string) tea.Cmd {
	mode := sess.Selection.Mode(tableID)
	gen := sess.StartFetch(tableID)
	return func() tea.Msg {
		data, err := sess.Load(context.Background(), tableID, mode, gen)
		return tableDataMsg{tableID: tableID, data: data, err: err}
	}
}

func loadRows(sess *session.Session, tableID string) tea.Cmd {
	mode := sess.Selection.Mode(tableID)
	gen := sess.StartFetch(tableID)
	return func() tea.Msg {
		data, err := sess.LoadRows(context.Background(), tableID, mode, gen)
		return tableDataMsg{tableID: tableID, data: data, err: err}
	}
}

func copyTable(sess *session.Session, tbl docapi.Table) tea.Cmd {
	return func() tea.Msg {
		data, ok := sess.Data(tbl.ID)
		if !ok {
			return copiedMsg{table: tbl.Name, err: errors.New("nothing fetched yet")}
		}
		return copiedMsg{table: tbl.Name, err: export.Copy(data.Columns, data.Rows)}
	}
}

func writeTable(sess *session.Session, tbl docapi.Table) tea.Cmd {
	return func() tea.Msg {
		data, ok := sess.Data(tbl.ID)
		if !ok {
			return wroteMsg{err: errors.New("nothing fetched yet")}
		}
		path := exportFilename(tbl)
		return wroteMsg{path: path, err: export.WriteFile(path, data.Columns, data.Rows)}
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadTables(m.session))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.status = ""

		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.refreshPreview()
				m.viewport.GotoTop()
			}
			return m, nil

		case "down", "j":
			if m.cursor < len(m.tables)-1 {
				m.cursor++
				m.refreshPreview()
				m.viewport.GotoTop()
			}
			return m, nil

		case " ":
			tbl, ok := m.currentTable()
			if !ok {
				return m, nil
			}
			if m.session.Selection.Toggle(tbl.ID) {
				m.loading[tbl.ID] = true
				delete(m.errs, tbl.ID)
				m.refreshPreview()
				return m, tea.Batch(m.spinner.Tick, loadTable(m.session, tbl.ID))
			}
			m.refreshPreview()
			return m, nil

		case "a", "A":
			ids := make([]string, 0, len(m.tables))
			for _, tbl := range m.tables {
				ids = append(ids, tbl.ID)
			}
			m.session.Selection.SelectAll(ids)
			cmd := m.fetchSelected()
			m.refreshPreview()
			return m, cmd

		case "0":
			return m.setMode(selection.ModeNone)

		case "1":
			return m.setMode(selection.ModeOne)

		case "*":
			return m.setMode(selection.ModeAll)

		case "c", "C":
			tbl, ok := m.currentTable()
			if !ok {
				return m, nil
			}
			return m, copyTable(m.session, tbl)

		case "w", "W":
			tbl, ok := m.currentTable()
			if !ok {
				return m, nil
			}
			return m, writeTable(m.session, tbl)

		case "r", "R":
			m.session.Reset()
			m.loadingTables = true
			m.tablesErr = ""
			cmd := m.fetchSelected()
			m.refreshPreview()
			return m, tea.Batch(loadTables(m.session), cmd)

		case "q", "Q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.previewWidth()
		m.viewport.Height = m.bodyHeight()
		m.refreshPreview()
		return m, nil

	case tablesMsg:
		m.loadingTables = false
		if msg.err != nil {
			m.tablesErr = fetchErrText(msg.err)
			return m, nil
		}
		m.tablesErr = ""
		m.doc = msg.doc
		m.tables = msg.tables
		if m.cursor >= len(m.tables) {
			m.cursor = len(m.tables) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		m.refreshPreview()
		return m, nil

	case tableDataMsg:
		if errors.Is(msg.err, session.ErrStale) {
			// A newer fetch for this table is already in flight.
			return m, nil
		}
		delete(m.loading, msg.tableID)
		if msg.err != nil {
			m.errs[msg.tableID] = fetchErrText(msg.err)
		}
		m.refreshPreview()
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).Warn("clipboard copy failed")
			m.status = errorStyle.Render("copy failed: " + msg.err.Error())
			return m, nil
		}
		m.status = selectedStyle.Render("copied " + msg.table + " to clipboard")
		return m, nil

	case wroteMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).Warn("file export failed")
			m.status = errorStyle.Render("write failed: " + msg.err.Error())
			return m, nil
		}
		m.status = selectedStyle.Render("wrote " + msg.path)
		return m, nil

	case spinner.TickMsg:
		if m.loadingTables || len(m.loading) > 0 {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}

func (m model) setMode(mode selection.RowMode) (tea.Model, tea.Cmd) {
	tbl, ok := m.currentTable()
	if !ok {
		return m, nil
	}

	m.session.Selection.SetMode(tbl.ID, mode)
	if !m.session.Selection.IsSelected(tbl.ID) {
		return m, nil
	}

	m.loading[tbl.ID] = true
	delete(m.errs, tbl.ID)
	m.refreshPreview()
	return m, tea.Batch(m.spinner.Tick, loadRows(m.session, tbl.ID))
}

// fetchSelected starts a fresh fetch for every selected table.
func (m model) fetchSelected() tea.Cmd {
	selected := m.session.Selection.Selected()
	if len(selected) == 0 {
		return nil
	}

	cmds := []tea.Cmd{m.spinner.Tick}
	for _, id := range selected {
		m.loading[id] = true
		delete(m.errs, id)
		cmds = append(cmds, loadTable(m.session, id))
	}
	return tea.Batch(cmds...)
}

func (m model) currentTable() (docapi.Table, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tables) {
		return docapi.Table{}, false
	}
	return m.tables[m.cursor], true
}

func (m *model) refreshPreview() {
	m.viewport.SetContent(m.previewContent())
}

func (m model) previewContent() string {
	tbl, ok := m.currentTable()
	if !ok {
		return ""
	}

	if text, failed := m.errs[tbl.ID]; failed {
		return errorStyle.Render("Fetch failed: "+text) + "\n\n" +
			hintStyle.Render("Press SPACE or 0/1/* to try again.")
	}

	if !m.session.Selection.IsSelected(tbl.ID) {
		return hintStyle.Render("Press SPACE to include " + tbl.Name + ".")
	}

	data, ok := m.session.Data(tbl.ID)
	if !ok {
		if m.loading[tbl.ID] {
			return hintStyle.Render("Fetching " + tbl.Name + "...")
		}
		return hintStyle.Render("No data yet.")
	}

	payload, err := export.Payload(data.Columns, data.Rows)
	if err != nil {
		return errorStyle.Render("Could not render preview: " + err.Error())
	}
	return string(payload)
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(m.headerView())
	sb.WriteString("\n")
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.listView(m.listWidth(), m.bodyHeight()),
		m.viewport.View(),
	))
	sb.WriteString("\n")
	sb.WriteString(m.statusView())
	sb.WriteString("\n")
	sb.WriteString(controlsStyle.Render("SPACE: include  A: all/none  0/1/*: rows  C: copy  W: write  R: refresh  Q: quit"))

	return sb.String()
}

func (m model) headerView() string {
	name := ""
	if m.doc != nil {
		name = m.doc.Name
		if name == "" {
			name = m.doc.ID
		}
	}
	header := titleStyle.Render("tabclip")
	if name != "" {
		header += hintStyle.Render(" · " + truncate(name, m.width-12))
	}
	return header
}

func (m model) listView(width, height int) string {
	var lines []string

	switch {
	case m.loadingTables:
		lines = append(lines, m.spinner.View()+" Loading tables...")

	case m.tablesErr != "":
		lines = append(lines,
			errorStyle.Render("Could not load tables"),
			"",
			truncate(m.tablesErr, width-2),
			"",
			hintStyle.Render("R: retry  Q: quit"))

	case len(m.tables) == 0:
		lines = append(lines, "This document has no tables.")

	default:
		start := 0
		if m.cursor >= height {
			start = m.cursor - height + 1
		}
		for i := start; i < len(m.tables) && i-start < height; i++ {
			lines = append(lines, m.tableLine(i, width))
		}
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Render(strings.Join(lines, "\n"))
}

func (m model) tableLine(i, width int) string {
	tbl := m.tables[i]

	cursor := "  "
	if i == m.cursor {
		cursor = cursorStyle.Render("> ")
	}

	mark := "[ ]"
	switch {
	case m.loading[tbl.ID]:
		mark = "[" + m.spinner.View() + "]"
	case m.session.Selection.IsSelected(tbl.ID):
		mark = "[" + selectedStyle.Render("x") + "]"
	}

	mode := m.session.Selection.Mode(tbl.ID).String()

	suffix := ""
	if _, failed := m.errs[tbl.ID]; failed {
		suffix = " " + errorStyle.Render("!")
	}

	// 2 cursor + 4 mark + mode tag + error marker.
	name := truncate(tbl.Name, width-len(mode)-11)
	return fmt.Sprintf("%s%s %s %s%s", cursor, mark, name, hintStyle.Render("("+mode+")"), suffix)
}

func (m model) statusView() string {
	var parts []string

	if tbl, ok := m.currentTable(); ok {
		parts = append(parts, truncate(tbl.Name, 24)+": "+tableMeta(tbl))
	}
	parts = append(parts, fmt.Sprintf("%d/%d selected",
		m.session.Selection.Count(), len(m.tables)))
	if m.status != "" {
		parts = append(parts, m.status)
	}

	return statusStyle.Render(strings.Join(parts, " | "))
}

func (m model) listWidth() int {
	w := m.width * 2 / 5
	if w < 30 {
		w = 30
	}
	if w > 48 {
		w = 48
	}
	return w
}

func (m model) previewWidth() int {
	w := m.width - m.listWidth()
	if w < 10 {
		w = 10
	}
	return w
}

func (m model) bodyHeight() int {
	h := m.height - 3
	if h < 1 {
		h = 1
	}
	return h
}

func main() {
	docID := flag.String("doc", "", "Document id to browse")
	token := flag.String("token", "", "API token (or set TABCLIP_API_TOKEN)")
	apiBase := flag.String("api", docapi.DefaultBaseURL, "Document API base URL")
	debug := flag.Bool("debug", false, "Write a debug log under the state directory")
	showVersion := flag.Bool("v", false, "Show version information")
	showVersionLong := flag.Bool("version", false, "Show version information")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Tabclip - Copy document tables to the clipboard as JSON\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  tabclip [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  tabclip -doc abC123xY                        Browse a document's tables\n")
		fmt.Fprintf(os.Stderr, "  TABCLIP_API_TOKEN=... tabclip -doc abC123xY  Token from the environment\n")
		fmt.Fprintf(os.Stderr, "  tabclip                                      Prompt for token and document id\n")
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  ↑/↓      Move between tables\n")
		fmt.Fprintf(os.Stderr, "  SPACE    Include/exclude the table\n")
		fmt.Fprintf(os.Stderr, "  A        Include all tables; again to include none\n")
		fmt.Fprintf(os.Stderr, "  0/1/*    Rows to fetch: none, one, all\n")
		fmt.Fprintf(os.Stderr, "  C        Copy the table as JSON\n")
		fmt.Fprintf(os.Stderr, "  W        Write the table to <name>.json\n")
		fmt.Fprintf(os.Stderr, "  R        Refresh from the API\n")
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
	defer sess.Close()

	m := newModel(sess, log)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *debug {
		fmt.Println("debug log:", logging.Path())
	}
}
