package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/metcalfc/tabclip/internal/docapi"
)

// tableMeta is the one line summary shown next to a table.
func tableMeta(tbl docapi.Table) string {
	return fmt.Sprintf("%s rows, updated %s",
		humanize.Comma(int64(tbl.RowCount)),
		humanize.Time(tbl.UpdatedAt))
}

// fetchErrText turns a fetch error into the short message shown in the UI.
func fetchErrText(err error) string {
	switch {
	case errors.Is(err, docapi.ErrUnauthorized):
		return "the API token was rejected"
	case errors.Is(err, docapi.ErrNotFound):
		return "not found (check the document id)"
	}

	var status *docapi.StatusError
	if errors.As(err, &status) {
		return status.Status
	}
	return err.Error()
}

// exportFilename names the file the write action produces for a table.
func exportFilename(tbl docapi.Table) string {
	name := strings.TrimSpace(tbl.Name)
	if name == "" {
		name = tbl.ID
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '-'
		}
		return r
	}, name)
	return name + ".json"
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
