// Package session owns the state of one export session: the API client, the
// table selection, and a cache of filtered per table snapshots. Nothing in
// here survives process exit.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/Velocidex/ordereddict"
	"github.com/Velocidex/ttlcache/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/metcalfc/tabclip/internal/docapi"
	"github.com/metcalfc/tabclip/internal/filter"
	"github.com/metcalfc/tabclip/internal/selection"
)

// Default allow lists. Only these attributes of the wire records matter for
// an export; the rest (hrefs, layout hints, parent references) is dropped at
// fetch time.
var (
	ColumnAllowList = filter.NewAllowList("id", "name")
	RowAllowList    = filter.NewAllowList("id", filter.ValuesKey)
)

// ErrStale reports that a newer fetch for the same table superseded this one
// before it landed. Callers drop the result without surfacing an error.
var ErrStale = errors.New("fetch superseded")

const (
	cacheTTL       = time.Hour
	cacheSizeLimit = 256
)

// TableData is the filtered snapshot for one table. Records are filtered
// exactly once, here; preview and export read the snapshot as is.
type TableData struct {
	TableID   string
	Columns   []*ordereddict.Dict
	Rows      []*ordereddict.Dict
	Mode      selection.RowMode
	FetchedAt time.Time
}

// Session is the top level controller for one interactive session.
type Session struct {
	Client    *docapi.Client
	Selection *selection.Store

	columnAllow filter.AllowList
	rowAllow    filter.AllowList

	cache *ttlcache.Cache
	log   *logrus.Logger

	mu   sync.Mutex
	gens map[string]uint64
}

// New builds a session around an authenticated client.
func New(client *docapi.Client, log *logrus.Logger) *Session {
	cache := ttlcache.NewCache()
	cache.SetCacheSizeLimit(cacheSizeLimit)
	_ = cache.SetTTL(cacheTTL)

	return &Session{
		Client:      client,
		Selection:   selection.NewStore(),
		columnAllow: ColumnAllowList,
		rowAllow:    RowAllowList,
		cache:       cache,
		log:         log,
		gens:        make(map[string]uint64),
	}
}

// Close releases the cache's background goroutine.
func (s *Session) Close() {
	s.cache.Close()
}

// StartFetch registers a fetch attempt for tableID and returns its
// generation. Results commit only under the newest generation, so the most
// recent attempt wins no matter the arrival order of responses.
func (s *Session) StartFetch(tableID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[tableID]++
	return s.gens[tableID]
}

// Load fetches column metadata and rows for tableID according to mode,
// filters both, and caches the snapshot. gen must come from StartFetch.
func (s *Session) Load(ctx context.Context, tableID string, mode selection.RowMode, gen uint64) (*TableData, error) {
	columns, err := s.Client.Columns(ctx, tableID)
	if err != nil {
		return nil, s.resolveErr(tableID, gen, err)
	}

	rows, err := s.fetchRows(ctx, tableID, mode)
	if err != nil {
		return nil, s.resolveErr(tableID, gen, err)
	}

	s.log.WithFields(logrus.Fields{
		"table":   tableID,
		"mode":    mode.String(),
		"columns": len(columns),
		"rows":    len(rows),
	}).Debug("table data loaded")

	return s.commit(&TableData{
		TableID:   tableID,
		Columns:   filter.Records(columns, s.columnAllow),
		Rows:      filter.Records(rows, s.rowAllow),
		Mode:      mode,
		FetchedAt: time.Now(),
	}, gen)
}

// LoadRows refetches only the rows after a row mode change, reusing the
// cached column metadata. Without a cached snapshot it behaves like Load.
func (s *Session) LoadRows(ctx context.Context, tableID string, mode selection.RowMode, gen uint64) (*TableData, error) {
	cached, ok := s.Data(tableID)
	if !ok {
		return s.Load(ctx, tableID, mode, gen)
	}

	rows, err := s.fetchRows(ctx, tableID, mode)
	if err != nil {
		return nil, s.resolveErr(tableID, gen, err)
	}

	return s.commit(&TableData{
		TableID:   tableID,
		Columns:   cached.Columns,
		Rows:      filter.Records(rows, s.rowAllow),
		Mode:      mode,
		FetchedAt: time.Now(),
	}, gen)
}

// Data returns the cached snapshot for tableID, if any.
func (s *Session) Data(tableID string) (*TableData, bool) {
	v, err := s.cache.Get(tableID)
	if err != nil {
		return nil, false
	}
	data, ok := v.(*TableData)
	return data, ok
}

// Reset drops every cached snapshot, for a full refresh.
func (s *Session) Reset() {
	_ = s.cache.Purge()
}

// fetchRows maps the row mode onto the wire: no request at all for ModeNone,
// a limit of one for ModeOne, unbounded for ModeAll.
func (s *Session) fetchRows(ctx context.Context, tableID string, mode selection.RowMode) ([]*ordereddict.Dict, error) {
	switch mode {
	case selection.ModeNone:
		return nil, nil
	case selection.ModeOne:
		return s.Client.Rows(ctx, tableID, 1)
	default:
		return s.Client.Rows(ctx, tableID, 0)
	}
}

// commit stores a finished snapshot unless a newer fetch was started for the
// same table in the meantime. A failed fetch never reaches commit, so the
// previous snapshot survives failures untouched.
func (s *Session) commit(data *TableData, gen uint64) (*TableData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gens[data.TableID] != gen {
		return nil, ErrStale
	}
	if err := s.cache.Set(data.TableID, data); err != nil {
		return nil, errors.WithStack(err)
	}
	return data, nil
}

// resolveErr turns a fetch failure into ErrStale when a newer fetch already
// replaced this one, so the UI never shows errors for superseded attempts.
func (s *Session) resolveErr(tableID string, gen uint64, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gens[tableID] != gen {
		return ErrStale
	}
	return err
}
