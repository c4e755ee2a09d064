// Package repository owns the collection of stream logs.
//
// The collection is loaded once from a storage.Store and written back in
// full after every mutation. Reads never touch the store.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"streamtally/internal/core"
	"streamtally/internal/log"
	"streamtally/internal/storage"
)

// DefaultStoreKey is the key holding the whole stream log collection.
const DefaultStoreKey = "stream_logs"

// ErrLogNotFound is returned when an id matches no stream log.
var ErrLogNotFound = errors.New("stream log not found")

type Repository struct {
	mu    sync.RWMutex
	logs  []core.StreamLog
	byKey map[core.LogKey]int
	byID  map[string]int

	// The collection is read record by record so one undecodable entry
	// cannot empty it. Such entries are kept verbatim and written back.
	reader     *storage.JSON[[]json.RawMessage]
	writer     *storage.JSON[[]any]
	unreadable []json.RawMessage
	storeKey   string
	now      func() time.Time
	newID    func() string
	logger   *log.Logger
}

type Option func(*Repository)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithIDGenerator replaces the uuid v4 generator used for activity ids.
func WithIDGenerator(newID func() string) Option {
	return func(r *Repository) { r.newID = newID }
}

func WithLogger(logger *log.Logger) Option {
	return func(r *Repository) { r.logger = logger }
}

func WithStoreKey(key string) Option {
	return func(r *Repository) { r.storeKey = key }
}

// New loads the collection from store. A missing or unreadable collection
// starts empty.
func New(ctx context.Context, store storage.Store, opts ...Option) *Repository {
	r := &Repository{
		storeKey: DefaultStoreKey,
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   log.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.WithComponent(log.ComponentRepository)
	r.reader = storage.NewJSON[[]json.RawMessage](store, r.logger)
	r.writer = storage.NewJSON[[]any](store, r.logger)
	r.load(ctx)
	return r
}

func (r *Repository) load(ctx context.Context) {
	records := r.reader.Read(ctx, r.storeKey, nil)
	r.logs = make([]core.StreamLog, 0, len(records))
	r.byKey = make(map[core.LogKey]int, len(records))
	r.byID = make(map[string]int, len(records))
	r.unreadable = nil

	for i, raw := range records {
		var l core.StreamLog
		if err := json.Unmarshal(raw, &l); err != nil {
			r.logger.WarnContext(ctx, "Keeping undecodable stored stream log aside",
				"index", i, log.FieldError, err)
			r.unreadable = append(r.unreadable, raw)
			continue
		}
		key := l.Key()
		if l.ID == "" {
			l.ID = key.ID()
		}
		if l.Activities == nil {
			l.Activities = []core.Activity{}
		}
		for _, a := range l.Activities {
			if !a.Kind.Valid() {
				r.logger.WarnContext(ctx, "Stored activity has unknown type and will not be counted",
					log.FieldStreamID, l.ID, log.FieldActivityID, a.ID, log.FieldActivity, string(a.Kind))
			}
		}
		if _, dup := r.byID[l.ID]; dup {
			r.logger.WarnContext(ctx, "Skipping stored stream log with duplicate id", log.FieldStreamID, l.ID)
			continue
		}
		idx := len(r.logs)
		r.logs = append(r.logs, l)
		r.byID[l.ID] = idx
		if _, seen := r.byKey[key]; !seen {
			r.byKey[key] = idx
		}
	}

	r.logger.InfoContext(ctx, "Loaded stream logs", log.FieldStoreKey, r.storeKey,
		"count", len(r.logs), "unreadable", len(r.unreadable))
}

// persist writes the whole collection. Callers hold the write lock.
func (r *Repository) persist(ctx context.Context) {
	out := make([]any, 0, len(r.logs)+len(r.unreadable))
	for _, l := range r.logs {
		out = append(out, l)
	}
	for _, raw := range r.unreadable {
		out = append(out, raw)
	}
	r.writer.Write(ctx, r.storeKey, out)
}

// IdentityFor validates a header and returns the id of its stream log.
// Stored logs keep the id they were saved with, so an existing log with
// the same key wins over the derived id.
func (r *Repository) IdentityFor(date, streamer, title string) (string, error) {
	h, err := core.NewHeader(date, streamer, title)
	if err != nil {
		return "", err
	}
	key := h.Key()

	r.mu.RLock()
	defer r.mu.RUnlock()
	if idx, ok := r.byKey[key]; ok {
		return r.logs[idx].ID, nil
	}
	return key.ID(), nil
}

// Get returns a copy of the stream log with the given id.
func (r *Repository) Get(id string) (core.StreamLog, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.byID[id]
	if !ok {
		return core.StreamLog{}, false
	}
	return r.logs[idx].Clone(), true
}

// CreateOrGetHeader returns the id of the log matching h, creating an
// empty log when there is none. An existing header is never modified.
func (r *Repository) CreateOrGetHeader(ctx context.Context, h core.Header) (string, bool, error) {
	if err := h.Validate(); err != nil {
		return "", false, err
	}
	key := h.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	if idx, ok := r.byKey[key]; ok {
		return r.logs[idx].ID, false, nil
	}

	l := core.StreamLog{
		ID:           key.ID(),
		StreamerName: key.Streamer,
		Date:         h.Date,
		StreamTitle:  key.Title,
		Activities:   []core.Activity{},
		LastUpdated:  r.now(),
	}
	idx := len(r.logs)
	r.logs = append(r.logs, l)
	r.byKey[key] = idx
	r.byID[l.ID] = idx
	r.persist(ctx)

	r.logger.InfoContext(ctx, "Stream log created",
		log.NewFields().WithStream(l.ID, l.StreamerName, l.Date.String()).WithOperation(log.OpCreate).ToSlice()...)
	return l.ID, true, nil
}

// AppendActivity stamps p with a new id and the current time and appends
// it to the log. Invalid payloads and unknown ids leave every log untouched.
func (r *Repository) AppendActivity(ctx context.Context, id string, p core.ActivityPayload) (core.Activity, error) {
	if err := p.Validate(); err != nil {
		return core.Activity{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byID[id]
	if !ok {
		return core.Activity{}, fmt.Errorf("%w: %s", ErrLogNotFound, id)
	}

	now := r.now()
	a := core.NewActivity(r.newID(), now, p)
	l := &r.logs[idx]
	l.Activities = append(l.Activities, a)
	l.LastUpdated = now
	r.persist(ctx)

	r.logger.InfoContext(ctx, "Activity appended",
		log.NewFields().
			WithStream(l.ID, l.StreamerName, l.Date.String()).
			WithActivity(a.ID, string(a.Kind), a.Username, a.Count, a.Amount.Cents).
			WithOperation(log.OpAppend).
			ToSlice()...)
	return a, nil
}

// RecentLogs returns the logs dated in the current calendar month, most
// recently updated first.
func (r *Repository) RecentLogs() []core.StreamLog {
	now := r.now()
	year, month := now.Year(), now.Month()

	r.mu.RLock()
	out := make([]core.StreamLog, 0)
	for _, l := range r.logs {
		if l.Date.Year() == year && l.Date.Month() == month {
			out = append(out, l.Clone())
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastUpdated.After(out[j].LastUpdated)
	})
	return out
}

// MonthlySummary aggregates every log dated in the given month. month0 is
// zero-based (0 = January). The summary is absent when no log falls in the
// month, even if the logs there have no activities.
func (r *Repository) MonthlySummary(year, month0 int) (core.Summary, bool) {
	if month0 < 0 || month0 > 11 {
		return core.Summary{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		acts  []core.Activity
		found bool
	)
	for _, l := range r.logs {
		if l.Date.Year() == year && l.Date.MonthIndex() == month0 {
			found = true
			acts = append(acts, l.Activities...)
		}
	}
	if !found {
		return core.Summary{}, false
	}
	return core.MonthSummary(year, month0, acts), true
}

// YearlySummary folds the monthly totals of a year and adds a trend row
// for each month that has logs. Absent when the year has no logs.
func (r *Repository) YearlySummary(year int) (core.Summary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byMonth := make(map[int][]core.Activity)
	for _, l := range r.logs {
		if l.Date.Year() != year {
			continue
		}
		m := l.Date.MonthIndex()
		byMonth[m] = append(byMonth[m], l.Activities...)
	}
	if len(byMonth) == 0 {
		return core.Summary{}, false
	}

	months := make(map[int]core.Totals, len(byMonth))
	for m, acts := range byMonth {
		months[m] = core.Aggregate(acts)
	}
	return core.YearSummary(year, months), true
}

// AvailableYears returns the distinct years with logs, newest first.
func (r *Repository) AvailableYears() []int {
	r.mu.RLock()
	seen := make(map[int]struct{})
	for _, l := range r.logs {
		seen[l.Date.Year()] = struct{}{}
	}
	r.mu.RUnlock()

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// AvailableMonths returns the distinct zero-based months of a year that
// have logs, in calendar order.
func (r *Repository) AvailableMonths(year int) []core.MonthOption {
	r.mu.RLock()
	seen := make(map[int]struct{})
	for _, l := range r.logs {
		if l.Date.Year() == year {
			seen[l.Date.MonthIndex()] = struct{}{}
		}
	}
	r.mu.RUnlock()

	months := make([]int, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Ints(months)

	out := make([]core.MonthOption, len(months))
	for i, m := range months {
		out[i] = core.MonthOption{Month: m, Name: core.MonthName(m)}
	}
	return out
}

// All returns a copy of the whole collection in stored order.
func (r *Repository) All() []core.StreamLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.StreamLog, len(r.logs))
	for i, l := range r.logs {
		out[i] = l.Clone()
	}
	return out
}
