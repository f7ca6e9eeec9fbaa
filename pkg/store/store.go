// Package store persists day records, the alias dictionary, and small
// preferences to a diskv-backed key-value store, and surfaces both
// same-process and cross-process change notifications.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/peterbourgon/diskv/v3"
	"github.com/rs/zerolog"

	"tableflip.dev/donelog/pkg/record"
	"tableflip.dev/donelog/pkg/tag"
)

// Key layout. One key per calendar day under the day prefix, fixed keys for
// the alias dictionary and the shared last-write counter, one key per boolean
// preference.
const (
	dayKeyPrefix  = "day-"
	aliasesKey    = "aliases"
	counterKey    = "counter"
	prefKeyPrefix = "pref-"

	daysDir = "days"

	// PrefAutoSpace controls whether tag insertion appends a trailing space.
	PrefAutoSpace = "autospace"
)

// DayKey builds the storage key for a date key.
func DayKey(date string) string { return dayKeyPrefix + date }

// PrefKey builds the storage key for a named boolean preference.
func PrefKey(name string) string { return prefKeyPrefix + name }

// AliasesKey returns the fixed storage key of the alias dictionary.
func AliasesKey() string { return aliasesKey }

// Fingerprint is a cheap proxy for "did the underlying store change": the
// last-write counter plus a key-enumeration check that catches writers which
// bypass the counter path.
type Fingerprint struct {
	CounterSeq int64
	Days       int
	MaxDate    string
}

// Persistence is the record-store contract consumed by the cache layer and
// the service. Read operations never fail: they degrade to empty/default
// values so reads never return errors into consumers. When the base path is
// unusable, writes degrade to logged no-ops and the app runs without
// persisting anything.
type Persistence interface {
	ReadDay(date string) *record.Day
	WriteDay(d *record.Day) error
	ScanAll(ctx context.Context) []*record.Day
	ReadAliases() map[string]string
	WriteAliases(next map[string]string) (map[string]string, error)
	ResetAliases() (map[string]string, error)
	ReadBoolPref(name string, def bool) bool
	WriteBoolPref(name string, value bool) error
	Fingerprint(ctx context.Context) Fingerprint
	SubscribeLocal(fn func(key string)) func()
	Watch(ctx context.Context) (<-chan Event, error)
	Location() *time.Location
}

// Option adjusts store construction.
type Option func(*persistence)

// WithLogger injects a logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(p *persistence) { p.log = log }
}

// Load creates a Persistence backed by diskv using the provided config. A nil
// config loads the default one.
func Load(cfg Config, opts ...Option) (Persistence, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	basePath := cfg.BasePath()
	p := &persistence{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		basePath: basePath,
		loc:      cfg.Location(),
		local:    newLocalNotifier(),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

type persistence struct {
	d        *diskv.Diskv
	basePath string
	loc      *time.Location
	local    *localNotifier
	log      zerolog.Logger
}

func (p *persistence) Location() *time.Location {
	if p.loc == nil {
		return time.Local
	}
	return p.loc
}

// ReadDay returns the record for the date key. Absent or malformed records
// yield an empty-but-valid record; the storage key is authoritative for the
// embedded date.
func (p *persistence) ReadDay(date string) *record.Day {
	d := record.NewDay(date)
	if _, err := record.ParseDateKey(date); err != nil {
		return d
	}
	raw, err := p.d.Read(DayKey(date))
	if err != nil {
		return d
	}
	parsed := &record.Day{}
	if err := json.Unmarshal(raw, parsed); err != nil {
		p.log.Debug().Str("date", date).Err(err).Msg("skip malformed day record")
		return d
	}
	parsed.Date = date
	parsed.Sanitize()
	return parsed
}

// WriteDay validates, sanitizes, stamps LastModified, persists, bumps the
// last-write counter, and fires the same-process notifier synchronously.
func (p *persistence) WriteDay(d *record.Day) error {
	if d == nil {
		return errors.New("store: nil day record")
	}
	if _, err := record.ParseDateKey(d.Date); err != nil {
		return errors.New("store: invalid date key " + strings.TrimSpace(d.Date))
	}
	d.Sanitize()
	d.LastModified = record.Timestamp{Time: time.Now()}
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	key := DayKey(d.Date)
	if err := p.d.Write(key, data); err != nil {
		return p.degradeWrite(key, err)
	}
	p.bumpCounter()
	p.local.notify(key)
	return nil
}

// degradeWrite decides what a failed write means. A healthy base directory
// surfaces the error; an unusable base path drops the write so the app keeps
// running in a nothing-persists mode, matching how reads degrade to empty
// values.
func (p *persistence) degradeWrite(key string, err error) error {
	if info, statErr := os.Stat(p.basePath); statErr == nil && info.IsDir() {
		return err
	}
	p.log.Warn().Str("key", key).Err(err).Msg("storage unavailable, write dropped")
	return nil
}

// ScanAll enumerates every persisted day record, newest-first. Unparsable
// records are skipped silently (logged at debug).
func (p *persistence) ScanAll(ctx context.Context) []*record.Day {
	all := make([]*record.Day, 0)
	for key := range p.d.Keys(ctx.Done()) {
		date, ok := strings.CutPrefix(key, dayKeyPrefix)
		if !ok {
			continue
		}
		if _, err := record.ParseDateKey(date); err != nil {
			continue
		}
		raw, err := p.d.Read(key)
		if err != nil {
			p.log.Debug().Str("key", key).Err(err).Msg("skip unreadable day record")
			continue
		}
		d := &record.Day{}
		if err := json.Unmarshal(raw, d); err != nil {
			p.log.Debug().Str("key", key).Err(err).Msg("skip malformed day record")
			continue
		}
		d.Date = date
		d.Sanitize()
		all = append(all, d)
	}
	sortDays(all)
	return all
}

// ReadAliases loads the alias dictionary, falling back to the built-in
// default set when the stored value is absent, malformed, or empty after
// normalization.
func (p *persistence) ReadAliases() map[string]string {
	raw, err := p.d.Read(aliasesKey)
	if err != nil {
		return tag.DefaultAliases()
	}
	stored := map[string]string{}
	if err := json.Unmarshal(raw, &stored); err != nil {
		p.log.Debug().Err(err).Msg("skip malformed alias dictionary")
		return tag.DefaultAliases()
	}
	normalized, _ := tag.NormalizeAliases(stored)
	if len(normalized) == 0 {
		return tag.DefaultAliases()
	}
	return normalized
}

// WriteAliases persists the dictionary and returns the value actually stored.
// A dictionary that normalizes to zero entries resets to the defaults rather
// than persisting as empty.
func (p *persistence) WriteAliases(next map[string]string) (map[string]string, error) {
	normalized, _ := tag.NormalizeAliases(next)
	if len(normalized) == 0 {
		return p.ResetAliases()
	}
	if err := p.writeAliasValue(normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}

// ResetAliases restores and persists the built-in default set.
func (p *persistence) ResetAliases() (map[string]string, error) {
	defaults := tag.DefaultAliases()
	if err := p.writeAliasValue(defaults); err != nil {
		return nil, err
	}
	return defaults, nil
}

func (p *persistence) writeAliasValue(dict map[string]string) error {
	data, err := json.Marshal(dict)
	if err != nil {
		return err
	}
	if err := p.d.Write(aliasesKey, data); err != nil {
		return p.degradeWrite(aliasesKey, err)
	}
	p.bumpCounter()
	p.local.notify(aliasesKey)
	return nil
}

// ReadBoolPref returns a stored boolean preference or the default.
func (p *persistence) ReadBoolPref(name string, def bool) bool {
	raw, err := p.d.Read(PrefKey(name))
	if err != nil {
		return def
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return def
	}
	return v
}

// WriteBoolPref persists a boolean preference.
func (p *persistence) WriteBoolPref(name string, value bool) error {
	data, _ := json.Marshal(value)
	key := PrefKey(name)
	if err := p.d.Write(key, data); err != nil {
		return p.degradeWrite(key, err)
	}
	p.bumpCounter()
	p.local.notify(key)
	return nil
}

// counterValue is the persisted shape of the shared last-write counter.
type counterValue struct {
	Seq       int64            `json:"seq"`
	UpdatedAt record.Timestamp `json:"updatedAt"`
}

func (p *persistence) readCounter() counterValue {
	raw, err := p.d.Read(counterKey)
	if err != nil {
		return counterValue{}
	}
	var c counterValue
	if err := json.Unmarshal(raw, &c); err != nil {
		return counterValue{}
	}
	return c
}

func (p *persistence) bumpCounter() {
	c := p.readCounter()
	c.Seq++
	c.UpdatedAt = record.Timestamp{Time: time.Now()}
	data, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := p.d.Write(counterKey, data); err != nil {
		p.log.Debug().Err(err).Msg("counter bump failed")
	}
}

// Fingerprint computes the freshness proxy without parsing any records.
func (p *persistence) Fingerprint(ctx context.Context) Fingerprint {
	fp := Fingerprint{CounterSeq: p.readCounter().Seq}
	for key := range p.d.Keys(ctx.Done()) {
		date, ok := strings.CutPrefix(key, dayKeyPrefix)
		if !ok {
			continue
		}
		fp.Days++
		if date > fp.MaxDate {
			fp.MaxDate = date
		}
	}
	return fp
}

// SubscribeLocal registers for synchronous same-process write notifications.
func (p *persistence) SubscribeLocal(fn func(key string)) func() {
	return p.local.subscribe(fn)
}

func sortDays(days []*record.Day) {
	// Newest first; date keys are zero padded so string order is date order.
	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Date > days[j].Date
	})
}

func keyToPathTransform(s string) *diskv.PathKey {
	if date, ok := strings.CutPrefix(s, dayKeyPrefix); ok {
		return &diskv.PathKey{Path: []string{daysDir}, FileName: date}
	}
	return &diskv.PathKey{Path: []string{}, FileName: s}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) == 1 && pathKey.Path[0] == daysDir {
		return dayKeyPrefix + pathKey.FileName
	}
	return pathKey.FileName
}
