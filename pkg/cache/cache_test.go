package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"tableflip.dev/donelog/pkg/record"
	"tableflip.dev/donelog/pkg/sched"
	"tableflip.dev/donelog/pkg/store"
	"tableflip.dev/donelog/pkg/tag"
)

// manualScheduler queues work until the test pumps it, so refresh timing is
// fully deterministic.
type manualScheduler struct {
	mu   sync.Mutex
	jobs []*manualJob
}

type manualJob struct {
	work      func()
	hint      time.Duration
	cancelled bool
}

func (s *manualScheduler) Schedule(work func(), hint time.Duration) sched.CancelFunc {
	j := &manualJob{work: work, hint: hint}
	s.mu.Lock()
	s.jobs = append(s.jobs, j)
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		j.cancelled = true
		s.mu.Unlock()
	}
}

func (s *manualScheduler) runAll() {
	s.mu.Lock()
	jobs := s.jobs
	s.jobs = nil
	s.mu.Unlock()
	for _, j := range jobs {
		if !j.cancelled {
			j.work()
		}
	}
}

func (s *manualScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, j := range s.jobs {
		if !j.cancelled {
			n++
		}
	}
	return n
}

func (s *manualScheduler) lastHint() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[len(s.jobs)-1].hint
}

// memoryPersistence mirrors the disk store's semantics in memory, with a
// controllable external-event channel.
type memoryPersistence struct {
	mu      sync.Mutex
	days    map[string]*record.Day
	aliases map[string]string
	prefs   map[string]bool
	seq     int64
	subs    map[int]func(string)
	nextID  int
	watch   chan store.Event
}

func newMemoryPersistence() *memoryPersistence {
	return &memoryPersistence{
		days:  make(map[string]*record.Day),
		prefs: make(map[string]bool),
		subs:  make(map[int]func(string)),
	}
}

func (m *memoryPersistence) Location() *time.Location { return time.UTC }

func (m *memoryPersistence) ReadDay(date string) *record.Day {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.days[date]; ok {
		return d.Clone()
	}
	return record.NewDay(date)
}

func (m *memoryPersistence) WriteDay(d *record.Day) error {
	d.Sanitize()
	d.LastModified = record.Timestamp{Time: time.Now()}
	m.mu.Lock()
	m.days[d.Date] = d.Clone()
	m.seq++
	fns := m.listeners()
	m.mu.Unlock()
	for _, fn := range fns {
		fn(store.DayKey(d.Date))
	}
	return nil
}

func (m *memoryPersistence) ScanAll(_ context.Context) []*record.Day {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*record.Day, 0, len(m.days))
	for _, d := range m.days {
		out = append(out, d.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

func (m *memoryPersistence) ReadAliases() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.aliases) == 0 {
		return tag.DefaultAliases()
	}
	out := make(map[string]string, len(m.aliases))
	for k, v := range m.aliases {
		out[k] = v
	}
	return out
}

func (m *memoryPersistence) WriteAliases(next map[string]string) (map[string]string, error) {
	normalized, _ := tag.NormalizeAliases(next)
	if len(normalized) == 0 {
		return m.ResetAliases()
	}
	m.mu.Lock()
	m.aliases = normalized
	m.seq++
	fns := m.listeners()
	m.mu.Unlock()
	for _, fn := range fns {
		fn(store.AliasesKey())
	}
	return normalized, nil
}

func (m *memoryPersistence) ResetAliases() (map[string]string, error) {
	defaults := tag.DefaultAliases()
	m.mu.Lock()
	m.aliases = defaults
	m.seq++
	fns := m.listeners()
	m.mu.Unlock()
	for _, fn := range fns {
		fn(store.AliasesKey())
	}
	return defaults, nil
}

func (m *memoryPersistence) ReadBoolPref(name string, def bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.prefs[name]; ok {
		return v
	}
	return def
}

func (m *memoryPersistence) WriteBoolPref(name string, value bool) error {
	m.mu.Lock()
	m.prefs[name] = value
	m.seq++
	m.mu.Unlock()
	return nil
}

func (m *memoryPersistence) Fingerprint(_ context.Context) store.Fingerprint {
	m.mu.Lock()
	defer m.mu.Unlock()
	fp := store.Fingerprint{CounterSeq: m.seq, Days: len(m.days)}
	for date := range m.days {
		if date > fp.MaxDate {
			fp.MaxDate = date
		}
	}
	return fp
}

func (m *memoryPersistence) SubscribeLocal(fn func(key string)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

func (m *memoryPersistence) listeners() []func(string) {
	fns := make([]func(string), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	return fns
}

func (m *memoryPersistence) Watch(ctx context.Context) (<-chan store.Event, error) {
	ch := make(chan store.Event, 8)
	m.mu.Lock()
	m.watch = ch
	m.mu.Unlock()
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

// bumpExternally simulates another process writing to the shared store:
// state changes without any same-process notification.
func (m *memoryPersistence) bumpExternally(d *record.Day) {
	d.Sanitize()
	d.LastModified = record.Timestamp{Time: time.Now()}
	m.mu.Lock()
	m.days[d.Date] = d.Clone()
	m.seq++
	m.mu.Unlock()
}

func dayWith(date, text string) *record.Day {
	d := record.NewDay(date)
	d.Entries = append(d.Entries, record.NewEntry(text))
	return d
}
