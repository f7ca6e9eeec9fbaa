package store

import "sync"

// localNotifier is the same-process mutation channel: every write path fires
// it synchronously so same-process caches can mark themselves dirty without
// waiting for the filesystem watcher to catch up.
type localNotifier struct {
	mu   sync.Mutex
	subs map[int]func(key string)
	next int
}

func newLocalNotifier() *localNotifier {
	return &localNotifier{subs: make(map[int]func(key string))}
}

func (n *localNotifier) subscribe(fn func(key string)) func() {
	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = fn
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
		})
	}
}

func (n *localNotifier) notify(key string) {
	n.mu.Lock()
	fns := make([]func(string), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()
	for _, fn := range fns {
		fn(key)
	}
}
