package runtime

import "github.com/aretw0/patchbay/pkg/domain"

// notifier fans mutation events out to observers, synchronously and in
// registration order.
type notifier struct {
	nextID  int
	entries []observerEntry
}

type observerEntry struct {
	id int
	fn domain.Observer
}

func (n *notifier) subscribe(fn domain.Observer) int {
	n.nextID++
	n.entries = append(n.entries, observerEntry{id: n.nextID, fn: fn})
	return n.nextID
}

func (n *notifier) unsubscribe(id int) {
	for i, e := range n.entries {
		if e.id == id {
			n.entries = append(n.entries[:i], n.entries[i+1:]...)
			return
		}
	}
}

// OnChange registers fn to receive every accepted mutation. The returned
// function removes it again and is safe to call more than once.
func (m *Matrix) OnChange(fn domain.Observer) func() {
	id := m.notifier.subscribe(fn)
	return func() { m.notifier.unsubscribe(id) }
}

// notify delivers ev to every observer. Each invocation is isolated: an
// observer that panics is logged and skipped, and can neither block
// delivery to the rest nor corrupt the mutation that triggered it.
func (m *Matrix) notify(ev domain.Event) {
	for _, entry := range m.notifier.entries {
		m.invokeObserver(entry, ev)
	}
}

func (m *Matrix) invokeObserver(entry observerEntry, ev domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("observer panicked", "kind", ev.Kind, "err", r)
		}
	}()
	entry.fn(ev)
}
