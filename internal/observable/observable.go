// Package observable holds a current value and pushes every change to
// subscribers until they unsubscribe.
package observable

import "sync"

// Observable is the read side of a Value.
type Observable[T any] interface {
	Subscribe(fn func(T)) *Subscription
}

// Value stores the latest T. Subscribe replays it immediately, then every
// Set is delivered in subscription order. Callbacks run on the goroutine
// that called Set (or Subscribe, for the replay). Deliveries are serialized
// across concurrent Set, Update and Subscribe calls, so the last value a
// subscriber sees is the current one. A callback may Unsubscribe but must
// not call Set, Update or Subscribe on the same Value.
type Value[T any] struct {
	deliver sync.Mutex
	mu      sync.Mutex
	current T
	nextID  uint64
	subs    map[uint64]func(T)
	order   []uint64
}

func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		current: initial,
		subs:    make(map[uint64]func(T)),
	}
}

func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

func (v *Value[T]) Set(x T) {
	v.deliver.Lock()
	defer v.deliver.Unlock()

	v.mu.Lock()
	v.current = x
	fns := v.snapshot()
	v.mu.Unlock()

	for _, fn := range fns {
		fn(x)
	}
}

// Update applies fn to the current value and publishes the result. fn runs
// under the lock and must not call back into v.
func (v *Value[T]) Update(fn func(T) T) {
	v.deliver.Lock()
	defer v.deliver.Unlock()

	v.mu.Lock()
	next := fn(v.current)
	v.current = next
	fns := v.snapshot()
	v.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
}

func (v *Value[T]) snapshot() []func(T) {
	fns := make([]func(T), 0, len(v.order))
	for _, id := range v.order {
		fns = append(fns, v.subs[id])
	}
	return fns
}

func (v *Value[T]) Subscribe(fn func(T)) *Subscription {
	v.deliver.Lock()
	defer v.deliver.Unlock()

	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	v.order = append(v.order, id)
	current := v.current
	v.mu.Unlock()

	fn(current)

	return &Subscription{cancel: func() { v.remove(id) }}
}

// Subscribers reports how many subscriptions are live.
func (v *Value[T]) Subscribers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}

func (v *Value[T]) remove(id uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.subs, id)
	for i, o := range v.order {
		if o == id {
			v.order = append(v.order[:i], v.order[i+1:]...)
			break
		}
	}
}

// Subscription releases one Subscribe call.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Unsubscribe stops further deliveries. Safe to call more than once and on
// a nil Subscription.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}
