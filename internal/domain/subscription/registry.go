package subscription

import (
	"sort"
	"sync"

	"signal_notification_bot/internal/domain/channel"
)

// Registry maps channels to the signal names they subscribe to and keeps the
// reverse index from signal to channels in step with it. Both views are
// mutated under the same lock.
type Registry struct {
	mu        sync.RWMutex
	byChannel map[channel.ID]map[string]struct{}
	bySignal  map[string]map[channel.ID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		byChannel: make(map[channel.ID]map[string]struct{}),
		bySignal:  make(map[string]map[channel.ID]struct{}),
	}
}

// Subscribe adds signal to the channel's set. It reports whether the set changed.
func (r *Registry) Subscribe(id channel.ID, signal string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.add(id, signal)
}

// Unsubscribe removes signal from the channel's set. It reports whether the set changed.
func (r *Registry) Unsubscribe(id channel.ID, signal string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remove(id, signal)
}

// Replace swaps the channel's whole set, e.g. when loading from storage.
func (r *Registry) Replace(id channel.ID, signals []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drop(id)
	for _, s := range signals {
		r.add(id, s)
	}
}

// Drop removes every subscription of the channel.
func (r *Registry) Drop(id channel.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drop(id)
}

// List returns the channel's signals in lexicographic order, or an empty slice.
func (r *Registry) List(id channel.ID) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.byChannel[id]
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Has reports whether the channel is subscribed to signal.
func (r *Registry) Has(id channel.ID, signal string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byChannel[id][signal]
	return ok
}

// ChannelsFor returns the channels currently subscribed to signal, sorted by ID.
func (r *Registry) ChannelsFor(signal string) []channel.ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.bySignal[signal]
	out := make([]channel.ID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Channels returns every channel with at least one subscription.
func (r *Registry) Channels() []channel.ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]channel.ID, 0, len(r.byChannel))
	for id := range r.byChannel {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *Registry) add(id channel.ID, signal string) bool {
	set, ok := r.byChannel[id]
	if !ok {
		set = make(map[string]struct{})
		r.byChannel[id] = set
	}
	if _, exists := set[signal]; exists {
		return false
	}
	set[signal] = struct{}{}

	subs, ok := r.bySignal[signal]
	if !ok {
		subs = make(map[channel.ID]struct{})
		r.bySignal[signal] = subs
	}
	subs[id] = struct{}{}
	return true
}

func (r *Registry) remove(id channel.ID, signal string) bool {
	set, ok := r.byChannel[id]
	if !ok {
		return false
	}
	if _, exists := set[signal]; !exists {
		return false
	}
	delete(set, signal)
	if len(set) == 0 {
		delete(r.byChannel, id)
	}

	if subs, ok := r.bySignal[signal]; ok {
		delete(subs, id)
		if len(subs) == 0 {
			delete(r.bySignal, signal)
		}
	}
	return true
}

func (r *Registry) drop(id channel.ID) {
	for signal := range r.byChannel[id] {
		r.remove(id, signal)
	}
}
