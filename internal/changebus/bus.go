// Package changebus implements the process-wide publish/subscribe channel for
// data mutations.
//
// The bus fans every payload out to every subscriber. It does not filter:
// each subscriber tests whether the payload intersects its own managed id
// sets and refetches only then. A nil payload means the scope of the mutation
// was not tracked and subscribers must fall back to a full recompute.
package changebus

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MutationKind describes what happened to the mutated records.
type MutationKind string

const (
	MutationInsert MutationKind = "insert"
	MutationUpdate MutationKind = "update"
	MutationDelete MutationKind = "delete"
)

// Payload is a scoped description of what entities a mutation affected.
// It is transient, constructed at the point of mutation and discarded after
// the fan-out.
type Payload struct {
	Kind        MutationKind
	AccountIDs  []uuid.UUID
	CategoryIDs []uuid.UUID
}

// Affects reports whether the payload intersects the given account or
// category id sets. This is the test every subscriber performs to decide
// between a targeted recompute and doing nothing.
func (p Payload) Affects(accountIDs, categoryIDs []uuid.UUID) bool {
	return intersects(p.AccountIDs, accountIDs) || intersects(p.CategoryIDs, categoryIDs)
}

func intersects(a, b []uuid.UUID) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}

	return false
}

// Handler consumes a payload. A nil payload signals a mutation of unknown
// scope, handlers must then recompute all of their managed entities.
type Handler func(payload *Payload)

// Bus delivers payloads to all registered subscribers synchronously, in
// registration order, on the publisher's goroutine.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers a handler. Handlers cannot be removed, the set of
// subscribers is fixed shortly after process start.
func (b *Bus) Subscribe(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers = append(b.handlers, handler)
}

// Publish delivers the payload to all subscribers. Delivery is
// fire-and-forget: the bus does not collect results and does not retry.
func (b *Bus) Publish(payload *Payload) {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()

	if payload != nil {
		log.Debug().
			Str("kind", string(payload.Kind)).
			Int("accounts", len(payload.AccountIDs)).
			Int("categories", len(payload.CategoryIDs)).
			Int("subscribers", len(handlers)).
			Msg("publishing change payload")
	}

	for _, handler := range handlers {
		handler(payload)
	}
}
