// Package registry implements the descriptor store and pool builder: a
// concurrently accessed, hot-reloadable pool of protobuf descriptors.
package registry

import (
	"fmt"
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Entry is a single descriptor upload: a logical file name and the raw
// wire-format bytes of the FileDescriptorSet it decodes to.
type Entry struct {
	Name string
	Raw  []byte
}

// Snapshot is a consistent, point-in-time copy of the store's contents plus
// the generation it was taken at. A Snapshot is never mutated after it is
// returned; building a pool from it is always reproducible.
type Snapshot struct {
	Entries    []Entry
	Generation uint64
}

// Store is the descriptor store (C1): a name -> raw FileDescriptorSet bytes
// map protected by a readers-writer lock. Many validation calls may take a
// snapshot concurrently; an upload excludes all readers while it installs.
type Store struct {
	mu         sync.RWMutex
	entries    map[string][]byte
	generation uint64
}

// NewStore creates an empty descriptor store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string][]byte),
	}
}

// Upsert validates that raw decodes as a FileDescriptorSet and, on success,
// atomically installs the entry under name, overwriting any prior value.
// Upserts are serialized with respect to one another by the write lock, so
// the last writer for a given key always wins.
func (s *Store) Upsert(name string, raw []byte) error {
	var fdset descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(raw, &fdset); err != nil {
		return &BadDescriptorError{Name: name, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[name] = raw
	s.generation++

	return nil
}

// Snapshot returns a structural copy of every entry in the store, along
// with the generation it was taken at. The copy is safe to read without
// holding any lock; a concurrent Upsert cannot mutate it in place.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := Snapshot{
		Entries:    make([]Entry, 0, len(s.entries)),
		Generation: s.generation,
	}
	for name, raw := range s.entries {
		cp := make([]byte, len(raw))
		copy(cp, raw)
		out.Entries = append(out.Entries, Entry{Name: name, Raw: cp})
	}

	return out
}

// BadDescriptorError is returned by Upsert when raw does not decode as a
// FileDescriptorSet.
type BadDescriptorError struct {
	Name string
	Err  error
}

func (e *BadDescriptorError) Error() string {
	return fmt.Sprintf("failed to decode file content for %q: %v", e.Name, e.Err)
}

func (e *BadDescriptorError) Unwrap() error { return e.Err }
