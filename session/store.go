package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/restodash/authkit/kv"
)

// DefaultKey is the key under which the serialized session lives in
// either scope.
const DefaultKey = "session"

// Store persists sessions across the two durable scopes. The remembered
// scope wins on load, matching the legacy lookup order.
type Store struct {
	ephemeral  kv.Store
	remembered kv.Store
	key        string

	// report receives load-path defects (unreadable store, corrupt
	// blob). Load itself never surfaces them: a session that cannot be
	// read is a session that does not exist.
	report func(error)
}

// NewStore creates a [Store] over the two scopes. key defaults to
// [DefaultKey]; report may be nil.
func NewStore(ephemeral, remembered kv.Store, key string, report func(error)) *Store {
	if key == "" {
		key = DefaultKey
	}
	if report == nil {
		report = func(error) {}
	}
	return &Store{
		ephemeral:  ephemeral,
		remembered: remembered,
		key:        key,
		report:     report,
	}
}

func (s *Store) scope(mode Mode) kv.Store {
	if mode == Remembered {
		return s.remembered
	}
	return s.ephemeral
}

func (s *Store) other(mode Mode) kv.Store {
	if mode == Remembered {
		return s.ephemeral
	}
	return s.remembered
}

// Save serializes the session into the scope selected by its mode and
// removes any copy from the other scope, so exactly one durable copy
// exists afterwards.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	data, err := Encode(sess)
	if err != nil {
		return err
	}

	if err := s.scope(sess.Mode).Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := s.other(sess.Mode).Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear stale session copy: %w", err)
	}
	return nil
}

// Load returns the persisted session, or nil when none exists. An
// unreadable store or a corrupt blob is reported through the hook and
// returned as absent, never as an error.
func (s *Store) Load(ctx context.Context) *Session {
	for _, scope := range []kv.Store{s.remembered, s.ephemeral} {
		data, err := scope.Get(ctx, s.key)
		if err != nil {
			if !errors.Is(err, kv.ErrNotFound) {
				s.report(err)
			}
			continue
		}

		sess, err := Decode(data)
		if err != nil {
			s.report(err)
			continue
		}
		return sess
	}
	return nil
}

// Clear removes any persisted session from both scopes. Clearing an
// empty store is a no-op success.
func (s *Store) Clear(ctx context.Context) error {
	return errors.Join(
		s.ephemeral.Delete(ctx, s.key),
		s.remembered.Delete(ctx, s.key),
	)
}
