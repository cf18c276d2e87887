// Package storage persists the post, user and session collections as JSON
// documents in named slots of a key-value medium.
//
// The store is fail-soft: read failures and malformed documents read as
// absent, and write failures are dropped. Both are logged and counted but
// never returned, so upper layers cannot tell a broken medium from an empty one.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"devblog/internal/kv"
	"devblog/internal/likes"
	"devblog/internal/models"
	"devblog/internal/observability"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Slot names. The medium key is the configured prefix followed by the slot.
const (
	SlotPosts   = "posts"
	SlotUsers   = "users"
	SlotSession = "session"
)

// Reseeder repopulates an emptied store.
type Reseeder func(ctx context.Context, s *Store, force bool)

// Store reads and writes whole collections.
type Store struct {
	kv      kv.KV
	prefix  string
	likes   likes.Tracker
	log     *observability.StoreLogger
	reseed  Reseeder
	backend string
}

// New creates a Store over medium. tracker may be nil when no like set
// needs clearing on reset.
func New(medium kv.KV, prefix string, tracker likes.Tracker) *Store {
	backend := backendName(medium)
	return &Store{
		kv:      medium,
		prefix:  prefix,
		likes:   tracker,
		log:     observability.NewStoreLogger(backend),
		backend: backend,
	}
}

func backendName(medium kv.KV) string {
	switch m := medium.(type) {
	case *kv.Memory:
		return "memory"
	case *kv.SQL:
		return m.Dialect()
	case *kv.Redis:
		return "redis"
	default:
		return "custom"
	}
}

// SetReseeder registers the hook ResetAll calls after wiping.
func (s *Store) SetReseeder(fn Reseeder) {
	s.reseed = fn
}

// Key returns the medium key for slot.
func (s *Store) Key(slot string) string {
	return s.prefix + slot
}

// Posts returns the stored posts, or an empty slice when absent or unreadable.
func (s *Store) Posts(ctx context.Context) []models.Post {
	var posts []models.Post
	if !s.read(ctx, SlotPosts, &posts) || posts == nil {
		return []models.Post{}
	}
	return posts
}

// SavePosts replaces the post collection.
func (s *Store) SavePosts(ctx context.Context, posts []models.Post) {
	if posts == nil {
		posts = []models.Post{}
	}
	s.write(ctx, SlotPosts, posts)
}

// Users returns the stored users, or an empty slice when absent or unreadable.
func (s *Store) Users(ctx context.Context) []models.User {
	var users []models.User
	if !s.read(ctx, SlotUsers, &users) || users == nil {
		return []models.User{}
	}
	return users
}

// SaveUsers replaces the user collection.
func (s *Store) SaveUsers(ctx context.Context, users []models.User) {
	if users == nil {
		users = []models.User{}
	}
	s.write(ctx, SlotUsers, users)
}

// Session returns the signed-in session or nil.
func (s *Store) Session(ctx context.Context) *models.Session {
	var session *models.Session
	if !s.read(ctx, SlotSession, &session) {
		return nil
	}
	if session == nil || session.UserID == "" {
		return nil
	}
	return session
}

// SetSession stores session; nil clears the slot.
func (s *Store) SetSession(ctx context.Context, session *models.Session) {
	if session == nil {
		s.delete(ctx, SlotSession)
		return
	}
	s.write(ctx, SlotSession, session)
}

// ResetAll wipes every slot and the like set, then reseeds with force.
func (s *Store) ResetAll(ctx context.Context) {
	span, ctx := observability.NewSpan(ctx, "store.reset")
	defer span.End()

	s.delete(ctx, SlotPosts, SlotUsers, SlotSession)
	if s.likes != nil {
		s.likes.Clear(ctx)
	}
	if s.reseed != nil {
		s.reseed(ctx, s, true)
	}
}

// NewID returns 32 lowercase hex characters taken from a random UUID.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *Store) read(ctx context.Context, slot string, dst any) bool {
	span, ctx := observability.NewSpan(ctx, "store.read",
		attribute.String("store.backend", s.backend),
		attribute.String("store.slot", slot),
	)
	defer span.End()

	raw, err := s.kv.Get(ctx, s.Key(slot))
	if errors.Is(err, kv.ErrNotFound) {
		s.log.LogRead(ctx, slot, false)
		observability.RecordStoreOp("read", slot, observability.ResultMissing)
		return false
	}
	if err != nil {
		s.fail(ctx, span, "read", slot, err)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.fail(ctx, span, "decode", slot, err)
		return false
	}

	s.log.LogRead(ctx, slot, true)
	observability.RecordStoreOp("read", slot, observability.ResultOK)
	return true
}

func (s *Store) write(ctx context.Context, slot string, value any) {
	span, ctx := observability.NewSpan(ctx, "store.write",
		attribute.String("store.backend", s.backend),
		attribute.String("store.slot", slot),
	)
	defer span.End()

	raw, err := json.Marshal(value)
	if err != nil {
		s.fail(ctx, span, "encode", slot, err)
		return
	}
	if err := s.kv.Set(ctx, s.Key(slot), raw); err != nil {
		s.fail(ctx, span, "write", slot, err)
		return
	}

	s.log.LogWrite(ctx, slot, len(raw))
	observability.RecordStoreOp("write", slot, observability.ResultOK)
}

func (s *Store) delete(ctx context.Context, slots ...string) {
	keys := make([]string, len(slots))
	for i, slot := range slots {
		keys[i] = s.Key(slot)
	}
	joined := strings.Join(slots, ",")
	if err := s.kv.Delete(ctx, keys...); err != nil {
		s.log.LogFailure(ctx, "delete", joined, err)
		observability.RecordStoreOp("delete", joined, observability.ResultError)
		return
	}
	observability.RecordStoreOp("delete", joined, observability.ResultOK)
}

func (s *Store) fail(ctx context.Context, span *observability.Span, op, slot string, err error) {
	span.SetError(err)
	s.log.LogFailure(ctx, op, slot, err)
	observability.RecordStoreOp(op, slot, observability.ResultError)
}
