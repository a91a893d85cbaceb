package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/updesk/helpdesk/internal/domain"
)

// ErrDraftNotFound is returned when a draft id is unknown or expired.
var ErrDraftNotFound = errors.New("ticket draft not found")

// DraftStore keeps proposed tickets between the AI consultation and the
// requester's confirm / resolve-by-AI decision. Drafts expire after a TTL.
type DraftStore interface {
	Save(ctx context.Context, userID int64, draft domain.TicketDraft) (string, error)
	Get(ctx context.Context, userID int64, draftID string) (*domain.TicketDraft, error)
	Delete(ctx context.Context, userID int64, draftID string) error
}

type redisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDraftStore builds a Redis-backed draft store.
func NewRedisDraftStore(client *redis.Client, ttl time.Duration) DraftStore {
	return &redisDraftStore{client: client, ttl: ttl}
}

func draftKey(userID int64, draftID string) string {
	return "ticket_draft:" + strconv.FormatInt(userID, 10) + ":" + draftID
}

func (s *redisDraftStore) Save(ctx context.Context, userID int64, draft domain.TicketDraft) (string, error) {
	payload, err := json.Marshal(draft)
	if err != nil {
		return "", err
	}
	draftID := uuid.NewString()
	if err := s.client.Set(ctx, draftKey(userID, draftID), payload, s.ttl).Err(); err != nil {
		return "", err
	}
	return draftID, nil
}

func (s *redisDraftStore) Get(ctx context.Context, userID int64, draftID string) (*domain.TicketDraft, error) {
	payload, err := s.client.Get(ctx, draftKey(userID, draftID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}
	var draft domain.TicketDraft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (s *redisDraftStore) Delete(ctx context.Context, userID int64, draftID string) error {
	return s.client.Del(ctx, draftKey(userID, draftID)).Err()
}

type memoryDraftStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	drafts map[string]memoryDraftEntry
}

type memoryDraftEntry struct {
	draft     domain.TicketDraft
	expiresAt time.Time
}

// NewMemoryDraftStore builds an in-process draft store, used when Redis is
// not configured and in tests.
func NewMemoryDraftStore(ttl time.Duration) DraftStore {
	return &memoryDraftStore{ttl: ttl, drafts: make(map[string]memoryDraftEntry)}
}

func (s *memoryDraftStore) Save(ctx context.Context, userID int64, draft domain.TicketDraft) (string, error) {
	draftID := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[memoryKey(userID, draftID)] = memoryDraftEntry{
		draft:     draft,
		expiresAt: time.Now().Add(s.ttl),
	}
	return draftID, nil
}

func (s *memoryDraftStore) Get(ctx context.Context, userID int64, draftID string) (*domain.TicketDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.drafts[memoryKey(userID, draftID)]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, ErrDraftNotFound
	}
	draft := entry.draft
	return &draft, nil
}

func (s *memoryDraftStore) Delete(ctx context.Context, userID int64, draftID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, memoryKey(userID, draftID))
	return nil
}

func memoryKey(userID int64, draftID string) string {
	return strconv.FormatInt(userID, 10) + ":" + draftID
}
