package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yourusername/prepcall-api/internal/model"
)

const (
	draftKeyPrefix = "draft:"
	// Drafts only live long enough to carry intake data between the
	// resume-upload and job-description pages.
	draftTTL = 2 * time.Hour
)

// DraftStore keeps short-lived intake drafts in Redis
type DraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDraftStore(client *redis.Client) *DraftStore {
	return &DraftStore{client: client, ttl: draftTTL}
}

// Put stores a draft, assigning an id if it has none, and refreshes the TTL
func (s *DraftStore) Put(ctx context.Context, d *model.Draft) (*model.Draft, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
		d.CreatedAt = time.Now().UTC()
	}

	val, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshaling draft: %w", err)
	}

	if err := s.client.Set(ctx, draftKeyPrefix+d.ID, val, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("storing draft: %w", err)
	}
	return d, nil
}

// Get returns a draft, or nil if it expired or never existed
func (s *DraftStore) Get(ctx context.Context, id string) (*model.Draft, error) {
	val, err := s.client.Get(ctx, draftKeyPrefix+id).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching draft: %w", err)
	}

	var d model.Draft
	if err := json.Unmarshal([]byte(val), &d); err != nil {
		return nil, fmt.Errorf("unmarshaling draft: %w", err)
	}
	return &d, nil
}

// Delete removes a draft once it has been promoted to a session
func (s *DraftStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, draftKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("deleting draft: %w", err)
	}
	return nil
}
