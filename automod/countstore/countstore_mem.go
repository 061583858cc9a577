package countstore

import (
	"context"
	"sync"
	"time"

	"github.com/cogitia/cogitia/automod/toxicity"
)

type MemInfractionStore struct {
	lk      sync.RWMutex
	Records []InfractionRecord
}

var _ InfractionStore = (*MemInfractionStore)(nil)

func NewMemInfractionStore() *MemInfractionStore {
	return &MemInfractionStore{}
}

func (s *MemInfractionStore) GetInfractionCount(ctx context.Context, userID, guildID string, since time.Time) (int, error) {
	s.lk.RLock()
	defer s.lk.RUnlock()
	count := 0
	for _, rec := range s.Records {
		if rec.UserID == userID && rec.GuildID == guildID && !rec.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *MemInfractionStore) LastSanction(ctx context.Context, userID, guildID string, since time.Time) (*toxicity.Sanction, error) {
	s.lk.RLock()
	defer s.lk.RUnlock()
	var last *InfractionRecord
	for i, rec := range s.Records {
		if rec.UserID != userID || rec.GuildID != guildID || rec.Sanction == nil || rec.CreatedAt.Before(since) {
			continue
		}
		if last == nil || !rec.CreatedAt.Before(last.CreatedAt) {
			last = &s.Records[i]
		}
	}
	if last == nil {
		return nil, nil
	}
	sanction := *last.Sanction
	return &sanction, nil
}

func (s *MemInfractionStore) RecordInfraction(ctx context.Context, rec InfractionRecord) error {
	s.lk.Lock()
	defer s.lk.Unlock()
	s.Records = append(s.Records, rec)
	return nil
}

func (s *MemInfractionStore) Retract(ctx context.Context, logID string) error {
	if logID == "" {
		return nil
	}
	s.lk.Lock()
	defer s.lk.Unlock()
	out := s.Records[:0]
	for _, rec := range s.Records {
		if rec.LogID != logID {
			out = append(out, rec)
		}
	}
	s.Records = out
	return nil
}
