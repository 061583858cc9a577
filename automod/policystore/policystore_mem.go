package policystore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/cogitia/cogitia/automod/policy"
)

type MemPolicyStore struct {
	lk       sync.RWMutex
	Policies map[string]policy.GuildPolicy
}

var _ PolicyStore = (*MemPolicyStore)(nil)
var _ PolicyUpdater = (*MemPolicyStore)(nil)

func NewMemPolicyStore() *MemPolicyStore {
	return &MemPolicyStore{
		Policies: make(map[string]policy.GuildPolicy),
	}
}

func (s *MemPolicyStore) GetPolicy(ctx context.Context, guildID string) (policy.GuildPolicy, bool, error) {
	s.lk.RLock()
	defer s.lk.RUnlock()
	p, ok := s.Policies[guildID]
	if !ok {
		return policy.GuildPolicy{}, false, nil
	}
	return p.Clone(), true, nil
}

func (s *MemPolicyStore) PutPolicy(ctx context.Context, p policy.GuildPolicy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.lk.Lock()
	defer s.lk.Unlock()
	s.Policies[p.GuildID] = p.Clone()
	return nil
}

func (s *MemPolicyStore) UpdatePolicy(ctx context.Context, guildID string, merge MergeFunc) (policy.GuildPolicy, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	cur, found := s.Policies[guildID]
	next, err := merge(cur.Clone(), found)
	if err != nil {
		return policy.GuildPolicy{}, err
	}
	if err := next.Validate(); err != nil {
		return policy.GuildPolicy{}, err
	}
	s.Policies[next.GuildID] = next.Clone()
	return next, nil
}

// Loads a JSON array of guild policies. Fields missing from an entry take their default values.
func (s *MemPolicyStore) LoadFromFileJSON(p string) error {

	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	raw, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return err
	}

	for i, e := range entries {
		var head struct {
			GuildID string `json:"guild_id"`
		}
		if err := json.Unmarshal(e, &head); err != nil {
			return fmt.Errorf("policy entry %d: %w", i, err)
		}
		gp := policy.Default(head.GuildID)
		if err := json.Unmarshal(e, &gp); err != nil {
			return fmt.Errorf("policy entry %d: %w", i, err)
		}
		if err := s.PutPolicy(context.Background(), gp); err != nil {
			return fmt.Errorf("policy entry %d: %w", i, err)
		}
	}
	return nil
}
