package dbstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/cogitia/cogitia/automod/policy"
	"github.com/cogitia/cogitia/automod/policystore"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *DBStore) GetPolicy(ctx context.Context, guildID string) (policy.GuildPolicy, bool, error) {
	var row GuildPolicyRow
	err := s.db.WithContext(ctx).Where("guild_id = ?", guildID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return policy.GuildPolicy{}, false, nil
	}
	if err != nil {
		return policy.GuildPolicy{}, false, err
	}
	return row.policy(), true, nil
}

func (s *DBStore) PutPolicy(ctx context.Context, p policy.GuildPolicy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	row := policyRow(p)
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

// Read-merge-write inside a transaction. The existing row is locked (SELECT ... FOR UPDATE) on databases that support it; sqlite serializes writers on its single connection.
func (s *DBStore) UpdatePolicy(ctx context.Context, guildID string, merge policystore.MergeFunc) (policy.GuildPolicy, error) {
	var out policy.GuildPolicy
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row GuildPolicyRow
		found := true
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("guild_id = ?", guildID).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			found = false
		} else if err != nil {
			return fmt.Errorf("reading guild policy: %w", err)
		}
		var cur policy.GuildPolicy
		if found {
			cur = row.policy()
		}
		next, err := merge(cur, found)
		if err != nil {
			return err
		}
		if err := next.Validate(); err != nil {
			return err
		}
		nextRow := policyRow(next)
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&nextRow).Error; err != nil {
			return fmt.Errorf("storing guild policy: %w", err)
		}
		out = next
		return nil
	})
	if err != nil {
		return policy.GuildPolicy{}, err
	}
	return out, nil
}
