package dbstore

import (
	"context"
	"fmt"
	"time"

	"github.com/cogitia/cogitia/automod/countstore"
	"github.com/cogitia/cogitia/automod/toxicity"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

func (s *DBStore) GetInfractionCount(ctx context.Context, userID, guildID string, since time.Time) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&InfractionRow{}).
		Where("user_id = ? AND guild_id = ? AND created_at >= ?", userID, guildID, since.UTC()).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *DBStore) LastSanction(ctx context.Context, userID, guildID string, since time.Time) (*toxicity.Sanction, error) {
	var rows []InfractionRow
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND guild_id = ? AND created_at >= ? AND sanction IS NOT NULL", userID, guildID, since.UTC()).
		Order("created_at desc").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	sanction, err := toxicity.ParseSanction(*rows[0].Sanction)
	if err != nil {
		return nil, fmt.Errorf("infraction %s: %w", rows[0].ID, err)
	}
	return &sanction, nil
}

func (s *DBStore) RecordInfraction(ctx context.Context, rec countstore.InfractionRecord) error {
	row := InfractionRow{
		ID:         rec.ID,
		LogID:      rec.LogID,
		UserID:     rec.UserID,
		GuildID:    rec.GuildID,
		CreatedAt:  rec.CreatedAt.UTC(),
		Categories: rec.Categories,
		Severity:   rec.Severity,
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if rec.Sanction != nil {
		name := rec.Sanction.String()
		row.Sanction = &name
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

func (s *DBStore) Retract(ctx context.Context, logID string) error {
	if logID == "" {
		return nil
	}
	return s.db.WithContext(ctx).Where("log_id = ?", logID).Delete(&InfractionRow{}).Error
}
