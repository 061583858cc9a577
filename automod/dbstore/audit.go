package dbstore

import (
	"context"
	"errors"
	"time"

	"github.com/cogitia/cogitia/automod/auditlog"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *DBStore) Append(ctx context.Context, e *auditlog.Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	row := auditRow(e)
	// ids are caller-assigned, so re-appending an entry that already landed is a no-op
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

func (s *DBStore) Validate(ctx context.Context, id string, v auditlog.Validation) (*auditlog.Entry, error) {
	var out auditlog.Entry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row AuditEntryRow
		if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return auditlog.ErrNotFound
			}
			return err
		}
		approved := v.Approved
		at := v.At.UTC()
		row.ModeratorValidated = &approved
		row.ModeratorID = v.ModeratorID
		row.ModeratorNotes = v.Notes
		row.ValidatedAt = &at
		if !approved {
			row.Action = "dismissed"
		}
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		out = row.entry()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *DBStore) History(ctx context.Context, userID, guildID string, limit int) ([]auditlog.Entry, error) {
	if limit <= 0 {
		limit = auditlog.DefaultHistoryLimit
	}
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if guildID != "" {
		q = q.Where("guild_id = ?", guildID)
	}
	var rows []AuditEntryRow
	if err := q.Order("created_at desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]auditlog.Entry, len(rows))
	for i := range rows {
		out[i] = rows[i].entry()
	}
	return out, nil
}

func (s *DBStore) Stats(ctx context.Context, guildID string, since time.Time) (*auditlog.GuildStats, error) {
	var rows []AuditEntryRow
	err := s.db.WithContext(ctx).
		Where("guild_id = ? AND created_at >= ?", guildID, since.UTC()).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	entries := make([]auditlog.Entry, len(rows))
	for i := range rows {
		entries[i] = rows[i].entry()
	}
	return auditlog.Summarize(guildID, since, entries), nil
}
