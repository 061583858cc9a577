package auditlog

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemAuditLog struct {
	lk      sync.RWMutex
	Entries []Entry
}

var _ AuditLog = (*MemAuditLog)(nil)

func NewMemAuditLog() *MemAuditLog {
	return &MemAuditLog{}
}

func (l *MemAuditLog) Append(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	cp := *e
	cp.Categories = slices.Clone(e.Categories)
	l.lk.Lock()
	defer l.lk.Unlock()
	l.Entries = append(l.Entries, cp)
	return nil
}

func (l *MemAuditLog) Validate(ctx context.Context, id string, v Validation) (*Entry, error) {
	l.lk.Lock()
	defer l.lk.Unlock()
	for i := range l.Entries {
		if l.Entries[i].ID != id {
			continue
		}
		e := &l.Entries[i]
		approved := v.Approved
		at := v.At
		e.ModeratorValidated = &approved
		e.ModeratorID = v.ModeratorID
		e.ModeratorNotes = v.Notes
		e.ValidatedAt = &at
		if !approved {
			e.Action = "dismissed"
		}
		out := *e
		return &out, nil
	}
	return nil, ErrNotFound
}

func (l *MemAuditLog) History(ctx context.Context, userID, guildID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	l.lk.RLock()
	defer l.lk.RUnlock()
	out := []Entry{}
	for _, e := range l.Entries {
		if e.UserID == userID && (guildID == "" || e.GuildID == guildID) {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b Entry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (l *MemAuditLog) Stats(ctx context.Context, guildID string, since time.Time) (*GuildStats, error) {
	l.lk.RLock()
	defer l.lk.RUnlock()
	return Summarize(guildID, since, l.Entries), nil
}
