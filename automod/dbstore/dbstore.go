// Relational persistence for guild policies, the decision audit log, and infractions, on top of gorm (sqlite or postgres).
package dbstore

import (
	"fmt"

	"github.com/cogitia/cogitia/automod/auditlog"
	"github.com/cogitia/cogitia/automod/countstore"
	"github.com/cogitia/cogitia/automod/policystore"

	"gorm.io/gorm"
)

// One database handle serving all three store interfaces.
type DBStore struct {
	db *gorm.DB
}

var (
	_ policystore.PolicyStore    = (*DBStore)(nil)
	_ policystore.PolicyUpdater  = (*DBStore)(nil)
	_ auditlog.AuditLog          = (*DBStore)(nil)
	_ countstore.InfractionStore = (*DBStore)(nil)
)

// Wraps an open database, creating or migrating tables as needed.
func NewDBStore(db *gorm.DB) (*DBStore, error) {
	if err := db.AutoMigrate(&GuildPolicyRow{}, &AuditEntryRow{}, &InfractionRow{}); err != nil {
		return nil, fmt.Errorf("migrating database schema: %w", err)
	}
	return &DBStore{db: db}, nil
}
