package auditlog

import (
	"testing"
)

func TestMemAuditLog(t *testing.T) {
	BehaviorTest(t, NewMemAuditLog())
}
