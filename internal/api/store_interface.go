package api

import "github.com/soaringjerry/Jornada/internal/services"

// Store is the process-local state behind the router.
type Store interface {
	services.SessionRegistry

	SessionCount() int

	AddAudit(e AuditEntry)
	ListAudit() []AuditEntry
}

var _ Store = (*memoryStore)(nil)
