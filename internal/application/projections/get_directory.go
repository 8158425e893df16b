package projections

import (
	"context"

	domainAccount "partymap/internal/domain/account"
)

// GetDirectoryResult carries the query result.
type GetDirectoryResult struct {
	Entries []domainAccount.DirectoryEntry
}

// GetDirectoryDeps holds dependencies for GetDirectory.
type GetDirectoryDeps struct {
	AccountStore AccountStore
}

// QueryGetDirectory retrieves the public user directory.
// POST: entries carry id, email and profile name only, never credential data
func QueryGetDirectory(ctx context.Context, deps GetDirectoryDeps) (GetDirectoryResult, error) {
	accounts, err := deps.AccountStore.List(ctx)
	if err != nil {
		return GetDirectoryResult{}, err
	}

	entries := make([]domainAccount.DirectoryEntry, 0, len(accounts))
	for _, a := range accounts {
		entries = append(entries, a.Directory())
	}
	return GetDirectoryResult{Entries: entries}, nil
}
