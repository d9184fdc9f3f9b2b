package sheets

import (
	"context"

	"finsight/internal/core"
)

// Ports for outbound export adapters.
type (
	// TransactionWriter appends one ledger entry to the export target and
	// returns an opaque row reference.
	TransactionWriter interface {
		Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	// TransactionDeleter removes a previously exported entry by its ID.
	TransactionDeleter interface {
		Delete(ctx context.Context, id string) error
	}
)
