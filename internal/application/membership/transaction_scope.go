package membership

import "context"

// TransactionScope runs several repository calls in one tenant session.
// Repositories called with the ctx handed to fn join the same transaction,
// which commits when fn returns nil and rolls back otherwise.
// *persistence.SessionFactory satisfies it.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoOpTransactionScope calls fn directly. Useful for tests.
type NoOpTransactionScope struct{}

// Execute runs fn without a transaction
func (NoOpTransactionScope) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var _ TransactionScope = NoOpTransactionScope{}
