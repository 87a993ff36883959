package domain

import "context"

// Transactor runs fn inside a single database transaction. Repositories
// called with the ctx handed to fn take part in that transaction. A nested
// call joins the outer transaction. The transaction is committed when fn
// returns nil and rolled back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
