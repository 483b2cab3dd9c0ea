package db

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
)

// RunInTransaction is the single write boundary of the catalog: begin,
// invoke fn, commit on nil error, roll back on error or panic. The
// connection is released on every exit path.
func RunInTransaction(ctx context.Context, db *bun.DB, fn func(ctx context.Context, tx bun.Tx) error) error {
	return db.RunInTx(ctx, &sql.TxOptions{}, fn)
}
