package repositories

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/questlog/internal/logger"
)

// TxGetter returns the transaction bound to ctx, or nil.
type TxGetter func(ctx context.Context) *sqlx.Tx

// executor picks the request transaction when there is one.
func executor(ctx context.Context, db *sqlx.DB, txGetter TxGetter) (sqlx.ExtContext, bool) {
	if txGetter != nil {
		if tx := txGetter(ctx); tx != nil {
			return tx, true
		}
	}
	return db, false
}

// logQuery logs query, args, result, error with the query in a single line.
func logQuery(query string, args []any, result any, err error) {
	logger.Log.Infow("query executed",
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", result,
		"error", err,
	)
}
