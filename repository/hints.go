/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package repository

import (
	"context"
	"database/sql"

	"github.com/tomoncle/datastudy/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// withLock adds the row lock for mode. SQLite has no row locks and gets the
// query unchanged.
func withLock(q *bun.SelectQuery, d dialect.Name, mode types.LockMode) *bun.SelectQuery {
	if d == dialect.SQLite {
		return q
	}
	switch mode {
	case types.LockPessimisticRead:
		return q.For("SHARE")
	case types.LockPessimisticWrite:
		return q.For("UPDATE")
	}
	return q
}

// readOnly runs fn in a read-only transaction. SQLite connections cannot be
// marked read-only per transaction, so fn runs on db directly there.
func readOnly(ctx context.Context, db bun.IDB, fn func(ctx context.Context, db bun.IDB) error) error {
	if db.Dialect().Name() == dialect.SQLite {
		return fn(ctx, db)
	}
	if _, inTx := db.(bun.Tx); inTx {
		return fn(ctx, db)
	}
	return db.RunInTx(ctx, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}
