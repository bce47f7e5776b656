package mirror

import (
	"context"
	"sync"

	"graphmirror/internal/dbexec"
)

// transactionState tracks whether the mirror currently owns an open
// transaction, guarding against the nested-transaction programmer error
// (spec.md §4.9, §7 AlreadyInTransaction). It is a single mutex-guarded
// active flag, set on entry and cleared on exit.
type transactionState struct {
	mu     sync.Mutex
	active bool
}

func (s *transactionState) enter() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return ErrAlreadyInTransaction
	}
	s.active = true
	return nil
}

func (s *transactionState) exit() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

// withTransaction implements the transaction helper described in spec.md
// §4.9: fail if the mirror is already inside a transaction, open one,
// invoke fn with the transaction executor, commit on normal return, roll
// back on error or panic. A panic inside fn is recovered just long enough
// to roll back, then re-raised — never swallowed, the same defer/recover
// shape as middleware.MutationTransactionMiddleware.
func (m *Mirror) withTransaction(ctx context.Context, fn func(ctx context.Context, tx dbexec.TxExecutor) error) (err error) {
	if enterErr := m.txState.enter(); enterErr != nil {
		return enterErr
	}
	defer m.txState.exit()

	tx, err := m.opener.BeginTx(ctx)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if rec := recover(); rec != nil {
			_ = tx.Rollback()
			panic(rec)
		}
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
