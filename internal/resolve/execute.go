package resolve

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/fhinkel/music-janitor-core/internal/apperr"
	"github.com/fhinkel/music-janitor-core/internal/logging"
)

// Store is the subset of catalog.Store a plan execution needs.
type Store interface {
	Delete(ctx context.Context, id int64) error
}

// TxStore additionally exposes a transaction, used by ExecuteDirectory.
type TxStore interface {
	Transaction(fn func(*sql.Tx) error) error
}

// Result reports what an Execute/ExecuteDirectory pass actually did.
type Result struct {
	Deleted int
	Failed  []error
}

// Execute deletes every resolution's file_to_delete row via C1, then
// best-effort unlinks the file from disk (spec §4.8: "applying [the plan]
// is a separate step that deletes files via C1 with best-effort
// filesystem unlink"). Re-running Execute against an already-applied plan
// is a no-op: a missing row is treated as already deleted, not a failure.
func Execute(ctx context.Context, store Store, plan Plan) *Result {
	result := &Result{}
	for _, r := range plan.Resolutions {
		if err := store.Delete(ctx, r.FileToDeleteID); err != nil && !apperr.Is(err, apperr.KindNotFound) {
			result.Failed = append(result.Failed, fmt.Errorf("%s: %w", r.FileToDelete, err))
			continue
		}
		if err := os.Remove(r.FileToDelete); err != nil && !os.IsNotExist(err) {
			logging.Warn("resolve: unlink %s failed: %v", r.FileToDelete, err)
		}
		result.Deleted++
	}
	return result
}

// ExecuteDirectory deletes every file in files transactionally: either
// every catalog row is removed or none is (spec §4.8's directory-centric
// "execute deletes them transactionally"). Disk unlinks happen after the
// transaction commits and are best-effort, matching Execute.
func ExecuteDirectory(ctx context.Context, store TxStore, files []string, pathToID map[string]int64) (*Result, error) {
	err := store.Transaction(func(tx *sql.Tx) error {
		for _, f := range files {
			id, ok := pathToID[f]
			if !ok {
				continue
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, id); err != nil {
				return apperr.Wrap(apperr.KindInternal, "resolve.ExecuteDirectory", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, f := range files {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			logging.Warn("resolve: unlink %s failed: %v", f, err)
		}
		result.Deleted++
	}
	return result, nil
}
