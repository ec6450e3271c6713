package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSQLiteErrorClassification(t *testing.T) {
	t.Parallel()

	assert.False(t, IsSQLiteConflictError(nil))
	assert.False(t, IsSQLiteConstraintError(nil))

	busy := fmt.Errorf("begin transaction: %w", errors.New("database is locked (5) (SQLITE_BUSY)"))
	assert.True(t, IsSQLiteBusyError(busy))
	assert.True(t, IsSQLiteConflictError(busy))

	locked := errors.New("database is locked")
	assert.True(t, IsSQLiteLockedError(locked))
	assert.True(t, IsSQLiteConflictError(locked))

	check := errors.New("constraint failed: CHECK constraint failed: sender <> receiver (275)")
	assert.True(t, IsSQLiteConstraintError(check))
	assert.False(t, IsSQLiteConflictError(check))
}
