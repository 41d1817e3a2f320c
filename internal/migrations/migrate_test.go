package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/movequote/internal/db"
)

func TestUpCreatesSchema(t *testing.T) {
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, Up(database, "../../migrations", nil))

	version, err := Version(database)
	require.NoError(t, err)
	assert.Equal(t, int64(3), version)

	for _, table := range []string{"rate_config", "sessions", "callback_requests"} {
		var name string
		err := database.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}

	// Running again is a no-op.
	require.NoError(t, Up(database, "../../migrations", nil))
}
