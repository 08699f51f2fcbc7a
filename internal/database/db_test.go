package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	require.Equal(t,
		"app:secret@tcp(db:3306)/spaceshare?charset=utf8mb4&parseTime=true&loc=UTC",
		DSN("app", "secret", "db", "3306", "spaceshare"))
	require.Equal(t,
		"root@tcp(localhost:3306)/spaceshare?charset=utf8mb4&parseTime=true&loc=UTC",
		DSN("root", "", "localhost", "3306", "spaceshare"))
}

func TestStatementsCoverEveryTable(t *testing.T) {
	stmts := Statements()
	require.Len(t, stmts, 5)
	for i, table := range []string{"users", "listings", "bookings", "reviews", "messages"} {
		require.True(t, strings.HasPrefix(stmts[i], "CREATE TABLE IF NOT EXISTS "+table+" ("), stmts[i])
	}
}
