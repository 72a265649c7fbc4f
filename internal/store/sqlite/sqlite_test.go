package sqlite_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"jobmate/hiring-service/internal/db"
	"jobmate/hiring-service/internal/store"
	"jobmate/hiring-service/internal/store/sqlite"
	"jobmate/hiring-service/internal/store/storetest"
)

var dbSeq atomic.Int64

func newRepo(t *testing.T) store.Backend {
	t.Helper()
	dsn := fmt.Sprintf("file:hiring%d?mode=memory&cache=shared", dbSeq.Add(1))
	conn, err := db.OpenSQLite(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return sqlite.New(conn, nil)
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, newRepo)
}
