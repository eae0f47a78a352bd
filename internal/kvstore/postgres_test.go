package kvstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func dryRunPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  "host=localhost user=timeplus dbname=timeplus sslmode=disable",
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestPostgresUpsertStatement(t *testing.T) {
	db := dryRunPostgres(t)
	store := NewPostgres(db)

	stmt := store.upsert(db, &Entry{Key: "k", Value: "v"}).Statement
	sql := stmt.SQL.String()
	assert.Contains(t, sql, `INSERT INTO "timeplus_kv"`)
	assert.Contains(t, sql, `ON CONFLICT ("key") DO UPDATE`)
}

func TestPostgresKeysStatementEscapesPrefix(t *testing.T) {
	db := dryRunPostgres(t)
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var keys []string
		return tx.Model(&Entry{}).Where(`key LIKE ? ESCAPE '\'`, likePrefix("a_b")).Order("key").Pluck("key", &keys)
	})
	assert.Contains(t, sql, "ESCAPE")
	assert.Contains(t, sql, "ORDER BY key")
}

func TestLikePrefix(t *testing.T) {
	assert.Equal(t, `nicoplus\_timeplus\_%`, likePrefix("nicoplus_timeplus_"))
	assert.Equal(t, `100\%\\%`, likePrefix(`100%\`))
}

func TestEntryRowsSorted(t *testing.T) {
	now := time.Unix(0, 0).UTC()
	rows := entryRows(map[string]string{"b": "2", "a": "1"}, now)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].Key)
	assert.Equal(t, "2", rows[1].Value)
	assert.Equal(t, now, rows[1].UpdatedAt)
}

func TestOpenPostgresRejectsEmptyDSN(t *testing.T) {
	_, err := OpenPostgres(context.Background(), " ")
	assert.Error(t, err)
}

func TestPostgresIntegration(t *testing.T) {
	dsn := os.Getenv("TIMEPLUS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TIMEPLUS_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	store, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	prefix := "it_" + time.Now().UTC().Format("150405.000000") + "_"
	require.NoError(t, store.Set(ctx, prefix+"a", "1"))
	require.NoError(t, store.SetMany(ctx, map[string]string{prefix + "a": "2", prefix + "b": "3"}))

	value, ok, err := store.Get(ctx, prefix+"a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", value)

	keys, err := store.Keys(ctx, prefix)
	require.NoError(t, err)
	assert.Equal(t, []string{prefix + "a", prefix + "b"}, keys)
}
