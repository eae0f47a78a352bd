package kvstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is the row model for the PostgreSQL backend.
type Entry struct {
	Key       string `gorm:"primaryKey;size:512"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName pins the table name so a shared database can host other schemas.
func (Entry) TableName() string { return "timeplus_kv" }

const postgresBatchSize = 500

var upsertClause = clause.OnConflict{
	Columns:   []clause.Column{{Name: "key"}},
	DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
}

// Postgres is a Store backed by a PostgreSQL table through GORM.
type Postgres struct {
	db     *gorm.DB
	closed atomic.Bool
}

// OpenPostgres connects to dsn and ensures the table exists.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("open postgres: dsn is empty")
	}
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	store := NewPostgres(db)
	if err := db.WithContext(ensureContext(ctx)).AutoMigrate(&Entry{}); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return store, nil
}

// NewPostgres wraps an existing GORM handle.
func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	if p.closed.Load() {
		return "", false, ErrClosed
	}
	var row Entry
	err := p.db.WithContext(ensureContext(ctx)).Where("key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return row.Value, true, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	if p.closed.Load() {
		return ErrClosed
	}
	row := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	if err := p.upsert(p.db.WithContext(ensureContext(ctx)), &row).Error; err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (p *Postgres) SetMany(ctx context.Context, entries map[string]string) error {
	if p.closed.Load() {
		return ErrClosed
	}
	if len(entries) == 0 {
		return nil
	}
	rows := entryRows(entries, time.Now().UTC())
	err := p.db.WithContext(ensureContext(ctx)).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(upsertClause).CreateInBatches(rows, postgresBatchSize).Error
	})
	if err != nil {
		return fmt.Errorf("set %d entries: %w", len(entries), err)
	}
	return nil
}

func (p *Postgres) Keys(ctx context.Context, prefix string) ([]string, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	var keys []string
	err := p.db.WithContext(ensureContext(ctx)).
		Model(&Entry{}).
		Where(`key LIKE ? ESCAPE '\'`, likePrefix(prefix)).
		Order("key").
		Pluck("key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	return keys, nil
}

func (p *Postgres) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (p *Postgres) upsert(db *gorm.DB, row *Entry) *gorm.DB {
	return db.Clauses(upsertClause).Create(row)
}

func entryRows(entries map[string]string, now time.Time) []Entry {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	rows := make([]Entry, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, Entry{Key: key, Value: entries[key], UpdatedAt: now})
	}
	return rows
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePrefix(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}
