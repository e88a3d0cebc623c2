package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mikey/textguard/internal/core"
	"go.uber.org/zap"
)

const tableName = "prediction_cache"

// sqlStore holds the statements shared by the SQL backed caches. Timestamps
// are stored as unix seconds so both dialects compare them the same way.
type sqlStore struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
	now         func() time.Time
}

func newSQLStore(db *sql.DB, logger *zap.Logger, cleanupFreq time.Duration) *sqlStore {
	return &sqlStore{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
		now:         time.Now,
	}
}

func (s *sqlStore) start() {
	go runCleanup(s, s.cleanupFreq, s.stopCh, s.logger)
}

// Get retrieves a live entry
func (s *sqlStore) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
	query, args, err := sq.Select("is_spam", "probability", "created_at", "expires_at").
		From(tableName).
		Where(sq.Eq{"cache_key": key}).
		Where(sq.Gt{"expires_at": s.now().Unix()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build cache query: %w", err)
	}

	var (
		entry              = core.CacheEntry{Key: key}
		created, expiresAt int64
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&entry.IsSpam, &entry.Probability, &created, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}
	entry.CreatedAt = time.Unix(created, 0)
	entry.ExpiresAt = time.Unix(expiresAt, 0)
	return &entry, nil
}

// Set stores a cache entry, replacing any previous one for the key
func (s *sqlStore) Set(ctx context.Context, entry *core.CacheEntry) error {
	query, args, err := sq.Replace(tableName).
		Columns("cache_key", "is_spam", "probability", "created_at", "expires_at").
		Values(entry.Key, entry.IsSpam, entry.Probability, entry.CreatedAt.Unix(), entry.ExpiresAt.Unix()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build cache insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (s *sqlStore) Delete(ctx context.Context, key string) error {
	query, args, err := sq.Delete(tableName).Where(sq.Eq{"cache_key": key}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build cache delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (s *sqlStore) Cleanup(ctx context.Context) error {
	query, args, err := sq.Delete(tableName).Where(sq.LtOrEq{"expires_at": s.now().Unix()}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build cache cleanup: %w", err)
	}
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		s.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rowsAffected))
	}
	return nil
}

// Stop stops the background cleanup task and closes the database connection
func (s *sqlStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close cache database", zap.Error(err))
		}
	})
}
