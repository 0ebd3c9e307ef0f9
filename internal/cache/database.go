package cache

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/everafterhq/everafter/internal/models"
)

// DatabaseStore implements Store on the relational database. It is the
// fallback when Redis is not configured and is good enough for a single node.
type DatabaseStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDatabaseStore constructs a database-backed cache store.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	if db == nil {
		return nil
	}
	return &DatabaseStore{db: db, now: time.Now}
}

// IncrementWithTTL increments a counter row, resetting it when the previous
// window expired. The whole read-modify-write runs in one transaction.
func (s *DatabaseStore) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}

	now := s.now()
	var count int64
	var expires time.Time

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.CacheEntry
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("key = ?", key).
			First(&entry).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && entry.ExpiresAt.Before(now)):
			count = 1
			expires = now.Add(window)
			entry = models.CacheEntry{Key: key, Value: encodeCounter(count), ExpiresAt: expires}
			return tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
			}).Create(&entry).Error
		case err != nil:
			return err
		default:
			count = decodeCounter(entry.Value) + 1
			expires = entry.ExpiresAt
			return tx.Model(&models.CacheEntry{}).
				Where("key = ?", key).
				Update("value", encodeCounter(count)).Error
		}
	})
	if err != nil {
		return 0, 0, err
	}

	return count, time.Until(expires), nil
}

// Set stores a value with expiry semantics.
func (s *DatabaseStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := models.CacheEntry{
		Key:       key,
		Value:     value,
		ExpiresAt: s.now().Add(ttl),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&entry).Error
}

// Get retrieves a value, treating expired rows as missing.
func (s *DatabaseStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry models.CacheEntry
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	case entry.ExpiresAt.Before(s.now()):
		return nil, false, nil
	default:
		return entry.Value, true, nil
	}
}

// Delete removes one or more keys, ignoring missing keys.
func (s *DatabaseStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Where("key IN ?", keys).Delete(&models.CacheEntry{}).Error
}

// CleanupExpired removes rows whose TTL has elapsed; called from the dispatcher.
func (s *DatabaseStore) CleanupExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ?", s.now()).
		Delete(&models.CacheEntry{})
	return result.RowsAffected, result.Error
}

func encodeCounter(v int64) []byte {
	buf := make([]byte, 0, 20)
	if v == 0 {
		return append(buf, '0')
	}
	var digits [20]byte
	pos := len(digits)
	for v > 0 {
		pos--
		digits[pos] = byte('0' + v%10)
		v /= 10
	}
	return append(buf, digits[pos:]...)
}

func decodeCounter(value []byte) int64 {
	var v int64
	for _, b := range value {
		if b < '0' || b > '9' {
			return 0
		}
		v = v*10 + int64(b-'0')
	}
	return v
}
