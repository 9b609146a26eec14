// Package cache stores catalog API responses in a local SQLite database so
// repeated searches within the TTL do not hit the network.
//
// Entries are keyed by the MD5 of the request URL. Expired entries are
// never returned, and Cleanup drops them together with the oldest entries
// beyond the configured cap.
//
//	store, err := cache.Open(settings.CachePath(), time.Hour, 1000)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	if data, ok := store.Get(cache.Key(url)); ok {
//	    return data, nil
//	}
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// entry is one cached response.
type entry struct {
	CacheKey string `gorm:"primaryKey;column:cache_key"`
	Data     []byte
	StoredAt time.Time `gorm:"index"`
}

func (entry) TableName() string { return "responses" }

// Store is a TTL-bounded response cache backed by SQLite.
type Store struct {
	db         *gorm.DB
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// Open opens (or creates) the cache database at path.
//
// ttl is the lifetime of an entry; maxEntries caps the table size during
// Cleanup (0 disables the cap).
func Open(path string, ttl time.Duration, maxEntries int) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate cache: %w", err)
	}

	return &Store{
		db:         db,
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}, nil
}

// Key derives the cache key for a request URL.
func Key(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached data for key if present and not expired.
func (s *Store) Get(key string) ([]byte, bool) {
	var e entry
	err := s.db.Where("cache_key = ?", key).Take(&e).Error
	if err != nil {
		return nil, false
	}
	if s.expired(e.StoredAt) {
		return nil, false
	}
	return e.Data, true
}

// Put stores data under key, replacing any previous entry.
func (s *Store) Put(key string, data []byte) error {
	e := entry{CacheKey: key, Data: data, StoredAt: s.now()}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&e).Error
}

// Cleanup removes expired entries, then the oldest entries beyond the cap.
// It returns the number of removed entries.
func (s *Store) Cleanup() (int64, error) {
	var removed int64

	if s.ttl > 0 {
		res := s.db.Where("stored_at < ?", s.now().Add(-s.ttl)).Delete(&entry{})
		if res.Error != nil {
			return 0, res.Error
		}
		removed += res.RowsAffected
	}

	if s.maxEntries > 0 {
		count, err := s.Len()
		if err != nil {
			return removed, err
		}
		if excess := count - int64(s.maxEntries); excess > 0 {
			oldest := s.db.Model(&entry{}).Select("cache_key").Order("stored_at asc").Limit(int(excess))
			res := s.db.Where("cache_key IN (?)", oldest).Delete(&entry{})
			if res.Error != nil {
				return removed, res.Error
			}
			removed += res.RowsAffected
		}
	}

	return removed, nil
}

// Len returns the number of stored entries, expired ones included.
func (s *Store) Len() (int64, error) {
	var count int64
	err := s.db.Model(&entry{}).Count(&count).Error
	return count, err
}

// Clear removes every entry.
func (s *Store) Clear() error {
	return s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entry{}).Error
}

// Close releases the database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) expired(created time.Time) bool {
	return s.ttl > 0 && s.now().Sub(created) > s.ttl
}
