package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

// boltEntry wraps a cached body with the instant it stops being fresh.
type boltEntry struct {
	Expires time.Time `json:"expires"`
	Body    []byte    `json:"body"`
}

type boltResultCache struct {
	logger *zap.Logger
	client *bolt.DB
	config *BoltDBConfig
	clock  Clocker
}

// GetBoltDBClient setup the database and the bucket then provides a ready to use client.
func GetBoltDBClient(config *Config) (*bolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(config.BoltDB.FilePath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create the database folder, %v", err)
	}
	db, err := bolt.Open(config.BoltDB.FilePath, 0o600, &bolt.Options{Timeout: config.BoltDB.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the database, %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, errB := tx.CreateBucketIfNotExists([]byte(config.BoltDB.BucketName)); errB != nil {
			return fmt.Errorf("failed to create %s bucket: %v", config.BoltDB.BucketName, errB)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set up bucket: %v", err)
	}
	return db, nil
}

// NewBoltResultCache provides a bolt-based search results cache. Bolt has no
// expiry so each entry carries its own and stale ones are removed on read.
func NewBoltResultCache(logger *zap.Logger, boltConfig *BoltDBConfig, client *bolt.DB, clock Clocker) ResultCache {
	return &boltResultCache{
		logger: logger,
		client: client,
		config: boltConfig,
		clock:  clock,
	}
}

// Close shuts down the bolt database.
func (bc *boltResultCache) Close() error {
	return bc.client.Close()
}

// Get retrieves a fresh cached search response.
func (bc *boltResultCache) Get(_ context.Context, key string) ([]byte, error) {
	var entry boltEntry
	found := false
	err := bc.client.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(bc.config.BucketName)).Get([]byte(key))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &entry)
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrCacheMiss
	}

	if !bc.clock.Now().Before(entry.Expires) {
		if err := bc.delete(key); err != nil {
			bc.logger.Warn("failed to evict stale cache entry", zap.String("cache.key", key), zap.Error(err))
		}
		return nil, ErrCacheMiss
	}
	return entry.Body, nil
}

// Set stores a search response valid for ttl.
func (bc *boltResultCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	raw, err := json.Marshal(boltEntry{Expires: bc.clock.Now().Add(ttl), Body: value})
	if err != nil {
		return err
	}
	return bc.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bc.config.BucketName)).Put([]byte(key), raw)
	})
}

func (bc *boltResultCache) delete(key string) error {
	return bc.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bc.config.BucketName)).Delete([]byte(key))
	})
}
