package library

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Entry is one indexed library file. Size and ModTime pin the digest to a
// specific version of the file; a mismatch invalidates the entry.
type Entry struct {
	Path    string `gorm:"primaryKey"`
	Digest  string `gorm:"index:idx_entry_digest"`
	Size    int64
	ModTime int64 // UnixNano
}

// Index is a sqlite-backed digest cache. It only caches file digests; a cold
// or absent index degrades the locator to a plain linear scan.
type Index struct {
	db  *gorm.DB
	sql *sql.DB
}

// OpenIndex opens (creating if needed) the index database at path.
func OpenIndex(path string) (*Index, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open digest index: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("digest index handle: %w", err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate digest index: %w", err)
	}
	return &Index{db: db, sql: sqlDB}, nil
}

// LookupDigest returns any entry recorded for digest.
func (ix *Index) LookupDigest(digest string) (Entry, bool) {
	var e Entry
	err := ix.db.Where("digest = ?", digest).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || err != nil {
		return Entry{}, false
	}
	return e, true
}

// LookupPath returns the entry recorded for a file path.
func (ix *Index) LookupPath(path string) (Entry, bool) {
	var e Entry
	err := ix.db.Where("path = ?", path).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || err != nil {
		return Entry{}, false
	}
	return e, true
}

// Put records or refreshes an entry.
func (ix *Index) Put(e Entry) error {
	return ix.db.Save(&e).Error
}

// Forget evicts the entry for a file path.
func (ix *Index) Forget(path string) {
	ix.db.Where("path = ?", path).Delete(&Entry{})
}

// Close releases the underlying database handle.
func (ix *Index) Close() error {
	if ix == nil || ix.sql == nil {
		return nil
	}
	return ix.sql.Close()
}
