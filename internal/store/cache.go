package store

import (
	"database/sql"
	"encoding/json"

	"github.com/arkive-app/arkive/internal/domain"
)

// CheckModified compares the given timestamp against the stored
// modified_time scalar. On mismatch it persists the new value and reports
// true; the caller must then reconcile. Timestamps are opaque strings
// compared for inequality, not a staleness window. Compare and swap happen in
// one statement so concurrent callers with the same timestamp cannot both
// observe a change.
func (db *DB) CheckModified(timestamp string) (bool, error) {
	res, err := db.Exec(`UPDATE metadata SET modified_time = ?
		WHERE rowid = 1 AND modified_time <> ?`, timestamp, timestamp)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetCache reads the denormalized homepage snapshot. A missing or empty
// cache yields an empty PageCache, not an error.
func (db *DB) GetCache() (*domain.PageCache, error) {
	cache := &domain.PageCache{Pages: []domain.Page{}}

	var blob sql.NullString
	err := db.Get(&blob, `SELECT page_cache FROM metadata WHERE rowid = 1`)
	if err == sql.ErrNoRows {
		return cache, nil
	}
	if err != nil {
		return nil, err
	}

	if blob.Valid && blob.String != "" {
		if err := json.Unmarshal([]byte(blob.String), cache); err != nil {
			return nil, err
		}
	}
	return cache, nil
}

// SetCache overwrites the snapshot in full.
func (db *DB) SetCache(cache *domain.PageCache) error {
	blob, err := json.Marshal(cache)
	if err != nil {
		return err
	}

	_, err = db.Exec(`UPDATE metadata SET page_cache = ? WHERE rowid = 1`, string(blob))
	return err
}
