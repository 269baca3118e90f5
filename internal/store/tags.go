package store

import (
	"github.com/jmoiron/sqlx"
)

// SetTags reconciles a page's tag associations to exactly the given set:
// insert-if-absent each tag, insert-if-absent each junction row, then drop
// junction rows for tags no longer present. Tag rows themselves are never
// deleted; orphaned tags are tolerated.
func (db *DB) SetTags(pageID int64, tags []string) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := setTagsTx(tx, pageID, tags); err != nil {
		return err
	}
	return tx.Commit()
}

func setTagsTx(tx *sqlx.Tx, pageID int64, tags []string) error {
	for _, tag := range tags {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO tag (name) VALUES (?)`, tag); err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT OR IGNORE INTO page_tag (page_id, tag_id)
			SELECT ?, id FROM tag WHERE name = ?`, pageID, tag); err != nil {
			return err
		}
	}

	if len(tags) == 0 {
		_, err := tx.Exec(`DELETE FROM page_tag WHERE page_id = ?`, pageID)
		return err
	}

	query, args, err := sqlx.In(`DELETE FROM page_tag
		WHERE page_id = ?
		AND tag_id NOT IN (SELECT id FROM tag WHERE name IN (?))`, pageID, tags)
	if err != nil {
		return err
	}
	_, err = tx.Exec(tx.Rebind(query), args...)
	return err
}

// ListTags returns every tag name currently in use by at least one page.
func (db *DB) ListTags() ([]string, error) {
	var tags []string
	err := db.Select(&tags, `SELECT DISTINCT t.name
		FROM tag t
		JOIN page_tag pt ON pt.tag_id = t.id
		ORDER BY t.name`)
	return tags, err
}
