package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/arkive-app/arkive/internal/domain"
)

var ErrPageNotFound = errors.New("page not found")

// pageRow is the scan target for page queries with flattened tags.
type pageRow struct {
	ID          int64  `db:"id"`
	Title       string `db:"title"`
	URL         string `db:"url"`
	Filename    string `db:"filename"`
	Size        int64  `db:"size"`
	IsMedia     bool   `db:"is_media"`
	CreatedTime string `db:"created_time"`
	Tags        string `db:"tags"`
}

func (r pageRow) toPage() domain.Page {
	var tags []string
	if r.Tags != "" {
		tags = strings.Split(r.Tags, ",")
	}
	return domain.Page{
		ID:          r.ID,
		Title:       r.Title,
		URL:         r.URL,
		Filename:    r.Filename,
		Size:        r.Size,
		IsMedia:     r.IsMedia,
		CreatedTime: r.CreatedTime,
		Tags:        tags,
	}
}

const pageSelect = `
	SELECT p.id, p.title, p.url, p.filename, p.size, p.is_media, p.created_time,
		COALESCE(group_concat(t.name), '') AS tags
	FROM page p
	LEFT JOIN page_tag pt ON p.id = pt.page_id
	LEFT JOIN tag t ON pt.tag_id = t.id`

// GetPage fetches one page by filename with its tags flattened into a list.
// A missing page returns (nil, nil).
func (db *DB) GetPage(filename string) (*domain.Page, error) {
	query := pageSelect + `
	WHERE p.filename = ?
	GROUP BY p.id`

	var row pageRow
	err := db.Get(&row, query, filename)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	page := row.toPage()
	return &page, nil
}

// GetPagesData fetches many pages by filename, keyed by filename. Filenames
// with no matching row are simply absent from the result.
func (db *DB) GetPagesData(filenames []string) (map[string]domain.Page, error) {
	data := make(map[string]domain.Page, len(filenames))
	if len(filenames) == 0 {
		return data, nil
	}

	query, args, err := sqlx.In(pageSelect+`
	WHERE p.filename IN (?)
	GROUP BY p.id`, filenames)
	if err != nil {
		return nil, err
	}

	var rows []pageRow
	if err := db.Select(&rows, db.Rebind(query), args...); err != nil {
		return nil, err
	}

	for _, row := range rows {
		data[row.Filename] = row.toPage()
	}
	return data, nil
}

// AddPage inserts a page and returns the generated id. A duplicate filename
// fails on the schema's unique constraint.
func (db *DB) AddPage(page domain.PartialPage) (int64, error) {
	query := `INSERT INTO page (title, url, filename, size, is_media)
		VALUES (?, ?, ?, ?, ?)`

	res, err := db.Exec(query, page.Title, page.URL, page.Filename, page.Size, page.IsMedia)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// DeletePage removes the page row; page_tag rows cascade.
func (db *DB) DeletePage(filename string) error {
	res, err := db.Exec(`DELETE FROM page WHERE filename = ?`, filename)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n < 1 {
		return fmt.Errorf("%w: %s", ErrPageNotFound, filename)
	}
	return nil
}

// DeleteRemovedPages deletes every page whose filename is not in keep. An
// empty keep set deletes all rows: the store mirrors the archive directory,
// so an empty directory means an empty page table.
func (db *DB) DeleteRemovedPages(keep []string) error {
	if len(keep) == 0 {
		_, err := db.Exec(`DELETE FROM page`)
		return err
	}

	query, args, err := sqlx.In(`DELETE FROM page WHERE filename NOT IN (?)`, keep)
	if err != nil {
		return err
	}
	_, err = db.Exec(db.Rebind(query), args...)
	return err
}

// EditPage updates title/url, reconciles the tag set, and busts the homepage
// cache by forcing modified_time forward, all in one transaction.
func (db *DB) EditPage(id int64, filename, title, url string, tags []string) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE page SET title = ?, url = ? WHERE filename = ?`, title, url, filename)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n < 1 {
		return fmt.Errorf("%w: %s", ErrPageNotFound, filename)
	}

	if err := setTagsTx(tx, id, tags); err != nil {
		return err
	}

	// The next homepage load must reconcile instead of trusting the cache.
	stamp := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.Exec(`UPDATE metadata SET modified_time = ? WHERE rowid = 1`, stamp); err != nil {
		return err
	}

	return tx.Commit()
}
