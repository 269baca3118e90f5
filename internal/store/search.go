package store

import (
	"strings"

	"github.com/jmoiron/sqlx"
)

// SearchPages runs trigram full-text search over title/url/filename,
// AND-combined with zero or more exact tag filters. It returns matching
// filenames only; callers re-fetch full records via GetPagesData.
func (db *DB) SearchPages(query string, tags []string) ([]string, error) {
	var ftsMatches []string
	haveFTS := strings.TrimSpace(query) != ""

	if haveFTS {
		// Surround with quotes so the fts engine tolerates punctuation.
		quoted := `"` + strings.ReplaceAll(query, `"`, `""`) + `"`
		err := db.Select(&ftsMatches, `SELECT filename FROM page_fts WHERE page_fts MATCH ?`, quoted)
		if err != nil {
			return nil, err
		}
		if len(ftsMatches) == 0 {
			return nil, nil
		}
	}

	if len(tags) == 0 {
		return ftsMatches, nil
	}

	// Pages carrying every requested tag.
	q, args, err := sqlx.In(`SELECT p.filename
		FROM page p
		JOIN page_tag pt ON pt.page_id = p.id
		JOIN tag t ON t.id = pt.tag_id
		WHERE t.name IN (?)
		GROUP BY p.id
		HAVING COUNT(DISTINCT t.name) = ?`, tags, len(tags))
	if err != nil {
		return nil, err
	}

	var tagMatches []string
	if err := db.Select(&tagMatches, db.Rebind(q), args...); err != nil {
		return nil, err
	}

	if !haveFTS {
		return tagMatches, nil
	}

	// Intersect, preserving full-text relevance order.
	tagged := make(map[string]bool, len(tagMatches))
	for _, f := range tagMatches {
		tagged[f] = true
	}

	var results []string
	for _, f := range ftsMatches {
		if tagged[f] {
			results = append(results, f)
		}
	}
	return results, nil
}
