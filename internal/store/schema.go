package store

const Schema = `
CREATE TABLE IF NOT EXISTS page (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	url TEXT NOT NULL DEFAULT '',
	filename TEXT NOT NULL UNIQUE,
	size INTEGER NOT NULL,
	is_media INTEGER NOT NULL DEFAULT 0,
	created_time TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS tag (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS page_tag (
	page_id INTEGER NOT NULL,
	tag_id INTEGER NOT NULL,
	PRIMARY KEY (page_id, tag_id),
	FOREIGN KEY (page_id) REFERENCES page(id) ON DELETE CASCADE,
	FOREIGN KEY (tag_id) REFERENCES tag(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_page_tag_tag_id ON page_tag(tag_id);

-- Full-text index over title/url/filename, mirrored from page via triggers.
-- Trigram tokenizer so substring queries match without prefix syntax.
CREATE VIRTUAL TABLE IF NOT EXISTS page_fts USING fts5(title, url, filename, tokenize="trigram");

CREATE TRIGGER IF NOT EXISTS page_after_insert AFTER INSERT ON page
BEGIN
	INSERT INTO page_fts(rowid, title, url, filename)
	VALUES (new.id, new.title, new.url, new.filename);
END;

CREATE TRIGGER IF NOT EXISTS page_after_update AFTER UPDATE ON page
BEGIN
	UPDATE page_fts
	SET title = new.title,
	    url = new.url,
	    filename = new.filename
	WHERE rowid = old.id;
END;

CREATE TRIGGER IF NOT EXISTS page_after_delete AFTER DELETE ON page
BEGIN
	DELETE FROM page_fts
	WHERE rowid = old.id;
END;

-- Single-row configuration/cache table (rowid = 1).
CREATE TABLE IF NOT EXISTS metadata (
	initialized INTEGER NOT NULL DEFAULT 0,
	modified_time TEXT NOT NULL DEFAULT '',
	page_cache TEXT
);

INSERT INTO metadata (initialized, modified_time, page_cache)
SELECT 0, '', NULL
WHERE NOT EXISTS (SELECT 1 FROM metadata);

CREATE TABLE IF NOT EXISTS user (
	id INTEGER PRIMARY KEY,
	hashed TEXT NOT NULL,
	user TEXT NOT NULL DEFAULT '',
	created_time TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS session (
	token TEXT PRIMARY KEY,
	expires_at INTEGER NOT NULL
);
`
