package db

// SQLiteSchema is used by both the modernc and mattn drivers.
const SQLiteSchema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS files (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	path TEXT NOT NULL UNIQUE,
	size INTEGER NOT NULL DEFAULT 0,
	modified TEXT NOT NULL DEFAULT '',
	line_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS words (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	word TEXT NOT NULL UNIQUE,
	occurrences INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS postings (
	word_id INTEGER NOT NULL,
	file_id INTEGER NOT NULL,
	line_numbers TEXT NOT NULL,
	PRIMARY KEY (word_id, file_id),
	FOREIGN KEY (word_id) REFERENCES words(id) ON DELETE CASCADE,
	FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_postings_file ON postings(file_id);
CREATE INDEX IF NOT EXISTS idx_files_modified ON files(modified);
`

const PostgresSchema = `
CREATE TABLE IF NOT EXISTS files (
	id BIGSERIAL PRIMARY KEY,
	path TEXT NOT NULL UNIQUE,
	size BIGINT NOT NULL DEFAULT 0,
	modified TEXT NOT NULL DEFAULT '',
	line_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS words (
	id BIGSERIAL PRIMARY KEY,
	word TEXT NOT NULL UNIQUE,
	occurrences BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS postings (
	word_id BIGINT NOT NULL REFERENCES words(id) ON DELETE CASCADE,
	file_id BIGINT NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	line_numbers TEXT NOT NULL,
	PRIMARY KEY (word_id, file_id)
);

CREATE INDEX IF NOT EXISTS idx_postings_file ON postings(file_id);
CREATE INDEX IF NOT EXISTS idx_files_modified ON files(modified);
`
