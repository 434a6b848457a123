package catalog

// schemaV1 is the initial catalog schema: a single flat tracks table, since
// a Track is already the terminal record produced by the extractor driver
// (unlike a multi-stage file-processing pipeline that needs separate
// discovery/metadata tables).
const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tracks (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  file_path TEXT UNIQUE NOT NULL,
  title TEXT,
  artist TEXT,
  album TEXT,
  genre TEXT,
  track_number INTEGER,
  year INTEGER,
  duration_seconds INTEGER NOT NULL DEFAULT 0,
  file_size_bytes INTEGER NOT NULL DEFAULT 0,
  bit_rate INTEGER NOT NULL DEFAULT 0,
  sample_rate INTEGER NOT NULL DEFAULT 0,
  file_type TEXT NOT NULL DEFAULT '',
  last_modified DATETIME,
  date_added DATETIME,
  fingerprint TEXT,
  fingerprint_duration INTEGER
);

CREATE INDEX IF NOT EXISTS idx_tracks_artist ON tracks(artist);
CREATE INDEX IF NOT EXISTS idx_tracks_album ON tracks(album);
CREATE INDEX IF NOT EXISTS idx_tracks_title ON tracks(title);
CREATE INDEX IF NOT EXISTS idx_tracks_fingerprint_null ON tracks(id) WHERE fingerprint IS NULL;
`
