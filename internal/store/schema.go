package store

// Schema v1 - schema tracking and the release snapshot cache
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Raw release JSON as returned by the catalog
CREATE TABLE IF NOT EXISTS release_cache (
  release_id INTEGER PRIMARY KEY,
  title TEXT,
  payload BLOB NOT NULL,
  fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  hit_count INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_release_cache_fetched ON release_cache(fetched_at);
`

// Schema v2 - tagging runs and the files each run produced
const schemaV2 = `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  release_id INTEGER NOT NULL,
  src_dir TEXT NOT NULL,
  dest_dir TEXT,
  dry_run INTEGER DEFAULT 0,
  started_at DATETIME NOT NULL,
  completed_at DATETIME,
  tracks INTEGER DEFAULT 0,
  error TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_release ON runs(release_id);

CREATE TABLE IF NOT EXISTS run_files (
  run_id TEXT REFERENCES runs(id) ON DELETE CASCADE,
  src_path TEXT NOT NULL,
  dest_path TEXT NOT NULL,
  disc INTEGER,
  track INTEGER,
  bytes_written INTEGER,
  PRIMARY KEY (run_id, dest_path)
);
`
