package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA temp_store = MEMORY;

-- Cache entries: one serialized envelope per key (pg_<n>, imageKey, dbKEY)
CREATE TABLE IF NOT EXISTS cache_entries (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    size_bytes INTEGER NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_cache_entries_updated ON cache_entries(updated_at);

-- Fetch accesses: every network attempt against the remote API
CREATE TABLE IF NOT EXISTS fetch_accesses (
    access_id INTEGER PRIMARY KEY AUTOINCREMENT,
    resource TEXT NOT NULL,      -- submissions, images
    page INTEGER,                -- 0 for non-paginated resources
    accessed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    success BOOLEAN NOT NULL,
    error_type TEXT,
    duration_ms INTEGER
);

CREATE INDEX IF NOT EXISTS idx_accesses_resource ON fetch_accesses(resource, page);
CREATE INDEX IF NOT EXISTS idx_accesses_time ON fetch_accesses(accessed_at);
CREATE INDEX IF NOT EXISTS idx_accesses_success ON fetch_accesses(success);
`
