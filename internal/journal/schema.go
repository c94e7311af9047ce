// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package journal

// SchemaVersion tracks the journal schema for migrations.
const SchemaVersion = 1

// Schema creates the frame journal tables.
const Schema = `
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- One row per websocket frame, in arrival/dispatch order
CREATE TABLE IF NOT EXISTS frames (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    session TEXT NOT NULL,
    channel TEXT NOT NULL,
    inbound INTEGER NOT NULL,   -- 1 = received, 0 = sent
    at INTEGER NOT NULL,        -- Unix nanoseconds
    payload TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_frames_session ON frames(session);
`

// InitMetadata records the schema version.
const InitMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '1');
`
