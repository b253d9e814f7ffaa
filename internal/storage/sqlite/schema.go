package sqlite

// schema defines the audit database tables. history is append-only:
// nothing in this package issues UPDATE or DELETE against it.
const schema = `
CREATE TABLE IF NOT EXISTS history (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	proposal_id TEXT NOT NULL,
	action      TEXT NOT NULL,
	timestamp   TEXT NOT NULL,
	summary     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_proposal ON history(proposal_id);

CREATE TABLE IF NOT EXISTS proposals (
	id         TEXT PRIMARY KEY,
	type       TEXT NOT NULL,
	feature_id TEXT NOT NULL,
	summary    TEXT NOT NULL,
	rationale  TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_proposals_feature ON proposals(feature_id);
CREATE INDEX IF NOT EXISTS idx_proposals_status ON proposals(status);

CREATE TABLE IF NOT EXISTS questions (
	id                  TEXT PRIMARY KEY,
	question            TEXT NOT NULL,
	context             TEXT NOT NULL DEFAULT '',
	related_feature_ids TEXT NOT NULL DEFAULT '[]',
	options             TEXT NOT NULL DEFAULT '[]',
	status              TEXT NOT NULL,
	created_at          TEXT NOT NULL
);
`
