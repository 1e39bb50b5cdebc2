// internal/audit/queries.go
package audit

const createTableSQL = `CREATE TABLE IF NOT EXISTS generation_audit (
	id               UUID PRIMARY KEY,
	user_id          TEXT NOT NULL,
	role             TEXT NOT NULL,
	topic            TEXT NOT NULL,
	content_type     TEXT NOT NULL,
	model_tier       TEXT NOT NULL,
	success          BOOLEAN NOT NULL,
	error_code       TEXT NOT NULL DEFAULT '',
	input_tokens     INTEGER NOT NULL DEFAULT 0,
	output_tokens    INTEGER NOT NULL DEFAULT 0,
	estimated_cost   NUMERIC(12,6) NOT NULL DEFAULT 0,
	validation_score INTEGER,
	title            TEXT NOT NULL DEFAULT '',
	slug             TEXT NOT NULL DEFAULT '',
	duration_ms      BIGINT NOT NULL DEFAULT 0,
	created_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS generation_audit_created_at_idx ON generation_audit (created_at DESC)`

const insertSQL = `INSERT INTO generation_audit (id, user_id, role, topic, content_type, model_tier, success, error_code, input_tokens, output_tokens, estimated_cost, validation_score, title, slug, duration_ms, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

const selectColumns = `SELECT id, user_id, role, topic, content_type, model_tier, success, error_code, input_tokens, output_tokens, estimated_cost, validation_score, title, slug, duration_ms, created_at FROM generation_audit`

const recentSQL = selectColumns + ` ORDER BY created_at DESC LIMIT $1`

const recentByUserSQL = selectColumns + ` WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
