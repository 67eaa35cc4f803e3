package database

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS categories (
	id         SERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	slug       TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS products (
	id             SERIAL PRIMARY KEY,
	product_key    TEXT NOT NULL UNIQUE,
	name           TEXT NOT NULL,
	code           TEXT NOT NULL DEFAULT '',
	description    TEXT NOT NULL DEFAULT '',
	price          BIGINT,
	currency       TEXT NOT NULL,
	unit           TEXT NOT NULL,
	gst_rate       INTEGER,
	image_filename TEXT NOT NULL DEFAULT '',
	tags           TEXT[] NOT NULL DEFAULT '{}',
	category_id    INTEGER REFERENCES categories(id),
	position       INTEGER NOT NULL DEFAULT 0,
	run_id         UUID,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS products_category_idx ON products (category_id);
`

func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
