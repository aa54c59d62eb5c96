// Package db embeds the SQL schema applied on startup.
package db

import _ "embed"

// Schema holds the DDL for the catalog and order tables. Statements are
// idempotent (IF NOT EXISTS) so reapplying on every boot is safe.
//
//go:embed migrations/001_schema.sql
var Schema string
