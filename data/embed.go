package data

import (
	_ "embed"
)

// Run before the migrations on MySQL and MariaDB.
//
//go:embed initdb/mysql/001-database.sql
var InitdbMySQLDatabase string

// Run after the migrations on PostgreSQL.
//
//go:embed initdb/postgres/001-indexes.sql
var InitdbPostgresIndexes string

// Run after the migrations on SQLite.
//
//go:embed initdb/sqlite/001-indexes.sql
var InitdbSQLiteIndexes string
