// Package database provides the database connection layer.
//
// It wraps GORM connection setup for the supported drivers (MySQL in
// production, SQLite for local development and tests), applying sane
// connection pool limits and verifying the connection with a ping before
// handing it out.
//
// The schema inspection helpers (GetTableColumns) support startup checks
// against deployments whose score table is owned by another service.
package database
