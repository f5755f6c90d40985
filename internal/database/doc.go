// Package database provides connection pool management for the PostgreSQL
// deal store backend. SQLite and in-memory backends open their own handles
// and do not use this package.
package database
