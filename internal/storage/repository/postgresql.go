// Package repository implements the PostgreSQL storage layer: users with
// their session tokens and verification state, subscriptions with payment
// history, projects with tasks and collaborators, and project documents.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	// pgx driver registration for database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Storage encapsulates the database handle and implements the repository
// interfaces the services depend on.
type Storage struct {
	DB *sql.DB
}

// New opens a connection to PostgreSQL and verifies it.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{DB: db}, nil
}

// CheckDatabaseReady verifies the schema was migrated.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'users'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table users missing or query error: %w", err)
	}
	return nil
}
