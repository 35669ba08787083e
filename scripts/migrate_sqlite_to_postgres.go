package main

import (
	"context"
	"database/sql"
	"log"

	"shelfmark/db"
	"shelfmark/internal/config"
	"shelfmark/models"
)

// One-off copy of a sqlite database into postgres. Row ids are preserved
// so the books.user_id references stay intact; the id sequences are
// advanced past the copied rows afterwards.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.PostgresDSN == "" {
		log.Fatalf("SHELFMARK_POSTGRES_DSN is not set. Migration cannot continue.")
	}

	log.Println("Connecting to SQLite...")
	sqliteDB, err := db.ConnectToSQLite(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("Failed to connect to SQLite: %v", err)
	}
	defer sqliteDB.Close()

	log.Println("Connecting to Postgres...")
	postgresDB, err := db.ConnectToPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer postgresDB.Close()

	if err := db.InitializePostgresSchema(postgresDB); err != nil {
		log.Fatalf("Failed to initialize Postgres schema: %v", err)
	}

	ctx := context.Background()

	log.Println("Migrating users...")
	userCount := migrateUsers(ctx, sqliteDB, postgresDB)

	log.Println("Migrating books...")
	bookCount := migrateBooks(ctx, sqliteDB, postgresDB)

	log.Printf("Migration completed successfully! %d users, %d books", userCount, bookCount)
	log.Println("To use Postgres, set SHELFMARK_STORAGE_DRIVER=postgres in your .env file")
}

func migrateUsers(ctx context.Context, src, dst *sql.DB) int {
	rows, err := src.QueryContext(ctx, `SELECT id, email, name, password_hash, created_at FROM users`)
	if err != nil {
		log.Fatalf("Failed to fetch users: %v", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt); err != nil {
			log.Fatalf("Failed to scan user: %v", err)
		}

		_, err := dst.ExecContext(ctx,
			`INSERT INTO users (id, email, name, password_hash, created_at) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING`,
			user.ID, user.Email, user.Name, user.PasswordHash, user.CreatedAt)
		if err != nil {
			log.Fatalf("Failed to insert user %d: %v", user.ID, err)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("Failed to iterate users: %v", err)
	}

	// Explicit ids bypass the sequence; move it past the copied rows.
	_, err = dst.ExecContext(ctx, `SELECT setval(pg_get_serial_sequence('users', 'id'), COALESCE(MAX(id), 1)) FROM users`)
	if err != nil {
		log.Fatalf("Failed to advance users id sequence: %v", err)
	}

	return count
}

func migrateBooks(ctx context.Context, src, dst *sql.DB) int {
	rows, err := src.QueryContext(ctx, `SELECT id, title, author, rating, user_id, created_at, updated_at FROM books`)
	if err != nil {
		log.Fatalf("Failed to fetch books: %v", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var book models.Book
		if err := rows.Scan(&book.ID, &book.Title, &book.Author, &book.Rating, &book.UserID, &book.CreatedAt, &book.UpdatedAt); err != nil {
			log.Fatalf("Failed to scan book: %v", err)
		}

		_, err := dst.ExecContext(ctx,
			`INSERT INTO books (id, title, author, rating, user_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (id) DO NOTHING`,
			book.ID, book.Title, book.Author, book.Rating, book.UserID, book.CreatedAt, book.UpdatedAt)
		if err != nil {
			log.Fatalf("Failed to insert book %d: %v", book.ID, err)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("Failed to iterate books: %v", err)
	}

	_, err = dst.ExecContext(ctx, `SELECT setval(pg_get_serial_sequence('books', 'id'), COALESCE(MAX(id), 1)) FROM books`)
	if err != nil {
		log.Fatalf("Failed to advance books id sequence: %v", err)
	}

	return count
}
