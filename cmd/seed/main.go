package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/coursewire/coursewire/config"
	"github.com/coursewire/coursewire/pkg/helpers"
)

// Seeds a local database with an admin account and a sample course.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "admin@coursewire.dev"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var adminID string
	err = db.QueryRow(`
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, 'admin')
		ON CONFLICT (email) DO UPDATE SET role = 'admin', updated_at = now()
		RETURNING id
	`, "Admin", email, hash).Scan(&adminID)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=%s password=%s\n", adminID, email, password)

	var courseID string
	err = db.QueryRow(`
		INSERT INTO courses (title, description, category, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, "Getting Started", "An introductory course for trying out the platform locally.", "General", "Admin").Scan(&courseID)
	if err != nil {
		log.Fatalf("failed to seed course: %v", err)
	}

	if _, err := db.Exec(`
		INSERT INTO lectures (course_id, title, description)
		VALUES ($1, $2, $3)
	`, courseID, "Welcome", "A short welcome lecture."); err != nil {
		log.Fatalf("failed to seed lecture: %v", err)
	}
	fmt.Printf("seeded course: id=%s\n", courseID)
}
