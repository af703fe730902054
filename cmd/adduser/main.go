// Command adduser bootstraps an admin account for the authenticated surface.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/vidgrab/vidgrab/internal/database"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	username := flag.String("username", "admin", "account username")
	password := flag.String("password", "", "account password (required)")
	email := flag.String("email", "", "account email")
	dbPath := flag.String("db", "./data/vidgrab.db", "database path")
	flag.Parse()

	if *password == "" {
		log.Println("-password is required")
		flag.Usage()
		os.Exit(1)
	}

	db, err := database.Initialize(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (username, email, password_hash, role, active)
		VALUES (?, ?, ?, 'admin', 1)
		ON CONFLICT(username) DO UPDATE SET password_hash = excluded.password_hash
	`, *username, *email, string(hash))
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	log.Printf("Admin user %q ready", *username)
}
