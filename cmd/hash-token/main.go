package main

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// Generates the bcrypt hash the server expects in ADMIN_TOKEN_HASH. The
// plaintext token is taken from the first argument or the ADMIN_TOKEN env var.
func main() {
	token := ""
	if len(os.Args) > 1 {
		token = os.Args[1]
	}
	if token == "" {
		token = os.Getenv("ADMIN_TOKEN")
	}
	if token == "" {
		log.Fatal("usage: hash-token <token> (or set ADMIN_TOKEN)")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash token: %v", err)
	}

	log.Printf("✓ Set this in your environment:")
	log.Printf("  ADMIN_TOKEN_HASH=%s", string(hash))
}
