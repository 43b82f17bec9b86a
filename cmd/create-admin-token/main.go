package main

import (
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// Use the token from the command line, or mint a fresh one
	token := ""
	if len(os.Args) > 1 {
		token = os.Args[1]
	}
	if token == "" {
		token = uuid.NewString()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash token: %v", err)
	}

	fmt.Printf("✅ Admin token created successfully!\n")
	fmt.Printf("   Token: %s\n", token)
	fmt.Printf("   Hash:  %s\n", string(hash))
	fmt.Println("\nSet ADMIN_TOKEN_HASH to the hash above and send the token in X-Admin-Token.")
}
