package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
)

func main() {
	var size int
	flag.IntVar(&size, "bytes", 32, "Number of random bytes in the secret")
	flag.Parse()

	if size < 32 {
		log.Fatal("HS256 secrets should be at least 32 bytes")
	}

	secret := make([]byte, size)
	if _, err := rand.Read(secret); err != nil {
		log.Fatal("Failed to generate secret:", err)
	}
	encoded := base64.RawURLEncoding.EncodeToString(secret)

	fmt.Println("=== PLAYER TOKEN SECRET (Keep this secret!) ===")
	fmt.Println("Add this to config.yaml:")
	fmt.Println()
	fmt.Println("  auth:")
	fmt.Printf("    secret: %q\n", encoded)
	fmt.Println()
	fmt.Println("or set it in the environment:")
	fmt.Println()
	fmt.Printf("  export CHESSAI_AUTH_SECRET=%s\n", encoded)
	fmt.Println()
	fmt.Println("=== IMPORTANT SECURITY NOTES ===")
	fmt.Println("1. NEVER commit the secret to version control")
	fmt.Println("2. Changing the secret invalidates every token already issued")
}
