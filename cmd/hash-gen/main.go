package main

import (
	"fmt"
	"log"
	"os"

	"luxe-estates.backend/pkg/crypto"
)

var (
	printfFn       = fmt.Printf
	generateHashFn = generateHash
	fatalfFn       = log.Fatalf
)

func resolvePassword(args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("usage: hash-gen <password>")
	}
	password := args[0]
	if err := crypto.ValidateNewPassword(password, password); err != nil {
		return "", err
	}
	return password, nil
}

func generateHash(password string) (string, error) {
	return crypto.HashPassword(password)
}

func main() {
	password, err := resolvePassword(os.Args[1:])
	if err != nil {
		fatalfFn("%v", err)
		return
	}

	hash, err := generateHashFn(password)
	if err != nil {
		fatalfFn("Failed to hash password: %v", err)
		return
	}

	printfFn("Bcrypt Hash: %s\n", hash)
}
