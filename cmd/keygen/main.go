package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"luxe-estates.backend/pkg/crypto"
)

var randomToken = crypto.GenerateRandomToken

func validateInputs(jwtBytes int) error {
	if jwtBytes < 32 {
		return fmt.Errorf("invalid jwt-bytes: %d (minimum 32)", jwtBytes)
	}
	return nil
}

// buildSecrets returns a 32-byte session encryption key and a JWT signing secret, both hex encoded.
func buildSecrets(jwtBytes int) (sessionKey, jwtSecret string, err error) {
	sessionKey, err = randomToken(32)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate session key: %w", err)
	}
	jwtSecret, err = randomToken(jwtBytes)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate jwt secret: %w", err)
	}
	return sessionKey, jwtSecret, nil
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	jwtBytes := fs.Int("jwt-bytes", 48, "random bytes in the JWT secret")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := validateInputs(*jwtBytes); err != nil {
		return err
	}

	sessionKey, jwtSecret, err := buildSecrets(*jwtBytes)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, "Generated server secrets")
	_, _ = fmt.Fprintf(out, "SESSION_ENCRYPTION_KEY=%s\n", sessionKey)
	_, _ = fmt.Fprintf(out, "JWT_SECRET=%s\n", jwtSecret)
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}
