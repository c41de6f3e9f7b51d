// Command token issues access tokens for customer endpoints and hashes diagnostics passwords.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/umalmyha/customers-mvc/internal/auth"
	"github.com/umalmyha/customers-mvc/internal/config"
)

func main() {
	subject := flag.String("subject", "", "subject of issued access token")
	password := flag.String("hash-password", "", "password to hash for DIAGNOSTICS_PASSWORD_HASH")
	flag.Parse()

	out, err := run(*subject, *password)
	if err != nil {
		logrus.Fatal(err)
	}
	fmt.Fprintln(os.Stdout, out)
}

func run(subject, password string) (string, error) {
	switch {
	case password != "":
		hash, err := auth.GeneratePasswordHash(password)
		if err != nil {
			return "", fmt.Errorf("failed to hash password - %w", err)
		}
		return hash, nil
	case subject != "":
		cfg, err := config.BuildAuth()
		if err != nil {
			return "", err
		}

		jwtCfg := cfg.JwtCfg
		if jwtCfg.PrivateKey == nil {
			return "", errors.New("AUTH_JWT_PRIVATE_KEY_FILE must be set to issue tokens")
		}

		token, err := auth.NewJwtIssuer(jwtCfg.Issuer, jwtCfg.SigningMethod, jwtCfg.TimeToLive, jwtCfg.PrivateKey).Sign(subject, time.Now())
		if err != nil {
			return "", fmt.Errorf("failed to issue token - %w", err)
		}
		return token.Signed, nil
	default:
		return "", errors.New("either -subject or -hash-password must be provided")
	}
}
