// Command token mints an access token for calling the API, signed with JWT_SECRET_KEY.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/punchclock-analytics/internal/config"
	"github.com/cmlabs-hris/punchclock-analytics/internal/pkg/jwt"
)

func main() {
	subject := flag.String("sub", "", "token subject, e.g. the caller's email")
	ttl := flag.Duration("ttl", 0, "token lifetime; defaults to JWT_ACCESS_EXPIRATION_TIME")
	flag.Parse()

	if *subject == "" {
		fmt.Fprintln(os.Stderr, "-sub is required")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	expiration := cfg.JWT.AccessExpiration
	if *ttl > 0 {
		expiration = *ttl
	}

	token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, expiration).GenerateAccessToken(*subject)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error generating token:", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
}
