// Command token prints a viewer token for the results API.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/todmy/grantmap/internal/auth"
	"github.com/todmy/grantmap/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	viewer := "viewer"
	if len(os.Args) > 1 {
		viewer = os.Args[1]
	}

	tokens, err := auth.NewTokenService(auth.Config{SecretKey: cfg.Server.JWTSecret})
	if err != nil {
		logrus.Fatalf("Failed to configure auth (is JWT_SECRET set?): %v", err)
	}

	token, err := tokens.Issue(viewer)
	if err != nil {
		logrus.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Println(token)
}
