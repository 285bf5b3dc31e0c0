// Command createadmin creates an admin account or resets its password.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"vitrina/internal/config"
	"vitrina/internal/db"
	"vitrina/internal/models"
)

func main() {
	username := flag.String("username", "", "admin login")
	password := flag.String("password", "", "admin password")
	flag.Parse()

	if strings.TrimSpace(*username) == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	config.LoadEnvFiles()
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	gdb, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	u, created, err := models.NewAdminsRepository(gdb).SetPassword(context.Background(), strings.TrimSpace(*username), *password)
	if err != nil {
		log.Fatalf("failed to save admin: %v", err)
	}
	if created {
		fmt.Printf("admin %q created (id %d)\n", u.Username, u.ID)
		return
	}
	fmt.Printf("password of admin %q updated\n", u.Username)
}
