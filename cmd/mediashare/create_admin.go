package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joestump/mediashare/internal/auth"
	"github.com/joestump/mediashare/internal/config"
	"github.com/joestump/mediashare/internal/db"
	"github.com/joestump/mediashare/internal/store"
)

func newCreateAdminCmd() *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account, or promote an existing one",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			u, created, err := provisionAdmin(cmd.Context(), store.NewUserStore(database), email, name, password)
			if err != nil {
				return err
			}
			if created {
				log.Printf("created admin %s (%s)", u.Email, u.ID)
			} else {
				log.Printf("promoted %s (%s) to admin", u.Email, u.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&name, "name", "Administrator", "display name for a new account")
	cmd.Flags().StringVar(&password, "password", "", "password; required for a new account, resets an existing one")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// provisionAdmin makes email an active admin. A new account needs a password;
// an existing one is promoted, reactivated and, when password is set, given
// that password.
func provisionAdmin(ctx context.Context, users *store.UserStore, email, name, password string) (*store.User, bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, false, fmt.Errorf("email is required")
	}

	var hash string
	if password != "" {
		if len(password) < 8 {
			return nil, false, fmt.Errorf("password must be at least 8 characters")
		}
		var err error
		if hash, err = auth.HashPassword(password); err != nil {
			return nil, false, err
		}
	}

	u, err := users.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		if hash == "" {
			return nil, false, fmt.Errorf("--password is required to create %s", email)
		}
		u, err = users.Create(ctx, store.NewUser{Email: email, Name: name, PasswordHash: hash, IsAdmin: true})
		if err != nil {
			return nil, false, fmt.Errorf("create admin: %w", err)
		}
		return u, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	if hash != "" {
		if err := users.SetPassword(ctx, u.ID, hash); err != nil {
			return nil, false, err
		}
	}
	if _, err := users.SetActive(ctx, u.ID, true); err != nil {
		return nil, false, err
	}
	if u, err = users.SetAdmin(ctx, u.ID, true); err != nil {
		return nil, false, err
	}
	return u, false, nil
}
