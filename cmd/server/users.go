package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"aliados/internal/auth"
	"aliados/internal/db"
	"aliados/internal/models"
	"aliados/internal/partners"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print the bcrypt hash of a password for the directory file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := ""
		if len(args) == 1 {
			password = args[0]
		} else {
			var err error
			if password, err = readLine(cmd.InOrStdin()); err != nil {
				return err
			}
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users stored in the database",
}

var (
	userRole     string
	userPartner  string
	userPassword string
)

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create or update a database user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(database *db.DB) error {
			password := userPassword
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				var err error
				if password, err = readLine(cmd.InOrStdin()); err != nil {
					return err
				}
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			user := &models.User{
				Username:     args[0],
				PasswordHash: hash,
				Role:         strings.ToLower(userRole),
				HomePartner:  partners.Canonical(userPartner),
			}
			if err := database.UpsertUser(cmd.Context(), user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s saved (%s)\n", user.Username, user.Role)
			return nil
		})
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List database users",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(database *db.DB) error {
			users, err := database.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "USERNAME\tROLE\tPARTNER\tUPDATED")
			for _, u := range users {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.Username, u.Role, u.HomePartner, u.UpdatedAt.Format("2006-01-02"))
			}
			return w.Flush()
		})
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a database user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(database *db.DB) error {
			err := database.DeleteUser(cmd.Context(), args[0])
			if errors.Is(err, db.ErrUserNotFound) {
				return fmt.Errorf("user %s not found", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s deleted\n", args[0])
			return nil
		})
	},
}

func init() {
	userAddCmd.Flags().StringVar(&userRole, "role", models.RolePartner, "Role: admin or partner")
	userAddCmd.Flags().StringVar(&userPartner, "partner", "", "Home partner (required for partner users)")
	userAddCmd.Flags().StringVar(&userPassword, "password", "", "Password (read from stdin when omitted)")

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userDeleteCmd)
}

// withDatabase connects to DATABASE_URL, migrates and runs fn.
func withDatabase(ctx context.Context, fn func(*db.DB) error) error {
	cfg, _, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return fn(database)
}
