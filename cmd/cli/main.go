package main

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"

	"github.com/alextreichler/portfolio/internal/config"
	"github.com/alextreichler/portfolio/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "portfolio-cli",
	Short: "Maintenance commands for the portfolio database",
	Long: `portfolio-cli manages the same SQLite database the server uses:
run migrations, add or remove projects, set the hero image, read the
contact log, and generate secrets for the environment file.`,
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()
		fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
		return nil
	},
}

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Print a random base64 key for CSRF_KEY or SESSION_KEY",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(config.GenerateKey(32)))
	},
}

var hashCmd = &cobra.Command{
	Use:   "hash <passcode>",
	Short: "Print a bcrypt hash to use as ADMIN_PASSWORD",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hashed, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash passcode: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(hashed))
		return nil
	},
}

func init() {
	defaultPath := os.Getenv("DB_PATH")
	if defaultPath == "" {
		defaultPath = "./portfolio.db"
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultPath, "path to the SQLite database")

	rootCmd.AddCommand(migrateCmd, secretCmd, hashCmd, projectsCmd, heroCmd, contactCmd)
}

// openStore opens the database and brings the schema up to date, so every
// command works against a fresh file.
func openStore() (*store.Store, error) {
	db, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
