package main

import (
	"github.com/spf13/cobra"
)

// Значения флагов по умолчанию.
const (
	defaultEnvFile       = ".env"
	defaultMigrationsDir = "migrations/notes"
)

type rootFlags struct {
	envFile       string
	migrationsDir string
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "notes",
		Short:         "Notes list with live updates and admin assignment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", defaultEnvFile, "optional .env file with NOTES_* variables")
	root.PersistentFlags().StringVar(&flags.migrationsDir, "migrations", defaultMigrationsDir, "directory with SQL migrations")

	root.AddCommand(
		newUICommand(flags),
		newWatchCommand(flags),
		newMigrateCommand(flags),
		newNoteCommand(flags),
		newUserCommand(flags),
		newTokenCommand(flags),
	)
	return root
}
