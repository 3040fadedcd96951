package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"notedesk/internal/notes/adapters/services"
	"notedesk/internal/notes/adapters/tui"
	"notedesk/internal/notes/app/subscription"
	"notedesk/internal/notes/db"
	"notedesk/internal/notes/domain/entities"
	"notedesk/pkg/logger"
	"notedesk/pkg/shutdown"
)

// Константы для сообщений сервиса.
const (
	LogWatchStarted  = "watching notes"
	LogWatchSnapshot = "notes snapshot"
	LogWatchError    = "notes subscription error"
	LogWatchDone     = "watch shutdown complete"
	LogMigrated      = "migrations applied"
	LogNoteCreated   = "note created"
	LogUserAdded     = "allowed user added"
)

const defaultUILogFile = "notes-ui.log"

// withRuntime загружает конфигурацию, открывает соединения и закрывает их после fn.
func withRuntime(ctx context.Context, flags *rootFlags, logPath string, fn func(ctx context.Context, rt *runtime) error) error {
	cfg, err := loadConfig(ctx, flags, logPath)
	if err != nil {
		return err
	}

	rt, err := openRuntime(ctx, cfg, flags.migrationsDir)
	if err != nil {
		return err
	}

	runErr := fn(ctx, rt)
	shutdown.Run(ctx, cfg.Shutdown.GetTimeout(), rt.close)
	return runErr
}

func newUICommand(flags *rootFlags) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the terminal notes client",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), flags, logFile, func(ctx context.Context, rt *runtime) error {
				viewer, err := rt.resolveViewer(ctx)
				if err != nil {
					return err
				}
				return tui.Run(ctx, rt.gateway, viewer)
			})
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", defaultUILogFile, "file for logs while the UI owns the terminal")
	return cmd
}

func newWatchCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Log every notes snapshot the viewer receives until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), flags, "", func(ctx context.Context, rt *runtime) error {
				viewer, err := rt.resolveViewer(ctx)
				if err != nil {
					return err
				}
				log := logger.Log(ctx).With(zap.String("viewer", viewer.Email))

				hook := subscription.NewNotes(rt.gateway, func(s subscription.State[entities.Note]) {
					switch {
					case s.Err != nil:
						log.Error(ctx, LogWatchError, zap.Error(s.Err))
					case !s.Loading:
						log.Info(ctx, LogWatchSnapshot, zap.Int("count", len(s.Items)), zap.Strings("titles", titles(s.Items)))
					}
				})

				log.Info(ctx, LogWatchStarted, zap.Bool("privileged", viewer.Privileged()))
				hook.Subscribe(ctx, subscription.ScopeFor(viewer))

				shutdown.Wait(ctx, rt.cfg.Shutdown.GetTimeout(), func(context.Context) error {
					hook.Close()
					return nil
				})
				log.Info(ctx, LogWatchDone)
				return nil
			})
		},
	}
}

func newMigrateCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(ctx, flags, "")
			if err != nil {
				return err
			}
			if err := db.Migrate(ctx, &cfg.Postgres, flags.migrationsDir); err != nil {
				return err
			}
			logger.Log(ctx).Info(ctx, LogMigrated, zap.String("dir", flags.migrationsDir))
			return nil
		},
	}
}

func newNoteCommand(flags *rootFlags) *cobra.Command {
	note := &cobra.Command{Use: "note", Short: "Manage notes"}

	var (
		title  string
		body   string
		assign []string
		pinned bool
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), flags, "", func(ctx context.Context, rt *runtime) error {
				id, err := rt.gateway.CreateNote(ctx, &entities.Note{
					Title:            title,
					PlainTextPreview: body,
					IsPinned:         pinned,
					AssignedTo:       assign,
				})
				if err != nil {
					return err
				}
				logger.Log(ctx).Info(ctx, LogNoteCreated, zap.String("id", id))
				_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
				return err
			})
		},
	}
	add.Flags().StringVar(&title, "title", "", "note title")
	add.Flags().StringVar(&body, "body", "", "plain text preview")
	add.Flags().StringSliceVar(&assign, "assign", nil, "emails to assign the note to")
	add.Flags().BoolVar(&pinned, "pinned", false, "pin the note")
	_ = add.MarkFlagRequired("title")

	note.AddCommand(add)
	return note
}

func newUserCommand(flags *rootFlags) *cobra.Command {
	user := &cobra.Command{Use: "user", Short: "Manage allowed users"}

	var (
		email string
		role  string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Allow a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), flags, "", func(ctx context.Context, rt *runtime) error {
				id, err := rt.gateway.AddAllowedUser(ctx, &entities.AllowedUser{
					Email: strings.TrimSpace(email),
					Role:  entities.ParseRole(role),
				})
				if err != nil {
					return err
				}
				logger.Log(ctx).Info(ctx, LogUserAdded, zap.String("id", id), zap.String("email", email))
				_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
				return err
			})
		},
	}
	add.Flags().StringVar(&email, "email", "", "user email")
	add.Flags().StringVar(&role, "role", string(entities.RoleMember), "admin or member")
	_ = add.MarkFlagRequired("email")

	user.AddCommand(add)
	return user
}

func newTokenCommand(flags *rootFlags) *cobra.Command {
	var (
		email string
		role  string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a viewer token signed with NOTES_JWT_SECRET_KEY",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(ctx, flags, "")
			if err != nil {
				return err
			}
			token, err := services.NewJWT(cfg.Viewer.SecretKey).Issue(ctx,
				entities.Viewer{Email: email, Role: entities.ParseRole(role)}, cfg.Viewer.GetTokenTTL())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "viewer email")
	cmd.Flags().StringVar(&role, "role", string(entities.RoleMember), "admin or member")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func titles(notes []entities.Note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Title)
	}
	return out
}
