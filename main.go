package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/icco/yamdb/handlers"
	"github.com/icco/yamdb/lib/auth"
	"github.com/icco/yamdb/lib/config"
	"github.com/icco/yamdb/lib/db"
	"github.com/icco/yamdb/lib/lock"
	"github.com/icco/yamdb/lib/mail"
	"github.com/icco/yamdb/lib/store"
	"github.com/icco/yamdb/models"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:           "yamdb",
	Short:         "Reviews of films, books and music",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, err := setup(cmd.Context())
		return err
	},
}

var (
	superuserEmail    string
	superuserUsername string
)

var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create a superuser and print its confirmation code",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreateSuperuser(cmd.Context(), cmd)
	},
}

func init() {
	createSuperuserCmd.Flags().StringVar(&superuserEmail, "email", "", "Email address of the superuser (required)")
	createSuperuserCmd.Flags().StringVar(&superuserUsername, "username", "", "Username, defaults to the email address")
	_ = createSuperuserCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(serveCmd, migrateCmd, createSuperuserCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("Command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// setup loads the configuration, installs the default logger and opens a
// migrated database.
func setup(ctx context.Context) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})))
	logger := slog.Default()

	logger.Info("Connecting to database", slog.Bool("postgres", db.IsPostgres(cfg.DatabaseURL)))
	gormDB, err := db.Open(cfg.DatabaseURL, logger)
	if err != nil {
		return nil, nil, err
	}

	release, err := lock.ForDatabase(cfg.DatabaseURL, gormDB, logger).Acquire(ctx, time.Minute)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock migrations: %w", err)
	}
	defer func() {
		if err := release(); err != nil {
			logger.Warn("Failed to release migration lock", slog.Any("error", err))
		}
	}()

	if err := db.RunMigrations(ctx, gormDB, logger); err != nil {
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return cfg, gormDB, nil
}

func runServe(ctx context.Context) error {
	cfg, gormDB, err := setup(ctx)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := slog.Default()

	var mailer mail.Sender = mail.NewLogSender(logger)
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom, logger)
	}

	api := handlers.NewAPI(store.New(gormDB), auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL), mailer, cfg.MailSubject, logger)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(api, gormDB),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", slog.String("port", cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func runCreateSuperuser(ctx context.Context, cmd *cobra.Command) error {
	_, gormDB, err := setup(ctx)
	if err != nil {
		return err
	}

	username := superuserUsername
	if username == "" {
		username = superuserEmail
	}

	u := &models.User{
		Username:         username,
		Email:            superuserEmail,
		Role:             models.RoleAdmin,
		IsSuperuser:      true,
		ConfirmationCode: auth.NewConfirmationCode(),
	}
	if err := store.New(gormDB).CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return fmt.Errorf("a user with username %q or email %q already exists", username, superuserEmail)
		}
		return err
	}

	slog.Info("Created superuser", slog.String("username", u.Username))
	fmt.Fprintf(cmd.OutOrStdout(), "Superuser %s created. Confirmation code: %s\n", u.Username, u.ConfirmationCode)
	return nil
}
