package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"quizboard/internal/app"
	"quizboard/internal/config"
)

// NewAddUserCmd registers an account without going through the web form.
func NewAddUserCmd(configPath *string) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured; in-memory accounts do not outlive the process")
			}
			logger := newLogger(cfg)
			ctx := cmd.Context()
			if err := runMigrations(ctx, cfg, logger); err != nil {
				return err
			}

			st, err := openStores(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer st.close()

			auth := newAuthService(cfg, st)
			user, err := auth.Register(ctx, app.RegisterInput{Username: username, Password: password, Confirm: password})
			if err != nil {
				return err
			}
			logger.Info("user created", "id", user.ID, "username", user.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "account username")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
