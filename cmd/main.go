package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/marmora-backend/internal/app"
)

func main() {
	root := &cobra.Command{
		Use:           "marmora",
		Short:         "Marmora storefront and admin API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), seedCmd(), createAdminCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app.New()
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}
			defer a.Close()
			a.Start()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- a.Run(addr) }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				a.Log.Info("Shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				return a.Shutdown(shutdownCtx)
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to HTTP_ADDR)")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := app.NewBase()
			if err != nil {
				return err
			}
			defer b.Close()
			return b.Migrate()
		},
	}
}

func seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo categories, products, posts and SEO rows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := app.NewBase()
			if err != nil {
				return err
			}
			defer b.Close()
			if err := b.Migrate(); err != nil {
				return err
			}
			res, err := b.Seed(cmd.Context(), file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d categories, %d products, %d posts, %d seo rows\n",
				res.Categories, res.Products, res.Posts, res.SEO)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "seed YAML file (defaults to SEED_FILE, then the embedded seed)")
	return cmd
}

func createAdminCmd() *cobra.Command {
	var email, password, name, role string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a staff account for the admin panel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}
			b, err := app.NewBase()
			if err != nil {
				return err
			}
			defer b.Close()
			if err := b.Migrate(); err != nil {
				return err
			}
			u, err := b.CreateAdmin(cmd.Context(), email, password, name, role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) id=%s\n", u.Email, u.Role, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "password (or ADMIN_PASSWORD)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", "admin", "admin or editor")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
