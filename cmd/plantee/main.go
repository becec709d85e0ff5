package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/plantee/storefront/config"
	"github.com/plantee/storefront/internal/adminapi"
	"github.com/plantee/storefront/internal/app"
	"github.com/plantee/storefront/internal/webserver"
)

var Version = "dev"

var (
	configFile string
	seedForce  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "plantee",
		Short:   "Plantee storefront backend",
		Version: Version,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newApp loads the config and initializes the application. maintenance
// skips the parts a command running next to "serve" must not open.
func newApp(maintenance bool, mutate func(cfg *config.AppConfig)) (*app.Application, error) {
	cfg := config.LoadConfig(configFile)
	if mutate != nil {
		mutate(cfg)
	}
	a := app.NewApplication(cfg)
	initFn := a.Init
	if maintenance {
		initFn = a.InitMaintenance
	}
	if err := initFn(); err != nil {
		a.Release()
		return nil, err
	}
	return a, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false, nil)
			if err != nil {
				return err
			}
			defer a.Release()

			webserver.Init(a)
			adminapi.Init()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(webserver.Listen)
			g.Go(func() error {
				<-ctx.Done()
				zap.L().Info("shutting down", zap.String("namespace", "main"))
				return webserver.Shutdown(context.Background())
			})
			return g.Wait()
		},
	}
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the built-in plant catalog",
		Long: `Load the built-in plant catalog.

Without --force only an empty catalog is seeded. With --force every
existing plant is removed first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true, func(cfg *config.AppConfig) { cfg.System.SeedCatalog = false })
			if err != nil {
				return err
			}
			defer a.Release()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			n, err := a.SeedCatalog(ctx, seedForce)
			if err != nil {
				return fmt.Errorf("seed catalog: %w", err)
			}
			fmt.Printf("Seeded %d plants\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&seedForce, "force", false, "replace the existing catalog")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the SQL schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true, nil)
			if err != nil {
				return err
			}
			defer a.Release()
			if err := a.MigrateDB(true); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Println("Migration complete")
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(Version)
		},
	}
}
