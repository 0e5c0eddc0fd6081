package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/app"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/repository"
)

var (
	cmdTimeout time.Duration
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:          "helpdeskctl",
	Short:        "Operate the help desk document store",
	SilenceUsage: true,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bind to a document, creating one if needed, and print its id",
	RunE: withStore(func(ctx context.Context, out io.Writer, store *app.Store, _ *app.Services) error {
		_, err := fmt.Fprintln(out, store.Client.DocumentID())
		return err
	}),
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the normalised document as JSON, without user secrets",
	RunE: withStore(func(ctx context.Context, out io.Writer, store *app.Store, _ *app.Services) error {
		data, err := store.Client.Fetch(ctx)
		if err != nil {
			return err
		}
		return printJSON(out, newDocumentDump(data))
	}),
}

// documentDump is the document as dump prints it: users are rendered the way
// the API renders them, so stored passwords never reach the output.
type documentDump struct {
	Revision   int64              `json:"revision"`
	Users      []dto.UserResponse `json:"users"`
	Tickets    []domain.Ticket    `json:"tickets"`
	Comments   []domain.Comment   `json:"comments"`
	Categories []domain.Category  `json:"categories"`
}

func newDocumentDump(data *domain.Dataset) documentDump {
	return documentDump{
		Revision:   data.Revision,
		Users:      dto.NewUserResponses(data.Users),
		Tickets:    data.Tickets,
		Comments:   data.Comments,
		Categories: data.Categories,
	}
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the dashboard overview",
	RunE: withStore(func(ctx context.Context, out io.Writer, _ *app.Store, svc *app.Services) error {
		overview, err := svc.Dashboard.Overview(ctx)
		if err != nil {
			return err
		}
		return printJSON(out, overview)
	}),
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute comment and category counters and save them",
	RunE: withStore(func(ctx context.Context, out io.Writer, store *app.Store, _ *app.Services) error {
		data, err := repository.Reconcile(ctx, store.Client)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "reconciled %d tickets and %d categories at revision %d\n",
			len(data.Tickets), len(data.Categories), data.Revision)
		return err
	}),
}

var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Clear the saved document handle",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		ctx, cancel := context.WithTimeout(cmd.Context(), cmdTimeout)
		defer cancel()
		if err := app.ForgetHandle(ctx, cfg, logger); err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "document handle cleared")
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&cmdTimeout, "timeout", 30*time.Second, "Deadline for store calls")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log store activity to stderr")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(forgetCmd)
}

type storeFunc func(ctx context.Context, out io.Writer, store *app.Store, svc *app.Services) error

func withStore(fn storeFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		ctx, cancel := context.WithTimeout(cmd.Context(), cmdTimeout)
		defer cancel()

		store, err := app.OpenStore(ctx, cfg, logger, nil)
		if err != nil {
			return err
		}
		defer store.Close()

		return fn(ctx, cmd.OutOrStdout(), store, app.NewServices(store.Client, cfg, logger))
	}
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if !verbose {
		return cfg, zap.NewNop(), nil
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
