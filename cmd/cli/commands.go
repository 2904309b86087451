package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/address-normalizer/app/bootstrap"
	"github.com/address-normalizer/app/config"
	"github.com/address-normalizer/app/models"
	"github.com/address-normalizer/app/requests"
)

type cliState struct {
	configFile string
	gazetteer  string
	useCache   bool
	verbose    bool

	app    *bootstrap.App
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	st := &cliState{}

	rootCmd := &cobra.Command{
		Use:           "addrctl",
		Short:         "Address normalizer command line",
		Long:          `Clean, parse and score postal addresses from the command line, and manage the city search index.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if st.app == nil {
				return nil
			}
			_ = st.logger.Sync()
			return st.app.Close(context.Background())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&st.configFile, "config", "", "path to app.yaml")
	flags.StringVar(&st.gazetteer, "gazetteer", "", "override gazetteer.path")
	flags.BoolVar(&st.useCache, "cache", false, "use the configured parse cache")
	flags.BoolVarP(&st.verbose, "verbose", "v", false, "debug logging to stderr")

	rootCmd.AddCommand(createParseCmd(st))
	rootCmd.AddCommand(createBatchCmd(st))
	rootCmd.AddCommand(createSeedMeiliCmd(st))
	rootCmd.AddCommand(createGazetteerCmd(st))

	return rootCmd
}

func (st *cliState) init() error {
	cfg, err := config.Load(st.configFile)
	if err != nil {
		return err
	}
	if st.gazetteer != "" {
		cfg.Gazetteer.Path = st.gazetteer
	}
	if !st.useCache {
		cfg.Cache.Backend = config.CacheNone
	}

	st.logger = zap.NewNop()
	if st.verbose {
		if st.logger, err = config.NewLogger("development"); err != nil {
			return err
		}
	}

	st.app, err = bootstrap.Build(cfg, st.logger)
	return err
}

func createParseCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [address]",
		Short: "Parse a single address",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome, err := st.app.Addresses.ParseAddress(cmd.Context(), strings.Join(args, " "), requests.ParseOptions{})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), outcome)
		},
	}
}

func createBatchCmd(st *cliState) *cobra.Command {
	var (
		input      string
		output     string
		importType string
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Parse a JSON array of {row_id, address, original_row_data} rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := readItems(input, cmd.InOrStdin())
			if err != nil {
				return err
			}

			out, err := st.app.Addresses.ParseBatch(cmd.Context(), importType, items)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			if err := writeJSON(w, out); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "parsed %d rows: %d ok, %d failed\n",
				len(out.Results), out.ProcessedCount, out.ErrorCount)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "input JSON file, - for stdin")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	cmd.Flags().StringVarP(&importType, "import-type", "t", "customer", "import type (customer or vendor)")
	return cmd
}

func readItems(path string, stdin io.Reader) ([]models.AddressItem, error) {
	r := stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	var items []models.AddressItem
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return items, nil
}

func createSeedMeiliCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-meili",
		Short: "Rebuild the Meilisearch city index from the gazetteer",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := st.app.Admin.SeedSearch()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d cities in %dms\n", res.CitiesIndexed, res.ProcessingTimeMs)
			return nil
		},
	}
}

func createGazetteerCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "gazetteer [state]",
		Short: "Show gazetteer stats, or the cities of one state",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gaz := st.app.Gazetteer
			w := cmd.OutOrStdout()

			if len(args) == 1 {
				code := st.app.Corrector.ResolveState(args[0])
				if code == "" {
					return fmt.Errorf("unknown state %q", args[0])
				}
				for _, c := range gaz.Cities(code) {
					fmt.Fprintln(w, c.Name)
				}
				return nil
			}

			stats := gaz.Stats()
			fmt.Fprintf(w, "path:   %s\nstates: %d\ncities: %d\n", st.app.Config.Gazetteer.Path, stats.States, stats.Cities)
			return nil
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
