package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/docsearch/internal/logger"
	searchuc "github.com/kailas-cloud/docsearch/internal/usecase/search"
)

type queryFlags struct {
	limit         int
	caseSensitive bool
	sortBy        string
	direction     string
}

func newQueryCmd(flags *rootFlags) *cobra.Command {
	qf := &queryFlags{}
	cmd := &cobra.Command{
		Use:     "query <search value>",
		Short:   "Run one search against the configured store and print the matches as JSON.",
		Example: `docsearch query "jhon doe" --limit 5 --sort-by name --direction desc`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logpkg.NewCLILogger("")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			a, err := openApp(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer a.close()

			return runQuery(cmd, a.searcher, a.limits(), strings.Join(args, " "), qf, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVarP(&qf.limit, "limit", "n", 0, "maximum number of matches (default from config)")
	cmd.Flags().BoolVar(&qf.caseSensitive, "case-sensitive", false, "match case exactly")
	cmd.Flags().StringVar(&qf.sortBy, "sort-by", "", "dot-path of the field to sort by")
	cmd.Flags().StringVar(&qf.direction, "direction", "asc", "sort direction: asc or desc")
	return cmd
}

func runQuery(cmd *cobra.Command, s searchuc.Searcher, limits request.Limits, value string, qf *queryFlags, out io.Writer) error {
	req, err := request.New(value, qf.limit, qf.caseSensitive, qf.sortBy, qf.direction, limits)
	if err != nil {
		return err
	}
	page, err := s.Search(cmd.Context(), &req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"matches":      page.Matches(),
		"totalResults": page.Total(),
	})
}
