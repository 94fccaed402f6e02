package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	dombatch "github.com/kailas-cloud/docsearch/internal/domain/batch"
	logpkg "github.com/kailas-cloud/docsearch/internal/logger"
	"github.com/kailas-cloud/docsearch/internal/repository/docjson"
	batchuc "github.com/kailas-cloud/docsearch/internal/usecase/batch"
)

func newImportCmd(flags *rootFlags) *cobra.Command {
	var batchSize int
	cmd := &cobra.Command{
		Use:   "import <file.json|->",
		Short: "Load a JSON array of documents into the configured store.",
		Long: `Each element is either {"id": ..., <fields>} or {"id": ..., "fields": {...}}.
Range indexes are maintained as documents are written. Use - to read standard input.`,
		Args: cobra.ExactArgs(1),
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

			in, closeIn, err := openInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer closeIn()

			docs, err := docjson.ReadAll(in)
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer a.close()

			ctx, _ := logpkg.With(cmd.Context(), logger, zap.String("collection", cfg.Search.Collection))
			results := batchuc.New(a.backend.Repo).WithMaxBatchSize(batchSize).Import(ctx, cfg.Search.Collection, docs)
			for _, r := range results {
				if r.Status() == dombatch.StatusError {
					logger.Warn("Document not imported", zap.String("id", r.ID()), zap.Error(r.Err()))
				}
			}

			sum := dombatch.Summarize(results)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d documents into %q\n", sum.OK, len(results), cfg.Search.Collection)
			if sum.Failed > 0 {
				return fmt.Errorf("%d documents failed to import", sum.Failed)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&batchSize, "batch-size", batchuc.MaxBatchSize, "documents written per store call")
	return cmd
}

func openInput(name string, stdin io.Reader) (io.Reader, func(), error) {
	if name == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", name, err)
	}
	return f, func() { _ = f.Close() }, nil
}
