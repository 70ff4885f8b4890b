// Copyright (c) 2025 Neomantra Corp

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nrbf-go/nrbf-go"
	"github.com/nrbf-go/nrbf-go/internal/fetch"
	"github.com/nrbf-go/nrbf-go/internal/render"
)

var (
	verbose   bool
	forceZstd bool
	logger    *slog.Logger
)

func requireNoError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}

func main() {
	var level slog.LevelVar
	level.Set(slog.LevelWarn)
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &level}))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	rootCmd.PersistentPreRun = func(*cobra.Command, []string) {
		if verbose {
			level.Set(slog.LevelInfo)
		}
	}

	rootCmd.AddCommand(jsonCmd)
	jsonCmd.Flags().BoolVarP(&forceZstd, "zstd", "z", false, "Input is zstd-compressed (useful on stdin)")

	requireNoError(rootCmd.ExecuteContext(context.Background()))
}

var rootCmd = &cobra.Command{
	Use:   "nrbf-go",
	Short: "nrbf-go decodes .NET Remoting Binary Format (NRBF) streams",
	Long:  "nrbf-go decodes .NET Remoting Binary Format (NRBF) streams",
}

var jsonCmd = &cobra.Command{
	Use:   "json source...",
	Short: "Decodes each source and prints its object graph as JSON",
	Long: `Decodes each source and prints its object graph as JSON.
A source is a local file path, "-" for stdin, or an http(s):// URL.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, source := range args {
			if err := decodeAndRender(cmd.Context(), source); err != nil {
				fmt.Fprintf(os.Stderr, "error: %s: %s\n", source, err.Error())
			}
		}
	},
}

func decodeAndRender(ctx context.Context, source string) error {
	reader, closer, err := openSource(ctx, source)
	if err != nil {
		return err
	}
	defer closer.Close()

	logger.Info("decoding", "source", source)
	for n := 0; ; n++ {
		root, err := nrbf.Decode(reader)
		if err != nil {
			var de *nrbf.DecodeError
			if n > 0 && errors.As(err, &de) && de.Offset == 0 && errors.Is(err, nrbf.ErrTruncated) {
				return nil // no further root: the input ended at the next header probe
			}
			return fmt.Errorf("decoding: %w", err)
		}
		if err := render.WriteJSON(os.Stdout, root); err != nil {
			return err
		}
	}
}

// openSource resolves source to a reader: an http(s):// URL is fetched
// with retry via internal/fetch, otherwise it is opened (optionally
// zstd-decompressed) via the package's compressed-I/O helper.
func openSource(ctx context.Context, source string) (io.Reader, io.Closer, error) {
	if isURL(source) {
		client := fetch.NewClient(logger)
		body, err := client.Open(ctx, source)
		if err != nil {
			return nil, nil, err
		}
		return body, body, nil
	}
	return nrbf.MakeCompressedReader(source, forceZstd)
}

func isURL(source string) bool {
	return len(source) > 7 && (source[:7] == "http://" || (len(source) > 8 && source[:8] == "https://"))
}
