// ABOUTME: Offline list and import commands operating directly on the bookmark store
// ABOUTME: Both open the configured storage, so run them while the server is stopped

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/2389/bookmarkd/internal/bookmark"
	"github.com/2389/bookmarkd/internal/config"
	"github.com/2389/bookmarkd/internal/server"
	"github.com/2389/bookmarkd/internal/store"
)

// listOptions holds the parsed flags of the list command
type listOptions struct {
	category string
	desc     bool
}

// parseListArgs supports both "--category value" and "--category=value"
func parseListArgs(args []string) (listOptions, error) {
	var opts listOptions
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--category" || arg == "-c":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("%s requires a value", arg)
			}
			opts.category = args[i+1]
			i++
		case strings.HasPrefix(arg, "--category="):
			opts.category = strings.TrimPrefix(arg, "--category=")
		case arg == "--desc":
			opts.desc = true
		case strings.HasPrefix(arg, "-"):
			return opts, fmt.Errorf("unknown flag: %s", arg)
		default:
			return opts, fmt.Errorf("unexpected argument: %s", arg)
		}
	}
	return opts, nil
}

func (o listOptions) query() bookmark.Query {
	q := bookmark.DefaultQuery()
	if o.category != "" {
		q = q.ToggleSearch().WithCategory(o.category)
	}
	if o.desc {
		q = q.ToggleSort()
	}
	return q
}

func openConfiguredRepository(ctx context.Context) (*bookmark.Repository, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.Storage.Backend == config.BackendMemory {
		return nil, errors.New("storage backend is memory; nothing is persisted")
	}
	return server.OpenRepository(ctx, cfg.Storage)
}

func runList(ctx context.Context, args []string, out io.Writer) error {
	opts, err := parseListArgs(args)
	if err != nil {
		return err
	}

	repo, err := openConfiguredRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	return printBookmarks(out, bookmark.Apply(repo.List(), opts.query()))
}

func printBookmarks(out io.Writer, items []bookmark.Bookmark) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(out, "No bookmarks.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tURL")
	for _, b := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", b.ID, b.Title, b.Category, b.URL)
	}
	return tw.Flush()
}

func runImport(ctx context.Context, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: bookmarkd import FILE")
	}

	repo, err := openConfiguredRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	imported, skipped, err := importBookmarks(ctx, repo, args[0], out)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Fprintf(out, "  ✓ Imported %d bookmark(s)", imported)
	if skipped > 0 {
		color.New(color.FgYellow).Fprintf(out, ", skipped %d invalid", skipped)
	}
	fmt.Fprintln(out)
	return nil
}

// importBookmarks adds every valid bookmark in path to repo under new ids.
// The file may use any layout the file backend reads, including a bare JSON
// array.
func importBookmarks(ctx context.Context, repo *bookmark.Repository, path string, out io.Writer) (imported, skipped int, err error) {
	if _, err := os.Stat(path); err != nil {
		return 0, 0, err
	}

	codec, err := store.CodecFor("", path)
	if err != nil {
		return 0, 0, err
	}

	src := store.NewFileBackend[bookmark.Bookmark](path, codec)
	snap, err := src.Load(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("reading %s: %w", path, err)
	}

	for _, b := range snap.Items {
		_, err := repo.Create(ctx, b)
		var verr *bookmark.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(out, "  skipping %q: %v\n", b.Title, verr)
			skipped++
			continue
		}
		if err != nil {
			return imported, skipped, fmt.Errorf("importing %q: %w", b.Title, err)
		}
		imported++
	}
	return imported, skipped, nil
}
