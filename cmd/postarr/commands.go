package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"text/tabwriter"

	"github.com/amaumene/postarr/internal/api"
	"github.com/amaumene/postarr/internal/controllers"
	"github.com/amaumene/postarr/internal/models"
	"github.com/amaumene/postarr/internal/scheduler"
	"github.com/amaumene/postarr/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

type cli struct {
	out   io.Writer
	outMu sync.Mutex
	app   *app
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:   "postarr",
		Short: "Search TMDB and download Plex-ready posters and backdrops",
		Long: `postarr searches The Movie Database for shows, movies and collections
and saves their artwork as poster.jpg / backdrop.jpg in Plex folder layout.

Examples:
  postarr search batman --kind movie
  postarr images 268 --kind movie
  postarr fetch "the dark knight" --kind movie --flip
  postarr serve`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(out)
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
	}

	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	_ = viper.BindPFlag("LOG_LEVEL", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(
		c.searchCmd(),
		c.imagesCmd(),
		c.downloadCmd(),
		c.fetchCmd(),
		c.historyCmd(),
		c.copyCmd(),
		c.keyCmd(),
		c.serveCmd(),
	)
	return root
}

// withServices opens the database and clients around fn
func (c *cli) withServices(fn func(ctx context.Context, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		defer c.app.close()
		if err := c.app.open(ctx); err != nil {
			return err
		}
		return fn(ctx, args)
	}
}

func kindFlag(cmd *cobra.Command) (models.MediaKind, error) {
	raw, _ := cmd.Flags().GetString("kind")
	return models.ParseMediaKind(raw)
}

func imageKindFlag(cmd *cobra.Command) (models.ImageKind, error) {
	raw, _ := cmd.Flags().GetString("image")
	return models.ParseImageKind(raw)
}

func (c *cli) searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Search TMDB",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.Flags().String("kind", "movie", "tv, movie or collection")

	cmd.RunE = c.withServices(func(ctx context.Context, args []string) error {
		kind, err := kindFlag(cmd)
		if err != nil {
			return err
		}
		key, err := c.app.apiKey()
		if err != nil {
			return err
		}
		query := strings.Join(args, " ")
		items, err := c.app.search.Search(ctx, query, kind, key)
		if err != nil {
			return err
		}

		fmt.Fprintln(c.out, utils.SearchSummary(query, kind))
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tYEAR\tFOLDER")
		for _, item := range items {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", item.ID, item.DisplayTitle(), item.DisplayYear(), utils.PlexSubfolder(kind, item))
		}
		return tw.Flush()
	})
	return cmd
}

func (c *cli) imagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images ID",
		Short: "List posters and backdrops for an item, largest first",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().String("kind", "movie", "tv, movie or collection")
	cmd.Flags().String("image", "poster", "poster or backdrop")

	cmd.RunE = c.withServices(func(ctx context.Context, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}
		kind, err := kindFlag(cmd)
		if err != nil {
			return err
		}
		imageKind, err := imageKindFlag(cmd)
		if err != nil {
			return err
		}
		key, err := c.app.apiKey()
		if err != nil {
			return err
		}

		variants := c.app.gallery.Images(ctx, id, kind, key).Variants(imageKind)
		if len(variants) == 0 {
			fmt.Fprintln(c.out, "No images available")
			return nil
		}

		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SIZE\tVOTES\tPATH\tPREVIEW")
		for _, v := range variants {
			fmt.Fprintf(tw, "%dx%d\t%.1f (%d)\t%s\t%s\n", v.Width, v.Height, v.VoteAverage, v.VoteCount, v.FilePath, c.app.client.ImageURL(v.FilePath, models.PreviewSize))
		}
		return tw.Flush()
	})
	return cmd
}

func (c *cli) downloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download ID SOURCE_PATH",
		Short: "Download one image into the Plex folder of an item",
		Args:  cobra.ExactArgs(2),
	}
	cmd.Flags().String("kind", "movie", "tv, movie or collection")
	cmd.Flags().String("image", "poster", "poster or backdrop")
	cmd.Flags().String("title", "", "item title used for the folder name (required)")
	cmd.Flags().String("date", "", "release or first air date, YYYY-MM-DD")
	cmd.Flags().Bool("flip", false, "mirror the image horizontally")
	_ = cmd.MarkFlagRequired("title")

	cmd.RunE = c.withServices(func(ctx context.Context, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}
		kind, err := kindFlag(cmd)
		if err != nil {
			return err
		}
		imageKind, err := imageKindFlag(cmd)
		if err != nil {
			return err
		}
		title, _ := cmd.Flags().GetString("title")
		date, _ := cmd.Flags().GetString("date")
		flip, _ := cmd.Flags().GetBool("flip")

		item := models.MediaItem{ID: id, Title: &title}
		if date != "" {
			item.ReleaseDate = &date
		}

		result, err := c.app.download.Download(ctx, models.DownloadRequest{
			SourcePath: args[1],
			Subfolder:  utils.PlexSubfolder(kind, item),
			Filename:   imageKind.Filename(),
			Flip:       flip,
		}, c.app.destination())
		c.printResult(result)
		return err
	})
	return cmd
}

// printResult is called from concurrent fetches; both lines of a result
// stay together.
func (c *cli) printResult(result controllers.DownloadResult) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	if result.PrimaryPath != "" {
		fmt.Fprintln(c.out, result.PrimaryPath)
	}
	if result.BackupPath != "" {
		fmt.Fprintln(c.out, result.BackupPath)
	}
}

func (c *cli) fetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch QUERY...",
		Short: "Search and download the largest artwork of the best match",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.Flags().String("kind", "movie", "tv, movie or collection")
	cmd.Flags().String("image", "poster", "poster or backdrop")
	cmd.Flags().Bool("flip", false, "mirror the image horizontally")
	cmd.Flags().Bool("all", false, "download for every result, not just the best match")
	cmd.Flags().Int("jobs", 4, "concurrent downloads with --all")

	cmd.RunE = c.withServices(func(ctx context.Context, args []string) error {
		kind, err := kindFlag(cmd)
		if err != nil {
			return err
		}
		imageKind, err := imageKindFlag(cmd)
		if err != nil {
			return err
		}
		flip, _ := cmd.Flags().GetBool("flip")
		all, _ := cmd.Flags().GetBool("all")
		jobs, _ := cmd.Flags().GetInt("jobs")
		key, err := c.app.apiKey()
		if err != nil {
			return err
		}

		query := strings.Join(args, " ")
		items, err := c.app.search.Search(ctx, query, kind, key)
		if err != nil {
			return err
		}

		targets := utils.RankByTitle(query, items)
		if !all {
			best, ok := utils.BestMatch(query, items)
			if !ok {
				return fmt.Errorf("no results for %s", utils.SearchSummary(query, kind))
			}
			targets = []models.MediaItem{best}
		}

		return c.fetchAll(ctx, targets, kind, imageKind, flip, key, jobs)
	})
	return cmd
}

// fetchAll downloads the top variant of every target. Downloads are
// independent: one failure does not stop the others.
func (c *cli) fetchAll(ctx context.Context, targets []models.MediaItem, kind models.MediaKind, imageKind models.ImageKind, flip bool, key string, jobs int) error {
	if jobs < 1 {
		jobs = 1
	}

	var (
		g      errgroup.Group
		mu     sync.Mutex
		failed int
	)
	g.SetLimit(jobs)

	for _, item := range targets {
		item := item
		g.Go(func() error {
			err := c.fetchOne(ctx, item, kind, imageKind, flip, key)
			if err != nil {
				c.app.logger.WithError(err).WithFields(logrus.Fields{
					"id":    item.ID,
					"title": item.DisplayTitle(),
				}).Error("Fetch failed")
				mu.Lock()
				failed++
				mu.Unlock()
				return fmt.Errorf("%s: %w", item.DisplayTitle(), err)
			}
			return nil
		})
	}

	// a plain Group does not cancel siblings, so every target is attempted
	// and Wait carries the first failure
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%d of %d downloads failed: %w", failed, len(targets), err)
	}
	return nil
}

func (c *cli) fetchOne(ctx context.Context, item models.MediaItem, kind models.MediaKind, imageKind models.ImageKind, flip bool, key string) error {
	top, ok := c.app.gallery.Top(ctx, item.ID, kind, imageKind, key)
	if !ok {
		return fmt.Errorf("no %s available", imageKind)
	}

	result, err := c.app.download.Download(ctx, models.DownloadRequest{
		SourcePath: top.FilePath,
		Subfolder:  utils.PlexSubfolder(kind, item),
		Filename:   imageKind.Filename(),
		Flip:       flip,
	}, c.app.destination())

	c.printResult(result)
	return err
}

func (c *cli) historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or edit recent searches",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List recent searches, newest first",
		Args:  cobra.NoArgs,
	}
	list.RunE = c.withServices(func(ctx context.Context, args []string) error {
		items, err := c.app.search.History()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSEARCH\tWHEN")
		for _, item := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", item.ID, utils.SearchSummary(item.SearchText, item.Kind), item.Timestamp.Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	})

	remove := &cobra.Command{
		Use:   "remove ID",
		Short: "Remove one search from the history",
		Args:  cobra.ExactArgs(1),
	}
	remove.RunE = c.withServices(func(ctx context.Context, args []string) error {
		return c.app.search.RemoveHistory(args[0])
	})

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every search from the history",
		Args:  cobra.NoArgs,
	}
	clearCmd.RunE = c.withServices(func(ctx context.Context, args []string) error {
		return c.app.search.ClearHistory()
	})

	cmd.AddCommand(list, remove, clearCmd)
	return cmd
}

func (c *cli) copyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy QUERY...",
		Short: "Print the Plex folder name (or id/title) of the best match",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.Flags().String("kind", "movie", "tv, movie or collection")
	cmd.Flags().Bool("id-only", false, "copy only the TMDB id")
	cmd.Flags().Bool("name-only", false, "copy \"Title (Year)\"")

	cmd.RunE = c.withServices(func(ctx context.Context, args []string) error {
		kind, err := kindFlag(cmd)
		if err != nil {
			return err
		}
		idOnly, _ := cmd.Flags().GetBool("id-only")
		nameOnly, _ := cmd.Flags().GetBool("name-only")
		key, err := c.app.apiKey()
		if err != nil {
			return err
		}

		query := strings.Join(args, " ")
		items, err := c.app.search.Search(ctx, query, kind, key)
		if err != nil {
			return err
		}
		best, ok := utils.BestMatch(query, items)
		if !ok {
			return fmt.Errorf("no results for %s", utils.SearchSummary(query, kind))
		}
		return c.app.clipboard.Copy(utils.ClipboardText(best, idOnly, nameOnly))
	})
	return cmd
}

func (c *cli) keyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the stored TMDB API key",
	}

	set := &cobra.Command{
		Use:   "set KEY",
		Short: "Store the TMDB API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(args[0]) == "" {
				return errors.New("key must not be empty")
			}
			if err := c.app.creds.Set(args[0]); err != nil {
				return fmt.Errorf("failed to store key: %w", err)
			}
			fmt.Fprintln(c.out, "API key saved")
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored TMDB API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.creds.Clear(); err != nil {
				return fmt.Errorf("failed to clear key: %w", err)
			}
			fmt.Fprintln(c.out, "API key removed")
			return nil
		},
	}

	cmd.AddCommand(set, clearCmd)
	return cmd
}

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the download log cleanup",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = c.withServices(func(ctx context.Context, args []string) error {
		a := c.app
		logger := a.logger
		logger.Info("Starting Postarr")

		sched := scheduler.NewScheduler(a.cleanup, logger)
		if err := sched.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer sched.Stop()

		server := api.NewServer(a.cfg, a.db, api.Controllers{
			Search:   a.search,
			Gallery:  a.gallery,
			Download: a.download,
		}, a.apiKey, logger)

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		serverErrChan := make(chan error, 1)
		go func() {
			if err := server.Start(ctx); err != nil {
				serverErrChan <- err
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		logger.Info("Postarr is running")

		select {
		case err := <-serverErrChan:
			return fmt.Errorf("server error: %w", err)
		case sig := <-sigChan:
			logger.WithField("signal", sig).Info("Received shutdown signal")
			cancel()
			if err := server.Shutdown(context.Background()); err != nil {
				logger.WithError(err).Error("Error during server shutdown")
			}
		}

		logger.Info("Postarr stopped")
		return nil
	})
	return cmd
}
