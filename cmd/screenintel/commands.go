package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/polzovatel/screenintel/internal/analyzer"
	"github.com/polzovatel/screenintel/internal/capture"
	"github.com/polzovatel/screenintel/internal/config"
	"github.com/polzovatel/screenintel/internal/embed"
	"github.com/polzovatel/screenintel/internal/ocrengine"
	"github.com/polzovatel/screenintel/internal/query"
	"github.com/polzovatel/screenintel/internal/semindex"
)

func newRootCmd(cfg config.Config, log zerolog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "screenintel",
		Short: "Local screen-intelligence pipeline",
	}

	var imagePath string
	var appName, windowTitle, pageURL string

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the full pipeline against a captured screenshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := openIndex(cfg, log)
			if err != nil {
				return err
			}
			defer idx.Close()

			orch := buildOrchestrator(cfg, imagePath, log, idx)
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := orch.Analyze(ctx, analyzer.WindowInfo{
				App: appName, WindowTitle: windowTitle, URL: pageURL,
			}, analyzer.Options{})
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	analyzeCmd.Flags().StringVar(&imagePath, "image", "", "path to a screenshot file")
	analyzeCmd.Flags().StringVar(&appName, "app", "", "app name for the captured window")
	analyzeCmd.Flags().StringVar(&windowTitle, "title", "", "window title")
	analyzeCmd.Flags().StringVar(&pageURL, "url", "", "page URL, if applicable")

	describeCmd := &cobra.Command{
		Use:   "describe",
		Short: "Run the pipeline and print only the screen/subtree descriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := openIndex(cfg, log)
			if err != nil {
				return err
			}
			defer idx.Close()

			orch := buildOrchestrator(cfg, imagePath, log, idx)
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := orch.Analyze(ctx, analyzer.WindowInfo{
				App: appName, WindowTitle: windowTitle, URL: pageURL,
			}, analyzer.Options{SkipEmbedding: true})
			if err != nil {
				return err
			}
			fmt.Println(res.LLMContext)
			return nil
		},
	}
	describeCmd.Flags().StringVar(&imagePath, "image", "", "path to a screenshot file")
	describeCmd.Flags().StringVar(&appName, "app", "", "app name for the captured window")
	describeCmd.Flags().StringVar(&windowTitle, "title", "", "window title")
	describeCmd.Flags().StringVar(&pageURL, "url", "", "page URL, if applicable")

	var k int
	var minScore float64
	var clickableOnly bool
	searchCmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Run element.search against the index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := openIndex(cfg, log)
			if err != nil {
				return err
			}
			defer idx.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			results, err := query.Search(ctx, idx, args[0], k, minScore, query.Filters{ClickableOnly: clickableOnly})
			if err != nil {
				return err
			}
			return printJSON(results)
		},
	}
	searchCmd.Flags().IntVar(&k, "k", 3, "number of results")
	searchCmd.Flags().Float64Var(&minScore, "min-score", 0.5, "minimum similarity score")
	searchCmd.Flags().BoolVar(&clickableOnly, "clickable-only", false, "only return clickable elements")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print index statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := openIndex(cfg, log)
			if err != nil {
				return err
			}
			defer idx.Close()
			st, err := idx.Stats()
			if err != nil {
				return err
			}
			return printJSON(st)
		},
	}

	var force bool
	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete all indexed screens",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				fmt.Print("This deletes every indexed screen. Continue? [y/N] ")
				var resp string
				fmt.Scanln(&resp)
				if resp != "y" && resp != "Y" {
					fmt.Println("aborted")
					return nil
				}
			}
			idx, err := openIndex(cfg, log)
			if err != nil {
				return err
			}
			defer idx.Close()

			st, err := idx.Stats()
			if err != nil {
				return err
			}
			ids, err := idx.AllScreenIDs()
			if err != nil {
				return err
			}
			if err := idx.PurgeScreens(func(string) bool { return true }, ids); err != nil {
				return err
			}
			fmt.Printf("purged %d screens\n", st.ScreenCount)
			return nil
		},
	}
	purgeCmd.Flags().BoolVar(&force, "force", false, "skip confirmation prompt")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the HTTP/MCP routing layer (out of scope for this core)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("serve: routing layer is an external collaborator, not implemented by this core")
		},
	}

	var watchDir string
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a directory for dropped screenshots and analyze each one",
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := openIndex(cfg, log)
			if err != nil {
				return err
			}
			defer idx.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return analyzer.WatchDir(ctx, watchDir, log, func(path string) {
				orch := buildOrchestrator(cfg, path, log, idx)
				res, err := orch.Analyze(ctx, analyzer.WindowInfo{App: "watch"}, analyzer.Options{})
				if err != nil {
					log.Warn().Err(err).Str("path", path).Msg("watch: analyze failed")
					return
				}
				log.Info().Str("screen", res.ScreenID).Str("path", path).Msg("watch: analyzed")
			})
		},
	}
	watchCmd.Flags().StringVar(&watchDir, "dir", ".", "directory to watch for screenshots")

	root.AddCommand(analyzeCmd, describeCmd, searchCmd, statsCmd, purgeCmd, serveCmd, watchCmd)
	return root
}

func openIndex(cfg config.Config, log zerolog.Logger) (*semindex.Index, error) {
	embedder, err := newEmbedder(log)
	if err != nil {
		return nil, err
	}
	return semindex.Open(cfg.StoreDSN, embedder, semindex.Options{
		RetentionDays:   cfg.RetentionDays,
		MaxElements:     cfg.MaxElements,
		StaleCacheTTL:   cfg.StaleCache(),
		CleanupInterval: cfg.CleanupInterval(),
	}, log.With().Str("comp", "semindex").Logger())
}

func newEmbedder(log zerolog.Logger) (embed.Embedder, error) {
	if e, err := embed.NewHTTPEmbedderFromEnv(log.With().Str("comp", "embed").Logger()); err == nil {
		return e, nil
	}
	log.Info().Msg("no embedding API key configured, using local deterministic embedder")
	return embed.NewLocalEmbedder(), nil
}

func buildOrchestrator(cfg config.Config, imagePath string, log zerolog.Logger, idx *semindex.Index) *analyzer.Orchestrator {
	var capturer capture.Capturer
	if imagePath != "" {
		capturer = capture.NewFileCapturer(imagePath)
	} else {
		capturer = capture.NewFileCapturer(os.DevNull)
	}
	engine := &ocrengine.FixedEngine{}
	return analyzer.New(cfg, capturer, engine, idx, log.With().Str("comp", "analyzer").Logger())
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
