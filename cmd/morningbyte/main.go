// Morning Byte assembles a daily tech digest from public sources and ships
// it as an EPUB, optionally straight to a Kindle.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"morningbyte/internal/app"
	"morningbyte/internal/config"
	"morningbyte/internal/infrastructure/delivery"
	"morningbyte/internal/logging"
	"morningbyte/internal/usecase"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "morningbyte",
		Short: "Daily tech news digest delivered as EPUBs to your Kindle",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	rootCmd.AddCommand(generateCmd(&configPath))
	rootCmd.AddCommand(previewCmd(&configPath))
	rootCmd.AddCommand(sourcesCmd())
	rootCmd.AddCommand(digestsCmd(&configPath))
	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(setupCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildApp(configPath string) (*app.Application, config.Config) {
	cfg := config.Load(configPath)
	logger := logging.New(cfg.Logging.Level)
	return app.New(cfg, logger), cfg
}

func generateCmd(configPath *string) *cobra.Command {
	var output string
	var send bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate today's digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _ := buildApp(*configPath)

			path, err := application.Generate(cmd.Context(), usecase.RunOptions{
				OutputPath: output,
				Send:       send,
			})
			if errors.Is(err, usecase.ErrNoArticles) {
				return fmt.Errorf("no articles found; check your configuration")
			}
			if err != nil {
				return err
			}

			fmt.Printf("Generated: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output EPUB file path")
	cmd.Flags().BoolVarP(&send, "send", "s", false, "send to Kindle after generation")
	return cmd
}

func previewCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Show what today's digest would contain, without generating it",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _ := buildApp(*configPath)

			grouped := application.Preview(cmd.Context())
			if grouped.Total() == 0 {
				fmt.Println("No articles found.")
				return nil
			}

			for _, key := range grouped.Keys() {
				articles := grouped.Get(key)
				fmt.Printf("\n%s (%d articles)\n", key, len(articles))
				for i, article := range articles {
					if i >= 10 {
						break
					}
					score := "-"
					if article.Score > 0 {
						score = fmt.Sprintf("%d", article.Score)
					}
					title := article.Title
					if runes := []rune(title); len(runes) > 70 {
						title = string(runes[:70]) + "..."
					}
					fmt.Printf("  %6s  %s\n", score, title)
				}
			}
			return nil
		},
	}
}

func sourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List available news sources",
		Run: func(cmd *cobra.Command, args []string) {
			rows := [][2]string{
				{"hackernews", "Hacker News top stories"},
				{"reddit", "Reddit posts from configured subreddits"},
				{"lobsters", "Lobsters computing-focused stories"},
				{"devto", "Dev.to articles by tag"},
				{"rss", "Custom RSS/Atom feeds"},
			}
			fmt.Println("Available sources (all free public APIs, no auth):")
			for _, row := range rows {
				fmt.Printf("  %-12s %s\n", row[0], row[1])
			}
		},
	}
}

func digestsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "digests",
		Short: "List previously generated digests",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _ := buildApp(*configPath)

			digests, err := application.ListDigests()
			if err != nil {
				return err
			}
			if len(digests) == 0 {
				fmt.Println("No digests found.")
				return nil
			}
			for _, d := range digests {
				fmt.Printf("%s  %8.1f KB  %s\n", d.Date.Format("2006-01-02"), float64(d.Size)/1024, d.Path)
			}
			return nil
		},
	}
}

func serveCmd(configPath *string) *cobra.Command {
	var send bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run as a daemon, generating one digest per day",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _ := buildApp(*configPath)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return application.Serve(ctx, send)
		},
	}

	cmd.Flags().BoolVarP(&send, "send", "s", false, "send each digest to Kindle")
	return cmd
}

func setupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Show Send-to-Kindle configuration help",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(delivery.SetupInstructions())
		},
	}
}
