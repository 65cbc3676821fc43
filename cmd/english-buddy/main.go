package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/english-buddy/internal/core"
	"github.com/mikey/english-buddy/internal/di"
	"github.com/mikey/english-buddy/internal/report"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "english-buddy",
		Short: "Grammar coaching for your prompts",
		Long: `english-buddy records the English mistakes an LLM grammar checker finds
in your prompts and reports on how your writing changes over time.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose logging")
	rootCmd.PersistentFlags().Bool("json-log", false, "Output logs in JSON format")

	rootCmd.AddCommand(
		newCheckCmd(),
		newTodayCmd(),
		newWeekCmd(),
		newStatsCmd(),
		newRecallCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildContainer assembles the DI container from the global flags
func buildContainer(cmd *cobra.Command) (*dig.Container, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonLog, _ := cmd.Flags().GetBool("json-log")
	return di.BuildCLIContainer(&di.CLIOptions{Verbose: verbose, JSONLog: jsonLog})
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [text]",
		Short: "Run one prompt through the grammar pipeline",
		Long: `Run a prompt through admission, analysis, and persistence exactly the way
the hook does, and print what the analyzer found. Reads stdin when no text
argument is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(args)
			if err != nil {
				return err
			}

			container, err := buildContainer(cmd)
			if err != nil {
				return err
			}

			return container.Invoke(func(
				service *core.PipelineService,
				analyzer core.Analyzer,
				store core.CorrectionStore,
				logger *zap.Logger,
			) error {
				defer logger.Sync()
				defer store.Close()
				defer closeAnalyzer(analyzer, logger)

				outcome, analysis, err := service.ProcessPrompt(cmd.Context(), text)
				if err != nil {
					return err
				}

				fmt.Printf("Outcome: %s\n", outcome)
				if analysis == nil {
					return nil
				}
				for _, f := range analysis.Findings {
					fmt.Printf("  %q → %q (%s [%s])\n", f.Original, f.Correction, f.Explanation, f.Category)
				}
				if analysis.BetterExpression != nil && *analysis.BetterExpression != "" {
					fmt.Printf("  Better: %s\n", *analysis.BetterExpression)
				}
				if analysis.Summary != "" {
					fmt.Printf("  %s\n", analysis.Summary)
				}
				return nil
			})
		},
	}
}

func newTodayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show the day's corrections",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := cmd.Flags().GetString("date")

			container, err := buildContainer(cmd)
			if err != nil {
				return err
			}

			return container.Invoke(func(store core.CorrectionStore, logger *zap.Logger) error {
				defer logger.Sync()
				defer store.Close()

				stats, err := store.DailyStats(cmd.Context(), date)
				if err != nil {
					return err
				}
				corrections, err := store.DailyCorrections(cmd.Context(), date)
				if err != nil {
					return err
				}

				report.Daily(os.Stdout, stats, corrections)
				return nil
			})
		},
	}

	cmd.Flags().String("date", "", "Date to report on (YYYY-MM-DD, default today)")

	return cmd
}

func newWeekCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the week's totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			weeksBack, _ := cmd.Flags().GetInt("weeks-back")

			container, err := buildContainer(cmd)
			if err != nil {
				return err
			}

			return container.Invoke(func(store core.CorrectionStore, logger *zap.Logger) error {
				defer logger.Sync()
				defer store.Close()

				stats, err := store.WeeklyStats(cmd.Context(), weeksBack)
				if err != nil {
					return err
				}

				report.Weekly(os.Stdout, stats)
				return nil
			})
		},
	}

	cmd.Flags().Int("weeks-back", 0, "How many weeks back to report (0 = current week)")

	return cmd
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show all-time statistics and the most repeated mistakes",
		RunE: func(cmd *cobra.Command, args []string) error {
			top, _ := cmd.Flags().GetInt("top")
			days, _ := cmd.Flags().GetInt("days")

			container, err := buildContainer(cmd)
			if err != nil {
				return err
			}

			return container.Invoke(func(store core.CorrectionStore, logger *zap.Logger) error {
				defer logger.Sync()
				defer store.Close()

				stats, err := store.AllTimeStats(cmd.Context())
				if err != nil {
					return err
				}
				topErrors, err := store.TopErrors(cmd.Context(), top, days)
				if err != nil {
					return err
				}

				report.AllTime(os.Stdout, stats, topErrors)
				return nil
			})
		},
	}

	cmd.Flags().Int("top", 5, "How many repeated mistakes to list")
	cmd.Flags().Int("days", 30, "Window for the repeated-mistake list, in days")

	return cmd
}

func newRecallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recall",
		Short: "Retry prompts whose analysis failed",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := buildContainer(cmd)
			if err != nil {
				return err
			}

			return container.Invoke(func(
				service *core.PipelineService,
				analyzer core.Analyzer,
				store core.CorrectionStore,
				logger *zap.Logger,
			) error {
				defer logger.Sync()
				defer store.Close()
				defer closeAnalyzer(analyzer, logger)

				summary, err := service.RetryFailed(cmd.Context())
				if err != nil {
					return err
				}

				fmt.Println(summary.Message())
				return nil
			})
		},
	}
}

func readText(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// closeAnalyzer closes providers that hold a connection, like Gemini
func closeAnalyzer(analyzer core.Analyzer, logger *zap.Logger) {
	if closer, ok := analyzer.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close analyzer", zap.Error(err))
		}
	}
}
