package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/scrumbot/internal/board"
	"github.com/scrumbot/internal/config"
	"github.com/scrumbot/internal/logging"
	"github.com/scrumbot/internal/run"
	"github.com/scrumbot/internal/summarize"
	"github.com/scrumbot/internal/transcribe"
)

// IngestCommand returns the ingest command
func IngestCommand() *cli.Command {
	return &cli.Command{
		Name:  "ingest",
		Usage: "Transcribe a stand-up recording and merge its items into the board",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "board",
				Aliases: []string{"b"},
				Usage:   "Override the board file path",
			},
			&cli.StringFlag{
				Name:    "ai",
				Aliases: []string{"a"},
				Usage:   "Override the AI provider to use",
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Run the pipeline without saving the board",
			},
			&cli.BoolFlag{
				Name:    "print-board",
				Aliases: []string{"p"},
				Usage:   "Print the resulting board after the run",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable verbose output for this command",
			},
		},
		ArgsUsage: "AUDIO_FILE",
		Action:    runIngest,
	}
}

func runIngest(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("missing required argument: audio file")
	}
	audioPath := c.Args().Get(0)
	logging.Setup(c.Bool("verbose"))

	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if override := c.String("board"); override != "" {
		cfg.General.BoardFile = override
	}
	if override := c.String("ai"); override != "" {
		cfg.General.DefaultAI = override
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	transcriber, err := transcribe.New(
		cfg.Transcription.Binary,
		cfg.Transcription.ModelPath,
		cfg.Transcription.Language,
		cfg.Transcription.TimeoutSeconds,
	)
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}

	connector, err := summarize.NewConnector(c.Context,
		summarize.OptionsFromConfig(cfg.General.DefaultAI, cfg.AI[cfg.General.DefaultAI]))
	if err != nil {
		return fmt.Errorf("failed to create AI connector: %w", err)
	}

	service, err := run.NewService(cfg, board.NewStore(cfg.General.BoardFile), transcriber, summarize.NewSummarizer(connector))
	if err != nil {
		return fmt.Errorf("failed to create run service: %w", err)
	}

	outcome, err := service.Execute(c.Context, audioPath, c.Bool("dry-run"))
	if err != nil {
		return err
	}

	fmt.Printf("Run %s: %d added, %d merged, %d dropped", outcome.RunID,
		outcome.Report.Added, outcome.Report.Merged, outcome.Report.Dropped)
	if outcome.DryRun {
		fmt.Print(" (dry run, board not saved)")
	}
	fmt.Println()

	if c.Bool("print-board") {
		fmt.Println(renderBoard(outcome.Board))
	}
	return nil
}
