package cmd

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/urfave/cli/v2"

	"github.com/scrumbot/internal/board"
	"github.com/scrumbot/internal/config"
)

// BoardCommand returns the board command
func BoardCommand() *cli.Command {
	return &cli.Command{
		Name:  "board",
		Usage: "Inspect the task board",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the current task board",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "board",
						Aliases: []string{"b"},
						Usage:   "Override the board file path",
					},
				},
				Action: runBoardShow,
			},
		},
	}
}

func runBoardShow(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	path := cfg.General.BoardFile
	if override := c.String("board"); override != "" {
		path = override
	}

	b, err := board.NewStore(path).Load()
	if err != nil {
		return err
	}

	fmt.Printf("Board %s (version %d", path, b.Version)
	if !b.LastUpdated.IsZero() {
		fmt.Printf(", updated %s", b.LastUpdated.Format(time.RFC3339))
	}
	fmt.Println(")")
	fmt.Println(renderBoard(b))
	return nil
}

func renderBoard(b *board.Board) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Column", "Item", "Added", "Run"})

	for _, col := range board.Columns() {
		items := b.Items(col)
		if len(items) == 0 {
			tw.AppendRow(table.Row{string(col), "(no items)", "", ""})
			continue
		}
		for _, it := range items {
			tw.AppendRow(table.Row{string(col), it.Text, it.CreatedAt.Format("2006-01-02"), it.SourceRun})
		}
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft, WidthMax: 72},
	})
	return tw.Render()
}
