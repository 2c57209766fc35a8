package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/topicbot/internal/config"
	"github.com/nextlevelbuilder/topicbot/internal/router"
)

func routeCmd() *cobra.Command {
	var (
		channel string
		roles   []string
	)
	cmd := &cobra.Command{
		Use:   "route <message text>",
		Short: "Dry-run the routing engine on a message without touching Discord",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()

			cfg, err := config.Load(resolveConfigPath())
			if err != nil {
				return err
			}
			if err := cfg.Validate(false); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			engine, err := buildEngine(cfg)
			if err != nil {
				return err
			}

			msg := router.Message{
				ID:          "dry-run",
				AuthorID:    "cli",
				AuthorName:  "cli",
				Content:     strings.Join(args, " "),
				ChannelID:   staticChannelID(channel),
				ChannelName: channel,
				Roles:       roles,
			}
			dir := newStaticDirectory(engine.Table().Channels(), channel)

			d := engine.Route(context.Background(), msg, dir)
			printDecision(os.Stdout, d)
			return nil
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "general", "name of the channel the message was posted in")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "role names held by the author (repeatable)")
	return cmd
}

// staticDirectory resolves every routing destination plus the source
// channel, so dry runs never report a missing channel.
type staticDirectory map[string]string

func newStaticDirectory(names []string, source string) staticDirectory {
	d := make(staticDirectory, len(names)+1)
	for _, n := range names {
		d[n] = staticChannelID(n)
	}
	if source != "" {
		d[source] = staticChannelID(source)
	}
	return d
}

func (d staticDirectory) ChannelByName(_, name string) (string, bool) {
	id, ok := d[name]
	return id, ok
}

func staticChannelID(name string) string { return "#" + name }

func printDecision(w io.Writer, d router.Decision) {
	fmt.Fprintf(w, "  %-12s %s\n", "Decision:", d.ID)
	fmt.Fprintf(w, "  %-12s %s\n", "State:", d.State)
	if d.Outcome.Matched {
		fmt.Fprintf(w, "  %-12s %s (%.2f, candidate %d)\n", "Category:", d.Outcome.Category, d.Outcome.Confidence, d.Outcome.Candidate)
	}
	if d.Move != nil {
		fmt.Fprintf(w, "  %-12s %s (%d%% confident)\n", "Move to:", d.Move.DestinationName, d.Move.Percent())
	}
	if d.Reason != "" {
		fmt.Fprintf(w, "  %-12s %s\n", "Reason:", d.Reason)
	}
}
