package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/topicbot/internal/config"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and routing table health",
		Run: func(cmd *cobra.Command, args []string) {
			if !runDoctor(os.Stdout, resolveConfigPath()) {
				os.Exit(1)
			}
		},
	}
}

// runDoctor prints a health report and reports whether the bot could start.
func runDoctor(w io.Writer, cfgPath string) bool {
	fmt.Fprintln(w, "topicbot doctor")
	fmt.Fprintf(w, "  Version:  %s\n", Version)
	fmt.Fprintf(w, "  OS:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(w, "  Go:       %s\n", runtime.Version())
	fmt.Fprintln(w)

	// Config
	fmt.Fprintf(w, "  Config:   %s", cfgPath)
	if _, err := os.Stat(cfgPath); err != nil {
		fmt.Fprintln(w, " (NOT FOUND, using env only)")
	} else {
		fmt.Fprintln(w, " (OK)")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(w, "  Config load error: %s\n", err)
		return false
	}
	m := cfg.Masked()

	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Settings:")
	fmt.Fprintf(w, "    %-16s %s\n", "Discord token:", orMissing(m.Discord.Token))
	fmt.Fprintf(w, "    %-16s %g\n", "Cutoff:", m.Routing.ConfidenceCutoff)
	fmt.Fprintf(w, "    %-16s %d\n", "Min text chars:", m.Routing.MinTextChars)
	fmt.Fprintf(w, "    %-16s %d\n", "Max units:", m.Classifier.MaxUnits)
	fmt.Fprintf(w, "    %-16s %t\n", "Announce moves:", m.Routing.ShouldAnnounce())
	fmt.Fprintf(w, "    %-16s %s\n", "Ignored chans:", joinOrNone(m.Routing.IgnoredChannels))
	fmt.Fprintf(w, "    %-16s %s\n", "Ignored roles:", joinOrNone(m.Routing.IgnoredRoles))
	fmt.Fprintf(w, "    %-16s %s (key %s)\n", "Articles:", m.Article.Backend, orMissing(m.Article.APIKey))
	fmt.Fprintf(w, "    %-16s %s (key %s)\n", "Classifier:", m.Classifier.Backend, orMissing(m.Classifier.APIKey))
	fmt.Fprintf(w, "    %-16s depth %d, concurrency %d\n", "Resolver:", m.Resolver.MaxDepth, m.Resolver.MaxConcurrency)
	if m.Telemetry.Enabled {
		fmt.Fprintf(w, "    %-16s %s via %s\n", "Telemetry:", m.Telemetry.Endpoint, m.Telemetry.Protocol)
	} else {
		fmt.Fprintf(w, "    %-16s disabled\n", "Telemetry:")
	}

	healthy := true

	fmt.Fprintln(w)
	if err := cfg.Validate(true); err != nil {
		healthy = false
		fmt.Fprintln(w, "  Validation: FAILED")
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Fprintf(w, "    - %s\n", line)
		}
	} else {
		fmt.Fprintln(w, "  Validation: OK")
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Routing table: %s", orMissing(cfg.Routing.CategoryChannelFile))
	if cfg.Routing.CategoryChannelFile == "" {
		fmt.Fprintln(w)
		return false
	}
	routes, err := config.LoadRoutingTable(cfg.Routing.CategoryChannelFile)
	if err != nil {
		fmt.Fprintf(w, " (ERROR: %s)\n", err)
		return false
	}
	fmt.Fprintf(w, " (%d categories)\n", len(routes))

	return healthy
}

func orMissing(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
