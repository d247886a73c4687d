package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"kafkagen/internal/kafkaconf"
	"kafkagen/internal/logger"
	"kafkagen/internal/planner"
	"kafkagen/internal/prompt"
	"kafkagen/internal/settings"
	"kafkagen/internal/workflow"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	missStyle   = lipgloss.NewStyle().Faint(true)
)

// newRootCmd builds the command tree. in and out back the interactive asker.
func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var verbose, jsonLog bool

	root := &cobra.Command{
		Use:   "kafkagen",
		Short: "Add Kafka consumers and producers to a scaffolded application",
		Long: `kafkagen adds per-entity Kafka consumers and producers to a scaffolded
application and merges their settings into the kafka block of the main and
test application.yml files. Everything outside that block is left untouched.

Examples:
  kafkagen generate                        # interactive session
  kafkagen generate --mode big-bang
  kafkagen generate --answers answers.yml  # non-interactive
  kafkagen status                          # show existing components`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Initialize(verbose, jsonLog); err != nil {
				return errors.Wrap(err, "initialize logger")
			}
			return nil
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")
	root.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "Log as JSON")

	root.AddCommand(newGenerateCmd(), newStatusCmd())
	return root
}

func newGenerateCmd() *cobra.Command {
	var (
		dir     string
		answers string
		mode    string
		topics  []string
		dryRun  bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Ask which components to add and merge them into the config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := settings.Load(dir)
			if err != nil {
				return err
			}
			opts := workflow.Options{
				Dir:      dir,
				Settings: st,
				DryRun:   dryRun,
				Out:      cmd.OutOrStdout(),
			}
			if mode != "" {
				m, ok := planner.ParseMode(mode)
				if !ok {
					return errors.Newf("unknown mode %q (want %s or %s)", mode, planner.ModeBigBang, planner.ModeIncremental)
				}
				opts.Mode = m
			}
			if opts.Topics, err = parseTopics(topics); err != nil {
				return err
			}
			if answers != "" {
				if opts.Asker, err = prompt.LoadScript(answers); err != nil {
					return err
				}
			} else {
				opts.Asker = newTUIAsker(cmd.InOrStdin(), cmd.OutOrStdout())
			}

			res, err := workflow.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res, dryRun)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&dir, "dir", "d", ".", "Application root directory")
	f.StringVar(&answers, "answers", "", "Answer questions from a YAML file instead of prompting")
	f.StringVar(&mode, "mode", "", "Preselect the session mode (big-bang or incremental)")
	f.StringArrayVar(&topics, "topic", nil, "Upsert a topic entry, key=value (repeatable)")
	f.BoolVar(&dryRun, "dry-run", false, "Print the merged blocks without writing anything")
	return cmd
}

func newStatusCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which entities already have a consumer or producer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := workflow.Status(dir, nil)
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), r)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Application root directory")
	return cmd
}

// parseTopics parses repeated key=value flags.
func parseTopics(raw []string) ([]kafkaconf.Topic, error) {
	var out []kafkaconf.Topic
	for _, r := range raw {
		k, v, ok := strings.Cut(r, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, errors.Newf("invalid --topic %q: want key=value", r)
		}
		out = append(out, kafkaconf.Topic{Key: k, Value: strings.TrimSpace(v)})
	}
	return out, nil
}

func printResult(w io.Writer, res *workflow.Result, dryRun bool) {
	if res.Plan.Empty() && len(res.Written) == 0 {
		fmt.Fprintln(w, "nothing to generate")
		return
	}
	for _, r := range res.Plan.Requests {
		fmt.Fprintf(w, "  + %s %s\n", r.Entity, r.Component)
	}
	if dryRun {
		return
	}
	for _, f := range res.Written {
		fmt.Fprintf(w, "updated %s\n", f)
	}
	for _, f := range res.Artifacts {
		fmt.Fprintf(w, "created %s\n", f)
	}
}

func printStatus(w io.Writer, r *workflow.Report) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-24s %-10s %-10s", "ENTITY", "CONSUMER", "PRODUCER")))
	for _, e := range r.Entities {
		fmt.Fprintf(w, "%-24s %s %s\n", e.Name, mark(e.Consumer), mark(e.Producer))
	}
	if r.Block == nil {
		fmt.Fprintf(w, "\nno %s block in %s\n", r.Namespace, r.MainConfig)
		return
	}
	fmt.Fprintf(w, "\n# %s\n%s", r.MainConfig, r.Block)
}

func mark(ok bool) string {
	if ok {
		return okStyle.Render(fmt.Sprintf("%-10s", "yes"))
	}
	return missStyle.Render(fmt.Sprintf("%-10s", "-"))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := newRootCmd(os.Stdin, os.Stdout).ExecuteContext(ctx)
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "kafkagen: %v\n", err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
