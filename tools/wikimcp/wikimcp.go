// Turn a wikipedia dump into a static MCP tree.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dustin/go-wikimcp"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           "wikimcp",
		Short:         "Generate a static MCP server from a wikipedia dump",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(logLevel)
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level (debug, info, warn, error)")

	cmd.AddCommand(generateCmd(), traverseCmd(), filtersCmd(), countIndexCmd())
	return cmd
}

func setupLogging(level string) {
	l := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}

type runFlags struct {
	configPath     string
	lang           string
	filter         string
	maxArticles    int
	streaming      bool
	dumpCategories bool
	index          string
	reportEvery    int
}

func (f *runFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	fl.StringVar(&f.lang, "lang", "en", "Wiki language code")
	fl.StringVar(&f.filter, "filter", "", "Topic filter (see the filters command)")
	fl.IntVar(&f.maxArticles, "max-articles", 0, "Stop after this many articles (0 = all)")
	fl.BoolVar(&f.streaming, "streaming", false, "Write articles while reading the dump")
	fl.BoolVar(&f.dumpCategories, "dump-categories", false,
		"Add the dump's own [[Category:...]] names to the categories tool")
	fl.StringVar(&f.index, "index", "", "Multistream index, for progress totals")
	fl.IntVar(&f.reportEvery, "report-every", wikimcp.DefaultReportEvery,
		"Log progress every this many articles")
}

// config loads the config file, if any, then applies explicitly set
// flags and positional args on top.
func (f *runFlags) config(cmd *cobra.Command, args []string) (*wikimcp.Config, error) {
	cfg := wikimcp.DefaultConfig()
	if f.configPath != "" {
		var err error
		cfg, err = wikimcp.LoadConfig(f.configPath)
		if err != nil {
			return nil, err
		}
	}

	if len(args) > 0 {
		cfg.Input = args[0]
	}
	if len(args) > 1 {
		cfg.Output = args[1]
	}

	fl := cmd.Flags()
	if fl.Changed("lang") {
		cfg.Language = f.lang
	}
	if fl.Changed("filter") {
		cfg.Filter = f.filter
	}
	if fl.Changed("max-articles") {
		cfg.MaxArticles = f.maxArticles
	}
	if fl.Changed("streaming") {
		cfg.Streaming = f.streaming
	}
	if fl.Changed("dump-categories") {
		cfg.DumpCategories = f.dumpCategories
	}
	if fl.Changed("index") {
		cfg.Index = f.index
	}
	if fl.Changed("report-every") {
		cfg.ReportEvery = f.reportEvery
	}
	return cfg, nil
}

func generateCmd() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "generate [dump.xml|dump.xml.bz2] [output-dir]",
		Short: "Generate the static MCP tree",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(cmd, args)
			if err != nil {
				return err
			}
			return wikimcp.Generate(cfg, nil)
		},
	}
	f.register(cmd)
	return cmd
}

// traverseCmd walks a dump through the configured gate and prints the
// accepted titles without writing anything.
func traverseCmd() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "traverse [dump.xml|dump.xml.bz2]",
		Short: "List the pages a run would accept",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(cmd, args)
			if err != nil {
				return err
			}
			if cfg.Input == "" {
				return wikimcp.ErrNoInput
			}
			format, err := wikimcp.FormatForPath(cfg.Input)
			if err != nil {
				return err
			}
			gate, err := cfg.Gate()
			if err != nil {
				return err
			}

			r, err := os.Open(cfg.Input)
			if err != nil {
				return err
			}
			defer r.Close()

			in := &wikimcp.Ingester{
				Gate:        gate,
				MaxArticles: cfg.MaxArticles,
				ReportEvery: cfg.ReportEvery,
			}
			out := cmd.OutOrStdout()
			_, err = in.Run(r, format, func(p *wikimcp.Page) error {
				if p.IsRedirect() {
					_, err := fmt.Fprintf(out, "%d\t%s\t-> %s\n", p.ID, p.Title, p.Redirect)
					return err
				}
				_, err := fmt.Fprintf(out, "%d\t%s\t%s\n", p.ID, p.Title,
					wikimcp.EncodeFilename(p.Title))
				return err
			})
			return err
		},
	}
	f.register(cmd)
	return cmd
}

func filtersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "List the builtin topic filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, f := range wikimcp.BuiltinFilters() {
				fmt.Fprintf(w, "%s\t%s\t%d keywords\n",
					f.Name(), f.Description(), len(f.Keywords()))
			}
			return w.Flush()
		},
	}
}

func countIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count-index index.txt.bz2",
		Short: "Count the streams and pages listed in a multistream index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := wikimcp.SummarizeIndexFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s pages in %s streams\n",
				humanize.Comma(st.Pages), humanize.Comma(int64(st.Streams)))
			return nil
		},
	}
}
