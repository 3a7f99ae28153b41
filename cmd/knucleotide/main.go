package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ledgerwatch/log/v3"
	"github.com/oisee/knucleotide/pkg/config"
	"github.com/oisee/knucleotide/pkg/count"
	"github.com/oisee/knucleotide/pkg/fasta"
	"github.com/oisee/knucleotide/pkg/nucleo"
	"github.com/oisee/knucleotide/pkg/result"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

// options are the flags shared by the counting commands.
type options struct {
	configPath string
	verbose    bool
	quiet      bool
	workers    int
	partitions int
	record     int
	id         string
	freqs      []int
	literals   []string
	progress   bool
}

func newRootCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	var opt options

	rootCmd := &cobra.Command{
		Use:          "knucleotide",
		Short:        "k-mer frequency statistics over one record of a FASTA stream",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opt.configPath, "config", "", "TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&opt.verbose, "verbose", "v", false, "Verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&opt.quiet, "quiet", "q", false, "Log warnings and errors only")

	addCountFlags := func(cmd *cobra.Command) {
		cmd.Flags().IntVar(&opt.workers, "workers", 0, "Number of workers (0 = NumCPU)")
		cmd.Flags().IntVar(&opt.partitions, "partitions", 0, "Regions per k (0 = workers)")
		cmd.Flags().IntVar(&opt.record, "record", 3, "Target record ordinal, from 1")
		cmd.Flags().StringVar(&opt.id, "id", "", "Target record ID (overrides --record)")
		cmd.Flags().BoolVar(&opt.progress, "progress", false, "Show a progress bar on stderr")
	}

	// count command
	var output string

	countCmd := &cobra.Command{
		Use:   "count [input.fa]",
		Short: "Report k-mer frequencies and literal k-mer counts",
		Long: "Reads the target record from the FASTA file (or stdin), prints the\n" +
			"frequency tables and literal counts to stdout.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opt.resolve(cmd)
			if err != nil {
				return err
			}
			rep, err := runReport(stdin, args, cfg, logger)
			if err != nil {
				return err
			}
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := result.WriteJSON(f, rep); err != nil {
					return err
				}
				logger.Info("Report written", "path", output)
			}
			return writeText(stdout, rep)
		},
	}
	addCountFlags(countCmd)
	countCmd.Flags().IntSliceVar(&opt.freqs, "freq", nil, "k-values reported as frequency tables (default 1,2)")
	countCmd.Flags().StringSliceVar(&opt.literals, "literal", nil, "k-mers reported as counts (default benchmark set)")
	countCmd.Flags().StringVarP(&output, "output", "o", "", "Also write the report as JSON to this file")

	// query command
	queryCmd := &cobra.Command{
		Use:     "query [input.fa]",
		Short:   "Count specific k-mers only",
		Example: "  knucleotide query input.fa --kmer GGT --kmer GGTA\n  knucleotide query --id THREE -k GGTATT < input.fa",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opt.resolve(cmd)
			if err != nil {
				return err
			}
			cfg.Frequencies = nil
			if len(opt.literals) == 0 {
				return errors.New("query: at least one --kmer is required")
			}
			rep, err := runReport(stdin, args, cfg, logger)
			if err != nil {
				return err
			}
			return writeText(stdout, &result.Report{Length: rep.Length, Literals: rep.Literals})
		},
	}
	addCountFlags(queryCmd)
	queryCmd.Flags().StringSliceVarP(&opt.literals, "kmer", "k", nil, "k-mer to count (repeatable)")

	// verify command
	verifyCmd := &cobra.Command{
		Use:   "verify [report.json]",
		Short: "Check the internal consistency of a saved JSON report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := readReport(args[0])
			if err != nil {
				return err
			}
			errs := result.Verify(rep)
			for _, e := range errs {
				fmt.Fprintf(stdout, "  FAIL: %v\n", e)
			}
			if len(errs) > 0 {
				return errors.Errorf("verify: %d problem(s) in %s", len(errs), args[0])
			}
			fmt.Fprintf(stdout, "OK: %d tables, %d literals, length %d\n", len(rep.Tables), len(rep.Literals), rep.Length)
			return nil
		},
	}

	// export command
	var format string

	exportCmd := &cobra.Command{
		Use:   "export [report.json]",
		Short: "Render a saved JSON report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := readReport(args[0])
			if err != nil {
				return err
			}
			switch format {
			case "text":
				return writeText(stdout, rep)
			case "json":
				return result.WriteJSON(stdout, rep)
			default:
				return fmt.Errorf("unknown format: %s", format)
			}
		},
	}
	exportCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json)")

	rootCmd.AddCommand(countCmd, queryCmd, verifyCmd, exportCmd)
	return rootCmd
}

// resolve merges the config file, defaults and explicitly set flags.
func (opt *options) resolve(cmd *cobra.Command) (config.Config, log.Logger, error) {
	logger := newLogger(os.Stderr, opt.verbose, opt.quiet)

	cfg := config.Default()
	if opt.configPath != "" {
		var err error
		if cfg, err = config.Load(opt.configPath); err != nil {
			return cfg, logger, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = opt.workers
	}
	if flags.Changed("partitions") {
		cfg.Partitions = opt.partitions
	}
	if flags.Changed("record") {
		cfg.Record = opt.record
	}
	if flags.Changed("id") {
		cfg.ID = opt.id
	}
	if flags.Changed("progress") {
		cfg.Progress = opt.progress
	}
	if flags.Changed("freq") {
		cfg.Frequencies = opt.freqs
	}
	if flags.Changed("literal") || flags.Changed("kmer") {
		cfg.Literals = opt.literals
	}
	return cfg, logger, cfg.Validate()
}

func newLogger(w io.Writer, verbose, quiet bool) log.Logger {
	lvl := log.LvlInfo
	switch {
	case verbose:
		lvl = log.LvlDebug
	case quiet:
		lvl = log.LvlWarn
	}
	logger := log.New()
	logger.SetHandler(log.LvlFilterHandler(lvl, log.StreamHandler(w, log.LogfmtFormat())))
	return logger
}

// readInput extracts the target record from the file argument, or from
// stdin when there is none or it is "-".
func readInput(stdin io.Reader, args []string, cfg config.Config) ([]byte, error) {
	if len(args) == 1 && args[0] != "-" {
		return fasta.ReadFile(args[0], cfg.ID, cfg.Record)
	}
	if cfg.ID != "" {
		return fasta.ReadRecordByID(stdin, cfg.ID)
	}
	return fasta.ReadRecord(stdin, cfg.Record)
}

func runReport(stdin io.Reader, args []string, cfg config.Config, logger log.Logger) (*result.Report, error) {
	start := time.Now()
	raw, err := readInput(stdin, args, cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("Read target record", "bytes", len(raw), "took", time.Since(start))

	start = time.Now()
	codes := nucleo.EncodeInto(raw[:0], raw)
	logger.Debug("Encoded sequence", "symbols", len(codes), "dropped", len(raw)-len(codes), "took", time.Since(start))

	var progress io.Writer
	if cfg.Progress {
		progress = os.Stderr
	}
	start = time.Now()
	freqs := count.Run(codes, count.Config{
		KValues:    cfg.KValues(),
		NumWorkers: cfg.Workers,
		Partitions: cfg.Partitions,
		Progress:   progress,
		Logger:     logger,
	})
	logger.Info("Counted k-mers", "symbols", freqs.Length, "k", freqs.KValues(), "took", time.Since(start))

	return result.Build(freqs, cfg.Frequencies, cfg.Literals)
}

func readReport(path string) (*result.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return result.ReadJSON(f)
}

func writeText(w io.Writer, rep *result.Report) error {
	bw := bufio.NewWriter(w)
	if err := result.WriteText(bw, rep); err != nil {
		return err
	}
	return bw.Flush()
}
