// Command featureprep runs the feature pipeline once and writes the final
// table to stdout.
//
//	featureprep [-source reference | -csv path] [-rules file.toml] [-json]
//
// Pipeline settings come from the same environment variables as the server.
// Logs go to stderr.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/featureprep/internal/config"
	"github.com/JonMunkholm/featureprep/internal/core"
	"github.com/JonMunkholm/featureprep/internal/core/sources"
	"github.com/JonMunkholm/featureprep/internal/logging"
	"github.com/JonMunkholm/featureprep/internal/tableio"
	"github.com/joho/godotenv"
)

// cliConfig holds the command-line flags.
type cliConfig struct {
	*flag.FlagSet

	source    string
	csvPath   string
	rulesFile string
	asJSON    bool
	list      bool
}

func newCLIConfig(stderr io.Writer) *cliConfig {
	c := &cliConfig{}
	c.FlagSet = flag.NewFlagSet("featureprep", flag.ContinueOnError)
	fs := c.FlagSet
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage of featureprep:")
		fs.PrintDefaults()
	}

	fs.StringVar(&c.source, "source", "", "registered source key (default \"reference\")")
	fs.StringVar(&c.csvPath, "csv", "", "run on this CSV file instead of a registered source")
	fs.StringVar(&c.rulesFile, "rules", "", "TOML rules file (overrides PIPELINE_RULES_FILE)")
	fs.BoolVar(&c.asJSON, "json", false, "write the table as JSON instead of CSV")
	fs.BoolVar(&c.list, "list", false, "list registered sources and exit")

	return c
}

// parse reads args and checks flag combinations.
func (c *cliConfig) parse(args []string) error {
	if err := c.FlagSet.Parse(args); err != nil {
		return err
	}
	if c.NArg() > 0 {
		return fmt.Errorf("'%s' is not a valid flag", c.Arg(0))
	}
	if c.source != "" && c.csvPath != "" {
		return errors.New("-source and -csv are mutually exclusive")
	}
	if c.source == "" && c.csvPath == "" {
		c.source = "reference"
	}
	return nil
}

func main() {
	// Shell variables win over .env for a one-shot command.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
	default:
		fmt.Fprintln(os.Stderr, "featureprep:", core.FormatUserError(err))
		fmt.Fprintln(os.Stderr, "  detail:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := newCLIConfig(stderr)
	if err := cli.parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.SetupWriter(stderr, cfg.Logging.Level, cfg.Logging.Format)

	rulesFile := cfg.Pipeline.RulesFile
	if cli.rulesFile != "" {
		rulesFile = cli.rulesFile
	}
	rules, err := config.LoadRules(rulesFile)
	if err != nil {
		return err
	}
	specs, err := sources.ColumnSpecs(rules)
	if err != nil {
		return err
	}

	if cfg.Pipeline.SourceDir != "" {
		if _, err := sources.RegisterDir(cfg.Pipeline.SourceDir, specs); err != nil {
			return err
		}
	}

	if cli.list {
		for _, def := range core.AllSources() {
			fmt.Fprintf(stdout, "%s\t%s\t%s\n", def.Info.Key, def.Info.Group, def.Info.Description)
		}
		return nil
	}

	svc, err := core.NewService(cfg.Pipeline, core.OptionsFromConfig(cfg.Pipeline, rules))
	if err != nil {
		return err
	}

	var res *core.RunResult
	if cli.csvPath != "" {
		res, err = svc.RunSource(ctx, cli.csvPath, tableio.NewCSVFileSource(cli.csvPath, specs))
	} else {
		res, err = svc.Run(ctx, cli.source)
	}
	if err != nil {
		return err
	}

	if cli.asJSON {
		out, err := json.MarshalIndent(res.Table, "", "  ")
		if err != nil {
			return fmt.Errorf("encode table: %w", err)
		}
		_, err = stdout.Write(append(out, '\n'))
		return err
	}
	return tableio.WriteCSV(stdout, res.Table)
}
