package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/moepig/aws-inventory/config"
	"github.com/moepig/aws-inventory/renderer"
	"github.com/moepig/aws-inventory/report"
	"github.com/moepig/aws-inventory/resources"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newRootCommand builds the command tree: the root and "all" report every
// resource type, the other subcommands one type each
func newRootCommand(registry *resources.Registry) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "aws-inventory [command] [column] [column=value ...]",
		Short: "Print an inventory of AWS resources across regions",
		Long: `Print an inventory of AWS resources across regions.

Arguments after the command sort the report by a column (a bare column name)
or keep only rows whose column equals a value (column=value).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, registry, configPath, resources.AllTypes, args)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to configuration file")
	pf.StringSliceP("region", "r", nil, "Comma separated regions to scan (default: built-in list)")
	pf.BoolP("verbose", "v", false, "Print report titles even when the report is empty")
	pf.Bool("nodefault", false, "Exclude default VPCs from the vpc report (also -nd)")
	pf.String("profile", "", "Shared AWS config profile to use")
	pf.StringP("output", "o", string(renderer.FormatTable), "Output format (table, json, yaml)")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.Bool("fail-fast", false, "Abort on the first failed API call instead of skipping it")
	pf.BoolP("version", "V", false, "Print version and exit")
	root.SetVersionTemplate("aws-inventory version {{.Version}}\n")

	root.AddCommand(&cobra.Command{
		Use:     "all [column] [column=value ...]",
		Short:   "Report every resource type",
		Args:    cobra.ArbitraryArgs,
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, registry, configPath, resources.AllTypes, args)
		},
	})

	for _, t := range registry.List() {
		lister, err := registry.Get(t)
		if err != nil {
			continue
		}
		resourceType := t
		root.AddCommand(&cobra.Command{
			Use:     fmt.Sprintf("%s [column] [column=value ...]", t),
			Short:   fmt.Sprintf("Report %s", lister.Title()),
			Long:    fmt.Sprintf("Report %s.\n\nColumns: %s", lister.Title(), strings.Join(lister.Columns(), ", ")),
			Args:    cobra.ArbitraryArgs,
			Version: version,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runReport(cmd, registry, configPath, []resources.Type{resourceType}, args)
			},
		})
	}

	return root
}

func runReport(cmd *cobra.Command, registry *resources.Registry, configPath string, types []resources.Type, args []string) error {
	// Load run configuration
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logLevel, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	// Initialize slog logger
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger.With("run_id", uuid.NewString()))

	if cfg.File != "" {
		slog.Debug("Read config file", "path", cfg.File)
	}
	slog.Debug("Loaded config", "regions", cfg.Regions, "output", cfg.Output)

	format, err := renderer.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}
	rend := renderer.NewRenderer(cmd.OutOrStdout(), format)

	// Run the reports
	driver := report.NewDriver(registry, rend, report.Options{
		Regions:           cfg.Regions,
		Profile:           cfg.Profile,
		Verbose:           cfg.Verbose,
		ExcludeDefaultVPC: cfg.NoDefault,
		FailFast:          cfg.FailFast,
	})

	slog.Debug("Starting report", "types", types, "regions", cfg.Regions)
	summary, err := driver.Run(cmd.Context(), types, args)
	if err != nil {
		return err
	}
	if err := rend.Close(); err != nil {
		return err
	}

	slog.Info("Done!",
		"reports", len(summary.Results),
		"failed", len(summary.Failures()),
		"skipped_types", len(summary.Skipped))
	return nil
}

// normalizeArgs prepares command line arguments for the flag parser. The
// legacy "-nd" spelling becomes --nodefault, which the parser would otherwise
// read as the shorthands -n and -d. Dash tokens naming no flag of the command
// tree are dropped, so they cannot take the sort or filter word after them as
// their value.
func normalizeArgs(root *cobra.Command, args []string) []string {
	root.InitDefaultHelpFlag()

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "-nd" {
			arg = "--nodefault"
		}
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if len(arg) < 2 || arg[0] != '-' {
			out = append(out, arg)
			continue
		}

		known, valueFollows := lookupFlag(root, arg)
		if !known {
			continue
		}
		out = append(out, arg)
		if valueFollows && i+1 < len(args) {
			i++
			out = append(out, args[i])
		}
	}
	return out
}

// lookupFlag reports whether a dash token names flags of the command tree and
// whether the next argument is the value of the last of them
func lookupFlag(root *cobra.Command, arg string) (known, valueFollows bool) {
	if name, ok := strings.CutPrefix(arg, "--"); ok {
		name, _, hasValue := strings.Cut(name, "=")
		flag := findFlag(root, func(fs *pflag.FlagSet) *pflag.Flag { return fs.Lookup(name) })
		if flag == nil {
			return false, false
		}
		return true, !hasValue && flag.NoOptDefVal == ""
	}

	// Shorthands may be grouped; a value taking shorthand ends the group
	shorthands := arg[1:]
	for i := range len(shorthands) {
		flag := findFlag(root, func(fs *pflag.FlagSet) *pflag.Flag {
			return fs.ShorthandLookup(shorthands[i : i+1])
		})
		if flag == nil {
			return false, false
		}
		if flag.NoOptDefVal == "" {
			return true, i == len(shorthands)-1
		}
	}
	return true, false
}

func findFlag(root *cobra.Command, lookup func(*pflag.FlagSet) *pflag.Flag) *pflag.Flag {
	for _, c := range append([]*cobra.Command{root}, root.Commands()...) {
		for _, fs := range []*pflag.FlagSet{c.PersistentFlags(), c.Flags()} {
			if flag := lookup(fs); flag != nil {
				return flag
			}
		}
	}
	return nil
}

// parseLogLevel parses a log level name
func parseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level '%s' (must be debug, info, warn, or error)", s)
	}
}
