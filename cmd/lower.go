package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"vlower/internal/diag"
	"vlower/internal/driver"
	"vlower/internal/loader"
	"vlower/internal/strategy"
	"vlower/internal/util"
)

var (
	ProgramFiles []string
	OutputFormat string
	ItemOrder    string
)

var lowerCommand = &cobra.Command{
	Use:   "lower",
	Short: "lower every declaration of a program file",
	Long:  ``,
	Run: func(cmd *cobra.Command, _ []string) {
		applyConfig(cmd)
		failed, err := lowerExec(os.Stdout, os.Stderr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "service err: %v\n", err)
			os.Exit(1)
		}
		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	lowerCommand.Flags().StringSliceVar(&ProgramFiles, "file", nil, "program file(s)")
	lowerCommand.Flags().StringVar(&OutputFormat, "format", "text", "output format (text, yaml)")
	lowerCommand.Flags().StringVar(&ItemOrder, "order", "fifo", "item order (fifo, lifo)")
}

// applyConfig fills every flag left unset on the command line from Conf.
func applyConfig(cmd *cobra.Command) {
	if !cmd.Flags().Changed("file") {
		ProgramFiles = Conf.Lower.Files
	}
	if cmd.Flags().Lookup("format") != nil && !cmd.Flags().Changed("format") {
		OutputFormat = Conf.Lower.Format
	}
	if cmd.Flags().Lookup("order") != nil && !cmd.Flags().Changed("order") {
		ItemOrder = Conf.Lower.Order
	}
}

type lowerReport struct {
	Run          string            `yaml:"run"`
	Functions    interface{}       `yaml:"functions"`
	External     []string          `yaml:"external,omitempty"`
	Ignored      []string          `yaml:"ignored,omitempty"`
	Fingerprints map[string]string `yaml:"fingerprints,omitempty"`
	Diagnostics  []string          `yaml:"diagnostics,omitempty"`
}

func lowerExec(stdout, stderr io.Writer) (bool, error) {
	if len(ProgramFiles) == 0 {
		return false, errors.New("no program file given, use --file")
	}
	for _, file := range ProgramFiles {
		if !util.FileExists(file) {
			return false, errors.Errorf("%s does not exist", file)
		}
	}
	l := loader.NewLoader()
	l.SetVstdCrate(Conf.Lower.VstdCrate)
	if err := l.LoadFromFiles(ProgramFiles); err != nil {
		return false, err
	}
	s, err := strategy.New(ItemOrder)
	if err != nil {
		return false, err
	}
	result, err := driver.NewDriver(l, s).Run()
	if err != nil {
		return false, err
	}

	printer := diag.NewPrinter(stderr)
	for _, d := range result.Diagnostics {
		printer.Print(d.Err)
	}

	switch OutputFormat {
	case "yaml":
		report := lowerReport{
			Run:          result.RunID,
			Functions:    result.Krate.Functions,
			Fingerprints: result.Fingerprints,
		}
		for _, f := range result.Erasure.ExternalFunctions {
			report.External = append(report.External, f.String())
		}
		for _, f := range result.Erasure.IgnoredFunctions {
			report.Ignored = append(report.Ignored, f.Name.String())
		}
		for _, d := range result.Diagnostics {
			report.Diagnostics = append(report.Diagnostics, fmt.Sprintf("%s: %v", d.Item, d.Err))
		}
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return false, errors.Wrap(err, "Encode")
		}
		if err := enc.Close(); err != nil {
			return false, errors.Wrap(err, "Close")
		}
	case "text":
		names := make([]string, 0, len(result.Fingerprints))
		for _, f := range result.Krate.Functions {
			names = append(names, f.Name.String())
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(stdout, "\033[36m%-40s\033[0m %s\n", name, result.Fingerprints[name][:16])
		}
		for _, f := range result.Erasure.ExternalFunctions {
			fmt.Fprintf(stdout, "%-40s external\n", f.String())
		}
		fmt.Fprintf(stdout, "%d lowered, %d external, %d rejected\n",
			len(result.Krate.Functions), len(result.Erasure.ExternalFunctions), len(result.Diagnostics))
	default:
		return false, errors.Errorf("unknown format %q", OutputFormat)
	}
	return result.Failed(), nil
}
