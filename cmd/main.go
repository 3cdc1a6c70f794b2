package main

import (
	goflag "flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"vlower/internal/config"
	"vlower/internal/util"
)

var (
	LogLevel   string
	ConfigFile string
	Conf       = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "vlower",
	Short: "vlower, lowers function declarations and external specifications for the verifier",
	Long:  "",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		if !cmd.Flags().Changed("log-level") {
			LogLevel = Conf.Log.Level
		}
		level, err := log.ParseLevel(LogLevel)
		if err != nil {
			return err
		}
		log.SetLevel(level)
		log.SetOutput(os.Stderr)
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// loadConfig reads --config, or vlower.toml in the working directory when present.
func loadConfig() error {
	path := ConfigFile
	if path == "" {
		if !util.FileExists(config.FileName) {
			return nil
		}
		path = config.FileName
	}
	conf, err := config.Load(path)
	if err != nil {
		return errors.Wrap(err, "config")
	}
	Conf = conf
	log.Debugf("using config %s", path)
	return nil
}

func main() {
	flag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	rootCmd.PersistentFlags().StringVar(&LogLevel, "log-level", "warning", "log level (debug, info, warning, error)")
	rootCmd.PersistentFlags().StringVar(&ConfigFile, "config", "", "project file (default ./"+config.FileName+" if present)")

	rootCmd.AddCommand(versionCommand)
	rootCmd.AddCommand(lowerCommand)
	rootCmd.AddCommand(inspectCommand)

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
