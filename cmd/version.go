package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.BuildVersion=..." at release time.
var (
	BuildBranch  string
	BuildVersion string
	BuildTime    string
	Builder      string
)

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "show version",
	Long:  ``,
	Run: func(*cobra.Command, []string) {
		printVersion()
	},
}

func printVersion() {
	for _, kv := range [][2]string{
		{"BuildBranch", BuildBranch},
		{"BuildVersion", BuildVersion},
		{"BuildTime", BuildTime},
		{"Builder", Builder},
		{"GoVersion", runtime.Version()},
	} {
		fmt.Printf("\033[36m%-16s\033[0m %s\n", kv[0], kv[1])
	}
}
