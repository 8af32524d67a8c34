package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/haivivi/jsonattach/cmd/jsonattach/internal/build"
	"github.com/haivivi/jsonattach/pkg/cli"
)

var versionFormat string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionFormat != "" {
			format, err := cli.ParseOutputFormat(versionFormat)
			if err != nil {
				return err
			}
			return cli.Output(build.Get(), cli.OutputOptions{Format: format})
		}
		fmt.Println(build.String())
		if IsVerbose() {
			fmt.Printf("  go:     %s\n", runtime.Version())
			if cfg, err := GetConfig(); err == nil {
				fmt.Printf("  config: %s\n", cfg.Path())
			} else {
				fmt.Printf("  config: (unavailable: %v)\n", err)
			}
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "", "output format: json or yaml")
	rootCmd.AddCommand(versionCmd)
}
