package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var output string

func main() {
	rootCmd := &cobra.Command{
		Use:           "roofsolar-cli",
		Short:         "Sun position, irradiance and roof shading calculations",
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "json", "Output format: json or yaml")

	rootCmd.AddCommand(positionCmd())
	rootCmd.AddCommand(tiltCmd())
	rootCmd.AddCommand(hourlyCmd())
	rootCmd.AddCommand(estimateCmd())
	rootCmd.AddCommand(shadingCmd())
	rootCmd.AddCommand(reportCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// emit writes v to w in the selected output format
func emit(w io.Writer, v any) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}
