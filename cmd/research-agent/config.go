package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective pipeline configuration",
	Long: `Config resolves the config file and built-in defaults into the effective
pipeline configuration and prints it as YAML. The output is a valid
starting point for research-agent.yaml.`,
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(pipelineConfig(cmd))
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func init() {
	rootCmd.AddCommand(configCmd)
}
