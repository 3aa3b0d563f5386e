package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haskel/cellbench/internal/classifier"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available models",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

type modelInfo struct {
	Name   string `json:"name"`
	Family string `json:"family"`
}

func runModels(cmd *cobra.Command, args []string) error {
	var models []modelInfo
	for _, name := range classifier.Names() {
		models = append(models, modelInfo{Name: name, Family: classifier.ModelType(name).Family()})
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		data, err := json.MarshalIndent(models, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "%-22s %s\n", "MODEL", "FAMILY")
	for _, m := range models {
		fmt.Fprintf(out, "%-22s %s\n", m.Name, m.Family)
	}
	return nil
}
