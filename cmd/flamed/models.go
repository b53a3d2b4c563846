package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"flamed/internal/llm/backend"
	"flamed/internal/registry"
	"flamed/pkg/types"
)

func newModelsCmd(opts *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List model descriptors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			reg, err := registry.LoadDir(cfg.ModelsDir)
			if err != nil {
				return fmt.Errorf("failed to load models: %w", err)
			}
			return printModels(cmd.OutOrStdout(), reg, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table|json|yaml")
	return cmd
}

func printModels(w io.Writer, models []types.Model, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(types.ModelsResponse{Models: models})
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(models); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tBACKEND\tTOKENIZER")
		for _, m := range models {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.Name, orDefault(m.Backend, backend.ModelDummy), orDefault(m.Tokenizer, backend.TokenizerBytes))
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
