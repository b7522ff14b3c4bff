package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dujiao-next/promo/internal/promo"

	"github.com/spf13/cobra"
)

// NewNormalizeCommand 创建 normalize 命令
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <rules-file|->",
		Short: "Print the canonical form of a rules document",
		Long: `Read a raw rules document (YAML or JSON) and print it in canonical form.
Unknown fields are kept, malformed known fields fall back to their defaults.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(rootOpts, args[0], cmd)
		},
	}
}

func runNormalize(opts *RootOptions, path string, cmd *cobra.Command) error {
	data, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	doc, err := decodeDocument(path, data)
	if err != nil {
		return err
	}
	rules := promo.NormalizeJSON(doc)

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(rules, func(w io.Writer) error {
		out, err := json.MarshalIndent(rules, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	})
}
