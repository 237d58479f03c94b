package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/propharness/internal/harness"
)

// SecretResult is the JSON payload of obscure and reveal.
type SecretResult struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// NewObscureCommand creates the obscure command.
func NewObscureCommand(rootOpts *RootOptions) *cobra.Command {
	return newSecretCommand(rootOpts, "obscure", "Wrap text in the enc{...} marker", harness.Encrypt)
}

// NewRevealCommand creates the reveal command.
func NewRevealCommand(rootOpts *RootOptions) *cobra.Command {
	return newSecretCommand(rootOpts, "reveal", "Strip the enc{...} marker from text", harness.Decrypt)
}

func newSecretCommand(rootOpts *RootOptions, name, short string, transform func(string) string) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <text>",
		Short: short,
		Long: short + `.

The marker only tags sensitive values in test fixtures. It is not
encryption.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			out := transform(args[0])
			if formatter.Format == "json" {
				return formatter.Success(SecretResult{Input: args[0], Output: out})
			}
			fmt.Fprintln(formatter.Writer, out)
			return nil
		},
	}
}
