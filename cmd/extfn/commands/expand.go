package commands

import (
	"go/token"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/extfn/errors"
	"github.com/teranos/extfn/extfn"
)

var expandTarget string

// ExpandCmd expands a single function and prints the result
var ExpandCmd = &cobra.Command{
	Use:   "expand --target <target> [file]",
	Short: "Expand one function declaration",
	Long: `Expand one function declaration read from a file or stdin and print the
generated declarations without a package clause.

Target grammar:
  [TypeParams] Type                              concrete target
  [TypeParams] interface Constraint {+ Constraint}  every type satisfying the constraints

Examples:
  extfn expand --target Text count.go.txt
  echo 'func (s Self) Len() int { return len(s) }' | extfn expand --target 'interface ~string'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExpand,
}

func init() {
	ExpandCmd.Flags().StringVarP(&expandTarget, "target", "t", "", "Target type or interface constraints")
	_ = ExpandCmd.MarkFlagRequired("target")
}

func runExpand(cmd *cobra.Command, args []string) error {
	name := "<stdin>"
	var (
		src []byte
		err error
	)
	if len(args) == 1 {
		name = args[0]
		src, err = os.ReadFile(name)
	} else {
		src, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", name)
	}

	code, err := extfn.Expand(extfn.Input{
		Target:      expandTarget,
		TargetPos:   token.Position{Filename: "--target", Line: 1, Column: 1},
		Function:    string(src),
		FunctionPos: token.Position{Filename: name, Line: 1, Column: 1},
	})
	if err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(code)
	return err
}
