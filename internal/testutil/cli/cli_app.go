package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	tcli "github.com/thenoetrevino/tandem/internal/cli"
)

// Result is the captured outcome of one command run
type Result struct {
	Stdout string
	Stderr string
	Err    error
}

// ExitCode is the code the process would exit with
func (r Result) ExitCode() int {
	return tcli.ExitCodeFor(r.Err)
}

// ExecuteCLICommand runs cmd under a root that carries the global flags,
// with c injected into the context so GetCLIFromContext finds it
func ExecuteCLICommand(t *testing.T, c *tcli.CLI, cmd *cobra.Command, args []string) (string, error) {
	t.Helper()
	r := Run(t, c, cmd, args...)
	return r.Stdout, r.Err
}

// Run is ExecuteCLICommand with stderr captured too
func Run(t *testing.T, c *tcli.CLI, cmd *cobra.Command, args ...string) Result {
	t.Helper()
	return RunWithInput(t, c, cmd, "", args...)
}

// RunWithInput feeds stdin to the command, for confirmation prompts
func RunWithInput(t *testing.T, c *tcli.CLI, cmd *cobra.Command, stdin string, args ...string) Result {
	t.Helper()

	if c == nil {
		t.Fatal("cli cannot be nil - SetupCLITest must be called first")
	}

	root := &cobra.Command{Use: "tandem"}
	tcli.AddGlobalFlags(root)
	root.AddCommand(cmd)

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{cmd.Name()}, args...))

	// Disable usage output on error for cleaner test output
	root.SilenceUsage = true
	root.SilenceErrors = true

	err := root.ExecuteContext(tcli.WithCLI(context.Background(), c))
	return Result{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}
