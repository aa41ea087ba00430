package errorhandler_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/eip-monitor/eipmon/pkg/cli/errorhandler"
)

var (
	errBoom            = errors.New("boom")
	errOriginalFailure = errors.New("original failure")
	errBoomOriginal    = errors.New("boom: original failure")
)

func TestExecuteSuccess(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{
		Use: "eipmon",
		RunE: func(_ *cobra.Command, _ []string) error {
			return nil
		},
	}

	err := errorhandler.NewExecutor().Execute(cmd)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestExecuteNilCommand(t *testing.T) {
	t.Parallel()

	err := errorhandler.NewExecutor().Execute(nil)
	if err != nil {
		t.Fatalf("expected nil command to succeed, got %v", err)
	}
}

func TestExecuteUnknownSubcommand(t *testing.T) {
	t.Parallel()

	root := &cobra.Command{Use: "eipmon"}
	root.AddCommand(&cobra.Command{Use: "deploy"})
	root.SetArgs([]string{"destroy"})

	err := errorhandler.NewExecutor().Execute(root)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	message := err.Error()
	if !strings.Contains(message, `unknown command "destroy" for "eipmon"`) {
		t.Fatalf("expected unknown command text, got %q", message)
	}

	if strings.Contains(message, "Error: ") {
		t.Fatalf("expected message to strip the 'Error:' prefix, got %q", message)
	}

	if !strings.Contains(message, "Run 'eipmon --help' for usage.") {
		t.Fatalf("expected usage hint to be preserved, got %q", message)
	}
}

func TestCommandErrorUsesCauseWhenStderrIsSilent(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{
		Use:           "eipmon",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return errBoom
		},
	}

	err := executeAndRequireCommandError(t, cmd)
	if err.Error() != "boom" {
		t.Fatalf("expected %q, got %q", "boom", err.Error())
	}
}

func TestCommandErrorConcatenatesDistinctMessageAndCause(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{
		Use:           "eipmon",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.PrintErrln("normalized")

			return errOriginalFailure
		},
	}

	err := executeAndRequireCommandError(t, cmd)
	if err.Error() != "normalized: original failure" {
		t.Fatalf("expected %q, got %q", "normalized: original failure", err.Error())
	}
}

func TestCommandErrorKeepsMessageAlreadyContainingCause(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{
		Use:           "eipmon",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.PrintErrln("boom: original failure")

			return errBoomOriginal
		},
	}

	err := executeAndRequireCommandError(t, cmd)
	if err.Error() != "boom: original failure" {
		t.Fatalf("expected %q, got %q", "boom: original failure", err.Error())
	}
}

func TestCommandErrorUnwrapExposesCause(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{
		Use: "eipmon",
		RunE: func(_ *cobra.Command, _ []string) error {
			return errBoom
		},
	}

	err := errorhandler.NewExecutor().Execute(cmd)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if !errors.Is(err, errBoom) {
		t.Fatal("expected errors.Is to match the original cause")
	}
}

func TestCommandErrorNilReceiver(t *testing.T) {
	t.Parallel()

	var cmdErr *errorhandler.CommandError

	if cmdErr.Error() != "" {
		t.Fatalf("expected empty string, got %q", cmdErr.Error())
	}

	if cmdErr.Unwrap() != nil {
		t.Fatal("expected nil receiver unwrap to return nil")
	}
}

func executeAndRequireCommandError(t *testing.T, cmd *cobra.Command) *errorhandler.CommandError {
	t.Helper()

	err := errorhandler.NewExecutor().Execute(cmd)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var cmdErr *errorhandler.CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected error to be *CommandError, got %T (%v)", err, err)
	}

	return cmdErr
}
