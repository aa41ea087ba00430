package cmd_test

import (
	"bytes"
	"errors"
	"os"
	"testing"

	dockerclient "github.com/docker/docker/client"
	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/samber/do/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"k8s.io/client-go/kubernetes"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/eip-monitor/eipmon/pkg/cli/cmd"
	"github.com/eip-monitor/eipmon/pkg/client/git"
	"github.com/eip-monitor/eipmon/pkg/config"
	"github.com/eip-monitor/eipmon/pkg/di"
)

var errRootTest = errors.New("boom")

func TestMain(m *testing.M) {
	exitCode := m.Run()

	_, err := snaps.Clean(m, snaps.CleanOpts{Sort: true})
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to clean snapshots: " + err.Error() + "\n")

		os.Exit(1)
	}

	os.Exit(exitCode)
}

func TestNewRootCmdVersionFormatting(t *testing.T) {
	t.Parallel()

	version := "1.2.3"
	commit := "abc123"
	date := "2026-08-25"
	root := cmd.NewRootCmd(version, commit, date)

	expectedVersion := version + " (Built on " + date + " from Git SHA " + commit + ")"
	if root.Version != expectedVersion {
		t.Fatalf("unexpected version string. want %q, got %q", expectedVersion, root.Version)
	}
}

func TestExecuteShowsHelp(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	root := cmd.NewRootCmd("", "", "")
	root.SetOut(&out)
	root.SetArgs([]string{})

	_ = root.Execute()

	snaps.MatchSnapshot(t, out.String())
}

func TestExecuteShowsHelpFlag(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	root := cmd.NewRootCmd("", "", "")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--help"})

	_ = root.Execute()

	snaps.MatchSnapshot(t, out.String())
}

func TestExecuteShowsVersion(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	root := cmd.NewRootCmd("1.2.3", "abc123", "2026-08-25")
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})

	_ = root.Execute()

	snaps.MatchSnapshot(t, out.String())
}

func TestVersionSubcommandPrintsRootVersion(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	root := cmd.NewRootCmd("1.2.3", "abc123", "2026-08-25")
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	err := root.Execute()
	if err != nil {
		t.Fatalf("expected no error but got %v", err)
	}

	expected := "1.2.3 (Built on 2026-08-25 from Git SHA abc123)\n"
	if out.String() != expected {
		t.Fatalf("unexpected version output. want %q, got %q", expected, out.String())
	}
}

func TestNewRootCmdRegistersSubcommands(t *testing.T) {
	t.Parallel()

	root := cmd.NewRootCmd("test", "test", "test")

	expected := []string{
		"build", "push", "deploy", "monitoring", "all", "test",
		"logs", "clean", "serve", "dashboard", "release", "version",
	}

	for _, name := range expected {
		subCmd, _, err := root.Find([]string{name})
		if err != nil {
			t.Fatalf("expected subcommand %q to be registered: %v", name, err)
		}

		if subCmd == root {
			t.Fatalf("expected subcommand %q to resolve past the root", name)
		}
	}
}

func TestNewRootCmdNamespaceFlagDefault(t *testing.T) {
	t.Parallel()

	root := cmd.NewRootCmd("test", "test", "test")

	flag := root.PersistentFlags().Lookup(config.FlagNamespace)
	if flag == nil {
		t.Fatalf("expected persistent flag %q to exist", config.FlagNamespace)
	}

	got, err := root.PersistentFlags().GetString(config.FlagNamespace)
	if err != nil {
		t.Fatalf("expected to read %q flag: %v", config.FlagNamespace, err)
	}

	if got != config.DefaultNamespace {
		t.Fatalf(
			"expected %q to default to %q, got %q",
			config.FlagNamespace, config.DefaultNamespace, got,
		)
	}
}

func TestExecuteReturnsError(t *testing.T) {
	t.Parallel()

	failing := newTestCommand("fail", func(_ *cobra.Command, _ []string) error {
		return errRootTest
	})

	root := cmd.NewRootCmd("test", "test", "test")
	root.SetArgs([]string{"fail"})
	root.AddCommand(failing)

	err := root.Execute()
	if err == nil {
		t.Fatal("expected error but got none")
	}

	if !errors.Is(err, errRootTest) {
		t.Fatalf("expected error to be %v, got %v", errRootTest, err)
	}
}

func TestExecuteWithNonexistentCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	root := cmd.NewRootCmd("test", "test", "test")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"nonexistent"})

	err := root.Execute()
	if err == nil {
		t.Fatal("expected error but got none")
	}

	snaps.MatchSnapshot(t, out.String())
}

func TestExecuteSuccess(t *testing.T) {
	t.Parallel()

	succeeding := newTestCommand("ok", func(_ *cobra.Command, _ []string) error {
		return nil
	})

	root := cmd.NewRootCmd("test", "test", "test")
	root.SetArgs([]string{"ok"})
	root.AddCommand(succeeding)

	err := root.Execute()
	if err != nil {
		t.Fatalf("expected no error but got %v", err)
	}
}

func TestExecuteWrapperSuccess(t *testing.T) {
	t.Parallel()

	succeeding := newTestCommand("ok", func(_ *cobra.Command, _ []string) error {
		return nil
	})

	rootCmd := cmd.NewRootCmd("test", "test", "test")
	rootCmd.SetArgs([]string{"ok"})
	rootCmd.AddCommand(succeeding)

	err := cmd.Execute(rootCmd)
	if err != nil {
		t.Fatalf("expected no error but got %v", err)
	}
}

func TestExecuteWrapperError(t *testing.T) {
	t.Parallel()

	failing := newTestCommand("fail", func(_ *cobra.Command, _ []string) error {
		return errRootTest
	})

	rootCmd := cmd.NewRootCmd("test", "test", "test")
	rootCmd.SetArgs([]string{"fail"})
	rootCmd.AddCommand(failing)

	err := cmd.Execute(rootCmd)
	if err == nil {
		t.Fatal("expected error but got none")
	}

	if !errors.Is(err, errRootTest) {
		t.Fatalf("expected error to wrap %v, got %v", errRootTest, err)
	}
}

// newTestCommand creates a minimal cobra command for exercising Execute paths.
func newTestCommand(use string, runE func(*cobra.Command, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:  use,
		RunE: runE,
	}
}

// newTestRuntime builds a runtime whose dependencies are the given fakes, so
// commands under test never reach for a kubeconfig or the Docker socket.
func newTestRuntime(modules ...di.Module) *di.Runtime {
	return di.New(modules...)
}

func withClientset(clientset kubernetes.Interface) di.Module {
	return func(injector di.Injector) error {
		do.Provide(injector, func(di.Injector) (kubernetes.Interface, error) {
			return clientset, nil
		})

		return nil
	}
}

func withCRClient(crClient ctrlclient.Client) di.Module {
	return func(injector di.Injector) error {
		do.Provide(injector, func(di.Injector) (ctrlclient.Client, error) {
			return crClient, nil
		})

		return nil
	}
}

func withFilesystem(fsys afero.Fs) di.Module {
	return func(injector di.Injector) error {
		do.Provide(injector, func(di.Injector) (afero.Fs, error) {
			return fsys, nil
		})

		return nil
	}
}

func withDockerEngine(engine dockerclient.APIClient) di.Module {
	return func(injector di.Injector) error {
		do.Provide(injector, func(di.Injector) (dockerclient.APIClient, error) {
			return engine, nil
		})

		return nil
	}
}

func withGitClient(gitClient git.Interface) di.Module {
	return func(injector di.Injector) error {
		do.Provide(injector, func(di.Injector) (git.Interface, error) {
			return gitClient, nil
		})

		return nil
	}
}
