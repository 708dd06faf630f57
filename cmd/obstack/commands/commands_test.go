package commands

import (
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootRegistersAllCommands(t *testing.T) {
	t.Parallel()

	root := Root()
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.ElementsMatch(t, []string{"deploy", "destroy", "provision", "doctor", "version"}, names)
}

func TestDeployFlagDefaults(t *testing.T) {
	t.Parallel()

	cmd := Deploy()
	tests := []struct {
		flag string
		want string
	}{
		{"auto-port-forward", "false"},
		{"no-port-forward", "false"},
		{"skip-prepull", "false"},
		{"timeout", "600"},
		{"kubeconfig", ""},
		{"context", ""},
		{"values", "values"},
	}
	for _, tt := range tests {
		flag := cmd.Flags().Lookup(tt.flag)
		require.NotNil(t, flag, tt.flag)
		assert.Equal(t, tt.want, flag.DefValue, tt.flag)
	}
}

func TestDeployPortForwardFlagsMutuallyExclusive(t *testing.T) {
	t.Parallel()

	cmd := Deploy()
	cmd.RunE = func(_ *cobra.Command, _ []string) error { return nil }
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--auto-port-forward", "--no-port-forward"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}

func TestDeployRejectsPositionalArgs(t *testing.T) {
	t.Parallel()

	cmd := Deploy()
	cmd.RunE = func(_ *cobra.Command, _ []string) error { return nil }
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"extra"})
	err := cmd.Execute()
	require.Error(t, err)
}

func TestProvisionConfigFlagDefault(t *testing.T) {
	t.Parallel()

	flag := Provision().Flags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "obstack.conf", flag.DefValue)
	assert.Equal(t, "c", flag.Shorthand)
}
