package version_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ordersync/cmd/ordersync/cmd/version"
	"github.com/agentstation/ordersync/internal/cmd/application"
)

func TestVersionCommand(t *testing.T) {
	cmd := version.NewCommand(&application.Mock{
		VersionFunc: func() string { return "1.2.3" },
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "ordersync version 1.2.3")
	assert.Contains(t, out.String(), "built by: test")
}
