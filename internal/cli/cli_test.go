package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"orderflow/internal/core/domain/services"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGraph_Default(t *testing.T) {
	out, err := run(t, "graph")

	require.NoError(t, err)
	assert.Contains(t, out, "DESIGN_APPROVAL")
	assert.Contains(t, out, "Submit for approval")
	assert.Contains(t, out, "QC_INSPECTOR")
	assert.Contains(t, out, "100%")
}

func TestProgress(t *testing.T) {
	out, err := run(t, "progress", "qc")
	require.NoError(t, err)
	assert.Equal(t, "QC: 70%\n", out)

	out, err = run(t, "progress", "CANCELLED")
	require.NoError(t, err)
	assert.Contains(t, out, "CANCELLED: 0% (terminal)")

	_, err = run(t, "progress", "SHIPPED")
	assert.Error(t, err)
}

func TestTransitions(t *testing.T) {
	out, err := run(t, "transitions", "DESIGN_PENDING", "--role", "designer")
	require.NoError(t, err)
	assert.Contains(t, out, "DESIGN_APPROVAL")
	assert.NotContains(t, out, "CANCELLED")

	out, err = run(t, "transitions", "CLOSED", "--role", "ADMIN")
	require.NoError(t, err)
	assert.Contains(t, out, "ADMIN has no transitions from CLOSED")

	_, err = run(t, "transitions", "QC")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	var buf bytes.Buffer
	require.NoError(t, services.EncodeWorkflowDefinition(&buf, services.DefaultWorkflowDefinition()))
	require.NoError(t, os.WriteFile(good, buf.Bytes(), 0o600))

	out, err := run(t, "validate", "--file", good)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "OK "))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("transitions:\n  CANCELLED: [INTAKE]\n"), 0o600))

	out, err = run(t, "validate", "--file", bad)
	require.Error(t, err)
	assert.Contains(t, out, "INVALID")
	assert.Contains(t, err.Error(), "terminal")

	_, err = run(t, "validate")
	assert.Error(t, err)
}

func TestExportRoundTrip(t *testing.T) {
	out, err := run(t, "export")
	require.NoError(t, err)

	def, err := services.LoadWorkflowDefinition(strings.NewReader(out))
	require.NoError(t, err)
	_, err = services.NewOrderWorkflow(def)
	assert.NoError(t, err)
}
