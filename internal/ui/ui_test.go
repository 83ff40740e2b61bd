package ui

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	prevOut, prevErr, prevColor := Out, Err, color.NoColor
	Out, Err, color.NoColor = &out, &errOut, true
	t.Cleanup(func() { Out, Err, color.NoColor = prevOut, prevErr, prevColor })
	return &out, &errOut
}

func TestMessages(t *testing.T) {
	out, errOut := capture(t)

	PrintSuccess("created %d tables", 2)
	PrintInfo("using %s", "sqlite")
	PrintError("failed")
	PrintWarning("careful")

	assert.Contains(t, out.String(), "✓ created 2 tables")
	assert.Contains(t, out.String(), "ℹ using sqlite")
	assert.Contains(t, errOut.String(), "✗ failed")
	assert.Contains(t, errOut.String(), "⚠ careful")
}

func TestPrintTable(t *testing.T) {
	out, _ := capture(t)

	require.NoError(t, PrintTable([]string{"Field", "Type"}, [][]string{{"id", "int"}, {"title", "varchar(100)"}}))
	assert.Contains(t, out.String(), "Field")
	assert.Contains(t, out.String(), "varchar(100)")
}

func TestPrintSQL(t *testing.T) {
	out, _ := capture(t)

	PrintSQL("  select * from t")
	PrintSQL("")
	assert.Equal(t, "  select * from t\n\n", out.String())
}

func TestPrintStepAndList(t *testing.T) {
	out, _ := capture(t)

	PrintStep(1, 3, "CREATE TABLE t (id INT)")
	PrintList([]string{"a", "b"})
	assert.Contains(t, out.String(), "[1/3] CREATE TABLE t (id INT)")
	assert.Contains(t, out.String(), "  • a\n  • b\n")
}
