package debug

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitWriter(t *testing.T) {
	t.Cleanup(func() { Init(false) })

	var buf bytes.Buffer
	InitWriter(&buf, false, false)
	Debug("hidden")
	Warn("shown", "driver", "sqlite")

	assert.False(t, Enabled())
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown driver=sqlite")

	buf.Reset()
	InitWriter(&buf, true, true)
	With("component", "test").Debug("visible")

	assert.True(t, Enabled())
	assert.Contains(t, buf.String(), `"msg":"visible"`)
	assert.Contains(t, buf.String(), `"component":"test"`)
}

func TestSetLevelFromString(t *testing.T) {
	t.Cleanup(func() { Init(false) })

	var buf bytes.Buffer
	InitWriter(&buf, false, false)

	SetLevelFromString("debug")
	assert.True(t, Enabled())
	Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")

	SetLevelFromString("error")
	assert.False(t, Enabled())
	buf.Reset()
	Warn("dropped")
	assert.Empty(t, buf.String())

	SetLevelFromString("bogus")
	assert.False(t, Enabled())
}
