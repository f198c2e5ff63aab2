package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableRender(t *testing.T) {
	table := NewTable("CHECK", "STATUS")
	table.AddRow("datastore", "ok")
	table.AddRow("cache", "unreachable")

	var buf bytes.Buffer
	table.Render(&buf)

	out := buf.String()
	assert.Contains(t, out, "CHECK")
	assert.Contains(t, out, "datastore")
	assert.Contains(t, out, "unreachable")
}
