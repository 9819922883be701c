package terminal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func plainConsole() (*Console, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Console{Out: &buf, Plain: true}, &buf
}

func TestConsoleMessages(t *testing.T) {
	c, buf := plainConsole()
	c.Success("Deployment %q created", "etl/nightly")
	c.Warn("no work pool")
	c.Error("boom")
	c.Panel("Deploying %s", "nightly")

	assert.Equal(t, "Deployment \"etl/nightly\" created\nno work pool\nboom\n[ Deploying nightly ]\n", buf.String())
}

func TestConsoleTable(t *testing.T) {
	c, buf := plainConsole()
	c.Table([]string{"name", "state"}, [][]string{{"brave-otter", "RUNNING"}, {"calm-fox", "COMPLETED"}})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, lines[1], "brave-otter")
	assert.Equal(t, strings.Index(lines[0], "STATE"), strings.Index(lines[1], "RUNNING"), "columns should align")
}

func TestConsoleKeyValues(t *testing.T) {
	c, buf := plainConsole()
	c.KeyValues([][2]string{{"Version", "1.0.0"}, {"OS/Arch", "linux/amd64"}}, 20)
	assert.Equal(t, "Version:             1.0.0\nOS/Arch:             linux/amd64\n", buf.String())
}

func TestConsoleTree(t *testing.T) {
	c, buf := plainConsole()
	tree := NewTree("etl")
	dep := tree.AddBranch("nightly")
	dep.AddNode("brave-otter COMPLETED")
	c.PrintTree(tree)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "etl\n"))
	assert.Contains(t, out, "nightly")
	assert.Contains(t, out, "brave-otter COMPLETED")
}
