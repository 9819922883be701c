package shell

import (
	"bytes"
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	ctx := context.Background()
	var live bytes.Buffer
	cmd := Script(`echo "hello $WHO"; echo oops >&2; exit 2`, t.TempDir(), map[string]string{"WHO": "flows"})
	cmd.Stdout = &live
	res, err := ExecRunner{}.Run(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, 2, res.ExitCode)
	assert.Equal(t, "hello flows\n", res.Stdout)
	assert.Equal(t, "oops\n", res.Stderr)
	assert.Equal(t, "hello flows\n", live.String())
}

func TestExecRunner_NotFound(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), &Command{Name: "definitely-not-a-command-xyz"})
	assert.Error(t, err)
	_, err = ExecRunner{}.Run(context.Background(), &Command{})
	assert.Error(t, err)
}

func TestCommandString(t *testing.T) {
	c := &Command{Name: "dbt", Args: []string{"run", "--profiles-dir", "/p"}}
	assert.Equal(t, "dbt run --profiles-dir /p", c.String())
}
