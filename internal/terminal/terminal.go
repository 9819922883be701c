// Package terminal renders CLI output: styled messages, tables and trees.
package terminal

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/gosuri/uitable"
	"github.com/xlab/treeprint"
	klog "k8s.io/klog/v2"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	panelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).
			Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("4")).Padding(0, 1)
)

// Console writes human oriented command output. Plain disables styling,
// which keeps output stable for tests and pipes.
type Console struct {
	Out   io.Writer
	Plain bool
}

// NewConsole returns a console writing to w.
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{Out: w}
}

func (c *Console) render(s lipgloss.Style, text string) string {
	if c.Plain {
		return text
	}
	return s.Render(text)
}

// Println prints unstyled text.
func (c *Console) Println(a ...any) {
	fmt.Fprintln(c.Out, a...)
}

// Printf prints unstyled formatted text.
func (c *Console) Printf(format string, a ...any) {
	fmt.Fprintf(c.Out, format, a...)
}

// Success prints text in green.
func (c *Console) Success(format string, a ...any) {
	fmt.Fprintln(c.Out, c.render(successStyle, fmt.Sprintf(format, a...)))
}

// Warn prints text in yellow.
func (c *Console) Warn(format string, a ...any) {
	fmt.Fprintln(c.Out, c.render(warningStyle, fmt.Sprintf(format, a...)))
}

// Error prints text in red.
func (c *Console) Error(format string, a ...any) {
	fmt.Fprintln(c.Out, c.render(errorStyle, fmt.Sprintf(format, a...)))
}

// Panel prints text framed in a blue box.
func (c *Console) Panel(format string, a ...any) {
	text := fmt.Sprintf(format, a...)
	if c.Plain {
		fmt.Fprintf(c.Out, "[ %s ]\n", text)
		return
	}
	fmt.Fprintln(c.Out, panelStyle.Render(text))
}

// Table prints rows under an upper-cased header row.
func (c *Console) Table(header []string, rows [][]string) {
	table := uitable.New()
	table.MaxColWidth = 80
	h := make([]any, len(header))
	for i, col := range header {
		h[i] = strings.ToUpper(col)
	}
	table.AddRow(h...)
	for _, r := range rows {
		cells := make([]any, len(r))
		for i, v := range r {
			cells[i] = v
		}
		table.AddRow(cells...)
	}
	fmt.Fprintln(c.Out, table)
}

// KeyValues prints an aligned "Key: value" block; keys are padded to width.
func (c *Console) KeyValues(pairs [][2]string, width int) {
	for _, kv := range pairs {
		key := kv[0] + ":"
		fmt.Fprintf(c.Out, "%-*s %s\n", width, key, kv[1])
	}
}

// Tree is a printable hierarchy.
type Tree = treeprint.Tree

// NewTree returns a tree rooted at name.
func NewTree(name string) Tree {
	t := treeprint.New()
	t.SetValue(name)
	return t
}

// PrintTree writes t.
func (c *Console) PrintTree(t Tree) {
	fmt.Fprint(c.Out, t.String())
}

// QuietKlog limits klog noise from k8s client-go while a command streams job output.
func QuietKlog() {
	quietKlog.Do(func() {
		klog.InitFlags(nil)
		_ = flag.Set("stderrthreshold", "FATAL")
		_ = flag.Set("v", "0")
		_ = flag.Set("logtostderr", "false")
		_ = flag.Set("alsologtostderr", "false")
	})
}

var quietKlog sync.Once
