package table

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf)
	table.WithHeader([]string{"HEADER1", "H2", "h3"})
	table.WithColumnAlignment([]Alignment{AlignLeft, AlignRight, AlignLeft})
	table.WithHeaderAlignment([]Alignment{AlignCenter, AlignCenter, AlignRight})
	table.Append([]string{"ROW1", "ROW2", "foo bar"})
	table.Append([]string{"a", "b", "c"})
	require.NoError(t, table.Render())

	expected := `
+---------+------+---------+
| HEADER1 |  H2  |      h3 |
+---------+------+---------+
| ROW1    | ROW2 | foo bar |
| a       |    b | c       |
+---------+------+---------+
`
	assert.Equal(t, strings.TrimSpace(expected)+"\n", buf.String())
}

func TestColoredTable(t *testing.T) {
	saved := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = saved }()

	var buf bytes.Buffer
	table := NewTable(&buf)
	table.WithHeader([]string{"HEADER1", "HEADER2", "HEADER3"})
	table.WithColumnAlignment([]Alignment{AlignLeft, AlignRight, AlignLeft})
	table.WithHeaderAlignment([]Alignment{AlignCenter, AlignCenter, AlignCenter})
	table.Append([]string{
		color.New(color.Bold).Sprint("Bold text"),
		"12345",
		color.GreenString("Green text"),
	})
	table.Append([]string{
		"Normal",
		color.New(color.Bold).Sprint("999"),
		color.GreenString("More color"),
	})
	require.NoError(t, table.Render())

	result := buf.String()
	assert.Contains(t, result, "\x1b[")

	lines := strings.Split(result, "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	expectedLength := len(lines[0])
	for i := 1; i < len(lines)-1; i++ {
		assert.Equal(t, expectedLength, len(stripAnsi(lines[i])),
			"line %d has incorrect length after stripping ANSI codes", i)
	}
}

func TestRaggedRows(t *testing.T) {
	var buf bytes.Buffer
	NewTable(&buf).
		WithRows([][]string{{"a"}, {"b", "c"}}).
		Render()
	assert.Equal(t, "+---+---+\n| a |   |\n| b | c |\n+---+---+\n", buf.String())
}
