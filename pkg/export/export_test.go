package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() Document {
	table := Dataset{Headers: []string{"Subject", "Final", "Grade"}}
	table.AddRow("Mathematics", "76.00", "B+")
	table.AddRow("Biology", "91.50", "A+")
	return Document{Title: "Term report", Summary: []string{"Overall average: 83.75"}, Table: table}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDocument())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "# Overall average: 83.75", lines[0])
	assert.Equal(t, "Subject,Final,Grade", lines[1])
	assert.Equal(t, "Mathematics,76.00,B+", lines[2])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Document{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDocument())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestDatasetAddRowIgnoresExtraValues(t *testing.T) {
	table := Dataset{Headers: []string{"A"}}
	table.AddRow("1", "2")
	require.Len(t, table.Rows, 1)
	assert.Equal(t, map[string]string{"A": "1"}, table.Rows[0])
}
