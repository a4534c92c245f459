package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRenderKeepsHeaderOrder(t *testing.T) {
	data := Dataset{
		Headers: []string{"Student", "Course", "Value"},
		Rows: []map[string]string{
			{"Student": "Dana Lee", "Course": "MATH101", "Value": "88"},
			{"Student": "Omar Riad", "Value": "91"},
		},
	}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)

	assert.Equal(t, "Student,Course,Value\nDana Lee,MATH101,88\nOmar Riad,,91\n", string(out))
}

func TestCSVExporterRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{Rows: []map[string]string{{"a": "b"}}})
	assert.Error(t, err)
}
