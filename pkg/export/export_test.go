package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Dataset {
	return Dataset{
		Headers: []string{"id", "code", "name"},
		Rows: []map[string]string{
			{"id": "1", "code": "CS101", "name": "Systems"},
			{"id": "2", "code": "CS102", "name": "Networks, Advanced"},
		},
	}
}

func TestCSVRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sample(), "ignored")
	require.NoError(t, err)
	assert.Equal(t, "id,code,name\n1,CS101,Systems\n2,CS102,\"Networks, Advanced\"\n", string(out))
}

func TestCSVRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{}, "")
	assert.Error(t, err)
}

func TestPDFRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sample(), "Subjects")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
