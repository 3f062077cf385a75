package pinfile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePinfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundles.pin")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParser_Parse(t *testing.T) {
	path := writePinfile(t, `
# bundles for the maya pipeline
descry:descriptor:store?name=tk-maya&version=v1.0.0 v1.x.x

descry:descriptor:git?path=git@example.com:bundles/tk-publish.git&version=v0.2.0
`)

	reqs, err := NewParser().Parse(path)
	require.NoError(t, err)

	assert.Equal(t, []Requirement{
		{URI: "descry:descriptor:store?name=tk-maya&version=v1.0.0", Pattern: "v1.x.x"},
		{URI: "descry:descriptor:git?path=git@example.com:bundles/tk-publish.git&version=v0.2.0"},
	}, reqs)
}

func TestParser_Parse_TooManyFields(t *testing.T) {
	path := writePinfile(t, "descry:descriptor:store?name=a v1.x.x extra\n")

	_, err := NewParser().Parse(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestParser_Parse_Missing(t *testing.T) {
	_, err := NewParser().Parse(filepath.Join(t.TempDir(), "nope.pin"))
	assert.Error(t, err)
}

func TestEmitter_Emit(t *testing.T) {
	var buf bytes.Buffer
	err := NewEmitter(&buf).Emit([]string{
		"descry:descriptor:store?name=tk-nuke&version=v2.0.0",
		"descry:descriptor:store?name=tk-maya&version=v1.2.3",
	})
	require.NoError(t, err)

	want := "# descry pinfile format: version 1.0\n" +
		"descry:descriptor:store?name=tk-maya&version=v1.2.3\n" +
		"descry:descriptor:store?name=tk-nuke&version=v2.0.0\n"
	assert.Equal(t, want, buf.String())
}

func TestEmitter_Emit_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewEmitter(&buf).Emit(nil))
	assert.Equal(t, "# descry pinfile format: version 1.0\n", buf.String())
}
