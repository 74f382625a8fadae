package carfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestLoader(t *testing.T, stdin string) *Loader {
	t.Helper()
	l, err := NewLoader(strings.NewReader(stdin))
	require.NoError(t, err)
	return l
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "car.json", `{"id":"car-1","checkpoints":[1,2]}`)

	doc, err := newTestLoader(t, "").Load(path)
	require.NoError(t, err)

	obj, ok := doc.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "car-1", obj["id"])
	require.Len(t, obj["checkpoints"], 2)
}

func TestLoad_PreservesNumbers(t *testing.T) {
	path := writeFile(t, "car.json", `{"id":12345678901234567890}`)

	doc, err := newTestLoader(t, "").Load(path)
	require.NoError(t, err)
	require.Equal(t, json.Number("12345678901234567890"), doc.(map[string]any)["id"])
}

func TestLoad_Stdin(t *testing.T) {
	doc, err := newTestLoader(t, `{"id":"from-stdin"}`).Load(StdinPath)
	require.NoError(t, err)
	require.Equal(t, "from-stdin", doc.(map[string]any)["id"])
}

func TestLoad_StdinMissing(t *testing.T) {
	l, err := NewLoader(nil)
	require.NoError(t, err)

	_, err = l.Load(StdinPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "read stdin")
}

func TestLoad_ArchiveByExtension(t *testing.T) {
	// The file does not exist: archives are refused before any read.
	_, err := newTestLoader(t, "").Load(filepath.Join(t.TempDir(), "bundle.car.ZIP"))
	require.ErrorIs(t, err, ErrArchive)
}

func TestLoad_ArchiveByMagic(t *testing.T) {
	path := writeFile(t, "car.json", "PK\x03\x04rest-of-archive")

	_, err := newTestLoader(t, "").Load(path)
	require.ErrorIs(t, err, ErrArchive)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := newTestLoader(t, "").Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Contains(t, err.Error(), "read ")
}

func TestDecode_Malformed(t *testing.T) {
	l := newTestLoader(t, "")

	cases := map[string]string{
		"syntax":   `{"id": }`,
		"trailing": `{"id":"a"} {"id":"b"}`,
		"garbage":  `{"id":"a"} xyz`,
		"empty":    ``,
		"truncate": `{"id":"a"`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := l.Decode("car.json", []byte(input))
			require.ErrorIs(t, err, ErrMalformed)
			require.Contains(t, err.Error(), "car.json")
		})
	}
}

func TestDecode_ScalarRejected(t *testing.T) {
	l := newTestLoader(t, "")

	for _, input := range []string{`"car"`, `42`, `null`, `true`} {
		_, err := l.Decode("car.json", []byte(input))
		require.ErrorIs(t, err, ErrScalarDocument, "input %s", input)
	}
}

func TestDecode_ArrayAccepted(t *testing.T) {
	l := newTestLoader(t, "")

	doc, err := l.Decode("car.json", []byte(`[{"id":"x"}]`))
	require.NoError(t, err)
	require.Equal(t, []any{map[string]any{"id": "x"}}, doc)

	doc, err = l.Decode("car.json", []byte(`[]`))
	require.NoError(t, err)
	require.Empty(t, doc)
}

func TestDecode_WhitespaceAroundObject(t *testing.T) {
	doc, err := newTestLoader(t, "").Decode("car.json", []byte("\n  {\"id\":\"a\"}\n\n"))
	require.NoError(t, err)
	require.Equal(t, "a", doc.(map[string]any)["id"])
}

func TestIsArchivePath(t *testing.T) {
	require.True(t, IsArchivePath("bundle.car.zip"))
	require.True(t, IsArchivePath("/tmp/X.Zip"))
	require.False(t, IsArchivePath("car.json"))
	require.False(t, IsArchivePath("zip.json"))
}
