package application_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/klauspost/compress/gzip"
	"github.com/log4j_xml_reader_service/internal/application"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func frame(t *testing.T, input string) []string {
	t.Helper()
	var fragments []string
	for fragment, err := range application.FrameLines(application.Lines(strings.NewReader(input))) {
		require.NoError(t, err)
		fragments = append(fragments, fragment)
	}
	return fragments
}

func TestFrameLines(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "concatenates lines without separators",
			input: "<log4j:event a=\"1\">\n<log4j:message>x</log4j:message>\n</log4j:event>\n",
			want:  []string{`<log4j:event a="1"><log4j:message>x</log4j:message></log4j:event>`},
		},
		{
			name:  "drops prolog and text between events",
			input: "<?xml version=\"1.0\"?>\n<root>\n<log4j:event a=\"1\">\n</log4j:event>\nnoise\n<log4j:event a=\"2\">\n</log4j:event>\n</root>\n",
			want:  []string{`<log4j:event a="1"></log4j:event>`, `<log4j:event a="2"></log4j:event>`},
		},
		{
			name:  "unterminated event at end of input is dropped",
			input: "<log4j:event a=\"1\">\n</log4j:event>\n<log4j:event a=\"2\">\n<log4j:message>partial",
			want:  []string{`<log4j:event a="1"></log4j:event>`},
		},
		{
			name:  "new start discards the unterminated buffer",
			input: "<log4j:event a=\"1\">\n<log4j:message>lost\n<log4j:event a=\"2\">\n</log4j:event>\n",
			want:  []string{`<log4j:event a="2"></log4j:event>`},
		},
		{
			name:  "end marker without start is ignored",
			input: "</log4j:event>\n<log4j:event a=\"1\">\n</log4j:event>\n",
			want:  []string{`<log4j:event a="1"></log4j:event>`},
		},
		{
			name:  "single line event",
			input: "<log4j:event a=\"1\"><log4j:message>m</log4j:message></log4j:event>\n",
			want:  []string{`<log4j:event a="1"><log4j:message>m</log4j:message></log4j:event>`},
		},
		{
			name:  "indented markers and CRLF endings",
			input: "  <log4j:event a=\"1\">\r\n    <log4j:message>m</log4j:message>\r\n  </log4j:event>\r\n",
			want:  []string{`  <log4j:event a="1">    <log4j:message>m</log4j:message>  </log4j:event>`},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, frame(t, tc.input))
		})
	}
}

func TestFrameLines_PropagatesReadErrors(t *testing.T) {
	boom := errors.New("disk on fire")

	var got error
	for _, err := range application.FrameLines(application.Lines(iotest.ErrReader(boom))) {
		got = err
	}
	assert.ErrorIs(t, got, boom)
}

func TestFragments_MissingFileIsCreatedEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.xml")

	count := 0
	for _, err := range application.Fragments(path) {
		require.NoError(t, err)
		count++
	}
	assert.Zero(t, count)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestFragments_IsRepeatable(t *testing.T) {
	path := writeLog(t, "app.xml",
		xmlEvent("INFO", "main", "a", 1000, "one"),
		xmlEvent("WARN", "main", "a", 2000, "two"),
	)

	scan := func() []string {
		var out []string
		for fragment, err := range application.Fragments(path) {
			require.NoError(t, err)
			out = append(out, fragment)
		}
		return out
	}

	first := scan()
	assert.Len(t, first, 2)
	assert.Equal(t, first, scan())
}

func TestFragments_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(xmlEvent("INFO", "main", "a", 1000, "compressed")))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "app.xml.1.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	var fragments []string
	for fragment, err := range application.Fragments(path) {
		require.NoError(t, err)
		fragments = append(fragments, fragment)
	}
	require.Len(t, fragments, 1)
	assert.Contains(t, fragments[0], "compressed")
}

func TestFragments_MissingGzipReadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.xml.gz")

	count := 0
	for _, err := range application.Fragments(path) {
		require.NoError(t, err)
		count++
	}
	assert.Zero(t, count)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLines_StripsByteOrderMark(t *testing.T) {
	input := "\xEF\xBB\xBF" + `<log4j:event logger="a" timestamp="1" level="INFO" thread="main"></log4j:event>` + "\nsecond\n"

	var lines []string
	for line, err := range application.Lines(strings.NewReader(input)) {
		require.NoError(t, err)
		lines = append(lines, line)
	}
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], application.EventStartMarker))
	assert.Equal(t, "second", lines[1])
}

func TestLines_DecodesUTF16WithByteOrderMark(t *testing.T) {
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String("first\r\nsecond\r\n")
	require.NoError(t, err)

	var lines []string
	for line, err := range application.Lines(strings.NewReader(encoded)) {
		require.NoError(t, err)
		lines = append(lines, line)
	}
	assert.Equal(t, []string{"first", "second"}, lines)
}

func TestFragments_ByteOrderMarkKeepsFirstEvent(t *testing.T) {
	path := writeLog(t, "bom.xml",
		"\xEF\xBB\xBF",
		xmlEvent("INFO", "main", "a", 1000, "first"),
		xmlEvent("INFO", "main", "a", 2000, "second"),
	)

	var fragments []string
	for fragment, err := range application.Fragments(path) {
		require.NoError(t, err)
		fragments = append(fragments, fragment)
	}
	require.Len(t, fragments, 2)
	assert.Contains(t, fragments[0], "first")
	assert.Contains(t, fragments[1], "second")
}
