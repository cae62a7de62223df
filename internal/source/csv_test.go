package source

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jittakal/xesgen/internal/errors"
)

func TestReader_Read(t *testing.T) {
	tests := []struct {
		name       string
		reader     *Reader
		input      string
		wantHeader []string
		wantRows   [][]string
	}{
		{
			name:       "plain csv",
			reader:     &Reader{},
			input:      "id,amount,flag\n7,12.50,true\n8,,false\n",
			wantHeader: []string{"id", "amount", "flag"},
			wantRows:   [][]string{{"7", "12.50", "true"}, {"8", "", "false"}},
		},
		{
			name:       "quoted field with separator",
			reader:     &Reader{},
			input:      "name,params\nmain,\"a,b\"\n",
			wantHeader: []string{"name", "params"},
			wantRows:   [][]string{{"main", "a,b"}},
		},
		{
			name:       "byte order mark",
			reader:     &Reader{},
			input:      "\xEF\xBB\xBFid,name\n1,x\n",
			wantHeader: []string{"id", "name"},
			wantRows:   [][]string{{"1", "x"}},
		},
		{
			name:       "semicolon",
			reader:     NewReader(';'),
			input:      "a;b\n1;2\n",
			wantHeader: []string{"a", "b"},
			wantRows:   [][]string{{"1", "2"}},
		},
		{
			name:       "ragged rows are kept",
			reader:     &Reader{},
			input:      "a,b,c\n1,2\n1,2,3,4\n",
			wantHeader: []string{"a", "b", "c"},
			wantRows:   [][]string{{"1", "2"}, {"1", "2", "3", "4"}},
		},
		{
			name:       "strip quotes",
			reader:     &Reader{StripQuotes: true},
			input:      "\"id\",\"name\"\r\n\"1\",\"say \"\"hi\"\"\"\r\n\r\n",
			wantHeader: []string{"id", "name"},
			wantRows:   [][]string{{"1", "say hi"}},
		},
		{
			name:       "trim space",
			reader:     &Reader{TrimSpace: true},
			input:      "id , name\n 1 , x \n",
			wantHeader: []string{"id", "name"},
			wantRows:   [][]string{{"1", "x"}},
		},
		{
			name:       "header only",
			reader:     &Reader{},
			input:      "id,name\n",
			wantHeader: []string{"id", "name"},
			wantRows:   [][]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := tt.reader.Read(strings.NewReader(tt.input))
			require.NoError(t, err)

			assert.Equal(t, tt.wantHeader, table.Header)
			assert.Equal(t, tt.wantRows, table.Rows)
		})
	}
}

func TestReader_EmptyInput(t *testing.T) {
	for _, r := range []*Reader{{}, {StripQuotes: true}} {
		_, err := r.Read(strings.NewReader(""))
		assert.True(t, stderrors.Is(err, errors.ErrEmptyInput), "got %v", err)
	}
}

func TestReader_MalformedQuotes(t *testing.T) {
	_, err := (&Reader{}).Read(strings.NewReader("a,b\n\"unterminated,1\n"))
	assert.Error(t, err)
}

func TestReader_ReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	require.NoError(t, os.WriteFile(path, []byte("method,line\nmain,12\n"), 0o644))

	table, err := (&Reader{}).ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"method", "line"}, table.Header)
	assert.Len(t, table.Rows, 1)

	_, err = (&Reader{}).ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
