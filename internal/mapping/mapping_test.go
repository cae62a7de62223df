package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jittakal/xesgen/pkg/event"
)

func TestResolve(t *testing.T) {
	lookup := MapLookup{
		"event.conceptName": "method",
		"event.class":       "class",
		"event.package":     "",
		"event.lineNr":      "line",
		"unrelated.key":     "ignored",
	}

	table := Resolve(lookup)

	require.Equal(t, 3, table.Len())
	assert.Equal(t, []Entry{
		{Key: KeyConceptName, Column: "method", Kind: event.KindLiteral},
		{Key: KeyCalleeClass, Column: "class", Kind: event.KindLiteral},
		{Key: KeyCalleeLineNr, Column: "line", Kind: event.KindDiscrete},
	}, table.Entries())
	assert.False(t, table.Targets(""), "empty configured value must be omitted")
}

func TestResolve_NoEmptyTargets(t *testing.T) {
	lookup := MapLookup{}
	for i, sk := range SemanticKeys {
		if i%2 == 0 {
			lookup[sk.ConfigKey] = ""
		} else {
			lookup[sk.ConfigKey] = "col"
		}
	}

	for _, e := range Resolve(lookup).Entries() {
		assert.NotEmpty(t, e.Column, "entry %s has an empty target", e.Key)
	}
}

func TestResolve_SharedTargets(t *testing.T) {
	table := Resolve(MapLookup{
		"event.conceptName": "name",
		"event.method":      "name",
	})

	assert.Equal(t, 2, table.Len())
	assert.True(t, table.Targets("name"))
	assert.False(t, table.Targets("other"))
}

func TestResolve_NilLookup(t *testing.T) {
	table := Resolve(nil)
	assert.Equal(t, 0, table.Len())
	assert.Empty(t, table.Entries())
}

func TestResolve_ContentEquality(t *testing.T) {
	// a value built at runtime must compare equal to a literal
	empty := string([]byte{})
	table := Resolve(MapLookup{"event.type": empty})

	assert.Equal(t, 0, table.Len())
}

func TestSemanticKeys(t *testing.T) {
	assert.Len(t, SemanticKeys, 21)
	assert.Equal(t, "event.conceptName", SemanticKeys[0].ConfigKey)
	assert.Equal(t, KeyConceptName, SemanticKeys[0].AttributeKey)

	seen := make(map[string]bool)
	for _, sk := range SemanticKeys {
		assert.False(t, seen[sk.AttributeKey], "duplicate semantic key %s", sk.AttributeKey)
		seen[sk.AttributeKey] = true
	}
}

func TestTable_NilSafe(t *testing.T) {
	var table *Table

	assert.Equal(t, 0, table.Len())
	assert.Nil(t, table.Entries())
	assert.False(t, table.Targets("x"))
}

func TestChain(t *testing.T) {
	chain := Chain{
		nil,
		MapLookup{"log.hasData": "", "author.name": "file"},
		MapLookup{"log.hasData": "true", "author.name": "config"},
	}

	v, ok := chain.Get("author.name")
	assert.True(t, ok)
	assert.Equal(t, "file", v)

	v, ok = chain.Get("log.hasData")
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	_, ok = chain.Get("missing")
	assert.False(t, ok)
}
