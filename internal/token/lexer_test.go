package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeIdentifiersAndKeywords(t *testing.T) {
	toks, err := Tokenize("let x = query users select id")
	require.NoError(t, err)

	require.True(t, toks[0].IsKeyword("let"))
	assert.Equal(t, KindIdentifier, toks[1].Kind)
	assert.Equal(t, "x", toks[1].Text)
	assert.Equal(t, KindOperator, toks[2].Kind)
	assert.True(t, toks[3].IsQueryKeyword("query"))
	assert.True(t, toks[4].IsQueryKeyword("select"))
	assert.Equal(t, KindIdentifier, toks[5].Kind)
	assert.Equal(t, KindEOF, toks[len(toks)-1].Kind)
}

func TestTokenizeNumberLiterals(t *testing.T) {
	toks, err := Tokenize("1_000 3.14 42")
	require.NoError(t, err)

	assert.Equal(t, KindUInt, toks[0].Kind)
	assert.Equal(t, uint64(1000), toks[0].UInt)

	assert.Equal(t, KindFloat, toks[1].Kind)
	assert.InDelta(t, 3.14, toks[1].Float, 1e-9)

	assert.Equal(t, KindUInt, toks[2].Kind)
	assert.Equal(t, uint64(42), toks[2].UInt)
}

func TestTokenizeTrailingUnderscoreFails(t *testing.T) {
	_, err := Tokenize("1_")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot end with")
}

func TestTokenizeStringEscapes(t *testing.T) {
	toks, err := Tokenize(`"a\nb\tc"`)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\tc", toks[0].String)
}

func TestTokenizeUnterminatedStringFails(t *testing.T) {
	_, err := Tokenize(`"abc`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated string")
}

func TestTokenizeMultiCharOperatorsLongestFirst(t *testing.T) {
	toks, err := Tokenize("a == b && c <= d")
	require.NoError(t, err)

	var ops []string
	for _, tok := range toks {
		if tok.Kind == KindOperator {
			ops = append(ops, tok.Text)
		}
	}
	assert.Equal(t, []string{"==", "&&", "<="}, ops)
}

func TestTokenizeSymbols(t *testing.T) {
	toks, err := Tokenize("create table t { id: u64 }")
	require.NoError(t, err)

	assert.True(t, toks[0].IsSDLKeyword("create"))
	assert.True(t, toks[1].IsSDLKeyword("table"))
	assert.Equal(t, KindIdentifier, toks[2].Kind)
	assert.True(t, toks[3].IsSymbol("{"))
	assert.True(t, toks[5].IsSymbol(":"))
	assert.True(t, toks[7].IsSymbol("}"))
}
