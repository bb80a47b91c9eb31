package internal

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenize(t *testing.T, content string) ([]*Token, error) {
	t.Helper()
	tokenizer := &Tokenizer{}
	tokenizer.Reset()
	return tokenizer.Tokenize(bytes.NewReader([]byte(content)))
}

func TestTokenizer_Literals(t *testing.T) {
	testData := []struct {
		Content  string
		TP       TokenType
		Expected interface{}
	}{
		{Content: "42", TP: IntegerTP, Expected: int64(42)},
		{Content: "0FFH", TP: IntegerTP, Expected: int64(255)},
		{Content: "0ffH", TP: IntegerTP, Expected: int64(255)},
		{Content: "3.14", TP: RealTP, Expected: 3.14},
		{Content: "1.5E3", TP: RealTP, Expected: 1500.0},
		{Content: "2.5e-1", TP: RealTP, Expected: 0.25},
		{Content: "12.", TP: RealTP, Expected: 12.0},
		{Content: "0AX", TP: StringTP, Expected: "\n"},
		{Content: "41X", TP: StringTP, Expected: "A"},
		{Content: `"hello world"`, TP: StringTP, Expected: "hello world"},
		{Content: `""`, TP: StringTP, Expected: ""},
		{Content: "abc_1", TP: IdentifierTP, Expected: "abc_1"},
		{Content: "begin", TP: IdentifierTP, Expected: "begin"},
	}
	for _, data := range testData {
		tokens, err := tokenize(t, data.Content)
		require.Nil(t, err, data.Content)
		require.Len(t, tokens, 2, data.Content)
		assert.Equal(t, data.TP, tokens[0].tp, data.Content)
		assert.Equal(t, data.Expected, tokens[0].Value(data.TP), data.Content)
		assert.Equal(t, EOFTP, tokens[1].tp, data.Content)
	}
}

func TestTokenizer_Symbols(t *testing.T) {
	tokens, err := tokenize(t, "+ - * / & ~ # ^ ; , | ( ) [ ] { } := : . .. < <= > >= =")
	require.Nil(t, err)
	expected := []TokenType{
		AddTP, MinusTP, MultiplyTP, DivideTP, AndTP, NotTP, NotEqualTP, CaretTP, SemiColonTP, CommaTP,
		BarTP, LeftParentThesesTP, RightParentThesesTP, LeftSquareBracketTP, RightSquareBracketTP,
		LeftBraceTP, RightBraceTP, AssignTP, ColonTP, DotTP, RangeTP, LessTP, LessEqualTP, GreaterTP,
		GreaterEqualTP, EqualTP, EOFTP,
	}
	require.Len(t, tokens, len(expected))
	for i, tp := range expected {
		assert.Equal(t, tp, tokens[i].tp, "token %d", i)
	}
}

func TestTokenizer_Keywords(t *testing.T) {
	for name, tp := range keyWordTokenTPMap {
		tokens, err := tokenize(t, name)
		require.Nil(t, err, name)
		assert.Equal(t, tp, tokens[0].tp, name)
		assert.Equal(t, name, tp.String())
	}
	tokens, err := tokenize(t, "TYPE T = INTEGER;")
	require.Nil(t, err)
	assert.Equal(t, TypeKeywordTP, tokens[0].tp)
}

func TestTokenizer_RangeIsNotReal(t *testing.T) {
	tokens, err := tokenize(t, "1..10")
	require.Nil(t, err)
	require.Len(t, tokens, 4)
	assert.Equal(t, IntegerTP, tokens[0].tp)
	assert.Equal(t, RangeTP, tokens[1].tp)
	assert.Equal(t, IntegerTP, tokens[2].tp)
	assert.Equal(t, int64(10), tokens[2].intValue)
}

func TestTokenizer_Comments(t *testing.T) {
	testData := []struct {
		Content string
		Count   int
	}{
		{Content: "(* a (* b *) c *)", Count: 1},
		{Content: "(**)", Count: 1},
		{Content: "x (* comment *) y", Count: 3},
		{Content: "(* multi\nline *) x", Count: 2},
		{Content: "x*y", Count: 4},
	}
	for _, data := range testData {
		tokens, err := tokenize(t, data.Content)
		require.Nil(t, err, data.Content)
		assert.Len(t, tokens, data.Count, data.Content)
		assert.Equal(t, EOFTP, tokens[len(tokens)-1].tp, data.Content)
	}
}

func TestTokenizer_Positions(t *testing.T) {
	tokens, err := tokenize(t, "MODULE M;\n(* one\ntwo *)  x := 1")
	require.Nil(t, err)
	require.Len(t, tokens, 7)
	assert.Equal(t, Pos{Line: 1, Column: 1}, tokens[0].Pos())
	assert.Equal(t, Pos{Line: 1, Column: 8}, tokens[1].Pos())
	assert.Equal(t, Pos{Line: 1, Column: 9}, tokens[2].Pos())
	assert.Equal(t, Pos{Line: 3, Column: 9}, tokens[3].Pos())
	assert.Equal(t, Pos{Line: 3, Column: 11}, tokens[4].Pos())
	assert.Equal(t, Pos{Line: 3, Column: 14}, tokens[5].Pos())
}

func TestTokenizer_Errors(t *testing.T) {
	testData := []struct {
		Content string
		Line    int
		Msg     string
	}{
		{Content: "(* unterminated", Line: 1, Msg: "unterminated comment starting at line 1"},
		{Content: "x\n\n(* a (* b *)\n", Line: 3, Msg: "unterminated comment starting at line 3"},
		{Content: "\"abc\ndef\"", Line: 1, Msg: "unterminated string, a string cannot span lines"},
		{Content: "\"abc", Line: 1, Msg: "unterminated string"},
		{Content: "x := 1 ? 2", Line: 1, Msg: "unexpected character '?'"},
		{Content: "99999999999999999999", Line: 1, Msg: "invalid integer literal 99999999999999999999"},
		{Content: "1A", Line: 1, Msg: "invalid integer literal 1A"},
		{Content: "1FFFX", Line: 1, Msg: "invalid character literal 1FFFX"},
		{Content: "1A.5", Line: 1, Msg: "invalid real literal 1A.5"},
		{Content: "1.5E", Line: 1, Msg: "invalid real literal 1.5E"},
	}
	for _, data := range testData {
		_, err := tokenize(t, data.Content)
		require.NotNil(t, err, data.Content)
		var lexicalErr *LexicalError
		require.True(t, errors.As(err, &lexicalErr), data.Content)
		assert.Equal(t, data.Line, lexicalErr.Line, data.Content)
		assert.Equal(t, data.Msg, lexicalErr.Msg, data.Content)
	}
}

func TestTokenizer_Reset(t *testing.T) {
	tokenizer := &Tokenizer{}
	_, err := tokenizer.Tokenize(bytes.NewReader([]byte("a b")))
	require.Nil(t, err)
	tokenizer.Reset()
	tokens, err := tokenizer.Tokenize(bytes.NewReader([]byte("c")))
	require.Nil(t, err)
	assert.Len(t, tokens, 2)
	assert.Equal(t, "c", tokens[0].content)
}
