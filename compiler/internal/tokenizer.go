package internal

import (
	"fmt"
	"io"
	"io/ioutil"
	"strconv"

	"github.com/xiaobogaga/oberon/util"
)

// A simple Tokenizer for oberon.

// Oberon language has those elements:
// * KeyWord: ARRAY, BEGIN, BY, CASE, CONST, DIV, DO, ELSE, ELSIF, END, FALSE, FOR, IF, IMPORT, IN, IS,
// 			MOD, MODULE, NIL, OF, OR, POINTER, PROCEDURE, RECORD, REPEAT, RETURN, THEN, TO, TRUE, TYPE,
// 			UNTIL, VAR, WHILE.
// * Symbol: + - * / & ~ # ^ ; , | ( ) [ ] { } := : . .. < <= > >= =
// * Constant: integer (12, 0FFH), real (3.14, 1.0E-3), string ("xxx"), character (0AX).
// * Identifier: a letter followed by letters, digits or underscores.
// * Comment: (* *), comments can nest.

type TokenType int

const (
	ArrayTP              TokenType = iota // ARRAY
	BeginTP                               // BEGIN
	ByTP                                  // BY
	CaseTP                                // CASE
	ConstTP                               // CONST
	DivTP                                 // DIV
	DoTP                                  // DO
	ElseTP                                // ELSE
	ElsifTP                               // ELSIF
	EndTP                                 // END
	FalseTP                               // FALSE
	ForTP                                 // FOR
	IfTP                                  // IF
	ImportTP                              // IMPORT
	InTP                                  // IN
	IsTP                                  // IS
	ModTP                                 // MOD
	ModuleTP                              // MODULE
	NilTP                                 // NIL
	OfTP                                  // OF
	OrTP                                  // OR
	PointerTP                             // POINTER
	ProcedureTP                           // PROCEDURE
	RecordTP                              // RECORD
	RepeatTP                              // REPEAT
	ReturnTP                              // RETURN
	ThenTP                                // THEN
	ToTP                                  // TO
	TrueTP                                // TRUE
	TypeKeywordTP                         // TYPE
	UntilTP                               // UNTIL
	VarTP                                 // VAR
	WhileTP                               // WHILE
	AddTP                                 // +
	MinusTP                               // -
	MultiplyTP                            // *
	DivideTP                              // /
	AndTP                                 // &
	NotTP                                 // ~
	NotEqualTP                            // #
	CaretTP                               // ^
	SemiColonTP                           // ;
	CommaTP                               // ,
	BarTP                                 // |
	LeftParentThesesTP                    // (
	RightParentThesesTP                   // )
	LeftSquareBracketTP                   // [
	RightSquareBracketTP                  // ]
	LeftBraceTP                           // {
	RightBraceTP                          // }
	AssignTP                              // :=
	ColonTP                               // :
	DotTP                                 // .
	RangeTP                               // ..
	LessTP                                // <
	LessEqualTP                           // <=
	GreaterTP                             // >
	GreaterEqualTP                        // >=
	EqualTP                               // =
	IntegerTP                             // 1010
	RealTP                                // 3.14
	StringTP                              // "xxx"
	IdentifierTP                          // varA
	EOFTP                                 // end of file
)

// keyWordTokenTPMap is the mapping from identifier to the corresponding TokenTP.
// Keywords are upper case only, "begin" is an identifier.
var keyWordTokenTPMap = map[string]TokenType{
	"ARRAY":     ArrayTP,
	"BEGIN":     BeginTP,
	"BY":        ByTP,
	"CASE":      CaseTP,
	"CONST":     ConstTP,
	"DIV":       DivTP,
	"DO":        DoTP,
	"ELSE":      ElseTP,
	"ELSIF":     ElsifTP,
	"END":       EndTP,
	"FALSE":     FalseTP,
	"FOR":       ForTP,
	"IF":        IfTP,
	"IMPORT":    ImportTP,
	"IN":        InTP,
	"IS":        IsTP,
	"MOD":       ModTP,
	"MODULE":    ModuleTP,
	"NIL":       NilTP,
	"OF":        OfTP,
	"OR":        OrTP,
	"POINTER":   PointerTP,
	"PROCEDURE": ProcedureTP,
	"RECORD":    RecordTP,
	"REPEAT":    RepeatTP,
	"RETURN":    ReturnTP,
	"THEN":      ThenTP,
	"TO":        ToTP,
	"TRUE":      TrueTP,
	"TYPE":      TypeKeywordTP,
	"UNTIL":     UntilTP,
	"VAR":       VarTP,
	"WHILE":     WhileTP,
}

// simpleSymbolTokenTPMap is the mapping from simple symbol to the corresponding TokenTP.
// There are some symbols which are very easy to distinguish, so we put those together.
var simpleSymbolTokenTPMap = map[rune]TokenType{
	'+': AddTP,
	'-': MinusTP,
	'*': MultiplyTP,
	'/': DivideTP,
	'&': AndTP,
	'~': NotTP,
	'#': NotEqualTP,
	'^': CaretTP,
	';': SemiColonTP,
	',': CommaTP,
	'|': BarTP,
	'(': LeftParentThesesTP,
	')': RightParentThesesTP,
	'[': LeftSquareBracketTP,
	']': RightSquareBracketTP,
	'{': LeftBraceTP,
	'}': RightBraceTP,
	'=': EqualTP,
}

// compositeSymbols are symbols which may be extended by a following '=' or '.'.
var compositeSymbols = map[rune]struct {
	next      rune
	single    TokenType
	composite TokenType
}{
	':': {next: '=', single: ColonTP, composite: AssignTP},
	'.': {next: '.', single: DotTP, composite: RangeTP},
	'<': {next: '=', single: LessTP, composite: LessEqualTP},
	'>': {next: '=', single: GreaterTP, composite: GreaterEqualTP},
}

var tokenTPNames = map[TokenType]string{
	IntegerTP:    "integer literal",
	RealTP:       "real literal",
	StringTP:     "string literal",
	IdentifierTP: "identifier",
	EOFTP:        "end of file",
}

func init() {
	for name, tp := range keyWordTokenTPMap {
		tokenTPNames[tp] = name
	}
	for symbol, tp := range simpleSymbolTokenTPMap {
		tokenTPNames[tp] = string(symbol)
	}
	for symbol, desc := range compositeSymbols {
		tokenTPNames[desc.single] = string(symbol)
		tokenTPNames[desc.composite] = string(symbol) + string(desc.next)
	}
}

func (tp TokenType) String() string {
	name, ok := tokenTPNames[tp]
	if !ok {
		return fmt.Sprintf("token(%d)", int(tp))
	}
	return name
}

// Token is the smallest unit the parser works on. For string literals, content holds the
// string value without quotes.
type Token struct {
	content   string
	line      int
	column    int
	tp        TokenType
	intValue  int64
	realValue float64
}

func (t *Token) Value(tp TokenType) interface{} {
	switch tp {
	case IdentifierTP, StringTP:
		return t.content
	case IntegerTP:
		return t.intValue
	case RealTP:
		return t.realValue
	}
	return nil
}

func (t *Token) Pos() Pos {
	return Pos{Line: t.line, Column: t.column}
}

func (t *Token) String() string {
	switch t.tp {
	case IdentifierTP, IntegerTP, RealTP:
		return t.content
	case StringTP:
		return strconv.Quote(t.content)
	}
	return t.tp.String()
}

type Tokenizer struct {
	source        []rune
	currentPos    int
	currentLine   int
	currentColumn int
	tokens        []*Token
}

// Tokenize reads the whole source and returns the tokens in source order. The last token
// is always the single EOFTP token.
func (tokenizer *Tokenizer) Tokenize(rd io.Reader) ([]*Token, error) {
	content, err := ioutil.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	tokenizer.source = []rune(string(content))
	tokenizer.currentLine, tokenizer.currentColumn = 1, 1
	for {
		token, err := tokenizer.getNextToken()
		if err != nil {
			return nil, err
		}
		tokenizer.tokens = append(tokenizer.tokens, token)
		if token.tp == EOFTP {
			break
		}
	}
	return tokenizer.tokens, nil
}

func (tokenizer *Tokenizer) Reset() {
	tokenizer.source, tokenizer.tokens = nil, nil
	tokenizer.currentPos, tokenizer.currentLine, tokenizer.currentColumn = 0, 1, 1
}

// getNextToken skips spaces and comments and returns the next token.
func (tokenizer *Tokenizer) getNextToken() (*Token, error) {
	for {
		tokenizer.trimSpace()
		if !tokenizer.hasRemainCharacters() {
			return tokenizer.makeToken(EOFTP, "", tokenizer.currentLine, tokenizer.currentColumn), nil
		}
		if tokenizer.peek(0) != '(' || tokenizer.peek(1) != '*' {
			break
		}
		err := tokenizer.skipComment()
		if err != nil {
			return nil, err
		}
	}
	c := tokenizer.peek(0)
	if _, ok := simpleSymbolTokenTPMap[c]; ok {
		return tokenizer.tokenSimpleSymbol(), nil
	}
	if _, ok := compositeSymbols[c]; ok {
		return tokenizer.tokenCompositeSymbol(), nil
	}
	switch {
	case c == '"':
		return tokenizer.tokenString()
	case util.IsNumber(c):
		return tokenizer.tokenNumber()
	case util.IsLetter(c):
		return tokenizer.toKeywordOrIdentifier(), nil
	}
	return nil, tokenizer.makeError(tokenizer.currentLine, tokenizer.currentColumn,
		fmt.Sprintf("unexpected character '%c'", c))
}

// trimSpace will step forward and skip all continuous space, after it the current character
// is a non-space character or the source is exhausted.
func (tokenizer *Tokenizer) trimSpace() {
	for tokenizer.hasRemainCharacters() && util.IsSpace(tokenizer.peek(0)) {
		tokenizer.advance()
	}
}

func (tokenizer *Tokenizer) hasRemainCharacters() bool {
	return tokenizer.currentPos < len(tokenizer.source)
}

// peek returns the character offset positions ahead, or 0 when it is out of source.
func (tokenizer *Tokenizer) peek(offset int) rune {
	if tokenizer.currentPos+offset >= len(tokenizer.source) {
		return 0
	}
	return tokenizer.source[tokenizer.currentPos+offset]
}

// advance consumes one character and maintains line and column.
func (tokenizer *Tokenizer) advance() rune {
	c := tokenizer.source[tokenizer.currentPos]
	tokenizer.currentPos++
	if c == '\n' {
		tokenizer.currentLine++
		tokenizer.currentColumn = 1
	} else {
		tokenizer.currentColumn++
	}
	return c
}

// skipComment skips a possibly nested comment. The current characters must be "(*".
func (tokenizer *Tokenizer) skipComment() error {
	startLine, startColumn := tokenizer.currentLine, tokenizer.currentColumn
	tokenizer.advance()
	tokenizer.advance()
	depth := 1
	for depth > 0 && tokenizer.hasRemainCharacters() {
		switch {
		case tokenizer.peek(0) == '(' && tokenizer.peek(1) == '*':
			tokenizer.advance()
			tokenizer.advance()
			depth++
		case tokenizer.peek(0) == '*' && tokenizer.peek(1) == ')':
			tokenizer.advance()
			tokenizer.advance()
			depth--
		default:
			tokenizer.advance()
		}
	}
	if depth > 0 {
		return tokenizer.makeError(startLine, startColumn,
			fmt.Sprintf("unterminated comment starting at line %d", startLine))
	}
	return nil
}

func (tokenizer *Tokenizer) makeToken(tp TokenType, content string, line, column int) *Token {
	return &Token{content: content, line: line, column: column, tp: tp}
}

func (tokenizer *Tokenizer) tokenSimpleSymbol() *Token {
	line, column := tokenizer.currentLine, tokenizer.currentColumn
	symbol := tokenizer.advance()
	return tokenizer.makeToken(simpleSymbolTokenTPMap[symbol], string(symbol), line, column)
}

func (tokenizer *Tokenizer) tokenCompositeSymbol() *Token {
	line, column := tokenizer.currentLine, tokenizer.currentColumn
	symbol := tokenizer.advance()
	desc := compositeSymbols[symbol]
	if tokenizer.hasRemainCharacters() && tokenizer.peek(0) == desc.next {
		tokenizer.advance()
		return tokenizer.makeToken(desc.composite, string(symbol)+string(desc.next), line, column)
	}
	return tokenizer.makeToken(desc.single, string(symbol), line, column)
}

// tokenString scans a single line string literal. There are no escape sequences.
func (tokenizer *Tokenizer) tokenString() (*Token, error) {
	line, column := tokenizer.currentLine, tokenizer.currentColumn
	tokenizer.advance()
	startPos := tokenizer.currentPos
	for tokenizer.hasRemainCharacters() && tokenizer.peek(0) != '"' {
		if tokenizer.peek(0) == '\n' {
			return nil, tokenizer.makeError(line, column, "unterminated string, a string cannot span lines")
		}
		tokenizer.advance()
	}
	if !tokenizer.hasRemainCharacters() {
		return nil, tokenizer.makeError(line, column, "unterminated string")
	}
	content := string(tokenizer.source[startPos:tokenizer.currentPos])
	tokenizer.advance()
	return tokenizer.makeToken(StringTP, content, line, column), nil
}

// tokenNumber scans a maximal run of hex digits and then decides by the following
// character: H for hex integer, X for a character code, '.' (but not "..") for a real,
// otherwise a decimal integer.
func (tokenizer *Tokenizer) tokenNumber() (*Token, error) {
	line, column := tokenizer.currentLine, tokenizer.currentColumn
	startPos := tokenizer.currentPos
	for tokenizer.hasRemainCharacters() && util.IsHexNumber(tokenizer.peek(0)) {
		tokenizer.advance()
	}
	digits := string(tokenizer.source[startPos:tokenizer.currentPos])
	switch {
	case tokenizer.peek(0) == 'H':
		tokenizer.advance()
		value, err := strconv.ParseInt(digits, 16, 64)
		if err != nil {
			return nil, tokenizer.makeError(line, column, fmt.Sprintf("invalid hex integer literal %sH", digits))
		}
		token := tokenizer.makeToken(IntegerTP, digits+"H", line, column)
		token.intValue = value
		return token, nil
	case tokenizer.peek(0) == 'X':
		tokenizer.advance()
		code, err := strconv.ParseUint(digits, 16, 32)
		if err != nil || code > 0xFF {
			return nil, tokenizer.makeError(line, column, fmt.Sprintf("invalid character literal %sX", digits))
		}
		return tokenizer.makeToken(StringTP, string(rune(code)), line, column), nil
	case tokenizer.peek(0) == '.' && tokenizer.peek(1) != '.':
		return tokenizer.tokenReal(startPos, line, column)
	}
	value, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil, tokenizer.makeError(line, column, fmt.Sprintf("invalid integer literal %s", digits))
	}
	token := tokenizer.makeToken(IntegerTP, digits, line, column)
	token.intValue = value
	return token, nil
}

func (tokenizer *Tokenizer) tokenReal(startPos, line, column int) (*Token, error) {
	tokenizer.advance()
	for tokenizer.hasRemainCharacters() && util.IsNumber(tokenizer.peek(0)) {
		tokenizer.advance()
	}
	if c := tokenizer.peek(0); c == 'E' || c == 'e' {
		tokenizer.advance()
		if c := tokenizer.peek(0); c == '+' || c == '-' {
			tokenizer.advance()
		}
		for tokenizer.hasRemainCharacters() && util.IsNumber(tokenizer.peek(0)) {
			tokenizer.advance()
		}
	}
	content := string(tokenizer.source[startPos:tokenizer.currentPos])
	value, err := strconv.ParseFloat(content, 64)
	if err != nil {
		return nil, tokenizer.makeError(line, column, fmt.Sprintf("invalid real literal %s", content))
	}
	token := tokenizer.makeToken(RealTP, content, line, column)
	token.realValue = value
	return token, nil
}

func (tokenizer *Tokenizer) toKeywordOrIdentifier() *Token {
	line, column := tokenizer.currentLine, tokenizer.currentColumn
	startPos := tokenizer.currentPos
	for tokenizer.hasRemainCharacters() && util.IsLetterOrUnderscoreOrNumber(tokenizer.peek(0)) {
		tokenizer.advance()
	}
	content := string(tokenizer.source[startPos:tokenizer.currentPos])
	tp, isKeyWord := keyWordTokenTPMap[content]
	if !isKeyWord {
		tp = IdentifierTP
	}
	return tokenizer.makeToken(tp, content, line, column)
}

func (tokenizer *Tokenizer) makeError(line, column int, msg string) error {
	return &LexicalError{Line: line, Column: column, Msg: msg}
}
