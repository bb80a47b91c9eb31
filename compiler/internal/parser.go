package internal

import (
	"fmt"
)

// Parser is a single token lookahead recursive descent parser. It never backtracks, every rule
// commits after its first token and fails outright otherwise. Type guards inside a designator
// are the one place that looks further ahead.
type Parser struct {
	currentTokenPos int
	currentTokens   []*Token
}

func (parser *Parser) reset() {
	parser.currentTokenPos, parser.currentTokens = 0, nil
}

// Parse parses the token sequence of one module. tokens must end with the EOFTP token.
func (parser *Parser) Parse(tokens []*Token) (*ModuleAst, error) {
	parser.reset()
	parser.currentTokens = tokens
	if len(tokens) == 0 || tokens[len(tokens)-1].tp != EOFTP {
		return nil, &SyntaxError{Line: 1, Column: 1, Msg: "token sequence is not terminated by end of file"}
	}
	module, err := parser.ParseModule()
	if err != nil {
		return nil, err
	}
	if parser.hasRemainTokens() {
		return nil, parser.makeError("unexpected %s after end of module", parser.getCurrentToken())
	}
	return module, nil
}

// MODULE Name; [ImportList] DeclSequence [BEGIN StatementSequence] END Name.
func (parser *Parser) ParseModule() (*ModuleAst, error) {
	moduleToken, match := parser.expectToken(ModuleTP, true)
	if !match {
		return nil, parser.expectedError(ModuleTP)
	}
	name, err := parser.parseIdentifier()
	if err != nil {
		return nil, err
	}
	module := &ModuleAst{Pos: moduleToken.Pos(), Name: name}
	if _, match = parser.expectToken(SemiColonTP, true); !match {
		return nil, parser.expectedError(SemiColonTP)
	}
	if _, match = parser.expectToken(ImportTP, false); match {
		module.Imports, err = parser.parseImportList()
		if err != nil {
			return nil, err
		}
	}
	module.Decls, err = parser.parseDeclSequence()
	if err != nil {
		return nil, err
	}
	if _, match = parser.expectToken(BeginTP, true); match {
		module.Body, err = parser.parseStatementSequence()
		if err != nil {
			return nil, err
		}
	}
	if _, match = parser.expectToken(EndTP, true); !match {
		return nil, parser.expectedError(EndTP)
	}
	endToken := parser.getCurrentToken()
	module.EndName, err = parser.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if _, match = parser.expectToken(DotTP, true); !match {
		return nil, parser.expectedError(DotTP)
	}
	if module.Name != module.EndName {
		return nil, makeSyntaxError(endToken, "module name mismatch: MODULE %s is closed by END %s",
			module.Name, module.EndName)
	}
	return module, nil
}

// IMPORT [Alias :=] Name {, [Alias :=] Name} ;
func (parser *Parser) parseImportList() (imports []*ImportAst, err error) {
	parser.stepForward()
	for {
		token := parser.getCurrentToken()
		first, err := parser.parseIdentifier()
		if err != nil {
			return nil, err
		}
		imp := &ImportAst{Pos: token.Pos(), Alias: first, Name: first}
		if _, match := parser.expectToken(AssignTP, true); match {
			imp.Name, err = parser.parseIdentifier()
			if err != nil {
				return nil, err
			}
		}
		imports = append(imports, imp)
		if _, match := parser.expectToken(CommaTP, true); !match {
			break
		}
	}
	if _, match := parser.expectToken(SemiColonTP, true); !match {
		return nil, parser.expectedError(SemiColonTP)
	}
	return imports, nil
}

// DeclSequence is any number of CONST, TYPE, VAR sections and procedure declarations, in any
// order. Sections may repeat.
func (parser *Parser) parseDeclSequence() (*DeclSequenceAst, error) {
	decls := &DeclSequenceAst{}
	for {
		token := parser.getCurrentToken()
		var err error
		switch token.tp {
		case ConstTP:
			parser.stepForward()
			for parser.isTokenTP(IdentifierTP) {
				var constDecl *ConstDeclAst
				constDecl, err = parser.parseConstDeclaration()
				if err != nil {
					return nil, err
				}
				decls.Consts = append(decls.Consts, constDecl)
			}
		case TypeKeywordTP:
			parser.stepForward()
			for parser.isTokenTP(IdentifierTP) {
				var typeDecl *TypeDeclAst
				typeDecl, err = parser.parseTypeDeclaration()
				if err != nil {
					return nil, err
				}
				decls.Types = append(decls.Types, typeDecl)
			}
		case VarTP:
			parser.stepForward()
			for parser.isTokenTP(IdentifierTP) {
				var varDecl *VarDeclAst
				varDecl, err = parser.parseVariableDeclaration()
				if err != nil {
					return nil, err
				}
				decls.Vars = append(decls.Vars, varDecl)
			}
		case ProcedureTP:
			var procedure *ProcedureDeclAst
			procedure, err = parser.parseProcedureDeclaration()
			if err != nil {
				return nil, err
			}
			decls.Procedures = append(decls.Procedures, procedure)
		default:
			return decls, nil
		}
	}
}

// IdentDef = Expression ;
func (parser *Parser) parseConstDeclaration() (*ConstDeclAst, error) {
	name, err := parser.parseIdentDef()
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(EqualTP, true); !match {
		return nil, parser.expectedError(EqualTP)
	}
	value, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(SemiColonTP, true); !match {
		return nil, parser.expectedError(SemiColonTP)
	}
	return &ConstDeclAst{Name: name, Value: value}, nil
}

// IdentDef = Type ;
func (parser *Parser) parseTypeDeclaration() (*TypeDeclAst, error) {
	name, err := parser.parseIdentDef()
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(EqualTP, true); !match {
		return nil, parser.expectedError(EqualTP)
	}
	tp, err := parser.parseType()
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(SemiColonTP, true); !match {
		return nil, parser.expectedError(SemiColonTP)
	}
	return &TypeDeclAst{Name: name, Type: tp}, nil
}

// IdentList : Type ;
func (parser *Parser) parseVariableDeclaration() (*VarDeclAst, error) {
	names, err := parser.parseIdentList()
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(ColonTP, true); !match {
		return nil, parser.expectedError(ColonTP)
	}
	tp, err := parser.parseType()
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(SemiColonTP, true); !match {
		return nil, parser.expectedError(SemiColonTP)
	}
	return &VarDeclAst{Names: names, Type: tp}, nil
}

// Type = QualIdent | ARRAY ... | RECORD ... | POINTER TO ... | PROCEDURE [FormalParameters].
func (parser *Parser) parseType() (*TypeAst, error) {
	token := parser.getCurrentToken()
	ret := &TypeAst{Pos: token.Pos()}
	var err error
	switch token.tp {
	case ArrayTP:
		ret.TP = ArrayTypeTP
		ret.Type, err = parser.parseArrayType()
	case RecordTP:
		ret.TP = RecordTypeTP
		ret.Type, err = parser.parseRecordType()
	case PointerTP:
		ret.TP = PointerTypeTP
		ret.Type, err = parser.parsePointerType()
	case ProcedureTP:
		ret.TP = ProcedureTypeTP
		ret.Type, err = parser.parseProcedureType()
	case IdentifierTP:
		ret.TP = NamedTypeTP
		ret.Type, err = parser.parseQualIdent()
	default:
		return nil, parser.makeError("expected a type, found %s", token)
	}
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// ARRAY [Length {, Length}] OF Type. Without lengths it is an open array.
func (parser *Parser) parseArrayType() (*ArrayTypeAst, error) {
	parser.stepForward()
	ret := &ArrayTypeAst{}
	if !parser.isTokenTP(OfTP) {
		lengths, err := parser.parseExpressions()
		if err != nil {
			return nil, err
		}
		ret.Lengths = lengths
	}
	if _, match := parser.expectToken(OfTP, true); !match {
		return nil, parser.expectedError(OfTP)
	}
	element, err := parser.parseType()
	if err != nil {
		return nil, err
	}
	ret.Element = element
	return ret, nil
}

// RECORD [(BaseType)] [FieldList {; FieldList}] END
func (parser *Parser) parseRecordType() (*RecordTypeAst, error) {
	parser.stepForward()
	ret := &RecordTypeAst{}
	if _, match := parser.expectToken(LeftParentThesesTP, true); match {
		base, err := parser.parseQualIdent()
		if err != nil {
			return nil, err
		}
		ret.Base = base
		if _, match = parser.expectToken(RightParentThesesTP, true); !match {
			return nil, parser.expectedError(RightParentThesesTP)
		}
	}
	for parser.isTokenTP(IdentifierTP) {
		names, err := parser.parseIdentList()
		if err != nil {
			return nil, err
		}
		if _, match := parser.expectToken(ColonTP, true); !match {
			return nil, parser.expectedError(ColonTP)
		}
		tp, err := parser.parseType()
		if err != nil {
			return nil, err
		}
		ret.Fields = append(ret.Fields, &FieldListAst{Names: names, Type: tp})
		if _, match := parser.expectToken(SemiColonTP, true); !match {
			break
		}
	}
	if _, match := parser.expectToken(EndTP, true); !match {
		return nil, parser.expectedError(EndTP)
	}
	return ret, nil
}

// POINTER TO Type
func (parser *Parser) parsePointerType() (*PointerTypeAst, error) {
	parser.stepForward()
	if _, match := parser.expectToken(ToTP, true); !match {
		return nil, parser.expectedError(ToTP)
	}
	target, err := parser.parseType()
	if err != nil {
		return nil, err
	}
	return &PointerTypeAst{Target: target}, nil
}

// PROCEDURE [FormalParameters]
func (parser *Parser) parseProcedureType() (*ProcedureTypeAst, error) {
	parser.stepForward()
	ret := &ProcedureTypeAst{}
	if parser.isTokenTP(LeftParentThesesTP) {
		params, err := parser.parseFormalParameters()
		if err != nil {
			return nil, err
		}
		ret.Params = params
	}
	return ret, nil
}

// ( [FPSection {; FPSection}] ) [: QualIdent]
func (parser *Parser) parseFormalParameters() (*FormalParamsAst, error) {
	parser.stepForward()
	ret := &FormalParamsAst{}
	if !parser.isTokenTP(RightParentThesesTP) {
		for {
			section, err := parser.parseFPSection()
			if err != nil {
				return nil, err
			}
			ret.Sections = append(ret.Sections, section)
			if _, match := parser.expectToken(SemiColonTP, true); !match {
				break
			}
		}
	}
	if _, match := parser.expectToken(RightParentThesesTP, true); !match {
		return nil, parser.expectedError(RightParentThesesTP)
	}
	if _, match := parser.expectToken(ColonTP, true); match {
		returnType, err := parser.parseQualIdent()
		if err != nil {
			return nil, err
		}
		ret.ReturnType = returnType
	}
	return ret, nil
}

// [VAR] ident {, ident} : Type
func (parser *Parser) parseFPSection() (*FPSectionAst, error) {
	ret := &FPSectionAst{Pos: parser.getCurrentToken().Pos()}
	if _, match := parser.expectToken(VarTP, true); match {
		ret.IsVar = true
	}
	for {
		name, err := parser.parseIdentifier()
		if err != nil {
			return nil, err
		}
		ret.Names = append(ret.Names, name)
		if _, match := parser.expectToken(CommaTP, true); !match {
			break
		}
	}
	if _, match := parser.expectToken(ColonTP, true); !match {
		return nil, parser.expectedError(ColonTP)
	}
	tp, err := parser.parseType()
	if err != nil {
		return nil, err
	}
	ret.Type = tp
	return ret, nil
}

// PROCEDURE [^] IdentDef [FormalParameters] [^] ;
//   DeclSequence [BEGIN StatementSequence] [RETURN Expression] END ident ;
// A caret either before the name or after the heading marks a forward declaration, which
// has neither body nor closing name.
func (parser *Parser) parseProcedureDeclaration() (*ProcedureDeclAst, error) {
	procedureToken := parser.getCurrentToken()
	parser.stepForward()
	ret := &ProcedureDeclAst{Pos: procedureToken.Pos()}
	if _, match := parser.expectToken(CaretTP, true); match {
		ret.Forward = true
	}
	name, err := parser.parseIdentDef()
	if err != nil {
		return nil, err
	}
	ret.Name = name
	if parser.isTokenTP(LeftParentThesesTP) {
		ret.Params, err = parser.parseFormalParameters()
		if err != nil {
			return nil, err
		}
	}
	if _, match := parser.expectToken(CaretTP, true); match {
		ret.Forward = true
	}
	if _, match := parser.expectToken(SemiColonTP, true); !match {
		return nil, parser.expectedError(SemiColonTP)
	}
	if ret.Forward {
		ret.Decls = &DeclSequenceAst{}
		return ret, nil
	}
	ret.Decls, err = parser.parseDeclSequence()
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(BeginTP, true); match {
		ret.Body, err = parser.parseStatementSequence()
		if err != nil {
			return nil, err
		}
	}
	if _, match := parser.expectToken(ReturnTP, true); match {
		ret.Return, err = parser.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, match := parser.expectToken(EndTP, true); !match {
		return nil, parser.expectedError(EndTP)
	}
	endToken := parser.getCurrentToken()
	ret.EndName, err = parser.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if ret.EndName != ret.Name.Name {
		return nil, makeSyntaxError(endToken, "procedure name mismatch: PROCEDURE %s is closed by END %s",
			ret.Name.Name, ret.EndName)
	}
	if _, match := parser.expectToken(SemiColonTP, true); !match {
		return nil, parser.expectedError(SemiColonTP)
	}
	return ret, nil
}

// ident [* | -]
func (parser *Parser) parseIdentDef() (*IdentDefAst, error) {
	token := parser.getCurrentToken()
	name, err := parser.parseIdentifier()
	if err != nil {
		return nil, err
	}
	ret := &IdentDefAst{Pos: token.Pos(), Name: name}
	switch parser.getCurrentToken().tp {
	case MultiplyTP:
		ret.Export = ExportReadOnly
		parser.stepForward()
	case MinusTP:
		ret.Export = ExportReadWrite
		parser.stepForward()
	}
	return ret, nil
}

func (parser *Parser) parseIdentList() (names []*IdentDefAst, err error) {
	for {
		name, err := parser.parseIdentDef()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if _, match := parser.expectToken(CommaTP, true); !match {
			return names, nil
		}
	}
}

// [ident .] ident
func (parser *Parser) parseQualIdent() (*QualIdentAst, error) {
	token := parser.getCurrentToken()
	first, err := parser.parseIdentifier()
	if err != nil {
		return nil, err
	}
	ret := &QualIdentAst{Pos: token.Pos(), Name: first}
	if _, match := parser.expectToken(DotTP, true); match {
		second, err := parser.parseIdentifier()
		if err != nil {
			return nil, err
		}
		ret.Module, ret.Name = first, second
	}
	return ret, nil
}

func (parser *Parser) parseIdentifier() (string, error) {
	token, match := parser.expectToken(IdentifierTP, true)
	if !match {
		return "", parser.expectedError(IdentifierTP)
	}
	return token.Value(IdentifierTP).(string), nil
}

// expectToken reports whether the current token has type tp, and steps forward on a match
// when step is set.
func (parser *Parser) expectToken(tp TokenType, step bool) (*Token, bool) {
	token := parser.getCurrentToken()
	if token.tp != tp {
		return nil, false
	}
	if step {
		parser.stepForward()
	}
	return token, true
}

func (parser *Parser) isTokenTP(tps ...TokenType) bool {
	current := parser.getCurrentToken().tp
	for _, tp := range tps {
		if current == tp {
			return true
		}
	}
	return false
}

// peekToken returns the token offset positions ahead, or the end of file token.
func (parser *Parser) peekToken(offset int) *Token {
	pos := parser.currentTokenPos + offset
	if pos >= len(parser.currentTokens) {
		pos = len(parser.currentTokens) - 1
	}
	return parser.currentTokens[pos]
}

// atTypeGuard reports whether the tokens at hand read ( qualident ) followed by a selector.
func (parser *Parser) atTypeGuard() bool {
	if !parser.isTokenTP(LeftParentThesesTP) || parser.peekToken(1).tp != IdentifierTP {
		return false
	}
	n := 2
	if parser.peekToken(n).tp == DotTP && parser.peekToken(n+1).tp == IdentifierTP {
		n += 2
	}
	if parser.peekToken(n).tp != RightParentThesesTP {
		return false
	}
	switch parser.peekToken(n + 1).tp {
	case DotTP, LeftSquareBracketTP, CaretTP:
		return true
	}
	return false
}

func (parser *Parser) stepForward() {
	if parser.currentTokenPos < len(parser.currentTokens)-1 {
		parser.currentTokenPos++
	}
}

// hasRemainTokens reports whether tokens other than end of file are left.
func (parser *Parser) hasRemainTokens() bool {
	return parser.getCurrentToken().tp != EOFTP
}

// getCurrentToken never runs past the end of file token.
func (parser *Parser) getCurrentToken() *Token {
	return parser.currentTokens[parser.currentTokenPos]
}

func (parser *Parser) expectedError(tp TokenType) error {
	return parser.makeError("expected %s, found %s", tp, parser.getCurrentToken())
}

func (parser *Parser) makeError(format string, args ...interface{}) error {
	return makeSyntaxError(parser.getCurrentToken(), format, args...)
}

func makeSyntaxError(token *Token, format string, args ...interface{}) error {
	return &SyntaxError{Line: token.line, Column: token.column, Msg: fmt.Sprintf(format, args...)}
}
