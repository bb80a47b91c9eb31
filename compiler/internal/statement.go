package internal

// isStatementStart reports whether the current token can begin a non empty statement.
func (parser *Parser) isStatementStart() bool {
	return parser.isTokenTP(IdentifierTP, IfTP, CaseTP, WhileTP, RepeatTP, ForTP)
}

// StatementSequence = Statement {; Statement}. An empty slot, like the one between two
// consecutive semicolons or after a trailing semicolon, is kept as an EmptyStatementTP
// statement. A sequence without any statement and without semicolons is empty.
func (parser *Parser) parseStatementSequence() (statements []*StatementAst, err error) {
	sawSemiColon := false
	for {
		token := parser.getCurrentToken()
		switch {
		case parser.isStatementStart():
			statement, err := parser.parseStatement()
			if err != nil {
				return nil, err
			}
			statements = append(statements, statement)
		case sawSemiColon || token.tp == SemiColonTP:
			statements = append(statements, &StatementAst{Pos: token.Pos(), StatementTP: EmptyStatementTP})
		default:
			return statements, nil
		}
		if _, match := parser.expectToken(SemiColonTP, true); !match {
			return statements, nil
		}
		sawSemiColon = true
	}
}

func (parser *Parser) parseStatement() (*StatementAst, error) {
	token := parser.getCurrentToken()
	ret := &StatementAst{Pos: token.Pos()}
	var err error
	switch token.tp {
	case IfTP:
		ret.StatementTP = IfStatementTP
		ret.Statement, err = parser.parseIfStatement()
	case CaseTP:
		ret.StatementTP = CaseStatementTP
		ret.Statement, err = parser.parseCaseStatement()
	case WhileTP:
		ret.StatementTP = WhileStatementTP
		ret.Statement, err = parser.parseWhileStatement()
	case RepeatTP:
		ret.StatementTP = RepeatStatementTP
		ret.Statement, err = parser.parseRepeatStatement()
	case ForTP:
		ret.StatementTP = ForStatementTP
		ret.Statement, err = parser.parseForStatement()
	default:
		return parser.parseAssignmentOrCall()
	}
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Designator := Expression | Designator [ActualParameters]
func (parser *Parser) parseAssignmentOrCall() (*StatementAst, error) {
	token := parser.getCurrentToken()
	designator, err := parser.parseDesignator()
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(AssignTP, true); match {
		value, err := parser.parseExpression()
		if err != nil {
			return nil, err
		}
		return &StatementAst{
			Pos:         token.Pos(),
			StatementTP: AssignStatementTP,
			Statement:   &AssignStatementAst{Target: designator, Value: value},
		}, nil
	}
	call := &CallStatementAst{Designator: designator}
	if parser.isTokenTP(LeftParentThesesTP) {
		call.Args, err = parser.parseActualParameters()
		if err != nil {
			return nil, err
		}
	}
	return &StatementAst{Pos: token.Pos(), StatementTP: CallStatementTP, Statement: call}, nil
}

// Expression (THEN | DO) StatementSequence, keyword is THEN for IF and DO for WHILE.
func (parser *Parser) parseConditional(keyword TokenType) (*ConditionalAst, error) {
	condition, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(keyword, true); !match {
		return nil, parser.expectedError(keyword)
	}
	statements, err := parser.parseStatementSequence()
	if err != nil {
		return nil, err
	}
	return &ConditionalAst{Condition: condition, Statements: statements}, nil
}

// IF Expression THEN StatementSequence {ELSIF Expression THEN StatementSequence}
// [ELSE StatementSequence] END
func (parser *Parser) parseIfStatement() (*IfStatementAst, error) {
	parser.stepForward()
	ifPart, err := parser.parseConditional(ThenTP)
	if err != nil {
		return nil, err
	}
	ret := &IfStatementAst{If: ifPart}
	for {
		if _, match := parser.expectToken(ElsifTP, true); !match {
			break
		}
		elsif, err := parser.parseConditional(ThenTP)
		if err != nil {
			return nil, err
		}
		ret.Elsifs = append(ret.Elsifs, elsif)
	}
	if _, match := parser.expectToken(ElseTP, true); match {
		ret.HasElse = true
		ret.ElseStatements, err = parser.parseStatementSequence()
		if err != nil {
			return nil, err
		}
	}
	if _, match := parser.expectToken(EndTP, true); !match {
		return nil, parser.expectedError(EndTP)
	}
	return ret, nil
}

// CASE Expression OF Case {| Case} [ELSE StatementSequence] END
func (parser *Parser) parseCaseStatement() (*CaseStatementAst, error) {
	parser.stepForward()
	selector, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(OfTP, true); !match {
		return nil, parser.expectedError(OfTP)
	}
	ret := &CaseStatementAst{Selector: selector}
	for !parser.isTokenTP(ElseTP, EndTP) {
		clause, err := parser.parseCaseClause()
		if err != nil {
			return nil, err
		}
		ret.Clauses = append(ret.Clauses, clause)
		if _, match := parser.expectToken(BarTP, true); !match {
			break
		}
	}
	if _, match := parser.expectToken(ElseTP, true); match {
		ret.HasElse = true
		ret.ElseStatements, err = parser.parseStatementSequence()
		if err != nil {
			return nil, err
		}
	}
	if _, match := parser.expectToken(EndTP, true); !match {
		return nil, parser.expectedError(EndTP)
	}
	return ret, nil
}

// [CaseLabel {, CaseLabel} : StatementSequence], a clause may be empty like in `| |`.
func (parser *Parser) parseCaseClause() (*CaseClauseAst, error) {
	ret := &CaseClauseAst{}
	if parser.isTokenTP(BarTP, ElseTP, EndTP) {
		return ret, nil
	}
	for {
		start, err := parser.parseExpression()
		if err != nil {
			return nil, err
		}
		label := &CaseLabelAst{Start: start}
		if _, match := parser.expectToken(RangeTP, true); match {
			label.End, err = parser.parseExpression()
			if err != nil {
				return nil, err
			}
		}
		ret.Labels = append(ret.Labels, label)
		if _, match := parser.expectToken(CommaTP, true); !match {
			break
		}
	}
	if _, match := parser.expectToken(ColonTP, true); !match {
		return nil, parser.expectedError(ColonTP)
	}
	statements, err := parser.parseStatementSequence()
	if err != nil {
		return nil, err
	}
	ret.Statements = statements
	return ret, nil
}

// WHILE Expression DO StatementSequence {ELSIF Expression DO StatementSequence} END
func (parser *Parser) parseWhileStatement() (*WhileStatementAst, error) {
	parser.stepForward()
	whilePart, err := parser.parseConditional(DoTP)
	if err != nil {
		return nil, err
	}
	ret := &WhileStatementAst{While: whilePart}
	for {
		if _, match := parser.expectToken(ElsifTP, true); !match {
			break
		}
		elsif, err := parser.parseConditional(DoTP)
		if err != nil {
			return nil, err
		}
		ret.Elsifs = append(ret.Elsifs, elsif)
	}
	if _, match := parser.expectToken(EndTP, true); !match {
		return nil, parser.expectedError(EndTP)
	}
	return ret, nil
}

// REPEAT StatementSequence UNTIL Expression
func (parser *Parser) parseRepeatStatement() (*RepeatStatementAst, error) {
	parser.stepForward()
	statements, err := parser.parseStatementSequence()
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(UntilTP, true); !match {
		return nil, parser.expectedError(UntilTP)
	}
	condition, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	return &RepeatStatementAst{Statements: statements, Condition: condition}, nil
}

// FOR ident := Expression TO Expression [BY ConstExpression] DO StatementSequence END
func (parser *Parser) parseForStatement() (*ForStatementAst, error) {
	parser.stepForward()
	ret := &ForStatementAst{Pos: parser.getCurrentToken().Pos()}
	variable, err := parser.parseIdentifier()
	if err != nil {
		return nil, err
	}
	ret.Variable = variable
	if _, match := parser.expectToken(AssignTP, true); !match {
		return nil, parser.expectedError(AssignTP)
	}
	if ret.Start, err = parser.parseExpression(); err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(ToTP, true); !match {
		return nil, parser.expectedError(ToTP)
	}
	if ret.End, err = parser.parseExpression(); err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(ByTP, true); match {
		if ret.Step, err = parser.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, match := parser.expectToken(DoTP, true); !match {
		return nil, parser.expectedError(DoTP)
	}
	if ret.Statements, err = parser.parseStatementSequence(); err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(EndTP, true); !match {
		return nil, parser.expectedError(EndTP)
	}
	return ret, nil
}
