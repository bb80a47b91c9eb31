package internal

// Operator precedence, from the loosest to the tightest binding:
//   relation:  = # < <= > >= IN IS  (at most one, not associative)
//   add:       + - OR               (left associative, optional leading + or -)
//   multiply:  * / DIV MOD &        (left associative)
//   factor:    literals, (Expression), sets, ~factor, designators and calls.

var relationOps = []TokenType{EqualTP, NotEqualTP, LessTP, LessEqualTP, GreaterTP, GreaterEqualTP, InTP, IsTP}

var addOps = []TokenType{AddTP, MinusTP, OrTP}

var mulOps = []TokenType{MultiplyTP, DivideTP, DivTP, ModTP, AndTP}

func (parser *Parser) parseExpressions() (exprs []*ExpressionAst, err error) {
	for {
		expression, err := parser.parseExpression()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expression)
		if _, match := parser.expectToken(CommaTP, true); !match {
			return exprs, nil
		}
	}
}

// Expression = SimpleExpression [Relation SimpleExpression]
func (parser *Parser) parseExpression() (*ExpressionAst, error) {
	left, err := parser.parseSimpleExpression()
	if err != nil {
		return nil, err
	}
	if !parser.isTokenTP(relationOps...) {
		return left, nil
	}
	op := parser.getCurrentToken()
	parser.stepForward()
	right, err := parser.parseSimpleExpression()
	if err != nil {
		return nil, err
	}
	return makeBinaryExpression(op, left, right), nil
}

// SimpleExpression = [+|-] Term {AddOperator Term}
func (parser *Parser) parseSimpleExpression() (*ExpressionAst, error) {
	var unary *Token
	if parser.isTokenTP(AddTP, MinusTP) {
		unary = parser.getCurrentToken()
		parser.stepForward()
	}
	expr, err := parser.parseTerm()
	if err != nil {
		return nil, err
	}
	if unary != nil {
		expr = &ExpressionAst{Pos: unary.Pos(), ExpressionTP: UnaryExpressionTP, Op: unary.tp, Right: expr}
	}
	for parser.isTokenTP(addOps...) {
		op := parser.getCurrentToken()
		parser.stepForward()
		right, err := parser.parseTerm()
		if err != nil {
			return nil, err
		}
		expr = makeBinaryExpression(op, expr, right)
	}
	return expr, nil
}

// Term = Factor {MulOperator Factor}
func (parser *Parser) parseTerm() (*ExpressionAst, error) {
	expr, err := parser.parseFactor()
	if err != nil {
		return nil, err
	}
	for parser.isTokenTP(mulOps...) {
		op := parser.getCurrentToken()
		parser.stepForward()
		right, err := parser.parseFactor()
		if err != nil {
			return nil, err
		}
		expr = makeBinaryExpression(op, expr, right)
	}
	return expr, nil
}

func makeBinaryExpression(op *Token, left, right *ExpressionAst) *ExpressionAst {
	return &ExpressionAst{Pos: op.Pos(), ExpressionTP: BinaryExpressionTP, Op: op.tp, Left: left, Right: right}
}

func (parser *Parser) parseFactor() (*ExpressionAst, error) {
	token := parser.getCurrentToken()
	ret := &ExpressionAst{Pos: token.Pos()}
	switch token.tp {
	case IntegerTP:
		ret.ExpressionTP, ret.Value = IntegerExpressionTP, token.Value(IntegerTP)
	case RealTP:
		ret.ExpressionTP, ret.Value = RealExpressionTP, token.Value(RealTP)
	case StringTP:
		ret.ExpressionTP, ret.Value = StringExpressionTP, token.Value(StringTP)
	case TrueTP, FalseTP:
		ret.ExpressionTP, ret.Value = BooleanExpressionTP, token.tp == TrueTP
	case NilTP:
		ret.ExpressionTP = NilExpressionTP
	case LeftBraceTP:
		return parser.parseSet()
	case NotTP:
		parser.stepForward()
		operand, err := parser.parseFactor()
		if err != nil {
			return nil, err
		}
		ret.ExpressionTP, ret.Op, ret.Right = UnaryExpressionTP, NotTP, operand
		return ret, nil
	case LeftParentThesesTP:
		parser.stepForward()
		expr, err := parser.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, match := parser.expectToken(RightParentThesesTP, true); !match {
			return nil, parser.expectedError(RightParentThesesTP)
		}
		return expr, nil
	case IdentifierTP:
		designator, err := parser.parseDesignator()
		if err != nil {
			return nil, err
		}
		ret.ExpressionTP, ret.Designator = DesignatorExpressionTP, designator
		if parser.isTokenTP(LeftParentThesesTP) {
			ret.ExpressionTP = CallExpressionTP
			ret.Args, err = parser.parseActualParameters()
			if err != nil {
				return nil, err
			}
		}
		return ret, nil
	default:
		return nil, parser.makeError("unexpected %s in expression", token)
	}
	parser.stepForward()
	return ret, nil
}

// { [Element {, Element}] } where Element = Expression [.. Expression]
func (parser *Parser) parseSet() (*ExpressionAst, error) {
	ret := &ExpressionAst{Pos: parser.getCurrentToken().Pos(), ExpressionTP: SetExpressionTP}
	parser.stepForward()
	if !parser.isTokenTP(RightBraceTP) {
		for {
			start, err := parser.parseExpression()
			if err != nil {
				return nil, err
			}
			element := &SetElementAst{Start: start}
			if _, match := parser.expectToken(RangeTP, true); match {
				element.End, err = parser.parseExpression()
				if err != nil {
					return nil, err
				}
			}
			ret.Elements = append(ret.Elements, element)
			if _, match := parser.expectToken(CommaTP, true); !match {
				break
			}
		}
	}
	if _, match := parser.expectToken(RightBraceTP, true); !match {
		return nil, parser.expectedError(RightBraceTP)
	}
	return ret, nil
}

// ( [Expression {, Expression}] )
func (parser *Parser) parseActualParameters() (args []*ExpressionAst, err error) {
	parser.stepForward()
	if !parser.isTokenTP(RightParentThesesTP) {
		args, err = parser.parseExpressions()
		if err != nil {
			return nil, err
		}
	}
	if _, match := parser.expectToken(RightParentThesesTP, true); !match {
		return nil, parser.expectedError(RightParentThesesTP)
	}
	return args, nil
}

// Designator = ident {. ident | [ExpList] | ^}. A leading `M.x` is kept as a field selector,
// the checker turns it into a qualified name when M is an imported module.
func (parser *Parser) parseDesignator() (*DesignatorAst, error) {
	token := parser.getCurrentToken()
	name, err := parser.parseIdentifier()
	if err != nil {
		return nil, err
	}
	ret := &DesignatorAst{Pos: token.Pos(), Base: &QualIdentAst{Pos: token.Pos(), Name: name}}
	for {
		selectorToken := parser.getCurrentToken()
		selector := &SelectorAst{Pos: selectorToken.Pos()}
		switch selectorToken.tp {
		case DotTP:
			parser.stepForward()
			selector.TP = FieldSelectorTP
			selector.Field, err = parser.parseIdentifier()
			if err != nil {
				return nil, err
			}
		case LeftSquareBracketTP:
			parser.stepForward()
			selector.TP = IndexSelectorTP
			selector.Indices, err = parser.parseExpressions()
			if err != nil {
				return nil, err
			}
			if _, match := parser.expectToken(RightSquareBracketTP, true); !match {
				return nil, parser.expectedError(RightSquareBracketTP)
			}
		case CaretTP:
			parser.stepForward()
			selector.TP = DerefSelectorTP
		case LeftParentThesesTP:
			// Only a guard followed by another selector is taken here, x(T) alone stays a call
			// and the checker decides.
			if !parser.atTypeGuard() {
				return ret, nil
			}
			parser.stepForward()
			selector.TP = TypeGuardSelectorTP
			selector.Guard, err = parser.parseQualIdent()
			if err != nil {
				return nil, err
			}
			parser.stepForward()
		default:
			return ret, nil
		}
		ret.Selectors = append(ret.Selectors, selector)
	}
}
