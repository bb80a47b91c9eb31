package internal

// checkExpression computes the type of expr and stores it in the ast.
func (checker *TypeChecker) checkExpression(expr *ExpressionAst, ctx *procedureContext) (*ResolvedType, error) {
	tp, err := checker.expressionType(expr, ctx)
	if err != nil {
		return nil, err
	}
	if expr.tp == nil {
		expr.tp = tp
	}
	return expr.tp, nil
}

func (checker *TypeChecker) expressionType(expr *ExpressionAst, ctx *procedureContext) (*ResolvedType, error) {
	switch expr.ExpressionTP {
	case IntegerExpressionTP:
		return integerType, nil
	case RealExpressionTP:
		return realType, nil
	case StringExpressionTP:
		return stringType, nil
	case BooleanExpressionTP:
		return booleanType, nil
	case NilExpressionTP:
		return nilType, nil
	case SetExpressionTP:
		return checker.checkSet(expr, ctx)
	case DesignatorExpressionTP:
		return checker.checkDesignatorValue(expr.Designator, ctx)
	case CallExpressionTP:
		return checker.checkCallExpression(expr, ctx)
	case UnaryExpressionTP:
		return checker.checkUnaryExpression(expr, ctx)
	case BinaryExpressionTP:
		return checker.checkBinaryExpression(expr, ctx)
	}
	return nil, makeSemanticError(expr.Pos, "unknown expression")
}

func (checker *TypeChecker) checkSet(expr *ExpressionAst, ctx *procedureContext) (*ResolvedType, error) {
	for _, element := range expr.Elements {
		for _, bound := range []*ExpressionAst{element.Start, element.End} {
			if bound == nil {
				continue
			}
			tp, err := checker.checkExpression(bound, ctx)
			if err != nil {
				return nil, err
			}
			if tp.Kind != IntegerKind && tp.Kind != UnresolvedKind {
				return nil, makeSemanticError(bound.Pos, "set element must be INTEGER, found %s", tp)
			}
			if value, ok := EvalConstExpr(checker.table, bound); ok && (value < 0 || value > maxSetElement) {
				return nil, makeSemanticError(bound.Pos, "set element %d out of range 0..%d", value, maxSetElement)
			}
		}
	}
	return setType, nil
}

// maxSetElement is the largest member of a SET, sets are 32 bit masks.
const maxSetElement = 31

func (checker *TypeChecker) checkDesignatorValue(designator *DesignatorAst, ctx *procedureContext) (*ResolvedType, error) {
	tp, symbol, err := checker.checkDesignator(designator, ctx)
	if err != nil {
		return nil, err
	}
	switch {
	case symbol.Kind == TypeSymbol:
		return nil, makeSemanticError(designator.Pos, "type '%s' cannot be used as a value", designatorName(designator))
	case symbol.Kind == ProcedureSymbol && symbol.Builtin:
		return nil, makeSemanticError(designator.Pos, "predefined procedure '%s' cannot be used as a value",
			symbol.Name)
	}
	return tp, nil
}

// checkCallExpression checks a function call. A call shaped x(T) on something that is not a
// procedure is a type guard and is rewritten into one.
func (checker *TypeChecker) checkCallExpression(expr *ExpressionAst, ctx *procedureContext) (*ResolvedType, error) {
	designator := expr.Designator
	tp, symbol, err := checker.checkDesignator(designator, ctx)
	if err != nil {
		return nil, err
	}
	if guard := checker.typeGuardArgument(tp, expr.Args); guard != nil {
		selector := &SelectorAst{Pos: expr.Args[0].Pos, TP: TypeGuardSelectorTP, Guard: guard}
		guardType, err := checker.checkTypeGuard(designator, symbol, tp, selector)
		if err != nil {
			return nil, err
		}
		designator.Selectors = append(designator.Selectors, selector)
		designator.tp = guardType
		expr.ExpressionTP, expr.Args = DesignatorExpressionTP, nil
		return guardType, nil
	}
	return checker.checkCallArguments(designator, tp, symbol, expr.Args, ctx, true)
}

// typeGuardArgument returns the type name of a single argument naming a type when tp is not
// a procedure.
func (checker *TypeChecker) typeGuardArgument(tp *ResolvedType, args []*ExpressionAst) *QualIdentAst {
	if tp.Kind == ProcedureKind || tp.Kind == UnresolvedKind || len(args) != 1 {
		return nil
	}
	arg := args[0]
	if arg.ExpressionTP != DesignatorExpressionTP || len(arg.Designator.Selectors) > 1 {
		return nil
	}
	base := arg.Designator.Base
	name := &QualIdentAst{Pos: base.Pos, Module: base.Module, Name: base.Name}
	if len(arg.Designator.Selectors) == 1 {
		selector := arg.Designator.Selectors[0]
		if selector.TP != FieldSelectorTP || base.Module != "" {
			return nil
		}
		name.Module, name.Name = base.Name, selector.Field
	}
	if name.Module == "" {
		symbol, ok := checker.table.LookUp(name.Name)
		if !ok || symbol.Kind != TypeSymbol {
			return nil
		}
	}
	return name
}

func (checker *TypeChecker) checkTypeGuard(designator *DesignatorAst, symbol *Symbol, tp *ResolvedType,
	selector *SelectorAst) (*ResolvedType, error) {
	guard, err := checker.resolver.resolveQualIdent(selector.Guard)
	if err != nil {
		return nil, err
	}
	selector.guardType = guard
	if guard.Kind == UnresolvedKind {
		return guard, nil
	}
	name := designatorNameBefore(designator, selector)
	switch {
	case tp.Kind == PointerKind && tp.Target.Kind == RecordKind:
		if guard.Kind != PointerKind || guard.Target.Kind != RecordKind || !guard.Target.Extends(tp.Target) {
			return nil, makeSemanticError(selector.Pos, "type guard %s is not an extension of %s in '%s'",
				guard, tp, name)
		}
	case tp.Kind == RecordKind && symbol.IsVarParam:
		if guard.Kind != RecordKind || !guard.Extends(tp) {
			return nil, makeSemanticError(selector.Pos, "type guard %s is not an extension of %s in '%s'",
				guard, tp, name)
		}
	default:
		return nil, makeSemanticError(selector.Pos, "type guard requires a pointer or a VAR record parameter, '%s' is %s",
			name, tp)
	}
	return guard, nil
}

// checkDesignator resolves the base name and walks the selectors. A designator that starts
// with an imported module is rewritten into a qualified name and has the unresolved type.
func (checker *TypeChecker) checkDesignator(designator *DesignatorAst, ctx *procedureContext) (*ResolvedType, *Symbol, error) {
	base := designator.Base
	if base.Module != "" {
		symbol, ok := checker.table.LookUp(base.Module)
		if !ok || symbol.Kind != ModuleSymbol {
			return nil, nil, makeSemanticError(base.Pos, "unknown module '%s'", base.Module)
		}
		designator.symbol, designator.tp = symbol, unresolvedType
		return unresolvedType, symbol, nil
	}
	symbol, ok := checker.table.LookUp(base.Name)
	if !ok {
		return nil, nil, makeSemanticError(designator.Pos, "undeclared identifier '%s'", base.Name)
	}
	designator.symbol = symbol
	if symbol.Kind == ModuleSymbol {
		if len(designator.Selectors) == 0 || designator.Selectors[0].TP != FieldSelectorTP {
			return nil, nil, makeSemanticError(designator.Pos, "module '%s' cannot be used as a value", base.Name)
		}
		base.Module, base.Name = base.Name, designator.Selectors[0].Field
		designator.Selectors = designator.Selectors[1:]
		for _, selector := range designator.Selectors {
			for _, index := range selector.Indices {
				if _, err := checker.checkExpression(index, ctx); err != nil {
					return nil, nil, err
				}
			}
		}
		designator.tp = unresolvedType
		return unresolvedType, symbol, nil
	}
	if err := checker.checkVariableAccess(symbol, designator.Pos, ctx); err != nil {
		return nil, nil, err
	}
	tp := symbol.Type
	for _, selector := range designator.Selectors {
		if tp.Kind == UnresolvedKind {
			break
		}
		var err error
		switch selector.TP {
		case FieldSelectorTP:
			tp, err = checker.checkFieldSelector(designator, tp, selector)
		case IndexSelectorTP:
			tp, err = checker.checkIndexSelector(designator, tp, selector, ctx)
		case DerefSelectorTP:
			if tp.Kind != PointerKind {
				return nil, nil, makeSemanticError(selector.Pos, "cannot dereference '%s' of type %s",
					designatorName(designator), tp)
			}
			tp = tp.Target
		case TypeGuardSelectorTP:
			tp, err = checker.checkTypeGuard(designator, symbol, tp, selector)
		}
		if err != nil {
			return nil, nil, err
		}
	}
	designator.tp = tp
	return tp, symbol, nil
}

func (checker *TypeChecker) checkFieldSelector(designator *DesignatorAst, tp *ResolvedType,
	selector *SelectorAst) (*ResolvedType, error) {
	if tp.Kind == PointerKind && tp.Target.Kind == RecordKind {
		selector.implicitDeref = true
		tp = tp.Target
	}
	if tp.Kind != RecordKind {
		return nil, makeSemanticError(selector.Pos, "cannot select field '%s' of '%s', %s is not a record",
			selector.Field, designatorName(designator), tp)
	}
	field, ok := tp.LookUpField(selector.Field)
	if !ok {
		return nil, makeSemanticError(selector.Pos, "record %s has no field '%s'", tp, selector.Field)
	}
	return field.Type, nil
}

// checkIndexSelector consumes one array dimension per index. Constant indices of arrays with
// a known length are bounds checked.
func (checker *TypeChecker) checkIndexSelector(designator *DesignatorAst, tp *ResolvedType, selector *SelectorAst,
	ctx *procedureContext) (*ResolvedType, error) {
	for _, index := range selector.Indices {
		if tp.Kind != ArrayKind {
			return nil, makeSemanticError(index.Pos, "cannot index '%s', %s is not an array",
				designatorName(designator), tp)
		}
		indexType, err := checker.checkExpression(index, ctx)
		if err != nil {
			return nil, err
		}
		if indexType.Kind != IntegerKind && indexType.Kind != UnresolvedKind {
			return nil, makeSemanticError(index.Pos, "array index must be INTEGER, found %s", indexType)
		}
		if value, ok := EvalConstExpr(checker.table, index); ok && !tp.Open && (value < 0 || value >= tp.Length) {
			return nil, makeSemanticError(index.Pos, "index %d out of range for %s", value, tp)
		}
		tp = tp.Element
	}
	return tp, nil
}

func (checker *TypeChecker) checkUnaryExpression(expr *ExpressionAst, ctx *procedureContext) (*ResolvedType, error) {
	operand, err := checker.checkExpression(expr.Right, ctx)
	if err != nil {
		return nil, err
	}
	if operand.Kind == UnresolvedKind {
		return operand, nil
	}
	switch expr.Op {
	case NotTP:
		if operand.Kind == BooleanKind {
			return booleanType, nil
		}
	case AddTP, MinusTP:
		if operand.IsNumeric() || operand.Kind == SetKind {
			return operand, nil
		}
	}
	return nil, makeSemanticError(expr.Pos, "operator %s is not applicable to %s", expr.Op, operand)
}

func (checker *TypeChecker) checkBinaryExpression(expr *ExpressionAst, ctx *procedureContext) (*ResolvedType, error) {
	left, err := checker.checkExpression(expr.Left, ctx)
	if err != nil {
		return nil, err
	}
	if expr.Op == IsTP {
		return booleanType, nil
	}
	right, err := checker.checkExpression(expr.Right, ctx)
	if err != nil {
		return nil, err
	}
	if left.Kind == UnresolvedKind || right.Kind == UnresolvedKind {
		if isRelation(expr.Op) {
			return booleanType, nil
		}
		return unresolvedType, nil
	}
	var ret *ResolvedType
	switch expr.Op {
	case EqualTP, NotEqualTP:
		if checker.comparable(expr, left, right) {
			ret = booleanType
		}
	case LessTP, LessEqualTP, GreaterTP, GreaterEqualTP:
		if (left.IsNumeric() && right.IsNumeric()) || checker.charOperands(expr, left, right) {
			ret = booleanType
		}
	case InTP:
		if left.Kind == IntegerKind && right.Kind == SetKind {
			ret = booleanType
		}
	case AddTP, MinusTP, MultiplyTP:
		ret = arithmeticResult(left, right)
	case DivideTP:
		if left.IsNumeric() && right.IsNumeric() {
			ret = realType
		} else if left.Kind == SetKind && right.Kind == SetKind {
			ret = setType
		}
	case DivTP, ModTP:
		if left.Kind == IntegerKind && right.Kind == IntegerKind {
			ret = integerType
		}
	case AndTP, OrTP:
		if left.Kind == BooleanKind && right.Kind == BooleanKind {
			ret = booleanType
		}
	}
	if ret == nil {
		return nil, makeSemanticError(expr.Pos, "operator %s is not applicable to %s and %s", expr.Op, left, right)
	}
	return ret, nil
}

func isRelation(op TokenType) bool {
	for _, relation := range relationOps {
		if op == relation {
			return true
		}
	}
	return false
}

// arithmeticResult is INTEGER for two integers, REAL when a REAL takes part and SET for two sets.
func arithmeticResult(left, right *ResolvedType) *ResolvedType {
	switch {
	case left.Kind == IntegerKind && right.Kind == IntegerKind:
		return integerType
	case left.IsNumeric() && right.IsNumeric():
		return realType
	case left.Kind == SetKind && right.Kind == SetKind:
		return setType
	}
	return nil
}

func (checker *TypeChecker) comparable(expr *ExpressionAst, left, right *ResolvedType) bool {
	switch {
	case left.IsNumeric() && right.IsNumeric():
		return true
	case left.Kind == BooleanKind && right.Kind == BooleanKind:
		return true
	case left.Kind == SetKind && right.Kind == SetKind:
		return true
	case left.Kind == StringKind && right.Kind == StringKind:
		return true
	case checker.charOperands(expr, left, right):
		return true
	case left.Kind == NilKind || right.Kind == NilKind:
		other := left
		if other.Kind == NilKind {
			other = right
		}
		return other.Kind == NilKind || other.Kind == PointerKind || other.Kind == ProcedureKind
	case left.Kind == PointerKind && right.Kind == PointerKind:
		return left.Target.Kind == RecordKind && right.Target.Kind == RecordKind &&
			(left.Target.Extends(right.Target) || right.Target.Extends(left.Target))
	case left.Kind == ProcedureKind && right.Kind == ProcedureKind:
		return SameSignature(left, right)
	}
	return false
}

// charOperands accepts two CHAR operands, a one character string literal may stand for either.
func (checker *TypeChecker) charOperands(expr *ExpressionAst, left, right *ResolvedType) bool {
	switch {
	case left.Kind == CharKind && right.Kind == CharKind:
		return true
	case left.Kind == CharKind:
		return markCharLiteral(expr.Right, right)
	case right.Kind == CharKind:
		return markCharLiteral(expr.Left, left)
	}
	return false
}
