package internal

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// errCheckAborted stops the walk once enough diagnostics were collected.
var errCheckAborted = errors.New("check aborted")

// TypeChecker walks a module top to bottom. It defines symbols as it meets their
// declarations and validates each construct against what is already defined, so
// declaration order matters.
//
// With maxErrors 1 the first violated rule ends checking. A larger value keeps going
// after an error until maxErrors diagnostics are collected, the offending construct is
// skipped and treated as unresolved so it does not cause follow up errors.
type TypeChecker struct {
	table       *SymbolTable
	resolver    *TypeResolver
	maxErrors   int
	diagnostics []string
}

// procedureContext is the procedure whose body is checked. It is nil for the module body.
type procedureContext struct {
	decl  *ProcedureDeclAst
	level int
}

func NewTypeChecker(maxErrors int) *TypeChecker {
	if maxErrors < 1 {
		maxErrors = 1
	}
	table := NewSymbolTable()
	return &TypeChecker{table: table, resolver: NewTypeResolver(table), maxErrors: maxErrors}
}

// Check validates module and annotates its ast for the generator. It returns a
// *SemanticError holding all collected diagnostics on failure.
func (checker *TypeChecker) Check(module *ModuleAst) error {
	err := checker.checkModule(module)
	if err != nil && err != errCheckAborted {
		checker.report(err)
	}
	if len(checker.diagnostics) > 0 {
		return &SemanticError{Diagnostics: checker.diagnostics}
	}
	return nil
}

// report records err. It returns errCheckAborted when checking has to stop.
func (checker *TypeChecker) report(err error) error {
	if err == errCheckAborted {
		return err
	}
	checker.diagnostics = append(checker.diagnostics, err.Error())
	if len(checker.diagnostics) >= checker.maxErrors {
		return errCheckAborted
	}
	return nil
}

func (checker *TypeChecker) checkModule(module *ModuleAst) error {
	for _, imp := range module.Imports {
		err := checker.table.Define(&Symbol{Name: imp.Alias, Kind: ModuleSymbol, Pos: imp.Pos, ModuleName: imp.Name})
		if err != nil {
			if abort := checker.report(err); abort != nil {
				return abort
			}
		}
	}
	err := checker.checkDeclSequence(module.Decls, nil)
	if err != nil {
		return err
	}
	return checker.checkStatements(module.Body, nil)
}

// checkDeclSequence checks constants, then types, then variables, then procedures.
func (checker *TypeChecker) checkDeclSequence(decls *DeclSequenceAst, ctx *procedureContext) error {
	for _, constDecl := range decls.Consts {
		if err := checker.checkConstDeclaration(constDecl, ctx); err != nil {
			if abort := checker.report(err); abort != nil {
				return abort
			}
		}
	}
	checker.resolver.BeginTypeSection()
	for _, typeDecl := range decls.Types {
		if err := checker.checkTypeDeclaration(typeDecl); err != nil {
			if abort := checker.report(err); abort != nil {
				return abort
			}
		}
	}
	if err := checker.resolver.FinishTypeSection(); err != nil {
		if abort := checker.report(err); abort != nil {
			return abort
		}
	}
	for _, varDecl := range decls.Vars {
		if err := checker.checkVariableDeclaration(varDecl); err != nil {
			if abort := checker.report(err); abort != nil {
				return abort
			}
		}
	}
	for _, procedure := range decls.Procedures {
		if err := checker.checkProcedureDeclaration(procedure, ctx); err != nil {
			if abort := checker.report(err); abort != nil {
				return abort
			}
		}
	}
	for _, procedure := range decls.Procedures {
		if !procedure.Forward {
			continue
		}
		symbol, ok := checker.table.LookUpCurrent(procedure.Name.Name)
		if ok && symbol.Forward {
			symbol.Forward = false
			err := makeSemanticError(procedure.Name.Pos, "forward declared procedure '%s' is never defined",
				procedure.Name.Name)
			if abort := checker.report(err); abort != nil {
				return abort
			}
		}
	}
	return nil
}

func (checker *TypeChecker) checkConstDeclaration(decl *ConstDeclAst, ctx *procedureContext) error {
	symbol := &Symbol{Name: decl.Name.Name, Kind: ConstantSymbol, Export: decl.Name.Export, Pos: decl.Name.Pos}
	decl.symbol = symbol
	tp, err := checker.checkExpression(decl.Value, ctx)
	if err != nil {
		return checker.defineUnresolved(symbol, err)
	}
	if !isConstantExpression(checker.table, decl.Value) {
		return checker.defineUnresolved(symbol,
			makeSemanticError(decl.Value.Pos, "value of constant '%s' is not a constant expression", symbol.Name))
	}
	symbol.Type = tp
	if value, ok := EvalConstExpr(checker.table, decl.Value); ok {
		symbol.Value = value
	}
	return checker.table.Define(symbol)
}

// isConstantExpression accepts literals, constants and operators over them. It is wider
// than EvalConstExpr, which only folds integers.
func isConstantExpression(table *SymbolTable, expr *ExpressionAst) bool {
	switch expr.ExpressionTP {
	case IntegerExpressionTP, RealExpressionTP, StringExpressionTP, BooleanExpressionTP, NilExpressionTP:
		return true
	case SetExpressionTP:
		for _, element := range expr.Elements {
			if !isConstantExpression(table, element.Start) || (element.End != nil && !isConstantExpression(table, element.End)) {
				return false
			}
		}
		return true
	case DesignatorExpressionTP:
		symbol := expr.Designator.symbol
		return symbol != nil && symbol.Kind == ConstantSymbol && len(expr.Designator.Selectors) == 0
	case UnaryExpressionTP:
		return isConstantExpression(table, expr.Right)
	case BinaryExpressionTP:
		return isConstantExpression(table, expr.Left) && isConstantExpression(table, expr.Right)
	}
	return false
}

func (checker *TypeChecker) checkTypeDeclaration(decl *TypeDeclAst) error {
	symbol := &Symbol{Name: decl.Name.Name, Kind: TypeSymbol, Export: decl.Name.Export, Pos: decl.Name.Pos}
	decl.symbol = symbol
	tp, err := checker.resolver.ResolveType(decl.Type)
	if err != nil {
		return checker.defineUnresolved(symbol, err)
	}
	if tp.Kind == ArrayKind && tp.Open {
		return checker.defineUnresolved(symbol,
			makeSemanticError(decl.Type.Pos, "open array is only allowed as a parameter type"))
	}
	if decl.Type.TP != NamedTypeTP && tp.Name == "" {
		tp.Name = decl.Name.Name
	}
	symbol.Type = tp
	return checker.table.Define(symbol)
}

func (checker *TypeChecker) checkVariableDeclaration(decl *VarDeclAst) error {
	tp, err := checker.resolver.ResolveType(decl.Type)
	if err == nil && tp.Kind == ArrayKind && tp.Open {
		err = makeSemanticError(decl.Type.Pos, "open array is only allowed as a parameter type")
	}
	if err != nil {
		tp = unresolvedType
	}
	decl.resolved = tp
	for _, name := range decl.Names {
		defineErr := checker.table.Define(&Symbol{
			Name: name.Name, Kind: VariableSymbol, Export: name.Export, Pos: name.Pos, Type: tp,
		})
		if defineErr == nil {
			continue
		}
		if err == nil {
			err = defineErr
		} else if abort := checker.report(defineErr); abort != nil {
			return abort
		}
	}
	return err
}

// defineUnresolved binds symbol with the unresolved type after its declaration failed with err,
// so later uses do not cascade. A duplicate name is reported as well.
func (checker *TypeChecker) defineUnresolved(symbol *Symbol, err error) error {
	symbol.Type = unresolvedType
	if defineErr := checker.table.Define(symbol); defineErr != nil {
		if abort := checker.report(defineErr); abort != nil {
			return abort
		}
	}
	return err
}

// checkProcedureDeclaration registers the procedure before checking its body, so it may call
// itself and every procedure registered before it.
func (checker *TypeChecker) checkProcedureDeclaration(decl *ProcedureDeclAst, ctx *procedureContext) error {
	signature, err := checker.resolver.ResolveSignature(decl.Params)
	if err != nil {
		return err
	}
	if signature.Result != nil && (signature.Result.Kind == ArrayKind || signature.Result.Kind == RecordKind) {
		return makeSemanticError(decl.Params.ReturnType.Pos, "procedure '%s' cannot return structured type %s",
			decl.Name.Name, signature.Result)
	}
	symbol, err := checker.defineProcedure(decl, signature)
	if err != nil {
		return err
	}
	decl.symbol = symbol
	if decl.Forward {
		return nil
	}

	checker.table.EnterScope()
	defer checker.table.ExitScope()
	body := &procedureContext{decl: decl, level: checker.table.Level()}
	decl.level = body.level
	for _, param := range signature.Params {
		err := checker.table.Define(&Symbol{
			Name: param.Name, Kind: VariableSymbol, Pos: decl.Name.Pos, Type: param.Type,
			IsParam: true, IsVarParam: param.IsVar,
		})
		if err != nil {
			if abort := checker.report(err); abort != nil {
				return abort
			}
		}
	}
	if err := checker.checkDeclSequence(decl.Decls, body); err != nil {
		return err
	}
	if err := checker.checkStatements(decl.Body, body); err != nil {
		return err
	}
	return checker.checkReturn(decl, signature, body)
}

// defineProcedure defines the procedure symbol, or completes an earlier forward
// declaration of the same name when the signatures match.
func (checker *TypeChecker) defineProcedure(decl *ProcedureDeclAst, signature *ResolvedType) (*Symbol, error) {
	name := decl.Name.Name
	if previous, ok := checker.table.LookUpCurrent(name); ok && previous.Kind == ProcedureSymbol && previous.Forward {
		if decl.Forward {
			return nil, makeSemanticError(decl.Name.Pos, "procedure '%s' is already declared forward at line %d",
				name, previous.Pos.Line)
		}
		if !SameSignature(previous.Type, signature) {
			return nil, makeSemanticError(decl.Name.Pos,
				"signature of procedure '%s' does not match its forward declaration: %s vs %s",
				name, signature, previous.Type)
		}
		previous.Forward = false
		previous.Export = decl.Name.Export
		return previous, nil
	}
	symbol := &Symbol{
		Name: name, Kind: ProcedureSymbol, Export: decl.Name.Export, Pos: decl.Name.Pos,
		Type: signature, Forward: decl.Forward,
	}
	if err := checker.table.Define(symbol); err != nil {
		return nil, err
	}
	return symbol, nil
}

func (checker *TypeChecker) checkReturn(decl *ProcedureDeclAst, signature *ResolvedType, ctx *procedureContext) error {
	name := decl.Name.Name
	if signature.Result == nil {
		if decl.Return != nil {
			return makeSemanticError(decl.Return.Pos, "procedure '%s' has no return type but returns a value", name)
		}
		return nil
	}
	if decl.Return == nil {
		return makeSemanticError(decl.Pos, "procedure '%s' must return a value of type %s", name, signature.Result)
	}
	tp, err := checker.checkExpression(decl.Return, ctx)
	if err != nil {
		return err
	}
	if !checker.assignable(decl.Return, tp, signature.Result) {
		return makeSemanticError(decl.Return.Pos, "type mismatch in return of '%s': %s is not assignable to %s",
			name, tp, signature.Result)
	}
	return nil
}

func (checker *TypeChecker) checkStatements(statements []*StatementAst, ctx *procedureContext) error {
	for _, statement := range statements {
		if err := checker.checkStatement(statement, ctx); err != nil {
			if abort := checker.report(err); abort != nil {
				return abort
			}
		}
	}
	return nil
}

func (checker *TypeChecker) checkStatement(statement *StatementAst, ctx *procedureContext) error {
	switch statement.StatementTP {
	case EmptyStatementTP:
		return nil
	case AssignStatementTP:
		return checker.checkAssignStatement(statement.Statement.(*AssignStatementAst), ctx)
	case CallStatementTP:
		call := statement.Statement.(*CallStatementAst)
		_, err := checker.checkCall(call.Designator, call.Args, ctx, false)
		return err
	case IfStatementTP:
		return checker.checkIfStatement(statement.Statement.(*IfStatementAst), ctx)
	case CaseStatementTP:
		return checker.checkCaseStatement(statement.Statement.(*CaseStatementAst), ctx)
	case WhileStatementTP:
		while := statement.Statement.(*WhileStatementAst)
		if err := checker.checkConditional("WHILE", while.While, ctx); err != nil {
			return err
		}
		for _, elsif := range while.Elsifs {
			if err := checker.checkConditional("ELSIF", elsif, ctx); err != nil {
				return err
			}
		}
		return nil
	case RepeatStatementTP:
		repeat := statement.Statement.(*RepeatStatementAst)
		if err := checker.checkStatements(repeat.Statements, ctx); err != nil {
			return err
		}
		return checker.checkCondition("UNTIL", repeat.Condition, ctx)
	case ForStatementTP:
		return checker.checkForStatement(statement.Statement.(*ForStatementAst), ctx)
	}
	return makeSemanticError(statement.Pos, "unknown statement")
}

func (checker *TypeChecker) checkAssignStatement(assign *AssignStatementAst, ctx *procedureContext) error {
	targetType, symbol, err := checker.checkDesignator(assign.Target, ctx)
	if err != nil {
		return err
	}
	name := designatorName(assign.Target)
	if symbol.Kind == ModuleSymbol {
		_, err = checker.checkExpression(assign.Value, ctx)
		return err
	}
	if symbol.Kind != VariableSymbol {
		return makeSemanticError(assign.Target.Pos, "cannot assign to %s '%s'", symbol.Kind, name)
	}
	if symbol.IsParam && !symbol.IsVarParam && symbol.Type.Kind == ArrayKind {
		return makeSemanticError(assign.Target.Pos, "cannot assign to value parameter '%s' of array type", name)
	}
	valueType, err := checker.checkExpression(assign.Value, ctx)
	if err != nil {
		return err
	}
	if targetType.Kind == ArrayKind && targetType.Open {
		return makeSemanticError(assign.Target.Pos, "cannot assign to open array '%s'", name)
	}
	if !checker.assignable(assign.Value, valueType, targetType) {
		return makeSemanticError(assign.Value.Pos, "type mismatch in assignment to '%s': %s is not assignable to %s",
			name, valueType, targetType)
	}
	return nil
}

func (checker *TypeChecker) checkConditional(keyword string, conditional *ConditionalAst, ctx *procedureContext) error {
	if err := checker.checkCondition(keyword, conditional.Condition, ctx); err != nil {
		return err
	}
	return checker.checkStatements(conditional.Statements, ctx)
}

func (checker *TypeChecker) checkCondition(keyword string, condition *ExpressionAst, ctx *procedureContext) error {
	tp, err := checker.checkExpression(condition, ctx)
	if err != nil {
		return err
	}
	if tp.Kind != BooleanKind && tp.Kind != UnresolvedKind {
		return makeSemanticError(condition.Pos, "%s condition must be BOOLEAN, found %s", keyword, tp)
	}
	return nil
}

func (checker *TypeChecker) checkIfStatement(statement *IfStatementAst, ctx *procedureContext) error {
	if err := checker.checkConditional("IF", statement.If, ctx); err != nil {
		return err
	}
	for _, elsif := range statement.Elsifs {
		if err := checker.checkConditional("ELSIF", elsif, ctx); err != nil {
			return err
		}
	}
	return checker.checkStatements(statement.ElseStatements, ctx)
}

func (checker *TypeChecker) checkCaseStatement(statement *CaseStatementAst, ctx *procedureContext) error {
	selectorType, err := checker.checkExpression(statement.Selector, ctx)
	if err != nil {
		return err
	}
	if selectorType.Kind != IntegerKind && selectorType.Kind != CharKind {
		return makeSemanticError(statement.Selector.Pos, "CASE selector must be INTEGER or CHAR, found %s", selectorType)
	}
	type labelRange struct{ start, end int64 }
	var seen []labelRange
	for _, clause := range statement.Clauses {
		for _, label := range clause.Labels {
			start, err := checker.checkCaseLabel(label.Start, selectorType, ctx)
			if err != nil {
				return err
			}
			end := start
			if label.End != nil {
				if end, err = checker.checkCaseLabel(label.End, selectorType, ctx); err != nil {
					return err
				}
				if end < start {
					return makeSemanticError(label.Start.Pos, "empty CASE label range %d..%d", start, end)
				}
			}
			for _, r := range seen {
				if start <= r.end && r.start <= end {
					return makeSemanticError(label.Start.Pos, "duplicate CASE label %d", start)
				}
			}
			seen = append(seen, labelRange{start: start, end: end})
			label.startValue, label.endValue = start, end
		}
		if err := checker.checkStatements(clause.Statements, ctx); err != nil {
			return err
		}
	}
	return checker.checkStatements(statement.ElseStatements, ctx)
}

// checkCaseLabel returns the label value, the character code for CHAR selectors.
func (checker *TypeChecker) checkCaseLabel(label *ExpressionAst, selectorType *ResolvedType, ctx *procedureContext) (int64, error) {
	tp, err := checker.checkExpression(label, ctx)
	if err != nil {
		return 0, err
	}
	if !checker.assignable(label, tp, selectorType) {
		return 0, makeSemanticError(label.Pos, "CASE label of type %s is not assignable to selector type %s",
			tp, selectorType)
	}
	if selectorType.Kind == CharKind {
		if label.ExpressionTP != StringExpressionTP {
			return 0, makeSemanticError(label.Pos, "CASE label must be a character constant")
		}
		code, _ := charLiteralCode(label.Value.(string))
		return code, nil
	}
	value, ok := EvalConstExpr(checker.table, label)
	if !ok {
		return 0, makeSemanticError(label.Pos, "CASE label must be a constant integer expression")
	}
	return value, nil
}

func (checker *TypeChecker) checkForStatement(statement *ForStatementAst, ctx *procedureContext) error {
	symbol, ok := checker.table.LookUp(statement.Variable)
	if !ok {
		return makeSemanticError(statement.Pos, "undeclared identifier '%s'", statement.Variable)
	}
	if symbol.Kind != VariableSymbol {
		return makeSemanticError(statement.Pos, "FOR loop variable '%s' must be a variable, found %s",
			statement.Variable, symbol.Kind)
	}
	if err := checker.checkVariableAccess(symbol, statement.Pos, ctx); err != nil {
		return err
	}
	statement.symbol = symbol
	if symbol.Type.Kind != IntegerKind && symbol.Type.Kind != UnresolvedKind {
		return makeSemanticError(statement.Pos, "FOR loop variable '%s' must be INTEGER, found %s",
			statement.Variable, symbol.Type)
	}
	bounds := []struct {
		what string
		expr *ExpressionAst
	}{{"start value", statement.Start}, {"end value", statement.End}, {"step", statement.Step}}
	for _, bound := range bounds {
		if bound.expr == nil {
			continue
		}
		tp, err := checker.checkExpression(bound.expr, ctx)
		if err != nil {
			return err
		}
		if tp.Kind != IntegerKind {
			return makeSemanticError(bound.expr.Pos, "FOR %s must be INTEGER, found %s", bound.what, tp)
		}
	}
	if statement.Step != nil {
		if step, ok := EvalConstExpr(checker.table, statement.Step); ok && step == 0 {
			return makeSemanticError(statement.Step.Pos, "FOR step must not be zero")
		}
	}
	return checker.checkStatements(statement.Statements, ctx)
}

// checkCall checks a procedure call. In expressions the procedure must return a value and
// that type is returned.
func (checker *TypeChecker) checkCall(designator *DesignatorAst, args []*ExpressionAst, ctx *procedureContext,
	inExpression bool) (*ResolvedType, error) {
	tp, symbol, err := checker.checkDesignator(designator, ctx)
	if err != nil {
		return nil, err
	}
	return checker.checkCallArguments(designator, tp, symbol, args, ctx, inExpression)
}

func (checker *TypeChecker) checkCallArguments(designator *DesignatorAst, tp *ResolvedType, symbol *Symbol,
	args []*ExpressionAst, ctx *procedureContext, inExpression bool) (*ResolvedType, error) {
	name := designatorName(designator)
	if tp.Kind == UnresolvedKind {
		for _, arg := range args {
			if _, err := checker.checkExpression(arg, ctx); err != nil {
				return nil, err
			}
		}
		return unresolvedType, nil
	}
	if tp.Kind != ProcedureKind || symbol.Kind == TypeSymbol {
		return nil, makeSemanticError(designator.Pos, "'%s' is not a procedure", name)
	}
	if len(args) != len(tp.Params) {
		return nil, makeSemanticError(designator.Pos, "wrong number of arguments in call to '%s': expected %d, found %d",
			name, len(tp.Params), len(args))
	}
	for i, arg := range args {
		if err := checker.checkArgument(name, i, arg, tp.Params[i], ctx); err != nil {
			return nil, err
		}
	}
	if inExpression && tp.Result == nil {
		return nil, makeSemanticError(designator.Pos, "procedure '%s' does not return a value", name)
	}
	if tp.Result == nil {
		return nil, nil
	}
	return tp.Result, nil
}

func (checker *TypeChecker) checkArgument(name string, i int, arg *ExpressionAst, param *ParamDesc, ctx *procedureContext) error {
	argType, err := checker.checkExpression(arg, ctx)
	if err != nil {
		return err
	}
	if argType.Kind == UnresolvedKind {
		return nil
	}
	if param.IsVar {
		if arg.ExpressionTP != DesignatorExpressionTP || arg.Designator.symbol.Kind != VariableSymbol {
			return makeSemanticError(arg.Pos, "argument %d of '%s' must be a variable, parameter '%s' is VAR",
				i+1, name, param.Name)
		}
		if symbol := arg.Designator.symbol; symbol.IsParam && !symbol.IsVarParam && symbol.Type.Kind == ArrayKind {
			return makeSemanticError(arg.Pos, "argument %d of '%s': value parameter '%s' is read-only",
				i+1, name, symbol.Name)
		}
		if !SameType(argType, param.Type) && !openArrayCompatible(argType, param.Type) {
			return makeSemanticError(arg.Pos, "argument %d of '%s': %s does not match VAR parameter type %s",
				i+1, name, argType, param.Type)
		}
		return nil
	}
	if openArrayCompatible(argType, param.Type) {
		return nil
	}
	if param.Type.Kind == ArrayKind && param.Type.Open && param.Type.Element.Kind == CharKind && argType.Kind == StringKind {
		return nil
	}
	if !checker.assignable(arg, argType, param.Type) {
		return makeSemanticError(arg.Pos, "argument %d of '%s': %s is not assignable to %s",
			i+1, name, argType, param.Type)
	}
	return nil
}

// openArrayCompatible reports whether an array argument can be passed to an open array parameter.
func openArrayCompatible(argType, paramType *ResolvedType) bool {
	return paramType.Kind == ArrayKind && paramType.Open && argType.Kind == ArrayKind &&
		SameType(argType.Element, paramType.Element)
}

// assignable is identity, INTEGER to REAL widening, NIL to any pointer or procedure type,
// a pointer to an extended record to a pointer to its base record, and a one character
// string literal to CHAR.
func (checker *TypeChecker) assignable(value *ExpressionAst, valueType, target *ResolvedType) bool {
	if valueType.Kind == UnresolvedKind || target.Kind == UnresolvedKind {
		return true
	}
	if SameType(valueType, target) {
		return true
	}
	switch {
	case valueType.Kind == IntegerKind && target.Kind == RealKind:
		return true
	case valueType.Kind == NilKind && (target.Kind == PointerKind || target.Kind == ProcedureKind):
		return true
	case valueType.Kind == PointerKind && target.Kind == PointerKind:
		return valueType.Target.Kind == RecordKind && target.Target.Kind == RecordKind &&
			valueType.Target.Extends(target.Target)
	case valueType.Kind == ProcedureKind && target.Kind == ProcedureKind:
		return SameSignature(valueType, target)
	case target.Kind == CharKind:
		return markCharLiteral(value, valueType)
	}
	return false
}

// markCharLiteral marks a one character string literal to be used as CHAR.
func markCharLiteral(expr *ExpressionAst, tp *ResolvedType) bool {
	if tp.Kind != StringKind || expr.ExpressionTP != StringExpressionTP {
		return false
	}
	if _, ok := charLiteralCode(expr.Value.(string)); !ok {
		return false
	}
	expr.charLiteral = true
	expr.tp = charType
	return true
}

// charLiteralCode returns the character code of a one character string.
func charLiteralCode(value string) (int64, bool) {
	if utf8.RuneCountInString(value) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(value)
	if r > 0xFF {
		return 0, false
	}
	return int64(r), true
}

// checkVariableAccess forbids access to local variables of an enclosing procedure, only
// own locals and module level variables are visible to a procedure body.
func (checker *TypeChecker) checkVariableAccess(symbol *Symbol, pos Pos, ctx *procedureContext) error {
	if symbol.Kind != VariableSymbol || symbol.level == 0 || ctx == nil || symbol.level == ctx.level {
		return nil
	}
	return makeSemanticError(pos, "cannot access local variable '%s' of an enclosing procedure", symbol.Name)
}

// designatorName renders a designator for diagnostics.
func designatorName(designator *DesignatorAst) string {
	return designatorNameBefore(designator, nil)
}

// designatorNameBefore renders the designator up to, not including, the selector stop.
func designatorNameBefore(designator *DesignatorAst, stop *SelectorAst) string {
	var builder strings.Builder
	builder.WriteString(designator.Base.String())
	for _, selector := range designator.Selectors {
		if selector == stop {
			break
		}
		switch selector.TP {
		case FieldSelectorTP:
			builder.WriteString("." + selector.Field)
		case IndexSelectorTP:
			builder.WriteString("[...]")
		case DerefSelectorTP:
			builder.WriteString("^")
		case TypeGuardSelectorTP:
			builder.WriteString("(" + selector.Guard.String() + ")")
		}
	}
	return builder.String()
}
