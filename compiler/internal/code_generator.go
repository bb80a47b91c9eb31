package internal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xiaobogaga/oberon/util"
)

// The generator turns a checked module into one C99 translation unit. The unit is written in
// sections which are concatenated in this order:
//   includes, constants, struct forward typedefs, type definitions, prototypes, globals,
//   builtin bodies, functions and main.
// Nested procedures, constants and types are hoisted to file scope, their C names carry the
// path of the enclosing procedures.

type typeState int

const (
	typeUndefined typeState = iota
	typeInProgress
	typeDefined
)

type codeWriter struct {
	strings.Builder
	indent int
}

func (writer *codeWriter) writeOutput(format string, args ...interface{}) {
	writer.WriteString(strings.Repeat("    ", writer.indent))
	writer.WriteString(fmt.Sprintf(format, args...))
	writer.WriteString("\n")
}

type CodeGenerator struct {
	prefix string

	defines      codeWriter
	forwardTypes codeWriter
	types        codeWriter
	prototypes   codeWriter
	globals      codeWriter
	builtins     codeWriter
	functions    codeWriter

	cNames     map[*Symbol]string
	typeNames  map[*ResolvedType]string
	typeStates map[*ResolvedType]typeState
	anonymous  int
	temps      int
	usesRange  bool
}

func NewCodeGenerator(prefix string) *CodeGenerator {
	return &CodeGenerator{
		prefix:     prefix,
		cNames:     map[*Symbol]string{},
		typeNames:  map[*ResolvedType]string{},
		typeStates: map[*ResolvedType]typeState{},
	}
}

// Generate returns the C translation unit of module. module must have been annotated by the
// TypeChecker, a missing annotation is reported as *InternalError.
func (generator *CodeGenerator) Generate(module *ModuleAst) (code string, err error) {
	defer func() {
		if r := recover(); r != nil {
			internalErr, ok := r.(*InternalError)
			if !ok {
				panic(r)
			}
			code, err = "", internalErr
		}
	}()
	generator.nameDeclarations(module.Decls, "")
	generator.collectTypes(module.Decls)
	generator.generateDeclarations(module.Decls)

	main := &codeWriter{}
	main.writeOutput("int main(void) {")
	main.indent++
	generator.generateStatements(main, module.Body)
	main.writeOutput("return 0;")
	main.indent--
	main.writeOutput("}")
	generator.generateBuiltins()

	var unit strings.Builder
	for _, include := range []string{"stdio.h", "stdlib.h", "stdbool.h", "string.h", "stdint.h"} {
		unit.WriteString("#include <" + include + ">\n")
	}
	for _, section := range []*codeWriter{
		&generator.defines, &generator.forwardTypes, &generator.types, &generator.prototypes,
		&generator.globals, &generator.builtins, &generator.functions,
	} {
		if section.Len() == 0 {
			continue
		}
		unit.WriteString("\n")
		unit.WriteString(section.String())
	}
	unit.WriteString("\n")
	unit.WriteString(main.String())
	return unit.String(), nil
}

func (generator *CodeGenerator) fail(format string, args ...interface{}) {
	panic(makeInternalError(format, args...))
}

// nameDeclarations assigns C names to constants, types and procedures. Module level names are
// prefix+name, nested ones are prefix+path+"__"+name. Constants become macros, their names
// start with prefix+"_const_" which no field, parameter or variable name can spell, since
// identifiers start with a letter.
func (generator *CodeGenerator) nameDeclarations(decls *DeclSequenceAst, path string) {
	qualified := func(declName string) string {
		if path == "" {
			return declName
		}
		return path + "__" + declName
	}
	name := func(symbol *Symbol, declName, cName string) {
		if symbol == nil {
			generator.fail("declaration '%s' was not checked", declName)
		}
		generator.cNames[symbol] = cName
	}
	for _, decl := range decls.Consts {
		name(decl.symbol, decl.Name.Name, generator.prefix+"_const_"+qualified(decl.Name.Name))
	}
	for _, decl := range decls.Types {
		cName := generator.prefix + qualified(decl.Name.Name)
		name(decl.symbol, decl.Name.Name, cName)
		if decl.Type.TP != NamedTypeTP && decl.symbol.Type.Kind != UnresolvedKind {
			generator.typeNames[decl.symbol.Type] = cName
		}
	}
	for _, decl := range decls.Procedures {
		name(decl.symbol, decl.Name.Name, generator.prefix+qualified(decl.Name.Name))
		if decl.Forward {
			continue
		}
		generator.nameDeclarations(decl.Decls, qualified(decl.Name.Name))
	}
}

// cName returns the C name of a symbol. Variables, parameters and builtins are prefix+name.
func (generator *CodeGenerator) cName(symbol *Symbol) string {
	if name, ok := generator.cNames[symbol]; ok {
		return name
	}
	if symbol.Kind == VariableSymbol || symbol.Builtin && symbol.Kind == ProcedureSymbol {
		return generator.prefix + symbol.Name
	}
	generator.fail("no C name for %s '%s'", symbol.Kind, symbol.Name)
	return ""
}

// collectTypes names anonymous records and writes a struct forward typedef for every record,
// so pointers can refer to records defined later.
func (generator *CodeGenerator) collectTypes(decls *DeclSequenceAst) {
	visited := map[*ResolvedType]bool{}
	var visit func(tp *ResolvedType)
	visit = func(tp *ResolvedType) {
		if tp == nil || visited[tp] {
			return
		}
		visited[tp] = true
		switch tp.Kind {
		case ArrayKind:
			visit(tp.Element)
		case PointerKind:
			visit(tp.Target)
		case ProcedureKind:
			for _, param := range tp.Params {
				visit(param.Type)
			}
			visit(tp.Result)
		case RecordKind:
			if _, ok := generator.typeNames[tp]; !ok {
				generator.anonymous++
				generator.typeNames[tp] = fmt.Sprintf("%s_anon%d", generator.prefix, generator.anonymous)
			}
			name := generator.typeNames[tp]
			generator.forwardTypes.writeOutput("typedef struct %s %s;", name, name)
			visit(tp.Base)
			for _, field := range tp.Fields {
				visit(field.Type)
			}
		}
	}
	var walk func(decls *DeclSequenceAst)
	walk = func(decls *DeclSequenceAst) {
		for _, decl := range decls.Types {
			visit(decl.symbol.Type)
		}
		for _, decl := range decls.Vars {
			visit(decl.resolved)
		}
		for _, decl := range decls.Procedures {
			visit(decl.symbol.Type)
			if !decl.Forward {
				walk(decl.Decls)
			}
		}
	}
	walk(decls)
}

// ensureDefined writes the definition of tp and everything it depends on. A pointer only needs
// the forward typedef of its record, the record itself follows the pointer typedef.
func (generator *CodeGenerator) ensureDefined(tp *ResolvedType) {
	if tp == nil || generator.typeStates[tp] != typeUndefined {
		return
	}
	generator.typeStates[tp] = typeInProgress
	switch tp.Kind {
	case ArrayKind:
		generator.ensureDefined(tp.Element)
	case PointerKind:
		if tp.Target.Kind != RecordKind {
			generator.ensureDefined(tp.Target)
		}
	case ProcedureKind:
		for _, param := range tp.Params {
			generator.ensureDefined(param.Type)
		}
		generator.ensureDefined(tp.Result)
	case RecordKind:
		generator.ensureDefined(tp.Base)
		for record := tp; record != nil; record = record.Base {
			for _, field := range record.Fields {
				generator.ensureDefined(field.Type)
			}
		}
		generator.generateRecord(tp)
	}
	if name, ok := generator.typeNames[tp]; ok && tp.Kind != RecordKind {
		generator.types.writeOutput("typedef %s;", generator.declareStructure(tp, name))
	}
	generator.typeStates[tp] = typeDefined
	if tp.Kind == PointerKind && tp.Target.Kind == RecordKind {
		// After the pointer typedef, the record may have fields of this pointer type.
		generator.ensureDefined(tp.Target)
	}
}

// generateRecord lays out the fields of the base records first, so a pointer to an extension
// can be used as a pointer to its base.
func (generator *CodeGenerator) generateRecord(record *ResolvedType) {
	var chain []*ResolvedType
	for r := record; r != nil; r = r.Base {
		chain = append([]*ResolvedType{r}, chain...)
	}
	writer := &generator.types
	writer.writeOutput("struct %s {", generator.typeNames[record])
	writer.indent++
	fields := 0
	for _, r := range chain {
		for _, field := range r.Fields {
			writer.writeOutput("%s;", generator.declare(field.Type, generator.prefix+field.Name))
			fields++
		}
	}
	if fields == 0 {
		// Empty structs are not C99.
		writer.writeOutput("char %s_empty;", generator.prefix)
	}
	writer.indent--
	writer.writeOutput("};")
}

var basicCTypes = map[TypeKind]string{
	IntegerKind: "int64_t",
	RealKind:    "double",
	BooleanKind: "bool",
	CharKind:    "char",
	SetKind:     "uint32_t",
	StringKind:  "char *",
	NilKind:     "void *",
	// imported types are never loaded.
	UnresolvedKind: "void *",
}

// declare returns a C declaration of name with type tp, name may be empty for an abstract
// declarator. Named types use their typedef.
func (generator *CodeGenerator) declare(tp *ResolvedType, name string) string {
	if tp == nil {
		return joinDeclarator("void", name)
	}
	if typeName, ok := generator.typeNames[tp]; ok {
		return joinDeclarator(typeName, name)
	}
	return generator.declareStructure(tp, name)
}

// declareStructure is declare without the typedef name of tp itself.
func (generator *CodeGenerator) declareStructure(tp *ResolvedType, name string) string {
	if basic, ok := basicCTypes[tp.Kind]; ok {
		return joinDeclarator(basic, name)
	}
	switch tp.Kind {
	case ArrayKind:
		if tp.Open {
			return generator.declare(tp.Element, "*"+name)
		}
		return generator.declare(tp.Element, fmt.Sprintf("%s[%d]", wrapPointer(name), tp.Length))
	case PointerKind:
		return generator.declare(tp.Target, "*"+name)
	case ProcedureKind:
		var params []string
		for _, param := range tp.Params {
			params = append(params, generator.declareParam(param, ""))
		}
		if len(params) == 0 {
			params = []string{"void"}
		}
		return generator.declare(tp.Result, fmt.Sprintf("(*%s)(%s)", name, strings.Join(params, ", ")))
	case RecordKind:
		generator.fail("record type %s has no C name", tp)
	}
	generator.fail("cannot declare %s", tp)
	return ""
}

// declareParam declares a formal parameter. VAR parameters that are not arrays become pointers,
// arrays are passed by address in C anyway.
func (generator *CodeGenerator) declareParam(param *ParamDesc, name string) string {
	if param.IsVar && param.Type.Kind != ArrayKind {
		return generator.declare(param.Type, "*"+name)
	}
	return generator.declare(param.Type, name)
}

func wrapPointer(declarator string) string {
	if strings.HasPrefix(declarator, "*") {
		return "(" + declarator + ")"
	}
	return declarator
}

func joinDeclarator(specifier, declarator string) string {
	if declarator == "" {
		return specifier
	}
	if strings.HasSuffix(specifier, "*") {
		return specifier + declarator
	}
	return specifier + " " + declarator
}

func (generator *CodeGenerator) generateDeclarations(decls *DeclSequenceAst) {
	var procedures []*ProcedureDeclAst
	var walk func(decls *DeclSequenceAst, global bool)
	walk = func(decls *DeclSequenceAst, global bool) {
		for _, decl := range decls.Consts {
			generator.defines.writeOutput("#define %s %s", generator.cName(decl.symbol), generator.expressionCode(decl.Value))
		}
		for _, decl := range decls.Types {
			generator.generateTypeDeclaration(decl)
		}
		for _, decl := range decls.Vars {
			if decl.resolved == nil {
				generator.fail("variable '%s' was not checked", decl.Names[0].Name)
			}
			generator.ensureDefined(decl.resolved)
			if !global {
				continue
			}
			for _, name := range decl.Names {
				generator.globals.writeOutput("%s;", generator.declare(decl.resolved, generator.prefix+name.Name))
			}
		}
		for _, decl := range decls.Procedures {
			generator.ensureDefined(decl.symbol.Type)
			if decl.Forward {
				continue
			}
			walk(decl.Decls, false)
			procedures = append(procedures, decl)
		}
	}
	walk(decls, true)
	for _, procedure := range procedures {
		generator.prototypes.writeOutput("%s;", generator.signature(procedure.symbol, procedure.Params))
	}
	for _, procedure := range procedures {
		generator.generateProcedure(procedure)
	}
}

func (generator *CodeGenerator) generateTypeDeclaration(decl *TypeDeclAst) {
	tp := decl.symbol.Type
	generator.ensureDefined(tp)
	if decl.Type.TP != NamedTypeTP {
		return
	}
	// An alias gets its own typedef, its uses are emitted with the aliased type.
	generator.types.writeOutput("typedef %s;", generator.declare(tp, generator.cName(decl.symbol)))
}

// signature renders a procedure heading with named parameters.
func (generator *CodeGenerator) signature(symbol *Symbol, params *FormalParamsAst) string {
	tp := symbol.Type
	var names []string
	if params != nil {
		for _, section := range params.Sections {
			names = append(names, section.Names...)
		}
	}
	if len(names) != len(tp.Params) {
		generator.fail("procedure '%s' has %d parameter names for %d parameters", symbol.Name, len(names), len(tp.Params))
	}
	var cParams []string
	for i, param := range tp.Params {
		cParams = append(cParams, generator.declareParam(param, generator.prefix+names[i]))
	}
	if len(cParams) == 0 {
		cParams = []string{"void"}
	}
	return generator.declare(tp.Result, fmt.Sprintf("%s(%s)", generator.cName(symbol), strings.Join(cParams, ", ")))
}

func (generator *CodeGenerator) generateProcedure(decl *ProcedureDeclAst) {
	writer := &generator.functions
	if writer.Len() > 0 {
		writer.WriteString("\n")
	}
	writer.writeOutput("%s {", generator.signature(decl.symbol, decl.Params))
	writer.indent++
	for _, vars := range decl.Decls.Vars {
		for _, name := range vars.Names {
			writer.writeOutput("%s;", generator.declare(vars.resolved, generator.prefix+name.Name))
		}
	}
	generator.generateStatements(writer, decl.Body)
	if decl.Return != nil {
		writer.writeOutput("return %s;", generator.convert(decl.Return, decl.symbol.Type.Result))
	}
	writer.indent--
	writer.writeOutput("}")
}

func (generator *CodeGenerator) generateBuiltins() {
	writer := &generator.builtins
	writeInt := generator.prefix + WriteIntBuiltin
	writeLn := generator.prefix + WriteLnBuiltin
	// The parameter name cannot be spelled by a user identifier.
	param := generator.prefix + "_n"
	generator.prototypes.writeOutput("void %s(int64_t %s);", writeInt, param)
	generator.prototypes.writeOutput("void %s(void);", writeLn)
	writer.writeOutput("void %s(int64_t %s) {", writeInt, param)
	writer.writeOutput("    printf(\"%%lld\", (long long)%s);", param)
	writer.writeOutput("}")
	writer.WriteString("\n")
	writer.writeOutput("void %s(void) {", writeLn)
	writer.writeOutput("    puts(\"\");")
	writer.writeOutput("}")
	if generator.usesRange {
		writer.WriteString("\n")
		writer.writeOutput("static uint32_t %s_range(int64_t lo, int64_t hi) {", generator.prefix)
		writer.writeOutput("    uint32_t set = 0;")
		writer.writeOutput("    for (int64_t i = lo; i <= hi; i++) {")
		writer.writeOutput("        set |= (uint32_t)1 << i;")
		writer.writeOutput("    }")
		writer.writeOutput("    return set;")
		writer.writeOutput("}")
	}
}

func (generator *CodeGenerator) generateStatements(writer *codeWriter, statements []*StatementAst) {
	for _, statement := range statements {
		generator.generateStatement(writer, statement)
	}
}

func (generator *CodeGenerator) generateStatement(writer *codeWriter, statement *StatementAst) {
	switch statement.StatementTP {
	case EmptyStatementTP:
	case AssignStatementTP:
		generator.generateAssignStatement(writer, statement.Statement.(*AssignStatementAst))
	case CallStatementTP:
		call := statement.Statement.(*CallStatementAst)
		writer.writeOutput("%s;", generator.callCode(call.Designator, call.Args))
	case IfStatementTP:
		generator.generateIfStatement(writer, statement.Statement.(*IfStatementAst))
	case CaseStatementTP:
		generator.generateCaseStatement(writer, statement.Statement.(*CaseStatementAst))
	case WhileStatementTP:
		generator.generateWhileStatement(writer, statement.Statement.(*WhileStatementAst))
	case RepeatStatementTP:
		repeat := statement.Statement.(*RepeatStatementAst)
		writer.writeOutput("do {")
		generator.generateBlock(writer, repeat.Statements)
		writer.writeOutput("} while (!(%s));", generator.expressionCode(repeat.Condition))
	case ForStatementTP:
		generator.generateForStatement(writer, statement.Statement.(*ForStatementAst))
	default:
		generator.fail("unknown statement type %d", statement.StatementTP)
	}
}

func (generator *CodeGenerator) generateBlock(writer *codeWriter, statements []*StatementAst) {
	writer.indent++
	generator.generateStatements(writer, statements)
	writer.indent--
}

func (generator *CodeGenerator) generateAssignStatement(writer *codeWriter, assign *AssignStatementAst) {
	target := generator.designatorCode(assign.Target)
	targetType := assign.Target.tp
	if targetType == nil {
		generator.fail("assignment target '%s' was not checked", designatorName(assign.Target))
	}
	if targetType.Kind == ArrayKind {
		// sizeof the type, an array parameter is a pointer in C.
		writer.writeOutput("memcpy(%s, %s, sizeof(%s));", target, generator.expressionCode(assign.Value),
			generator.declare(targetType, ""))
		return
	}
	writer.writeOutput("%s = %s;", target, generator.convert(assign.Value, targetType))
}

func (generator *CodeGenerator) generateIfStatement(writer *codeWriter, statement *IfStatementAst) {
	writer.writeOutput("if (%s) {", generator.expressionCode(statement.If.Condition))
	generator.generateBlock(writer, statement.If.Statements)
	for _, elsif := range statement.Elsifs {
		writer.writeOutput("} else if (%s) {", generator.expressionCode(elsif.Condition))
		generator.generateBlock(writer, elsif.Statements)
	}
	if statement.HasElse {
		writer.writeOutput("} else {")
		generator.generateBlock(writer, statement.ElseStatements)
	}
	writer.writeOutput("}")
}

// generateCaseStatement uses the GNU case range extension for label ranges.
func (generator *CodeGenerator) generateCaseStatement(writer *codeWriter, statement *CaseStatementAst) {
	selector := statement.Selector
	writer.writeOutput("switch (%s) {", generator.expressionCode(selector))
	label := func(value int64) string {
		if generator.typeOf(selector).Kind == CharKind {
			return charConstant(value)
		}
		return integerConstant(value)
	}
	for _, clause := range statement.Clauses {
		for _, caseLabel := range clause.Labels {
			if caseLabel.startValue == caseLabel.endValue {
				writer.writeOutput("case %s:", label(caseLabel.startValue))
				continue
			}
			writer.writeOutput("case %s ... %s:", label(caseLabel.startValue), label(caseLabel.endValue))
		}
		generator.generateBlock(writer, clause.Statements)
		writer.indent++
		writer.writeOutput("break;")
		writer.indent--
	}
	if statement.HasElse {
		writer.writeOutput("default:")
		generator.generateBlock(writer, statement.ElseStatements)
		writer.indent++
		writer.writeOutput("break;")
		writer.indent--
	}
	writer.writeOutput("}")
}

// generateWhileStatement lowers WHILE with ELSIF arms into an endless loop around a chained
// conditional whose final branch leaves the loop.
func (generator *CodeGenerator) generateWhileStatement(writer *codeWriter, statement *WhileStatementAst) {
	if len(statement.Elsifs) == 0 {
		writer.writeOutput("while (%s) {", generator.expressionCode(statement.While.Condition))
		generator.generateBlock(writer, statement.While.Statements)
		writer.writeOutput("}")
		return
	}
	writer.writeOutput("while (1) {")
	writer.indent++
	writer.writeOutput("if (%s) {", generator.expressionCode(statement.While.Condition))
	generator.generateBlock(writer, statement.While.Statements)
	for _, elsif := range statement.Elsifs {
		writer.writeOutput("} else if (%s) {", generator.expressionCode(elsif.Condition))
		generator.generateBlock(writer, elsif.Statements)
	}
	writer.writeOutput("} else {")
	writer.writeOutput("    break;")
	writer.writeOutput("}")
	writer.indent--
	writer.writeOutput("}")
}

// generateForStatement evaluates the end value and a non constant step once, before the loop.
func (generator *CodeGenerator) generateForStatement(writer *codeWriter, statement *ForStatementAst) {
	if statement.symbol == nil {
		generator.fail("FOR loop variable '%s' was not checked", statement.Variable)
	}
	variable := generator.variableCode(statement.symbol)
	generator.temps++
	end := fmt.Sprintf("%s_for_end%d", generator.prefix, generator.temps)
	writer.writeOutput("{")
	writer.indent++
	writer.writeOutput("int64_t %s = %s;", end, generator.expressionCode(statement.End))
	step, condition := "1LL", fmt.Sprintf("%s <= %s", variable, end)
	if statement.Step != nil {
		if value, ok := EvalConstExpr(nil, statement.Step); ok {
			step = integerConstant(value)
			if value < 0 {
				condition = fmt.Sprintf("%s >= %s", variable, end)
			}
		} else {
			step = fmt.Sprintf("%s_for_step%d", generator.prefix, generator.temps)
			writer.writeOutput("int64_t %s = %s;", step, generator.expressionCode(statement.Step))
			condition = fmt.Sprintf("(%s > 0 ? %s <= %s : %s >= %s)", step, variable, end, variable, end)
		}
	}
	writer.writeOutput("for (%s = %s; %s; %s += %s) {", variable, generator.expressionCode(statement.Start),
		condition, variable, step)
	generator.generateBlock(writer, statement.Statements)
	writer.writeOutput("}")
	writer.indent--
	writer.writeOutput("}")
}

// callCode renders a call. VAR arguments are passed by address unless they are arrays.
func (generator *CodeGenerator) callCode(designator *DesignatorAst, args []*ExpressionAst) string {
	callee := generator.designatorCode(designator)
	tp := designator.tp
	if tp == nil {
		generator.fail("callee '%s' was not checked", designatorName(designator))
	}
	if tp.Kind == UnresolvedKind {
		var cArgs []string
		for _, arg := range args {
			cArgs = append(cArgs, generator.expressionCode(arg))
		}
		return fmt.Sprintf("%s(%s)", callee, strings.Join(cArgs, ", "))
	}
	if tp.Kind != ProcedureKind || len(tp.Params) != len(args) {
		generator.fail("'%s' cannot be called with %d arguments", designatorName(designator), len(args))
	}
	var cArgs []string
	for i, arg := range args {
		param := tp.Params[i]
		switch {
		case param.IsVar && param.Type.Kind != ArrayKind:
			cArgs = append(cArgs, "&"+generator.expressionCode(arg))
		case param.Type.Kind == ArrayKind:
			cArgs = append(cArgs, generator.expressionCode(arg))
		default:
			cArgs = append(cArgs, generator.convert(arg, param.Type))
		}
	}
	return fmt.Sprintf("%s(%s)", callee, strings.Join(cArgs, ", "))
}

// convert renders expr for a store into target. A pointer to an extension is cast to the
// pointer type of the base record.
func (generator *CodeGenerator) convert(expr *ExpressionAst, target *ResolvedType) string {
	code := generator.expressionCode(expr)
	tp := generator.typeOf(expr)
	if tp.Kind == PointerKind && target.Kind == PointerKind && !SameType(tp, target) {
		return fmt.Sprintf("((%s)%s)", generator.declare(target, ""), code)
	}
	return code
}

func (generator *CodeGenerator) typeOf(expr *ExpressionAst) *ResolvedType {
	if expr.tp == nil {
		generator.fail("expression at %d:%d was not checked", expr.Line, expr.Column)
	}
	return expr.tp
}

// variableCode is the C lvalue of a variable. VAR parameters other than arrays are pointers.
func (generator *CodeGenerator) variableCode(symbol *Symbol) string {
	name := generator.cName(symbol)
	if symbol.IsVarParam && symbol.Type.Kind != ArrayKind {
		return "(*" + name + ")"
	}
	return name
}

func (generator *CodeGenerator) designatorCode(designator *DesignatorAst) string {
	symbol := designator.symbol
	if symbol == nil {
		generator.fail("designator '%s' was not checked", designatorName(designator))
	}
	if designator.Base.Module != "" {
		return generator.prefix + designator.Base.Module + "_" + designator.Base.Name
	}
	var code string
	switch symbol.Kind {
	case VariableSymbol:
		code = generator.variableCode(symbol)
	case ConstantSymbol, ProcedureSymbol:
		code = generator.cName(symbol)
	default:
		generator.fail("%s '%s' cannot be used in an expression", symbol.Kind, symbol.Name)
	}
	for _, selector := range designator.Selectors {
		switch selector.TP {
		case FieldSelectorTP:
			if selector.implicitDeref {
				code = fmt.Sprintf("%s->%s%s", code, generator.prefix, selector.Field)
				continue
			}
			code = fmt.Sprintf("%s.%s%s", code, generator.prefix, selector.Field)
		case IndexSelectorTP:
			for _, index := range selector.Indices {
				code = fmt.Sprintf("%s[%s]", code, generator.expressionCode(index))
			}
		case DerefSelectorTP:
			code = fmt.Sprintf("(*%s)", code)
		case TypeGuardSelectorTP:
			guard := selector.guardType
			if guard == nil {
				generator.fail("type guard %s was not checked", selector.Guard)
			}
			if guard.Kind == RecordKind {
				code = fmt.Sprintf("(*(%s *)&%s)", generator.declare(guard, ""), code)
				continue
			}
			code = fmt.Sprintf("((%s)%s)", generator.declare(guard, ""), code)
		}
	}
	return code
}

var binaryCOps = map[TokenType]string{
	AddTP:          "+",
	MinusTP:        "-",
	MultiplyTP:     "*",
	DivideTP:       "/",
	DivTP:          "/",
	ModTP:          "%",
	AndTP:          "&&",
	OrTP:           "||",
	EqualTP:        "==",
	NotEqualTP:     "!=",
	LessTP:         "<",
	LessEqualTP:    "<=",
	GreaterTP:      ">",
	GreaterEqualTP: ">=",
}

var setCOps = map[TokenType]string{
	AddTP:      "|",
	MultiplyTP: "&",
	DivideTP:   "^",
}

func (generator *CodeGenerator) expressionCode(expr *ExpressionAst) string {
	switch expr.ExpressionTP {
	case IntegerExpressionTP:
		return integerConstant(expr.Value.(int64))
	case RealExpressionTP:
		return realConstant(expr.Value.(float64))
	case StringExpressionTP:
		if expr.charLiteral {
			code, _ := charLiteralCode(expr.Value.(string))
			return charConstant(code)
		}
		return stringConstant(expr.Value.(string))
	case BooleanExpressionTP:
		return strconv.FormatBool(expr.Value.(bool))
	case NilExpressionTP:
		return "NULL"
	case SetExpressionTP:
		return generator.setCode(expr)
	case DesignatorExpressionTP:
		return generator.designatorCode(expr.Designator)
	case CallExpressionTP:
		return generator.callCode(expr.Designator, expr.Args)
	case UnaryExpressionTP:
		operand := generator.expressionCode(expr.Right)
		switch {
		case expr.Op == NotTP:
			return "(!" + operand + ")"
		case expr.Op == MinusTP && generator.typeOf(expr.Right).Kind == SetKind:
			return "(~" + operand + ")"
		case expr.Op == MinusTP:
			return "(-" + operand + ")"
		}
		return "(+" + operand + ")"
	case BinaryExpressionTP:
		return generator.binaryCode(expr)
	}
	generator.fail("unknown expression type %d", expr.ExpressionTP)
	return ""
}

func (generator *CodeGenerator) binaryCode(expr *ExpressionAst) string {
	if expr.Op == IsTP {
		// No runtime type information.
		return "true"
	}
	left, right := generator.expressionCode(expr.Left), generator.expressionCode(expr.Right)
	leftType, rightType := generator.typeOf(expr.Left), generator.typeOf(expr.Right)
	switch {
	case expr.Op == InTP:
		return fmt.Sprintf("(((%s) >> (%s)) & 1u)", right, left)
	case leftType.Kind == SetKind && expr.Op == MinusTP:
		return fmt.Sprintf("(%s & ~%s)", left, right)
	case leftType.Kind == SetKind && setCOps[expr.Op] != "":
		return fmt.Sprintf("(%s %s %s)", left, setCOps[expr.Op], right)
	case leftType.Kind == StringKind && rightType.Kind == StringKind:
		return fmt.Sprintf("(strcmp(%s, %s) %s 0)", left, right, binaryCOps[expr.Op])
	case expr.Op == DivideTP && leftType.Kind == IntegerKind && rightType.Kind == IntegerKind:
		return fmt.Sprintf("((double)%s / %s)", left, right)
	case leftType.Kind == PointerKind && rightType.Kind == PointerKind && !SameType(leftType, rightType):
		return fmt.Sprintf("((void *)%s %s (void *)%s)", left, binaryCOps[expr.Op], right)
	}
	op, ok := binaryCOps[expr.Op]
	if !ok {
		generator.fail("unknown operator %s", expr.Op)
	}
	return fmt.Sprintf("(%s %s %s)", left, op, right)
}

// setCode folds constant sets into a mask, other elements are or-ed at run time.
func (generator *CodeGenerator) setCode(expr *ExpressionAst) string {
	var mask uint32
	var parts []string
	for _, element := range expr.Elements {
		start, startOk := EvalConstExpr(nil, element.Start)
		end, endOk := start, startOk
		if element.End != nil {
			end, endOk = EvalConstExpr(nil, element.End)
		}
		if startOk && endOk {
			for i := start; i <= end; i++ {
				mask |= 1 << uint(i)
			}
			continue
		}
		if element.End == nil {
			parts = append(parts, fmt.Sprintf("((uint32_t)1 << %s)", generator.expressionCode(element.Start)))
			continue
		}
		generator.usesRange = true
		parts = append(parts, fmt.Sprintf("%s_range(%s, %s)", generator.prefix,
			generator.expressionCode(element.Start), generator.expressionCode(element.End)))
	}
	if mask != 0 || len(parts) == 0 {
		parts = append([]string{fmt.Sprintf("%#xu", mask)}, parts...)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

func integerConstant(value int64) string {
	return strconv.FormatInt(value, 10) + "LL"
}

// realConstant always carries a decimal point or an exponent, so C sees a double.
func realConstant(value float64) string {
	code := strconv.FormatFloat(value, 'g', -1, 64)
	if !strings.ContainsAny(code, ".eEnN") {
		code += ".0"
	}
	return code
}

func charConstant(code int64) string {
	if util.IsASCIIPrintable(rune(code)) && code != '\'' && code != '\\' {
		return fmt.Sprintf("'%c'", rune(code))
	}
	return fmt.Sprintf("'\\%03o'", code)
}

// stringConstant escapes with octal sequences, they never swallow a following character.
// Characters outside ASCII keep their UTF-8 bytes.
func stringConstant(value string) string {
	var builder strings.Builder
	builder.WriteString("\"")
	for _, b := range []byte(value) {
		if util.IsASCIIPrintable(rune(b)) && b != '"' && b != '\\' && b != '?' {
			builder.WriteByte(b)
			continue
		}
		builder.WriteString(fmt.Sprintf("\\%03o", b))
	}
	builder.WriteString("\"")
	return builder.String()
}
