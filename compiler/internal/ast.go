package internal

// In this file, we defined all ast of oberon according to the oberon grammar. Each source file
// holds exactly one module:
//
// MODULE Name; [IMPORT ...;] DeclSequence [BEGIN StatementSequence] END Name.
//
// Fields in lower case are annotations, the checker fills them and the generator reads them.

type Pos struct {
	Line   int
	Column int
}

type ModuleAst struct {
	Pos
	Name    string
	Imports []*ImportAst
	Decls   *DeclSequenceAst
	Body    []*StatementAst
	EndName string
}

// ImportAst is `Alias := Name` or just `Name`, in which case Alias equals Name.
type ImportAst struct {
	Pos
	Alias string
	Name  string
}

type ExportMark int

const (
	NotExported     ExportMark = iota
	ExportReadOnly             // *
	ExportReadWrite            // -
)

func (mark ExportMark) String() string {
	switch mark {
	case ExportReadOnly:
		return "*"
	case ExportReadWrite:
		return "-"
	}
	return ""
}

type IdentDefAst struct {
	Pos
	Name   string
	Export ExportMark
}

// QualIdentAst is an optionally module prefixed name.
type QualIdentAst struct {
	Pos
	Module string
	Name   string
}

func (q *QualIdentAst) String() string {
	if q.Module == "" {
		return q.Name
	}
	return q.Module + "." + q.Name
}

// DeclSequenceAst keeps every kind of declaration in its own list, in source order.
// Procedures own a DeclSequenceAst too, so there is no separate block ast.
type DeclSequenceAst struct {
	Consts     []*ConstDeclAst
	Types      []*TypeDeclAst
	Vars       []*VarDeclAst
	Procedures []*ProcedureDeclAst
}

type ConstDeclAst struct {
	Name  *IdentDefAst
	Value *ExpressionAst

	symbol *Symbol // We set symbolTable reference here.
}

type TypeDeclAst struct {
	Name *IdentDefAst
	Type *TypeAst

	symbol *Symbol // We set symbolTable reference here.
}

type VarDeclAst struct {
	Names []*IdentDefAst
	Type  *TypeAst

	resolved *ResolvedType
}

type ProcedureDeclAst struct {
	Pos
	Name    *IdentDefAst
	Params  *FormalParamsAst // nil when the heading has no parameter list.
	Decls   *DeclSequenceAst
	Body    []*StatementAst
	Return  *ExpressionAst
	EndName string
	Forward bool

	symbol *Symbol // We set symbolTable reference here.
	level  int     // frame level of the body, 1 for procedures declared at module level.
}

type FormalParamsAst struct {
	Sections   []*FPSectionAst
	ReturnType *QualIdentAst
}

type FPSectionAst struct {
	Pos
	IsVar bool
	Names []string
	Type  *TypeAst
}

type TypeTP int

const (
	NamedTypeTP TypeTP = iota
	ArrayTypeTP
	RecordTypeTP
	PointerTypeTP
	ProcedureTypeTP
)

type TypeAst struct {
	Pos
	TP   TypeTP
	Type interface{} // One of *QualIdentAst, *ArrayTypeAst, *RecordTypeAst, *PointerTypeAst, *ProcedureTypeAst.
}

// ArrayTypeAst without lengths is an open array, only allowed for parameters.
type ArrayTypeAst struct {
	Lengths []*ExpressionAst
	Element *TypeAst
}

type RecordTypeAst struct {
	Base   *QualIdentAst
	Fields []*FieldListAst
}

type FieldListAst struct {
	Names []*IdentDefAst
	Type  *TypeAst
}

type PointerTypeAst struct {
	Target *TypeAst
}

type ProcedureTypeAst struct {
	Params *FormalParamsAst
}

type StatementAst struct {
	Pos
	StatementTP StatementType
	Statement   interface{}
}

type StatementType int

const (
	EmptyStatementTP StatementType = iota
	AssignStatementTP
	CallStatementTP
	IfStatementTP
	CaseStatementTP
	WhileStatementTP
	RepeatStatementTP
	ForStatementTP
)

type AssignStatementAst struct {
	Target *DesignatorAst
	Value  *ExpressionAst
}

// CallStatementAst is a procedure call, parentheses are optional for calls without arguments.
type CallStatementAst struct {
	Designator *DesignatorAst
	Args       []*ExpressionAst
}

type ConditionalAst struct {
	Condition  *ExpressionAst
	Statements []*StatementAst
}

type IfStatementAst struct {
	If             *ConditionalAst
	Elsifs         []*ConditionalAst
	ElseStatements []*StatementAst // nil when there is no ELSE.
	HasElse        bool
}

type CaseStatementAst struct {
	Selector       *ExpressionAst
	Clauses        []*CaseClauseAst
	ElseStatements []*StatementAst
	HasElse        bool
}

type CaseClauseAst struct {
	Labels     []*CaseLabelAst
	Statements []*StatementAst
}

// CaseLabelAst is a single label or, when End is set, the range Start..End.
type CaseLabelAst struct {
	Start *ExpressionAst
	End   *ExpressionAst

	startValue int64
	endValue   int64
}

type WhileStatementAst struct {
	While  *ConditionalAst
	Elsifs []*ConditionalAst
}

type RepeatStatementAst struct {
	Statements []*StatementAst
	Condition  *ExpressionAst
}

type ForStatementAst struct {
	Pos
	Variable   string
	Start      *ExpressionAst
	End        *ExpressionAst
	Step       *ExpressionAst // nil means a step of 1.
	Statements []*StatementAst

	symbol *Symbol // the loop variable.
}

type SelectorTP int

const (
	FieldSelectorTP SelectorTP = iota
	IndexSelectorTP
	DerefSelectorTP
	TypeGuardSelectorTP
)

type SelectorAst struct {
	Pos
	TP      SelectorTP
	Field   string           // FieldSelectorTP
	Indices []*ExpressionAst // IndexSelectorTP
	Guard   *QualIdentAst    // TypeGuardSelectorTP

	implicitDeref bool          // field access through a pointer.
	guardType     *ResolvedType // TypeGuardSelectorTP
}

type DesignatorAst struct {
	Pos
	Base      *QualIdentAst
	Selectors []*SelectorAst

	symbol *Symbol       // We set symbolTable reference here.
	tp     *ResolvedType // type of the whole designator.
}

type ExpressionType int

const (
	IntegerExpressionTP ExpressionType = iota
	RealExpressionTP
	StringExpressionTP
	BooleanExpressionTP
	NilExpressionTP
	SetExpressionTP
	DesignatorExpressionTP
	CallExpressionTP
	UnaryExpressionTP
	BinaryExpressionTP
)

type ExpressionAst struct {
	Pos
	ExpressionTP ExpressionType
	Value        interface{}      // int64, float64, string or bool for literals.
	Elements     []*SetElementAst // SetExpressionTP
	Designator   *DesignatorAst   // DesignatorExpressionTP and the callee of CallExpressionTP
	Args         []*ExpressionAst // CallExpressionTP
	Op           TokenType        // UnaryExpressionTP and BinaryExpressionTP
	Left         *ExpressionAst   // BinaryExpressionTP
	Right        *ExpressionAst   // operand of UnaryExpressionTP, right side of BinaryExpressionTP

	tp          *ResolvedType // We set the checked type here.
	charLiteral bool          // one character string used as CHAR.
}

type SetElementAst struct {
	Start *ExpressionAst
	End   *ExpressionAst
}
