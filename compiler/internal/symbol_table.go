package internal

import (
	"fmt"
	"strings"
)

type TypeKind int

const (
	IntegerKind TypeKind = iota
	RealKind
	BooleanKind
	CharKind
	StringKind
	SetKind
	NilKind
	ArrayKind
	RecordKind
	PointerKind
	ProcedureKind
	NamedKind      // a pointer target referenced before its declaration.
	UnresolvedKind // could not be resolved, an error was reported already.
)

// ResolvedType is the structural counterpart of TypeAst. Records and pointers are
// compared by identity, everything else structurally.
type ResolvedType struct {
	Kind TypeKind
	Name string // declared name, empty for anonymous types.

	Length  int64 // ArrayKind, ignored when Open.
	Open    bool  // ArrayKind, an open array parameter.
	Element *ResolvedType

	Base   *ResolvedType // RecordKind
	Fields []*FieldDesc  // RecordKind, own fields only, in declaration order.

	Target *ResolvedType // PointerKind

	Params []*ParamDesc  // ProcedureKind
	Result *ResolvedType // ProcedureKind, nil for proper procedures.
}

type FieldDesc struct {
	Name   string
	Export ExportMark
	Type   *ResolvedType
}

type ParamDesc struct {
	Name  string
	IsVar bool
	Type  *ResolvedType
}

var (
	integerType    = &ResolvedType{Kind: IntegerKind, Name: "INTEGER"}
	realType       = &ResolvedType{Kind: RealKind, Name: "REAL"}
	booleanType    = &ResolvedType{Kind: BooleanKind, Name: "BOOLEAN"}
	charType       = &ResolvedType{Kind: CharKind, Name: "CHAR"}
	setType        = &ResolvedType{Kind: SetKind, Name: "SET"}
	stringType     = &ResolvedType{Kind: StringKind}
	nilType        = &ResolvedType{Kind: NilKind}
	unresolvedType = &ResolvedType{Kind: UnresolvedKind}
)

func (tp *ResolvedType) String() string {
	if tp == nil {
		return "no type"
	}
	switch tp.Kind {
	case StringKind:
		return "STRING"
	case NilKind:
		return "NIL"
	case UnresolvedKind:
		return "unresolved type"
	}
	if tp.Name != "" {
		return tp.Name
	}
	switch tp.Kind {
	case ArrayKind:
		if tp.Open {
			return "ARRAY OF " + tp.Element.String()
		}
		return fmt.Sprintf("ARRAY %d OF %s", tp.Length, tp.Element.String())
	case RecordKind:
		return "RECORD"
	case PointerKind:
		return "POINTER TO " + tp.Target.String()
	case ProcedureKind:
		var params []string
		for _, param := range tp.Params {
			prefix := ""
			if param.IsVar {
				prefix = "VAR "
			}
			params = append(params, prefix+param.Type.String())
		}
		ret := "PROCEDURE (" + strings.Join(params, "; ") + ")"
		if tp.Result != nil {
			ret += ": " + tp.Result.String()
		}
		return ret
	}
	return "unknown type"
}

func (tp *ResolvedType) IsNumeric() bool {
	return tp.Kind == IntegerKind || tp.Kind == RealKind
}

// LookUpField walks the record and its base records.
func (tp *ResolvedType) LookUpField(name string) (*FieldDesc, bool) {
	for record := tp; record != nil; record = record.Base {
		for _, field := range record.Fields {
			if field.Name == name {
				return field, true
			}
		}
	}
	return nil, false
}

// Extends reports whether record tp is base itself or a direct or indirect extension of it.
func (tp *ResolvedType) Extends(base *ResolvedType) bool {
	for record := tp; record != nil; record = record.Base {
		if record == base {
			return true
		}
	}
	return false
}

// SameType is type identity. Records and pointers to records are identical only when they
// stem from the same declaration.
func SameType(a, b *ResolvedType) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case IntegerKind, RealKind, BooleanKind, CharKind, StringKind, SetKind, NilKind:
		return true
	case ArrayKind:
		return a.Open == b.Open && (a.Open || a.Length == b.Length) && SameType(a.Element, b.Element)
	case PointerKind:
		return SameType(a.Target, b.Target)
	case ProcedureKind:
		return SameSignature(a, b)
	case NamedKind:
		return a.Name == b.Name
	}
	return false
}

func SameSignature(a, b *ResolvedType) bool {
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if a.Params[i].IsVar != b.Params[i].IsVar || !SameType(a.Params[i].Type, b.Params[i].Type) {
			return false
		}
	}
	if a.Result == nil || b.Result == nil {
		return a.Result == nil && b.Result == nil
	}
	return SameType(a.Result, b.Result)
}

type SymbolKind int

const (
	ConstantSymbol SymbolKind = iota
	TypeSymbol
	VariableSymbol
	ProcedureSymbol
	ModuleSymbol
)

func (kind SymbolKind) String() string {
	switch kind {
	case ConstantSymbol:
		return "constant"
	case TypeSymbol:
		return "type"
	case VariableSymbol:
		return "variable"
	case ProcedureSymbol:
		return "procedure"
	}
	return "module"
}

type Symbol struct {
	Name   string
	Kind   SymbolKind
	Export ExportMark
	Pos    Pos
	Type   *ResolvedType // the constant type, the type itself, the variable type or the procedure signature.
	Value  interface{}   // folded constant value, only int64 values are folded.

	IsParam    bool
	IsVarParam bool
	Forward    bool   // a procedure declared with ^ and not completed yet.
	Builtin    bool   // WriteInt and WriteLn.
	ModuleName string // the imported module for an alias.

	level int // 0 for predefined and module level symbols.
}

// SymbolTable is a stack of frames. The outermost frame holds the predefined types and
// procedures together with the module level declarations, it is never popped. Each
// procedure body pushes one more frame.
type SymbolTable struct {
	frames []map[string]*Symbol
}

const (
	WriteIntBuiltin = "WriteInt"
	WriteLnBuiltin  = "WriteLn"
)

func NewSymbolTable() *SymbolTable {
	table := &SymbolTable{}
	table.EnterScope()
	table.initStandardLibrary()
	return table
}

func (table *SymbolTable) initStandardLibrary() {
	for _, tp := range []*ResolvedType{integerType, realType, booleanType, charType, setType} {
		table.frames[0][tp.Name] = &Symbol{Name: tp.Name, Kind: TypeSymbol, Type: tp, Builtin: true}
	}
	table.frames[0][WriteIntBuiltin] = &Symbol{
		Name:    WriteIntBuiltin,
		Kind:    ProcedureSymbol,
		Type:    &ResolvedType{Kind: ProcedureKind, Params: []*ParamDesc{{Name: "n", Type: integerType}}},
		Builtin: true,
	}
	table.frames[0][WriteLnBuiltin] = &Symbol{
		Name:    WriteLnBuiltin,
		Kind:    ProcedureSymbol,
		Type:    &ResolvedType{Kind: ProcedureKind},
		Builtin: true,
	}
}

func (table *SymbolTable) EnterScope() {
	table.frames = append(table.frames, map[string]*Symbol{})
}

func (table *SymbolTable) ExitScope() {
	if len(table.frames) <= 1 {
		return
	}
	table.frames = table.frames[:len(table.frames)-1]
}

// Level is the index of the innermost frame.
func (table *SymbolTable) Level() int {
	return len(table.frames) - 1
}

// Define adds symbol to the innermost frame. It fails when the name is already defined in
// that frame, shadowing a name of an outer frame is fine.
func (table *SymbolTable) Define(symbol *Symbol) error {
	frame := table.frames[len(table.frames)-1]
	if previous, ok := frame[symbol.Name]; ok {
		if previous.Builtin {
			return makeSemanticError(symbol.Pos, "duplicate symbol '%s', it is predefined", symbol.Name)
		}
		return makeSemanticError(symbol.Pos, "duplicate symbol '%s', already declared as %s at line %d",
			symbol.Name, previous.Kind, previous.Pos.Line)
	}
	symbol.level = table.Level()
	frame[symbol.Name] = symbol
	return nil
}

// LookUp searches from the innermost frame to the outermost one.
func (table *SymbolTable) LookUp(name string) (*Symbol, bool) {
	for i := len(table.frames) - 1; i >= 0; i-- {
		if symbol, ok := table.frames[i][name]; ok {
			return symbol, true
		}
	}
	return nil, false
}

// LookUpCurrent only searches the innermost frame.
func (table *SymbolTable) LookUpCurrent(name string) (*Symbol, bool) {
	symbol, ok := table.frames[len(table.frames)-1][name]
	return symbol, ok
}
