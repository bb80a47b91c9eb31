package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkModule(t *testing.T, content string, maxErrors int) (*ModuleAst, error) {
	t.Helper()
	module, err := parseModule(t, content)
	require.Nil(t, err, content)
	return module, NewTypeChecker(maxErrors).Check(module)
}

func TestTypeChecker_Accepts(t *testing.T) {
	testData := []string{
		"MODULE M; VAR x: INTEGER; BEGIN x := 1 + 2 * 3 END M.",
		"MODULE M; VAR r: REAL; BEGIN r := 1; r := r * 2 / 3; r := -r END M.",
		`MODULE M;
VAR r: INTEGER;
PROCEDURE Fact(n: INTEGER): INTEGER;
  VAR t: INTEGER;
BEGIN
  IF n <= 1 THEN t := 1 ELSE t := n * Fact(n - 1) END
  RETURN t
END Fact;
BEGIN r := Fact(5); WriteInt(r); WriteLn END M.`,
		`MODULE M;
CONST N = 4; M2 = N * 2 - 1; Name = "abc";
TYPE Vec = ARRAY N, M2 OF INTEGER;
VAR v: Vec; i, j: INTEGER;
BEGIN
  FOR i := 0 TO N - 1 DO
    FOR j := M2 - 1 TO 0 BY -1 DO v[i, j] := i * j; v[i][j] := v[i, j] DIV 2 MOD 3 END
  END;
  v[3, 6] := 1
END M.`,
		`MODULE M;
TYPE
  Node = POINTER TO NodeDesc;
  NodeDesc = RECORD key: INTEGER; next: Node END;
  Ext = POINTER TO ExtDesc;
  ExtDesc = RECORD (NodeDesc) extra: BOOLEAN END;
VAR n: Node; e: Ext; b: BOOLEAN;
BEGIN
  n := NIL; n := e; n^.key := 1; n.next := n; n.next.next := NIL;
  e.key := 2; e.extra := n = e;
  b := n IS Ext; e := n(Ext); b := (n # NIL) OR ~b
END M.`,
		`MODULE M;
VAR s, t: SET; b: BOOLEAN; i: INTEGER;
BEGIN
  s := {1, 3..5}; t := s + {i}; t := s - t; t := s * t; t := s / t; t := -t;
  b := 3 IN s; b := s = t
END M.`,
		`MODULE M;
VAR c: CHAR; i: INTEGER; b: BOOLEAN;
BEGIN
  c := "a"; c := 41X; b := c = "z"; b := "a" < c;
  CASE c OF "a", "b": i := 1 | "x": i := 2 ELSE i := 0 END;
  CASE i OF 1..3: c := "q" | 4, 5: | ELSE END
END M.`,
		`MODULE M;
PROCEDURE ^ Odd(n: INTEGER): BOOLEAN;
PROCEDURE Even(n: INTEGER): BOOLEAN;
  VAR r: BOOLEAN;
BEGIN
  IF n = 0 THEN r := TRUE ELSE r := Odd(n - 1) END
  RETURN r
END Even;
PROCEDURE Odd(n: INTEGER): BOOLEAN;
BEGIN
  RETURN (n # 0) & Even(n - 1)
END Odd;
END M.`,
		`MODULE M;
VAR a: ARRAY 3 OF INTEGER; g: INTEGER;
PROCEDURE Sum(VAR x: ARRAY OF INTEGER; n: INTEGER): INTEGER;
  VAR i, s: INTEGER;
BEGIN
  FOR i := 0 TO n - 1 DO s := s + x[i] END
  RETURN s
END Sum;
PROCEDURE Swap(VAR x, y: INTEGER);
  VAR t: INTEGER;
BEGIN t := x; x := y; y := t
END Swap;
PROCEDURE Len(s: ARRAY OF CHAR): INTEGER;
BEGIN RETURN 0
END Len;
BEGIN g := Sum(a, 3); Swap(a[0], g); g := Len("hello")
END M.`,
		`MODULE M;
VAR g: INTEGER;
PROCEDURE Outer;
  CONST K = 3;
  TYPE T = INTEGER;
  VAR x: T;
  PROCEDURE Inner(y: T);
  BEGIN g := y + K
  END Inner;
BEGIN x := K; Inner(x)
END Outer;
BEGIN Outer
END M.`,
		`MODULE M;
TYPE F = PROCEDURE (x: INTEGER): INTEGER;
VAR f: F; r: INTEGER;
PROCEDURE Twice(x: INTEGER): INTEGER;
BEGIN RETURN x * 2
END Twice;
BEGIN f := Twice; f := NIL; f := Twice; r := f(3)
END M.`,
		`MODULE M;
IMPORT Out, io := Files;
VAR x: INTEGER; h: io.Handle;
BEGIN Out.Int(x, 0); x := io.size; Out.Ln
END M.`,
		`MODULE M;
VAR i: INTEGER;
BEGIN
  WHILE i < 10 DO i := i + 1 ELSIF i > 20 DO i := i - 1 END;
  REPEAT i := i - 1 UNTIL i = 0;
  IF i = 0 THEN ; ELSIF i = 1 THEN i := 2 ELSE END
END M.`,
	}
	for _, content := range testData {
		_, err := checkModule(t, content, 1)
		assert.Nil(t, err, content)
	}
}

func TestTypeChecker_Errors(t *testing.T) {
	testData := []struct {
		Content string
		Msg     string
	}{
		{Content: "MODULE M; VAR b: BOOLEAN; BEGIN b := 1 END M.",
			Msg: "1:38: type mismatch in assignment to 'b': INTEGER is not assignable to BOOLEAN"},
		{Content: "MODULE M; VAR r: REAL; BEGIN FOR r := 1 TO 10 DO END END M.",
			Msg: "FOR loop variable 'r' must be INTEGER, found REAL"},
		{Content: "MODULE M; BEGIN x := 1 END M.", Msg: "undeclared identifier 'x'"},
		{Content: "MODULE M; VAR x: INTEGER; x: REAL; END M.",
			Msg: "duplicate symbol 'x', already declared as variable at line 1"},
		{Content: "MODULE M; VAR INTEGER: REAL; END M.", Msg: "duplicate symbol 'INTEGER', it is predefined"},
		{Content: "MODULE M; PROCEDURE WriteLn; END WriteLn; END M.", Msg: "duplicate symbol 'WriteLn', it is predefined"},
		{Content: "MODULE M; TYPE R = RECORD a: INTEGER; a: REAL END; END M.", Msg: "duplicate field name 'a' in record"},
		{Content: "MODULE M; CONST N = 1; BEGIN N := 2 END M.", Msg: "cannot assign to constant 'N'"},
		{Content: "MODULE M; VAR x: INTEGER; BEGIN IF x THEN END END M.", Msg: "IF condition must be BOOLEAN, found INTEGER"},
		{Content: "MODULE M; VAR x: INTEGER; BEGIN WHILE 1 DO END END M.", Msg: "WHILE condition must be BOOLEAN, found INTEGER"},
		{Content: "MODULE M; VAR x: INTEGER; BEGIN REPEAT UNTIL x END M.", Msg: "UNTIL condition must be BOOLEAN, found INTEGER"},
		{Content: "MODULE M; BEGIN WriteInt(1, 2) END M.",
			Msg: "wrong number of arguments in call to 'WriteInt': expected 1, found 2"},
		{Content: "MODULE M; BEGIN WriteInt(TRUE) END M.", Msg: "argument 1 of 'WriteInt': BOOLEAN is not assignable to INTEGER"},
		{Content: "MODULE M; VAR x: INTEGER; BEGIN x := WriteLn() END M.", Msg: "procedure 'WriteLn' does not return a value"},
		{Content: "MODULE M; VAR x: INTEGER; BEGIN x(1) END M.", Msg: "'x' is not a procedure"},
		{Content: "MODULE M; VAR x: INTEGER; BEGIN x := 1 DIV 2.0 END M.", Msg: "operator DIV is not applicable to INTEGER and REAL"},
		{Content: "MODULE M; VAR x: INTEGER; BEGIN x := 1 / 2 END M.", Msg: "REAL is not assignable to INTEGER"},
		{Content: "MODULE M; VAR b: BOOLEAN; BEGIN b := 1 < TRUE END M.", Msg: "operator < is not applicable to INTEGER and BOOLEAN"},
		{Content: "MODULE M; VAR b: BOOLEAN; BEGIN b := ~1 END M.", Msg: "operator ~ is not applicable to INTEGER"},
		{Content: "MODULE M; VAR a: ARRAY 3 OF INTEGER; BEGIN a[3] := 1 END M.", Msg: "index 3 out of range for ARRAY 3 OF INTEGER"},
		{Content: "MODULE M; VAR a: ARRAY 3 OF INTEGER; BEGIN a[TRUE] := 1 END M.", Msg: "array index must be INTEGER, found BOOLEAN"},
		{Content: "MODULE M; VAR a: ARRAY 3 OF INTEGER; BEGIN a[1, 2] := 1 END M.", Msg: "cannot index 'a[...]', INTEGER is not an array"},
		{Content: "MODULE M; TYPE R = RECORD a: INTEGER END; VAR r: R; BEGIN r.b := 1 END M.", Msg: "record R has no field 'b'"},
		{Content: "MODULE M; VAR x: INTEGER; BEGIN x.a := 1 END M.", Msg: "cannot select field 'a' of 'x.a', INTEGER is not a record"},
		{Content: "MODULE M; VAR x: INTEGER; BEGIN x^ := 1 END M.", Msg: "cannot dereference 'x^' of type INTEGER"},
		{Content: "MODULE M; VAR x: INTEGER; BEGIN FOR x := 1 TO 2 BY 0 DO END END M.", Msg: "FOR step must not be zero"},
		{Content: "MODULE M; VAR x: INTEGER; BEGIN FOR x := 1 TO TRUE DO END END M.", Msg: "FOR end value must be INTEGER, found BOOLEAN"},
		{Content: "MODULE M; VAR x: INTEGER; BEGIN CASE x OF 1: | 1: END END M.", Msg: "duplicate CASE label 1"},
		{Content: "MODULE M; VAR x: INTEGER; BEGIN CASE x OF 1..5: | 3: END END M.", Msg: "duplicate CASE label 3"},
		{Content: "MODULE M; VAR x, y: INTEGER; BEGIN CASE x OF y: END END M.", Msg: "CASE label must be a constant integer expression"},
		{Content: "MODULE M; VAR r: REAL; BEGIN CASE r OF 1: END END M.", Msg: "CASE selector must be INTEGER or CHAR, found REAL"},
		{Content: "MODULE M; PROCEDURE P(x: INTEGER); CONST N = x; END P; END M.", Msg: "value of constant 'N' is not a constant expression"},
		{Content: "MODULE M; VAR a: ARRAY -1 OF INTEGER; END M.", Msg: "array length must not be negative, found -1"},
		{Content: "MODULE M; VAR n: INTEGER; a: ARRAY n OF INTEGER; END M.", Msg: "array length must be a constant integer expression"},
		{Content: "MODULE M; VAR a: ARRAY OF INTEGER; END M.", Msg: "open array is only allowed as a parameter type"},
		{Content: "MODULE M; TYPE P = POINTER TO Missing; END M.", Msg: "unknown type 'Missing'"},
		{Content: "MODULE M; VAR x: Unknown; END M.", Msg: "unknown type 'Unknown'"},
		{Content: "MODULE M; VAR x: INTEGER; y: x; END M.", Msg: "'x' is a variable, not a type"},
		{Content: "MODULE M; PROCEDURE F(): INTEGER; END F; END M.", Msg: "procedure 'F' must return a value of type INTEGER"},
		{Content: "MODULE M; PROCEDURE P; BEGIN RETURN 1 END P; END M.", Msg: "procedure 'P' has no return type but returns a value"},
		{Content: "MODULE M; PROCEDURE F(): BOOLEAN; BEGIN RETURN 1 END F; END M.",
			Msg: "type mismatch in return of 'F': INTEGER is not assignable to BOOLEAN"},
		{Content: "MODULE M; PROCEDURE ^ P(x: INTEGER); PROCEDURE P(x: REAL); END P; END M.",
			Msg: "signature of procedure 'P' does not match its forward declaration"},
		{Content: "MODULE M; PROCEDURE ^ P; END M.", Msg: "forward declared procedure 'P' is never defined"},
		{Content: "MODULE M; PROCEDURE P; END P; PROCEDURE P; END P; END M.", Msg: "duplicate symbol 'P', already declared as procedure"},
		{Content: `MODULE M;
PROCEDURE Outer;
  VAR x: INTEGER;
  PROCEDURE Inner; BEGIN x := 1 END Inner;
END Outer;
END M.`, Msg: "cannot access local variable 'x' of an enclosing procedure"},
		{Content: "MODULE M; PROCEDURE P(VAR x: INTEGER); END P; BEGIN P(1) END M.",
			Msg: "argument 1 of 'P' must be a variable, parameter 'x' is VAR"},
		{Content: "MODULE M; VAR r: REAL; PROCEDURE P(VAR x: INTEGER); END P; BEGIN P(r) END M.",
			Msg: "argument 1 of 'P': REAL does not match VAR parameter type INTEGER"},
		{Content: "MODULE M; PROCEDURE P(a: ARRAY OF INTEGER); BEGIN a[0] := 1 END P; END M.",
			Msg: "cannot assign to value parameter 'a[...]' of array type"},
		{Content: `MODULE M;
TYPE A = POINTER TO RECORD END; B = POINTER TO RECORD END;
VAR a: A; b: B;
BEGIN a := b END M.`, Msg: "B is not assignable to A"},
		{Content: `MODULE M;
TYPE Base = POINTER TO BaseDesc; BaseDesc = RECORD END;
  Ext = POINTER TO ExtDesc; ExtDesc = RECORD (BaseDesc) END;
VAR b: Base; e: Ext;
BEGIN e := b END M.`, Msg: "Base is not assignable to Ext"},
		{Content: "MODULE M; VAR c: CHAR; BEGIN c := \"ab\" END M.", Msg: "STRING is not assignable to CHAR"},
		{Content: `MODULE M;
TYPE T = POINTER TO RECORD f: INTEGER END;
VAR i: INTEGER;
BEGIN i(T).f := 1 END M.`, Msg: "type guard requires a pointer or a VAR record parameter, 'i' is INTEGER"},
		{Content: `MODULE M;
TYPE A = POINTER TO RECORD f: INTEGER END; B = POINTER TO RECORD f: INTEGER END;
VAR a: A;
BEGIN a(B).f := 1 END M.`, Msg: "type guard B is not an extension of A in 'a'"},
		{Content: "MODULE M; VAR s: SET; BEGIN s := {32} END M.", Msg: "set element 32 out of range 0..31"},
		{Content: "MODULE M; VAR x: INTEGER; BEGIN x := INTEGER END M.", Msg: "type 'INTEGER' cannot be used as a value"},
		{Content: "MODULE M; IMPORT Out; BEGIN Out := 1 END M.", Msg: "module 'Out' cannot be used as a value"},
		{Content: "MODULE M; VAR x: Lib.T; END M.", Msg: "unknown module 'Lib' in type 'Lib.T'"},
	}
	for _, data := range testData {
		_, err := checkModule(t, data.Content, 1)
		require.NotNil(t, err, data.Content)
		var semanticErr *SemanticError
		require.True(t, errors.As(err, &semanticErr), data.Content)
		require.Len(t, semanticErr.Diagnostics, 1, data.Content)
		assert.Contains(t, semanticErr.Diagnostics[0], data.Msg, data.Content)
	}
}

func TestTypeChecker_ErrorMessage(t *testing.T) {
	_, err := checkModule(t, "MODULE M; VAR b: BOOLEAN; BEGIN b := 1 END M.", 1)
	require.NotNil(t, err)
	assert.Equal(t, "Checker: 1:38: type mismatch in assignment to 'b': INTEGER is not assignable to BOOLEAN", err.Error())
}

func TestTypeChecker_AccumulateMode(t *testing.T) {
	content := `MODULE M;
VAR b: BOOLEAN; x: Unknown;
BEGIN
  b := 1;
  y := 2;
  x := 3;
  x.f := TRUE;
  b := 2
END M.`
	_, err := checkModule(t, content, 1)
	require.NotNil(t, err)
	assert.Len(t, Diagnostics(err), 1)

	_, err = checkModule(t, content, 10)
	require.NotNil(t, err)
	diagnostics := Diagnostics(err)
	require.Len(t, diagnostics, 4)
	assert.Contains(t, diagnostics[0], "2:20: unknown type 'Unknown'")
	assert.Contains(t, diagnostics[1], "4:8: type mismatch in assignment to 'b'")
	assert.Contains(t, diagnostics[2], "5:3: undeclared identifier 'y'")
	assert.Contains(t, diagnostics[3], "8:8: type mismatch in assignment to 'b'")

	_, err = checkModule(t, content, 2)
	assert.Len(t, Diagnostics(err), 2)
}

func TestTypeChecker_DuplicatesAfterErrors(t *testing.T) {
	content := `MODULE M;
CONST a = 1; a = TRUE + 1;
TYPE T = INTEGER; T = Unknown;
VAR v: INTEGER; v, w: Missing;
END M.`
	_, err := checkModule(t, content, 10)
	require.NotNil(t, err)
	diagnostics := Diagnostics(err)
	require.Len(t, diagnostics, 6)
	assert.Contains(t, diagnostics[0], "duplicate symbol 'a', already declared as constant at line 2")
	assert.Contains(t, diagnostics[1], "is not applicable to BOOLEAN and INTEGER")
	assert.Contains(t, diagnostics[2], "duplicate symbol 'T', already declared as type at line 3")
	assert.Contains(t, diagnostics[3], "unknown type 'Unknown'")
	assert.Contains(t, diagnostics[4], "duplicate symbol 'v', already declared as variable at line 4")
	assert.Contains(t, diagnostics[5], "unknown type 'Missing'")

	_, err = checkModule(t, content, 1)
	require.NotNil(t, err)
	assert.Equal(t, []string{"2:14: duplicate symbol 'a', already declared as constant at line 2"}, Diagnostics(err))
}

func TestTypeChecker_Annotations(t *testing.T) {
	module, err := checkModule(t, `MODULE M;
IMPORT io := Files;
TYPE
  Node = POINTER TO NodeDesc;
  NodeDesc = RECORD key: INTEGER END;
  Ext = POINTER TO ExtDesc;
  ExtDesc = RECORD (NodeDesc) END;
VAR c: CHAR; n: Node; e: Ext; i: INTEGER; a: ARRAY 2, 3 OF INTEGER;
BEGIN
  c := "a";
  n.key := 1;
  e := n(Ext);
  i := io.size;
  CASE c OF "a".."c": END
END M.`, 1)
	require.Nil(t, err)

	assign := module.Body[0].Statement.(*AssignStatementAst)
	assert.True(t, assign.Value.charLiteral)
	assert.Equal(t, CharKind, assign.Value.tp.Kind)

	assign = module.Body[1].Statement.(*AssignStatementAst)
	require.Len(t, assign.Target.Selectors, 1)
	assert.True(t, assign.Target.Selectors[0].implicitDeref)
	assert.Equal(t, VariableSymbol, assign.Target.symbol.Kind)

	assign = module.Body[2].Statement.(*AssignStatementAst)
	assert.Equal(t, DesignatorExpressionTP, assign.Value.ExpressionTP)
	require.Len(t, assign.Value.Designator.Selectors, 1)
	assert.Equal(t, TypeGuardSelectorTP, assign.Value.Designator.Selectors[0].TP)
	assert.Equal(t, "Ext", assign.Value.Designator.Selectors[0].Guard.Name)

	assign = module.Body[3].Statement.(*AssignStatementAst)
	assert.Equal(t, "io", assign.Value.Designator.Base.Module)
	assert.Equal(t, "size", assign.Value.Designator.Base.Name)
	assert.Empty(t, assign.Value.Designator.Selectors)
	assert.Equal(t, UnresolvedKind, assign.Value.tp.Kind)

	caseStatement := module.Body[4].Statement.(*CaseStatementAst)
	label := caseStatement.Clauses[0].Labels[0]
	assert.Equal(t, int64('a'), label.startValue)
	assert.Equal(t, int64('c'), label.endValue)

	resolved := module.Decls.Vars[4].resolved
	assert.Equal(t, int64(2), resolved.Length)
	assert.Equal(t, int64(3), resolved.Element.Length)

	assert.Equal(t, "Node", module.Decls.Types[0].symbol.Type.Name)
	assert.Same(t, module.Decls.Types[1].symbol.Type, module.Decls.Types[0].symbol.Type.Target)
}

func TestTypeChecker_ForwardCompletion(t *testing.T) {
	module, err := checkModule(t, `MODULE M;
PROCEDURE ^ P(x: INTEGER);
PROCEDURE Q; BEGIN P(1) END Q;
PROCEDURE P(x: INTEGER); BEGIN WriteInt(x) END P;
BEGIN Q END M.`, 1)
	require.Nil(t, err)
	procedures := module.Decls.Procedures
	require.Len(t, procedures, 3)
	assert.Same(t, procedures[0].symbol, procedures[2].symbol)
	assert.False(t, procedures[2].symbol.Forward)
	assert.Equal(t, 1, procedures[1].level)
}

func TestTypeChecker_NestedLevels(t *testing.T) {
	module, err := checkModule(t, `MODULE M;
PROCEDURE A;
  PROCEDURE B;
    PROCEDURE C; END C;
  BEGIN C END B;
BEGIN B END A;
END M.`, 1)
	require.Nil(t, err)
	a := module.Decls.Procedures[0]
	b := a.Decls.Procedures[0]
	c := b.Decls.Procedures[0]
	assert.Equal(t, 1, a.level)
	assert.Equal(t, 2, b.level)
	assert.Equal(t, 3, c.level)
}
