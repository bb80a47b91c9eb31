package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseConstExpr parses content as the value of a constant declaration.
func parseConstExpr(t *testing.T, content string) *ExpressionAst {
	t.Helper()
	module, err := parseModule(t, "MODULE M; CONST X = "+content+"; END M.")
	require.Nil(t, err, content)
	return module.Decls.Consts[0].Value
}

func TestEvalConstExpr(t *testing.T) {
	table := NewSymbolTable()
	require.Nil(t, table.Define(&Symbol{Name: "N", Kind: ConstantSymbol, Type: integerType, Value: int64(10)}))
	require.Nil(t, table.Define(&Symbol{Name: "S", Kind: ConstantSymbol, Type: stringType}))
	require.Nil(t, table.Define(&Symbol{Name: "v", Kind: VariableSymbol, Type: integerType}))
	testData := []struct {
		Content string
		Value   int64
		Ok      bool
	}{
		{Content: "1 + 2 * 3", Value: 7, Ok: true},
		{Content: "-5 + 2", Value: -3, Ok: true},
		{Content: "+5", Value: 5, Ok: true},
		{Content: "N * 2 - 1", Value: 19, Ok: true},
		{Content: "(N + 2) DIV 5", Value: 2, Ok: true},
		{Content: "-7 DIV 2", Value: -3, Ok: true},
		{Content: "7 MOD 3", Value: 1, Ok: true},
		{Content: "0FFH", Value: 255, Ok: true},
		{Content: "1 DIV 0"},
		{Content: "1 MOD 0"},
		{Content: "v + 1"},
		{Content: "S"},
		{Content: "Unknown"},
		{Content: "1.5"},
		{Content: "4 / 2"},
		{Content: "TRUE"},
	}
	for _, data := range testData {
		value, ok := EvalConstExpr(table, parseConstExpr(t, data.Content))
		assert.Equal(t, data.Ok, ok, data.Content)
		assert.Equal(t, data.Value, value, data.Content)
	}
}

func parseTypeSection(t *testing.T, content string) []*TypeDeclAst {
	t.Helper()
	module, err := parseModule(t, "MODULE M; TYPE "+content+" END M.")
	require.Nil(t, err, content)
	return module.Decls.Types
}

// resolveTypeSection resolves and defines every declaration the way the checker does.
func resolveTypeSection(table *SymbolTable, decls []*TypeDeclAst) ([]*ResolvedType, error) {
	resolver := NewTypeResolver(table)
	resolver.BeginTypeSection()
	var ret []*ResolvedType
	for _, decl := range decls {
		tp, err := resolver.ResolveType(decl.Type)
		if err != nil {
			return nil, err
		}
		if decl.Type.TP != NamedTypeTP {
			tp.Name = decl.Name.Name
		}
		if err := table.Define(&Symbol{Name: decl.Name.Name, Kind: TypeSymbol, Type: tp}); err != nil {
			return nil, err
		}
		ret = append(ret, tp)
	}
	return ret, resolver.FinishTypeSection()
}

func TestTypeResolver_Arrays(t *testing.T) {
	table := NewSymbolTable()
	require.Nil(t, table.Define(&Symbol{Name: "N", Kind: ConstantSymbol, Type: integerType, Value: int64(4)}))
	decls := parseTypeSection(t, "A = ARRAY N, N * 2 OF CHAR; B = ARRAY 3 OF A;")
	types, err := resolveTypeSection(table, decls)
	require.Nil(t, err)

	a := types[0]
	assert.Equal(t, ArrayKind, a.Kind)
	assert.Equal(t, int64(4), a.Length)
	assert.Equal(t, int64(8), a.Element.Length)
	assert.Same(t, charType, a.Element.Element)

	b := types[1]
	assert.Equal(t, int64(3), b.Length)
	assert.Same(t, a, b.Element)
	assert.Equal(t, "B", b.String())
}

func TestTypeResolver_Records(t *testing.T) {
	table := NewSymbolTable()
	types, err := resolveTypeSection(table, parseTypeSection(t, `
Base = RECORD a*, b: INTEGER END;
Ext = RECORD (Base) c-: REAL END;
PBase = POINTER TO Base;
Ext2 = RECORD (PBase) d: BOOLEAN END;`))
	require.Nil(t, err)
	base, ext, ext2 := types[0], types[1], types[3]
	require.Len(t, base.Fields, 2)
	assert.Equal(t, ExportReadOnly, base.Fields[0].Export)
	assert.Same(t, base, ext.Base)
	assert.Equal(t, ExportReadWrite, ext.Fields[0].Export)
	assert.Same(t, base, ext2.Base)
	field, ok := ext2.LookUpField("b")
	require.True(t, ok)
	assert.Same(t, integerType, field.Type)

	testData := []struct {
		Content string
		Msg     string
	}{
		{Content: "R = RECORD a: INTEGER; a: REAL END;", Msg: "duplicate field name 'a' in record"},
		{Content: "R = RECORD a, a: INTEGER END;", Msg: "duplicate field name 'a' in record"},
		{Content: "B = RECORD a: INTEGER END; R = RECORD (B) a: INTEGER END;",
			Msg: "field 'a' is already declared in the base record"},
		{Content: "R = RECORD (INTEGER) END;", Msg: "record base type 'INTEGER' is not a record"},
		{Content: "R = RECORD a: ARRAY OF CHAR END;", Msg: "open array is only allowed as a parameter type"},
	}
	for _, data := range testData {
		_, err := resolveTypeSection(NewSymbolTable(), parseTypeSection(t, data.Content))
		require.NotNil(t, err, data.Content)
		assert.Contains(t, err.Error(), data.Msg, data.Content)
	}
}

func TestTypeResolver_ForwardPointers(t *testing.T) {
	table := NewSymbolTable()
	types, err := resolveTypeSection(table, parseTypeSection(t, `
List = POINTER TO ListDesc;
ListDesc = RECORD value: INTEGER; next: List END;`))
	require.Nil(t, err)
	list, desc := types[0], types[1]
	assert.Same(t, desc, list.Target)
	field, ok := desc.LookUpField("next")
	require.True(t, ok)
	assert.Same(t, list, field.Type)

	_, err = resolveTypeSection(NewSymbolTable(), parseTypeSection(t, "P = POINTER TO Nowhere;"))
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "unknown type 'Nowhere'")

	// Outside of a TYPE section the target must already be known.
	resolver := NewTypeResolver(NewSymbolTable())
	decls := parseTypeSection(t, "P = POINTER TO Later;")
	_, err = resolver.ResolveType(decls[0].Type)
	require.NotNil(t, err)
}

func TestTypeResolver_Signature(t *testing.T) {
	module, err := parseModule(t, "MODULE M; TYPE P = PROCEDURE (a, b: INTEGER; VAR c: ARRAY OF CHAR): REAL; END M.")
	require.Nil(t, err)
	resolver := NewTypeResolver(NewSymbolTable())
	tp, err := resolver.ResolveType(module.Decls.Types[0].Type)
	require.Nil(t, err)
	require.Len(t, tp.Params, 3)
	assert.Equal(t, "a", tp.Params[0].Name)
	assert.False(t, tp.Params[1].IsVar)
	assert.True(t, tp.Params[2].IsVar)
	assert.True(t, tp.Params[2].Type.Open)
	assert.Same(t, realType, tp.Result)

	signature, err := resolver.ResolveSignature(nil)
	require.Nil(t, err)
	assert.Empty(t, signature.Params)
	assert.Nil(t, signature.Result)
}

func TestTypeResolver_OpenArrays(t *testing.T) {
	testData := []struct {
		content string
		err     string
	}{
		{content: "P = PROCEDURE (VAR x: ARRAY OF ARRAY 3 OF INTEGER);"},
		{content: "P = PROCEDURE (VAR x: ARRAY OF ARRAY OF INTEGER);", err: "open array of open array is not supported"},
		{content: "P = PROCEDURE (x: ARRAY OF ARRAY OF ARRAY 2 OF CHAR);", err: "open array of open array is not supported"},
	}
	for _, test := range testData {
		decls := parseTypeSection(t, test.content)
		tp, err := NewTypeResolver(NewSymbolTable()).ResolveType(decls[0].Type)
		if test.err != "" {
			require.NotNil(t, err, test.content)
			assert.Contains(t, err.Error(), test.err)
			continue
		}
		require.Nil(t, err, test.content)
		param := tp.Params[0].Type
		assert.True(t, param.Open)
		assert.False(t, param.Element.Open)
		assert.Equal(t, int64(3), param.Element.Length)
	}
}
