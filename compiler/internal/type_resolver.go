package internal

// TypeResolver turns TypeAst into ResolvedType against a symbol table.
type TypeResolver struct {
	table *SymbolTable

	// Inside a TYPE section a pointer may refer to a type declared later in the same section.
	// Such targets stay NamedKind placeholders until FinishTypeSection.
	allowForwardPointers bool
	pendingPointers      []*pendingPointer
}

type pendingPointer struct {
	pointer *ResolvedType
	target  *QualIdentAst
}

func NewTypeResolver(table *SymbolTable) *TypeResolver {
	return &TypeResolver{table: table}
}

// BeginTypeSection allows forward pointer targets until FinishTypeSection is called.
func (resolver *TypeResolver) BeginTypeSection() {
	resolver.allowForwardPointers = true
}

// FinishTypeSection binds every pending pointer target. A target that is still unknown
// is an error.
func (resolver *TypeResolver) FinishTypeSection() error {
	resolver.allowForwardPointers = false
	pending := resolver.pendingPointers
	resolver.pendingPointers = nil
	for _, p := range pending {
		target, err := resolver.resolveQualIdent(p.target)
		if err != nil {
			return err
		}
		p.pointer.Target = target
	}
	return nil
}

func (resolver *TypeResolver) ResolveType(tp *TypeAst) (*ResolvedType, error) {
	switch tp.TP {
	case NamedTypeTP:
		return resolver.resolveQualIdent(tp.Type.(*QualIdentAst))
	case ArrayTypeTP:
		return resolver.resolveArrayType(tp, tp.Type.(*ArrayTypeAst))
	case RecordTypeTP:
		return resolver.resolveRecordType(tp.Type.(*RecordTypeAst))
	case PointerTypeTP:
		return resolver.resolvePointerType(tp.Type.(*PointerTypeAst))
	case ProcedureTypeTP:
		return resolver.ResolveSignature(tp.Type.(*ProcedureTypeAst).Params)
	}
	return nil, makeSemanticError(tp.Pos, "unknown type form")
}

// resolveQualIdent resolves a type name. Names qualified by an imported module resolve to
// the unresolved type since imports are never loaded.
func (resolver *TypeResolver) resolveQualIdent(name *QualIdentAst) (*ResolvedType, error) {
	if name.Module != "" {
		symbol, ok := resolver.table.LookUp(name.Module)
		if !ok || symbol.Kind != ModuleSymbol {
			return nil, makeSemanticError(name.Pos, "unknown module '%s' in type '%s'", name.Module, name)
		}
		return unresolvedType, nil
	}
	symbol, ok := resolver.table.LookUp(name.Name)
	if !ok {
		return nil, makeSemanticError(name.Pos, "unknown type '%s'", name.Name)
	}
	if symbol.Kind != TypeSymbol {
		return nil, makeSemanticError(name.Pos, "'%s' is a %s, not a type", name.Name, symbol.Kind)
	}
	return symbol.Type, nil
}

func (resolver *TypeResolver) resolveArrayType(tp *TypeAst, array *ArrayTypeAst) (*ResolvedType, error) {
	element, err := resolver.ResolveType(array.Element)
	if err != nil {
		return nil, err
	}
	if len(array.Lengths) == 0 {
		if element.Kind == ArrayKind && element.Open {
			return nil, makeSemanticError(tp.Pos, "open array of open array is not supported")
		}
		return &ResolvedType{Kind: ArrayKind, Open: true, Element: element}, nil
	}
	if element.Kind == ArrayKind && element.Open {
		return nil, makeSemanticError(tp.Pos, "open array is only allowed as a parameter type")
	}
	sizes := make([]int64, len(array.Lengths))
	for i, length := range array.Lengths {
		size, ok := EvalConstExpr(resolver.table, length)
		if !ok {
			return nil, makeSemanticError(length.Pos, "array length must be a constant integer expression")
		}
		if size < 0 {
			return nil, makeSemanticError(length.Pos, "array length must not be negative, found %d", size)
		}
		sizes[i] = size
	}
	// ARRAY a, b OF T is ARRAY a OF ARRAY b OF T.
	ret := element
	for i := len(sizes) - 1; i >= 0; i-- {
		ret = &ResolvedType{Kind: ArrayKind, Length: sizes[i], Element: ret}
	}
	return ret, nil
}

func (resolver *TypeResolver) resolveRecordType(record *RecordTypeAst) (*ResolvedType, error) {
	ret := &ResolvedType{Kind: RecordKind}
	if record.Base != nil {
		base, err := resolver.resolveQualIdent(record.Base)
		if err != nil {
			return nil, err
		}
		if base.Kind == PointerKind && base.Target != nil {
			base = base.Target
		}
		if base.Kind != RecordKind {
			return nil, makeSemanticError(record.Base.Pos, "record base type '%s' is not a record", record.Base)
		}
		ret.Base = base
	}
	seen := map[string]bool{}
	for _, fieldList := range record.Fields {
		fieldType, err := resolver.ResolveType(fieldList.Type)
		if err != nil {
			return nil, err
		}
		if fieldType.Kind == ArrayKind && fieldType.Open {
			return nil, makeSemanticError(fieldList.Type.Pos, "open array is only allowed as a parameter type")
		}
		for _, name := range fieldList.Names {
			if seen[name.Name] {
				return nil, makeSemanticError(name.Pos, "duplicate field name '%s' in record", name.Name)
			}
			if ret.Base != nil {
				if _, ok := ret.Base.LookUpField(name.Name); ok {
					return nil, makeSemanticError(name.Pos, "field '%s' is already declared in the base record",
						name.Name)
				}
			}
			seen[name.Name] = true
			ret.Fields = append(ret.Fields, &FieldDesc{Name: name.Name, Export: name.Export, Type: fieldType})
		}
	}
	return ret, nil
}

func (resolver *TypeResolver) resolvePointerType(pointer *PointerTypeAst) (*ResolvedType, error) {
	ret := &ResolvedType{Kind: PointerKind}
	if pointer.Target.TP == NamedTypeTP && resolver.allowForwardPointers {
		name := pointer.Target.Type.(*QualIdentAst)
		if _, ok := resolver.table.LookUp(name.Name); !ok && name.Module == "" {
			ret.Target = &ResolvedType{Kind: NamedKind, Name: name.Name}
			resolver.pendingPointers = append(resolver.pendingPointers, &pendingPointer{pointer: ret, target: name})
			return ret, nil
		}
	}
	target, err := resolver.ResolveType(pointer.Target)
	if err != nil {
		return nil, err
	}
	ret.Target = target
	return ret, nil
}

// ResolveSignature resolves formal parameters to a ProcedureKind type. params may be nil.
func (resolver *TypeResolver) ResolveSignature(params *FormalParamsAst) (*ResolvedType, error) {
	ret := &ResolvedType{Kind: ProcedureKind}
	if params == nil {
		return ret, nil
	}
	for _, section := range params.Sections {
		tp, err := resolver.ResolveType(section.Type)
		if err != nil {
			return nil, err
		}
		for _, name := range section.Names {
			ret.Params = append(ret.Params, &ParamDesc{Name: name, IsVar: section.IsVar, Type: tp})
		}
	}
	if params.ReturnType != nil {
		result, err := resolver.resolveQualIdent(params.ReturnType)
		if err != nil {
			return nil, err
		}
		ret.Result = result
	}
	return ret, nil
}

// EvalConstExpr folds integer constant expressions. It only knows integer literals, named
// integer constants, unary + and - and the binary operators + - * DIV MOD. Anything else,
// including division by zero, is not constant.
func EvalConstExpr(table *SymbolTable, expr *ExpressionAst) (int64, bool) {
	switch expr.ExpressionTP {
	case IntegerExpressionTP:
		value, ok := expr.Value.(int64)
		return value, ok
	case DesignatorExpressionTP:
		designator := expr.Designator
		if len(designator.Selectors) > 0 || designator.Base.Module != "" {
			return 0, false
		}
		// A checked designator carries its symbol, the generator folds without a table.
		symbol := designator.symbol
		if symbol == nil {
			if table == nil {
				return 0, false
			}
			var ok bool
			if symbol, ok = table.LookUp(designator.Base.Name); !ok {
				return 0, false
			}
		}
		if symbol.Kind != ConstantSymbol {
			return 0, false
		}
		value, ok := symbol.Value.(int64)
		return value, ok
	case UnaryExpressionTP:
		operand, ok := EvalConstExpr(table, expr.Right)
		if !ok {
			return 0, false
		}
		switch expr.Op {
		case AddTP:
			return operand, true
		case MinusTP:
			return -operand, true
		}
		return 0, false
	case BinaryExpressionTP:
		left, ok := EvalConstExpr(table, expr.Left)
		if !ok {
			return 0, false
		}
		right, ok := EvalConstExpr(table, expr.Right)
		if !ok {
			return 0, false
		}
		switch expr.Op {
		case AddTP:
			return left + right, true
		case MinusTP:
			return left - right, true
		case MultiplyTP:
			return left * right, true
		case DivTP:
			if right == 0 {
				return 0, false
			}
			return left / right, true
		case ModTP:
			if right == 0 {
				return 0, false
			}
			return left % right, true
		}
	}
	return 0, false
}
