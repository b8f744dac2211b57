package syntax

// NodeKind discriminates syntax nodes.
type NodeKind uint8

const (
	NodeInvalid NodeKind = iota

	NodeChunk
	NodeBlock

	// statements
	NodeLocalStat     // [NameList, ExprList?]
	NodeAssignStat    // [ExprList targets, ExprList values]
	NodeCallStat      // [CallExpr]
	NodeFuncStat      // [name expr, Closure]
	NodeLocalFuncStat // [LocalName, Closure]
	NodeDoStat        // [Block]
	NodeWhileStat     // [cond, Block]
	NodeRepeatStat    // [Block, cond]
	NodeIfStat        // [cond, Block, (ElseIfClause|ElseClause)...]
	NodeElseIfClause  // [cond, Block]
	NodeElseClause    // [Block]
	NodeForNumStat    // [LocalName, start, stop, step?, Block]
	NodeForInStat     // [NameList, ExprList, Block]
	NodeReturnStat    // [ExprList?]
	NodeBreakStat
	NodeGotoStat  // Text = label
	NodeLabelStat // Text = label
	NodeDocStat   // detached doc comment, no children

	// expressions
	NodeName // Text = identifier
	NodeNil
	NodeTrue
	NodeFalse
	NodeNumber // Text = literal
	NodeString // Text = decoded value
	NodeVararg
	NodeIndexExpr  // [prefix, key]
	NodeCallExpr   // [prefix, ArgList]
	NodeClosure    // [ParamList, Block]
	NodeTableExpr  // [TableField...]
	NodeTableField // [key?, value]
	NodeBinaryExpr // [lhs, rhs], Op
	NodeUnaryExpr  // [operand], Op
	NodeParenExpr  // [expr]

	// lists
	NodeNameList  // [LocalName...]
	NodeLocalName // Text = identifier
	NodeExprList
	NodeParamList // [LocalName...], FlagVararg
	NodeArgList
)

var nodeKindNames = [...]string{
	NodeInvalid:       "Invalid",
	NodeChunk:         "Chunk",
	NodeBlock:         "Block",
	NodeLocalStat:     "LocalStat",
	NodeAssignStat:    "AssignStat",
	NodeCallStat:      "CallStat",
	NodeFuncStat:      "FuncStat",
	NodeLocalFuncStat: "LocalFuncStat",
	NodeDoStat:        "DoStat",
	NodeWhileStat:     "WhileStat",
	NodeRepeatStat:    "RepeatStat",
	NodeIfStat:        "IfStat",
	NodeElseIfClause:  "ElseIfClause",
	NodeElseClause:    "ElseClause",
	NodeForNumStat:    "ForNumStat",
	NodeForInStat:     "ForInStat",
	NodeReturnStat:    "ReturnStat",
	NodeBreakStat:     "BreakStat",
	NodeGotoStat:      "GotoStat",
	NodeLabelStat:     "LabelStat",
	NodeDocStat:       "DocStat",
	NodeName:          "Name",
	NodeNil:           "Nil",
	NodeTrue:          "True",
	NodeFalse:         "False",
	NodeNumber:        "Number",
	NodeString:        "String",
	NodeVararg:        "Vararg",
	NodeIndexExpr:     "IndexExpr",
	NodeCallExpr:      "CallExpr",
	NodeClosure:       "Closure",
	NodeTableExpr:     "TableExpr",
	NodeTableField:    "TableField",
	NodeBinaryExpr:    "BinaryExpr",
	NodeUnaryExpr:     "UnaryExpr",
	NodeParenExpr:     "ParenExpr",
	NodeNameList:      "NameList",
	NodeLocalName:     "LocalName",
	NodeExprList:      "ExprList",
	NodeParamList:     "ParamList",
	NodeArgList:       "ArgList",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) && nodeKindNames[k] != "" {
		return nodeKindNames[k]
	}
	return "Invalid"
}

// IsStat reports whether the kind is a statement.
func (k NodeKind) IsStat() bool {
	return k >= NodeLocalStat && k <= NodeDocStat
}

// IsExpr reports whether the kind is an expression.
func (k NodeKind) IsExpr() bool {
	return k >= NodeName && k <= NodeParenExpr
}

// NodeFlags carries per-node syntactic details.
type NodeFlags uint16

const (
	FlagDot      NodeFlags = 1 << iota // a.b
	FlagColon                          // a:b, a:b(), function a:b()
	FlagBracket                        // a[b], [k] = v
	FlagNamed                          // { k = v }
	FlagVararg                         // (..., )
	FlagConst                          // <const>
	FlagClose                          // <close>
	FlagMissing                        // placeholder created by error recovery
)
