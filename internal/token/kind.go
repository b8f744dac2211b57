package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	Ident     // name
	NumberLit // 1, 0x10, 1.5e3
	StringLit // "x", 'x', [[x]]

	KwAnd      // and
	KwBreak    // break
	KwDo       // do
	KwElse     // else
	KwElseif   // elseif
	KwEnd      // end
	KwFalse    // false
	KwFor      // for
	KwFunction // function
	KwGoto     // goto
	KwIf       // if
	KwIn       // in
	KwLocal    // local
	KwNil      // nil
	KwNot      // not
	KwOr       // or
	KwRepeat   // repeat
	KwReturn   // return
	KwThen     // then
	KwTrue     // true
	KwUntil    // until
	KwWhile    // while

	Plus       // +
	Minus      // -
	Star       // *
	Slash      // /
	SlashSlash // //
	Percent    // %
	Caret      // ^
	Hash       // #
	Amp        // &
	Tilde      // ~
	Pipe       // |
	Shl        // <<
	Shr        // >>
	EqEq       // ==
	TildeEq    // ~=
	LtEq       // <=
	GtEq       // >=
	Lt         // <
	Gt         // >
	Assign     // =
	LParen     // (
	RParen     // )
	LBrace     // {
	RBrace     // }
	LBracket   // [
	RBracket   // ]
	ColonColon // ::
	Semicolon  // ;
	Colon      // :
	Comma      // ,
	Dot        // .
	DotDot     // ..
	Ellipsis   // ...
)

var kindNames = [...]string{
	Invalid:    "invalid",
	EOF:        "eof",
	Ident:      "name",
	NumberLit:  "number",
	StringLit:  "string",
	KwAnd:      "and",
	KwBreak:    "break",
	KwDo:       "do",
	KwElse:     "else",
	KwElseif:   "elseif",
	KwEnd:      "end",
	KwFalse:    "false",
	KwFor:      "for",
	KwFunction: "function",
	KwGoto:     "goto",
	KwIf:       "if",
	KwIn:       "in",
	KwLocal:    "local",
	KwNil:      "nil",
	KwNot:      "not",
	KwOr:       "or",
	KwRepeat:   "repeat",
	KwReturn:   "return",
	KwThen:     "then",
	KwTrue:     "true",
	KwUntil:    "until",
	KwWhile:    "while",
	Plus:       "+",
	Minus:      "-",
	Star:       "*",
	Slash:      "/",
	SlashSlash: "//",
	Percent:    "%",
	Caret:      "^",
	Hash:       "#",
	Amp:        "&",
	Tilde:      "~",
	Pipe:       "|",
	Shl:        "<<",
	Shr:        ">>",
	EqEq:       "==",
	TildeEq:    "~=",
	LtEq:       "<=",
	GtEq:       ">=",
	Lt:         "<",
	Gt:         ">",
	Assign:     "=",
	LParen:     "(",
	RParen:     ")",
	LBrace:     "{",
	RBrace:     "}",
	LBracket:   "[",
	RBracket:   "]",
	ColonColon: "::",
	Semicolon:  ";",
	Colon:      ":",
	Comma:      ",",
	Dot:        ".",
	DotDot:     "..",
	Ellipsis:   "...",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "invalid"
}

// IsKeyword reports whether the kind is a reserved word.
func (k Kind) IsKeyword() bool {
	return k >= KwAnd && k <= KwWhile
}

// IsBlockEnd reports whether the kind closes a block.
func (k Kind) IsBlockEnd() bool {
	switch k {
	case EOF, KwEnd, KwElse, KwElseif, KwUntil:
		return true
	default:
		return false
	}
}
