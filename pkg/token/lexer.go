package token

import (
	"strconv"
	"strings"

	"github.com/ignamv/veriloga/pkg/lex"
	"github.com/ignamv/veriloga/pkg/source"
)

// Internal tags used only by the lex.Lexer; they are mapped to Kind once a
// match is turned into a Token.
const (
	tagWhitespace uint = iota
	tagComment
	tagNewline
	tagDefine
	tagIfdef
	tagElsedef
	tagEndifdef
	tagInclude
	tagMacrocall
	tagRealNumber
	tagUnsignedNumber
	tagString
	tagSystemIdentifier
	tagIdentifier
	tagLattr
	tagRattr
	tagLparen
	tagRparen
	tagLbracket
	tagRbracket
	tagComma
	tagSemicolon
	tagColon
	tagContribution
	tagEquals
	tagNotEqual
	tagSmallerOrEqual
	tagGreaterOrEqual
	tagSmaller
	tagGreater
	tagLshift
	tagRshift
	tagPlus
	tagMinus
	tagRaised
	tagTimes
	tagDivided
	tagModulus
	tagAssign
	tagLogicalAnd
	tagLogicalOr
	tagLogicalNegation
	tagBitwiseAnd
	tagBitwiseOr
	tagBitwiseNegation
	tagXnor
	tagXor
	tagTernary
	tagEof
)

var digit = lex.Within('0', '9')
var digits = lex.Many(digit)
var digitsNonEmpty = lex.Sequence(digit, digits)

var siSuffix = lex.Or(
	lex.Unit('T'), lex.Unit('G'), lex.Unit('M'), lex.Unit('K'), lex.Unit('k'),
	lex.Unit('m'), lex.Unit('u'), lex.Unit('n'), lex.Unit('p'), lex.Unit('f'), lex.Unit('a'),
)

var exponent = lex.Sequence(
	lex.Or(lex.Unit('e'), lex.Unit('E')),
	lex.Many(lex.Or(lex.Unit('+'), lex.Unit('-'))),
	digitsNonEmpty,
)

// realNumber scans the two productions of REAL_NUMBER: a fractional literal
// with an optional suffix/exponent, or an integral literal that REQUIRES one
// (otherwise it is an UNSIGNED_NUMBER).
var realNumber lex.Scanner[rune] = lex.Or(
	lex.Sequence(digitsNonEmpty, lex.Unit('.'), digitsNonEmpty, lex.Many(lex.Or(siSuffix, exponent))),
	lex.Sequence(digitsNonEmpty, lex.Or(siSuffix, exponent)),
)

var unsignedNumber lex.Scanner[rune] = digitsNonEmpty

var identifierStart lex.Scanner[rune] = lex.Or(
	lex.Unit('_'), lex.Unit('\\'), lex.Within('a', 'z'), lex.Within('A', 'Z'))

var identifierRest lex.Scanner[rune] = lex.Many(lex.Or(
	lex.Unit('_'), lex.Unit('$'), lex.Within('0', '9'), lex.Within('a', 'z'), lex.Within('A', 'Z')))

var identifier lex.Scanner[rune] = lex.Sequence(identifierStart, identifierRest)

var systemIdentifier lex.Scanner[rune] = lex.Sequence(lex.Unit('$'), identifierStart, identifierRest)

var whitespace lex.Scanner[rune] = lex.Many(lex.Or(lex.Unit(' '), lex.Unit('\t')))

var newline lex.Scanner[rune] = lex.Many(lex.Unit('\n'))

var lineComment lex.Scanner[rune] = lex.Sequence(lex.Unit('/', '/'), lex.Until('\n'))

// stringLiteral matches a double-quoted string allowing \" escapes, without
// unescaping its contents (matching the original's literal TODO).
var stringLiteral lex.Scanner[rune] = lex.Sequence(
	lex.Unit('"'), lex.UntilUnescaped('\\', '"'), lex.Unit('"'))

func keyword(word string) lex.Scanner[rune] {
	runes := []rune(word)
	return func(items []rune) uint {
		if len(items) < len(runes) {
			return lex.NoMatch
		}
		for i, r := range runes {
			if items[i] != r {
				return lex.NoMatch
			}
		}
		if len(items) > len(runes) {
			n := items[len(runes)]
			if n == '_' || n == '\\' || (n >= '0' && n <= '9') ||
				(n >= 'a' && n <= 'z') || (n >= 'A' && n <= 'Z') {
				return lex.NoMatch
			}
		}
		return uint(len(runes))
	}
}

// defineNameOnly matches "`define NAME" without the optional trailing "(".
var defineNameOnly lex.Scanner[rune] = lex.Sequence(
	keyword("`define"), lex.Many(lex.Or(lex.Unit(' '), lex.Unit('\t'))), identifier)

// defineDirective matches "`define NAME" and, with no intervening
// whitespace, an optional immediate "(" marking a function-like macro
// (`define NAME(...)); the parenthesis (if present) is part of the DEFINE
// token itself, matching how the reference lexer captures it.
func defineDirective(items []rune) uint {
	n := defineNameOnly(items)
	if n == lex.NoMatch {
		return lex.NoMatch
	}
	if int(n) < len(items) && items[n] == '(' {
		return n + 1
	}
	return n
}

var ifdefDirective = keyword("`ifdef")
var elsedefDirective = keyword("`else")
var endifdefDirective = keyword("`endif")
var includeDirective = keyword("`include")

var macrocall lex.Scanner[rune] = lex.Sequence(lex.Unit('`'), identifier)

var rules = []lex.Rule[rune]{
	lex.NewRule(lineComment, tagComment),
	lex.NewRule(newline, tagNewline),
	lex.NewRule(whitespace, tagWhitespace),
	lex.NewRule(defineDirective, tagDefine),
	lex.NewRule(ifdefDirective, tagIfdef),
	lex.NewRule(elsedefDirective, tagElsedef),
	lex.NewRule(endifdefDirective, tagEndifdef),
	lex.NewRule(includeDirective, tagInclude),
	lex.NewRule(macrocall, tagMacrocall),
	lex.NewRule(lex.Unit('(', '*'), tagLattr),
	lex.NewRule(lex.Unit('*', ')'), tagRattr),
	lex.NewRule(lex.Unit('<', '+'), tagContribution),
	lex.NewRule(lex.Unit('<', '='), tagSmallerOrEqual),
	lex.NewRule(lex.Unit('>', '='), tagGreaterOrEqual),
	lex.NewRule(lex.Unit('<', '<'), tagLshift),
	lex.NewRule(lex.Unit('>', '>'), tagRshift),
	lex.NewRule(lex.Unit('=', '='), tagEquals),
	lex.NewRule(lex.Unit('!', '='), tagNotEqual),
	lex.NewRule(lex.Unit('&', '&'), tagLogicalAnd),
	lex.NewRule(lex.Unit('|', '|'), tagLogicalOr),
	lex.NewRule(lex.Unit('*', '*'), tagRaised),
	lex.NewRule(lex.Unit('^', '~'), tagXnor),
	lex.NewRule(lex.Unit('~', '^'), tagXnor),
	lex.NewRule(lex.Unit('('), tagLparen),
	lex.NewRule(lex.Unit(')'), tagRparen),
	lex.NewRule(lex.Unit('['), tagLbracket),
	lex.NewRule(lex.Unit(']'), tagRbracket),
	lex.NewRule(lex.Unit(','), tagComma),
	lex.NewRule(lex.Unit(';'), tagSemicolon),
	lex.NewRule(lex.Unit(':'), tagColon),
	lex.NewRule(lex.Unit('<'), tagSmaller),
	lex.NewRule(lex.Unit('>'), tagGreater),
	lex.NewRule(lex.Unit('='), tagAssign),
	lex.NewRule(lex.Unit('+'), tagPlus),
	lex.NewRule(lex.Unit('-'), tagMinus),
	lex.NewRule(lex.Unit('*'), tagTimes),
	lex.NewRule(lex.Unit('/'), tagDivided),
	lex.NewRule(lex.Unit('%'), tagModulus),
	lex.NewRule(lex.Unit('!'), tagLogicalNegation),
	lex.NewRule(lex.Unit('&'), tagBitwiseAnd),
	lex.NewRule(lex.Unit('|'), tagBitwiseOr),
	lex.NewRule(lex.Unit('~'), tagBitwiseNegation),
	lex.NewRule(lex.Unit('^'), tagXor),
	lex.NewRule(lex.Unit('?'), tagTernary),
	lex.NewRule(realNumber, tagRealNumber),
	lex.NewRule(unsignedNumber, tagUnsignedNumber),
	lex.NewRule(stringLiteral, tagString),
	lex.NewRule(systemIdentifier, tagSystemIdentifier),
	lex.NewRule(identifier, tagIdentifier),
	lex.NewRule(lex.Eof[rune](), tagEof),
}

var siMultiplier = map[rune]float64{
	'T': 1e12, 'G': 1e9, 'M': 1e6, 'K': 1e3, 'k': 1e3,
	'm': 1e-3, 'u': 1e-6, 'n': 1e-9, 'p': 1e-12, 'f': 1e-15, 'a': 1e-18,
}

// parseReal interprets a REAL_NUMBER lexeme, handling the plain
// fractional/exponent forms directly with strconv and the SI-suffixed forms
// by stripping the trailing letter and applying its multiplier.
func parseReal(text string) float64 {
	last := rune(text[len(text)-1])
	if mult, ok := siMultiplier[last]; ok {
		mantissa, _ := strconv.ParseFloat(text[:len(text)-1], 64)
		return mantissa * mult
	}
	v, _ := strconv.ParseFloat(text, 64)
	return v
}

// Lex tokenises a whole source file, returning every non-whitespace,
// non-comment token it contains, or the first syntax error encountered.
//
// Unlike the preprocessor-facing directive tokens (DEFINE, IFDEF, ...),
// which are consumed by package preprocess, Lex recognises them so the
// preprocessor can work purely in terms of tokens rather than re-scanning
// raw text.
func Lex(file *source.File) ([]Token, *source.SyntaxError) {
	lexer := lex.NewLexer(file.Contents, rules...)
	matches, ok := lexer.Collect()
	if !ok {
		loc := file.Location(lexer.Index())
		return nil, source.NewSyntaxError(source.Origin{loc}, "unrecognised character %q", string(file.Contents[lexer.Index()]))
	}
	var tokens []Token
	for _, m := range matches {
		switch m.Tag {
		case tagWhitespace, tagComment:
			continue
		}
		text := string(file.Contents[m.Start:m.End])
		origin := source.Origin{file.Location(m.Start)}
		tok, err := makeToken(m.Tag, text, origin)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

func makeToken(tag uint, text string, origin source.Origin) (Token, *source.SyntaxError) {
	base := Token{Text: text, Origin: origin}
	switch tag {
	case tagNewline:
		base.Kind = NEWLINE
	case tagDefine:
		base.Kind = DEFINE
		name := strings.TrimLeft(text[len("`define"):], " \t")
		if strings.HasSuffix(name, "(") {
			base.DefineHasParams = true
			name = name[:len(name)-1]
		}
		base.Text = name
	case tagIfdef:
		base.Kind = IFDEF
	case tagElsedef:
		base.Kind = ELSEDEF
	case tagEndifdef:
		base.Kind = ENDIFDEF
	case tagInclude:
		base.Kind = INCLUDE
	case tagMacrocall:
		base.Kind = MACROCALL
		base.Text = text[1:]
	case tagRealNumber:
		base.Kind = REAL_NUMBER
		base.Real = parseReal(text)
	case tagUnsignedNumber:
		base.Kind = UNSIGNED_NUMBER
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Token{}, source.NewSyntaxError(origin, "invalid integer literal %q", text)
		}
		base.Int = v
	case tagString:
		base.Kind = STRING_LITERAL
		base.Text = text[1 : len(text)-1]
	case tagSystemIdentifier:
		base.Kind = SYSTEM_IDENTIFIER
	case tagIdentifier:
		if k, ok := ReservedKind(text); ok {
			base.Kind = k
			base.Text = strings.ToLower(text)
		} else {
			base.Kind = SIMPLE_IDENTIFIER
		}
	case tagLattr:
		base.Kind = LATTR
	case tagRattr:
		base.Kind = RATTR
	case tagLparen:
		base.Kind = LPAREN
	case tagRparen:
		base.Kind = RPAREN
	case tagLbracket:
		base.Kind = LBRACKET
	case tagRbracket:
		base.Kind = RBRACKET
	case tagComma:
		base.Kind = COMMA
	case tagSemicolon:
		base.Kind = SEMICOLON
	case tagColon:
		base.Kind = COLON
	case tagContribution:
		base.Kind = ANALOGCONTRIBUTION
	case tagEquals:
		base.Kind = EQUALS
	case tagNotEqual:
		base.Kind = NOTEQUAL
	case tagSmallerOrEqual:
		base.Kind = SMALLEROREQUAL
	case tagGreaterOrEqual:
		base.Kind = GREATEROREQUAL
	case tagSmaller:
		base.Kind = SMALLER
	case tagGreater:
		base.Kind = GREATER
	case tagLshift:
		base.Kind = LOGICLEFTSHIFT
	case tagRshift:
		base.Kind = LOGICRIGHTSHIFT
	case tagPlus:
		base.Kind = PLUS
	case tagMinus:
		base.Kind = MINUS
	case tagRaised:
		base.Kind = RAISED
	case tagTimes:
		base.Kind = TIMES
	case tagDivided:
		base.Kind = DIVIDED
	case tagModulus:
		base.Kind = MODULUS
	case tagAssign:
		base.Kind = ASSIGNOP
	case tagLogicalAnd:
		base.Kind = LOGICALAND
	case tagLogicalOr:
		base.Kind = LOGICALOR
	case tagLogicalNegation:
		base.Kind = LOGICALNEGATION
	case tagBitwiseAnd:
		base.Kind = BITWISEAND
	case tagBitwiseOr:
		base.Kind = BITWISEOR
	case tagBitwiseNegation:
		base.Kind = BITWISENEGATION
	case tagXnor:
		base.Kind = XNOROP
	case tagXor:
		base.Kind = XOROP
	case tagTernary:
		base.Kind = TERNARY
	case tagEof:
		base.Kind = EOF
	default:
		base.Kind = INVALID
	}
	return base, nil
}
