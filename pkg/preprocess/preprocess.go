// Package preprocess resolves the backtick-directive dialect (`define,
// `ifdef/`else/`endif, `include, and macro calls) over a token stream
// produced by package token, yielding a directive-free token stream ready
// for the parser.
package preprocess

import (
	"path/filepath"

	"github.com/ignamv/veriloga/pkg/source"
	"github.com/ignamv/veriloga/pkg/token"
)

// Macro is a stored `define body: an empty Parameters list distinguishes an
// object-like macro (`define FOO 1) from a function-like one
// (`define FOO(a,b) a+b).
type Macro struct {
	Parameters []string
	Body       []token.Token
}

// FileReader abstracts reading an included file's contents, so tests can
// supply an in-memory set of files without touching disk.
type FileReader func(path string) (*source.File, error)

// Preprocessor holds the mutable state shared across a top-level file and
// every file or macro body it pulls in: the definitions table and the
// include search path. A fresh cursor is pushed for each nested token
// stream (macro expansion, included file), mirroring how the reference
// implementation re-enters itself recursively for each one.
type Preprocessor struct {
	definitions map[string]*Macro
	includeDirs []string
	readFile    FileReader
}

// New constructs a Preprocessor with an empty definitions table.
func New(includeDirs []string, readFile FileReader) *Preprocessor {
	return &Preprocessor{
		definitions: map[string]*Macro{},
		includeDirs: includeDirs,
		readFile:    readFile,
	}
}

// Define seeds the definitions table directly, as if source had contained
// a `define directive for name, before any Expand call. Used to implement
// command-line `-D` style overrides ahead of a file's own text.
func (p *Preprocessor) Define(name string, parameters []string, body []token.Token) {
	p.definitions[name] = &Macro{Parameters: parameters, Body: body}
}

// cursor walks one flat token slice (a top-level file, an included file, or
// a macro's expanded body), tracking the current position and the most
// recently consumed token (used for error origins, mirroring the
// reference's `last_token`).
type cursor struct {
	p         *Preprocessor
	tokens    []token.Token
	idx       int
	last      token.Token
	sourceDir string // directory used to resolve relative `include paths
}

func (c *cursor) atEnd() bool { return c.idx >= len(c.tokens) }

func (c *cursor) advance() (token.Token, bool) {
	if c.atEnd() {
		return token.Token{}, false
	}
	t := c.tokens[c.idx]
	c.idx++
	c.last = t
	return t, true
}

func (c *cursor) fail(format string, args ...any) *source.SyntaxError {
	return source.NewSyntaxError(c.last.Origin, format, args...)
}

// Expand preprocesses an entire top-level source file, starting from a
// fresh token slice and directory used for its own relative includes.
func (p *Preprocessor) Expand(tokens []token.Token, sourceDir string) ([]token.Token, *source.SyntaxError) {
	c := &cursor{p: p, tokens: tokens, sourceDir: sourceDir}
	return c.run(nil)
}

// run is the equivalent of output_generator: it consumes tokens from c
// until one whose kind is in end is reached (or, if end is empty or holds
// INVALID, until EOF), expanding directives as it goes. It returns the
// emitted tokens and, via c.last, the terminating token (if any) so callers
// can distinguish `else from `endif.
func (c *cursor) run(end []token.Kind) ([]token.Token, *source.SyntaxError) {
	allowEOF := len(end) == 0
	for _, k := range end {
		if k == token.INVALID {
			allowEOF = true
		}
	}
	var out []token.Token
	for {
		tok, ok := c.advance()
		if !ok {
			if allowEOF {
				return out, nil
			}
			return nil, c.fail("unexpected end of file")
		}
		if kindIn(tok.Kind, end) {
			return out, nil
		}
		switch tok.Kind {
		case token.DEFINE:
			if err := c.define(tok); err != nil {
				return nil, err
			}
		case token.IFDEF:
			expanded, err := c.ifdef()
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
		case token.ELSEDEF:
			return nil, c.fail("unexpected `else")
		case token.ENDIFDEF:
			return nil, c.fail("unexpected `endif")
		case token.INCLUDE:
			expanded, err := c.include()
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
		case token.MACROCALL:
			expanded, err := c.macrocall(tok)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
		case token.NEWLINE:
			continue
		default:
			out = append(out, tok)
		}
	}
}

func kindIn(k token.Kind, set []token.Kind) bool {
	for _, s := range set {
		if s == k {
			return true
		}
	}
	return false
}

// takeUntil consumes raw (unexpanded) tokens up to and including the first
// one satisfying stop, returning everything but that terminator.
func (c *cursor) takeUntil(stop func(token.Token) bool) ([]token.Token, *source.SyntaxError) {
	var body []token.Token
	for {
		tok, ok := c.advance()
		if !ok {
			return nil, c.fail("unexpected end of file")
		}
		if stop(tok) {
			return body, nil
		}
		body = append(body, tok)
	}
}

func (c *cursor) define(defineTok token.Token) *source.SyntaxError {
	var params []string
	if defineTok.DefineHasParams {
		p, err := c.defineParameters()
		if err != nil {
			return err
		}
		params = p
	}
	body, err := c.takeUntil(func(t token.Token) bool { return t.Kind == token.NEWLINE })
	if err != nil {
		return err
	}
	c.p.definitions[defineTok.Text] = &Macro{Parameters: params, Body: body}
	return nil
}

func (c *cursor) defineParameters() ([]string, *source.SyntaxError) {
	var params []string
	first := true
	for {
		tok, ok := c.advance()
		if !ok {
			return nil, c.fail("unexpected end of file in macro parameter list")
		}
		if tok.Kind == token.RPAREN {
			return params, nil
		}
		if !first {
			if tok.Kind != token.COMMA {
				return nil, c.fail("expected , between macro parameters")
			}
			tok, ok = c.advance()
			if !ok {
				return nil, c.fail("unexpected end of file in macro parameter list")
			}
		}
		first = false
		if tok.Kind != token.SIMPLE_IDENTIFIER {
			return nil, c.fail("expected macro parameter name")
		}
		params = append(params, tok.Text)
	}
}

// macrocall expands a `name invocation: it consumes the argument list (if
// the macro is function-like), substitutes parameters into the stored body,
// and recursively preprocesses the result, since a macro body may itself
// contain directives or further macro calls.
func (c *cursor) macrocall(callTok token.Token) ([]token.Token, *source.SyntaxError) {
	macro, ok := c.p.definitions[callTok.Text]
	if !ok {
		return nil, source.NewSyntaxError(callTok.Origin, "undefined macro `%s", callTok.Text)
	}
	args, err := c.macrocallArguments(len(macro.Parameters))
	if err != nil {
		return nil, err
	}
	expanded := expandMacro(macro, args, callTok.Origin)
	sub := &cursor{p: c.p, tokens: expanded, sourceDir: c.sourceDir}
	return sub.run(nil)
}

// expandMacro substitutes arguments into a macro body, prepending callOrigin
// to every emitted body token's origin so diagnostics can unwind back through
// the call site to the macro definition. A substituted argument token keeps
// its own (call-site) origin with the parameter's position in the body
// prepended.
func expandMacro(macro *Macro, args [][]token.Token, callOrigin source.Origin) []token.Token {
	var out []token.Token
	for _, bodyTok := range macro.Body {
		tok := bodyTok.IncludedFrom(callOrigin...)
		if bodyTok.Kind == token.SIMPLE_IDENTIFIER {
			if idx := indexOf(macro.Parameters, bodyTok.Text); idx >= 0 {
				for _, argTok := range args[idx] {
					out = append(out, argTok.IncludedFrom(bodyTok.Origin...))
				}
				continue
			}
		}
		out = append(out, tok)
	}
	return out
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func (c *cursor) macrocallArguments(n int) ([][]token.Token, *source.SyntaxError) {
	if n == 0 {
		return nil, nil
	}
	open, ok := c.advance()
	if !ok || open.Kind != token.LPAREN {
		return nil, c.fail("expected ( to begin macro call argument list")
	}
	args := make([][]token.Token, n)
	for i := 0; i < n; i++ {
		closingKind := token.COMMA
		if i == n-1 {
			closingKind = token.RPAREN
		}
		var arg []token.Token
		nesting := 0
		for {
			tok, ok := c.advance()
			if !ok {
				return nil, c.fail("unexpected end of file in macro call arguments")
			}
			if tok.Kind == closingKind && nesting == 0 {
				break
			}
			switch tok.Kind {
			case token.LPAREN:
				nesting++
			case token.RPAREN:
				nesting--
			}
			arg = append(arg, tok)
		}
		args[i] = arg
	}
	return args, nil
}

// ifdef implements `ifdef/`else/`endif. Unlike the prior implementation this
// is grounded on, the "skip this block" path counts nested `ifdef/`endif
// pairs rather than stopping at the first `endif it sees, so a nested
// `ifdef inside a dropped block does not prematurely terminate it.
func (c *cursor) ifdef() ([]token.Token, *source.SyntaxError) {
	nameTok, ok := c.advance()
	if !ok || nameTok.Kind != token.SIMPLE_IDENTIFIER {
		return nil, c.fail("expected identifier after `ifdef")
	}
	_, defined := c.p.definitions[nameTok.Text]
	if defined {
		out, err := c.run([]token.Kind{token.ENDIFDEF, token.ELSEDEF})
		if err != nil {
			return nil, err
		}
		if c.last.Kind == token.ELSEDEF {
			if err := c.skipBalanced(); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	sawElse, err := c.skipUntilBalanced()
	if err != nil {
		return nil, err
	}
	if sawElse {
		return c.run([]token.Kind{token.ENDIFDEF})
	}
	return nil, nil
}

// skipBalanced discards tokens up to the matching `endif of the `else
// branch currently being dropped, counting nested `ifdef/`endif pairs.
func (c *cursor) skipBalanced() *source.SyntaxError {
	depth := 0
	for {
		tok, ok := c.advance()
		if !ok {
			return c.fail("unterminated `ifdef")
		}
		switch tok.Kind {
		case token.IFDEF:
			depth++
		case token.ENDIFDEF:
			if depth == 0 {
				return nil
			}
			depth--
		}
	}
}

// skipUntilBalanced discards the false branch of an `ifdef, stopping at the
// matching `else or `endif (not counting nested ones toward the match), and
// reports whether it stopped at `else.
func (c *cursor) skipUntilBalanced() (sawElse bool, err *source.SyntaxError) {
	depth := 0
	for {
		tok, ok := c.advance()
		if !ok {
			return false, c.fail("unterminated `ifdef")
		}
		switch tok.Kind {
		case token.IFDEF:
			depth++
		case token.ELSEDEF:
			if depth == 0 {
				return true, nil
			}
		case token.ENDIFDEF:
			if depth == 0 {
				return false, nil
			}
			depth--
		}
	}
}

func (c *cursor) include() ([]token.Token, *source.SyntaxError) {
	pathTok, ok := c.advance()
	if !ok || pathTok.Kind != token.STRING_LITERAL {
		return nil, c.fail("expected a string literal after `include")
	}
	path, err := c.findFile(pathTok.Text)
	if err != nil {
		return nil, source.NewSyntaxError(pathTok.Origin, "include file not found: %s", pathTok.Text)
	}
	file, rerr := c.p.readFile(path)
	if rerr != nil {
		return nil, source.NewSyntaxError(pathTok.Origin, "cannot read include file %s: %v", path, rerr)
	}
	toks, lerr := token.Lex(file)
	if lerr != nil {
		return nil, lerr
	}
	sub := &cursor{p: c.p, tokens: toks, sourceDir: filepath.Dir(path)}
	return sub.run(nil)
}

func (c *cursor) findFile(name string) (string, *source.SyntaxError) {
	candidates := append([]string{c.sourceDir}, c.p.includeDirs...)
	for _, dir := range candidates {
		full := filepath.Join(dir, name)
		if file, err := c.p.readFile(full); err == nil {
			_ = file
			return full, nil
		}
	}
	return "", c.fail("include file not found in search path: %s", name)
}
