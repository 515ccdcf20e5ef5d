package literal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// LiteralError reports a default-value token that does not match the
// supported literal grammar. It is fatal at schema load time.
type LiteralError struct {
	Raw string
	Msg string
}

func (e *LiteralError) Error() string {
	return fmt.Sprintf("literal: cannot decode %q: %s", e.Raw, e.Msg)
}

func decodeErr(raw, format string, args ...any) error {
	return &LiteralError{Raw: raw, Msg: fmt.Sprintf(format, args...)}
}

// Decode parses a raw default-value token into a typed Value. The grammar is
// a closed set: booleans (True/False), None, integers, floats (including
// scientific notation and arithmetic forms such as `1.0 / 3.0 ** 2`), quoted
// or bare strings, parenthesized numeric tuples, bracketed sequences, brace
// mappings, and the arange/linspace array constructors with an optional
// elementwise `* x` or `/ x` scale. Nothing is ever evaluated as code.
func Decode(text string) (Value, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Value{}, decodeErr(text, "empty token")
	}

	p, err := newParser(trimmed)
	if err == nil {
		var value Value
		value, err = p.parseValue()
		if err == nil {
			if p.peek().kind != tokEOF {
				err = decodeErr(trimmed, "unexpected trailing %q", p.peek().text)
			} else {
				return value, nil
			}
		}
	}

	// Unquoted free-form strings are part of the grammar; anything holding
	// structural characters stays an error so malformed tokens surface.
	if bareStringOK(trimmed) {
		return String(trimmed), nil
	}
	return Value{}, err
}

func bareStringOK(text string) bool {
	return !strings.ContainsAny(text, `'"[](){},:`)
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokNumber
	tokString
	tokIdent
	tokPunct
)

type token struct {
	kind tokKind
	text string
}

type parser struct {
	raw    string
	tokens []token
	pos    int
}

func newParser(raw string) (*parser, error) {
	tokens, err := lex(raw)
	if err != nil {
		return nil, err
	}
	return &parser{raw: raw, tokens: tokens}, nil
}

func lex(raw string) ([]token, error) {
	var tokens []token
	runes := []rune(raw)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '\'' || r == '"':
			text, next, err := lexString(raw, runes, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokString, text: text})
			i = next
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			text, next := lexNumber(runes, i)
			tokens = append(tokens, token{kind: tokNumber, text: text})
			i = next
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, text: string(runes[start:i])})
		case r == '*' && i+1 < len(runes) && runes[i+1] == '*':
			tokens = append(tokens, token{kind: tokPunct, text: "**"})
			i += 2
		case strings.ContainsRune("()[]{},:*/+-.", r):
			tokens = append(tokens, token{kind: tokPunct, text: string(r)})
			i++
		default:
			return nil, decodeErr(raw, "unexpected character %q", string(r))
		}
	}
	return append(tokens, token{kind: tokEOF}), nil
}

func lexString(raw string, runes []rune, start int) (string, int, error) {
	quote := runes[start]
	var sb strings.Builder
	i := start + 1
	for i < len(runes) {
		r := runes[i]
		if r == '\\' && i+1 < len(runes) {
			sb.WriteRune(runes[i+1])
			i += 2
			continue
		}
		if r == quote {
			return sb.String(), i + 1, nil
		}
		sb.WriteRune(r)
		i++
	}
	return "", 0, decodeErr(raw, "unterminated string")
}

func lexNumber(runes []rune, start int) (string, int) {
	i := start
	seenExp := false
	for i < len(runes) {
		r := runes[i]
		if unicode.IsDigit(r) || r == '.' {
			i++
			continue
		}
		if (r == 'e' || r == 'E') && !seenExp && i+1 < len(runes) {
			next := runes[i+1]
			if unicode.IsDigit(next) {
				seenExp = true
				i += 2
				continue
			}
			if (next == '+' || next == '-') && i+2 < len(runes) && unicode.IsDigit(runes[i+2]) {
				seenExp = true
				i += 3
				continue
			}
		}
		break
	}
	return string(runes[start:i]), i
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) accept(text string) bool {
	if p.peek().kind == tokPunct && p.peek().text == text {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(text string) error {
	if !p.accept(text) {
		return decodeErr(p.raw, "expected %q, found %q", text, p.peek().text)
	}
	return nil
}

func (p *parser) parseValue() (Value, error) {
	tok := p.peek()
	switch {
	case tok.kind == tokString:
		p.next()
		return String(tok.text), nil
	case tok.kind == tokPunct && tok.text == "(":
		return p.parseTuple()
	case tok.kind == tokPunct && tok.text == "[":
		return p.parseList()
	case tok.kind == tokPunct && tok.text == "{":
		return p.parseDict()
	case tok.kind == tokNumber || (tok.kind == tokPunct && (tok.text == "-" || tok.text == "+")):
		return p.parseNumericExpr()
	case tok.kind == tokIdent:
		return p.parseIdent()
	default:
		return Value{}, decodeErr(p.raw, "unexpected %q", tok.text)
	}
}

func (p *parser) parseIdent() (Value, error) {
	tok := p.next()
	switch tok.text {
	case "True":
		return Bool(true), nil
	case "False":
		return Bool(false), nil
	case "None":
		return None(), nil
	case "np":
		if err := p.expect("."); err != nil {
			return Value{}, err
		}
		name := p.next()
		if name.kind != tokIdent {
			return Value{}, decodeErr(p.raw, "expected constructor after np., found %q", name.text)
		}
		return p.parseConstructor(name.text)
	case "arange", "linspace", "range":
		if p.peek().kind == tokPunct && p.peek().text == "(" {
			return p.parseConstructor(tok.text)
		}
	}
	// A lone identifier in value position is a bare string (e.g. combo
	// options written without quotes).
	return String(tok.text), nil
}

func (p *parser) parseTuple() (Value, error) {
	if err := p.expect("("); err != nil {
		return Value{}, err
	}
	var nums []float64
	for {
		if p.accept(")") {
			return Tuple(nums...), nil
		}
		item, err := p.parseNumericExpr()
		if err != nil {
			return Value{}, err
		}
		n, _ := item.Number()
		nums = append(nums, n)
		if p.accept(",") {
			continue
		}
		if err := p.expect(")"); err != nil {
			return Value{}, err
		}
		return Tuple(nums...), nil
	}
}

func (p *parser) parseList() (Value, error) {
	if err := p.expect("["); err != nil {
		return Value{}, err
	}
	var items []Value
	for {
		if p.accept("]") {
			return List(items...), nil
		}
		item, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		items = append(items, item)
		if p.accept(",") {
			continue
		}
		if err := p.expect("]"); err != nil {
			return Value{}, err
		}
		return List(items...), nil
	}
}

func (p *parser) parseDict() (Value, error) {
	if err := p.expect("{"); err != nil {
		return Value{}, err
	}
	var entries []Entry
	seen := make(map[string]struct{})
	for {
		if p.accept("}") {
			return Dict(entries...), nil
		}
		key, err := p.parseDictKey()
		if err != nil {
			return Value{}, err
		}
		if _, dup := seen[key]; dup {
			return Value{}, decodeErr(p.raw, "duplicate mapping key %q", key)
		}
		seen[key] = struct{}{}
		if err := p.expect(":"); err != nil {
			return Value{}, err
		}
		value, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		entries = append(entries, Entry{Key: key, Value: value})
		if p.accept(",") {
			continue
		}
		if err := p.expect("}"); err != nil {
			return Value{}, err
		}
		return Dict(entries...), nil
	}
}

func (p *parser) parseDictKey() (string, error) {
	tok := p.peek()
	switch tok.kind {
	case tokString, tokIdent:
		p.next()
		return tok.text, nil
	case tokNumber:
		p.next()
		return tok.text, nil
	default:
		return "", decodeErr(p.raw, "invalid mapping key %q", tok.text)
	}
}

// parseNumericExpr handles the arithmetic subset allowed inside defaults:
// `*`, `/`, and the tighter, right-associative `**`.
func (p *parser) parseNumericExpr() (Value, error) {
	left, err := p.parsePower()
	if err != nil {
		return Value{}, err
	}
	for {
		switch {
		case p.accept("*"):
			right, err := p.parsePower()
			if err != nil {
				return Value{}, err
			}
			left = numericOp(left, right, "*")
		case p.accept("/"):
			right, err := p.parsePower()
			if err != nil {
				return Value{}, err
			}
			left = numericOp(left, right, "/")
		default:
			return left, nil
		}
	}
}

func (p *parser) parsePower() (Value, error) {
	base, err := p.parseNumberAtom()
	if err != nil {
		return Value{}, err
	}
	if p.accept("**") {
		exp, err := p.parsePower()
		if err != nil {
			return Value{}, err
		}
		return numericOp(base, exp, "**"), nil
	}
	return base, nil
}

func (p *parser) parseNumberAtom() (Value, error) {
	negative := false
	for {
		if p.accept("-") {
			negative = !negative
			continue
		}
		if p.accept("+") {
			continue
		}
		break
	}

	tok := p.next()
	if tok.kind != tokNumber {
		return Value{}, decodeErr(p.raw, "expected number, found %q", tok.text)
	}
	value, err := parseNumberToken(p.raw, tok.text)
	if err != nil {
		return Value{}, err
	}
	if negative {
		if value.Kind == KindInt {
			value.IntVal = -value.IntVal
		} else {
			value.FloatVal = -value.FloatVal
		}
	}
	return value, nil
}

func parseNumberToken(raw, text string) (Value, error) {
	if !strings.ContainsAny(text, ".eE") {
		n, err := strconv.ParseInt(text, 10, 64)
		if err == nil {
			return Int(n), nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Value{}, decodeErr(raw, "invalid number %q", text)
	}
	return Float(f), nil
}

// numericOp keeps integer results integral where Python would (`*` and `**`
// on ints); division always produces a float.
func numericOp(a, b Value, op string) Value {
	if op != "/" && a.Kind == KindInt && b.Kind == KindInt {
		switch op {
		case "*":
			return Int(a.IntVal * b.IntVal)
		case "**":
			return Int(int64(math.Pow(float64(a.IntVal), float64(b.IntVal))))
		}
	}
	x, _ := a.Number()
	y, _ := b.Number()
	switch op {
	case "*":
		return Float(x * y)
	case "/":
		return Float(x / y)
	default:
		return Float(math.Pow(x, y))
	}
}

func (p *parser) parseConstructor(name string) (Value, error) {
	if err := p.expect("("); err != nil {
		return Value{}, err
	}
	var args []float64
	for {
		if p.accept(")") {
			break
		}
		arg, err := p.parseNumericExpr()
		if err != nil {
			return Value{}, err
		}
		n, _ := arg.Number()
		args = append(args, n)
		if p.accept(",") {
			continue
		}
		if err := p.expect(")"); err != nil {
			return Value{}, err
		}
		break
	}

	nums, err := buildSeries(p.raw, name, args)
	if err != nil {
		return Value{}, err
	}

	// Optional elementwise scale, e.g. `np.arange(1, 60) * 5e-4`.
	for {
		var op string
		switch {
		case p.accept("*"):
			op = "*"
		case p.accept("/"):
			op = "/"
		default:
			return Series(nums), nil
		}
		scale, err := p.parsePower()
		if err != nil {
			return Value{}, err
		}
		factor, _ := scale.Number()
		scaled := make([]float64, len(nums))
		for i, n := range nums {
			if op == "*" {
				scaled[i] = n * factor
			} else {
				scaled[i] = n / factor
			}
		}
		nums = scaled
	}
}

func buildSeries(raw, name string, args []float64) ([]float64, error) {
	switch name {
	case "arange", "range":
		start, stop, step := 0.0, 0.0, 1.0
		switch len(args) {
		case 1:
			stop = args[0]
		case 2:
			start, stop = args[0], args[1]
		case 3:
			start, stop, step = args[0], args[1], args[2]
		default:
			return nil, decodeErr(raw, "%s takes 1 to 3 arguments, got %d", name, len(args))
		}
		if step == 0 {
			return nil, decodeErr(raw, "%s step must be nonzero", name)
		}
		var nums []float64
		for v := start; (step > 0 && v < stop) || (step < 0 && v > stop); v += step {
			nums = append(nums, v)
		}
		return nums, nil
	case "linspace":
		if len(args) != 3 {
			return nil, decodeErr(raw, "linspace takes 3 arguments, got %d", len(args))
		}
		start, stop := args[0], args[1]
		count := int(args[2])
		if count <= 0 {
			return nil, decodeErr(raw, "linspace count must be positive")
		}
		if count == 1 {
			return []float64{start}, nil
		}
		nums := make([]float64, count)
		step := (stop - start) / float64(count-1)
		for i := range nums {
			nums[i] = start + float64(i)*step
		}
		nums[count-1] = stop
		return nums, nil
	default:
		return nil, decodeErr(raw, "unknown constructor %q", name)
	}
}
