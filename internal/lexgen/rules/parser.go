package rules

import (
	"github.com/dekarrin/lexgen/internal/diag"
	"github.com/dekarrin/lexgen/internal/lexgen/rulelex"
	"github.com/dekarrin/lexgen/internal/util"
)

// Parse reads an entire rules-file source and returns its rule list.
// Parsing must consume the whole input; any unparsed remainder is a Parse
// error.
func Parse(src string) ([]Rule, error) {
	s := rulelex.New(src)

	var result []Rule
	for {
		skipSpace0(s)
		if s.Eof() {
			break
		}

		r, err := parseRule(s)
		if err != nil {
			return nil, err
		}
		r.DeclOrder = len(result)
		result = append(result, r)

		// rules are separated by a newline; the last rule's newline is
		// optional.
		if ch, ok := s.Peek(); ok {
			if ch != '\n' {
				return nil, errAt(s, "expected newline after rule")
			}
			s.Next()
		} else {
			break
		}
	}

	if !s.Eof() {
		return nil, errAt(s, "failed to parse whole file, remainder was: %q", s.Remaining())
	}

	seen := make(util.StringSet, len(result))
	for _, r := range result {
		if seen.Has(r.Name) {
			return nil, diag.New(diag.Semantic, "rule name %q is not unique", r.Name)
		}
		seen.Add(r.Name)
	}

	return result, nil
}

func errAt(s *rulelex.Scanner, format string, args ...any) error {
	line, col, full := s.Pos()
	return diag.NewAt(diag.Parse, diag.Position{Line: line, Col: col, FullLine: full}, format, args...)
}

// --- low-level helpers mirroring nom's space0/space1/tag combinators ---

func skipSpace0(s *rulelex.Scanner) int {
	n := 0
	for {
		r, ok := s.Peek()
		if !ok || (r != ' ' && r != '\t') {
			break
		}
		s.Next()
		n++
	}
	return n
}

func skipSpace1(s *rulelex.Scanner) (int, error) {
	n := skipSpace0(s)
	if n == 0 {
		return 0, errAt(s, "expected whitespace")
	}
	return n, nil
}

func expectRune(s *rulelex.Scanner, want rune) error {
	r, ok := s.Peek()
	if !ok || r != want {
		return errAt(s, "expected %q", want)
	}
	s.Next()
	return nil
}

func expectLiteralTag(s *rulelex.Scanner, tag string) error {
	for _, want := range tag {
		if err := expectRune(s, want); err != nil {
			return errAt(s, "expected %q", tag)
		}
	}
	return nil
}

func isNameStart(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

func isNameCont(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_'
}

func parseName(s *rulelex.Scanner) (string, error) {
	first, ok := s.Peek()
	if !ok || !isNameStart(first) {
		return "", errAt(s, "expected name")
	}
	s.Next()
	var out []rune
	out = append(out, first)
	for {
		r, ok := s.Peek()
		if !ok || !isNameCont(r) {
			break
		}
		s.Next()
		out = append(out, r)
	}
	return string(out), nil
}

// --- elements ---

// parseSet parses "[" "^"? (range | escaped-char | char)* "]".
func parseSet(s *rulelex.Scanner) (Element, error) {
	if err := expectRune(s, '['); err != nil {
		return Element{}, err
	}
	negated := false
	if r, ok := s.Peek(); ok && r == '^' {
		s.Next()
		negated = true
	}

	var chars []rune
	var ranges []CharRange

	for {
		r, ok := s.Peek()
		if !ok {
			return Element{}, errAt(s, "unterminated character set")
		}
		if r == ']' {
			break
		}
		if r == '\\' {
			nxt, ok := s.PeekAt(1)
			if !ok {
				return Element{}, errAt(s, "unterminated escape in character set")
			}
			switch nxt {
			case ']', '\\', '-':
				s.Next()
				s.Next()
				chars = append(chars, nxt)
				continue
			default:
				return Element{}, errAt(s, "unknown escape \\%c in character set", nxt)
			}
		}

		// either "a-b" range or a plain char
		a := r
		s.Next()
		if dash, ok := s.Peek(); ok && dash == '-' {
			if after, ok2 := s.PeekAt(1); ok2 && after != ']' {
				s.Next() // consume '-'
				b, _ := s.Next()
				ranges = append(ranges, CharRange{Lo: a, Hi: b})
				continue
			}
		}
		chars = append(chars, a)
	}

	if err := expectRune(s, ']'); err != nil {
		return Element{}, err
	}

	kind := Set
	if negated {
		kind = NegatedSet
	}
	return Element{Kind: kind, Chars: chars, Ranges: ranges}, nil
}

// parseLiteral parses a double-quoted string with \" \\ \n \t escapes.
func parseLiteral(s *rulelex.Scanner) (Element, error) {
	if err := expectRune(s, '"'); err != nil {
		return Element{}, err
	}
	var out []rune
	for {
		r, ok := s.Peek()
		if !ok {
			return Element{}, errAt(s, "unterminated string literal")
		}
		if r == '"' {
			break
		}
		if r == '\\' {
			nxt, ok := s.PeekAt(1)
			if !ok {
				return Element{}, errAt(s, "unterminated escape in string literal")
			}
			var decoded rune
			switch nxt {
			case '"':
				decoded = '"'
			case '\\':
				decoded = '\\'
			case 'n':
				decoded = '\n'
			case 't':
				decoded = '\t'
			default:
				return Element{}, errAt(s, "unknown escape \\%c in string literal", nxt)
			}
			s.Next()
			s.Next()
			out = append(out, decoded)
			continue
		}
		s.Next()
		out = append(out, r)
	}
	if err := expectRune(s, '"'); err != nil {
		return Element{}, err
	}
	if len(out) == 0 {
		return Element{}, errAt(s, "string literal must not be empty")
	}
	return Element{Kind: Literal, Text: string(out)}, nil
}

// parseRuleRef parses ["var:"] NAME, used only inside non-terminal elements.
func parseRuleRef(s *rulelex.Scanner) (Element, error) {
	markPos, markLine, markCol := s.Mark()

	var varName string
	if name, err := parseName(s); err == nil {
		if colon, ok := s.Peek(); ok && colon == ':' {
			s.Next()
			varName = name
		} else {
			s.Reset(markPos, markLine, markCol)
		}
	} else {
		s.Reset(markPos, markLine, markCol)
	}

	name, err := parseName(s)
	if err != nil {
		s.Reset(markPos, markLine, markCol)
		return Element{}, err
	}
	return Element{Kind: RuleRef, RefVar: varName, RefName: name}, nil
}

// parseParen parses a parenthesized group "( e e ... )" or an alternation
// "( e | e | ... )", distinguishing the two by whether a "|" appears after
// the first element.
func parseParen(s *rulelex.Scanner, allowRuleRef bool) (Element, error) {
	if err := expectRune(s, '('); err != nil {
		return Element{}, err
	}
	skipSpace0(s)
	first, err := parseElement(s, allowRuleRef)
	if err != nil {
		return Element{}, err
	}
	skipSpace0(s)

	if r, ok := s.Peek(); ok && r == '|' {
		elems := []Element{first}
		for {
			r, ok := s.Peek()
			if !ok || r != '|' {
				break
			}
			s.Next()
			skipSpace0(s)
			e, err := parseElement(s, allowRuleRef)
			if err != nil {
				return Element{}, err
			}
			elems = append(elems, e)
			skipSpace0(s)
		}
		if err := expectRune(s, ')'); err != nil {
			return Element{}, err
		}
		if len(elems) == 1 {
			return elems[0], nil
		}
		return Element{Kind: Alternatives, Subs: elems}, nil
	}

	elems := []Element{first}
	for {
		markPos, markLine, markCol := s.Mark()
		n := skipSpace0(s)
		r, ok := s.Peek()
		if !ok || r == ')' {
			s.Reset(markPos, markLine, markCol)
			break
		}
		if n == 0 {
			return Element{}, errAt(s, "expected space between group elements")
		}
		e, err := parseElement(s, allowRuleRef)
		if err != nil {
			return Element{}, err
		}
		elems = append(elems, e)
	}
	skipSpace0(s)
	if err := expectRune(s, ')'); err != nil {
		return Element{}, err
	}
	if len(elems) == 0 {
		return Element{}, diag.New(diag.Semantic, "empty group")
	}
	if len(elems) == 1 {
		return elems[0], nil
	}
	return Element{Kind: Group, Subs: elems}, nil
}

// parseBase parses a single non-postfixed element.
func parseBase(s *rulelex.Scanner, allowRuleRef bool) (Element, error) {
	r, ok := s.Peek()
	if !ok {
		return Element{}, errAt(s, "expected element")
	}
	switch {
	case r == '"':
		return parseLiteral(s)
	case r == '[':
		return parseSet(s)
	case r == '(':
		return parseParen(s, allowRuleRef)
	case allowRuleRef && isNameStart(r):
		return parseRuleRef(s)
	default:
		return Element{}, errAt(s, "unexpected character %q", r)
	}
}

// parseElement parses a base element followed by an optional postfix
// "+" / "*" / "?".
func parseElement(s *rulelex.Scanner, allowRuleRef bool) (Element, error) {
	base, err := parseBase(s, allowRuleRef)
	if err != nil {
		return Element{}, err
	}
	if r, ok := s.Peek(); ok {
		switch r {
		case '+':
			s.Next()
			return Element{Kind: OneOrMore, Inner: &base}, nil
		case '*':
			s.Next()
			return Element{Kind: ZeroOrMore, Inner: &base}, nil
		case '?':
			s.Next()
			return Element{Kind: Optional, Inner: &base}, nil
		}
	}
	return base, nil
}

// parseElementList parses one or more elements separated by required
// whitespace, as used directly in "token"/"nonterm" right-hand sides.
func parseElementList(s *rulelex.Scanner, allowRuleRef bool) ([]Element, error) {
	first, err := parseElement(s, allowRuleRef)
	if err != nil {
		return nil, err
	}
	elems := []Element{first}
	for {
		markPos, markLine, markCol := s.Mark()
		n := skipSpace0(s)
		if n == 0 {
			s.Reset(markPos, markLine, markCol)
			break
		}
		r, ok := s.Peek()
		if !ok || r == ';' || r == '-' {
			s.Reset(markPos, markLine, markCol)
			break
		}
		e, err := parseElement(s, allowRuleRef)
		if err != nil {
			s.Reset(markPos, markLine, markCol)
			break
		}
		elems = append(elems, e)
	}
	return elems, nil
}

// --- constructor / rule-level productions ---

func parseConstructor(s *rulelex.Scanner) (string, []string, error) {
	name, err := parseName(s)
	if err != nil {
		return "", nil, err
	}
	if err := expectRune(s, '('); err != nil {
		return "", nil, err
	}
	var vars []string
	skipSpace0(s)
	if r, ok := s.Peek(); !ok || r != ')' {
		for {
			v, err := parseName(s)
			if err != nil {
				return "", nil, err
			}
			vars = append(vars, v)
			skipSpace0(s)
			if r, ok := s.Peek(); ok && r == ',' {
				s.Next()
				skipSpace0(s)
				continue
			}
			break
		}
	}
	if err := expectRune(s, ')'); err != nil {
		return "", nil, err
	}
	return name, vars, nil
}

func parseToken(s *rulelex.Scanner) (Rule, error) {
	if err := expectLiteralTag(s, "token"); err != nil {
		return Rule{}, err
	}
	if _, err := skipSpace1(s); err != nil {
		return Rule{}, err
	}
	name, err := parseName(s)
	if err != nil {
		return Rule{}, err
	}
	skipSpace0(s)
	if err := expectRune(s, '='); err != nil {
		return Rule{}, err
	}
	skipSpace0(s)
	elems, err := parseElementList(s, false)
	if err != nil {
		return Rule{}, err
	}
	if err := expectRune(s, ';'); err != nil {
		return Rule{}, err
	}

	return Rule{
		Name:       name,
		IsTerminal: true,
		Element:    Element{Kind: Group, Subs: elems},
	}, nil
}

func parseNonterminal(s *rulelex.Scanner) (Rule, error) {
	if err := expectLiteralTag(s, "nonterm"); err != nil {
		return Rule{}, err
	}
	if _, err := skipSpace1(s); err != nil {
		return Rule{}, err
	}
	name, err := parseName(s)
	if err != nil {
		return Rule{}, err
	}
	skipSpace0(s)
	if err := expectRune(s, '='); err != nil {
		return Rule{}, err
	}
	skipSpace0(s)
	elems, err := parseElementList(s, true)
	if err != nil {
		return Rule{}, err
	}
	skipSpace0(s)
	if err := expectLiteralTag(s, "->"); err != nil {
		return Rule{}, err
	}
	skipSpace0(s)
	ctorName, ctorVars, err := parseConstructor(s)
	if err != nil {
		return Rule{}, err
	}
	if err := expectRune(s, ';'); err != nil {
		return Rule{}, err
	}

	return Rule{
		Name:            name,
		IsTerminal:      false,
		Element:         Element{Kind: Group, Subs: elems},
		ConstructorName: ctorName,
		ConstructorVars: ctorVars,
	}, nil
}

func parseRule(s *rulelex.Scanner) (Rule, error) {
	exported := false
	markPos, markLine, markCol := s.Mark()
	if err := expectLiteralTag(s, "export "); err == nil {
		exported = true
	} else {
		s.Reset(markPos, markLine, markCol)
	}

	markPos, markLine, markCol = s.Mark()
	r, err := parseToken(s)
	if err != nil {
		s.Reset(markPos, markLine, markCol)
		r, err = parseNonterminal(s)
		if err != nil {
			return Rule{}, err
		}
	}
	r.Export = exported
	return r, nil
}
