package lia

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ParseProblem parses a problem in the lia text format: one equality per line,
//
//	x + y + 3 = z + -1
//
// where each side is a sum of identifiers and integer literals. Subtracting a
// literal is accepted as shorthand for adding its negation (x - 1 means
// x + -1). Text from # to the end of the line is a comment.
//
// An optional problem line "p lia <vars> <atoms>" may precede the
// constraints, in the manner of DIMACS; if present the counts are checked.
// A line containing a single % ends the problem.
//
// Input is NFKC-normalized, so compatibility forms of letters, digits and
// operators (such as full-width characters) are read as their plain forms.
func ParseProblem(r io.Reader) ([]Atom, error) {
	var problem struct {
		seen  bool
		vars  int
		atoms int
	}
	var atoms []Atom
	s := bufio.NewScanner(r)
	for lineno := 1; s.Scan(); lineno++ {
		line := norm.NFKC.String(s.Text())
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "%" {
			break
		}
		if fields := strings.Fields(line); fields[0] == "p" && !strings.Contains(line, "=") {
			if len(atoms) > 0 {
				return nil, fmt.Errorf("line %d: problem line appears after constraints", lineno)
			}
			if problem.seen {
				return nil, fmt.Errorf("line %d: multiple problem lines", lineno)
			}
			if len(fields) != 4 {
				return nil, fmt.Errorf("line %d: malformed problem line %q", lineno, line)
			}
			if fields[1] != "lia" {
				return nil, fmt.Errorf("line %d: only lia supported; got %q", lineno, fields[1])
			}
			var err error
			if problem.vars, err = strconv.Atoi(fields[2]); err != nil || problem.vars < 0 {
				return nil, fmt.Errorf("line %d: invalid #vars %q", lineno, fields[2])
			}
			if problem.atoms, err = strconv.Atoi(fields[3]); err != nil || problem.atoms < 0 {
				return nil, fmt.Errorf("line %d: invalid #atoms %q", lineno, fields[3])
			}
			problem.seen = true
			continue
		}
		a, err := parseAtom(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %s", lineno, err)
		}
		atoms = append(atoms, a)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if problem.seen {
		if n := len(Vars(atoms)); n > problem.vars {
			return nil, fmt.Errorf("problem line specifies %d vars, but there are %d", problem.vars, n)
		}
		if len(atoms) != problem.atoms {
			return nil, fmt.Errorf("problem line specifies %d atoms, but there are %d", problem.atoms, len(atoms))
		}
	}
	return atoms, nil
}

func parseAtom(line string) (Atom, error) {
	sides := strings.Split(line, "=")
	if len(sides) != 2 {
		return Atom{}, fmt.Errorf("want exactly one '=' in %q", line)
	}
	l, err := parseTerm(sides[0])
	if err != nil {
		return Atom{}, fmt.Errorf("left side: %s", err)
	}
	r, err := parseTerm(sides[1])
	if err != nil {
		return Atom{}, fmt.Errorf("right side: %s", err)
	}
	return Eq(l, r), nil
}

var errEmptyTerm = errors.New("empty term")

// parseTerm parses operand (('+' operand) | ('-' integer))*.
func parseTerm(text string) (Term, error) {
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, errEmptyTerm
	}
	t, toks, err := parseOperand(toks)
	if err != nil {
		return nil, err
	}
	for len(toks) > 0 {
		op := toks[0]
		toks = toks[1:]
		var u Term
		switch op.kind {
		case tokPlus:
			u, toks, err = parseOperand(toks)
		case tokMinus:
			if len(toks) == 0 || toks[0].kind != tokInt {
				return nil, fmt.Errorf("only integer literals may be subtracted")
			}
			u, toks = Const(-toks[0].n), toks[1:]
		default:
			return nil, fmt.Errorf("unexpected %s; want + or -", op)
		}
		if err != nil {
			return nil, err
		}
		t = Sum{t, u}
	}
	return t, nil
}

func parseOperand(toks []token) (Term, []token, error) {
	if len(toks) == 0 {
		return nil, nil, errors.New("missing operand")
	}
	switch tok := toks[0]; tok.kind {
	case tokIdent:
		return Var(tok.text), toks[1:], nil
	case tokInt:
		return Const(tok.n), toks[1:], nil
	case tokMinus:
		if len(toks) > 1 && toks[1].kind == tokInt {
			return Const(-toks[1].n), toks[2:], nil
		}
		return nil, nil, errors.New("unary - applies only to integer literals")
	default:
		return nil, nil, fmt.Errorf("unexpected %s; want an identifier or integer", tok)
	}
}

type tokenKind uint8

const (
	tokIdent tokenKind = iota
	tokInt
	tokPlus
	tokMinus
)

type token struct {
	kind tokenKind
	text string
	n    int
}

func (t token) String() string {
	switch t.kind {
	case tokPlus:
		return "'+'"
	case tokMinus:
		return "'-'"
	}
	return strconv.Quote(t.text)
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentPart(r rune) bool { return isIdentStart(r) || unicode.IsDigit(r) }

func tokenize(text string) ([]token, error) {
	var toks []token
	rs := []rune(text)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '+':
			toks = append(toks, token{kind: tokPlus})
			i++
		case r == '-':
			toks = append(toks, token{kind: tokMinus})
			i++
		case '0' <= r && r <= '9':
			j := i
			for j < len(rs) && '0' <= rs[j] && rs[j] <= '9' {
				j++
			}
			lit := string(rs[i:j])
			n, err := strconv.Atoi(lit)
			if err != nil {
				return nil, fmt.Errorf("invalid integer %q: %s", lit, err)
			}
			if j < len(rs) && isIdentStart(rs[j]) {
				return nil, fmt.Errorf("invalid integer %q", string(rs[i:j+1]))
			}
			toks = append(toks, token{kind: tokInt, text: lit, n: n})
			i = j
		case isIdentStart(r):
			j := i
			for j < len(rs) && isIdentPart(rs[j]) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: string(rs[i:j])})
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q", r)
		}
	}
	return toks, nil
}

// WriteProblem writes atoms in the format read by ParseProblem, preceded by a
// problem line.
func WriteProblem(w io.Writer, atoms []Atom) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "p lia %d %d\n", len(Vars(atoms)), len(atoms))
	for _, a := range atoms {
		fmt.Fprintln(bw, a)
	}
	return bw.Flush()
}
