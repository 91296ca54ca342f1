package dice

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidExpr is returned when a dice expression cannot be parsed.
var ErrInvalidExpr = errors.New("invalid dice expression")

var exprRe = regexp.MustCompile(`(?i)^\s*(\d+)?\s*d\s*(\d+)\s*(?:([+\-])\s*(\d+))?\s*$`)

// Expr is a characteristic that is either a fixed number or a dice roll,
// e.g. "3", "D6", "2D3+1".
type Expr struct {
	Count    int // number of dice, 0 for a fixed value
	Sides    int
	Modifier int // the whole value when Count is 0
}

// Fixed returns an expression that always evaluates to n.
func Fixed(n int) Expr {
	return Expr{Modifier: n}
}

// ParseExpr parses an integer or an NdM[+-K] expression.
func ParseExpr(s string) (Expr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Expr{}, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Fixed(n), nil
	}
	m := exprRe.FindStringSubmatch(s)
	if m == nil {
		return Expr{}, fmt.Errorf("%w: %q", ErrInvalidExpr, s)
	}
	e := Expr{Count: 1}
	if m[1] != "" {
		e.Count, _ = strconv.Atoi(m[1])
	}
	e.Sides, _ = strconv.Atoi(m[2])
	if e.Count <= 0 || e.Sides <= 0 {
		return Expr{}, fmt.Errorf("%w: %q", ErrInvalidExpr, s)
	}
	if m[3] != "" {
		k, _ := strconv.Atoi(m[4])
		if m[3] == "-" {
			k = -k
		}
		e.Modifier = k
	}
	return e, nil
}

// MustParse parses s and panics on error. Useful for fixtures.
func MustParse(s string) Expr {
	e, err := ParseExpr(s)
	if err != nil {
		panic("dice: MustParse failed for expression " + s + ": " + err.Error())
	}
	return e
}

// IsFixed reports whether the expression involves no dice.
func (e Expr) IsFixed() bool {
	return e.Count == 0
}

// Roll evaluates the expression. D3 is rolled as a halved d6. Results below
// zero are floored at zero.
func (e Expr) Roll(src Source) int {
	total := e.Modifier
	for i := 0; i < e.Count; i++ {
		switch e.Sides {
		case 3:
			total += (src.RollD6() + 1) / 2
		case 6:
			total += src.RollD6()
		default:
			total += src.Roll(e.Sides)
		}
	}
	return max(total, 0)
}

// Max returns the highest possible result.
func (e Expr) Max() int {
	return max(e.Count*e.Sides+e.Modifier, 0)
}

// Mean returns the expected result, ignoring the floor at zero.
func (e Expr) Mean() float64 {
	return float64(e.Count)*float64(e.Sides+1)/2 + float64(e.Modifier)
}

func (e Expr) String() string {
	if e.IsFixed() {
		return strconv.Itoa(e.Modifier)
	}
	var b strings.Builder
	if e.Count > 1 {
		b.WriteString(strconv.Itoa(e.Count))
	}
	b.WriteString("D")
	b.WriteString(strconv.Itoa(e.Sides))
	if e.Modifier > 0 {
		b.WriteString("+" + strconv.Itoa(e.Modifier))
	} else if e.Modifier < 0 {
		b.WriteString(strconv.Itoa(e.Modifier))
	}
	return b.String()
}

func (e Expr) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *Expr) UnmarshalText(text []byte) error {
	parsed, err := ParseExpr(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

func (e Expr) MarshalJSON() ([]byte, error) {
	if e.IsFixed() {
		return json.Marshal(e.Modifier)
	}
	return json.Marshal(e.String())
}

// UnmarshalJSON accepts either a JSON number or a string expression.
func (e *Expr) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*e = Fixed(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidExpr, string(data))
	}
	return e.UnmarshalText([]byte(s))
}
