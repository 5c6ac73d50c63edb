package priceexpr

import (
	"strings"

	"github.com/iwvelando/auto-loan-calc/pkg/mathutil"
)

// Kind tags the variant held by a FinalPrice.
type Kind int

const (
	// Blank means the user left the field empty; the caller substitutes MSRP.
	Blank Kind = iota
	// Literal is a fixed amount independent of MSRP.
	Literal
	// Relative is an expression that must be re-resolved when MSRP changes.
	Relative
)

func (k Kind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Relative:
		return "relative"
	default:
		return "blank"
	}
}

// FinalPrice remembers what the user typed into the sale price field and
// whether that text depends on the vehicle's MSRP.
type FinalPrice struct {
	kind   Kind
	raw    string
	amount float64
}

// ParseFinalPrice classifies raw. Text mentioning MSRP or starting with a
// sign is relative; anything else is resolved once into a literal amount.
func ParseFinalPrice(raw string) FinalPrice {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return FinalPrice{kind: Blank}
	case msrpToken.MatchString(s) || s[0] == '+' || s[0] == '-':
		return FinalPrice{kind: Relative, raw: s}
	default:
		return FinalPrice{kind: Literal, raw: s, amount: Evaluate(s, 0)}
	}
}

// Kind reports which variant f holds.
func (f FinalPrice) Kind() Kind { return f.kind }

// IsRelative reports whether f must be resolved again after an MSRP change.
func (f FinalPrice) IsRelative() bool { return f.kind == Relative }

// Raw returns the text to redisplay to the user.
func (f FinalPrice) Raw() string { return f.raw }

// Resolve returns the price for the given MSRP. Blank resolves to 0 so the
// caller can apply its own MSRP fallback.
func (f FinalPrice) Resolve(msrp float64) float64 {
	switch f.kind {
	case Literal:
		return mathutil.Finite(f.amount)
	case Relative:
		return Evaluate(f.raw, msrp)
	default:
		return 0
	}
}
