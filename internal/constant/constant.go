// Package constant provides the target digit sequences for the drilled
// mathematical constants.
package constant

import (
	"fmt"
	"sort"
	"strings"
)

// First 300 fractional digits of each constant, preceded by the integer
// part. Compiled-in configuration data; never mutated.
const (
	piDigits  = "3141592653589793238462643383279502884197169399375105820974944592307816406286208998628034825342117067982148086513282306647093844609550582231725359408128481117450284102701938521105559644622948954930381964428810975665933446128475648233786783165271201909145648566923460348610454326648213393607260249141273"
	phiDigits = "1618033988749894848204586834365638117720309179805762862135448622705260462818902449707207204189391137484754088075386891752126633862223536931793180060766726354433389086595939582905638322661319928290267880675208766892501711696207032221043216269548626296313614438149758701220340805887954454749246185695364"
	eDigits   = "2718281828459045235360287471352662497757247093699959574966967627724076630353547594571382178525166427427466391932003059921817413596629043572900334295260595630738132328627943490763233829880753195251019011573834187930702154089149934884167509244761460668082264800168477411853742345442437107539077744992069"
)

// Sequence is an immutable, 0-indexed digit sequence for one constant.
type Sequence struct {
	code   string
	name   string
	glyph  string
	digits string
}

// Code returns the constant identifier ("pi", "phi", "e").
func (s Sequence) Code() string { return s.code }

// Name returns the human-readable constant name.
func (s Sequence) Name() string { return s.name }

// Glyph returns the mathematical symbol for display.
func (s Sequence) Glyph() string { return s.glyph }

// Len returns the number of digits in the sequence.
func (s Sequence) Len() int { return len(s.digits) }

// At returns the digit at position i.
func (s Sequence) At(i int) byte { return s.digits[i] }

// Digits returns the full sequence as a string.
func (s Sequence) Digits() string { return s.digits }

var sequences = map[string]Sequence{
	"pi":  {code: "pi", name: "pi", glyph: "π", digits: piDigits},
	"phi": {code: "phi", name: "phi", glyph: "φ", digits: phiDigits},
	"e":   {code: "e", name: "e", glyph: "e", digits: eDigits},
}

// Lookup resolves a constant code to its sequence.
func Lookup(code string) (Sequence, error) {
	seq, ok := sequences[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return Sequence{}, fmt.Errorf("unknown constant %q (available: %s)", code, strings.Join(Codes(), ", "))
	}
	return seq, nil
}

// Codes lists the available constant codes in stable order.
func Codes() []string {
	codes := make([]string, 0, len(sequences))
	for code := range sequences {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
