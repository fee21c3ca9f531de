package generate

const textTemplate = `//go:build extfn

package text

import (
	"fmt"
	"strings"
	"unicode"
)

// CountDigits reports the number of decimal digits.
//
//extfn:target Text
func (s Self) CountDigits() int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

//extfn:target interface ~string
func (s Self) Shout() Self {
	return Self(strings.ToUpper(string(s)))
}

// helper is not a template and is not copied.
func helper() string { return fmt.Sprint(1) }
`

const textDecl = `package text

// Text is a run of characters.
type Text string
`
