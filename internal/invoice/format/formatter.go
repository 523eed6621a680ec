// Package format renders human-readable invoice numbers from a template.
package format

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultInvoiceNumberTemplate yields numbers such as INV-202406-0042.
const DefaultInvoiceNumberTemplate = "INV-{YYYY}{MM}-{SEQ4}"

var (
	ErrEmptyTemplate    = errors.New("invoice number template is empty")
	ErrInvalidSequence  = errors.New("invoice sequence must be positive")
	ErrUnresolvedToken  = errors.New("unresolved token in invoice number template")
	paddedSequenceToken = regexp.MustCompile(`\{SEQ(\d+)\}`)
)

// FormatInvoiceNumber expands {YYYY} {YY} {MM} {DD} {SEQ} and {SEQn} (zero padded to n digits).
func FormatInvoiceNumber(template string, issuedAt time.Time, seq int64) (string, error) {
	if strings.TrimSpace(template) == "" {
		return "", ErrEmptyTemplate
	}
	if seq <= 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidSequence, seq)
	}

	issuedAt = issuedAt.UTC()
	out := strings.NewReplacer(
		"{YYYY}", issuedAt.Format("2006"),
		"{YY}", issuedAt.Format("06"),
		"{MM}", issuedAt.Format("01"),
		"{DD}", issuedAt.Format("02"),
		"{SEQ}", strconv.FormatInt(seq, 10),
	).Replace(template)

	out = paddedSequenceToken.ReplaceAllStringFunc(out, func(token string) string {
		width, err := strconv.Atoi(paddedSequenceToken.FindStringSubmatch(token)[1])
		if err != nil || width <= 0 || width > 18 {
			return token
		}
		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.ContainsAny(out, "{}") {
		return "", fmt.Errorf("%w: %s", ErrUnresolvedToken, out)
	}
	return out, nil
}
