package settlements

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/oclservices/ocl-backend/pkg/errors"
)

// DefaultInvoiceNumberTemplate numbers invoices per financial year and day.
const DefaultInvoiceNumberTemplate = "OCL/{FY}/{YYYY}{MM}{DD}-{SEQ4}"

// invoiceSequenceName keys the daily counter. Keys carry no TTL so a backdated
// issue date continues its day instead of restarting at 1.
const invoiceSequenceName = "invoice"

var seqPadRe = regexp.MustCompile(`\{SEQ(\d+)\}`)

// FinancialYear returns the Indian April-March financial year label, e.g. "2025-26".
func FinancialYear(t time.Time) string {
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

// FormatInvoiceNumber expands template tokens for issuedAt and seq.
// Supported tokens: {FY} {YYYY} {YY} {MM} {DD} {SEQ} {SEQn}.
func FormatInvoiceNumber(template string, issuedAt time.Time, seq int64) (string, error) {
	if template == "" {
		return "", fmt.Errorf("invoice number template is empty")
	}
	if seq <= 0 {
		return "", fmt.Errorf("invalid invoice sequence: %d", seq)
	}

	out := template
	out = strings.ReplaceAll(out, "{FY}", FinancialYear(issuedAt))
	out = strings.ReplaceAll(out, "{YYYY}", issuedAt.Format("2006"))
	out = strings.ReplaceAll(out, "{YY}", issuedAt.Format("06"))
	out = strings.ReplaceAll(out, "{MM}", issuedAt.Format("01"))
	out = strings.ReplaceAll(out, "{DD}", issuedAt.Format("02"))
	out = strings.ReplaceAll(out, "{SEQ}", strconv.FormatInt(seq, 10))
	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		match := seqPadRe.FindStringSubmatch(m)
		if len(match) != 2 {
			return m
		}
		width, err := strconv.Atoi(match[1])
		if err != nil || width <= 0 {
			return m
		}
		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.ContainsAny(out, "{}") {
		return "", fmt.Errorf("unresolved token in invoice format: %s", out)
	}
	return out, nil
}

type sequenceStore interface {
	NextSequence(ctx context.Context, name string, day time.Time, ttl time.Duration) (int64, error)
}

// invoiceNumberer allocates invoice numbers from a daily counter. The counter
// never hands out a sequence at or below the invoices already recorded for the
// day, so a flushed or missing counter cannot repeat a number.
type invoiceNumberer struct {
	template string
	store    sequenceStore
}

func newInvoiceNumberer(template string, store sequenceStore) *invoiceNumberer {
	if strings.TrimSpace(template) == "" {
		template = DefaultInvoiceNumberTemplate
	}
	return &invoiceNumberer{template: template, store: store}
}

// Next returns the next number for issuedAt. issued is the count of invoices
// already recorded for that day. A counter failure is a retryable dependency
// error; nothing is guessed.
func (n *invoiceNumberer) Next(ctx context.Context, issuedAt time.Time, issued int64) (string, error) {
	seq := issued + 1
	if n.store != nil {
		v, err := n.store.NextSequence(ctx, invoiceSequenceName, issuedAt, 0)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate invoice sequence")
		}
		if v > seq {
			seq = v
		}
	}
	return n.format(issuedAt, seq)
}

// Preview formats a provisional number without consuming the counter.
func (n *invoiceNumberer) Preview(issuedAt time.Time, issued int64) (string, error) {
	return n.format(issuedAt, issued+1)
}

func (n *invoiceNumberer) format(issuedAt time.Time, seq int64) (string, error) {
	number, err := FormatInvoiceNumber(n.template, issuedAt, seq)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "format invoice number")
	}
	return number, nil
}
