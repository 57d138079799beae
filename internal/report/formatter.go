package report

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"
)

// ErrEmptyNarrative is returned when Format receives no narrative text
var ErrEmptyNarrative = errors.New("empty narrative text")

// ptMonths holds Portuguese month names for the title date
var ptMonths = []string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// formatDatePT renders a date as "2 de janeiro de 2006"
func formatDatePT(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), ptMonths[t.Month()-1], t.Year())
}

// Title renders the standard report headline with the persistent counter,
// e.g. "📊 Dados de Mercado — Ouro (XAU/USD) — 2 de janeiro de 2026 — Diário — Nº 41"
func Title(def Definition, now time.Time, number int) string {
	return fmt.Sprintf("📊 Dados de Mercado — %s — %s — %s — Nº %d",
		def.Pair, formatDatePT(now), def.Frequency, number)
}

// Format wraps the generated narrative into the fixed HTML envelope used by
// the Telegram dispatcher. The title is escaped; the narrative passes through
// as produced by the provider. Empty narrative text is rejected before any
// network call happens.
func Format(title, narrative, provider string, elapsed time.Duration) (string, error) {
	narrative = strings.TrimSpace(narrative)
	if narrative == "" {
		return "", ErrEmptyNarrative
	}

	return fmt.Sprintf("<b>%s</b>\n\n%s\n\n<i>Provedor LLM: %s • %.1fs</i>",
		html.EscapeString(title),
		narrative,
		html.EscapeString(provider),
		elapsed.Seconds(),
	), nil
}
