package report

import (
	"fmt"
	"strings"

	"github.com/dobsilva08/metals-reports/internal/market"
)

// ContextBlock assembles the factual bullet block that grounds the LLM
// prompt. It starts from the report's defensive baseline lines and appends
// live observations from the market snapshot when they are available.
func ContextBlock(def Definition, snap *market.Snapshot) string {
	lines := make([]string, 0, len(def.ContextLines)+3)
	lines = append(lines, def.ContextLines...)

	if snap != nil {
		if snap.DXY != nil {
			lines = append(lines, fmt.Sprintf("- DXY (%s): %.2f (último: %s)",
				snap.DXY.SeriesID, snap.DXY.Value, snap.DXY.Date))
		}
		if snap.Reserves != nil {
			if snap.Reserves.Total != nil {
				lines = append(lines, fmt.Sprintf("- Reservas globais (World Bank): %.0f USD (ano %s)",
					snap.Reserves.Total.Value, snap.Reserves.Total.Date))
			}
			if snap.Reserves.Gold != nil {
				lines = append(lines, fmt.Sprintf("- Reservas em ouro (World Bank): %.0f USD (ano %s)",
					snap.Reserves.Gold.Value, snap.Reserves.Gold.Date))
			}
		}
	}

	return strings.Join(lines, "\n")
}

// BuildUserPrompt constructs the user prompt with the ten numbered sections
// and the factual context block
func BuildUserPrompt(def Definition, contextBlock string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Gere um **Relatório %s — %s** estruturado nos **10 tópicos abaixo**.\n", def.Frequency, def.Pair)
	sb.WriteString("Seja específico e conciso. Numere exatamente de 1 a 10.\n\n")

	for i, section := range def.Sections {
		fmt.Fprintf(&sb, "%d) %s\n", i+1, section)
	}

	if def.Horizon != "" {
		sb.WriteString("\n")
		sb.WriteString(def.Horizon)
		sb.WriteString("\n")
	}

	sb.WriteString("\nBaseie-se no contexto factual levantado:\n")
	sb.WriteString(contextBlock)

	return sb.String()
}
