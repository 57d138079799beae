// Package report holds the catalog of scheduled market reports, the prompt
// and context builders, and the fixed HTML envelope the Telegram dispatcher
// expects.
package report

import (
	"fmt"
	"strings"
)

// Definition describes one scheduled report (metal + frequency)
type Definition struct {
	ID           string
	Metal        string
	Pair         string // e.g. "Ouro (XAU/USD)"
	Frequency    string // "Diário", "Semanal", "Mensal"
	Horizon      string // extra analysis-horizon hint for non-daily reports
	CounterKey   string
	SystemPrompt string
	Sections     []string // the ten numbered sections requested from the LLM
	ContextLines []string // defensive factual baseline for the prompt context
}

// metalSpec carries the per-metal content shared by every frequency
type metalSpec struct {
	slug         string // english id fragment
	ptSlug       string // counter key fragment
	pair         string
	systemPrompt string
	sections     []string
	contextLines []string
}

type frequencySpec struct {
	slug    string // daily, weekly, monthly
	ptSlug  string // diario, semanal, mensal
	label   string // Diário, Semanal, Mensal
	horizon string
}

var frequencies = []frequencySpec{
	{slug: "daily", ptSlug: "diario", label: "Diário"},
	{slug: "weekly", ptSlug: "semanal", label: "Semanal", horizon: "Considere a evolução dos últimos 7 dias."},
	{slug: "monthly", ptSlug: "mensal", label: "Mensal", horizon: "Considere a evolução dos últimos 30 dias."},
}

var metals = []metalSpec{
	{
		slug:   "gold",
		ptSlug: "ouro",
		pair:   "Ouro (XAU/USD)",
		systemPrompt: "Você é um analista financeiro sênior. Escreva em PT-BR, objetivo e claro, " +
			"com dados e interpretação executiva. Evite jargão desnecessário; " +
			"mostre raciocínio econômico coerente.",
		sections: []string{
			"Fluxos em ETFs de Ouro (GLD/IAU)",
			"Posição Líquida em Futuros (CFTC/CME)",
			"Reservas (LBMA/COMEX) e Estoques",
			"Fluxos de Bancos Centrais",
			"Mercado de Mineração",
			"Câmbio e DXY (Dollar Index)",
			"Taxas de Juros e Treasuries",
			"Notas de Instituições Financeiras / Research",
			"Interpretação Executiva (bullet points objetivos, até 5 linhas)",
			"Conclusão (1 parágrafo, inclua leitura de curto e médio prazo)",
		},
		contextLines: []string{
			"- GLD/IAU: movimentos recentes indicam entradas moderadas e recomposição parcial de posição.",
			"- CFTC Net Position (GC): leve aumento na posição líquida comprada (estimativa).",
			"- Reservas LBMA/COMEX: estoques estáveis na margem, sem inflexões relevantes.",
			"- Macro: DXY lateral e yields dos Treasuries levemente mais altos, limitando altas no ouro.",
		},
	},
	{
		slug:   "silver",
		ptSlug: "prata",
		pair:   "Prata (XAG/USD)",
		systemPrompt: "Você é um analista financeiro sênior. Escreva em PT-BR, objetivo e claro, " +
			"com dados e interpretação executiva. Evite jargão; mantenha coesão macro/indústria.",
		sections: []string{
			"Fluxos em ETFs de Prata (SLV/SIVR)",
			"Posição Líquida em Futuros (CFTC/CME — SI)",
			"Reservas (LBMA/COMEX) e Estoques",
			"Oferta de Mineração e Reciclagem",
			"Demanda Industrial e Fotovoltaico",
			"Câmbio e DXY (Dollar Index)",
			"Taxas de Juros e Treasuries",
			"Notas de Instituições Financeiras / Research",
			"Interpretação Executiva (bullet points objetivos, até 5 linhas)",
			"Conclusão (1 parágrafo, curto e médio prazo)",
		},
		contextLines: []string{
			"- SLV/SIVR: entradas líquidas moderadas; sinal de demanda tática por proteção/indústria.",
			"- CFTC (SI): leve alta na posição líquida comprada entre especuladores (estimativa).",
			"- LBMA/COMEX: estoques de prata estáveis, sem choques relevantes de oferta física.",
			"- Oferta/Reciclagem: produção estável; reciclagem firme com preços recentes.",
			"- Indústria/Fotovoltaico: demanda estrutural positiva com expansão de painéis solares.",
			"- DXY: estabilidade recente; dólar ainda limita movimentos de alta.",
			"- Treasuries: yields em leve alta; custo de oportunidade pesa na ponta comprada.",
			"- Research: casas indicam assimetria positiva se indústria acelerar; ainda cautela no curto prazo.",
		},
	},
	{
		slug:   "copper",
		ptSlug: "cobre",
		pair:   "Cobre (XCU/USD)",
		systemPrompt: "Você é um analista financeiro sênior. Escreva em PT-BR, objetivo e claro. " +
			"Conecte macro (dólar/juros) à dinâmica industrial/global do cobre.",
		sections: []string{
			"Fluxos em ETFs de Cobre (CPER/JJC)",
			"Posição Líquida em Futuros (CFTC/COMEX — HG) e LME (se disponível)",
			"Inventários (LME/COMEX/SHFE)",
			"Oferta de Mineração e Fundições",
			"Demanda Industrial e China/PMIs/Infra",
			"Câmbio e DXY (Dollar Index)",
			"Taxas de Juros (Treasuries) e apetite por risco",
			"Notas de Instituições Financeiras / Research",
			"Interpretação Executiva (bullet points objetivos, até 5 linhas)",
			"Conclusão (1 parágrafo, curto e médio prazo)",
		},
		contextLines: []string{
			"- CPER/JJC: fluxos ligeiramente positivos; busca por exposição ao ciclo industrial.",
			"- CFTC (HG): especuladores com leve alta na posição líquida comprada (estimativa).",
			"- Inventários LME/COMEX/SHFE: níveis moderados; estoques chineses sob observação.",
			"- Oferta: minas e fundições reportam manutenção e gargalos pontuais; custo de energia impacta.",
			"- Demanda China/PMIs/Infra: sinais mistos; impulsos de infraestrutura sustentam consumo.",
			"- DXY: dólar firme pode limitar ralis de commodities denominadas em USD.",
			"- Treasuries/global rates: yields estáveis a levemente mais altos; apetite por risco moderado.",
			"- Research: foco em balanço tight 2025+, investimentos em transição energética elevam demanda.",
		},
	},
}

// catalog maps report id to its definition, e.g. "gold_daily"
var catalog = buildCatalog()

func buildCatalog() map[string]Definition {
	defs := make(map[string]Definition, len(metals)*len(frequencies))
	for _, m := range metals {
		for _, f := range frequencies {
			id := fmt.Sprintf("%s_%s", m.slug, f.slug)
			defs[id] = Definition{
				ID:           id,
				Metal:        m.slug,
				Pair:         m.pair,
				Frequency:    f.label,
				Horizon:      f.horizon,
				CounterKey:   fmt.Sprintf("%s_%s", f.ptSlug, m.ptSlug),
				SystemPrompt: m.systemPrompt,
				Sections:     m.sections,
				ContextLines: m.contextLines,
			}
		}
	}
	return defs
}

// Find returns the definition for a report id
func Find(id string) (Definition, error) {
	def, ok := catalog[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Definition{}, fmt.Errorf("unknown report %q (known: %s)", id, strings.Join(IDs(), ", "))
	}
	return def, nil
}

// IDs returns the known report ids in stable order
func IDs() []string {
	ids := make([]string, 0, len(catalog))
	for _, m := range metals {
		for _, f := range frequencies {
			ids = append(ids, fmt.Sprintf("%s_%s", m.slug, f.slug))
		}
	}
	return ids
}
