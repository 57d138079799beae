package report

import (
	"strings"
	"testing"

	"github.com/dobsilva08/metals-reports/internal/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDs(t *testing.T) {
	ids := IDs()
	require.Len(t, ids, 9)
	assert.Equal(t, "gold_daily", ids[0])
	assert.Contains(t, ids, "silver_weekly")
	assert.Contains(t, ids, "copper_monthly")
}

func TestFind(t *testing.T) {
	def, err := Find("gold_daily")
	require.NoError(t, err)
	assert.Equal(t, "Ouro (XAU/USD)", def.Pair)
	assert.Equal(t, "Diário", def.Frequency)
	assert.Equal(t, "diario_ouro", def.CounterKey)
	assert.Empty(t, def.Horizon)
	assert.Len(t, def.Sections, 10)
}

func TestFind_NormalizesInput(t *testing.T) {
	def, err := Find("  Silver_Monthly ")
	require.NoError(t, err)
	assert.Equal(t, "silver_monthly", def.ID)
	assert.Equal(t, "mensal_prata", def.CounterKey)
	assert.Equal(t, "Considere a evolução dos últimos 30 dias.", def.Horizon)
}

func TestFind_UnknownID(t *testing.T) {
	_, err := Find("platinum_daily")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gold_daily")
}

func TestEveryDefinitionHasTenSections(t *testing.T) {
	for _, id := range IDs() {
		def, err := Find(id)
		require.NoError(t, err)
		assert.Len(t, def.Sections, 10, "report %s", id)
		assert.NotEmpty(t, def.SystemPrompt, "report %s", id)
		assert.NotEmpty(t, def.ContextLines, "report %s", id)
	}
}

func TestContextBlock_BaselineOnly(t *testing.T) {
	def, err := Find("copper_daily")
	require.NoError(t, err)

	block := ContextBlock(def, nil)
	assert.Equal(t, strings.Join(def.ContextLines, "\n"), block)
}

func TestContextBlock_AppendsLiveObservations(t *testing.T) {
	def, err := Find("gold_daily")
	require.NoError(t, err)

	snap := &market.Snapshot{
		DXY: &market.Observation{SeriesID: "DTWEXBGS", Date: "2026-01-02", Value: 121.37},
		Reserves: &market.WorldReserves{
			Total: &market.YearValue{Date: "2024", Value: 15.2e12},
		},
	}

	block := ContextBlock(def, snap)
	assert.Contains(t, block, "DXY (DTWEXBGS): 121.37 (último: 2026-01-02)")
	assert.Contains(t, block, "Reservas globais (World Bank)")
	assert.NotContains(t, block, "Reservas em ouro")
}

func TestBuildUserPrompt(t *testing.T) {
	def, err := Find("gold_weekly")
	require.NoError(t, err)

	prompt := BuildUserPrompt(def, "- linha de contexto")

	assert.Contains(t, prompt, "Relatório Semanal — Ouro (XAU/USD)")
	assert.Contains(t, prompt, "1) Fluxos em ETFs de Ouro (GLD/IAU)")
	assert.Contains(t, prompt, "10) Conclusão")
	assert.Contains(t, prompt, "Considere a evolução dos últimos 7 dias.")
	assert.Contains(t, prompt, "Baseie-se no contexto factual levantado:\n- linha de contexto")
}

func TestBuildUserPrompt_DailyHasNoHorizon(t *testing.T) {
	def, err := Find("gold_daily")
	require.NoError(t, err)

	prompt := BuildUserPrompt(def, "- ctx")
	assert.NotContains(t, prompt, "Considere a evolução")
}
