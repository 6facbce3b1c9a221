package qnet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

func TestComponentParamDefaults(t *testing.T) {
	ct := ComponentTemplate{"fidelity": 0.99}
	require.Equal(t, 0.99, ct.Param("fidelity", 0.9))
	require.Equal(t, 0.9, ct.Param("missing", 0.9))

	var empty ComponentTemplate
	require.Equal(t, 42.0, empty.Param("anything", 42.0))
}

func TestResolveTemplateUnknown(t *testing.T) {
	templates := map[string]Template{
		"perfect": {memoryArrayComponent: {"fidelity": 1.0}},
	}

	require.Empty(t, resolveTemplate(templates, ""))
	require.Empty(t, resolveTemplate(templates, "no-such-template"))
	require.Equal(t, 1.0,
		resolveTemplate(templates, "perfect").Component(memoryArrayComponent).Param("fidelity", 0))
}

func TestMemoryParamsDefaults(t *testing.T) {
	mp := memoryParamsFrom(ComponentTemplate{})
	require.Equal(t, 0.9, mp.Fidelity)
	require.Equal(t, 2000.0, mp.Frequency)
	require.Equal(t, 1.0, mp.Efficiency)
	require.Equal(t, -1.0, mp.CoherenceTime)
	require.Equal(t, 500.0, mp.Wavelength)
}

func TestResolveQlanParamsLegacy(t *testing.T) {
	cfg := &TopoCfg{
		LocalMemories:      ip(3),
		ClientNumber:       ip(2),
		MeasurementBases:   "x",
		MemoFidelityOrch:   fp(0.95),
		MemoFidelityClient: fp(0.85),
		MemoCoherenceOrch:  fp(1.3e12),
	}

	qp := resolveQlanParams(cfg)
	require.Equal(t, 3, qp.LocalMemories)
	require.Equal(t, 2, qp.ClientNumber)
	require.Equal(t, "x", qp.MeasurementBases)
	require.Equal(t, 0.95, qp.Orch.Fidelity)
	require.Equal(t, 1.3e12, qp.Orch.CoherenceTime)
	require.Equal(t, 0.85, qp.Client.Fidelity)

	// unmentioned legacy values still fall back to the built-in defaults
	require.Equal(t, 2000.0, qp.Orch.Frequency)
	require.Equal(t, -1.0, qp.Client.CoherenceTime)
}

func TestResolveQlanParamsDefaults(t *testing.T) {
	qp := resolveQlanParams(&TopoCfg{})
	require.Equal(t, 1, qp.LocalMemories)
	require.Equal(t, 1, qp.ClientNumber)
	require.Equal(t, "z", qp.MeasurementBases)
	require.Equal(t, 0.9, qp.Orch.Fidelity)
	require.Equal(t, 0.9, qp.Client.Fidelity)
}

// Both dialects must resolve to identical canonical parameters when they
// declare the same values.
func TestQlanDialectEquivalence(t *testing.T) {
	legacy := &TopoCfg{
		Nodes: []NodeDesc{
			{Name: "orch", Type: string(OrchestratorType)},
			{Name: "c1", Type: string(ClientType)},
		},
		MemoFidelityOrch:    fp(0.95),
		MemoFrequencyOrch:   fp(5000),
		MemoFidelityClient:  fp(0.85),
		MemoCoherenceClient: fp(2e12),
	}

	templated := &TopoCfg{
		Nodes: []NodeDesc{
			{Name: "orch", Type: string(OrchestratorType), Template: "orchT"},
			{Name: "c1", Type: string(ClientType), Template: "clientT"},
		},
		Templates: map[string]Template{
			"orchT":   {memoryArrayComponent: {"fidelity": 0.95, "frequency": 5000}},
			"clientT": {memoryArrayComponent: {"fidelity": 0.85, "coherence_time": 2e12}},
		},
	}

	require.Equal(t, resolveQlanParams(legacy), resolveQlanParams(templated))
}

func TestLegacyDialectWins(t *testing.T) {
	// one legacy key present selects the legacy dialect even when templates
	// also carry memory parameters
	cfg := &TopoCfg{
		Nodes: []NodeDesc{
			{Name: "orch", Type: string(OrchestratorType), Template: "orchT"},
		},
		Templates: map[string]Template{
			"orchT": {memoryArrayComponent: {"fidelity": 0.5}},
		},
		MemoFidelityOrch: fp(0.99),
	}

	qp := resolveQlanParams(cfg)
	require.Equal(t, 0.99, qp.Orch.Fidelity)
}
