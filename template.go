package qnet

// template.go resolves hardware templates.  A template is a named bundle of
// per-component-kind parameters referenced by node declarations.  The star
// family additionally supports a legacy flat dialect that predates templating;
// both dialects are resolved once, here, into one canonical parameter
// structure so nothing downstream branches on the format again.

// ComponentTemplate maps a hardware parameter name to its value for one
// component kind.
type ComponentTemplate map[string]float64

// Param returns the named parameter, or dflt when the parameter (or the whole
// component) is absent.
func (ct ComponentTemplate) Param(name string, dflt float64) float64 {
	v, present := ct[name]
	if !present {
		return dflt
	}
	return v
}

// Template maps a component kind (the hardware class a node instantiates,
// e.g. "MemoryArray", "Detector") to the parameters for that component.
type Template map[string]ComponentTemplate

// Component returns the parameter map for the named component kind.  The
// result is never nil, so Param lookups on absent components fall through to
// their defaults.
func (t Template) Component(kind string) ComponentTemplate {
	ct, present := t[kind]
	if !present {
		return ComponentTemplate{}
	}
	return ct
}

// memoryArrayComponent is the component kind under which memory hardware
// parameters live in a template.
const memoryArrayComponent = "MemoryArray"

// detectorComponent is the component kind under which single-photon detector
// parameters live in a template.
const detectorComponent = "Detector"

// resolveTemplate maps a template reference to its component parameter
// mapping.  An absent reference or an unknown template name resolves to an
// empty template; downstream construction then uses built-in defaults.
func resolveTemplate(templates map[string]Template, ref string) Template {
	if len(ref) == 0 {
		return Template{}
	}
	t, present := templates[ref]
	if !present {
		return Template{}
	}
	return t
}

// MemoryParams parameterizes the quantum memories of an endpoint node.
type MemoryParams struct {
	Fidelity      float64
	Frequency     float64
	Efficiency    float64
	CoherenceTime float64
	Wavelength    float64
}

// built-in memory parameter defaults
const (
	defaultMemoFidelity      = 0.9
	defaultMemoFrequency     = 2000
	defaultMemoEfficiency    = 1
	defaultMemoCoherenceTime = -1
	defaultMemoWavelength    = 500
)

// memoryParamsFrom fills a MemoryParams from the component parameters,
// falling back to the built-in defaults per parameter.
func memoryParamsFrom(ct ComponentTemplate) MemoryParams {
	return MemoryParams{
		Fidelity:      ct.Param("fidelity", defaultMemoFidelity),
		Frequency:     ct.Param("frequency", defaultMemoFrequency),
		Efficiency:    ct.Param("efficiency", defaultMemoEfficiency),
		CoherenceTime: ct.Param("coherence_time", defaultMemoCoherenceTime),
		Wavelength:    ct.Param("wavelength", defaultMemoWavelength),
	}
}

// QlanParams is the canonical star-family parameter structure.  Whichever
// dialect the configuration uses, consumers only ever see this.
type QlanParams struct {
	LocalMemories    int
	ClientNumber     int
	MeasurementBases string
	Orch             MemoryParams
	Client           MemoryParams
}

// hasLegacyQlanKeys reports whether any legacy flat hardware key is present
// at the top level of the configuration.
func hasLegacyQlanKeys(cfg *TopoCfg) bool {
	for _, p := range []*float64{
		cfg.MemoFidelityOrch, cfg.MemoFrequencyOrch, cfg.MemoEfficiencyOrch,
		cfg.MemoCoherenceOrch, cfg.MemoWavelengthOrch,
		cfg.MemoFidelityClient, cfg.MemoFrequencyClient, cfg.MemoEfficiencyClient,
		cfg.MemoCoherenceClient, cfg.MemoWavelengthClient,
	} {
		if p != nil {
			return true
		}
	}
	return false
}

// floatOr dereferences p, or returns dflt when p is nil.
func floatOr(p *float64, dflt float64) float64 {
	if p == nil {
		return dflt
	}
	return *p
}

// resolveQlanParams resolves the star-family parameters from whichever
// dialect the configuration carries.  Legacy flat keys win the dialect choice
// when present; otherwise the memory parameters come from the MemoryArray
// component of the first orchestrator and first client node templates.
func resolveQlanParams(cfg *TopoCfg) QlanParams {
	qp := QlanParams{
		LocalMemories:    1,
		ClientNumber:     1,
		MeasurementBases: "z",
	}
	if cfg.LocalMemories != nil {
		qp.LocalMemories = *cfg.LocalMemories
	}
	if cfg.ClientNumber != nil {
		qp.ClientNumber = *cfg.ClientNumber
	}
	if len(cfg.MeasurementBases) > 0 {
		qp.MeasurementBases = cfg.MeasurementBases
	}

	if hasLegacyQlanKeys(cfg) {
		qp.Orch = MemoryParams{
			Fidelity:      floatOr(cfg.MemoFidelityOrch, defaultMemoFidelity),
			Frequency:     floatOr(cfg.MemoFrequencyOrch, defaultMemoFrequency),
			Efficiency:    floatOr(cfg.MemoEfficiencyOrch, defaultMemoEfficiency),
			CoherenceTime: floatOr(cfg.MemoCoherenceOrch, defaultMemoCoherenceTime),
			Wavelength:    floatOr(cfg.MemoWavelengthOrch, defaultMemoWavelength),
		}
		qp.Client = MemoryParams{
			Fidelity:      floatOr(cfg.MemoFidelityClient, defaultMemoFidelity),
			Frequency:     floatOr(cfg.MemoFrequencyClient, defaultMemoFrequency),
			Efficiency:    floatOr(cfg.MemoEfficiencyClient, defaultMemoEfficiency),
			CoherenceTime: floatOr(cfg.MemoCoherenceClient, defaultMemoCoherenceTime),
			Wavelength:    floatOr(cfg.MemoWavelengthClient, defaultMemoWavelength),
		}
		return qp
	}

	qp.Orch = memoryParamsFrom(firstMemoryArray(cfg, OrchestratorType))
	qp.Client = memoryParamsFrom(firstMemoryArray(cfg, ClientType))
	return qp
}

// firstMemoryArray returns the MemoryArray component of the template
// referenced by the first node of the given type, or an empty component when
// no such node or template exists.
func firstMemoryArray(cfg *TopoCfg, nt NodeType) ComponentTemplate {
	for _, nd := range cfg.Nodes {
		if NodeType(nd.Type) != nt {
			continue
		}
		return resolveTemplate(cfg.Templates, nd.Template).Component(memoryArrayComponent)
	}
	return ComponentTemplate{}
}
