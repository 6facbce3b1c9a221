package qnet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnregisteredNodeType(t *testing.T) {
	cfg := &TopoCfg{
		Nodes: []NodeDesc{{Name: "w1", Type: "Widget"}},
	}

	topo, err := NewRouterNetTopoFromConfig(cfg)
	require.Nil(t, topo)
	require.ErrorContains(t, err, "Widget")
	require.ErrorContains(t, err, "no registered constructor")
}

func TestValidateRejectsDuplicatesAndGaps(t *testing.T) {
	cfg := &TopoCfg{
		Nodes: []NodeDesc{
			{Name: "a", Type: string(QuantumRouterType)},
			{Name: "a", Type: string(QuantumRouterType)},
			{Name: "", Type: string(QuantumRouterType)},
			{Name: "b"},
		},
		QConnections: []QConnectDesc{{Node1: "a"}},
	}

	err := cfg.validate()
	require.ErrorContains(t, err, "duplicate node name a")
	require.ErrorContains(t, err, "has no name")
	require.ErrorContains(t, err, "node b has no type")
	require.ErrorContains(t, err, "missing an endpoint name")
}

func TestDuplicateNodeNameFatal(t *testing.T) {
	cfg := twoRouterCfg(2000, 1e9)
	cfg.Nodes = append(cfg.Nodes, NodeDesc{Name: "a", Type: string(QuantumRouterType)})

	topo, err := NewRouterNetTopoFromConfig(cfg)
	require.Nil(t, topo)
	require.Error(t, err)
}

func TestSilentChannelSkip(t *testing.T) {
	cfg := twoRouterCfg(2000, 1e9)
	cfg.QChannels = append(cfg.QChannels, QChannelDesc{
		Source: "ghost", Destination: "a", Distance: 500,
	})
	cfg.CChannels = append(cfg.CChannels, CChannelDesc{
		Source: "ghost", Destination: "a",
	})

	topo, err := NewRouterNetTopoFromConfig(cfg)
	require.NoError(t, err)

	for _, qc := range topo.GetQChannels() {
		require.NotEqual(t, "ghost", qc.Sender().Name())
	}
	for _, cc := range topo.GetCChannels() {
		require.NotEqual(t, "ghost", cc.Sender().Name())
	}
}

func TestChannelDefaultNames(t *testing.T) {
	cfg := &TopoCfg{
		Nodes: []NodeDesc{
			{Name: "a", Type: string(QuantumRouterType)},
			{Name: "b", Type: string(QuantumRouterType)},
		},
		QChannels: []QChannelDesc{{Source: "a", Destination: "b", Distance: 500}},
		CChannels: []CChannelDesc{{Source: "a", Destination: "b", Delay: fp(1e8)}},
	}

	topo, err := NewRouterNetTopoFromConfig(cfg)
	require.NoError(t, err)
	require.Equal(t, "qc-a-b", topo.GetQChannels()[0].Name())
	require.Equal(t, "cc-a-b", topo.GetCChannels()[0].Name())
}

func TestConfigFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := twoRouterCfg(2000, 1e9)
	cfg.Templates = map[string]Template{
		"highFidelity": {memoryArrayComponent: {"fidelity": 0.99}},
	}
	cfg.Nodes[0].Template = "highFidelity"

	for _, name := range []string{"net.yaml", "net.json"} {
		file := filepath.Join(dir, name)
		require.NoError(t, cfg.WriteToFile(file))

		topo, err := NewRouterNetTopo(file)
		require.NoError(t, err)
		require.Len(t, topo.GetNodesByType(string(QuantumRouterType)), 2)
		require.Len(t, topo.GetNodesByType(string(BSMNodeType)), 1)

		a := routerByName(t, topo.Topology, "a").(*RouterNode)
		require.Equal(t, 0.99, a.MemoArray.Params.Fidelity)
	}
}

func TestUnsupportedConfigExtension(t *testing.T) {
	_, err := NewRouterNetTopo("net.toml")
	require.ErrorContains(t, err, "unsupported config file format")
}

func TestRouterMemorySizing(t *testing.T) {
	cfg := twoRouterCfg(2000, 1e9)
	cfg.Nodes[0].MemoSize = 8

	topo, err := NewRouterNetTopoFromConfig(cfg)
	require.NoError(t, err)

	a := routerByName(t, topo.Topology, "a").(*RouterNode)
	b := routerByName(t, topo.Topology, "b").(*RouterNode)
	require.Equal(t, 8, a.MemoArray.Size)
	require.Equal(t, defaultMemoSize, b.MemoArray.Size)
}

func TestBSMDetectorTemplate(t *testing.T) {
	cfg := twoRouterCfg(2000, 1e9)
	cfg.Templates = map[string]Template{
		"fastDetector": {detectorComponent: {"efficiency": 0.95, "count_rate": 5e7}},
	}
	cfg.QConnections[0].Template = "fastDetector"

	topo, err := NewRouterNetTopoFromConfig(cfg)
	require.NoError(t, err)

	bsm := topo.GetNodesByType(string(BSMNodeType))[0].(*BSMNode)
	require.Equal(t, 0.95, bsm.Detector.Efficiency)
	require.Equal(t, 5e7, bsm.Detector.CountRate)
	require.Equal(t, 150.0, bsm.Detector.TimeResolution)
}

func dqcCfg() *TopoCfg {
	return &TopoCfg{
		Nodes: []NodeDesc{
			{Name: "d1", Type: string(DQCNodeType), NData: 2, DataMemoSize: 2},
			{Name: "d2", Type: string(DQCNodeType)},
			{Name: "d3", Type: string(DQCNodeType), NData: 1},
		},
		QConnections: []QConnectDesc{
			{Node1: "d1", Node2: "d2", Distance: 1000, Type: MeetInTheMiddle},
			{Node1: "d2", Node2: "d3", Distance: 1000, Type: MeetInTheMiddle},
		},
		CConnections: []CConnectDesc{
			{Node1: "d1", Node2: "d2", Delay: fp(1e8)},
			{Node1: "d2", Node2: "d3", Delay: fp(1e8)},
		},
	}
}

func TestDQCNodeArrays(t *testing.T) {
	topo, err := NewDQCNetTopoFromConfig(dqcCfg())
	require.NoError(t, err)

	d1 := routerByName(t, topo.Topology, "d1").(*DQCNode)
	require.Equal(t, defaultMemoSize, d1.MemoArray.Size)
	require.Equal(t, 2, d1.DataMemoArray.Size)

	d2 := routerByName(t, topo.Topology, "d2").(*DQCNode)
	require.Equal(t, 1, d2.DataMemoArray.Size)
}

func TestInferQubitToNode(t *testing.T) {
	topo, err := NewDQCNetTopoFromConfig(dqcCfg())
	require.NoError(t, err)

	mapping, err := topo.InferQubitToNode(4)
	require.NoError(t, err)
	require.Equal(t, map[int]string{0: "d1", 1: "d1", 2: "d2", 3: "d3"}, mapping)
}

func TestInferQubitToNodeMismatch(t *testing.T) {
	topo, err := NewDQCNetTopoFromConfig(dqcCfg())
	require.NoError(t, err)

	_, err = topo.InferQubitToNode(3)
	require.ErrorContains(t, err, "overflow")

	_, err = topo.InferQubitToNode(5)
	require.ErrorContains(t, err, "circuit has 5 wires")
}

func TestInferMemoryOwners(t *testing.T) {
	topo, err := NewDQCNetTopoFromConfig(dqcCfg())
	require.NoError(t, err)

	owners, err := topo.InferMemoryOwners(4, nil)
	require.NoError(t, err)
	require.Equal(t, map[string]map[int]int{
		"d1": {0: 0, 1: 1},
		"d2": {2: 0},
		"d3": {3: 0},
	}, owners)
}

func qlanCfg() *TopoCfg {
	return &TopoCfg{
		Nodes: []NodeDesc{
			{Name: "orch", Type: string(OrchestratorType), Seed: 1},
			{Name: "c1", Type: string(ClientType), Seed: 2},
			{Name: "c2", Type: string(ClientType), Seed: 3},
		},
		LocalMemories:      ip(2),
		ClientNumber:       ip(2),
		MeasurementBases:   "xz",
		MemoFidelityOrch:   fp(0.95),
		MemoFidelityClient: fp(0.85),
	}
}

func TestQlanStarConstruction(t *testing.T) {
	topo, err := NewQlanStarTopoFromConfig(qlanCfg())
	require.NoError(t, err)

	require.Len(t, topo.Orchestrators, 1)
	require.Len(t, topo.Clients, 2)

	orch := topo.Orchestrators[0]
	require.Equal(t, "xz", orch.Bases)
	require.Len(t, orch.LocalMemories, 2)
	require.Equal(t, 0.95, orch.LocalMemories[0].Params.Fidelity)

	// the orchestrator holds references to the client memories, not copies:
	// clients are constructed first so injection sees every memory
	require.Len(t, topo.RemoteMemories(), 2)
	require.Same(t, topo.Clients[0].Memories[0], orch.RemoteMemories[0])
	require.Same(t, topo.Clients[1].Memories[0], orch.RemoteMemories[1])
	require.Equal(t, 0.85, orch.RemoteMemories[0].Params.Fidelity)
}

func TestQlanOrderingDeclaredOrchestratorFirst(t *testing.T) {
	// declaration order puts the orchestrator first; construction order must
	// still build the clients first
	topo, err := NewQlanStarTopoFromConfig(qlanCfg())
	require.NoError(t, err)
	require.Len(t, topo.Orchestrators[0].RemoteMemories, 2)
}

func TestQlanProtocolsCreated(t *testing.T) {
	topo, err := NewQlanStarTopoFromConfig(qlanCfg())
	require.NoError(t, err)

	require.Len(t, topo.Orchestrators[0].ResourceManager().Protocols(), 1)
	for _, c := range topo.Clients {
		require.Len(t, c.ResourceManager().Protocols(), 1)
	}
}

func TestQlanUnknownNodeType(t *testing.T) {
	cfg := qlanCfg()
	cfg.Nodes = append(cfg.Nodes, NodeDesc{Name: "r", Type: string(QuantumRouterType)})

	topo, err := NewQlanStarTopoFromConfig(cfg)
	require.Nil(t, topo)
	require.ErrorContains(t, err, "no registered constructor in the star family")
}

func TestQlanPerNodeTemplateOverride(t *testing.T) {
	cfg := qlanCfg()
	cfg.Templates = map[string]Template{
		"special": {memoryArrayComponent: {"fidelity": 0.7}},
	}
	cfg.Nodes[1].Template = "special"

	topo, err := NewQlanStarTopoFromConfig(cfg)
	require.NoError(t, err)

	// c1 takes the template parameters, c2 keeps the canonical role values
	require.Equal(t, 0.7, topo.Clients[0].Memories[0].Params.Fidelity)
	require.Equal(t, 0.85, topo.Clients[1].Memories[0].Params.Fidelity)
}

func TestTopologyConfigExposesExpansion(t *testing.T) {
	topo, err := NewRouterNetTopoFromConfig(twoRouterCfg(2000, 1e9))
	require.NoError(t, err)

	cfg := topo.Config()
	require.Len(t, cfg.Nodes, 3)
	require.Len(t, cfg.QChannels, 2)
	require.Len(t, cfg.CChannels, 4)
}
