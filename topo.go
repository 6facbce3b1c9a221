package qnet

// topo.go holds the construction pipeline.  BuildTopology sequences a fixed
// set of stages against one configuration and one family strategy; the
// family-specific entry points below bind the strategy and the node type
// registry for each supported network family.

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Topology is the fully constructed network: node objects grouped by declared
// type, installed channels, and the timeline everything is registered with.
type Topology struct {
	// Nodes groups the instantiated node objects by their declared type
	// string, in construction order
	Nodes map[string][]Node

	QChannels []*QuantumChannel
	CChannels []*ClassicalChannel

	Templates map[string]Template

	// Qlan carries the canonical star-family parameters; meaningful only
	// when the star strategy built this topology
	Qlan QlanParams

	tl        *Timeline
	midpoints map[string][]string
	builder   NetworkBuilder
	cfg       *TopoCfg
}

// BuildTopology runs the construction pipeline: validation, parameter
// resolution, quantum connection expansion, ordered node instantiation,
// channel installation, and forwarding generation.  On any error the
// topology is discarded and nil is returned.
func BuildTopology(cfg *TopoCfg, builder NetworkBuilder) (*Topology, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	topo := new(Topology)
	topo.Nodes = make(map[string][]Node)
	topo.midpoints = make(map[string][]string)
	topo.builder = builder
	topo.cfg = cfg
	topo.Templates = cfg.Templates
	if topo.Templates == nil {
		topo.Templates = make(map[string]Template)
	}
	topo.Qlan = resolveQlanParams(cfg)
	topo.tl = NewTimeline(cfg.StopTime, cfg.Formalism, cfg.Truncation)

	builder.AddParameters(cfg, topo)

	for _, qc := range cfg.QConnections {
		ccDelay, err := derivedClassicalDelay(cfg, qc)
		if err != nil {
			return nil, err
		}
		if err := builder.HandleQConnection(qc, ccDelay, cfg); err != nil {
			return nil, err
		}
	}

	builder.MapMidpoints(cfg, topo.midpoints)

	for _, nd := range builder.OrderedNodeDescs(cfg.Nodes) {
		tmpl := resolveTemplate(topo.Templates, nd.Template)
		if err := builder.CreateNode(nd, tmpl, topo); err != nil {
			return nil, err
		}
	}

	builder.AttachMidpoints(topo.midpoints, topo.tl)

	topo.installQChannels(cfg)
	topo.installCChannels(cfg)
	topo.installCConnections(cfg)

	if err := builder.GenerateForwardingTable(cfg, topo); err != nil {
		return nil, err
	}
	builder.AddProtocols(topo)

	return topo, nil
}

// derivedClassicalDelay computes the per-direction classical delay for the
// channels a quantum connection expands into: half the mean of the classical
// delays declared between the connection's endpoints.  A quantum connection
// with no classical link between its endpoints is a configuration error.
func derivedClassicalDelay(cfg *TopoCfg, qc QConnectDesc) (float64, error) {
	var sum float64
	var count int

	for _, cc := range cfg.CChannels {
		if !samePair(cc.Source, cc.Destination, qc.Node1, qc.Node2) {
			continue
		}
		sum += classicalDelayOf(cc.Distance, cc.Delay)
		count++
	}
	for _, cc := range cfg.CConnections {
		if !samePair(cc.Node1, cc.Node2, qc.Node1, qc.Node2) {
			continue
		}
		sum += classicalDelayOf(cc.Distance, cc.Delay)
		count++
	}

	if count == 0 {
		return 0, fmt.Errorf("quantum connection between %s and %s has no classical "+
			"link between its endpoints", qc.Node1, qc.Node2)
	}
	return math.Floor(sum / float64(count) / 2), nil
}

// classicalDelayOf resolves one classical declaration's delay: the declared
// delay when present, otherwise propagation time over the declared (or
// default) distance.
func classicalDelayOf(distance, delay *float64) float64 {
	if delay != nil {
		return *delay
	}
	return floatOr(distance, defaultCCDistance) / SpeedOfLight
}

// installQChannels instantiates the quantum channel declarations.  A channel
// whose source node was never instantiated is skipped without error, so a
// configuration can be built against a subset of its node registry.
func (topo *Topology) installQChannels(cfg *TopoCfg) {
	for _, qcd := range cfg.QChannels {
		src, ok := topo.tl.GetEntityByName(qcd.Source).(Node)
		if !ok {
			logger.Debug("skipping quantum channel with uninstantiated source",
				zap.String("source", qcd.Source), zap.String("destination", qcd.Destination))
			continue
		}
		name := qcd.Name
		if len(name) == 0 {
			name = defaultQCName(qcd.Source, qcd.Destination)
		}
		qc := NewQuantumChannel(name, topo.tl, qcd.Attenuation, qcd.Distance)
		qc.SetEnds(src, qcd.Destination)
		topo.QChannels = append(topo.QChannels, qc)
	}
}

// installCChannels instantiates the directed classical channel declarations,
// with the same silent skip as installQChannels.
func (topo *Topology) installCChannels(cfg *TopoCfg) {
	for _, ccd := range cfg.CChannels {
		src, ok := topo.tl.GetEntityByName(ccd.Source).(Node)
		if !ok {
			logger.Debug("skipping classical channel with uninstantiated source",
				zap.String("source", ccd.Source), zap.String("destination", ccd.Destination))
			continue
		}
		name := ccd.Name
		if len(name) == 0 {
			name = defaultCCName(ccd.Source, ccd.Destination)
		}
		dist := floatOr(ccd.Distance, defaultCCDistance)
		cc := NewClassicalChannel(name, topo.tl, dist, classicalDelayOf(ccd.Distance, ccd.Delay))
		cc.SetEnds(src, ccd.Destination)
		topo.CChannels = append(topo.CChannels, cc)
	}
}

// installCConnections instantiates each bidirectional classical connection as
// a pair of directed channels, one per direction.
func (topo *Topology) installCConnections(cfg *TopoCfg) {
	for _, ccd := range cfg.CConnections {
		dist := floatOr(ccd.Distance, defaultCCDistance)
		delay := classicalDelayOf(ccd.Distance, ccd.Delay)

		for _, dir := range [][2]string{{ccd.Node1, ccd.Node2}, {ccd.Node2, ccd.Node1}} {
			src, ok := topo.tl.GetEntityByName(dir[0]).(Node)
			if !ok {
				logger.Debug("skipping classical connection direction with uninstantiated source",
					zap.String("source", dir[0]), zap.String("destination", dir[1]))
				continue
			}
			cc := NewClassicalChannel(defaultCCName(dir[0], dir[1]), topo.tl, dist, delay)
			cc.SetEnds(src, dir[1])
			topo.CChannels = append(topo.CChannels, cc)
		}
	}
}

// GetNodesByType returns the instantiated nodes declared with the given type
// string, in construction order.
func (topo *Topology) GetNodesByType(nodeType string) []Node {
	return topo.Nodes[nodeType]
}

// GetQChannels returns the installed quantum channels.
func (topo *Topology) GetQChannels() []*QuantumChannel {
	return topo.QChannels
}

// GetCChannels returns the installed classical channels.
func (topo *Topology) GetCChannels() []*ClassicalChannel {
	return topo.CChannels
}

// GetTimeline returns the timeline the topology was built against.
func (topo *Topology) GetTimeline() *Timeline {
	return topo.tl
}

// Config returns the configuration as it stands after expansion, including
// the appended midpoint node and derived channel declarations.
func (topo *Topology) Config() *TopoCfg {
	return topo.cfg
}

// RouterNetTopo is a quantum router network built from a configuration file.
// Routers use the centralized static routing discipline.
type RouterNetTopo struct {
	*Topology
}

// NewRouterNetTopo reads the named .json or .yaml/.yml configuration and
// builds the router network it describes.
func NewRouterNetTopo(cfgFile string) (*RouterNetTopo, error) {
	cfg, err := readCfgFile(cfgFile)
	if err != nil {
		return nil, err
	}
	return NewRouterNetTopoFromConfig(cfg)
}

// NewRouterNetTopoFromConfig builds a router network from an in-memory
// configuration.
func NewRouterNetTopoFromConfig(cfg *TopoCfg) (*RouterNetTopo, error) {
	builder := NewBsmBuilder(map[NodeType]NodeConstructor{
		QuantumRouterType: NewRouterNode,
	})
	topo, err := BuildTopology(cfg, builder)
	if err != nil {
		return nil, err
	}
	return &RouterNetTopo{Topology: topo}, nil
}

// DQCNetTopo is a distributed-quantum-computing network built from a
// configuration file.  Compute endpoints carry separate data and
// communication memory arrays.
type DQCNetTopo struct {
	*Topology
}

// NewDQCNetTopo reads the named configuration and builds the DQC network it
// describes.
func NewDQCNetTopo(cfgFile string) (*DQCNetTopo, error) {
	cfg, err := readCfgFile(cfgFile)
	if err != nil {
		return nil, err
	}
	return NewDQCNetTopoFromConfig(cfg)
}

// NewDQCNetTopoFromConfig builds a DQC network from an in-memory
// configuration.
func NewDQCNetTopoFromConfig(cfg *TopoCfg) (*DQCNetTopo, error) {
	builder := NewBsmBuilder(map[NodeType]NodeConstructor{
		DQCNodeType: NewDQCNode,
	})
	topo, err := BuildTopology(cfg, builder)
	if err != nil {
		return nil, err
	}
	return &DQCNetTopo{Topology: topo}, nil
}

// InferQubitToNode assigns circuit wires to compute nodes in declaration
// order, each node claiming its declared n_data wires (default 1).  The wire
// count must match the network's total data capacity exactly.
func (dt *DQCNetTopo) InferQubitToNode(totalWires int) (map[int]string, error) {
	mapping := make(map[int]string)
	nextWire := 0
	for _, nd := range dt.cfg.Nodes {
		if NodeType(nd.Type) != DQCNodeType {
			continue
		}
		nData := nd.NData
		if nData == 0 {
			nData = 1
		}
		for k := 0; k < nData; k++ {
			if nextWire >= totalWires {
				return nil, fmt.Errorf("qubit mapping overflow: network holds more "+
					"data qubits than the circuit's %d wires", totalWires)
			}
			mapping[nextWire] = nd.Name
			nextWire++
		}
	}
	if nextWire != totalWires {
		return nil, fmt.Errorf("network configured for %d data qubits but circuit "+
			"has %d wires", nextWire, totalWires)
	}
	return mapping, nil
}

// InferMemoryOwners maps each compute node to its wires and the memory slot
// each wire occupies, slots assigned in wire order.  Ancilla indices are
// accepted but not yet consulted.
func (dt *DQCNetTopo) InferMemoryOwners(totalWires int, ancillaInds []int) (map[string]map[int]int, error) {
	qubitToNode, err := dt.InferQubitToNode(totalWires)
	if err != nil {
		return nil, err
	}
	owners := make(map[string]map[int]int)
	for wire := 0; wire < totalWires; wire++ {
		owner := qubitToNode[wire]
		if owners[owner] == nil {
			owners[owner] = make(map[int]int)
		}
		owners[owner][wire] = len(owners[owner])
	}
	return owners, nil
}

// QlanStarTopo is a star network of one (or more) orchestrators and their
// clients, built from a configuration file.
type QlanStarTopo struct {
	*Topology

	Orchestrators []*QlanOrchestratorNode
	Clients       []*QlanClientNode
}

// NewQlanStarTopo reads the named configuration and builds the star network
// it describes.
func NewQlanStarTopo(cfgFile string) (*QlanStarTopo, error) {
	cfg, err := readCfgFile(cfgFile)
	if err != nil {
		return nil, err
	}
	return NewQlanStarTopoFromConfig(cfg)
}

// NewQlanStarTopoFromConfig builds a star network from an in-memory
// configuration.
func NewQlanStarTopoFromConfig(cfg *TopoCfg) (*QlanStarTopo, error) {
	builder := NewQlanBuilder()
	topo, err := BuildTopology(cfg, builder)
	if err != nil {
		return nil, err
	}
	return &QlanStarTopo{
		Topology:      topo,
		Orchestrators: builder.Orchestrators,
		Clients:       builder.Clients,
	}, nil
}

// RemoteMemories returns the client memory references injected into the
// orchestrator's graph state, in client construction order.
func (qt *QlanStarTopo) RemoteMemories() []*Memory {
	if len(qt.Orchestrators) == 0 {
		return nil
	}
	return qt.Orchestrators[0].RemoteMemories
}
