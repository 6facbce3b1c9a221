package qnet

// builder.go holds the per-family construction strategies.  Each topology
// family (point-to-point BSM networks, star networks) supplies one
// NetworkBuilder; the pipeline orchestrator in topo.go sequences its stages
// against one configuration.

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// NetworkBuilder is the family construction strategy.  Every stage is a no-op
// by default except CreateNode, which each family must implement; embed
// BaseBuilder to pick up the defaults.
type NetworkBuilder interface {
	// AddParameters harvests family state from the config ahead of
	// construction (per-node constructor scalars, canonical parameters)
	AddParameters(cfg *TopoCfg, topo *Topology)

	// MapMidpoints fills the midpoint-to-endpoint map from the channel
	// declarations present after expansion
	MapMidpoints(cfg *TopoCfg, midpoints map[string][]string)

	// HandleQConnection expands one quantum connection declaration into the
	// concrete node and channel declarations it implies, appending to cfg
	HandleQConnection(qc QConnectDesc, ccDelay float64, cfg *TopoCfg) error

	// OrderedNodeDescs reorders the node declarations to satisfy the
	// family's construction-order dependencies
	OrderedNodeDescs(nodes []NodeDesc) []NodeDesc

	// CreateNode constructs exactly one node object, seeds it, and appends
	// it to the topology's registry under its type
	CreateNode(nd NodeDesc, tmpl Template, topo *Topology) error

	// AttachMidpoints cross-registers each midpoint's endpoints with one
	// another once all nodes exist
	AttachMidpoints(midpoints map[string][]string, tl *Timeline)

	// GenerateForwardingTable computes routing state once all nodes and
	// channels exist
	GenerateForwardingTable(cfg *TopoCfg, topo *Topology) error

	// AddProtocols wires family-specific protocols after forwarding state
	// is in place
	AddProtocols(topo *Topology)
}

// BaseBuilder provides no-op defaults for every NetworkBuilder stage except
// CreateNode.
type BaseBuilder struct{}

func (BaseBuilder) AddParameters(cfg *TopoCfg, topo *Topology) {}

func (BaseBuilder) MapMidpoints(cfg *TopoCfg, midpoints map[string][]string) {}

func (BaseBuilder) HandleQConnection(qc QConnectDesc, ccDelay float64, cfg *TopoCfg) error {
	return nil
}

func (BaseBuilder) OrderedNodeDescs(nodes []NodeDesc) []NodeDesc {
	return nodes
}

func (BaseBuilder) AttachMidpoints(midpoints map[string][]string, tl *Timeline) {}

func (BaseBuilder) GenerateForwardingTable(cfg *TopoCfg, topo *Topology) error {
	return nil
}

func (BaseBuilder) AddProtocols(topo *Topology) {}

// BsmBuilder is the construction strategy for point-to-point families whose
// quantum links meet at auto-inserted BSM midpoint nodes (router networks,
// DQC networks).
type BsmBuilder struct {
	BaseBuilder

	// registered endpoint node constructors, by declared type
	nodeTypes map[NodeType]NodeConstructor

	// per-node scalar constructor parameters, harvested by AddParameters
	sizes map[string]NodeSizes
}

// NewBsmBuilder is a constructor.  nodeTypes registers the family's endpoint
// classes; the midpoint class is built in.
func NewBsmBuilder(nodeTypes map[NodeType]NodeConstructor) *BsmBuilder {
	bb := new(BsmBuilder)
	bb.nodeTypes = nodeTypes
	bb.sizes = make(map[string]NodeSizes)
	return bb
}

// AddParameters harvests the memory sizing scalars from every node
// declaration, keyed by node name, so CreateNode needs no second pass over
// the declaration list.
func (bb *BsmBuilder) AddParameters(cfg *TopoCfg, topo *Topology) {
	for _, nd := range cfg.Nodes {
		bb.sizes[nd.Name] = NodeSizes{MemoSize: nd.MemoSize, DataMemoSize: nd.DataMemoSize}
	}
}

// MapMidpoints records, for each quantum channel destination, the sources
// that reach it.  After expansion every quantum channel terminates at a
// midpoint, so the map keys are midpoint names and the values their (at most
// two) endpoints.
func (bb *BsmBuilder) MapMidpoints(cfg *TopoCfg, midpoints map[string][]string) {
	for _, qc := range cfg.QChannels {
		midpoints[qc.Destination] = append(midpoints[qc.Destination], qc.Source)
	}
}

// HandleQConnection expands a meet-in-the-middle connection into one midpoint
// node declaration, one quantum channel from each endpoint to the midpoint at
// half the total distance, and classical channels in both directions between
// each endpoint and the midpoint.  Unknown connection kinds are fatal.
func (bb *BsmBuilder) HandleQConnection(qc QConnectDesc, ccDelay float64, cfg *TopoCfg) error {
	if qc.Type != MeetInTheMiddle {
		return fmt.Errorf("unsupported quantum connection kind %q between %s and %s",
			qc.Type, qc.Node1, qc.Node2)
	}

	// the .auto suffix keeps auto-generated midpoints from colliding with a
	// user-declared node on the same logical link
	midName := fmt.Sprintf("BSM.%s.%s.auto", qc.Node1, qc.Node2)
	half := qc.Distance / 2

	cfg.Nodes = append(cfg.Nodes, NodeDesc{
		Name:     midName,
		Type:     string(BSMNodeType),
		Seed:     qc.Seed,
		Template: qc.Template,
	})

	halfDist := float64(half)
	for _, src := range []string{qc.Node1, qc.Node2} {
		cfg.QChannels = append(cfg.QChannels, QChannelDesc{
			Name:        fmt.Sprintf("QC.%s.%s", src, midName),
			Source:      src,
			Destination: midName,
			Distance:    half,
			Attenuation: qc.Attenuation,
		})
		cfg.CChannels = append(cfg.CChannels, CChannelDesc{
			Name:        fmt.Sprintf("CC.%s.%s", src, midName),
			Source:      src,
			Destination: midName,
			Distance:    &halfDist,
			Delay:       &ccDelay,
		})
		cfg.CChannels = append(cfg.CChannels, CChannelDesc{
			Name:        fmt.Sprintf("CC.%s.%s", midName, src),
			Source:      midName,
			Destination: src,
			Distance:    &halfDist,
			Delay:       &ccDelay,
		})
	}

	logger.Debug("expanded quantum connection",
		zap.String("node1", qc.Node1), zap.String("node2", qc.Node2),
		zap.String("midpoint", midName))
	return nil
}

// CreateNode constructs one node.  Midpoints additionally require their entry
// in the midpoint-to-endpoint map; a missing entry indicates a
// connection-expansion bug or a malformed configuration.
func (bb *BsmBuilder) CreateNode(nd NodeDesc, tmpl Template, topo *Topology) error {
	nt := NodeType(nd.Type)

	var node Node
	var err error
	if nt == BSMNodeType {
		endpoints, present := topo.midpoints[nd.Name]
		if !present {
			return fmt.Errorf("midpoint node %s has no quantum channels recorded; "+
				"expansion never produced its endpoint map entry", nd.Name)
		}
		node, err = NewBSMNode(nd.Name, topo.tl, endpoints, tmpl)
	} else {
		ctor, present := bb.nodeTypes[nt]
		if !present {
			return fmt.Errorf("node type %q has no registered constructor; "+
				"register it in the family's node type registry", nd.Type)
		}
		node, err = ctor(nd.Name, topo.tl, bb.sizes[nd.Name], tmpl)
	}
	if err != nil {
		return err
	}

	node.SetSeed(nd.Seed)
	topo.Nodes[nd.Type] = append(topo.Nodes[nd.Type], node)
	return nil
}

// AttachMidpoints tells each endpoint which peer sits on the far side of each
// of its midpoints.  Endpoints absent from the timeline are skipped: partial
// construction is a supported use case.
func (bb *BsmBuilder) AttachMidpoints(midpoints map[string][]string, tl *Timeline) {
	for _, mid := range sortedKeys(midpoints) {
		endpoints := midpoints[mid]
		if len(endpoints) != 2 {
			continue
		}
		for idx, epName := range endpoints {
			peer := endpoints[1-idx]
			ent := tl.GetEntityByName(epName)
			if ent == nil {
				logger.Debug("skipping midpoint attachment for absent endpoint",
					zap.String("midpoint", mid), zap.String("endpoint", epName))
				continue
			}
			if ma, ok := ent.(midpointAware); ok {
				ma.AddMidpoint(mid, peer)
			}
		}
	}
}

// GenerateForwardingTable delegates to the forwarding generator in routes.go.
func (bb *BsmBuilder) GenerateForwardingTable(cfg *TopoCfg, topo *Topology) error {
	return generateForwardingState(cfg, topo)
}

// QlanBuilder is the construction strategy for the star family: one
// orchestrator whose entanglement graph state spans memories injected from
// every client.
type QlanBuilder struct {
	BaseBuilder

	params QlanParams

	// client memory references accumulated during client construction, in
	// construction order; the orchestrator constructor consumes them
	remoteMemories []*Memory

	Orchestrators []*QlanOrchestratorNode
	Clients       []*QlanClientNode
}

// NewQlanBuilder is a constructor.
func NewQlanBuilder() *QlanBuilder {
	return new(QlanBuilder)
}

// AddParameters pulls the canonical star-family parameters resolved during
// config ingestion.
func (qb *QlanBuilder) AddParameters(cfg *TopoCfg, topo *Topology) {
	qb.params = topo.Qlan
}

// OrderedNodeDescs sorts clients before orchestrators.  This is the family's
// ordering contract: by the time CreateNode reaches an orchestrator, every
// client memory reference it needs already exists.
func (qb *QlanBuilder) OrderedNodeDescs(nodes []NodeDesc) []NodeDesc {
	ordered := make([]NodeDesc, 0, len(nodes))
	for _, nd := range nodes {
		if NodeType(nd.Type) != ClientType && NodeType(nd.Type) != OrchestratorType {
			ordered = append(ordered, nd)
		}
	}
	for _, nd := range nodes {
		if NodeType(nd.Type) == ClientType {
			ordered = append(ordered, nd)
		}
	}
	for _, nd := range nodes {
		if NodeType(nd.Type) == OrchestratorType {
			ordered = append(ordered, nd)
		}
	}
	return ordered
}

// CreateNode constructs star-family nodes.  A per-node template's MemoryArray
// component takes precedence over the canonical role parameters.
func (qb *QlanBuilder) CreateNode(nd NodeDesc, tmpl Template, topo *Topology) error {
	switch NodeType(nd.Type) {
	case ClientType:
		mp := qb.params.Client
		if ct, present := tmpl[memoryArrayComponent]; present {
			mp = memoryParamsFrom(ct)
		}
		client, err := NewQlanClientNode(nd.Name, topo.tl, 1, mp)
		if err != nil {
			return err
		}
		client.SetSeed(nd.Seed)
		qb.remoteMemories = append(qb.remoteMemories, client.Memories[0])
		qb.Clients = append(qb.Clients, client)
		topo.Nodes[nd.Type] = append(topo.Nodes[nd.Type], client)

	case OrchestratorType:
		mp := qb.params.Orch
		if ct, present := tmpl[memoryArrayComponent]; present {
			mp = memoryParamsFrom(ct)
		}
		orch, err := NewQlanOrchestratorNode(nd.Name, topo.tl,
			qb.params.LocalMemories, qb.remoteMemories, mp)
		if err != nil {
			return err
		}
		orch.UpdateBases(qb.params.MeasurementBases)
		orch.SetSeed(nd.Seed)
		qb.Orchestrators = append(qb.Orchestrators, orch)
		topo.Nodes[nd.Type] = append(topo.Nodes[nd.Type], orch)

	default:
		return fmt.Errorf("node type %q has no registered constructor in the star family; "+
			"only %s and %s are known", nd.Type, ClientType, OrchestratorType)
	}
	return nil
}

// AddProtocols wires the measurement and correction protocols on every node.
func (qb *QlanBuilder) AddProtocols(topo *Topology) {
	for _, orch := range qb.Orchestrators {
		orch.ResourceManager().CreateProtocol()
	}
	for _, client := range qb.Clients {
		client.ResourceManager().CreateProtocol()
	}
}

// sortedKeys returns the map keys in sorted order, for deterministic
// iteration.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
