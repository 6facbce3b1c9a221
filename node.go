package qnet

// node.go defines the node objects a topology instantiates and the hardware
// components they own.  The physical behavior of the hardware is outside
// this package; only the construction surface (parameterization from
// templates, deterministic seeding, timeline registration) is modeled.

import (
	"fmt"

	"github.com/iti/rngstream"
	"golang.org/x/exp/slices"
)

// Node is the construction-time surface shared by every node object.
type Node interface {
	Entity

	// NodeType returns the classification string the node was declared with
	NodeType() NodeType

	// SetSeed binds the node's RNG stream to its declared seed
	SetSeed(seed int)

	// NetworkManager returns the routing-management component, or nil for
	// nodes that do not participate in routing
	NetworkManager() *NetworkManager
}

// midpointAware is implemented by endpoint nodes that track the relay
// midpoints adjacent to them.
type midpointAware interface {
	AddMidpoint(midpoint, peer string)
}

// NodeSizes carries the per-node scalar constructor parameters harvested from
// the node declaration list.
type NodeSizes struct {
	MemoSize     int
	DataMemoSize int
}

// NodeConstructor builds one endpoint node of a registered type and registers
// it with the timeline.
type NodeConstructor func(name string, tl *Timeline, sizes NodeSizes, tmpl Template) (Node, error)

// baseNode holds the state common to all node objects.
type baseNode struct {
	name     string
	nodeType NodeType
	tl       *Timeline
	seed     int
	rng      *rngstream.RngStream
}

func newBaseNode(name string, nt NodeType, tl *Timeline) baseNode {
	return baseNode{name: name, nodeType: nt, tl: tl}
}

// Name returns the node's unique name.
func (bn *baseNode) Name() string {
	return bn.name
}

// NodeType returns the node's declared type.
func (bn *baseNode) NodeType() NodeType {
	return bn.nodeType
}

// SetSeed binds the node's RNG stream to the declared seed.  Identical
// name and seed always yield an identical stream.
func (bn *baseNode) SetSeed(seed int) {
	bn.seed = seed
	bn.rng = rngstream.New(fmt.Sprintf("%s.%d", bn.name, seed))
}

// Seed returns the seed the node was configured with.
func (bn *baseNode) Seed() int {
	return bn.seed
}

// Rng returns the node's RNG stream, nil until SetSeed is called.
func (bn *baseNode) Rng() *rngstream.RngStream {
	return bn.rng
}

// NetworkManager defaults to nil; node types that route override this.
func (bn *baseNode) NetworkManager() *NetworkManager {
	return nil
}

// Memory is a single quantum memory cell.
type Memory struct {
	Name   string
	Params MemoryParams
}

// MemoryArray is the bank of quantum memories owned by an endpoint node.
type MemoryArray struct {
	Name   string
	Size   int
	Params MemoryParams
}

func newMemoryArray(owner string, size int, ct ComponentTemplate) *MemoryArray {
	return &MemoryArray{
		Name:   owner + ".MemoryArray",
		Size:   size,
		Params: memoryParamsFrom(ct),
	}
}

// DetectorParams parameterizes the single-photon detectors inside a BSM
// midpoint node.
type DetectorParams struct {
	Efficiency     float64
	CountRate      float64
	TimeResolution float64
}

func detectorParamsFrom(ct ComponentTemplate) DetectorParams {
	return DetectorParams{
		Efficiency:     ct.Param("efficiency", 0.9),
		CountRate:      ct.Param("count_rate", 25e6),
		TimeResolution: ct.Param("time_resolution", 150),
	}
}

// defaultMemoSize is the memory array size used when a router declaration
// names none.
const defaultMemoSize = 50

// RouterNode is a quantum router endpoint.  It owns a communication memory
// array and the routing-management component the forwarding generator seeds.
type RouterNode struct {
	baseNode
	MemoArray *MemoryArray
	netMgr    *NetworkManager

	// midpoint name to the endpoint on the far side of that midpoint
	midpoints map[string]string
}

// NewRouterNode constructs a router whose routing discipline is centralized
// (static forwarding rules).
func NewRouterNode(name string, tl *Timeline, sizes NodeSizes, tmpl Template) (Node, error) {
	return newRouterNode(name, tl, sizes, tmpl, NewStaticRoutingProtocol(name))
}

// NewDistributedRouterNode constructs a router whose routing discipline is
// distributed (per-neighbor link costs feeding a convergence protocol).
func NewDistributedRouterNode(name string, tl *Timeline, sizes NodeSizes, tmpl Template) (Node, error) {
	return newRouterNode(name, tl, sizes, tmpl, NewDistributedRoutingProtocol(name))
}

func newRouterNode(name string, tl *Timeline, sizes NodeSizes, tmpl Template,
	routing RoutingProtocol) (Node, error) {

	size := sizes.MemoSize
	if size == 0 {
		size = defaultMemoSize
	}

	rn := new(RouterNode)
	rn.baseNode = newBaseNode(name, QuantumRouterType, tl)
	rn.MemoArray = newMemoryArray(name, size, tmpl.Component(memoryArrayComponent))
	rn.netMgr = NewNetworkManager(routing)
	rn.midpoints = make(map[string]string)

	if err := tl.Register(rn); err != nil {
		return nil, err
	}
	return rn, nil
}

// NetworkManager returns the router's routing-management component.
func (rn *RouterNode) NetworkManager() *NetworkManager {
	return rn.netMgr
}

// AddMidpoint records that the named midpoint connects this router to peer.
func (rn *RouterNode) AddMidpoint(midpoint, peer string) {
	rn.midpoints[midpoint] = peer
}

// Midpoints exposes the router's midpoint adjacency bookkeeping.
func (rn *RouterNode) Midpoints() map[string]string {
	return rn.midpoints
}

// DQCNode is a distributed-quantum-computing endpoint.  It owns separate
// communication and data memory arrays.
type DQCNode struct {
	baseNode
	MemoArray     *MemoryArray
	DataMemoArray *MemoryArray
	netMgr        *NetworkManager
	midpoints     map[string]string
}

// NewDQCNode is the registered constructor for DQC compute endpoints.
func NewDQCNode(name string, tl *Timeline, sizes NodeSizes, tmpl Template) (Node, error) {
	memoSize := sizes.MemoSize
	if memoSize == 0 {
		memoSize = defaultMemoSize
	}
	dataSize := sizes.DataMemoSize
	if dataSize == 0 {
		dataSize = 1
	}

	dn := new(DQCNode)
	dn.baseNode = newBaseNode(name, DQCNodeType, tl)
	memoCT := tmpl.Component(memoryArrayComponent)
	dn.MemoArray = newMemoryArray(name, memoSize, memoCT)
	dn.DataMemoArray = &MemoryArray{
		Name:   name + ".DataMemoryArray",
		Size:   dataSize,
		Params: memoryParamsFrom(memoCT),
	}
	dn.netMgr = NewNetworkManager(NewStaticRoutingProtocol(name))
	dn.midpoints = make(map[string]string)

	if err := tl.Register(dn); err != nil {
		return nil, err
	}
	return dn, nil
}

// NetworkManager returns the node's routing-management component.
func (dn *DQCNode) NetworkManager() *NetworkManager {
	return dn.netMgr
}

// AddMidpoint records that the named midpoint connects this node to peer.
func (dn *DQCNode) AddMidpoint(midpoint, peer string) {
	dn.midpoints[midpoint] = peer
}

// Midpoints exposes the node's midpoint adjacency bookkeeping.
func (dn *DQCNode) Midpoints() map[string]string {
	return dn.midpoints
}

// BSMNode is the relay midpoint inserted between the two endpoints of a
// meet-in-the-middle quantum connection.  It never routes.
type BSMNode struct {
	baseNode

	// the (at most two) endpoint names reachable through this midpoint
	Endpoints []string

	Detector DetectorParams
}

// NewBSMNode is a constructor.  The endpoint list comes from the
// midpoint-to-endpoint map computed before node instantiation.
func NewBSMNode(name string, tl *Timeline, endpoints []string, tmpl Template) (Node, error) {
	bn := new(BSMNode)
	bn.baseNode = newBaseNode(name, BSMNodeType, tl)
	bn.Endpoints = slices.Clone(endpoints)
	bn.Detector = detectorParamsFrom(tmpl.Component(detectorComponent))

	if err := tl.Register(bn); err != nil {
		return nil, err
	}
	return bn, nil
}

// ResourceManager is the node-local collaborator that owns protocol creation
// for the star family.  Only the creation trigger is modeled; protocol
// behavior runs during simulation, outside construction.
type ResourceManager struct {
	owner     string
	protocols []string
}

func newResourceManager(owner string) *ResourceManager {
	return &ResourceManager{owner: owner}
}

// CreateProtocol records that the owner's measurement/correction protocol has
// been instantiated.
func (rm *ResourceManager) CreateProtocol() {
	rm.protocols = append(rm.protocols, rm.owner+".protocol")
}

// Protocols lists the protocols created on this node.
func (rm *ResourceManager) Protocols() []string {
	return rm.protocols
}

// QlanClientNode is a star-family client endpoint holding memories that are
// injected into the orchestrator's entanglement graph state.
type QlanClientNode struct {
	baseNode
	Memories    []*Memory
	resourceMgr *ResourceManager
}

// NewQlanClientNode is a constructor.
func NewQlanClientNode(name string, tl *Timeline, numMemories int, mp MemoryParams) (*QlanClientNode, error) {
	cn := new(QlanClientNode)
	cn.baseNode = newBaseNode(name, ClientType, tl)
	cn.resourceMgr = newResourceManager(name)
	cn.Memories = make([]*Memory, numMemories)
	for idx := range cn.Memories {
		cn.Memories[idx] = &Memory{
			Name:   fmt.Sprintf("%s.mem[%d]", name, idx),
			Params: mp,
		}
	}

	if err := tl.Register(cn); err != nil {
		return nil, err
	}
	return cn, nil
}

// ResourceManager returns the client's resource manager.
func (cn *QlanClientNode) ResourceManager() *ResourceManager {
	return cn.resourceMgr
}

// QlanOrchestratorNode is the star-family center.  Its constructor takes the
// already-built client memory references directly: entanglement graph state
// is injected, not routed, which is why clients must be constructed first.
type QlanOrchestratorNode struct {
	baseNode
	LocalMemories  []*Memory
	RemoteMemories []*Memory
	Bases          string
	resourceMgr    *ResourceManager
}

// NewQlanOrchestratorNode is a constructor.
func NewQlanOrchestratorNode(name string, tl *Timeline, localMemories int,
	remote []*Memory, mp MemoryParams) (*QlanOrchestratorNode, error) {

	on := new(QlanOrchestratorNode)
	on.baseNode = newBaseNode(name, OrchestratorType, tl)
	on.resourceMgr = newResourceManager(name)
	on.Bases = "z"
	on.RemoteMemories = slices.Clone(remote)
	on.LocalMemories = make([]*Memory, localMemories)
	for idx := range on.LocalMemories {
		on.LocalMemories[idx] = &Memory{
			Name:   fmt.Sprintf("%s.mem[%d]", name, idx),
			Params: mp,
		}
	}

	if err := tl.Register(on); err != nil {
		return nil, err
	}
	return on, nil
}

// UpdateBases sets the measurement bases the orchestrator measures in.
func (on *QlanOrchestratorNode) UpdateBases(bases string) {
	on.Bases = bases
}

// ResourceManager returns the orchestrator's resource manager.
func (on *QlanOrchestratorNode) ResourceManager() *ResourceManager {
	return on.resourceMgr
}
