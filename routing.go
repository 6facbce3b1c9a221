package qnet

// routing.go holds the routing-management state installed on endpoint nodes
// by the forwarding generator.  The generator seeds this state; consuming it
// (packet forwarding, convergence of the distributed protocol) happens
// outside topology construction.

// RoutingProtocol is the narrow surface the forwarding generator needs from a
// node's routing-management component.  The concrete type selects the
// routing discipline.
type RoutingProtocol interface {
	RoutingOwner() string
}

// StaticRoutingProtocol stores next-hop forwarding rules installed by the
// centralized forwarding generator.
type StaticRoutingProtocol struct {
	owner        string
	forwardTable map[string]string
}

// NewStaticRoutingProtocol is a constructor.
func NewStaticRoutingProtocol(owner string) *StaticRoutingProtocol {
	srp := new(StaticRoutingProtocol)
	srp.owner = owner
	srp.forwardTable = make(map[string]string)
	return srp
}

// RoutingOwner returns the name of the node this protocol state belongs to.
func (srp *StaticRoutingProtocol) RoutingOwner() string {
	return srp.owner
}

// AddForwardingRule installs (or replaces) the next hop toward dst.
func (srp *StaticRoutingProtocol) AddForwardingRule(dst, nextHop string) {
	srp.forwardTable[dst] = nextHop
}

// NextHop returns the installed next hop toward dst, and whether a rule
// exists.
func (srp *StaticRoutingProtocol) NextHop(dst string) (string, bool) {
	hop, present := srp.forwardTable[dst]
	return hop, present
}

// ForwardingTable exposes the full destination to next-hop mapping.
func (srp *StaticRoutingProtocol) ForwardingTable() map[string]string {
	return srp.forwardTable
}

// DistributedRoutingProtocol stores per-neighbor link costs seeded by the
// forwarding generator and consumed by an iterative convergence protocol.
// Only the seeding and the initialization trigger are modeled here.
type DistributedRoutingProtocol struct {
	owner       string
	linkCost    map[string]int
	initialized bool
}

// NewDistributedRoutingProtocol is a constructor.
func NewDistributedRoutingProtocol(owner string) *DistributedRoutingProtocol {
	drp := new(DistributedRoutingProtocol)
	drp.owner = owner
	drp.linkCost = make(map[string]int)
	return drp
}

// RoutingOwner returns the name of the node this protocol state belongs to.
func (drp *DistributedRoutingProtocol) RoutingOwner() string {
	return drp.owner
}

// SetLinkCost records the direct link cost to a neighbor.
func (drp *DistributedRoutingProtocol) SetLinkCost(neighbor string, cost int) {
	drp.linkCost[neighbor] = cost
}

// LinkCost exposes the per-neighbor cost mapping.
func (drp *DistributedRoutingProtocol) LinkCost() map[string]int {
	return drp.linkCost
}

// Init triggers the protocol's own initialization step once link costs are
// seeded.  The convergence algorithm itself runs during simulation, not
// during construction.
func (drp *DistributedRoutingProtocol) Init() {
	drp.initialized = true
}

// Initialized reports whether Init has been triggered.
func (drp *DistributedRoutingProtocol) Initialized() bool {
	return drp.initialized
}

// NetworkManager holds a node's routing-management component.
type NetworkManager struct {
	routing RoutingProtocol
}

// NewNetworkManager is a constructor.
func NewNetworkManager(routing RoutingProtocol) *NetworkManager {
	return &NetworkManager{routing: routing}
}

// RoutingProtocol returns the node's routing protocol state.
func (nm *NetworkManager) RoutingProtocol() RoutingProtocol {
	return nm.routing
}
