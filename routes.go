package qnet

// routes.go computes the routing state installed on endpoint nodes once all
// nodes and channels exist.  Midpoints are invisible to routing: each
// two-endpoint midpoint collapses into one logical link whose cost is the sum
// of the quantum channel distances meeting there.

import (
	"math"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// midpointCost accumulates, per midpoint, the endpoint names of the quantum
// channels terminating there and the summed channel distance.
type midpointCost struct {
	endpoints []string
	cost      int
}

// generateForwardingState seeds the routing protocol of every routing-capable
// node.  The concrete protocol type of the first routing node selects the
// discipline: static protocols receive complete next-hop tables computed
// centrally, distributed protocols receive only their direct link costs and
// an initialization trigger.
func generateForwardingState(cfg *TopoCfg, topo *Topology) error {
	costs := make(map[string]*midpointCost)
	for _, qc := range topo.QChannels {
		mid := qc.ReceiverName()
		mc, present := costs[mid]
		if !present {
			mc = new(midpointCost)
			costs[mid] = mc
		}
		mc.endpoints = append(mc.endpoints, qc.Sender().Name())
		mc.cost += qc.Distance
	}

	// collect the routing-capable nodes in declaration order
	var routers []Node
	for _, nd := range cfg.Nodes {
		if IsMidpoint(NodeType(nd.Type)) {
			continue
		}
		ent := topo.tl.GetEntityByName(nd.Name)
		node, ok := ent.(Node)
		if !ok || node.NetworkManager() == nil {
			continue
		}
		routers = append(routers, node)
	}
	if len(routers) == 0 {
		return nil
	}

	switch routers[0].NetworkManager().RoutingProtocol().(type) {
	case *StaticRoutingProtocol:
		installStaticForwarding(routers, costs)
	case *DistributedRoutingProtocol:
		seedDistributedRouting(routers, costs)
	}
	return nil
}

// installStaticForwarding runs shortest path over the endpoint graph and
// installs, on every router, the next hop toward every other router.  Both
// directions of each unordered router pair come from one shortest-path
// computation, so tie-breaking between equal-cost paths is symmetric.
func installStaticForwarding(routers []Node, costs map[string]*midpointCost) {
	names := make([]string, 0, len(routers))
	byName := make(map[string]Node, len(routers))
	for _, r := range routers {
		names = append(names, r.Name())
		byName[r.Name()] = r
	}
	slices.Sort(names)

	ids := make(map[string]int64, len(names))
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for idx, name := range names {
		ids[name] = int64(idx)
		g.AddNode(simple.Node(int64(idx)))
	}

	for mid, mc := range costs {
		if len(mc.endpoints) != 2 {
			logger.Debug("midpoint omitted from routing graph",
				zap.String("midpoint", mid), zap.Int("endpoints", len(mc.endpoints)))
			continue
		}
		f, fOK := ids[mc.endpoints[0]]
		t, tOK := ids[mc.endpoints[1]]
		if !fOK || !tOK {
			continue
		}
		g.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(f),
			T: simple.Node(t),
			W: float64(mc.cost),
		})
	}

	trees := make(map[int64]path.Shortest, len(names))
	shortestFrom := func(id int64) path.Shortest {
		tree, present := trees[id]
		if !present {
			tree = path.DijkstraFrom(simple.Node(id), g)
			trees[id] = tree
		}
		return tree
	}

	for i, src := range names {
		for _, dst := range names[i+1:] {
			// src < dst by construction, so the pair's single Dijkstra run
			// always starts from the lexicographically smaller endpoint
			nodePath, _ := shortestFrom(ids[src]).To(ids[dst])
			if len(nodePath) < 2 {
				logger.Debug("no route between routers",
					zap.String("src", src), zap.String("dst", dst))
				continue
			}
			forward := names[nodePath[1].ID()]
			reverse := names[nodePath[len(nodePath)-2].ID()]

			srp := byName[src].NetworkManager().RoutingProtocol().(*StaticRoutingProtocol)
			srp.AddForwardingRule(dst, forward)
			srp = byName[dst].NetworkManager().RoutingProtocol().(*StaticRoutingProtocol)
			srp.AddForwardingRule(src, reverse)
		}
	}
}

// seedDistributedRouting gives every router the cost of each of its direct
// logical links, then triggers protocol initialization.  Path computation is
// the protocol's own job during simulation.
func seedDistributedRouting(routers []Node, costs map[string]*midpointCost) {
	for _, r := range routers {
		drp, ok := r.NetworkManager().RoutingProtocol().(*DistributedRoutingProtocol)
		if !ok {
			continue
		}
		for _, mid := range sortedKeys(costs) {
			mc := costs[mid]
			if len(mc.endpoints) != 2 {
				continue
			}
			var neighbor string
			switch r.Name() {
			case mc.endpoints[0]:
				neighbor = mc.endpoints[1]
			case mc.endpoints[1]:
				neighbor = mc.endpoints[0]
			default:
				continue
			}
			drp.SetLinkCost(neighbor, mc.cost)
		}
		drp.Init()
	}
}
