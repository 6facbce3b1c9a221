package qnet

// const.go holds the node type classification and the fixed constants used
// when expanding connection declarations into concrete topology entries.

import (
	"fmt"

	"go.uber.org/multierr"
	"golang.org/x/exp/slices"
)

// NodeType identifies the class of a node declaration.  The string values
// match the "type" field of node entries in topology configuration files.
type NodeType string

const (
	QuantumRouterType NodeType = "QuantumRouter"
	DQCNodeType       NodeType = "DQCNode"
	QKDNodeType       NodeType = "QKDNode"
	BSMNodeType       NodeType = "BSMNode"
	OrchestratorType  NodeType = "QlanOrchestratorNode"
	ClientType        NodeType = "QlanClientNode"
)

// allNodeTypes enumerates every NodeType known to the package.  A new type
// added here must also be classified below, or startup fails.
var allNodeTypes = []NodeType{
	QuantumRouterType,
	DQCNodeType,
	QKDNodeType,
	BSMNodeType,
	OrchestratorType,
	ClientType,
}

// MidpointTypes lists node types that sit between two endpoints on a link and
// never appear as a routing source or destination.
var MidpointTypes = []NodeType{BSMNodeType}

// EndpointTypes lists node types that participate in routing or computation.
var EndpointTypes = []NodeType{
	QuantumRouterType,
	DQCNodeType,
	QKDNodeType,
	OrchestratorType,
	ClientType,
}

// IsMidpoint reports whether the node type is classified as a relay midpoint.
func IsMidpoint(nt NodeType) bool {
	return slices.Contains(MidpointTypes, nt)
}

// checkNodeTypePartition verifies that every known node type is classified as
// exactly one of midpoint or endpoint.  Errors for all violations are
// aggregated so a report names every offender at once.
func checkNodeTypePartition() error {
	var err error
	for _, nt := range allNodeTypes {
		mid := slices.Contains(MidpointTypes, nt)
		end := slices.Contains(EndpointTypes, nt)
		switch {
		case mid && end:
			err = multierr.Append(err,
				fmt.Errorf("node type %s is classified as both midpoint and endpoint", nt))
		case !mid && !end:
			err = multierr.Append(err,
				fmt.Errorf("node type %s is not classified as midpoint or endpoint", nt))
		}
	}
	return err
}

func init() {
	if err := checkNodeTypePartition(); err != nil {
		panic(err)
	}
}

// MeetInTheMiddle is the only quantum connection kind currently supported.
// A connection of this kind meets at an auto-inserted BSM midpoint node.
const MeetInTheMiddle = "meet_in_the_middle"

// SpeedOfLight is the classical propagation speed used to derive a delay from
// a distance when a classical link declares no explicit delay, expressed in
// distance units per simulation time unit (meters per picosecond).
const SpeedOfLight = 2e-4

// defaultCCDistance is assumed for a classical link that declares neither a
// delay nor a distance when a derived delay is needed.
const defaultCCDistance = 1000.0

// KetStateFormalism is the default quantum state formalism recorded on the
// timeline when the configuration names none.
const KetStateFormalism = "ket_vector"
