package qnet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNodeTypePartition(t *testing.T) {
	require.NoError(t, checkNodeTypePartition())
}

func TestIsMidpoint(t *testing.T) {
	require.True(t, IsMidpoint(BSMNodeType))
	require.False(t, IsMidpoint(QuantumRouterType))
	require.False(t, IsMidpoint(OrchestratorType))
	require.False(t, IsMidpoint(NodeType("NoSuchType")))
}
