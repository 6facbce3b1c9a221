package qnet

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTimelineDefaults(t *testing.T) {
	tl := NewTimeline(0, "", 0)
	require.True(t, math.IsInf(tl.StopTime, 1))
	require.Equal(t, KetStateFormalism, tl.Formalism)
	require.Equal(t, 1, tl.Truncation)

	tl = NewTimeline(1e12, "density_matrix", 2)
	require.Equal(t, 1e12, tl.StopTime)
	require.Equal(t, "density_matrix", tl.Formalism)
	require.Equal(t, 2, tl.Truncation)
}

func TestTimelineRegisterDuplicate(t *testing.T) {
	tl := NewTimeline(0, "", 0)

	_, err := NewBSMNode("m", tl, []string{"a", "b"}, Template{})
	require.NoError(t, err)
	require.NotNil(t, tl.GetEntityByName("m"))

	_, err = NewBSMNode("m", tl, nil, Template{})
	require.ErrorContains(t, err, "already registered")

	require.Nil(t, tl.GetEntityByName("absent"))
}

func TestNodeSeeding(t *testing.T) {
	tl := NewTimeline(0, "", 0)
	node, err := NewRouterNode("r", tl, NodeSizes{}, Template{})
	require.NoError(t, err)

	rn := node.(*RouterNode)
	require.Nil(t, rn.Rng())

	rn.SetSeed(7)
	require.Equal(t, 7, rn.Seed())
	require.NotNil(t, rn.Rng())
}
