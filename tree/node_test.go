package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallUnknownAction(t *testing.T) {
	n, err := counterModel().Create(nil)
	require.NoError(t, err)

	_, err = n.Call("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no action "nope"`)
}

func TestCallTracksChanges(t *testing.T) {
	n, err := counterModel().Create(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n.Version())

	_, err = n.Call("inc")
	require.NoError(t, err)

	assert.Equal(t, int64(1), n.Version())
	changes := n.Changes()
	require.Len(t, changes, 1)
	assert.Equal(t, "Count", changes[0].Field)
	assert.Equal(t, 0, changes[0].OldValue)
	assert.Equal(t, 1, changes[0].NewValue)

	_, err = n.Call("inc")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n.Version())
}

func TestCallWithoutMutationKeepsVersion(t *testing.T) {
	n, err := counterModel().Create(Snapshot{"Count": 3})
	require.NoError(t, err)

	out, err := n.Call("get")
	require.NoError(t, err)
	assert.Equal(t, 3, out)
	assert.Equal(t, int64(0), n.Version())
	assert.Empty(t, n.Changes())
}

// testStore is a Storage used to exercise adoption.
type testStore struct {
	values map[string]any
}

func (s *testStore) Get(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

func (s *testStore) Set(name string, v any) error {
	s.values[name] = v
	return nil
}

func TestAdoptMigratesState(t *testing.T) {
	n, err := counterModel().Create(Snapshot{"Count": 7})
	require.NoError(t, err)

	store := &testStore{values: make(map[string]any)}
	require.NoError(t, n.Adopt(store))

	assert.Equal(t, 7, store.values["Count"])
	assert.Same(t, store, n.Storage())

	// The node keeps reading through the adopted store.
	_, err = n.Call("inc")
	require.NoError(t, err)
	assert.Equal(t, 8, n.Snapshot()["Count"])
	assert.Equal(t, 8, store.values["Count"])
}

func TestViewsCarrierIsFresh(t *testing.T) {
	m := counterModel().Views(func(n *Node) map[string]View {
		return map[string]View{
			"Doubled": {Get: func() any {
				v, _ := n.Storage().Get("Count")
				return v.(int) * 2
			}},
		}
	})

	n, err := m.Create(Snapshot{"Count": 4})
	require.NoError(t, err)

	v, ok := n.View("Doubled")
	require.True(t, ok)
	assert.Equal(t, 8, v.Get())

	carrier := n.Views()
	require.Contains(t, carrier, "Doubled")
	delete(carrier, "Doubled")

	_, still := n.View("Doubled")
	assert.True(t, still, "mutating the carrier must not affect the node")
}

func TestViewIsLive(t *testing.T) {
	m := counterModel().Views(func(n *Node) map[string]View {
		return map[string]View{
			"Current": {Get: func() any {
				v, _ := n.Storage().Get("Count")
				return v
			}},
		}
	})

	n, err := m.Create(nil)
	require.NoError(t, err)

	v, _ := n.View("Current")
	assert.Equal(t, 0, v.Get())

	_, err = n.Call("inc")
	require.NoError(t, err)
	assert.Equal(t, 1, v.Get())
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	m := Named("Doc").Props(map[string]Type{"Tags": Optional(Array(String), []any{"a"})})

	n, err := m.Create(nil)
	require.NoError(t, err)

	snap := n.Snapshot()
	snap["Tags"].([]any)[0] = "mutated"

	assert.Equal(t, "a", n.Snapshot()["Tags"].([]any)[0])
}
