package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterModel() *Model {
	return Named("Counter").
		Props(map[string]Type{"Count": Optional(Integer, 0)}).
		Actions(func(n *Node) map[string]Action {
			return map[string]Action{
				"inc": func(args ...any) (any, error) {
					v, _ := n.Storage().Get("Count")
					return nil, n.Storage().Set("Count", v.(int)+1)
				},
				"get": func(args ...any) (any, error) {
					v, _ := n.Storage().Get("Count")
					return v, nil
				},
			}
		})
}

func TestCreateWithDefaults(t *testing.T) {
	n, err := counterModel().Create(nil)
	require.NoError(t, err)

	snap := n.Snapshot()
	assert.Equal(t, 0, snap["Count"])
	assert.Equal(t, "Counter", n.ModelName())
	assert.NotEmpty(t, n.ID())
}

func TestCreateWithSnapshot(t *testing.T) {
	n, err := counterModel().Create(Snapshot{"Count": 5})
	require.NoError(t, err)
	assert.Equal(t, 5, n.Snapshot()["Count"])
}

func TestCreateMissingRequiredProperty(t *testing.T) {
	m := Named("User").Props(map[string]Type{"Name": String})

	_, err := m.Create(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing value for property "Name"`)
}

func TestCreateValidationFailure(t *testing.T) {
	m := Named("User").Props(map[string]Type{"Name": String})

	_, err := m.Create(Snapshot{"Name": 42})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `property "Name"`)
}

func TestBuilderMethodsDerive(t *testing.T) {
	base := Named("Base").Props(map[string]Type{"A": Optional(String, "a")})
	ext := base.Named("Ext").Props(map[string]Type{"B": Optional(String, "b")})

	assert.Equal(t, "Base", base.Name())
	assert.Equal(t, "Ext", ext.Name())
	assert.Len(t, base.PropTypes(), 1, "deriving must not disturb the original")
	assert.Len(t, ext.PropTypes(), 2)

	n, err := ext.Create(nil)
	require.NoError(t, err)
	assert.Equal(t, Snapshot{"A": "a", "B": "b"}, n.Snapshot())
}

func TestPreProcessSnapshotWraps(t *testing.T) {
	var order []string
	m := Named("T").
		Props(map[string]Type{"V": Optional(Integer, 0)}).
		PreProcessSnapshot(func(s Snapshot) Snapshot {
			order = append(order, "first")
			return s
		}).
		PreProcessSnapshot(func(s Snapshot) Snapshot {
			order = append(order, "second")
			return s
		})

	_, err := m.Create(nil)
	require.NoError(t, err)

	// The newest hook runs first; the prior hook is applied to its result.
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestPreProcessSnapshotNormalizes(t *testing.T) {
	m := Named("T").
		Props(map[string]Type{"V": Integer}).
		PreProcessSnapshot(func(s Snapshot) Snapshot {
			if _, ok := s["V"]; !ok {
				s["V"] = 99
			}
			return s
		})

	n, err := m.Create(nil)
	require.NoError(t, err)
	assert.Equal(t, 99, n.Snapshot()["V"])
}

func TestVolatileInitializers(t *testing.T) {
	m := counterModel().Volatile(func(n *Node) map[string]any {
		return map[string]any{"cache": "warm"}
	})

	n, err := m.Create(nil)
	require.NoError(t, err)

	v, ok := n.Volatile("cache")
	require.True(t, ok)
	assert.Equal(t, "warm", v)

	// Volatile state never appears in snapshots.
	_, inSnapshot := n.Snapshot()["cache"]
	assert.False(t, inSnapshot)
}

func TestAfterCreateHookRunsOnce(t *testing.T) {
	calls := 0
	m := counterModel().Actions(func(n *Node) map[string]Action {
		return map[string]Action{
			HookAfterCreate: func(args ...any) (any, error) {
				calls++
				return nil, nil
			},
		}
	})

	n, err := m.Create(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// The hook is removed after construction and cannot be re-dispatched.
	_, err = n.Call(HookAfterCreate)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestAfterCreateHookFailureFailsCreate(t *testing.T) {
	m := counterModel().Actions(func(n *Node) map[string]Action {
		return map[string]Action{
			HookAfterCreate: func(args ...any) (any, error) {
				return nil, assert.AnError
			},
		}
	})

	_, err := m.Create(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "afterCreate")
}
