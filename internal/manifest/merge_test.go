package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/podreg/runtime/pod"
)

func TestMerge_AddsOnlyNewEntries(t *testing.T) {
	reg := pod.NewRegistry()
	initial, err := Parse([]byte(geometry))
	require.NoError(t, err)
	require.NoError(t, Apply(reg, initial))

	next, err := Parse([]byte(`
pods:
  - name: geom
    types:
      - name: Point
      - name: Circle
        base: geom::Point
      - name: Ellipse
        base: geom::Point
  - name: text
    locale:
      title: Text
    types:
      - name: Label
`))
	require.NoError(t, err)

	loc := pod.NewMapLocalizer()
	res, err := Merge(reg, next, loc)
	require.NoError(t, err)

	assert.True(t, res.Changed())
	assert.Equal(t, []string{"text"}, res.PodsAdded)
	assert.Equal(t, []string{"geom::Ellipse", "text::Label"}, res.TypesAdded)
	assert.Empty(t, res.Conflicts)

	// shapes is no longer declared but stays registered
	assert.Equal(t, 3, reg.Len())
	_, ok := reg.Lookup("shapes")
	assert.True(t, ok)

	assert.Equal(t, "Text", loc.Localize("text", "title", "title"))
}

func TestMerge_Idempotent(t *testing.T) {
	reg := pod.NewRegistry()
	m, err := Parse([]byte(geometry))
	require.NoError(t, err)

	res, err := Merge(reg, m, nil)
	require.NoError(t, err)
	assert.Len(t, res.PodsAdded, 2)
	assert.Len(t, res.TypesAdded, 3)

	res, err = Merge(reg, m, nil)
	require.NoError(t, err)
	assert.False(t, res.Changed())
}

func TestMerge_Conflict(t *testing.T) {
	reg := pod.NewRegistry()
	m, err := Parse([]byte(geometry))
	require.NoError(t, err)
	require.NoError(t, Apply(reg, m))

	m.Pods[0].Types[1].Base = "geom::Shape"
	res, err := Merge(reg, m, nil)
	require.NoError(t, err)

	require.Len(t, res.Conflicts, 1)
	assert.Contains(t, res.Conflicts[0], "geom::Circle")
	circle, err := reg.FindType("geom::Circle", true)
	require.NoError(t, err)
	assert.Equal(t, "geom::Point", circle.Base())
}

func TestMerge_InvalidName(t *testing.T) {
	reg := pod.NewRegistry()
	m := &Manifest{Pods: []PodSpec{
		{Name: "ok", Types: []TypeSpec{{Name: "A"}}},
		{Name: "bad::name"},
	}}

	res, err := Merge(reg, m, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, pod.ErrInvalidName)
	assert.Contains(t, err.Error(), "pods[1]")
	assert.Equal(t, []string{"ok"}, res.PodsAdded)
}
