package models

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatterMap_Add(t *testing.T) {
	cm := make(ChatterMap)
	cm.Add("u1", "a")
	cm.Add("u1", "b")
	cm.Add("u1", "a")
	cm.Add("u2", "a")

	assert.Equal(t, []string{"a", "b"}, cm["u1"].Names())
	assert.Equal(t, []string{"a"}, cm["u2"].Names())
}

func TestChatterMap_Union(t *testing.T) {
	day1 := ChatterMap{"u1": NewChannelSet("a", "b")}
	day3 := ChatterMap{"u1": NewChannelSet("b", "c"), "u2": NewChannelSet("d")}

	merged := make(ChatterMap)
	merged.Union(day1)
	merged.Union(day3)

	assert.Equal(t, []string{"a", "b", "c"}, merged["u1"].Names())
	assert.Equal(t, []string{"d"}, merged["u2"].Names())
}

func TestChatterMap_UnionOrderIndependent(t *testing.T) {
	days := []ChatterMap{
		{"u1": NewChannelSet("a")},
		{"u1": NewChannelSet("b"), "u2": NewChannelSet("c")},
		{"u3": NewChannelSet("a", "d")},
	}

	forward := make(ChatterMap)
	for _, d := range days {
		forward.Union(d)
	}

	backward := make(ChatterMap)
	for i := len(days) - 1; i >= 0; i-- {
		backward.Union(days[i])
	}

	assert.Equal(t, forward, backward)
}

func TestChatterMap_UnionDoesNotAliasSource(t *testing.T) {
	source := ChatterMap{"u1": NewChannelSet("a")}
	merged := make(ChatterMap)
	merged.Union(source)
	merged.Add("u1", "b")

	assert.Equal(t, []string{"a"}, source["u1"].Names())
}

func TestChannelSet_JSONRoundtrip(t *testing.T) {
	cm := ChatterMap{
		"u1": NewChannelSet("b", "a"),
		"u2": NewChannelSet("c"),
	}

	data, err := json.Marshal(cm)
	require.NoError(t, err)

	var decoded ChatterMap
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, cm, decoded)
}

func TestChannelSet_MarshalSorted(t *testing.T) {
	set := NewChannelSet("c", "a", "b")
	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b","c"]`, string(data))
}
