package models

import (
	"sort"

	json "github.com/goccy/go-json"
)

// ChannelSet is the set of channel login names a chatter was seen in.
// Serialized as a JSON array of names so snapshots stay readable and
// compatible across rewrites of the engine.
type ChannelSet map[string]struct{}

func NewChannelSet(names ...string) ChannelSet {
	set := make(ChannelSet, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func (cs ChannelSet) Add(name string) {
	cs[name] = struct{}{}
}

func (cs ChannelSet) Has(name string) bool {
	_, ok := cs[name]
	return ok
}

func (cs ChannelSet) Union(other ChannelSet) {
	for name := range other {
		cs[name] = struct{}{}
	}
}

// Names returns the channels in lexical order.
func (cs ChannelSet) Names() []string {
	names := make([]string, 0, len(cs))
	for name := range cs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (cs ChannelSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(cs.Names())
}

func (cs *ChannelSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	set := make(ChannelSet, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	*cs = set
	return nil
}

// ChatterMap maps a chatter identity to the channels it was observed in.
// This is both the in-memory accumulation shape and, gzip-compressed, the
// snapshot payload format.
type ChatterMap map[string]ChannelSet

// Add records that a chatter was seen in a channel, creating the chatter's
// entry if absent.
func (cm ChatterMap) Add(chatter, channel string) {
	if set, ok := cm[chatter]; ok {
		set.Add(channel)
		return
	}
	cm[chatter] = NewChannelSet(channel)
}

// Union folds another day's mapping into this one. Channel sets union,
// duplicates collapse naturally.
func (cm ChatterMap) Union(other ChatterMap) {
	for chatter, channels := range other {
		if set, ok := cm[chatter]; ok {
			set.Union(channels)
		} else {
			copied := make(ChannelSet, len(channels))
			copied.Union(channels)
			cm[chatter] = copied
		}
	}
}
