package persona

import (
	"errors"
	"testing"

	"github.com/zeus1292/investorlens/pkg/types"
)

func TestStoreHasExactlyFivePersonas(t *testing.T) {
	store := NewStore()
	profiles := store.List()
	if len(profiles) != 5 {
		t.Fatalf("List() returned %d profiles, want 5", len(profiles))
	}

	want := []string{ValueInvestor, PEFirm, GrowthVC, StrategicAcquirer, EnterpriseBuyer}
	for i, p := range profiles {
		if p.Name != want[i] {
			t.Errorf("profile[%d].Name = %q, want %q", i, p.Name, want[i])
		}
	}
}

func TestWeightsForUnknownPersona(t *testing.T) {
	store := NewStore()
	_, err := store.WeightsFor("day_trader")
	if !errors.Is(err, types.ErrUnknownPersona) {
		t.Errorf("WeightsFor(day_trader) error = %v, want ErrUnknownPersona", err)
	}
}

func TestEveryPersonaWeightsGraphBoost(t *testing.T) {
	store := NewStore()
	for _, p := range store.List() {
		w, ok := p.Weights[GraphBoostFactor]
		if !ok {
			t.Errorf("persona %s does not declare %s", p.Name, GraphBoostFactor)
			continue
		}
		if w <= 0 {
			t.Errorf("persona %s weights %s at %v, want positive", p.Name, GraphBoostFactor, w)
		}
	}
}

func TestAllWeightsNonNegativeAndSourced(t *testing.T) {
	store := NewStore()
	for _, p := range store.List() {
		for factor, w := range p.Weights {
			if w < 0 {
				t.Errorf("persona %s factor %s has negative weight %v", p.Name, factor, w)
			}
			if factor == GraphBoostFactor {
				continue
			}
			if _, ok := SourceFor(factor); !ok {
				t.Errorf("persona %s declares factor %s with no attribute source", p.Name, factor)
			}
		}
	}
}

func TestGraphPriorityUsesKnownEdgeTypes(t *testing.T) {
	known := make(map[types.EdgeType]bool)
	for _, et := range types.AllEdgeTypes {
		known[et] = true
	}

	for _, p := range NewStore().List() {
		for _, et := range p.GraphPriority {
			if !known[et] {
				t.Errorf("persona %s lists unknown edge type %s", p.Name, et)
			}
		}
	}
}

func TestListIsDeterministic(t *testing.T) {
	store := NewStore()
	a := store.Names()
	b := store.Names()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Names() order changed between calls: %v vs %v", a, b)
		}
	}
}
