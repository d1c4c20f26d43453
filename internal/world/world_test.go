package world

import "testing"

func villageGraph() *Graph {
	return NewGraph([]Place{
		{Name: "Home", Kind: "house", Neighbors: []string{"Square"}},
		{Name: "Square", Kind: "plaza", Neighbors: []string{"Cafe", "Office"}},
		{Name: "Cafe", Kind: "venue"},
		{Name: "Office", Kind: "work"},
		{Name: "Woods", Kind: "wild"},
	})
}

func TestGraphLookup(t *testing.T) {
	g := villageGraph()
	if !g.Has("Cafe") {
		t.Error("Cafe should exist")
	}
	if g.Has("Mall") {
		t.Error("Mall should not exist")
	}
	p, ok := g.Get("Square")
	if !ok || p.Kind != "plaza" {
		t.Errorf("Get(Square) = %+v, %v", p, ok)
	}
	if g.Len() != 5 {
		t.Errorf("Len = %d, want 5", g.Len())
	}
}

func TestGraphAdjacencyIsMirrored(t *testing.T) {
	g := villageGraph()
	// Cafe never listed Square, but Square listed Cafe.
	if !g.Adjacent("Cafe", "Square") {
		t.Error("one-sided neighbor declarations should be mirrored")
	}
	if !g.Adjacent("Square", "Cafe") {
		t.Error("declared adjacency missing")
	}
	if g.Adjacent("Home", "Woods") {
		t.Error("Home and Woods are not adjacent")
	}
	if g.Adjacent("Mall", "Square") {
		t.Error("unknown place cannot be adjacent to anything")
	}
}

func TestGraphNeighborsSorted(t *testing.T) {
	g := villageGraph()
	got := g.Neighbors("Square")
	want := []string{"Cafe", "Home", "Office"}
	if len(got) != len(want) {
		t.Fatalf("Neighbors(Square) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Neighbors(Square) = %v, want %v", got, want)
		}
	}
	if g.Neighbors("Woods") != nil {
		t.Error("isolated place should have no neighbors")
	}
	if g.Neighbors("Mall") != nil {
		t.Error("unknown place should have no neighbors")
	}
}

func TestWeatherDeterministic(t *testing.T) {
	a, b := NewWeather(1337), NewWeather(1337)
	for _, tick := range []int{0, 17, 288, 5000, 99999} {
		ca, cb := a.At(tick), b.At(tick)
		if ca != cb {
			t.Fatalf("tick %d: same seed diverged: %+v vs %+v", tick, ca, cb)
		}
	}
}

func TestWeatherConditionsSane(t *testing.T) {
	w := NewWeather(7)
	varied := false
	first := w.At(0)
	for tick := 0; tick < 5000; tick += 50 {
		c := w.At(tick)
		if c.Temp < 2 || c.Temp > 30 {
			t.Fatalf("tick %d: temp %v outside [2,30]", tick, c.Temp)
		}
		if c.Description == "" {
			t.Fatalf("tick %d: empty description", tick)
		}
		if c.Storm && !c.Raining {
			t.Fatalf("tick %d: storm without rain", tick)
		}
		if c.Bad() != (c.Raining || c.Storm) {
			t.Fatalf("tick %d: Bad() inconsistent with flags", tick)
		}
		if c != first {
			varied = true
		}
	}
	if !varied {
		t.Error("weather field should vary over a long run")
	}
}
