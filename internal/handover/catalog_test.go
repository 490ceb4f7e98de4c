package handover

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
)

func TestBaseCatalogsValid(t *testing.T) {
	for _, g := range []Group{GroupA, GroupB} {
		if err := BaseScenarios(g).Validate(); err != nil {
			t.Errorf("group %s: %v", g, err)
		}
	}
}

func TestBaseScenariosIsACopy(t *testing.T) {
	a := BaseScenarios(GroupA)
	a[0].Stages[0].DurationSeconds = 99
	a[0].Name = "changed"

	b := BaseScenarios(GroupA)
	if b[0].Stages[0].DurationSeconds == 99 || b[0].Name == "changed" {
		t.Fatal("mutating a returned catalog leaked into the base list")
	}
}

func TestGroupBCatalogFixedOrder(t *testing.T) {
	for range 5 {
		c, err := NewCatalog(GroupB, nil)
		if err != nil {
			t.Fatalf("NewCatalog: %v", err)
		}
		var names []string
		for _, sc := range c {
			names = append(names, sc.Name)
			if len(sc.Stages) != 1 || sc.Stages[0].DurationSeconds != 8 {
				t.Errorf("%s: want single 8s stage, got %+v", sc.Name, sc.Stages)
			}
		}
		want := []string{"Test 1", "Test 2", "Test 3"}
		if !slices.Equal(names, want) {
			t.Fatalf("order = %v, want %v", names, want)
		}
	}
}

func TestGroupACatalogIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	want := ids(BaseScenarios(GroupA))
	slices.Sort(want)

	for range 200 {
		c, err := NewCatalog(GroupA, rng.IntN)
		if err != nil {
			t.Fatalf("NewCatalog: %v", err)
		}
		got := ids(c)
		slices.Sort(got)
		if !slices.Equal(got, want) {
			t.Fatalf("catalog ids = %v, want permutation of %v", got, want)
		}
	}
}

func TestShuffleUniformPositions(t *testing.T) {
	const trials = 40000
	base := []int{0, 1, 2, 3}
	rng := rand.New(rand.NewPCG(42, 7))

	var counts [4][4]int
	for range trials {
		p := Shuffle(base, rng.IntN)
		for pos, v := range p {
			counts[v][pos]++
		}
	}

	expected := trials / len(base)
	tolerance := expected / 20
	for v := range counts {
		for pos, n := range counts[v] {
			if n < expected-tolerance || n > expected+tolerance {
				t.Errorf("value %d at position %d: %d times, want %d±%d", v, pos, n, expected, tolerance)
			}
		}
	}
	if !slices.Equal(base, []int{0, 1, 2, 3}) {
		t.Errorf("input mutated: %v", base)
	}
}

func TestNewCatalogUnknownGroup(t *testing.T) {
	if _, err := NewCatalog(Group("C"), nil); err == nil {
		t.Fatal("expected error for unknown group")
	}
}

func TestValidate(t *testing.T) {
	ok := Stage{Urgency: UrgencyLow, DurationSeconds: 5}
	tests := []struct {
		name    string
		catalog Catalog
		want    error
	}{
		{"empty", Catalog{}, ErrEmptyCatalog},
		{"no stages", Catalog{{ID: "x"}}, ErrEmptyScenario},
		{"zero duration", Catalog{{ID: "x", Stages: []Stage{{Urgency: UrgencyLow}}}}, ErrInvalidStage},
		{"bad urgency", Catalog{{ID: "x", Stages: []Stage{{Urgency: "panic", DurationSeconds: 1}}}}, ErrInvalidStage},
		{"negative distance", Catalog{{ID: "x", Stages: []Stage{{Urgency: UrgencyHigh, DurationSeconds: 1, DistanceKM: -1}}}}, ErrInvalidStage},
		{"valid", Catalog{{ID: "x", Stages: []Stage{ok}}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.catalog.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseGroup(t *testing.T) {
	for in, want := range map[string]Group{"A": GroupA, "a": GroupA, "B": GroupB, "b": GroupB} {
		got, err := ParseGroup(in)
		if err != nil || got != want {
			t.Errorf("ParseGroup(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseGroup("AB"); err == nil {
		t.Error("ParseGroup(AB): expected error")
	}
}

func TestAlertFor(t *testing.T) {
	generic := BaseScenarios(GroupB)[2].Stages[0]
	if got := AlertFor(generic).Message; got != "TAKE CONTROL NOW!" {
		t.Errorf("generic high alert = %q", got)
	}

	specific := BaseScenarios(GroupA)[0].Stages[0]
	if got := AlertFor(specific).Message; got != specific.Message {
		t.Errorf("context alert = %q, want %q", got, specific.Message)
	}
}

func ids(c Catalog) []string {
	out := make([]string, len(c))
	for i, sc := range c {
		out[i] = sc.ID
	}
	return out
}
