package game

import (
	"encoding/json"
	"slices"
	"testing"
)

type nopGame struct{}

func (nopGame) Status() string               { return "in game" }
func (nopGame) State() any                   { return nil }
func (nopGame) Ended() bool                  { return false }
func (nopGame) Action(json.RawMessage) error { return nil }

func TestRegistryRegisterAndCreate(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("nop", func([]string) Game { return nopGame{} }); err != nil {
		t.Fatalf("register: %v", err)
	}

	if !reg.Has("nop") {
		t.Fatal("expected registry to know nop")
	}
	if reg.Has("ghost") {
		t.Fatal("unexpected ghost game type")
	}

	g, err := reg.Create("nop", []string{"alice"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if g == nil {
		t.Fatal("expected a game instance")
	}

	if _, err := reg.Create("ghost", nil); err == nil {
		t.Fatal("expected unknown type error")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	factory := func([]string) Game { return nopGame{} }

	if err := reg.Register("nop", factory); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register("nop", factory); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestRegistryNamesKeepOrder(t *testing.T) {
	reg := NewRegistry()
	factory := func([]string) Game { return nopGame{} }

	for _, tag := range []string{"c", "a", "b"} {
		if err := reg.Register(tag, factory); err != nil {
			t.Fatal(err)
		}
	}

	if got, want := reg.Names(), []string{"c", "a", "b"}; !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
