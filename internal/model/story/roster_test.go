package story

import (
	"encoding/json"
	"math/rand"
	"testing"
)

func TestCharacterListUnmarshalArray(t *testing.T) {
	var payload struct {
		Characters CharacterList `json:"characters"`
	}
	if err := json.Unmarshal([]byte(`{"characters":["Kazuo"," Miyuki "]}`), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(payload.Characters) != 2 {
		t.Fatalf("expected 2 characters, got %d", len(payload.Characters))
	}
	if payload.Characters[1] != "Miyuki" {
		t.Fatalf("expected trimmed name, got %q", payload.Characters[1])
	}
}

func TestCharacterListUnmarshalCommaString(t *testing.T) {
	var payload struct {
		Characters CharacterList `json:"characters"`
	}
	if err := json.Unmarshal([]byte(`{"characters":"Kazuo, Miyuki,The Boss"}`), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	want := []string{"Kazuo", "Miyuki", "The Boss"}
	if len(payload.Characters) != len(want) {
		t.Fatalf("expected %d characters, got %d", len(want), len(payload.Characters))
	}
	for i, name := range want {
		if payload.Characters[i] != name {
			t.Fatalf("characters[%d] = %q, want %q", i, payload.Characters[i], name)
		}
	}
}

func TestNormalizeEmptyFallsBackToDefault(t *testing.T) {
	roster := Normalize([]string{"", "  "})
	if len(roster) != 2 || roster.Protagonist() != "Protagonist" {
		t.Fatalf("expected default roster, got %v", roster)
	}
}

func TestTraitsForSamplesThreeDistinct(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, genre := range append(Genres(), Genre("isekai-soap-opera")) {
		profile := TraitsFor(rng, "Kazuo", genre)
		if len(profile.Traits) != 3 {
			t.Fatalf("genre %s: expected 3 traits, got %d", genre, len(profile.Traits))
		}
		seen := map[string]bool{}
		for _, trait := range profile.Traits {
			if seen[trait] {
				t.Fatalf("genre %s: duplicate trait %q", genre, trait)
			}
			seen[trait] = true
		}
		if profile.PrimaryTrait != profile.Traits[0] {
			t.Fatalf("primary trait should be traits[0]")
		}
	}
}

func TestTraitsForReproducibleWithSeed(t *testing.T) {
	first := TraitsFor(rand.New(rand.NewSource(42)), "Miyuki", GenreHorror)
	second := TraitsFor(rand.New(rand.NewSource(42)), "Miyuki", GenreHorror)
	for i := range first.Traits {
		if first.Traits[i] != second.Traits[i] {
			t.Fatalf("seeded sampling should be reproducible, %v vs %v", first.Traits, second.Traits)
		}
	}
}
