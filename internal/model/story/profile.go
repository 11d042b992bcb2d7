package story

import "math/rand"

// Profile 描述单个角色的性格画像。
type Profile struct {
	Name         string   `json:"name"`
	Traits       []string `json:"traits"`
	PrimaryTrait string   `json:"primary_trait"`
}

// 按类型预置的候选性格，每组5个，保证无放回采样3个总是可行。
var traitTable = map[Genre][]string{
	GenreAction:  {"fearless", "impulsive", "loyal", "battle-hardened", "reckless"},
	GenreRomance: {"tender", "devoted", "jealous", "witty", "hopeless romantic"},
	GenreMystery: {"observant", "secretive", "serious", "skeptical", "methodical"},
	GenreFantasy: {"curious", "chosen", "witty", "stubborn", "noble"},
	GenreHorror:  {"paranoid", "haunted", "serious", "fragile", "desperate"},
	GenreComedy:  {"witty", "clumsy", "optimistic", "sarcastic", "oblivious"},
	GenreDrama:   {"conflicted", "proud", "serious", "compassionate", "wounded"},
	GenreSciFi:   {"analytical", "visionary", "detached", "witty", "rebellious"},
}

// 未知类型的兜底候选，同样保持≥3个。
var fallbackTraits = []string{"brave", "mysterious", "determined", "guarded", "resourceful"}

// TraitsFor 为角色从类型表中无放回采样3个性格。
// rng 由调用方注入，保证测试可复现。
func TraitsFor(rng *rand.Rand, name string, genre Genre) Profile {
	pool, ok := traitTable[genre]
	if !ok {
		pool = fallbackTraits
	}

	traits := make([]string, 0, 3)
	for _, idx := range rng.Perm(len(pool))[:3] {
		traits = append(traits, pool[idx])
	}

	return Profile{
		Name:         name,
		Traits:       traits,
		PrimaryTrait: traits[0],
	}
}
