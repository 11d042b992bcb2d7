package dialogue

import (
	"math/rand"
	"strings"

	"github.com/zhouzirui/z-manga/backend/internal/model/story"
)

// 修饰规则的触发概率。
const (
	exclaimChance   = 0.3
	traitChance     = 0.2
	profanityChance = 0.5
)

// 按情绪预置的感叹前缀。
var emotionExclamations = map[story.Emotion][]string{
	story.EmotionAngry:      {"Damn it!", "Enough!", "You dare?!"},
	story.EmotionSad:        {"It hurts...", "Why...", "I'm sorry..."},
	story.EmotionHappy:      {"Haha!", "Finally!", "Yes!"},
	story.EmotionFearful:    {"No, no, no...", "Did you hear that?", "Stay back!"},
	story.EmotionSurprised:  {"What?!", "Impossible!", "No way!"},
	story.EmotionDetermined: {"Listen up.", "This ends now.", "No turning back."},
}

var wittyAsides = []string{
	" (smirking)",
	" ...not that anyone asked.",
	" Try to keep up.",
}

// Profanities 是 edgy 模式注入的词表，场景构建器也从这里取词。
var Profanities = []string{
	"damn", "hell", "shit", "fuck", "bastard", "bitch", "asshole", "motherfucker",
	"son of a bitch", "what the fuck", "holy shit", "goddamn", "fucking hell", "piece of shit",
}

// 已含脏话的台词不再二次注入，按这些标记判断。
var profanityMarkers = []string{"damn", "hell", "shit", "fuck"}

// ContainsProfanity 报告文本是否已带脏话标记。
func ContainsProfanity(text string) bool {
	lowered := strings.ToLower(text)
	for _, marker := range profanityMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

// Composer 对一句基础台词做概率性修饰。
// 随机源由调用方注入：固定种子下输出完全可复现。
type Composer struct {
	rng *rand.Rand
}

// NewComposer 创建台词修饰器。
func NewComposer(rng *rand.Rand) *Composer {
	return &Composer{rng: rng}
}

// Compose 依次独立应用四条修饰规则：
// 情绪感叹前缀、witty 舞台提示后缀、serious 去感叹号、edgy 脏话前缀。
func (c *Composer) Compose(base string, emotion story.Emotion, traits []string, edgy bool) string {
	text := base

	if bank, ok := emotionExclamations[emotion]; ok {
		if c.rng.Float64() < exclaimChance {
			text = bank[c.rng.Intn(len(bank))] + " " + text
		}
	}

	if hasTrait(traits, "witty") && c.rng.Float64() < traitChance {
		text += wittyAsides[c.rng.Intn(len(wittyAsides))]
	}

	if hasTrait(traits, "serious") && c.rng.Float64() < traitChance {
		text = strings.ReplaceAll(text, "!", ".")
	}

	if edgy && c.rng.Float64() < profanityChance && !ContainsProfanity(text) {
		swear := Profanities[c.rng.Intn(len(Profanities))]
		text = capitalize(swear) + ", " + lowerFirst(text)
	}

	return text
}

func hasTrait(traits []string, want string) bool {
	for _, trait := range traits {
		if trait == want {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
