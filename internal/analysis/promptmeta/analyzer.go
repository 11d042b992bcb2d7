package promptmeta

import (
	"regexp"
	"strings"

	"github.com/zhouzirui/z-manga/backend/internal/model/story"
)

// Analysis 给出提示词的类型/情绪识别结果与主题词。
type Analysis struct {
	PrimaryGenre   story.Genre           `json:"primary_genre"`
	GenreScores    map[story.Genre]int   `json:"genre_scores"`
	PrimaryEmotion story.Emotion         `json:"primary_emotion"`
	EmotionScores  map[story.Emotion]int `json:"emotion_scores"`
	Themes         []string              `json:"themes"`
	WordCount      int                   `json:"word_count"`
}

// 每个类型固定8个关键词，命中次数即得分。
var genreKeywords = map[story.Genre][]string{
	story.GenreAction:  {"fight", "battle", "war", "sword", "gun", "chase", "explosion", "revenge"},
	story.GenreRomance: {"love", "heart", "kiss", "romance", "crush", "date", "wedding", "confession"},
	story.GenreMystery: {"mystery", "detective", "clue", "murder", "secret", "investigation", "suspect", "vanish"},
	story.GenreFantasy: {"magic", "dragon", "wizard", "kingdom", "quest", "spell", "prophecy", "realm"},
	story.GenreHorror:  {"ghost", "demon", "curse", "nightmare", "blood", "haunted", "terror", "monster"},
	story.GenreComedy:  {"funny", "laugh", "joke", "silly", "prank", "awkward", "comedy", "ridiculous"},
	story.GenreDrama:   {"family", "betrayal", "loss", "redemption", "sacrifice", "tragedy", "rivalry", "forgiveness"},
	story.GenreSciFi:   {"robot", "space", "alien", "future", "cyborg", "galaxy", "android", "virus"},
}

// 每个情绪固定6个关键词。
var emotionKeywords = map[story.Emotion][]string{
	story.EmotionAngry:      {"angry", "rage", "fury", "hate", "vengeance", "furious"},
	story.EmotionSad:        {"sad", "grief", "tears", "sorrow", "mourning", "lonely"},
	story.EmotionHappy:      {"happy", "joy", "celebration", "smile", "cheerful", "delight"},
	story.EmotionFearful:    {"fear", "terror", "dread", "scared", "panic", "horrified"},
	story.EmotionSurprised:  {"surprise", "shock", "sudden", "unexpected", "twist", "astonishing"},
	story.EmotionDetermined: {"determined", "resolve", "vow", "mission", "unstoppable", "relentless"},
}

// 主题词过滤掉的常见填充词。
var themeStoplist = map[string]bool{
	"story":     true,
	"about":     true,
	"character": true,
}

const maxThemes = 5

var wordPattern = regexp.MustCompile(`[a-z0-9']+`)

// Analyze 对提示词做单遍关键词统计，总是返回完整结果。
// 纯函数，不涉及随机数：相同输入永远得到相同输出。
func Analyze(prompt string) Analysis {
	tokens := wordPattern.FindAllString(strings.ToLower(prompt), -1)

	counts := make(map[string]int, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}

	genreScores := make(map[story.Genre]int, len(genreKeywords))
	for genre, keywords := range genreKeywords {
		for _, word := range keywords {
			genreScores[genre] += counts[word]
		}
	}

	emotionScores := make(map[story.Emotion]int, len(emotionKeywords))
	for emotion, keywords := range emotionKeywords {
		for _, word := range keywords {
			emotionScores[emotion] += counts[word]
		}
	}

	return Analysis{
		PrimaryGenre:   primaryGenre(genreScores),
		GenreScores:    genreScores,
		PrimaryEmotion: primaryEmotion(emotionScores),
		EmotionScores:  emotionScores,
		Themes:         extractThemes(tokens),
		WordCount:      len(tokens),
	}
}

// primaryGenre 取得分最高的类型；平分时按声明顺序取先出现者。
func primaryGenre(scores map[story.Genre]int) story.Genre {
	best := story.DefaultGenre
	bestScore := 0
	for _, genre := range story.Genres() {
		if scores[genre] > bestScore {
			bestScore = scores[genre]
			best = genre
		}
	}
	return best
}

func primaryEmotion(scores map[story.Emotion]int) story.Emotion {
	best := story.EmotionNeutral
	bestScore := 0
	for _, emotion := range story.Emotions() {
		if scores[emotion] > bestScore {
			bestScore = scores[emotion]
			best = emotion
		}
	}
	return best
}

// extractThemes 取扫描顺序中前5个长度>4的非停用词，不按词频排序。
func extractThemes(tokens []string) []string {
	themes := make([]string, 0, maxThemes)
	seen := map[string]bool{}
	for _, token := range tokens {
		if len(token) <= 4 || themeStoplist[token] || seen[token] {
			continue
		}
		themes = append(themes, token)
		seen[token] = true
		if len(themes) == maxThemes {
			break
		}
	}
	return themes
}
