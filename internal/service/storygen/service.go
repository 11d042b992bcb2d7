package storygen

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/zhouzirui/z-manga/backend/internal/analysis/promptmeta"
	"github.com/zhouzirui/z-manga/backend/internal/model/story"
	"github.com/zhouzirui/z-manga/backend/internal/service/scene"
)

// RemoteGenerator 是远端故事生成的抽象；失败时由本服务回退本地生成。
type RemoteGenerator interface {
	GenerateUnhingedStory(ctx context.Context, rng *rand.Rand, prompt string, characters []string) (*story.Story, error)
}

// 结构化路径：按类型预置的标题前缀与摘要模板。
var genreTitlePrefixes = map[story.Genre][]string{
	story.GenreAction:  {"Blades of", "Last Stand of"},
	story.GenreRomance: {"Hearts of", "Letters to"},
	story.GenreMystery: {"Shadows over", "The Case of"},
	story.GenreFantasy: {"Chronicles of", "Crowns of"},
	story.GenreHorror:  {"Whispers of", "What Waits in"},
	story.GenreComedy:  {"Misadventures of", "Nobody Told"},
	story.GenreDrama:   {"Chronicles of", "Echoes of"},
	story.GenreSciFi:   {"Signals from", "Beyond"},
}

var titleSuffixes = []string{"Awakening", "Destiny", "Legacy", "Revolution", "Eclipse"}

var genreSummaryClosers = map[story.Genre]string{
	story.GenreAction:  "A tale of grit, loyalty, and the battles that forge us.",
	story.GenreRomance: "A tale of longing, timing, and the words left unsaid.",
	story.GenreMystery: "A tale of locked doors, false alibis, and patient truth.",
	story.GenreFantasy: "A tale of oaths, old magic, and roads no map records.",
	story.GenreHorror:  "A tale of things best left buried that refuse to stay down.",
	story.GenreComedy:  "A tale of good intentions going impressively wrong.",
	story.GenreDrama:   "A tale of courage, mystery, and the bonds that define us.",
	story.GenreSciFi:   "A tale of machines, distance, and what survives the signal.",
}

// 结构化路径的摘要场景元素。
var (
	summarySettings = []string{
		"a mysterious academy", "an ancient temple", "a futuristic city", "a haunted mansion",
		"a magical forest", "an underground laboratory", "a floating island", "a cyberpunk district",
		"a desert oasis", "a mountain peak", "a space station", "a medieval castle",
	}

	summaryPlotPoints = []string{
		"discovers a hidden power", "faces their greatest fear", "betrays a trusted ally",
		"uncovers a dark secret", "makes an impossible choice", "confronts their past",
		"saves an enemy", "loses everything", "gains new allies", "breaks an ancient curse",
		"travels through time", "enters another dimension",
	}
)

// edgy 路径的标题副标与摘要结语。
var edgyTitleSuffixes = []string{"Blood & Betrayal", "Chaos Unleashed", "Dark Descent", "Savage Truth", "Broken Souls"}

const edgySummaryCloser = "A brutal tale where morality is a luxury and survival demands sacrifice."

const readingMinutesPerScene = 1.5

// Service 编排分析、画像、场景构建与远端委托，产出完整故事。
type Service struct {
	remote RemoteGenerator // 可为nil：未配置凭证时直接走本地
	seed   *int64
}

// NewService 创建故事编排服务。seed 非nil时每次生成使用固定种子。
func NewService(remote RemoteGenerator, seed *int64) *Service {
	return &Service{remote: remote, seed: seed}
}

// Generate 生成一个完整故事。
// unhinged 时优先走远端，任何远端错误都回退本地 edgy 模板生成，
// 绝不向调用方暴露远端失败。
func (s *Service) Generate(ctx context.Context, prompt string, characters story.CharacterList, unhinged bool) *story.Story {
	roster := story.Normalize(characters)
	rng := s.newRand()

	if unhinged {
		if s.remote != nil {
			if st, err := s.remote.GenerateUnhingedStory(ctx, rng, prompt, roster); err == nil {
				st.Characters = roster
				st.Metadata = buildMetadata(st.Scenes, roster, promptmeta.Analyze(prompt), "remote")
				return st
			} else {
				log.Printf("[storygen] remote generation failed, falling back to local: %v", err)
			}
		} else {
			log.Printf("[storygen] remote generator not configured, using local edgy generation")
		}
		return s.generateEdgy(rng, prompt, roster)
	}

	return s.generateStructured(rng, prompt, roster)
}

func (s *Service) generateStructured(rng *rand.Rand, prompt string, roster story.CharacterList) *story.Story {
	analysis := promptmeta.Analyze(prompt)

	profiles := make(map[string]story.Profile, len(roster))
	orderedProfiles := make([]story.Profile, 0, len(roster))
	for _, name := range roster {
		profile := story.TraitsFor(rng, name, analysis.PrimaryGenre)
		profiles[name] = profile
		orderedProfiles = append(orderedProfiles, profile)
	}

	builder := scene.NewBuilder(rng)
	scenes := builder.BuildStructured(prompt, roster, profiles, analysis)

	return &story.Story{
		Title:             s.structuredTitle(rng, prompt, analysis),
		Summary:           s.structuredSummary(rng, roster, analysis),
		Scenes:            scenes,
		Characters:        roster,
		CharacterProfiles: orderedProfiles,
		Metadata:          buildMetadata(scenes, roster, analysis, "local"),
	}
}

func (s *Service) generateEdgy(rng *rand.Rand, prompt string, roster story.CharacterList) *story.Story {
	builder := scene.NewBuilder(rng)
	result := builder.BuildEdgy(prompt, roster)

	subject := prompt
	if strings.TrimSpace(subject) == "" {
		subject = "the Abyss"
	}

	return &story.Story{
		Title:      fmt.Sprintf("%s: %s", subject, pick(rng, edgyTitleSuffixes)),
		Summary:    fmt.Sprintf("In %s, %s %s. %s", result.Setting, roster.Protagonist(), result.PlotPoint, edgySummaryCloser),
		Scenes:     result.Scenes,
		Characters: roster,
		Metadata:   buildMetadata(result.Scenes, roster, promptmeta.Analyze(prompt), "local-edgy"),
	}
}

func (s *Service) structuredTitle(rng *rand.Rand, prompt string, analysis promptmeta.Analysis) string {
	subject := strings.TrimSpace(prompt)
	if len(analysis.Themes) > 0 {
		subject = capitalize(analysis.Themes[0])
	}
	if subject == "" {
		subject = "the Unwritten"
	}
	prefixes, ok := genreTitlePrefixes[analysis.PrimaryGenre]
	if !ok {
		prefixes = genreTitlePrefixes[story.DefaultGenre]
	}
	return fmt.Sprintf("%s %s: %s", pick(rng, prefixes), subject, pick(rng, titleSuffixes))
}

func (s *Service) structuredSummary(rng *rand.Rand, roster story.CharacterList, analysis promptmeta.Analysis) string {
	closer, ok := genreSummaryClosers[analysis.PrimaryGenre]
	if !ok {
		closer = genreSummaryClosers[story.DefaultGenre]
	}
	return fmt.Sprintf("In %s, %s %s. %s",
		pick(rng, summarySettings), roster.Protagonist(), pick(rng, summaryPlotPoints), closer)
}

// buildMetadata 计算生成统计。只做记录，不反过来影响生成。
func buildMetadata(scenes []story.Scene, roster story.CharacterList, analysis promptmeta.Analysis, generator string) *story.Metadata {
	totalLines := 0
	for _, sc := range scenes {
		totalLines += len(sc.Dialogue)
	}

	sceneCount := len(scenes)
	avg := 0.0
	if sceneCount > 0 {
		avg = float64(totalLines) / float64(sceneCount)
	}

	complexity := len(roster)*2 + sceneCount/3
	if complexity > 10 {
		complexity = 10
	}

	return &story.Metadata{
		SceneCount:         sceneCount,
		CharacterCount:     len(roster),
		TotalDialogueLines: totalLines,
		AvgDialogueLines:   avg,
		ReadingTimeMinutes: float64(sceneCount) * readingMinutesPerScene,
		PageRangeMin:       sceneCount,
		PageRangeMax:       sceneCount * 2,
		ComplexityScore:    complexity,
		Themes:             analysis.Themes,
		Sentiment:          string(analysis.PrimaryEmotion),
		Generator:          generator,
		GeneratedAt:        time.Now().UTC(),
	}
}

func (s *Service) newRand() *rand.Rand {
	if s.seed != nil {
		return rand.New(rand.NewSource(*s.seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
