package scene

import (
	"fmt"
	"math/rand"

	"github.com/zhouzirui/z-manga/backend/internal/analysis/promptmeta"
	"github.com/zhouzirui/z-manga/backend/internal/model/story"
	"github.com/zhouzirui/z-manga/backend/internal/service/dialogue"
)

// 结构化路径的场景数范围与上升段占比。
const (
	structuredMinScenes = 8
	structuredMaxScenes = 12
	risingCutoff        = 0.7
)

// edgy 路径的场景数范围。
const (
	edgyMinScenes = 10
	edgyMaxScenes = 15
)

const extraLineChance = 0.4

// 结构化路径：按类型预置的场景描述模板，%s 处填主题词。
var genreSceneTemplates = map[story.Genre][]string{
	story.GenreAction: {
		"Steel clashes in the distance as the struggle over %s spills into the streets.",
		"An ambush erupts without warning, and %s is the only thing worth protecting.",
		"The enemy line breaks, but the cost of %s keeps climbing.",
	},
	story.GenreRomance: {
		"A stolen glance across the courtyard says more about %s than words ever could.",
		"Rain traps them under the same awning, and %s hangs unspoken between them.",
		"A letter left unsigned turns %s into the question neither dares to ask.",
	},
	story.GenreMystery: {
		"A half-burned note surfaces, tying %s to the night everything went wrong.",
		"The alibi collapses, and suddenly %s points to someone inside the room.",
		"Another door that should have been locked stands open, reeking of %s.",
	},
	story.GenreFantasy: {
		"The old sigils flare awake, drawn to the promise of %s.",
		"Beyond the shattered gate, the realm bends itself around %s.",
		"An oath sworn on %s binds them to a road no map records.",
	},
	story.GenreHorror: {
		"The lights gutter out one by one, and %s breathes somewhere in the dark.",
		"What they buried to forget %s has started scratching back.",
		"The reflection moves a heartbeat too late, mocking their grip on %s.",
	},
	story.GenreComedy: {
		"A foolproof plan involving %s goes spectacularly, publicly wrong.",
		"Nobody can agree whose fault %s is, which makes it everyone's.",
		"An overheard half-sentence about %s spirals into total chaos.",
	},
	story.GenreDrama: {
		"An old wound reopens at the dinner table, and %s is the knife.",
		"The apology comes years too late, but %s refuses to stay buried.",
		"Pride and %s pull the family in directions none of them chose.",
	},
	story.GenreSciFi: {
		"The station's klaxons drown out every argument about %s.",
		"A signal from the dead colony repeats one word: %s.",
		"The upgrade was supposed to fix %s. It learned instead.",
	},
}

// 结构化路径：按叙事阶段预置的台词基底，每段3条。
var sceneLineBank = map[story.SceneType][]string{
	story.SceneOpening: {
		"Something feels different about this place... like it's been waiting for me.",
		"So it begins. I can feel it.",
		"Whatever happens next, there's no going back.",
	},
	story.SceneRising: {
		"The path ahead won't be easy, but we'll face it together.",
		"Every challenge makes us stronger.",
		"We're getting closer. I can feel the pieces moving.",
	},
	story.SceneClimax: {
		"This is what I've been training for!",
		"Everything we've worked for depends on this moment!",
		"No more running. We end this here!",
	},
	story.SceneResolution: {
		"Now I understand... everything led to this moment.",
		"It's over. We can finally breathe again.",
		"This is just the beginning of our story.",
	},
}

// edgy 路径的模板库，来自产品的 uncensored 变体。
var (
	edgySettings = []string{
		"a dystopian underground facility", "a blood-soaked battlefield", "a corrupt corporate tower",
		"a lawless wasteland", "a twisted psychological experiment", "a criminal underworld",
		"a post-apocalyptic city", "a dark web of conspiracies", "a violent gang territory",
		"a morally bankrupt institution", "a hellish nightmare realm", "a savage survival arena",
	}

	edgyPlotPoints = []string{
		"brutally confronts their demons", "makes a morally questionable choice", "betrays someone close",
		"discovers a horrifying truth", "commits an unforgivable act", "loses their humanity",
		"embraces their dark side", "destroys everything they love", "becomes the villain",
		"breaks every rule", "crosses the point of no return", "faces ultimate corruption",
	}

	edgyEmotions = []string{
		"ruthlessly determined", "psychologically broken", "violently angry", "desperately hopeful",
		"dangerously unstable", "morally conflicted", "coldly calculating", "deeply traumatized",
		"savagely vengeful", "completely unhinged", "darkly amused", "brutally honest",
	}

	edgyDialogueBank = map[string][]string{
		"ruthlessly determined": {"I'll do whatever it takes, no matter who gets hurt.", "Mercy is a weakness I can't afford."},
		"psychologically broken": {"I can't tell what's real anymore...", "The voices won't stop..."},
		"violently angry":        {"I'll tear this whole place apart!", "Someone's going to pay for this!"},
		"desperately hopeful":    {"There has to be another way... please...", "I refuse to believe it's hopeless."},
		"dangerously unstable":   {"Haha... this is getting interesting...", "Let's see how far we can push this."},
		"morally conflicted":     {"Is this who I've become?", "When did I stop caring about right and wrong?"},
	}

	edgyResponses = []string{
		"The game is rigged, but we're still playing like idiots.",
		"Morality is a luxury we can't fucking afford.",
		"Everyone has a breaking point, and we're way past ours.",
		"Trust is the first casualty of this shitshow.",
		"Sometimes the hero and villain are the same damn person.",
		"We're all going to hell, might as well enjoy the ride.",
		"Survival makes monsters of us all.",
	}

	edgyExtraLines = []string{
		"The line between hero and villain is thinner than you think.",
		"Everyone's got blood on their hands now.",
		"Survival changes people in fucked up ways.",
		"The system is broken, and we're the damn glitch.",
		"Sometimes the only way out is through hell itself.",
		"We've crossed lines we can never uncross.",
		"This world doesn't give a shit about good intentions.",
	}
)

// Builder 生成有序的场景序列。随机源和依赖由调用方注入。
type Builder struct {
	rng      *rand.Rand
	composer *dialogue.Composer
}

// NewBuilder 创建场景构建器，内部台词修饰共用同一个随机源。
func NewBuilder(rng *rand.Rand) *Builder {
	return &Builder{rng: rng, composer: dialogue.NewComposer(rng)}
}

// EdgyResult 是 edgy 路径的构建结果；Setting/PlotPoint 供标题摘要复用。
type EdgyResult struct {
	Scenes    []story.Scene
	Setting   string
	PlotPoint string
}

// BuildStructured 生成 8~12 个带叙事阶段标记的场景。
func (b *Builder) BuildStructured(prompt string, characters story.CharacterList, profiles map[string]story.Profile, analysis promptmeta.Analysis) []story.Scene {
	total := structuredMinScenes + b.rng.Intn(structuredMaxScenes-structuredMinScenes+1)
	scenes := make([]story.Scene, 0, total)

	for i := 0; i < total; i++ {
		sceneType := typeForIndex(i, total)
		lineCount := 2 + b.rng.Intn(3)
		lines := make([]story.DialogueLine, 0, lineCount)
		for j := 0; j < lineCount; j++ {
			speaker := characters[b.rng.Intn(len(characters))]
			base := pick(b.rng, sceneLineBank[sceneType])
			lines = append(lines, story.DialogueLine{
				Character: speaker,
				Text:      b.composer.Compose(base, analysis.PrimaryEmotion, profiles[speaker].Traits, false),
			})
		}

		scenes = append(scenes, story.Scene{
			SceneID:     i + 1,
			Description: b.structuredDescription(prompt, analysis),
			Dialogue:    lines,
			SceneType:   sceneType,
			Genre:       analysis.PrimaryGenre,
		})
	}

	return scenes
}

// typeForIndex 按下标划分叙事阶段：首场开场，末场收尾，
// 前70%为铺垫，其余为高潮。
func typeForIndex(i, total int) story.SceneType {
	switch {
	case i == 0:
		return story.SceneOpening
	case i == total-1:
		return story.SceneResolution
	case i < int(float64(total)*risingCutoff):
		return story.SceneRising
	default:
		return story.SceneClimax
	}
}

func (b *Builder) structuredDescription(prompt string, analysis promptmeta.Analysis) string {
	theme := prompt
	if len(analysis.Themes) > 0 {
		theme = analysis.Themes[b.rng.Intn(len(analysis.Themes))]
	}
	templates, ok := genreSceneTemplates[analysis.PrimaryGenre]
	if !ok {
		templates = genreSceneTemplates[story.DefaultGenre]
	}
	return fmt.Sprintf(pick(b.rng, templates), theme)
}

// BuildEdgy 生成 10~15 个无叙事标记的 edgy 场景。
// 开场与终场用固定模板，中段按随机情绪/情节组合。
func (b *Builder) BuildEdgy(prompt string, characters story.CharacterList) EdgyResult {
	total := edgyMinScenes + b.rng.Intn(edgyMaxScenes-edgyMinScenes+1)
	setting := pick(b.rng, edgySettings)
	plotPoint := pick(b.rng, edgyPlotPoints)
	lead := characters.Protagonist()

	scenes := make([]story.Scene, 0, total)
	for i := 0; i < total; i++ {
		var description string
		var lines []story.DialogueLine

		switch {
		case i == 0:
			description = fmt.Sprintf("Opening: %s enters %s, unaware they're about to descend into hell.", lead, setting)
			lines = []story.DialogueLine{
				{Character: lead, Text: fmt.Sprintf("Something's seriously %s with this place...", pick(b.rng, []string{"fucked up", "wrong", "off"}))},
				{Character: b.partner(characters), Text: "You have no idea what you've gotten yourself into, you naive bastard."},
			}
		case i == total-1:
			description = fmt.Sprintf("Finale: The brutal truth is revealed and %s must choose between their soul and survival.", lead)
			lines = []story.DialogueLine{
				{Character: lead, Text: fmt.Sprintf("So this is what I've become... a %s.", pick(b.rng, []string{"monster", "killer", "piece of shit"}))},
				{Character: b.partner(characters), Text: "Welcome to reality, asshole. Now you understand the price of power."},
			}
		default:
			emotion := pick(b.rng, edgyEmotions)
			plot := pick(b.rng, edgyPlotPoints)
			description = fmt.Sprintf("Scene %d: Feeling %s, %s %s while navigating the challenges ahead.", i+1, emotion, lead, plot)

			main := "Let's see what happens next."
			if bank, ok := edgyDialogueBank[emotion]; ok {
				main = pick(b.rng, bank)
			}
			lines = []story.DialogueLine{
				{Character: lead, Text: b.composer.Compose(main, story.EmotionNeutral, nil, true)},
				{Character: b.partner(characters), Text: pick(b.rng, edgyResponses)},
			}
			if b.rng.Float64() < extraLineChance {
				lines = append(lines, story.DialogueLine{
					Character: characters[b.rng.Intn(len(characters))],
					Text:      pick(b.rng, edgyExtraLines),
				})
			}
		}

		scenes = append(scenes, story.Scene{
			SceneID:     i + 1,
			Description: description,
			Dialogue:    lines,
		})
	}

	return EdgyResult{Scenes: scenes, Setting: setting, PlotPoint: plotPoint}
}

// partner 从 characters[1:] 中均匀抽取第二说话人，名单只有一人时退回主角。
// 开场和终场同样遵守这条规则。
func (b *Builder) partner(characters story.CharacterList) string {
	if len(characters) <= 1 {
		return characters.Protagonist()
	}
	return characters[1+b.rng.Intn(len(characters)-1)]
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}
