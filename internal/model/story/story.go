package story

import "time"

// Genre 表示故事的主题类型，取值封闭。
type Genre string

const (
	GenreAction  Genre = "action"
	GenreRomance Genre = "romance"
	GenreMystery Genre = "mystery"
	GenreFantasy Genre = "fantasy"
	GenreHorror  Genre = "horror"
	GenreComedy  Genre = "comedy"
	GenreDrama   Genre = "drama"
	GenreSciFi   Genre = "sci-fi"
)

// DefaultGenre 是无法识别类型时的统一回退值。
const DefaultGenre = GenreDrama

// Genres returns all genres in canonical declaration order. Score
// tie-breaking depends on this order.
func Genres() []Genre {
	return []Genre{
		GenreAction, GenreRomance, GenreMystery, GenreFantasy,
		GenreHorror, GenreComedy, GenreDrama, GenreSciFi,
	}
}

// Emotion 表示提示词中识别出的主导情绪。
type Emotion string

const (
	EmotionAngry      Emotion = "angry"
	EmotionSad        Emotion = "sad"
	EmotionHappy      Emotion = "happy"
	EmotionFearful    Emotion = "fearful"
	EmotionSurprised  Emotion = "surprised"
	EmotionDetermined Emotion = "determined"
	EmotionNeutral    Emotion = "neutral"
)

// Emotions returns the scorable emotions in canonical order. Neutral is
// the default, never scored.
func Emotions() []Emotion {
	return []Emotion{
		EmotionAngry, EmotionSad, EmotionHappy,
		EmotionFearful, EmotionSurprised, EmotionDetermined,
	}
}

// SceneType 标记结构化生成路径下场景在叙事弧中的位置。
type SceneType string

const (
	SceneOpening    SceneType = "opening"
	SceneRising     SceneType = "rising"
	SceneClimax     SceneType = "climax"
	SceneResolution SceneType = "resolution"
)

// DialogueLine 是一格漫画中的一句台词。
type DialogueLine struct {
	Character string `json:"character"`
	Text      string `json:"text"`
}

// Scene 是故事的基本单元。SceneID 始终等于下标+1。
// SceneType 仅结构化路径填充，模板/edgy 路径留空。
type Scene struct {
	SceneID     int            `json:"scene_id"`
	Description string         `json:"description"`
	Dialogue    []DialogueLine `json:"dialogue"`
	SceneType   SceneType      `json:"scene_type,omitempty"`
	Genre       Genre          `json:"genre,omitempty"`
}

// Metadata 附带生成统计，只读信息，不影响生成结果。
type Metadata struct {
	SceneCount         int       `json:"scene_count"`
	CharacterCount     int       `json:"character_count"`
	TotalDialogueLines int       `json:"total_dialogue_lines"`
	AvgDialogueLines   float64   `json:"avg_dialogue_lines_per_scene"`
	ReadingTimeMinutes float64   `json:"estimated_reading_time_minutes"`
	PageRangeMin       int       `json:"estimated_page_min"`
	PageRangeMax       int       `json:"estimated_page_max"`
	ComplexityScore    int       `json:"complexity_score"`
	Themes             []string  `json:"detected_themes,omitempty"`
	Sentiment          string    `json:"prompt_sentiment,omitempty"`
	Generator          string    `json:"generator"`
	GeneratedAt        time.Time `json:"generated_at"`
}

// Story 是一次生成请求的完整结果，返回后不再修改。
type Story struct {
	Title             string    `json:"title"`
	Summary           string    `json:"summary"`
	Scenes            []Scene   `json:"scenes"`
	Characters        []string  `json:"characters,omitempty"`
	CharacterProfiles []Profile `json:"character_profiles,omitempty"`
	Metadata          *Metadata `json:"metadata,omitempty"`
}

// PanelRecord 是导出接口的输入单元：一张已生成的图加若干台词。
// 调用方持有，导出器只读。
type PanelRecord struct {
	Path     string         `json:"path"`
	Dialogue []DialogueLine `json:"dialogue,omitempty"`
}
