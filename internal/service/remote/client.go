package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/cloudwego/eino/components/model"
	"github.com/zhouzirui/z-manga/backend/internal/model/story"
)

// Error 标记远端生成边界上的失败：网络、解析、返回结构不合法。
// 调用方据此回退本地生成；客户端自身从不回退。
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("remote story %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

const chaosChance = 0.3

// 后处理阶段随机拼进场景描述的混乱句。
var chaosSentences = []string{
	"Suddenly, the fourth wall breaks and the character realizes they're in a manga.",
	"A completely random character appears and changes everything.",
	"The scene shifts to an alternate reality where everything is backwards.",
	"Time loops back and the character remembers dying in a previous timeline.",
	"The art style suddenly changes and characters comment on it.",
	"A narrator voice interrupts to mock the characters' decisions.",
}

const storySystemPrompt = `You are an EXTREMELY unhinged, uncensored manga story generator with NO LIMITS. Create the most twisted, shocking, unexpected content possible with:
- Heavy explicit language, swearing, and profanity
- Morally corrupt and psychologically damaged characters
- Shocking, disturbing plot twists that nobody would expect
- Intense violence, betrayal, and psychological horror
- Dark humor and satirical elements
- Completely unpredictable story developments
- Characters that break the fourth wall occasionally
- Meta-commentary on manga tropes while subverting them

DO NOT hold back AT ALL. Make it as wild, unhinged, and unexpected as possible.`

const panelSystemPrompt = `You are an expert manga artist who creates vivid, detailed panel descriptions for unhinged, dark content.
Focus on creating visually striking, disturbing, and emotionally intense descriptions.`

// Client 通过 eino 链调用 chat-completion 端点生成故事与分镜描述。
// 两条链使用各自温度配置的模型实例。
type Client struct {
	storyChain compose.Runnable[map[string]any, *schema.Message]
	panelChain compose.Runnable[map[string]any, *schema.Message]
	limiter    *rate.Limiter
}

// NewClient 用两个已配置好的聊天模型编译生成链。
func NewClient(ctx context.Context, storyModel, panelModel model.BaseChatModel, limiter *rate.Limiter) (*Client, error) {
	storyChain, err := buildChain(ctx, storyModel)
	if err != nil {
		return nil, fmt.Errorf("failed to compile story chain: %w", err)
	}
	panelChain, err := buildChain(ctx, panelModel)
	if err != nil {
		return nil, fmt.Errorf("failed to compile panel chain: %w", err)
	}
	return &Client{storyChain: storyChain, panelChain: panelChain, limiter: limiter}, nil
}

func buildChain(ctx context.Context, chatModel model.BaseChatModel) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(template)
	chain.AppendChatModel(chatModel)
	return chain.Compile(ctx)
}

// 远端返回的JSON结构。
type storyPayload struct {
	Title   string         `json:"title"`
	Summary string         `json:"summary"`
	Scenes  []scenePayload `json:"scenes"`
}

type scenePayload struct {
	SceneID     int                  `json:"scene_id"`
	Description string               `json:"description"`
	Dialogue    []story.DialogueLine `json:"dialogue"`
}

// GenerateUnhingedStory 请求远端生成 12~15 个场景的故事并解析为 Story。
// 任何失败都返回 *Error，由上层决定回退；rng 只用于混乱句后处理。
func (c *Client) GenerateUnhingedStory(ctx context.Context, rng *rand.Rand, promptText string, characters []string) (*story.Story, error) {
	if err := c.wait(ctx); err != nil {
		return nil, &Error{Op: "rate-limit", Err: err}
	}

	msg, err := c.storyChain.Invoke(ctx, map[string]any{
		"system": storySystemPrompt,
		"query":  buildStoryQuery(promptText, characters),
	})
	if err != nil {
		return nil, &Error{Op: "chat", Err: err}
	}

	var payload storyPayload
	if err := json.Unmarshal([]byte(extractJSON(msg.Content)), &payload); err != nil {
		return nil, &Error{Op: "parse", Err: err}
	}
	if payload.Title == "" || payload.Summary == "" || len(payload.Scenes) == 0 {
		return nil, &Error{Op: "schema", Err: fmt.Errorf("missing title, summary or scenes")}
	}

	result := &story.Story{
		Title:   payload.Title,
		Summary: payload.Summary,
		Scenes:  make([]story.Scene, 0, len(payload.Scenes)),
	}
	// 场景ID按到达顺序重排为1..N，不信任远端编号。
	for i, sc := range payload.Scenes {
		result.Scenes = append(result.Scenes, story.Scene{
			SceneID:     i + 1,
			Description: sc.Description,
			Dialogue:    sc.Dialogue,
		})
	}

	enhanceChaos(rng, result)
	return result, nil
}

func buildStoryQuery(promptText string, characters []string) string {
	return fmt.Sprintf(`Create the most UNHINGED, UNCENSORED manga story with 12-15 scenes based on: "%s"
Characters: %s

Requirements:
- Make it completely unpredictable and shocking
- Include heavy swearing and explicit language
- Add dark humor and twisted character interactions
- Include at least 3 major plot twists that nobody would see coming
- Make characters morally ambiguous or outright villainous
- Add meta-commentary where characters are aware they're in a manga
- Include psychological horror elements
- Make dialogue realistic with natural speech patterns and profanity

Format as JSON with:
- title: An extremely edgy, provocative title
- summary: A brief but shocking summary
- scenes: Array of 12-15 scene objects with:
  - scene_id: Number (1-based)
  - description: Detailed description of the twisted events
  - dialogue: Array of objects with "character" and "text" (include heavy swearing)

Respond with the JSON object only.`, promptText, strings.Join(characters, ", "))
}

// enhanceChaos 以30%概率给每个场景描述追加一条混乱句。
func enhanceChaos(rng *rand.Rand, st *story.Story) {
	for i := range st.Scenes {
		if rng.Float64() < chaosChance {
			st.Scenes[i].Description += " " + chaosSentences[rng.Intn(len(chaosSentences))]
		}
	}
}

// DescribePanel 请求远端润色分镜描述。
// 失败时直接返回原描述，分镜渲染从不因此失败。
func (c *Client) DescribePanel(ctx context.Context, sceneDescription string, dialogue []story.DialogueLine, style string) string {
	if err := c.wait(ctx); err != nil {
		return sceneDescription
	}

	var lines strings.Builder
	for _, d := range dialogue {
		fmt.Fprintf(&lines, "%s: %q\n", d.Character, d.Text)
	}

	query := fmt.Sprintf(`Create a detailed manga panel description for:

Scene: %s
Dialogue: %s
Style: %s

Make it visually striking. Include character expressions, dynamic positioning and camera angles, atmospheric elements, visual effects, mood lighting and shadows, and panel composition that enhances the drama. The description should be detailed enough for an AI image generator.`, sceneDescription, lines.String(), style)

	msg, err := c.panelChain.Invoke(ctx, map[string]any{
		"system": panelSystemPrompt,
		"query":  query,
	})
	if err != nil {
		log.Printf("[remote] panel description failed, using original: %v", err)
		return sceneDescription
	}
	if strings.TrimSpace(msg.Content) == "" {
		return sceneDescription
	}
	return msg.Content
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// extractJSON 从模型输出中截取第一个完整的JSON对象，
// 容忍JSON前后夹杂的多余文本或代码块围栏。
func extractJSON(s string) string {
	raw := strings.TrimSpace(s)
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
