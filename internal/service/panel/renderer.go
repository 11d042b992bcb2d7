package panel

import (
	"context"
	"fmt"
	"image/color"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fogleman/gg"

	"github.com/zhouzirui/z-manga/backend/internal/model/story"
	"github.com/zhouzirui/z-manga/backend/pkg/utils"
)

// 画布尺寸沿用产品既定的 800×600 分镜规格。
const (
	panelWidth  = 800
	panelHeight = 600
)

// Describer 抽象远端分镜描述润色；实现必须在失败时原样返回输入。
type Describer interface {
	DescribePanel(ctx context.Context, sceneDescription string, dialogue []story.DialogueLine, style string) string
}

// Renderer 绘制占位分镜图：真实图像合成接入前的替身。
type Renderer struct {
	outputDir string
	describer Describer // 可为nil：跳过润色
}

// NewRenderer 创建渲染器。
func NewRenderer(outputDir string, describer Describer) *Renderer {
	return &Renderer{outputDir: outputDir, describer: describer}
}

// Render 生成一张占位分镜PNG并返回文件名。
// 描述里出现 action/dialogue 关键词时切换对应的背景风格。
func (r *Renderer) Render(ctx context.Context, sceneDescription string, dialogues []story.DialogueLine, unhinged bool) (string, error) {
	if r.describer != nil {
		style := "manga"
		if unhinged {
			style = "dark"
		}
		if enhanced := r.describer.DescribePanel(ctx, sceneDescription, dialogues, style); enhanced != "" {
			sceneDescription = enhanced
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	dc := gg.NewContext(panelWidth, panelHeight)
	r.drawBackground(dc, rng, sceneDescription)
	r.drawSilhouettes(dc, len(dialogues))
	r.drawSpeechBubbles(dc, dialogues)
	r.drawCaption(dc, sceneDescription)
	drawBorder(dc)

	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to prepare output dir: %w", err)
	}
	filename := utils.UniqueFilename("panel", "png")
	if err := dc.SavePNG(filepath.Join(r.outputDir, filename)); err != nil {
		return "", fmt.Errorf("failed to save panel: %w", err)
	}
	return filename, nil
}

func (r *Renderer) drawBackground(dc *gg.Context, rng *rand.Rand, description string) {
	lowered := strings.ToLower(description)

	switch {
	case strings.Contains(lowered, "action"):
		// 动作场景：白底加速度线。
		dc.SetRGB255(255, 255, 255)
		dc.Clear()
		dc.SetRGB255(0, 0, 0)
		dc.SetLineWidth(1)
		for i := 0; i < 50; i++ {
			dc.DrawLine(
				float64(rng.Intn(panelWidth)), float64(rng.Intn(panelHeight)),
				float64(rng.Intn(panelWidth)), float64(rng.Intn(panelHeight)),
			)
			dc.Stroke()
		}
	case strings.Contains(lowered, "dialogue"):
		// 对话场景：素净的浅灰底。
		dc.SetRGB255(240, 240, 240)
		dc.Clear()
	default:
		// 默认：渐变底加淡色块，模拟漫画分镜氛围。
		gradient := gg.NewLinearGradient(0, 0, panelWidth, panelHeight)
		gradient.AddColorStop(0, color.RGBA{R: 26, G: 26, B: 102, A: 255})
		gradient.AddColorStop(1, color.RGBA{R: 230, G: 128, B: 102, A: 255})
		dc.SetFillStyle(gradient)
		dc.DrawRectangle(0, 0, panelWidth, panelHeight)
		dc.Fill()

		for i := 0; i < 10; i++ {
			x := float64(rng.Intn(panelWidth))
			y := float64(rng.Intn(panelHeight))
			w := float64(50 + rng.Intn(150))
			h := float64(50 + rng.Intn(150))
			dc.SetRGBA255(220+rng.Intn(30), 220+rng.Intn(30), 220+rng.Intn(30), 90)
			dc.DrawRectangle(x, y, w, h)
			dc.Fill()
		}
	}
}

// drawSilhouettes 画至多3个角色剪影：椭圆头加矩形身。
func (r *Renderer) drawSilhouettes(dc *gg.Context, dialogueCount int) {
	count := dialogueCount
	if count == 0 {
		count = 2
	}
	if count > 3 {
		count = 3
	}

	dc.SetRGB255(0, 0, 0)
	baseline := float64(panelHeight - 150)
	for i := 0; i < count; i++ {
		x := float64(panelWidth) / float64(count+1) * float64(i+1)
		dc.DrawEllipse(x, baseline-70, 30, 30)
		dc.Fill()
		dc.DrawRectangle(x-40, baseline-40, 80, 140)
		dc.Fill()
	}
}

func (r *Renderer) drawSpeechBubbles(dc *gg.Context, dialogues []story.DialogueLine) {
	for i, line := range dialogues {
		if i == 3 {
			break
		}
		text := fmt.Sprintf("%s: %s", line.Character, line.Text)
		bubbleWidth := float64(len(text) * 8)
		if bubbleWidth > 300 {
			bubbleWidth = 300
		}
		cx := float64(panelWidth)/4 + float64(i)*float64(panelWidth)/4
		cy := float64(100 + i*50)

		dc.SetRGB255(255, 255, 255)
		dc.DrawEllipse(cx, cy, bubbleWidth/2, 40)
		dc.Fill()
		dc.SetRGB255(0, 0, 0)
		dc.SetLineWidth(2)
		dc.DrawEllipse(cx, cy, bubbleWidth/2, 40)
		dc.Stroke()
		dc.DrawStringAnchored(truncate(text, 40), cx, cy, 0.5, 0.5)
	}
}

func (r *Renderer) drawCaption(dc *gg.Context, description string) {
	dc.SetRGB255(255, 255, 255)
	dc.DrawRectangle(10, panelHeight-30, panelWidth-20, 25)
	dc.Fill()
	dc.SetRGB255(0, 0, 0)
	dc.SetLineWidth(1)
	dc.DrawRectangle(10, panelHeight-30, panelWidth-20, 25)
	dc.Stroke()
	dc.DrawString(truncate(description, 50), 15, panelHeight-12)
}

func drawBorder(dc *gg.Context) {
	dc.SetRGB255(0, 0, 0)
	dc.SetLineWidth(3)
	dc.DrawRectangle(0, 0, panelWidth, panelHeight)
	dc.Stroke()
}

// ErrorPanel 生成粉底错误占位图，保证分镜接口总有可渲染产物。
func (r *Renderer) ErrorPanel() (string, error) {
	dc := gg.NewContext(panelWidth, panelHeight)
	dc.SetRGB255(255, 200, 200)
	dc.Clear()

	dc.SetRGB255(255, 255, 255)
	dc.DrawRectangle(100, 250, 600, 100)
	dc.Fill()
	dc.SetRGB255(0, 0, 0)
	dc.SetLineWidth(1)
	dc.DrawRectangle(100, 250, 600, 100)
	dc.Stroke()
	dc.DrawStringAnchored("Error generating panel", panelWidth/2, panelHeight/2, 0.5, 0.5)

	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to prepare output dir: %w", err)
	}
	filename := utils.UniqueFilename("error_panel", "png")
	if err := dc.SavePNG(filepath.Join(r.outputDir, filename)); err != nil {
		return "", fmt.Errorf("failed to save error panel: %w", err)
	}
	return filename, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
