package export

import (
	"archive/zip"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"

	_ "image/jpeg"
	_ "image/png"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"github.com/zhouzirui/z-manga/backend/internal/model/story"
	"github.com/zhouzirui/z-manga/backend/pkg/utils"
)

// A4 页面布局常量（pt）。
const (
	pageMargin    = 50.0
	titleFontSize = 24.0
	bodyFontSize  = 10.0
	lineHeight    = 15.0
	imageGap      = 20.0
)

// Assembler 把分镜记录装配为PDF或CBZ文件。
// 缺失的图片一律跳过，不会让整次导出失败。
type Assembler struct {
	outputDir string
}

// NewAssembler 创建导出器，输出目录不存在时按需创建。
func NewAssembler(outputDir string) *Assembler {
	return &Assembler{outputDir: outputDir}
}

// ToPDF 将分镜自上而下排进A4页面，空间不足时换页，
// 每张图下方逐行写入台词。返回生成文件的文件名。
func (a *Assembler) ToPDF(panels []story.PanelRecord, title string) (string, error) {
	if err := os.MkdirAll(a.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to prepare output dir: %w", err)
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pageWidth, pageHeight := pdf.GetPageSize()
	usableWidth := pageWidth - 2*pageMargin

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", titleFontSize)
	pdf.Text(pageMargin, pageMargin, title)

	y := pageMargin * 2
	for _, panel := range panels {
		width, height, ok := imageSize(panel.Path)
		if !ok {
			log.Printf("[export] skipping missing panel image %s", panel.Path)
			continue
		}

		scale := usableWidth / float64(width)
		drawHeight := float64(height) * scale

		if y+drawHeight > pageHeight-pageMargin {
			pdf.AddPage()
			y = pageMargin
		}

		pdf.ImageOptions(panel.Path, pageMargin, y, usableWidth, drawHeight, false, fpdf.ImageOptions{}, 0, "")
		y += drawHeight + imageGap

		pdf.SetFont("Helvetica", "", bodyFontSize)
		for _, line := range panel.Dialogue {
			if y > pageHeight-pageMargin {
				pdf.AddPage()
				y = pageMargin
			}
			pdf.Text(pageMargin, y, fmt.Sprintf("%s: %s", line.Character, line.Text))
			y += lineHeight
		}
		y += imageGap
	}

	filename := utils.UniqueFilename(title, "pdf")
	if err := pdf.OutputFileAndClose(filepath.Join(a.outputDir, filename)); err != nil {
		return "", fmt.Errorf("failed to write pdf: %w", err)
	}
	return filename, nil
}

// ToCBZ 把存在的分镜图按 %03d.png 顺序复制进临时目录再打包，
// 打包完成后清理临时目录。N张有效图恰好产出N个条目。
func (a *Assembler) ToCBZ(panels []story.PanelRecord, title string) (string, error) {
	if err := os.MkdirAll(a.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to prepare output dir: %w", err)
	}

	scratch := filepath.Join(a.outputDir, "cbz-"+uuid.NewString())
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return "", fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	index := 0
	for _, panel := range panels {
		if _, err := os.Stat(panel.Path); err != nil {
			log.Printf("[export] skipping missing panel image %s", panel.Path)
			continue
		}
		dest := filepath.Join(scratch, fmt.Sprintf("%03d.png", index))
		if err := copyFile(panel.Path, dest); err != nil {
			return "", fmt.Errorf("failed to stage panel %s: %w", panel.Path, err)
		}
		index++
	}

	filename := utils.UniqueFilename(title, "cbz")
	archivePath := filepath.Join(a.outputDir, filename)
	if err := writeZip(archivePath, scratch); err != nil {
		return "", err
	}
	return filename, nil
}

func writeZip(archivePath, dir string) error {
	out, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read scratch dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		src, err := os.Open(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to open staged image: %w", err)
		}
		w, err := zw.Create(entry.Name())
		if err != nil {
			src.Close()
			return fmt.Errorf("failed to add archive entry: %w", err)
		}
		if _, err := io.Copy(w, src); err != nil {
			src.Close()
			return fmt.Errorf("failed to write archive entry: %w", err)
		}
		src.Close()
	}
	return nil
}

// imageSize 返回图片的像素尺寸；文件缺失或无法解码时 ok=false。
func imageSize(path string) (width, height int, ok bool) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, false
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
