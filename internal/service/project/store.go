package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/z-manga/backend/internal/model/story"
	"github.com/zhouzirui/z-manga/backend/pkg/utils"
)

// Metadata 项目级元数据：生成结果落盘后的索引单位。
type Metadata struct {
	ProjectID string        `json:"project_id"`
	Title     string        `json:"title"`
	CreatedAt time.Time     `json:"created_at"`
	Scenes    []story.Scene `json:"scenes"`
}

// Store 基于文件系统的项目元数据存储。
type Store struct {
	dir string
}

// NewStore 创建存储，目录不存在时自动建立。
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create project dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save 持久化一个项目并返回其元数据。
func (s *Store) Save(title string, scenes []story.Scene) (*Metadata, error) {
	meta := &Metadata{
		ProjectID: uuid.NewString(),
		Title:     title,
		CreatedAt: time.Now().UTC(),
		Scenes:    scenes,
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode project: %w", err)
	}
	filename := fmt.Sprintf("%s_%s.json", utils.SanitizeFilename(title), meta.ProjectID)
	if err := os.WriteFile(filepath.Join(s.dir, filename), data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write project: %w", err)
	}
	return meta, nil
}

// Load 按项目ID查找元数据；文件名后缀携带ID,扫描目录即可定位。
func (s *Store) Load(projectID string) (*Metadata, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read project dir: %w", err)
	}
	suffix := "_" + projectID + ".json"
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read project: %w", err)
		}
		var meta Metadata
		if err := json.Unmarshal(data, &meta); err != nil {
			return nil, fmt.Errorf("failed to decode project: %w", err)
		}
		return &meta, nil
	}
	return nil, fmt.Errorf("project %s not found", projectID)
}
