package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	LLM    LLMConfig
	Output OutputConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	llm, err := loadLLMConfig()
	if err != nil {
		return nil, err
	}

	output, err := loadOutputConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, LLM: llm, Output: output}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "5000"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":5000" 或 "127.0.0.1:5000"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// LLMConfig 描述大模型相关配置。
// 故事与分镜走同一端点,但温度各自独立:故事生成刻意调高到 1.2。
type LLMConfig struct {
	APIKey           string
	BaseURL          string
	Model            string
	StoryTemperature float32
	PanelTemperature float32
	MaxTokens        int
	Timeout          time.Duration
	RateLimit        float64
}

// Enabled 表示是否提供了必需的密钥。
func (c LLMConfig) Enabled() bool {
	return c.APIKey != ""
}

// NewStoryModel 创建故事生成用的模型实例。
func (c LLMConfig) NewStoryModel(ctx context.Context) (model.ChatModel, error) {
	return c.newChatModel(ctx, c.StoryTemperature)
}

// NewPanelModel 创建分镜描述用的模型实例。
func (c LLMConfig) NewPanelModel(ctx context.Context) (model.ChatModel, error) {
	return c.newChatModel(ctx, c.PanelTemperature)
}

func (c LLMConfig) newChatModel(ctx context.Context, temperature float32) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("OPENAI_API_KEY 缺失，无法创建模型实例")
	}

	maxTokens := c.MaxTokens
	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Model:       c.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		Timeout:     c.Timeout,
	})
}

func loadLLMConfig() (LLMConfig, error) {
	storyTemp, err := parseFloat32Env("LLM_STORY_TEMPERATURE", 1.2)
	if err != nil {
		return LLMConfig{}, err
	}

	panelTemp, err := parseFloat32Env("LLM_PANEL_TEMPERATURE", 0.8)
	if err != nil {
		return LLMConfig{}, err
	}

	maxTokens := 4000
	if override, err := parseOptionalIntEnv("LLM_MAX_TOKENS"); err != nil {
		return LLMConfig{}, err
	} else if override != nil {
		maxTokens = *override
	}

	timeoutSeconds := 30
	if override, err := parseOptionalIntEnv("LLM_TIMEOUT_SECONDS"); err != nil {
		return LLMConfig{}, err
	} else if override != nil {
		timeoutSeconds = *override
	}

	rateLimit := 1.0
	if override, err := parseOptionalFloatEnv("LLM_RATE_LIMIT"); err != nil {
		return LLMConfig{}, err
	} else if override != nil && *override > 0 {
		rateLimit = *override
	}

	return LLMConfig{
		APIKey:           strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		BaseURL:          getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		Model:            getEnvOrDefault("OPENAI_MODEL", "gpt-4-turbo-preview"),
		StoryTemperature: storyTemp,
		PanelTemperature: panelTemp,
		MaxTokens:        maxTokens,
		Timeout:          time.Duration(timeoutSeconds) * time.Second,
		RateLimit:        rateLimit,
	}, nil
}

// OutputConfig 描述生成产物的落盘配置。
type OutputConfig struct {
	Dir  string
	Seed *int64 // 固定随机种子,仅用于可复现的调试
}

func loadOutputConfig() (OutputConfig, error) {
	seed, err := parseOptionalInt64Env("RANDOM_SEED")
	if err != nil {
		return OutputConfig{}, err
	}

	return OutputConfig{
		Dir:  getEnvOrDefault("OUTPUT_DIR", "outputs"),
		Seed: seed,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseFloat32Env(key string, defaultValue float32) (float32, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return float32(val), nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalInt64Env(key string) (*int64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
