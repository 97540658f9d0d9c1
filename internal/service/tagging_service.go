package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/haierkeys/flownote-service/pkg/logger"
	"github.com/haierkeys/flownote-service/pkg/util"
	"github.com/haierkeys/flownote-service/pkg/workerpool"

	"github.com/bytedance/sonic"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ErrTaggingDisabled AI tagging is switched off; callers keep the manual tags silently
// ErrTaggingDisabled AI 标签已关闭，调用方静默使用手动标签
var ErrTaggingDisabled = errors.New("ai tagging is disabled")

// TaggingConfig AI tagging configuration
// TaggingConfig AI 标签配置
type TaggingConfig struct {
	Enabled bool          // Whether AI tagging runs // 是否启用 AI 标签
	BaseURL string        // OpenAI-compatible endpoint, empty for the official API // 兼容 OpenAI 的接口地址
	APIKey  string        // API key // 接口密钥
	Model   string        // Chat model name // 对话模型名称
	MaxTags int           // Upper bound on suggestions kept // 保留的建议标签上限
	Timeout time.Duration // Per call timeout, 0 uses the request deadline only // 单次调用超时
}

const (
	defaultTaggingModel = "gpt-4o-mini"
	defaultMaxTags      = 5
	maxTaggingInput     = 4000
)

const taggingPrompt = `You label short personal notes.
Reply with only a JSON array of at most %d tags, for example ["work/projects","ideas"].
Each tag is a short word or a slash-delimited path from general to specific.
Tags contain no spaces and no '#'. Use the language the note is written in.`

// ChatCompleter the part of the OpenAI client used for tagging
// ChatCompleter 标签功能使用的 OpenAI 客户端接口
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// TaggingService suggests tags for note text
// TaggingService 为笔记文本推荐标签
type TaggingService interface {
	// Suggest returns normalized tag suggestions for text
	// Suggest 返回规范化后的推荐标签
	Suggest(ctx context.Context, text string) ([]string, error)
}

type taggingService struct {
	cfg    TaggingConfig
	client ChatCompleter
	pool   *workerpool.Pool
	logger *zap.Logger
}

// NewTaggingService builds the OpenAI-backed tagger, or a disabled one when the config says so
// NewTaggingService 创建基于 OpenAI 的标签服务，未启用时返回禁用实现
func NewTaggingService(cfg TaggingConfig, pool *workerpool.Pool, lg *zap.Logger) TaggingService {
	if !cfg.Enabled || cfg.APIKey == "" {
		return NewTaggingServiceWithClient(cfg, nil, pool, lg)
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return NewTaggingServiceWithClient(cfg, openai.NewClientWithConfig(clientConfig), pool, lg)
}

// NewTaggingServiceWithClient uses client for completions; a nil client disables tagging
func NewTaggingServiceWithClient(cfg TaggingConfig, client ChatCompleter, pool *workerpool.Pool, lg *zap.Logger) TaggingService {
	if cfg.Model == "" {
		cfg.Model = defaultTaggingModel
	}
	if cfg.MaxTags <= 0 {
		cfg.MaxTags = defaultMaxTags
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &taggingService{cfg: cfg, client: client, pool: pool, logger: lg}
}

// Suggest 调用模型推荐标签，通过工作池限制并发
func (s *taggingService) Suggest(ctx context.Context, text string) ([]string, error) {
	if s.client == nil {
		return nil, ErrTaggingDisabled
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}, nil
	}
	if r := []rune(text); len(r) > maxTaggingInput {
		text = string(r[:maxTaggingInput])
	}

	call := func(ctx context.Context) ([]string, error) {
		if s.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
			defer cancel()
		}
		return s.complete(ctx, text)
	}
	if s.pool == nil {
		return call(ctx)
	}
	return workerpool.Call(ctx, s.pool, call)
}

func (s *taggingService) complete(ctx context.Context, text string) ([]string, error) {
	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(taggingPrompt, s.cfg.MaxTags)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("tagging completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("tagging completion: empty response")
	}

	tags := ParseTagSuggestions(resp.Choices[0].Message.Content, s.cfg.MaxTags)
	s.logger.Debug("ai tagging done",
		zap.Int("tags", len(tags)),
		zap.Duration(logger.FieldDuration, time.Since(start)),
	)
	return tags, nil
}

// ParseTagSuggestions reads a model reply leniently: a JSON array when one is present,
// otherwise a comma or newline separated list. Invalid tags are dropped.
// ParseTagSuggestions 宽松解析模型回复：优先 JSON 数组，否则按逗号或换行拆分，丢弃无效标签
func ParseTagSuggestions(reply string, limit int) []string {
	var raw []string
	if start, end := strings.Index(reply, "["), strings.LastIndex(reply, "]"); start >= 0 && end > start {
		if err := sonic.UnmarshalString(reply[start:end+1], &raw); err != nil {
			raw = nil
		}
	}
	if raw == nil {
		cleaned := strings.NewReplacer("```json", "", "```", "", "[", "", "]", "").Replace(reply)
		raw = strings.FieldsFunc(cleaned, func(r rune) bool {
			return r == ',' || r == '\n' || r == '，' || r == '、'
		})
	}

	tags := []string{}
	seen := make(map[string]struct{})
	for _, item := range raw {
		item = strings.TrimSpace(item)
		item = strings.TrimLeft(item, "-*• ")
		item = strings.Trim(item, `"'`+"`")
		tag, ok := util.NormalizeTag(item)
		if !ok {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
		if limit > 0 && len(tags) == limit {
			break
		}
	}
	return tags
}
