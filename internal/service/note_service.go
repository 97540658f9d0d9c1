package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/haierkeys/flownote-service/internal/dao"
	"github.com/haierkeys/flownote-service/internal/domain"
	"github.com/haierkeys/flownote-service/internal/dto"
	"github.com/haierkeys/flownote-service/pkg/app"
	"github.com/haierkeys/flownote-service/pkg/code"
	"github.com/haierkeys/flownote-service/pkg/convert"
	"github.com/haierkeys/flownote-service/pkg/logger"
	"github.com/haierkeys/flownote-service/pkg/tagtree"
	"github.com/haierkeys/flownote-service/pkg/timex"
	"github.com/haierkeys/flownote-service/pkg/util"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// NoteService defines the note business service interface
// NoteService 定义笔记业务服务接口
type NoteService interface {
	// Create 创建笔记，标题与标签由内容推导
	Create(ctx context.Context, identity domain.Identity, params *dto.NoteCreateRequest) (*dto.NoteSaveResultDTO, error)
	// Update 更新笔记，保留创建时间
	Update(ctx context.Context, identity domain.Identity, params *dto.NoteUpdateRequest) (*dto.NoteSaveResultDTO, error)
	// Delete 删除笔记
	Delete(ctx context.Context, identity domain.Identity, id string) error
	// Get 获取单条笔记
	Get(ctx context.Context, identity domain.Identity, id string) (*dto.NoteDTO, error)
	// List 按标签与关键词过滤并分页，按创建时间倒序
	List(ctx context.Context, identity domain.Identity, filter *dto.NoteListFilter, pager *app.Pager) ([]*dto.NoteDTO, int, error)
	// AllTags 全部笔记标签的有序并集
	AllTags(ctx context.Context, identity domain.Identity) ([]string, error)
	// TagTree 标签层级树
	TagTree(ctx context.Context, identity domain.Identity) (*tagtree.Forest, error)
	// Render 解析笔记中的引用
	Render(ctx context.Context, identity domain.Identity, id string) (*dto.NoteRenderDTO, error)
	// Backlinks 引用了该笔记的其他笔记
	Backlinks(ctx context.Context, identity domain.Identity, id string) ([]*dto.NoteDTO, error)
	// Activity 最近五周的活跃度网格
	Activity(ctx context.Context, identity domain.Identity, now time.Time) (*dto.ActivityDTO, error)
	// Export 导出全部笔记为 JSON 文件
	Export(ctx context.Context, identity domain.Identity, now time.Time) (*dto.ExportFileDTO, error)
}

// noteService implements NoteService
type noteService struct {
	router  *backendRouter
	tagger  TaggingService
	config  NotesServiceConfig
	metrics *Metrics
	logger  *zap.Logger
	sf      singleflight.Group
	md      goldmark.Markdown
	clock   func() time.Time
}

// NewNoteService creates a NoteService instance
// local serves anonymous identities, remote serves verified ones (see NotesServiceConfig.Persistence)
// NewNoteService 创建 NoteService 实例
func NewNoteService(local, remote domain.NoteRepository, tagger TaggingService, cfg NotesServiceConfig, metrics *Metrics, lg *zap.Logger) NoteService {
	if lg == nil {
		lg = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &noteService{
		router:  newBackendRouter(cfg.Persistence, local, remote),
		tagger:  tagger,
		config:  cfg,
		metrics: metrics,
		logger:  lg,
		md:      goldmark.New(goldmark.WithRendererOptions(html.WithHardWraps())),
		clock:   func() time.Time { return time.Time(timex.Now()) },
	}
}

// ToNoteDTO 将领域模型转换为 DTO
func ToNoteDTO(n *domain.Note) *dto.NoteDTO {
	if n == nil {
		return nil
	}
	out := &dto.NoteDTO{}
	if err := convert.StructAssign(n, out); err != nil {
		out.ID, out.Title, out.Content, out.ImageDataURI = n.ID, n.Title, n.Content, n.ImageDataURI
		out.Tags = append([]string{}, n.Tags...)
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	out.CreatedAt = timex.Time(n.CreatedAt)
	out.UpdatedAt = timex.Time(n.UpdatedAt)
	return out
}

func toNoteDTOs(notes []*domain.Note) []*dto.NoteDTO {
	out := make([]*dto.NoteDTO, 0, len(notes))
	for _, n := range notes {
		out = append(out, ToNoteDTO(n))
	}
	return out
}

// deriveTags returns the tags to store for content plus the tagging outcome
// AI failure never blocks the save: manual tags are kept and the outcome says why
func (s *noteService) deriveTags(ctx context.Context, content string) ([]string, string, string) {
	manual := util.ExtractTags(content)
	if s.tagger == nil {
		return manual, dto.TaggingStatusDisabled, ""
	}

	suggested, err := s.tagger.Suggest(ctx, content)
	switch {
	case errors.Is(err, ErrTaggingDisabled):
		s.metrics.AITagging.WithLabelValues(dto.TaggingStatusDisabled).Inc()
		return manual, dto.TaggingStatusDisabled, ""
	case err != nil:
		s.metrics.AITagging.WithLabelValues(dto.TaggingStatusFailed).Inc()
		s.logger.Warn("ai tagging failed, keeping manual tags",
			zap.Strings("manualTags", manual),
			zap.String(logger.FieldMethod, "noteService.deriveTags"),
			zap.Error(err),
		)
		return manual, dto.TaggingStatusFailed, taggingFailedMessage(manual)
	}

	valid := make([]string, 0, len(suggested))
	for _, tag := range suggested {
		if t, ok := util.NormalizeTag(tag); ok {
			valid = append(valid, t)
		}
	}
	s.metrics.AITagging.WithLabelValues(dto.TaggingStatusOK).Inc()
	return util.MergeTags(manual, valid), dto.TaggingStatusOK, ""
}

func taggingFailedMessage(manual []string) string {
	if len(manual) == 0 {
		return "Note saved without tags. AI tagging failed."
	}
	return fmt.Sprintf("Note saved with manually extracted tags: %s. AI tagging failed.", strings.Join(manual, ", "))
}

func isBlankNote(content, image string) bool {
	return strings.TrimSpace(content) == "" && image == ""
}

// Create 创建笔记
func (s *noteService) Create(ctx context.Context, identity domain.Identity, params *dto.NoteCreateRequest) (*dto.NoteSaveResultDTO, error) {
	repo, backend, err := s.router.pick(identity)
	if err != nil {
		return nil, err
	}
	if isBlankNote(params.Content, params.ImageDataURI) {
		return nil, code.ErrorNoteContentEmpty
	}

	tags, status, message := s.deriveTags(ctx, params.Content)
	now := s.clock()
	note := &domain.Note{
		ID:           uuid.NewString(),
		UID:          identity.UID,
		Title:        util.DeriveTitle(params.Content),
		Content:      params.Content,
		Tags:         tags,
		ImageDataURI: params.ImageDataURI,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	saved, err := repo.Create(ctx, note, identity)
	if err != nil {
		s.logger.Error("note create failed",
			zap.Int64(logger.FieldUID, identity.UID),
			zap.String(logger.FieldBackend, backend),
			zap.Error(err),
		)
		return nil, code.ErrorNoteSaveFailed.WithDetails(err.Error())
	}
	s.forget(identity, backend)
	s.metrics.NotesSaved.WithLabelValues(backend, "create").Inc()

	return &dto.NoteSaveResultDTO{Note: ToNoteDTO(saved), TaggingStatus: status, TaggingMessage: message}, nil
}

// Update 更新笔记
func (s *noteService) Update(ctx context.Context, identity domain.Identity, params *dto.NoteUpdateRequest) (*dto.NoteSaveResultDTO, error) {
	repo, backend, err := s.router.pick(identity)
	if err != nil {
		return nil, err
	}
	if isBlankNote(params.Content, params.ImageDataURI) {
		return nil, code.ErrorNoteContentEmpty
	}

	existing, err := repo.GetByID(ctx, params.ID, identity)
	if err != nil {
		return nil, s.mapRepoError(err, code.ErrorDBQuery)
	}

	tags, status, message := s.deriveTags(ctx, params.Content)
	note := &domain.Note{
		ID:           existing.ID,
		UID:          identity.UID,
		Title:        util.DeriveTitle(params.Content),
		Content:      params.Content,
		Tags:         tags,
		ImageDataURI: params.ImageDataURI,
		CreatedAt:    existing.CreatedAt,
		UpdatedAt:    s.clock(),
	}

	saved, err := repo.Update(ctx, note, identity)
	if err != nil {
		s.logger.Error("note update failed",
			zap.Int64(logger.FieldUID, identity.UID),
			zap.String(logger.FieldNoteID, params.ID),
			zap.String(logger.FieldBackend, backend),
			zap.Error(err),
		)
		return nil, s.mapRepoError(err, code.ErrorNoteSaveFailed)
	}
	s.forget(identity, backend)
	s.metrics.NotesSaved.WithLabelValues(backend, "update").Inc()

	return &dto.NoteSaveResultDTO{Note: ToNoteDTO(saved), TaggingStatus: status, TaggingMessage: message}, nil
}

// Delete 删除笔记
func (s *noteService) Delete(ctx context.Context, identity domain.Identity, id string) error {
	repo, backend, err := s.router.pick(identity)
	if err != nil {
		return err
	}
	if err := repo.Delete(ctx, id, identity); err != nil {
		return s.mapRepoError(err, code.ErrorNoteDeleteFailed)
	}
	s.forget(identity, backend)
	s.metrics.NotesDeleted.WithLabelValues(backend).Inc()
	return nil
}

// Get 获取单条笔记
func (s *noteService) Get(ctx context.Context, identity domain.Identity, id string) (*dto.NoteDTO, error) {
	repo, _, err := s.router.pick(identity)
	if err != nil {
		return nil, err
	}
	note, err := repo.GetByID(ctx, id, identity)
	if err != nil {
		return nil, s.mapRepoError(err, code.ErrorDBQuery)
	}
	return ToNoteDTO(note), nil
}

// List 过滤并分页
func (s *noteService) List(ctx context.Context, identity domain.Identity, filter *dto.NoteListFilter, pager *app.Pager) ([]*dto.NoteDTO, int, error) {
	notes, err := s.collection(ctx, identity)
	if err != nil {
		return nil, 0, err
	}

	matched := FilterNotes(notes, filter)
	total := len(matched)

	if pager != nil && pager.PageSize > 0 {
		start := app.GetPageOffset(pager.Page, pager.PageSize)
		if start > total {
			start = total
		}
		end := start + pager.PageSize
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}
	return toNoteDTOs(matched), total, nil
}

// FilterNotes keeps notes carrying every filter tag whose content or title contains the keyword
// FilterNotes 保留包含全部过滤标签且内容或标题包含关键词的笔记
func FilterNotes(notes []*domain.Note, filter *dto.NoteListFilter) []*domain.Note {
	if filter == nil {
		return notes
	}
	keyword := strings.ToLower(strings.TrimSpace(filter.Keyword))
	out := make([]*domain.Note, 0, len(notes))
	for _, n := range notes {
		if !n.HasAllTags(filter.Tags) {
			continue
		}
		if keyword != "" &&
			!strings.Contains(strings.ToLower(n.Content), keyword) &&
			!strings.Contains(strings.ToLower(n.Title), keyword) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// AllTags 全部标签
func (s *noteService) AllTags(ctx context.Context, identity domain.Identity) ([]string, error) {
	notes, err := s.collection(ctx, identity)
	if err != nil {
		return nil, err
	}
	return collectTags(notes), nil
}

func collectTags(notes []*domain.Note) []string {
	lists := make([][]string, 0, len(notes))
	for _, n := range notes {
		lists = append(lists, n.Tags)
	}
	return util.MergeTags(lists...)
}

// TagTree 标签树
func (s *noteService) TagTree(ctx context.Context, identity domain.Identity) (*tagtree.Forest, error) {
	tags, err := s.AllTags(ctx, identity)
	if err != nil {
		return nil, err
	}
	return tagtree.Build(tags, s.config.SpecialTags), nil
}

// Backlinks 引用了 id 的笔记
func (s *noteService) Backlinks(ctx context.Context, identity domain.Identity, id string) ([]*dto.NoteDTO, error) {
	notes, err := s.collection(ctx, identity)
	if err != nil {
		return nil, err
	}
	var linking []*domain.Note
	for _, n := range notes {
		if n.ID == id {
			continue
		}
		for _, mentioned := range util.MentionedIDs(n.Content) {
			if mentioned == id {
				linking = append(linking, n)
				break
			}
		}
	}
	return toNoteDTOs(linking), nil
}

// collection loads the whole collection once for concurrent readers of the same owner
// Callers must treat the returned notes as read-only
func (s *noteService) collection(ctx context.Context, identity domain.Identity) ([]*domain.Note, error) {
	repo, backend, err := s.router.pick(identity)
	if err != nil {
		return nil, err
	}
	// the shared load outlives any single caller; each caller waits on its own ctx
	// 共享加载不随单个调用方取消，每个调用方按自身 ctx 等待
	ch := s.sf.DoChan(collectionKey(identity, backend), func() (any, error) {
		return repo.List(context.WithoutCancel(ctx), identity)
	})

	var v any
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case res := <-ch:
		v, err = res.Val, res.Err
	}
	if err != nil {
		s.logger.Error("note list failed",
			zap.Int64(logger.FieldUID, identity.UID),
			zap.String(logger.FieldBackend, backend),
			zap.Error(err),
		)
		return nil, code.ErrorNoteListFailed.WithDetails(err.Error())
	}
	return v.([]*domain.Note), nil
}

func collectionKey(identity domain.Identity, backend string) string {
	if backend == BackendLocal {
		return backend + ":" + dao.BlobKey(identity)
	}
	return fmt.Sprintf("%s:%d", backend, identity.UID)
}

// forget drops an in-flight collection load so later readers see the write
func (s *noteService) forget(identity domain.Identity, backend string) {
	s.sf.Forget(collectionKey(identity, backend))
}

// mapRepoError turns repository errors into result codes
func (s *noteService) mapRepoError(err error, fallback *code.Code) error {
	if errors.Is(err, domain.ErrNoteNotFound) {
		return code.ErrorNoteNotFound
	}
	var c *code.Code
	if errors.As(err, &c) {
		return c
	}
	return fallback.WithDetails(err.Error())
}
