package dao

import (
	"context"
	"strconv"
	"time"

	"github.com/haierkeys/flownote-service/internal/domain"
	"github.com/haierkeys/flownote-service/internal/model"
	"github.com/haierkeys/flownote-service/pkg/logger"
	"github.com/haierkeys/flownote-service/pkg/timex"
	"github.com/haierkeys/flownote-service/pkg/util"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// noteRepository 实现 domain.NoteRepository 接口（远程数据库）
type noteRepository struct {
	dao             *Dao
	customPrefixKey string
}

// NewNoteRepository 创建远程 NoteRepository 实例
func NewNoteRepository(dao *Dao) *noteRepository {
	return &noteRepository{dao: dao, customPrefixKey: "user_note_"}
}

var (
	_ domain.NoteRepository      = (*noteRepository)(nil)
	_ domain.NoteOwnerRepository = (*noteRepository)(nil)
)

func (r *noteRepository) GetKey(uid int64) string {
	return r.customPrefixKey + strconv.FormatInt(uid, 10)
}

// db 获取已迁移的数据库连接
func (r *noteRepository) db(ctx context.Context) *gorm.DB {
	return r.dao.migrateOnce("note#migrated", func(g *gorm.DB) error {
		return model.AutoMigrate(g, "Note")
	}).WithContext(ctx)
}

// decodeTags turns the tags_json column back into a tag list
// A malformed column falls back to the tags found in content
func (r *noteRepository) decodeTags(m *model.Note) []string {
	if m.TagsJSON == "" {
		return []string{}
	}
	var tags []string
	if err := sonic.UnmarshalString(m.TagsJSON, &tags); err != nil {
		r.dao.Logger().Warn("malformed tags_json, re-extracting from content",
			zap.String(logger.FieldNoteID, m.ID),
			zap.Int64(logger.FieldUID, m.UID),
			zap.String(logger.FieldMethod, "noteRepository.decodeTags"),
			zap.Error(err),
		)
		return util.ExtractTags(m.Content)
	}
	valid := make([]string, 0, len(tags))
	for _, tag := range tags {
		if t, ok := util.NormalizeTag(tag); ok {
			valid = append(valid, t)
		}
	}
	return util.MergeTags(valid)
}

// toDomain 将数据库模型转换为领域模型
func (r *noteRepository) toDomain(m *model.Note) *domain.Note {
	if m == nil {
		return nil
	}
	return &domain.Note{
		ID:           m.ID,
		UID:          m.UID,
		Title:        m.Title,
		Content:      m.Content,
		Tags:         r.decodeTags(m),
		ImageDataURI: m.ImageDataURI,
		CreatedAt:    time.Time(m.CreatedAt),
		UpdatedAt:    time.Time(m.UpdatedAt),
	}
}

// toModel 将领域模型转换为数据库模型
func (r *noteRepository) toModel(note *domain.Note, uid int64) (*model.Note, error) {
	tags := note.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := sonic.MarshalString(tags)
	if err != nil {
		return nil, errors.Wrap(err, "encode tags")
	}
	return &model.Note{
		ID:           note.ID,
		UID:          uid,
		Title:        note.Title,
		Content:      note.Content,
		TagsJSON:     tagsJSON,
		ImageDataURI: note.ImageDataURI,
		CreatedAt:    timex.Time(note.CreatedAt),
		UpdatedAt:    timex.Time(note.UpdatedAt),
	}, nil
}

// Create 创建笔记
func (r *noteRepository) Create(ctx context.Context, note *domain.Note, owner domain.Identity) (*domain.Note, error) {
	m, err := r.toModel(note, owner.UID)
	if err != nil {
		return nil, err
	}
	err = r.dao.ExecuteWrite(ctx, owner.UID, r, func(_ *gorm.DB) error {
		return r.db(ctx).Create(m).Error
	})
	if err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// Update 更新笔记
func (r *noteRepository) Update(ctx context.Context, note *domain.Note, owner domain.Identity) (*domain.Note, error) {
	m, err := r.toModel(note, owner.UID)
	if err != nil {
		return nil, err
	}
	err = r.dao.ExecuteWrite(ctx, owner.UID, r, func(_ *gorm.DB) error {
		res := r.db(ctx).Model(&model.Note{}).
			Where("id = ? AND uid = ?", m.ID, owner.UID).
			Updates(map[string]any{
				"title":          m.Title,
				"content":        m.Content,
				"tags_json":      m.TagsJSON,
				"image_data_uri": m.ImageDataURI,
				"updated_at":     m.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNoteNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, note.ID, owner)
}

// Delete 删除笔记
func (r *noteRepository) Delete(ctx context.Context, id string, owner domain.Identity) error {
	return r.dao.ExecuteWrite(ctx, owner.UID, r, func(_ *gorm.DB) error {
		res := r.db(ctx).Where("id = ? AND uid = ?", id, owner.UID).Delete(&model.Note{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNoteNotFound
		}
		return nil
	})
}

// GetByID 根据ID获取笔记
func (r *noteRepository) GetByID(ctx context.Context, id string, owner domain.Identity) (*domain.Note, error) {
	var m model.Note
	err := r.db(ctx).Where("id = ? AND uid = ?", id, owner.UID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// List 获取全部笔记，按创建时间倒序
func (r *noteRepository) List(ctx context.Context, owner domain.Identity) ([]*domain.Note, error) {
	var models []*model.Note
	err := r.db(ctx).Where("uid = ?", owner.UID).
		Order("created_at DESC").Order("id").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	notes := make([]*domain.Note, 0, len(models))
	for _, m := range models {
		notes = append(notes, r.toDomain(m))
	}
	return notes, nil
}

// Count 获取笔记数量
func (r *noteRepository) Count(ctx context.Context, owner domain.Identity) (int64, error) {
	var count int64
	err := r.db(ctx).Model(&model.Note{}).Where("uid = ?", owner.UID).Count(&count).Error
	return count, err
}

// ListUIDs 获取拥有笔记的全部用户
func (r *noteRepository) ListUIDs(ctx context.Context) ([]int64, error) {
	var uids []int64
	err := r.db(ctx).Model(&model.Note{}).Distinct("uid").Order("uid").Pluck("uid", &uids).Error
	return uids, err
}
