package dao

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/haierkeys/flownote-service/internal/domain"
	"github.com/haierkeys/flownote-service/pkg/kvstore"
	"github.com/haierkeys/flownote-service/pkg/logger"
	"github.com/haierkeys/flownote-service/pkg/timex"
	"github.com/haierkeys/flownote-service/pkg/util"
	"github.com/haierkeys/flownote-service/pkg/writequeue"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// LocalStorageKey is the blob key that holds a client's whole collection
// LocalStorageKey 本地存储中保存整个笔记集合的键
const LocalStorageKey = "flownotes"

// localRecord one note inside the local JSON blob
type localRecord struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Tags         []string   `json:"tags"`
	ImageDataURI string     `json:"imageDataUri,omitempty"`
	CreatedAt    timex.Time `json:"createdAt"`
	UpdatedAt    timex.Time `json:"updatedAt"`
}

// localNoteRepository 实现 domain.NoteRepository 接口（本地键值存储）
// The collection is one blob per client; every mutation is a read-modify-write
// serialized on the blob key
type localNoteRepository struct {
	store      kvstore.Store
	writeQueue *writequeue.Manager
	logger     *zap.Logger
}

// NewLocalNoteRepository 创建本地 NoteRepository 实例
func NewLocalNoteRepository(store kvstore.Store, writeQueue *writequeue.Manager, lg *zap.Logger) domain.NoteRepository {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &localNoteRepository{store: store, writeQueue: writeQueue, logger: lg}
}

// BlobKey returns the storage key for owner
// BlobKey 返回 owner 对应的存储键
func BlobKey(owner domain.Identity) string {
	switch {
	case owner.ClientID != "":
		return LocalStorageKey + ":" + owner.ClientID
	case owner.UID > 0:
		return LocalStorageKey + ":u" + strconv.FormatInt(owner.UID, 10)
	}
	return LocalStorageKey
}

// load reads and validates the collection; a missing blob is an empty collection
func (r *localNoteRepository) load(ctx context.Context, key string) ([]localRecord, error) {
	data, err := r.store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []localRecord{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "local store get")
	}

	var raw []localRecord
	if err := sonic.Unmarshal(data, &raw); err != nil {
		r.logger.Warn("local collection is not a JSON array, starting empty",
			zap.String(logger.FieldKey, key),
			zap.String(logger.FieldMethod, "localNoteRepository.load"),
			zap.Error(err),
		)
		return []localRecord{}, nil
	}

	records := make([]localRecord, 0, len(raw))
	for _, rec := range raw {
		if rec.ID == "" {
			continue
		}
		valid := make([]string, 0, len(rec.Tags))
		for _, tag := range rec.Tags {
			if t, ok := util.NormalizeTag(tag); ok {
				valid = append(valid, t)
			}
		}
		rec.Tags = util.MergeTags(valid)
		records = append(records, rec)
	}
	return records, nil
}

func (r *localNoteRepository) save(ctx context.Context, key string, records []localRecord) error {
	data, err := sonic.Marshal(records)
	if err != nil {
		return errors.Wrap(err, "encode local collection")
	}
	return errors.Wrap(r.store.Put(ctx, key, data), "local store put")
}

// mutate runs fn on the loaded collection and saves the result under the blob key lock
func (r *localNoteRepository) mutate(ctx context.Context, owner domain.Identity, fn func([]localRecord) ([]localRecord, error)) error {
	key := BlobKey(owner)
	run := func() error {
		records, err := r.load(ctx, key)
		if err != nil {
			return err
		}
		records, err = fn(records)
		if err != nil {
			return err
		}
		return r.save(ctx, key, records)
	}
	if r.writeQueue == nil {
		return run()
	}
	return r.writeQueue.Execute(ctx, key, run)
}

func toLocalRecord(n *domain.Note) localRecord {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return localRecord{
		ID:           n.ID,
		Title:        n.Title,
		Content:      n.Content,
		Tags:         tags,
		ImageDataURI: n.ImageDataURI,
		CreatedAt:    timex.Time(n.CreatedAt),
		UpdatedAt:    timex.Time(n.UpdatedAt),
	}
}

func (rec localRecord) toDomain(uid int64) *domain.Note {
	return &domain.Note{
		ID:           rec.ID,
		UID:          uid,
		Title:        rec.Title,
		Content:      rec.Content,
		Tags:         append([]string{}, rec.Tags...),
		ImageDataURI: rec.ImageDataURI,
		CreatedAt:    time.Time(rec.CreatedAt),
		UpdatedAt:    time.Time(rec.UpdatedAt),
	}
}

// Create 创建笔记，新笔记置于集合开头
func (r *localNoteRepository) Create(ctx context.Context, note *domain.Note, owner domain.Identity) (*domain.Note, error) {
	rec := toLocalRecord(note)
	err := r.mutate(ctx, owner, func(records []localRecord) ([]localRecord, error) {
		for _, existing := range records {
			if existing.ID == rec.ID {
				return nil, errors.Errorf("note %s already exists", rec.ID)
			}
		}
		return append([]localRecord{rec}, records...), nil
	})
	if err != nil {
		return nil, err
	}
	return rec.toDomain(owner.UID), nil
}

// Update 更新笔记，保留创建时间
func (r *localNoteRepository) Update(ctx context.Context, note *domain.Note, owner domain.Identity) (*domain.Note, error) {
	var updated localRecord
	err := r.mutate(ctx, owner, func(records []localRecord) ([]localRecord, error) {
		for i := range records {
			if records[i].ID != note.ID {
				continue
			}
			rec := toLocalRecord(note)
			rec.CreatedAt = records[i].CreatedAt
			records[i] = rec
			updated = rec
			return records, nil
		}
		return nil, domain.ErrNoteNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated.toDomain(owner.UID), nil
}

// Delete 删除笔记
func (r *localNoteRepository) Delete(ctx context.Context, id string, owner domain.Identity) error {
	return r.mutate(ctx, owner, func(records []localRecord) ([]localRecord, error) {
		for i := range records {
			if records[i].ID == id {
				return append(records[:i], records[i+1:]...), nil
			}
		}
		return nil, domain.ErrNoteNotFound
	})
}

// GetByID 根据ID获取笔记
func (r *localNoteRepository) GetByID(ctx context.Context, id string, owner domain.Identity) (*domain.Note, error) {
	records, err := r.load(ctx, BlobKey(owner))
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec.toDomain(owner.UID), nil
		}
	}
	return nil, domain.ErrNoteNotFound
}

// List 获取全部笔记，按创建时间倒序
func (r *localNoteRepository) List(ctx context.Context, owner domain.Identity) ([]*domain.Note, error) {
	records, err := r.load(ctx, BlobKey(owner))
	if err != nil {
		return nil, err
	}
	notes := make([]*domain.Note, 0, len(records))
	for _, rec := range records {
		notes = append(notes, rec.toDomain(owner.UID))
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
	return notes, nil
}

// Count 获取笔记数量
func (r *localNoteRepository) Count(ctx context.Context, owner domain.Identity) (int64, error) {
	records, err := r.load(ctx, BlobKey(owner))
	if err != nil {
		return 0, err
	}
	return int64(len(records)), nil
}
