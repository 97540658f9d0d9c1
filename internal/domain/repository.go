package domain

import "context"

// NoteRepository 笔记仓储接口
// Every method is scoped to owner; a note owned by someone else behaves as missing
type NoteRepository interface {
	// Create 创建笔记
	Create(ctx context.Context, note *Note, owner Identity) (*Note, error)

	// Update 更新笔记，不存在时返回 ErrNoteNotFound
	Update(ctx context.Context, note *Note, owner Identity) (*Note, error)

	// Delete 删除笔记，不存在时返回 ErrNoteNotFound
	Delete(ctx context.Context, id string, owner Identity) error

	// GetByID 根据ID获取笔记
	GetByID(ctx context.Context, id string, owner Identity) (*Note, error)

	// List 获取全部笔记，按创建时间倒序
	List(ctx context.Context, owner Identity) ([]*Note, error)

	// Count 获取笔记数量
	Count(ctx context.Context, owner Identity) (int64, error)
}

// NoteOwnerRepository lists users that own notes in the remote store
// NoteOwnerRepository 列出远程存储中拥有笔记的用户
type NoteOwnerRepository interface {
	ListUIDs(ctx context.Context) ([]int64, error)
}
