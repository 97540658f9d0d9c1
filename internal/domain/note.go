// Package domain 定义领域模型和接口
package domain

import (
	"errors"
	"time"
)

// ErrNoteNotFound is returned by repositories when no note matches the id for the owner
// ErrNoteNotFound 仓储中找不到对应笔记时返回
var ErrNoteNotFound = errors.New("note not found")

// Note 笔记领域模型
// Title and Tags are always derived from Content when the note is saved
type Note struct {
	ID           string
	UID          int64
	Title        string
	Content      string
	Tags         []string
	ImageDataURI string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasImage 判断笔记是否带有图片
func (n *Note) HasImage() bool {
	return n.ImageDataURI != ""
}

// HasTag 判断笔记是否带有指定标签
func (n *Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasAllTags 判断笔记是否带有全部标签
func (n *Note) HasAllTags(tags []string) bool {
	for _, tag := range tags {
		if !n.HasTag(tag) {
			return false
		}
	}
	return true
}

// Clone 复制笔记，标签切片独立
func (n *Note) Clone() *Note {
	c := *n
	c.Tags = append([]string{}, n.Tags...)
	return &c
}
