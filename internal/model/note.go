package model

import "github.com/haierkeys/flownote-service/pkg/timex"

const TableNameNote = "note"

// Note mapped from table <note>
type Note struct {
	ID           string     `gorm:"column:id;primaryKey;size:36" json:"id" form:"id"`
	UID          int64      `gorm:"column:uid;not null;index:idx_note_uid_created,priority:1" json:"uid" form:"uid"`
	Title        string     `gorm:"column:title;size:512" json:"title" form:"title"`
	Content      string     `gorm:"column:content;type:text" json:"content" form:"content"`
	TagsJSON     string     `gorm:"column:tags_json;type:text" json:"tagsJson" form:"tagsJson"`
	ImageDataURI string     `gorm:"column:image_data_uri;type:text" json:"imageDataUri" form:"imageDataUri"`
	CreatedAt    timex.Time `gorm:"column:created_at;index:idx_note_uid_created,priority:2;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt    timex.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`
}

// TableName Note's table name
func (*Note) TableName() string {
	return TableNameNote
}
