package service

import (
	"context"
	"time"

	"github.com/haierkeys/flownote-service/internal/domain"
	"github.com/haierkeys/flownote-service/internal/dto"
	"github.com/haierkeys/flownote-service/pkg/code"
	"github.com/haierkeys/flownote-service/pkg/util"

	"github.com/bytedance/sonic"
)

// ExportFileName 导出文件名
func ExportFileName(now time.Time) string {
	return "flownote_notes_" + now.Format(util.DateLayout) + ".json"
}

// EncodeNotes encodes notes as an indented JSON array
// EncodeNotes 将笔记编码为缩进的 JSON 数组
func EncodeNotes(notes []*domain.Note) ([]byte, error) {
	return sonic.ConfigStd.MarshalIndent(toNoteDTOs(notes), "", "  ")
}

// Export 导出全部笔记
func (s *noteService) Export(ctx context.Context, identity domain.Identity, now time.Time) (*dto.ExportFileDTO, error) {
	notes, err := s.collection(ctx, identity)
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, code.ErrorNoNotesToExport
	}
	data, err := EncodeNotes(notes)
	if err != nil {
		return nil, code.ErrorNoteExportFailed.WithDetails(err.Error())
	}
	return &dto.ExportFileDTO{FileName: ExportFileName(now), Data: data}, nil
}
