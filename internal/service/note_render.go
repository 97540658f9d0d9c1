package service

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/haierkeys/flownote-service/internal/domain"
	"github.com/haierkeys/flownote-service/internal/dto"
	"github.com/haierkeys/flownote-service/pkg/code"
	"github.com/haierkeys/flownote-service/pkg/util"
)

const (
	mentionSnippetRunes = 30
	missingIDRunes      = 8
)

// MentionLabel is the display name of a linked note: its title, else the start of its content,
// else "Image Note" for image-only notes, else "Untitled Note"
// MentionLabel 被引用笔记的显示名称
func MentionLabel(target *domain.Note) string {
	label := target.Title
	if label == "" {
		label = target.Content
		if utf8.RuneCountInString(label) > mentionSnippetRunes {
			label = string([]rune(label)[:mentionSnippetRunes]) + "..."
		}
	}
	if strings.TrimSpace(label) == "" {
		if target.HasImage() {
			return "Image Note"
		}
		return "Untitled Note"
	}
	return label
}

// MissingMentionLabel placeholder for a reference whose note no longer exists
// MissingMentionLabel 被引用笔记不存在时的占位文本
func MissingMentionLabel(id string) string {
	short := id
	if utf8.RuneCountInString(short) > missingIDRunes {
		short = string([]rune(short)[:missingIDRunes])
	}
	return "Note (ID: " + short + "...) [not found]"
}

// ResolveMentions splits content into segments and resolves each mention against byID
// ResolveMentions 将内容拆分为片段并解析每个引用
func ResolveMentions(content string, byID map[string]*domain.Note) ([]dto.SegmentDTO, []dto.MentionDTO) {
	segments := []dto.SegmentDTO{}
	mentions := []dto.MentionDTO{}
	offset := 0
	for _, seg := range util.SplitContent(content) {
		start := offset
		offset += len(seg.Text)
		if !seg.IsMention() {
			segments = append(segments, dto.SegmentDTO{Text: seg.Text})
			continue
		}
		m := dto.MentionDTO{NoteID: seg.NoteID, Start: start, End: offset}
		if target, ok := byID[seg.NoteID]; ok {
			m.Label = MentionLabel(target)
			m.Found = true
		} else {
			m.Label = MissingMentionLabel(seg.NoteID)
		}
		mentions = append(mentions, m)
		mention := m
		segments = append(segments, dto.SegmentDTO{Text: seg.Text, Mention: &mention})
	}
	return segments, mentions
}

// Render 解析笔记引用并生成 HTML
func (s *noteService) Render(ctx context.Context, identity domain.Identity, id string) (*dto.NoteRenderDTO, error) {
	notes, err := s.collection(ctx, identity)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Note, len(notes))
	for _, n := range notes {
		byID[n.ID] = n
	}
	note, ok := byID[id]
	if !ok {
		return nil, code.ErrorNoteNotFound
	}

	segments, mentions := ResolveMentions(note.Content, byID)
	htmlText, err := s.renderHTML(segments)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}

	return &dto.NoteRenderDTO{
		Note:     ToNoteDTO(note),
		Segments: segments,
		Mentions: mentions,
		HTML:     htmlText,
	}, nil
}

// renderHTML turns resolved segments into markdown and renders it
// Found mentions become links to #note-<id>, missing ones are emphasized text
func (s *noteService) renderHTML(segments []dto.SegmentDTO) (string, error) {
	var src strings.Builder
	for _, seg := range segments {
		switch {
		case seg.Mention == nil:
			src.WriteString(seg.Text)
		case seg.Mention.Found:
			src.WriteString("[@" + escapeMarkdown(seg.Mention.Label) + "](#note-" + url.PathEscape(seg.Mention.NoteID) + ")")
		default:
			src.WriteString("*@" + escapeMarkdown(seg.Mention.Label) + "*")
		}
	}

	var buf bytes.Buffer
	if err := s.md.Convert([]byte(src.String()), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"[", `\[`,
	"]", `\]`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"<", `\<`,
	"\n", " ",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// ParseNote derives title, tags and mention positions without touching storage
// Mentions are not resolved, so their labels stay empty
// ParseNote 无状态地推导标题、标签与引用位置，引用不做解析
func ParseNote(content string) *dto.ParseResultDTO {
	parsed := util.ParseContent(content)
	mentions := make([]dto.MentionDTO, 0, len(parsed.Mentions))
	for _, m := range parsed.Mentions {
		mentions = append(mentions, dto.MentionDTO{NoteID: m.NoteID, Start: m.Start, End: m.End})
	}
	return &dto.ParseResultDTO{Title: parsed.Title, Tags: parsed.Tags, Mentions: mentions}
}
