// Package util provides common utility functions
// Package util 提供通用工具函数
package util

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Mention represents a [[note:ID]] token found in note content // Mention 表示笔记内容中的 [[note:ID]] 引用
type Mention struct {
	NoteID string // Referenced note id // 被引用的笔记 ID
	Start  int    // Byte offset of the token start // 起始字节偏移
	End    int    // Byte offset just after the token // 结束字节偏移
}

// ContentSegment is one ordered piece of note content: plain text or a mention
// ContentSegment 笔记内容的有序片段：普通文本或引用
type ContentSegment struct {
	Text   string // Raw text (for mentions, the raw token) // 原始文本（引用时为原始标记）
	NoteID string // Non-empty when the segment is a mention // 片段为引用时非空
}

// IsMention reports whether the segment is a mention token
// IsMention 判断片段是否为引用
func (s ContentSegment) IsMention() bool {
	return s.NoteID != ""
}

// ParsedContent groups everything derived from a note body at save time
// ParsedContent 保存时从笔记正文推导出的全部信息
type ParsedContent struct {
	Title    string    `json:"title"`
	Tags     []string  `json:"tags"`
	Mentions []Mention `json:"mentions"`
}

// mentionRegex matches [[note:ID]]; group 1 is the id
// mentionRegex 匹配 [[note:ID]]，第 1 组为 ID
var mentionRegex = regexp.MustCompile(`\[\[note:([^\]]+)\]\]`)

// tagSegment is one path segment of a tag. Any Unicode separator, \v and the
// BOM end it, not only the ASCII whitespace that \s covers
// tagSegment 标签路径的一段；任何 Unicode 空白（含全角空格、NBSP、\v、BOM）都会结束标签
const tagSegment = `[^#\s\p{Z}\x{0B}\x{FEFF}/]+`

// tagRegex matches #tag and #parent/child; group 1 is the tag path without '#'
// tagRegex 匹配 #tag 与 #parent/child，第 1 组为不含 '#' 的标签路径
var tagRegex = regexp.MustCompile(`#(` + tagSegment + `(?:/` + tagSegment + `)*)`)

// tagPathRegex validates a complete tag path
// tagPathRegex 校验完整的标签路径
var tagPathRegex = regexp.MustCompile(`^` + tagSegment + `(?:/` + tagSegment + `)*$`)

// isSpace reports whitespace for trimming, the BOM included
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// ParseContent derives title, tags and mentions from content in one pass
// ParseContent 一次性从内容推导标题、标签与引用
func ParseContent(content string) ParsedContent {
	return ParsedContent{
		Title:    DeriveTitle(content),
		Tags:     ExtractTags(content),
		Mentions: ParseMentions(content),
	}
}

// DeriveTitle returns the first line that is non-empty once mentions and tags are stripped
// DeriveTitle 返回去除引用与标签后第一个非空行
func DeriveTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimFunc(stripTokens(line), isSpace); line != "" {
			return line
		}
	}
	return ""
}

// stripTokens removes mentions and tags until none remain, since removing one
// token can join its neighbours into a new one ("[[[[note:a]]note:b]]")
func stripTokens(line string) string {
	for {
		next := mentionRegex.ReplaceAllString(line, "")
		next = tagRegex.ReplaceAllString(next, "")
		if next == line {
			return line
		}
		line = next
	}
}

// ExtractTags returns every #tag path in content, deduplicated and sorted by byte order
// (UTF-8 byte order differs from UTF-16 code unit order only between astral runes and U+E000-U+FFFF)
// ExtractTags 返回内容中全部标签路径，去重并排序
func ExtractTags(content string) []string {
	tags := []string{}
	seen := make(map[string]struct{})
	for _, match := range tagRegex.FindAllStringSubmatch(content, -1) {
		if _, ok := seen[match[1]]; ok {
			continue
		}
		seen[match[1]] = struct{}{}
		tags = append(tags, match[1])
	}
	sort.Strings(tags)
	return tags
}

// NormalizeTag strips a leading '#' and surrounding spaces and checks the tag grammar
// NormalizeTag 去除前导 '#' 和空白，并校验标签语法
func NormalizeTag(s string) (string, bool) {
	s = strings.TrimFunc(s, isSpace)
	s = strings.TrimPrefix(s, "#")
	s = strings.Trim(s, "/")
	if !tagPathRegex.MatchString(s) {
		return "", false
	}
	return s, true
}

// MergeTags unions tag lists into a sorted duplicate-free list
// MergeTags 合并多个标签列表，结果去重并排序
func MergeTags(lists ...[]string) []string {
	merged := []string{}
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, tag := range list {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			merged = append(merged, tag)
		}
	}
	sort.Strings(merged)
	return merged
}

// ParseMentions returns every [[note:ID]] token in order of appearance
// ParseMentions 按出现顺序返回全部 [[note:ID]] 引用
func ParseMentions(content string) []Mention {
	mentions := []Mention{}
	for _, loc := range mentionRegex.FindAllStringSubmatchIndex(content, -1) {
		mentions = append(mentions, Mention{
			NoteID: content[loc[2]:loc[3]],
			Start:  loc[0],
			End:    loc[1],
		})
	}
	return mentions
}

// MentionedIDs returns the distinct note ids referenced by content, in first-seen order
// MentionedIDs 返回内容引用的不重复笔记 ID（按首次出现顺序）
func MentionedIDs(content string) []string {
	var ids []string
	seen := make(map[string]struct{})
	for _, m := range ParseMentions(content) {
		if _, ok := seen[m.NoteID]; ok {
			continue
		}
		seen[m.NoteID] = struct{}{}
		ids = append(ids, m.NoteID)
	}
	return ids
}

// SplitContent splits content into ordered text and mention segments
// Concatenating every segment's Text reproduces content exactly
// SplitContent 将内容拆分为有序的文本与引用片段，拼接全部 Text 可还原原文
func SplitContent(content string) []ContentSegment {
	var segments []ContentSegment
	last := 0
	for _, m := range ParseMentions(content) {
		if m.Start > last {
			segments = append(segments, ContentSegment{Text: content[last:m.Start]})
		}
		segments = append(segments, ContentSegment{Text: content[m.Start:m.End], NoteID: m.NoteID})
		last = m.End
	}
	if last < len(content) {
		segments = append(segments, ContentSegment{Text: content[last:]})
	}
	return segments
}

// MentionToken builds the inline token that references a note
// MentionToken 生成引用笔记的内联标记
func MentionToken(noteID string) string {
	return "[[note:" + noteID + "]]"
}
