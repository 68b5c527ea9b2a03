// Package model 定义工作流输入输出结构
package model

import (
	"fmt"
	"time"
)

// OutlineGenerateInput 大纲生成输入
type OutlineGenerateInput struct {
	Provider    string
	Title       string
	Notes       string
	Temperature *float32
	MaxTokens   *int
}

// ChapterGenerateInput 章节生成输入
type ChapterGenerateInput struct {
	Provider      string
	BookTitle     string
	Outline       string
	ChapterNumber int
	ChapterTitle  string
	// Context 由上下文链构建的前情摘要块，可为空
	Context string
	// ChapterNotes 编辑针对本章的补充说明，可为空
	ChapterNotes string
	Temperature  *float32
	MaxTokens    *int
}

// SummaryGenerateInput 章节摘要生成输入
type SummaryGenerateInput struct {
	Provider     string
	ChapterTitle string
	Content      string
}

// RevisionTarget 修订目标
type RevisionTarget string

const (
	RevisionTargetOutline RevisionTarget = "outline"
	RevisionTargetChapter RevisionTarget = "chapter"
)

// Valid 报告修订目标是否已定义
func (t RevisionTarget) Valid() bool {
	return t == RevisionTargetOutline || t == RevisionTargetChapter
}

// OutlineRevision 大纲修订载荷：最新版大纲全文与编辑的整体反馈（notes_after）
type OutlineRevision struct {
	OutlineText string
	NotesAfter  string
}

// ChapterRevision 章节修订载荷：现有章节内容与编辑的章节批注（notes）
type ChapterRevision struct {
	Content string
	Notes   string
}

// RevisionInput 按编辑反馈重生成的输入
// Target 决定携带哪种载荷；大纲与章节共用修订提示词，措辞按目标区分。
type RevisionInput struct {
	Provider  string
	Target    RevisionTarget
	Outline   *OutlineRevision
	Chapter   *ChapterRevision
	MaxTokens *int
}

// NewOutlineRevisionInput 构造大纲修订输入
func NewOutlineRevisionInput(provider, outlineText, notesAfter string) *RevisionInput {
	return &RevisionInput{
		Provider: provider,
		Target:   RevisionTargetOutline,
		Outline:  &OutlineRevision{OutlineText: outlineText, NotesAfter: notesAfter},
	}
}

// NewChapterRevisionInput 构造章节修订输入
func NewChapterRevisionInput(provider, content, notes string) *RevisionInput {
	return &RevisionInput{
		Provider: provider,
		Target:   RevisionTargetChapter,
		Chapter:  &ChapterRevision{Content: content, Notes: notes},
	}
}

// Payload 返回目标对应的原文与反馈；载荷缺失或目标未定义时报错
func (in *RevisionInput) Payload() (original, feedback string, err error) {
	switch in.Target {
	case RevisionTargetOutline:
		if in.Outline == nil {
			return "", "", fmt.Errorf("outline revision payload is missing")
		}
		return in.Outline.OutlineText, in.Outline.NotesAfter, nil
	case RevisionTargetChapter:
		if in.Chapter == nil {
			return "", "", fmt.Errorf("chapter revision payload is missing")
		}
		return in.Chapter.Content, in.Chapter.Notes, nil
	default:
		return "", "", fmt.Errorf("unknown revision target: %s", in.Target)
	}
}

// LLMUsageMeta LLM 调用元信息
type LLMUsageMeta struct {
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	GeneratedAt      time.Time
}
