package pipeline

import (
	"fmt"

	"bookdraft-api/internal/domain/entity"
)

// Decision 门控判定结果
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

func allow(reason string) Decision {
	return Decision{Allowed: true, Reason: reason}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// CanGenerateOutline 判定书籍是否可以生成（或重生成）大纲
// latestOutline 为 nil 表示尚无大纲。
func CanGenerateOutline(book *entity.Book, latestOutline *entity.Outline) Decision {
	if book == nil {
		return deny("Book not found")
	}
	if book.NotesBefore == "" {
		return deny("notes_before is required before generating outline")
	}
	if latestOutline == nil {
		return allow("Ready to generate outline")
	}

	switch book.OutlineStatus {
	case entity.ReviewStatusApproved:
		return deny("Outline already approved, ready for chapter generation")
	case entity.ReviewStatusNotesPlanned:
		if book.NotesAfter != "" {
			return allow("Can regenerate with feedback")
		}
		return deny("Waiting for editor notes (notes_after)")
	default:
		// "no"、"pending" 或空：等待编辑处理
		return deny("Outline paused - awaiting editor review")
	}
}

// CanGenerateChapter 判定指定章节号是否可以生成
// existing 为该章节号已有记录（可为 nil），previous 为前一章记录（chapterNumber>1 时有意义）。
func CanGenerateChapter(book *entity.Book, latestOutline *entity.Outline, existing, previous *entity.Chapter, chapterNumber int) Decision {
	if book == nil {
		return deny("Book not found")
	}
	if book.OutlineStatus != entity.ReviewStatusApproved {
		return deny(fmt.Sprintf("Outline not approved yet (status: %s)", book.OutlineStatus))
	}
	if latestOutline == nil {
		return deny("No outline found")
	}

	if existing != nil {
		switch existing.NotesStatus {
		case entity.ReviewStatusApproved:
			return deny(fmt.Sprintf("Chapter %d already approved", chapterNumber))
		case entity.ReviewStatusNotesPlanned:
			if existing.Notes != "" {
				return allow("Can regenerate with feedback")
			}
			return deny(fmt.Sprintf("Waiting for editor notes on chapter %d", chapterNumber))
		default:
			return deny(fmt.Sprintf("Chapter %d paused - awaiting editor review", chapterNumber))
		}
	}

	// 顺序约束：前一章必须存在；pending 即可继续，审批在编译阶段统一把关
	if chapterNumber > 1 {
		if previous == nil {
			return deny(fmt.Sprintf("Previous chapter %d not generated yet", chapterNumber-1))
		}
		if !previous.ReadyForCompile() {
			return deny(fmt.Sprintf("Previous chapter %d not approved yet", chapterNumber-1))
		}
	}

	return allow("Ready to generate chapter")
}

// CanCompile 判定书籍是否可以编译成稿
// final_review_status 为 "yes" 时不做特殊处理，直接落到后续检查。
func CanCompile(book *entity.Book, chapters []*entity.Chapter) Decision {
	if book == nil {
		return deny("Book not found")
	}
	if book.FinalReviewStatus == entity.ReviewStatusPaused {
		return deny("Final compilation paused by editor")
	}
	if book.OutlineStatus != entity.ReviewStatusApproved {
		return deny(fmt.Sprintf("Outline not approved (status: %s)", book.OutlineStatus))
	}
	if len(chapters) == 0 {
		return deny("No chapters found")
	}
	for _, ch := range chapters {
		if !ch.ReadyForCompile() {
			return deny(fmt.Sprintf("Chapter %d not approved (status: %s)", ch.ChapterNumber, ch.NotesStatus))
		}
	}
	// 幂等保护：已完成的书不做静默重编译
	if book.OutputStatus == entity.OutputStatusCompleted {
		return deny("Book already compiled")
	}
	return allow("Ready to compile")
}
