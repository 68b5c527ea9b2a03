// Package pipeline 实现受编辑门控的书稿生成流水线
package pipeline

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParsedChapter 从大纲文本解析出的章节条目
type ParsedChapter struct {
	Number int
	Title  string
}

// chapterPattern 匹配 "Chapter 3: Title"、"3. Title"、"3 - Title" 等写法。
// 标题截取到行尾；大小写不敏感。
var chapterPattern = regexp.MustCompile(`(?im)(?:chapter\s+)?(\d+)[.:)\-\s]+(.+)$`)

// titleNoise 清理标题前导的编号残留
var titleNoise = regexp.MustCompile(`^[.:)\-\s]+`)

// ParseChapters 从大纲自由文本中提取有序的章节列表
// 章节号不保证连续或有序，按文本出现顺序返回；
// 清理后标题不超过 3 个字符的条目视为编号噪声丢弃。
func ParseChapters(outlineText string) []ParsedChapter {
	matches := chapterPattern.FindAllStringSubmatch(outlineText, -1)
	chapters := make([]ParsedChapter, 0, len(matches))

	for _, m := range matches {
		number, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		title := titleNoise.ReplaceAllString(m[2], "")
		if idx := strings.IndexByte(title, '\n'); idx >= 0 {
			title = title[:idx]
		}
		title = strings.TrimSpace(title)

		if utf8.RuneCountInString(title) <= 3 {
			continue
		}

		chapters = append(chapters, ParsedChapter{Number: number, Title: title})
	}

	return chapters
}

// LimitChapters 按文本顺序截取前 max 条；max<=0 表示不截取
func LimitChapters(chapters []ParsedChapter, max int) []ParsedChapter {
	if max > 0 && len(chapters) > max {
		return chapters[:max]
	}
	return chapters
}
