// Package export 提供书稿编译产物落盘实现
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bookdraft-api/internal/domain/entity"
)

var tracer = otel.Tracer("export")

// 支持的导出格式
const (
	FormatTxt      = "txt"
	FormatMarkdown = "markdown"
)

// Renderer 书稿渲染器
// 将书籍及其已过审章节渲染为纯文本和 Markdown 文件。
type Renderer struct {
	dir     string
	formats []string
}

// NewRenderer 创建渲染器
func NewRenderer(dir string, formats []string) *Renderer {
	if dir == "" {
		dir = "output"
	}
	if len(formats) == 0 {
		formats = []string{FormatTxt, FormatMarkdown}
	}
	return &Renderer{dir: dir, formats: formats}
}

// Render 渲染书稿并写入输出目录，返回产物路径列表
func (r *Renderer) Render(ctx context.Context, book *entity.Book, outlineText string, chapters []*entity.Chapter) ([]string, error) {
	_, span := tracer.Start(ctx, "export.Render",
		trace.WithAttributes(
			attribute.String("book.id", book.ID),
			attribute.Int("chapter.count", len(chapters)),
		))
	defer span.End()

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	base := sanitizeFilename(book.Title)
	var paths []string

	for _, format := range r.formats {
		var content string
		var path string

		switch format {
		case FormatTxt:
			content = renderTxt(book, outlineText, chapters)
			path = filepath.Join(r.dir, base+".txt")
		case FormatMarkdown:
			content = renderMarkdown(book, outlineText, chapters)
			path = filepath.Join(r.dir, base+".md")
		default:
			return nil, fmt.Errorf("unsupported export format: %s", format)
		}

		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to write %s output: %w", format, err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// renderTxt 纯文本排版：书名、大纲、正文三段，分隔线分块
func renderTxt(book *entity.Book, outlineText string, chapters []*entity.Chapter) string {
	divider := strings.Repeat("=", 80)

	var b strings.Builder
	b.WriteString(divider + "\n")
	b.WriteString(strings.ToUpper(book.Title) + "\n")
	b.WriteString(divider + "\n\n")

	if outlineText != "" {
		b.WriteString("BOOK OUTLINE\n")
		b.WriteString(strings.Repeat("-", 80) + "\n")
		b.WriteString(strings.TrimSpace(outlineText))
		b.WriteString("\n\n" + divider + "\n\n")
	}

	for _, ch := range chapters {
		fmt.Fprintf(&b, "CHAPTER %d: %s\n", ch.ChapterNumber, strings.ToUpper(ch.Title))
		b.WriteString(strings.Repeat("-", 80) + "\n\n")
		b.WriteString(strings.TrimSpace(ch.Content))
		b.WriteString("\n\n" + divider + "\n\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// renderMarkdown Markdown 排版：书名一级标题，大纲和章节二级标题
func renderMarkdown(book *entity.Book, outlineText string, chapters []*entity.Chapter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", book.Title)

	if outlineText != "" {
		b.WriteString("## Book Outline\n\n")
		b.WriteString(strings.TrimSpace(outlineText))
		b.WriteString("\n\n")
	}

	for _, ch := range chapters {
		fmt.Fprintf(&b, "## Chapter %d: %s\n\n", ch.ChapterNumber, ch.Title)
		b.WriteString(strings.TrimSpace(ch.Content))
		b.WriteString("\n\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// sanitizeFilename 将书名转换为安全的文件名
func sanitizeFilename(title string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_",
		"?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
	)
	name := replacer.Replace(strings.TrimSpace(title))
	if name == "" {
		name = "untitled"
	}
	return name
}
