// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(v1 *gin.RouterGroup, h Handlers) {
	// 书籍管理
	books := v1.Group("/books")
	{
		books.GET("", h.Book.ListBooks)
		books.POST("", h.Book.CreateBook)
		books.POST("/import", h.Book.ImportBooks)
		books.GET("/:bid", h.Book.GetBook)
		books.DELETE("/:bid", h.Book.DeleteBook)

		// 编辑审核
		books.PUT("/:bid/review", h.Book.UpdateReview)

		// 大纲
		books.GET("/:bid/outline", h.Outline.GetOutline)
		books.GET("/:bid/outline/check", h.Outline.CheckOutline)
		books.GET("/:bid/outline/versions", h.Outline.ListOutlineVersions)
		books.POST("/:bid/outline/generate", h.Outline.GenerateOutline)

		// 章节
		books.GET("/:bid/chapters", h.Chapter.ListChapters)
		books.POST("/:bid/chapters/generate", h.Chapter.GenerateAllChapters)
		books.GET("/:bid/chapters/:num", h.Chapter.GetChapter)
		books.POST("/:bid/chapters/:num/generate", h.Chapter.GenerateChapter)
		books.PUT("/:bid/chapters/:num/review", h.Chapter.UpdateChapterReview)

		// 编译
		books.POST("/:bid/compile", h.Compile.CompileBook)
		books.GET("/:bid/compile/check", h.Compile.CheckCompile)

		// 通知记录
		books.GET("/:bid/notifications", h.Notification.ListNotifications)

		// 单本书流水线
		books.POST("/:bid/run", h.Pipeline.RunBook)
	}

	// 批量流水线
	pipelineGroup := v1.Group("/pipeline")
	{
		pipelineGroup.POST("/run", h.Pipeline.RunPipeline)
	}
}
