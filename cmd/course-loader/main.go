package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/builder"
	"go.uber.org/zap"
)

func main() {
	// Registered before builder.BuildLoader, which parses all flags while
	// loading configuration.
	folder := flag.String("folder", "docs", "Folder with course documents to ingest")
	clearExisting := flag.Bool("clear", false, "Drop all indexed courses before loading")

	usecase, logger, err := builder.BuildLoader()
	if err != nil {
		log.Fatal("Failed to build course loader:", err)
	}

	ctx := ctxzap.ToContext(context.Background(), logger)

	report, err := usecase.AddCourseFolder(ctx, *folder, *clearExisting)
	if err != nil {
		logger.Fatal("Loading course folder failed", zap.Error(err))
	}

	fmt.Printf("Loaded %d courses with %d chunks (%d skipped, %d failed)\n",
		report.CoursesAdded, report.ChunksAdded, report.CoursesSkipped, report.Failed)

	analytics, err := usecase.Analytics(ctx)
	if err != nil {
		logger.Fatal("Loading course analytics failed", zap.Error(err))
	}

	fmt.Printf("Total courses in system: %d\n", analytics.TotalCourses)
	fmt.Println("Available courses:")
	for _, title := range analytics.CourseTitles {
		fmt.Printf("  - %s\n", title)
	}
}
