package courses

import "github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"

// toCourseStats converts CourseAnalytics entity to CourseStatsResponse DTO
func toCourseStats(a *entity.CourseAnalytics) *entity.CourseStatsResponse {
	// Titles must serialize as an array even when the catalog is empty
	titles := make([]string, 0, len(a.CourseTitles))
	titles = append(titles, a.CourseTitles...)

	return &entity.CourseStatsResponse{
		TotalCourses: a.TotalCourses,
		CourseTitles: titles,
	}
}
