package query

import "github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"

// toQueryResponse converts QueryResult entity to QueryResponse DTO
func toQueryResponse(res *entity.QueryResult) *entity.QueryResponse {
	// Sources must serialize as an array even when empty
	sources := make([]entity.SourceDTO, 0, len(res.Sources))
	for _, s := range res.Sources {
		sources = append(sources, entity.SourceDTO{
			Text: s.Text,
			Link: s.Link,
		})
	}

	return &entity.QueryResponse{
		Answer:    res.Answer,
		Sources:   sources,
		SessionID: res.SessionID,
	}
}
