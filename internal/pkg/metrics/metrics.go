package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Every metric of the service is declared here so the exposition surface can
// be reviewed in one place.
var (
	QueriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rag",
		Name:      "queries_total",
		Help:      "Number of query requests received.",
	})

	QueryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rag",
		Name:      "query_failures_total",
		Help:      "Number of query requests that ended in an error response.",
	})

	QueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "rag",
		Name:      "query_duration_seconds",
		Help:      "End to end latency of query requests.",
		Buckets:   prometheus.DefBuckets,
	})

	ToolExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rag",
		Name:      "tool_executions_total",
		Help:      "Number of tool invocations requested by the model.",
	}, []string{"tool"})

	CoursesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rag",
		Name:      "courses_ingested_total",
		Help:      "Number of course documents indexed.",
	})

	ChunksIngested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rag",
		Name:      "chunks_ingested_total",
		Help:      "Number of content chunks written to the vector store.",
	})
)

// Handler serves the default registry, which the declarations above
// register into.
func Handler() http.Handler {
	return promhttp.Handler()
}
