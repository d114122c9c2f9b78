package monitoring

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnswersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_answers_total",
			Help: "Answers checked, by source (practice or exam) and correctness",
		},
		[]string{"source", "correct"},
	)

	ExamsGraded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_exams_graded_total",
			Help: "Exam attempts graded, by trigger",
		},
		[]string{"trigger"},
	)

	ExamScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quiz_exam_score_ratio",
			Help:    "Exam score as a fraction of the paper's maximum",
			Buckets: []float64{0.2, 0.4, 0.6, 0.7, 0.8, 0.9, 1},
		},
	)

	BotUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Telegram updates handled, by kind",
		},
		[]string{"kind"},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "quiz_active_sessions",
			Help: "Chat sessions currently held in memory",
		},
	)
)

func Init() {
	prometheus.MustRegister(AnswersTotal)
	prometheus.MustRegister(ExamsGraded)
	prometheus.MustRegister(ExamScore)
	prometheus.MustRegister(BotUpdates)
	prometheus.MustRegister(ActiveSessions)
}

// ObserveAnswer counts one checked answer
func ObserveAnswer(source string, correct bool) {
	AnswersTotal.WithLabelValues(source, strconv.FormatBool(correct)).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
