package metrics

import (
	"fmt"
	"log"
	"strconv"
	"sync"

	"weekly-digest-bot/internal/database"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

type BotMetrics struct {
	CommandsProcessed prometheus.Counter
	MessagesSaved     prometheus.Counter
	DigestsPosted     prometheus.Counter
	LLMRequests       *prometheus.CounterVec
	TopicsCount       prometheus.Gauge
	MessagesPerTopic  *prometheus.CounterVec
	TopicsSet         map[int64]string
	Mutex             sync.Mutex
}

var Default = NewBotMetrics()

func NewBotMetrics() *BotMetrics {
	m := &BotMetrics{
		CommandsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weekly_digest",
			Subsystem: "telegram_bot",
			Name:      "commands_processed",
			Help:      "The total number of processed commands",
		}),
		MessagesSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weekly_digest",
			Subsystem: "telegram_bot",
			Name:      "messages_saved",
			Help:      "The total number of messages captured from source topics",
		}),
		DigestsPosted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weekly_digest",
			Subsystem: "telegram_bot",
			Name:      "digests_posted",
			Help:      "The total number of scheduled posts published",
		}),
		LLMRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "weekly_digest",
				Subsystem: "telegram_bot",
				Name:      "llm_requests",
				Help:      "The total number of LLM requests by outcome",
			},
			[]string{"outcome"},
		),
		TopicsCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weekly_digest",
			Subsystem: "telegram_bot",
			Name:      "topics_count",
			Help:      "The current number of source topics messages were seen in",
		}),
		MessagesPerTopic: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "weekly_digest",
				Subsystem: "telegram_bot",
				Name:      "messages_per_topic",
				Help:      "The total number of messages captured per source topic",
			},
			[]string{"topic_id", "topic_name"},
		),
		TopicsSet: make(map[int64]string),
	}

	prometheus.MustRegister(m.CommandsProcessed)
	prometheus.MustRegister(m.MessagesSaved)
	prometheus.MustRegister(m.DigestsPosted)
	prometheus.MustRegister(m.LLMRequests)
	prometheus.MustRegister(m.TopicsCount)
	prometheus.MustRegister(m.MessagesPerTopic)

	return m
}

// RecordTopicMessage counts a captured message against its topic
func (m *BotMetrics) RecordTopicMessage(topicID int64, topicName string) {
	m.MessagesSaved.Inc()
	m.MessagesPerTopic.WithLabelValues(fmt.Sprintf("%d", topicID), topicName).Inc()

	m.Mutex.Lock()
	defer m.Mutex.Unlock()
	if _, exists := m.TopicsSet[topicID]; !exists {
		m.TopicsSet[topicID] = topicName
		m.TopicsCount.Set(float64(len(m.TopicsSet)))
	}
}

func (m *BotMetrics) LoadFromDB() {
	m.Mutex.Lock()
	defer m.Mutex.Unlock()

	commandsProcessed, _ := database.GetMetric("commands_processed")
	messagesSaved, _ := database.GetMetric("messages_saved")
	digestsPosted, _ := database.GetMetric("digests_posted")
	topicsCount, _ := database.GetMetric("topics_count")

	m.CommandsProcessed.Add(commandsProcessed)
	m.MessagesSaved.Add(messagesSaved)
	m.DigestsPosted.Add(digestsPosted)
	m.TopicsCount.Set(topicsCount)

	loadLabeledMetrics("llm_requests", func(outcome, _ string, value float64) {
		m.LLMRequests.WithLabelValues(outcome).Add(value)
	})

	loadLabeledMetrics("messages_per_topic", func(topicIDStr, topicName string, value float64) {
		m.MessagesPerTopic.WithLabelValues(topicIDStr, topicName).Add(value)

		topicID, err := strconv.ParseInt(topicIDStr, 10, 64)
		if err != nil {
			log.Printf("Failed to parse topic id %s: %v", topicIDStr, err)
			return
		}
		m.TopicsSet[topicID] = topicName
	})

	log.Println("Metrics loaded from database.")
}

func loadLabeledMetrics(metricName string, callback func(labelKey, labelValue string, value float64)) {
	metricsWithLabels, _ := database.GetMetricsWithLabels(metricName)
	for labelKey, labelValues := range metricsWithLabels {
		for labelValue, value := range labelValues {
			callback(labelKey, labelValue, value)
		}
	}
}

func (m *BotMetrics) SaveToDB() {
	m.Mutex.Lock()
	defer m.Mutex.Unlock()

	database.SaveMetric("commands_processed", "", "", GetMetricValue(m.CommandsProcessed))
	database.SaveMetric("messages_saved", "", "", GetMetricValue(m.MessagesSaved))
	database.SaveMetric("digests_posted", "", "", GetMetricValue(m.DigestsPosted))
	database.SaveMetric("topics_count", "", "", float64(len(m.TopicsSet)))

	saveLabeledCounterVec(m.LLMRequests, "llm_requests", "outcome", "")
	saveLabeledCounterVec(m.MessagesPerTopic, "messages_per_topic", "topic_id", "topic_name")
}

// saveLabeledCounterVec persists every series of a CounterVec, keyed by
// its first label (and optionally distinguished by a second one)
func saveLabeledCounterVec(vec *prometheus.CounterVec, metricName, keyLabel, valueLabel string) {
	metricChan := make(chan prometheus.Metric)
	go func() {
		vec.Collect(metricChan)
		close(metricChan)
	}()

	for metric := range metricChan {
		metricProto := &dto.Metric{}
		if err := metric.Write(metricProto); err != nil {
			log.Printf("Failed to read %s metric: %v", metricName, err)
			continue
		}

		var key, value string
		for _, label := range metricProto.Label {
			if label.GetName() == keyLabel {
				key = label.GetValue()
			}
			if valueLabel != "" && label.GetName() == valueLabel {
				value = label.GetValue()
			}
		}
		if value == "" {
			// single-label series round-trip through both columns
			value = key
		}
		database.SaveMetricWithLabels(metricName, key, value, metricProto.Counter.GetValue())
	}
}

func GetMetricValue(metric prometheus.Collector) float64 {
	var metricValue float64
	metricChan := make(chan prometheus.Metric, 1)
	metric.Collect(metricChan)
	close(metricChan)

	metricProto := &dto.Metric{}
	if err := (<-metricChan).Write(metricProto); err != nil {
		log.Printf("Failed to read metric value: %v", err)
		return 0
	}

	if metricProto.Counter != nil {
		metricValue = metricProto.Counter.GetValue()
	} else if metricProto.Gauge != nil {
		metricValue = metricProto.Gauge.GetValue()
	}
	return metricValue
}
