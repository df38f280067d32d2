package mastery

import (
	"sort"

	"github.com/abhisek/studyforge/internal/difficulty"
)

// Record is one item's contribution to its topic. Unanswered items only
// make their topic known.
type Record struct {
	Topic    string
	Answered bool
	Correct  bool
}

// Aggregate groups records by topic and returns one TopicMastery per
// distinct topic, ranked by descending mastery. Topics with equal mastery
// keep the order in which they first appeared.
func Aggregate(records []Record) []TopicMastery {
	index := make(map[string]int)
	var topics []TopicMastery

	for _, r := range records {
		name := r.Topic
		if name == "" {
			name = DefaultTopic
		}
		i, ok := index[name]
		if !ok {
			i = len(topics)
			index[name] = i
			topics = append(topics, TopicMastery{Topic: name})
		}
		if !r.Answered {
			continue
		}
		topics[i].TotalAttempted++
		if r.Correct {
			topics[i].TotalCorrect++
		}
	}

	for i := range topics {
		topics[i].Mastery = Ratio(topics[i].TotalCorrect, topics[i].TotalAttempted)
		topics[i].Suggested = difficulty.Select(topics[i].Mastery)
	}

	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].Mastery > topics[j].Mastery
	})
	return topics
}

// Find returns the mastery entry for topic, or a zero-mastery entry if the
// topic is unknown.
func Find(topics []TopicMastery, topic string) TopicMastery {
	if topic == "" {
		topic = DefaultTopic
	}
	for _, tm := range topics {
		if tm.Topic == topic {
			return tm
		}
	}
	return TopicMastery{Topic: topic, Suggested: difficulty.Select(0)}
}
