package progress

import "context"

// Store is the durable home of progress aggregates. GetConcept/GetTopic
// report found=false (not an error) for users who have never attempted
// the concept/topic; rows are created lazily by the Aggregator.
type Store interface {
	GetConcept(ctx context.Context, userID, conceptID string) (ConceptProgress, bool, error)
	PutConcept(ctx context.Context, p ConceptProgress) error
	ListConcepts(ctx context.Context, userID string) ([]ConceptProgress, error)

	GetTopic(ctx context.Context, userID, topicID string) (TopicProgress, bool, error)
	PutTopic(ctx context.Context, p TopicProgress) error
	ListTopics(ctx context.Context, userID string) ([]TopicProgress, error)
}
