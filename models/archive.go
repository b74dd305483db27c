package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ArchivedPost is the MongoDB snapshot of a fully processed post.
// Collection: archived_posts
type ArchivedPost struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
	PostURL       string             `bson:"post_url" json:"post_url"`
	Username      string             `bson:"username" json:"username"`
	Caption       string             `bson:"caption" json:"caption"`
	MediaType     string             `bson:"media_type" json:"media_type"`
	MediaURLs     []string           `bson:"media_urls" json:"media_urls"`
	PostedAt      time.Time          `bson:"posted_at" json:"posted_at"`
	Summary       string             `bson:"summary" json:"summary"`
	ImageAnalysis string             `bson:"image_analysis" json:"image_analysis"`
	Tags          []string           `bson:"tags" json:"tags"`
	NotionPageID  string             `bson:"notion_page_id" json:"notion_page_id"`
	NotionPageURL string             `bson:"notion_page_url" json:"notion_page_url"`
	Provider      string             `bson:"provider" json:"provider"`
	Source        string             `bson:"source" json:"source"`
	AILog         LLMCallLog         `bson:"ai_log" json:"ai_log"`
}

// LLMCallLog records one completion call for auditing.
type LLMCallLog struct {
	ModelName    string    `bson:"model_name" json:"model_name"`
	LatencyMs    int64     `bson:"latency_ms" json:"latency_ms"`
	InputTokens  int64     `bson:"input_tokens" json:"input_tokens"`
	OutputTokens int64     `bson:"output_tokens" json:"output_tokens"`
	TotalTokens  int64     `bson:"total_tokens" json:"total_tokens"`
	RequestedAt  time.Time `bson:"requested_at" json:"requested_at"`
	CompletedAt  time.Time `bson:"completed_at" json:"completed_at"`
}
