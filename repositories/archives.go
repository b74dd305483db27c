package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"insta-archiver/models"
)

type ArchiveRepository struct {
	col *mongo.Collection
}

func NewArchiveRepository(db *mongo.Database) *ArchiveRepository {
	return &ArchiveRepository{col: db.Collection("archived_posts")}
}

// UpsertByPostURL upserts an archive entry uniquely identified by post_url,
// so reprocessing a post refreshes its snapshot instead of duplicating it.
func (r *ArchiveRepository) UpsertByPostURL(ctx context.Context, p *models.ArchivedPost) (*mongo.UpdateResult, error) {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	filter := bson.M{"post_url": p.PostURL}
	update := bson.M{
		"$setOnInsert": bson.M{
			"created_at": p.CreatedAt,
		},
		"$set": bson.M{
			"updated_at":      p.UpdatedAt,
			"post_url":        p.PostURL,
			"username":        p.Username,
			"caption":         p.Caption,
			"media_type":      p.MediaType,
			"media_urls":      p.MediaURLs,
			"posted_at":       p.PostedAt,
			"summary":         p.Summary,
			"image_analysis":  p.ImageAnalysis,
			"tags":            p.Tags,
			"notion_page_id":  p.NotionPageID,
			"notion_page_url": p.NotionPageURL,
			"provider":        p.Provider,
			"source":          p.Source,
			"ai_log":          p.AILog,
		},
	}
	opts := options.Update().SetUpsert(true)
	return r.col.UpdateOne(ctx, filter, update, opts)
}

// Archive stores a snapshot, discarding the upsert result. Satisfies the
// pipeline's archiver dependency.
func (r *ArchiveRepository) Archive(ctx context.Context, p *models.ArchivedPost) error {
	_, err := r.UpsertByPostURL(ctx, p)
	return err
}

// FindByPostURL returns the archive entry for a post URL.
func (r *ArchiveRepository) FindByPostURL(ctx context.Context, postURL string) (*models.ArchivedPost, error) {
	var p models.ArchivedPost
	if err := r.col.FindOne(ctx, bson.M{"post_url": postURL}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListRecent returns the newest archive entries, newest first.
func (r *ArchiveRepository) ListRecent(ctx context.Context, limit int64) ([]models.ArchivedPost, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ArchivedPost
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
