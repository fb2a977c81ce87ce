package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/articlehub/content-service/internal/core/domain"
	"github.com/articlehub/content-service/internal/core/ports"
)

type ArticleRepository struct {
	col *mongo.Collection
	seq sequence
}

func NewArticleRepository(db *mongo.Database) *ArticleRepository {
	return &ArticleRepository{col: db.Collection(collectionArticles), seq: newSequence(db)}
}

var _ ports.ArticleRepository = (*ArticleRepository)(nil)

type articleDoc struct {
	ID        int64     `bson:"_id"`
	OwnerID   int64     `bson:"owner_id"`
	Title     string    `bson:"title"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
}

// articleViewDoc is the shape produced by the owner $lookup pipeline.
type articleViewDoc struct {
	ID        int64     `bson:"_id"`
	OwnerID   int64     `bson:"owner_id"`
	Title     string    `bson:"title"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
	Username  string    `bson:"username"`
}

func (d articleDoc) toDomain() *domain.Article {
	return &domain.Article{
		ID:        d.ID,
		OwnerID:   d.OwnerID,
		Title:     d.Title,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
	}
}

func (r *ArticleRepository) Create(ctx context.Context, a *domain.Article) (*domain.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.next(ctx, collectionArticles)
	if err != nil {
		return nil, err
	}
	doc := articleDoc{
		ID:        id,
		OwnerID:   a.OwnerID,
		Title:     a.Title,
		Content:   a.Content,
		CreatedAt: a.CreatedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert article: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ArticleRepository) FindByID(ctx context.Context, id int64) (*domain.ArticleView, error) {
	views, err := r.aggregate(ctx, viewPipeline(bson.M{"_id": id}, nil, 0, 1))
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, domain.ErrArticleNotFound
	}
	return views[0], nil
}

func (r *ArticleRepository) List(ctx context.Context, f ports.ListArticlesFilter) ([]*domain.ArticleView, error) {
	match := bson.M{}
	if !f.Date.IsZero() {
		day := f.Date.UTC().Truncate(24 * time.Hour)
		match["created_at"] = bson.M{"$gte": day, "$lt": day.Add(24 * time.Hour)}
	}
	var ownerMatch bson.M
	if f.Username != "" {
		ownerMatch = bson.M{"username": f.Username}
	}
	return r.aggregate(ctx, viewPipeline(match, ownerMatch, int64((f.Page-1)*f.Limit), int64(f.Limit)))
}

func (r *ArticleRepository) Update(ctx context.Context, a *domain.Article) (*domain.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc articleDoc
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": a.ID},
		bson.M{"$set": bson.M{"title": a.Title, "content": a.Content}},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrArticleNotFound
		}
		return nil, fmt.Errorf("update article: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ArticleRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrArticleNotFound
	}
	return nil
}

func (r *ArticleRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]*domain.ArticleView, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate articles: %w", err)
	}
	var docs []articleViewDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}

	out := make([]*domain.ArticleView, 0, len(docs))
	for _, d := range docs {
		article := articleDoc{ID: d.ID, OwnerID: d.OwnerID, Title: d.Title, Content: d.Content, CreatedAt: d.CreatedAt}
		out = append(out, &domain.ArticleView{Article: *article.toDomain(), Username: d.Username})
	}
	return out, nil
}

// viewPipeline matches articles, joins each with its owner's username,
// optionally filters on owner fields, then pages in id order.
func viewPipeline(match, ownerMatch bson.M, skip, limit int64) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionUsers},
			{Key: "localField", Value: "owner_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "owner"},
		}}},
		{{Key: "$unwind", Value: "$owner"}},
		{{Key: "$addFields", Value: bson.D{{Key: "username", Value: "$owner.username"}}}},
		{{Key: "$project", Value: bson.D{{Key: "owner", Value: 0}}}},
	}
	if len(ownerMatch) > 0 {
		p = append(p, bson.D{{Key: "$match", Value: ownerMatch}})
	}
	p = append(p,
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		bson.D{{Key: "$skip", Value: skip}},
		bson.D{{Key: "$limit", Value: limit}},
	)
	return p
}
