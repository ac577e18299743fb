package mongo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/w-h-a/fred/errs"
	"github.com/w-h-a/fred/observation"
	"github.com/w-h-a/fred/persister"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type document struct {
	Id           bson.ObjectID `bson:"_id,omitempty"`
	SeriesId     string        `bson:"seriesId"`
	Date         time.Time     `bson:"date"`
	Value        float64       `bson:"value"`
	Embedding    []float64     `bson:"embedding,omitempty"`
	EmbeddingKey string        `bson:"embeddingKey,omitempty"`
}

type mongoPersister struct {
	options    persister.Options
	client     *mongo.Client
	collection *mongo.Collection
	mtx        sync.Mutex
}

func (p *mongoPersister) ReplaceSeries(ctx context.Context, seriesId string, observations []observation.Observation) (int, error) {
	coll, err := p.getCollection()
	if err != nil {
		return 0, err
	}

	if _, err := coll.DeleteMany(ctx, bson.M{"seriesId": seriesId}); err != nil {
		return 0, fmt.Errorf("delete series %s: %w", seriesId, err)
	}

	if len(observations) == 0 {
		return 0, nil
	}

	docs := make([]document, 0, len(observations))
	for _, o := range observations {
		docs = append(docs, document{
			SeriesId: seriesId,
			Date:     o.Date.UTC(),
			Value:    o.Value,
		})
	}

	rsp, err := coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert series %s: %w", seriesId, err)
	}

	return len(rsp.InsertedIDs), nil
}

func (p *mongoPersister) List(ctx context.Context) ([]observation.Observation, error) {
	return p.find(ctx, bson.M{})
}

func (p *mongoPersister) ListSeries(ctx context.Context, seriesId string) ([]observation.Observation, error) {
	return p.find(ctx, bson.M{"seriesId": seriesId})
}

func (p *mongoPersister) SetEmbedding(ctx context.Context, id string, vector []float32, key string) error {
	coll, err := p.getCollection()
	if err != nil {
		return err
	}

	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("observation id %q: %w", id, err)
	}

	values := make([]float64, len(vector))
	for i, v := range vector {
		values[i] = float64(v)
	}

	rsp, err := coll.UpdateOne(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"embedding": values, "embeddingKey": key}},
	)
	if err != nil {
		return err
	}

	if rsp.MatchedCount == 0 {
		return fmt.Errorf("observation %s not found", id)
	}

	return nil
}

func (p *mongoPersister) find(ctx context.Context, filter bson.M) ([]observation.Observation, error) {
	coll, err := p.getCollection()
	if err != nil {
		return nil, err
	}

	cur, err := coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "seriesId", Value: 1}, {Key: "date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]observation.Observation, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toObservation(doc))
	}

	return out, nil
}

func (p *mongoPersister) getCollection() (*mongo.Collection, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.collection != nil {
		return p.collection, nil
	}

	if len(p.options.Location) == 0 {
		return nil, errs.Configuration("mongo persister requires MONGODB_URI")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(p.options.Location))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	p.client = client
	p.collection = client.Database(p.options.Database).Collection(p.options.Collection)

	return p.collection, nil
}

func toObservation(doc document) observation.Observation {
	o := observation.Observation{
		ID:           doc.Id.Hex(),
		SeriesId:     doc.SeriesId,
		Date:         doc.Date.UTC(),
		Value:        doc.Value,
		EmbeddingKey: doc.EmbeddingKey,
	}

	if len(doc.Embedding) > 0 {
		o.Embedding = make([]float32, len(doc.Embedding))
		for i, v := range doc.Embedding {
			o.Embedding[i] = float32(v)
		}
	}

	return o
}

func NewPersister(opts ...persister.Option) persister.Persister {
	options := persister.NewOptions(opts...)

	p := &mongoPersister{
		options: options,
		mtx:     sync.Mutex{},
	}

	return p
}
