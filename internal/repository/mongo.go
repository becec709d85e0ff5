package repository

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/plantee/storefront/internal/domain"
	"github.com/plantee/storefront/pkg/common"
)

const (
	plantCollection   = "plants"
	orderCollection   = "orders"
	contactCollection = "contacts"
)

// NewMongoStore builds a Store on a MongoDB database. Closing the store
// disconnects the client.
func NewMongoStore(client *mongo.Client, dbName string) *Store {
	db := client.Database(dbName)
	return &Store{
		Plants:   &MongoPlantRepository{coll: db.Collection(plantCollection)},
		Orders:   &MongoOrderRepository{coll: db.Collection(orderCollection)},
		Contacts: &MongoContactRepository{coll: db.Collection(contactCollection)},
		closer:   client.Disconnect,
	}
}

// EnsureMongoIndexes creates the indexes the listing orders rely on.
func EnsureMongoIndexes(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	specs := map[string][]mongo.IndexModel{
		plantCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}},
			{Keys: bson.D{{Key: "stockQuantity", Value: 1}}},
		},
		orderCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "orderNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		contactCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
	}
	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "create indexes on %s", name)
		}
	}
	return nil
}

// MongoPlantRepository is the MongoDB implementation of PlantRepository
type MongoPlantRepository struct {
	coll *mongo.Collection
}

var catalogSort = bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}

func (r *MongoPlantRepository) List(ctx context.Context) ([]domain.Plant, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(catalogSort))
	if err != nil {
		return nil, errors.Wrap(err, "list plants")
	}
	plants := []domain.Plant{}
	if err := cur.All(ctx, &plants); err != nil {
		return nil, errors.Wrap(err, "decode plants")
	}
	return plants, nil
}

func (r *MongoPlantRepository) Get(ctx context.Context, id string) (*domain.Plant, error) {
	if !common.ValidID(id) {
		return nil, ErrNotFound
	}
	var p domain.Plant
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get plant %s", id)
	}
	return &p, nil
}

func (r *MongoPlantRepository) Create(ctx context.Context, p *domain.Plant) error {
	if p.ID == "" {
		p.ID = common.NewID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = common.Now()
	}
	_, err := r.coll.InsertOne(ctx, p)
	return errors.Wrap(err, "create plant")
}

func (r *MongoPlantRepository) Update(ctx context.Context, p *domain.Plant) error {
	if !common.ValidID(p.ID) {
		return ErrNotFound
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": bson.M{
		"name":          p.Name,
		"description":   p.Description,
		"price":         p.Price,
		"imageUrl":      p.ImageURL,
		"category":      p.Category,
		"stockQuantity": p.StockQuantity,
	}})
	if err != nil {
		return errors.Wrapf(err, "update plant %s", p.ID)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoPlantRepository) Delete(ctx context.Context, id string) error {
	if !common.ValidID(id) {
		return ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrapf(err, "delete plant %s", id)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoPlantRepository) DeleteAll(ctx context.Context) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{})
	return errors.Wrap(err, "delete all plants")
}

func (r *MongoPlantRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, errors.Wrap(err, "count plants")
	}
	return n, nil
}

func (r *MongoPlantRepository) Reserve(ctx context.Context, id string, qty int) (*domain.Plant, error) {
	if !common.ValidID(id) {
		return nil, ErrNotFound
	}
	var p domain.Plant
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "stockQuantity": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stockQuantity": -qty}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		current, gerr := r.Get(ctx, id)
		if gerr != nil {
			return nil, gerr
		}
		return current, ErrInsufficientStock
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reserve plant %s", id)
	}
	return &p, nil
}

func (r *MongoPlantRepository) Release(ctx context.Context, id string, qty int) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"stockQuantity": qty}})
	if err != nil {
		return errors.Wrapf(err, "release plant %s", id)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoPlantRepository) LowStock(ctx context.Context, threshold int) ([]domain.Plant, error) {
	cur, err := r.coll.Find(ctx,
		bson.M{"stockQuantity": bson.M{"$lte": threshold}},
		options.Find().SetSort(bson.D{{Key: "stockQuantity", Value: 1}, {Key: "name", Value: 1}}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "query low stock")
	}
	plants := []domain.Plant{}
	if err := cur.All(ctx, &plants); err != nil {
		return nil, errors.Wrap(err, "decode plants")
	}
	return plants, nil
}

// MongoOrderRepository is the MongoDB implementation of OrderRepository.
// Line items are embedded in the order document.
type MongoOrderRepository struct {
	coll *mongo.Collection
}

func (r *MongoOrderRepository) Create(ctx context.Context, o *domain.Order) error {
	if o.ID == "" {
		o.ID = common.NewID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = common.Now()
	}
	for i := range o.Items {
		o.Items[i].Seq = i
	}
	_, err := r.coll.InsertOne(ctx, o)
	return errors.Wrap(err, "create order")
}

func (r *MongoOrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	if !common.ValidID(id) {
		return nil, ErrNotFound
	}
	var o domain.Order
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get order %s", id)
	}
	return &o, nil
}

func (r *MongoOrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	cur, err := r.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	orders := []domain.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, errors.Wrap(err, "decode orders")
	}
	return orders, nil
}

func (r *MongoOrderRepository) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	if !common.ValidID(id) {
		return nil, ErrNotFound
	}
	var o domain.Order
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "update order %s", id)
	}
	return &o, nil
}

// MongoContactRepository is the MongoDB implementation of ContactRepository
type MongoContactRepository struct {
	coll *mongo.Collection
}

func (r *MongoContactRepository) Create(ctx context.Context, m *domain.ContactMessage) error {
	if m.ID == "" {
		m.ID = common.NewID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = common.Now()
	}
	_, err := r.coll.InsertOne(ctx, m)
	return errors.Wrap(err, "create contact message")
}

func (r *MongoContactRepository) List(ctx context.Context) ([]domain.ContactMessage, error) {
	cur, err := r.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "list contact messages")
	}
	msgs := []domain.ContactMessage{}
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, errors.Wrap(err, "decode contact messages")
	}
	return msgs, nil
}
