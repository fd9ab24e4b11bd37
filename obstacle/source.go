package obstacle

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"git.fiblab.net/sim/accessroute/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LoadFile 从JSON文件读取障碍物数组
func LoadFile(path string) ([]model.Obstacle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read obstacle file %s: %w", path, err)
	}
	var obstacles []model.Obstacle
	if err := json.Unmarshal(data, &obstacles); err != nil {
		return nil, fmt.Errorf("decode obstacle file %s: %w", path, err)
	}
	return obstacles, nil
}

// MongoSource 以MongoDB集合作为障碍物数据源，同时实现Sink
type MongoSource struct {
	coll *mongo.Collection
}

func NewMongoSource(coll *mongo.Collection) *MongoSource {
	return &MongoSource{coll: coll}
}

// Connect 建立MongoDB连接，调用方负责Disconnect
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

func (m *MongoSource) Load(ctx context.Context) ([]model.Obstacle, error) {
	cursor, err := m.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find obstacles in %s: %w", m.coll.Name(), err)
	}
	var obstacles []model.Obstacle
	if err := cursor.All(ctx, &obstacles); err != nil {
		return nil, fmt.Errorf("decode obstacles in %s: %w", m.coll.Name(), err)
	}
	log.Infof("loaded %d obstacles from %s.%s", len(obstacles), m.coll.Database().Name(), m.coll.Name())
	return obstacles, nil
}

func (m *MongoSource) Insert(ctx context.Context, o model.Obstacle) error {
	_, err := m.coll.InsertOne(ctx, o)
	return err
}

func (m *MongoSource) SetVerified(ctx context.Context, id string, verified bool) error {
	res, err := m.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"verified": verified}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
