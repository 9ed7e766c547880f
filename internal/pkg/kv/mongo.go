package kv

import (
	"context"
	"fmt"
	"regexp"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoEntry struct {
	Key   string `bson:"_id"`
	Value []byte `bson:"value"`
	Rev   int64  `bson:"rev"`
}

// MongoStore 每个 Key 一个文档，rev 字段做乐观锁
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database, collection string) *MongoStore {
	return &MongoStore{col: db.Collection(collection)}
}

func (s *MongoStore) load(ctx context.Context, key string) (*mongoEntry, error) {
	var e mongoEntry
	err := s.col.FindOne(ctx, bson.M{"_id": key}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *MongoStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	e, err := s.load(ctx, key)
	if err != nil || e == nil {
		return nil, false, err
	}
	return e.Value, true, nil
}

func (s *MongoStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$set": bson.M{"value": value}, "$inc": bson.M{"rev": 1}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *MongoStore) Delete(ctx context.Context, key string) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (s *MongoStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	filter := bson.M{"_id": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}
	cursor, err := s.col.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var keys []string
	for cursor.Next(ctx) {
		var e mongoEntry
		if err := cursor.Decode(&e); err != nil {
			return nil, err
		}
		keys = append(keys, e.Key)
	}
	return keys, cursor.Err()
}

func (s *MongoStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	for i := 0; i < maxUpdateRetries; i++ {
		cur, err := s.load(ctx, key)
		if err != nil {
			return err
		}
		var old []byte
		if cur != nil {
			old = cur.Value
		}

		next, write, err := apply(fn, old, cur != nil)
		if err != nil || !write {
			return err
		}

		ok, err := s.commit(ctx, key, cur, next)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return fmt.Errorf("kv: update %s: too many conflicts", key)
}

// commit 仅当 rev 未变化时写入，返回 false 表示需要重试
func (s *MongoStore) commit(ctx context.Context, key string, cur *mongoEntry, next []byte) (bool, error) {
	switch {
	case cur == nil && next == nil:
		return true, nil
	case cur == nil:
		_, err := s.col.InsertOne(ctx, mongoEntry{Key: key, Value: next, Rev: 1})
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return err == nil, err
	case next == nil:
		res, err := s.col.DeleteOne(ctx, bson.M{"_id": key, "rev": cur.Rev})
		if err != nil {
			return false, err
		}
		return res.DeletedCount == 1, nil
	default:
		res, err := s.col.UpdateOne(ctx,
			bson.M{"_id": key, "rev": cur.Rev},
			bson.M{"$set": bson.M{"value": next, "rev": cur.Rev + 1}},
		)
		if err != nil {
			return false, err
		}
		return res.MatchedCount == 1, nil
	}
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultCloseTimeout)
	defer cancel()
	return s.col.Database().Client().Disconnect(ctx)
}
