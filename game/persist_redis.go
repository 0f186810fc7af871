package game

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

type RedisHandHistory struct {
	rdclient *redis.Client
	perRoom  int
}

func NewRedisHandHistory(redisURL string, redisPW string, redisDB int, perRoom int) *RedisHandHistory {
	rdclient := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: redisPW,
		DB:       redisDB,
	})
	if perRoom < 1 {
		perRoom = 1
	}
	return &RedisHandHistory{
		rdclient: rdclient,
		perRoom:  perRoom,
	}
}

func handHistoryKey(roomID string) string {
	return fmt.Sprintf("room:%s:hands", roomID)
}

func (r *RedisHandHistory) Ping(ctx context.Context) error {
	return r.rdclient.Ping(ctx).Err()
}

func (r *RedisHandHistory) Save(roomID string, record *HandRecord) error {
	recordBytes, err := jsoniter.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "Unable to marshal hand record")
	}
	key := handHistoryKey(roomID)
	ctx := context.Background()
	_, err = r.rdclient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, recordBytes)
		pipe.LTrim(ctx, key, 0, int64(r.perRoom-1))
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "Unable to save hand %s of room %s", record.HandID, roomID)
	}
	return nil
}

func (r *RedisHandHistory) Load(roomID string, limit int) ([]HandRecord, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	values, err := r.rdclient.LRange(context.Background(), handHistoryKey(roomID), 0, stop).Result()
	if err == redis.Nil {
		return []HandRecord{}, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "Unable to load hands of room %s", roomID)
	}
	records := make([]HandRecord, 0, len(values))
	for _, value := range values {
		var record HandRecord
		err = jsoniter.Unmarshal([]byte(value), &record)
		if err != nil {
			return nil, errors.Wrapf(err, "Corrupt hand record in room %s", roomID)
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *RedisHandHistory) Remove(roomID string) error {
	return r.rdclient.Del(context.Background(), handHistoryKey(roomID)).Err()
}

func (r *RedisHandHistory) Close() error {
	return r.rdclient.Close()
}
