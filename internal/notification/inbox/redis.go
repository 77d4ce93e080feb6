package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"estudios/internal/notification/models"
	id "estudios/pkg/domain"
)

// Redis keeps each user's inbox in a hash (id -> JSON) plus a sorted set
// indexing entries by creation time.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func entriesKey(userID id.UserID) string { return "notif:" + userID.String() + ":entries" }
func indexKey(userID id.UserID) string   { return "notif:" + userID.String() + ":index" }

func (s *Redis) Add(ctx context.Context, n models.Notificacion) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notificacion: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, entriesKey(n.UserID), n.ID.String(), payload)
		p.ZAdd(ctx, indexKey(n.UserID), redis.Z{Score: float64(n.CreatedAt.UnixNano()), Member: n.ID.String()})
		return nil
	})
	if err != nil {
		return fmt.Errorf("add notificacion: %w", err)
	}
	return nil
}

func (s *Redis) List(ctx context.Context, userID id.UserID, unreadOnly bool) ([]models.Notificacion, error) {
	ids, err := s.client.ZRevRange(ctx, indexKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list notificacion index: %w", err)
	}
	if len(ids) == 0 {
		return []models.Notificacion{}, nil
	}
	raw, err := s.client.HMGet(ctx, entriesKey(userID), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("load notificaciones: %w", err)
	}
	out := make([]models.Notificacion, 0, len(raw))
	for _, v := range raw {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var n models.Notificacion
		if err := json.Unmarshal([]byte(str), &n); err != nil {
			return nil, fmt.Errorf("decode notificacion: %w", err)
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// MarkAllRead rewrites unread entries under WATCH so concurrent adds are not lost.
func (s *Redis) MarkAllRead(ctx context.Context, userID id.UserID) (int, error) {
	key := entriesKey(userID)
	marked := 0
	txf := func(tx *redis.Tx) error {
		all, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		updates := make(map[string]any)
		for field, str := range all {
			var n models.Notificacion
			if err := json.Unmarshal([]byte(str), &n); err != nil {
				return fmt.Errorf("decode notificacion: %w", err)
			}
			if n.IsRead {
				continue
			}
			n.IsRead = true
			payload, err := json.Marshal(n)
			if err != nil {
				return err
			}
			updates[field] = payload
		}
		marked = len(updates)
		if marked == 0 {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, key, updates)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < 3; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("mark notificaciones read: %w", err)
		}
		return marked, nil
	}
	return 0, fmt.Errorf("mark notificaciones read: %w", redis.TxFailedErr)
}
