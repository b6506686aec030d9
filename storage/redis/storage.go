// Package redis holds the world's redis-backed metadata storage: persisted
// spec document schemas for drift detection across engine versions, and the
// submission journal that rejects replayed batches. Save data itself lives
// in the delta store, this package carries everything around it.
package redis

import (
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Storage struct {
	Namespace string
	Client    *redis.Client
	Log       zerolog.Logger
	JournalStorage
	SchemaStorage
}

type Options = redis.Options

func NewRedisStorage(options Options, namespace string) Storage {
	client := redis.NewClient(&options)
	return Storage{
		Namespace:      namespace,
		Client:         client,
		Log:            zerolog.New(os.Stdout),
		JournalStorage: NewJournalStorage(client, namespace),
		SchemaStorage:  NewSchemaStorage(client, namespace),
	}
}

func (r *Storage) Close() error {
	log.Info().Msg("Closing storage connection.")
	if err := r.Client.Close(); err != nil {
		return eris.Wrap(err, "")
	}
	log.Info().Msg("Successfully closed storage connection.")
	return nil
}
