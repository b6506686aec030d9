package delta

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"pkg.world.dev/terra/codec"
	"pkg.world.dev/terra/types"
)

// Options configures the redis-backed store.
type Options = redis.Options

// NewRedisStore returns a store that persists cell records in redis: one
// compact JSON document per cell, plus a set of known cells for listing.
func NewRedisStore(options Options) *CellStore {
	return newCellStore(&redisBackend{client: redis.NewClient(&options)})
}

type redisBackend struct {
	client    *redis.Client
	namespace types.Namespace
}

func (b *redisBackend) initialize(namespace types.Namespace) error {
	if err := b.client.Ping(context.Background()).Err(); err != nil {
		return eris.Wrap(err, "failed to connect to redis")
	}
	b.namespace = namespace
	return nil
}

func (b *redisBackend) load(ctx context.Context, cell types.CellKey) (CellRecord, bool, error) {
	data, err := b.client.Get(ctx, storageRecordKey(b.namespace, cell)).Bytes()
	if err != nil {
		if eris.Is(eris.Cause(err), redis.Nil) {
			return CellRecord{}, false, nil
		}
		return CellRecord{}, false, eris.Wrapf(err, "failed to load delta record for cell %s", cell)
	}
	rec, err := codec.Decode[CellRecord](data)
	if err != nil {
		return CellRecord{}, false, eris.Wrapf(err, "failed to decode delta record for cell %s", cell)
	}
	return rec, true, nil
}

func (b *redisBackend) persist(ctx context.Context, records map[types.CellKey]CellRecord) error {
	pipe := b.client.TxPipeline()
	for cell, rec := range records {
		data, err := codec.Encode(rec)
		if err != nil {
			return eris.Wrapf(err, "failed to encode delta record for cell %s", cell)
		}
		pipe.Set(ctx, storageRecordKey(b.namespace, cell), data, 0)
		pipe.SAdd(ctx, storageCellSetKey(b.namespace), cell.String())
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return eris.Wrap(err, "failed to commit delta records to redis")
	}
	return nil
}

func (b *redisBackend) storedCells(ctx context.Context) ([]types.CellKey, error) {
	members, err := b.client.SMembers(ctx, storageCellSetKey(b.namespace)).Result()
	if err != nil {
		return nil, eris.Wrap(err, "failed to list stored cells")
	}
	cells := make([]types.CellKey, 0, len(members))
	for _, member := range members {
		cell, err := types.ParseCellKey(member)
		if err != nil {
			log.Warn().Str("member", member).Msg("skipping unparsable cell in stored cell set")
			continue
		}
		cells = append(cells, cell)
	}
	return cells, nil
}

func (b *redisBackend) close() error {
	if err := b.client.Close(); err != nil {
		return eris.Wrap(err, "")
	}
	return nil
}
