package redis

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

const (
	SequenceSlidingWindowSize = 1000

	// maxValidSequence is the largest sequence number that is guaranteed to have a unique ZSet score from all
	// smaller sequence numbers. A ZSet in redis is used to track unique sequence numbers. Each item in a ZSet has
	// a score, which is stored as a float64. Due to the precision loss when converting large integers to floating
	// point numbers, at some point 2 distinct sequence numbers will map to the same score in the Redis ZSet.
	maxValidSequence    = (1 << (float64MantissaSize + 1)) - 1
	float64MantissaSize = 52
)

var ErrSequenceHasAlreadyBeenUsed = eris.New("sequence number has already been used")

// JournalStorage remembers which submission sequence numbers each client
// has already sent, so a retried or replayed batch is applied exactly once.
type JournalStorage struct {
	Client    *redis.Client
	Namespace string
	// mutex locks the UseSequence function to make it safe for concurrent access. This is a single lock for all
	// clients. An improvement on JournalStorage would have a different lock for each client.
	mutex         *sync.Mutex
	maxSequence   map[string]uint64
	countSequence map[string]int
}

func NewJournalStorage(client *redis.Client, namespace string) JournalStorage {
	return JournalStorage{
		Client:        client,
		Namespace:     namespace,
		mutex:         &sync.Mutex{},
		maxSequence:   map[string]uint64{},
		countSequence: map[string]int{},
	}
}

// UseSequence atomically marks the given sequence number as used. The
// sequence is valid if nil is returned. A non-nil error means there was an
// error verifying the sequence, or it was already used.
func (r *JournalStorage) UseSequence(clientID string, sequence uint64) error {
	if sequence > maxValidSequence {
		return eris.New("sequence number is too large")
	}
	ctx := context.Background()
	key := r.journalSetKey(clientID)

	r.mutex.Lock()
	defer r.mutex.Unlock()

	maxSequence, err := r.getMaxSequenceForKey(ctx, key)
	if err != nil {
		return eris.Wrap(err, "failed to get max sequence for client")
	}

	if sequence < maxSequence && maxSequence-sequence >= SequenceSlidingWindowSize {
		return eris.New("sequence number is too old")
	}

	zItem := redis.Z{
		Score:  float64(sequence),
		Member: sequence,
	}

	added, err := r.Client.ZAdd(ctx, key, zItem).Result()
	if err != nil {
		return eris.Wrap(err, "failed to add sequence number")
	}
	if added == 0 {
		return eris.Wrapf(ErrSequenceHasAlreadyBeenUsed,
			"client %q has already used sequence number %d", clientID, sequence)
	}

	r.maxSequence[key] = max(r.maxSequence[key], sequence)
	r.countSequence[key]++

	if r.countSequence[key] > 1.5*SequenceSlidingWindowSize {
		r.pruneOldSequences(ctx, key, r.maxSequence[key])
	}

	return nil
}

func (r *JournalStorage) pruneOldSequences(ctx context.Context, key string, currMax uint64) {
	minScore := "-inf"
	maxScore := fmt.Sprintf("%d", currMax-SequenceSlidingWindowSize)
	removed, err := r.Client.ZRemRangeByScore(ctx, key, minScore, maxScore).Result()
	if err != nil {
		log.Err(err).Msg("failed to remove some old sequence numbers")
		return
	}
	r.countSequence[key] -= int(removed)
}

func (r *JournalStorage) getMaxSequenceForKey(ctx context.Context, key string) (uint64, error) {
	maxSequence, ok := r.maxSequence[key]
	if ok {
		return maxSequence, nil
	}
	values, err := r.Client.ZRange(ctx, key, -1, 0).Result()
	if err != nil {
		return 0, eris.Wrap(err, "failed to get range of sequence values")
	}
	if len(values) > 0 {
		maxSequence, err = strconv.ParseUint(values[0], 10, 64)
		if err != nil {
			return 0, eris.Wrapf(err, "failed to convert %q to uint64", values[0])
		}
	}
	// if len(values) == 0, no sequence has been saved for this key
	r.maxSequence[key] = maxSequence
	return maxSequence, nil
}
