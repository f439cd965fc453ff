package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bitbucket.org/mmdatafocus/meatshop_console/config"
	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"
)

// ErrSubmissionInFlight is returned while another submission for the same party and screen is running.
var ErrSubmissionInFlight = errors.New("a submission for this party is already in progress")

var submissionLockTTL = 30 * time.Second

// process-local flags, used when Redis is not configured or not reachable
var (
	localMu    sync.Mutex
	localLocks = make(map[string]struct{})
)

func submissionLockKey(screen, partyId string) string {
	return fmt.Sprintf("lock:submission:%s:%s", screen, partyId)
}

func obtainLocal(key string) (func(), error) {
	localMu.Lock()
	defer localMu.Unlock()
	if _, busy := localLocks[key]; busy {
		return nil, ErrSubmissionInFlight
	}
	localLocks[key] = struct{}{}
	return func() {
		localMu.Lock()
		delete(localLocks, key)
		localMu.Unlock()
	}, nil
}

// AcquireSubmissionLock raises the in-flight flag for (screen, party). The returned release must be called once the
// submission and its refetch are done.
func AcquireSubmissionLock(ctx context.Context, screen, partyId string) (release func(), err error) {
	key := submissionLockKey(screen, partyId)
	logger := config.GetLogger()

	locker := config.GetRedisLock()
	if locker == nil {
		return obtainLocal(key)
	}

	lock, err := locker.Obtain(ctx, key, submissionLockTTL, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrSubmissionInFlight
	}
	if err != nil {
		logger.WithFields(logrus.Fields{
			"field": "AcquireSubmissionLock",
			"key":   key,
		}).Warn("error obtaining redis lock; falling back to local lock: " + err.Error())
		return obtainLocal(key)
	}

	return func() {
		// the request context may already be done
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if releaseErr := lock.Release(releaseCtx); releaseErr != nil && !errors.Is(releaseErr, redislock.ErrLockNotHeld) {
			logger.WithFields(logrus.Fields{
				"field": "AcquireSubmissionLock",
				"key":   key,
			}).Warn("failed to release redis lock: " + releaseErr.Error())
		}
	}, nil
}
