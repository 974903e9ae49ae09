package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"evoting-portal/internal/backend"
	"evoting-portal/internal/domain"
	"evoting-portal/internal/session"
	"evoting-portal/pkg/logger"
	"evoting-portal/pkg/poll"
	"evoting-portal/pkg/redis"
)

// Polling cadences for background refreshers
const (
	liveResultsInterval    = 30 * time.Second
	activeElectionInterval = 60 * time.Second

	// A watcher that nobody reads for this long stops itself
	watcherIdleAfter = 3 * liveResultsInterval
)

// watcher keeps one election's live results warm. It refreshes with the
// credentials of whoever read it last, the same way the browser polled with
// the viewer's token, and expires once nobody is reading.
type watcher struct {
	handle *poll.Handle

	mu       sync.Mutex
	sess     *session.Session
	lastRead time.Time
}

func (w *watcher) touch(sess *session.Session) {
	w.mu.Lock()
	w.sess = sess
	w.lastRead = time.Now()
	w.mu.Unlock()
}

func (w *watcher) reader() (*session.Session, time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sess, w.lastRead
}

// ResultsService serves election results, keeping live tallies warm in Redis
// with one background poller per watched election.
type ResultsService struct {
	backend *backend.Client
	redis   *redis.Client
	log     *logger.Logger

	liveInterval time.Duration
	idleAfter    time.Duration

	mu       sync.Mutex
	watchers map[string]*watcher
	monitor  *poll.Handle
}

// NewResultsService creates a results service
func NewResultsService(backendClient *backend.Client, redisClient *redis.Client, log *logger.Logger) *ResultsService {
	return &ResultsService{
		backend:      backendClient,
		redis:        redisClient,
		log:          log,
		liveInterval: liveResultsInterval,
		idleAfter:    watcherIdleAfter,
		watchers:     map[string]*watcher{},
	}
}

// LiveResults returns the live tally for an election, cache first
func (s *ResultsService) LiveResults(ctx context.Context, electionID string) (*domain.LiveResults, error) {
	key := s.redis.KeyBuilder.KeyLiveResults(electionID)
	if data, err := s.redis.Get(ctx, key); err == nil {
		var results domain.LiveResults
		if json.Unmarshal([]byte(data), &results) == nil {
			return &results, nil
		}
	}
	return s.refresh(ctx, electionID)
}

// FinalResults returns the published results for a completed election
func (s *ResultsService) FinalResults(ctx context.Context, electionID string) (*domain.LiveResults, error) {
	return s.backend.GetResults(ctx, electionID)
}

// AllElections lists every election for the results selector
func (s *ResultsService) AllElections(ctx context.Context) ([]domain.Election, error) {
	list, err := s.backend.ListElections(ctx)
	if err != nil {
		return nil, err
	}
	return list.Data, nil
}

// Watch keeps an election's live results warm for the reader. The watcher
// refreshes on the reader's behalf and stops itself once nobody has read the
// election for a few intervals, so abandoned result pages never poll forever.
func (s *ResultsService) Watch(sess *session.Session, electionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.watchers[electionID]; ok {
		w.touch(sess)
		return
	}

	s.log.WithField("election_id", electionID).Info("Watching live results")
	w := &watcher{sess: sess, lastRead: time.Now()}
	w.handle = poll.Start(context.Background(), s.liveInterval, func(ctx context.Context) {
		s.runWatcher(ctx, electionID, w)
	})
	s.watchers[electionID] = w
}

func (s *ResultsService) runWatcher(ctx context.Context, electionID string, w *watcher) {
	sess, lastRead := w.reader()
	if time.Since(lastRead) > s.idleAfter {
		s.log.WithField("election_id", electionID).Info("Live results watcher idle, stopping")
		// Stop waits for this run, so the teardown happens off the poll
		// goroutine.
		go s.stopWatcher(electionID, w)
		return
	}
	if _, err := s.refresh(session.WithSession(ctx, sess), electionID); err != nil {
		s.log.WithError(err).WithField("election_id", electionID).Warn("Live results refresh failed")
	}
}

// Unwatch stops the live results poller for an election
func (s *ResultsService) Unwatch(electionID string) {
	s.stopWatcher(electionID, nil)
}

// stopWatcher removes and stops an election's watcher. With only set, the
// watcher is stopped only if it is still that exact one; a replacement
// started by a newer read is left running.
func (s *ResultsService) stopWatcher(electionID string, only *watcher) {
	s.mu.Lock()
	w, ok := s.watchers[electionID]
	if ok && (only == nil || w == only) {
		delete(s.watchers, electionID)
	} else {
		ok = false
	}
	s.mu.Unlock()
	if ok {
		w.handle.Stop()
	}
}

// StartElectionMonitor begins the background refresh of the active elections
// cache and asks the backend to re-check election windows each cycle.
func (s *ResultsService) StartElectionMonitor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.monitor != nil {
		return
	}
	s.monitor = poll.Start(context.Background(), activeElectionInterval, func(ctx context.Context) {
		if err := s.backend.CheckElectionStatus(ctx); err != nil {
			s.log.WithError(err).Debug("Election status check failed")
		}
		if err := s.refreshActiveElections(ctx); err != nil {
			s.log.WithError(err).Warn("Active elections refresh failed")
		}
	})
}

// Stop halts the election monitor and all live results pollers
func (s *ResultsService) Stop() {
	s.mu.Lock()
	monitor := s.monitor
	s.monitor = nil
	watchers := s.watchers
	s.watchers = map[string]*watcher{}
	s.mu.Unlock()

	if monitor != nil {
		monitor.Stop()
	}
	for _, w := range watchers {
		w.handle.Stop()
	}
}

func (s *ResultsService) refresh(ctx context.Context, electionID string) (*domain.LiveResults, error) {
	results, err := s.backend.GetLiveResults(ctx, electionID)
	if err != nil {
		return nil, err
	}

	key := s.redis.KeyBuilder.KeyLiveResults(electionID)
	if data, err := json.Marshal(results); err == nil {
		if err := s.redis.Set(ctx, key, string(data), redis.TTLLiveResults); err != nil {
			s.log.WithError(err).Debug("Failed to cache live results")
		}
	}
	return results, nil
}

func (s *ResultsService) refreshActiveElections(ctx context.Context) error {
	list, err := s.backend.ListActiveElections(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(list.Data)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, s.redis.KeyBuilder.KeyActiveElections(), string(data), redis.TTLActiveElections)
}
