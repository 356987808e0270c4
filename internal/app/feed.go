package app

import (
	"sync"

	"quizboard/internal/domain"
)

const feedBuffer = 8

// LeaderboardFeed fans leaderboard snapshots out to per-quiz subscribers.
type LeaderboardFeed struct {
	mu     sync.Mutex
	topics map[int64]map[chan domain.Leaderboard]*subscriber
}

type subscriber struct {
	// published is set once the channel has been sent any snapshot.
	published bool
}

func NewLeaderboardFeed() *LeaderboardFeed {
	return &LeaderboardFeed{topics: make(map[int64]map[chan domain.Leaderboard]*subscriber)}
}

// Subscription is one listener on a quiz's leaderboard.
type Subscription struct {
	C <-chan domain.Leaderboard

	feed   *LeaderboardFeed
	quizID int64
	ch     chan domain.Leaderboard
}

// Subscribe registers a listener for quizID. The caller must Cancel it.
func (f *LeaderboardFeed) Subscribe(quizID int64) *Subscription {
	ch := make(chan domain.Leaderboard, feedBuffer)

	f.mu.Lock()
	subs, ok := f.topics[quizID]
	if !ok {
		subs = make(map[chan domain.Leaderboard]*subscriber)
		f.topics[quizID] = subs
	}
	subs[ch] = &subscriber{}
	f.mu.Unlock()

	return &Subscription{C: ch, feed: f, quizID: quizID, ch: ch}
}

// Prime delivers an initial snapshot unless a published one already reached the listener.
func (s *Subscription) Prime(lb domain.Leaderboard) {
	f := s.feed
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.topics[s.quizID][s.ch]
	if !ok || sub.published {
		return
	}
	sub.published = true
	offer(s.ch, lb)
}

// Cancel unregisters the listener and closes C. Safe to call more than once.
func (s *Subscription) Cancel() {
	f := s.feed
	f.mu.Lock()
	defer f.mu.Unlock()
	subs, ok := f.topics[s.quizID]
	if !ok {
		return
	}
	if _, ok := subs[s.ch]; ok {
		delete(subs, s.ch)
		close(s.ch)
	}
	if len(subs) == 0 {
		delete(f.topics, s.quizID)
	}
}

// Publish delivers lb to every subscriber of lb.QuizID without blocking.
func (f *LeaderboardFeed) Publish(lb domain.Leaderboard) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch, sub := range f.topics[lb.QuizID] {
		sub.published = true
		offer(ch, lb)
	}
}

// offer sends without blocking. A slow reader loses its oldest snapshot; the newest supersedes it.
func offer(ch chan domain.Leaderboard, lb domain.Leaderboard) {
	select {
	case ch <- lb:
	default:
		select {
		case <-ch:
		default:
		}
		ch <- lb
	}
}

// HasSubscribers reports whether anyone listens to quizID.
func (f *LeaderboardFeed) HasSubscribers(quizID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.topics[quizID]) > 0
}
