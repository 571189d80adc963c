// Package memory is an in-process storage backend. It honours the same
// contracts as the database backends (conditional writes, transactions
// that roll back) and is used for local runs and tests.
package memory

import (
	"context"
	"sync"

	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/AndersonGC/dryfit/internal/repository"
	"github.com/google/uuid"
)

type state struct {
	accounts      map[uuid.UUID]domain.Account
	invites       map[string]domain.InviteCode
	verifications map[string]domain.EmailVerification
	workouts      map[uuid.UUID]domain.Workout
	categories    map[uuid.UUID]domain.WorkoutCategory
}

func newState() state {
	return state{
		accounts:      make(map[uuid.UUID]domain.Account),
		invites:       make(map[string]domain.InviteCode),
		verifications: make(map[string]domain.EmailVerification),
		workouts:      make(map[uuid.UUID]domain.Workout),
		categories:    make(map[uuid.UUID]domain.WorkoutCategory),
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.invites {
		c.invites[k] = v
	}
	for k, v := range s.verifications {
		c.verifications[k] = v
	}
	for k, v := range s.workouts {
		v.Blocks = append([]domain.Block(nil), v.Blocks...)
		c.workouts[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	return c
}

// Store keeps everything in maps. Transactions are serialised: WithTx
// holds txMu for the whole callback and restores a snapshot on error.
// Plain (non-tx) calls also take txMu, so they wait for an open
// transaction and a rollback can only discard the transaction's writes.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data state
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{data: newState()}
}

func (s *Store) Repos() repository.Repositories {
	return s.repos(false)
}

func (s *Store) repos(inTx bool) repository.Repositories {
	c := conn{s: s, inTx: inTx}
	return repository.Repositories{
		Accounts:      &accountRepo{c},
		Invites:       &inviteRepo{c},
		Verifications: &verificationRepo{c},
		Workouts:      &workoutRepo{c},
		Categories:    &categoryRepo{c},
	}
}

// conn is what every repository holds. Inside WithTx txMu is already
// held by the transaction, so only mu is taken.
type conn struct {
	s    *Store
	inTx bool
}

// lock takes the write lock and returns the matching unlock.
func (c conn) lock() func() {
	if !c.inTx {
		c.s.txMu.Lock()
	}
	c.s.mu.Lock()
	return func() {
		c.s.mu.Unlock()
		if !c.inTx {
			c.s.txMu.Unlock()
		}
	}
}

func (c conn) rlock() func() {
	if !c.inTx {
		c.s.txMu.Lock()
	}
	c.s.mu.RLock()
	return func() {
		c.s.mu.RUnlock()
		if !c.inTx {
			c.s.txMu.Unlock()
		}
	}
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	defer func() {
		if p := recover(); p != nil {
			s.restore(snapshot)
			panic(p)
		}
		if err != nil {
			s.restore(snapshot)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, s.repos(true))
}

func (s *Store) restore(snapshot state) {
	s.mu.Lock()
	s.data = snapshot
	s.mu.Unlock()
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close(context.Context) error {
	return nil
}
