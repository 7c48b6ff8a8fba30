package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type KeyedSuite struct {
	suite.Suite
	locks *Keyed[string]
}

func TestKeyedSuite(t *testing.T) {
	suite.Run(t, new(KeyedSuite))
}

func (s *KeyedSuite) SetupTest() {
	s.locks = NewKeyed[string]()
}

func (s *KeyedSuite) TestLockAndUnlock() {
	unlock, err := s.locks.Lock(context.Background(), "a")
	s.Require().NoError(err)
	s.Equal(1, s.locks.Len())

	unlock()
	s.Equal(0, s.locks.Len())
}

func (s *KeyedSuite) TestUnlockTwiceIsSafe() {
	unlock, err := s.locks.Lock(context.Background(), "a")
	s.Require().NoError(err)

	unlock()
	unlock()

	unlock2, err := s.locks.Lock(context.Background(), "a")
	s.Require().NoError(err)
	unlock2()
}

func (s *KeyedSuite) TestDifferentKeysDoNotBlock() {
	unlockA, err := s.locks.Lock(context.Background(), "a")
	s.Require().NoError(err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := s.locks.Lock(ctx, "b")
	s.Require().NoError(err)
	unlockB()
}

func (s *KeyedSuite) TestSameKeyWaitsForContext() {
	unlock, err := s.locks.Lock(context.Background(), "a")
	s.Require().NoError(err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = s.locks.Lock(ctx, "a")
	s.ErrorIs(err, context.DeadlineExceeded)
	s.Equal(1, s.locks.Len())
}

func (s *KeyedSuite) TestMutualExclusion() {
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := s.locks.Lock(context.Background(), "room")
			if err != nil {
				return
			}
			defer unlock()
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	s.Equal(50, counter)
	s.Equal(0, s.locks.Len())
}
