package util

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListToSet(t *testing.T) {
	set := StringListToSet([]string{"savings", "deposit", "savings"})
	assert.Equal(t, map[string]bool{"savings": true, "deposit": true}, set)
}

func TestContainsAny(t *testing.T) {
	set := StringListToSet([]string{"search"})
	assert.True(t, ContainsAny(set, []string{"client", "search"}))
	assert.False(t, ContainsAny(set, []string{"savings", "deposit"}))
	assert.False(t, ContainsAny(set, nil))
}

func TestNewULID_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewULID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestThreadsafeRand_ConcurrentUse(t *testing.T) {
	r := NewThreadsafeRand(42)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				n := r.Intn(26)
				assert.True(t, n >= 0 && n < 26)
			}
		}()
	}
	wg.Wait()
}

func TestDummyClock(t *testing.T) {
	start := time.Date(2022, 1, 25, 10, 0, 0, 0, time.UTC)
	c := &DummyClock{T: start}
	assert.Equal(t, start, c.Now())
	c.Step(time.Second)
	assert.Equal(t, start.Add(time.Second), c.Now())
}

type failingCloser struct{ closed bool }

func (f *failingCloser) Close() error {
	f.closed = true
	return errors.New("boom")
}

func TestCloseResource(t *testing.T) {
	c := &failingCloser{}
	CloseResource("thing", c)
	assert.True(t, c.closed)

	var buf bytes.Buffer
	assert.NotPanics(t, func() { CloseResource("buffer", nopCloser{&buf}) })
}

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }
