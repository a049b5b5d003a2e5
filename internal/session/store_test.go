package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_UnknownSession(t *testing.T) {
	s := NewStore()
	assert.Empty(t, s.History("nope"))
}

func TestAppendAndHistory(t *testing.T) {
	s := NewStore()
	s.Append("s1", "user", "hello")
	s.Append("s1", "assistant", "hi there")

	history := s.History("s1")
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, "assistant", history[1].Role)
}

func TestSessionsAreIsolated(t *testing.T) {
	s := NewStore()
	s.Append("alice", "user", "question from alice")
	s.Append("bob", "user", "question from bob")

	require.Len(t, s.History("alice"), 1)
	require.Len(t, s.History("bob"), 1)
	assert.Equal(t, "question from alice", s.History("alice")[0].Content)
	assert.Equal(t, "question from bob", s.History("bob")[0].Content)
}

func TestHistory_ReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Append("s1", "user", "original")

	history := s.History("s1")
	history[0].Content = "mutated"

	assert.Equal(t, "original", s.History("s1")[0].Content)
}

func TestAppend_Concurrent(t *testing.T) {
	s := NewStore()

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Append("s1", "user", fmt.Sprintf("turn %d", i))
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.History("s1"), n, "no turn may be lost under concurrent appends")
}
