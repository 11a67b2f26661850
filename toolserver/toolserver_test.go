package toolserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNaiveSearch_EmptyQueryShortCircuits(t *testing.T) {
	s := New(nil, 10)
	result := s.NaiveSearch(context.Background(), "   ")
	assert.Equal(t, emptyQueryError, result)
}

func TestHiSearch_EmptyQueryShortCircuits(t *testing.T) {
	s := New(nil, 10)
	result := s.HiSearch(context.Background(), "")
	assert.Equal(t, emptyQueryError, result)
}
