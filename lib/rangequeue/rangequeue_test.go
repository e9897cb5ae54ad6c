package rangequeue_test

import (
	"testing"

	"github.com/railgun-community/railgun-ingester/lib/rangequeue"
	"github.com/stretchr/testify/require"
)

func TestPushFrontKeepsOrder(t *testing.T) {
	q := rangequeue.New[int]()
	q.PushFront(rangequeue.Item[int]{Value: 10})
	q.PushFront(rangequeue.Item[int]{Value: 1}, rangequeue.Item[int]{Value: 2, Retries: 1})
	require.Equal(t, 3, q.Size())

	var values []int
	for {
		item, ok := q.PopFront()
		if !ok {
			break
		}
		values = append(values, item.Value)
		if item.Value == 2 {
			require.Equal(t, 1, item.Retries)
		}
	}
	require.Equal(t, []int{1, 2, 10}, values)
	require.Zero(t, q.Size())
}

func TestPopEmpty(t *testing.T) {
	q := rangequeue.New[string]()
	_, ok := q.PopFront()
	require.False(t, ok)
	require.Zero(t, q.Size())
}
