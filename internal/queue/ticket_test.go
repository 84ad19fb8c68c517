package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueProducesFourDigitCode(t *testing.T) {
	gen := NewTicketGenerator(0)
	now := time.Now()

	ticket, err := gen.Issue(now, nil)
	require.NoError(t, err)
	assert.Len(t, ticket.Code, 4)
	assert.Equal(t, now.Add(DefaultTicketTTL), ticket.ExpiresAt)
}

func TestIssueRetriesOnCollision(t *testing.T) {
	gen := NewTicketGenerator(time.Minute)
	// Force the first draws to collide with a taken code.
	draws := []int{7, 7, 7, 42}
	gen.rand = func(n int) int {
		v := draws[0]
		if len(draws) > 1 {
			draws = draws[1:]
		}
		return v
	}

	ticket, err := gen.Issue(time.Now(), map[string]bool{"0007": true})
	require.NoError(t, err)
	assert.Equal(t, "0042", ticket.Code)
}

func TestIssueGivesUpWhenAllCodesTaken(t *testing.T) {
	gen := NewTicketGenerator(time.Minute)
	gen.rand = func(n int) int { return 7 }

	_, err := gen.Issue(time.Now(), map[string]bool{"0007": true})
	require.Error(t, err)
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)
}
