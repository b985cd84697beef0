package drawplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketizeSingleRoundSplitsContiguously(t *testing.T) {
	teams := seedTeams(8)
	refs := make([]wfMatchRef, 4)
	for i := range refs {
		refs[i] = wfMatchRef{teamA: teams[i*2], teamB: teams[i*2+1]}
	}

	buckets := bucketizeSingleRound(refs, 2)
	require.Len(t, buckets, 2)
	assert.Len(t, buckets[0], 2)
	assert.Len(t, buckets[1], 2)
}

func TestBucketizeTwoRoundsConcatenatesWinnersThenLosers(t *testing.T) {
	teams := seedTeams(8)
	winners := []wfMatchRef{{teamA: teams[0], teamB: teams[1]}}
	losers := []wfMatchRef{{teamA: teams[2], teamB: teams[3]}}

	buckets := bucketizeTwoRounds(winners, losers, 1)
	require.Len(t, buckets, 1)
	require.Len(t, buckets[0], 2)
	assert.Equal(t, winners[0], buckets[0][0])
	assert.Equal(t, losers[0], buckets[0][1])
}

func TestPoolTeamsFromBucketDedupsAndCapsSize(t *testing.T) {
	teams := seedTeams(4)
	bucket := []wfMatchRef{
		{teamA: teams[0], teamB: teams[1]},
		{teamA: teams[1], teamB: teams[2]}, // teams[1] repeated across refs
	}

	out := poolTeamsFromBucket(bucket, 2)
	require.Len(t, out, 2)
	assert.Equal(t, teams[0], out[0])
	assert.Equal(t, teams[1], out[1])
}

func TestPoolLabelAlphabetic(t *testing.T) {
	assert.Equal(t, "A", poolLabel(0))
	assert.Equal(t, "B", poolLabel(1))
	assert.Equal(t, "C", poolLabel(2))
}
