package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestComplaintFilterNormalized(t *testing.T) {
	f := ComplaintFilter{IssueType: "all", Location: "  Lahore ", Limit: 0, Offset: -3}.normalized()
	require.Equal(t, "", f.IssueType, "the all sentinel means no issueType constraint")
	require.Equal(t, "Lahore", f.Location)
	require.Equal(t, defaultListLimit, f.Limit)
	require.Equal(t, 0, f.Offset)

	f = ComplaintFilter{IssueType: " Road Damage ", Limit: 500, Offset: 40}.normalized()
	require.Equal(t, "Road Damage", f.IssueType)
	require.Equal(t, maxLimit, f.Limit)
	require.Equal(t, 40, f.Offset)
}

func TestNormalizeIssueTypeSentinels(t *testing.T) {
	require.Equal(t, "", normalizeIssueType(""))
	require.Equal(t, "", normalizeIssueType("all"))
	require.Equal(t, "", normalizeIssueType("ALL"))
	require.Equal(t, "Water Supply", normalizeIssueType("Water Supply"))
}

func TestSummaryFilterNormalized(t *testing.T) {
	f := SummaryFilter{}.normalized()
	require.Equal(t, defaultSummaryLimit, f.Limit)

	f = SummaryFilter{Limit: 1000}.normalized()
	require.Equal(t, maxLimit, f.Limit)
}

func TestTimeRangeCutoff(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	cut, ok := TimeRangeWeek.cutoff(now)
	require.True(t, ok)
	require.Equal(t, now.Add(-7*24*time.Hour), cut)

	cut, ok = TimeRangeMonth.cutoff(now)
	require.True(t, ok)
	require.Equal(t, now.Add(-30*24*time.Hour), cut)

	for _, r := range []TimeRange{TimeRangeAll, "", "fortnight"} {
		_, ok = r.cutoff(now)
		require.False(t, ok, "range %q must add no lower bound", r)
	}
}

func TestParseVoteDirection(t *testing.T) {
	dir, ok := ParseVoteDirection("up")
	require.True(t, ok)
	require.Equal(t, VoteUp, dir)

	dir, ok = ParseVoteDirection(" DOWN ")
	require.True(t, ok)
	require.Equal(t, VoteDown, dir)

	_, ok = ParseVoteDirection("sideways")
	require.False(t, ok)
	_, ok = ParseVoteDirection("")
	require.False(t, ok)
}
