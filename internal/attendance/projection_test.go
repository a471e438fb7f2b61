package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject(t *testing.T) {
	tests := []struct {
		name    string
		present int
		total   int
		want    Projection
	}{
		{
			name:    "exactly at threshold",
			present: 75, total: 100,
			want: Projection{Status: StatusSafe, Message: "Don't miss any more classes", Percentage: 75, CanMiss: 0},
		},
		{
			name:    "safe with slack",
			present: 80, total: 100,
			want: Projection{Status: StatusSafe, Message: "You can miss 6 more classes", Percentage: 80, CanMiss: 6},
		},
		{
			name:    "safe with singular slack",
			present: 76, total: 100,
			want: Projection{Status: StatusSafe, Message: "You can miss 1 more class", Percentage: 76, CanMiss: 1},
		},
		{
			name:    "deep warning",
			present: 50, total: 100,
			want: Projection{Status: StatusWarning, Message: "Need to attend next 100 classes", Percentage: 50, NeedToAttend: 100},
		},
		{
			name:    "mild warning",
			present: 70, total: 100,
			want: Projection{Status: StatusWarning, Message: "Need to attend next 20 classes", Percentage: 70, NeedToAttend: 20},
		},
		{
			name:    "singular warning",
			present: 2, total: 3,
			want: Projection{Status: StatusWarning, Message: "Need to attend next 1 class", Percentage: 200.0 / 3.0, NeedToAttend: 1},
		},
		{
			name:    "zero sessions held",
			present: 0, total: 0,
			want: Projection{Status: StatusUndetermined, Message: "No sessions recorded yet"},
		},
		{
			name:    "negative total",
			present: 3, total: -1,
			want: Projection{Status: StatusUndetermined, Message: "No sessions recorded yet"},
		},
		{
			name:    "negative present",
			present: -1, total: 10,
			want: Projection{Status: StatusUndetermined, Message: "No sessions recorded yet"},
		},
		{
			name:    "zero attendance",
			present: 0, total: 4,
			want: Projection{Status: StatusWarning, Message: "Need to attend next 12 classes", Percentage: 0, NeedToAttend: 12},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(tt.present, tt.total)
			assert.Equal(t, tt.want.Status, got.Status)
			assert.Equal(t, tt.want.Message, got.Message)
			assert.Equal(t, tt.want.CanMiss, got.CanMiss)
			assert.Equal(t, tt.want.NeedToAttend, got.NeedToAttend)
			assert.InDelta(t, tt.want.Percentage, got.Percentage, 1e-9)
		})
	}
}

// Status must be safe exactly when present/total >= 0.75, for every valid pair.
func TestProjectThresholdProperty(t *testing.T) {
	for total := 1; total <= 120; total++ {
		for present := 0; present <= total; present++ {
			got := Project(present, total)
			safe := float64(present)/float64(total) >= Threshold
			if safe {
				require.Equal(t, StatusSafe, got.Status, "present=%d total=%d", present, total)
			} else {
				require.Equal(t, StatusWarning, got.Status, "present=%d total=%d", present, total)
			}
			require.NotEmpty(t, got.Message, "present=%d total=%d", present, total)
		}
	}
}

// canMiss must be the largest m with present/(total+m) >= 0.75, and
// needToAttend the smallest n with (present+n)/(total+n) >= 0.75.
func TestProjectBoundsAreTight(t *testing.T) {
	for total := 1; total <= 60; total++ {
		for present := 0; present <= total; present++ {
			got := Project(present, total)
			switch got.Status {
			case StatusSafe:
				m := got.CanMiss
				require.GreaterOrEqual(t, m, 0)
				require.GreaterOrEqual(t, float64(present)/float64(total+m), Threshold, "present=%d total=%d", present, total)
				require.Less(t, float64(present)/float64(total+m+1), Threshold, "present=%d total=%d", present, total)
			case StatusWarning:
				n := got.NeedToAttend
				require.Greater(t, n, 0)
				require.GreaterOrEqual(t, float64(present+n)/float64(total+n), Threshold, "present=%d total=%d", present, total)
				require.Less(t, float64(present+n-1)/float64(total+n-1), Threshold, "present=%d total=%d", present, total)
			}
		}
	}
}

func TestProjectFullAttendanceIsSafe(t *testing.T) {
	for total := 1; total <= 50; total++ {
		got := Project(total, total)
		require.Equal(t, StatusSafe, got.Status)
		// Full attendance gives the maximal slack for this total: total/3.
		require.Equal(t, total/3, got.CanMiss)
	}
}

func TestProjectIsIdempotent(t *testing.T) {
	first := Project(41, 57)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Project(41, 57))
	}
}
