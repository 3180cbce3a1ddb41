package vesting

import (
	"testing"

	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
)

func TestEntitled(t *testing.T) {
	lock := func(amount, claimed coin.Coin, s *ReleaseSchedule) *Lock {
		return &Lock{
			Metadata: &weave.Metadata{Schema: 1},
			Amount:   amount,
			Claimed:  claimed,
			Schedule: s,
		}
	}

	cases := map[string]struct {
		lock    *Lock
		now     weave.UnixTime
		want    coin.Coin
		wantErr *errors.Error
	}{
		"linear release before the start": {
			lock: lock(coin.NewCoin(1000, 0, "IOV"), coin.NewCoin(0, 0, "IOV"),
				&ReleaseSchedule{Kind: ReleaseKindLinear, Start: 1000, End: 2000}),
			now:     999,
			wantErr: errors.ErrState,
		},
		"linear release exactly at the start": {
			lock: lock(coin.NewCoin(1000, 0, "IOV"), coin.NewCoin(0, 0, "IOV"),
				&ReleaseSchedule{Kind: ReleaseKindLinear, Start: 1000, End: 2000}),
			now:     1000,
			wantErr: errors.ErrState,
		},
		"linear release halfway through the window": {
			lock: lock(coin.NewCoin(1000, 0, "IOV"), coin.NewCoin(0, 0, "IOV"),
				&ReleaseSchedule{Kind: ReleaseKindLinear, Start: 1000, End: 2000}),
			now:  1500,
			want: coin.NewCoin(500, 0, "IOV"),
		},
		"linear release halfway through, half already claimed": {
			lock: lock(coin.NewCoin(1000, 0, "IOV"), coin.NewCoin(500, 0, "IOV"),
				&ReleaseSchedule{Kind: ReleaseKindLinear, Start: 1000, End: 2000}),
			now:  1500,
			want: coin.NewCoin(0, 0, "IOV"),
		},
		"linear release at the end pays the remainder": {
			lock: lock(coin.NewCoin(1000, 0, "IOV"), coin.NewCoin(500, 0, "IOV"),
				&ReleaseSchedule{Kind: ReleaseKindLinear, Start: 1000, End: 2000}),
			now:  2000,
			want: coin.NewCoin(500, 0, "IOV"),
		},
		"linear release long after the end": {
			lock: lock(coin.NewCoin(1000, 0, "IOV"), coin.NewCoin(0, 0, "IOV"),
				&ReleaseSchedule{Kind: ReleaseKindLinear, Start: 1000, End: 2000}),
			now:  50000,
			want: coin.NewCoin(1000, 0, "IOV"),
		},
		"linear release truncates fractions towards zero": {
			// A third of a single fractional unit is rounded away.
			lock: lock(coin.NewCoin(0, 1, "IOV"), coin.NewCoin(0, 0, "IOV"),
				&ReleaseSchedule{Kind: ReleaseKindLinear, Start: 0, End: 3}),
			now:  1,
			want: coin.NewCoin(0, 0, "IOV"),
		},
		"linear release of a huge amount does not overflow": {
			lock: lock(coin.NewCoin(coin.MaxInt, 0, "IOV"), coin.NewCoin(0, 0, "IOV"),
				&ReleaseSchedule{Kind: ReleaseKindLinear, Start: 0, End: 1000000}),
			now:  500000,
			want: coin.NewCoin(coin.MaxInt/2, coin.FracUnit/2, "IOV"),
		},
		"cliff release before the deadline": {
			lock: lock(coin.NewCoin(500, 0, "IOV"), coin.NewCoin(0, 0, "IOV"),
				&ReleaseSchedule{Kind: ReleaseKindCliff, Deadline: 5000}),
			now:     4999,
			wantErr: errors.ErrState,
		},
		"cliff release at the deadline": {
			lock: lock(coin.NewCoin(500, 0, "IOV"), coin.NewCoin(0, 0, "IOV"),
				&ReleaseSchedule{Kind: ReleaseKindCliff, Deadline: 5000}),
			now:  5000,
			want: coin.NewCoin(500, 0, "IOV"),
		},
		"cliff release after a full claim": {
			lock: lock(coin.NewCoin(500, 0, "IOV"), coin.NewCoin(500, 0, "IOV"),
				&ReleaseSchedule{Kind: ReleaseKindCliff, Deadline: 5000}),
			now:  6000,
			want: coin.NewCoin(0, 0, "IOV"),
		},
		"missing schedule": {
			lock:    lock(coin.NewCoin(500, 0, "IOV"), coin.NewCoin(0, 0, "IOV"), nil),
			now:     5000,
			wantErr: errors.ErrState,
		},
		"unknown release kind": {
			lock: lock(coin.NewCoin(500, 0, "IOV"), coin.NewCoin(0, 0, "IOV"),
				&ReleaseSchedule{Kind: ReleaseKindInvalid}),
			now:     5000,
			wantErr: errors.ErrState,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := Entitled(tc.lock, tc.now)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if err != nil {
				return
			}
			if !got.Equals(tc.want) {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}

// TestEntitledNeverDecreases claims at every point of the release window and
// ensures that the sum of all payouts never exceeds the locked amount and
// reaches exactly the locked amount at the end.
func TestEntitledNeverDecreases(t *testing.T) {
	lock := &Lock{
		Metadata: &weave.Metadata{Schema: 1},
		Amount:   coin.NewCoin(123, 456789, "IOV"),
		Claimed:  coin.NewCoin(0, 0, "IOV"),
		Schedule: &ReleaseSchedule{Kind: ReleaseKindLinear, Start: 1000, End: 1997},
	}

	total := coin.NewCoin(0, 0, "IOV")
	for now := weave.UnixTime(1001); now <= 1997; now++ {
		payout, err := Entitled(lock, now)
		if err != nil {
			t.Fatalf("entitled at %d: %s", now, err)
		}
		if !payout.IsNonNegative() {
			t.Fatalf("negative payout %q at %d", payout, now)
		}
		claimed, err := lock.Claimed.Add(payout)
		if err != nil {
			t.Fatalf("add at %d: %s", now, err)
		}
		lock.Claimed = claimed
		total, err = total.Add(payout)
		if err != nil {
			t.Fatalf("total at %d: %s", now, err)
		}
		if total.Compare(lock.Amount) > 0 {
			t.Fatalf("paid out %q of %q at %d", total, lock.Amount, now)
		}
	}
	if !total.Equals(lock.Amount) {
		t.Fatalf("want %q paid out in total, got %q", lock.Amount, total)
	}
}

func TestProratedRange(t *testing.T) {
	cases := map[string]struct {
		elapsed  int64
		duration int64
		wantErr  *errors.Error
	}{
		"zero duration":            {elapsed: 1, duration: 0, wantErr: errors.ErrInput},
		"zero elapsed":             {elapsed: 0, duration: 10, wantErr: errors.ErrInput},
		"elapsed beyond duration":  {elapsed: 11, duration: 10, wantErr: errors.ErrInput},
		"elapsed within duration":  {elapsed: 10, duration: 10},
		"minimal elapsed duration": {elapsed: 1, duration: 10},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			_, err := prorated(coin.NewCoin(10, 0, "IOV"), tc.elapsed, tc.duration)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}
