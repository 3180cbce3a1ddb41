package vesting

import (
	"bytes"
	"testing"

	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/weavetest"
)

func TestLockValidate(t *testing.T) {
	valid := func() Lock {
		return Lock{
			Metadata:    &weave.Metadata{Schema: 1},
			Depositor:   weavetest.NewCondition().Address(),
			Beneficiary: weavetest.NewCondition().Address(),
			Amount:      coin.NewCoin(100, 0, "IOV"),
			Claimed:     coin.NewCoin(0, 0, "IOV"),
			Schedule:    &ReleaseSchedule{Kind: ReleaseKindLinear, Start: 100, End: 200},
		}
	}

	cases := map[string]struct {
		mutate  func(l *Lock)
		wantErr *errors.Error
	}{
		"valid": {
			mutate: func(l *Lock) {},
		},
		"missing metadata": {
			mutate:  func(l *Lock) { l.Metadata = nil },
			wantErr: errors.ErrMetadata,
		},
		"missing depositor": {
			mutate:  func(l *Lock) { l.Depositor = nil },
			wantErr: errors.ErrEmpty,
		},
		"missing beneficiary": {
			mutate:  func(l *Lock) { l.Beneficiary = nil },
			wantErr: errors.ErrEmpty,
		},
		"zero amount": {
			mutate:  func(l *Lock) { l.Amount = coin.NewCoin(0, 0, "IOV") },
			wantErr: errors.ErrAmount,
		},
		"negative amount": {
			mutate:  func(l *Lock) { l.Amount = coin.NewCoin(-1, 0, "IOV") },
			wantErr: errors.ErrAmount,
		},
		"claimed with a different ticker": {
			mutate:  func(l *Lock) { l.Claimed = coin.NewCoin(0, 0, "DOGE") },
			wantErr: errors.ErrCurrency,
		},
		"claimed above the locked amount": {
			mutate:  func(l *Lock) { l.Claimed = coin.NewCoin(101, 0, "IOV") },
			wantErr: errors.ErrAmount,
		},
		"missing schedule": {
			mutate:  func(l *Lock) { l.Schedule = nil },
			wantErr: errors.ErrEmpty,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			lock := valid()
			tc.mutate(&lock)
			if err := lock.Validate(); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}

func TestReleaseScheduleValidate(t *testing.T) {
	cases := map[string]struct {
		schedule *ReleaseSchedule
		wantErr  *errors.Error
	}{
		"valid linear": {
			schedule: &ReleaseSchedule{Kind: ReleaseKindLinear, Start: 100, End: 200},
		},
		"valid cliff": {
			schedule: &ReleaseSchedule{Kind: ReleaseKindCliff, Deadline: 100},
		},
		"nil schedule": {
			schedule: nil,
			wantErr:  errors.ErrEmpty,
		},
		"invalid kind": {
			schedule: &ReleaseSchedule{Kind: ReleaseKindInvalid},
			wantErr:  errors.ErrInput,
		},
		"linear without a start": {
			schedule: &ReleaseSchedule{Kind: ReleaseKindLinear, End: 200},
			wantErr:  errors.ErrEmpty,
		},
		"linear without an end": {
			schedule: &ReleaseSchedule{Kind: ReleaseKindLinear, Start: 100},
			wantErr:  errors.ErrEmpty,
		},
		"linear ending before it starts": {
			schedule: &ReleaseSchedule{Kind: ReleaseKindLinear, Start: 200, End: 100},
			wantErr:  errors.ErrInput,
		},
		"linear ending when it starts": {
			schedule: &ReleaseSchedule{Kind: ReleaseKindLinear, Start: 200, End: 200},
			wantErr:  errors.ErrInput,
		},
		"linear with a deadline": {
			schedule: &ReleaseSchedule{Kind: ReleaseKindLinear, Start: 100, End: 200, Deadline: 300},
			wantErr:  errors.ErrInput,
		},
		"cliff without a deadline": {
			schedule: &ReleaseSchedule{Kind: ReleaseKindCliff},
			wantErr:  errors.ErrEmpty,
		},
		"cliff with a window": {
			schedule: &ReleaseSchedule{Kind: ReleaseKindCliff, Deadline: 300, Start: 100, End: 200},
			wantErr:  errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := tc.schedule.Validate(); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}

func TestLockKey(t *testing.T) {
	addr := weavetest.NewCondition().Address()

	first := lockKey(addr, 0)
	second := lockKey(addr, 1)

	if bytes.Equal(first, second) {
		t.Fatal("keys of different indexes must differ")
	}
	if !bytes.HasPrefix(first, addr) || !bytes.HasPrefix(second, addr) {
		t.Fatal("keys must be prefixed with the depositor address")
	}
	if len(first) != len(addr)+8 {
		t.Fatalf("unexpected key length %d", len(first))
	}
}

func TestVaultAccountIsDeterministic(t *testing.T) {
	if !VaultAccount("IOV").Equals(VaultAccount("IOV")) {
		t.Fatal("vault address must be deterministic")
	}
	if VaultAccount("IOV").Equals(VaultAccount("DOGE")) {
		t.Fatal("each ticker must use a separate vault")
	}
}
