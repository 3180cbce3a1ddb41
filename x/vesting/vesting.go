package vesting

import (
	"math/big"

	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
)

// Entitled returns the amount that can be paid out from a lock at the given
// time. This is the total vested value reduced by what was already claimed.
// The returned coin is never negative and never greater than the unclaimed
// remainder. A zero result with a nil error means there is nothing to pay
// out right now but the lock is still active.
//
// An error is returned when the release has not begun, so that such a claim
// can be rejected rather than treated as an empty payout.
func Entitled(lock *Lock, now weave.UnixTime) (coin.Coin, error) {
	zero := coin.Coin{Ticker: lock.Amount.Ticker}

	if lock.Schedule == nil {
		return zero, errors.Wrap(errors.ErrState, "lock without a release schedule")
	}

	remaining, err := lock.Amount.Subtract(lock.Claimed)
	if err != nil {
		return zero, errors.Wrap(err, "remaining amount")
	}

	switch s := lock.Schedule; s.Kind {
	case ReleaseKindLinear:
		if now <= s.Start {
			return zero, errors.Wrap(errors.ErrState, "vesting has not started")
		}
		if now >= s.End {
			return remaining, nil
		}
		vested, err := prorated(lock.Amount, int64(now-s.Start), int64(s.End-s.Start))
		if err != nil {
			return zero, errors.Wrap(err, "vested amount")
		}
		// Truncation can leave the vested value below what was
		// already paid out. That is not a payout, not an error.
		if vested.Compare(lock.Claimed) <= 0 {
			return zero, nil
		}
		return vested.Subtract(lock.Claimed)
	case ReleaseKindCliff:
		if now < s.Deadline {
			return zero, errors.Wrap(errors.ErrState, "release deadline not reached")
		}
		return remaining, nil
	default:
		return zero, errors.Wrapf(errors.ErrState, "unknown release kind %d", s.Kind)
	}
}

// prorated returns total scaled by elapsed/duration, rounding towards zero.
// Computation is done on big integers as the fractional representation of a
// maximum coin multiplied by the elapsed seconds does not fit int64.
func prorated(total coin.Coin, elapsed, duration int64) (coin.Coin, error) {
	if duration <= 0 || elapsed <= 0 || elapsed > duration {
		return coin.Coin{}, errors.Wrap(errors.ErrInput, "elapsed time out of range")
	}
	units := fractionalUnits(total)
	units.Mul(units, big.NewInt(elapsed))
	units.Quo(units, big.NewInt(duration))
	return coinFromUnits(units, total.Ticker)
}

// fractionalUnits returns the value of a coin expressed in its smallest
// unit.
func fractionalUnits(c coin.Coin) *big.Int {
	units := big.NewInt(c.Whole)
	units.Mul(units, big.NewInt(coin.FracUnit))
	return units.Add(units, big.NewInt(c.Fractional))
}

func coinFromUnits(units *big.Int, ticker string) (coin.Coin, error) {
	var whole, frac big.Int
	whole.QuoRem(units, big.NewInt(coin.FracUnit), &frac)
	if !whole.IsInt64() || whole.Int64() > coin.MaxInt || whole.Int64() < coin.MinInt {
		return coin.Coin{}, errors.Wrap(errors.ErrOverflow, "whole")
	}
	return coin.Coin{
		Whole:      whole.Int64(),
		Fractional: frac.Int64(),
		Ticker:     ticker,
	}, nil
}
