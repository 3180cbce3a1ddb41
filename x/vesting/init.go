package vesting

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
)

// Initializer fulfils the Initializer interface to load data from the genesis
// file
type Initializer struct{}

var _ weave.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial lock info from genesis and save it to the
// database
func (*Initializer) FromGenesis(opts weave.Options, params weave.GenesisParams, db weave.KVStore) error {
	conf := Configuration{
		Metadata: &weave.Metadata{Schema: 1},
	}
	switch err := gconf.InitConfig(db, opts, "vesting", &conf); {
	case err == nil, errors.ErrNotFound.Is(err):
		// Configuration is optional. Without one the open claim policy
		// is active.
	default:
		return errors.Wrap(err, "cannot initialize gconf based configuration")
	}

	var locks []struct {
		Depositor   weave.Address `json:"depositor"`
		Beneficiary weave.Address `json:"beneficiary"`
		Amount      coin.Coin     `json:"amount"`
		Schedule    struct {
			Kind     string         `json:"kind"`
			Start    weave.UnixTime `json:"start"`
			End      weave.UnixTime `json:"end"`
			Deadline weave.UnixTime `json:"deadline"`
		} `json:"schedule"`
	}
	if err := opts.ReadOptions("vesting", &locks); err != nil {
		return err
	}
	// Genesis declared locks are expected to be funded through the cash
	// genesis, by declaring the vault account balance there.
	lb := NewLockBucket()
	ib := NewLockIndexBucket()
	for i, l := range locks {
		var kind ReleaseKind
		switch l.Schedule.Kind {
		case "linear":
			kind = ReleaseKindLinear
		case "cliff":
			kind = ReleaseKindCliff
		default:
			return errors.Wrapf(errors.ErrInput, "lock %d: unknown release kind %q", i, l.Schedule.Kind)
		}
		lock := Lock{
			Metadata:    &weave.Metadata{Schema: 1},
			Depositor:   l.Depositor,
			Beneficiary: l.Beneficiary,
			Amount:      l.Amount,
			Claimed:     coin.Coin{Ticker: l.Amount.Ticker},
			Schedule: &ReleaseSchedule{
				Kind:     kind,
				Start:    l.Schedule.Start,
				End:      l.Schedule.End,
				Deadline: l.Schedule.Deadline,
			},
		}
		if err := lock.Validate(); err != nil {
			return errors.Wrapf(err, "lock %d is invalid", i)
		}

		var idx LockIndex
		switch err := ib.One(db, lock.Depositor, &idx); {
		case err == nil:
			// All good.
		case errors.ErrNotFound.Is(err):
			idx = LockIndex{
				Metadata: &weave.Metadata{Schema: 1},
				Owner:    lock.Depositor,
			}
		default:
			return errors.Wrapf(err, "lock %d index", i)
		}
		key := lockKey(lock.Depositor, idx.NextIndex)
		idx.NextIndex++
		if _, err := ib.Put(db, lock.Depositor, &idx); err != nil {
			return errors.Wrapf(err, "store lock %d index", i)
		}
		if _, err := lb.Put(db, key, &lock); err != nil {
			return errors.Wrapf(err, "store lock %d", i)
		}
	}
	return nil
}
