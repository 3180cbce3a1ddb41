package vesting

import (
	"encoding/binary"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
)

func init() {
	migration.MustRegister(1, &Lock{}, migration.NoModification)
	migration.MustRegister(1, &LockIndex{}, migration.NoModification)
}

var _ orm.Model = (*Lock)(nil)

func (m *Lock) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Depositor", m.Depositor.Validate())
	errs = errors.AppendField(errs, "Beneficiary", m.Beneficiary.Validate())
	if err := m.Amount.Validate(); err != nil {
		errs = errors.AppendField(errs, "Amount", err)
	} else if !m.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount",
			errors.Wrap(errors.ErrAmount, "must be a positive value"))
	}
	if err := m.Claimed.Validate(); err != nil {
		errs = errors.AppendField(errs, "Claimed", err)
	} else {
		if !m.Claimed.IsNonNegative() {
			errs = errors.AppendField(errs, "Claimed",
				errors.Wrap(errors.ErrAmount, "cannot be negative"))
		}
		if !m.Claimed.SameType(m.Amount) {
			errs = errors.AppendField(errs, "Claimed",
				errors.Wrap(errors.ErrCurrency, "must use the amount ticker"))
		} else if m.Claimed.Compare(m.Amount) > 0 {
			errs = errors.AppendField(errs, "Claimed",
				errors.Wrap(errors.ErrAmount, "cannot exceed the locked amount"))
		}
	}
	errs = errors.AppendField(errs, "Schedule", m.Schedule.Validate())
	return errs
}

func (m *ReleaseSchedule) Validate() error {
	if m == nil {
		return errors.Wrap(errors.ErrEmpty, "missing schedule")
	}
	var errs error
	switch m.Kind {
	case ReleaseKindLinear:
		if m.Start == 0 {
			errs = errors.AppendField(errs, "Start",
				errors.Wrap(errors.ErrEmpty, "required for a linear release"))
		} else {
			errs = errors.AppendField(errs, "Start", m.Start.Validate())
		}
		if m.End == 0 {
			errs = errors.AppendField(errs, "End",
				errors.Wrap(errors.ErrEmpty, "required for a linear release"))
		} else {
			errs = errors.AppendField(errs, "End", m.End.Validate())
			if m.Start != 0 && m.End <= m.Start {
				errs = errors.AppendField(errs, "End",
					errors.Wrap(errors.ErrInput, "must be after the start time"))
			}
		}
		if m.Deadline != 0 {
			errs = errors.AppendField(errs, "Deadline",
				errors.Wrap(errors.ErrInput, "not allowed for a linear release"))
		}
	case ReleaseKindCliff:
		if m.Deadline == 0 {
			errs = errors.AppendField(errs, "Deadline",
				errors.Wrap(errors.ErrEmpty, "required for a cliff release"))
		} else {
			errs = errors.AppendField(errs, "Deadline", m.Deadline.Validate())
		}
		if m.Start != 0 || m.End != 0 {
			errs = errors.AppendField(errs, "Start",
				errors.Wrap(errors.ErrInput, "not allowed for a cliff release"))
		}
	default:
		errs = errors.AppendField(errs, "Kind",
			errors.Wrapf(errors.ErrInput, "invalid release kind %d", m.Kind))
	}
	return errs
}

var _ orm.Model = (*LockIndex)(nil)

func (m *LockIndex) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	return errs
}

// NewLockBucket returns a bucket for keeping Lock state. Locks are indexed
// by both the depositor and the beneficiary address.
func NewLockBucket() orm.ModelBucket {
	b := orm.NewModelBucket("lock", &Lock{},
		orm.WithNativeIndex("depositor", lockDepositor),
		orm.WithNativeIndex("beneficiary", lockBeneficiary),
	)
	return migration.NewModelBucket("vesting", b)
}

func lockDepositor(o orm.Object) ([][]byte, error) {
	lock, ok := o.Value().(*Lock)
	if !ok {
		return nil, errors.Wrap(errors.ErrType, "not a Lock")
	}
	return [][]byte{lock.Depositor}, nil
}

func lockBeneficiary(o orm.Object) ([][]byte, error) {
	lock, ok := o.Value().(*Lock)
	if !ok {
		return nil, errors.Wrap(errors.ErrType, "not a Lock")
	}
	return [][]byte{lock.Beneficiary}, nil
}

// NewLockIndexBucket returns a bucket for keeping per depositor lock
// counters. Entities are stored under the depositor address.
func NewLockIndexBucket() orm.ModelBucket {
	b := orm.NewModelBucket("lockidx", &LockIndex{})
	return migration.NewModelBucket("vesting", b)
}

// lockKey returns the store key of a lock. It is build from the depositor
// address followed by a big endian encoded sequence value, so that all
// locks of one depositor are stored under a common prefix.
func lockKey(depositor weave.Address, index uint64) []byte {
	key := make([]byte, 0, len(depositor)+8)
	key = append(key, depositor...)
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, index)
	return append(key, raw...)
}

// VaultAccount returns the address of the account holding all locked funds
// of a given ticker. This is a deterministic address that no signature can
// authorize, so funds can leave it only through a claim.
func VaultAccount(ticker string) weave.Address {
	return weave.NewCondition("vesting", "vault", []byte(ticker)).Address()
}
