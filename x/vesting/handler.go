package vesting

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
	"github.com/iov-one/weave/x"
	"github.com/iov-one/weave/x/cash"
)

func RegisterQuery(qr weave.QueryRouter) {
	NewLockBucket().Register("locks", qr)
}

func RegisterRoutes(r weave.Registry, auth x.Authenticator, cashctrl cash.Controller) {
	r = migration.SchemaMigratingRegistry("vesting", r)

	locks := NewLockBucket()
	indexes := NewLockIndexBucket()

	r.Handle(&CreateLockMsg{}, &createLockHandler{
		auth:     auth,
		locks:    locks,
		indexes:  indexes,
		cashctrl: cashctrl,
	})
	r.Handle(&ClaimMsg{}, &claimHandler{
		auth:     auth,
		locks:    locks,
		cashctrl: cashctrl,
	})
	r.Handle(&UpdateConfigurationMsg{},
		gconf.NewUpdateConfigurationHandler("vesting", &Configuration{}, auth, migration.CurrentAdmin))
}

type createLockHandler struct {
	auth     x.Authenticator
	locks    orm.ModelBucket
	indexes  orm.ModelBucket
	cashctrl cash.Controller
}

func (h *createLockHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: 0}, nil
}

func (h *createLockHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	var idx LockIndex
	switch err := h.indexes.One(db, msg.Depositor, &idx); {
	case err == nil:
		// All good.
	case errors.ErrNotFound.Is(err):
		idx = LockIndex{
			Metadata: &weave.Metadata{Schema: 1},
			Owner:    msg.Depositor,
		}
	default:
		return nil, errors.Wrap(err, "get lock index")
	}

	key := lockKey(msg.Depositor, idx.NextIndex)
	idx.NextIndex++

	// Custody of the funds is taken before the lock exists, so a failed
	// transfer aborts the whole operation.
	if err := cash.MoveCoins(db, h.cashctrl, msg.Depositor, VaultAccount(msg.Amount.Ticker), []*coin.Coin{&msg.Amount}); err != nil {
		return nil, errors.Wrap(err, "deposit funds")
	}

	if _, err := h.indexes.Put(db, msg.Depositor, &idx); err != nil {
		return nil, errors.Wrap(err, "store lock index")
	}

	lock := Lock{
		Metadata:    &weave.Metadata{Schema: 1},
		Depositor:   msg.Depositor,
		Beneficiary: msg.Beneficiary,
		Amount:      msg.Amount,
		Claimed:     coin.Coin{Ticker: msg.Amount.Ticker},
		Schedule:    msg.Schedule,
	}
	if _, err := h.locks.Put(db, key, &lock); err != nil {
		return nil, errors.Wrap(err, "store lock")
	}
	return &weave.DeliverResult{Data: key}, nil
}

func (h *createLockHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*CreateLockMsg, error) {
	var msg CreateLockMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Depositor) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "depositor signature is required")
	}
	if err := hasFunds(db, h.cashctrl, msg.Depositor, msg.Amount); err != nil {
		return nil, err
	}
	return &msg, nil
}

// hasFunds returns no error if given wallet contains at least given amount of
// funds.
func hasFunds(db weave.KVStore, ctrl cash.Controller, wallet weave.Address, funds coin.Coin) error {
	coins, err := ctrl.Balance(db, wallet)
	if err != nil {
		return errors.Wrap(err, "depositor balance")
	}
	for _, c := range coins {
		if c.Ticker != funds.Ticker {
			continue
		}
		if c.Compare(funds) >= 0 {
			return nil
		}
	}
	return errors.Wrap(errors.ErrAmount, "not enough funds on depositor account")
}

type claimHandler struct {
	auth     x.Authenticator
	locks    orm.ModelBucket
	cashctrl cash.Controller
}

func (h *claimHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: 0}, nil
}

func (h *claimHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, lock, payout, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	// Nothing new vested since the last claim. The claim succeeds without
	// moving any funds, so repeated claims at the same time are harmless.
	if !payout.IsPositive() {
		return &weave.DeliverResult{Data: msg.LockID}, nil
	}
	if err := cash.MoveCoins(db, h.cashctrl, VaultAccount(lock.Amount.Ticker), lock.Beneficiary, []*coin.Coin{&payout}); err != nil {
		return nil, errors.Wrap(err, "release funds")
	}
	claimed, err := lock.Claimed.Add(payout)
	if err != nil {
		return nil, errors.Wrap(err, "claimed amount")
	}
	lock.Claimed = claimed
	// Once everything was paid out the lock has no further use and is
	// removed from the store.
	if lock.Claimed.Equals(lock.Amount) {
		if err := h.locks.Delete(db, msg.LockID); err != nil {
			return nil, errors.Wrap(err, "delete lock")
		}
	} else {
		if _, err := h.locks.Put(db, msg.LockID, lock); err != nil {
			return nil, errors.Wrap(err, "store lock")
		}
	}
	return &weave.DeliverResult{Data: msg.LockID}, nil
}

func (h *claimHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*ClaimMsg, *Lock, coin.Coin, error) {
	var zero coin.Coin
	var msg ClaimMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, zero, errors.Wrap(err, "load msg")
	}
	var lock Lock
	if err := h.locks.One(db, msg.LockID, &lock); err != nil {
		return nil, nil, zero, errors.Wrap(err, "get lock")
	}
	policy, err := claimPolicy(db)
	if err != nil {
		return nil, nil, zero, errors.Wrap(err, "claim policy")
	}
	if policy == ClaimPolicyDepositor && !h.auth.HasAddress(ctx, lock.Depositor) {
		return nil, nil, zero, errors.Wrap(errors.ErrUnauthorized, "depositor signature is required")
	}
	// A claim that cannot pay out yet is invalid, so it can be rejected
	// during the check phase already and never enters a block.
	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, nil, zero, errors.Wrap(err, "block time")
	}
	payout, err := Entitled(&lock, weave.AsUnixTime(now))
	if err != nil {
		return nil, nil, zero, errors.Wrap(err, "entitled amount")
	}
	return &msg, &lock, payout, nil
}
