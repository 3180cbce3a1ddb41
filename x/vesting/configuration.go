package vesting

import (
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
)

func init() {
	migration.MustRegister(1, &Configuration{}, migration.NoModification)
}

var _ orm.Model = (*Configuration)(nil)

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	switch c.ClaimPolicy {
	case ClaimPolicyOpen, ClaimPolicyDepositor:
		// All good.
	default:
		errs = errors.AppendField(errs, "ClaimPolicy",
			errors.Wrapf(errors.ErrState, "invalid claim policy %d", c.ClaimPolicy))
	}
	return errs
}

func loadConf(db gconf.Store) (Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, "vesting", &conf); err != nil {
		return conf, errors.Wrap(err, "load configuration")
	}
	return conf, nil
}

// claimPolicy returns the active claim policy. When no configuration was
// provided the open policy is used.
func claimPolicy(db gconf.Store) (ClaimPolicy, error) {
	conf, err := loadConf(db)
	switch {
	case err == nil:
		return conf.ClaimPolicy, nil
	case errors.ErrNotFound.Is(err):
		return ClaimPolicyOpen, nil
	default:
		return ClaimPolicyInvalid, err
	}
}
