package vesting

import (
	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
)

func init() {
	migration.MustRegister(1, &CreateLockMsg{}, migration.NoModification)
	migration.MustRegister(1, &ClaimMsg{}, migration.NoModification)
	migration.MustRegister(1, &UpdateConfigurationMsg{}, migration.NoModification)
}

var _ weave.Msg = (*CreateLockMsg)(nil)

func (CreateLockMsg) Path() string {
	return "vesting/create_lock"
}

func (msg *CreateLockMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", msg.Metadata.Validate())
	errs = errors.AppendField(errs, "Depositor", msg.Depositor.Validate())
	errs = errors.AppendField(errs, "Beneficiary", msg.Beneficiary.Validate())
	if err := msg.Amount.Validate(); err != nil {
		errs = errors.AppendField(errs, "Amount", err)
	} else if !msg.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount",
			errors.Wrap(errors.ErrAmount, "must be a positive value"))
	}
	errs = errors.AppendField(errs, "Schedule", msg.Schedule.Validate())
	return errs
}

var _ weave.Msg = (*ClaimMsg)(nil)

func (ClaimMsg) Path() string {
	return "vesting/claim"
}

func (msg *ClaimMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", msg.Metadata.Validate())
	if len(msg.LockID) == 0 {
		errs = errors.AppendField(errs, "LockID",
			errors.Wrap(errors.ErrEmpty, "required"))
	}
	return errs
}

var _ weave.Msg = (*UpdateConfigurationMsg)(nil)

func (UpdateConfigurationMsg) Path() string {
	return "vesting/update_configuration"
}

func (msg *UpdateConfigurationMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", msg.Metadata.Validate())
	if msg.Patch == nil {
		errs = errors.AppendField(errs, "Patch",
			errors.Wrap(errors.ErrEmpty, "required"))
	}
	return errs
}
