package commands

import (
	"errors"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrDispatchOutboxCommandIsNotConstructed = errors.New(
	"DispatchOutboxCommand must be created via NewDispatchOutboxCommand constructor",
)

const (
	maxDispatchBatchSize = 1000
	maxDispatchAttempts  = 100
)

// DispatchOutboxCommand asks the relay to deliver up to BatchSize pending
// events, skipping messages that already failed MaxAttempts times.
type DispatchOutboxCommand struct { //nolint:recvcheck //using for validation
	batchSize   int
	maxAttempts int

	guard guard.ConstructorGuard
}

func NewDispatchOutboxCommand(batchSize, maxAttempts int) (DispatchOutboxCommand, error) {
	cmd := DispatchOutboxCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setBatchSize(batchSize),
		cmd.setMaxAttempts(maxAttempts),
	); err != nil {
		return DispatchOutboxCommand{}, err
	}

	return cmd, nil
}

func (c DispatchOutboxCommand) Validate() error {
	return c.guard.Validate(ErrDispatchOutboxCommandIsNotConstructed)
}

func (c DispatchOutboxCommand) BatchSize() int {
	return c.batchSize
}

func (c DispatchOutboxCommand) MaxAttempts() int {
	return c.maxAttempts
}

func (c *DispatchOutboxCommand) setBatchSize(n int) error {
	if n < 1 || n > maxDispatchBatchSize {
		return errs.NewValueIsOutOfRangeError("batch size", n, 1, maxDispatchBatchSize)
	}
	c.batchSize = n
	return nil
}

func (c *DispatchOutboxCommand) setMaxAttempts(n int) error {
	if n < 1 || n > maxDispatchAttempts {
		return errs.NewValueIsOutOfRangeError("max attempts", n, 1, maxDispatchAttempts)
	}
	c.maxAttempts = n
	return nil
}
