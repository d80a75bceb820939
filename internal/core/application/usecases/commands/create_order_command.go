package commands

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrBrandCodeIsInvalid = errors.New("brand code must be 2-10 uppercase letters or digits")
)

var brandCodePattern = regexp.MustCompile(`^[A-Z0-9]{2,10}$`)

// CreateOrderCommand takes in a new client order for a brand.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), workspaceID, brandID, "acme", deadline)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//	res, err := handler.Handle(ctx, cmd)
//	fmt.Println(res.PONumber) // ACME-000001
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID     kernel.UUID
	workspaceID kernel.UUID
	brandID     kernel.UUID
	brandCode   string
	deadline    time.Time

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the identifiers, normalizes the brand code to
// upper case and requires a deadline.
func NewCreateOrderCommand(
	orderID, workspaceID, brandID kernel.UUID,
	brandCode string,
	deadline time.Time,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setWorkspaceID(workspaceID),
		cmd.setBrandID(brandID),
		cmd.setBrandCode(brandCode),
		cmd.setDeadline(deadline),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID     { return c.orderID }
func (c CreateOrderCommand) WorkspaceID() kernel.UUID { return c.workspaceID }
func (c CreateOrderCommand) BrandID() kernel.UUID     { return c.brandID }
func (c CreateOrderCommand) BrandCode() string        { return c.brandCode }
func (c CreateOrderCommand) Deadline() time.Time      { return c.deadline }

func (c *CreateOrderCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.orderID = id
	return nil
}

func (c *CreateOrderCommand) setWorkspaceID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.workspaceID = id
	return nil
}

func (c *CreateOrderCommand) setBrandID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.brandID = id
	return nil
}

func (c *CreateOrderCommand) setBrandCode(code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !brandCodePattern.MatchString(code) {
		return ErrBrandCodeIsInvalid
	}
	c.brandCode = code
	return nil
}

func (c *CreateOrderCommand) setDeadline(deadline time.Time) error {
	if deadline.IsZero() {
		return errs.NewValueIsRequiredError("deadline")
	}
	c.deadline = deadline
	return nil
}
