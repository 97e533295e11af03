package identity

import (
	"context"
	"fmt"
)

// ConfirmResetRequest carries the link parameters and new password for
// a password-reset confirmation.
type ConfirmResetRequest struct {
	UID           string `json:"uid"`
	Token         string `json:"token"`
	NewPassword   string `json:"new_password"`
	ReNewPassword string `json:"re_new_password"`
}

// RequestPasswordReset asks the identity service to email a reset link.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	if !ValidEmail(email) {
		return fmt.Errorf("%w: invalid email address", ErrInvalidCredentials)
	}

	_, err := c.post(ctx, c.cfg.ResetRequestPath, map[string]string{"email": email})
	return err
}

// ConfirmPasswordReset completes a reset using the uid and token from
// the emailed link.
func (c *Client) ConfirmPasswordReset(ctx context.Context, req ConfirmResetRequest) error {
	if err := ValidatePassword(req.NewPassword); err != nil {
		return err
	}
	if req.NewPassword != req.ReNewPassword {
		return fmt.Errorf("%w: passwords do not match", ErrInvalidCredentials)
	}

	_, err := c.post(ctx, c.cfg.ResetConfirmPath, req)
	return err
}
