package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/harrisonrobin/taskmenu/pkg/menu"
)

// Report surfaces the outcome of Run to the user. Cancellation is not an
// error. Any other error is shown through the picker; only when that also
// fails is an error returned.
func Report(ctx context.Context, picker menu.Picker, logger *log.Logger, err error) error {
	if err == nil || errors.Is(err, menu.ErrCancelled) {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}
	if logger != nil {
		logger.Error("action failed", "err", err)
	}
	if msgErr := picker.Message(ctx, fmt.Sprintf("Error: %s", err)); msgErr != nil {
		return fmt.Errorf("%w (could not show error in menu: %v)", err, msgErr)
	}
	return nil
}
