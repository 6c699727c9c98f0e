package notify

import (
	"context"
	"fmt"

	"github.com/manifoldco/promptui"
)

// Confirm asks on the terminal before every send.
type Confirm struct {
	next Dispatcher
	ask  func(label string) bool
}

func NewConfirm(next Dispatcher) *Confirm {
	return &Confirm{next: next, ask: askYesNo}
}

func (c *Confirm) SendEmail(ctx context.Context, to, subject, body string) bool {
	if !c.ask(fmt.Sprintf("Send email %q to %s", subject, to)) {
		return false
	}
	return c.next.SendEmail(ctx, to, subject, body)
}

func (c *Confirm) SendSMS(ctx context.Context, to, body string) bool {
	if !c.ask(fmt.Sprintf("Send SMS to %s", to)) {
		return false
	}
	return c.next.SendSMS(ctx, to, body)
}

func askYesNo(label string) bool {
	prompt := promptui.Prompt{Label: label, IsConfirm: true}
	_, err := prompt.Run()
	return err == nil
}
