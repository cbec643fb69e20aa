package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/postbox/internal/client/client"
	"github.com/samber/lo"
)

var errUsage = errors.New("usage error")

// List prints the inbox. The optional argument "unread" or "read" narrows it.
func (a *App) List(ctx context.Context, args []string) error {
	var unread *bool
	if len(args) > 0 {
		switch args[0] {
		case "unread":
			unread = lo.ToPtr(true)
		case "read":
			unread = lo.ToPtr(false)
		default:
			fmt.Fprintln(a.out, "Usage: list [unread|read]")
			return errUsage
		}
	}

	msgs, err := a.client.ListMessages(ctx, unread)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			fmt.Fprintln(a.out, "No messages")
			return nil
		}
		return a.report(err)
	}

	for i, m := range msgs {
		fmt.Fprintf(a.out, "%3d. %s  from %-20s %s\n", i+1, m.CreationDate.Local().Format(time.DateTime), m.Sender, m.Subject)
	}
	return nil
}

// Read shows the next unread message; the server marks it read.
func (a *App) Read(ctx context.Context) error {
	m, err := a.client.ReadNext(ctx)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			fmt.Fprintln(a.out, "No unread messages")
			return nil
		}
		return a.report(err)
	}

	a.printMessage(m)
	return nil
}

func (a *App) Send(ctx context.Context) error {
	receiver, err := getSimpleText(a.reader, "Enter receiver", a.out)
	if err != nil {
		return a.report(err)
	}

	subject, err := getSimpleText(a.reader, "Enter subject", a.out)
	if err != nil {
		return a.report(err)
	}

	body, err := GetMultiline(a.reader, "Enter message", a.out)
	if err != nil {
		return a.report(err)
	}

	if err := a.client.Send(ctx, receiver, subject, body); err != nil {
		return a.report(err)
	}

	fmt.Fprintln(a.out, "Message sent")
	return nil
}

// Delete removes the oldest message exchanged with a given sender or
// receiver. The sender prompt comes first and wins when answered.
func (a *App) Delete(ctx context.Context) error {
	var p client.DeleteParams

	sender, err := getSimpleText(a.reader, "Delete message from sender (empty to skip)", a.out)
	if err != nil {
		return a.report(err)
	}
	p.Sender = sender

	if p.Sender == "" {
		receiver, err := getSimpleText(a.reader, "Delete message sent to receiver", a.out)
		if err != nil {
			return a.report(err)
		}
		p.Receiver = receiver
	}

	m, err := a.client.Delete(ctx, p)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			fmt.Fprintln(a.out, "No such message")
			return err
		}
		return a.report(err)
	}

	fmt.Fprintln(a.out, "Deleted:")
	a.printMessage(m)
	return nil
}

func (a *App) printMessage(m *client.Message) {
	fmt.Fprintf(a.out, "From:    %s\n", m.Sender)
	fmt.Fprintf(a.out, "To:      %s\n", m.Receiver)
	fmt.Fprintf(a.out, "Date:    %s\n", m.CreationDate.Local().Format(time.DateTime))
	fmt.Fprintf(a.out, "Subject: %s\n\n", m.Subject)
	fmt.Fprintln(a.out, m.Message)
}

// report prints a user-facing description of err and returns it unchanged.
func (a *App) report(err error) error {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ModeOffline)
		fmt.Fprintln(a.out, "Server unavailable, try again later")
	case errors.Is(err, client.ErrUnauthorized):
		fmt.Fprintln(a.out, "Not authorized: wrong credentials or the session has expired")
	default:
		fmt.Fprintf(a.out, "Error: %s\n", err.Error())
	}
	return err
}
