package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/kiwari-pos/storefront/internal/storeapi"
)

func runComplain(ctx context.Context, a *app, args []string) error {
	fs := newFlags("complain", a)
	var req storeapi.ComplaintRequest
	fs.StringVar(&req.OrderID, "order", "", "Order ID the complaint is about")
	fs.StringVar(&req.Subject, "subject", "", "Subject")
	fs.StringVar(&req.Message, "message", "", "What went wrong")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if req.Subject == "" || req.Message == "" {
		fs.Usage()
		return errors.New("subject and message are required")
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	c, err := a.api.CreateComplaint(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Complaint %s filed (%s).\n", c.ID, c.Status)
	return nil
}

func runComplaints(ctx context.Context, a *app, _ []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	list, err := a.api.ListComplaints(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No complaints.")
		return nil
	}

	tw := newTable(a.out)
	fmt.Fprintln(tw, "FILED\tSTATUS\tSUBJECT")
	for _, c := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.CreatedAt.Local().Format("2006-01-02"), c.Status, c.Subject)
	}
	return tw.Flush()
}

func runContact(ctx context.Context, a *app, args []string) error {
	fs := newFlags("contact", a)
	var msg storeapi.ContactMessage
	fs.StringVar(&msg.Name, "name", "", "Your name")
	fs.StringVar(&msg.Email, "email", "", "Reply-to email")
	fs.StringVar(&msg.Message, "message", "", "Message")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if u, ok := a.auth.User(); ok {
		if msg.Name == "" {
			msg.Name = u.Name
		}
		if msg.Email == "" {
			msg.Email = u.Email
		}
	}
	if msg.Name == "" || msg.Email == "" || msg.Message == "" {
		fs.Usage()
		return errors.New("name, email and message are required")
	}

	if err := a.api.SendContactMessage(ctx, msg); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Thanks! We'll get back to you by email.")
	return nil
}
