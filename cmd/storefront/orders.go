package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/kiwari-pos/storefront/internal/storeapi"
)

func runOrders(ctx context.Context, a *app, args []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	if len(args) == 1 {
		o, err := a.api.GetOrder(ctx, args[0])
		if err != nil {
			return err
		}
		printOrder(a, o)
		return nil
	}

	orders, err := a.api.ListOrders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Fprintln(a.out, "No orders yet.")
		return nil
	}

	tw := newTable(a.out)
	fmt.Fprintln(tw, "ID\tORDER\tSTATUS\tTOTAL\tPLACED")
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			o.ID, o.OrderNumber, o.Status, rupiah(o.TotalAmount), o.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func printOrder(a *app, o storeapi.Order) {
	fmt.Fprintf(a.out, "%s  %s\n", o.OrderNumber, o.Status)
	fmt.Fprintf(a.out, "Deliver to: %s\n", o.DeliveryAddress)
	if o.Notes != "" {
		fmt.Fprintf(a.out, "Notes: %s\n", o.Notes)
	}

	tw := newTable(a.out)
	for _, it := range o.Items {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", it.ProductName, serverQuantity(it.Unit, it.Quantity), rupiah(it.Subtotal))
	}
	fmt.Fprintf(tw, "  Subtotal\t\t%s\n", rupiah(o.Subtotal))
	fmt.Fprintf(tw, "  Delivery\t\t%s\n", rupiah(o.DeliveryFee))
	fmt.Fprintf(tw, "  Total\t\t%s\n", rupiah(o.TotalAmount))
	tw.Flush() //nolint:errcheck
}

// runWatch prints order status changes until interrupted.
func runWatch(ctx context.Context, a *app, _ []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Watching your orders (Ctrl-C to stop)...")

	err := a.api.WatchOrders(ctx, func(ev storeapi.OrderEvent) {
		if ev.Type != storeapi.EventOrderUpdated {
			return
		}
		fmt.Fprintf(a.out, "%s is now %s\n", ev.Order.OrderNumber, ev.Order.Status)
	})
	if storeapi.IsStreamClosed(err) {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.New("order stream timed out")
	}
	return err
}
