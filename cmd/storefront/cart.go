package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kiwari-pos/storefront/internal/cart"
	"github.com/kiwari-pos/storefront/internal/quantity"
)

const editorHelp = `commands:
  + N            add 1 kg / 1 piece to item N
  - N            remove 1 kg / 1 piece from item N
  250 N, 500 N   toggle the 250g / 500g shortcut on weight item N
  rm N           remove item N from the cart
  search [TEXT]  show only items whose name contains TEXT
  total          show the total of the visible items
  refresh        reload the cart from the server
  checkout ADDRESS [| NOTES]
  quit`

func runCart(ctx context.Context, a *app, _ []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	s := cart.NewSession(a.api, a.badge, a.codec, a.logger)
	defer s.Close()

	if err := s.Refresh(ctx); err != nil {
		return err
	}
	return editCart(ctx, s, a.in, a.out)
}

// cartEditor is the line-oriented cart screen. Quantity edits stay local
// until checkout.
type cartEditor struct {
	s      *cart.Session
	out    io.Writer
	search string
	done   bool
}

func editCart(ctx context.Context, s *cart.Session, in *bufio.Reader, out io.Writer) error {
	e := &cartEditor{s: s, out: out}
	e.render()
	for !e.done {
		fmt.Fprint(out, "> ")
		line, err := in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}
		if err := e.exec(ctx, strings.TrimSpace(line)); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(out, "error: %s\n", userMessage(err))
		}
	}
	return nil
}

func (e *cartEditor) exec(ctx context.Context, line string) error {
	if line == "" {
		return nil
	}
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "+":
		return e.onItem(rest, e.s.Increase)
	case "-":
		return e.onItem(rest, e.s.Decrease)
	case "250":
		return e.onItem(rest, func(id string) error { return e.s.Toggle(id, quantity.Increment250g) })
	case "500":
		return e.onItem(rest, func(id string) error { return e.s.Toggle(id, quantity.Increment500g) })
	case "rm":
		return e.onItem(rest, func(id string) error { return e.s.Remove(ctx, id) })
	case "search":
		e.search = rest
		e.render()
	case "total":
		fmt.Fprintf(e.out, "Total: %s\n", rupiah(e.s.Total(e.search)))
	case "refresh":
		if err := e.s.Refresh(ctx); err != nil {
			return err
		}
		e.render()
	case "checkout":
		return e.checkout(ctx, rest)
	case "quit", "q", "exit":
		e.done = true
	case "help", "?":
		fmt.Fprintln(e.out, editorHelp)
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return nil
}

// onItem resolves a 1-based index into the visible list, applies fn and
// redraws.
func (e *cartEditor) onItem(arg string, fn func(id string) error) error {
	items := e.s.Items(e.search)
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(items) {
		return fmt.Errorf("no item %q", arg)
	}
	if err := fn(items[n-1].ID); err != nil {
		return err
	}
	e.render()
	return nil
}

func (e *cartEditor) checkout(ctx context.Context, arg string) error {
	address, notes, _ := strings.Cut(arg, "|")
	order, err := e.s.Checkout(ctx, address, notes)
	if err != nil {
		if errors.Is(err, quantity.ErrEmptyOrder) {
			return errors.New("nothing to order: every quantity is zero")
		}
		return err
	}
	fmt.Fprintf(e.out, "Order %s placed: %s (status %s).\n",
		order.OrderNumber, rupiah(order.TotalAmount), order.Status)
	e.done = true
	return nil
}

func (e *cartEditor) render() {
	items := e.s.Items(e.search)
	if len(items) == 0 {
		if e.search != "" {
			fmt.Fprintf(e.out, "No items match %q.\n", e.search)
		} else {
			fmt.Fprintln(e.out, "Your cart is empty.")
		}
		return
	}

	tw := newTable(e.out)
	fmt.Fprintln(tw, "#\tPRODUCT\tQTY\tPRICE\t")
	for i, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			i+1, it.Product.Name, displayQuantity(it.Product.Unit, it.Quantity),
			rupiah(quantity.Price(it)), shortcuts(it))
	}
	tw.Flush() //nolint:errcheck
	fmt.Fprintf(e.out, "Total: %s\n", rupiah(e.s.Total(e.search)))
}
