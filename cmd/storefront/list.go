package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kiwari-pos/storefront/internal/shoplist"
	"github.com/kiwari-pos/storefront/internal/storeapi"
)

// runList reads a shopping list (one item per line, "-" for stdin), matches
// every line to a catalog product and adds the matches to the server cart.
func runList(ctx context.Context, a *app, args []string) error {
	fs := newFlags("list", a)
	dryRun := fs.Bool("dry-run", false, "Show the matches without touching the cart")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("list file is required")
	}
	if !*dryRun {
		if err := a.requireSession(); err != nil {
			return err
		}
	}

	var data []byte
	var err error
	if path := fs.Arg(0); path == "-" {
		data, err = io.ReadAll(a.in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read list: %w", err)
	}

	list, err := shoplist.Parse(string(data))
	if err != nil {
		return err
	}

	products, matcher, err := a.catalogMatcher(ctx)
	if err != nil {
		return err
	}

	added := 0
	tw := newTable(a.out)
	fmt.Fprintln(tw, "LINE\tPRODUCT\tQUANTITY\tRESULT")
	for _, item := range list.Items {
		res := matcher.Match(item.Description)
		switch res.Status {
		case shoplist.Unmatched:
			fmt.Fprintf(tw, "%s\t-\t-\tno match\n", item.RawText)
			continue
		case shoplist.Ambiguous:
			names := make([]string, len(res.Candidates))
			for i, c := range res.Candidates {
				names[i] = c.Name
			}
			fmt.Fprintf(tw, "%s\t-\t-\tambiguous: %s\n", item.RawText, strings.Join(names, ", "))
			continue
		}

		p := products[res.Entry.ID]
		q, err := item.ServerQuantity(p.Unit)
		if err != nil {
			fmt.Fprintf(tw, "%s\t%s\t-\t%v\n", item.RawText, p.Name, err)
			continue
		}
		result := "would add"
		switch {
		case !p.InStock:
			result = "out of stock"
		case !*dryRun:
			if _, err := a.api.AddCartItem(ctx, p.ID, q); err != nil {
				result = userMessage(err)
			} else {
				result = "added"
				added++
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.RawText, p.Name, serverQuantity(p.Unit, q), result)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, w := range list.Warnings {
		fmt.Fprintln(a.out, w)
	}
	if *dryRun {
		return nil
	}
	if err := a.refreshBadge(ctx); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %d of %d lines. Cart: %d products.\n", added, len(list.Items), a.badge.Count())
	return nil
}

// catalogMatcher loads the whole catalog and indexes it by product name.
func (a *app) catalogMatcher(ctx context.Context) (map[string]storeapi.Product, *shoplist.Matcher, error) {
	products, err := a.api.ListProducts(ctx, storeapi.ProductFilter{})
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[string]storeapi.Product, len(products))
	entries := make([]shoplist.Entry, len(products))
	for i, p := range products {
		byID[p.ID] = p
		entries[i] = shoplist.Entry{ID: p.ID, Name: p.Name}
	}
	return byID, shoplist.NewMatcher(entries), nil
}
