package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/kiwari-pos/storefront/internal/cart"
	"github.com/kiwari-pos/storefront/internal/quantity"
	"github.com/kiwari-pos/storefront/internal/storeapi"
)

func runCategories(ctx context.Context, a *app, args []string) error {
	fs := newFlags("categories", a)
	sub := fs.String("sub", "", "List the subcategories of this category")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tw := newTable(a.out)
	if *sub != "" {
		subs, err := a.api.ListSubcategories(ctx, *sub)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "ID\tSUBCATEGORY")
		for _, s := range subs {
			fmt.Fprintf(tw, "%s\t%s\n", s.ID, s.Name)
		}
		return tw.Flush()
	}

	cats, err := a.api.ListCategories(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(tw, "ID\tCATEGORY")
	for _, c := range cats {
		fmt.Fprintf(tw, "%s\t%s\n", c.ID, c.Name)
	}
	return tw.Flush()
}

func runProducts(ctx context.Context, a *app, args []string) error {
	fs := newFlags("products", a)
	var f storeapi.ProductFilter
	fs.StringVar(&f.CategoryID, "category", "", "Category ID")
	fs.StringVar(&f.SubcategoryID, "subcategory", "", "Subcategory ID")
	fs.StringVar(&f.Search, "search", "", "Name contains")
	if err := fs.Parse(args); err != nil {
		return err
	}

	products, err := a.api.ListProducts(ctx, f)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		fmt.Fprintln(a.out, "No products found.")
		return nil
	}

	if a.auth.IsAuthenticated() {
		if err := a.refreshBadge(ctx); err != nil {
			a.logger.Debug("cart badge unavailable")
		}
	}

	tw := newTable(a.out)
	fmt.Fprintln(tw, "ID\tPRODUCT\tPRICE\t")
	for _, p := range products {
		note := ""
		switch {
		case !p.InStock:
			note = "out of stock"
		case a.badge.Has(p.ID):
			note = "in cart"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, unitPrice(p.Price, p.Unit), note)
	}
	return tw.Flush()
}

func runProduct(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: storefront " + commands["product"].usage)
	}
	p, err := a.api.GetProduct(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s\n  %s\n", p.Name, unitPrice(p.Price, p.Unit))
	if p.Description != "" {
		fmt.Fprintf(a.out, "  %s\n", p.Description)
	}
	if !p.InStock {
		fmt.Fprintln(a.out, "  out of stock")
	}
	return nil
}

// runAdd builds a selection on the product-detail picker and sends it to the
// server cart. Weight products start at 0 kg and piece products at 1.
func runAdd(ctx context.Context, a *app, args []string) error {
	fs := newFlags("add", a)
	n := fs.Int("n", 0, "Whole kilograms (weight) or pieces on top of the starting quantity")
	q250 := fs.Bool("250g", false, "Toggle the 250g shortcut (weight products)")
	q500 := fs.Bool("500g", false, "Toggle the 500g shortcut (weight products)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("product id is required")
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	p, err := a.api.GetProduct(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	if !p.InStock {
		return fmt.Errorf("%s is out of stock", p.Name)
	}
	if err := a.refreshBadge(ctx); err != nil {
		return err
	}

	picker := cart.NewPicker(a.api, a.badge, a.codec, p)
	for i := 0; i < *n; i++ {
		picker.Increase()
	}
	if *q250 {
		picker.Toggle(quantity.Increment250g)
	}
	if *q500 {
		picker.Toggle(quantity.Increment500g)
	}

	it := picker.Item()
	if _, err := picker.AddToCart(ctx); err != nil {
		if errors.Is(err, cart.ErrZeroQuantity) {
			return errors.New("choose a quantity first (-n, -250g or -500g)")
		}
		return err
	}
	fmt.Fprintf(a.out, "Added %s of %s (%s). Cart: %d products.\n",
		displayQuantity(p.Unit, it.Quantity), p.Name, rupiah(picker.Price()), a.badge.Count())
	return nil
}
