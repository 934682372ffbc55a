package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/kiwari-pos/storefront/internal/storeapi"
)

func runRegister(ctx context.Context, a *app, args []string) error {
	fs := newFlags("register", a)
	name := fs.String("name", "", "Full name")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	password := fs.String("password", "", "Password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *email == "" {
		fs.Usage()
		return errors.New("name and email are required")
	}
	pw, err := a.passwordOr(*password)
	if err != nil {
		return err
	}

	s, err := a.api.Register(ctx, storeapi.RegisterRequest{Name: *name, Email: *email, Phone: *phone, Password: pw})
	if err != nil {
		return err
	}
	if err := a.auth.SetSession(s.Token, s.User); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s! You are signed in.\n", s.User.Name)
	return nil
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlags("login", a)
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		fs.Usage()
		return errors.New("email is required")
	}
	pw, err := a.passwordOr(*password)
	if err != nil {
		return err
	}

	s, err := a.api.Login(ctx, *email, pw)
	if err != nil {
		return err
	}
	if err := a.auth.SetSession(s.Token, s.User); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s.\n", s.User.Email)
	return nil
}

func runLogout(_ context.Context, a *app, _ []string) error {
	if err := a.auth.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

func runWhoami(ctx context.Context, a *app, _ []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	u, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	if err := a.auth.UpdateUser(u); err != nil {
		return err
	}
	printUser(a, u)
	return nil
}

func runProfile(ctx context.Context, a *app, args []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	current, err := a.api.Me(ctx)
	if err != nil {
		return err
	}

	fs := newFlags("profile", a)
	name := fs.String("name", current.Name, "Full name")
	phone := fs.String("phone", current.Phone, "Phone number")
	address := fs.String("address", current.Address, "Default delivery address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	u, err := a.api.UpdateProfile(ctx, storeapi.ProfileUpdate{Name: *name, Phone: *phone, Address: *address})
	if err != nil {
		return err
	}
	if err := a.auth.UpdateUser(u); err != nil {
		return err
	}
	printUser(a, u)
	return nil
}

func printUser(a *app, u storeapi.User) {
	fmt.Fprintf(a.out, "%s <%s>\n", u.Name, u.Email)
	if u.Phone != "" {
		fmt.Fprintf(a.out, "  phone:   %s\n", u.Phone)
	}
	if u.Address != "" {
		fmt.Fprintf(a.out, "  address: %s\n", u.Address)
	}
	if u.Role != "CUSTOMER" {
		fmt.Fprintf(a.out, "  role:    %s\n", u.Role)
	}
}

func (a *app) passwordOr(pw string) (string, error) {
	if pw != "" {
		return pw, nil
	}
	pw, err := a.prompt("Password: ")
	if err != nil {
		return "", err
	}
	if pw == "" {
		return "", errors.New("password is required")
	}
	return pw, nil
}
