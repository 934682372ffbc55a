// Command storefront is the terminal front end of the grocery storefront:
// browse the catalog, edit the cart, check out and follow order status.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/kiwari-pos/storefront/internal/config"
	"github.com/kiwari-pos/storefront/internal/logging"
	"github.com/kiwari-pos/storefront/internal/quantity"
	"github.com/kiwari-pos/storefront/internal/securestore"
	"github.com/kiwari-pos/storefront/internal/state"
	"github.com/kiwari-pos/storefront/internal/storeapi"
	"go.uber.org/zap"
)

// app carries what every subcommand needs.
type app struct {
	api    *storeapi.Client
	auth   *state.AuthStore
	badge  *state.CartBadge
	codec  quantity.Codec
	logger *zap.Logger

	in  *bufio.Reader
	out io.Writer
}

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

// commands is populated in init to break the initialization cycle through
// newFlags, which reads commands for usage text.
var commands map[string]command

func init() {
	commands = map[string]command{
		"register":   {"register -name NAME -email EMAIL [-phone PHONE] [-password PW]", runRegister},
		"login":      {"login -email EMAIL [-password PW]", runLogin},
		"logout":     {"logout", runLogout},
		"whoami":     {"whoami", runWhoami},
		"profile":    {"profile [-name NAME] [-phone PHONE] [-address ADDRESS]", runProfile},
		"categories": {"categories [-sub CATEGORY_ID]", runCategories},
		"products":   {"products [-category ID] [-subcategory ID] [-search TEXT]", runProducts},
		"product":    {"product PRODUCT_ID", runProduct},
		"add":        {"add [-n WHOLE_UNITS] [-250g] [-500g] PRODUCT_ID", runAdd},
		"list":       {"list [-dry-run] FILE|-", runList},
		"cart":       {"cart", runCart},
		"orders":     {"orders [ORDER_ID]", runOrders},
		"watch":      {"watch", runWatch},
		"complain":   {"complain [-order ORDER_ID] -subject SUBJECT -message MESSAGE", runComplain},
		"complaints": {"complaints", runComplaints},
		"contact":    {"contact -name NAME -email EMAIL -message MESSAGE", runContact},
	}
}

func main() {
	verbose := flag.Bool("v", false, "Log debug output to stderr")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "storefront: unknown command %q\n\n", flag.Arg(0))
		usage()
		os.Exit(2)
	}

	cfg, err := config.LoadClient()
	if err != nil {
		fatal(err)
	}

	logger := logging.Quiet()
	if *verbose {
		if logger, err = logging.New(cfg.Env); err != nil {
			fatal(err)
		}
	}
	defer logger.Sync() //nolint:errcheck

	a, err := newApp(cfg, logger, os.Stdin, os.Stdout)
	if err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.run(ctx, a, flag.Args()[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fatal(userMessage(err))
	}
}

func newApp(cfg *config.ClientConfig, logger *zap.Logger, in io.Reader, out io.Writer) (*app, error) {
	kv, err := securestore.NewFileStore(cfg.StorePath, cfg.StoreKey)
	if err != nil {
		return nil, err
	}
	auth := state.NewAuthStore(kv)
	if err := auth.Load(); err != nil {
		return nil, err
	}

	api, err := storeapi.New(storeapi.Config{
		BaseURL:     cfg.APIURL,
		Timeout:     cfg.Timeout,
		Credentials: auth,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		api:    api,
		auth:   auth,
		badge:  state.NewCartBadge(),
		codec:  quantity.Codec{LegacyPieceScaling: cfg.LegacyPieceScaling},
		logger: logger,
		in:     bufio.NewReader(in),
		out:    out,
	}, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: storefront [-v] <command> [flags]\n\ncommands:\n")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %s\n", commands[name].usage)
	}
}

func fatal(v interface{}) {
	fmt.Fprintf(os.Stderr, "storefront: %v\n", v)
	os.Exit(1)
}

// userMessage turns API failures into what a shopper should read.
func userMessage(err error) string {
	var apiErr *storeapi.APIError
	switch {
	case errors.Is(err, storeapi.ErrUnauthorized):
		return "please sign in again (storefront login)"
	case errors.As(err, &apiErr):
		return apiErr.Message
	}
	return err.Error()
}

// newFlags returns a FlagSet for a subcommand that reports errors instead of
// exiting.
func newFlags(name string, a *app) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	fs.Usage = func() {
		fmt.Fprintf(a.out, "usage: storefront %s\n", commands[name].usage)
		fs.PrintDefaults()
	}
	return fs
}

// prompt reads one trimmed line after printing label.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *app) requireSession() error {
	if !a.auth.IsAuthenticated() {
		return errors.New("not signed in (storefront login)")
	}
	return nil
}

// refreshBadge syncs the cart badge with the server cart.
func (a *app) refreshBadge(ctx context.Context) error {
	c, err := a.api.GetCart(ctx)
	if err != nil {
		return err
	}
	ids := make([]string, len(c.Items))
	for i, it := range c.Items {
		ids[i] = it.Product.ID
	}
	a.badge.Reset(ids)
	return nil
}
