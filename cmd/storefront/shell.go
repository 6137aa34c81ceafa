package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/utafrali/FoodStore/internal/domain"
	"github.com/utafrali/FoodStore/internal/storefront"
)

const shellHelp = `Commands:
  menu [category]                    show products (default "All")
  categories                         list categories
  show <id>                          product details
  add <id> [size]                    add one unit (size defaults to the first packing size)
  remove <id> [size]                 remove one unit
  cart                               cart summary
  reload                             reload catalog and cart
  login <email> <password>
  register <email> <password> <name...>
  status                             session and cart count
  admin list
  admin add -name N -desc D -category C -image PATH -size 100g=50 [-size ...]
  admin remove <id>
  admin stock <id> on|off
  help
  quit
`

var errQuit = errors.New("quit")

// shell is a line-oriented front end for one Store.
type shell struct {
	store   *storefront.Store
	admin   *storefront.Admin
	unit    currency.Unit
	printer *message.Printer
	out     io.Writer
	lines   <-chan string
	// done is closed when Run returns so the reader stops sending.
	done chan struct{}
	// readerExited is closed once the reader goroutine has returned.
	readerExited chan struct{}
}

func newShell(store *storefront.Store, admin *storefront.Admin, unit currency.Unit, in io.Reader, out io.Writer) *shell {
	lines := make(chan string)
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
	}()
	return &shell{
		store:        store,
		admin:        admin,
		unit:         unit,
		printer:      message.NewPrinter(language.English),
		out:          out,
		lines:        lines,
		done:         done,
		readerExited: exited,
	}
}

// Run reads commands until quit, end of input or ctx is done. A shell runs
// once.
func (s *shell) Run(ctx context.Context) error {
	defer close(s.done)
	fmt.Fprintln(s.out, "FoodStore. Type help for commands.")
	for {
		line, ok := s.readLine(ctx, "> ")
		if !ok {
			fmt.Fprintln(s.out)
			return nil
		}
		args := splitArgs(line)
		if len(args) == 0 {
			continue
		}
		if err := s.exec(ctx, args); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintln(s.out, "error:", err)
		}
	}
}

func (s *shell) readLine(ctx context.Context, prompt string) (string, bool) {
	fmt.Fprint(s.out, prompt)
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-s.lines:
		return line, ok
	}
}

func (s *shell) exec(ctx context.Context, args []string) error {
	cmd, rest := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "help", "?":
		fmt.Fprint(s.out, shellHelp)
	case "quit", "exit":
		return errQuit
	case "menu":
		s.menu(strings.Join(rest, " "))
	case "categories":
		for _, c := range domain.Categories() {
			fmt.Fprintln(s.out, " ", c)
		}
	case "show":
		return s.show(rest)
	case "add", "remove":
		return s.cartChange(ctx, cmd, rest)
	case "cart":
		s.cart()
	case "reload":
		if err := s.store.Catalog().Load(ctx); err != nil {
			return err
		}
		if err := s.store.Cart().Reload(ctx); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%d products, %d items in cart\n", len(s.store.Catalog().Products()), s.store.Cart().Count())
	case "login":
		if len(rest) != 2 {
			return errors.New("usage: login <email> <password>")
		}
		s.authResult(s.store.Session().Login(ctx, rest[0], rest[1]))
	case "register":
		return s.register(ctx, rest)
	case "status":
		who := "guest"
		if s.store.Session().Authenticated() {
			who = "signed in"
		}
		fmt.Fprintf(s.out, "%s, %d items in cart\n", who, s.store.Cart().Count())
	case "admin":
		return s.adminCmd(ctx, rest)
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return nil
}

func (s *shell) menu(category string) {
	if category == "" {
		category = domain.CategoryAll
	}
	if c, ok := domain.ParseCategory(category); ok {
		category = string(c)
	}
	products := s.store.Display().Select(category)
	fmt.Fprintf(s.out, "== %s ==\n", s.store.Display().Heading(category))
	if len(products) == 0 {
		fmt.Fprintln(s.out, storefront.EmptyCategoryMessage)
		return
	}
	for i := range products {
		p := &products[i]
		stock := ""
		if !p.InStock {
			stock = " (out of stock)"
		}
		fmt.Fprintf(s.out, "  %s  %s  %s%s\n", p.ID, p.Name, s.money(storefront.PriceFor(p, p.DefaultSize())), stock)
	}
}

func (s *shell) show(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: show <id>")
	}
	p, ok := s.store.Catalog().Find(args[0])
	if !ok {
		return fmt.Errorf("no product %q", args[0])
	}
	fmt.Fprintf(s.out, "%s [%s]\n  %s\n", p.Name, domain.DisplayCategory(p.Category), p.Description)
	if len(p.PackingSizes) == 0 {
		fmt.Fprintf(s.out, "  price: %s\n", s.money(storefront.PriceFor(p, "")))
	}
	for _, ps := range p.PackingSizes {
		fmt.Fprintf(s.out, "  %-10s %s  (in cart: %d)\n", ps.Size, s.money(ps.Price.Or()), s.store.Cart().Quantity(p.ID, ps.Size))
	}
	return nil
}

func (s *shell) cartChange(ctx context.Context, cmd string, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: %s <id> [size]", cmd)
	}
	id, size := args[0], ""
	if len(args) == 2 {
		size = args[1]
	} else if p, ok := s.store.Catalog().Find(id); ok {
		size = p.DefaultSize()
	}

	var err error
	if cmd == "add" {
		err = s.store.Cart().Add(ctx, id, size)
	} else {
		err = s.store.Cart().Remove(ctx, id, size)
	}
	fmt.Fprintf(s.out, "%s: %d in cart, total %s\n",
		domain.NewCartKey(id, size), s.store.Cart().Quantity(id, size), s.money(s.store.Cart().TotalAmount()))
	if err != nil {
		return fmt.Errorf("not synced: %w", err)
	}
	return nil
}

func (s *shell) cart() {
	sum := s.store.Cart().Summary()
	if sum.Empty() {
		fmt.Fprintln(s.out, "Your cart is empty.")
		return
	}
	for _, r := range sum.Rows {
		label := r.Product.Name
		if r.Key.Size != "" {
			label += " (" + r.Key.Size + ")"
		}
		fmt.Fprintf(s.out, "  %-32s %3d x %-12s %s\n", label, r.Quantity, s.money(r.UnitPrice), s.money(r.Subtotal))
	}
	fmt.Fprintf(s.out, "  Subtotal      %s\n", s.money(sum.Subtotal))
	fmt.Fprintf(s.out, "  Delivery Fee  %s\n", s.money(sum.DeliveryFee))
	fmt.Fprintf(s.out, "  Total         %s\n", s.money(sum.Total))
}

func (s *shell) register(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errors.New("usage: register <email> <password> <name...>")
	}
	answer, _ := s.readLine(ctx, "Agree to the terms of use and privacy policy? [y/N] ")
	s.authResult(s.store.Session().Register(ctx, storefront.RegisterInput{
		Name:       strings.Join(args[2:], " "),
		Email:      args[0],
		Password:   args[1],
		AgreeTerms: strings.EqualFold(strings.TrimSpace(answer), "y"),
	}))
	return nil
}

func (s *shell) authResult(res storefront.AuthResult) {
	if res.OK {
		fmt.Fprintf(s.out, "signed in, %d items in cart\n", s.store.Cart().Count())
		return
	}
	fmt.Fprintln(s.out, res.Message)
}

func (s *shell) adminCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: admin list|add|remove|stock")
	}
	switch args[0] {
	case "list":
		listings, notice := s.admin.List(ctx)
		if !notice.OK() {
			fmt.Fprintln(s.out, notice)
			return nil
		}
		for _, l := range listings {
			stock := "in stock"
			if !l.InStock {
				stock = "out of stock"
			}
			fmt.Fprintf(s.out, "  %s  %-24s %-12s %-16s %s\n", l.ID, l.Name, l.Category, l.Price, stock)
		}
	case "add":
		return s.adminAdd(ctx, args[1:])
	case "remove":
		if len(args) != 2 {
			return errors.New("usage: admin remove <id>")
		}
		s.notice(ctx, s.admin.Remove(ctx, args[1]))
	case "stock":
		if len(args) != 3 || (args[2] != "on" && args[2] != "off") {
			return errors.New("usage: admin stock <id> on|off")
		}
		s.notice(ctx, s.admin.SetStock(ctx, args[1], args[2] == "on"))
	default:
		return fmt.Errorf("unknown admin command %q", args[0])
	}
	return nil
}

func (s *shell) adminAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("admin add", flag.ContinueOnError)
	fs.SetOutput(s.out)
	name := fs.String("name", "", "product name")
	desc := fs.String("desc", "", "description")
	category := fs.String("category", string(domain.CategoryAmla), "category")
	image := fs.String("image", "", "path of the image file")
	var sizes sizeFlags
	fs.Var(&sizes, "size", "packing size as label=price, repeatable")
	if err := fs.Parse(args); err != nil {
		return nil
	}

	in := storefront.AddFoodInput{
		Name:         *name,
		Description:  *desc,
		Category:     *category,
		PackingSizes: sizes,
	}
	if *image != "" {
		f, err := os.Open(*image)
		if err != nil {
			return fmt.Errorf("open image: %w", err)
		}
		defer f.Close()
		in.Image = f
		in.ImageName = filepath.Base(*image)
	}
	s.notice(ctx, s.admin.AddFood(ctx, in))
	return nil
}

// notice prints n and refreshes the catalog after a successful change.
func (s *shell) notice(ctx context.Context, n storefront.Notice) {
	fmt.Fprintln(s.out, n)
	if n.OK() {
		_ = s.store.Catalog().Load(ctx)
	}
}

func (s *shell) money(d decimal.Decimal) string {
	return s.printer.Sprint(currency.NarrowSymbol(s.unit.Amount(d.StringFixed(2))))
}

// sizeFlags collects repeated -size label=price values.
type sizeFlags []storefront.PackingSizeInput

func (f *sizeFlags) String() string {
	parts := make([]string, 0, len(*f))
	for _, p := range *f {
		parts = append(parts, p.Size+"="+p.Price)
	}
	return strings.Join(parts, ",")
}

func (f *sizeFlags) Set(v string) error {
	label, price, ok := strings.Cut(v, "=")
	if !ok {
		return fmt.Errorf("want label=price, got %q", v)
	}
	*f = append(*f, storefront.PackingSizeInput{Size: strings.TrimSpace(label), Price: strings.TrimSpace(price)})
	return nil
}

// splitArgs splits a command line on whitespace. Double quotes group words.
func splitArgs(line string) []string {
	var (
		args    []string
		cur     strings.Builder
		quoted  bool
		pending bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			pending = true
		case !quoted && (r == ' ' || r == '\t'):
			if pending {
				args = append(args, cur.String())
				cur.Reset()
				pending = false
			}
		default:
			cur.WriteRune(r)
			pending = true
		}
	}
	if pending {
		args = append(args, cur.String())
	}
	return args
}
