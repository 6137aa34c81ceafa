package storefront

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/utafrali/FoodStore/internal/domain"
)

// NoticeLevel classifies a Notice.
type NoticeLevel string

// Notice levels.
const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a message for the operator.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// OK reports a success notice.
func (n Notice) OK() bool { return n.Level == NoticeSuccess }

func (n Notice) String() string { return string(n.Level) + ": " + n.Message }

func successNotice(msg string) Notice { return Notice{Level: NoticeSuccess, Message: msg} }
func errorNotice(msg string) Notice   { return Notice{Level: NoticeError, Message: msg} }

// Admin panel messages.
const (
	MsgUploadImage       = "Please upload an image"
	MsgFillFields        = "Please fill all fields correctly"
	MsgPackingSize       = "Please add at least one packing size with price"
	MsgSomethingWrong    = "Something went wrong"
	MsgAddFailed         = "Error adding product"
	MsgFetchListFailed   = "Error fetching list"
	MsgServerError       = "Server error"
	MsgRemoveFailed      = "Error removing food"
	MsgStockUpdated      = "Stock status updated"
	MsgStockUpdateFailed = "Error updating stock"
)

// PackingSizeInput is one row of the packing size form.
type PackingSizeInput struct {
	Size  string
	Price string
}

// AddFoodInput is the add-listing form.
type AddFoodInput struct {
	Name         string
	Description  string
	Category     string
	PackingSizes []PackingSizeInput
	ImageName    string
	Image        io.Reader
}

// Listing is one row of the admin list.
type Listing struct {
	ID       string
	Name     string
	Category string
	Price    string
	Image    string
	InStock  bool
}

// Admin drives the catalog management operations.
type Admin struct {
	client *Client
	logger *slog.Logger
}

// NewAdmin creates an Admin.
func NewAdmin(client *Client, logger *slog.Logger) *Admin {
	if logger == nil {
		logger = slog.Default()
	}
	return &Admin{client: client, logger: logger}
}

// AddFood validates the form and uploads the listing.
func (a *Admin) AddFood(ctx context.Context, in AddFoodInput) Notice {
	if in.Image == nil {
		return errorNotice(MsgUploadImage)
	}
	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)
	if name == "" || description == "" {
		return errorNotice(MsgFillFields)
	}
	sizes := cleanPackingSizes(in.PackingSizes)
	if len(sizes) == 0 {
		return errorNotice(MsgPackingSize)
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = string(domain.CategoryAmla)
	}

	env, err := a.client.AddFood(ctx, AddFoodRequest{
		Name:         name,
		Description:  description,
		Category:     category,
		PackingSizes: sizes,
		ImageName:    in.ImageName,
		Image:        in.Image,
	})
	if err != nil {
		a.logger.WarnContext(ctx, "add food request failed", slog.String("error", err.Error()))
		return errorNotice(MsgAddFailed)
	}
	if !env.OK() {
		return errorNotice(orDefault(env.Message, MsgAddFailed))
	}
	if !env.Success {
		return errorNotice(orDefault(env.Message, MsgSomethingWrong))
	}
	return successNotice(env.Message)
}

// List fetches the listings with display category and price.
func (a *Admin) List(ctx context.Context) ([]Listing, Notice) {
	env, products, err := a.client.ListFoods(ctx)
	if err != nil {
		a.logger.WarnContext(ctx, "list foods request failed", slog.String("error", err.Error()))
		return nil, errorNotice(MsgServerError)
	}
	if !env.OK() {
		return nil, errorNotice(MsgServerError)
	}
	if !env.Success {
		return nil, errorNotice(MsgFetchListFailed)
	}

	out := make([]Listing, 0, len(products))
	for i := range products {
		p := &products[i]
		out = append(out, Listing{
			ID:       p.ID,
			Name:     p.Name,
			Category: domain.DisplayCategory(p.Category),
			Price:    DisplayPrice(p),
			Image:    p.Image,
			InStock:  p.InStock,
		})
	}
	return out, Notice{Level: NoticeSuccess}
}

// Remove deletes a listing.
func (a *Admin) Remove(ctx context.Context, id string) Notice {
	env, err := a.client.RemoveFood(ctx, id)
	if err != nil {
		a.logger.WarnContext(ctx, "remove food request failed", slog.String("error", err.Error()))
		return errorNotice(MsgServerError)
	}
	if !env.OK() {
		return errorNotice(MsgServerError)
	}
	if !env.Success {
		return errorNotice(MsgRemoveFailed)
	}
	return successNotice(env.Message)
}

// SetStock sets the stock flag of a listing.
func (a *Admin) SetStock(ctx context.Context, id string, inStock bool) Notice {
	env, err := a.client.UpdateStock(ctx, id, inStock)
	if err != nil {
		a.logger.WarnContext(ctx, "update stock request failed", slog.String("error", err.Error()))
		return errorNotice(MsgServerError)
	}
	if !env.OK() {
		return errorNotice(MsgServerError)
	}
	if !env.Success {
		return errorNotice(MsgStockUpdateFailed)
	}
	return successNotice(MsgStockUpdated)
}

// DisplayPrice formats the list price: the first packing size with its
// label, else the base price, else zero.
func DisplayPrice(p *domain.Product) string {
	if len(p.PackingSizes) > 0 {
		first := p.PackingSizes[0]
		return fmt.Sprintf("₹%s (%s)", first.Price.Or().String(), first.Size)
	}
	return "₹" + p.Price.Or().String()
}

// cleanPackingSizes keeps rows with a size and a numeric price.
func cleanPackingSizes(rows []PackingSizeInput) []domain.PackingSize {
	out := make([]domain.PackingSize, 0, len(rows))
	for _, r := range rows {
		if r.Size == "" || r.Price == "" {
			continue
		}
		price, ok := domain.ParsePrice(r.Price)
		if !ok {
			continue
		}
		out = append(out, domain.PackingSize{Size: r.Size, Price: price})
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
