package main

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"strconv"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/utafrali/FoodStore/internal/domain"
	"github.com/utafrali/FoodStore/internal/storefront"
	"github.com/utafrali/FoodStore/pkg/slug"
)

// --------------------------------------------------------------------------
// Seed data definitions
// --------------------------------------------------------------------------

type itemDef struct {
	name        string
	description string
	category    domain.Category
	sizes       []storefront.PackingSizeInput
}

func sizes(pairs ...string) []storefront.PackingSizeInput {
	out := make([]storefront.PackingSizeInput, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, storefront.PackingSizeInput{Size: pairs[i], Price: pairs[i+1]})
	}
	return out
}

func demoCatalog() []itemDef {
	return []itemDef{
		{"Amla Candy", "Sweet and tangy dried gooseberry pieces.", domain.CategoryAmla, sizes("100g", "50", "250g", "110", "500g", "200")},
		{"Masala Amla", "Gooseberry with rock salt and spices.", domain.CategoryAmla, sizes("100g", "60", "250g", "130")},
		{"Jeera Goli", "Cumin digestive tablets.", domain.CategoryChuran, sizes("100g", "40", "500g", "180")},
		{"Anardana Churan", "Pomegranate seed digestive powder.", domain.CategoryChuran, sizes("100g", "45")},
		{"Imli Candy", "Tamarind candy with a chilli kick.", domain.CategoryCandy, sizes("200g", "70", "1kg", "320")},
		{"Kaccha Aam Candy", "Raw mango candy.", domain.CategoryCandy, sizes("200g", "75")},
		{"Meetha Paan", "Sun dried sweet paan.", domain.CategoryDriedPaan, sizes("10 pcs", "90", "25 pcs", "210")},
		{"Rose Supari", "Rose flavoured betel nut.", domain.CategorySupari, sizes("100g", "80", "250g", "190")},
		{"Saunf Mukhwas", "Fennel mouth freshener with sugar coating.", domain.CategoryMukhwas, sizes("100g", "55", "250g", "125")},
		{"Roasted Flax Seeds", "Lightly salted roasted flax seeds.", domain.CategorySeeds, sizes("250g", "95")},
		{"Sweet Lime Pickle", "Lime pickle in jaggery syrup.", domain.CategoryPickle, sizes("250g", "120", "500g", "220")},
		{"Kimia Dates", "Soft dark dates.", domain.CategoryDriedFruits, sizes("250g", "150", "500g", "280", "1kg", "540")},
	}
}

// generatedItems returns n filler products with fake names.
func generatedItems(n int) []itemDef {
	cats := domain.Categories()
	out := make([]itemDef, 0, n)
	for i := 0; i < n; i++ {
		base := gofakeit.IntRange(30, 300)
		out = append(out, itemDef{
			name:        gofakeit.ProductName(),
			description: gofakeit.Sentence(10),
			category:    cats[i%len(cats)],
			sizes:       sizes("100g", strconv.Itoa(base), "250g", strconv.Itoa(base*2+base/4)),
		})
	}
	return out
}

// --------------------------------------------------------------------------
// Seeding
// --------------------------------------------------------------------------

type seeder struct {
	admin  *storefront.Admin
	client *storefront.Client
	logger *slog.Logger
}

type seedReport struct {
	added, skipped, failed int
}

// seedCatalog adds every item whose name is not yet listed.
func (s *seeder) seedCatalog(ctx context.Context, items []itemDef) (seedReport, error) {
	var report seedReport

	listings, notice := s.admin.List(ctx)
	if !notice.OK() {
		return report, fmt.Errorf("list foods: %s", notice.Message)
	}
	existing := make(map[string]bool, len(listings))
	for _, l := range listings {
		existing[l.Name] = true
	}

	for _, it := range items {
		if existing[it.name] {
			report.skipped++
			continue
		}
		img, err := placeholderImage(it.name)
		if err != nil {
			return report, err
		}
		n := s.admin.AddFood(ctx, storefront.AddFoodInput{
			Name:         it.name,
			Description:  it.description,
			Category:     string(it.category),
			PackingSizes: it.sizes,
			ImageName:    slug.Generate(it.name) + ".png",
			Image:        bytes.NewReader(img),
		})
		if !n.OK() {
			s.logger.WarnContext(ctx, "add food failed", slog.String("name", it.name), slog.String("message", n.Message))
			report.failed++
			continue
		}
		existing[it.name] = true
		report.added++
		s.logger.InfoContext(ctx, "food added", slog.String("name", it.name), slog.String("category", string(it.category)))
	}
	return report, nil
}

// seedCustomer registers the demo account, falling back to a login when it
// already exists.
func (s *seeder) seedCustomer(ctx context.Context, email, password string) bool {
	env, err := s.client.Register(ctx, "Demo Customer", email, password)
	if err == nil && env.Succeeded() {
		s.logger.InfoContext(ctx, "demo customer registered", slog.String("email", email))
		return true
	}
	env, err = s.client.Login(ctx, email, password)
	if err != nil {
		s.logger.WarnContext(ctx, "demo customer login failed", slog.String("error", err.Error()))
		return false
	}
	if !env.Succeeded() {
		s.logger.WarnContext(ctx, "demo customer login rejected", slog.String("message", env.Message))
		return false
	}
	s.logger.InfoContext(ctx, "demo customer exists", slog.String("email", email))
	return true
}

// placeholderImage renders a small solid PNG whose color is derived from name.
func placeholderImage(name string) ([]byte, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	sum := h.Sum32()
	c := color.RGBA{R: uint8(sum), G: uint8(sum >> 8), B: uint8(sum >> 16), A: 0xff}

	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}
