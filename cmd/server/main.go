package main

import (
	"context"
	"flag"
	"log"
	"net/http"

	"fruitshop-be/internal/assets"
	"fruitshop-be/internal/catalog"
	"fruitshop-be/internal/config"
	"fruitshop-be/internal/customer"
	"fruitshop-be/internal/db"
	"fruitshop-be/internal/feedback"
	"fruitshop-be/internal/logger"
	"fruitshop-be/internal/metrics"
	"fruitshop-be/internal/notification"
	"fruitshop-be/internal/order"
	"fruitshop-be/internal/utils"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

func main() {
	seedCatalog := flag.Bool("seed", false, "seed the catalog with starter data when empty")
	flag.Parse()

	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	uploader := &assets.NoopUploader{BaseURL: "https://assets.local/fruitshop"}

	catalogRepo := catalog.NewRepository(database)
	catalogSvc := catalog.NewService(catalogRepo, uploader)

	customerRepo := customer.NewRepository(database)

	mailer := &notification.LogMailer{From: cfg.MailFrom}
	dispatcher := notification.NewDispatcher(mailer, cfg.MailRatePerMin)
	defer dispatcher.Close()

	orderMetrics := metrics.NewOrderMetrics()

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, catalogRepo, customerRepo, dispatcher, orderMetrics)

	feedbackRepo := feedback.NewRepository(database)
	feedbackSvc := feedback.NewService(feedbackRepo, catalogRepo)

	if *seedCatalog {
		if err := seed(context.Background(), catalogSvc); err != nil {
			log.Fatalf("Failed to seed catalog: %v", err)
		}
	}

	// The HTTP API gateway is a separate deployment consuming these
	// services; this process exposes health and metrics only.
	api := &coreServices{
		Catalog:  catalogSvc,
		Customer: customer.NewService(customerRepo),
		Order:    orderSvc,
		Feedback: feedbackSvc,
	}

	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/healthz", api.healthz(database.Ping))

	log.Printf("fruitshop core running at http://localhost:%s/", cfg.AppPort)
	log.Fatal(http.ListenAndServe(":"+cfg.AppPort, nil))
}

type coreServices struct {
	Catalog  catalog.Service
	Customer customer.Service
	Order    order.Service
	Feedback feedback.Service
}

func (s *coreServices) healthz(ping func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ping(); err != nil {
			http.Error(w, "db unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// seed loads a small starter catalog, skipping anything already present.
func seed(ctx context.Context, svc catalog.Service) error {
	type seedProduct struct {
		name     string
		origin   string
		category string
		desc     string
		selling  string
		discount string
		unit     catalog.Unit
		stock    int
		minUnit  int
	}

	categories := []string{"Trái cây Việt Nam", "Trái cây nhập khẩu"}
	products := []seedProduct{
		{"Cam sành", "Việt Nam", "Trái cây Việt Nam", "Cam sành miền Tây, vỏ mỏng nhiều nước", "45000", "0", catalog.UnitKG, 100, 2},
		{"Xoài cát Hòa Lộc", "Việt Nam", "Trái cây Việt Nam", "Xoài cát Hòa Lộc Tiền Giang", "85000", "10", catalog.UnitKG, 50, 2},
		{"Táo Envy", "New Zealand", "Trái cây nhập khẩu", "Táo Envy size 70-80", "120000", "5", catalog.UnitBox, 30, 1},
		{"Nho mẫu đơn", "Hàn Quốc", "Trái cây nhập khẩu", "Nho mẫu đơn Shine Muscat", "450000", "0", catalog.UnitBox, 15, 1},
	}

	for _, name := range categories {
		if _, err := svc.GetCategoryByName(ctx, name); err == nil {
			continue
		}
		if _, err := svc.CreateCategory(ctx, name, nil); err != nil {
			return err
		}
	}

	for _, p := range products {
		if _, err := svc.GetProductByName(ctx, p.name); err == nil {
			continue
		}

		selling, _ := decimal.NewFromString(p.selling)
		discount, _ := decimal.NewFromString(p.discount)

		_, err := svc.CreateProduct(ctx, catalog.CreateProductInput{
			Name:               p.name,
			Origin:             p.origin,
			Description:        utils.StrPtr(p.desc),
			OriginalPrice:      selling,
			SellingPrice:       selling,
			DiscountPercentage: discount,
			Unit:               p.unit,
			Stock:              p.stock,
			MinUnitToOrder:     p.minUnit,
			CategoryName:       p.category,
		})
		if err != nil {
			return err
		}
	}

	return nil
}
