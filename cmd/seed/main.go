package main

import (
	"time"

	"github.com/megano/internal/app"
	"github.com/megano/internal/config"
	"github.com/megano/internal/constants"
	"github.com/megano/internal/logger"
	"github.com/megano/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type seedProduct struct {
	Category    string
	Name        string
	Description string
	Image       string
	Limited     bool
	Offers      []seedOffer
}

type seedOffer struct {
	Shop      string
	Price     float64
	Available int
}

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()
	if err := app.PrepareDatabase(cfg); err != nil {
		stdLog.Fatalf("Failed to prepare database: %v", err)
	}
	db := models.DB

	// 配送与支付方式
	deliveries := []models.DeliveryCategory{
		{Name: "Обычная доставка", Codename: constants.DeliveryCodenameRegular, Price: money(200), IsActive: true},
		{Name: "Экспресс-доставка", Codename: constants.DeliveryCodenameExpress, Price: money(500), IsActive: true},
	}
	for i := range deliveries {
		if err := db.Where("codename = ?", deliveries[i].Codename).FirstOrCreate(&deliveries[i]).Error; err != nil {
			stdLog.Printf("Failed to create delivery category %s: %v", deliveries[i].Codename, err)
		}
	}
	payments := []models.PaymentCategory{
		{Name: "Онлайн картой", Codename: constants.PaymentCodenameBankCard, IsActive: true},
		{Name: "Онлайн со случайного чужого счёта", Codename: constants.PaymentCodenameCash, IsActive: true},
	}
	for i := range payments {
		if err := db.Where("codename = ?", payments[i].Codename).FirstOrCreate(&payments[i]).Error; err != nil {
			stdLog.Printf("Failed to create payment category %s: %v", payments[i].Codename, err)
		}
	}

	// 店铺
	shops := map[string]*models.Shop{}
	for _, shop := range []models.Shop{
		{Name: "Megano Store", Phone: "+7 495 000-00-01", Email: "store@megano.local", Address: "Москва, Тверская 1", IsActive: true},
		{Name: "Tech Corner", Phone: "+7 812 000-00-02", Email: "corner@megano.local", Address: "Санкт-Петербург, Невский 10", IsActive: true},
	} {
		row := shop
		if err := db.Where("name = ?", row.Name).FirstOrCreate(&row).Error; err != nil {
			stdLog.Fatalf("Failed to create shop %s: %v", row.Name, err)
		}
		shops[row.Name] = &row
	}

	// 分类
	categories := map[string]*models.Category{}
	for i, category := range []models.Category{
		{Name: "Смартфоны", Slug: "phones", IsActive: true},
		{Name: "Ноутбуки", Slug: "laptops", IsActive: true},
		{Name: "Аксессуары", Slug: "accessories", IsActive: true},
	} {
		row := category
		row.SortOrder = i
		if err := db.Where("slug = ?", row.Slug).FirstOrCreate(&row).Error; err != nil {
			stdLog.Fatalf("Failed to create category %s: %v", row.Slug, err)
		}
		categories[row.Slug] = &row
	}

	products := []seedProduct{
		{
			Category:    "phones",
			Name:        "Phone X",
			Description: "6.1\" OLED, 128 GB",
			Image:       "https://images.unsplash.com/photo-1511707171634-5f897ff02aa9?w=800",
			Offers: []seedOffer{
				{Shop: "Megano Store", Price: 59990, Available: 12},
				{Shop: "Tech Corner", Price: 57990, Available: 3},
			},
		},
		{
			Category:    "laptops",
			Name:        "Ultrabook 14",
			Description: "14\" IPS, 16 GB RAM, 512 GB SSD",
			Image:       "https://images.unsplash.com/photo-1496181133206-80ce9b88a853?w=800",
			Limited:     true,
			Offers: []seedOffer{
				{Shop: "Megano Store", Price: 89990, Available: 5},
			},
		},
		{
			Category:    "accessories",
			Name:        "USB-C Cable",
			Description: "1 m, 60 W",
			Image:       "https://images.unsplash.com/photo-1583863788434-e58a36330cf0?w=800",
			Offers: []seedOffer{
				{Shop: "Megano Store", Price: 790, Available: 100},
				{Shop: "Tech Corner", Price: 650, Available: 40},
			},
		},
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, p := range products {
			category := categories[p.Category]
			product := models.Product{
				CategoryID:  category.ID,
				Name:        p.Name,
				Description: p.Description,
				Images:      models.StringArray{p.Image},
				IsLimited:   p.Limited,
			}
			if err := tx.Where("name = ? AND category_id = ?", p.Name, category.ID).FirstOrCreate(&product).Error; err != nil {
				return err
			}
			for _, offer := range p.Offers {
				shop := shops[offer.Shop]
				item := models.ShopProduct{
					ProductID:      product.ID,
					ShopID:         shop.ID,
					Price:          money(offer.Price),
					AvailableCount: offer.Available,
					IsActive:       true,
				}
				if err := tx.Where("product_id = ? AND shop_id = ?", product.ID, shop.ID).FirstOrCreate(&item).Error; err != nil {
					return err
				}
			}
			stdLog.Printf("Seeded product: %s (%d offers)", p.Name, len(p.Offers))
		}
		return nil
	})
	if err != nil {
		stdLog.Fatalf("Failed to seed products: %v", err)
	}

	// 折扣示例：一周后到期
	now := time.Now().UTC()
	discount := models.Discount{Name: "Неделя смартфонов", Percent: 10, DateStart: now, DateEnd: now.AddDate(0, 0, 7), IsActive: true}
	if err := db.Where("name = ?", discount.Name).FirstOrCreate(&discount).Error; err != nil {
		stdLog.Printf("Failed to create discount: %v", err)
	} else if err := db.Model(&models.ShopProduct{}).
		Where("product_id IN (?)", db.Model(&models.Product{}).Select("id").Where("category_id = ?", categories["phones"].ID)).
		Update("discount_id", discount.ID).Error; err != nil {
		stdLog.Printf("Failed to attach discount: %v", err)
	}

	stdLog.Printf("Seed completed")
}

func money(amount float64) models.Money {
	return models.NewMoneyFromDecimal(decimal.NewFromFloat(amount).Round(2))
}
