package repository

import (
	"context"

	"chauffeur-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuotationListFilter narrows List results; zero values mean "no filter".
type QuotationListFilter struct {
	Status        string
	CustomerEmail string
	TeamLocation  string
	Page          int
	Limit         int
}

type QuotationRepository interface {
	Create(ctx context.Context, q *model.Quotation) error
	Update(ctx context.Context, q *model.Quotation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Quotation, error)
	FindByQuoteNumber(ctx context.Context, number int) (*model.Quotation, error)
	List(ctx context.Context, filter QuotationListFilter) ([]model.Quotation, int64, error)
	NextQuoteNumber(ctx context.Context) (int, error)
	ReplaceItems(ctx context.Context, quotationID uuid.UUID, items []model.QuotationItem) error
}

type quotationRepository struct {
	db *gorm.DB
}

func NewQuotationRepository(db *gorm.DB) QuotationRepository {
	return &quotationRepository{db: db}
}

func (r *quotationRepository) Create(ctx context.Context, q *model.Quotation) error {
	return GetDB(ctx, r.db).Create(q).Error
}

func (r *quotationRepository) Update(ctx context.Context, q *model.Quotation) error {
	return GetDB(ctx, r.db).Save(q).Error
}

func (r *quotationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Quotation, error) {
	var q model.Quotation
	if err := GetDB(ctx, r.db).Preload("Items").First(&q, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *quotationRepository) FindByQuoteNumber(ctx context.Context, number int) (*model.Quotation, error) {
	var q model.Quotation
	if err := GetDB(ctx, r.db).Preload("Items").First(&q, "quote_number = ?", number).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *quotationRepository) List(ctx context.Context, filter QuotationListFilter) ([]model.Quotation, int64, error) {
	db := GetDB(ctx, r.db).Model(&model.Quotation{})

	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.CustomerEmail != "" {
		db = db.Where("customer_email ILIKE ?", "%"+filter.CustomerEmail+"%")
	}
	if filter.TeamLocation != "" {
		db = db.Where("team_location = ?", filter.TeamLocation)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var quotations []model.Quotation
	offset := (filter.Page - 1) * filter.Limit
	if err := db.Preload("Items").Order("created_at desc").
		Offset(offset).Limit(filter.Limit).Find(&quotations).Error; err != nil {
		return nil, 0, err
	}

	return quotations, total, nil
}

// NextQuoteNumber allocates the next sequential quote number. Callers run it
// inside the same transaction as the insert so the unique index catches races.
func (r *quotationRepository) NextQuoteNumber(ctx context.Context) (int, error) {
	var max int
	err := GetDB(ctx, r.db).Model(&model.Quotation{}).
		Select("COALESCE(MAX(quote_number), 0)").Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *quotationRepository) ReplaceItems(ctx context.Context, quotationID uuid.UUID, items []model.QuotationItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("quotation_id = ?", quotationID).Delete(&model.QuotationItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].QuotationID = quotationID
	}
	return db.Create(&items).Error
}
