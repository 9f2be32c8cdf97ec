package repository

import (
	"context"
	"math"

	"beautyhub-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SalonWithDistance is a salon row annotated with its great-circle distance
// from the search origin, in kilometers.
type SalonWithDistance struct {
	model.Salon
	DistanceKm float64 `json:"distance_km" gorm:"column:distance_km"`
}

// SalonWithRelevance is a salon row annotated with its text-search relevance
// score. Higher is a better match.
type SalonWithRelevance struct {
	model.Salon
	Relevance int `json:"relevance" gorm:"column:relevance"`
}

type SalonRepository interface {
	Create(ctx context.Context, salon *model.Salon) error
	Update(ctx context.Context, salon *model.Salon) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Salon, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Salon, error)
	List(ctx context.Context, status, city, search string, page, limit int) ([]model.Salon, int64, error)
	Nearby(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]SalonWithDistance, error)
	Search(ctx context.Context, query, city string, minRating float64, limit int) ([]SalonWithRelevance, error)

	CreateService(ctx context.Context, svc *model.SalonService) error
	UpdateService(ctx context.Context, svc *model.SalonService) error
	DeleteService(ctx context.Context, id uuid.UUID) error
	FindServiceByID(ctx context.Context, id uuid.UUID) (*model.SalonService, error)
	ListServices(ctx context.Context, salonID uuid.UUID) ([]model.SalonService, error)

	CreateReview(ctx context.Context, review *model.Review) error
	ListReviews(ctx context.Context, salonID uuid.UUID, page, limit int) ([]model.Review, int64, error)
	RecalculateRating(ctx context.Context, salonID uuid.UUID) error
}

type salonRepository struct {
	db *gorm.DB
}

func NewSalonRepository(db *gorm.DB) SalonRepository {
	return &salonRepository{db: db}
}

func (r *salonRepository) Create(ctx context.Context, salon *model.Salon) error {
	return GetDB(ctx, r.db).Create(salon).Error
}

func (r *salonRepository) Update(ctx context.Context, salon *model.Salon) error {
	return GetDB(ctx, r.db).Save(salon).Error
}

func (r *salonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Salon{}).Error
}

func (r *salonRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Salon, error) {
	var salon model.Salon
	if err := GetDB(ctx, r.db).Preload("Services", "is_active = ?", true).First(&salon, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &salon, nil
}

func (r *salonRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Salon, error) {
	var salons []model.Salon
	if err := GetDB(ctx, r.db).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&salons).Error; err != nil {
		return nil, err
	}
	return salons, nil
}

func (r *salonRepository) List(ctx context.Context, status, city, search string, page, limit int) ([]model.Salon, int64, error) {
	var salons []model.Salon
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Salon{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if city != "" {
		query = query.Where("city = ?", city)
	}
	if search != "" {
		query = query.Where("name ILIKE ? OR description ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Model(&model.Salon{})
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if city != "" {
		fetchQuery = fetchQuery.Where("city = ?", city)
	}
	if search != "" {
		fetchQuery = fetchQuery.Where("name ILIKE ? OR description ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(limit).Find(&salons).Error; err != nil {
		return nil, 0, err
	}

	return salons, total, nil
}

// BoundingBox returns the latitude/longitude envelope that encloses a circle
// of radiusKm around the origin. One degree of latitude is ~111km; longitude
// degrees shrink with cos(lat), clamped so the box stays finite near the poles.
func BoundingBox(lat, lon, radiusKm float64) (minLat, maxLat, minLon, maxLon float64) {
	latDelta := radiusKm / 111.0
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	lonDelta := radiusKm / (111.0 * cosLat)
	return lat - latDelta, lat + latDelta, lon - lonDelta, lon + lonDelta
}

// Nearby ranks approved salons by great-circle distance from the origin.
// A bounding-box prefilter keeps the haversine computation off rows that
// cannot possibly be within the radius.
func (r *salonRepository) Nearby(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]SalonWithDistance, error) {
	minLat, maxLat, minLon, maxLon := BoundingBox(lat, lon, radiusKm)

	var rows []SalonWithDistance
	err := GetDB(ctx, r.db).Raw(`
		SELECT * FROM (
			SELECT s.*,
				6371 * acos(LEAST(1.0,
					cos(radians(?)) * cos(radians(s.latitude)) * cos(radians(s.longitude) - radians(?))
					+ sin(radians(?)) * sin(radians(s.latitude))
				)) AS distance_km
			FROM salons s
			WHERE s.status = ?
				AND s.latitude IS NOT NULL AND s.longitude IS NOT NULL
				AND s.latitude BETWEEN ? AND ?
				AND s.longitude BETWEEN ? AND ?
		) nearby
		WHERE distance_km <= ?
		ORDER BY distance_km ASC
		LIMIT ?`,
		lat, lon, lat,
		model.VendorStatusApproved,
		minLat, maxLat, minLon, maxLon,
		radiusKm, limit,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Search ranks approved salons by a simple relevance score: exact name match
// beats a name prefix, which beats a name substring, then description and
// city matches.
func (r *salonRepository) Search(ctx context.Context, query, city string, minRating float64, limit int) ([]SalonWithRelevance, error) {
	pattern := "%" + query + "%"
	prefix := query + "%"

	db := GetDB(ctx, r.db).Raw(`
		SELECT * FROM (
			SELECT s.*,
				CASE
					WHEN LOWER(s.name) = LOWER(?) THEN 100
					WHEN s.name ILIKE ? THEN 80
					WHEN s.name ILIKE ? THEN 60
					WHEN s.description ILIKE ? THEN 40
					WHEN s.city ILIKE ? THEN 20
					ELSE 0
				END AS relevance
			FROM salons s
			WHERE s.status = ?
				AND s.rating >= ?
				AND (? = '' OR s.city ILIKE ?)
				AND (s.name ILIKE ? OR s.description ILIKE ? OR s.city ILIKE ?)
		) ranked
		WHERE relevance > 0
		ORDER BY relevance DESC, rating DESC
		LIMIT ?`,
		query, prefix, pattern, pattern, pattern,
		model.VendorStatusApproved, minRating,
		city, city,
		pattern, pattern, pattern,
		limit,
	)

	var rows []SalonWithRelevance
	if err := db.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *salonRepository) CreateService(ctx context.Context, svc *model.SalonService) error {
	return GetDB(ctx, r.db).Create(svc).Error
}

func (r *salonRepository) UpdateService(ctx context.Context, svc *model.SalonService) error {
	return GetDB(ctx, r.db).Save(svc).Error
}

func (r *salonRepository) DeleteService(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.SalonService{}).Error
}

func (r *salonRepository) FindServiceByID(ctx context.Context, id uuid.UUID) (*model.SalonService, error) {
	var svc model.SalonService
	if err := GetDB(ctx, r.db).First(&svc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *salonRepository) ListServices(ctx context.Context, salonID uuid.UUID) ([]model.SalonService, error) {
	var services []model.SalonService
	if err := GetDB(ctx, r.db).Where("salon_id = ?", salonID).Order("name ASC").Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (r *salonRepository) CreateReview(ctx context.Context, review *model.Review) error {
	return GetDB(ctx, r.db).Create(review).Error
}

func (r *salonRepository) ListReviews(ctx context.Context, salonID uuid.UUID, page, limit int) ([]model.Review, int64, error) {
	var reviews []model.Review
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Review{}).Where("salon_id = ?", salonID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("User").
		Where("salon_id = ?", salonID).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&reviews).Error; err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

// RecalculateRating refreshes the denormalized rating fields from the
// review rows. Runs in the same transaction as the review insert.
func (r *salonRepository) RecalculateRating(ctx context.Context, salonID uuid.UUID) error {
	return GetDB(ctx, r.db).Exec(`
		UPDATE salons
		SET rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE salon_id = ?), 0),
			rating_count = (SELECT COUNT(*) FROM reviews WHERE salon_id = ?)
		WHERE id = ?`,
		salonID, salonID, salonID,
	).Error
}
