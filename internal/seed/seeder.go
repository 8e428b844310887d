package seed

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"reachmesh-bknd/internal/geo"
	"reachmesh-bknd/internal/models"
	"reachmesh-bknd/internal/services"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// farthest seeded distance, short of half the Earth's circumference
const maxSeedKM = 19000

const seedOwnerEmail = "seed@reachmesh.local"

var (
	businessTypes   = []string{"Bakery", "Restaurant", "Salon", "Pharmacy", "Hardware", "Boutique"}
	professionTypes = []string{"Plumber", "Electrician", "Tutor", "Photographer", "Nurse", "Accountant"}
)

// Placement positions one listing relative to the seed center.
type Placement struct {
	Mode       geo.Mode
	DistanceKM float64
	BearingDeg float64
}

// Placements spreads n listings round-robin over every mode. rnd returns
// values in [0, 1).
func Placements(n int, rnd func() float64) []Placement {
	modes := geo.Modes()
	out := make([]Placement, 0, n)
	for i := 0; i < n; i++ {
		m := modes[i%len(modes)]
		out = append(out, Placement{
			Mode:       m,
			DistanceKM: distanceIn(m, rnd()),
			BearingDeg: rnd() * 360,
		})
	}
	return out
}

// distanceIn maps r in [0, 1) into the mode's interval, keeping clear of
// the boundaries so the round trip through coordinates stays in the mode.
func distanceIn(m geo.Mode, r float64) float64 {
	b, _ := m.Bounds()
	upper := math.Min(b.Upper, maxSeedKM)
	lower := b.Lower
	span := upper - lower
	// 5% margin at both ends
	return lower + span*(0.05+0.9*r)
}

// Summary reports what a seed run inserted.
type Summary struct {
	Businesses    int              `json:"businesses"`
	Professionals int              `json:"professionals"`
	PerMode       map[geo.Mode]int `json:"per_mode"`
}

// Seeder inserts fake listings for local development.
type Seeder struct {
	db      *bun.DB
	catalog *services.CatalogService
	logr    *zap.Logger
	rnd     func() float64
}

func NewSeeder(db *bun.DB, catalog *services.CatalogService, logr *zap.Logger) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db, catalog: catalog, logr: logr, rnd: rand.Float64}
}

// SeedListings inserts count listings, alternating businesses and
// professionals, scattered around center so every distance mode is
// populated.
func (s *Seeder) SeedListings(ctx context.Context, center geo.Point, count int) (*Summary, error) {
	if count <= 0 {
		return nil, fmt.Errorf("count must be positive")
	}
	if !center.Valid() {
		return nil, fmt.Errorf("invalid center %+v", center)
	}

	owner, err := s.ensureOwner(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure seed owner: %w", err)
	}
	bTypes, err := s.ensureTypes(ctx, businessTypes, s.catalog.EnsureBusinessType)
	if err != nil {
		return nil, err
	}
	pTypes, err := s.ensureTypes(ctx, professionTypes, s.catalog.EnsureProfessionType)
	if err != nil {
		return nil, err
	}

	sum := &Summary{PerMode: make(map[geo.Mode]int)}
	var businesses []*models.Business
	var professionals []*models.Professional
	now := time.Now().UTC()

	for i, p := range Placements(count, s.rnd) {
		pt := geo.Offset(center, p.DistanceKM, p.BearingDeg)
		lat, lon := pt.Lat, pt.Lon
		rating := math.Round((3+2*s.rnd())*10) / 10
		sum.PerMode[p.Mode]++

		if i%2 == 0 {
			desc := gofakeit.HipsterSentence()
			businesses = append(businesses, &models.Business{
				ID:          uuid.New(),
				UserID:      owner,
				TypeID:      &bTypes[i%len(bTypes)],
				Name:        fmt.Sprintf("%s %s", gofakeit.Company(), gofakeit.City()),
				Description: &desc,
				Rating:      &rating,
				Reviews:     gofakeit.Number(0, 400),
				IsOpen:      gofakeit.Bool(),
				Latitude:    &lat,
				Longitude:   &lon,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
			continue
		}

		bio := gofakeit.HipsterSentence()
		professionals = append(professionals, &models.Professional{
			ID:        uuid.New(),
			UserID:    owner,
			TypeID:    &pTypes[i%len(pTypes)],
			Name:      gofakeit.Name(),
			Title:     gofakeit.JobTitle(),
			Bio:       &bio,
			Rating:    &rating,
			Reviews:   gofakeit.Number(0, 250),
			Likes:     gofakeit.Number(0, 1000),
			Online:    gofakeit.Bool(),
			Verified:  gofakeit.Bool(),
			Latitude:  &lat,
			Longitude: &lon,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if len(businesses) > 0 {
			if _, err := tx.NewInsert().Model(&businesses).Exec(ctx); err != nil {
				return fmt.Errorf("insert businesses: %w", err)
			}
		}
		if len(professionals) > 0 {
			if _, err := tx.NewInsert().Model(&professionals).Exec(ctx); err != nil {
				return fmt.Errorf("insert professionals: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sum.Businesses = len(businesses)
	sum.Professionals = len(professionals)
	s.logr.Info("seeded listings",
		zap.Int("businesses", sum.Businesses),
		zap.Int("professionals", sum.Professionals),
		zap.Float64("center_lat", center.Lat),
		zap.Float64("center_lon", center.Lon))
	return sum, nil
}

func (s *Seeder) ensureTypes(ctx context.Context, names []string, ensure func(context.Context, string) (uuid.UUID, error)) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(names))
	for _, n := range names {
		id, err := ensure(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("failed to ensure type %q: %w", n, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ensureOwner returns the id of the account that owns seeded listings.
func (s *Seeder) ensureOwner(ctx context.Context) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.NewSelect().Model((*models.User)(nil)).Column("id").Where("lower(email) = ?", seedOwnerEmail).Scan(ctx, &id)
	if err == nil {
		return id, nil
	}

	u := &models.User{
		ID:        uuid.New(),
		Email:     seedOwnerEmail,
		Provider:  "local",
		Name:      "Seed Data",
		Roles:     []string{"user"},
		CreatedAt: time.Now().UTC(),
	}
	email := u.Email
	first, last, _ := strings.Cut(u.Name, " ")
	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(u).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(&models.Profile{ID: u.ID, Email: &email, FirstName: &first, LastName: &last}).Exec(ctx)
		return err
	})
	if err != nil {
		return uuid.Nil, err
	}
	return u.ID, nil
}

// Clean removes every listing owned by the seed account.
func (s *Seeder) Clean(ctx context.Context) (int64, error) {
	var removed int64
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		owner := tx.NewSelect().Model((*models.User)(nil)).Column("id").Where("lower(email) = ?", seedOwnerEmail)
		for _, m := range []any{(*models.Business)(nil), (*models.Professional)(nil)} {
			res, err := tx.NewDelete().Model(m).Where("user_id IN (?)", owner).Exec(ctx)
			if err != nil {
				return err
			}
			n, _ := res.RowsAffected()
			removed += n
		}
		return nil
	})
	return removed, err
}
