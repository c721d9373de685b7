package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/skillwave/skillwave-backend/internal/coupons"
	"github.com/skillwave/skillwave-backend/internal/courses"
	"github.com/skillwave/skillwave-backend/internal/users"
	"github.com/skillwave/skillwave-backend/pkg/config"
	"github.com/skillwave/skillwave-backend/pkg/db"
	"github.com/skillwave/skillwave-backend/pkg/db/models"
	"github.com/skillwave/skillwave-backend/pkg/enums"
	"github.com/skillwave/skillwave-backend/pkg/logger"
	"github.com/skillwave/skillwave-backend/pkg/migrate"
	"github.com/skillwave/skillwave-backend/pkg/security"
)

const demoUserEmail = "demo@skillwave.dev"

func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	if err := seedDemoUser(ctx, logg, cfg, dbClient); err != nil {
		logg.Error(ctx, "failed to seed demo user", err)
		os.Exit(1)
	}
	if err := seedCourses(ctx, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to seed courses", err)
		os.Exit(1)
	}
	if err := seedCoupons(ctx, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to seed coupons", err)
		os.Exit(1)
	}

	logg.Info(ctx, "seed complete")
}

func seedDemoUser(ctx context.Context, logg *logger.Logger, cfg *config.Config, dbClient *db.Client) error {
	repo := users.NewRepository(dbClient.DB())

	if _, err := repo.FindByEmail(ctx, demoUserEmail); err == nil {
		logg.Info(ctx, "demo user already present, skipping")
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	password, err := security.GenerateTempPassword(16)
	if err != nil {
		return err
	}
	hash, err := security.HashPassword(password, cfg.Password)
	if err != nil {
		return err
	}

	user, err := repo.Create(ctx, users.CreateUserDTO{
		Email:        demoUserEmail,
		PasswordHash: hash,
		FirstName:    "Demo",
		LastName:     "Learner",
	})
	if err != nil {
		return err
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"user_id":  user.ID.String(),
		"email":    user.Email,
		"password": password,
	}), "created demo user")
	return nil
}

func seedCourses(ctx context.Context, logg *logger.Logger, dbClient *db.Client) error {
	repo := courses.NewRepository(dbClient.DB())

	existing, err := repo.ListPublished(ctx, 1, nil)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logg.Info(ctx, "catalog already seeded, skipping courses")
		return nil
	}

	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	original := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	catalog := []models.Course{
		{Title: "Go for Backend Engineers", InstructorName: "Ada Okafor", Price: price("89.99"), OriginalPrice: original("129.99"), IsPublished: true},
		{Title: "PostgreSQL Performance Tuning", InstructorName: "Luis Romero", Price: price("74.50"), IsPublished: true},
		{Title: "Distributed Systems Fundamentals", InstructorName: "Grace Lindqvist", Price: price("119.00"), OriginalPrice: original("159.00"), IsPublished: true},
		{Title: "Practical Kubernetes", InstructorName: "Ada Okafor", Price: price("94.99"), IsPublished: true},
		{Title: "Redis in Production", InstructorName: "Tomas Keller", Price: price("59.99"), IsPublished: true},
		{Title: "Event-Driven Architecture (Draft)", InstructorName: "Grace Lindqvist", Price: price("99.00"), IsPublished: false},
	}

	for i := range catalog {
		created, err := repo.Create(ctx, &catalog[i])
		if err != nil {
			return err
		}
		logg.Info(logg.WithFields(ctx, map[string]any{
			"course_id": created.ID.String(),
			"title":     created.Title,
		}), "created course")
	}
	return nil
}

func seedCoupons(ctx context.Context, logg *logger.Logger, dbClient *db.Client) error {
	repo := coupons.NewRepository(dbClient.DB())
	now := time.Now().UTC()

	intPtr := func(v int) *int { return &v }
	amount := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	type seedCoupon struct {
		code         string
		description  string
		discountType enums.DiscountType
		value        decimal.Decimal
		minimum      decimal.Decimal
		maximum      *decimal.Decimal
		usageLimit   *int
		perUserLimit *int
		private      bool
		validFor     time.Duration
	}

	seeds := []seedCoupon{
		{
			// Per-user limit stays at the default of one use.
			code:         "WELCOME10",
			description:  "10% off your first order",
			discountType: enums.DiscountTypePercentage,
			value:        decimal.NewFromInt(10),
			validFor:     365 * 24 * time.Hour,
		},
		{
			code:         "LEARN20",
			description:  "20% off orders over $25, capped at $50",
			discountType: enums.DiscountTypePercentage,
			value:        decimal.NewFromInt(20),
			minimum:      decimal.NewFromInt(25),
			maximum:      amount("50.00"),
			perUserLimit: intPtr(3),
			validFor:     90 * 24 * time.Hour,
		},
		{
			code:         "FLAT15",
			description:  "$15 off orders over $50",
			discountType: enums.DiscountTypeFixedAmount,
			value:        decimal.NewFromInt(15),
			minimum:      decimal.NewFromInt(50),
			usageLimit:   intPtr(500),
			perUserLimit: intPtr(5),
			validFor:     30 * 24 * time.Hour,
		},
		{
			// Shared through partner channels only; never listed.
			code:         "PARTNER25",
			description:  "25% off for partner referrals",
			discountType: enums.DiscountTypePercentage,
			value:        decimal.NewFromInt(25),
			private:      true,
			validFor:     180 * 24 * time.Hour,
		},
	}

	for _, seed := range seeds {
		if _, err := repo.FindByCode(ctx, seed.code); err == nil {
			logg.Info(logg.WithFields(ctx, map[string]any{"code": seed.code}), "coupon already present, skipping")
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		coupon, err := models.NewCoupon(seed.code, seed.discountType, seed.value, now, now.Add(seed.validFor))
		if err != nil {
			return err
		}
		coupon.Description = seed.description
		coupon.MinimumOrderAmount = seed.minimum
		coupon.MaximumDiscountAmount = seed.maximum
		coupon.UsageLimit = seed.usageLimit
		if seed.perUserLimit != nil {
			coupon.PerUserLimit = seed.perUserLimit
		}
		if seed.private {
			coupon.IsPublic = false
		}

		created, err := repo.Create(ctx, coupon)
		if err != nil {
			return err
		}
		logg.Info(logg.WithFields(ctx, map[string]any{
			"coupon_id": created.ID.String(),
			"code":      created.Code,
		}), "created coupon")
	}
	return nil
}
