package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"slotwise/internal/config"
	"slotwise/internal/database"
	"slotwise/internal/domain"
	"slotwise/internal/pkg/logger"
	"slotwise/internal/repository"
	"slotwise/internal/scheduling"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Level: "info", Format: "text", Service: "slotwise-seed"})

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Error("DB connection failed", "error", err)
		os.Exit(1)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Error("AutoMigrate failed", "error", err)
		os.Exit(1)
	}

	// Cleanup old data (children first)
	log.Info("cleaning old data")
	for _, table := range []string{
		"class_sessions", "classes", "bookings", "facilities", "locations",
		"organization_working_hours", "users", "organizations",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Error("cleanup failed", "table", table, "error", err)
			os.Exit(1)
		}
	}

	ctx := context.Background()
	store := repository.NewStore(db)
	must := func(what string, err error) {
		if err != nil {
			log.Error("seed failed", "step", what, "error", err)
			os.Exit(1)
		}
	}

	// ================== ORGANIZATION ==================
	org := &domain.Organization{Name: "Almaty Padel Club", SubscriptionStatus: domain.SubscriptionActive}
	owner := &domain.User{Email: "owner@padel.kz", PasswordHash: hash("owner123"), Name: "Arman"}
	must("organization", store.RegisterOrganization(ctx, org, owner))
	log.Info("owner created", "email", owner.Email, "password", "owner123")

	hours := domain.DefaultWorkingHours()
	for i := range hours {
		hours[i] = domain.WorkingHours{DayOfWeek: i, OpenTime: "08:00", CloseTime: "22:00"}
	}
	must("working hours", store.WorkingHours.Upsert(ctx, &domain.OrganizationWorkingHours{OrganizationID: org.ID, Hours: hours}))

	orgID := org.ID
	staff := &domain.User{OrganizationID: &orgID, Email: "staff@padel.kz", PasswordHash: hash("staff123"), Role: domain.RoleStaff, Name: "Dana"}
	must("staff", store.Users.Create(ctx, staff))

	// ================== LOCATIONS & FACILITIES ==================
	loc := &domain.Location{OrganizationID: org.ID, Name: "Esentai", Address: "Al-Farabi 77", Timezone: "Asia/Almaty"}
	must("location", store.Locations.Create(ctx, loc))
	tz := loc.TimeLocation()

	facilities := make([]*domain.Facility, 0, 3)
	for i := 1; i <= 3; i++ {
		f := &domain.Facility{OrganizationID: org.ID, LocationID: loc.ID, Name: fmt.Sprintf("Court %d", i), IsActive: true}
		must("facility", store.Facilities.Create(ctx, f))
		facilities = append(facilities, f)
	}

	// ================== CUSTOMERS ==================
	customers := make([]*domain.User, 0, 3)
	for _, email := range []string{"asel@mail.kz", "bekzat@gmail.com", "dina@yandex.kz"} {
		u := &domain.User{Email: email, PasswordHash: hash("client123"), Role: domain.RoleCustomer, Name: email[:4]}
		must("customer", store.Users.Create(ctx, u))
		customers = append(customers, u)
	}

	// ================== CLASSES ==================
	// Weekly evening class on court 1 for the next eight weeks.
	today := scheduling.CalendarDate(time.Now(), tz)
	courtOne := facilities[0].ID
	spec := scheduling.SessionSpec{
		StartDate:  today,
		StartTime:  scheduling.Clock{Hour: 19},
		Duration:   90 * time.Minute,
		Recurrence: scheduling.Repeating{Pattern: scheduling.PatternWeekly, EndDate: today.AddDate(0, 0, 7*8)},
		Location:   tz,
	}
	intervals, err := scheduling.Expand(spec)
	must("expand class", err)
	class := &domain.Class{
		SeriesID:          uuid.NewString(),
		OrganizationID:    org.ID,
		LocationID:        loc.ID,
		FacilityID:        &courtOne,
		IsInFacility:      true,
		Name:              "Padel basics",
		Instructor:        "Marat",
		StartDate:         today.UTC(),
		StartTime:         spec.StartTime.String(),
		DurationMinutes:   90,
		RecurrencePattern: string(scheduling.PatternWeekly),
	}
	for _, iv := range intervals {
		class.Sessions = append(class.Sessions, domain.ClassSession{
			FacilityID: &courtOne, LocationID: loc.ID, StartTime: iv.Start.UTC(), EndTime: iv.End.UTC(),
		})
	}
	must("class", store.Classes.Create(ctx, class))

	// ================== BOOKINGS ==================
	// Random one-hour bookings on the next 7 days, checked against everything seeded so far.
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	statuses := []domain.BookingStatus{domain.BookingPending, domain.BookingConfirmed, domain.BookingConfirmed}
	created := 0
	for i := 0; i < 30; i++ {
		f := facilities[rng.Intn(len(facilities))]
		c := customers[rng.Intn(len(customers))]
		day := today.AddDate(0, 0, 1+rng.Intn(7))
		start := scheduling.Clock{Hour: 8 + rng.Intn(13)}.On(day, tz)
		iv := scheduling.Interval{Start: start, End: start.Add(time.Hour)}

		err := store.WithFacilityLock(ctx, f.ID, func(tx repository.FacilityTx) error {
			report, err := scheduling.Check(ctx, tx, f.ID, []scheduling.Interval{iv})
			if err != nil || !report.Clean() {
				return err
			}
			created++
			return tx.CreateBooking(ctx, &domain.Booking{
				OrganizationID: org.ID,
				FacilityID:     f.ID,
				LocationID:     loc.ID,
				UserID:         c.ID,
				StartTime:      iv.Start.UTC(),
				EndTime:        iv.End.UTC(),
				Status:         statuses[rng.Intn(len(statuses))],
				CustomerName:   c.Name,
				CustomerEmail:  c.Email,
			})
		})
		must("booking", err)
	}

	log.Info("seed completed",
		"organization_id", org.ID,
		"facilities", len(facilities),
		"class_sessions", len(class.Sessions),
		"bookings", created,
	)
}

func hash(password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}
