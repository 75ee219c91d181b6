package services

import (
	"time"

	"github.com/chefbawss/backend/internal/models"
	"github.com/chefbawss/backend/pkg/response"
	"gorm.io/gorm"
)

type FinanceService struct {
	db *gorm.DB
}

func NewFinanceService(db *gorm.DB) *FinanceService {
	return &FinanceService{db: db}
}

// FinanceSummary is the organization rollup over completed events in an
// inclusive date range. Missing chef pay counts as zero, never null.
type FinanceSummary struct {
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Revenue    float64 `json:"revenue"`
	PaidOut    float64 `json:"paid_out"`
	Profit     float64 `json:"profit"`
	EventCount int64   `json:"event_count"`
}

// ChefEarnings is one row of the per-chef breakdown.
type ChefEarnings struct {
	ChefID     uint    `json:"chef_id"`
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	Revenue    float64 `json:"revenue"`
	TotalPaid  float64 `json:"total_paid"`
	Profit     float64 `json:"profit"`
	EventCount int64   `json:"event_count"`
}

// resolveRange fills the default window (month start through today) and
// rejects malformed dates.
func resolveRange(start, end string) (string, string, error) {
	now := time.Now()
	if start == "" {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format(dateLayout)
	} else if !validDate(start) {
		return "", "", response.NewBadRequest("start_date must be in YYYY-MM-DD format")
	}
	if end == "" {
		end = now.Format(dateLayout)
	} else if !validDate(end) {
		return "", "", response.NewBadRequest("end_date must be in YYYY-MM-DD format")
	}
	return start, end, nil
}

// completed narrows a tenant event scope to completed events in range.
func completed(q *gorm.DB, start, end string) *gorm.DB {
	return q.Where("events.status = ? AND events.date >= ? AND events.date <= ?",
		models.StatusCompleted, start, end)
}

type totalsRow struct {
	Revenue    float64
	PaidOut    float64
	EventCount int64
}

// Summary computes the organization-wide rollup. Admin only; callers
// gate on role before reaching here.
func (s *FinanceService) Summary(tenant *models.Tenant, startDate, endDate string) (*FinanceSummary, error) {
	start, end, err := resolveRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	var row totalsRow
	err = completed(tenant.Events(s.db), start, end).
		Select("COALESCE(SUM(events.client_pay), 0) AS revenue, COALESCE(SUM(COALESCE(events.chef_pay, 0)), 0) AS paid_out, COUNT(*) AS event_count").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &FinanceSummary{
		StartDate:  start,
		EndDate:    end,
		Revenue:    row.Revenue,
		PaidOut:    row.PaidOut,
		Profit:     row.Revenue - row.PaidOut,
		EventCount: row.EventCount,
	}, nil
}

// ByChef computes the per-chef breakdown, highest payout first. Events
// without an assigned chef cannot be attributed and are left out.
func (s *FinanceService) ByChef(tenant *models.Tenant, startDate, endDate string) ([]ChefEarnings, error) {
	start, end, err := resolveRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	type chefRow struct {
		MembershipID uint
		FirstName    string
		LastName     string
		Color        string
		Revenue      float64
		TotalPaid    float64
		EventCount   int64
	}

	var rows []chefRow
	err = completed(tenant.Events(s.db), start, end).
		Joins("JOIN chef_profiles ON chef_profiles.id = events.chef_profile_id").
		Joins("JOIN organization_memberships ON organization_memberships.id = chef_profiles.membership_id").
		Joins("JOIN users ON users.id = organization_memberships.user_id").
		Select("chef_profiles.membership_id AS membership_id," +
			" users.first_name AS first_name, users.last_name AS last_name," +
			" chef_profiles.calendar_color AS color," +
			" COALESCE(SUM(events.client_pay), 0) AS revenue," +
			" COALESCE(SUM(COALESCE(events.chef_pay, 0)), 0) AS total_paid," +
			" COUNT(*) AS event_count").
		Group("chef_profiles.membership_id, users.first_name, users.last_name, chef_profiles.calendar_color").
		Order("total_paid DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	earnings := make([]ChefEarnings, 0, len(rows))
	for _, r := range rows {
		name := r.FirstName
		if r.LastName != "" {
			if name != "" {
				name += " "
			}
			name += r.LastName
		}
		earnings = append(earnings, ChefEarnings{
			ChefID:     r.MembershipID,
			Name:       name,
			Color:      r.Color,
			Revenue:    r.Revenue,
			TotalPaid:  r.TotalPaid,
			Profit:     r.Revenue - r.TotalPaid,
			EventCount: r.EventCount,
		})
	}
	return earnings, nil
}

// AdminDashboard is the landing rollup for admins: the month to date,
// the next few upcoming events and the most recently completed ones.
type AdminDashboard struct {
	MonthToDate     *FinanceSummary `json:"month_to_date"`
	UpcomingCount   int64           `json:"upcoming_count"`
	UpcomingEvents  []models.Event  `json:"upcoming_events"`
	RecentCompleted []models.Event  `json:"recent_completed"`
	ChefCount       int64           `json:"chef_count"`
	ClientCount     int64           `json:"client_count"`
}

// ChefDashboard exposes only the chef's own earnings and schedule.
// Nothing organization-wide is reachable from here.
type ChefDashboard struct {
	MonthToDateEarnings float64        `json:"month_to_date_earnings"`
	YearToDateEarnings  float64        `json:"year_to_date_earnings"`
	UpcomingCount       int64          `json:"upcoming_count"`
	UpcomingEvents      []models.Event `json:"upcoming_events"`
}

const dashboardUpcomingLimit = 5

func (s *FinanceService) AdminDashboard(tenant *models.Tenant) (*AdminDashboard, error) {
	summary, err := s.Summary(tenant, "", "")
	if err != nil {
		return nil, err
	}

	today := time.Now().Format(dateLayout)

	dash := &AdminDashboard{MonthToDate: summary}

	upcoming := tenant.Events(s.db).
		Where("events.status = ? AND events.date >= ?", models.StatusUpcoming, today)
	if err := upcoming.Count(&dash.UpcomingCount).Error; err != nil {
		return nil, err
	}
	err = tenant.Events(s.db).
		Where("events.status = ? AND events.date >= ?", models.StatusUpcoming, today).
		Preload("Client").Preload("ChefProfile").
		Order("events.date, events.start_time").
		Limit(dashboardUpcomingLimit).
		Find(&dash.UpcomingEvents).Error
	if err != nil {
		return nil, err
	}

	err = tenant.Events(s.db).
		Where("events.status = ?", models.StatusCompleted).
		Preload("Client").Preload("ChefProfile").
		Order("events.date DESC").
		Limit(dashboardUpcomingLimit).
		Find(&dash.RecentCompleted).Error
	if err != nil {
		return nil, err
	}

	if err := tenant.Memberships(s.db).
		Where("organization_memberships.role = ?", models.RoleChef).
		Count(&dash.ChefCount).Error; err != nil {
		return nil, err
	}
	if err := tenant.Clients(s.db).Count(&dash.ClientCount).Error; err != nil {
		return nil, err
	}

	return dash, nil
}

// chefEarningsSince sums the calling chef's pay over completed events
// from start through today. The tenant scope already narrows to their
// own assignments.
func (s *FinanceService) chefEarningsSince(tenant *models.Tenant, start, end string) (float64, error) {
	var total float64
	err := completed(tenant.Events(s.db), start, end).
		Select("COALESCE(SUM(COALESCE(events.chef_pay, 0)), 0)").
		Scan(&total).Error
	return total, err
}

func (s *FinanceService) ChefDashboard(tenant *models.Tenant) (*ChefDashboard, error) {
	now := time.Now()
	today := now.Format(dateLayout)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format(dateLayout)
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()).Format(dateLayout)

	dash := &ChefDashboard{}

	var err error
	if dash.MonthToDateEarnings, err = s.chefEarningsSince(tenant, monthStart, today); err != nil {
		return nil, err
	}
	if dash.YearToDateEarnings, err = s.chefEarningsSince(tenant, yearStart, today); err != nil {
		return nil, err
	}

	if err := tenant.Events(s.db).
		Where("events.status = ? AND events.date >= ?", models.StatusUpcoming, today).
		Count(&dash.UpcomingCount).Error; err != nil {
		return nil, err
	}
	err = tenant.Events(s.db).
		Where("events.status = ? AND events.date >= ?", models.StatusUpcoming, today).
		Preload("Client").
		Order("events.date, events.start_time").
		Limit(dashboardUpcomingLimit).
		Find(&dash.UpcomingEvents).Error
	if err != nil {
		return nil, err
	}

	return dash, nil
}
