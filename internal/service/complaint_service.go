package service

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/smartcity/calo/internal/domain"
)

const defaultComplaintCount = 50

type weighted struct {
	value  string
	weight float64
}

// Monsoon scenario: drainage dominates.
var complaintCategories = []weighted{
	{"Drainage", 0.30},
	{"Sanitation", 0.25},
	{"Roads", 0.20},
	{"Water Supply", 0.15},
	{"Lighting", 0.10},
}

var complaintStatuses = []string{"Open", "In Progress", "Closed"}

var (
	drainageSeverities = []weighted{{"High", 0.6}, {"Medium", 0.3}, {"Low", 0.1}}
	defaultSeverities  = []weighted{{"High", 0.2}, {"Medium", 0.5}, {"Low", 0.3}}
)

// ComplaintService generates synthetic civic complaints. The same calendar
// day always yields the same set.
type ComplaintService struct {
	count int
	clock clockwork.Clock
}

// NewComplaintService creates a generator producing count complaints per snapshot
func NewComplaintService(count int, clock clockwork.Clock) *ComplaintService {
	if count <= 0 {
		count = defaultComplaintCount
	}
	return &ComplaintService{count: count, clock: clock}
}

// GetComplaints returns the day's complaints with lowercase category labels
func (s *ComplaintService) GetComplaints() []domain.Complaint {
	now := s.clock.Now()
	y, m, d := now.Date()
	rng := rand.New(rand.NewSource(int64(y*10000 + int(m)*100 + d)))

	complaints := make([]domain.Complaint, 0, s.count)
	for i := 0; i < s.count; i++ {
		category := pick(rng, complaintCategories)
		severities := defaultSeverities
		if category == "Drainage" {
			severities = drainageSeverities
		}

		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			id = uuid.New()
		}
		ago := time.Duration(rng.Intn(31))*24*time.Hour + time.Duration(rng.Intn(24))*time.Hour

		complaints = append(complaints, domain.Complaint{
			ID:          id.String(),
			WardID:      rng.Intn(50) + 1,
			Category:    strings.ToLower(category),
			Status:      complaintStatuses[rng.Intn(len(complaintStatuses))],
			Severity:    pick(rng, severities),
			Description: fmt.Sprintf("%s issue in Ward %d", category, rng.Intn(50)+1),
			Timestamp:   now.Add(-ago),
		})
	}
	return complaints
}

func pick(rng *rand.Rand, options []weighted) string {
	var total float64
	for _, o := range options {
		total += o.weight
	}
	r := rng.Float64() * total
	for _, o := range options {
		if r < o.weight {
			return o.value
		}
		r -= o.weight
	}
	return options[len(options)-1].value
}
