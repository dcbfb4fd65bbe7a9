package costs

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"sponsorhub-backend/internal/constants"
	"sponsorhub-backend/internal/database"
	"sponsorhub-backend/internal/domain"
	"sponsorhub-backend/internal/sponsors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	DB       *gorm.DB
	Sponsors *sponsors.Service
}

// PrintableDetails prices posters, standees and banners: a unit count times a
// per-unit cost.
type PrintableDetails struct {
	NumberOfPrintable int     `json:"number_of_printable"`
	SizeOfPrintable   string  `json:"size_of_printable"`
	CostPerPrintable  float64 `json:"cost_per_printable"`
}

// AccommodationPerson carries a pre-computed total for that person's stay in
// CostPerPerson — it is not a nightly rate.
type AccommodationPerson struct {
	PersonName    string  `json:"person_name"`
	ArrivalDate   string  `json:"arrival_date"`
	DepartureDate string  `json:"departure_date"`
	CostPerPerson float64 `json:"cost_per_person"`
}

// FoodMeal carries a per-head rate in CostPerPerson.
type FoodMeal struct {
	MealType       string  `json:"meal_type"`
	NumberOfPeople int     `json:"number_of_people"`
	CostPerPerson  float64 `json:"cost_per_person"`
}

type SubmitCostInput struct {
	DeliverableID uuid.UUID
	SponsorID     uuid.UUID
	CostType      string
	PaymentType   *string
	Printable     *PrintableDetails
	People        []AccommodationPerson
	Meals         []FoodMeal
}

// Compute converts cost-type-specific input into the single estimated cost and
// the normalized persisted shape. An unrecognized cost type is an error, never
// a silent default.
func Compute(in SubmitCostInput) (float64, datatypes.JSON, error) {
	switch in.CostType {
	case domain.CostTypePosters, domain.CostTypeStandee, domain.CostTypeBanner:
		if in.Printable == nil {
			return 0, nil, domain.ErrInvalidState
		}
		total := round2(float64(in.Printable.NumberOfPrintable) * in.Printable.CostPerPrintable)
		details, err := marshalDetails(map[string]interface{}{
			"number_of_printable": in.Printable.NumberOfPrintable,
			"size_of_printable":   in.Printable.SizeOfPrintable,
			"cost_per_printable":  in.Printable.CostPerPrintable,
			"payment_type":        in.PaymentType,
		})
		return total, details, err
	case domain.CostTypeAccommodation:
		total := 0.0
		for _, p := range in.People {
			total += p.CostPerPerson
		}
		details, err := marshalDetails(map[string]interface{}{
			"people":       emptyIfNilPeople(in.People),
			"payment_type": in.PaymentType,
		})
		return round2(total), details, err
	case domain.CostTypeFood:
		total := 0.0
		for _, m := range in.Meals {
			total += float64(m.NumberOfPeople) * m.CostPerPerson
		}
		details, err := marshalDetails(map[string]interface{}{
			"meals":        emptyIfNilMeals(in.Meals),
			"payment_type": in.PaymentType,
		})
		return round2(total), details, err
	default:
		return 0, nil, domain.ErrInvalidState
	}
}

// SubmitCost attaches finance data to a cost deliverable. This is the second,
// distinct status pathway: the deliverable and every assignment entry are
// force-completed, bypassing the assignment reducer. Kept separate from the
// proof-approval pathway on purpose.
func (s *Service) SubmitCost(ctx context.Context, actorRole string, in SubmitCostInput) (*domain.Deliverable, error) {
	if actorRole == constants.Viewer {
		return nil, domain.ErrPermissionDenied
	}

	estimated, details, err := Compute(in)
	if err != nil {
		return nil, err
	}

	var deliverable domain.Deliverable
	err = database.Transact(ctx, s.DB, func(tx *gorm.DB) error {
		if err := tx.Where("deliverable_id = ? AND sponsor_id = ?", in.DeliverableID, in.SponsorID).
			First(&deliverable).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.ErrNotFound
			}
			return err
		}

		costType := in.CostType
		deliverable.TaskType = domain.TaskTypeCost
		deliverable.CostType = &costType
		deliverable.EstimatedCost = estimated
		deliverable.CostDetails = details
		deliverable.Status = domain.DeliverableCompleted
		for i := range deliverable.Assignments {
			deliverable.Assignments[i].Status = domain.AssignmentCompleted
		}
		return tx.Save(&deliverable).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.Sponsors.RecomputeSponsor(ctx, in.SponsorID); err != nil {
		log.Error().Err(err).Str("sponsor_id", in.SponsorID.String()).Msg("sponsor recompute after cost submission failed")
	}
	if err := s.Sponsors.RecomputeCosts(ctx, in.SponsorID); err != nil {
		log.Error().Err(err).Str("sponsor_id", in.SponsorID.String()).Msg("sponsor cost resum after cost submission failed")
	}
	return &deliverable, nil
}

func marshalDetails(m map[string]interface{}) (datatypes.JSON, error) {
	m["submitted_at"] = time.Now().UTC()
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func emptyIfNilPeople(p []AccommodationPerson) []AccommodationPerson {
	if p == nil {
		return []AccommodationPerson{}
	}
	return p
}

func emptyIfNilMeals(m []FoodMeal) []FoodMeal {
	if m == nil {
		return []FoodMeal{}
	}
	return m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
