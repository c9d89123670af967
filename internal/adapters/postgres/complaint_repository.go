package postgres

import (
	"context"
	"errors"

	"github.com/abx15/JanSankalp-AI-sub002/internal/domain"
	"github.com/abx15/JanSankalp-AI-sub002/internal/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type complaintRepository struct {
	db *gorm.DB
}

func (r *complaintRepository) Create(ctx context.Context, params ports.CreateComplaintParams) (domain.Complaint, error) {
	row := complaintModel{
		ID:          params.ID,
		TicketID:    params.TicketID,
		Title:       params.Title,
		Description: params.Description,
		Category:    params.Category,
		Severity:    domain.ClampSeverity(params.Severity),
		Status:      string(domain.StatusPending),
		Latitude:    params.Latitude,
		Longitude:   params.Longitude,
		StateID:     params.Scope.StateID,
		DistrictID:  params.Scope.DistrictID,
		CityID:      params.Scope.CityID,
		WardID:      params.Scope.WardID,
		AuthorID:    params.AuthorID,
		CreatedAt:   params.CreatedAt,
		UpdatedAt:   params.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Complaint{}, translate(err)
	}
	return toDomainComplaint(row), nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (domain.Complaint, error) {
	var row complaintModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return domain.Complaint{}, translate(err)
	}
	return toDomainComplaint(row), nil
}

func (r *complaintRepository) Mutate(ctx context.Context, id string, fn ports.ComplaintMutation) (domain.Complaint, bool, error) {
	var (
		result  domain.Complaint
		changed bool
		fnErr   error
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row complaintModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			Take(&row).Error; err != nil {
			return err
		}
		current := toDomainComplaint(row)
		working := current
		changed, fnErr = fn(&working)
		if fnErr != nil {
			return fnErr
		}
		if !changed {
			result = current
			return nil
		}
		if err := tx.Model(&complaintModel{}).
			Where("id = ?", id).
			Updates(mutableColumns(working)).Error; err != nil {
			return err
		}
		working.ID = current.ID
		working.TicketID = current.TicketID
		working.Scope = current.Scope
		working.AuthorID = current.AuthorID
		working.Severity = domain.ClampSeverity(working.Severity)
		result = working
		return nil
	})
	if fnErr != nil {
		return domain.Complaint{}, false, fnErr
	}
	if err != nil {
		return domain.Complaint{}, false, translate(err)
	}
	return result, changed, nil
}

func (r *complaintRepository) List(ctx context.Context, pred domain.TenantPredicate, filter domain.ComplaintFilter) ([]domain.Complaint, int64, error) {
	if pred.MatchesNone() {
		return []domain.Complaint{}, 0, nil
	}
	query := r.db.WithContext(ctx).Model(&complaintModel{})
	query, err := applyTenantPredicate(query, pred)
	if err != nil {
		return nil, 0, err
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var rows []complaintModel
	page := query.Order("created_at DESC").Order("id ASC")
	if filter.PageSize > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.PageSize
		}
		page = page.Limit(filter.PageSize).Offset(offset)
	}
	if err := page.Find(&rows).Error; err != nil {
		return nil, 0, translate(err)
	}
	items := make([]domain.Complaint, 0, len(rows))
	for _, row := range rows {
		items = append(items, toDomainComplaint(row))
	}
	return items, total, nil
}

func (r *complaintRepository) FindOpenInBox(ctx context.Context, category string, box domain.BoundingBox) ([]domain.Complaint, error) {
	var rows []complaintModel
	err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Where("status <> ?", string(domain.StatusResolved)).
		Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat).
		Where("longitude BETWEEN ? AND ?", box.MinLng, box.MaxLng).
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	items := make([]domain.Complaint, 0, len(rows))
	for _, row := range rows {
		items = append(items, toDomainComplaint(row))
	}
	return items, nil
}

// applyTenantPredicate turns a tenant predicate into a WHERE clause. Column
// names come from a fixed set, never from input.
func applyTenantPredicate(query *gorm.DB, pred domain.TenantPredicate) (*gorm.DB, error) {
	if pred.All {
		return query, nil
	}
	switch pred.Field {
	case domain.ScopeFieldState, domain.ScopeFieldDistrict, domain.ScopeFieldCity, domain.ScopeFieldAuthor:
		return query.Where(string(pred.Field)+" = ?", pred.Value), nil
	default:
		return nil, errors.New("unsupported tenant predicate field")
	}
}

var _ ports.ComplaintRepository = (*complaintRepository)(nil)
