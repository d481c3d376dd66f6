package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"

	"github.com/zatekoja/ridemaps/backend/internal/domain/entities"
	"github.com/zatekoja/ridemaps/backend/internal/domain/repositories"
	"github.com/zatekoja/ridemaps/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/ridemaps/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/ridemaps/backend/pkg/errors"
)

const captainsTable = "captains"

var captainColumns = []interface{}{
	"id", "first_name", "last_name", "email", "status",
	"vehicle_color", "vehicle_plate", "vehicle_capacity", "vehicle_type",
	"latitude", "longitude", "socket_id", "created_at", "updated_at",
}

// CaptainAdapter implements CaptainRepository on PostgreSQL
type CaptainAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	metrics *observability.Metrics
}

// NewCaptainAdapter creates a new captain adapter; metrics may be nil
func NewCaptainAdapter(client *postgres.Client, metrics *observability.Metrics) repositories.CaptainRepository {
	return &CaptainAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		metrics: metrics,
	}
}

// Save inserts the captain or replaces the stored record with the same ID
func (a *CaptainAdapter) Save(ctx context.Context, captain *entities.Captain) error {
	if captain.ID == "" {
		captain.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if captain.CreatedAt.IsZero() {
		captain.CreatedAt = now
	}
	captain.UpdatedAt = now
	if captain.Status == "" {
		captain.Status = entities.CaptainStatusInactive
	}

	record := goqu.Record{
		"id":               captain.ID,
		"first_name":       captain.FirstName,
		"last_name":        captain.LastName,
		"email":            captain.Email,
		"status":           string(captain.Status),
		"vehicle_color":    captain.Vehicle.Color,
		"vehicle_plate":    captain.Vehicle.Plate,
		"vehicle_capacity": captain.Vehicle.Capacity,
		"vehicle_type":     captain.Vehicle.Type,
		"latitude":         nullFloat(captain.Location, func(l *entities.Location) float64 { return l.Latitude }),
		"longitude":        nullFloat(captain.Location, func(l *entities.Location) float64 { return l.Longitude }),
		"socket_id":        sql.NullString{String: captain.SocketID, Valid: captain.SocketID != ""},
		"created_at":       captain.CreatedAt,
		"updated_at":       captain.UpdatedAt,
	}

	update := goqu.Record{}
	for k, v := range record {
		if k != "id" && k != "created_at" {
			update[k] = v
		}
	}

	query, args, err := a.db.Insert(captainsTable).
		Rows(record).
		OnConflict(goqu.DoUpdate("id", update)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	defer a.observe(ctx, "captains.save", time.Now())
	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Str("captain_id", captain.ID).Msg("failed to save captain")
		return apperrors.NewInternalError("failed to save captain", err)
	}

	return nil
}

// GetByID retrieves a captain by ID
func (a *CaptainAdapter) GetByID(ctx context.Context, id string) (*entities.Captain, error) {
	query, args, err := a.db.Select(captainColumns...).
		From(captainsTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	defer a.observe(ctx, "captains.get", time.Now())
	captain, err := scanCaptain(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("captain with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get captain", err)
	}

	return captain, nil
}

// UpdateLocation sets the stored location of an existing captain
func (a *CaptainAdapter) UpdateLocation(ctx context.Context, id string, location entities.Location) error {
	query, args, err := a.db.Update(captainsTable).
		Set(goqu.Record{
			"latitude":   location.Latitude,
			"longitude":  location.Longitude,
			"updated_at": time.Now().UTC(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	defer a.observe(ctx, "captains.update_location", time.Now())
	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update captain location", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("captain with id %s not found", id))
	}

	return nil
}

// FindWithinRadius selects captains whose great-circle angle from the centre
// is at most radiusKm / EarthRadiusKm radians.
func (a *CaptainAdapter) FindWithinRadius(ctx context.Context, latitude, longitude, radiusKm float64) ([]*entities.Captain, error) {
	query, args, err := a.radiusQuery(latitude, longitude, radiusKm).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build radius query", err)
	}

	defer a.observe(ctx, "captains.find_within_radius", time.Now())
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).
			Float64("lat", latitude).Float64("lng", longitude).Float64("radius_km", radiusKm).
			Msg("failed to query captains in radius")
		return nil, apperrors.NewInternalError("failed to query captains in radius", err)
	}
	defer rows.Close()

	captains := []*entities.Captain{}
	for rows.Next() {
		captain, err := scanCaptain(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan captain", err)
		}
		captains = append(captains, captain)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating captains", err)
	}

	return captains, nil
}

func (a *CaptainAdapter) radiusQuery(latitude, longitude, radiusKm float64) *goqu.SelectDataset {
	// acos argument clamped against float error at 0 and pi
	centralAngle := goqu.L(
		"acos(least(1.0, greatest(-1.0, sin(radians(?)) * sin(radians(latitude)) + cos(radians(?)) * cos(radians(latitude)) * cos(radians(longitude) - radians(?)))))",
		latitude, latitude, longitude,
	)
	return a.db.Select(captainColumns...).
		From(captainsTable).
		Where(
			goqu.C("latitude").IsNotNull(),
			goqu.C("longitude").IsNotNull(),
			centralAngle.Lte(radiusKm/repositories.EarthRadiusKm),
		)
}

func (a *CaptainAdapter) observe(ctx context.Context, operation string, start time.Time) {
	observability.RecordDBMetric(ctx, a.metrics, operation, time.Since(start))
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCaptain(row rowScanner) (*entities.Captain, error) {
	captain := &entities.Captain{}
	var status string
	var latitude, longitude sql.NullFloat64
	var socketID sql.NullString

	err := row.Scan(
		&captain.ID,
		&captain.FirstName,
		&captain.LastName,
		&captain.Email,
		&status,
		&captain.Vehicle.Color,
		&captain.Vehicle.Plate,
		&captain.Vehicle.Capacity,
		&captain.Vehicle.Type,
		&latitude,
		&longitude,
		&socketID,
		&captain.CreatedAt,
		&captain.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	captain.Status = entities.CaptainStatus(status)
	captain.SocketID = socketID.String
	if latitude.Valid && longitude.Valid {
		captain.Location = &entities.Location{
			Latitude:  latitude.Float64,
			Longitude: longitude.Float64,
		}
	}

	return captain, nil
}

func nullFloat(location *entities.Location, pick func(*entities.Location) float64) sql.NullFloat64 {
	if location == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: pick(location), Valid: true}
}
