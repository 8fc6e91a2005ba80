package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/venue-booking/internal/model"
)

// VenueRepo provides CRUD operations for venues.
type VenueRepo struct{ sqlBase }

const venueCols = `id, name, address, lat, lng, capacity, base_price, price_per_guest, description,
       services, image_url, owner_name, owner_phone, owner_email, status, created_at`

type rowScanner interface{ Scan(dest ...any) error }

func scanVenue(s rowScanner) (model.Venue, error) {
	var v model.Venue
	err := s.Scan(&v.ID, &v.Name, &v.Address, &v.Lat, &v.Lng, &v.Capacity, &v.BasePrice, &v.PricePerGuest,
		&v.Description, &v.Services, &v.ImageURL, &v.OwnerName, &v.OwnerPhone, &v.OwnerEmail, &v.Status, &v.CreatedAt)
	return v, err
}

// Get returns a venue by id, including soft deleted ones.
func (r *VenueRepo) Get(ctx context.Context, id uint64) (model.Venue, error) {
	v, err := scanVenue(r.queryRow(ctx, "SELECT "+venueCols+" FROM venues WHERE id = ?", id))
	return v, notFound(err)
}

// GetForUpdate is Get with a row lock.
func (r *VenueRepo) GetForUpdate(ctx context.Context, id uint64) (model.Venue, error) {
	v, err := scanVenue(r.queryRow(ctx, "SELECT "+venueCols+" FROM venues WHERE id = ? FOR UPDATE", id))
	return v, notFound(err)
}

// GetByName looks a venue up by its exact name, ignoring surrounding
// whitespace and case.
func (r *VenueRepo) GetByName(ctx context.Context, name string) (model.Venue, error) {
	v, err := scanVenue(r.queryRow(ctx,
		"SELECT "+venueCols+" FROM venues WHERE LOWER(name) = ? ORDER BY id LIMIT 1",
		strings.ToLower(strings.TrimSpace(name))))
	return v, notFound(err)
}

// List returns venues ordered by id.
func (r *VenueRepo) List(ctx context.Context, includeDeleted bool) ([]model.Venue, error) {
	q := "SELECT " + venueCols + " FROM venues"
	var args []any
	if !includeDeleted {
		q += " WHERE status <> ?"
		args = append(args, model.VenueDeleted)
	}
	rows, err := r.query(ctx, q+" ORDER BY id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Create inserts a venue and returns its id.
func (r *VenueRepo) Create(ctx context.Context, v model.Venue) (uint64, error) {
	if v.Status == "" {
		v.Status = model.VenueAvailable
	}
	id, err := r.d.insert(ctx, r.q, `INSERT INTO venues
        (name, address, lat, lng, capacity, base_price, price_per_guest, description, services,
         image_url, owner_name, owner_phone, owner_email, status)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		v.Name, v.Address, v.Lat, v.Lng, v.Capacity, v.BasePrice, v.PricePerGuest, v.Description, v.Services,
		v.ImageURL, v.OwnerName, v.OwnerPhone, v.OwnerEmail, v.Status)
	if isDuplicate(err) {
		return 0, ErrConflict
	}
	return id, err
}

// Update overwrites the descriptive fields of a venue.  Status is left
// alone; use SetStatus.
func (r *VenueRepo) Update(ctx context.Context, v model.Venue) error {
	err := r.execOne(ctx, `UPDATE venues SET name = ?, address = ?, lat = ?, lng = ?, capacity = ?,
        base_price = ?, price_per_guest = ?, description = ?, services = ?, image_url = ?,
        owner_name = ?, owner_phone = ?, owner_email = ?
        WHERE id = ?`,
		v.Name, v.Address, v.Lat, v.Lng, v.Capacity, v.BasePrice, v.PricePerGuest, v.Description, v.Services,
		v.ImageURL, v.OwnerName, v.OwnerPhone, v.OwnerEmail, v.ID)
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// SetStatus changes the display status of a venue.
func (r *VenueRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	return r.execOne(ctx, "UPDATE venues SET status = ? WHERE id = ?", status, id)
}
