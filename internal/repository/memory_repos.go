package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/venue-booking/internal/booking"
	"github.com/iliyamo/venue-booking/internal/model"
)

type memVenues struct{ memRepos }

func (r memVenues) Get(_ context.Context, id uint64) (v model.Venue, err error) {
	err = r.do(func(st *memState) error {
		var ok bool
		if v, ok = st.venues[id]; !ok {
			return ErrNotFound
		}
		return nil
	})
	return v, err
}

func (r memVenues) GetForUpdate(ctx context.Context, id uint64) (model.Venue, error) {
	return r.Get(ctx, id)
}

func (r memVenues) GetByName(_ context.Context, name string) (v model.Venue, err error) {
	name = strings.ToLower(strings.TrimSpace(name))
	err = r.do(func(st *memState) error {
		var best uint64
		for id, cand := range st.venues {
			if strings.ToLower(cand.Name) == name && (best == 0 || id < best) {
				best, v = id, cand
			}
		}
		if best == 0 {
			return ErrNotFound
		}
		return nil
	})
	return v, err
}

func (r memVenues) List(_ context.Context, includeDeleted bool) (out []model.Venue, err error) {
	err = r.do(func(st *memState) error {
		for _, v := range st.venues {
			if includeDeleted || !v.IsDeleted() {
				out = append(out, v)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r memVenues) nameTaken(st *memState, name string, except uint64) bool {
	for id, v := range st.venues {
		if id != except && strings.EqualFold(v.Name, name) {
			return true
		}
	}
	return false
}

func (r memVenues) Create(_ context.Context, v model.Venue) (id uint64, err error) {
	err = r.do(func(st *memState) error {
		if r.nameTaken(st, v.Name, 0) {
			return ErrConflict
		}
		if v.Status == "" {
			v.Status = model.VenueAvailable
		}
		v.ID = st.nextID()
		v.CreatedAt = r.now()
		st.venues[v.ID] = v
		id = v.ID
		return nil
	})
	return id, err
}

func (r memVenues) Update(_ context.Context, v model.Venue) error {
	return r.do(func(st *memState) error {
		cur, ok := st.venues[v.ID]
		if !ok {
			return ErrNotFound
		}
		if r.nameTaken(st, v.Name, v.ID) {
			return ErrConflict
		}
		v.Status, v.CreatedAt = cur.Status, cur.CreatedAt
		st.venues[v.ID] = v
		return nil
	})
}

func (r memVenues) SetStatus(_ context.Context, id uint64, status string) error {
	return r.do(func(st *memState) error {
		v, ok := st.venues[id]
		if !ok {
			return ErrNotFound
		}
		v.Status = status
		st.venues[id] = v
		return nil
	})
}

type memUsers struct{ memRepos }

func (r memUsers) emailTaken(st *memState, email string, except uint64) bool {
	for id, u := range st.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func (r memUsers) Create(_ context.Context, u model.User) (id uint64, err error) {
	u.Email = normalizeEmail(u.Email)
	u.Name = strings.TrimSpace(u.Name)
	err = r.do(func(st *memState) error {
		if r.emailTaken(st, u.Email, 0) {
			return ErrEmailExists
		}
		if u.Role == "" {
			u.Role = model.RoleUser
		}
		if u.AccountStatus == "" {
			u.AccountStatus = model.AccountActive
		}
		u.ID = st.nextID()
		u.CreatedAt = r.now()
		st.users[u.ID] = u
		id = u.ID
		return nil
	})
	return id, err
}

func (r memUsers) GetByID(_ context.Context, id uint64) (u model.User, err error) {
	err = r.do(func(st *memState) error {
		var ok bool
		if u, ok = st.users[id]; !ok {
			return ErrNotFound
		}
		return nil
	})
	return u, err
}

func (r memUsers) GetForUpdate(ctx context.Context, id uint64) (model.User, error) {
	return r.GetByID(ctx, id)
}

func (r memUsers) GetByEmail(_ context.Context, email string) (u model.User, err error) {
	email = normalizeEmail(email)
	err = r.do(func(st *memState) error {
		for _, cand := range st.users {
			if cand.Email == email {
				u = cand
				return nil
			}
		}
		return ErrNotFound
	})
	return u, err
}

func (r memUsers) List(_ context.Context) (out []model.User, err error) {
	err = r.do(func(st *memState) error {
		for _, u := range st.users {
			out = append(out, u)
		}
		return nil
	})
	sort.Slice(out, newestFirst(func(i int) (time.Time, uint64) { return out[i].CreatedAt, out[i].ID }))
	return out, err
}

func (r memUsers) Update(_ context.Context, u model.User) error {
	u.Email = normalizeEmail(u.Email)
	return r.do(func(st *memState) error {
		cur, ok := st.users[u.ID]
		if !ok {
			return ErrNotFound
		}
		if r.emailTaken(st, u.Email, u.ID) {
			return ErrEmailExists
		}
		cur.Name, cur.Email, cur.Phone, cur.Role = strings.TrimSpace(u.Name), u.Email, u.Phone, u.Role
		st.users[u.ID] = cur
		return nil
	})
}

func (r memUsers) SetStatus(_ context.Context, id uint64, status string) error {
	return r.do(func(st *memState) error {
		u, ok := st.users[id]
		if !ok {
			return ErrNotFound
		}
		u.AccountStatus = status
		st.users[id] = u
		return nil
	})
}

func (r memUsers) SetPassword(_ context.Context, id uint64, hash string) error {
	return r.do(func(st *memState) error {
		u, ok := st.users[id]
		if !ok {
			return ErrNotFound
		}
		u.PasswordHash = hash
		st.users[id] = u
		return nil
	})
}

func (r memUsers) Delete(_ context.Context, id uint64) error {
	return r.do(func(st *memState) error {
		if _, ok := st.users[id]; !ok {
			return ErrNotFound
		}
		for k, n := range st.notifications {
			if n.UserID == id {
				delete(st.notifications, k)
			}
		}
		for k, q := range st.requests {
			if q.UserID == id {
				delete(st.requests, k)
			}
		}
		for k, rp := range st.reports {
			if rp.UserID == id {
				delete(st.reports, k)
			}
		}
		for k, t := range st.tokens {
			if t.UserID == id {
				delete(st.tokens, k)
			}
		}
		delete(st.users, id)
		return nil
	})
}

type memRequests struct{ memRepos }

func (r memRequests) Create(_ context.Context, q model.Request) (id uint64, err error) {
	err = r.do(func(st *memState) error {
		if _, ok := st.users[q.UserID]; !ok {
			return ErrNotFound
		}
		if _, ok := st.venues[q.VenueID]; !ok {
			return ErrNotFound
		}
		if q.Status == "" {
			q.Status = model.RequestPending
		}
		if q.CreatedAt.IsZero() {
			q.CreatedAt = r.now()
		}
		q.StartDate = booking.Day(q.StartDate)
		q.ID = st.nextID()
		st.requests[q.ID] = q
		id = q.ID
		return nil
	})
	return id, err
}

func (r memRequests) Get(_ context.Context, id uint64) (q model.Request, err error) {
	err = r.do(func(st *memState) error {
		var ok bool
		if q, ok = st.requests[id]; !ok {
			return ErrNotFound
		}
		return nil
	})
	return q, err
}

func (r memRequests) GetForUpdate(ctx context.Context, id uint64) (model.Request, error) {
	return r.Get(ctx, id)
}

func view(st *memState, q model.Request) model.RequestView {
	u := st.users[q.UserID]
	return model.RequestView{
		Request:   q,
		UserName:  u.Name,
		UserEmail: u.Email,
		UserPhone: u.Phone,
		VenueName: st.venues[q.VenueID].Name,
	}
}

func (r memRequests) GetView(_ context.Context, id uint64) (v model.RequestView, err error) {
	err = r.do(func(st *memState) error {
		q, ok := st.requests[id]
		if !ok {
			return ErrNotFound
		}
		v = view(st, q)
		return nil
	})
	return v, err
}

func (r memRequests) listViews(match func(model.Request) bool) (out []model.RequestView, err error) {
	err = r.do(func(st *memState) error {
		for _, q := range st.requests {
			if match(q) {
				out = append(out, view(st, q))
			}
		}
		return nil
	})
	sort.Slice(out, newestFirst(func(i int) (time.Time, uint64) { return out[i].CreatedAt, out[i].ID }))
	return out, err
}

func (r memRequests) List(context.Context) ([]model.RequestView, error) {
	return r.listViews(func(model.Request) bool { return true })
}

func (r memRequests) ListByUser(_ context.Context, userID uint64) ([]model.RequestView, error) {
	return r.listViews(func(q model.Request) bool { return q.UserID == userID })
}

func (r memRequests) FindOverlapping(_ context.Context, cq booking.ConflictQuery) (out []model.Request, err error) {
	err = r.do(func(st *memState) error {
		rows := make([]model.Request, 0, len(st.requests))
		for _, q := range st.requests {
			rows = append(rows, q)
		}
		out = booking.FindOverlapping(rows, func(id uint64) string { return st.venues[id].Status }, cq)
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r memRequests) CountByStatus(_ context.Context, userID uint64, status string) (n int, err error) {
	err = r.do(func(st *memState) error {
		for _, q := range st.requests {
			if q.UserID == userID && q.Status == status {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r memRequests) LastCreatedAt(_ context.Context, userID uint64) (last time.Time, err error) {
	err = r.do(func(st *memState) error {
		for _, q := range st.requests {
			if q.UserID == userID && q.CreatedAt.After(last) {
				last = q.CreatedAt
			}
		}
		return nil
	})
	return last, err
}

func (r memRequests) update(id uint64, fn func(q *model.Request) bool) error {
	return r.do(func(st *memState) error {
		q, ok := st.requests[id]
		if !ok || !fn(&q) {
			return ErrNotFound
		}
		st.requests[id] = q
		return nil
	})
}

func (r memRequests) SetStatus(_ context.Context, id uint64, status string) error {
	return r.update(id, func(q *model.Request) bool {
		q.Status, q.UserRead = status, false
		return true
	})
}

func (r memRequests) Delete(_ context.Context, id uint64) error {
	return r.do(func(st *memState) error {
		if _, ok := st.requests[id]; !ok {
			return ErrNotFound
		}
		delete(st.requests, id)
		return nil
	})
}

func (r memRequests) MarkRead(_ context.Context, id, userID uint64) error {
	return r.update(id, func(q *model.Request) bool {
		if q.UserID != userID {
			return false
		}
		q.UserRead = true
		return true
	})
}

type memNotifications struct{ memRepos }

func (r memNotifications) Create(_ context.Context, n model.Notification) (id uint64, err error) {
	err = r.do(func(st *memState) error {
		if n.CreatedAt.IsZero() {
			n.CreatedAt = r.now()
		}
		n.ID = st.nextID()
		st.notifications[n.ID] = n
		id = n.ID
		return nil
	})
	return id, err
}

func (r memNotifications) ListByUser(_ context.Context, userID uint64) (out []model.Notification, err error) {
	err = r.do(func(st *memState) error {
		for _, n := range st.notifications {
			if n.UserID == userID {
				out = append(out, n)
			}
		}
		return nil
	})
	sort.Slice(out, newestFirst(func(i int) (time.Time, uint64) { return out[i].CreatedAt, out[i].ID }))
	return out, err
}

func (r memNotifications) MarkRead(_ context.Context, id, userID uint64) error {
	return r.do(func(st *memState) error {
		n, ok := st.notifications[id]
		if !ok || n.UserID != userID {
			return ErrNotFound
		}
		n.Read = true
		st.notifications[id] = n
		return nil
	})
}

func (r memNotifications) MarkAllRead(_ context.Context, userID uint64) error {
	return r.do(func(st *memState) error {
		for id, n := range st.notifications {
			if n.UserID == userID {
				n.Read = true
				st.notifications[id] = n
			}
		}
		return nil
	})
}

func (r memNotifications) DeleteAll(_ context.Context, userID uint64) error {
	return r.do(func(st *memState) error {
		for id, n := range st.notifications {
			if n.UserID == userID {
				delete(st.notifications, id)
			}
		}
		return nil
	})
}

type memReports struct{ memRepos }

func (r memReports) Create(_ context.Context, rep model.Report) (id uint64, err error) {
	err = r.do(func(st *memState) error {
		if rep.Status == "" {
			rep.Status = model.ReportPending
		}
		if rep.CreatedAt.IsZero() {
			rep.CreatedAt = r.now()
		}
		rep.ID = st.nextID()
		st.reports[rep.ID] = rep
		id = rep.ID
		return nil
	})
	return id, err
}

func (r memReports) Get(_ context.Context, id uint64) (rep model.Report, err error) {
	err = r.do(func(st *memState) error {
		var ok bool
		if rep, ok = st.reports[id]; !ok {
			return ErrNotFound
		}
		return nil
	})
	return rep, err
}

func (r memReports) List(context.Context) (out []model.ReportView, err error) {
	err = r.do(func(st *memState) error {
		for _, rep := range st.reports {
			u := st.users[rep.UserID]
			out = append(out, model.ReportView{Report: rep, UserName: u.Name, UserEmail: u.Email})
		}
		return nil
	})
	sort.Slice(out, newestFirst(func(i int) (time.Time, uint64) { return out[i].CreatedAt, out[i].ID }))
	return out, err
}

func (r memReports) SetStatus(_ context.Context, id uint64, status string) error {
	return r.do(func(st *memState) error {
		rep, ok := st.reports[id]
		if !ok {
			return ErrNotFound
		}
		rep.Status = status
		st.reports[id] = rep
		return nil
	})
}

func (r memReports) Delete(_ context.Context, id uint64) error {
	return r.do(func(st *memState) error {
		if _, ok := st.reports[id]; !ok {
			return ErrNotFound
		}
		delete(st.reports, id)
		return nil
	})
}

func (r memReports) LastCreatedAt(_ context.Context, userID uint64) (last time.Time, err error) {
	err = r.do(func(st *memState) error {
		for _, rep := range st.reports {
			if rep.UserID == userID && rep.CreatedAt.After(last) {
				last = rep.CreatedAt
			}
		}
		return nil
	})
	return last, err
}

type memContacts struct{ memRepos }

func (r memContacts) Create(_ context.Context, m model.ContactMessage) (id uint64, err error) {
	m.Email = normalizeEmail(m.Email)
	err = r.do(func(st *memState) error {
		if m.CreatedAt.IsZero() {
			m.CreatedAt = r.now()
		}
		m.ID = st.nextID()
		st.contacts[m.ID] = m
		id = m.ID
		return nil
	})
	return id, err
}

func (r memContacts) Get(_ context.Context, id uint64) (m model.ContactMessage, err error) {
	err = r.do(func(st *memState) error {
		var ok bool
		if m, ok = st.contacts[id]; !ok {
			return ErrNotFound
		}
		return nil
	})
	return m, err
}

func (r memContacts) List(context.Context) (out []model.ContactMessage, err error) {
	err = r.do(func(st *memState) error {
		for _, m := range st.contacts {
			out = append(out, m)
		}
		return nil
	})
	sort.Slice(out, newestFirst(func(i int) (time.Time, uint64) { return out[i].CreatedAt, out[i].ID }))
	return out, err
}

func (r memContacts) MarkRead(_ context.Context, id uint64) error {
	return r.do(func(st *memState) error {
		m, ok := st.contacts[id]
		if !ok {
			return ErrNotFound
		}
		m.Read = true
		st.contacts[id] = m
		return nil
	})
}

func (r memContacts) LastCreatedAtByEmail(_ context.Context, email string) (last time.Time, err error) {
	email = normalizeEmail(email)
	err = r.do(func(st *memState) error {
		for _, m := range st.contacts {
			if m.Email == email && m.CreatedAt.After(last) {
				last = m.CreatedAt
			}
		}
		return nil
	})
	return last, err
}

type memTokens struct{ memRepos }

func (r memTokens) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	return r.do(func(st *memState) error {
		st.tokens[tokenHash] = model.RefreshToken{
			ID: st.nextID(), UserID: userID, TokenHash: tokenHash, ExpiresAt: exp, CreatedAt: r.now(),
		}
		return nil
	})
}

func (r memTokens) ValidateRefresh(_ context.Context, tokenHash string) (userID uint64, err error) {
	err = r.do(func(st *memState) error {
		t, ok := st.tokens[tokenHash]
		if !ok || t.RevokedAt != nil || r.now().After(t.ExpiresAt) {
			return ErrNotFound
		}
		userID = t.UserID
		return nil
	})
	return userID, err
}

func (r memTokens) revoke(match func(model.RefreshToken) bool) error {
	return r.do(func(st *memState) error {
		now := r.now()
		for k, t := range st.tokens {
			if t.RevokedAt == nil && match(t) {
				t.RevokedAt = &now
				st.tokens[k] = t
			}
		}
		return nil
	})
}

func (r memTokens) RevokeByHash(_ context.Context, tokenHash string) error {
	return r.revoke(func(t model.RefreshToken) bool { return t.TokenHash == tokenHash })
}

func (r memTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	return r.revoke(func(t model.RefreshToken) bool { return t.UserID == userID })
}
