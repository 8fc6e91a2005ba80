package booking

import (
	"testing"

	"github.com/iliyamo/venue-booking/internal/model"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name        string
		status      string
		target      string
		wantChanged bool
		wantErr     Kind
	}{
		{"approve pending", model.RequestPending, model.RequestApproved, true, KindInternal},
		{"reject pending", model.RequestPending, model.RequestRejected, true, KindInternal},
		{"approve approved", model.RequestApproved, model.RequestApproved, false, KindInternal},
		{"reject approved", model.RequestApproved, model.RequestRejected, false, KindInternal},
		{"approve rejected", model.RequestRejected, model.RequestApproved, false, KindInternal},
		{"back to pending", model.RequestPending, model.RequestPending, false, KindValidation},
		{"unknown", model.RequestPending, "cancelled", false, KindValidation},
		{"empty", model.RequestPending, "", false, KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := Decide(model.Request{Status: tt.status}, tt.target)
			if tt.wantErr != KindInternal {
				if !IsKind(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decide: %v", err)
			}
			if tr.Changed != tt.wantChanged {
				t.Fatalf("Changed = %v, want %v", tr.Changed, tt.wantChanged)
			}
			if !tr.Changed && tr.To != tt.status {
				t.Fatalf("no-op transition moved to %q", tr.To)
			}
		})
	}
}

func TestRejectionReasonPriority(t *testing.T) {
	ev, _ := NewInterval(day(t, "2024-07-01"), 2)
	w := BlockedWindows(ev)
	tests := []struct {
		name string
		iv   Interval
		want Reason
	}{
		{"inside event", span(t, "2024-07-02", "2024-07-02"), ReasonEvent},
		{"spans everything", span(t, "2024-06-20", "2024-07-10"), ReasonEvent},
		{"cleanup only", span(t, "2024-07-03", "2024-07-05"), ReasonCleanup},
		{"prep only", span(t, "2024-06-25", "2024-06-29"), ReasonPreparation},
		{"outside", span(t, "2024-08-01", "2024-08-01"), ReasonBlocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RejectionReason(w, tt.iv); got != tt.want {
				t.Fatalf("reason = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlanApproval(t *testing.T) {
	primary := req(t, 1, 10, 5, "2024-07-01", 2, model.RequestPending)
	candidates := []model.Request{
		primary,
		req(t, 2, 11, 5, "2024-06-28", 1, model.RequestPending),
		req(t, 3, 12, 5, "2024-07-02", 3, model.RequestPending),
		req(t, 4, 13, 5, "2024-07-03", 1, model.RequestPending),
		req(t, 5, 14, 5, "2024-07-04", 1, model.RequestPending),
		req(t, 6, 15, 5, "2024-07-01", 1, model.RequestRejected),
		req(t, 7, 16, 9, "2024-07-01", 1, model.RequestPending),
	}
	plan := PlanApproval(primary, candidates)
	want := map[uint64]Reason{2: ReasonPreparation, 3: ReasonEvent, 4: ReasonCleanup}
	if len(plan.Cascade) != len(want) {
		t.Fatalf("cascade = %+v, want %d entries", plan.Cascade, len(want))
	}
	for _, c := range plan.Cascade {
		r, ok := want[c.Request.ID]
		if !ok {
			t.Fatalf("unexpected cascade of request %d", c.Request.ID)
		}
		if c.Reason != r {
			t.Fatalf("request %d reason = %v, want %v", c.Request.ID, c.Reason, r)
		}
	}
}

func TestCheckApprovable(t *testing.T) {
	primary := req(t, 1, 10, 5, "2024-07-01", 2, model.RequestPending)
	if err := CheckApprovable(primary, []model.Request{req(t, 2, 11, 5, "2024-07-03", 1, model.RequestApproved)}); err != nil {
		t.Fatalf("cleanup day overlap must not block approval: %v", err)
	}
	err := CheckApprovable(primary, []model.Request{req(t, 2, 11, 5, "2024-07-02", 1, model.RequestApproved)})
	if !IsKind(err, KindConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestCheckCancel(t *testing.T) {
	tests := []struct {
		status string
		owner  uint64
		want   Kind
	}{
		{model.RequestPending, 10, KindInternal},
		{model.RequestApproved, 10, KindConflict},
		{model.RequestRejected, 10, KindConflict},
		{model.RequestPending, 11, KindNotFound},
	}
	for _, tt := range tests {
		err := CheckCancel(model.Request{UserID: tt.owner, Status: tt.status}, 10)
		if tt.want == KindInternal {
			if err != nil {
				t.Fatalf("cancel %s: %v", tt.status, err)
			}
			continue
		}
		if !IsKind(err, tt.want) {
			t.Fatalf("cancel %s owned by %d: err = %v, want %v", tt.status, tt.owner, err, tt.want)
		}
	}
}
