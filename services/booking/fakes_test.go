package booking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	intentRepo "quickbook/database/repository/intent"
	tenantRepo "quickbook/database/repository/tenant"
	"quickbook/models"
)

type memIntentRepo struct {
	mu       sync.Mutex
	intents  map[string]models.BookingIntent
	clickErr error
}

func newMemIntentRepo() *memIntentRepo {
	return &memIntentRepo{intents: map[string]models.BookingIntent{}}
}

func (r *memIntentRepo) Create(_ context.Context, intent *models.BookingIntent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents[intent.ID] = *intent
	return nil
}

func (r *memIntentRepo) GetByID(_ context.Context, id string) (*models.BookingIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in, ok := r.intents[id]
	if !ok {
		return nil, intentRepo.ErrIntentNotFound
	}
	return &in, nil
}

func (r *memIntentRepo) update(id string, allowed func(models.BookingIntent) bool, apply func(*models.BookingIntent)) (*models.BookingIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in, ok := r.intents[id]
	if !ok {
		return nil, intentRepo.ErrIntentNotFound
	}
	if !allowed(in) {
		return nil, intentRepo.ErrStaleTransition
	}
	apply(&in)
	in.UpdatedAt = time.Now()
	r.intents[id] = in
	out := in
	return &out, nil
}

func (r *memIntentRepo) AttachContact(_ context.Context, id string, contact models.Contact, leadID string) (*models.BookingIntent, error) {
	return r.update(id,
		func(in models.BookingIntent) bool {
			return in.Status == models.IntentStarted || in.Status == models.IntentLeadCaptured
		},
		func(in *models.BookingIntent) {
			c := contact
			in.Contact = &c
			in.LeadID = leadID
			in.Status = models.IntentLeadCaptured
		})
}

func (r *memIntentRepo) RecordClick(_ context.Context, id string, res models.BookingResolution, providerName string) (*models.BookingIntent, error) {
	if r.clickErr != nil {
		return nil, r.clickErr
	}
	return r.update(id,
		func(in models.BookingIntent) bool {
			return in.Status == models.IntentLeadCaptured && in.Resolution == nil
		},
		func(in *models.BookingIntent) {
			rr := res
			now := time.Now()
			in.Resolution = &rr
			in.ProviderName = providerName
			in.Status = models.IntentClicked
			in.ClickedAt = &now
		})
}

func (r *memIntentRepo) MarkDone(_ context.Context, id string) (*models.BookingIntent, error) {
	return r.update(id,
		func(in models.BookingIntent) bool { return in.Status == models.IntentClicked },
		func(in *models.BookingIntent) {
			now := time.Now()
			in.Status = models.IntentDone
			in.CompletedAt = &now
		})
}

func (r *memIntentRepo) ListByWorkspace(_ context.Context, workspaceID string, since time.Time, limit, offset int) ([]models.BookingIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.BookingIntent
	for _, in := range r.intents {
		if in.WorkspaceID == workspaceID && !in.UpdatedAt.Before(since) {
			out = append(out, in)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memLeadRepo struct {
	mu    sync.Mutex
	leads map[string]models.Lead
	next  int
}

func newMemLeadRepo() *memLeadRepo {
	return &memLeadRepo{leads: map[string]models.Lead{}}
}

func (r *memLeadRepo) Upsert(_ context.Context, lead models.Lead) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.leads[lead.IntentID]; ok {
		lead.ID = existing.ID
	} else {
		r.next++
		lead.ID = fmt.Sprintf("lead-%d", r.next)
	}
	r.leads[lead.IntentID] = lead
	return lead.ID, nil
}

type memSettingsRepo struct {
	mu       sync.Mutex
	settings *models.TenantSettings
	err      error
}

func (r *memSettingsRepo) set(s *models.TenantSettings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = s
}

func (r *memSettingsRepo) GetBookingSettings(_ context.Context, workspaceID, botID string) (*models.TenantSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if r.settings == nil {
		return nil, tenantRepo.ErrSettingsNotFound
	}
	s := *r.settings
	s.WorkspaceID, s.BotID = workspaceID, botID
	return &s, nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []models.IntentNotification
	err    error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, n models.IntentNotification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, n)
	return d.err
}

func (d *recordingDispatcher) sent() []models.IntentNotification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.IntentNotification(nil), d.events...)
}

type memHistory struct {
	sessions map[string][]string
	err      error
}

func (h *memHistory) Get(_ context.Context, scope models.TenantScope, sessionID string) (*models.ChatContext, error) {
	if h.err != nil {
		return nil, h.err
	}
	return &models.ChatContext{Messages: h.sessions[scope.WorkspaceID+"/"+sessionID]}, nil
}

func (h *memHistory) seed(scope models.TenantScope, sessionID string, messages ...string) {
	h.sessions[scope.WorkspaceID+"/"+sessionID] = messages
}
