package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/atlasdesk/support-service/internal/domain"
	"github.com/atlasdesk/support-service/internal/identifier"
	"github.com/atlasdesk/support-service/internal/persistence"
	"github.com/atlasdesk/support-service/internal/repository"
	apperrors "github.com/atlasdesk/support-service/pkg/util"
)

// fakeStore satisfies tenant.Store without a database. Repositories used in
// these tests are in-memory and ignore the handle entirely.
type fakeStore struct{}

func (fakeStore) Handle(ctx context.Context, tenantID string) (persistence.Querier, error) {
	return nil, nil
}

func (fakeStore) WithTx(ctx context.Context, tenantID string, fn func(q persistence.Querier) error) error {
	return fn(nil)
}

type fakeSequence struct {
	mu   sync.Mutex
	next int64
}

func (s *fakeSequence) Next(ctx context.Context, q persistence.Querier) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return identifier.FormatTicketNumber(s.next), nil
}

type fakeCodes struct {
	mu   sync.Mutex
	next int
}

func (c *fakeCodes) Generate(ctx context.Context, exists identifier.ExistsFunc) (string, error) {
	for {
		c.mu.Lock()
		c.next++
		code := fmt.Sprintf("CODE%04d", c.next)
		c.mu.Unlock()
		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
}

type memTicketRepo struct {
	mu      sync.Mutex
	seq     int
	tickets map[string]*domain.Ticket
	// interventions marks ticket ids that own interventions, for Delete checks.
	interventions map[string]bool
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{
		tickets:       make(map[string]*domain.Ticket),
		interventions: make(map[string]bool),
	}
}

func cloneTicket(t *domain.Ticket) *domain.Ticket {
	copied := *t
	return &copied
}

func (r *memTicketRepo) Create(ctx context.Context, q persistence.Querier, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", r.seq)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.tickets[ticket.ID] = cloneTicket(ticket)
	return nil
}

func (r *memTicketRepo) Update(ctx context.Context, q persistence.Querier, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[ticket.ID]
	if !ok || stored.DeletedAt != nil {
		return apperrors.NewNotFound("ticket", nil)
	}
	ticket.UpdatedAt = time.Now()
	r.tickets[ticket.ID] = cloneTicket(ticket)
	return nil
}

func (r *memTicketRepo) GetByID(ctx context.Context, q persistence.Querier, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok || ticket.DeletedAt != nil {
		return nil, apperrors.NewNotFound("ticket", nil)
	}
	return cloneTicket(ticket), nil
}

func (r *memTicketRepo) GetByCode(ctx context.Context, q persistence.Querier, code string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.tickets {
		if ticket.UniqueCode == strings.ToUpper(code) && ticket.DeletedAt == nil {
			return cloneTicket(ticket), nil
		}
	}
	return nil, apperrors.NewNotFound("ticket", nil)
}

func (r *memTicketRepo) List(ctx context.Context, q persistence.Querier, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.DeletedAt != nil {
			continue
		}
		result = append(result, *cloneTicket(ticket))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *memTicketRepo) Count(ctx context.Context, q persistence.Querier, filter repository.TicketFilter) (int64, error) {
	items, _ := r.List(ctx, q, filter)
	return int64(len(items)), nil
}

func (r *memTicketRepo) Delete(ctx context.Context, q persistence.Querier, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return apperrors.NewNotFound("ticket", nil)
	}
	delete(r.tickets, id)
	return nil
}

func (r *memTicketRepo) CodeExists(ctx context.Context, q persistence.Querier, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.tickets {
		if ticket.UniqueCode == strings.ToUpper(code) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memTicketRepo) HasInterventions(ctx context.Context, q persistence.Querier, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.interventions[id], nil
}

type memTypeRepo struct {
	mu    sync.Mutex
	seq   int
	types map[string]*domain.TicketType
	// activeTickets marks type ids referenced by live tickets.
	activeTickets map[string]bool
}

func newMemTypeRepo() *memTypeRepo {
	return &memTypeRepo{
		types:         make(map[string]*domain.TicketType),
		activeTickets: make(map[string]bool),
	}
}

func (r *memTypeRepo) add(name string, slaHours *int32) *domain.TicketType {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticketType := &domain.TicketType{
		ID:       fmt.Sprintf("type-%d", r.seq),
		Name:     name,
		SLAHours: slaHours,
	}
	r.types[ticketType.ID] = ticketType
	return ticketType
}

func (r *memTypeRepo) Create(ctx context.Context, q persistence.Querier, ticketType *domain.TicketType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticketType.ID = fmt.Sprintf("type-%d", r.seq)
	ticketType.CreatedAt = time.Now()
	ticketType.UpdatedAt = ticketType.CreatedAt
	copied := *ticketType
	r.types[ticketType.ID] = &copied
	return nil
}

func (r *memTypeRepo) Update(ctx context.Context, q persistence.Querier, ticketType *domain.TicketType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.types[ticketType.ID]
	if !ok || stored.DeletedAt != nil {
		return apperrors.NewNotFound("ticket type", nil)
	}
	copied := *ticketType
	r.types[ticketType.ID] = &copied
	return nil
}

func (r *memTypeRepo) GetByID(ctx context.Context, q persistence.Querier, id string) (*domain.TicketType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticketType, ok := r.types[id]
	if !ok || ticketType.DeletedAt != nil {
		return nil, apperrors.NewNotFound("ticket type", nil)
	}
	copied := *ticketType
	return &copied, nil
}

func (r *memTypeRepo) List(ctx context.Context, q persistence.Querier) ([]domain.TicketType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TicketType
	for _, ticketType := range r.types {
		if ticketType.DeletedAt != nil {
			continue
		}
		result = append(result, *ticketType)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *memTypeRepo) SoftDelete(ctx context.Context, q persistence.Querier, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticketType, ok := r.types[id]
	if !ok || ticketType.DeletedAt != nil {
		return apperrors.NewNotFound("ticket type", nil)
	}
	now := time.Now()
	ticketType.DeletedAt = &now
	return nil
}

func (r *memTypeRepo) HasActiveTickets(ctx context.Context, q persistence.Querier, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeTickets[id], nil
}

type memActivityRepo struct {
	mu         sync.Mutex
	seq        int
	activities []domain.Activity
}

func newMemActivityRepo() *memActivityRepo {
	return &memActivityRepo{}
}

func (r *memActivityRepo) Create(ctx context.Context, q persistence.Querier, activity *domain.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	activity.ID = fmt.Sprintf("activity-%d", r.seq)
	activity.CreatedAt = time.Now()
	if activity.Metadata == nil {
		activity.Metadata = map[string]any{}
	}
	r.activities = append(r.activities, *activity)
	return nil
}

func (r *memActivityRepo) ListByTicket(ctx context.Context, q persistence.Querier, ticketID string) ([]domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Activity
	for i := len(r.activities) - 1; i >= 0; i-- {
		if r.activities[i].TicketID == ticketID {
			result = append(result, r.activities[i])
		}
	}
	return result, nil
}

func (r *memActivityRepo) ListComments(ctx context.Context, q persistence.Querier, ticketID string, includeInternal bool) ([]domain.Activity, error) {
	all, _ := r.ListByTicket(ctx, q, ticketID)
	var result []domain.Activity
	for _, activity := range all {
		if activity.Type != domain.ActivityCommentAdded {
			continue
		}
		if !includeInternal && activity.IsInternalComment() {
			continue
		}
		result = append(result, activity)
	}
	return result, nil
}

func (r *memActivityRepo) CountByType(ctx context.Context, q persistence.Querier) ([]repository.ActivityTypeCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[domain.ActivityType]int64{}
	for _, activity := range r.activities {
		counts[activity.Type]++
	}
	var result []repository.ActivityTypeCount
	for activityType, count := range counts {
		result = append(result, repository.ActivityTypeCount{Type: activityType, Count: count})
	}
	return result, nil
}

func (r *memActivityRepo) Delete(ctx context.Context, q persistence.Querier, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, activity := range r.activities {
		if activity.ID == id {
			r.activities = append(r.activities[:i], r.activities[i+1:]...)
			return nil
		}
	}
	return apperrors.NewNotFound("activity", nil)
}

// byType returns a ticket's activities of one type, oldest first.
func (r *memActivityRepo) byType(ticketID string, activityType domain.ActivityType) []domain.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Activity
	for _, activity := range r.activities {
		if activity.TicketID == ticketID && activity.Type == activityType {
			result = append(result, activity)
		}
	}
	return result
}

type memStatsRepo struct {
	statusCounts   []repository.StatusCount
	priorityCounts []repository.PriorityCount
	typeCounts     []repository.TypeCount
	assignees      []repository.AssigneeCount
	avgResolution  *float64
	avgRating      *float64
	slaInputs      []repository.SLAInput
}

func (r *memStatsRepo) CountByStatus(ctx context.Context, q persistence.Querier) ([]repository.StatusCount, error) {
	return r.statusCounts, nil
}

func (r *memStatsRepo) CountByPriority(ctx context.Context, q persistence.Querier) ([]repository.PriorityCount, error) {
	return r.priorityCounts, nil
}

func (r *memStatsRepo) CountByType(ctx context.Context, q persistence.Querier) ([]repository.TypeCount, error) {
	return r.typeCounts, nil
}

func (r *memStatsRepo) TopAssignees(ctx context.Context, q persistence.Querier, limit int) ([]repository.AssigneeCount, error) {
	return r.assignees, nil
}

func (r *memStatsRepo) AverageResolutionSeconds(ctx context.Context, q persistence.Querier) (*float64, error) {
	return r.avgResolution, nil
}

func (r *memStatsRepo) AverageRating(ctx context.Context, q persistence.Querier) (*float64, error) {
	return r.avgRating, nil
}

func (r *memStatsRepo) SLAInputs(ctx context.Context, q persistence.Querier) ([]repository.SLAInput, error) {
	return r.slaInputs, nil
}

type memUserRepo struct {
	users map[string]*domain.User
}

func newMemUserRepo(users ...*domain.User) *memUserRepo {
	repo := &memUserRepo{users: make(map[string]*domain.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *memUserRepo) GetByID(ctx context.Context, q persistence.Querier, id string) (*domain.User, error) {
	if user, ok := r.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperrors.NewNotFound("user", nil)
}

func (r *memUserRepo) GetByEmail(ctx context.Context, q persistence.Querier, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperrors.NewNotFound("user", nil)
}

type memCatalogRepo struct {
	clients   map[string]*domain.Client
	equipment map[string]*domain.Equipment
}

func newMemCatalogRepo() *memCatalogRepo {
	return &memCatalogRepo{
		clients:   make(map[string]*domain.Client),
		equipment: make(map[string]*domain.Equipment),
	}
}

func (r *memCatalogRepo) GetClient(ctx context.Context, q persistence.Querier, id string) (*domain.Client, error) {
	if client, ok := r.clients[id]; ok {
		copied := *client
		return &copied, nil
	}
	return nil, apperrors.NewNotFound("client", nil)
}

func (r *memCatalogRepo) GetEquipment(ctx context.Context, q persistence.Querier, id string) (*domain.Equipment, error) {
	if equipment, ok := r.equipment[id]; ok {
		copied := *equipment
		return &copied, nil
	}
	return nil, apperrors.NewNotFound("equipment", nil)
}

type memInterventionRepo struct {
	mu            sync.Mutex
	seq           int
	costSeq       int
	interventions map[string]*domain.Intervention
	costs         map[string][]domain.InterventionCost
}

func newMemInterventionRepo() *memInterventionRepo {
	return &memInterventionRepo{
		interventions: make(map[string]*domain.Intervention),
		costs:         make(map[string][]domain.InterventionCost),
	}
}

func cloneIntervention(i *domain.Intervention) *domain.Intervention {
	copied := *i
	copied.Costs = nil
	return &copied
}

func (r *memInterventionRepo) Create(ctx context.Context, q persistence.Querier, intervention *domain.Intervention) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	intervention.ID = fmt.Sprintf("intervention-%d", r.seq)
	intervention.CreatedAt = time.Now()
	intervention.UpdatedAt = intervention.CreatedAt
	r.interventions[intervention.ID] = cloneIntervention(intervention)
	return nil
}

func (r *memInterventionRepo) Update(ctx context.Context, q persistence.Querier, intervention *domain.Intervention) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.interventions[intervention.ID]
	if !ok || stored.DeletedAt != nil {
		return apperrors.NewNotFound("intervention", nil)
	}
	r.interventions[intervention.ID] = cloneIntervention(intervention)
	return nil
}

func (r *memInterventionRepo) GetByID(ctx context.Context, q persistence.Querier, id string) (*domain.Intervention, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	intervention, ok := r.interventions[id]
	if !ok || intervention.DeletedAt != nil {
		return nil, apperrors.NewNotFound("intervention", nil)
	}
	return cloneIntervention(intervention), nil
}

func (r *memInterventionRepo) List(ctx context.Context, q persistence.Querier, filter repository.InterventionFilter) ([]domain.Intervention, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Intervention
	for _, intervention := range r.interventions {
		if intervention.DeletedAt != nil {
			continue
		}
		if filter.TicketID != nil && intervention.TicketID != *filter.TicketID {
			continue
		}
		if filter.TechnicianID != nil && intervention.TechnicianID != *filter.TechnicianID {
			continue
		}
		result = append(result, *cloneIntervention(intervention))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *memInterventionRepo) Count(ctx context.Context, q persistence.Querier, filter repository.InterventionFilter) (int64, error) {
	items, _ := r.List(ctx, q, filter)
	return int64(len(items)), nil
}

func (r *memInterventionRepo) SoftDelete(ctx context.Context, q persistence.Querier, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	intervention, ok := r.interventions[id]
	if !ok || intervention.DeletedAt != nil {
		return apperrors.NewNotFound("intervention", nil)
	}
	now := time.Now()
	intervention.DeletedAt = &now
	return nil
}

func (r *memInterventionRepo) AddCost(ctx context.Context, q persistence.Querier, cost *domain.InterventionCost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.costSeq++
	cost.ID = fmt.Sprintf("cost-%d", r.costSeq)
	cost.CreatedAt = time.Now()
	r.costs[cost.InterventionID] = append(r.costs[cost.InterventionID], *cost)
	return nil
}

func (r *memInterventionRepo) ListCosts(ctx context.Context, q persistence.Querier, interventionIDs []string) (map[string][]domain.InterventionCost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make(map[string][]domain.InterventionCost, len(interventionIDs))
	for _, id := range interventionIDs {
		result[id] = append([]domain.InterventionCost{}, r.costs[id]...)
	}
	return result, nil
}

func (r *memInterventionRepo) TicketTotalCost(ctx context.Context, q persistence.Querier, ticketID string) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total float64
	for _, intervention := range r.interventions {
		if intervention.TicketID != ticketID || intervention.DeletedAt != nil {
			continue
		}
		for _, cost := range r.costs[intervention.ID] {
			total += cost.TotalPrice
		}
	}
	return total, nil
}

func (r *memInterventionRepo) StatsByType(ctx context.Context, q persistence.Querier) ([]repository.InterventionTypeStat, error) {
	return nil, nil
}

func (r *memInterventionRepo) StatsByTechnician(ctx context.Context, q persistence.Querier) ([]repository.TechnicianStat, error) {
	return nil, nil
}

func (r *memInterventionRepo) AverageDurationMinutes(ctx context.Context, q persistence.Querier) (*float64, error) {
	return nil, nil
}
