package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// DirectoryService manages the reference data tickets point at:
// departments, categories, employees and agents.
type DirectoryService struct {
	store repository.Repositories
}

// NewDirectoryService constructs the service.
func NewDirectoryService(store repository.Repositories) *DirectoryService {
	return &DirectoryService{store: store}
}

// DepartmentInput carries department fields.
type DepartmentInput struct {
	Name        string
	Description string
}

// CategoryInput carries category fields.
type CategoryInput struct {
	Name        string
	Description string
	SLAHours    int
}

// EmployeeInput carries employee fields.
type EmployeeInput struct {
	Name         string
	Email        string
	DepartmentID *string
}

// AgentInput carries agent fields. A nil IsActive means active on create
// and unchanged on update.
type AgentInput struct {
	Name         string
	Email        string
	Phone        string
	Role         domain.AgentRole
	DepartmentID *string
	IsActive     *bool
}

// AgentListFilters define listing parameters.
type AgentListFilters struct {
	Role         *domain.AgentRole
	DepartmentID *string
	Active       *bool
	Limit        int
	Offset       int
}

// CreateDepartment creates a new department.
func (s *DirectoryService) CreateDepartment(ctx context.Context, input DepartmentInput) (*domain.Department, error) {
	dept := &domain.Department{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
	}
	if err := requireName(dept.Name); err != nil {
		return nil, err
	}
	if err := s.store.Departments().Create(ctx, dept); err != nil {
		return nil, apperrors.MapError(err)
	}
	return dept, nil
}

// ListDepartments returns every department ordered by name.
func (s *DirectoryService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	depts, err := s.store.Departments().List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return depts, nil
}

// GetDepartment fetches a department.
func (s *DirectoryService) GetDepartment(ctx context.Context, id string) (*domain.Department, error) {
	if err := requireID("department", id); err != nil {
		return nil, err
	}
	dept, err := s.store.Departments().GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "department", id)
	}
	return dept, nil
}

// UpdateDepartment replaces department metadata.
func (s *DirectoryService) UpdateDepartment(ctx context.Context, id string, input DepartmentInput) (*domain.Department, error) {
	if err := requireID("department", id); err != nil {
		return nil, err
	}
	dept := &domain.Department{
		ID:          id,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
	}
	if err := requireName(dept.Name); err != nil {
		return nil, err
	}
	if err := s.store.Departments().Update(ctx, dept); err != nil {
		return nil, lookupError(err, "department", id)
	}
	return s.GetDepartment(ctx, id)
}

// DeleteDepartment removes an unreferenced department.
func (s *DirectoryService) DeleteDepartment(ctx context.Context, id string) error {
	if err := requireID("department", id); err != nil {
		return err
	}
	if err := s.store.Departments().Delete(ctx, id); err != nil {
		return deleteError(err, "department", id)
	}
	return nil
}

// CreateCategory creates a ticket category with its SLA.
func (s *DirectoryService) CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	category := &domain.Category{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		SLAHours:    input.SLAHours,
	}
	if err := validateCategory(category); err != nil {
		return nil, err
	}
	if err := s.store.Categories().Create(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// ListCategories returns every category ordered by name.
func (s *DirectoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.store.Categories().List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return categories, nil
}

// GetCategory fetches a category.
func (s *DirectoryService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	if err := requireID("category", id); err != nil {
		return nil, err
	}
	category, err := s.store.Categories().GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "category", id)
	}
	return category, nil
}

// UpdateCategory replaces category fields. Due dates of existing tickets
// keep the SLA they were created with.
func (s *DirectoryService) UpdateCategory(ctx context.Context, id string, input CategoryInput) (*domain.Category, error) {
	if err := requireID("category", id); err != nil {
		return nil, err
	}
	category := &domain.Category{
		ID:          id,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		SLAHours:    input.SLAHours,
	}
	if err := validateCategory(category); err != nil {
		return nil, err
	}
	if err := s.store.Categories().Update(ctx, category); err != nil {
		return nil, lookupError(err, "category", id)
	}
	return s.GetCategory(ctx, id)
}

// DeleteCategory removes a category no ticket uses.
func (s *DirectoryService) DeleteCategory(ctx context.Context, id string) error {
	if err := requireID("category", id); err != nil {
		return err
	}
	if err := s.store.Categories().Delete(ctx, id); err != nil {
		return deleteError(err, "category", id)
	}
	return nil
}

// CreateEmployee registers a ticket reporter.
func (s *DirectoryService) CreateEmployee(ctx context.Context, input EmployeeInput) (*domain.Employee, error) {
	employee, err := s.buildEmployee(ctx, "", input)
	if err != nil {
		return nil, err
	}
	if err := s.store.Employees().Create(ctx, employee); err != nil {
		return nil, apperrors.MapError(err)
	}
	return employee, nil
}

// ListEmployees returns employees, optionally scoped to a department.
func (s *DirectoryService) ListEmployees(ctx context.Context, departmentID *string, limit, offset int) ([]domain.Employee, error) {
	if err := requireOptionalID("department", departmentID); err != nil {
		return nil, err
	}
	employees, err := s.store.Employees().List(ctx, repository.EmployeeFilter{
		DepartmentID: departmentID,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return employees, nil
}

// GetEmployee fetches an employee.
func (s *DirectoryService) GetEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	if err := requireID("employee", id); err != nil {
		return nil, err
	}
	employee, err := s.store.Employees().GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "employee", id)
	}
	return employee, nil
}

// UpdateEmployee replaces employee fields.
func (s *DirectoryService) UpdateEmployee(ctx context.Context, id string, input EmployeeInput) (*domain.Employee, error) {
	if err := requireID("employee", id); err != nil {
		return nil, err
	}
	employee, err := s.buildEmployee(ctx, id, input)
	if err != nil {
		return nil, err
	}
	if err := s.store.Employees().Update(ctx, employee); err != nil {
		return nil, lookupError(err, "employee", id)
	}
	return s.GetEmployee(ctx, id)
}

// DeleteEmployee removes an employee who reported no tickets.
func (s *DirectoryService) DeleteEmployee(ctx context.Context, id string) error {
	if err := requireID("employee", id); err != nil {
		return err
	}
	if err := s.store.Employees().Delete(ctx, id); err != nil {
		return deleteError(err, "employee", id)
	}
	return nil
}

func (s *DirectoryService) buildEmployee(ctx context.Context, id string, input EmployeeInput) (*domain.Employee, error) {
	employee := &domain.Employee{
		ID:           id,
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.TrimSpace(input.Email),
		DepartmentID: input.DepartmentID,
	}
	if err := requireName(employee.Name); err != nil {
		return nil, err
	}
	if err := validateEmail(employee.Email); err != nil {
		return nil, err
	}
	if err := s.requireDepartment(ctx, employee.DepartmentID); err != nil {
		return nil, err
	}
	return employee, nil
}

// CreateAgent registers a support agent.
func (s *DirectoryService) CreateAgent(ctx context.Context, input AgentInput) (*domain.Agent, error) {
	agent, err := s.buildAgent(ctx, "", input)
	if err != nil {
		return nil, err
	}
	agent.IsActive = input.IsActive == nil || *input.IsActive
	if err := s.store.Agents().Create(ctx, agent); err != nil {
		return nil, apperrors.MapError(err)
	}
	return agent, nil
}

// ListAgents returns agents matching filters.
func (s *DirectoryService) ListAgents(ctx context.Context, filters AgentListFilters) ([]domain.Agent, error) {
	if filters.Role != nil && !filters.Role.Valid() {
		return nil, invalidRole(*filters.Role)
	}
	if err := requireOptionalID("department", filters.DepartmentID); err != nil {
		return nil, err
	}
	agents, err := s.store.Agents().List(ctx, repository.AgentFilter{
		Role:         filters.Role,
		DepartmentID: filters.DepartmentID,
		Active:       filters.Active,
		Limit:        filters.Limit,
		Offset:       filters.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return agents, nil
}

// GetAgent fetches an agent.
func (s *DirectoryService) GetAgent(ctx context.Context, id string) (*domain.Agent, error) {
	if err := requireID("agent", id); err != nil {
		return nil, err
	}
	agent, err := s.store.Agents().GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "agent", id)
	}
	return agent, nil
}

// UpdateAgent replaces agent fields.
func (s *DirectoryService) UpdateAgent(ctx context.Context, id string, input AgentInput) (*domain.Agent, error) {
	current, err := s.GetAgent(ctx, id)
	if err != nil {
		return nil, err
	}
	agent, err := s.buildAgent(ctx, id, input)
	if err != nil {
		return nil, err
	}
	agent.IsActive = current.IsActive
	if input.IsActive != nil {
		agent.IsActive = *input.IsActive
	}
	if err := s.store.Agents().Update(ctx, agent); err != nil {
		return nil, lookupError(err, "agent", id)
	}
	return s.GetAgent(ctx, id)
}

// DeleteAgent removes an agent holding no tickets.
func (s *DirectoryService) DeleteAgent(ctx context.Context, id string) error {
	if err := requireID("agent", id); err != nil {
		return err
	}
	if err := s.store.Agents().Delete(ctx, id); err != nil {
		return deleteError(err, "agent", id)
	}
	return nil
}

func (s *DirectoryService) buildAgent(ctx context.Context, id string, input AgentInput) (*domain.Agent, error) {
	agent := &domain.Agent{
		ID:           id,
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.TrimSpace(input.Email),
		Phone:        strings.TrimSpace(input.Phone),
		Role:         domain.AgentRole(strings.ToUpper(strings.TrimSpace(string(input.Role)))),
		DepartmentID: input.DepartmentID,
	}
	if err := requireName(agent.Name); err != nil {
		return nil, err
	}
	if err := validateEmail(agent.Email); err != nil {
		return nil, err
	}
	if !agent.Role.Valid() {
		return nil, invalidRole(agent.Role)
	}
	if err := s.requireDepartment(ctx, agent.DepartmentID); err != nil {
		return nil, err
	}
	return agent, nil
}

func (s *DirectoryService) requireDepartment(ctx context.Context, id *string) error {
	if id == nil {
		return nil
	}
	if err := requireID("department", *id); err != nil {
		return err
	}
	if _, err := s.store.Departments().GetByID(ctx, *id); err != nil {
		return referenceError(err, "department", *id)
	}
	return nil
}

func requireName(name string) error {
	if name == "" {
		return apperrors.NewValidationError("name is required", nil)
	}
	return nil
}

func validateCategory(category *domain.Category) error {
	if err := requireName(category.Name); err != nil {
		return err
	}
	if category.SLAHours < 0 {
		return apperrors.NewValidationError("slaHours must not be negative", map[string]any{"sla_hours": category.SLAHours})
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return apperrors.NewValidationError("email is required", nil)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperrors.NewValidationError("invalid email", map[string]any{"email": email})
	}
	return nil
}

func invalidRole(role domain.AgentRole) error {
	return apperrors.NewValidationError("invalid role", map[string]any{
		"role":    role,
		"allowed": []domain.AgentRole{domain.AgentRoleL1, domain.AgentRoleL2, domain.AgentRoleL3, domain.AgentRoleManager},
	})
}
