package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type departmentRepository struct {
	sc scope
}

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	return r.sc.do(ctx, func(d *data) error {
		if departmentNameTaken(d, dept.Name, "") {
			return uniqueViolation("departments_name_key")
		}
		now := r.sc.now()
		dept.ID = uuid.NewString()
		dept.CreatedAt, dept.UpdatedAt = now, now
		d.departments[dept.ID] = *dept
		return nil
	})
}

func (r *departmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	return r.sc.do(ctx, func(d *data) error {
		existing, ok := d.departments[dept.ID]
		if !ok {
			return pgx.ErrNoRows
		}
		if departmentNameTaken(d, dept.Name, dept.ID) {
			return uniqueViolation("departments_name_key")
		}
		dept.CreatedAt = existing.CreatedAt
		dept.UpdatedAt = r.sc.now()
		d.departments[dept.ID] = *dept
		return nil
	})
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	var out *domain.Department
	err := r.sc.do(ctx, func(d *data) error {
		dept, ok := d.departments[id]
		if !ok {
			return pgx.ErrNoRows
		}
		out = &dept
		return nil
	})
	return out, err
}

func (r *departmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	result := []domain.Department{}
	err := r.sc.do(ctx, func(d *data) error {
		for _, dept := range d.departments {
			result = append(result, dept)
		}
		sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
		return nil
	})
	return result, err
}

func (r *departmentRepository) Delete(ctx context.Context, id string) error {
	return r.sc.do(ctx, func(d *data) error {
		if _, ok := d.departments[id]; !ok {
			return pgx.ErrNoRows
		}
		for _, e := range d.employees {
			if e.DepartmentID != nil && *e.DepartmentID == id {
				return foreignKeyViolation("employees_department_id_fkey")
			}
		}
		for _, a := range d.agents {
			if a.DepartmentID != nil && *a.DepartmentID == id {
				return foreignKeyViolation("agents_department_id_fkey")
			}
		}
		for _, t := range d.tickets {
			if t.DepartmentID != nil && *t.DepartmentID == id {
				return foreignKeyViolation("tickets_department_id_fkey")
			}
		}
		delete(d.departments, id)
		return nil
	})
}

func departmentNameTaken(d *data, name, exceptID string) bool {
	for id, dept := range d.departments {
		if id != exceptID && dept.Name == name {
			return true
		}
	}
	return false
}

type categoryRepository struct {
	sc scope
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	return r.sc.do(ctx, func(d *data) error {
		if categoryNameTaken(d, category.Name, "") {
			return uniqueViolation("categories_name_key")
		}
		now := r.sc.now()
		category.ID = uuid.NewString()
		category.CreatedAt, category.UpdatedAt = now, now
		d.categories[category.ID] = *category
		return nil
	})
}

func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	return r.sc.do(ctx, func(d *data) error {
		existing, ok := d.categories[category.ID]
		if !ok {
			return pgx.ErrNoRows
		}
		if categoryNameTaken(d, category.Name, category.ID) {
			return uniqueViolation("categories_name_key")
		}
		category.CreatedAt = existing.CreatedAt
		category.UpdatedAt = r.sc.now()
		d.categories[category.ID] = *category
		return nil
	})
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	var out *domain.Category
	err := r.sc.do(ctx, func(d *data) error {
		category, ok := d.categories[id]
		if !ok {
			return pgx.ErrNoRows
		}
		out = &category
		return nil
	})
	return out, err
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	result := []domain.Category{}
	err := r.sc.do(ctx, func(d *data) error {
		for _, category := range d.categories {
			result = append(result, category)
		}
		sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
		return nil
	})
	return result, err
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	return r.sc.do(ctx, func(d *data) error {
		if _, ok := d.categories[id]; !ok {
			return pgx.ErrNoRows
		}
		for _, t := range d.tickets {
			if t.CategoryID != nil && *t.CategoryID == id {
				return foreignKeyViolation("tickets_category_id_fkey")
			}
		}
		delete(d.categories, id)
		return nil
	})
}

func categoryNameTaken(d *data, name, exceptID string) bool {
	for id, category := range d.categories {
		if id != exceptID && category.Name == name {
			return true
		}
	}
	return false
}

type employeeRepository struct {
	sc scope
}

func (r *employeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	return r.sc.do(ctx, func(d *data) error {
		if err := checkEmployee(d, employee, ""); err != nil {
			return err
		}
		now := r.sc.now()
		employee.ID = uuid.NewString()
		employee.CreatedAt, employee.UpdatedAt = now, now
		d.employees[employee.ID] = *employee
		return nil
	})
}

func (r *employeeRepository) Update(ctx context.Context, employee *domain.Employee) error {
	return r.sc.do(ctx, func(d *data) error {
		existing, ok := d.employees[employee.ID]
		if !ok {
			return pgx.ErrNoRows
		}
		if err := checkEmployee(d, employee, employee.ID); err != nil {
			return err
		}
		employee.CreatedAt = existing.CreatedAt
		employee.UpdatedAt = r.sc.now()
		d.employees[employee.ID] = *employee
		return nil
	})
}

func checkEmployee(d *data, employee *domain.Employee, exceptID string) error {
	if employee.DepartmentID != nil {
		if _, ok := d.departments[*employee.DepartmentID]; !ok {
			return foreignKeyViolation("employees_department_id_fkey")
		}
	}
	for id, e := range d.employees {
		if id != exceptID && strings.EqualFold(e.Email, employee.Email) {
			return uniqueViolation("employees_email_key")
		}
	}
	return nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	var out *domain.Employee
	err := r.sc.do(ctx, func(d *data) error {
		employee, ok := d.employees[id]
		if !ok {
			return pgx.ErrNoRows
		}
		out = &employee
		return nil
	})
	return out, err
}

func (r *employeeRepository) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	var out *domain.Employee
	err := r.sc.do(ctx, func(d *data) error {
		for _, employee := range d.employees {
			if strings.EqualFold(employee.Email, email) {
				found := employee
				out = &found
				return nil
			}
		}
		return pgx.ErrNoRows
	})
	return out, err
}

func (r *employeeRepository) List(ctx context.Context, filter repository.EmployeeFilter) ([]domain.Employee, error) {
	result := []domain.Employee{}
	err := r.sc.do(ctx, func(d *data) error {
		for _, employee := range d.employees {
			if filter.DepartmentID != nil && (employee.DepartmentID == nil || *employee.DepartmentID != *filter.DepartmentID) {
				continue
			}
			result = append(result, employee)
		}
		sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
		return nil
	})
	return page(result, filter.Limit, filter.Offset, 50), err
}

func (r *employeeRepository) Delete(ctx context.Context, id string) error {
	return r.sc.do(ctx, func(d *data) error {
		if _, ok := d.employees[id]; !ok {
			return pgx.ErrNoRows
		}
		for _, t := range d.tickets {
			if t.ReporterID == id {
				return foreignKeyViolation("tickets_reporter_id_fkey")
			}
		}
		delete(d.employees, id)
		return nil
	})
}

type agentRepository struct {
	sc scope
}

func (r *agentRepository) Create(ctx context.Context, agent *domain.Agent) error {
	return r.sc.do(ctx, func(d *data) error {
		if err := checkAgent(d, agent, ""); err != nil {
			return err
		}
		now := r.sc.now()
		agent.ID = uuid.NewString()
		agent.CreatedAt, agent.UpdatedAt = now, now
		d.agents[agent.ID] = *agent
		return nil
	})
}

func (r *agentRepository) Update(ctx context.Context, agent *domain.Agent) error {
	return r.sc.do(ctx, func(d *data) error {
		existing, ok := d.agents[agent.ID]
		if !ok {
			return pgx.ErrNoRows
		}
		if err := checkAgent(d, agent, agent.ID); err != nil {
			return err
		}
		agent.CreatedAt = existing.CreatedAt
		agent.UpdatedAt = r.sc.now()
		d.agents[agent.ID] = *agent
		return nil
	})
}

func checkAgent(d *data, agent *domain.Agent, exceptID string) error {
	if agent.DepartmentID != nil {
		if _, ok := d.departments[*agent.DepartmentID]; !ok {
			return foreignKeyViolation("agents_department_id_fkey")
		}
	}
	for id, a := range d.agents {
		if id != exceptID && strings.EqualFold(a.Email, agent.Email) {
			return uniqueViolation("agents_email_key")
		}
	}
	return nil
}

func (r *agentRepository) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	var out *domain.Agent
	err := r.sc.do(ctx, func(d *data) error {
		agent, ok := d.agents[id]
		if !ok {
			return pgx.ErrNoRows
		}
		out = &agent
		return nil
	})
	return out, err
}

func (r *agentRepository) List(ctx context.Context, filter repository.AgentFilter) ([]domain.Agent, error) {
	result := []domain.Agent{}
	err := r.sc.do(ctx, func(d *data) error {
		for _, agent := range d.agents {
			if filter.Role != nil && agent.Role != *filter.Role {
				continue
			}
			if filter.Active != nil && agent.IsActive != *filter.Active {
				continue
			}
			if filter.DepartmentID != nil && (agent.DepartmentID == nil || *agent.DepartmentID != *filter.DepartmentID) {
				continue
			}
			result = append(result, agent)
		}
		sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
		return nil
	})
	return page(result, filter.Limit, filter.Offset, 50), err
}

func (r *agentRepository) Delete(ctx context.Context, id string) error {
	return r.sc.do(ctx, func(d *data) error {
		if _, ok := d.agents[id]; !ok {
			return pgx.ErrNoRows
		}
		for _, t := range d.tickets {
			if t.AssignedAgentID != nil && *t.AssignedAgentID == id {
				return foreignKeyViolation("tickets_assigned_agent_id_fkey")
			}
		}
		delete(d.agents, id)
		return nil
	})
}
