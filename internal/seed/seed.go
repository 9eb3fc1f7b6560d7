// Package seed loads reference data files and applies them through the
// directory service.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// File is the seed document. Employees and agents name their department
// rather than referencing its ID.
type File struct {
	Departments []Department `toml:"departments" yaml:"departments"`
	Categories  []Category   `toml:"categories" yaml:"categories"`
	Employees   []Employee   `toml:"employees" yaml:"employees"`
	Agents      []Agent      `toml:"agents" yaml:"agents"`
}

// Department seed entry.
type Department struct {
	Name        string `toml:"name" yaml:"name"`
	Description string `toml:"description" yaml:"description"`
}

// Category seed entry.
type Category struct {
	Name        string `toml:"name" yaml:"name"`
	Description string `toml:"description" yaml:"description"`
	SLAHours    int    `toml:"sla_hours" yaml:"sla_hours"`
}

// Employee seed entry.
type Employee struct {
	Name       string `toml:"name" yaml:"name"`
	Email      string `toml:"email" yaml:"email"`
	Department string `toml:"department" yaml:"department"`
}

// Agent seed entry. Active defaults to true.
type Agent struct {
	Name       string `toml:"name" yaml:"name"`
	Email      string `toml:"email" yaml:"email"`
	Phone      string `toml:"phone" yaml:"phone"`
	Role       string `toml:"role" yaml:"role"`
	Department string `toml:"department" yaml:"department"`
	Active     *bool  `toml:"active" yaml:"active"`
}

// Result counts what Apply did.
type Result struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// LoadFile reads a seed file. The format follows the extension: .toml, or
// .yaml/.yml.
func LoadFile(path string) (*File, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return ParseTOML(string(body))
	case ".yaml", ".yml":
		return ParseYAML(body)
	}
	return nil, fmt.Errorf("unsupported seed format %q", filepath.Ext(path))
}

// ParseTOML decodes a TOML seed document.
func ParseTOML(body string) (*File, error) {
	var file File
	md, err := toml.Decode(body, &file)
	if err != nil {
		return nil, fmt.Errorf("decode toml seed: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown seed keys: %v", undecoded)
	}
	return &file, nil
}

// ParseYAML decodes a YAML seed document. Unknown keys are rejected and an
// empty document yields an empty file.
func ParseYAML(body []byte) (*File, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(body))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml seed: %w", err)
	}
	return &file, nil
}

// Apply creates every entry that does not exist yet. Entries rejected as
// duplicates are counted as skipped, so a file can be applied repeatedly.
func Apply(ctx context.Context, directory *service.DirectoryService, file *File) (Result, error) {
	var result Result
	track := func(what, name string, err error) error {
		switch {
		case err == nil:
			result.Created++
			return nil
		case apperrors.IsKind(err, "CONFLICT"):
			result.Skipped++
			return nil
		}
		return fmt.Errorf("seed %s %q: %w", what, name, err)
	}

	for _, d := range file.Departments {
		_, err := directory.CreateDepartment(ctx, service.DepartmentInput{Name: d.Name, Description: d.Description})
		if err := track("department", d.Name, err); err != nil {
			return result, err
		}
	}
	for _, c := range file.Categories {
		_, err := directory.CreateCategory(ctx, service.CategoryInput{Name: c.Name, Description: c.Description, SLAHours: c.SLAHours})
		if err := track("category", c.Name, err); err != nil {
			return result, err
		}
	}

	departments, err := departmentIDs(ctx, directory)
	if err != nil {
		return result, err
	}

	for _, e := range file.Employees {
		deptID, err := resolveDepartment(departments, e.Department)
		if err != nil {
			return result, fmt.Errorf("seed employee %q: %w", e.Email, err)
		}
		_, err = directory.CreateEmployee(ctx, service.EmployeeInput{Name: e.Name, Email: e.Email, DepartmentID: deptID})
		if err := track("employee", e.Email, err); err != nil {
			return result, err
		}
	}
	for _, a := range file.Agents {
		deptID, err := resolveDepartment(departments, a.Department)
		if err != nil {
			return result, fmt.Errorf("seed agent %q: %w", a.Email, err)
		}
		_, err = directory.CreateAgent(ctx, service.AgentInput{
			Name:         a.Name,
			Email:        a.Email,
			Phone:        a.Phone,
			Role:         domain.AgentRole(a.Role),
			DepartmentID: deptID,
			IsActive:     a.Active,
		})
		if err := track("agent", a.Email, err); err != nil {
			return result, err
		}
	}
	return result, nil
}

func departmentIDs(ctx context.Context, directory *service.DirectoryService) (map[string]string, error) {
	departments, err := directory.ListDepartments(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]string, len(departments))
	for _, d := range departments {
		ids[strings.ToLower(d.Name)] = d.ID
	}
	return ids, nil
}

func resolveDepartment(ids map[string]string, name string) (*string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	id, ok := ids[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown department %q", name)
	}
	return &id, nil
}
