package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository/memstore"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

const tomlSeed = `
[[departments]]
name = "IT"
description = "Internal IT"

[[categories]]
name = "Hardware"
sla_hours = 24

[[employees]]
name = "Sam Reporter"
email = "sam@example.com"
department = "it"

[[agents]]
name = "Robin"
email = "robin@example.com"
role = "L2"
department = "IT"

[[agents]]
name = "Old Timer"
email = "old@example.com"
role = "L1"
active = false
`

const yamlSeed = `
departments:
  - name: IT
categories:
  - name: Network
    sla_hours: 8
agents:
  - name: Kai
    email: kai@example.com
    role: MANAGER
`

func TestParseTOML(t *testing.T) {
	file, err := ParseTOML(tomlSeed)
	require.NoError(t, err)
	require.Len(t, file.Agents, 2)
	assert.Equal(t, 24, file.Categories[0].SLAHours)
	assert.Nil(t, file.Agents[0].Active)
	require.NotNil(t, file.Agents[1].Active)
	assert.False(t, *file.Agents[1].Active)

	_, err = ParseTOML("[[departments]]\nname = \"IT\"\nbudget = 10\n")
	assert.Error(t, err)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	tests := []struct {
		name  string
		parse func() (*File, error)
	}{
		{"toml department", func() (*File, error) {
			return ParseTOML("[[departments]]\nname = \"IT\"\ncolour = \"blue\"\n")
		}},
		{"yaml department", func() (*File, error) {
			return ParseYAML([]byte("departments:\n  - name: IT\n    colour: blue\n"))
		}},
		{"yaml category", func() (*File, error) {
			return ParseYAML([]byte("categories:\n  - name: Network\n    sla_hour: 8\n"))
		}},
		{"yaml top level", func() (*File, error) {
			return ParseYAML([]byte("teams:\n  - name: Ops\n"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.parse()
			assert.Error(t, err)
		})
	}
}

func TestParseYAML_EmptyDocument(t *testing.T) {
	file, err := ParseYAML(nil)
	require.NoError(t, err)
	assert.Empty(t, file.Departments)
	assert.Empty(t, file.Agents)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "seed.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlSeed), 0o600))

	file, err := LoadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "Network", file.Categories[0].Name)
	assert.Equal(t, 8, file.Categories[0].SLAHours)
	assert.Equal(t, "MANAGER", file.Agents[0].Role)

	jsonPath := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte("{}"), 0o600))
	_, err = LoadFile(jsonPath)
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestApply_IsRepeatable(t *testing.T) {
	ctx := context.Background()
	directory := service.NewDirectoryService(memstore.New())
	file, err := ParseTOML(tomlSeed)
	require.NoError(t, err)

	result, err := Apply(ctx, directory, file)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 5}, result)

	result, err = Apply(ctx, directory, file)
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 5}, result)

	employees, err := directory.ListEmployees(ctx, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	require.NotNil(t, employees[0].DepartmentID)

	inactive := false
	agents, err := directory.ListAgents(ctx, service.AgentListFilters{Active: &inactive})
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, domain.AgentRoleL1, agents[0].Role)
}

func TestApply_UnknownDepartment(t *testing.T) {
	directory := service.NewDirectoryService(memstore.New())
	file := &File{Employees: []Employee{{Name: "Lost", Email: "lost@example.com", Department: "Nowhere"}}}

	_, err := Apply(context.Background(), directory, file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Nowhere")
}
