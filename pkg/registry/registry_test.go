package registry_test

import (
	"testing"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_RegisterAndLookup(t *testing.T) {
	dir := registry.NewDirectory()

	_, ok := dir.Lookup("iam-qa")
	assert.False(t, ok)

	dir.Register(registry.Specialist{
		Name:        "iam-qa",
		Description: "runs quality checks",
		Skills:      []string{"lint", "test"},
	})

	s, ok := dir.Lookup("iam-qa")
	require.True(t, ok)
	assert.Equal(t, []string{"lint", "test"}, s.Skills)

	// Re-registering replaces the entry.
	dir.Register(registry.Specialist{Name: "iam-qa", Description: "v2"})
	s, _ = dir.Lookup("iam-qa")
	assert.Equal(t, "v2", s.Description)

	dir.Register(registry.Specialist{Name: "iam-hygiene"})
	assert.ElementsMatch(t, []string{"iam-qa", "iam-hygiene"}, dir.Names())
}

func TestDirectory_CheckInputs(t *testing.T) {
	dir := registry.NewDirectory()
	dir.Register(registry.Specialist{
		Name: "iam-qa",
		Inputs: registry.InputContract{
			"target":  registry.FieldString,
			"depth":   registry.FieldInt,
			"strict":  registry.FieldBool,
			"exclude": registry.FieldList,
			"env":     registry.FieldMap,
			"extra":   registry.FieldAny,
		},
	})

	// Unregistered specialists are never checked here.
	assert.Empty(t, dir.CheckInputs("unknown", nil))

	ok := map[string]any{
		"target":  "./...",
		"depth":   3,
		"strict":  true,
		"exclude": []any{"vendor"},
		"env":     map[string]any{"CI": "1"},
		"extra":   struct{}{},
	}
	assert.Empty(t, dir.CheckInputs("iam-qa", ok))

	// JSON numbers decode as float64; integral values still count as int.
	ok["depth"] = float64(3)
	assert.Empty(t, dir.CheckInputs("iam-qa", ok))

	problems := dir.CheckInputs("iam-qa", map[string]any{
		"target": 42,
		"depth":  3.5,
		"strict": "yes",
	})
	// One problem per field, in sorted field order for stable output.
	require.Len(t, problems, 6)
	assert.Contains(t, problems[0], `"depth"`)
	assert.Contains(t, problems[1], `requires input "env"`)
	assert.Contains(t, problems[5], `"target"`)
}
