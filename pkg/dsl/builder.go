package dsl

import (
	"fmt"
	"strings"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/internal/validator"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
)

// MissionBuilder assembles a MissionSpec step by step.
type MissionBuilder struct {
	mission domain.MissionSpec
}

// NewMission creates a builder for the given mission identifier and title.
func NewMission(missionID, title string) *MissionBuilder {
	return &MissionBuilder{
		mission: domain.MissionSpec{
			MissionID: missionID,
			Title:     title,
		},
	}
}

// Intent sets the free-text purpose of the mission.
func (b *MissionBuilder) Intent(intent string) *MissionBuilder {
	b.mission.Intent = intent
	return b
}

// Version sets the mission document version.
func (b *MissionBuilder) Version(version string) *MissionBuilder {
	b.mission.Version = version
	return b
}

// Repo adds a repository scope.
func (b *MissionBuilder) Repo(path string) *MissionBuilder {
	b.mission.Scope = append(b.mission.Scope, domain.RepoScope{Path: path})
	return b
}

// RepoAt adds a repository scope pinned to a ref.
func (b *MissionBuilder) RepoAt(path, ref string) *MissionBuilder {
	b.mission.Scope = append(b.mission.Scope, domain.RepoScope{Path: path, Ref: ref})
	return b
}

// Step adds a workflow step and returns its builder for chained options.
func (b *MissionBuilder) Step(name, agent string) *StepBuilder {
	b.mission.Workflow = append(b.mission.Workflow, domain.WorkflowItem{
		Step: &domain.WorkflowStep{StepName: name, Agent: agent},
	})
	return &StepBuilder{
		mission: b,
		step:    b.mission.Workflow[len(b.mission.Workflow)-1].Step,
	}
}

// Loop adds a repeated block and returns its builder.
func (b *MissionBuilder) Loop(name string, maxIterations int) *LoopBuilder {
	b.mission.Workflow = append(b.mission.Workflow, domain.WorkflowItem{
		Loop: &domain.LoopStep{Name: name, MaxIterations: maxIterations},
	})
	return &LoopBuilder{
		mission: b,
		loop:    b.mission.Workflow[len(b.mission.Workflow)-1].Loop,
	}
}

// Budget sets the mandate budget envelope.
func (b *MissionBuilder) Budget(limit float64, unit string) *MissionBuilder {
	b.mission.Mandate.BudgetLimit = limit
	b.mission.Mandate.BudgetUnit = unit
	return b
}

// MaxInvocations caps the number of specialist invocations for the run.
func (b *MissionBuilder) MaxInvocations(n int) *MissionBuilder {
	b.mission.Mandate.MaxIterations = n
	return b
}

// Authorize restricts the mission to the listed specialists.
func (b *MissionBuilder) Authorize(specialists ...string) *MissionBuilder {
	b.mission.Mandate.AuthorizedSpecialists = append(b.mission.Mandate.AuthorizedSpecialists, specialists...)
	return b
}

// RiskTier sets the mission's risk classification.
func (b *MissionBuilder) RiskTier(tier domain.RiskTier) *MissionBuilder {
	b.mission.Mandate.RiskTier = tier
	return b
}

// Classify tags the mission's data classification.
func (b *MissionBuilder) Classify(classification string) *MissionBuilder {
	b.mission.Mandate.DataClassification = classification
	return b
}

// RequireEvidence marks the run as requiring an evidence bundle.
func (b *MissionBuilder) RequireEvidence(include ...string) *MissionBuilder {
	b.mission.Evidence.BundleRequired = true
	b.mission.Evidence.Include = append(b.mission.Evidence.Include, include...)
	return b
}

// ExportToGCS sets the bundle export target.
func (b *MissionBuilder) ExportToGCS(bucket string) *MissionBuilder {
	b.mission.Evidence.ExportToGCS = true
	b.mission.Evidence.GCSBucket = bucket
	return b
}

// Build validates the assembled mission and returns it. A mission that
// builds successfully also passes the compiler's validation phase.
func (b *MissionBuilder) Build() (*domain.MissionSpec, error) {
	if errs := validator.Validate(&b.mission); len(errs) > 0 {
		return nil, fmt.Errorf("mission %q is invalid:\n  %s", b.mission.MissionID, strings.Join(errs, "\n  "))
	}
	mission := b.mission
	return &mission, nil
}
