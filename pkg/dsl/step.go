package dsl

import "github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"

// StepBuilder configures one workflow step.
type StepBuilder struct {
	mission *MissionBuilder
	step    *domain.WorkflowStep
}

// After declares step-name dependencies.
func (s *StepBuilder) After(steps ...string) *StepBuilder {
	s.step.DependsOn = append(s.step.DependsOn, steps...)
	return s
}

// Input sets one input field.
func (s *StepBuilder) Input(key string, value any) *StepBuilder {
	if s.step.Inputs == nil {
		s.step.Inputs = make(map[string]any)
	}
	s.step.Inputs[key] = value
	return s
}

// Output declares a produced artifact name.
func (s *StepBuilder) Output(names ...string) *StepBuilder {
	s.step.Outputs = append(s.step.Outputs, names...)
	return s
}

// Skill pins an explicit skill identifier.
func (s *StepBuilder) Skill(skillID string) *StepBuilder {
	s.step.SkillID = skillID
	return s
}

// When sets the dispatch-time condition expression.
func (s *StepBuilder) When(condition string) *StepBuilder {
	s.step.Condition = condition
	return s
}

// Done returns to the mission builder.
func (s *StepBuilder) Done() *MissionBuilder {
	return s.mission
}

// LoopBuilder configures one repeated block.
type LoopBuilder struct {
	mission *MissionBuilder
	loop    *domain.LoopStep
}

// Until records the loop's exit hint. The compiler never evaluates it;
// plans always expand to the worst case.
func (l *LoopBuilder) Until(hint string) *LoopBuilder {
	l.loop.Until = hint
	return l
}

// Gate adds a post-iteration check name.
func (l *LoopBuilder) Gate(names ...string) *LoopBuilder {
	l.loop.Gates = append(l.loop.Gates, names...)
	return l
}

// Step adds a step to the loop body.
func (l *LoopBuilder) Step(name, agent string) *LoopStepBuilder {
	l.loop.Steps = append(l.loop.Steps, domain.WorkflowStep{StepName: name, Agent: agent})
	// Index, not pointer: appends may reallocate the body slice.
	return &LoopStepBuilder{
		loop: l,
		idx:  len(l.loop.Steps) - 1,
	}
}

// Done returns to the mission builder.
func (l *LoopBuilder) Done() *MissionBuilder {
	return l.mission
}

// LoopStepBuilder configures one step inside a loop body.
type LoopStepBuilder struct {
	loop *LoopBuilder
	idx  int
}

// Input sets one input field.
func (s *LoopStepBuilder) Input(key string, value any) *LoopStepBuilder {
	step := &s.loop.loop.Steps[s.idx]
	if step.Inputs == nil {
		step.Inputs = make(map[string]any)
	}
	step.Inputs[key] = value
	return s
}

// Skill pins an explicit skill identifier.
func (s *LoopStepBuilder) Skill(skillID string) *LoopStepBuilder {
	s.loop.loop.Steps[s.idx].SkillID = skillID
	return s
}

// Done returns to the loop builder.
func (s *LoopStepBuilder) Done() *LoopBuilder {
	return s.loop
}
