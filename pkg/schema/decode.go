package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
)

//go:embed mission.yaml
var missionSchemaDoc []byte

var (
	missionSchemaOnce sync.Once
	missionSchema     *openapi3.Schema
	missionSchemaErr  error
)

// loadMissionSchema parses the embedded OpenAPI document once per process.
func loadMissionSchema() (*openapi3.Schema, error) {
	missionSchemaOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(missionSchemaDoc)
		if err != nil {
			missionSchemaErr = fmt.Errorf("failed to load embedded mission schema: %w", err)
			return
		}
		ref, ok := doc.Components.Schemas["Mission"]
		if !ok || ref.Value == nil {
			missionSchemaErr = fmt.Errorf("embedded mission schema has no Mission component")
			return
		}
		missionSchema = ref.Value
	})
	return missionSchema, missionSchemaErr
}

// missionDoc mirrors the on-disk document layout.
// Workflow stays raw here; the step/loop discriminant is resolved afterwards.
type missionDoc struct {
	MissionID string           `mapstructure:"mission_id"`
	Title     string           `mapstructure:"title"`
	Intent    string           `mapstructure:"intent"`
	Version   string           `mapstructure:"version"`
	Scope     scopeDoc         `mapstructure:"scope"`
	Workflow  []map[string]any `mapstructure:"workflow"`
	Mandate   mandateDoc       `mapstructure:"mandate"`
	Evidence  evidenceDoc      `mapstructure:"evidence"`
}

type scopeDoc struct {
	Repos []domain.RepoScope `mapstructure:"repos"`
}

type mandateDoc struct {
	BudgetLimit           float64  `mapstructure:"budget_limit"`
	BudgetUnit            string   `mapstructure:"budget_unit"`
	MaxIterations         int      `mapstructure:"max_iterations"`
	AuthorizedSpecialists []string `mapstructure:"authorized_specialists"`
	RiskTier              string   `mapstructure:"risk_tier"`
	DataClassification    string   `mapstructure:"data_classification"`
}

type evidenceDoc struct {
	BundleRequired bool     `mapstructure:"bundle_required"`
	Include        []string `mapstructure:"include"`
	ExportToGCS    bool     `mapstructure:"export_to_gcs"`
	GCSBucket      string   `mapstructure:"gcs_bucket"`
}

// ParseMission decodes a serialized mission definition (YAML or JSON; JSON is
// a YAML subset) into an immutable MissionSpec.
func ParseMission(data []byte) (*domain.MissionSpec, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("mission document is not valid YAML/JSON: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("mission document is empty")
	}

	// Shape check against the embedded OpenAPI schema before typed decoding.
	// Round-trip through JSON first so numeric types match JSON semantics.
	schema, err := loadMissionSchema()
	if err != nil {
		return nil, err
	}
	normalized, err := normalizeJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := schema.VisitJSON(normalized, openapi3.MultiErrors()); err != nil {
		return nil, fmt.Errorf("mission document failed schema check: %w", err)
	}

	var doc missionDoc
	if err := decodeStrictEnough(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode mission document: %w", err)
	}

	tier := domain.RiskR0
	if doc.Mandate.RiskTier != "" {
		tier, err = domain.ParseRiskTier(doc.Mandate.RiskTier)
		if err != nil {
			return nil, err
		}
	}

	workflow := make([]domain.WorkflowItem, 0, len(doc.Workflow))
	for i, item := range doc.Workflow {
		resolved, err := resolveWorkflowItem(item)
		if err != nil {
			return nil, fmt.Errorf("workflow item %d: %w", i, err)
		}
		workflow = append(workflow, resolved)
	}

	return &domain.MissionSpec{
		MissionID: doc.MissionID,
		Title:     doc.Title,
		Intent:    doc.Intent,
		Version:   doc.Version,
		Scope:     doc.Scope.Repos,
		Workflow:  workflow,
		Mandate: domain.MandateConfig{
			BudgetLimit:           doc.Mandate.BudgetLimit,
			BudgetUnit:            doc.Mandate.BudgetUnit,
			MaxIterations:         doc.Mandate.MaxIterations,
			AuthorizedSpecialists: doc.Mandate.AuthorizedSpecialists,
			RiskTier:              tier,
			DataClassification:    doc.Mandate.DataClassification,
		},
		Evidence: domain.EvidenceConfig{
			BundleRequired: doc.Evidence.BundleRequired,
			Include:        doc.Evidence.Include,
			ExportToGCS:    doc.Evidence.ExportToGCS,
			GCSBucket:      doc.Evidence.GCSBucket,
		},
	}, nil
}

// resolveWorkflowItem applies the tagged-union discriminant: a "loop" key
// selects the loop branch, anything else decodes as a plain step.
func resolveWorkflowItem(item map[string]any) (domain.WorkflowItem, error) {
	if rawLoop, ok := item["loop"]; ok {
		var loop domain.LoopStep
		if err := decodeStrictEnough(rawLoop, &loop); err != nil {
			return domain.WorkflowItem{}, fmt.Errorf("invalid loop block: %w", err)
		}
		if loop.MaxIterations < 1 {
			return domain.WorkflowItem{}, fmt.Errorf("loop %q: max_iterations must be >= 1", loop.Name)
		}
		return domain.WorkflowItem{Loop: &loop}, nil
	}

	var step domain.WorkflowStep
	if err := decodeStrictEnough(item, &step); err != nil {
		return domain.WorkflowItem{}, fmt.Errorf("invalid step: %w", err)
	}
	return domain.WorkflowItem{Step: &step}, nil
}

// decodeStrictEnough maps raw document data onto a typed struct.
// WeaklyTypedInput stays off: the schema check already normalized shapes, and
// silent coercion would hide authoring mistakes.
func decodeStrictEnough(input any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// normalizeJSON round-trips a decoded YAML value through encoding/json so the
// schema validator sees JSON-typed values (float64 numbers, string keys).
func normalizeJSON(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("mission document contains non-serializable values: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
