package compiler

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
)

// contentHash computes the SHA-256 of a canonical serialization of the
// mission. The round-trip through a generic value forces stable key ordering
// (encoding/json sorts map keys), so byte-identical missions always hash the
// same regardless of source formatting. The hash identifies the mission
// content for replay and audit; it is not a security boundary.
func contentHash(mission *domain.MissionSpec) (string, error) {
	data, err := json.Marshal(mission)
	if err != nil {
		return "", fmt.Errorf("mission not serializable: %w", err)
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return "", err
	}
	canonical, err := json.Marshal(generic)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
