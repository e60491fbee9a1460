package engine

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/sells-group/r2ready/internal/model"
)

// inputFingerprint is the canonical serialization of everything a pass
// depends on. encoding/json writes map keys in sorted order, so equal
// inputs hash equal.
type inputFingerprint struct {
	FacilityID     string                       `json:"facility_id"`
	ProfileVersion int                          `json:"profile_version"`
	Flags          map[string]model.FlagValue   `json:"flags"`
	Applicable     []string                     `json:"applicable"`
	Answers        map[string]model.AnswerValue `json:"answers"`
	ConfigVersion  int                          `json:"config_version"`
	Strategy       string                       `json:"strategy"`
}

// InputHash fingerprints a pass's inputs. Two passes with equal hashes
// produce identical persisted results up to timestamps.
func InputHash(profile model.FacilityProfile, applicable []string, answers map[string]model.AnswerValue, configVersion int, strategy string) string {
	fp := inputFingerprint{
		FacilityID:     profile.FacilityID,
		ProfileVersion: profile.Version,
		Flags:          profile.Flags,
		Applicable:     applicable,
		Answers:        answers,
		ConfigVersion:  configVersion,
		Strategy:       strategy,
	}
	data, err := json.Marshal(fp)
	if err != nil {
		return ""
	}
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:16])
}
