// Package car checks Compliance/Certification Audit Records (CAR) against the
// basic structural contract: required top-level fields, the process-proof
// checkpoint requirement, and the step field naming convention.
//
// The checks are intentionally shallow. An empty violation list means the
// record passes the basic check, not that it is schema-valid.
package car

// RequiredFields lists the top-level keys every CAR must carry, in report order.
var RequiredFields = []string{
	"id",
	"run_id",
	"created_at",
	"run",
	"proof",
	"policy_ref",
	"budgets",
	"provenance",
	"checkpoints",
	"sgrade",
	"signer_public_key",
	"signatures",
}

// MatchKindProcess is the proof discriminator that requires sequential checkpoints.
const MatchKindProcess = "process"

// Violation messages.
const (
	MsgProcessMissing     = `match_kind is "process" but proof.process is missing`
	MsgCheckpointsMissing = "proof.process.sequential_checkpoints is required"
	MsgCheckpointsEmpty   = "proof.process.sequential_checkpoints must have at least 1 checkpoint"
	MsgStepsSnakeCase     = "run.steps should use camelCase (runId, orderIndex, checkpointType), not snake_case"
)

// snakeCaseStepKeys are the step keys that signal a producer emitting snake_case.
var snakeCaseStepKeys = []string{"run_id", "order_index", "checkpoint_type"}

// Validate returns the structural violations of doc in rule order.
// doc is a decoded JSON value; anything other than an object has no keys.
// Validate is pure and never fails.
func Validate(doc any) []string {
	obj, _ := doc.(map[string]any)

	var violations []string
	violations = append(violations, checkRequired(obj)...)
	violations = append(violations, checkProcessProof(obj)...)
	violations = append(violations, checkStepNaming(obj)...)
	return violations
}

func checkRequired(obj map[string]any) []string {
	var out []string
	for _, field := range RequiredFields {
		if _, ok := obj[field]; !ok {
			out = append(out, "Missing required field: "+field)
		}
	}
	return out
}

func checkProcessProof(obj map[string]any) []string {
	proof, ok := obj["proof"]
	if !ok || !truthy(proof) {
		return nil
	}
	p, ok := proof.(map[string]any)
	if !ok {
		return nil
	}
	if kind, _ := p["match_kind"].(string); kind != MatchKindProcess {
		return nil
	}

	process, ok := p["process"]
	if !ok || !truthy(process) {
		return []string{MsgProcessMissing}
	}
	proc, _ := process.(map[string]any)
	seq, ok := proc["sequential_checkpoints"]
	if !ok || !truthy(seq) {
		return []string{MsgCheckpointsMissing}
	}
	if arr, isArr := seq.([]any); isArr && len(arr) == 0 {
		return []string{MsgCheckpointsEmpty}
	}
	return nil
}

// checkStepNaming looks at run.steps[0] only.
func checkStepNaming(obj map[string]any) []string {
	run, ok := obj["run"].(map[string]any)
	if !ok {
		return nil
	}
	steps, ok := run["steps"].([]any)
	if !ok || len(steps) == 0 {
		return nil
	}
	step, ok := steps[0].(map[string]any)
	if !ok {
		return nil
	}
	for _, key := range snakeCaseStepKeys {
		if _, found := step[key]; found {
			return []string{MsgStepsSnakeCase}
		}
	}
	return nil
}
