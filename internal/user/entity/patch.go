package entity

import (
	"encoding/json"
	"fmt"
)

// Optional carries a value together with an explicit presence flag, so an
// empty collection can be told apart from "not supplied".
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// UnmarshalJSON marks the field present whenever its key appears, including
// an explicit null.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		var zero T
		o.Value = zero
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UserDataPatch is a partial UserData. A present field fully replaces the
// current one; absent fields are left untouched.
type UserDataPatch struct {
	Topics Optional[[]Topic]       `json:"topics"`
	Tasks  Optional[[]PlannerTask] `json:"tasks"`
}

func (p UserDataPatch) Empty() bool {
	return !p.Topics.Set && !p.Tasks.Set
}

// PatchError describes why a patch cannot be merged.
type PatchError struct {
	Field  string
	Reason string
}

func (e *PatchError) Error() string {
	return e.Field + ": " + e.Reason
}

// Apply merges p over cur and returns the new record. cur is not modified.
//
// Topics keep the syllabus shape of cur: same ids in the same order. Only the
// status of each topic is taken from the patch; title and concept map are
// reference data and are copied from cur.
func (p UserDataPatch) Apply(cur UserData) (UserData, error) {
	out := cur.Clone()

	if p.Topics.Set {
		topics, err := mergeTopics(cur.Topics, p.Topics.Value)
		if err != nil {
			return UserData{}, err
		}
		out.Topics = topics
	}

	if p.Tasks.Set {
		tasks, err := checkTasks(p.Tasks.Value)
		if err != nil {
			return UserData{}, err
		}
		out.Tasks = tasks
	}
	return out, nil
}

func mergeTopics(cur, next []Topic) ([]Topic, error) {
	if len(next) != len(cur) {
		return nil, &PatchError{Field: "topics", Reason: fmt.Sprintf("expected %d topics, got %d", len(cur), len(next))}
	}
	out := make([]Topic, len(next))
	for i, t := range next {
		if t.ID != cur[i].ID {
			return nil, &PatchError{Field: "topics", Reason: fmt.Sprintf("position %d must hold topic %d, got %d", i, cur[i].ID, t.ID)}
		}
		if !t.Status.Valid() {
			return nil, &PatchError{Field: "topics", Reason: fmt.Sprintf("topic %d has unknown status %q", t.ID, t.Status)}
		}
		out[i] = Topic{
			ID:         cur[i].ID,
			Title:      cur[i].Title,
			Status:     t.Status,
			ConceptMap: cur[i].ConceptMap.clone(),
		}
	}
	return out, nil
}

func checkTasks(next []PlannerTask) ([]PlannerTask, error) {
	out := make([]PlannerTask, 0, len(next))
	seen := make(map[string]struct{}, len(next))
	for _, t := range next {
		if t.ID == "" {
			return nil, &PatchError{Field: "tasks", Reason: "task id is required"}
		}
		if _, dup := seen[t.ID]; dup {
			return nil, &PatchError{Field: "tasks", Reason: fmt.Sprintf("duplicate task id %q", t.ID)}
		}
		seen[t.ID] = struct{}{}
		if !ValidDate(t.Date) {
			return nil, &PatchError{Field: "tasks", Reason: fmt.Sprintf("task %q has invalid date %q", t.ID, t.Date)}
		}
		out = append(out, t)
	}
	return out, nil
}
