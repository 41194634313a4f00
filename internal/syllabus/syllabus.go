// Package syllabus holds the fixed exam syllabus every new study record is
// seeded from.
package syllabus

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ovaphlow/pitchfork/service-opofit/internal/user/entity"
)

// TopicCount is the number of topics in the syllabus.
const TopicCount = 25

//go:embed syllabus.json
var raw []byte

var template []entity.Topic

func init() {
	if err := json.Unmarshal(raw, &template); err != nil {
		panic(fmt.Sprintf("syllabus: decode template: %v", err))
	}
	if len(template) != TopicCount {
		panic(fmt.Sprintf("syllabus: expected %d topics, found %d", TopicCount, len(template)))
	}
}

// Topics returns a fresh copy of the syllabus, in syllabus order.
func Topics() []entity.Topic {
	return entity.UserData{Topics: template}.Clone().Topics
}

// SeedTasks returns the starter planner entries: two for today (the first
// already done) and one for tomorrow.
func SeedTasks(now time.Time, newID func() string) []entity.PlannerTask {
	today := entity.FormatDate(now)
	tomorrow := entity.FormatDate(now.AddDate(0, 0, 1))
	return []entity.PlannerTask{
		{ID: newID(), Text: "Repaso Tema 3: Capacidades Físicas Básicas", Date: today, Completed: true},
		{ID: newID(), Text: "Resolver Supuesto Práctico de Inclusión", Date: today},
		{ID: newID(), Text: "Avanzar en la Introducción de la Programación", Date: tomorrow},
	}
}

// InitialData builds the study record of a newly registered user.
func InitialData(now time.Time, newID func() string) entity.UserData {
	return entity.UserData{
		Topics: Topics(),
		Tasks:  SeedTasks(now, newID),
	}
}
