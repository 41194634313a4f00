package syllabus

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-opofit/internal/user/entity"
)

func counter() func() string {
	n := 0
	return func() string {
		n++
		return "t" + strconv.Itoa(n)
	}
}

func TestTopics_ShapeAndSeeds(t *testing.T) {
	topics := Topics()
	require.Len(t, topics, TopicCount)

	for i, tp := range topics {
		assert.Equal(t, i+1, tp.ID)
		assert.NotEmpty(t, tp.Title)
		assert.NotNil(t, tp.ConceptMap, "topic %d", tp.ID)
		switch tp.ID {
		case 1:
			assert.Equal(t, entity.TopicInProgress, tp.Status)
		case 9:
			assert.Equal(t, entity.TopicFirstReview, tp.Status)
		default:
			assert.Equal(t, entity.TopicNotStarted, tp.Status, "topic %d", tp.ID)
		}
	}
}

func TestTopics_ReturnsIndependentCopies(t *testing.T) {
	a := Topics()
	a[0].Status = entity.TopicMastered
	a[0].ConceptMap.Title = "changed"

	b := Topics()
	assert.Equal(t, entity.TopicInProgress, b[0].Status)
	assert.NotEqual(t, "changed", b[0].ConceptMap.Title)
}

func TestSeedTasks(t *testing.T) {
	now := time.Date(2026, 12, 31, 22, 0, 0, 0, time.Local)
	tasks := SeedTasks(now, counter())
	require.Len(t, tasks, 3)

	assert.Equal(t, "2026-12-31", tasks[0].Date)
	assert.True(t, tasks[0].Completed)
	assert.Equal(t, "2026-12-31", tasks[1].Date)
	assert.False(t, tasks[1].Completed)
	assert.Equal(t, "2027-01-01", tasks[2].Date)
	assert.Equal(t, []string{"t1", "t2", "t3"}, []string{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}

func TestInitialData(t *testing.T) {
	d := InitialData(time.Now(), counter())
	assert.Len(t, d.Topics, TopicCount)
	assert.Len(t, d.Tasks, 3)
}
