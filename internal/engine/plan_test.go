package engine

import (
	"testing"

	"github.com/convoy-sh/convoy/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPlanEnumeration(t *testing.T) {
	plan := BuildPlan(deployTasks(), threeHosts())

	require.Len(t, plan.Entries, 4)

	assert.Equal(t, "build", plan.Entries[0].Task.Name)
	assert.Equal(t, []string{"local"}, plan.Entries[0].Hosts)

	assert.Equal(t, "upload", plan.Entries[1].Task.Name)
	assert.Equal(t, []string{"db1", "web1", "web2"}, plan.Entries[1].Hosts)

	assert.Equal(t, "migrate", plan.Entries[2].Task.Name)
	assert.Equal(t, []string{"db1"}, plan.Entries[2].Hosts, "once reduces to the first applicable host")

	assert.Equal(t, "release", plan.Entries[3].Task.Name)
	assert.Equal(t, []string{"db1", "web1", "web2"}, plan.Entries[3].Hosts)
}

func TestBuildPlanPairs(t *testing.T) {
	plan := BuildPlan([]*task.Task{
		{Name: "build", Commands: []string{"make"}, Local: true},
		{Name: "release", Commands: []string{"./release.sh"}},
	}, threeHosts())

	assert.Equal(t, []string{
		"build/local",
		"release/db1", "release/web1", "release/web2",
	}, plan.Pairs())
}

func TestExpandOnceWithNoApplicableHosts(t *testing.T) {
	tk := &task.Task{Name: "migrate", Only: []string{"db"}, Once: true}
	targets := expand(tk, threeHosts()[1:]) // web hosts only
	assert.Empty(t, targets)
}

func TestOutcomeExitStatus(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		want    int
	}{
		{"success", Outcome{Status: StatusSuccess}, 0},
		{"cancelled", Outcome{Status: StatusCancelled}, 1},
		{"failed with code", Outcome{Status: StatusFailed, ExitCode: 7}, 7},
		{"failed transport", Outcome{Status: StatusFailed, ExitCode: -1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.outcome.ExitStatus())
		})
	}
}
