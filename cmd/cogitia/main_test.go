package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckCommand(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(run([]string{"cogitia", "check", "--prior", "2", `{"toxic": 0.95, "threat": 0.6}`}))
	assert.NoError(run([]string{"cogitia", "--escalation-table", "legacy", "check", "--tolerance", "0.5", `{"insult": 0.8}`}))

	assert.Error(run([]string{"cogitia", "check", `{"toxik": 0.95}`}))
	assert.Error(run([]string{"cogitia", "check"}))
	assert.Error(run([]string{"cogitia", "--escalation-table", "nope", "check", `{"toxic": 0.1}`}))
	assert.Error(run([]string{"cogitia", "check", "--tolerance", "0", `{"toxic": 0.1}`}))
}
