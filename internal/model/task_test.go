package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextStatusCycles(t *testing.T) {
	assert.Equal(t, StatusInProgress, NextStatus(StatusTodo))
	assert.Equal(t, StatusCompleted, NextStatus(StatusInProgress))
	assert.Equal(t, StatusTodo, NextStatus(StatusCompleted))
	assert.Equal(t, StatusTodo, NextStatus("garbage"))
}
