package lending

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkovacic/biblio/internal/model"
)

func TestEvaluateTransition(t *testing.T) {
	tests := []struct {
		name     string
		previous int
		current  int
		wantKind string
		wantOK   bool
	}{
		{"last copy borrowed", 1, 0, model.NotificationEmpty, true},
		{"copy returned to empty shelf", 0, 1, model.NotificationRestocked, true},
		{"drops to threshold", 3, 2, model.NotificationLowStock, true},
		{"already below threshold", 2, 1, "", false},
		{"no change", 2, 2, "", false},
		{"plenty remaining", 5, 4, "", false},
		{"restock above threshold", 0, 5, model.NotificationRestocked, true},
		{"restock from empty stays restocked not low", 0, 2, model.NotificationRestocked, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := EvaluateTransition(tt.previous, tt.current)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestTransitionMessage(t *testing.T) {
	assert.Equal(t, "Dune is now out of stock",
		TransitionMessage(model.NotificationEmpty, "Dune", 0))
	assert.Equal(t, "Dune has been restocked (3 copies available)",
		TransitionMessage(model.NotificationRestocked, "Dune", 3))
	assert.Equal(t, "Dune is running low (2 copies remaining)",
		TransitionMessage(model.NotificationLowStock, "Dune", 2))
	assert.Equal(t, "", TransitionMessage("unknown", "Dune", 1))
}
